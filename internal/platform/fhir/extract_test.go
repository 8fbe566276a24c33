package fhir

import (
	"encoding/json"
	"testing"
)

func mustDecode(t *testing.T, s string) interface{} {
	t.Helper()
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestExtractRecords_Bundle(t *testing.T) {
	raw := mustDecode(t, `{
		"resourceType": "Bundle",
		"type": "collection",
		"entry": [
			{"resource": {"resourceType": "Patient", "id": "p1", "name": [{"text": "John Doe"}]}},
			{"resource": {"resourceType": "Condition", "id": "c1"}},
			{"resource": {"resourceType": "Condition", "id": "c1", "note": "later wins"}}
		]
	}`)

	records := ExtractRecords(raw)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if _, ok := records["Patient/p1"]; !ok {
		t.Error("missing Patient/p1")
	}
	cond, ok := records["Condition/c1"]
	if !ok {
		t.Fatal("missing Condition/c1")
	}
	if Str(cond, "note") != "later wins" {
		t.Errorf("duplicate key should be last-write-wins, got note=%q", Str(cond, "note"))
	}
}

func TestExtractRecords_BundleWithOwnID(t *testing.T) {
	raw := mustDecode(t, `{
		"resourceType": "Bundle",
		"id": "b1",
		"type": "searchset",
		"entry": [
			{"resource": {"resourceType": "Patient", "id": "p1"}},
			{"resource": {"resourceType": "Condition", "id": "c1"}},
			{"resource": {"resourceType": "Bundle", "id": "inner", "entry": [
				{"resource": {"resourceType": "Observation", "id": "ob1"}}
			]}}
		]
	}`)

	records := ExtractRecords(raw)
	if _, ok := records["Bundle/b1"]; ok {
		t.Error("the bundle envelope must not be collected as a record")
	}
	if _, ok := records["Bundle/inner"]; ok {
		t.Error("a nested bundle envelope must not be collected as a record")
	}
	for _, key := range []string{"Patient/p1", "Condition/c1", "Observation/ob1"} {
		if _, ok := records[key]; !ok {
			t.Errorf("missing %s: entries of an id-bearing bundle must still be walked", key)
		}
	}
}

func TestExtractRecords_AdHocNesting(t *testing.T) {
	raw := mustDecode(t, `[
		{"observations": [{"resourceType": "Observation", "id": "ob1"}]},
		{"reports": {"inner": [{"resourceType": "DiagnosticReport", "id": "dr1",
			"contained": [{"resourceType": "Observation", "id": "nested"}]}]}}
	]`)

	records := ExtractRecords(raw)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(records), recordKeys(records))
	}
	if _, ok := records["Observation/ob1"]; !ok {
		t.Error("missing Observation/ob1")
	}
	if _, ok := records["DiagnosticReport/dr1"]; !ok {
		t.Error("missing DiagnosticReport/dr1")
	}
	// Records are leaves: the contained observation must not be collected.
	if _, ok := records["Observation/nested"]; ok {
		t.Error("descendants of a record must not be collected")
	}
}

func TestExtractRecords_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
	}{
		{"nil", nil},
		{"scalar", "hello"},
		{"number", 42.0},
		{"missing id", mustDecode(t, `{"resourceType": "Patient"}`)},
		{"missing type", mustDecode(t, `{"id": "p1"}`)},
		{"empty tag", mustDecode(t, `{"resourceType": "", "id": "p1"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractRecords(tt.raw); len(got) != 0 {
				t.Errorf("got %d records, want 0", len(got))
			}
		})
	}
}

func TestExtractRecords_SharedReferences(t *testing.T) {
	shared := map[string]interface{}{"resourceType": "Observation", "id": "ob1"}
	wrapper := map[string]interface{}{
		"a": []interface{}{shared},
		"b": []interface{}{shared},
	}
	// A self-referential payload must terminate.
	wrapper["self"] = wrapper

	records := ExtractRecords(wrapper)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
}

func TestRecordsOfType(t *testing.T) {
	records := ExtractRecords(mustDecode(t, `{"entry": [
		{"resource": {"resourceType": "Condition", "id": "b"}},
		{"resource": {"resourceType": "Condition", "id": "a"}},
		{"resource": {"resourceType": "Patient", "id": "p1"}}
	]}`))

	conds := RecordsOfType(records, "Condition")
	if len(conds) != 2 {
		t.Fatalf("got %d conditions, want 2", len(conds))
	}
	// Deterministic key order.
	if Str(conds[0], "id") != "a" || Str(conds[1], "id") != "b" {
		t.Errorf("unexpected order: %s, %s", Str(conds[0], "id"), Str(conds[1], "id"))
	}
}

func recordKeys(records map[string]Record) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	return keys
}
