package insights

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var frozenNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func frozenService() *Service {
	s := NewService(zerolog.Nop())
	s.now = func() time.Time { return frozenNow }
	return s
}

func resource(m map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"resource": m}
}

func bundleOf(resources ...map[string]interface{}) map[string]interface{} {
	entries := make([]interface{}, 0, len(resources))
	for _, r := range resources {
		entries = append(entries, resource(r))
	}
	return map[string]interface{}{
		"resourceType": "Bundle",
		"type":         "collection",
		"entry":        entries,
	}
}

func scenarioBundle() map[string]interface{} {
	return bundleOf(
		map[string]interface{}{
			"resourceType": "Patient",
			"id":           "p1",
			"birthDate":    "1958-01-01",
			"gender":       "male",
			"name":         []interface{}{map[string]interface{}{"text": "John Doe"}},
		},
		map[string]interface{}{
			"resourceType":   "Condition",
			"id":             "c1",
			"code":           map[string]interface{}{"text": "Hypertension"},
			"clinicalStatus": map[string]interface{}{"coding": []interface{}{map[string]interface{}{"code": "active"}}},
			"onsetDateTime":  "2022-03-01",
		},
		map[string]interface{}{
			"resourceType": "AllergyIntolerance",
			"id":           "a1",
			"code":         map[string]interface{}{"text": "Penicillin"},
			"criticality":  "high",
		},
		map[string]interface{}{
			"resourceType": "Encounter",
			"id":           "e1",
			"status":       "finished",
			"class":        map[string]interface{}{"code": "EMER"},
			"period":       map[string]interface{}{"start": "2024-06-01T08:00:00Z"},
		},
		map[string]interface{}{
			"resourceType":      "Observation",
			"id":                "v1",
			"status":            "final",
			"category":          []interface{}{map[string]interface{}{"coding": []interface{}{map[string]interface{}{"code": "vital-signs"}}}},
			"code":              map[string]interface{}{"coding": []interface{}{map[string]interface{}{"code": "8480-6", "display": "Systolic blood pressure"}}},
			"effectiveDateTime": "2024-06-10T09:00:00Z",
			"valueQuantity":     map[string]interface{}{"value": 162.0, "unit": "mmHg"},
		},
		map[string]interface{}{
			"resourceType":      "Observation",
			"id":                "v2",
			"status":            "final",
			"category":          []interface{}{map[string]interface{}{"coding": []interface{}{map[string]interface{}{"code": "vital-signs"}}}},
			"code":              map[string]interface{}{"coding": []interface{}{map[string]interface{}{"code": "8480-6", "display": "Systolic blood pressure"}}},
			"effectiveDateTime": "2024-06-05T09:00:00Z",
			"valueQuantity":     map[string]interface{}{"value": 96.0, "unit": "mmHg"},
		},
	)
}

func TestBuildInsights_RoundTripScenario(t *testing.T) {
	svc := frozenService()
	summary, err := svc.BuildInsights(scenarioBundle(), Options{})
	if err != nil {
		t.Fatalf("BuildInsights: %v", err)
	}

	if summary.Version != SchemaVersion {
		t.Errorf("version = %q, want %q", summary.Version, SchemaVersion)
	}
	if summary.Patient.Name != "John Doe" {
		t.Errorf("patient name = %q, want John Doe", summary.Patient.Name)
	}
	if summary.Patient.BirthDate != "1958-01-01" {
		t.Errorf("birthDate = %q", summary.Patient.BirthDate)
	}

	if len(summary.Snapshot.Problems) != 1 || summary.Snapshot.Problems[0].Text != "Hypertension" {
		t.Fatalf("problems = %+v, want one Hypertension row", summary.Snapshot.Problems)
	}
	if !summary.Snapshot.Problems[0].Chronic {
		t.Error("Hypertension should classify as chronic")
	}

	var severe, acute *Banner
	for i := range summary.Banners {
		switch summary.Banners[i].Rule {
		case RuleSevereAllergies:
			severe = &summary.Banners[i]
		case RuleAcuteCare:
			acute = &summary.Banners[i]
		}
	}
	if severe == nil || severe.Severity != SeverityCritical {
		t.Errorf("expected critical severe-allergy banner, got %+v", severe)
	}
	if acute == nil || acute.Severity != SeverityMedium {
		t.Errorf("expected medium acute-utilization banner, got %+v", acute)
	}

	if len(summary.Snapshot.Vitals) != 1 {
		t.Fatalf("vitals = %+v, want one collapsed row", summary.Snapshot.Vitals)
	}
	vital := summary.Snapshot.Vitals[0]
	if vital.Code != "8480-6" {
		t.Errorf("vital code = %q", vital.Code)
	}
	if vital.Latest != "162 mmHg" || vital.Prev != "96 mmHg" {
		t.Errorf("latest/prev = %q/%q", vital.Latest, vital.Prev)
	}
	if vital.Trend != "up" {
		t.Errorf("trend = %q, want up", vital.Trend)
	}
}

func TestBuildInsights_Idempotent(t *testing.T) {
	svc := frozenService()

	first, err := svc.BuildInsights(scenarioBundle(), Options{IncludeResources: true})
	if err != nil {
		t.Fatalf("BuildInsights: %v", err)
	}
	second, err := svc.BuildInsights(scenarioBundle(), Options{IncludeResources: true})
	if err != nil {
		t.Fatalf("BuildInsights: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if !bytes.Equal(a, b) {
		t.Error("two runs over the same bundle must be byte-identical")
	}
}

func TestBuildInsights_EvidenceComplete(t *testing.T) {
	svc := frozenService()
	summary, err := svc.BuildInsights(scenarioBundle(), Options{IncludeResources: true})
	if err != nil {
		t.Fatalf("BuildInsights: %v", err)
	}

	check := func(where string, refs []EvidenceRef) {
		t.Helper()
		for _, ref := range refs {
			key := ref.ResourceType + "/" + ref.ID
			if _, ok := summary.Resources[key]; !ok {
				t.Errorf("%s: evidence %s missing from resources", where, key)
			}
		}
	}

	for _, row := range summary.Snapshot.Problems {
		check("problems", row.Evidence)
	}
	for _, row := range summary.Snapshot.Medications {
		check("medications", row.Evidence)
	}
	for _, row := range summary.Snapshot.Allergies {
		check("allergies", row.Evidence)
	}
	for _, row := range summary.Snapshot.Vitals {
		check("vitals", row.Evidence)
	}
	for _, row := range summary.Snapshot.Labs {
		check("labs", row.Evidence)
	}
	check("utilization", summary.Snapshot.Utilization.Evidence)
	for _, b := range summary.Banners {
		check("banner "+b.Rule, b.Evidence)
	}
	for _, ev := range summary.Timeline {
		check("timeline "+ev.Kind, ev.Evidence)
	}
}

func TestBuildInsights_BareRecordTolerated(t *testing.T) {
	svc := frozenService()
	summary, err := svc.BuildInsights(bundleOf(
		map[string]interface{}{"resourceType": "Observation", "id": "bare"},
		map[string]interface{}{"resourceType": "Condition", "id": "bare-cond"},
	), Options{})
	if err != nil {
		t.Fatalf("BuildInsights: %v", err)
	}

	// Bare observation satisfies no classification predicate.
	if len(summary.Snapshot.Vitals) != 0 || len(summary.Snapshot.Labs) != 0 ||
		len(summary.Snapshot.SocialHistory) != 0 || len(summary.Snapshot.MentalStatus) != 0 {
		t.Errorf("bare observation must not be classified: %+v", summary.Snapshot)
	}
	// Bare condition still passes the type filter.
	if len(summary.Snapshot.Problems) != 1 {
		t.Fatalf("problems = %+v, want fallback row", summary.Snapshot.Problems)
	}
	if summary.Snapshot.Problems[0].Text != "Condition" {
		t.Errorf("fallback text = %q", summary.Snapshot.Problems[0].Text)
	}
}

func TestBuildInsights_EmptyAndNilInput(t *testing.T) {
	svc := frozenService()

	if _, err := svc.BuildInsights(nil, Options{}); err == nil {
		t.Error("nil bundle should error")
	}

	summary, err := svc.BuildInsights(map[string]interface{}{"resourceType": "Bundle"}, Options{})
	if err != nil {
		t.Fatalf("BuildInsights: %v", err)
	}
	if len(summary.Banners) != 0 || len(summary.Timeline) != 0 {
		t.Error("empty bundle must yield empty but valid summary")
	}
	if summary.Resources != nil {
		t.Error("resources must be omitted unless requested")
	}
}

func TestBuildInsights_SortInvariant(t *testing.T) {
	svc := frozenService()
	bundle := bundleOf(
		map[string]interface{}{"resourceType": "Condition", "id": "old", "onsetDateTime": "2019-01-01", "code": map[string]interface{}{"text": "Old"}},
		map[string]interface{}{"resourceType": "Condition", "id": "dateless", "code": map[string]interface{}{"text": "Dateless"}},
		map[string]interface{}{"resourceType": "Condition", "id": "new", "onsetDateTime": "2024-01-01", "code": map[string]interface{}{"text": "New"}},
	)
	summary, err := svc.BuildInsights(bundle, Options{})
	if err != nil {
		t.Fatalf("BuildInsights: %v", err)
	}
	rows := summary.Snapshot.Problems
	if len(rows) != 3 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Text != "New" || rows[1].Text != "Old" || rows[2].Text != "Dateless" {
		t.Errorf("order = %s, %s, %s; want New, Old, Dateless", rows[0].Text, rows[1].Text, rows[2].Text)
	}
}
