package insights

import (
	"testing"

	"github.com/clinsight/insights/internal/platform/fhir"
)

func TestExtractProblems(t *testing.T) {
	records := recordsOf(
		fhir.Record{
			"resourceType":   "Condition",
			"id":             "c1",
			"code":           map[string]interface{}{"text": "Type 2 diabetes mellitus"},
			"clinicalStatus": map[string]interface{}{"coding": []interface{}{map[string]interface{}{"code": "active"}}},
			"onsetDateTime":  "2020-05-01",
		},
		fhir.Record{
			"resourceType": "Condition",
			"id":           "c2",
			"code":         map[string]interface{}{"text": "Ankle sprain"},
			"recordedDate": "2024-02-01",
		},
	)

	rows := extractProblems(records)
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Text != "Ankle sprain" {
		t.Errorf("row[0] = %+v, want most recent first", rows[0])
	}
	diabetes := rows[1]
	if !diabetes.Chronic {
		t.Error("diabetes should classify as chronic")
	}
	if rows[0].Chronic {
		t.Error("ankle sprain should not classify as chronic")
	}
	if diabetes.Status != "active" {
		t.Errorf("status = %q", diabetes.Status)
	}
	if diabetes.Onset != "2020-05-01" {
		t.Errorf("onset = %q", diabetes.Onset)
	}
	if rows[0].Date != "2024-02-01" {
		t.Errorf("date = %q, want the recordedDate fallback", rows[0].Date)
	}
}

func TestIsChronicCondition(t *testing.T) {
	tests := []struct {
		name string
		rec  fhir.Record
		want bool
	}{
		{"coded display", fhir.Record{"code": map[string]interface{}{"coding": []interface{}{map[string]interface{}{"display": "Chronic kidney disease stage 3"}}}}, true},
		{"free text field", fhir.Record{"text": "History of CHF"}, true},
		{"case insensitive", fhir.Record{"code": map[string]interface{}{"text": "HYPERTENSION"}}, true},
		{"acute", fhir.Record{"code": map[string]interface{}{"text": "Fracture of radius"}}, false},
		{"empty", fhir.Record{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isChronicCondition(tt.rec); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractSocialAndMentalStatus(t *testing.T) {
	records := recordsOf(
		fhir.Record{
			"resourceType":      "Observation",
			"id":                "s1",
			"code":              map[string]interface{}{"text": "Tobacco smoking status"},
			"valueCodeableConcept": map[string]interface{}{"text": "Former smoker"},
			"effectiveDateTime": "2024-01-01",
		},
		fhir.Record{
			"resourceType":      "Observation",
			"id":                "m1",
			"status":            "final",
			"code":              map[string]interface{}{"coding": []interface{}{map[string]interface{}{"code": "44261-6", "display": "PHQ-9 total score"}}},
			"valueQuantity":     map[string]interface{}{"value": 12.0},
			"effectiveDateTime": "2024-02-01",
		},
	)

	social := extractSocialHistory(records)
	if len(social) != 1 || social[0].Value != "Former smoker" {
		t.Errorf("social = %+v", social)
	}
	mental := extractMentalStatus(records)
	if len(mental) != 1 || mental[0].Value != "12" {
		t.Errorf("mental = %+v", mental)
	}
	if mental[0].Label != "PHQ-9 total score" {
		t.Errorf("label = %q", mental[0].Label)
	}
}

func TestExtractPatient(t *testing.T) {
	records := recordsOf(fhir.Record{
		"resourceType": "Patient",
		"id":           "p1",
		"birthDate":    "1970-06-15",
		"gender":       "female",
		"name": []interface{}{map[string]interface{}{
			"given":  []interface{}{"Jane", "Q"},
			"family": "Roe",
		}},
		"identifier": []interface{}{
			map[string]interface{}{"system": "http://hospital.example/mrn", "value": "12345"},
			map[string]interface{}{"value": "raw-id"},
			map[string]interface{}{"system": "http://empty.example"},
		},
	})

	p := extractPatient(records)
	if p.Name != "Jane Q Roe" {
		t.Errorf("name = %q, want assembled from structured parts", p.Name)
	}
	if p.Sex != "female" || p.BirthDate != "1970-06-15" {
		t.Errorf("demographics = %+v", p)
	}
	if len(p.Identifiers) != 2 {
		t.Fatalf("identifiers = %+v", p.Identifiers)
	}
	if p.Identifiers[0] != "http://hospital.example/mrn|12345" || p.Identifiers[1] != "raw-id" {
		t.Errorf("identifiers = %+v", p.Identifiers)
	}
}

func TestExtractPatient_NoPatientRecord(t *testing.T) {
	p := extractPatient(recordsOf())
	if p.ID != "" || p.Name != "" {
		t.Errorf("got %+v, want zero value", p)
	}
}

func TestExtractAllergies_CriticalityFallback(t *testing.T) {
	records := recordsOf(
		fhir.Record{
			"resourceType": "AllergyIntolerance",
			"id":           "a1",
			"code":         map[string]interface{}{"text": "Latex"},
			"reaction":     []interface{}{map[string]interface{}{"severity": "severe"}},
		},
	)
	rows := extractAllergies(records)
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Criticality != "severe" {
		t.Errorf("criticality = %q, want the reaction severity fallback", rows[0].Criticality)
	}
	if !isSevereAllergy(rows[0]) {
		t.Error("severe reaction should satisfy the severe predicate")
	}
}
