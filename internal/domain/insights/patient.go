package insights

import (
	"strings"

	"github.com/clinsight/insights/internal/platform/fhir"
)

// extractPatient derives the demographic identity block from the first
// Patient record in the map. Missing fields stay empty.
func extractPatient(records map[string]fhir.Record) PatientSummary {
	patients := fhir.RecordsOfType(records, "Patient")
	if len(patients) == 0 {
		return PatientSummary{}
	}
	rec := patients[0]
	return PatientSummary{
		ID:          fhir.Str(rec, "id"),
		Name:        patientName(rec),
		BirthDate:   fhir.Str(rec, "birthDate"),
		Sex:         fhir.Str(rec, "gender"),
		Identifiers: patientIdentifiers(rec),
	}
}

// patientName prefers the name's text form, assembling "Given Family" from
// the structured parts when no text exists.
func patientName(rec fhir.Record) string {
	name := fhir.FirstMap(rec["name"])
	if name == nil {
		return ""
	}
	if s := fhir.Str(name, "text"); s != "" {
		return s
	}
	parts := make([]string, 0, 2)
	for _, g := range fhir.Slice(name["given"]) {
		if s, ok := g.(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	if family := fhir.Str(name, "family"); family != "" {
		parts = append(parts, family)
	}
	return strings.Join(parts, " ")
}

// patientIdentifiers flattens identifier values ("system|value" when a
// system is present).
func patientIdentifiers(rec fhir.Record) []string {
	var out []string
	for _, el := range fhir.Slice(rec["identifier"]) {
		m := fhir.Map(el)
		value := fhir.Str(m, "value")
		if value == "" {
			continue
		}
		if system := fhir.Str(m, "system"); system != "" {
			out = append(out, system+"|"+value)
			continue
		}
		out = append(out, value)
	}
	return out
}
