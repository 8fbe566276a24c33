package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

var immunizationDateCandidates = []fhir.DateCandidate{
	func(r fhir.Record) string { return fhir.Str(r, "occurrenceDateTime") },
	func(r fhir.Record) string { return fhir.Str(r, "date") },
	func(r fhir.Record) string { return fhir.Str(r, "recorded") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["meta"]), "lastUpdated") },
}

// extractImmunizations projects Immunization records into rows, most
// recent first.
func extractImmunizations(records map[string]fhir.Record) []ImmunizationRow {
	scoredRows := make([]scored[ImmunizationRow], 0)
	for _, rec := range fhir.RecordsOfType(records, "Immunization") {
		date := fhir.FirstDate(rec, immunizationDateCandidates)
		row := ImmunizationRow{
			Text:     fhir.ConceptText(rec["vaccineCode"], "Immunization"),
			Status:   fhir.Str(rec, "status"),
			Date:     date,
			Evidence: []EvidenceRef{recordEvidence(rec)},
		}
		scoredRows = append(scoredRows, newScored(row, date))
	}
	return sortedRows(scoredRows)
}
