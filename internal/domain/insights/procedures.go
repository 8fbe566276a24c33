package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

var procedureDateCandidates = []fhir.DateCandidate{
	func(r fhir.Record) string { return fhir.Str(r, "performedDateTime") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["performedPeriod"]), "end") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["performedPeriod"]), "start") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["meta"]), "lastUpdated") },
}

// extractProcedures projects Procedure records into rows, most recent first.
func extractProcedures(records map[string]fhir.Record) []ProcedureRow {
	scoredRows := make([]scored[ProcedureRow], 0)
	for _, rec := range fhir.RecordsOfType(records, "Procedure") {
		date := fhir.FirstDate(rec, procedureDateCandidates)
		row := ProcedureRow{
			Text:     fhir.ConceptText(rec["code"], "Procedure"),
			Status:   fhir.Str(rec, "status"),
			Date:     date,
			Evidence: []EvidenceRef{recordEvidence(rec)},
		}
		scoredRows = append(scoredRows, newScored(row, date))
	}
	return sortedRows(scoredRows)
}
