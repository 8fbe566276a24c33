package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

var documentDateCandidates = []fhir.DateCandidate{
	func(r fhir.Record) string { return fhir.Str(r, "date") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["context"]), "start") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["meta"]), "lastUpdated") },
}

// extractDocuments projects DocumentReference records into rows, most
// recent first.
func extractDocuments(records map[string]fhir.Record) []DocumentRow {
	scoredRows := make([]scored[DocumentRow], 0)
	for _, rec := range fhir.RecordsOfType(records, "DocumentReference") {
		date := fhir.FirstDate(rec, documentDateCandidates)
		title := fhir.Str(rec, "description")
		if title == "" {
			title = fhir.ConceptText(rec["type"], "Document")
		}
		row := DocumentRow{
			Title:    title,
			Type:     fhir.ConceptText(rec["type"], ""),
			Date:     date,
			Evidence: []EvidenceRef{recordEvidence(rec)},
		}
		scoredRows = append(scoredRows, newScored(row, date))
	}
	return sortedRows(scoredRows)
}
