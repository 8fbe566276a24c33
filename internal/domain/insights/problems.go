package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

var problemDateCandidates = []fhir.DateCandidate{
	func(r fhir.Record) string { return fhir.Str(r, "onsetDateTime") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["onsetPeriod"]), "start") },
	func(r fhir.Record) string { return fhir.Str(r, "recordedDate") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["meta"]), "lastUpdated") },
}

// extractProblems projects Condition records into problem rows, most
// recent first.
func extractProblems(records map[string]fhir.Record) []ProblemRow {
	scoredRows := make([]scored[ProblemRow], 0)
	for _, rec := range fhir.RecordsOfType(records, "Condition") {
		row := ProblemRow{
			Text:     fhir.ConceptText(rec["code"], "Condition"),
			Status:   fhir.ConceptText(rec["clinicalStatus"], ""),
			Onset:    fhir.Str(rec, "onsetDateTime"),
			Date:     fhir.FirstDate(rec, problemDateCandidates),
			Chronic:  isChronicCondition(rec),
			Evidence: []EvidenceRef{recordEvidence(rec)},
		}
		scoredRows = append(scoredRows, newScored(row, row.Date))
	}
	return sortedRows(scoredRows)
}

// isChronicCondition matches the coded display or free text of a condition
// against the chronic-disease term table.
func isChronicCondition(rec fhir.Record) bool {
	if fhir.ConceptMatches(rec["code"], chronicConditionTerms) {
		return true
	}
	return fhir.ContainsAny(fhir.Str(rec, "text"), chronicConditionTerms)
}
