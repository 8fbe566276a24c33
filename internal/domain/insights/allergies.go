package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

var allergyDateCandidates = []fhir.DateCandidate{
	func(r fhir.Record) string { return fhir.Str(r, "onsetDateTime") },
	func(r fhir.Record) string { return fhir.Str(r, "recordedDate") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["meta"]), "lastUpdated") },
}

// extractAllergies projects AllergyIntolerance records into rows, most
// recent first.
func extractAllergies(records map[string]fhir.Record) []AllergyRow {
	scoredRows := make([]scored[AllergyRow], 0)
	for _, rec := range fhir.RecordsOfType(records, "AllergyIntolerance") {
		row := AllergyRow{
			Text:        fhir.ConceptText(rec["code"], "Allergy"),
			Criticality: allergyCriticality(rec),
			Evidence:    []EvidenceRef{recordEvidence(rec)},
		}
		scoredRows = append(scoredRows, newScored(row, fhir.FirstDate(rec, allergyDateCandidates)))
	}
	return sortedRows(scoredRows)
}

// allergyCriticality prefers the record-level criticality code, falling
// back to the first reaction's severity.
func allergyCriticality(rec fhir.Record) string {
	if s := fhir.Str(rec, "criticality"); s != "" {
		return s
	}
	if reaction := fhir.FirstMap(rec["reaction"]); reaction != nil {
		return fhir.Str(reaction, "severity")
	}
	return ""
}

// isSevereAllergy reports whether a row's criticality reads as severe.
func isSevereAllergy(row AllergyRow) bool {
	return fhir.ContainsAny(row.Criticality, severeAllergyTerms)
}
