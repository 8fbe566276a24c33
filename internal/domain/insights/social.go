package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

// extractSocialHistory projects social-history observations (smoking,
// tobacco, alcohol) into rows, most recent first.
func extractSocialHistory(records map[string]fhir.Record) []SocialHistoryRow {
	scoredRows := make([]scored[SocialHistoryRow], 0)
	for _, rec := range fhir.RecordsOfType(records, "Observation") {
		if !isSocialHistory(rec) {
			continue
		}
		date := fhir.EffectiveDate(rec)
		row := SocialHistoryRow{
			Label:    fhir.ConceptText(rec["code"], "Social history"),
			Value:    fhir.ValueText(rec),
			Date:     date,
			Evidence: []EvidenceRef{recordEvidence(rec)},
		}
		scoredRows = append(scoredRows, newScored(row, date))
	}
	return sortedRows(scoredRows)
}

// extractMentalStatus projects PHQ-9 and related behavioral observations
// into rows, most recent first.
func extractMentalStatus(records map[string]fhir.Record) []MentalStatusRow {
	scoredRows := make([]scored[MentalStatusRow], 0)
	for _, rec := range fhir.RecordsOfType(records, "Observation") {
		if !isMentalStatus(rec) {
			continue
		}
		date := fhir.EffectiveDate(rec)
		row := MentalStatusRow{
			Label:    fhir.ConceptText(rec["code"], "Mental status"),
			Value:    fhir.ValueText(rec),
			Status:   fhir.Str(rec, "status"),
			Date:     date,
			Evidence: []EvidenceRef{recordEvidence(rec)},
		}
		scoredRows = append(scoredRows, newScored(row, date))
	}
	return sortedRows(scoredRows)
}
