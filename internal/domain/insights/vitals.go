package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

// vitalOccurrence is one vital-classified observation before the per-type
// collapse. The timeline consumes occurrences; the snapshot consumes the
// collapsed rows.
type vitalOccurrence struct {
	Code     string
	Label    string
	Value    string
	Flag     string
	Status   string
	Date     string
	Evidence EvidenceRef
}

// vitalOccurrences gathers all vital-classified observations, most recent
// first.
func vitalOccurrences(records map[string]fhir.Record) []vitalOccurrence {
	scoredRows := make([]scored[vitalOccurrence], 0)
	for _, rec := range fhir.RecordsOfType(records, "Observation") {
		if !isVitalSign(rec) {
			continue
		}
		date := fhir.EffectiveDate(rec)
		occ := vitalOccurrence{
			Code:     fhir.ConceptCode(rec["code"]),
			Label:    fhir.ConceptText(rec["code"], "Vital sign"),
			Value:    fhir.ValueText(rec),
			Flag:     abnormalFlag(rec, true),
			Status:   fhir.Str(rec, "status"),
			Date:     date,
			Evidence: recordEvidence(rec),
		}
		scoredRows = append(scoredRows, newScored(occ, date))
	}
	return sortedRows(scoredRows)
}

// collapseVitals keeps one row per distinct vital type, identified by code
// or, absent a code, by label. The first (most recent) occurrence seeds the
// latest value; the second sets prev and the trend; any further occurrence
// of the same type is ignored.
func collapseVitals(occurrences []vitalOccurrence) []VitalRow {
	rows := make([]VitalRow, 0)
	index := make(map[string]int)
	count := make(map[string]int)

	for _, occ := range occurrences {
		key := occ.Code
		if key == "" {
			key = occ.Label
		}
		count[key]++
		switch count[key] {
		case 1:
			index[key] = len(rows)
			rows = append(rows, VitalRow{
				Label:    occ.Label,
				Code:     occ.Code,
				Latest:   occ.Value,
				Flag:     occ.Flag,
				Status:   occ.Status,
				Date:     occ.Date,
				Evidence: []EvidenceRef{occ.Evidence},
			})
		case 2:
			at := index[key]
			rows[at].Prev = occ.Value
			rows[at].Trend = trendOf(rows[at].Latest, occ.Value)
			rows[at].Evidence = appendEvidence(rows[at].Evidence, occ.Evidence)
		}
		// Third and later occurrences never touch the row.
	}
	return rows
}

// trendOf compares the parsed numeric content of latest vs prev. When
// either side has no number the trend stays unset.
func trendOf(latest, prev string) string {
	a, okA := fhir.Number(latest)
	b, okB := fhir.Number(prev)
	if !okA || !okB {
		return ""
	}
	switch {
	case a > b:
		return "up"
	case a < b:
		return "down"
	default:
		return "flat"
	}
}

// extractVitals is the snapshot-facing entry: occurrences collapsed into
// one row per vital type.
func extractVitals(records map[string]fhir.Record) []VitalRow {
	return collapseVitals(vitalOccurrences(records))
}
