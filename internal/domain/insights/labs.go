package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

var reportDateCandidates = []fhir.DateCandidate{
	func(r fhir.Record) string { return fhir.Str(r, "effectiveDateTime") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["effectivePeriod"]), "end") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["effectivePeriod"]), "start") },
	func(r fhir.Record) string { return fhir.Str(r, "issued") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["meta"]), "lastUpdated") },
}

// extractLabs projects lab-classified observations plus the observations
// referenced by DiagnosticReport containers into rows, most recent first.
func extractLabs(records map[string]fhir.Record) []LabRow {
	scoredRows := make([]scored[LabRow], 0)
	emitted := make(map[string]bool)

	for _, rec := range fhir.RecordsOfType(records, "Observation") {
		if !isLabResult(rec) {
			continue
		}
		date := fhir.EffectiveDate(rec)
		row := LabRow{
			Label:    fhir.ConceptText(rec["code"], "Lab result"),
			Value:    fhir.ValueText(rec),
			Flag:     abnormalFlag(rec, false),
			Status:   fhir.Str(rec, "status"),
			Date:     date,
			Evidence: []EvidenceRef{recordEvidence(rec)},
		}
		emitted[fhir.Key("Observation", fhir.Str(rec, "id"))] = true
		scoredRows = append(scoredRows, newScored(row, date))
	}

	// Container records: a report whose results reference observations.
	// Each referenced observation with a concrete value or an abnormal flag
	// yields one row carrying evidence for both container and observation.
	for _, report := range fhir.RecordsOfType(records, "DiagnosticReport") {
		for _, result := range fhir.Slice(report["result"]) {
			rt, id := fhir.ReferenceTarget(result)
			if rt == "" {
				rt = "Observation"
			}
			key := fhir.Key(rt, id)
			if emitted[key] {
				continue
			}
			obs, ok := records[key]
			if !ok {
				continue
			}
			value := fhir.ValueText(obs)
			flag := abnormalFlag(obs, false)
			if value == "" && flag == "" {
				continue
			}
			label := fhir.ConceptText(obs["code"], "")
			if label == "" {
				label = fhir.ConceptText(report["code"], "Lab result")
			}
			date := fhir.EffectiveDate(obs)
			if date == "" {
				date = fhir.FirstDate(report, reportDateCandidates)
			}
			row := LabRow{
				Label:    label,
				Value:    value,
				Flag:     flag,
				Status:   fhir.Str(obs, "status"),
				Date:     date,
				Evidence: appendEvidence([]EvidenceRef{recordEvidence(report)}, recordEvidence(obs)),
			}
			emitted[key] = true
			scoredRows = append(scoredRows, newScored(row, date))
		}
	}

	return sortedRows(scoredRows)
}
