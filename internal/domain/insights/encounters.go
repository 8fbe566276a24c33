package insights

import (
	"time"

	"github.com/clinsight/insights/internal/platform/fhir"
)

// utilizationWindowDays is the trailing window for utilization counts.
const utilizationWindowDays = 365

// acuteWindowDays is the shorter window the banner synthesizer uses.
const acuteWindowDays = 30

// utilizationEvidenceCap bounds the encounter refs attached to the block.
const utilizationEvidenceCap = 10

var encounterDateCandidates = []fhir.DateCandidate{
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["period"]), "start") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["period"]), "end") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["meta"]), "lastUpdated") },
}

// encounterClassText flattens the encounter class, which arrives either as
// an R4 Coding, a CodeableConcept, or a bare string.
func encounterClassText(rec fhir.Record) string {
	switch class := rec["class"].(type) {
	case string:
		return class
	case map[string]interface{}:
		if s := fhir.Str(class, "code"); s != "" {
			return s
		}
		if s := fhir.Str(class, "display"); s != "" {
			return s
		}
		return fhir.ConceptText(class, "")
	}
	return ""
}

func isEDEncounter(rec fhir.Record) bool {
	return fhir.ContainsAny(encounterClassText(rec), edClassTerms)
}

func isInpatientEncounter(rec fhir.Record) bool {
	return fhir.ContainsAny(encounterClassText(rec), inpatientClassTerms)
}

// encounterLabel names an encounter for display: the first type concept,
// else the class, else a literal.
func encounterLabel(rec fhir.Record) string {
	if t := fhir.FirstMap(rec["type"]); t != nil {
		if s := fhir.ConceptText(t, ""); s != "" {
			return s
		}
	}
	if s := encounterClassText(rec); s != "" {
		return s
	}
	return "Encounter"
}

// withinTrailingDays reports whether the record's resolvable date falls in
// the trailing window ending at now.
func withinTrailingDays(rec fhir.Record, now time.Time, days int) bool {
	t, ok := fhir.ParseDate(fhir.FirstDate(rec, encounterDateCandidates))
	if !ok {
		return false
	}
	return t.After(now.AddDate(0, 0, -days)) && !t.After(now)
}

// extractUtilization counts ED and inpatient encounters inside the
// trailing 365-day window.
func extractUtilization(records map[string]fhir.Record, now time.Time) Utilization {
	util := Utilization{WindowDays: utilizationWindowDays, Evidence: []EvidenceRef{}}
	for _, rec := range fhir.RecordsOfType(records, "Encounter") {
		if !withinTrailingDays(rec, now, utilizationWindowDays) {
			continue
		}
		ed := isEDEncounter(rec)
		inpatient := isInpatientEncounter(rec)
		if !ed && !inpatient {
			continue
		}
		if ed {
			util.EDVisits++
		}
		if inpatient {
			util.InpatientVisits++
		}
		if len(util.Evidence) < utilizationEvidenceCap {
			util.Evidence = appendEvidence(util.Evidence, recordEvidence(rec))
		}
	}
	return util
}

// acuteEncounter is a 30-day-window emergency or inpatient visit, consumed
// by the banner synthesizer.
type acuteEncounter struct {
	Label     string
	Status    string
	Date      string
	ED        bool
	Inpatient bool
	Evidence  EvidenceRef
}

// recentAcuteEncounters returns the 30-day acute visits, most recent first.
func recentAcuteEncounters(records map[string]fhir.Record, now time.Time) []acuteEncounter {
	scoredRows := make([]scored[acuteEncounter], 0)
	for _, rec := range fhir.RecordsOfType(records, "Encounter") {
		if !withinTrailingDays(rec, now, acuteWindowDays) {
			continue
		}
		ed := isEDEncounter(rec)
		inpatient := isInpatientEncounter(rec)
		if !ed && !inpatient {
			continue
		}
		date := fhir.FirstDate(rec, encounterDateCandidates)
		enc := acuteEncounter{
			Label:     encounterLabel(rec),
			Status:    fhir.Str(rec, "status"),
			Date:      date,
			ED:        ed,
			Inpatient: inpatient,
			Evidence:  recordEvidence(rec),
		}
		scoredRows = append(scoredRows, newScored(enc, date))
	}
	return sortedRows(scoredRows)
}
