package insights

import (
	"sort"

	"github.com/clinsight/insights/internal/platform/fhir"
)

// buildTimeline projects qualifying records from every category into one
// chronological event list, newest first. Records without any resolvable
// date cannot be placed and are skipped.
func buildTimeline(records map[string]fhir.Record, snap Snapshot, vitals []vitalOccurrence) []TimelineEvent {
	events := make([]TimelineEvent, 0)

	for _, rec := range fhir.RecordsOfType(records, "Encounter") {
		date := fhir.FirstDate(rec, encounterDateCandidates)
		if date == "" {
			continue
		}
		ev := TimelineEvent{
			At:       date,
			Kind:     KindEncounter,
			Label:    encounterLabel(rec),
			Summary:  fhir.Str(rec, "status"),
			Evidence: []EvidenceRef{recordEvidence(rec)},
		}
		if isEDEncounter(rec) || isInpatientEncounter(rec) {
			ev.Severity = SeverityMedium
		}
		events = append(events, ev)
	}

	for _, row := range snap.Labs {
		if row.Date == "" {
			continue
		}
		ev := TimelineEvent{
			At:       row.Date,
			Kind:     KindLab,
			Label:    row.Label,
			Summary:  row.Value,
			Evidence: row.Evidence,
		}
		switch row.Flag {
		case "Critical":
			ev.Severity = SeverityCritical
		case "High", "Low", "Abnormal":
			ev.Severity = SeverityHigh
		}
		events = append(events, ev)
	}

	// Vitals use the raw occurrences so every measurement lands on the
	// timeline, not just the collapsed latest/prev pair.
	for _, occ := range vitals {
		if occ.Date == "" {
			continue
		}
		events = append(events, TimelineEvent{
			At:       occ.Date,
			Kind:     KindVital,
			Label:    occ.Label,
			Summary:  occ.Value,
			Evidence: []EvidenceRef{occ.Evidence},
		})
	}

	for _, row := range snap.Medications {
		if row.Date == "" {
			continue
		}
		events = append(events, TimelineEvent{
			At:       row.Date,
			Kind:     KindMed,
			Label:    row.Text,
			Summary:  row.Dosage,
			Evidence: row.Evidence,
		})
	}

	for _, row := range snap.Problems {
		if row.Date == "" {
			continue
		}
		events = append(events, TimelineEvent{
			At:       row.Date,
			Kind:     KindProblem,
			Label:    row.Text,
			Summary:  row.Status,
			Evidence: row.Evidence,
		})
	}

	for _, row := range snap.Procedures {
		if row.Date == "" {
			continue
		}
		events = append(events, TimelineEvent{
			At:       row.Date,
			Kind:     KindProcedure,
			Label:    row.Text,
			Summary:  row.Status,
			Evidence: row.Evidence,
		})
	}

	for _, row := range snap.Documents {
		if row.Date == "" {
			continue
		}
		events = append(events, TimelineEvent{
			At:       row.Date,
			Kind:     KindDocument,
			Label:    row.Title,
			Summary:  row.Type,
			Evidence: row.Evidence,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return fhir.DateScore(events[i].At) > fhir.DateScore(events[j].At)
	})
	return events
}

// Ascending returns a copy of the timeline in oldest-first order.
// Window-relative queries (events after an anchor) need ascending order
// while presentation wants descending; both views come from the same data.
func Ascending(events []TimelineEvent) []TimelineEvent {
	out := make([]TimelineEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return fhir.DateScore(out[i].At) < fhir.DateScore(out[j].At)
	})
	return out
}

// EventsBetween returns the events with a timestamp inside [from, to],
// oldest first.
func EventsBetween(events []TimelineEvent, from, to string) []TimelineEvent {
	lo, hi := fhir.DateScore(from), fhir.DateScore(to)
	out := make([]TimelineEvent, 0)
	for _, ev := range Ascending(events) {
		score := fhir.DateScore(ev.At)
		if score == 0 || score < lo || score > hi {
			continue
		}
		out = append(out, ev)
	}
	return out
}
