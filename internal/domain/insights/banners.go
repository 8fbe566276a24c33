package insights

import (
	"fmt"
)

// chronicEvidenceCap bounds the chronic-burden banner's evidence list.
const (
	chronicPerCategoryCap = 6
	chronicEvidenceCap    = 10
)

// synthesizeBanners runs the fixed rule set, in priority order, over the
// already-extracted categories. The order itself is the ranking; the list
// is never re-sorted. At most MaxBanners survive.
func synthesizeBanners(snap Snapshot, acute []acuteEncounter) []Banner {
	banners := make([]Banner, 0, MaxBanners)

	rules := []func(Snapshot, []acuteEncounter) *Banner{
		abnormalLabsBanner,
		abnormalVitalsBanner,
		severeAllergiesBanner,
		acuteUtilizationBanner,
		nonFinalResultsBanner,
		chronicBurdenBanner,
	}
	for _, rule := range rules {
		if b := rule(snap, acute); b != nil {
			banners = append(banners, *b)
		}
		if len(banners) >= MaxBanners {
			banners = banners[:MaxBanners]
			break
		}
	}
	return banners
}

func abnormalLabsBanner(snap Snapshot, _ []acuteEncounter) *Banner {
	var flagged []LabRow
	critical := false
	for _, row := range snap.Labs {
		if row.Flag == "" {
			continue
		}
		flagged = append(flagged, row)
		if row.Flag == "Critical" {
			critical = true
		}
	}
	if len(flagged) == 0 {
		return nil
	}
	severity := SeverityHigh
	if critical {
		severity = SeverityCritical
	}
	// Rows are already sorted most recent first.
	latest := flagged[0]
	b := &Banner{
		Rule:       RuleAbnormalLabs,
		Severity:   severity,
		Title:      "Abnormal lab results",
		Detail:     fmt.Sprintf("%s: %s (%s)", latest.Label, latest.Value, latest.Flag),
		OccurredAt: latest.Date,
		Evidence:   []EvidenceRef{},
	}
	for _, row := range flagged {
		b.Evidence = appendEvidence(b.Evidence, row.Evidence...)
	}
	return b
}

func abnormalVitalsBanner(snap Snapshot, _ []acuteEncounter) *Banner {
	var flagged []VitalRow
	for _, row := range snap.Vitals {
		if row.Flag != "" {
			flagged = append(flagged, row)
		}
	}
	if len(flagged) == 0 {
		return nil
	}
	latest := flagged[0]
	b := &Banner{
		Rule:       RuleAbnormalVitals,
		Severity:   SeverityHigh,
		Title:      "Abnormal vital signs",
		Detail:     fmt.Sprintf("%s: %s (%s)", latest.Label, latest.Latest, latest.Flag),
		OccurredAt: latest.Date,
		Evidence:   []EvidenceRef{},
	}
	for _, row := range flagged {
		b.Evidence = appendEvidence(b.Evidence, row.Evidence...)
	}
	return b
}

func severeAllergiesBanner(snap Snapshot, _ []acuteEncounter) *Banner {
	var names []string
	ev := []EvidenceRef{}
	for _, row := range snap.Allergies {
		if !isSevereAllergy(row) {
			continue
		}
		names = append(names, row.Text)
		ev = appendEvidence(ev, row.Evidence...)
	}
	if len(names) == 0 {
		return nil
	}
	detail := names[0]
	if len(names) > 1 {
		detail = fmt.Sprintf("%s and %d more", names[0], len(names)-1)
	}
	return &Banner{
		Rule:     RuleSevereAllergies,
		Severity: SeverityCritical,
		Title:    "Severe allergy on record",
		Detail:   detail,
		Evidence: ev,
	}
}

func acuteUtilizationBanner(_ Snapshot, acute []acuteEncounter) *Banner {
	if len(acute) == 0 {
		return nil
	}
	ed, inpatient := 0, 0
	ev := []EvidenceRef{}
	for _, enc := range acute {
		if enc.ED {
			ed++
		}
		if enc.Inpatient {
			inpatient++
		}
		ev = appendEvidence(ev, enc.Evidence)
	}
	latest := acute[0]
	return &Banner{
		Rule:     RuleAcuteCare,
		Severity: SeverityMedium,
		Title:    "Recent acute care",
		Detail: fmt.Sprintf("%d ED and %d inpatient visits in the last %d days; most recent: %s (%s)",
			ed, inpatient, acuteWindowDays, latest.Label, latest.Status),
		OccurredAt: latest.Date,
		Evidence:   ev,
	}
}

func nonFinalResultsBanner(snap Snapshot, _ []acuteEncounter) *Banner {
	ev := []EvidenceRef{}
	count := 0
	for _, row := range snap.Labs {
		if row.Status != "" && row.Status != "final" {
			count++
			ev = appendEvidence(ev, row.Evidence...)
		}
	}
	for _, row := range snap.Vitals {
		if row.Status != "" && row.Status != "final" {
			count++
			ev = appendEvidence(ev, row.Evidence...)
		}
	}
	if count == 0 {
		return nil
	}
	return &Banner{
		Rule:     RuleNonFinalResults,
		Severity: SeverityInfo,
		Title:    "Results pending finalization",
		Detail:   fmt.Sprintf("%d result(s) not yet final", count),
		Evidence: ev,
	}
}

func chronicBurdenBanner(snap Snapshot, _ []acuteEncounter) *Banner {
	problems := 0
	meds := 0
	ev := []EvidenceRef{}
	for _, row := range snap.Problems {
		if !row.Chronic || problems >= chronicPerCategoryCap {
			continue
		}
		problems++
		ev = appendEvidence(ev, row.Evidence...)
	}
	for _, row := range snap.Medications {
		if !row.Chronic || meds >= chronicPerCategoryCap {
			continue
		}
		meds++
		ev = appendEvidence(ev, row.Evidence...)
	}
	if problems == 0 && meds == 0 {
		return nil
	}
	if len(ev) > chronicEvidenceCap {
		ev = ev[:chronicEvidenceCap]
	}
	return &Banner{
		Rule:     RuleChronicBurden,
		Severity: SeverityInfo,
		Title:    "Chronic condition burden",
		Detail:   fmt.Sprintf("%d chronic problem(s), %d chronic medication(s)", chronicProblemCount(snap), chronicMedicationCount(snap)),
		Evidence: ev,
	}
}

func chronicProblemCount(snap Snapshot) int {
	n := 0
	for _, row := range snap.Problems {
		if row.Chronic {
			n++
		}
	}
	return n
}

func chronicMedicationCount(snap Snapshot) int {
	n := 0
	for _, row := range snap.Medications {
		if row.Chronic {
			n++
		}
	}
	return n
}
