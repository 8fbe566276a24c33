package insights

import (
	"github.com/clinsight/insights/internal/platform/fhir"
)

// medicationRecordTypes are the order-bearing medication resource kinds.
var medicationRecordTypes = []string{"MedicationRequest", "MedicationStatement", "MedicationDispense"}

var medicationDateCandidates = []fhir.DateCandidate{
	func(r fhir.Record) string { return fhir.Str(r, "authoredOn") },
	func(r fhir.Record) string { return fhir.Str(r, "effectiveDateTime") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["effectivePeriod"]), "start") },
	func(r fhir.Record) string { return fhir.Str(r, "whenHandedOver") },
	func(r fhir.Record) string { return fhir.Str(fhir.Map(r["meta"]), "lastUpdated") },
}

// changedStatuses marks a medication order as recently altered.
var changedStatuses = map[string]bool{
	"stopped":   true,
	"on-hold":   true,
	"cancelled": true,
}

// extractMedications projects medication order records into rows, most
// recent first, deduplicated on (text, dosage, instruction) keeping the
// most recent occurrence.
func extractMedications(records map[string]fhir.Record) []MedicationRow {
	scoredRows := make([]scored[MedicationRow], 0)
	for _, recordType := range medicationRecordTypes {
		for _, rec := range fhir.RecordsOfType(records, recordType) {
			row := projectMedication(records, rec)
			scoredRows = append(scoredRows, newScored(row, fhir.FirstDate(rec, medicationDateCandidates)))
		}
	}
	rows := sortedRows(scoredRows)
	return dedupeMedications(rows)
}

func projectMedication(records map[string]fhir.Record, rec fhir.Record) MedicationRow {
	text, ev := medicationText(records, rec)
	dosage, instruction := medicationDosage(rec)
	status := fhir.Str(rec, "status")
	row := MedicationRow{
		Text:        text,
		Dosage:      dosage,
		Instruction: instruction,
		Status:      status,
		Changed:     changedStatuses[status] || rec["priorPrescription"] != nil,
		Chronic:     fhir.ContainsAny(text, chronicMedicationTerms),
		Date:        fhir.FirstDate(rec, medicationDateCandidates),
		Evidence:    []EvidenceRef{recordEvidence(rec)},
	}
	row.Evidence = appendEvidence(row.Evidence, ev...)
	return row
}

// medicationText resolves the display name: coded concept text, then the
// referenced Medication resource's coded text, then the reference display
// string, then the literal fallback. Also returns evidence for a resolved
// Medication record so the row points at both sources.
func medicationText(records map[string]fhir.Record, rec fhir.Record) (string, []EvidenceRef) {
	if s := fhir.ConceptText(rec["medicationCodeableConcept"], ""); s != "" {
		return s, nil
	}
	if ref, ok := rec["medicationReference"]; ok {
		rt, id := fhir.ReferenceTarget(ref)
		if rt == "" {
			rt = "Medication"
		}
		if target, found := records[fhir.Key(rt, id)]; found {
			if s := fhir.ConceptText(target["code"], ""); s != "" {
				return s, []EvidenceRef{recordEvidence(target)}
			}
		}
		if s := fhir.ReferenceDisplay(ref); s != "" {
			return s, nil
		}
	}
	return "Medication", nil
}

// medicationDosage resolves (dosage, instruction) from the first dosage
// entry, falling back to the first dosage-instruction entry. Instruction is
// the sig text; dosage is the composed dose or rate quantity.
func medicationDosage(rec fhir.Record) (dosage, instruction string) {
	d := fhir.FirstMap(rec["dosage"])
	if d == nil {
		d = fhir.FirstMap(rec["dosageInstruction"])
	}
	if d == nil {
		return "", ""
	}
	instruction = fhir.Str(d, "text")
	if s := fhir.QuantityText(d["doseQuantity"]); s != "" {
		return s, instruction
	}
	if doseAndRate := fhir.FirstMap(d["doseAndRate"]); doseAndRate != nil {
		if s := fhir.QuantityText(doseAndRate["doseQuantity"]); s != "" {
			return s, instruction
		}
		if s := fhir.QuantityText(doseAndRate["rateQuantity"]); s != "" {
			return s, instruction
		}
	}
	if s := fhir.QuantityText(d["rateQuantity"]); s != "" {
		return s, instruction
	}
	return "", instruction
}

// dedupeMedications collapses rows with identical (text, dosage,
// instruction). Input is sorted most-recent-first, so the first occurrence
// is the one to keep.
func dedupeMedications(rows []MedicationRow) []MedicationRow {
	type medKey struct {
		text, dosage, instruction string
	}
	seen := make(map[medKey]bool)
	out := make([]MedicationRow, 0, len(rows))
	for _, row := range rows {
		key := medKey{row.Text, row.Dosage, row.Instruction}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out
}
