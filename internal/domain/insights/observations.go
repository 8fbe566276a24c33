package insights

import (
	"strings"

	"github.com/clinsight/insights/internal/platform/fhir"
)

// Observation classification predicates. Each category filters the same
// Observation pool independently; a record may satisfy more than one.

// categoryMatches reports whether any category coding code, display, or
// text of the observation contains one of the terms.
func categoryMatches(rec fhir.Record, terms []string) bool {
	for _, el := range fhir.Slice(rec["category"]) {
		if fhir.ConceptMatches(el, terms) {
			return true
		}
	}
	// Some feeds send category as a single object rather than an array.
	return fhir.ConceptMatches(rec["category"], terms)
}

// isVitalSign classifies an observation as a vital: vital-signs category,
// canonical LOINC code, or display text keyword.
func isVitalSign(rec fhir.Record) bool {
	if categoryMatches(rec, []string{"vital-signs", "vitals"}) {
		return true
	}
	if vitalLOINCCodes[fhir.ConceptCode(rec["code"])] {
		return true
	}
	return fhir.ConceptMatches(rec["code"], vitalKeywords)
}

// isLabResult classifies an observation as a laboratory result.
func isLabResult(rec fhir.Record) bool {
	return categoryMatches(rec, []string{"laboratory", "lab"})
}

// isSocialHistory classifies smoking/tobacco/alcohol style observations.
func isSocialHistory(rec fhir.Record) bool {
	if categoryMatches(rec, []string{"social-history"}) {
		return true
	}
	return fhir.ConceptMatches(rec["code"], socialHistoryTerms)
}

// isMentalStatus classifies PHQ-9 and related behavioral observations.
func isMentalStatus(rec fhir.Record) bool {
	if fhir.ConceptMatches(rec["code"], phq9Terms) {
		return true
	}
	if categoryMatches(rec, []string{"survey", "mental"}) {
		return true
	}
	return fhir.ConceptMatches(rec["code"], mentalStatusTerms)
}

// abnormalFlag derives the display flag of an observation: the HL7
// interpretation code table first, then a numeric comparison against the
// record's own reference range. For vital-classified observations with
// neither, the canonical per-code default range applies.
func abnormalFlag(rec fhir.Record, useVitalDefaults bool) string {
	if flag := interpretationFlag(rec); flag != "" {
		return flag
	}

	value, ok := observationNumber(rec)
	if !ok {
		return ""
	}

	if rr := fhir.FirstMap(rec["referenceRange"]); rr != nil {
		if low, has := fhir.QuantityValue(rr["low"]); has && value < low {
			return "Low"
		}
		if high, has := fhir.QuantityValue(rr["high"]); has && value > high {
			return "High"
		}
		return ""
	}

	if useVitalDefaults {
		if r, ok := DefaultVitalRanges[fhir.ConceptCode(rec["code"])]; ok && unitsCompatible(observationUnit(rec), r.Unit) {
			if value < r.Low {
				return "Low"
			}
			if value > r.High {
				return "High"
			}
		}
	}
	return ""
}

// observationUnit returns the unit string of the observation's quantity
// value, or "".
func observationUnit(rec fhir.Record) string {
	q := fhir.Map(rec["valueQuantity"])
	if s := fhir.Str(q, "unit"); s != "" {
		return s
	}
	return fhir.Str(q, "code")
}

// unitsCompatible reports whether an observed unit may be judged against a
// default range's unit. An absent unit on either side is permissive; the
// gate only rejects an explicit mismatch, so a Fahrenheit temperature is
// never compared against the Celsius default.
func unitsCompatible(observed, canonical string) bool {
	o := normalizeUnit(observed)
	c := normalizeUnit(canonical)
	if o == "" || c == "" || o == c {
		return true
	}
	return unitSynonyms[o] == c
}

func normalizeUnit(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "°", "")
	return strings.TrimPrefix(s, "deg")
}

// interpretationFlag maps the first recognized interpretation code.
func interpretationFlag(rec fhir.Record) string {
	interp := rec["interpretation"]
	concepts := fhir.Slice(interp)
	if concepts == nil && interp != nil {
		concepts = []interface{}{interp}
	}
	for _, concept := range concepts {
		m := fhir.Map(concept)
		if m == nil {
			continue
		}
		for _, el := range fhir.Slice(m["coding"]) {
			code := strings.ToUpper(fhir.Str(fhir.Map(el), "code"))
			if flag, ok := abnormalInterpretations[code]; ok {
				return flag
			}
		}
		if flag, ok := abnormalInterpretations[strings.ToUpper(fhir.Str(m, "text"))]; ok {
			return flag
		}
	}
	return ""
}

// observationNumber pulls a numeric value out of the observation's
// value[x], parsing free text when needed.
func observationNumber(rec fhir.Record) (float64, bool) {
	if v, ok := fhir.QuantityValue(rec["valueQuantity"]); ok {
		return v, true
	}
	return fhir.Number(fhir.ValueText(rec))
}
