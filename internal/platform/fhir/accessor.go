package fhir

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Field accessors. Every function here is total over arbitrary partial
// input: missing or oddly-shaped fields degrade to zero values, never to a
// panic. Downstream extractors rely on that to stay free of shape checks.

// Str returns a string field of a record, or "".
func Str(rec Record, key string) string {
	if rec == nil {
		return ""
	}
	s, _ := rec[key].(string)
	return s
}

// Map asserts a value as an object, returning nil when it is not one.
func Map(v interface{}) Record {
	m, _ := v.(map[string]interface{})
	return m
}

// Slice asserts a value as an array, returning nil when it is not one.
func Slice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

// FirstMap returns the first object element of an array value, or nil.
func FirstMap(v interface{}) Record {
	for _, el := range Slice(v) {
		if m := Map(el); m != nil {
			return m
		}
	}
	return nil
}

// DateCandidate pulls one candidate date string out of a record.
type DateCandidate func(Record) string

// FirstDate evaluates candidates in order and returns the first non-empty
// result. Keeping the chain as an explicit list makes the priority order
// auditable on its own.
func FirstDate(rec Record, candidates []DateCandidate) string {
	if rec == nil {
		return ""
	}
	for _, candidate := range candidates {
		if s := candidate(rec); s != "" {
			return s
		}
	}
	return ""
}

// effectiveDateCandidates is the priority order for observation-style
// records: effectiveDateTime, then the effective period end, then its
// start, then the issued timestamp, then the last-updated metadata.
var effectiveDateCandidates = []DateCandidate{
	func(r Record) string { return Str(r, "effectiveDateTime") },
	func(r Record) string { return Str(Map(r["effectivePeriod"]), "end") },
	func(r Record) string { return Str(Map(r["effectivePeriod"]), "start") },
	func(r Record) string { return Str(r, "issued") },
	func(r Record) string { return Str(Map(r["meta"]), "lastUpdated") },
}

// EffectiveDate returns the best-effort clinical timestamp of an
// observation-style record.
func EffectiveDate(rec Record) string {
	return FirstDate(rec, effectiveDateCandidates)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParseDate parses a date-like string with progressively looser layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateScore converts a date-like string into a sortable score. Absent or
// unparsable dates score 0, which places them last under descending order.
func DateScore(s string) float64 {
	t, ok := ParseDate(s)
	if !ok {
		return 0
	}
	return float64(t.UnixMilli())
}

// ConceptText resolves the human label of a codeable field: direct text,
// then the first coding's display, then its raw code, else the fallback.
func ConceptText(v interface{}, fallback string) string {
	m := Map(v)
	if m == nil {
		return fallback
	}
	if s := Str(m, "text"); s != "" {
		return s
	}
	if coding := FirstMap(m["coding"]); coding != nil {
		if s := Str(coding, "display"); s != "" {
			return s
		}
		if s := Str(coding, "code"); s != "" {
			return s
		}
	}
	return fallback
}

// ConceptCode returns the first coding's code of a codeable field, or "".
func ConceptCode(v interface{}) string {
	m := Map(v)
	if m == nil {
		return ""
	}
	return Str(FirstMap(m["coding"]), "code")
}

// ConceptMatches reports whether any coding code, display, or the concept
// text contains one of the given lowercase terms.
func ConceptMatches(v interface{}, terms []string) bool {
	m := Map(v)
	if m == nil {
		return false
	}
	if textContainsAny(Str(m, "text"), terms) {
		return true
	}
	for _, el := range Slice(m["coding"]) {
		coding := Map(el)
		if textContainsAny(Str(coding, "code"), terms) || textContainsAny(Str(coding, "display"), terms) {
			return true
		}
	}
	return false
}

func textContainsAny(s string, terms []string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// ContainsAny is the exported form of the substring check used by
// category classification predicates.
func ContainsAny(s string, terms []string) bool {
	return textContainsAny(s, terms)
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Number extracts the first signed decimal substring from a free-text
// value ("120/80 mmHg" yields 120). Returns false when none is present.
func Number(s string) (float64, bool) {
	match := numberPattern.FindString(s)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// QuantityValue returns the numeric value of a quantity object.
func QuantityValue(v interface{}) (float64, bool) {
	m := Map(v)
	if m == nil {
		return 0, false
	}
	switch val := m["value"].(type) {
	case float64:
		return val, true
	case string:
		return Number(val)
	}
	return 0, false
}

// QuantityText renders a quantity as "{value}{unit}" ("98.6 F" style when a
// unit exists), or "" when no value is present.
func QuantityText(v interface{}) string {
	m := Map(v)
	if m == nil {
		return ""
	}
	val, ok := m["value"]
	if !ok {
		return ""
	}
	var rendered string
	switch n := val.(type) {
	case float64:
		rendered = strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		rendered = n
	default:
		rendered = fmt.Sprintf("%v", n)
	}
	if rendered == "" {
		return ""
	}
	unit := Str(m, "unit")
	if unit == "" {
		unit = Str(m, "code")
	}
	if unit != "" {
		return rendered + " " + unit
	}
	return rendered
}

// ValueText renders an observation-style value[x] into display text.
func ValueText(rec Record) string {
	if rec == nil {
		return ""
	}
	if s := QuantityText(rec["valueQuantity"]); s != "" {
		return s
	}
	if s := Str(rec, "valueString"); s != "" {
		return s
	}
	if s := ConceptText(rec["valueCodeableConcept"], ""); s != "" {
		return s
	}
	if b, ok := rec["valueBoolean"].(bool); ok {
		return strconv.FormatBool(b)
	}
	if f, ok := rec["valueInteger"].(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// ReferenceTarget splits a literal reference value ("Observation/ob1" or a
// {reference: ...} object) into resource type and id. urn:uuid references
// resolve to an empty type with the uuid as id.
func ReferenceTarget(v interface{}) (resourceType, id string) {
	ref := ""
	switch r := v.(type) {
	case string:
		ref = r
	case map[string]interface{}:
		ref = Str(r, "reference")
	}
	if ref == "" {
		return "", ""
	}
	if strings.HasPrefix(ref, "urn:uuid:") {
		return "", strings.TrimPrefix(ref, "urn:uuid:")
	}
	parts := strings.Split(ref, "/")
	if len(parts) < 2 {
		return "", ref
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}

// ReferenceDisplay returns the display text of a reference object, or "".
func ReferenceDisplay(v interface{}) string {
	return Str(Map(v), "display")
}
