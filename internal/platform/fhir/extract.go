package fhir

import (
	"reflect"
	"sort"
)

// ExtractRecords flattens an arbitrarily nested payload into a map of typed
// records keyed by "ResourceType/id". The payload may be a Bundle-shaped
// object, a bare entry array, or any ad hoc nesting of objects and arrays
// that embeds resources at some depth.
//
// A node counts as a record when it carries both a non-empty resourceType
// and a non-empty id. Records are leaves: their descendants are not walked,
// so resources referenced inline inside another resource are not captured
// twice. Duplicate keys are last-write-wins in document order.
//
// Malformed input (nil, scalars, nodes without type/id) yields an empty map
// rather than an error.
func ExtractRecords(raw interface{}) map[string]Record {
	records := make(map[string]Record)
	if raw == nil {
		return records
	}

	// Explicit worklist instead of recursion; real payloads can share or
	// repeat object references, so visited nodes are tracked by identity.
	stack := []interface{}{raw}
	visited := make(map[uintptr]bool)

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch v := node.(type) {
		case map[string]interface{}:
			ptr := reflect.ValueOf(v).Pointer()
			if visited[ptr] {
				continue
			}
			visited[ptr] = true

			// Unwrap a single enclosing resource envelope (bundle entries)
			// before testing the node itself.
			if inner, ok := v["resource"].(map[string]interface{}); ok {
				if rt, id, isRec := recordTag(inner); isRec {
					records[Key(rt, id)] = inner
					continue
				}
			}

			if rt, id, isRec := recordTag(v); isRec {
				records[Key(rt, id)] = v
				continue
			}

			// Push values in reverse sorted-key order so the traversal
			// stays deterministic and last-write-wins follows key order.
			keys := make([]string, 0, len(v))
			for k := range v {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, v[keys[i]])
			}

		case []interface{}:
			if len(v) > 0 {
				ptr := reflect.ValueOf(v).Pointer()
				if visited[ptr] {
					continue
				}
				visited[ptr] = true
			}
			for i := len(v) - 1; i >= 0; i-- {
				stack = append(stack, v[i])
			}
		}
	}

	return records
}

// recordTag reports whether a map node is a collectible record. A Bundle is
// a container envelope, never a record itself — real bundles carry their own
// id (search results, $everything output), and collecting one as a leaf
// would stop the walk before any of its entries.
func recordTag(m map[string]interface{}) (resourceType, id string, ok bool) {
	rt, _ := m["resourceType"].(string)
	if rt == "" || rt == "Bundle" {
		return "", "", false
	}
	rid, _ := m["id"].(string)
	if rid == "" {
		return "", "", false
	}
	return rt, rid, true
}

// RecordsOfType returns the records with the given resourceType, in
// deterministic key order.
func RecordsOfType(records map[string]Record, resourceType string) []Record {
	keys := make([]string, 0)
	for k, rec := range records {
		if rt, _ := rec["resourceType"].(string); rt == resourceType {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		out = append(out, records[k])
	}
	return out
}
