// Package schemadiff computes structural differences between two
// JSON-Schema-shaped documents and classifies the overall magnitude of
// change, per spec.md §4.1.
//
// The walker treats each document as an untyped tree and never coerces
// unknown nodes into a fixed Go type: schemas are free-form JSON, so the
// diff logic navigates by JSON Pointer path rather than by struct field,
// staying tolerant of nodes it doesn't recognize (spec.md §9 "Dynamically-
// typed payloads").
package schemadiff

import (
	"encoding/json"
	"sort"
)

// Kind is one of the fixed, exhaustive change kinds enumerated in
// spec.md §4.1.
type Kind string

const (
	KindPropertyAdded       Kind = "property_added"
	KindPropertyRemoved     Kind = "property_removed"
	KindRequiredAdded       Kind = "required_added"
	KindRequiredRemoved     Kind = "required_removed"
	KindTypeChanged         Kind = "type_changed"
	KindEnumNarrowed        Kind = "enum_narrowed"
	KindEnumWidened         Kind = "enum_widened"
	KindFormatChanged       Kind = "format_changed"
	KindItemsChanged        Kind = "items_changed"
	KindNestedObjectChanged Kind = "nested_object_changed"
)

// ChangeType is the derived overall magnitude of a SchemaDiff.
type ChangeType string

const (
	ChangeTypePatch ChangeType = "patch"
	ChangeTypeMinor ChangeType = "minor"
	ChangeTypeMajor ChangeType = "major"
)

// ChangeRecord describes one structural change at one JSON Pointer path.
type ChangeRecord struct {
	Kind    Kind        `json:"kind"`
	Path    string      `json:"path"`
	Old     interface{} `json:"old,omitempty"`
	New     interface{} `json:"new,omitempty"`
	Message string      `json:"message,omitempty"`
}

// SchemaDiff is the full ordered result of comparing two schema documents.
type SchemaDiff struct {
	Changes    []ChangeRecord `json:"changes"`
	ChangeType ChangeType     `json:"change_type"`
}

// majorKinds, when present anywhere in a diff, force ChangeType to major.
var majorKinds = map[Kind]bool{
	KindPropertyRemoved: true,
	KindRequiredAdded:   true,
	KindTypeChanged:     true,
	KindEnumNarrowed:    true,
	KindFormatChanged:   true,
}

// minorKinds, absent any major kind, force ChangeType to minor.
var minorKinds = map[Kind]bool{
	KindPropertyAdded: true,
	KindEnumWidened:   true,
}

// Diff computes the structural diff between old schema a and new schema b.
// It is deterministic (testable property 4 in spec.md §8): given the same
// byte-identical inputs it always returns byte-identical output, because
// traversal order is a fixed depth-first, alphabetical walk.
func Diff(a, b json.RawMessage) (SchemaDiff, error) {
	var an, bn map[string]interface{}
	if len(a) > 0 {
		if err := json.Unmarshal(a, &an); err != nil {
			return SchemaDiff{}, err
		}
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &bn); err != nil {
			return SchemaDiff{}, err
		}
	}

	w := &walker{}
	w.walkObject("", an, bn)

	return SchemaDiff{
		Changes:    w.records,
		ChangeType: classify(w.records),
	}, nil
}

func classify(records []ChangeRecord) ChangeType {
	sawMinor := false
	for _, r := range records {
		if majorKinds[r.Kind] {
			return ChangeTypeMajor
		}
		if minorKinds[r.Kind] {
			sawMinor = true
		}
	}
	if sawMinor {
		return ChangeTypeMinor
	}
	return ChangeTypePatch
}

type walker struct {
	records []ChangeRecord
}

func (w *walker) add(r ChangeRecord) {
	w.records = append(w.records, r)
}

// walkObject compares two schema nodes rooted at path. a and b are the
// decoded "properties" siblings of a JSON-Schema object node (or the root
// document itself, which spec.md §4.1 treats the same way).
func (w *walker) walkObject(path string, a, b map[string]interface{}) {
	aProps, _ := a["properties"].(map[string]interface{})
	bProps, _ := b["properties"].(map[string]interface{})

	names := unionKeys(aProps, bProps)
	for _, name := range names {
		childPath := path + "/properties/" + name
		av, aok := aProps[name]
		bv, bok := bProps[name]

		switch {
		case aok && !bok:
			w.add(ChangeRecord{Kind: KindPropertyRemoved, Path: childPath, Old: av})
		case !aok && bok:
			w.add(ChangeRecord{Kind: KindPropertyAdded, Path: childPath, New: bv})
		default:
			w.walkNode(childPath, asMap(av), asMap(bv))
		}
	}

	w.walkRequired(path, a, b)
}

func (w *walker) walkRequired(path string, a, b map[string]interface{}) {
	aReq := toStringSet(a["required"])
	bReq := toStringSet(b["required"])

	names := unionSet(aReq, bReq)
	for _, name := range names {
		reqPath := path + "/required/" + name
		_, aHas := aReq[name]
		_, bHas := bReq[name]
		switch {
		case aHas && !bHas:
			w.add(ChangeRecord{Kind: KindRequiredRemoved, Path: reqPath})
		case !aHas && bHas:
			w.add(ChangeRecord{Kind: KindRequiredAdded, Path: reqPath})
		}
	}
}

// walkNode compares one schema node (a property definition, or an array's
// "items") that may itself be an object, array, or scalar-typed schema.
func (w *walker) walkNode(path string, a, b map[string]interface{}) {
	if a == nil || b == nil {
		return
	}

	if t := typeChange(path, a, b); t != nil {
		w.add(*t)
	}

	if f := formatChange(path, a, b); f != nil {
		w.add(*f)
	}

	if e := enumChange(path, a, b); e != nil {
		w.add(*e)
	}

	nodeType := normalizeType(a["type"])
	if nodeType == "" {
		nodeType = normalizeType(b["type"])
	}

	switch nodeType {
	case "object":
		sub := &walker{}
		sub.walkObject(path, a, b)
		if len(sub.records) > 0 {
			w.add(ChangeRecord{Kind: KindNestedObjectChanged, Path: path, Message: "nested object changed"})
			w.records = append(w.records, sub.records...)
		}
	case "array":
		aItems := asMap(a["items"])
		bItems := asMap(b["items"])
		if aItems != nil || bItems != nil {
			sub := &walker{}
			sub.walkNode(path+"/items", aItems, bItems)
			if len(sub.records) > 0 {
				w.add(ChangeRecord{Kind: KindItemsChanged, Path: path + "/items", Message: "items schema changed"})
				w.records = append(w.records, sub.records...)
			}
		}
	default:
		// Nested object comparison also applies to sub-objects without an
		// explicit "type": "object" (treated as opaque dict-of-properties).
		if _, hasProps := a["properties"]; hasProps {
			sub := &walker{}
			sub.walkObject(path, a, b)
			if len(sub.records) > 0 {
				w.add(ChangeRecord{Kind: KindNestedObjectChanged, Path: path, Message: "nested object changed"})
				w.records = append(w.records, sub.records...)
			}
		} else if _, hasProps := b["properties"]; hasProps {
			sub := &walker{}
			sub.walkObject(path, a, b)
			if len(sub.records) > 0 {
				w.add(ChangeRecord{Kind: KindNestedObjectChanged, Path: path, Message: "nested object changed"})
				w.records = append(w.records, sub.records...)
			}
		}
	}
}

// typeChange detects a type mismatch, treating ["string","null"] as
// "string"+nullable per spec.md §4.1.
func typeChange(path string, a, b map[string]interface{}) *ChangeRecord {
	at := normalizeType(a["type"])
	bt := normalizeType(b["type"])
	if at == "" || bt == "" || at == bt {
		return nil
	}
	return &ChangeRecord{Kind: KindTypeChanged, Path: path, Old: at, New: bt}
}

// normalizeType collapses a JSON-Schema "type" value (string or
// string-list) to its base type name, dropping an accompanying "null".
func normalizeType(raw interface{}) string {
	switch t := raw.(type) {
	case string:
		return t
	case []interface{}:
		for _, v := range t {
			if s, ok := v.(string); ok && s != "null" {
				return s
			}
		}
	}
	return ""
}

func formatChange(path string, a, b map[string]interface{}) *ChangeRecord {
	af, _ := a["format"].(string)
	bf, _ := b["format"].(string)
	if af == bf {
		return nil
	}
	return &ChangeRecord{Kind: KindFormatChanged, Path: path, Old: af, New: bf}
}

func enumChange(path string, a, b map[string]interface{}) *ChangeRecord {
	aEnum, aOK := a["enum"].([]interface{})
	bEnum, bOK := b["enum"].([]interface{})
	if !aOK && !bOK {
		return nil
	}

	aSet := toValueSet(aEnum)
	bSet := toValueSet(bEnum)

	narrowed := isSubsetButNotEqual(bSet, aSet) // B subset of A: narrowed
	widened := isSubsetButNotEqual(aSet, bSet)  // A subset of B: widened

	switch {
	case narrowed:
		return &ChangeRecord{Kind: KindEnumNarrowed, Path: path, Old: aEnum, New: bEnum}
	case widened:
		return &ChangeRecord{Kind: KindEnumWidened, Path: path, Old: aEnum, New: bEnum}
	}
	return nil
}

func isSubsetButNotEqual(small, big map[string]bool) bool {
	if len(small) >= len(big) {
		return false
	}
	for k := range small {
		if !big[k] {
			return false
		}
	}
	return true
}

func toValueSet(vals []interface{}) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		b, _ := json.Marshal(v)
		out[string(b)] = true
	}
	return out
}

func toStringSet(raw interface{}) map[string]bool {
	out := map[string]bool{}
	list, _ := raw.([]interface{})
	for _, v := range list {
		if s, ok := v.(string); ok {
			out[s] = true
		}
	}
	return out
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func unionKeys(maps ...map[string]interface{}) []string {
	set := map[string]bool{}
	for _, m := range maps {
		for k := range m {
			set[k] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func unionSet(sets ...map[string]bool) []string {
	set := map[string]bool{}
	for _, s := range sets {
		for k := range s {
			set[k] = true
		}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
