// Package compatibility classifies a schemadiff.SchemaDiff as breaking or
// not under a given compatibility policy, per spec.md §4.2.
//
// Modeled on the BACKWARD/FORWARD/FULL/NONE vocabulary used throughout the
// schema-registry ecosystem: BACKWARD means a new reader can read old data,
// FORWARD means an old reader can read new data, FULL requires both, and
// NONE disables checking entirely. The classifier never re-walks the
// schemas itself — it only filters the diff it's handed.
package compatibility

import "github.com/tessera-contracts/tessera/internal/schemadiff"

// Mode selects which structural changes count as breaking.
type Mode string

const (
	ModeBackward Mode = "backward"
	ModeForward  Mode = "forward"
	ModeFull     Mode = "full"
	ModeNone     Mode = "none"
)

// backwardBreaking is the set of kinds that break a new reader trying to
// consume data written under the old schema.
var backwardBreaking = map[schemadiff.Kind]bool{
	schemadiff.KindPropertyRemoved: true,
	schemadiff.KindRequiredAdded:   true,
	schemadiff.KindTypeChanged:     true,
	schemadiff.KindEnumNarrowed:    true,
	schemadiff.KindFormatChanged:   true,
}

// forwardBreakingUnconditional is the set of kinds that always break an old
// reader trying to consume data written under the new schema, independent
// of any accompanying change.
var forwardBreakingUnconditional = map[schemadiff.Kind]bool{
	schemadiff.KindTypeChanged:   true,
	schemadiff.KindEnumWidened:   true,
	schemadiff.KindFormatChanged: true,
}

// Result is the classifier's verdict.
type Result struct {
	IsCompatible    bool
	BreakingChanges []schemadiff.ChangeRecord
}

// Classify filters diff.Changes down to the subset that is breaking under
// mode, per the breaking-change tables in spec.md §4.2.
func Classify(diff schemadiff.SchemaDiff, mode Mode) Result {
	if mode == ModeNone {
		return Result{IsCompatible: true}
	}

	requiredAddedPaths := requiredAddedPathSet(diff.Changes)

	var breaking []schemadiff.ChangeRecord
	for _, c := range diff.Changes {
		if isBreaking(c, mode, requiredAddedPaths) {
			breaking = append(breaking, c)
		}
	}

	return Result{
		IsCompatible:    len(breaking) == 0,
		BreakingChanges: breaking,
	}
}

func isBreaking(c schemadiff.ChangeRecord, mode Mode, requiredAddedPaths map[string]bool) bool {
	switch mode {
	case ModeBackward:
		return backwardBreaking[c.Kind]
	case ModeForward:
		if forwardBreakingUnconditional[c.Kind] {
			return true
		}
		// property_added is only forward-breaking when accompanied by the
		// property also becoming required (spec.md §4.2): an old reader
		// ignores unknown optional fields but chokes if a required field
		// it doesn't know about must be present.
		if c.Kind == schemadiff.KindPropertyAdded {
			return requiredAddedPaths[propertyPathToRequiredPath(c.Path)]
		}
		return false
	case ModeFull:
		return backwardBreaking[c.Kind] || isBreaking(c, ModeForward, requiredAddedPaths)
	default:
		return false
	}
}

func requiredAddedPathSet(changes []schemadiff.ChangeRecord) map[string]bool {
	set := map[string]bool{}
	for _, c := range changes {
		if c.Kind == schemadiff.KindRequiredAdded {
			set[c.Path] = true
		}
	}
	return set
}

// propertyPathToRequiredPath maps "/properties/x" (and nested variants) to
// the corresponding "/required/x" path produced by the diff walker for the
// same property name.
func propertyPathToRequiredPath(propPath string) string {
	const marker = "/properties/"
	idx := lastIndex(propPath, marker)
	if idx < 0 {
		return ""
	}
	prefix := propPath[:idx]
	name := propPath[idx+len(marker):]
	return prefix + "/required/" + name
}

func lastIndex(s, sub string) int {
	last := -1
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			last = i
		}
	}
	return last
}
