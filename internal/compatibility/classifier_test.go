package compatibility

import (
	"testing"

	"github.com/tessera-contracts/tessera/internal/schemadiff"
)

func TestClassify_ModeNone_AlwaysCompatible(t *testing.T) {
	diff := schemadiff.SchemaDiff{
		Changes: []schemadiff.ChangeRecord{
			{Kind: schemadiff.KindPropertyRemoved, Path: "/properties/x"},
		},
	}
	result := Classify(diff, ModeNone)
	if !result.IsCompatible {
		t.Error("mode none should always be compatible")
	}
	if len(result.BreakingChanges) != 0 {
		t.Error("mode none should never list breaking changes")
	}
}

func TestClassify_Backward(t *testing.T) {
	tests := []struct {
		kind     schemadiff.Kind
		breaking bool
	}{
		{schemadiff.KindPropertyRemoved, true},
		{schemadiff.KindRequiredAdded, true},
		{schemadiff.KindTypeChanged, true},
		{schemadiff.KindEnumNarrowed, true},
		{schemadiff.KindFormatChanged, true},
		{schemadiff.KindPropertyAdded, false},
		{schemadiff.KindRequiredRemoved, false},
		{schemadiff.KindEnumWidened, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			diff := schemadiff.SchemaDiff{Changes: []schemadiff.ChangeRecord{{Kind: tt.kind, Path: "/properties/x"}}}
			result := Classify(diff, ModeBackward)
			if result.IsCompatible == tt.breaking {
				t.Errorf("kind %s: IsCompatible = %v, want breaking=%v", tt.kind, result.IsCompatible, tt.breaking)
			}
		})
	}
}

func TestClassify_Forward_PropertyAddedAloneIsNotBreaking(t *testing.T) {
	diff := schemadiff.SchemaDiff{
		Changes: []schemadiff.ChangeRecord{
			{Kind: schemadiff.KindPropertyAdded, Path: "/properties/extra"},
		},
	}
	result := Classify(diff, ModeForward)
	if !result.IsCompatible {
		t.Error("property_added alone should not be forward-breaking")
	}
}

func TestClassify_Forward_PropertyAddedWithRequiredIsBreaking(t *testing.T) {
	diff := schemadiff.SchemaDiff{
		Changes: []schemadiff.ChangeRecord{
			{Kind: schemadiff.KindPropertyAdded, Path: "/properties/extra"},
			{Kind: schemadiff.KindRequiredAdded, Path: "/required/extra"},
		},
	}
	result := Classify(diff, ModeForward)
	if result.IsCompatible {
		t.Fatal("property_added accompanied by required_added should be forward-breaking")
	}
	if len(result.BreakingChanges) != 1 || result.BreakingChanges[0].Kind != schemadiff.KindPropertyAdded {
		t.Errorf("expected only the property_added record to be flagged, got %+v", result.BreakingChanges)
	}
}

func TestClassify_Forward_Unconditional(t *testing.T) {
	tests := []schemadiff.Kind{
		schemadiff.KindTypeChanged,
		schemadiff.KindEnumWidened,
		schemadiff.KindFormatChanged,
	}
	for _, k := range tests {
		t.Run(string(k), func(t *testing.T) {
			diff := schemadiff.SchemaDiff{Changes: []schemadiff.ChangeRecord{{Kind: k, Path: "/properties/x"}}}
			result := Classify(diff, ModeForward)
			if result.IsCompatible {
				t.Errorf("kind %s should be forward-breaking unconditionally", k)
			}
		})
	}
}

func TestClassify_Full_IsUnionOfBackwardAndForward(t *testing.T) {
	diff := schemadiff.SchemaDiff{
		Changes: []schemadiff.ChangeRecord{
			{Kind: schemadiff.KindPropertyRemoved, Path: "/properties/a"}, // backward only
			{Kind: schemadiff.KindEnumWidened, Path: "/properties/b"},     // forward only
		},
	}
	result := Classify(diff, ModeFull)
	if result.IsCompatible {
		t.Fatal("expected full mode to flag both backward- and forward-only breaks")
	}
	if len(result.BreakingChanges) != 2 {
		t.Errorf("expected 2 breaking changes, got %d: %+v", len(result.BreakingChanges), result.BreakingChanges)
	}
}

func TestClassify_EmptyDiffIsCompatible(t *testing.T) {
	for _, mode := range []Mode{ModeBackward, ModeForward, ModeFull, ModeNone} {
		result := Classify(schemadiff.SchemaDiff{}, mode)
		if !result.IsCompatible {
			t.Errorf("mode %s: empty diff should be compatible", mode)
		}
	}
}

// TestClassify_Monotone is testable property 6 from spec.md §8: if a
// smaller diff's change kinds are a subset of a larger diff's, and the
// larger is breaking, the smaller cannot be "more breaking" under the same
// mode — i.e. breaking-ness only grows as the change set grows.
func TestClassify_Monotone(t *testing.T) {
	small := schemadiff.SchemaDiff{Changes: []schemadiff.ChangeRecord{
		{Kind: schemadiff.KindPropertyAdded, Path: "/properties/a"},
	}}
	large := schemadiff.SchemaDiff{Changes: []schemadiff.ChangeRecord{
		{Kind: schemadiff.KindPropertyAdded, Path: "/properties/a"},
		{Kind: schemadiff.KindPropertyRemoved, Path: "/properties/b"},
	}}

	for _, mode := range []Mode{ModeBackward, ModeForward, ModeFull} {
		smallResult := Classify(small, mode)
		largeResult := Classify(large, mode)
		if !largeResult.IsCompatible && smallResult.IsCompatible == false && len(smallResult.BreakingChanges) > len(largeResult.BreakingChanges) {
			t.Errorf("mode %s: monotonicity violated", mode)
		}
	}
}
