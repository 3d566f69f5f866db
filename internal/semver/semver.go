// Package semver parses, compares, and bumps strict semantic versions of
// the form major.minor.patch[-pre][+build], per spec.md §3 Contract.version.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Bump is the magnitude of a version increment, derived from schema diff
// classification (spec.md §4.1) and applied by the publication engine when
// the caller omits an explicit version (spec.md §4.3).
type Bump string

const (
	BumpPatch Bump = "patch"
	BumpMinor Bump = "minor"
	BumpMajor Bump = "major"
)

// Version is a parsed semantic version.
type Version struct {
	Major, Minor, Patch int
	Pre                 string
	Build                string
}

// Parse validates and parses a strict semver string. Pre-release and build
// metadata are optional; build metadata never participates in precedence.
func Parse(s string) (Version, error) {
	orig := s
	var v Version

	if i := strings.IndexByte(s, '+'); i >= 0 {
		v.Build = s[i+1:]
		s = s[:i]
		if v.Build == "" {
			return Version{}, fmt.Errorf("semver: empty build metadata in %q", orig)
		}
	}

	if i := strings.IndexByte(s, '-'); i >= 0 {
		v.Pre = s[i+1:]
		s = s[:i]
		if v.Pre == "" {
			return Version{}, fmt.Errorf("semver: empty pre-release in %q", orig)
		}
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("semver: %q is not major.minor.patch", orig)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		if p == "" {
			return Version{}, fmt.Errorf("semver: empty numeric segment in %q", orig)
		}
		if len(p) > 1 && p[0] == '0' {
			return Version{}, fmt.Errorf("semver: leading zero in numeric segment %q", p)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("semver: invalid numeric segment %q in %q", p, orig)
		}
		nums[i] = n
	}

	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v, nil
}

// String renders the version back to its canonical form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// other, following semver precedence rules (build metadata ignored, a
// pre-release version has lower precedence than the same version without).
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	return comparePre(v.Pre, other.Pre)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// comparePre implements semver's pre-release precedence: no pre-release
// outranks any pre-release; otherwise dot-separated identifiers compare
// left to right, numeric fields numerically, others lexically, with a
// shorter identifier list ranking lower when it's a strict prefix.
func comparePre(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	ap := strings.Split(a, ".")
	bp := strings.Split(b, ".")
	for i := 0; i < len(ap) && i < len(bp); i++ {
		an, aErr := strconv.Atoi(ap[i])
		bn, bErr := strconv.Atoi(bp[i])
		switch {
		case aErr == nil && bErr == nil:
			if c := compareInt(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return -1 // numeric identifiers have lower precedence than alphanumeric
		case bErr == nil:
			return 1
		default:
			if ap[i] != bp[i] {
				if ap[i] < bp[i] {
					return -1
				}
				return 1
			}
		}
	}
	return compareInt(len(ap), len(bp))
}

// ApplyBump returns the next version after applying the given bump,
// resetting lower-precedence fields and dropping pre-release/build
// metadata, matching conventional semver release semantics.
func (v Version) ApplyBump(b Bump) Version {
	switch b {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}
