package domain

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// RangeShape identifies the syntactic shape of a dependency range literal.
type RangeShape int

const (
	// ShapeOpaque is any literal the rewrite policy does not touch:
	// exact pins, tilde ranges, OR-combined ranges, workspace refs, etc.
	ShapeOpaque RangeShape = iota

	// ShapeCaret is "^X.Y.Z".
	ShapeCaret

	// ShapeBounded is ">=X.Y.Z <UPPER" where the upper-bound clause is
	// carried verbatim and never recomputed.
	ShapeBounded
)

// Range is a parsed dependency range literal. Rewriting a range never
// changes its shape, only the version component the policy may touch.
type Range struct {
	Shape RangeShape

	// Lower is the parsed lower bound for caret and bounded ranges.
	Lower Version

	// Upper is the verbatim upper-bound clause (including the leading
	// "<") for bounded ranges.
	Upper string

	// Literal is the original text, returned unchanged for opaque ranges.
	Literal string
}

// ParseRange classifies a range literal. It is total: anything that is not
// a caret or bounded range comes back opaque.
func ParseRange(literal string) Range {
	if r, ok := parseBounded(literal); ok {
		return r
	}
	if r, ok := parseCaret(literal); ok {
		return r
	}
	return Range{Shape: ShapeOpaque, Literal: literal}
}

// parseBounded matches ">=X.Y.Z <UPPER": an explicit lower bound followed
// by a literal upper-bound clause introduced by "<".
func parseBounded(literal string) (Range, bool) {
	rest, ok := strings.CutPrefix(literal, ">=")
	if !ok {
		return Range{}, false
	}

	lowerText, upper, ok := strings.Cut(rest, " ")
	if !ok {
		return Range{}, false
	}
	upper = strings.TrimLeft(upper, " ")
	if !strings.HasPrefix(upper, "<") {
		return Range{}, false
	}

	lower, err := ParseVersion(lowerText)
	if err != nil {
		return Range{}, false
	}

	return Range{
		Shape:   ShapeBounded,
		Lower:   lower,
		Upper:   upper,
		Literal: literal,
	}, true
}

func parseCaret(literal string) (Range, bool) {
	rest, ok := strings.CutPrefix(literal, "^")
	if !ok {
		return Range{}, false
	}

	// The caret shape is "^" followed by a single version; anything more
	// elaborate (e.g. an OR-combined range) stays opaque.
	lower, err := ParseVersion(rest)
	if err != nil {
		return Range{}, false
	}

	return Range{Shape: ShapeCaret, Lower: lower, Literal: literal}, true
}

// Rewrite retargets the range at newVersion, preserving the original
// syntactic shape. Bounded ranges keep their upper-bound clause
// byte-for-byte; opaque ranges pass through unchanged.
func (r Range) Rewrite(newVersion string) string {
	switch r.Shape {
	case ShapeBounded:
		return ">=" + newVersion + " " + r.Upper
	case ShapeCaret:
		return "^" + newVersion
	default:
		return r.Literal
	}
}

// RewritePeerRange rewrites a peer-dependency range literal to target
// newVersion. It is total: unrecognized formats are returned unchanged.
// It never checks whether newVersion is actually newer than the current
// floor; that decision belongs to the caller.
func RewritePeerRange(rangeLiteral, newVersion string) string {
	return ParseRange(rangeLiteral).Rewrite(newVersion)
}

// Satisfies reports whether a concrete version satisfies a range literal.
// This is an advisory check used for audit logging only (for example to
// flag a rewritten peer range whose floor the reconciled version does not
// actually meet); it has no effect on rewrite output. Unparseable inputs
// report false.
func Satisfies(version, rangeLiteral string) bool {
	c, err := semver.NewConstraint(rangeLiteral)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(StripRangeMarkers(version))
	if err != nil {
		return false
	}
	return c.Check(v)
}
