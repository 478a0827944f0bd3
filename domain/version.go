package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedVersion is returned by ParseVersion when the input does not
// match the version grammar. It is the only error this package produces;
// every operation built on top of the parser absorbs it and degrades to a
// lexicographic fallback instead of propagating.
var ErrMalformedVersion = errors.New("malformed version")

// devChannel is the marker for dev builds nested under a pre-release.
const devChannel = "dev"

// defaultChannel is the only pre-release channel this policy compares.
// Other channel names parse fine but are ordered by number alone.
const defaultChannel = "alpha"

// Version is an immutable (possibly pre-release) semantic version.
//
// Grammar: MAJOR "." MINOR "." PATCH ["-" CHANNEL "." NUM ["-dev." NUM]]
//
// A version with no pre-release channel is a released version and sorts
// after any pre-release of the same major.minor.patch. A dev number is
// always relative to a pre-release: HasDev implies HasPre.
type Version struct {
	Major int
	Minor int
	Patch int

	// Pre-release marker, e.g. "alpha" / 12 in "0.1.0-alpha.12".
	Channel   string
	PreNumber int
	HasPre    bool

	// Dev build marker, e.g. 5 in "0.1.0-alpha.12-dev.5".
	DevNumber int
	HasDev    bool
}

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

// String renders the version back in its canonical literal form.
func (v Version) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.HasPre {
		fmt.Fprintf(&sb, "-%s.%d", v.Channel, v.PreNumber)
	}
	if v.HasDev {
		fmt.Fprintf(&sb, "-%s.%d", devChannel, v.DevNumber)
	}
	return sb.String()
}

// StripRangeMarkers removes a leading caret or tilde range marker from a
// version literal. The markers are range syntax, not part of the version.
func StripRangeMarkers(literal string) string {
	return strings.TrimLeft(literal, "^~")
}

// ParseVersion parses a version literal under the strict grammar. Leading
// "^" or "~" range markers are stripped before parsing. All numeric fields
// must be unsigned decimal integers with no sign.
func ParseVersion(text string) (Version, error) {
	input := StripRangeMarkers(text)

	core, pre, hasPre := strings.Cut(input, "-")

	var v Version
	if err := parseCore(core, &v); err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, text, err)
	}

	if !hasPre {
		return v, nil
	}

	if err := parsePreRelease(pre, &v); err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, text, err)
	}

	return v, nil
}

// parseCore fills in the MAJOR.MINOR.PATCH triple.
func parseCore(core string, v *Version) error {
	parts := strings.Split(core, ".")
	if len(parts) != 3 { //nolint:mnd // major.minor.patch
		return fmt.Errorf("expected major.minor.patch, got %d field(s)", len(parts))
	}

	var err error
	if v.Major, err = parseNumber(parts[0]); err != nil {
		return fmt.Errorf("major: %v", err)
	}
	if v.Minor, err = parseNumber(parts[1]); err != nil {
		return fmt.Errorf("minor: %v", err)
	}
	if v.Patch, err = parseNumber(parts[2]); err != nil {
		return fmt.Errorf("patch: %v", err)
	}

	return nil
}

// parsePreRelease fills in the "-CHANNEL.NUM[-dev.NUM]" suffix.
func parsePreRelease(suffix string, v *Version) error {
	preSegment, devSegment, hasDev := strings.Cut(suffix, "-")

	channel, number, err := parseMarker(preSegment)
	if err != nil {
		return fmt.Errorf("pre-release: %v", err)
	}
	if channel == devChannel {
		// Dev builds are always relative to a pre-release; a bare
		// "-dev.N" has nothing to be relative to.
		return errors.New("dev marker without a pre-release channel")
	}

	v.Channel = channel
	v.PreNumber = number
	v.HasPre = true

	if !hasDev {
		return nil
	}

	channel, number, err = parseMarker(devSegment)
	if err != nil {
		return fmt.Errorf("dev: %v", err)
	}
	if channel != devChannel {
		return fmt.Errorf("expected dev marker, got %q", channel)
	}

	v.DevNumber = number
	v.HasDev = true
	return nil
}

// parseMarker splits a "name.number" segment such as "alpha.12" or "dev.5".
func parseMarker(segment string) (string, int, error) {
	name, numText, ok := strings.Cut(segment, ".")
	if !ok {
		return "", 0, fmt.Errorf("expected name.number, got %q", segment)
	}
	if name == "" {
		return "", 0, errors.New("empty marker name")
	}
	for _, r := range name {
		if r < 'a' || r > 'z' {
			return "", 0, fmt.Errorf("invalid marker name %q", name)
		}
	}

	number, err := parseNumber(numText)
	if err != nil {
		return "", 0, fmt.Errorf("marker %q: %v", name, err)
	}
	return name, number, nil
}

// parseNumber parses a non-negative decimal integer. Unlike strconv.Atoi
// it rejects signs, so "+1" and "-1" are malformed.
func parseNumber(text string) (int, error) {
	if text == "" {
		return 0, errors.New("empty number")
	}

	n := 0
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid number %q", text)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// Compare is a total order over versions. From most to least significant:
//
//  1. (major, minor, patch), lexicographic.
//  2. A released version sorts after any pre-release of the same triple.
//  3. Pre-release numbers compare numerically. Channel names are not
//     compared; only "alpha" is in active use, so an unrecognized channel
//     is treated as equal priority (see IsDefaultChannel).
//  4. A finalized pre-release sorts after any of its dev builds.
//  5. Dev numbers compare numerically.
//
// Worked order: 0.1.0-alpha.11 < 0.1.0-alpha.12-dev.5 < 0.1.0-alpha.12 < 0.1.0.
func Compare(a, b Version) Ordering {
	if c := compareInts(a.Major, b.Major); c != Equal {
		return c
	}
	if c := compareInts(a.Minor, b.Minor); c != Equal {
		return c
	}
	if c := compareInts(a.Patch, b.Patch); c != Equal {
		return c
	}

	// A release supersedes all its pre-releases.
	if !a.HasPre || !b.HasPre {
		return compareBools(!a.HasPre, !b.HasPre)
	}

	if c := compareInts(a.PreNumber, b.PreNumber); c != Equal {
		return c
	}

	// A finalized pre-release supersedes its dev builds.
	if !a.HasDev || !b.HasDev {
		return compareBools(!a.HasDev, !b.HasDev)
	}

	return compareInts(a.DevNumber, b.DevNumber)
}

// CompareLiterals compares two version literals, falling back to byte-wise
// lexicographic comparison of the original literals when either fails to
// parse. It never fails; malformed legacy strings still get an answer.
func CompareLiterals(a, b string) Ordering {
	va, errA := ParseVersion(a)
	vb, errB := ParseVersion(b)
	if errA != nil || errB != nil {
		return Ordering(strings.Compare(a, b))
	}
	return Compare(va, vb)
}

// IsNewer reports whether candidate is strictly newer than baseline, using
// the parse-or-fallback comparison of CompareLiterals.
func IsNewer(candidate, baseline string) bool {
	return CompareLiterals(candidate, baseline) == Greater
}

// IsDefaultChannel reports whether the version's pre-release channel is the
// one this policy actually orders ("alpha"). Callers use this to log a
// caveat when an unrecognized channel shows up; ordering between
// differently-named channels is deliberately unspecified.
func (v Version) IsDefaultChannel() bool {
	return !v.HasPre || v.Channel == defaultChannel
}

func compareInts(a, b int) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// compareBools orders false before true.
func compareBools(a, b bool) Ordering {
	switch {
	case !a && b:
		return Less
	case a && !b:
		return Greater
	default:
		return Equal
	}
}
