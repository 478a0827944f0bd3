package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// BumpKind classifies a release as a minor or patch version bump.
type BumpKind int

const (
	BumpPatch BumpKind = iota
	BumpMinor
)

func (k BumpKind) String() string {
	if k == BumpMinor {
		return "minor"
	}
	return "patch"
}

// featuresMarker is the changelog heading that signals new features and
// therefore a minor bump.
const featuresMarker = "### Features"

// manifestVersionPattern matches the machine-readable version field of an
// npm-style manifest, e.g. `"version": "1.4.7"`.
var manifestVersionPattern = regexp.MustCompile(`"version":\s*"(\d+)\.(\d+)\.(\d+)"`)

// changelogHeadingPattern matches a changelog release heading at the start
// of a line, e.g. `## 1.4.7 (2024-01-01)`. Anchoring to the heading keeps
// incidental occurrences of the same literal elsewhere untouched.
var changelogHeadingPattern = regexp.MustCompile(`(?m)^## (\d+)\.(\d+)\.(\d+)`)

// ClassifyBump scans the lines of a textual changelog diff and classifies
// the pending release. Only added lines (prefixed "+") count: a features
// heading that appears in removed or unchanged context must not trigger a
// minor bump.
func ClassifyBump(diffLines []string) BumpKind {
	for _, line := range diffLines {
		if strings.HasPrefix(line, "+") && strings.Contains(line, featuresMarker) {
			return BumpMinor
		}
	}
	return BumpPatch
}

// ApplyMinorBump returns the next minor release version: minor
// incremented, patch reset to zero, and any pre-release or dev marker
// dropped — a minor bump always targets a released version.
func ApplyMinorBump(v Version) Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// BumpManifestVersion applies a minor bump to the first version field of
// an npm-style manifest document. It returns the updated content, the new
// version, and whether a field was found. Exactly one substitution is
// performed.
func BumpManifestVersion(content string) (string, Version, bool) {
	loc := manifestVersionPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return content, Version{}, false
	}

	current, err := ParseVersion(fmt.Sprintf(
		"%s.%s.%s",
		content[loc[2]:loc[3]], content[loc[4]:loc[5]], content[loc[6]:loc[7]],
	))
	if err != nil {
		return content, Version{}, false
	}
	next := ApplyMinorBump(current)

	// Splice only the version triple so the field's own formatting
	// (spacing around the colon) survives untouched.
	updated := content[:loc[2]] + next.String() + content[loc[7]:]
	return updated, next, true
}

// BumpChangelogHeading applies a minor bump to the first release heading
// of a changelog document. It returns the updated content, the new
// version, and whether a heading was found. Exactly one substitution is
// performed, anchored to the heading pattern.
func BumpChangelogHeading(content string) (string, Version, bool) {
	loc := changelogHeadingPattern.FindStringSubmatchIndex(content)
	if loc == nil {
		return content, Version{}, false
	}

	heading := content[loc[0]:loc[1]]
	current, err := ParseVersion(strings.TrimPrefix(heading, "## "))
	if err != nil {
		return content, Version{}, false
	}
	next := ApplyMinorBump(current)

	updated := content[:loc[0]] + "## " + next.String() + content[loc[1]:]
	return updated, next, true
}
