package domain

import "fmt"

// DependencySet maps a dependency name to its range literal as found in a
// manifest, e.g. "@typespec/compiler" -> "~1.4.0". The policy assumes no
// manifest schema beyond this mapping.
type DependencySet map[string]string

// RewriteDecision records whether an original range literal was kept over
// an externally-proposed replacement, with a human-readable reason for
// audit logging.
type RewriteDecision struct {
	Kept   bool
	Value  string
	Reason string
}

// DecideRewrite compares an original range literal against a proposed
// replacement. Range markers ("^", "~") are stripped from both before the
// comparison; the returned value is the untouched literal of whichever
// side wins. The original wins only when it is strictly newer — locally
// pinned dev builds typically are — otherwise the proposal stands.
func DecideRewrite(original, proposed string) RewriteDecision {
	origVersion := StripRangeMarkers(original)
	propVersion := StripRangeMarkers(proposed)

	if IsNewer(origVersion, propVersion) {
		return RewriteDecision{
			Kept:   true,
			Value:  original,
			Reason: fmt.Sprintf("kept %q: newer than proposed %q", original, proposed),
		}
	}

	return RewriteDecision{
		Kept:   false,
		Value:  proposed,
		Reason: fmt.Sprintf("took %q: proposed is not older than %q", proposed, original),
	}
}

// Reconcile merges an externally-proposed dependency set with the original
// one. For names present in both, the original value is restored when it
// is strictly newer than the proposal; names present only in the proposal
// pass through unchanged. The operation is idempotent: reconciling a prior
// output against the same original changes nothing.
func Reconcile(original, proposed DependencySet) DependencySet {
	out := make(DependencySet, len(proposed))
	for name, proposedValue := range proposed {
		originalValue, ok := original[name]
		if !ok {
			out[name] = proposedValue
			continue
		}
		out[name] = DecideRewrite(originalValue, proposedValue).Value
	}
	return out
}
