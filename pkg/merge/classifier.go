package merge

import "strings"

// DecisionKind says how an incoming fragment relates to the text already shown.
type DecisionKind string

const (
	// Replace means the incoming fragment supersedes the current text wholesale.
	Replace DecisionKind = "replace"
	// AppendSuffix means the fragment diverges past a common prefix and its tail
	// is appended to the current text.
	AppendSuffix DecisionKind = "append_suffix"
	// KeepLonger means the fragment is a strict prefix of the current text and
	// the current text wins.
	KeepLonger DecisionKind = "keep_longer"
)

// Decision is the classifier verdict for one fragment. It is transient: callers
// derive the new display text from it and drop it.
type Decision struct {
	Kind            DecisionKind
	CommonPrefixLen int
}

// Classify compares the currently displayed text to an incoming fragment and
// decides how to merge them. It is total over any two strings.
//
// A well-behaved cumulative stream re-sends the whole text-so-far plus new tail
// on every chunk, which lands in the Replace branch. Fragments that merely
// repeat a shorter previous state are kept out via KeepLonger. Anything else is
// treated as additive content past the common prefix (AppendSuffix) rather than
// as a correction of the already-shown tail. That means a genuine mid-stream
// rewrite duplicates the divergent span ("The cat sat" + "The cat ran" shows
// "The cat satran"); callers depend on this exact behavior, do not "fix" it
// here. A real patch policy would need LCS diffing and belongs in a new
// DecisionKind, not in a change to these three.
func Classify(current, incoming string) Decision {
	if current == "" || strings.HasPrefix(incoming, current) {
		return Decision{Kind: Replace, CommonPrefixLen: len(current)}
	}
	if strings.HasPrefix(current, incoming) {
		return Decision{Kind: KeepLonger, CommonPrefixLen: len(incoming)}
	}
	return Decision{Kind: AppendSuffix, CommonPrefixLen: commonPrefixLen(current, incoming)}
}

// Apply derives the new display text from a decision. Kept separate from
// Classify so state holders never re-do merge arithmetic.
func Apply(current, incoming string, d Decision) string {
	switch d.Kind {
	case Replace:
		return incoming
	case KeepLonger:
		return current
	case AppendSuffix:
		return current + incoming[d.CommonPrefixLen:]
	}
	return current
}

// commonPrefixLen is byte-wise; a multi-byte rune split at the divergence point
// stays split, matching Go's string prefix semantics above.
func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
