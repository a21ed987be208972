package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify_EmptyCurrentReplaces(t *testing.T) {
	d := Classify("", "Hello")
	require.Equal(t, Replace, d.Kind)
	require.Equal(t, "Hello", Apply("", "Hello", d))
}

func TestClassify_IdenticalResendReplaces(t *testing.T) {
	d := Classify("Hello, world", "Hello, world")
	require.Equal(t, Replace, d.Kind)
	require.Equal(t, "Hello, world", Apply("Hello, world", "Hello, world", d))
}

func TestClassify_PureExtensionReplaces(t *testing.T) {
	cur := "Hello, I can help"
	in := "Hello, I can help you today"
	d := Classify(cur, in)
	require.Equal(t, Replace, d.Kind)
	require.Equal(t, in, Apply(cur, in, d))
}

func TestClassify_ShorterResendKeepsLonger(t *testing.T) {
	cur := "Hello, I can help you today"
	in := "Hello, I can help"
	d := Classify(cur, in)
	require.Equal(t, KeepLonger, d.Kind)
	require.Equal(t, cur, Apply(cur, in, d))
}

func TestClassify_DivergentTailAppends(t *testing.T) {
	cur := "The cat sat"
	in := "The cat ran"
	d := Classify(cur, in)
	require.Equal(t, AppendSuffix, d.Kind)
	require.Equal(t, 8, d.CommonPrefixLen)
	// The divergent span duplicates. This is contract, not a bug to clean up.
	require.Equal(t, "The cat satran", Apply(cur, in, d))
}

func TestClassify_NoCommonPrefixAppendsWhole(t *testing.T) {
	d := Classify("abc", "xyz")
	require.Equal(t, AppendSuffix, d.Kind)
	require.Equal(t, 0, d.CommonPrefixLen)
	require.Equal(t, "abcxyz", Apply("abc", "xyz", d))
}

func TestClassify_EmptyIncomingOnNonEmptyCurrent(t *testing.T) {
	// "" is a prefix of any current text, so the longer text wins.
	d := Classify("partial", "")
	require.Equal(t, KeepLonger, d.Kind)
	require.Equal(t, "partial", Apply("partial", "", d))
}

func TestApply_NeverShrinks(t *testing.T) {
	cases := []struct{ cur, in string }{
		{"", ""},
		{"", "a"},
		{"a", ""},
		{"same", "same"},
		{"Hello", "Hello, more"},
		{"Hello, more", "Hello"},
		{"The cat sat", "The cat ran"},
		{"left", "right"},
		{"héllo wörld", "héllo wørld"},
	}
	for _, c := range cases {
		out := Apply(c.cur, c.in, Classify(c.cur, c.in))
		require.GreaterOrEqual(t, len(out), len(c.cur), "cur=%q in=%q", c.cur, c.in)
		require.True(t, strings.HasPrefix(out, c.cur), "cur=%q in=%q out=%q", c.cur, c.in, out)
	}
}
