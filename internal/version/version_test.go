package version

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSemantic_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{name: "equal", a: "1.0.0", b: "1.0.0", expected: 0},
		{name: "patch newer", a: "1.0.1", b: "1.0.0", expected: 1},
		{name: "numeric not lexical", a: "1.2.10", b: "1.2.9", expected: 1},
		{name: "older minor", a: "1.1.9", b: "1.2.0", expected: -1},
		{name: "leading v", a: "v2.0.0", b: "1.9.9", expected: 1},
		{name: "prerelease is older", a: "1.0.0-beta1", b: "1.0.0", expected: -1},
		{name: "tilde prerelease is older", a: "2.0.0~beta1", b: "2.0.0", expected: -1},
		{name: "tilde prerelease beats previous release", a: "2.0.0~beta1", b: "1.9.9", expected: 1},
		{name: "tilde and dash prerelease are equal", a: "2.0.0~beta1", b: "2.0.0-beta1", expected: 0},
		{name: "short form", a: "1.1", b: "1.0.5", expected: 1},
		{name: "surrounding whitespace", a: " 1.0.1 ", b: "1.0.0", expected: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := Semantic{}.Compare(tc.a, tc.b)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestSemantic_Compare_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    string
		b    string
	}{
		{name: "empty remote", a: "", b: "1.0.0"},
		{name: "garbage local", a: "1.0.0", b: "not-a-version"},
		{name: "whitespace only", a: "   ", b: "1.0.0"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Semantic{}.Compare(tc.a, tc.b)
			require.Error(t, err)
			require.ErrorIs(t, err, ErrMalformedVersion)
		})
	}
}

func TestIsNewer(t *testing.T) {
	t.Parallel()

	newer, err := IsNewer(nil, "1.0.3", "1.0.2")
	require.NoError(t, err)
	require.True(t, newer)

	newer, err = IsNewer(Semantic{}, "1.0.2", "1.0.2")
	require.NoError(t, err)
	require.False(t, newer)

	custom := ComparatorFunc(func(a, b string) (int, error) {
		if a == b {
			return 0, nil
		}
		return 1, nil
	})
	newer, err = IsNewer(custom, "x", "y")
	require.NoError(t, err)
	require.True(t, newer)

	failing := ComparatorFunc(func(string, string) (int, error) {
		return 0, errors.New("nope")
	})
	newer, err = IsNewer(failing, "1", "0")
	require.Error(t, err)
	require.False(t, newer)
}
