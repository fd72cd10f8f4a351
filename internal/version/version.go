// Package version compares add-on version strings.
package version

import (
	"errors"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ErrMalformedVersion is returned when a version string cannot be parsed.
var ErrMalformedVersion = errors.New("malformed version")

// Comparator orders two version strings.
// Compare returns -1, 0 or 1 when a is older than, equal to or newer than b.
type Comparator interface {
	Compare(a, b string) (int, error)
}

// ComparatorFunc adapts a plain function to a Comparator.
type ComparatorFunc func(a, b string) (int, error)

func (f ComparatorFunc) Compare(a, b string) (int, error) {
	return f(a, b)
}

// Semantic compares versions using semantic-version-like ordering ("1.2.10" > "1.2.9").
// A leading 'v' and pre-release/metadata suffixes are accepted, with '~' or '-' before a pre-release.
type Semantic struct{}

func (Semantic) Compare(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}

	return va.Compare(vb), nil
}

// Parse parses a version string, wrapping any failure in ErrMalformedVersion.
func Parse(v string) (*goversion.Version, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, fmt.Errorf("%w: empty version", ErrMalformedVersion)
	}

	// Kodi writes pre-releases as "2.0.0~beta1".
	parsed, err := goversion.NewVersion(strings.ReplaceAll(v, "~", "-"))
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrMalformedVersion, v, err)
	}

	return parsed, nil
}

// IsNewer reports whether remote compares greater than local under c.
// A nil Comparator falls back to Semantic.
func IsNewer(c Comparator, remote, local string) (bool, error) {
	if c == nil {
		c = Semantic{}
	}

	cmp, err := c.Compare(remote, local)
	if err != nil {
		return false, err
	}

	return cmp > 0, nil
}
