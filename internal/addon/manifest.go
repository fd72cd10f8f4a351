// Package addon reads the add-on manifest (addon.xml).
package addon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ManifestFile is the name of the add-on descriptor at the root of every add-on.
const ManifestFile = "addon.xml"

// ErrVersionNotFound is returned when a manifest has no parsable version attribute.
var ErrVersionNotFound = errors.New("version attribute not found in manifest")

// versionPattern is deliberately loose: it matches the first quoted value following
// 'version' on the line that opens the <addon ...> element.
var versionPattern = regexp.MustCompile(`<addon id\w*=?.+version\w*=\w*"(.+?)"`)

// ParseVersion extracts the add-on version from manifest content.
func ParseVersion(data []byte) (string, error) {
	m := versionPattern.FindSubmatch(data)
	if m == nil {
		return "", ErrVersionNotFound
	}

	return string(m[1]), nil
}

// ReadVersion reads the manifest inside addonDir and returns its version.
func ReadVersion(addonDir string) (string, error) {
	path := filepath.Join(addonDir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest '%s': %w", path, err)
	}

	v, err := ParseVersion(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, path)
	}

	return v, nil
}
