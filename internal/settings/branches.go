// Package settings rewrites the add-on settings definition file (resources/settings.xml).
package settings

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/kodi-tools/addonupdate/internal/perms"
)

// ValuesSeparator joins the entries of a settings 'values' list.
const ValuesSeparator = "|"

// valuesPattern matches the 'values="..."' attribute following tag on the same line.
func valuesPattern(tag string) (*regexp.Regexp, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, fmt.Errorf("settings tag cannot be empty")
	}

	return regexp.Compile(`(` + regexp.QuoteMeta(tag) + `.+?values*=*")[^"]*(")`)
}

// ReplaceValues replaces the values list of every setting matching tag in content.
// It returns the new content and whether anything changed.
func ReplaceValues(content string, tag string, values []string) (string, bool, error) {
	re, err := valuesPattern(tag)
	if err != nil {
		return "", false, err
	}

	list := strings.Join(values, ValuesSeparator)
	// '$' is special in the replacement template.
	replacement := "${1}" + strings.ReplaceAll(list, "$", "$$") + "${2}"

	updated := re.ReplaceAllString(content, replacement)

	return updated, updated != content, nil
}

// RewriteValues applies ReplaceValues to the file at path and writes it back only when it changed.
func RewriteValues(path string, tag string, values []string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat settings file '%s': %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}

	updated, changed, err := ReplaceValues(string(data), tag, values)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	mode := info.Mode().Perm()
	if mode == 0 {
		mode = perms.RegularFile
	}
	if err := os.WriteFile(path, []byte(updated), mode); err != nil {
		return false, fmt.Errorf("failed to write settings file '%s': %w", path, err)
	}

	return true, nil
}
