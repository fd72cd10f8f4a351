package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kodi-tools/addonupdate/internal/files"
	"github.com/kodi-tools/addonupdate/internal/perms"
)

const (
	// DefaultBranch is used when no branch is configured.
	DefaultBranch = "master"

	// DefaultSettingsTag is the settings.xml setting id listing selectable branches.
	DefaultSettingsTag = "branch"
)

// Init creates the base skeleton configuration file.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content := `# GitHub repository holding the add-on.
owner = ""
repo = ""
branch = "master"

# Installed add-on id, defaults to repo.
# addon_id = ""

# settings.xml setting whose values list holds the branch names.
# settings_tag = "branch"

# kodi_home = "~/.kodi"
# timeout = "10m"

# GitHub Enterprise API endpoint.
# api_url = "https://github.example.com/api/v3/"
`

	if err := os.WriteFile(path, []byte(content), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Load decodes and validates the config file at path.
func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'addonupdate init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	_, err = toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	if err := cfg.validateValues(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	cfg.configFilePath = path

	return cfg, nil
}

// Path returns the file this config was loaded from, if any.
func (c *Config) Path() string {
	return c.configFilePath
}

// Validate checks that the repository is fully identified and every value is well-formed.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return fmt.Errorf("%w: 'owner' is required", ErrInvalidValue)
	}
	if strings.TrimSpace(c.Repo) == "" {
		return fmt.Errorf("%w: 'repo' is required", ErrInvalidValue)
	}

	return c.validateValues()
}

// validateValues checks the values that are present without requiring any of them.
func (c *Config) validateValues() error {
	for key, v := range map[string]string{
		"owner":    c.Owner,
		"repo":     c.Repo,
		"addon_id": c.AddonID,
	} {
		if strings.ContainsAny(v, `/\ `) || v == "." || v == ".." {
			return NewErrInvalidValue(key, v)
		}
	}

	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return NewErrInvalidValue("api_url", c.APIURL)
		}
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil || d <= 0 {
			return NewErrInvalidValue("timeout", c.Timeout)
		}
	}

	return nil
}

// ResolvedBranch returns Branch or DefaultBranch.
func (c *Config) ResolvedBranch() string {
	if b := strings.TrimSpace(c.Branch); b != "" {
		return b
	}

	return DefaultBranch
}

// ResolvedAddonID returns AddonID or, when unset, Repo.
func (c *Config) ResolvedAddonID() string {
	if id := strings.TrimSpace(c.AddonID); id != "" {
		return id
	}

	return strings.TrimSpace(c.Repo)
}

// ResolvedSettingsTag returns SettingsTag or DefaultSettingsTag.
func (c *Config) ResolvedSettingsTag() string {
	if tag := strings.TrimSpace(c.SettingsTag); tag != "" {
		return tag
	}

	return DefaultSettingsTag
}

// TimeoutDuration returns the parsed Timeout, or 0 when unset or invalid.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 0
	}

	return d
}

// Paths resolves the add-ons and add-on data directories.
func (c *Config) Paths() (Paths, error) {
	home := strings.TrimSpace(c.KodiHome)
	if home == "" {
		var err error
		home, err = files.KodiHomeDir()
		if err != nil {
			return Paths{}, err
		}
	}
	home, err := expandHome(home)
	if err != nil {
		return Paths{}, err
	}

	p := Paths{
		AddonsDir:    filepath.Join(home, "addons"),
		AddonDataDir: filepath.Join(home, "userdata", "addon_data"),
	}

	if v := strings.TrimSpace(c.AddonsDir); v != "" {
		if p.AddonsDir, err = expandHome(v); err != nil {
			return Paths{}, err
		}
	}
	if v := strings.TrimSpace(c.AddonDataDir); v != "" {
		if p.AddonDataDir, err = expandHome(v); err != nil {
			return Paths{}, err
		}
	}

	return p, nil
}

// AddonDir returns the install directory of addonID.
func (p Paths) AddonDir(addonID string) string {
	return filepath.Join(p.AddonsDir, addonID)
}

// DataDir returns the private data directory of addonID.
func (p Paths) DataDir(addonID string) string {
	return filepath.Join(p.AddonDataDir, addonID)
}

// SettingsFile returns the settings definition file shipped with addonID.
func (p Paths) SettingsFile(addonID string) string {
	return filepath.Join(p.AddonDir(addonID), "resources", "settings.xml")
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}
