package config

var _ Provider = (*DefaultLoader)(nil)

type Loader interface {
	Load(path string) (*Config, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type DefaultLoader struct{}

// Config represents the .addonupdate.toml file structure.
type Config struct {
	// Owner is the GitHub user or organization that owns the add-on repository.
	Owner string `toml:"owner" json:"owner" yaml:"owner"`

	// Repo is the repository name.
	Repo string `toml:"repo" json:"repo" yaml:"repo"`

	// Branch to check and download, defaults to DefaultBranch.
	Branch string `toml:"branch,omitempty" json:"branch,omitempty" yaml:"branch,omitempty"`

	// AddonID of the installed add-on, defaults to Repo.
	AddonID string `toml:"addon_id,omitempty" json:"addonId,omitempty" yaml:"addon_id,omitempty"`

	// SettingsTag scopes the settings.xml entry whose values list is rewritten with branch names.
	SettingsTag string `toml:"settings_tag,omitempty" json:"settingsTag,omitempty" yaml:"settings_tag,omitempty"`

	// KodiHome holds 'addons' and 'userdata', defaults to ~/.kodi.
	KodiHome string `toml:"kodi_home,omitempty" json:"kodiHome,omitempty" yaml:"kodi_home,omitempty"`

	// AddonsDir overrides '<kodi_home>/addons'.
	AddonsDir string `toml:"addons_dir,omitempty" json:"addonsDir,omitempty" yaml:"addons_dir,omitempty"`

	// AddonDataDir overrides '<kodi_home>/userdata/addon_data'.
	AddonDataDir string `toml:"addon_data_dir,omitempty" json:"addonDataDir,omitempty" yaml:"addon_data_dir,omitempty"`

	// APIURL points at a GitHub Enterprise API endpoint, defaults to api.github.com.
	APIURL string `toml:"api_url,omitempty" json:"apiUrl,omitempty" yaml:"api_url,omitempty"`

	// Timeout bounds every HTTP request, as a Go duration string (e.g. '90s').
	Timeout string `toml:"timeout,omitempty" json:"timeout,omitempty" yaml:"timeout,omitempty"`

	configFilePath string `toml:"-"`
}

// Paths are the resolved add-on locations.
type Paths struct {
	AddonsDir    string
	AddonDataDir string
}
