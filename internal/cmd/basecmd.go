package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/kodi-tools/addonupdate/internal/config"
	"github.com/kodi-tools/addonupdate/internal/download"
	"github.com/kodi-tools/addonupdate/internal/files"
	"github.com/kodi-tools/addonupdate/internal/flags"
	"github.com/kodi-tools/addonupdate/internal/github"
	"github.com/kodi-tools/addonupdate/internal/installer"
	"github.com/kodi-tools/addonupdate/internal/perms"
	"github.com/kodi-tools/addonupdate/internal/ui"
	"github.com/kodi-tools/addonupdate/internal/updater"
)

const (
	// EnvVarGitHubToken authenticates GitHub API requests.
	EnvVarGitHubToken = "GITHUB_TOKEN"

	// EnvVarGitHubUser and EnvVarGitHubPassword are the Basic auth credentials used for commit history.
	EnvVarGitHubUser     = "GITHUB_USER"
	EnvVarGitHubPassword = "GITHUB_PASSWORD"

	// userConfigFile is looked up in the user config dir when the default config file is missing.
	userConfigFile = "config.toml"
)

// UpdaterBuilder creates an update client for a loaded configuration.
type UpdaterBuilder interface {
	Build(cfg *config.Config, u ui.UI) (*updater.Client, error)
}

type BaseCmd struct {
	logger hclog.Logger

	// HTTPClient, when set, is used for every GitHub request instead of a client built from the config.
	HTTPClient *http.Client
}

// SetLogger updates the command's logger
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the current logger for the command, creating one from the global flags on first use.
func (c *BaseCmd) Logger() hclog.Logger {
	if c.logger != nil {
		return c.logger
	}

	logLevel := flags.LogLevel
	if logLevel == "" {
		logLevel = strings.ToLower(strings.TrimSpace(os.Getenv(flags.EnvVarLogLevel)))
		if logLevel == "" {
			logLevel = flags.DefaultLogLevel
		}
	}

	logPath := flags.LogPath
	if logPath == "" {
		logPath = strings.TrimSpace(os.Getenv(flags.EnvVarLogPath))
	}

	var output io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to open log file (%s): %v, logging disabled\n", logPath, err)
		} else {
			output = f
		}
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "addonupdate",
		Level:  hclog.LevelFromString(logLevel),
		Output: output,
	})

	return c.logger
}

// RequireTogether returns an error when only some of the named flags were set on cmd.
func (c *BaseCmd) RequireTogether(cmd *cobra.Command, flagNames ...string) error {
	var set, missing []string
	for _, name := range flagNames {
		if cmd.Flags().Changed(name) {
			set = append(set, name)
		} else {
			missing = append(missing, name)
		}
	}

	if len(set) == 0 || len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)
	for i := range missing {
		missing[i] = "--" + missing[i]
	}

	return fmt.Errorf("flags %s must be provided together, missing: %s",
		"--"+strings.Join(flagNames, ", --"), strings.Join(missing, ", "))
}

// LoadConfig loads the config file selected by the global flags and applies repo on top.
// A missing default config file is tolerated, since owner and repo may come from flags alone.
func (c *BaseCmd) LoadConfig(loader config.Loader, repo RepoFlags) (*config.Config, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{}
	if path != "" {
		if cfg, err = loader.Load(path); err != nil {
			return nil, err
		}
		c.Logger().Debug("Loaded config", "path", cfg.Path())
	}

	repo.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configFilePath returns the config file to load, or "" when the default file is not present anywhere.
func configFilePath() (string, error) {
	path := strings.TrimSpace(flags.ConfigFile)
	if path != flags.DefaultConfigFile || files.Exists(path) {
		return path, nil
	}

	dir, err := files.UserSpecificConfigDir()
	if err != nil {
		return "", err
	}
	if fallback := filepath.Join(dir, userConfigFile); files.Exists(fallback) {
		return fallback, nil
	}

	return "", nil
}

// Build creates an update client using the GitHub token from the environment and a console-backed UI.
func (c *BaseCmd) Build(cfg *config.Config, u ui.UI) (*updater.Client, error) {
	logger := c.Logger()

	paths, err := cfg.Paths()
	if err != nil {
		return nil, err
	}

	ghOpts := []github.Option{github.WithToken(os.Getenv(EnvVarGitHubToken))}
	if d := cfg.TimeoutDuration(); d > 0 {
		ghOpts = append(ghOpts, github.WithTimeout(d))
	}
	if cfg.APIURL != "" {
		ghOpts = append(ghOpts, github.WithAPIBaseURL(cfg.APIURL))
	}
	if c.HTTPClient != nil {
		ghOpts = append(ghOpts, github.WithHTTPClient(c.HTTPClient))
	}

	gh, err := github.NewClient(logger, ghOpts...)
	if err != nil {
		return nil, err
	}

	dl, err := download.NewDownloader(
		logger,
		download.WithHTTPClient(gh.DownloadClient()),
		download.WithProgress(u),
	)
	if err != nil {
		return nil, err
	}

	notify := func(msg string) {
		logger.Info(msg)
	}
	if n, ok := u.(ui.Notifier); ok {
		notify = n.Notify
	}

	inst, err := installer.NewZipInstaller(logger, paths.AddonsDir, notify)
	if err != nil {
		return nil, err
	}

	return updater.NewClient(logger, gh, dl, inst, paths, updater.WithPrompter(u))
}
