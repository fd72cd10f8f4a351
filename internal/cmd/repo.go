package cmd

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/kodi-tools/addonupdate/internal/config"
)

const (
	FlagNameOwner   = "owner"
	FlagNameRepo    = "repo"
	FlagNameBranch  = "branch"
	FlagNameAddonID = "addon-id"
)

// RepoFlags select the repository and add-on, overriding the config file.
type RepoFlags struct {
	Owner   string
	Repo    string
	Branch  string
	AddonID string
}

// Register adds the repository flags to fs.
func (r *RepoFlags) Register(fs *pflag.FlagSet) {
	fs.StringVar(&r.Owner, FlagNameOwner, "", "GitHub user or organization owning the add-on repository")
	fs.StringVar(&r.Repo, FlagNameRepo, "", "GitHub repository of the add-on")
	fs.StringVar(&r.Branch, FlagNameBranch, "", "Branch to check and download (default from config, or 'master')")
	fs.StringVar(&r.AddonID, FlagNameAddonID, "", "Installed add-on id (default is the repository name)")
}

// Apply overwrites cfg with every flag that was given a value.
func (r RepoFlags) Apply(cfg *config.Config) {
	if v := strings.TrimSpace(r.Owner); v != "" {
		cfg.Owner = v
	}
	if v := strings.TrimSpace(r.Repo); v != "" {
		cfg.Repo = v
	}
	if v := strings.TrimSpace(r.Branch); v != "" {
		cfg.Branch = v
	}
	if v := strings.TrimSpace(r.AddonID); v != "" {
		cfg.AddonID = v
	}
}
