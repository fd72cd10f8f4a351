// Package updater checks GitHub for a newer add-on version and installs it.
//
// Every failure leaving this package is an errors.UpdateError. Version and
// branch checks are advisory: PromptForDownloadAndInstall and
// UpdateSettingsWithBranches log those failures and carry on, while the
// download and install path returns them unchanged.
package updater

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/kodi-tools/addonupdate/internal/addon"
	"github.com/kodi-tools/addonupdate/internal/config"
	"github.com/kodi-tools/addonupdate/internal/download"
	uerrors "github.com/kodi-tools/addonupdate/internal/errors"
	"github.com/kodi-tools/addonupdate/internal/github"
	"github.com/kodi-tools/addonupdate/internal/installer"
	"github.com/kodi-tools/addonupdate/internal/settings"
	"github.com/kodi-tools/addonupdate/internal/ui"
	"github.com/kodi-tools/addonupdate/internal/version"
)

const (
	msgReadError      = "GitHub Download Error - Error reading file"
	msgNoVersion      = "GitHub Download Error - No version found in addon.xml"
	msgLocalVersion   = "Unable to read installed add-on version"
	msgCompareError   = "Unable to compare add-on versions"
	msgPrompt         = "A new version of %s is available\nDownload and install?"
	msgInstallError   = "Add-on installation failed"
	msgBranchesError  = "Get branches Error"
	msgCommitsError   = "Get commits Error"
	msgFileDatesError = "Unable to write file dates"
	msgSettingsError  = "Unable to update settings file"
)

// Installer places a downloaded archive over an installed add-on.
type Installer interface {
	CurrentVersion(addonID string) (string, error)
	Install(ctx context.Context, addonID string, archivePath string, opts installer.Options) error
}

// Downloader streams a remote file to disk.
type Downloader interface {
	Download(ctx context.Context, url string, dest string) (*download.Task, error)
}

// InstallOptions are passed through to the Installer. The archive is always deleted afterwards.
type InstallOptions struct {
	DryRun     bool
	UpdateOnly []string
	Silent     bool
}

// CheckResult is the outcome of a version check.
type CheckResult struct {
	Available     bool   `json:"available" yaml:"available"`
	RemoteVersion string `json:"remoteVersion" yaml:"remote_version"`
	LocalVersion  string `json:"localVersion" yaml:"local_version"`
}

// Client checks, downloads and installs add-on updates from GitHub.
// NewClient should be used to create instances of Client.
type Client struct {
	gh         *github.Client
	dl         Downloader
	installer  Installer
	paths      config.Paths
	prompter   ui.Prompter
	comparator version.Comparator
	tr         ui.Translator
	logger     hclog.Logger
}

// NewClient creates an update client.
func NewClient(
	logger hclog.Logger,
	gh *github.Client,
	dl Downloader,
	inst Installer,
	paths config.Paths,
	opts ...Option,
) (*Client, error) {
	if gh == nil {
		return nil, fmt.Errorf("GitHub client cannot be nil")
	}
	if dl == nil {
		return nil, fmt.Errorf("downloader cannot be nil")
	}
	if inst == nil {
		return nil, fmt.Errorf("installer cannot be nil")
	}

	options, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		gh:         gh,
		dl:         dl,
		installer:  inst,
		paths:      paths,
		prompter:   options.prompter,
		comparator: options.comparator,
		tr:         options.translate,
		logger:     logger.Named("updater"),
	}, nil
}

// CheckForDownload compares the version in the branch's remote addon.xml with the installed one.
// Available is true only when the remote version is newer.
func (c *Client) CheckForDownload(ctx context.Context, owner, repo, branch, addonID string) (CheckResult, error) {
	url := c.gh.ManifestURL(owner, repo, branch)

	data, err := c.gh.ReadFile(ctx, url)
	if err != nil {
		return CheckResult{}, uerrors.Hard(c.tr(msgReadError), err)
	}

	remote, err := addon.ParseVersion(data)
	if err != nil {
		return CheckResult{}, uerrors.Hard(c.tr(msgNoVersion), err)
	}

	local, err := c.installer.CurrentVersion(addonID)
	if err != nil {
		return CheckResult{RemoteVersion: remote}, uerrors.Hard(c.tr(msgLocalVersion), err)
	}

	res := CheckResult{RemoteVersion: remote, LocalVersion: local}

	newer, err := version.IsNewer(c.comparator, remote, local)
	if err != nil {
		return res, uerrors.Hard(c.tr(msgCompareError), err)
	}
	res.Available = newer

	c.logger.Debug(
		"Checked for update",
		"addon", addonID,
		"branch", branch,
		"remote", remote,
		"local", local,
		"available", newer,
	)

	return res, nil
}

// PromptForDownloadAndInstall installs the update after the user confirms it.
// It reports whether an installation ran. A failed check is logged and treated as no update.
func (c *Client) PromptForDownloadAndInstall(
	ctx context.Context,
	owner, repo, addonID, branch string,
	opts InstallOptions,
) (bool, error) {
	res, err := c.CheckForDownload(ctx, owner, repo, branch, addonID)
	if err != nil {
		c.logger.Warn("Update check failed", "addon", addonID, "error", err)
		return false, nil
	}
	if !res.Available {
		return false, nil
	}

	if !c.prompter.Confirm(fmt.Sprintf(c.tr(msgPrompt), addonID)) {
		c.logger.Info("Update declined", "addon", addonID, "version", res.RemoteVersion)
		return false, nil
	}

	c.logger.Info("New version found on GitHub. Starting Download/Install.", "addon", addonID, "version", res.RemoteVersion)
	if err := c.DownloadAndInstall(ctx, owner, repo, addonID, branch, opts); err != nil {
		return false, err
	}

	return true, nil
}

// ArchivePath is where the branch archive of addonID is downloaded to.
func (c *Client) ArchivePath(addonID string) string {
	return filepath.Join(c.paths.DataDir(addonID), addonID+".zip")
}

// DownloadAndInstall downloads the branch archive and hands it to the Installer.
// Download errors are returned unchanged and the Installer is not called.
func (c *Client) DownloadAndInstall(
	ctx context.Context,
	owner, repo, addonID, branch string,
	opts InstallOptions,
) error {
	url := c.gh.ArchiveURL(owner, repo, branch)
	dest := c.ArchivePath(addonID)

	if _, err := c.dl.Download(ctx, url, dest); err != nil {
		return err
	}

	err := c.installer.Install(ctx, addonID, dest, installer.Options{
		DryRun:        opts.DryRun,
		UpdateOnly:    opts.UpdateOnly,
		DeleteArchive: true,
		Silent:        opts.Silent,
	})
	if err != nil {
		return uerrors.Hard(c.tr(msgInstallError), err)
	}

	return nil
}

// GetBranches lists the repository's branch names.
func (c *Client) GetBranches(ctx context.Context, owner, repo string) ([]string, error) {
	branches, err := c.gh.ListBranches(ctx, owner, repo)
	if err != nil {
		uerr := uerrors.Hard(c.tr(msgBranchesError), err)
		c.logger.Error(uerr.Error())
		return nil, uerr
	}

	return branches, nil
}

// UpdateSettingsWithBranches writes the repository's branch names into the values list of the
// setting matched by tag in the add-on's settings.xml. addonID defaults to repo.
// It reports whether the file changed; a failed branch listing leaves the file alone and returns false.
func (c *Client) UpdateSettingsWithBranches(ctx context.Context, tag, owner, repo, addonID string) (bool, error) {
	if strings.TrimSpace(addonID) == "" {
		addonID = repo
	}

	branches, err := c.GetBranches(ctx, owner, repo)
	if err != nil {
		return false, nil
	}

	path := c.paths.SettingsFile(addonID)
	changed, err := settings.RewriteValues(path, tag, branches)
	if err != nil {
		return false, uerrors.Hard(c.tr(msgSettingsError), err)
	}

	c.logger.Debug("Settings branch list checked", "path", path, "tag", tag, "changed", changed)

	return changed, nil
}
