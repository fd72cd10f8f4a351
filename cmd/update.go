package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodi-tools/addonupdate/internal/cmd"
	cmdopts "github.com/kodi-tools/addonupdate/internal/cmd/options"
	"github.com/kodi-tools/addonupdate/internal/config"
	uerrors "github.com/kodi-tools/addonupdate/internal/errors"
	"github.com/kodi-tools/addonupdate/internal/ui"
	"github.com/kodi-tools/addonupdate/internal/updater"
)

// UpdateCmd downloads and installs a newer add-on version after asking the user.
type UpdateCmd struct {
	*cmd.BaseCmd
	Repo       cmd.RepoFlags
	Yes        bool
	Force      bool
	DryRun     bool
	Silent     bool
	UpdateOnly []string
	cfgLoader  config.Loader
	builder    cmd.UpdaterBuilder
}

func NewUpdateCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &UpdateCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
		builder:   opts.UpdaterBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "update",
		Short: "Downloads and installs a newer version of the add-on",
		Long:  c.longDescription(),
		RunE:  c.run,
	}

	c.Repo.Register(cobraCommand.Flags())

	cobraCommand.Flags().BoolVarP(
		&c.Yes,
		"yes",
		"y",
		false,
		"Install without asking for confirmation",
	)

	cobraCommand.Flags().BoolVar(
		&c.Force,
		"force",
		false,
		"Download and install the branch even when the installed version is not older",
	)

	cobraCommand.Flags().BoolVar(
		&c.DryRun,
		"dry-run",
		false,
		"Download the archive and log the files that would be installed without writing them",
	)

	cobraCommand.Flags().BoolVar(
		&c.Silent,
		"silent",
		false,
		"Do not show the installation summary",
	)

	cobraCommand.Flags().StringArrayVar(
		&c.UpdateOnly,
		"update-only",
		nil,
		"Optional, only install this add-on relative path (can be repeated)",
	)

	return cobraCommand, nil
}

func (c *UpdateCmd) longDescription() string {
	return `Checks GitHub for a newer add-on version and, once confirmed, downloads the branch archive
into the add-on data directory and installs it over the add-on.

Press Ctrl-C to cancel a running download; the partial archive is removed.`
}

func (c *UpdateCmd) run(cobraCmd *cobra.Command, _ []string) error {
	ctx := cobraCmd.Context()
	out := cobraCmd.OutOrStdout()

	cfg, err := c.LoadConfig(c.cfgLoader, c.Repo)
	if err != nil {
		return err
	}

	console := ui.NewConsole(ctx, cobraCmd.InOrStdin(), out, c.Yes)
	client, err := c.builder.Build(cfg, console)
	if err != nil {
		return err
	}

	installOpts := updater.InstallOptions{
		DryRun:     c.DryRun,
		UpdateOnly: c.UpdateOnly,
		Silent:     c.Silent,
	}
	addonID := cfg.ResolvedAddonID()

	var installed bool
	if c.Force {
		err = client.DownloadAndInstall(ctx, cfg.Owner, cfg.Repo, addonID, cfg.ResolvedBranch(), installOpts)
		installed = err == nil
	} else {
		installed, err = client.PromptForDownloadAndInstall(ctx, cfg.Owner, cfg.Repo, addonID, cfg.ResolvedBranch(), installOpts)
	}

	switch {
	case uerrors.IsCancelled(err):
		_, err = fmt.Fprintf(out, "⚠️ %s\n", err)
		return err
	case err != nil:
		return err
	case installed && c.DryRun:
		_, err = fmt.Fprintf(out, "🔍 Dry run complete for %s, nothing was written\n", addonID)
	case installed:
		_, err = fmt.Fprintf(out, "✅ %s installed from '%s'\n", addonID, cfg.ResolvedBranch())
	default:
		_, err = fmt.Fprintf(out, "No update installed for %s\n", addonID)
	}

	return err
}
