package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kodi-tools/addonupdate/internal/cmd"
	cmdopts "github.com/kodi-tools/addonupdate/internal/cmd/options"
	"github.com/kodi-tools/addonupdate/internal/config"
	"github.com/kodi-tools/addonupdate/internal/ui"
	"github.com/kodi-tools/addonupdate/internal/updater"
)

type checkResult struct {
	AddonID             string `json:"addonId" yaml:"addon_id"`
	Branch              string `json:"branch" yaml:"branch"`
	updater.CheckResult `yaml:",inline"`
}

type checkPrinter struct{}

func (checkPrinter) Header(io.Writer, int) {}

func (checkPrinter) Item(w io.Writer, r checkResult) error {
	var err error
	if r.Available {
		_, err = fmt.Fprintf(w, "🆕 %s %s is available on '%s' (installed: %s)\n",
			r.AddonID, r.RemoteVersion, r.Branch, r.LocalVersion)
	} else {
		_, err = fmt.Fprintf(w, "✅ %s is up to date (installed: %s, '%s': %s)\n",
			r.AddonID, r.LocalVersion, r.Branch, r.RemoteVersion)
	}
	return err
}

func (checkPrinter) Footer(io.Writer, int) {}

// CheckCmd reports whether the repository holds a newer add-on version than the installed one.
type CheckCmd struct {
	*cmd.BaseCmd
	Repo      cmd.RepoFlags
	Format    cmd.OutputFormat
	cfgLoader config.Loader
	builder   cmd.UpdaterBuilder
}

func NewCheckCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CheckCmd{
		BaseCmd:   baseCmd,
		Format:    cmd.FormatText,
		cfgLoader: opts.ConfigLoader,
		builder:   opts.UpdaterBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "check",
		Short: "Checks GitHub for a newer version of the add-on",
		Long: "Compares the version in addon.xml on the configured branch with the installed add-on.\n" +
			"Nothing is downloaded.",
		RunE: c.run,
	}

	c.Repo.Register(cobraCommand.Flags())
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowedFormats()),
	)

	return cobraCommand, nil
}

func (c *CheckCmd) run(cobraCmd *cobra.Command, _ []string) error {
	handler, err := cmd.NewHandler[checkResult](c.Format, cobraCmd.OutOrStdout(), checkPrinter{})
	if err != nil {
		return err
	}

	cfg, err := c.LoadConfig(c.cfgLoader, c.Repo)
	if err != nil {
		return handler.HandleError(err)
	}

	client, err := c.builder.Build(cfg, ui.Noop{})
	if err != nil {
		return handler.HandleError(err)
	}

	res, err := client.CheckForDownload(
		cobraCmd.Context(),
		cfg.Owner,
		cfg.Repo,
		cfg.ResolvedBranch(),
		cfg.ResolvedAddonID(),
	)
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResult(checkResult{
		AddonID:     cfg.ResolvedAddonID(),
		Branch:      cfg.ResolvedBranch(),
		CheckResult: res,
	})
}

func allowedFormats() string {
	formats := cmd.AllowedOutputFormats()
	return formats.String()
}
