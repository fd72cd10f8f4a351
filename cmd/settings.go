package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kodi-tools/addonupdate/internal/cmd"
	cmdopts "github.com/kodi-tools/addonupdate/internal/cmd/options"
	"github.com/kodi-tools/addonupdate/internal/config"
	"github.com/kodi-tools/addonupdate/internal/ui"
)

type settingsResult struct {
	Path    string `json:"path" yaml:"path"`
	Tag     string `json:"tag" yaml:"tag"`
	Changed bool   `json:"changed" yaml:"changed"`
}

type settingsPrinter struct{}

func (settingsPrinter) Header(io.Writer, int) {}

func (settingsPrinter) Item(w io.Writer, r settingsResult) error {
	var err error
	if r.Changed {
		_, err = fmt.Fprintf(w, "✅ Updated branch list of '%s' in %s\n", r.Tag, r.Path)
	} else {
		_, err = fmt.Fprintf(w, "No change to branch list of '%s' in %s\n", r.Tag, r.Path)
	}
	return err
}

func (settingsPrinter) Footer(io.Writer, int) {}

// SettingsBranchesCmd writes the repository branches into the add-on settings.xml.
type SettingsBranchesCmd struct {
	*cmd.BaseCmd
	Repo      cmd.RepoFlags
	Tag       string
	Format    cmd.OutputFormat
	cfgLoader config.Loader
	builder   cmd.UpdaterBuilder
}

func NewSettingsBranchesCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &SettingsBranchesCmd{
		BaseCmd:   baseCmd,
		Format:    cmd.FormatText,
		cfgLoader: opts.ConfigLoader,
		builder:   opts.UpdaterBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "settings-branches",
		Short: "Writes the repository branches into the add-on settings",
		Long: "Replaces the values list of the setting matched by --tag in the add-on's resources/settings.xml\n" +
			"with the repository branch names. The file is only written when the list changes.",
		RunE: c.run,
	}

	c.Repo.Register(cobraCommand.Flags())
	cobraCommand.Flags().StringVar(
		&c.Tag,
		"tag",
		"",
		fmt.Sprintf("Setting to update (default from config, or '%s')", config.DefaultSettingsTag),
	)
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowedFormats()),
	)

	return cobraCommand, nil
}

func (c *SettingsBranchesCmd) run(cobraCmd *cobra.Command, _ []string) error {
	handler, err := cmd.NewHandler[settingsResult](c.Format, cobraCmd.OutOrStdout(), settingsPrinter{})
	if err != nil {
		return err
	}

	cfg, err := c.LoadConfig(c.cfgLoader, c.Repo)
	if err != nil {
		return handler.HandleError(err)
	}
	if tag := strings.TrimSpace(c.Tag); tag != "" {
		cfg.SettingsTag = tag
	}

	paths, err := cfg.Paths()
	if err != nil {
		return handler.HandleError(err)
	}

	client, err := c.builder.Build(cfg, ui.Noop{})
	if err != nil {
		return handler.HandleError(err)
	}

	changed, err := client.UpdateSettingsWithBranches(
		cobraCmd.Context(),
		cfg.ResolvedSettingsTag(),
		cfg.Owner,
		cfg.Repo,
		cfg.AddonID,
	)
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResult(settingsResult{
		Path:    paths.SettingsFile(cfg.ResolvedAddonID()),
		Tag:     cfg.ResolvedSettingsTag(),
		Changed: changed,
	})
}
