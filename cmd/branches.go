package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kodi-tools/addonupdate/internal/cmd"
	cmdopts "github.com/kodi-tools/addonupdate/internal/cmd/options"
	"github.com/kodi-tools/addonupdate/internal/config"
	"github.com/kodi-tools/addonupdate/internal/ui"
)

type branchPrinter struct {
	current string
}

func (p branchPrinter) Header(w io.Writer, count int) {
	_, _ = fmt.Fprintf(w, "🌿 %d branch(es)\n", count)
}

func (p branchPrinter) Item(w io.Writer, name string) error {
	marker := " "
	if name == p.current {
		marker = "*"
	}
	_, err := fmt.Fprintf(w, "%s %s\n", marker, name)
	return err
}

func (p branchPrinter) Footer(io.Writer, int) {}

// BranchesCmd lists the branches of the add-on repository.
type BranchesCmd struct {
	*cmd.BaseCmd
	Repo      cmd.RepoFlags
	Format    cmd.OutputFormat
	cfgLoader config.Loader
	builder   cmd.UpdaterBuilder
}

func NewBranchesCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &BranchesCmd{
		BaseCmd:   baseCmd,
		Format:    cmd.FormatText,
		cfgLoader: opts.ConfigLoader,
		builder:   opts.UpdaterBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "branches",
		Short: "Lists the branches of the add-on repository",
		Long:  "Lists every branch of the add-on repository, marking the configured branch with '*'.",
		RunE:  c.run,
	}

	c.Repo.Register(cobraCommand.Flags())
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowedFormats()),
	)

	return cobraCommand, nil
}

func (c *BranchesCmd) run(cobraCmd *cobra.Command, _ []string) error {
	cfg, err := c.LoadConfig(c.cfgLoader, c.Repo)
	if err != nil {
		return err
	}

	handler, err := cmd.NewHandler[string](c.Format, cobraCmd.OutOrStdout(), branchPrinter{current: cfg.ResolvedBranch()})
	if err != nil {
		return err
	}

	client, err := c.builder.Build(cfg, ui.Noop{})
	if err != nil {
		return handler.HandleError(err)
	}

	branches, err := client.GetBranches(cobraCmd.Context(), cfg.Owner, cfg.Repo)
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResults(branches...)
}
