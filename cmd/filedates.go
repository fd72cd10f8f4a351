package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kodi-tools/addonupdate/internal/cmd"
	cmdopts "github.com/kodi-tools/addonupdate/internal/cmd/options"
	"github.com/kodi-tools/addonupdate/internal/config"
	"github.com/kodi-tools/addonupdate/internal/ui"
)

const (
	flagNameUser     = "user"
	flagNamePassword = "password"

	defaultFileDatesOutput = "filedates.json"
)

type fileDatesResult struct {
	Output string `json:"output" yaml:"output"`
	Files  int    `json:"files" yaml:"files"`
}

type fileDatesPrinter struct{}

func (fileDatesPrinter) Header(io.Writer, int) {}

func (fileDatesPrinter) Item(w io.Writer, r fileDatesResult) error {
	_, err := fmt.Fprintf(w, "📄 Wrote dates of %d file(s) to %s\n", r.Files, r.Output)
	return err
}

func (fileDatesPrinter) Footer(io.Writer, int) {}

// FileDatesCmd exports the last commit date of every file on a branch.
type FileDatesCmd struct {
	*cmd.BaseCmd
	Repo      cmd.RepoFlags
	Output    string
	User      string
	Password  string
	Format    cmd.OutputFormat
	cfgLoader config.Loader
	builder   cmd.UpdaterBuilder
}

func NewFileDatesCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &FileDatesCmd{
		BaseCmd:   baseCmd,
		Format:    cmd.FormatText,
		cfgLoader: opts.ConfigLoader,
		builder:   opts.UpdaterBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "file-dates",
		Short: "Exports the last commit date of every file on a branch",
		Long:  c.longDescription(),
		RunE:  c.run,
	}

	c.Repo.Register(cobraCommand.Flags())

	cobraCommand.Flags().StringVarP(
		&c.Output,
		"output",
		"o",
		defaultFileDatesOutput,
		"Path of the JSON file to write",
	)

	cobraCommand.Flags().StringVar(
		&c.User,
		flagNameUser,
		"",
		fmt.Sprintf("GitHub user for Basic auth (default from %s)", cmd.EnvVarGitHubUser),
	)

	cobraCommand.Flags().StringVar(
		&c.Password,
		flagNamePassword,
		"",
		fmt.Sprintf("GitHub password or token for Basic auth (default from %s)", cmd.EnvVarGitHubPassword),
	)

	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowedFormats()),
	)

	return cobraCommand, nil
}

func (c *FileDatesCmd) longDescription() string {
	return `Walks the commit history of the branch and writes a JSON object mapping every file
still present on the branch to the date of the latest commit touching it.`
}

// credentials returns the Basic auth flags, falling back to the environment.
func (c *FileDatesCmd) credentials() (string, string) {
	user, password := strings.TrimSpace(c.User), c.Password
	if user == "" && password == "" {
		user = strings.TrimSpace(os.Getenv(cmd.EnvVarGitHubUser))
		password = os.Getenv(cmd.EnvVarGitHubPassword)
	}

	return user, password
}

func (c *FileDatesCmd) run(cobraCmd *cobra.Command, _ []string) error {
	if err := c.RequireTogether(cobraCmd, flagNameUser, flagNamePassword); err != nil {
		return err
	}

	output := strings.TrimSpace(c.Output)
	if output == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	handler, err := cmd.NewHandler[fileDatesResult](c.Format, cobraCmd.OutOrStdout(), fileDatesPrinter{})
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

	user, password := c.credentials()
	dates, err := client.DumpFileDatesToJSON(
		cobraCmd.Context(),
		cfg.Owner,
		cfg.Repo,
		cfg.ResolvedBranch(),
		output,
		user,
		password,
	)
	if err != nil {
		return handler.HandleError(err)
	}

	return handler.HandleResult(fileDatesResult{Output: output, Files: len(dates)})
}
