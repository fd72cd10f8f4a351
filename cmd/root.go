package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kodi-tools/addonupdate/internal/cmd"
	cmdopts "github.com/kodi-tools/addonupdate/internal/cmd/options"
	"github.com/kodi-tools/addonupdate/internal/flags"
)

var version = "dev" // Set at build time using -ldflags

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute runs the CLI. Ctrl-C cancels the running operation, including an in-progress download.
func Execute() error {
	rootCmd, err := NewRootCmd(&cmd.BaseCmd{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

// NewRootCmd creates the root command with every sub-command attached.
// opts are passed to each sub-command after the defaults derived from baseCmd.
func NewRootCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	c := &RootCmd{
		BaseCmd: baseCmd,
	}

	rootCmd := &cobra.Command{
		Use:               "addonupdate <command> [args]",
		Short:             "Keeps a Kodi add-on up to date with its GitHub repository.",
		Long:              c.longDescription(),
		SilenceUsage:      true,
		Version:           version,
		PersistentPreRunE: c.loadEnvFile,
	}

	flags.InitFlags(rootCmd.PersistentFlags())

	opts := append([]cmdopts.CmdOption{cmdopts.WithUpdaterBuilder(baseCmd)}, opt...)

	fns := []func(*cmd.BaseCmd, ...cmdopts.CmdOption) (*cobra.Command, error){
		NewInitCmd,
		NewCheckCmd,
		NewUpdateCmd,
		NewBranchesCmd,
		NewSettingsBranchesCmd,
		NewFileDatesCmd,
	}

	for _, fn := range fns {
		tempCmd, err := fn(baseCmd, opts...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `'addonupdate' checks a GitHub repository for a newer version of an installed Kodi add-on,
downloads the branch archive and installs it over the add-on directory.

It can also list the repository branches, write them into the add-on settings,
and export the last commit date of every file on a branch.`
}

// loadEnvFile loads GitHub credentials from the env file without overriding the environment.
// A missing default env file is ignored.
func (c *RootCmd) loadEnvFile(_ *cobra.Command, _ []string) error {
	path := strings.TrimSpace(flags.EnvFile)
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err == nil {
		c.Logger().Debug("Loaded env file", "path", path)
		return nil
	}
	if path == flags.DefaultEnvFile && errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to load env file (%s): %w", path, err)
}
