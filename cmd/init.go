package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kodi-tools/addonupdate/internal/cmd"
	cmdopts "github.com/kodi-tools/addonupdate/internal/cmd/options"
	"github.com/kodi-tools/addonupdate/internal/config"
	"github.com/kodi-tools/addonupdate/internal/files"
	"github.com/kodi-tools/addonupdate/internal/flags"
	"github.com/kodi-tools/addonupdate/internal/perms"
)

const envTemplate = `# GitHub credentials for addonupdate. Keep this file private.
GITHUB_TOKEN=
GITHUB_USER=
GITHUB_PASSWORD=
`

type InitCmd struct {
	*cmd.BaseCmd
	WithEnv        bool
	cfgInitializer config.Initializer
}

func NewInitCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &InitCmd{
		BaseCmd:        baseCmd,
		cfgInitializer: opts.ConfigInitializer,
	}

	cobraCommand := &cobra.Command{
		Use:   "init",
		Short: "Creates an addonupdate configuration file",
		Long:  c.longDescription(),
		RunE:  c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.WithEnv,
		"env",
		false,
		"Also create a private .env file for GitHub credentials next to the config file",
	)

	return cobraCommand, nil
}

func (c *InitCmd) longDescription() string {
	return fmt.Sprintf(
		"Creates a %s configuration file naming the add-on repository to update from.\n\n"+
			"The configuration file path can be overridden using the `--%s` flag or the `%s` environment variable",
		flags.DefaultConfigFile,
		flags.FlagNameConfigFile,
		flags.EnvVarConfigFile,
	)
}

func (c *InitCmd) run(cmd *cobra.Command, _ []string) error {
	logger := c.Logger()

	initFilePath := flags.ConfigFile
	if flags.ConfigFile == flags.DefaultConfigFile {
		cwd, err := os.Getwd()
		if err != nil {
			logger.Error("Failed to get working directory", "error", err)
			return fmt.Errorf("error getting current directory: %w", err)
		}
		initFilePath = filepath.Join(cwd, flags.DefaultConfigFile)
	}

	if err := c.cfgInitializer.Init(initFilePath); err != nil {
		logger.Error("Config initialization failed", "error", err)
		return fmt.Errorf("error initializing config: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "✅ Config file created: %s\n", initFilePath); err != nil {
		return err
	}

	if !c.WithEnv {
		return nil
	}

	envPath := filepath.Join(filepath.Dir(initFilePath), flags.DefaultEnvFile)
	if files.Exists(envPath) {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "⚠️ Env file already exists, left unchanged: %s\n", envPath)
		return err
	}
	if err := os.WriteFile(envPath, []byte(envTemplate), perms.SecureFile); err != nil {
		return fmt.Errorf("error writing env file: %w", err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "🔑 Env file created: %s\n", envPath)

	return err
}
