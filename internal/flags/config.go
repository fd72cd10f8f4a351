package flags

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarConfigFile = "ADDONUPDATE_CONFIG_FILE"
	EnvVarEnvFile    = "ADDONUPDATE_ENV_FILE"
	EnvVarLogPath    = "ADDONUPDATE_LOG_PATH"
	EnvVarLogLevel   = "ADDONUPDATE_LOG_LEVEL"

	// Defaults
	DefaultConfigFile = ".addonupdate.toml"
	DefaultEnvFile    = ".env"
	DefaultLogPath    = ""
	DefaultLogLevel   = "info"

	// Flag names
	FlagNameConfigFile = "config-file"
	FlagNameEnvFile    = "env-file"
	FlagNameLogPath    = "log-path"
	FlagNameLogLevel   = "log-level"
)

var (
	ConfigFile string
	EnvFile    string
	LogPath    string
	LogLevel   string
)

// InitFlags registers the global flags on fs.
// Each flag defaults to its environment variable, then to the package default.
func InitFlags(fs *pflag.FlagSet) {
	initConfigFile(fs)
	initEnvFile(fs)
	initLogger(fs)
}

func initConfigFile(fs *pflag.FlagSet) {
	if ConfigFile == "" {
		ConfigFile = envOrDefault(EnvVarConfigFile, DefaultConfigFile)
	}
	fs.StringVar(&ConfigFile, FlagNameConfigFile, ConfigFile, "path to config file")
}

func initEnvFile(fs *pflag.FlagSet) {
	if EnvFile == "" {
		EnvFile = envOrDefault(EnvVarEnvFile, DefaultEnvFile)
	}
	fs.StringVar(&EnvFile, FlagNameEnvFile, EnvFile, "path to a .env file holding GitHub credentials")
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		LogPath = envOrDefault(EnvVarLogPath, DefaultLogPath)
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file")

	if LogLevel == "" {
		LogLevel = strings.ToLower(envOrDefault(EnvVarLogLevel, DefaultLogLevel))
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level for addonupdate logs")
}

func envOrDefault(key string, def string) string {
	if env := strings.TrimSpace(os.Getenv(key)); env != "" {
		return env
	}

	return def
}
