package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestConfig_InitConfigFile_EnvVars(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "env var value with extra white space",
			value:    "  /custom/path/config.toml  ",
			expected: "/custom/path/config.toml",
		},
		{
			name:     "env var missing",
			value:    "",
			expected: DefaultConfigFile,
		},
		{
			name:     "env var only white space",
			value:    "   ",
			expected: DefaultConfigFile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarConfigFile, tc.value)
			t.Cleanup(func() {
				ConfigFile = ""
			})

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initConfigFile(fs)

			require.Equal(t, tc.expected, ConfigFile)
			flag := fs.Lookup(FlagNameConfigFile)
			require.NotNil(t, flag)
			require.Equal(t, tc.expected, flag.Value.String())
		})
	}
}

func TestConfig_InitEnvFile_EnvVars(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "env var set", value: " /secrets/github.env ", expected: "/secrets/github.env"},
		{name: "env var missing", value: "", expected: DefaultEnvFile},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarEnvFile, tc.value)
			t.Cleanup(func() {
				EnvFile = ""
			})

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initEnvFile(fs)

			require.Equal(t, tc.expected, EnvFile)
			require.Equal(t, tc.expected, fs.Lookup(FlagNameEnvFile).Value.String())
		})
	}
}

func TestConfig_InitLogger_EnvVars(t *testing.T) {
	tests := []struct {
		name          string
		logPathValue  string
		logLevelValue string
		expectedPath  string
		expectedLevel string
	}{
		{
			name:          "both env vars set with extra whitespace",
			logPathValue:  "  /var/log/addonupdate.log  ",
			logLevelValue: "  DEBUG  ",
			expectedPath:  "/var/log/addonupdate.log",
			expectedLevel: "debug",
		},
		{
			name:          "env vars set to only whitespace",
			logPathValue:  "   ",
			logLevelValue: "   ",
			expectedPath:  DefaultLogPath,
			expectedLevel: DefaultLogLevel,
		},
		{
			name:          "no env vars set",
			logPathValue:  "",
			logLevelValue: "",
			expectedPath:  DefaultLogPath,
			expectedLevel: DefaultLogLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarLogPath, tc.logPathValue)
			t.Setenv(EnvVarLogLevel, tc.logLevelValue)
			t.Cleanup(func() {
				LogPath = ""
				LogLevel = ""
			})

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initLogger(fs)

			require.Equal(t, tc.expectedPath, LogPath)
			require.Equal(t, tc.expectedLevel, LogLevel)

			pathFlag := fs.Lookup(FlagNameLogPath)
			require.NotNil(t, pathFlag)
			require.Equal(t, tc.expectedPath, pathFlag.Value.String())

			levelFlag := fs.Lookup(FlagNameLogLevel)
			require.NotNil(t, levelFlag)
			require.Equal(t, tc.expectedLevel, levelFlag.Value.String())
		})
	}
}

func TestConfig_ConfigFile_Precedence(t *testing.T) {
	tests := []struct {
		name        string
		envValue    string
		cmdLineArgs []string
		expected    string
	}{
		{
			name:        "flag takes precedence over everything",
			envValue:    "/env/path/config.toml",
			cmdLineArgs: []string{"--" + FlagNameConfigFile, "/flag/path/config.toml"},
			expected:    "/flag/path/config.toml",
		},
		{
			name:        "env var takes precedence over default value",
			envValue:    "/env/only/path.toml",
			cmdLineArgs: nil,
			expected:    "/env/only/path.toml",
		},
		{
			name:        "default used when no flag and no env var set",
			envValue:    "",
			cmdLineArgs: nil,
			expected:    DefaultConfigFile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Cleanup(func() {
				ConfigFile = ""
			})

			t.Setenv(EnvVarConfigFile, tc.envValue)

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

			initConfigFile(fs)
			require.NoError(t, fs.Parse(tc.cmdLineArgs))

			require.Equal(t, tc.expected, ConfigFile)
			require.Equal(t, tc.expected, fs.Lookup(FlagNameConfigFile).Value.String())
		})
	}
}
