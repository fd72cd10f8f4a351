package options

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kodi-tools/addonupdate/internal/cmd"
	"github.com/kodi-tools/addonupdate/internal/config"
)

type fakeLoader struct {
	config.Loader
}

type fakeInitializer struct {
	config.Initializer
}

type fakeBuilder struct {
	cmd.UpdaterBuilder
}

func TestNewOptions_NoOverrides(t *testing.T) {
	t.Parallel()

	opts, err := NewOptions()
	require.NoError(t, err)

	require.NotNil(t, opts.ConfigLoader)
	require.NotNil(t, opts.ConfigInitializer)
	require.NotNil(t, opts.UpdaterBuilder)
}

func TestNewOptions_WithOverrides(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	initializer := &fakeInitializer{}
	builder := &fakeBuilder{}

	opts, err := NewOptions(
		WithConfigLoader(loader),
		WithConfigInitializer(initializer),
		WithUpdaterBuilder(builder),
		nil,
	)
	require.NoError(t, err)

	require.Same(t, loader, opts.ConfigLoader)
	require.Same(t, initializer, opts.ConfigInitializer)
	require.Same(t, builder, opts.UpdaterBuilder)
}

func TestNewOptions_NilValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  CmdOption
	}{
		{name: "loader", opt: WithConfigLoader(nil)},
		{name: "initializer", opt: WithConfigInitializer(nil)},
		{name: "builder", opt: WithUpdaterBuilder(nil)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOptions(tc.opt)
			require.Error(t, err)
		})
	}
}
