package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func init() {
	RegisterBackend("fake64", func() Backend {
		return &fakeBackend{cache: &fakeCodeCache{base: 0x1000, size: 0x1000}}
	})
}

func TestBackendRegistry(t *testing.T) {
	backend, err := newBackend("fake64")
	require.NoError(t, err)
	require.NotNil(t, backend)

	// "any" selects the first registered backend.
	backend, err = newBackend("any")
	require.NoError(t, err)
	require.NotNil(t, backend)

	_, err = newBackend("missing")
	require.ErrorIs(t, err, ErrNoBackend)

	require.Panics(t, func() { RegisterBackend("fake64", func() Backend { return nil }) })
	require.Panics(t, func() { RegisterBackend("any", func() Backend { return nil }) })
	require.Panics(t, func() { RegisterBackend("other", nil) })
}

func TestSetupSelectsConfiguredBackend(t *testing.T) {
	p := NewProcessor(Config{CPU: "fake64"}, &fakeFrontend{}, nil, nil)
	require.NoError(t, p.Setup())
	require.NotNil(t, p.Backend())
	require.NotNil(t, p.StackWalker())
}
