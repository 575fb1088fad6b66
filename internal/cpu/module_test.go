package cpu

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

func TestCodeModuleContainment(t *testing.T) {
	m := NewCodeModule("main", 0x1000, 0x100)

	require.False(t, m.ContainsAddress(0x0FFF))
	require.True(t, m.ContainsAddress(0x1000))
	require.True(t, m.ContainsAddress(0x10FF))
	require.False(t, m.ContainsAddress(0x1100))
}

func TestDeclareClaimSingleCreator(t *testing.T) {
	m := NewCodeModule("main", 0x1000, 0x1000)

	var creators atomic.Int64
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			fn, status := m.DeclareFunction(0x1000)
			if status == SymbolNew {
				creators.Inc()
				time.Sleep(5 * time.Millisecond)
				fn.symbol().SetEndAddress(0x1004)
				fn.symbol().setStatus(SymbolDeclared)
				return nil
			}
			if status != SymbolDeclared {
				return fmt.Errorf("observer saw status %v", status)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, creators.Load())
}

func TestDefineClaimSingleRightsHolder(t *testing.T) {
	m := NewCodeModule("main", 0x1000, 0x1000)
	fn, status := m.DeclareFunction(0x1000)
	require.Equal(t, SymbolNew, status)
	fn.symbol().setStatus(SymbolDeclared)

	var holders atomic.Int64
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			status := m.DefineFunction(fn)
			if status == SymbolNew {
				holders.Inc()
				time.Sleep(5 * time.Millisecond)
				fn.symbol().setStatus(SymbolDefined)
				return nil
			}
			if status != SymbolDefined {
				return fmt.Errorf("observer saw status %v", status)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, holders.Load())
	require.Equal(t, SymbolDefined, fn.Status())
}

func TestDeclareFailedIsTerminal(t *testing.T) {
	m := NewCodeModule("main", 0x1000, 0x1000)

	fn, status := m.DeclareFunction(0x1000)
	require.Equal(t, SymbolNew, status)
	fn.symbol().setStatus(SymbolFailed)

	again, status := m.DeclareFunction(0x1000)
	require.Same(t, fn, again)
	require.Equal(t, SymbolFailed, status)
	require.Equal(t, SymbolFailed, m.DefineFunction(again))
}

func TestSymbolContainsAddress(t *testing.T) {
	m := NewCodeModule("main", 0x1000, 0x1000)
	fn, _ := m.DeclareFunction(0x1000)

	// Span not yet discovered: only the start address matches.
	require.True(t, fn.ContainsAddress(0x1000))
	require.False(t, fn.ContainsAddress(0x1002))

	fn.symbol().SetEndAddress(0x1010)
	require.True(t, fn.ContainsAddress(0x100F))
	require.False(t, fn.ContainsAddress(0x1010))
}

func TestForEachFunction(t *testing.T) {
	m := NewCodeModule("main", 0x1000, 0x1000)
	for i := uint32(0); i < 4; i++ {
		fn, status := m.DeclareFunction(0x1000 + i*4)
		require.Equal(t, SymbolNew, status)
		fn.symbol().setStatus(SymbolDeclared)
	}

	count := 0
	m.ForEachFunction(func(Function) bool {
		count++
		return true
	})
	require.Equal(t, 4, count)

	count = 0
	m.ForEachFunction(func(Function) bool {
		count++
		return false
	})
	require.Equal(t, 1, count)
}

func TestBuiltinModuleWindow(t *testing.T) {
	m := newBuiltinModule()

	require.Equal(t, "builtin", m.Name())
	require.True(t, m.ContainsAddress(builtinBaseAddress))
	require.True(t, m.ContainsAddress(0xFFFF_FFFC))
	require.False(t, m.ContainsAddress(0xFFFE_FFFF))

	require.Equal(t, builtinBaseAddress, m.allocateAddress())
	require.Equal(t, builtinBaseAddress+builtinStride, m.allocateAddress())
}
