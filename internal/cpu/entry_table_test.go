package cpu

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// declaredFunction builds a standalone declared guest function for table
// tests, bypassing the frontend.
func declaredFunction(t *testing.T, m *CodeModule, address, end uint32) Function {
	t.Helper()
	fn, status := m.DeclareFunction(address)
	require.Equal(t, SymbolNew, status)
	fn.symbol().SetEndAddress(end)
	fn.symbol().setStatus(SymbolDeclared)
	return fn
}

func TestEntryTableGetOrCreateSingleWinner(t *testing.T) {
	table := NewEntryTable()
	m := NewCodeModule("main", 0x100, 0x100)
	fn := declaredFunction(t, m, 0x100, 0x104)

	var winners atomic.Int64
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			entry, created := table.GetOrCreate(0x100)
			if created {
				winners.Inc()
				time.Sleep(5 * time.Millisecond)
				table.publish(entry, fn, EntryReady)
				return nil
			}
			if entry.Status != EntryReady {
				return fmt.Errorf("waiter observed status %d", entry.Status)
			}
			if entry.Function != fn {
				return fmt.Errorf("waiter observed wrong function")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 1, winners.Load())
}

func TestEntryTableGetDoesNotCreate(t *testing.T) {
	table := NewEntryTable()

	_, ok := table.Get(0x200)
	require.False(t, ok)

	entry, created := table.GetOrCreate(0x200)
	require.True(t, created)
	table.publish(entry, nil, EntryFailed)

	got, ok := table.Get(0x200)
	require.True(t, ok)
	require.Equal(t, EntryFailed, got.Status)
}

func TestEntryTableFailedIsTerminal(t *testing.T) {
	table := NewEntryTable()

	entry, created := table.GetOrCreate(0x300)
	require.True(t, created)
	table.publish(entry, nil, EntryFailed)

	again, created := table.GetOrCreate(0x300)
	require.False(t, created)
	require.Equal(t, EntryFailed, again.Status)
}

func TestEntryTableFindWithAddressOverlap(t *testing.T) {
	table := NewEntryTable()
	a := NewCodeModule("a", 0x1000, 0x1000)
	b := NewCodeModule("b", 0x1000, 0x1000)

	// Two spans that both cover 0x1010.
	wide := declaredFunction(t, a, 0x1000, 0x1100)
	narrow := declaredFunction(t, b, 0x1008, 0x1020)

	for _, fn := range []Function{wide, narrow} {
		entry, created := table.GetOrCreate(fn.Address())
		require.True(t, created)
		table.publish(entry, fn, EntryReady)
	}

	found := table.FindWithAddress(0x1010)
	require.Len(t, found, 2)
	require.Empty(t, table.FindWithAddress(0x2000))
}
