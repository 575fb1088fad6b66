package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStackWalkerCapture(t *testing.T) {
	p := newTestProcessor(t, &fakeFrontend{}, nil)

	caller := p.ResolveFunction(testModuleBase)
	callee := p.ResolveFunction(testModuleBase + 0x40)
	require.NotNil(t, caller)
	require.NotNil(t, callee)

	ts := NewThreadState(p, 1, "worker-0")
	ctx := ts.Context()
	ctx.PC = uint64(callee.Address())
	ctx.LR = uint64(caller.Address())

	frames := p.StackWalker().CaptureStackTrace(ts, 8)
	require.Len(t, frames, 2)
	require.Equal(t, FrameGuest, frames[0].Type)
	require.Same(t, callee, frames[0].Function)
	require.Same(t, caller, frames[1].Function)
}

func TestStackWalkerStopsAtReentrySentinel(t *testing.T) {
	p := newTestProcessor(t, &fakeFrontend{}, nil)

	fn := p.ResolveFunction(testModuleBase)
	require.NotNil(t, fn)

	ts := NewThreadState(p, 1, "worker-0")
	ctx := ts.Context()
	ctx.PC = uint64(fn.Address())
	ctx.LR = uint64(ReentrySentinel)

	frames := p.StackWalker().CaptureStackTrace(ts, 8)
	require.Len(t, frames, 1)
	require.Same(t, fn, frames[0].Function)

	require.Empty(t, p.StackWalker().CaptureStackTrace(ts, 0))
}

func TestStackWalkerResolveHostPC(t *testing.T) {
	cache := &fakeCodeCache{base: 0x1000, size: 0x1000, byPC: map[uintptr]Function{}}
	p := NewProcessor(DefaultConfig(), &fakeFrontend{}, &fakeBackend{cache: cache}, nil)
	require.NoError(t, p.Setup())
	require.NoError(t, p.AddModule(NewCodeModule("main", testModuleBase, testModuleSize)))

	fn := p.ResolveFunction(testModuleBase)
	require.NotNil(t, fn)
	cache.byPC[0x1040] = fn

	require.Same(t, fn, p.StackWalker().ResolveHostPC(0x1040))
	require.Nil(t, p.StackWalker().ResolveHostPC(0x2000))
}
