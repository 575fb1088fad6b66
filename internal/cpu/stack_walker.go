package cpu

import "errors"

// FrameType distinguishes how a stack frame's PC was attributed.
type FrameType int

const (
	FrameHost FrameType = iota
	FrameGuest
)

// StackFrame is one attributed frame from a capture.
type StackFrame struct {
	Type     FrameType
	HostPC   uintptr
	GuestPC  uint32
	Function Function
}

// StackWalker attributes program counters back to functions, using the
// backend's code cache for host PCs and the entry table for guest PCs. Used
// when profiling, debugging, and dumping.
type StackWalker struct {
	cache   CodeCache
	entries *EntryTable
}

func newStackWalker(cache CodeCache, entries *EntryTable) (*StackWalker, error) {
	if cache == nil {
		return nil, errors.New("cpu: backend has no code cache")
	}
	return &StackWalker{cache: cache, entries: entries}, nil
}

// ResolveHostPC attributes a host program counter to the guest function whose
// compiled body contains it, or nil.
func (w *StackWalker) ResolveHostPC(pc uintptr) Function {
	return w.cache.FindFunction(pc)
}

// ResolveGuestPC attributes a guest address to a resolved function, or nil.
// Only addresses already through the resolution pipeline are attributable.
func (w *StackWalker) ResolveGuestPC(address uint32) Function {
	if fns := w.entries.FindWithAddress(address); len(fns) != 0 {
		return fns[0]
	}
	return nil
}

// CaptureStackTrace records the guest frames visible from a thread's register
// context: the current PC and, unless the link register holds the gateway's
// reentry sentinel, the immediate caller. Deeper frames live in guest stack
// memory, which belongs to the frontend.
func (w *StackWalker) CaptureStackTrace(ts *ThreadState, depth int) []StackFrame {
	if depth <= 0 {
		return nil
	}
	ctx := ts.Context()

	var frames []StackFrame
	frames = append(frames, StackFrame{
		Type:     FrameGuest,
		GuestPC:  uint32(ctx.PC),
		Function: w.ResolveGuestPC(uint32(ctx.PC)),
	})
	if depth > 1 && uint32(ctx.LR) != ReentrySentinel {
		frames = append(frames, StackFrame{
			Type:     FrameGuest,
			GuestPC:  uint32(ctx.LR),
			Function: w.ResolveGuestPC(uint32(ctx.LR)),
		})
	}
	return frames
}
