package cpu

// Guest calling convention constants used by the execution gateway.
const (
	// Some guest programs overwrite the caller's frame by about 16 to 32
	// bytes, so the gateway pads the stack before every entry.
	stackSafetyMargin uint64 = 64 + 112

	// Written into the link register around a gateway call so stack walks
	// can recognize the host/guest boundary.
	ReentrySentinel uint32 = 0xBCBCBCBC

	// Returned by ExecuteArgs when resolution fails.
	CallFailedSentinel uint64 = 0xDEADBABE
)

// Argument/return register assignments.
const (
	stackRegister   = 1
	argBaseRegister = 3
	returnRegister  = 3

	// MaxCallArgs is how many arguments ExecuteArgs can marshal into
	// registers.
	MaxCallArgs = 5
)

// Context is the guest register file. R[1] is the stack pointer by
// convention. Fields are exported for direct access by frontends and builtin
// handlers; a context belongs to exactly one thread and is never locked.
type Context struct {
	// Integer registers r0-r31
	R [32]uint64

	// Link (return address) register
	LR uint64

	// Count register
	CTR uint64

	// Program counter
	PC uint64
}

// SP returns the stack pointer register.
func (c *Context) SP() uint64 { return c.R[stackRegister] }

// SetSP writes the stack pointer register.
func (c *Context) SetSP(v uint64) { c.R[stackRegister] = v }

// ThreadState owns one guest register context. Each OS-level worker thread
// running guest code holds exactly one ThreadState; it is never shared.
type ThreadState struct {
	processor *Processor
	threadID  uint32
	name      string
	context   Context
}

func NewThreadState(processor *Processor, threadID uint32, name string) *ThreadState {
	return &ThreadState{
		processor: processor,
		threadID:  threadID,
		name:      name,
	}
}

func (ts *ThreadState) Processor() *Processor { return ts.processor }
func (ts *ThreadState) ThreadID() uint32      { return ts.threadID }
func (ts *ThreadState) Name() string          { return ts.name }

// Context returns the thread's register context. Callers on other threads
// must not touch it.
func (ts *ThreadState) Context() *Context { return &ts.context }
