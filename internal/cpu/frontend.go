package cpu

// DebugInfoFlags select what extra information the frontend keeps while
// compiling, for consumption by an attached debugger.
type DebugInfoFlags uint32

const (
	DebugInfoNone      DebugInfoFlags = 0
	DebugInfoSourceMap DebugInfoFlags = 1 << 0
	DebugInfoDisasm    DebugInfoFlags = 1 << 1
	DebugInfoTrace     DebugInfoFlags = 1 << 2
)

// Frontend decodes guest code and drives compilation. A false return from
// either call is an unconditional, permanent failure for that symbol.
type Frontend interface {
	// DeclareFunction populates header metadata on a freshly created
	// symbol: end address, name, ABI info. The caller holds the declare
	// claim.
	DeclareFunction(fn *GuestFunction) bool

	// DefineFunction compiles the guest body into an executable form and
	// installs it with SetCall. The caller holds the define claim.
	DefineFunction(fn *GuestFunction, flags DebugInfoFlags) bool
}

// CodeCache describes where the backend placed compiled bodies. The stack
// walker consumes it to attribute host PCs back to guest functions.
type CodeCache interface {
	Base() uintptr
	Size() int

	// FindFunction returns the function whose compiled body contains
	// hostPC, or nil.
	FindFunction(hostPC uintptr) Function
}

// Backend supplies the native call mechanism behind GuestFunction bodies.
type Backend interface {
	Initialize() error
	CodeCache() CodeCache
}

// Debugger is notified once per successful compile. Optional; calls are
// fire-and-forget.
type Debugger interface {
	OnFunctionDefined(fn Function)
}
