package cpu

import "log/slog"

// SymbolStatus tracks a function through the two-phase declare/define
// pipeline. Transitions are monotonic; SymbolDefined and SymbolFailed are
// terminal.
type SymbolStatus int

const (
	SymbolNew SymbolStatus = iota
	SymbolDeclaring
	SymbolDeclared
	SymbolDefining
	SymbolDefined
	SymbolFailed
)

func (s SymbolStatus) String() string {
	switch s {
	case SymbolNew:
		return "new"
	case SymbolDeclaring:
		return "declaring"
	case SymbolDeclared:
		return "declared"
	case SymbolDefining:
		return "defining"
	case SymbolDefined:
		return "defined"
	case SymbolFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// Function is a single callable symbol owned by a module. Concrete kinds are
// GuestFunction (compiled from guest code by the frontend) and
// BuiltinFunction (host-implemented, same calling convention).
type Function interface {
	Module() Module
	Name() string
	Address() uint32
	EndAddress() uint32
	Status() SymbolStatus
	ContainsAddress(address uint32) bool

	// Call transfers control into the function with the live register
	// context. returnAddress is what the callee observes in the link
	// register.
	Call(ts *ThreadState, returnAddress uint32) bool

	symbol() *Symbol
}

// Symbol carries the declaration-level metadata shared by every function
// kind. Status is guarded by the owning module's symbol table.
type Symbol struct {
	table      *SymbolTable
	module     Module
	name       string
	address    uint32
	endAddress uint32
	status     SymbolStatus
}

func (s *Symbol) Module() Module     { return s.module }
func (s *Symbol) Name() string       { return s.name }
func (s *Symbol) Address() uint32    { return s.address }
func (s *Symbol) EndAddress() uint32 { return s.endAddress }

// SetName is called by the frontend while it holds the declare claim.
func (s *Symbol) SetName(name string) { s.name = name }

// SetEndAddress is called by the frontend once the symbol's span is known.
func (s *Symbol) SetEndAddress(end uint32) { s.endAddress = end }

func (s *Symbol) Status() SymbolStatus {
	s.table.mu.Lock()
	defer s.table.mu.Unlock()
	return s.status
}

// setStatus publishes a status transition and wakes any callers blocked on
// the declare or define claim for this symbol.
func (s *Symbol) setStatus(status SymbolStatus) {
	s.table.mu.Lock()
	s.status = status
	s.table.mu.Unlock()
	s.table.cond.Broadcast()
}

func (s *Symbol) ContainsAddress(address uint32) bool {
	if s.endAddress == 0 {
		return address == s.address
	}
	return address >= s.address && address < s.endAddress
}

func (s *Symbol) symbol() *Symbol { return s }

// GuestCall is the compiled callable installed on a GuestFunction by the
// frontend during the define phase.
type GuestCall func(ts *ThreadState, returnAddress uint32) bool

// GuestFunction is a function translated from guest code.
type GuestFunction struct {
	Symbol

	call        GuestCall
	hostAddress uintptr
}

// SetCall installs the compiled body. Only the define-phase rights holder may
// call this.
func (f *GuestFunction) SetCall(call GuestCall) { f.call = call }

// SetHostAddress records where the backend placed the compiled body, for code
// cache lookups and stack walking.
func (f *GuestFunction) SetHostAddress(addr uintptr) { f.hostAddress = addr }

func (f *GuestFunction) HostAddress() uintptr { return f.hostAddress }

func (f *GuestFunction) Call(ts *ThreadState, returnAddress uint32) bool {
	if f.call == nil {
		slog.Error("cpu: guest function has no compiled body", "address", hex32(f.address))
		return false
	}
	return f.call(ts, returnAddress)
}

// BuiltinHandler is the host callback bound to a builtin function.
type BuiltinHandler func(ts *ThreadState, arg0, arg1 any)

// BuiltinFunction is a host-implemented function reachable through the same
// call path as compiled guest code.
type BuiltinFunction struct {
	Symbol

	handler BuiltinHandler
	arg0    any
	arg1    any
}

// SetupBuiltin binds the host handler and its two opaque arguments.
func (f *BuiltinFunction) SetupBuiltin(handler BuiltinHandler, arg0, arg1 any) {
	f.handler = handler
	f.arg0 = arg0
	f.arg1 = arg1
}

func (f *BuiltinFunction) Call(ts *ThreadState, returnAddress uint32) bool {
	if f.handler == nil {
		slog.Error("cpu: builtin function has no handler", "name", f.name, "address", hex32(f.address))
		return false
	}
	f.handler(ts, f.arg0, f.arg1)
	return true
}
