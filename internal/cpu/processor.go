// Package cpu implements the processor core of the emulator: on-demand
// resolution of guest code addresses into executable host functions, memoized
// with an at-most-once compilation guarantee under concurrent access, and a
// register-state-safe execution gateway.
//
// Decoding and code generation stay outside the package, behind the Frontend
// and Backend interfaces.
package cpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/atomic"
)

var (
	ErrNoFrontend   = errors.New("cpu: no usable frontend")
	ErrNoBackend    = errors.New("cpu: no usable backend")
	ErrAlreadySetup = errors.New("cpu: setup already completed")
)

// Processor turns guest code addresses into executable host functions on
// demand and gates every guest-code invocation through a register-state-safe
// call path.
type Processor struct {
	cfg      Config
	frontend Frontend
	backend  Backend
	debugger Debugger

	entryTable  *EntryTable
	stackWalker *StackWalker

	modulesMu     sync.Mutex
	modules       []Module
	builtinModule *BuiltinModule

	debugInfoFlags DebugInfoFlags
	irql           atomic.Uint32
	metrics        *metrics
}

// NewProcessor builds a processor around its collaborators. backend may be
// nil, in which case Setup selects one from the registered factories using
// cfg.CPU. debugger may be nil.
func NewProcessor(cfg Config, frontend Frontend, backend Backend, debugger Debugger) *Processor {
	if cfg.CPU == "" {
		cfg.CPU = "any"
	}
	return &Processor{
		cfg:        cfg,
		frontend:   frontend,
		backend:    backend,
		debugger:   debugger,
		entryTable: NewEntryTable(),
		metrics:    newMetrics(cfg.Metrics),
	}
}

// Setup initializes the backend, installs the builtin module, and builds the
// stack walker. Any failure here is fatal to the processor.
func (p *Processor) Setup() error {
	if p.stackWalker != nil {
		return ErrAlreadySetup
	}
	if p.frontend == nil {
		return ErrNoFrontend
	}

	p.debugInfoFlags = p.cfg.DebugInfoFlags

	if p.backend == nil {
		backend, err := newBackend(p.cfg.CPU)
		if err != nil {
			return err
		}
		p.backend = backend
	}
	if err := p.backend.Initialize(); err != nil {
		return fmt.Errorf("cpu: initialize backend: %w", err)
	}

	// The builtin module goes in first so its reserved window wins every
	// containment scan.
	p.builtinModule = newBuiltinModule()
	p.modulesMu.Lock()
	p.modules = append([]Module{p.builtinModule}, p.modules...)
	p.modulesMu.Unlock()

	walker, err := newStackWalker(p.backend.CodeCache(), p.entryTable)
	if err != nil {
		slog.Error("cpu: unable to create stack walker", "error", err)
		return err
	}
	p.stackWalker = walker

	return nil
}

func (p *Processor) EntryTable() *EntryTable   { return p.entryTable }
func (p *Processor) StackWalker() *StackWalker { return p.stackWalker }
func (p *Processor) Backend() Backend          { return p.backend }

// AddModule registers an address-space owner. Later modules lose containment
// ties to earlier ones.
func (p *Processor) AddModule(m Module) error {
	if m == nil {
		return errors.New("cpu: module must be non-nil")
	}
	p.modulesMu.Lock()
	defer p.modulesMu.Unlock()
	p.modules = append(p.modules, m)
	return nil
}

// GetModule returns the first registered module with the given name, or nil.
func (p *Processor) GetModule(name string) Module {
	p.modulesMu.Lock()
	defer p.modulesMu.Unlock()
	for _, m := range p.modules {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// GetModules returns a point-in-time snapshot of the registered modules. The
// registry retains ownership.
func (p *Processor) GetModules() []Module {
	p.modulesMu.Lock()
	defer p.modulesMu.Unlock()
	clone := make([]Module, len(p.modules))
	copy(clone, p.modules)
	return clone
}

// DefineBuiltin registers a host-implemented callable in the builtin window
// and returns its function. Builtins run through the same call path as
// compiled guest code, so callers never special-case them.
func (p *Processor) DefineBuiltin(name string, handler BuiltinHandler, arg0, arg1 any) Function {
	address := p.builtinModule.allocateAddress()

	fn, _ := p.builtinModule.DeclareFunction(address)
	bf := fn.(*BuiltinFunction)
	bf.SetEndAddress(address + builtinStride)
	bf.SetName(name)
	bf.SetupBuiltin(handler, arg0, arg1)
	bf.setStatus(SymbolDeclared)

	return bf
}

// QueryFunction returns the resolved function at address without triggering
// resolution.
func (p *Processor) QueryFunction(address uint32) Function {
	entry, ok := p.entryTable.Get(address)
	if !ok {
		return nil
	}
	return entry.Function
}

// FindFunctionsWithAddress returns every resolved function whose span
// contains address.
func (p *Processor) FindFunctionsWithAddress(address uint32) []Function {
	return p.entryTable.FindWithAddress(address)
}

// ResolveFunction returns the executable function at address, compiling it on
// first use. Exactly one compilation runs per address system-wide; concurrent
// callers block until the winner publishes a terminal result. A nil return is
// permanent for this address.
func (p *Processor) ResolveFunction(address uint32) Function {
	entry, created := p.entryTable.GetOrCreate(address)
	if created {
		// Needs to be generated. We have the claim on it and must
		// publish a terminal status no matter what.
		p.metrics.resolveMisses.Inc()

		fn := p.LookupFunction(address)
		if fn == nil {
			p.entryTable.publish(entry, nil, EntryFailed)
			return nil
		}
		if !p.DemandFunction(fn) {
			p.entryTable.publish(entry, nil, EntryFailed)
			return nil
		}
		p.entryTable.publish(entry, fn, EntryReady)
		return fn
	}

	p.metrics.resolveHits.Inc()
	if entry.Status == EntryReady {
		return entry.Function
	}
	return nil
}

// LookupFunction finds the module containing address and runs the declare
// phase there.
func (p *Processor) LookupFunction(address uint32) Function {
	var owner Module
	p.modulesMu.Lock()
	for _, m := range p.modules {
		if m.ContainsAddress(address) {
			owner = m
			break
		}
	}
	p.modulesMu.Unlock()
	if owner == nil {
		// No module found that could contain the address.
		return nil
	}

	return p.LookupFunctionInModule(owner, address)
}

// LookupFunctionInModule runs the declare phase for address inside a specific
// module. The frontend is invoked at most once per symbol; a declare failure
// is permanent.
func (p *Processor) LookupFunctionInModule(m Module, address uint32) Function {
	fn, status := m.DeclareFunction(address)
	if status == SymbolNew {
		// Symbol is undeclared and this caller holds the claim.
		gf, ok := fn.(*GuestFunction)
		if !ok || !p.frontend.DeclareFunction(gf) {
			fn.symbol().setStatus(SymbolFailed)
			p.metrics.declareFailures.Inc()
			return nil
		}
		fn.symbol().setStatus(SymbolDeclared)
		return fn
	}
	if status == SymbolFailed {
		return nil
	}
	return fn
}

// DemandFunction runs the define phase: exactly one caller per symbol
// compiles the body while the rest block and then observe the terminal
// status.
func (p *Processor) DemandFunction(fn Function) bool {
	m := fn.Module()
	status := m.DefineFunction(fn)
	if status == SymbolNew {
		if gf, ok := fn.(*GuestFunction); ok {
			if !p.frontend.DefineFunction(gf, p.debugInfoFlags) {
				fn.symbol().setStatus(SymbolFailed)
				p.metrics.defineFailures.Inc()
				return false
			}
			// Before the symbol is visible to the rest, let the
			// debugger know.
			if p.debugger != nil {
				p.debugger.OnFunctionDefined(fn)
			}
		}
		// Builtins carry their body from registration; defining one
		// just publishes it.
		fn.symbol().setStatus(SymbolDefined)
		p.metrics.defined.Inc()
		status = SymbolDefined
	}

	return status != SymbolFailed
}

// Execute resolves address and invokes the function with the thread's live
// register context. The stack pointer is padded and the link register swapped
// for a reentry sentinel around the call; both are restored on every exit
// path, including recursive re-entry. On resolution failure the context is
// untouched.
func (p *Processor) Execute(ts *ThreadState, address uint32) bool {
	fn := p.ResolveFunction(address)
	if fn == nil {
		// Symbol not found in any module.
		p.metrics.executeFailures.Inc()
		slog.Error("cpu: failed to find function", "address", hex32(address))
		return false
	}

	ctx := ts.Context()

	ctx.R[stackRegister] -= stackSafetyMargin
	previousLR := ctx.LR
	ctx.LR = uint64(ReentrySentinel)
	defer func() {
		ctx.LR = previousLR
		ctx.R[stackRegister] += stackSafetyMargin
	}()

	return fn.Call(ts, ReentrySentinel)
}

// ExecuteArgs marshals up to MaxCallArgs arguments into the integer argument
// registers, executes, and returns the first return register, or
// CallFailedSentinel on failure.
func (p *Processor) ExecuteArgs(ts *ThreadState, address uint32, args []uint64) uint64 {
	if len(args) > MaxCallArgs {
		slog.Error("cpu: too many call arguments", "address", hex32(address), "count", len(args))
		return CallFailedSentinel
	}

	ctx := ts.Context()
	for i, arg := range args {
		ctx.R[argBaseRegister+i] = arg
	}
	if !p.Execute(ts, address) {
		return CallFailedSentinel
	}
	return ctx.R[returnRegister]
}

func hex32(v uint32) string {
	return fmt.Sprintf("%08X", v)
}
