// Package vortex exposes the emulator's processor core: lazy, memoized
// translation of guest code addresses into executable host functions, and a
// register-state-safe gateway for calling them. Decoding and code generation
// plug in through the Frontend and Backend interfaces.
package vortex

import "github.com/vortexemu/vortex/internal/cpu"

// -----------------------------------------------------------------------------
// Type Aliases - These re-export types from internal/cpu
// -----------------------------------------------------------------------------

// Processor resolves guest addresses to functions and executes them.
type Processor = cpu.Processor

// Config selects the backend and debug behavior of a Processor.
type Config = cpu.Config

// Module owns a slice of the guest address space and its functions.
type Module = cpu.Module

// CodeModule is a guest-code module owning a contiguous address range.
type CodeModule = cpu.CodeModule

// BuiltinModule registers host-implemented callables in a reserved window.
type BuiltinModule = cpu.BuiltinModule

// Function is a callable symbol, guest-compiled or builtin.
type Function = cpu.Function

// GuestFunction is a function translated from guest code.
type GuestFunction = cpu.GuestFunction

// BuiltinFunction is a host-implemented function on the guest call path.
type BuiltinFunction = cpu.BuiltinFunction

// BuiltinHandler is the host callback bound to a builtin function.
type BuiltinHandler = cpu.BuiltinHandler

// GuestCall is the compiled callable installed by the frontend.
type GuestCall = cpu.GuestCall

// SymbolStatus tracks a function through declare/define.
type SymbolStatus = cpu.SymbolStatus

// ThreadState owns one thread-exclusive guest register context.
type ThreadState = cpu.ThreadState

// Context is the guest register file.
type Context = cpu.Context

// EntryTable is the concurrent address→resolution cache.
type EntryTable = cpu.EntryTable

// Frontend decodes guest code and drives compilation.
type Frontend = cpu.Frontend

// Backend supplies the native call mechanism and code cache.
type Backend = cpu.Backend

// BackendFactory constructs a Backend for RegisterBackend.
type BackendFactory = cpu.BackendFactory

// CodeCache locates compiled bodies for stack walking.
type CodeCache = cpu.CodeCache

// Debugger is notified once per successful compile.
type Debugger = cpu.Debugger

// DebugInfoFlags select what the frontend records for debuggers.
type DebugInfoFlags = cpu.DebugInfoFlags

// StackWalker attributes program counters back to functions.
type StackWalker = cpu.StackWalker

// StackFrame is one attributed frame from a capture.
type StackFrame = cpu.StackFrame

// Irql is the process-wide nesting privilege level.
type Irql = cpu.Irql

// Symbol status values.
const (
	SymbolNew       = cpu.SymbolNew
	SymbolDeclaring = cpu.SymbolDeclaring
	SymbolDeclared  = cpu.SymbolDeclared
	SymbolDefining  = cpu.SymbolDefining
	SymbolDefined   = cpu.SymbolDefined
	SymbolFailed    = cpu.SymbolFailed
)

// Privilege levels.
const (
	IrqlPassive  = cpu.IrqlPassive
	IrqlAPC      = cpu.IrqlAPC
	IrqlDispatch = cpu.IrqlDispatch
	IrqlDPC      = cpu.IrqlDPC
)

// Call convention sentinels.
const (
	ReentrySentinel    = cpu.ReentrySentinel
	CallFailedSentinel = cpu.CallFailedSentinel
	MaxCallArgs        = cpu.MaxCallArgs
)

// Common sentinel errors.
var (
	ErrNoFrontend   = cpu.ErrNoFrontend
	ErrNoBackend    = cpu.ErrNoBackend
	ErrAlreadySetup = cpu.ErrAlreadySetup
)

// NewProcessor builds a processor around its collaborators. See
// cpu.NewProcessor.
func NewProcessor(cfg Config, frontend Frontend, backend Backend, debugger Debugger) *Processor {
	return cpu.NewProcessor(cfg, frontend, backend, debugger)
}

// NewCodeModule creates a guest module owning [base, base+size).
func NewCodeModule(name string, base, size uint32) *CodeModule {
	return cpu.NewCodeModule(name, base, size)
}

// NewThreadState creates a register context owned by one worker thread.
func NewThreadState(p *Processor, threadID uint32, name string) *ThreadState {
	return cpu.NewThreadState(p, threadID, name)
}

// NewEntryTable creates an empty resolution cache.
func NewEntryTable() *EntryTable { return cpu.NewEntryTable() }

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config { return cpu.DefaultConfig() }

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) { return cpu.LoadConfig(path) }

// RegisterBackend wires a named backend into Setup's selection.
func RegisterBackend(name string, factory BackendFactory) {
	cpu.RegisterBackend(name, factory)
}
