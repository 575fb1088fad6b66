package cpu

import "sync"

// The builtin module reserves the top 64KiB of the address space, disjoint
// from anything a guest module can own. Addresses are handed out with a
// 4-byte stride.
const (
	builtinBaseAddress uint32 = 0xFFFF0000
	builtinAddressMask uint32 = 0xFFFF0000
	builtinStride      uint32 = 4
)

// BuiltinModule is the synthetic module that registers host-implemented
// callables. It is always the first module in the registry so its window wins
// every containment scan.
type BuiltinModule struct {
	symbols SymbolTable

	mu          sync.Mutex
	nextAddress uint32
}

func newBuiltinModule() *BuiltinModule {
	m := &BuiltinModule{
		nextAddress: builtinBaseAddress,
	}
	m.symbols.init()
	return m
}

func (m *BuiltinModule) Name() string { return "builtin" }

func (m *BuiltinModule) ContainsAddress(address uint32) bool {
	return address&builtinAddressMask == builtinAddressMask
}

func (m *BuiltinModule) DeclareFunction(address uint32) (Function, SymbolStatus) {
	return m.symbols.declare(address, m.newFunction)
}

func (m *BuiltinModule) DefineFunction(fn Function) SymbolStatus {
	return m.symbols.define(fn)
}

func (m *BuiltinModule) ForEachFunction(visit func(Function) bool) {
	m.symbols.forEach(visit)
}

func (m *BuiltinModule) allocateAddress() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	address := m.nextAddress
	m.nextAddress += builtinStride
	return address
}

func (m *BuiltinModule) newFunction(address uint32) Function {
	return &BuiltinFunction{
		Symbol: Symbol{
			table:   &m.symbols,
			module:  m,
			address: address,
		},
	}
}
