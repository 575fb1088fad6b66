package cpu

import "sync"

// Module owns a slice of the guest address space and the functions declared
// inside it. Containment is a per-module predicate; the processor resolves an
// address to the first registered module that contains it.
type Module interface {
	Name() string
	ContainsAddress(address uint32) bool

	// DeclareFunction atomically creates or fetches the symbol at address.
	// Exactly one caller per address observes SymbolNew and must complete
	// discovery through the frontend; concurrent callers block until the
	// creator publishes SymbolDeclared or SymbolFailed.
	DeclareFunction(address uint32) (Function, SymbolStatus)

	// DefineFunction grants compile rights to exactly one caller per
	// symbol (who observes SymbolNew); others block until the rights
	// holder publishes SymbolDefined or SymbolFailed.
	DefineFunction(fn Function) SymbolStatus

	// ForEachFunction visits declared functions until visit returns
	// false. The visit callback runs with the symbol table locked and
	// must not call back into the module.
	ForEachFunction(visit func(Function) bool)
}

// SymbolTable is the guarded address→function map plus the two claim-and-wait
// gates every module kind shares. Modules embed one and route creation
// through their own function constructor.
type SymbolTable struct {
	mu        sync.Mutex
	cond      sync.Cond
	functions map[uint32]Function
}

func (t *SymbolTable) init() {
	t.cond.L = &t.mu
	t.functions = make(map[uint32]Function)
}

// declare implements the declare claim. create builds the module-specific
// function kind; it runs under the table lock and must wire the new symbol to
// this table.
func (t *SymbolTable) declare(address uint32, create func(address uint32) Function) (Function, SymbolStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		fn, ok := t.functions[address]
		if !ok {
			fn = create(address)
			fn.symbol().status = SymbolDeclaring
			t.functions[address] = fn
			return fn, SymbolNew
		}
		if fn.symbol().status == SymbolDeclaring {
			t.cond.Wait()
			continue
		}
		return fn, fn.symbol().status
	}
}

// define implements the define claim.
func (t *SymbolTable) define(fn Function) SymbolStatus {
	s := fn.symbol()
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		switch s.status {
		case SymbolDeclared:
			s.status = SymbolDefining
			return SymbolNew
		case SymbolDeclaring, SymbolDefining:
			t.cond.Wait()
		case SymbolDefined:
			return SymbolDefined
		default:
			return SymbolFailed
		}
	}
}

func (t *SymbolTable) forEach(visit func(Function) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, fn := range t.functions {
		if !visit(fn) {
			return
		}
	}
}

// CodeModule is a guest-code module owning the address range
// [base, base+size). Guest executable images load through one of these.
type CodeModule struct {
	name    string
	base    uint32
	size    uint32
	symbols SymbolTable
}

func NewCodeModule(name string, base, size uint32) *CodeModule {
	m := &CodeModule{
		name: name,
		base: base,
		size: size,
	}
	m.symbols.init()
	return m
}

func (m *CodeModule) Name() string { return m.name }

func (m *CodeModule) ContainsAddress(address uint32) bool {
	return address >= m.base && address < m.base+m.size
}

func (m *CodeModule) DeclareFunction(address uint32) (Function, SymbolStatus) {
	return m.symbols.declare(address, m.newFunction)
}

func (m *CodeModule) DefineFunction(fn Function) SymbolStatus {
	return m.symbols.define(fn)
}

func (m *CodeModule) ForEachFunction(visit func(Function) bool) {
	m.symbols.forEach(visit)
}

func (m *CodeModule) newFunction(address uint32) Function {
	return &GuestFunction{
		Symbol: Symbol{
			table:   &m.symbols,
			module:  m,
			address: address,
		},
	}
}
