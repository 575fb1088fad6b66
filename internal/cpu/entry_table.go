package cpu

import "sync"

// EntryStatus tracks a cache row through resolution.
type EntryStatus int

const (
	EntryNew EntryStatus = iota
	EntryReady
	EntryFailed
)

// Entry is one row of the resolution cache. Fields other than Address are
// owned by the resolving thread until the entry is published as EntryReady or
// EntryFailed; after that they never change. Entries are memoized for the
// process lifetime and never removed.
type Entry struct {
	Address    uint32
	EndAddress uint32
	Status     EntryStatus
	Function   Function
}

// EntryTable is the concurrent address→resolution cache. Its GetOrCreate
// claim is the single cross-thread guarantee that compilation work for an
// address happens at most once.
type EntryTable struct {
	mu      sync.Mutex
	cond    sync.Cond
	entries map[uint32]*Entry
}

func NewEntryTable() *EntryTable {
	t := &EntryTable{
		entries: make(map[uint32]*Entry),
	}
	t.cond.L = &t.mu
	return t
}

// GetOrCreate returns the entry for address and whether this caller created
// it. Exactly one caller per address observes created=true and must publish
// or fail the entry; everyone else blocks until the entry leaves EntryNew and
// then receives it in its terminal state.
func (t *EntryTable) GetOrCreate(address uint32) (entry *Entry, created bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		e, ok := t.entries[address]
		if !ok {
			e = &Entry{Address: address, Status: EntryNew}
			t.entries[address] = e
			return e, true
		}
		if e.Status == EntryNew {
			// Another thread holds the resolution claim.
			t.cond.Wait()
			continue
		}
		return e, false
	}
}

// Get returns a snapshot of the entry at address, without creating one.
func (t *EntryTable) Get(address uint32) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[address]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// publish moves a claimed entry to its terminal state and wakes waiters. fn
// is nil when status is EntryFailed.
func (t *EntryTable) publish(e *Entry, fn Function, status EntryStatus) {
	t.mu.Lock()
	e.Function = fn
	if fn != nil {
		e.EndAddress = fn.EndAddress()
	}
	e.Status = status
	t.mu.Unlock()
	t.cond.Broadcast()
}

// FindWithAddress returns every resolved function whose [start, end) span
// contains address, across all modules. Overlapping spans all match.
func (t *EntryTable) FindWithAddress(address uint32) []Function {
	t.mu.Lock()
	defer t.mu.Unlock()
	var found []Function
	for _, e := range t.entries {
		if e.Status != EntryReady || e.Function == nil {
			continue
		}
		if e.Function.ContainsAddress(address) {
			found = append(found, e.Function)
		}
	}
	return found
}
