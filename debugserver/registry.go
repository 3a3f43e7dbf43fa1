package debugserver

import (
	"sync"

	"github.com/dekarrin/grouper/grammar"
	"github.com/dekarrin/grouper/recognize"
)

// entry tracks one named grammar's most recent parse, guarded by its
// own lock so recording a new parse for one grammar never blocks
// readers of another's.
type entry struct {
	mu     sync.RWMutex
	g      *grammar.Grammar
	result *recognize.Result
}

func (e *entry) recordResult(r *recognize.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.result = r
}

func (e *entry) lastResult() (*recognize.Result, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.result, e.result != nil
}

// Registry holds the set of grammars a Server can report introspection
// data for, each identified by a name distinct from any name internal
// to the grammar itself (a host may register the same *grammar.Grammar
// under several names, or register grammars a debugserver client never
// otherwise sees).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*entry{}}
}

// Register adds g to the registry under name, replacing any grammar
// previously registered under that name (and discarding its recorded
// parse history, if any).
func (reg *Registry) Register(name string, g *grammar.Grammar) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.entries[name] = &entry{g: g}
}

// Names returns the names currently registered, in no particular order.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	names := make([]string, 0, len(reg.entries))
	for name := range reg.entries {
		names = append(names, name)
	}
	return names
}

func (reg *Registry) get(name string) (*entry, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	e, ok := reg.entries[name]
	return e, ok
}
