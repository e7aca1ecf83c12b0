// Package emulation synthesises unified methods an exchange doesn't expose
// directly by composing the ones it does (§4.5). It never talks to a
// network collaborator itself: every downstream call is made through the
// Facade interface passed in on Context.
package emulation

import (
	"embed"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

// Scope distinguishes the REST and WebSocket call surfaces, since an
// exchange can emulate a method on one and implement it natively on the
// other.
type Scope string

const (
	ScopeREST Scope = "rest"
	ScopeWS   Scope = "ws"
)

// Entry records that one unified method is emulated for one exchange/scope,
// and why (diagnostic only — Reasons never drive dispatch logic).
type Entry struct {
	Name    string
	Scope   Scope
	Reasons []string
}

//go:embed testdata/emulated_methods.json
var bundledMethods embed.FS

type emulatedMethodsFile struct {
	EmulatedMethods map[string][]rawEntry `json:"emulated_methods"`
}

type rawEntry struct {
	Name    string   `json:"name"`
	Scope   string   `json:"scope"`
	Reasons []string `json:"reasons"`
}

// Index is the exchange -> scope -> method lookup table (§4.5 "Index").
// It is safe for concurrent reads; Load replaces its contents atomically
// so tests can point it at fixture data without restarting a process.
type Index struct {
	mu    sync.RWMutex
	table map[string]map[Scope]map[string]Entry
}

// NewIndex returns an empty index; call Load before use.
func NewIndex() *Index {
	return &Index{table: map[string]map[Scope]map[string]Entry{}}
}

// Load parses a declarative emulated-methods JSON document (§4.5's
// `{"emulated_methods": {...}}` shape) and replaces the index contents.
func (idx *Index) Load(data []byte) error {
	var file emulatedMethodsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.Wrap(err, "emulation: invalid emulated_methods document")
	}

	table := make(map[string]map[Scope]map[string]Entry, len(file.EmulatedMethods))
	for exchangeID, entries := range file.EmulatedMethods {
		byScope := map[Scope]map[string]Entry{}
		for _, e := range entries {
			scope := Scope(e.Scope)
			if scope == "" {
				scope = ScopeREST
			}
			if byScope[scope] == nil {
				byScope[scope] = map[string]Entry{}
			}
			byScope[scope][e.Name] = Entry{Name: e.Name, Scope: scope, Reasons: e.Reasons}
		}
		table[exchangeID] = byScope
	}

	idx.mu.Lock()
	idx.table = table
	idx.mu.Unlock()
	return nil
}

// Lookup reports whether method is listed as emulated for exchangeID/scope,
// and the entry describing it.
func (idx *Index) Lookup(exchangeID string, scope Scope, method string) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	byScope, ok := idx.table[exchangeID]
	if !ok {
		return Entry{}, false
	}
	entry, ok := byScope[scope][method]
	return entry, ok
}

var (
	defaultOnce  sync.Once
	defaultIndex = NewIndex()
	defaultErr   error
)

// Default returns the process-wide index, built lazily on first use from
// the bundled emulated_methods.json (§4.5 "write-once immutable handle").
func Default() (*Index, error) {
	defaultOnce.Do(func() {
		data, err := bundledMethods.ReadFile("testdata/emulated_methods.json")
		if err != nil {
			defaultErr = err
			return
		}
		defaultErr = defaultIndex.Load(data)
	})
	return defaultIndex, defaultErr
}

// ReloadDefault replaces the process-wide index's contents in place,
// bypassing the once-guard — the explicit reload entry point §4.5 calls
// for in spite of the index otherwise being write-once.
func ReloadDefault(data []byte) error {
	return defaultIndex.Load(data)
}
