// Package binding provides the construct-once engine handle shared by the
// binding layers (HTTP server, js/wasm).
package binding

import (
	"sync"
	"sync/atomic"

	"github.com/MeKo-Tech/reversejp/pkg/reversejp"
)

// Loader builds an engine, e.g. reversejp.BuildEmbedded.
type Loader func() (*reversejp.Engine, error)

// Lazy builds an engine on first use. Concurrent callers of Get block until the
// single construction finishes and all of them observe its result, success or
// failure. A failed construction is not retried.
type Lazy struct {
	load  Loader
	once  sync.Once
	eng   *reversejp.Engine
	err   error
	ready atomic.Bool
}

// NewLazy returns a handle that will call load exactly once.
func NewLazy(load Loader) *Lazy {
	return &Lazy{load: load}
}

// Loaded wraps an engine that is already built.
func Loaded(eng *reversejp.Engine) *Lazy {
	return NewLazy(func() (*reversejp.Engine, error) { return eng, nil })
}

// Get returns the engine, building it on the first call.
func (l *Lazy) Get() (*reversejp.Engine, error) {
	l.once.Do(func() {
		l.eng, l.err = l.load()
		l.ready.Store(l.err == nil)
	})
	return l.eng, l.err
}

// Ready reports whether the engine has been built successfully. It never
// triggers construction.
func (l *Lazy) Ready() bool {
	return l.ready.Load()
}
