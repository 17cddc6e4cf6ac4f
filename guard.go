package dbstatic

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Guard serializes access to a Base: any number of readers or one writer,
// each holding the lock for a whole cursor session.
type Guard struct {
	mu   *xsync.RBMutex
	base *Base
}

func NewGuard(b *Base) *Guard {
	return &Guard{mu: xsync.NewRBMutex(), base: b}
}

func (g *Guard) Base() *Base {
	return g.base
}

// View runs fn with a fresh entry under the read lock. fn must not mutate.
func (g *Guard) View(fn func(e *Entry) error) error {
	t := g.mu.RLock()
	defer g.mu.RUnlock(t)
	e := NewEntry(g.base)
	defer e.Finish()
	return fn(e)
}

// Update runs fn with a fresh entry under the write lock.
func (g *Guard) Update(fn func(e *Entry) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	e := NewEntry(g.base)
	defer e.Finish()
	return fn(e)
}
