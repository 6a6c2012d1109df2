package runtime

import (
	"maps"

	"github.com/puzpuzpuz/xsync"
)

// Globals is the variable table shared by every context of one task tree.
// Writes are last-write-wins; there is no compare-and-set.
type Globals struct {
	xsync.RBMutex
	vars map[string]string
}

func NewGlobals() *Globals {
	return &Globals{vars: make(map[string]string)}
}

func (g *Globals) Get(name string) (string, bool) {
	tk := g.RLock()
	v, ok := g.vars[name]
	g.RUnlock(tk)
	return v, ok
}

func (g *Globals) Set(name, value string) {
	g.Lock()
	g.vars[name] = value
	g.Unlock()
}

func (g *Globals) Delete(name string) bool {
	g.Lock()
	defer g.Unlock()
	if _, ok := g.vars[name]; !ok {
		return false
	}
	delete(g.vars, name)
	return true
}

// Snapshot copies the table for readers that scan every name.
func (g *Globals) Snapshot() map[string]string {
	tk := g.RLock()
	out := maps.Clone(g.vars)
	g.RUnlock(tk)
	return out
}
