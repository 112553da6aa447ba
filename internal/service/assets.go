package service

import (
	"fmt"
	"sort"

	"github.com/l1jgo/sim2d/internal/component"
)

// Assets maps asset names to opaque handles. Loading the asset itself is the
// backend's concern; the simulation only passes handles around.
type Assets struct {
	byName map[string]component.Handle
	next   component.Handle
}

func NewAssets() *Assets {
	return &Assets{byName: make(map[string]component.Handle)}
}

// Register returns name's handle, allocating one on first use.
func (a *Assets) Register(name string) component.Handle {
	if h, ok := a.byName[name]; ok {
		return h
	}
	a.next++
	a.byName[name] = a.next
	return a.next
}

func (a *Assets) Lookup(name string) (component.Handle, error) {
	h, ok := a.byName[name]
	if !ok {
		return 0, fmt.Errorf("asset %q not registered", name)
	}
	return h, nil
}

// Names lists registered assets in name order.
func (a *Assets) Names() []string {
	out := make([]string, 0, len(a.byName))
	for n := range a.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
