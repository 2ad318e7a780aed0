// Package viewer models the host side of depth division: an ordered list
// of named layers that notifies subscribers on insertion and removal, and
// the Divider controller that drives divide.Partition from user input.
package viewer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/TuSKan/zarr-divider/divide"
)

// Layer is a named volume shown by the host. Once a layer is in a
// LayerList, change its visibility through LayerList.SetVisible.
type Layer struct {
	Name    string
	Volume  *divide.Volume
	Visible bool

	// Colormap and Opacity are display properties, carried over to the
	// layers produced by a split.
	Colormap string
	Opacity  float64

	// Source and Range are set on layers produced by a split.
	Source string
	Range  divide.Range
}

// EventKind tells inserts from removals.
type EventKind int

const (
	Inserted EventKind = iota
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Inserted:
		return "inserted"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes a change to a LayerList.
type Event struct {
	Kind  EventKind
	Index int
	Layer *Layer
}

// LayerList is an ordered collection of uniquely named layers.
// Handlers run synchronously, in subscription order, after the list lock
// has been released, so they may call back into the list.
type LayerList struct {
	mu       sync.Mutex
	layers   []*Layer
	handlers []*handler
}

type handler struct {
	fn func(Event)
}

// NewLayerList returns an empty list.
func NewLayerList() *LayerList {
	return &LayerList{}
}

// Add appends layer and notifies subscribers.
func (l *LayerList) Add(layer *Layer) error {
	if layer == nil || layer.Name == "" {
		return fmt.Errorf("layer must have a name")
	}
	l.mu.Lock()
	if l.indexLocked(layer.Name) >= 0 {
		l.mu.Unlock()
		return fmt.Errorf("layer %q already exists", layer.Name)
	}
	l.layers = append(l.layers, layer)
	idx := len(l.layers) - 1
	hs := slices.Clone(l.handlers)
	l.mu.Unlock()

	notify(hs, Event{Kind: Inserted, Index: idx, Layer: layer})
	return nil
}

// Remove deletes the named layer and notifies subscribers.
func (l *LayerList) Remove(name string) error {
	l.mu.Lock()
	idx := l.indexLocked(name)
	if idx < 0 {
		l.mu.Unlock()
		return fmt.Errorf("layer %q not found", name)
	}
	layer := l.layers[idx]
	l.layers = slices.Delete(l.layers, idx, idx+1)
	hs := slices.Clone(l.handlers)
	l.mu.Unlock()

	notify(hs, Event{Kind: Removed, Index: idx, Layer: layer})
	return nil
}

// Get returns the named layer.
func (l *LayerList) Get(name string) (*Layer, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx := l.indexLocked(name); idx >= 0 {
		return l.layers[idx], true
	}
	return nil, false
}

// SetVisible shows or hides the named layer.
func (l *LayerList) SetVisible(name string, visible bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexLocked(name)
	if idx < 0 {
		return fmt.Errorf("layer %q not found", name)
	}
	l.layers[idx].Visible = visible
	return nil
}

// Layers returns a snapshot of the list in order.
func (l *LayerList) Layers() []*Layer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.layers)
}

// Names returns the layer names in order.
func (l *LayerList) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.layers))
	for i, layer := range l.layers {
		names[i] = layer.Name
	}
	return names
}

// Len returns the number of layers.
func (l *LayerList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.layers)
}

// Subscribe registers fn for every subsequent event. The returned function
// unregisters it.
func (l *LayerList) Subscribe(fn func(Event)) (unsubscribe func()) {
	h := &handler{fn: fn}
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.handlers = slices.DeleteFunc(l.handlers, func(x *handler) bool { return x == h })
	}
}

func (l *LayerList) indexLocked(name string) int {
	return slices.IndexFunc(l.layers, func(layer *Layer) bool { return layer.Name == name })
}

func notify(hs []*handler, ev Event) {
	for _, h := range hs {
		h.fn(ev)
	}
}
