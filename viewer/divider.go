package viewer

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/TuSKan/zarr-divider/divide"
	"github.com/TuSKan/zarr-divider/internal/logging"
)

// ValidationError is a user-facing problem with the Divider's input. No
// layer is added when Split returns one.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NameFunc names the n-th (1-based) layer produced from source.
type NameFunc func(source string, n int, r divide.Range) string

// DefaultName produces "<source>_part<n>".
func DefaultName(source string, n int, _ divide.Range) string {
	return fmt.Sprintf("%s_part%d", source, n)
}

// Divider is the headless form that splits a selected layer by depth.
// It tracks the list's 4D layers as selectable choices.
type Divider struct {
	layers      *LayerList
	unsubscribe func()

	// HideSource hides the selected layer after a successful split.
	HideSource bool
	// Name names the produced layers; DefaultName when nil.
	Name NameFunc

	mu                sync.Mutex
	choices           []string
	selected          string
	splitText         string
	includeBoundaries bool
}

// NewDivider attaches a Divider to layers.
func NewDivider(layers *LayerList) *Divider {
	d := &Divider{layers: layers, HideSource: true}
	d.refresh()
	d.unsubscribe = layers.Subscribe(func(Event) { d.refresh() })
	return d
}

// Close detaches the Divider from its layer list.
func (d *Divider) Close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}

// refresh rebuilds the choices from the layer list, keeping the current
// selection when it is still present.
func (d *Divider) refresh() {
	var choices []string
	for _, layer := range d.layers.Layers() {
		if layer.Volume != nil && len(layer.Volume.Shape) == divide.Rank {
			choices = append(choices, layer.Name)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.choices = choices
	if !slices.Contains(choices, d.selected) {
		d.selected = ""
		if len(choices) > 0 {
			d.selected = choices[0]
		}
	}
}

// Choices returns the names of the layers that can be split.
func (d *Divider) Choices() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.choices)
}

// Select picks the layer to split.
func (d *Divider) Select(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !slices.Contains(d.choices, name) {
		return &ValidationError{Msg: fmt.Sprintf("layer %q is not a 4D image layer", name)}
	}
	d.selected = name
	return nil
}

// Selected returns the chosen layer name, "" when there is none.
func (d *Divider) Selected() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selected
}

// SetSplitText sets the raw split positions, e.g. "2, 4" or "[2, 4]".
func (d *Divider) SetSplitText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.splitText = text
}

// SetIncludeBoundaries toggles boundary inclusion.
func (d *Divider) SetIncludeBoundaries(include bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.includeBoundaries = include
}

// Split partitions the selected layer and adds one layer per partition in
// ascending depth order. Produced layers share the source's colormap and
// opacity. The source is hidden afterwards when HideSource is set.
func (d *Divider) Split() ([]*Layer, error) {
	d.mu.Lock()
	selected, text, include := d.selected, d.splitText, d.includeBoundaries
	d.mu.Unlock()

	if selected == "" {
		return nil, &ValidationError{Msg: "no image layer selected"}
	}
	source, ok := d.layers.Get(selected)
	if !ok || source.Volume == nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("layer %q not found", selected)}
	}

	splits, err := divide.ParseSplits(text)
	if err != nil {
		return nil, &ValidationError{Msg: "invalid split positions", Err: err}
	}
	if err := divide.ValidateSplits(splits, source.Volume.Depth()); err != nil {
		return nil, &ValidationError{Msg: "invalid split positions", Err: err}
	}

	parts, ranges, err := divide.PartitionWithRanges(source.Volume, splits, include)
	if err != nil {
		return nil, fmt.Errorf("failed to split layer %q: %w", selected, err)
	}

	name := d.Name
	if name == nil {
		name = DefaultName
	}
	created := make([]*Layer, len(parts))
	for i, p := range parts {
		created[i] = &Layer{
			Name:     name(selected, i+1, ranges[i]),
			Volume:   p,
			Visible:  true,
			Colormap: source.Colormap,
			Opacity:  source.Opacity,
			Source:   selected,
			Range:    ranges[i],
		}
		if _, exists := d.layers.Get(created[i].Name); exists {
			return nil, &ValidationError{Msg: fmt.Sprintf("layer %q already exists", created[i].Name)}
		}
	}

	for i, layer := range created {
		if err := d.layers.Add(layer); err != nil {
			for _, done := range created[:i] {
				err = errors.Join(err, d.layers.Remove(done.Name))
			}
			return nil, fmt.Errorf("failed to add layer %q: %w", layer.Name, err)
		}
		logging.Diagf("added layer %s depth %s", layer.Name, layer.Range)
	}

	if d.HideSource {
		if err := d.layers.SetVisible(selected, false); err != nil {
			logging.Diagf("cannot hide %s: %v", selected, err)
		}
	}
	logging.Opsf("split %s at [%s] into %d layers (boundaries=%v)", selected, divide.FormatSplits(splits), len(created), include)
	return created, nil
}
