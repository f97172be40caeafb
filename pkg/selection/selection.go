// Package selection tracks which workflow nodes are selected in an editor.
package selection

import (
	"maps"
	"slices"
)

// Flag marks the state of a selected node
type Flag uint8

const (
	// Selected is a plain selection
	Selected Flag = 1
	// Fresh marks a node created by the last edit; it decays to Selected after
	// the first render so the highlight animation plays once.
	Fresh Flag = 2
)

// Set maps node ids to their selection flag. The zero value is an empty selection.
type Set struct {
	ids map[string]Flag
}

// New creates an empty selection
func New() *Set {
	return &Set{ids: make(map[string]Flag)}
}

// FromMap creates a selection from a saved id→flag map
func FromMap(m map[string]Flag) *Set {
	s := New()
	for id, f := range m {
		s.ids[id] = f
	}
	return s
}

func (s *Set) init() {
	if s.ids == nil {
		s.ids = make(map[string]Flag)
	}
}

// Select adds id with the Selected flag, keeping a Fresh flag intact
func (s *Set) Select(id string) {
	s.init()
	if _, ok := s.ids[id]; !ok {
		s.ids[id] = Selected
	}
}

// Toggle adds id if absent and removes it if present (shift-click)
func (s *Set) Toggle(id string) {
	s.init()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = Selected
}

// Clear deselects everything
func (s *Set) Clear() {
	clear(s.ids)
}

// Click applies plain-click semantics: if id is already selected the whole
// selection is kept (so it can be dragged), otherwise only id is selected.
func (s *Set) Click(id string) {
	s.init()
	if _, ok := s.ids[id]; ok {
		return
	}
	clear(s.ids)
	s.ids[id] = Selected
}

// ReplaceWith deselects everything and selects ids with the given flag
func (s *Set) ReplaceWith(ids []string, flag Flag) {
	s.init()
	clear(s.ids)
	for _, id := range ids {
		s.ids[id] = flag
	}
}

// Remove deselects the given ids
func (s *Set) Remove(ids ...string) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// Retain drops every id for which keep returns false
func (s *Set) Retain(keep func(id string) bool) {
	maps.DeleteFunc(s.ids, func(id string, _ Flag) bool { return !keep(id) })
}

// Settle decays Fresh flags to Selected. Called after a render.
func (s *Set) Settle() {
	for id, f := range s.ids {
		if f == Fresh {
			s.ids[id] = Selected
		}
	}
}

// Has reports whether id is selected
func (s *Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Flag returns the flag of id, or 0 when id is not selected
func (s *Set) Flag(id string) Flag {
	return s.ids[id]
}

// Len returns the number of selected ids
func (s *Set) Len() int {
	return len(s.ids)
}

// Solo returns the only selected id when exactly one node is selected.
// Editing, testing and pole affordances are only available in this state.
func (s *Set) Solo() (string, bool) {
	if len(s.ids) != 1 {
		return "", false
	}
	for id := range s.ids {
		return id, true
	}
	return "", false
}

// IDs returns the selected ids in sorted order
func (s *Set) IDs() []string {
	return slices.Sorted(maps.Keys(s.ids))
}

// Map returns a copy of the id→flag map
func (s *Set) Map() map[string]Flag {
	out := make(map[string]Flag, len(s.ids))
	maps.Copy(out, s.ids)
	return out
}

// Clone returns an independent copy
func (s *Set) Clone() *Set {
	return FromMap(s.ids)
}
