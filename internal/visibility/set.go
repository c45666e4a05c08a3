// Package visibility tracks which loaded regions are currently shown.
package visibility

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/neuroview/internal/region"
)

// ErrNotLoaded is returned when showing a region whose meshes are not loaded.
var ErrNotLoaded = errors.New("region not loaded")

// Listener is notified after every membership change.
type Listener func(id region.ID, shown bool)

// Set is the set of visible regions. Every member references a Loaded
// record. Listeners fire only when membership actually changes.
type Set struct {
	reg       *region.Registry
	members   map[region.ID]struct{}
	listeners []Listener
}

// New creates an empty set backed by reg.
func New(reg *region.Registry) *Set {
	return &Set{
		reg:     reg,
		members: make(map[region.ID]struct{}),
	}
}

// Subscribe registers l. Listeners run in registration order.
func (s *Set) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Show inserts id. It reports whether the set changed.
func (s *Set) Show(id region.ID) (bool, error) {
	if !s.reg.Loaded(id) {
		return false, fmt.Errorf("show %s: %w", id, ErrNotLoaded)
	}
	if _, ok := s.members[id]; ok {
		return false, nil
	}
	s.members[id] = struct{}{}
	s.notify(id, true)
	return true, nil
}

// Hide removes id. It reports whether the set changed.
func (s *Set) Hide(id region.ID) bool {
	if _, ok := s.members[id]; !ok {
		return false
	}
	delete(s.members, id)
	s.notify(id, false)
	return true
}

// HideAll removes every member and returns the removed ids in sorted order.
func (s *Set) HideAll() []region.ID {
	ids := s.Members()
	for _, id := range ids {
		delete(s.members, id)
		s.notify(id, false)
	}
	return ids
}

// Has reports whether id is visible.
func (s *Set) Has(id region.ID) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the number of visible regions.
func (s *Set) Len() int {
	return len(s.members)
}

// Members returns the visible ids in sorted order.
func (s *Set) Members() []region.ID {
	ids := make([]region.ID, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Set) notify(id region.ID, shown bool) {
	for _, l := range s.listeners {
		l(id, shown)
	}
}
