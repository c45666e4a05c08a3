// Package region tracks per-region load state and owns the asynchronous
// mesh loading pipeline.
package region

import (
	"errors"
	"fmt"
)

// ErrUnknownHemisphere is returned for a hemisphere selection other than
// "Left", "Right" or "Both".
var ErrUnknownHemisphere = errors.New("unknown hemisphere selection")

// Hemisphere is one side of the brain.
type Hemisphere int

const (
	Left Hemisphere = iota
	Right
)

// String returns "Left" or "Right".
func (h Hemisphere) String() string {
	if h == Left {
		return "Left"
	}
	return "Right"
}

// Suffix returns the id suffix, "L" or "R".
func (h Hemisphere) Suffix() string {
	if h == Left {
		return "L"
	}
	return "R"
}

// Opposite returns the other hemisphere.
func (h Hemisphere) Opposite() Hemisphere {
	if h == Left {
		return Right
	}
	return Left
}

// ID identifies one region in one hemisphere: "<base><L|R>".
type ID string

// NewID joins a base id and a hemisphere.
func NewID(base string, h Hemisphere) ID {
	return ID(base + h.Suffix())
}

// Base returns the id without its hemisphere suffix.
func (id ID) Base() string {
	if len(id) == 0 {
		return ""
	}
	return string(id[:len(id)-1])
}

// Hemisphere derives the side from the suffix. Anything but 'L' is Right.
func (id ID) Hemisphere() Hemisphere {
	if len(id) > 0 && id[len(id)-1] == 'L' {
		return Left
	}
	return Right
}

// Valid reports whether the id has a non-empty base and an L/R suffix.
func (id ID) Valid() bool {
	if len(id) < 2 {
		return false
	}
	s := id[len(id)-1]
	return s == 'L' || s == 'R'
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// Selection is a hemisphere choice made in the control panel.
type Selection int

const (
	SelectLeft Selection = iota
	SelectRight
	SelectBoth
)

// ParseSelection parses "Left", "Right" or "Both".
func ParseSelection(s string) (Selection, error) {
	switch s {
	case "Left":
		return SelectLeft, nil
	case "Right":
		return SelectRight, nil
	case "Both":
		return SelectBoth, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownHemisphere, s)
}

// String returns the control panel name of the selection.
func (s Selection) String() string {
	switch s {
	case SelectLeft:
		return "Left"
	case SelectRight:
		return "Right"
	default:
		return "Both"
	}
}

// IDs expands the selection for a base id, left hemisphere first.
func (s Selection) IDs(base string) []ID {
	switch s {
	case SelectLeft:
		return []ID{NewID(base, Left)}
	case SelectRight:
		return []ID{NewID(base, Right)}
	default:
		return []ID{NewID(base, Left), NewID(base, Right)}
	}
}
