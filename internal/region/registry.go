package region

import (
	"sort"

	"github.com/Faultbox/neuroview/internal/scene"
)

// State is the load state of a region.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Record is the registry entry for one region. Records are created on the
// first load request and live for the lifetime of the registry.
type Record struct {
	ID     ID
	State  State
	Meshes []*scene.Mesh // empty until Loaded
	Err    error         // last decode failure
}

// Registry maps region ids to their records. It is not safe for
// concurrent use; the gateway mutates it from the main goroutine only.
type Registry struct {
	records map[ID]*Record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{records: make(map[ID]*Record)}
}

// Get returns the record for id, or nil if it was never requested.
func (r *Registry) Get(id ID) *Record {
	return r.records[id]
}

// State returns the load state of id (Unloaded when unknown).
func (r *Registry) State(id ID) State {
	if rec := r.records[id]; rec != nil {
		return rec.State
	}
	return Unloaded
}

// Loaded reports whether id has finished loading.
func (r *Registry) Loaded(id ID) bool {
	return r.State(id) == Loaded
}

// Meshes returns the meshes owned by id (nil unless Loaded).
func (r *Registry) Meshes(id ID) []*scene.Mesh {
	if rec := r.records[id]; rec != nil && rec.State == Loaded {
		return rec.Meshes
	}
	return nil
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// IDs returns every known id in sorted order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) ensure(id ID) *Record {
	rec, ok := r.records[id]
	if !ok {
		rec = &Record{ID: id}
		r.records[id] = rec
	}
	return rec
}
