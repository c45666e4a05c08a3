package scene

// Scene is the flat drawable list handed to the renderer each frame.
// It is owned by the main goroutine.
type Scene struct {
	objects    []*Mesh
	index      map[*Mesh]int
	background Color
}

// New creates an empty scene with a white background.
func New() *Scene {
	return &Scene{
		index:      make(map[*Mesh]int),
		background: White,
	}
}

// Add appends meshes to the scene. Meshes already present are ignored.
func (s *Scene) Add(meshes ...*Mesh) {
	for _, m := range meshes {
		if m == nil {
			continue
		}
		if _, ok := s.index[m]; ok {
			continue
		}
		s.index[m] = len(s.objects)
		s.objects = append(s.objects, m)
	}
}

// Remove drops a mesh from the scene. It reports whether the mesh was present.
func (s *Scene) Remove(m *Mesh) bool {
	i, ok := s.index[m]
	if !ok {
		return false
	}
	last := len(s.objects) - 1
	s.objects[i] = s.objects[last]
	s.index[s.objects[i]] = i
	s.objects[last] = nil
	s.objects = s.objects[:last]
	delete(s.index, m)
	return true
}

// Contains reports whether m has been added.
func (s *Scene) Contains(m *Mesh) bool {
	_, ok := s.index[m]
	return ok
}

// Objects returns the drawables in insertion order (removals may reorder).
// The slice must not be modified.
func (s *Scene) Objects() []*Mesh {
	return s.objects
}

// Len returns the number of drawables.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Background returns the clear color.
func (s *Scene) Background() Color {
	return s.background
}

// SetBackground sets the clear color.
func (s *Scene) SetBackground(c Color) {
	s.background = c
}
