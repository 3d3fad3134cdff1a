package screen

import (
	"slices"
)

// Registry tracks open screens in the order they were opened
type Registry struct {
	screens []*Screen
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry { return &Registry{} }

// Add registers s. A screen with the same id is closed and replaced in place.
func (r *Registry) Add(s *Screen) {
	if i := r.index(s.ID); i >= 0 {
		r.screens[i].Close()
		r.screens[i] = s
		return
	}
	r.screens = append(r.screens, s)
}

// Get returns the open screen with id
func (r *Registry) Get(id string) (*Screen, bool) {
	i := r.index(id)
	if i < 0 {
		return nil, false
	}
	return r.screens[i], true
}

// At returns the i-th open screen, or nil
func (r *Registry) At(i int) *Screen {
	if i < 0 || i >= len(r.screens) {
		return nil
	}
	return r.screens[i]
}

// Close closes and forgets the screen with id
func (r *Registry) Close(id string) bool {
	i := r.index(id)
	if i < 0 {
		return false
	}
	r.screens[i].Close()
	r.screens = slices.Delete(r.screens, i, i+1)
	return true
}

// CloseAll closes every screen
func (r *Registry) CloseAll() {
	for _, s := range r.screens {
		s.Close()
	}
	r.screens = nil
}

// Len returns the number of open screens
func (r *Registry) Len() int { return len(r.screens) }

// IDs lists open screen ids in order
func (r *Registry) IDs() []string {
	out := make([]string, len(r.screens))
	for i, s := range r.screens {
		out[i] = s.ID
	}
	return out
}

func (r *Registry) index(id string) int {
	return slices.IndexFunc(r.screens, func(s *Screen) bool { return s.ID == id })
}
