package layout

import (
	"slices"
	"strings"
	"sync"
)

// Store owns the presets. There is always at least one preset and exactly one of them
// is active.
type Store struct {
	mu      sync.RWMutex
	presets []Preset
	active  int
}

// NewStore returns a store holding only the default preset.
func NewStore() *Store {
	return &Store{presets: []Preset{DefaultPreset()}}
}

func (s *Store) find(name string) int {
	return slices.IndexFunc(s.presets, func(p Preset) bool { return p.Name == name })
}

// Presets returns copies of all presets in insertion order.
func (s *Store) Presets() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Preset, len(s.presets))
	for i, p := range s.presets {
		out[i] = p.Clone()
	}
	return out
}

// Get returns a copy of the preset called name.
func (s *Store) Get(name string) (Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.find(name)
	if i < 0 {
		return Preset{}, false
	}
	return s.presets[i].Clone(), true
}

// Add stores a normalized copy of p. It fails for an empty or duplicate name.
func (s *Store) Add(p Preset) bool {
	p = p.Normalize()
	if p.Name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(p.Name) >= 0 {
		return false
	}
	s.presets = append(s.presets, p)
	return true
}

// Update replaces the preset with the same name.
func (s *Store) Update(p Preset) bool {
	p = p.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(p.Name)
	if i < 0 {
		return false
	}
	s.presets[i] = p
	return true
}

// Rename changes the name of a preset. The new name must be free.
func (s *Store) Rename(from, to string) bool {
	to = strings.TrimSpace(to)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(from)
	if i < 0 || to == "" || s.find(to) >= 0 {
		return false
	}
	s.presets[i].Name = to
	return true
}

// Delete removes a preset. The last preset cannot be deleted; deleting the active
// preset activates the first remaining one.
func (s *Store) Delete(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(name)
	if i < 0 || len(s.presets) == 1 {
		return false
	}
	s.presets = slices.Delete(s.presets, i, i+1)
	switch {
	case s.active == i:
		s.active = 0
	case s.active > i:
		s.active--
	}
	return true
}

// Activate makes name the active preset.
func (s *Store) Activate(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(name)
	if i < 0 {
		return false
	}
	s.active = i
	return true
}

// Active returns a copy of the active preset.
func (s *Store) Active() Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.presets[s.active].Clone()
}

// replace swaps in a loaded preset list. An empty list keeps the current presets.
func (s *Store) replace(presets []Preset, active string) {
	if len(presets) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = presets
	s.active = max(s.find(active), 0)
}
