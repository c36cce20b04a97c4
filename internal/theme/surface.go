package theme

import (
	"maps"
	"sync"

	"github.com/apogeepress/apogee-server/internal/domain"
)

// Surface is the rendering surface a theme is applied to.
// Apply replaces the active CSS-variable set and effect flags wholesale, so
// switching themes is atomic from the caller's perspective: there is no
// intermediate state where two themes' effect flags are both active.
type Surface interface {
	Apply(theme domain.Theme)
}

// NoopSurface discards applications. Useful where no rendering surface
// exists, such as background jobs.
type NoopSurface struct{}

// Apply implements Surface as a no-op.
func (NoopSurface) Apply(domain.Theme) {}

// MemorySurface records the currently applied variable set and effect flags.
// It backs server-side rendering and tests.
type MemorySurface struct {
	mu        sync.Mutex
	themeName string
	variables map[string]string
	flags     []string
}

// NewMemorySurface creates an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{}
}

// Apply replaces the active state with the given theme's.
func (s *MemorySurface) Apply(theme domain.Theme) {
	vars := make(map[string]string, len(theme.Variables))
	maps.Copy(vars, theme.Variables)

	flags := make([]string, len(theme.EffectFlags))
	copy(flags, theme.EffectFlags)

	s.mu.Lock()
	s.themeName = theme.Name
	s.variables = vars
	s.flags = flags
	s.mu.Unlock()
}

// ActiveTheme returns the name of the currently applied theme.
func (s *MemorySurface) ActiveTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.themeName
}

// Variables returns a copy of the active CSS-variable set.
func (s *MemorySurface) Variables() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.variables))
	maps.Copy(out, s.variables)
	return out
}

// EffectFlags returns a copy of the active effect flags.
func (s *MemorySurface) EffectFlags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.flags))
	copy(out, s.flags)
	return out
}
