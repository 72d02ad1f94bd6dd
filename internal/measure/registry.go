package measure

import (
	"context"
	"fmt"
	"sync"
	"time"

	pipeerr "twmw/internal/errors"
	"twmw/internal/series"
)

// Role selects which computer of a measure is resolved.
type Role string

const (
	RoleValue Role = "value"
	RoleScore Role = "score"
)

// ComputerFunc computes a measure's series over [start, end]. Computers are
// pure: same inputs, same series.
type ComputerFunc func(ctx context.Context, start, end time.Time) (series.TimeSeries, error)

// Registry holds the fixed surface of computer implementations and, once
// bound, the profile whose references resolve against it.
type Registry struct {
	mu      sync.RWMutex
	values  map[string]ComputerFunc
	scores  map[string]ComputerFunc
	order   []string
	profile *Profile
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		values: make(map[string]ComputerFunc),
		scores: make(map[string]ComputerFunc),
	}
}

// RegisterValue adds a value computer under a name.
func (r *Registry) RegisterValue(name string, fn ComputerFunc) error {
	return r.register(r.values, name, fn)
}

// RegisterScore adds a score computer under a name.
func (r *Registry) RegisterScore(name string, fn ComputerFunc) error {
	return r.register(r.scores, name, fn)
}

func (r *Registry) register(table map[string]ComputerFunc, name string, fn ComputerFunc) error {
	if fn == nil {
		return fmt.Errorf("cannot register nil computer")
	}
	if name == "" {
		return fmt.Errorf("computer name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := table[name]; exists {
		return fmt.Errorf("computer %q already registered", name)
	}
	table[name] = fn
	r.order = append(r.order, name)
	return nil
}

// Bind attaches a profile to the registry, rejecting any function reference
// that names no registered computer. After Bind, Resolve is a pure lookup.
func (r *Registry) Bind(p *Profile) error {
	if err := checkReferences(p, r); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = p
	return nil
}

// Profile returns the bound profile, or nil.
func (r *Registry) Profile() *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profile
}

// Resolve returns the callable computer for a measure id and role. It does
// not invoke the computer. An id absent from the profile is an
// UnknownMeasureError; a missing or unregistered function reference is a
// ConfigError.
func (r *Registry) Resolve(measureID string, role Role) (ComputerFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.profile == nil {
		return nil, pipeerr.ConfigError("no profile bound to registry")
	}
	def, ok := r.profile.Get(measureID)
	if !ok {
		return nil, pipeerr.UnknownMeasure(measureID)
	}

	name := def.FuncFor(role)
	if name == "" {
		return nil, pipeerr.ConfigError("measure %q declares no %s function", measureID, role)
	}

	table := r.values
	if role == RoleScore {
		table = r.scores
	}
	fn, ok := table[name]
	if !ok {
		return nil, pipeerr.ConfigError("measure %q names unregistered %s function %q", measureID, role, name)
	}
	return fn, nil
}

// Names returns all registered computer names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) hasValue(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.values[name]
	return ok
}

func (r *Registry) hasScore(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.scores[name]
	return ok
}
