// Package hook lets callers transform data through named, prioritized
// callback chains.
package hook

import (
	"sort"
	"sync"
)

// DefaultPriority is used when Register is called without a priority.
const DefaultPriority = 10

// Callback receives the current data and the caller's context and returns
// the data for the next callback.
type Callback func(data any, context any) any

type entry struct {
	callback Callback
	priority int
}

// Service stores hooks by name.
type Service struct {
	hooks map[string][]entry
	mu    sync.RWMutex
}

// New creates an empty hook service.
func New() *Service {
	return &Service{hooks: make(map[string][]entry)}
}

// Register adds a callback to the named hook. Lower priorities run first;
// callbacks with equal priority run in registration order.
func (s *Service) Register(name string, callback Callback, priority ...int) {
	p := DefaultPriority
	if len(priority) > 0 {
		p = priority[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks[name] = append(s.hooks[name], entry{callback: callback, priority: p})
	sort.SliceStable(s.hooks[name], func(i, j int) bool {
		return s.hooks[name][i].priority < s.hooks[name][j].priority
	})
}

// Apply passes data through every callback of the named hook and returns
// the result. Data is returned unchanged when the hook has no callbacks.
func (s *Service) Apply(name string, data any, context any) any {
	s.mu.RLock()
	hooks := make([]entry, len(s.hooks[name]))
	copy(hooks, s.hooks[name])
	s.mu.RUnlock()

	for _, h := range hooks {
		data = h.callback(data, context)
	}

	return data
}

// Has reports whether the named hook has callbacks.
func (s *Service) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.hooks[name]) > 0
}
