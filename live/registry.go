package live

import "sync"

// Registry is the table of live actors keyed by match id. Each actor owns
// its own serialization; the registry lock only guards the table itself, so
// matches never contend with each other.
type Registry struct {
	mu      sync.RWMutex
	actors  map[string]*Actor
	factory func(matchID string) *Actor
}

func NewRegistry(factory func(matchID string) *Actor) *Registry {
	return &Registry{
		actors:  make(map[string]*Actor),
		factory: factory,
	}
}

// Get returns the actor for matchID if one exists.
func (r *Registry) Get(matchID string) (*Actor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[matchID]
	return a, ok
}

// GetOrCreate returns the actor for matchID, creating it on first use.
func (r *Registry) GetOrCreate(matchID string) *Actor {
	r.mu.RLock()
	a, ok := r.actors[matchID]
	r.mu.RUnlock()
	if ok {
		return a
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.actors[matchID]; ok {
		return a
	}
	a = r.factory(matchID)
	r.actors[matchID] = a
	return a
}

// Remove retires an actor, typically after archiving.
func (r *Registry) Remove(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.actors, matchID)
}
