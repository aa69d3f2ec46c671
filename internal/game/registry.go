package game

import (
	"fmt"
	"sync"
)

// Registry manages game registration and lookup by callback token.
// Both the start token ("slot") and the retry token ("slotAgain") resolve
// to the same game.
type Registry struct {
	games map[string]*Game
	order []*Game
	mu    sync.RWMutex
}

// NewRegistry creates a new game registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[string]*Game),
	}
}

// Register adds a game to the registry.
func (r *Registry) Register(g *Game) error {
	if g == nil {
		return fmt.Errorf("cannot register nil game")
	}
	if g.Key == "" {
		return fmt.Errorf("game key cannot be empty")
	}
	if len(g.Rules) == 0 {
		return fmt.Errorf("game %s has no rules", g.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[g.Key]; ok {
		return fmt.Errorf("game %s already registered", g.Key)
	}
	r.games[g.Key] = g
	r.games[g.RetryKey()] = g
	r.order = append(r.order, g)
	return nil
}

// Get retrieves a game by its start or retry token.
func (r *Registry) Get(token string) (*Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[token]
	return g, ok
}

// List returns all registered games in registration order.
// The returned slice is a copy, so modifications won't affect the registry.
func (r *Registry) List() []*Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]*Game, len(r.order))
	copy(games, r.order)
	return games
}

// Keys returns the start tokens of all registered games.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.order))
	for _, g := range r.order {
		keys = append(keys, g.Key)
	}
	return keys
}

// Count returns the number of registered games.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
