package game

import (
	"sort"
	"sync"

	"github.com/decred/slog"

	"github.com/vctt94/pokerledger/pkg/eventlog"
	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/poker"
)

// RegistryConfig configures every game a Registry creates.
type RegistryConfig struct {
	Log      slog.Logger
	EventLog slog.Logger
	Ranker   poker.Ranker
	NewSeed  func() string

	// Sinks returns the sinks attached to a newly created or restored game.
	Sinks func(gameID string) []eventlog.Sink
}

// Registry holds the live games of a process. It is created by the caller
// and passed where it is needed.
type Registry struct {
	cfg   RegistryConfig
	mu    sync.Mutex
	games map[string]*Game
}

// NewRegistry returns an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	return &Registry{cfg: cfg, games: make(map[string]*Game)}
}

func (r *Registry) gameConfig(id string) GameConfig {
	return GameConfig{
		ID:       id,
		Log:      r.cfg.Log,
		EventLog: r.cfg.EventLog,
		Ranker:   r.cfg.Ranker,
		NewSeed:  r.cfg.NewSeed,
	}
}

func (r *Registry) attachSinks(g *Game) {
	if r.cfg.Sinks == nil {
		return
	}
	for _, s := range r.cfg.Sinks(g.ID()) {
		g.AddSink(s)
	}
}

// Get returns the live game with id.
func (r *Registry) Get(id string) (*Game, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	return g, ok
}

// GetOrCreate returns the game with id, creating an empty one on first
// reference.
func (r *Registry) GetOrCreate(id string) *Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.games[id]; ok {
		return g
	}
	g := NewGame(r.gameConfig(id))
	r.attachSinks(g)
	r.games[id] = g
	r.cfg.Log.Debugf("game %s created", id)
	return g
}

// Restore registers a game rebuilt from history, replacing any live game
// with the same id. Sinks only see events appended after the restore.
func (r *Registry) Restore(id string, history []events.Event) *Game {
	g := RestoreGame(r.gameConfig(id), history)
	r.attachSinks(g)
	r.mu.Lock()
	r.games[id] = g
	r.mu.Unlock()
	return g
}

// Remove drops the game with id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
}

// Leave removes playerID from game id and drops the game once its last seat
// empties. It reports whether the game was dropped.
func (r *Registry) Leave(id, playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return false
	}
	g.RemovePlayer(playerID)
	if g.SeatedCount() > 0 {
		return false
	}
	delete(r.games, id)
	r.cfg.Log.Debugf("game %s removed, last seat emptied", id)
	return true
}

// IDs returns the ids of all live games, sorted.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
