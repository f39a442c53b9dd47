// Package server is the orchestration layer around the game aggregate. It
// validates turn order, persists appended events, schedules automatic street
// advancement and fans notifications out to handlers.
package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/vctt94/pokerledger/pkg/eventlog"
	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/game"
	"github.com/vctt94/pokerledger/pkg/logging"
	"github.com/vctt94/pokerledger/pkg/poker"
	"github.com/vctt94/pokerledger/pkg/store"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrNotSeated    = errors.New("player not seated")
	ErrTableFull    = errors.New("table full")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrBetTooSmall  = errors.New("bet below amount to call")
	ErrCannotCheck  = errors.New("cannot check facing a bet")
)

// Config holds the server settings.
type Config struct {
	// Store persists every appended event. Nil keeps games in memory only.
	Store  store.Store
	Ranker poker.Ranker

	// AutoAdvanceDelay is the delay before dealing the next street or
	// settling the showdown. Zero disables it.
	AutoAdvanceDelay time.Duration
	// AutoStartDelay is the delay before starting the next round. Zero
	// disables it.
	AutoStartDelay time.Duration

	NewSeed func() string

	QueueSize int
	Workers   int
}

// Server implements the command surface over a game registry.
type Server struct {
	log        slog.Logger
	logBackend *logging.LogBackend
	cfg        Config
	store      store.Store
	registry   *game.Registry

	// Per-game command serialization. A check such as turn order and the
	// command it guards run under the same lock.
	cmdMutexes map[string]*sync.Mutex
	cmdMu      sync.Mutex

	// Pending delayed actions, one per game.
	timers   map[string]*time.Timer
	timersMu sync.Mutex
	stopped  bool

	eventProcessor *EventProcessor
}

// NewServer creates a server. A nil logBackend disables logging.
func NewServer(cfg Config, logBackend *logging.LogBackend) *Server {
	log, gameLog, elogLog := slog.Disabled, slog.Disabled, slog.Disabled
	if logBackend != nil {
		log = logBackend.Logger(logging.SubsysServer)
		gameLog = logBackend.Logger(logging.SubsysGame)
		elogLog = logBackend.Logger(logging.SubsysLog)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	s := &Server{
		log:        log,
		logBackend: logBackend,
		cfg:        cfg,
		store:      cfg.Store,
		cmdMutexes: make(map[string]*sync.Mutex),
		timers:     make(map[string]*time.Timer),
	}
	s.eventProcessor = NewEventProcessor(log, cfg.QueueSize, cfg.Workers)
	s.registry = game.NewRegistry(game.RegistryConfig{
		Log:      gameLog,
		EventLog: elogLog,
		Ranker:   cfg.Ranker,
		NewSeed:  cfg.NewSeed,
		Sinks:    s.sinks,
	})
	s.eventProcessor.Start()
	return s
}

// sinks returns the sinks attached to every game: the store first, then
// the notification fan-out.
func (s *Server) sinks(gameID string) []eventlog.Sink {
	var sinks []eventlog.Sink
	if s.store != nil {
		sinks = append(sinks, s.store.Sink(gameID))
	}
	sinks = append(sinks, eventlog.SinkFunc(func(e events.Event) error {
		s.eventProcessor.PublishEvent(&GameEvent{
			Type:      GameEventTypeAppended,
			GameID:    gameID,
			Event:     e,
			Timestamp: time.Now(),
		})
		return nil
	}))
	return sinks
}

// AddHandler registers a notification handler.
func (s *Server) AddHandler(h NotificationHandler) {
	s.eventProcessor.AddHandler(h)
}

// Registry returns the live games.
func (s *Server) Registry() *game.Registry { return s.registry }

// Stop cancels pending delayed actions and drains notifications. It does not
// close the store.
func (s *Server) Stop() {
	s.timersMu.Lock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.timersMu.Unlock()

	s.eventProcessor.Stop()
}

// LoadAll restores every persisted game. A game whose log cannot be loaded
// is skipped; its error is returned joined with the others.
func (s *Server) LoadAll() error {
	if s.store == nil {
		return nil
	}
	ids, err := s.store.GameIDs()
	if err != nil {
		return fmt.Errorf("list games: %w", err)
	}
	var errs []error
	for _, id := range ids {
		if _, err := s.restore(id, true); err != nil {
			s.log.Errorf("Failed to load game %s: %v", id, err)
			errs = append(errs, fmt.Errorf("game %s: %w", id, err))
		}
	}
	for _, id := range s.registry.IDs() {
		s.withGame(id, func(g *game.Game) error {
			s.afterCommand(g)
			return nil
		})
	}
	return errors.Join(errs...)
}

// restore rebuilds gameID from the store. It returns nil when the store has
// no history for it. With skipEmpty, a persisted game without seated players
// is left unloaded.
func (s *Server) restore(gameID string, skipEmpty bool) (*game.Game, error) {
	history, err := s.store.Load(gameID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	g := s.registry.Restore(gameID, history)
	if skipEmpty && g.SeatedCount() == 0 {
		s.registry.Remove(gameID)
		s.log.Debugf("Skipping game %s, no seated players", gameID)
		return nil, nil
	}
	s.log.Infof("Restored game %s from %d events", gameID, len(history))
	return g, nil
}

func (s *Server) cmdMutex(gameID string) *sync.Mutex {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	m, ok := s.cmdMutexes[gameID]
	if !ok {
		m = &sync.Mutex{}
		s.cmdMutexes[gameID] = m
	}
	return m
}

// withGame runs fn on the live game under the game's command lock.
func (s *Server) withGame(gameID string, fn func(g *game.Game) error) error {
	m := s.cmdMutex(gameID)
	m.Lock()
	defer m.Unlock()

	g, ok := s.registry.Get(gameID)
	if !ok {
		return ErrGameNotFound
	}
	return fn(g)
}

// Join seats playerID in gameID, creating the game on first reference. A
// game that is not live but has persisted history continues that history.
func (s *Server) Join(gameID, playerID, name string) error {
	m := s.cmdMutex(gameID)
	m.Lock()
	defer m.Unlock()

	g, ok := s.registry.Get(gameID)
	if !ok && s.store != nil {
		restored, err := s.restore(gameID, false)
		if err != nil {
			return err
		}
		g, ok = restored, restored != nil
	}
	if !ok {
		g = s.registry.GetOrCreate(gameID)
	}

	g.AddPlayer(playerID, name)
	if _, seated := g.SeatOf(playerID); !seated {
		return ErrTableFull
	}
	s.log.Debugf("Player %s joined game %s", playerID, gameID)
	s.afterCommand(g)
	return nil
}

// Leave unseats playerID, forfeiting a hand in progress. The game is
// dropped when its last seat empties.
func (s *Server) Leave(gameID, playerID string) error {
	m := s.cmdMutex(gameID)
	m.Lock()
	defer m.Unlock()

	g, ok := s.registry.Get(gameID)
	if !ok {
		return ErrGameNotFound
	}
	if _, seated := g.SeatOf(playerID); !seated {
		return ErrNotSeated
	}
	if s.registry.Leave(gameID, playerID) {
		s.cancelTimer(gameID)
		s.eventProcessor.PublishEvent(&GameEvent{
			Type:      GameEventTypeGameRemoved,
			GameID:    gameID,
			Timestamp: time.Now(),
		})
		s.log.Infof("Game %s removed", gameID)
		return nil
	}
	s.afterCommand(g)
	return nil
}

// StartRound starts a round with seed, or a generated seed when empty. It
// is a no-op while a round is in progress.
func (s *Server) StartRound(gameID, seed string) error {
	return s.withGame(gameID, func(g *game.Game) error {
		g.StartNewRound(seed)
		s.afterCommand(g)
		return nil
	})
}

// checkTurn reports whether playerID may act now.
func checkTurn(g *game.Game, playerID string) error {
	if _, seated := g.SeatOf(playerID); !seated {
		return ErrNotSeated
	}
	next, ok := g.NextToAct()
	if !ok || next != playerID {
		return ErrNotYourTurn
	}
	return nil
}

// Bet places amount for playerID. The amount must cover the call unless it
// puts the player all in.
func (s *Server) Bet(gameID, playerID string, amount int64) error {
	return s.withGame(gameID, func(g *game.Game) error {
		if err := checkTurn(g, playerID); err != nil {
			return err
		}
		toCall := g.AmountToCall(playerID)
		if amount < toCall && amount < g.Balance(playerID) {
			return fmt.Errorf("%w: need %d, got %d", ErrBetTooSmall, toCall, amount)
		}
		g.PlaceBet(playerID, amount)
		s.afterCommand(g)
		return nil
	})
}

// Call matches the highest bet of the street, or goes all in when short.
func (s *Server) Call(gameID, playerID string) error {
	return s.withGame(gameID, func(g *game.Game) error {
		if err := checkTurn(g, playerID); err != nil {
			return err
		}
		g.PlaceBet(playerID, g.AmountToCall(playerID))
		s.afterCommand(g)
		return nil
	})
}

// Check passes the action with a zero bet when nothing is owed.
func (s *Server) Check(gameID, playerID string) error {
	return s.withGame(gameID, func(g *game.Game) error {
		if err := checkTurn(g, playerID); err != nil {
			return err
		}
		if owed := g.AmountToCall(playerID); owed > 0 {
			return fmt.Errorf("%w: %d to call", ErrCannotCheck, owed)
		}
		g.PlaceBet(playerID, 0)
		s.afterCommand(g)
		return nil
	})
}

// Fold folds playerID's hand.
func (s *Server) Fold(gameID, playerID string) error {
	return s.withGame(gameID, func(g *game.Game) error {
		if err := checkTurn(g, playerID); err != nil {
			return err
		}
		g.FoldHand(playerID)
		s.afterCommand(g)
		return nil
	})
}

// DealFlop deals the flop. Like the other dealing commands it is a no-op
// unless the game is in the preceding phase.
func (s *Server) DealFlop(gameID string) error {
	return s.withGame(gameID, func(g *game.Game) error {
		g.DealFlop()
		s.afterCommand(g)
		return nil
	})
}

// DealTurn deals the turn.
func (s *Server) DealTurn(gameID string) error {
	return s.withGame(gameID, func(g *game.Game) error {
		g.DealTurn()
		s.afterCommand(g)
		return nil
	})
}

// DealRiver deals the river.
func (s *Server) DealRiver(gameID string) error {
	return s.withGame(gameID, func(g *game.Game) error {
		g.DealRiver()
		s.afterCommand(g)
		return nil
	})
}

// Finish settles the showdown.
func (s *Server) Finish(gameID string) error {
	return s.withGame(gameID, func(g *game.Game) error {
		g.Finish()
		s.afterCommand(g)
		return nil
	})
}

// State returns the table state of gameID.
func (s *Server) State(gameID string) (game.TableState, error) {
	g, ok := s.registry.Get(gameID)
	if !ok {
		return game.TableState{}, ErrGameNotFound
	}
	return g.State(), nil
}

// Games returns the ids of the live games.
func (s *Server) Games() []string { return s.registry.IDs() }

// afterCommand publishes the table state and schedules the next automatic
// action. It runs under the game's command lock.
func (s *Server) afterCommand(g *game.Game) {
	state := g.State()
	s.eventProcessor.PublishEvent(&GameEvent{
		Type:      GameEventTypeTableState,
		GameID:    g.ID(),
		State:     &state,
		Timestamp: time.Now(),
	})
	s.schedule(g.ID(), g.NextAction())
}

// schedule arms the delayed action for next, replacing any pending one.
func (s *Server) schedule(gameID string, next game.NextAction) {
	var delay time.Duration
	switch next.Kind {
	case game.ActDealFlop, game.ActDealTurn, game.ActDealRiver, game.ActFinish:
		delay = s.cfg.AutoAdvanceDelay
	case game.ActStartRound:
		delay = s.cfg.AutoStartDelay
	default:
		s.cancelTimer(gameID)
		return
	}
	if delay <= 0 {
		s.cancelTimer(gameID)
		return
	}

	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if s.stopped {
		return
	}
	if t, ok := s.timers[gameID]; ok {
		t.Stop()
	}
	kind := next.Kind
	s.timers[gameID] = time.AfterFunc(delay, func() {
		s.autoAdvance(gameID, kind)
	})
	s.log.Tracef("Scheduled %s for game %s in %v", kind, gameID, delay)
}

func (s *Server) cancelTimer(gameID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if t, ok := s.timers[gameID]; ok {
		t.Stop()
		delete(s.timers, gameID)
	}
}

// autoAdvance performs a delayed action. A removed game or a game that has
// moved past the expected action makes it a silent no-op.
func (s *Server) autoAdvance(gameID string, want game.ActionKind) {
	err := s.withGame(gameID, func(g *game.Game) error {
		if got := g.NextAction().Kind; got != want {
			s.log.Tracef("Stale %s for game %s, next is %s", want, gameID, got)
			return nil
		}
		switch want {
		case game.ActDealFlop:
			g.DealFlop()
		case game.ActDealTurn:
			g.DealTurn()
		case game.ActDealRiver:
			g.DealRiver()
		case game.ActFinish:
			g.Finish()
		case game.ActStartRound:
			g.StartNewRound("")
		}
		s.log.Debugf("Auto %s for game %s", want, gameID)
		s.afterCommand(g)
		return nil
	})
	if errors.Is(err, ErrGameNotFound) {
		s.log.Tracef("Dropping %s for removed game %s", want, gameID)
	}
}
