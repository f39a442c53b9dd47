package server

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/game"
	"github.com/vctt94/pokerledger/pkg/store"
)

// firstRanker ranks every hand as tied.
type firstRanker struct{}

func (firstRanker) Rank(hands [][]string, board []string) ([][]int, error) {
	group := make([]int, len(hands))
	for i := range hands {
		group[i] = i
	}
	return [][]int{group}, nil
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	if cfg.Ranker == nil {
		cfg.Ranker = firstRanker{}
	}
	if cfg.NewSeed == nil {
		cfg.NewSeed = func() string { return "test-seed" }
	}
	s := NewServer(cfg, nil)
	t.Cleanup(s.Stop)
	return s
}

// headsUp seats a and b in g1 and starts a round: a deals and posts the big
// blind, b posts the small blind and acts first.
func headsUp(t *testing.T, s *Server) {
	t.Helper()
	require.NoError(t, s.Join("g1", "a", "Alice"))
	require.NoError(t, s.Join("g1", "b", "Bob"))
	require.NoError(t, s.StartRound("g1", "seed-1"))
}

func phase(t *testing.T, s *Server) game.Phase {
	t.Helper()
	st, err := s.State("g1")
	require.NoError(t, err)
	return st.Phase
}

func TestTurnOrder(t *testing.T) {
	s := newTestServer(t, Config{})
	headsUp(t, s)

	assert.ErrorIs(t, s.Bet("g1", "a", 100), ErrNotYourTurn)
	assert.ErrorIs(t, s.Fold("g1", "a"), ErrNotYourTurn)
	assert.ErrorIs(t, s.Check("g1", "nobody"), ErrNotSeated)
	assert.ErrorIs(t, s.Check("g1", "b"), ErrCannotCheck)
	assert.ErrorIs(t, s.Bet("g1", "b", 10), ErrBetTooSmall)

	require.NoError(t, s.Call("g1", "b"))
	require.NoError(t, s.Check("g1", "a"))

	g, ok := s.Registry().Get("g1")
	require.True(t, ok)
	assert.Equal(t, game.ActDealFlop, g.NextAction().Kind)
	assert.Equal(t, int64(960), g.Balance("a"))
	assert.Equal(t, int64(960), g.Balance("b"))

	require.NoError(t, s.DealFlop("g1"))
	assert.Equal(t, game.PhaseFlop, phase(t, s))
}

func TestUnknownGame(t *testing.T) {
	s := newTestServer(t, Config{})
	assert.ErrorIs(t, s.StartRound("nope", ""), ErrGameNotFound)
	assert.ErrorIs(t, s.Leave("nope", "a"), ErrGameNotFound)
	_, err := s.State("nope")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestTableFull(t *testing.T) {
	s := newTestServer(t, Config{})
	for _, p := range []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"} {
		require.NoError(t, s.Join("g1", p, p))
	}
	assert.ErrorIs(t, s.Join("g1", "p8", "p8"), ErrTableFull)
}

func TestFoldEndsHand(t *testing.T) {
	s := newTestServer(t, Config{})
	headsUp(t, s)

	require.NoError(t, s.Fold("g1", "b"))
	g, _ := s.Registry().Get("g1")
	assert.Equal(t, game.PhaseNoRound, g.Phase())
	assert.Equal(t, int64(1020), g.Balance("a"))
	assert.Equal(t, int64(980), g.Balance("b"))
	assert.Equal(t, game.ActStartRound, g.NextAction().Kind)
}

func TestLeaveRemovesGame(t *testing.T) {
	s := newTestServer(t, Config{})
	sub := s.Subscribe(64)
	require.NoError(t, s.Join("g1", "a", "Alice"))
	require.NoError(t, s.Join("g1", "b", "Bob"))

	require.NoError(t, s.Leave("g1", "a"))
	assert.Equal(t, []string{"g1"}, s.Games())
	assert.ErrorIs(t, s.Leave("g1", "a"), ErrNotSeated)

	require.NoError(t, s.Leave("g1", "b"))
	assert.Empty(t, s.Games())

	require.Eventually(t, func() bool {
		for {
			select {
			case ev := <-sub.C():
				if ev.Type == GameEventTypeGameRemoved && ev.GameID == "g1" {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond)
}

func TestAutoAdvance(t *testing.T) {
	s := newTestServer(t, Config{AutoAdvanceDelay: 5 * time.Millisecond})
	headsUp(t, s)

	require.NoError(t, s.Call("g1", "b"))
	require.NoError(t, s.Check("g1", "a"))
	require.Eventually(t, func() bool { return phase(t, s) == game.PhaseFlop },
		time.Second, 5*time.Millisecond)

	// Flop, turn and river are checked down; the showdown settles itself.
	for _, want := range []game.Phase{game.PhaseTurn, game.PhaseRiver, game.PhaseNoRound} {
		require.NoError(t, s.Check("g1", "b"))
		require.NoError(t, s.Check("g1", "a"))
		require.Eventually(t, func() bool { return phase(t, s) == want },
			time.Second, 5*time.Millisecond)
	}

	g, _ := s.Registry().Get("g1")
	assert.Equal(t, int64(1000), g.Balance("a"))
	assert.Equal(t, int64(1000), g.Balance("b"))
}

func TestAutoStart(t *testing.T) {
	s := newTestServer(t, Config{AutoStartDelay: 5 * time.Millisecond})
	require.NoError(t, s.Join("g1", "a", "Alice"))
	require.NoError(t, s.Join("g1", "b", "Bob"))
	require.Eventually(t, func() bool { return phase(t, s) == game.PhasePreFlop },
		time.Second, 5*time.Millisecond)
}

func TestStaleAutoAdvanceIsNoop(t *testing.T) {
	s := newTestServer(t, Config{})
	headsUp(t, s)
	g, _ := s.Registry().Get("g1")
	before := len(g.Events())

	s.autoAdvance("g1", game.ActDealTurn)
	s.autoAdvance("g1", game.ActFinish)
	s.autoAdvance("gone", game.ActDealFlop)
	assert.Len(t, g.Events(), before)

	require.NoError(t, s.Leave("g1", "a"))
	require.NoError(t, s.Leave("g1", "b"))
	s.autoAdvance("g1", game.ActStartRound)
	assert.Empty(t, s.Games())
}

func TestNotificationsInOrder(t *testing.T) {
	s := newTestServer(t, Config{})

	var mu sync.Mutex
	var kinds []events.Kind
	s.AddHandler(NotificationHandlerFunc(func(ev *GameEvent) {
		if ev.Type != GameEventTypeAppended {
			return
		}
		mu.Lock()
		kinds = append(kinds, ev.Event.Kind())
		mu.Unlock()
	}))
	s.AddHandler(NotificationHandlerFunc(func(*GameEvent) { panic("boom") }))

	require.NoError(t, s.Join("g1", "a", "Alice"))
	require.NoError(t, s.Join("g1", "b", "Bob"))

	want := []events.Kind{
		events.KindPlayerNamed, events.KindSeatTaken, events.KindPlayerGivenChips,
		events.KindPlayerNamed, events.KindSeatTaken, events.KindPlayerGivenChips,
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(kinds) == len(want)
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, want, kinds)
	mu.Unlock()
}

func TestPersistAndLoadAll(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewFileStore(dir, store.Config{})
	require.NoError(t, err)
	defer st.Close()

	s1 := newTestServer(t, Config{Store: st})
	headsUp(t, s1)
	require.NoError(t, s1.Call("g1", "b"))
	want, err := s1.State("g1")
	require.NoError(t, err)
	g1, _ := s1.Registry().Get("g1")
	history := g1.Events()
	s1.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.log"), []byte(`{"type":`), 0o600))

	s2 := newTestServer(t, Config{Store: st})
	err = s2.LoadAll()
	assert.ErrorIs(t, err, store.ErrCorruptLog)
	assert.Equal(t, []string{"g1"}, s2.Games())

	got, err := s2.State("g1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// The restored game keeps appending to the same log.
	require.NoError(t, s2.Check("g1", "a"))
	persisted, err := st.Load("g1")
	require.NoError(t, err)
	assert.Len(t, persisted, len(history)+1)
}

func TestJoinContinuesPersistedGame(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir(), store.Config{})
	require.NoError(t, err)
	defer st.Close()

	s := newTestServer(t, Config{Store: st})
	require.NoError(t, s.Join("g1", "a", "Alice"))
	require.NoError(t, s.Leave("g1", "a"))
	assert.Empty(t, s.Games())

	// a rejoins with the stake it left with; no second stake is granted.
	require.NoError(t, s.Join("g1", "a", "Alice"))
	g, _ := s.Registry().Get("g1")
	assert.Equal(t, int64(1000), g.Balance("a"))

	persisted, err := st.Load("g1")
	require.NoError(t, err)
	assert.Equal(t, g.Events(), persisted)
}
