// Package game implements the event-sourced Hold'em aggregate: command
// handlers that validate and append events, and the projections that derive
// table state from them.
package game

import (
	"sync"

	"github.com/decred/slog"
	"github.com/google/uuid"

	"github.com/vctt94/pokerledger/pkg/eventlog"
	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/poker"
)

// Table constants. They are fixed for every game.
const (
	NumSeats      = 8
	SmallBlind    = 20
	BigBlind      = 40
	StartingStake = 1000
)

// GameConfig holds what a game needs besides its event history.
type GameConfig struct {
	ID     string
	Log    slog.Logger
	Ranker poker.Ranker

	// EventLog receives the event log's own messages, such as sink
	// failures. Nil means Log.
	EventLog slog.Logger

	// NewSeed returns the deck seed used when StartNewRound gets none.
	NewSeed func() string
}

// Game is the aggregate owning one game's event log. Every exported method
// takes the game's lock, so commands and queries on one game never overlap.
type Game struct {
	mu      sync.Mutex
	id      string
	log     slog.Logger
	elog    *eventlog.Log
	ranker  poker.Ranker
	newSeed func() string
}

// NewGame creates a game with an empty log.
func NewGame(cfg GameConfig) *Game {
	return restore(cfg, nil)
}

// RestoreGame rebuilds a game from a persisted history. No sink sees the
// replayed events.
func RestoreGame(cfg GameConfig, history []events.Event) *Game {
	return restore(cfg, history)
}

func restore(cfg GameConfig, history []events.Event) *Game {
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}
	ranker := cfg.Ranker
	if ranker == nil {
		ranker = poker.ChehsunliuRanker{}
	}
	elogLog := cfg.EventLog
	if elogLog == nil {
		elogLog = log
	}
	newSeed := cfg.NewSeed
	if newSeed == nil {
		newSeed = uuid.NewString
	}
	return &Game{
		id:      cfg.ID,
		log:     log,
		elog:    eventlog.Replay(cfg.ID, elogLog, history),
		ranker:  ranker,
		newSeed: newSeed,
	}
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// AddSink registers s for every event appended from now on.
func (g *Game) AddSink(s eventlog.Sink) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.elog.AddSink(s)
}

// Events returns a copy of the game's history.
func (g *Game) Events() []events.Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.elog.Events()
}

// Projections. Callers hold g.mu.

func (g *Game) seats() SeatsView {
	return eventlog.Project(g.elog, projSeats, foldSeats, newSeatsView())
}

func (g *Game) chips() ChipsView {
	return eventlog.Project(g.elog, projChips, foldChips, newChipsView())
}

func (g *Game) round() RoundView {
	return eventlog.Project(g.elog, projRound, foldRound, RoundView{})
}

func (g *Game) deck() DeckView {
	return eventlog.Project(g.elog, projDeck, foldDeck, DeckView{})
}

func (g *Game) players() PlayersView {
	return eventlog.Project(g.elog, projPlayers, foldPlayers, PlayersView{})
}

// activePlayers returns seated, non-bankrupt players in seat order.
func (g *Game) activePlayers() []string {
	chips := g.chips()
	var out []string
	for _, p := range g.seats().Occupied() {
		if !chips.IsBankrupt(p) {
			out = append(out, p)
		}
	}
	return out
}

// liveHands returns the unfolded hands of active players in seat order.
func (g *Game) liveHands() []string {
	round := g.round()
	var out []string
	for _, p := range g.activePlayers() {
		if h, ok := round.Hand(p); ok && !h.HasFolded {
			out = append(out, p)
		}
	}
	return out
}

// AddPlayer seats playerID at the lowest free seat. A first-time player, or
// one who went bankrupt, receives the starting stake.
func (g *Game) AddPlayer(playerID, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seats := g.seats()
	if _, ok := seats.SeatOf(playerID); ok {
		return
	}
	g.elog.Append(events.PlayerNamed{GameID: g.id, PlayerID: playerID, Name: name})

	seat, ok := seats.FreeSeat()
	if !ok {
		g.log.Warnf("game %s: table full, %s (%s) not seated", g.id, playerID, name)
		return
	}
	g.elog.Append(events.SeatTaken{GameID: g.id, Seat: seat, PlayerID: playerID})
	if g.chips().Balance(playerID) == 0 {
		g.elog.Append(events.PlayerGivenChips{GameID: g.id, PlayerID: playerID, Amount: StartingStake})
	}
	g.log.Debugf("game %s: %s took seat %d", g.id, playerID, seat)
}

// RemovePlayer empties playerID's seat. A player leaving mid-hand forfeits;
// if only one unfolded hand remains it wins the pot.
func (g *Game) RemovePlayer(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seat, ok := g.seats().SeatOf(playerID)
	if !ok {
		return
	}
	g.elog.Append(events.SeatEmptied{GameID: g.id, Seat: seat})
	g.log.Debugf("game %s: %s left seat %d", g.id, playerID, seat)
	g.checkDefaultWin()
}

// StartNewRound assigns the button and blinds, deals two cards to every
// active player and posts the blinds. An empty seed is replaced by a fresh
// one. It does nothing while a round is in progress or with fewer than two
// active players.
func (g *Game) StartNewRound(seed string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.round().InProgress() {
		g.log.Debugf("game %s: round already in progress", g.id)
		return
	}
	active := g.activePlayers()
	if len(active) < 2 {
		g.log.Debugf("game %s: not enough active players (%d) to start a round", g.id, len(active))
		return
	}
	if seed == "" {
		seed = g.newSeed()
	}

	seats := g.seats()
	dealer := nextActive(seats, active, seats.Button())
	dealerSeat, _ := seats.SeatOf(dealer)
	sb := nextActive(seats, active, dealerSeat)
	sbSeat, _ := seats.SeatOf(sb)
	bb := nextActive(seats, active, sbSeat)

	g.elog.Append(events.RoundStarted{
		GameID:       g.id,
		DeckSeed:     seed,
		DealerID:     dealer,
		SmallBlindID: sb,
		BigBlindID:   bb,
	})
	g.log.Infof("game %s: round started, dealer=%s sb=%s bb=%s", g.id, dealer, sb, bb)

	for _, p := range clockwiseFrom(seats, active, dealerSeat) {
		g.elog.Append(events.HandDealt{GameID: g.id, PlayerID: p, Cards: g.draw(2)})
	}

	g.placeBet(sb, SmallBlind)
	g.placeBet(bb, BigBlind)
}

// nextActive returns the first active player seated clockwise after seat.
func nextActive(seats SeatsView, active []string, seat int) string {
	return clockwiseFrom(seats, active, seat)[0]
}

// clockwiseFrom orders active players clockwise starting after seat.
func clockwiseFrom(seats SeatsView, active []string, seat int) []string {
	out := make([]string, 0, len(active))
	start := 0
	for i, p := range active {
		if s, _ := seats.SeatOf(p); s > seat {
			start = i
			break
		}
	}
	for i := range active {
		out = append(out, active[(start+i)%len(active)])
	}
	return out
}

// draw returns the next n cards of the round's deck.
func (g *Game) draw(n int) []poker.Card {
	remaining := g.deck().Remaining()
	if n > len(remaining) {
		n = len(remaining)
	}
	out := make([]poker.Card, n)
	copy(out, remaining[:n])
	return out
}

// PlaceBet commits amount chips for playerID, clamped to the player's balance.
// Zero is a check. Turn order and minimum amounts are the caller's concern.
func (g *Game) PlaceBet(playerID string, amount int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.placeBet(playerID, amount)
}

func (g *Game) placeBet(playerID string, amount int64) {
	round := g.round()
	if !round.InProgress() {
		return
	}
	if h, ok := round.Hand(playerID); !ok || h.HasFolded {
		return
	}
	if amount < 0 {
		amount = 0
	}
	if bal := g.chips().Balance(playerID); amount > bal {
		amount = bal
	}
	g.elog.Append(events.BetPlaced{GameID: g.id, PlayerID: playerID, Amount: amount})
}

// FoldHand folds playerID's hand. When one unfolded hand remains it wins the
// pot by default.
func (g *Game) FoldHand(playerID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	round := g.round()
	if !round.InProgress() {
		return
	}
	if h, ok := round.Hand(playerID); !ok || h.HasFolded {
		return
	}
	g.elog.Append(events.HandFolded{GameID: g.id, PlayerID: playerID})
	g.checkDefaultWin()
}

// DealFlop closes pre-flop betting and deals three community cards.
func (g *Game) DealFlop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase() != PhasePreFlop {
		return
	}
	g.elog.Append(events.BettingRoundClosed{GameID: g.id})
	g.elog.Append(events.FlopDealt{GameID: g.id, Cards: g.draw(3)})
}

// DealTurn closes flop betting and deals the fourth community card.
func (g *Game) DealTurn() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase() != PhaseFlop {
		return
	}
	g.elog.Append(events.BettingRoundClosed{GameID: g.id})
	g.elog.Append(events.TurnDealt{GameID: g.id, Card: g.draw(1)[0]})
}

// DealRiver closes turn betting and deals the last community card.
func (g *Game) DealRiver() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase() != PhaseTurn {
		return
	}
	g.elog.Append(events.BettingRoundClosed{GameID: g.id})
	g.elog.Append(events.RiverDealt{GameID: g.id, Card: g.draw(1)[0]})
}

// Finish closes river betting and settles every pot at showdown. If the
// ranking oracle fails the round stays in showdown and Finish may be retried.
func (g *Game) Finish() {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.phase() {
	case PhaseRiver:
		g.elog.Append(events.BettingRoundClosed{GameID: g.id})
	case PhaseShowdown:
	default:
		return
	}
	if err := g.showdown(); err != nil {
		g.log.Errorf("game %s: showdown not resolved: %v", g.id, err)
	}
}

// checkDefaultWin awards the pot when exactly one unfolded hand is left in a
// round in progress.
func (g *Game) checkDefaultWin() {
	if !g.round().InProgress() {
		return
	}
	live := g.liveHands()
	if len(live) != 1 {
		return
	}
	winner := live[0]
	pot := g.round().RoundBets.Total()
	g.elog.Append(
		events.HandWon{GameID: g.id, PlayerID: winner},
		events.PlayerGivenChips{GameID: g.id, PlayerID: winner, Amount: pot},
	)
	g.log.Infof("game %s: %s wins %d by default", g.id, winner, pot)
	g.markBankruptcies()
}

// markBankruptcies records a bankruptcy for each seated player left with no
// chips.
func (g *Game) markBankruptcies() {
	chips := g.chips()
	for _, p := range g.seats().Occupied() {
		if chips.Balance(p) == 0 && !chips.IsBankrupt(p) {
			g.elog.Append(events.PlayerBankrupted{GameID: g.id, PlayerID: p})
			g.log.Infof("game %s: %s is bankrupt", g.id, p)
		}
	}
}
