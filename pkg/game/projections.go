package game

import (
	"maps"

	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/poker"
)

// Snapshot identities. The event log partitions its cache by game id, so the
// names only need to be unique within one game.
const (
	projSeats   = "seats"
	projChips   = "chips"
	projRound   = "round"
	projDeck    = "deck"
	projPlayers = "players"
)

// SeatsView maps seats to players and back.
type SeatsView struct {
	bySeat   [NumSeats]string
	byPlayer map[string]int
	button   int // seat of the dealer at the latest RoundStarted, -1 before any
}

func newSeatsView() SeatsView {
	return SeatsView{byPlayer: map[string]int{}, button: -1}
}

func foldSeats(s SeatsView, e events.Event) SeatsView {
	switch ev := e.(type) {
	case events.SeatTaken:
		if ev.Seat < 0 || ev.Seat >= NumSeats || s.bySeat[ev.Seat] != "" {
			return s
		}
		if _, seated := s.byPlayer[ev.PlayerID]; seated {
			return s
		}
		next := s
		next.byPlayer = maps.Clone(s.byPlayer)
		next.bySeat[ev.Seat] = ev.PlayerID
		next.byPlayer[ev.PlayerID] = ev.Seat
		return next
	case events.SeatEmptied:
		if ev.Seat < 0 || ev.Seat >= NumSeats || s.bySeat[ev.Seat] == "" {
			return s
		}
		next := s
		next.byPlayer = maps.Clone(s.byPlayer)
		delete(next.byPlayer, s.bySeat[ev.Seat])
		next.bySeat[ev.Seat] = ""
		return next
	case events.RoundStarted:
		if seat, ok := s.byPlayer[ev.DealerID]; ok {
			next := s
			next.button = seat
			return next
		}
	}
	return s
}

// FreeSeat returns the lowest unoccupied seat.
func (s SeatsView) FreeSeat() (int, bool) {
	for i, p := range s.bySeat {
		if p == "" {
			return i, true
		}
	}
	return 0, false
}

// SeatOf returns the seat held by playerID.
func (s SeatsView) SeatOf(playerID string) (int, bool) {
	seat, ok := s.byPlayer[playerID]
	return seat, ok
}

// PlayerAt returns the player sitting at seat.
func (s SeatsView) PlayerAt(seat int) (string, bool) {
	if seat < 0 || seat >= NumSeats || s.bySeat[seat] == "" {
		return "", false
	}
	return s.bySeat[seat], true
}

// Occupied returns seated players in seat order.
func (s SeatsView) Occupied() []string {
	out := make([]string, 0, len(s.byPlayer))
	for _, p := range s.bySeat {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of occupied seats.
func (s SeatsView) Count() int { return len(s.byPlayer) }

// Button returns the dealer seat of the latest round, or -1.
func (s SeatsView) Button() int { return s.button }

// ChipsView holds chip balances and bankruptcy flags.
type ChipsView struct {
	balances map[string]int64
	bankrupt map[string]bool
}

func newChipsView() ChipsView {
	return ChipsView{balances: map[string]int64{}, bankrupt: map[string]bool{}}
}

func foldChips(c ChipsView, e events.Event) ChipsView {
	switch ev := e.(type) {
	case events.PlayerGivenChips:
		next := ChipsView{balances: maps.Clone(c.balances), bankrupt: c.bankrupt}
		next.balances[ev.PlayerID] += ev.Amount
		if c.bankrupt[ev.PlayerID] {
			next.bankrupt = maps.Clone(c.bankrupt)
			delete(next.bankrupt, ev.PlayerID)
		}
		return next
	case events.BetPlaced:
		next := ChipsView{balances: maps.Clone(c.balances), bankrupt: c.bankrupt}
		next.balances[ev.PlayerID] -= ev.Amount
		return next
	case events.PlayerBankrupted:
		next := ChipsView{balances: maps.Clone(c.balances), bankrupt: maps.Clone(c.bankrupt)}
		next.balances[ev.PlayerID] = 0
		next.bankrupt[ev.PlayerID] = true
		return next
	}
	return c
}

// Balance returns playerID's chips, zero for unknown players.
func (c ChipsView) Balance(playerID string) int64 { return c.balances[playerID] }

// IsBankrupt reports whether playerID went bankrupt and has not been given
// chips since.
func (c ChipsView) IsBankrupt(playerID string) bool { return c.bankrupt[playerID] }

// PlayersView maps player ids to display names.
type PlayersView struct {
	names map[string]string
}

func foldPlayers(p PlayersView, e events.Event) PlayersView {
	if ev, ok := e.(events.PlayerNamed); ok {
		next := PlayersView{names: maps.Clone(p.names)}
		if next.names == nil {
			next.names = map[string]string{}
		}
		next.names[ev.PlayerID] = ev.Name
		return next
	}
	return p
}

// Name returns the latest display name of playerID.
func (p PlayersView) Name(playerID string) string { return p.names[playerID] }

// DeckView tracks the round's deck seed and how many cards were drawn.
type DeckView struct {
	Seed     string
	Consumed int
}

func foldDeck(d DeckView, e events.Event) DeckView {
	if ev, ok := e.(events.RoundStarted); ok {
		return DeckView{Seed: ev.DeckSeed}
	}
	if n := events.CardsConsumed(e); n > 0 {
		return DeckView{Seed: d.Seed, Consumed: d.Consumed + n}
	}
	return d
}

// Remaining re-derives the undealt cards.
func (d DeckView) Remaining() []poker.Card {
	return poker.RemainingCards(d.Seed, d.Consumed)
}

// Hand is a player's hole cards for the current round.
type Hand struct {
	Cards     []poker.Card
	HasFolded bool
}

// RoundView is the state of the current hand.
type RoundView struct {
	Started bool
	Over    bool // a winner was declared since the latest RoundStarted

	DealerID     string
	SmallBlindID string
	BigBlindID   string

	Community []poker.Card

	// StreetBets resets on BettingRoundClosed and RoundStarted; RoundBets
	// only on RoundStarted.
	StreetBets poker.Bets
	RoundBets  poker.Bets

	// StreetClosed is set by BettingRoundClosed until the next street is
	// dealt.
	StreetClosed bool

	// LastActor and LastActorSeat name whoever moved the action last on
	// this street. The seat outlives the player leaving the table.
	LastActor     string
	LastActorSeat int

	// seatOf mirrors the seating so a departure can forfeit the hand.
	seatOf map[string]int

	hands        map[string]Hand
	acted        map[string]int
	sbForcedOpen bool
	bbForcedOpen bool
}

func foldRound(r RoundView, e events.Event) RoundView {
	switch ev := e.(type) {
	case events.RoundStarted:
		return RoundView{
			Started:      true,
			seatOf:       r.seatOf,
			DealerID:     ev.DealerID,
			SmallBlindID: ev.SmallBlindID,
			BigBlindID:   ev.BigBlindID,
			hands:        map[string]Hand{},
			acted:        map[string]int{},
			sbForcedOpen: true,
			bbForcedOpen: true,
		}
	case events.HandDealt:
		next := r
		next.hands = maps.Clone(r.hands)
		if next.hands == nil {
			next.hands = map[string]Hand{}
		}
		next.hands[ev.PlayerID] = Hand{Cards: ev.Cards}
		return next
	case events.SeatTaken:
		if _, seated := r.seatOf[ev.PlayerID]; seated {
			return r
		}
		for _, seat := range r.seatOf {
			if seat == ev.Seat {
				return r
			}
		}
		next := r
		next.seatOf = maps.Clone(r.seatOf)
		if next.seatOf == nil {
			next.seatOf = map[string]int{}
		}
		next.seatOf[ev.PlayerID] = ev.Seat
		return next
	case events.SeatEmptied:
		var leaving string
		for p, seat := range r.seatOf {
			if seat == ev.Seat {
				leaving = p
				break
			}
		}
		if leaving == "" {
			return r
		}
		next := r
		next.seatOf = maps.Clone(r.seatOf)
		delete(next.seatOf, leaving)
		// Leaving mid-hand forfeits it for the rest of the round.
		if h, ok := r.hands[leaving]; ok && r.InProgress() && !h.HasFolded {
			next.hands = maps.Clone(r.hands)
			h.HasFolded = true
			next.hands[leaving] = h
		}
		return next
	case events.HandFolded:
		h, ok := r.hands[ev.PlayerID]
		if !ok {
			return r
		}
		next := r
		next.hands = maps.Clone(r.hands)
		h.HasFolded = true
		next.hands[ev.PlayerID] = h
		next.setLastActor(ev.PlayerID)
		return next
	case events.BetPlaced:
		next := r
		next.StreetBets = r.StreetBets.Add(ev.PlayerID, ev.Amount)
		next.RoundBets = r.RoundBets.Add(ev.PlayerID, ev.Amount)
		next.setLastActor(ev.PlayerID)
		// Forced blinds move the action but are not voluntary actions.
		switch {
		case r.sbForcedOpen && ev.PlayerID == r.SmallBlindID:
			next.sbForcedOpen = false
		case r.bbForcedOpen && !r.sbForcedOpen && ev.PlayerID == r.BigBlindID:
			next.bbForcedOpen = false
		default:
			next.acted = maps.Clone(r.acted)
			if next.acted == nil {
				next.acted = map[string]int{}
			}
			next.acted[ev.PlayerID]++
		}
		return next
	case events.BettingRoundClosed:
		next := r
		next.StreetBets = nil
		next.acted = map[string]int{}
		next.LastActor = ""
		next.LastActorSeat = 0
		next.StreetClosed = true
		next.sbForcedOpen = false
		next.bbForcedOpen = false
		return next
	case events.FlopDealt:
		return r.withCommunity(ev.Cards...)
	case events.TurnDealt:
		return r.withCommunity(ev.Card)
	case events.RiverDealt:
		return r.withCommunity(ev.Card)
	case events.HandWon:
		next := r
		next.Over = true
		return next
	}
	return r
}

func (r *RoundView) setLastActor(playerID string) {
	r.LastActor = playerID
	if seat, ok := r.seatOf[playerID]; ok {
		r.LastActorSeat = seat
	}
}

func (r RoundView) withCommunity(cards ...poker.Card) RoundView {
	next := r
	next.Community = append(append(make([]poker.Card, 0, len(r.Community)+len(cards)), r.Community...), cards...)
	next.StreetClosed = false
	return next
}

// InProgress reports whether a round has started and has no winner yet.
func (r RoundView) InProgress() bool { return r.Started && !r.Over }

// Hand returns playerID's hand in the round.
func (r RoundView) Hand(playerID string) (Hand, bool) {
	h, ok := r.hands[playerID]
	return h, ok
}

// Acted returns how many voluntary actions playerID took this street.
func (r RoundView) Acted(playerID string) int { return r.acted[playerID] }
