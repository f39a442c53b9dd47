package game

import (
	"github.com/vctt94/pokerledger/pkg/poker"
)

// Phase is the round phase derived from the event log.
type Phase int

const (
	PhaseNoRound Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
)

func (p Phase) String() string {
	switch p {
	case PhaseNoRound:
		return "NO_ROUND"
	case PhasePreFlop:
		return "PRE_FLOP"
	case PhaseFlop:
		return "FLOP"
	case PhaseTurn:
		return "TURN"
	case PhaseRiver:
		return "RIVER"
	case PhaseShowdown:
		return "SHOWDOWN"
	}
	return "UNKNOWN"
}

// ActionKind classifies what should happen next at the table.
type ActionKind int

const (
	ActNone ActionKind = iota
	ActPlayer
	ActDealFlop
	ActDealTurn
	ActDealRiver
	ActFinish
	ActStartRound
)

func (a ActionKind) String() string {
	switch a {
	case ActPlayer:
		return "player"
	case ActDealFlop:
		return "deal-flop"
	case ActDealTurn:
		return "deal-turn"
	case ActDealRiver:
		return "deal-river"
	case ActFinish:
		return "finish"
	case ActStartRound:
		return "start-round"
	}
	return "none"
}

// NextAction is the result of the next-action classifier. PlayerID is set
// only for ActPlayer.
type NextAction struct {
	Kind     ActionKind
	PlayerID string
}

func phaseOf(r RoundView) Phase {
	if !r.InProgress() {
		return PhaseNoRound
	}
	switch len(r.Community) {
	case 0:
		return PhasePreFlop
	case 3:
		return PhaseFlop
	case 4:
		return PhaseTurn
	}
	if r.StreetClosed {
		return PhaseShowdown
	}
	return PhaseRiver
}

func (g *Game) phase() Phase { return phaseOf(g.round()) }

// Phase returns the current round phase.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase()
}

// NextToAct returns the player owed an action on the current street.
func (g *Game) NextToAct() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nextToAct()
}

func (g *Game) nextToAct() (string, bool) {
	switch g.phase() {
	case PhasePreFlop, PhaseFlop, PhaseTurn, PhaseRiver:
	default:
		return "", false
	}

	seats, chips, round := g.seats(), g.chips(), g.round()
	var actors []poker.Actor
	for _, p := range g.liveHands() {
		seat, _ := seats.SeatOf(p)
		actors = append(actors, poker.Actor{
			PlayerID: p,
			Seat:     seat,
			Chips:    chips.Balance(p),
			Bet:      round.StreetBets.Get(p),
			Acted:    round.Acted(p),
		})
	}

	last := seats.Button()
	if round.LastActor != "" {
		last = round.LastActorSeat
	}
	return poker.NextToAct(last, actors)
}

// NextAction classifies what the table is waiting for.
func (g *Game) NextAction() NextAction {
	g.mu.Lock()
	defer g.mu.Unlock()

	phase := g.phase()
	switch phase {
	case PhaseNoRound:
		if len(g.activePlayers()) >= 2 {
			return NextAction{Kind: ActStartRound}
		}
		return NextAction{Kind: ActNone}
	case PhaseShowdown:
		return NextAction{Kind: ActFinish}
	}

	if p, ok := g.nextToAct(); ok {
		return NextAction{Kind: ActPlayer, PlayerID: p}
	}
	switch phase {
	case PhasePreFlop:
		return NextAction{Kind: ActDealFlop}
	case PhaseFlop:
		return NextAction{Kind: ActDealTurn}
	case PhaseTurn:
		return NextAction{Kind: ActDealRiver}
	}
	return NextAction{Kind: ActFinish}
}

func (g *Game) pots() []poker.Pot {
	round := g.round()
	live := make(map[string]bool)
	for _, p := range g.liveHands() {
		live[p] = true
	}
	return poker.BuildPots(round.RoundBets, func(id string) bool { return live[id] })
}

// Pots returns the side pots of the current round, smallest layer first.
func (g *Game) Pots() []poker.Pot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pots()
}

// PotTotal returns every chip wagered in the current round.
func (g *Game) PotTotal() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round().RoundBets.Total()
}

// AmountToCall returns how much playerID must add to match the highest bet
// on the current street, capped at the player's balance.
func (g *Game) AmountToCall(playerID string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.amountToCall(playerID)
}

func (g *Game) amountToCall(playerID string) int64 {
	round := g.round()
	owed := round.StreetBets.Max(g.liveHands()) - round.StreetBets.Get(playerID)
	if owed < 0 {
		return 0
	}
	if bal := g.chips().Balance(playerID); owed > bal {
		return bal
	}
	return owed
}

// Balance returns playerID's chips, zero for unknown players.
func (g *Game) Balance(playerID string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chips().Balance(playerID)
}

// Name returns playerID's display name.
func (g *Game) Name(playerID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players().Name(playerID)
}

// SeatOf returns playerID's seat.
func (g *Game) SeatOf(playerID string) (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seats().SeatOf(playerID)
}

// SeatedCount returns the number of occupied seats.
func (g *Game) SeatedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seats().Count()
}

// ActivePlayers returns seated, non-bankrupt players in seat order.
func (g *Game) ActivePlayers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.activePlayers()
}

// LiveHands returns the active players still holding an unfolded hand.
func (g *Game) LiveHands() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.liveHands()
}

// Hand returns playerID's hand in the current round. Hands of players who
// are no longer active are not reported.
func (g *Game) Hand(playerID string) (Hand, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hand(playerID)
}

func (g *Game) hand(playerID string) (Hand, bool) {
	round := g.round()
	if !round.Started {
		return Hand{}, false
	}
	for _, p := range g.activePlayers() {
		if p == playerID {
			return round.Hand(p)
		}
	}
	return Hand{}, false
}

// Community returns the board of the current round.
func (g *Game) Community() []poker.Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]poker.Card(nil), g.round().Community...)
}

// Round returns the current round's read model.
func (g *Game) Round() RoundView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.round()
}

// SeatState is one occupied seat in a TableState.
type SeatState struct {
	Seat     int
	PlayerID string
	Name     string
	Chips    int64
	Bankrupt bool
	Bet      int64 // on the current street
	Hand     []poker.Card
	Folded   bool
	InHand   bool
}

// TableState is a consistent view of the whole table taken under one lock.
type TableState struct {
	GameID       string
	Position     int // events folded into this view
	Phase        Phase
	Seats        []SeatState
	DealerID     string
	SmallBlindID string
	BigBlindID   string
	Community    []poker.Card
	Pots         []poker.Pot
	PotTotal     int64
	NextToAct    string
}

// State returns the full projected table state.
func (g *Game) State() TableState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) state() TableState {
	seats, chips, round, names := g.seats(), g.chips(), g.round(), g.players()
	st := TableState{
		GameID:    g.id,
		Position:  g.elog.Len(),
		Phase:     phaseOf(round),
		Community: append([]poker.Card(nil), round.Community...),
	}
	if round.InProgress() {
		st.DealerID = round.DealerID
		st.SmallBlindID = round.SmallBlindID
		st.BigBlindID = round.BigBlindID
		st.Pots = g.pots()
		st.PotTotal = round.RoundBets.Total()
	}
	for _, p := range seats.Occupied() {
		seat, _ := seats.SeatOf(p)
		ss := SeatState{
			Seat:     seat,
			PlayerID: p,
			Name:     names.Name(p),
			Chips:    chips.Balance(p),
			Bankrupt: chips.IsBankrupt(p),
			Bet:      round.StreetBets.Get(p),
		}
		if h, ok := g.hand(p); ok {
			ss.Hand = h.Cards
			ss.Folded = h.HasFolded
			ss.InHand = round.InProgress()
		}
		st.Seats = append(st.Seats, ss)
	}
	st.NextToAct, _ = g.nextToAct()
	return st
}
