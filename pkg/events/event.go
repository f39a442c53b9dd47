// Package events defines the immutable facts recorded in a game's event log.
//
// Every event belongs to exactly one game. Its position in the log is its
// sequence number; events carry no other ordering information.
package events

import "github.com/vctt94/pokerledger/pkg/poker"

// Kind identifies the type of an event. The string value is the name used in
// persisted records.
type Kind string

const (
	KindPlayerNamed        Kind = "PlayerNamed"
	KindSeatTaken          Kind = "SeatTaken"
	KindSeatEmptied        Kind = "SeatEmptied"
	KindPlayerGivenChips   Kind = "PlayerGivenChips"
	KindRoundStarted       Kind = "RoundStarted"
	KindHandDealt          Kind = "HandDealt"
	KindHandFolded         Kind = "HandFolded"
	KindBetPlaced          Kind = "BetPlaced"
	KindBettingRoundClosed Kind = "BettingRoundClosed"
	KindFlopDealt          Kind = "FlopDealt"
	KindTurnDealt          Kind = "TurnDealt"
	KindRiverDealt         Kind = "RiverDealt"
	KindHandWon            Kind = "HandWon"
	KindPlayerBankrupted   Kind = "PlayerBankrupted"
)

// Kinds lists every event kind.
var Kinds = []Kind{
	KindPlayerNamed, KindSeatTaken, KindSeatEmptied, KindPlayerGivenChips,
	KindRoundStarted, KindHandDealt, KindHandFolded, KindBetPlaced,
	KindBettingRoundClosed, KindFlopDealt, KindTurnDealt, KindRiverDealt,
	KindHandWon, KindPlayerBankrupted,
}

// Event is one immutable fact. The set of implementations is closed; consumers
// dispatch on the concrete type with a type switch.
type Event interface {
	Kind() Kind
	Game() string
	sealed()
}

type PlayerNamed struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type SeatTaken struct {
	GameID   string `json:"gameId"`
	Seat     int    `json:"seat"`
	PlayerID string `json:"playerId"`
}

type SeatEmptied struct {
	GameID string `json:"gameId"`
	Seat   int    `json:"seat"`
}

// PlayerGivenChips credits chips, either the join stake or winnings.
type PlayerGivenChips struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Amount   int64  `json:"amount"`
}

// RoundStarted begins a new hand and resets betting and community state.
type RoundStarted struct {
	GameID       string `json:"gameId"`
	DeckSeed     string `json:"deckSeed"`
	DealerID     string `json:"dealerId"`
	SmallBlindID string `json:"smallBlindId"`
	BigBlindID   string `json:"bigBlindId"`
}

type HandDealt struct {
	GameID   string       `json:"gameId"`
	PlayerID string       `json:"playerId"`
	Cards    []poker.Card `json:"cards"`
}

type HandFolded struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

// BetPlaced commits chips for the current betting round. Zero is a check.
type BetPlaced struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
	Amount   int64  `json:"amount"`
}

// BettingRoundClosed ends a street's betting and resets per-street bets.
type BettingRoundClosed struct {
	GameID string `json:"gameId"`
}

type FlopDealt struct {
	GameID string       `json:"gameId"`
	Cards  []poker.Card `json:"cards"`
}

type TurnDealt struct {
	GameID string     `json:"gameId"`
	Card   poker.Card `json:"card"`
}

type RiverDealt struct {
	GameID string     `json:"gameId"`
	Card   poker.Card `json:"card"`
}

type HandWon struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type PlayerBankrupted struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

func (PlayerNamed) Kind() Kind        { return KindPlayerNamed }
func (SeatTaken) Kind() Kind          { return KindSeatTaken }
func (SeatEmptied) Kind() Kind        { return KindSeatEmptied }
func (PlayerGivenChips) Kind() Kind   { return KindPlayerGivenChips }
func (RoundStarted) Kind() Kind       { return KindRoundStarted }
func (HandDealt) Kind() Kind          { return KindHandDealt }
func (HandFolded) Kind() Kind         { return KindHandFolded }
func (BetPlaced) Kind() Kind          { return KindBetPlaced }
func (BettingRoundClosed) Kind() Kind { return KindBettingRoundClosed }
func (FlopDealt) Kind() Kind          { return KindFlopDealt }
func (TurnDealt) Kind() Kind          { return KindTurnDealt }
func (RiverDealt) Kind() Kind         { return KindRiverDealt }
func (HandWon) Kind() Kind            { return KindHandWon }
func (PlayerBankrupted) Kind() Kind   { return KindPlayerBankrupted }

func (e PlayerNamed) Game() string        { return e.GameID }
func (e SeatTaken) Game() string          { return e.GameID }
func (e SeatEmptied) Game() string        { return e.GameID }
func (e PlayerGivenChips) Game() string   { return e.GameID }
func (e RoundStarted) Game() string       { return e.GameID }
func (e HandDealt) Game() string          { return e.GameID }
func (e HandFolded) Game() string         { return e.GameID }
func (e BetPlaced) Game() string          { return e.GameID }
func (e BettingRoundClosed) Game() string { return e.GameID }
func (e FlopDealt) Game() string          { return e.GameID }
func (e TurnDealt) Game() string          { return e.GameID }
func (e RiverDealt) Game() string         { return e.GameID }
func (e HandWon) Game() string            { return e.GameID }
func (e PlayerBankrupted) Game() string   { return e.GameID }

func (PlayerNamed) sealed()        {}
func (SeatTaken) sealed()          {}
func (SeatEmptied) sealed()        {}
func (PlayerGivenChips) sealed()   {}
func (RoundStarted) sealed()       {}
func (HandDealt) sealed()          {}
func (HandFolded) sealed()         {}
func (BetPlaced) sealed()          {}
func (BettingRoundClosed) sealed() {}
func (FlopDealt) sealed()          {}
func (TurnDealt) sealed()          {}
func (RiverDealt) sealed()         {}
func (HandWon) sealed()            {}
func (PlayerBankrupted) sealed()   {}

// CardsConsumed returns how many cards e draws from the round's deck.
func CardsConsumed(e Event) int {
	switch ev := e.(type) {
	case HandDealt:
		return len(ev.Cards)
	case FlopDealt:
		return len(ev.Cards)
	case TurnDealt, RiverDealt:
		return 1
	}
	return 0
}
