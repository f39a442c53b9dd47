package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokerledger/pkg/poker"
)

func TestMarshalRecordShape(t *testing.T) {
	data, err := Marshal(SeatTaken{GameID: "g1", Seat: 0, PlayerID: "p1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"SeatTaken","event":{"gameId":"g1","seat":0,"playerId":"p1"}}`, string(data))

	data, err = Marshal(FlopDealt{GameID: "g1", Cards: []poker.Card{
		poker.MustParseCard("10_of_hearts"),
		poker.MustParseCard("ace_of_spades"),
		poker.MustParseCard("2_of_clubs"),
	}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"FlopDealt","event":{"gameId":"g1","cards":["10_of_hearts","ace_of_spades","2_of_clubs"]}}`,
		string(data))
}

func TestUnmarshalEveryKind(t *testing.T) {
	card := poker.MustParseCard("queen_of_diamonds")
	all := []Event{
		PlayerNamed{GameID: "g", PlayerID: "p", Name: "Pat"},
		SeatTaken{GameID: "g", Seat: 3, PlayerID: "p"},
		SeatEmptied{GameID: "g", Seat: 3},
		PlayerGivenChips{GameID: "g", PlayerID: "p", Amount: 1000},
		RoundStarted{GameID: "g", DeckSeed: "s", DealerID: "a", SmallBlindID: "b", BigBlindID: "c"},
		HandDealt{GameID: "g", PlayerID: "p", Cards: []poker.Card{card, poker.MustParseCard("2_of_spades")}},
		HandFolded{GameID: "g", PlayerID: "p"},
		BetPlaced{GameID: "g", PlayerID: "p", Amount: 40},
		BettingRoundClosed{GameID: "g"},
		FlopDealt{GameID: "g", Cards: []poker.Card{card, card, card}},
		TurnDealt{GameID: "g", Card: card},
		RiverDealt{GameID: "g", Card: card},
		HandWon{GameID: "g", PlayerID: "p"},
		PlayerBankrupted{GameID: "g", PlayerID: "p"},
	}
	require.Len(t, all, len(Kinds))

	for _, e := range all {
		data, err := Marshal(e)
		require.NoError(t, err)
		back, err := Unmarshal(data)
		require.NoError(t, err, e.Kind())
		assert.Equal(t, e, back)
		assert.Equal(t, "g", back.Game())
	}
}

func TestUnmarshalErrors(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"Nope","event":{}}`))
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = Unmarshal([]byte(`{"type":"TurnDealt","event":{"gameId":"g","card":"11_of_hearts"}}`))
	assert.ErrorIs(t, err, poker.ErrInvalidCard)

	_, err = Unmarshal([]byte(`{"type":"HandWon"}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}

func TestUnmarshalList(t *testing.T) {
	data := []byte(`[
{"type":"PlayerNamed","event":{"gameId":"g","playerId":"p","name":"Pat"}},
{"type":"SeatTaken","event":{"gameId":"g","seat":0,"playerId":"p"}}
]`)
	evs, err := UnmarshalList(data)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, KindSeatTaken, evs[1].Kind())

	_, err = UnmarshalList([]byte(`[{"type":"Bogus","event":{}}]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestCardsConsumed(t *testing.T) {
	card := poker.MustParseCard("2_of_hearts")
	assert.Equal(t, 2, CardsConsumed(HandDealt{Cards: []poker.Card{card, card}}))
	assert.Equal(t, 3, CardsConsumed(FlopDealt{Cards: []poker.Card{card, card, card}}))
	assert.Equal(t, 1, CardsConsumed(TurnDealt{Card: card}))
	assert.Equal(t, 1, CardsConsumed(RiverDealt{Card: card}))
	assert.Zero(t, CardsConsumed(BetPlaced{}))
}
