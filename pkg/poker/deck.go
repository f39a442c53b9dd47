package poker

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

// ErrInvalidCard is returned when a card string cannot be parsed.
var ErrInvalidCard = errors.New("invalid card")

// Suit represents a card suit
type Suit string

const (
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"
)

// Value represents a card denomination
type Value string

const (
	Two   Value = "2"
	Three Value = "3"
	Four  Value = "4"
	Five  Value = "5"
	Six   Value = "6"
	Seven Value = "7"
	Eight Value = "8"
	Nine  Value = "9"
	Ten   Value = "10"
	Jack  Value = "jack"
	Queen Value = "queen"
	King  Value = "king"
	Ace   Value = "ace"
)

var (
	allSuits  = []Suit{Clubs, Diamonds, Hearts, Spades}
	allValues = []Value{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
)

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Card represents a playing card
type Card struct {
	suit  Suit
	value Value
}

// NewCard creates a card from a suit and value.
func NewCard(suit Suit, value Value) Card {
	return Card{suit: suit, value: value}
}

// ParseCard parses the "<denomination>_of_<suit>" encoding.
func ParseCard(s string) (Card, error) {
	den, suit, ok := strings.Cut(s, "_of_")
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	c := Card{suit: Suit(suit), value: Value(den)}
	if !c.Valid() {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	return c, nil
}

// MustParseCard is like ParseCard but panics on error. Intended for tests and
// constant tables.
func MustParseCard(s string) Card {
	c, err := ParseCard(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Valid reports whether the card is one of the 52 standard cards.
func (c Card) Valid() bool {
	return suitIndex(c.suit) >= 0 && valueIndex(c.value) >= 0
}

// String returns the "<denomination>_of_<suit>" encoding of the card.
func (c Card) String() string {
	return string(c.value) + "_of_" + string(c.suit)
}

// GetSuit returns the card's suit
func (c Card) GetSuit() Suit {
	return c.suit
}

// GetValue returns the card's value
func (c Card) GetValue() Value {
	return c.value
}

// ShortCode returns the rank letter/digit plus suit letter encoding used by
// hand-ranking libraries, e.g. "Th" or "As".
func (c Card) ShortCode() string {
	const ranks = "23456789TJQKA"
	vi, si := valueIndex(c.value), suitIndex(c.suit)
	if vi < 0 || si < 0 {
		return ""
	}
	return string([]byte{ranks[vi], string(c.suit)[0]})
}

// MarshalJSON implements json.Marshaler interface for Card
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler interface for Card
func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCard(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func suitIndex(s Suit) int {
	for i, v := range allSuits {
		if v == s {
			return i
		}
	}
	return -1
}

func valueIndex(v Value) int {
	for i, x := range allValues {
		if x == v {
			return i
		}
	}
	return -1
}

// Deck represents a deck of cards
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a new shuffled deck with the given random number generator
func NewDeck(rng *rand.Rand) *Deck {
	deck := &Deck{
		cards: make([]Card, 0, DeckSize),
		rng:   rng,
	}
	for _, suit := range allSuits {
		for _, value := range allValues {
			deck.cards = append(deck.cards, Card{suit: suit, value: value})
		}
	}
	deck.Shuffle()
	return deck
}

// NewSeededDeck returns the deterministic permutation of the 52 cards for the
// given round seed. The same seed always yields the same order.
func NewSeededDeck(seed string) *Deck {
	return NewDeck(rand.New(rand.NewSource(seedValue(seed))))
}

// RemainingCards re-derives the undealt part of a seeded deck after consumed
// cards have been drawn from the top.
func RemainingCards(seed string, consumed int) []Card {
	d := NewSeededDeck(seed)
	if consumed > len(d.cards) {
		consumed = len(d.cards)
	}
	if consumed < 0 {
		consumed = 0
	}
	out := make([]Card, len(d.cards)-consumed)
	copy(out, d.cards[consumed:])
	return out
}

func seedValue(seed string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64())
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DrawN draws n cards, or fewer if the deck runs out.
func (d *Deck) DrawN(n int) []Card {
	out := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		c, ok := d.Draw()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

// Size returns the number of cards remaining in the deck
func (d *Deck) Size() int {
	return len(d.cards)
}

// GetCards returns a copy of the remaining cards in the deck
func (d *Deck) GetCards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
