package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/poker"
)

// FormatCards is a helper function for displaying cards
func FormatCards(cards []poker.Card) string {
	if len(cards) == 0 {
		return "None"
	}

	var b strings.Builder
	for i, card := range cards {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(card.ShortCode())
	}
	return b.String()
}

// EnsureDataDirExists creates the datadir and necessary subdirectories if they don't exist
func EnsureDataDirExists(datadir string) error {
	if err := EnsureDir(datadir); err != nil {
		return err
	}
	return EnsureDir(filepath.Join(datadir, "logs"))
}

// EnsureDir creates dir and its parents with owner-only permissions.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", dir, err)
	}
	return nil
}

// DescribeEvent renders an event as a short human readable line.
func DescribeEvent(e events.Event) string {
	switch e := e.(type) {
	case events.PlayerNamed:
		return fmt.Sprintf("%s is named %s", e.PlayerID, e.Name)
	case events.SeatTaken:
		return fmt.Sprintf("%s sits at seat %d", e.PlayerID, e.Seat)
	case events.SeatEmptied:
		return fmt.Sprintf("seat %d emptied", e.Seat)
	case events.PlayerGivenChips:
		return fmt.Sprintf("%s receives %d chips", e.PlayerID, e.Amount)
	case events.PlayerBankrupted:
		return e.PlayerID + " is bankrupt"
	case events.RoundStarted:
		return fmt.Sprintf("round started, dealer %s, blinds %s/%s",
			e.DealerID, e.SmallBlindID, e.BigBlindID)
	case events.HandDealt:
		return fmt.Sprintf("%s is dealt %s", e.PlayerID, FormatCards(e.Cards))
	case events.BetPlaced:
		if e.Amount == 0 {
			return e.PlayerID + " checks"
		}
		return fmt.Sprintf("%s bets %d", e.PlayerID, e.Amount)
	case events.HandFolded:
		return e.PlayerID + " folds"
	case events.BettingRoundClosed:
		return "betting closed"
	case events.FlopDealt:
		return "flop " + FormatCards(e.Cards)
	case events.TurnDealt:
		return "turn " + e.Card.ShortCode()
	case events.RiverDealt:
		return "river " + e.Card.ShortCode()
	case events.HandWon:
		return e.PlayerID + " wins the hand"
	}
	return string(e.Kind())
}
