// Package ui renders table state for terminals. It backs the command console
// and the log replay viewer.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vctt94/pokerledger/pkg/game"
	"github.com/vctt94/pokerledger/pkg/poker"
)

// FormatCard returns a short display form of a card, e.g. "10♥" or "K♠".
func FormatCard(c poker.Card) string {
	v := string(c.GetValue())
	switch c.GetValue() {
	case poker.Jack, poker.Queen, poker.King, poker.Ace:
		v = strings.ToUpper(v[:1])
	}
	return v + suitSymbol(c.GetSuit())
}

func suitSymbol(s poker.Suit) string {
	switch s {
	case poker.Spades:
		return "♠"
	case poker.Hearts:
		return "♥"
	case poker.Diamonds:
		return "♦"
	case poker.Clubs:
		return "♣"
	default:
		return "?"
	}
}

func isRedSuit(s poker.Suit) bool {
	return s == poker.Hearts || s == poker.Diamonds
}

// RenderCard renders one card in its suit colour.
func RenderCard(c poker.Card) string {
	if isRedSuit(c.GetSuit()) {
		return RedCardStyle.Render(FormatCard(c))
	}
	return CardStyle.Render(FormatCard(c))
}

// RenderCards renders cards side by side, padding with face-down cards up to
// slots.
func RenderCards(cards []poker.Card, slots int) string {
	var parts []string
	for _, c := range cards {
		parts = append(parts, RenderCard(c))
	}
	for i := len(cards); i < slots; i++ {
		parts = append(parts, CardStyle.Render("🂠"))
	}
	if len(parts) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// RenderTable renders the whole table: board, pots, seats and what the
// table is waiting for.
func RenderTable(st game.TableState, next game.NextAction) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Game %s  %s", st.GameID, st.Phase)) + "\n\n")

	if st.Phase != game.PhaseNoRound {
		b.WriteString(BoardStyle.Render("Board") + "\n")
		b.WriteString(RenderCards(st.Community, 5) + "\n")
		b.WriteString(renderPots(st) + "\n")
	}

	var seats []string
	for _, s := range st.Seats {
		seats = append(seats, renderSeat(st, s))
	}
	if len(seats) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, seats...) + "\n")
	} else {
		b.WriteString(BlurredStyle.Render("No players seated") + "\n")
	}

	b.WriteString(InfoStyle.Render(DescribeNext(next)) + "\n")
	return b.String()
}

func renderPots(st game.TableState) string {
	if len(st.Pots) <= 1 {
		return PotStyle.Render(fmt.Sprintf("Pot %d", st.PotTotal))
	}
	lines := []string{fmt.Sprintf("Pot %d", st.PotTotal)}
	for i, p := range st.Pots {
		name := "main"
		if i > 0 {
			name = fmt.Sprintf("side %d", i)
		}
		lines = append(lines, fmt.Sprintf("%s %d: %s", name, p.Amount, strings.Join(p.Eligible, ", ")))
	}
	return PotStyle.Render(strings.Join(lines, "\n"))
}

func renderSeat(st game.TableState, s game.SeatState) string {
	var roles []string
	if s.PlayerID == st.DealerID {
		roles = append(roles, "D")
	}
	if s.PlayerID == st.SmallBlindID {
		roles = append(roles, "SB")
	}
	if s.PlayerID == st.BigBlindID {
		roles = append(roles, "BB")
	}

	name := s.Name
	if name == "" {
		name = s.PlayerID
	}
	header := fmt.Sprintf("Seat %d %s", s.Seat, name)
	if len(roles) > 0 {
		header += " [" + strings.Join(roles, ",") + "]"
	}

	lines := []string{header, fmt.Sprintf("Chips %d", s.Chips)}
	if s.Bet > 0 {
		lines = append(lines, fmt.Sprintf("Bet %d", s.Bet))
	}
	switch {
	case s.Bankrupt:
		lines = append(lines, "Bankrupt")
	case s.Folded:
		lines = append(lines, "Folded")
	case len(s.Hand) > 0:
		var cards []string
		for _, c := range s.Hand {
			cards = append(cards, FormatCard(c))
		}
		lines = append(lines, strings.Join(cards, " "))
	}

	body := strings.Join(lines, "\n")
	switch {
	case s.PlayerID == st.NextToAct:
		return ActingSeatStyle.Render(body)
	case s.Folded || s.Bankrupt:
		return FoldedSeatStyle.Render(body)
	default:
		return SeatBoxStyle.Render(body)
	}
}

// DescribeNext renders what the table is waiting for.
func DescribeNext(next game.NextAction) string {
	switch next.Kind {
	case game.ActPlayer:
		return "Waiting for " + next.PlayerID
	case game.ActDealFlop:
		return "Betting closed, flop next"
	case game.ActDealTurn:
		return "Betting closed, turn next"
	case game.ActDealRiver:
		return "Betting closed, river next"
	case game.ActFinish:
		return "Showdown"
	case game.ActStartRound:
		return "Ready for a new round"
	default:
		return "Waiting for players"
	}
}
