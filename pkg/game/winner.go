package game

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/poker"
)

// award is one settled pot share.
type award struct {
	playerID string
	amount   int64
}

// showdown settles every pot among the unfolded hands. All awards are
// computed before anything is appended, so an oracle failure leaves the log
// untouched.
func (g *Game) showdown() error {
	round := g.round()
	seats := g.seats()
	board := round.Community
	memo := make(map[string][]string)

	var (
		awards     []award
		carry      int64
		mainWinner []string
	)
	for i, pot := range g.pots() {
		amount := pot.Amount + carry
		carry = 0
		if len(pot.Eligible) == 0 {
			// Everybody who paid into this layer folded or left.
			carry = amount
			continue
		}
		winners, err := g.potWinners(pot.Eligible, round, board, memo)
		if err != nil {
			return fmt.Errorf("pot %d: %w", i, err)
		}
		winners = bySeat(seats, winners)
		if mainWinner == nil {
			mainWinner = winners
		}
		for j, share := range poker.SplitPot(amount, len(winners)) {
			awards = append(awards, award{playerID: winners[j], amount: share})
		}
	}
	if carry > 0 {
		if mainWinner == nil {
			g.log.Warnf("game %s: %d chips with no eligible winner", g.id, carry)
		} else {
			for j, share := range poker.SplitPot(carry, len(mainWinner)) {
				if share > 0 {
					awards = append(awards, award{playerID: mainWinner[j], amount: share})
				}
			}
		}
	}
	if len(awards) == 0 {
		return fmt.Errorf("no eligible hand at showdown")
	}

	for _, a := range awards {
		g.elog.Append(
			events.HandWon{GameID: g.id, PlayerID: a.playerID},
			events.PlayerGivenChips{GameID: g.id, PlayerID: a.playerID, Amount: a.amount},
		)
		g.log.Infof("game %s: %s wins %d at showdown", g.id, a.playerID, a.amount)
	}
	g.markBankruptcies()
	return nil
}

// potWinners returns the best hands among eligible. The oracle is consulted
// once per distinct eligible set.
func (g *Game) potWinners(eligible []string, round RoundView, board []poker.Card,
	memo map[string][]string) ([]string, error) {

	if len(eligible) == 1 {
		return eligible, nil
	}
	sorted := append([]string(nil), eligible...)
	sort.Strings(sorted)
	key := strings.Join(sorted, "\x00")
	if w, ok := memo[key]; ok {
		return w, nil
	}

	hands := make([][]poker.Card, len(eligible))
	for i, p := range eligible {
		h, _ := round.Hand(p)
		hands[i] = h.Cards
	}
	ranking, err := poker.RankHands(g.ranker, hands, board)
	if err != nil {
		return nil, err
	}
	if len(ranking) == 0 || len(ranking[0]) == 0 {
		return nil, fmt.Errorf("oracle returned no ranking")
	}
	winners := make([]string, 0, len(ranking[0]))
	for _, idx := range ranking[0] {
		if idx < 0 || idx >= len(eligible) {
			return nil, fmt.Errorf("oracle returned index %d for %d hands", idx, len(eligible))
		}
		winners = append(winners, eligible[idx])
	}
	memo[key] = winners
	return winners, nil
}

// bySeat orders players by seat. Players no longer seated go last.
func bySeat(seats SeatsView, players []string) []string {
	out := append([]string(nil), players...)
	seatOf := func(p string) int {
		if s, ok := seats.SeatOf(p); ok {
			return s
		}
		return NumSeats
	}
	sort.SliceStable(out, func(i, j int) bool { return seatOf(out[i]) < seatOf(out[j]) })
	return out
}
