package poker

import (
	"fmt"
	"strings"

	ph "github.com/paulhankin/poker"
)

// PaulhankinRanker ranks hands with github.com/paulhankin/poker, where a
// higher evaluation is a stronger hand.
type PaulhankinRanker struct{}

// Rank implements Ranker.
func (PaulhankinRanker) Rank(hands [][]string, board []string) ([][]int, error) {
	if err := validateRankInput(hands, board); err != nil {
		return nil, err
	}
	scores := make([]int, len(hands))
	for i, h := range hands {
		cards, err := toPH(append(append([]string{}, h...), board...))
		if err != nil {
			return nil, err
		}
		scores[i] = int(evalBest(cards))
	}
	return groupByScore(scores, func(a, b int) bool { return a > b }), nil
}

// toPH converts short codes to library cards. The library numbers ranks
// 1..13 with the ace as 1.
func toPH(codes []string) ([]ph.Card, error) {
	out := make([]ph.Card, len(codes))
	for i, code := range codes {
		var s ph.Suit
		switch code[1] {
		case 'c':
			s = ph.Club
		case 'd':
			s = ph.Diamond
		case 'h':
			s = ph.Heart
		case 's':
			s = ph.Spade
		}
		r := strings.IndexByte("A23456789TJQK", code[0]) + 1
		c, err := ph.MakeCard(s, ph.Rank(r))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCard, code, err)
		}
		out[i] = c
	}
	return out, nil
}

func evalBest(cards []ph.Card) int16 {
	switch len(cards) {
	case 7:
		var a7 [7]ph.Card
		copy(a7[:], cards)
		return ph.Eval7(&a7)
	case 5:
		var a5 [5]ph.Card
		copy(a5[:], cards)
		return ph.Eval5(&a5)
	}

	// Six cards: best five-card subset.
	var best int16 = -1 << 15
	var five [5]ph.Card
	for skip := range cards {
		k := 0
		for i, c := range cards {
			if i == skip {
				continue
			}
			five[k] = c
			k++
		}
		if s := ph.Eval5(&five); s > best {
			best = s
		}
	}
	return best
}
