package poker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chehsunliu/poker"
	"github.com/decred/slog"
)

// Ranker is the hand-ranking oracle. Given N two-card hands and a board of
// three to five cards, all in short-code form ("Th", "As"), it returns hand
// indices grouped from strongest to weakest. Hands in the same group tie.
type Ranker interface {
	Rank(hands [][]string, board []string) ([][]int, error)
}

// RankerFunc adapts a function to the Ranker interface.
type RankerFunc func(hands [][]string, board []string) ([][]int, error)

// Rank calls f.
func (f RankerFunc) Rank(hands [][]string, board []string) ([][]int, error) {
	return f(hands, board)
}

// ShortCodes converts cards to the oracle's short-code encoding.
func ShortCodes(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ShortCode()
	}
	return out
}

// RankHands formats hole cards and board for r and returns the grouped
// ranking.
func RankHands(r Ranker, hands [][]Card, board []Card) ([][]int, error) {
	coded := make([][]string, len(hands))
	for i, h := range hands {
		coded[i] = ShortCodes(h)
	}
	return r.Rank(coded, ShortCodes(board))
}

func validateShortCode(code string) error {
	if len(code) != 2 || !strings.ContainsRune("23456789TJQKA", rune(code[0])) ||
		!strings.ContainsRune("cdhs", rune(code[1])) {
		return fmt.Errorf("%w: short code %q", ErrInvalidCard, code)
	}
	return nil
}

func validateRankInput(hands [][]string, board []string) error {
	if len(board) < 3 || len(board) > 5 {
		return fmt.Errorf("board must have 3 to 5 cards, got %d", len(board))
	}
	for _, c := range board {
		if err := validateShortCode(c); err != nil {
			return err
		}
	}
	for i, h := range hands {
		if len(h) != 2 {
			return fmt.Errorf("hand %d must have 2 cards, got %d", i, len(h))
		}
		for _, c := range h {
			if err := validateShortCode(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// groupByScore orders hand indices by score and groups equal scores.
// better reports whether score a beats score b.
func groupByScore(scores []int, better func(a, b int) bool) [][]int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return better(scores[idx[i]], scores[idx[j]]) })

	var groups [][]int
	for i, h := range idx {
		if i > 0 && scores[h] == scores[idx[i-1]] {
			groups[len(groups)-1] = append(groups[len(groups)-1], h)
			continue
		}
		groups = append(groups, []int{h})
	}
	return groups
}

// ChehsunliuRanker ranks hands with github.com/chehsunliu/poker, where a lower
// evaluation is a stronger hand.
type ChehsunliuRanker struct{}

// Rank implements Ranker.
func (ChehsunliuRanker) Rank(hands [][]string, board []string) ([][]int, error) {
	if err := validateRankInput(hands, board); err != nil {
		return nil, err
	}
	scores := make([]int, len(hands))
	for i, h := range hands {
		scores[i] = int(poker.Evaluate(convertCodes(append(append([]string{}, h...), board...))))
	}
	return groupByScore(scores, func(a, b int) bool { return a < b }), nil
}

func convertCodes(codes []string) []poker.Card {
	cards := make([]poker.Card, len(codes))
	for i, c := range codes {
		cards[i] = poker.NewCard(c)
	}
	return cards
}

// DescribeHand returns a human-readable description of the best hand made by
// hole cards and board, e.g. "Full House".
func DescribeHand(hole, board []Card) string {
	all := append(append([]Card{}, hole...), board...)
	if len(all) < 5 || len(all) > 7 {
		return ""
	}
	codes := ShortCodes(all)
	for _, c := range codes {
		if validateShortCode(c) != nil {
			return ""
		}
	}
	return poker.RankString(poker.Evaluate(convertCodes(codes)))
}

// Ranker names accepted by RankerByName.
const (
	RankerChehsunliu = "chehsunliu"
	RankerPaulhankin = "paulhankin"
)

// RankerByName returns the ranking oracle registered under name.
func RankerByName(name string) (Ranker, error) {
	switch name {
	case RankerChehsunliu, "":
		return ChehsunliuRanker{}, nil
	case RankerPaulhankin:
		return PaulhankinRanker{}, nil
	}
	return nil, fmt.Errorf("unknown hand ranker %q", name)
}

type loggingRanker struct {
	r   Ranker
	log slog.Logger
}

// NewLoggingRanker wraps r so every call and failure is logged to log.
func NewLoggingRanker(r Ranker, log slog.Logger) Ranker {
	if log == nil {
		return r
	}
	return loggingRanker{r: r, log: log}
}

func (l loggingRanker) Rank(hands [][]string, board []string) ([][]int, error) {
	groups, err := l.r.Rank(hands, board)
	if err != nil {
		l.log.Errorf("ranking %d hands on %v failed: %v", len(hands), board, err)
		return nil, err
	}
	l.log.Tracef("ranked %v on %v: %v", hands, board, groups)
	return groups, nil
}
