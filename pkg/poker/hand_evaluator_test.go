package poker

import (
	"errors"
	"reflect"
	"testing"
)

func rankers() map[string]Ranker {
	return map[string]Ranker{
		"chehsunliu": ChehsunliuRanker{},
		"paulhankin": PaulhankinRanker{},
	}
}

func TestRankers(t *testing.T) {
	tests := []struct {
		name  string
		hands [][]string
		board []string
		want  [][]int
	}{
		{
			name:  "royal flush beats pair",
			hands: [][]string{{"2c", "2d"}, {"Ah", "Kh"}},
			board: []string{"Qh", "Jh", "Th", "9s", "4c"},
			want:  [][]int{{1}, {0}},
		},
		{
			name:  "board plays for everyone",
			hands: [][]string{{"2c", "3d"}, {"4s", "5s"}},
			board: []string{"Ah", "Kh", "Qh", "Jh", "Th"},
			want:  [][]int{{0, 1}},
		},
		{
			name:  "three hands ranked with a tie",
			hands: [][]string{{"Ks", "Kd"}, {"7c", "2d"}, {"Kc", "Kh"}},
			board: []string{"3s", "8d", "9h", "Jc", "4s"},
			want:  [][]int{{0, 2}, {1}},
		},
		{
			name:  "flop only",
			hands: [][]string{{"9c", "9d"}, {"Ac", "Qd"}},
			board: []string{"9h", "2s", "5d"},
			want:  [][]int{{0}, {1}},
		},
		{
			name:  "turn, six cards",
			hands: [][]string{{"2c", "3d"}, {"Ah", "Kh"}},
			board: []string{"Qh", "Jh", "Th", "9s"},
			want:  [][]int{{1}, {0}},
		},
	}
	for rname, r := range rankers() {
		for _, tt := range tests {
			t.Run(rname+"/"+tt.name, func(t *testing.T) {
				got, err := r.Rank(tt.hands, tt.board)
				if err != nil {
					t.Fatalf("Rank: %v", err)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("Rank = %v, want %v", got, tt.want)
				}
			})
		}
	}
}

func TestRankersRejectBadInput(t *testing.T) {
	for name, r := range rankers() {
		if _, err := r.Rank([][]string{{"Ah", "Kh"}}, []string{"2c", "3c"}); err == nil {
			t.Errorf("%s: expected error for short board", name)
		}
		if _, err := r.Rank([][]string{{"Ah"}}, []string{"2c", "3c", "4c"}); err == nil {
			t.Errorf("%s: expected error for one-card hand", name)
		}
		_, err := r.Rank([][]string{{"Ah", "1x"}}, []string{"2c", "3c", "4c"})
		if !errors.Is(err, ErrInvalidCard) {
			t.Errorf("%s: expected ErrInvalidCard, got %v", name, err)
		}
	}
}

func TestRankHands(t *testing.T) {
	var gotHands [][]string
	var gotBoard []string
	r := RankerFunc(func(hands [][]string, board []string) ([][]int, error) {
		gotHands, gotBoard = hands, board
		return [][]int{{0}}, nil
	})
	hands := [][]Card{{MustParseCard("10_of_hearts"), MustParseCard("ace_of_spades")}}
	board := []Card{
		MustParseCard("2_of_clubs"),
		MustParseCard("jack_of_diamonds"),
		MustParseCard("king_of_hearts"),
	}
	if _, err := RankHands(r, hands, board); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotHands, [][]string{{"Th", "As"}}) {
		t.Errorf("Unexpected hands %v", gotHands)
	}
	if !reflect.DeepEqual(gotBoard, []string{"2c", "Jd", "Kh"}) {
		t.Errorf("Unexpected board %v", gotBoard)
	}
}

func TestDescribeHand(t *testing.T) {
	hole := []Card{NewCard(Hearts, Ace), NewCard(Spades, Ace)}
	board := []Card{
		NewCard(Clubs, Ace),
		NewCard(Diamonds, Ace),
		NewCard(Hearts, King),
	}
	if got := DescribeHand(hole, board); got == "" {
		t.Error("Expected a description for four aces")
	}
	if got := DescribeHand(hole, board[:2]); got != "" {
		t.Errorf("Expected no description for four cards, got %q", got)
	}
}
