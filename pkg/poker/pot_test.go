package poker

import (
	"reflect"
	"testing"
)

func TestBetsAdd(t *testing.T) {
	var b Bets
	b1 := b.Add("b", 20)
	b2 := b1.Add("a", 40)
	b3 := b2.Add("b", 20)

	if len(b1) != 1 || b1.Get("b") != 20 {
		t.Errorf("Add must not modify its receiver, got %v", b1)
	}
	if b2.Get("b") != 20 {
		t.Errorf("Expected b2[b]=20, got %d", b2.Get("b"))
	}
	if b3.Get("b") != 40 || b3.Get("a") != 40 {
		t.Errorf("Unexpected bets %v", b3)
	}
	if b3[0].PlayerID != "b" {
		t.Errorf("Expected first contributor to stay first, got %v", b3)
	}
	if b3.Total() != 80 {
		t.Errorf("Expected total 80, got %d", b3.Total())
	}
	if b3.Max(nil) != 40 || b3.Max([]string{"x"}) != 0 {
		t.Errorf("Unexpected Max")
	}
	if b3.Get("nobody") != 0 {
		t.Errorf("Expected zero for unknown player")
	}
}

func TestBuildPotsFixture(t *testing.T) {
	var bets Bets
	bets = bets.Add("B", 1000)
	bets = bets.Add("C", 3000)
	bets = bets.Add("A", 2000)

	got := BuildPots(bets, func(string) bool { return true })
	want := []Pot{
		{Amount: 3000, Eligible: []string{"B", "C", "A"}},
		{Amount: 2000, Eligible: []string{"C", "A"}},
		{Amount: 1000, Eligible: []string{"C"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildPots = %v, want %v", got, want)
	}
}

func TestBuildPotsFoldedContribute(t *testing.T) {
	var bets Bets
	bets = bets.Add("A", 100)
	bets = bets.Add("B", 100)
	bets = bets.Add("C", 50)

	folded := map[string]bool{"C": true}
	pots := BuildPots(bets, func(id string) bool { return !folded[id] })
	if len(pots) != 2 {
		t.Fatalf("Expected 2 pots, got %d", len(pots))
	}
	if pots[0].Amount != 150 || pots[0].IsEligible("C") {
		t.Errorf("Unexpected first pot %v", pots[0])
	}
	if pots[1].Amount != 100 || !pots[1].IsEligible("A") || !pots[1].IsEligible("B") {
		t.Errorf("Unexpected second pot %v", pots[1])
	}
}

func TestBuildPotsProperties(t *testing.T) {
	cases := [][]int64{
		{10, 10, 10},
		{5, 50, 500, 5000},
		{1, 0, 7, 7, 3},
		{40},
		{980, 20, 40, 40, 1000, 1000, 1},
	}
	for _, amounts := range cases {
		var bets Bets
		for i, a := range amounts {
			bets = bets.Add(string(rune('a'+i)), a)
		}
		pots := BuildPots(bets, nil)

		var sum int64
		for i, p := range pots {
			sum += p.Amount
			if i > 0 && len(p.Eligible) > len(pots[i-1].Eligible) {
				t.Errorf("%v: eligibility grew from pot %d to %d", amounts, i-1, i)
			}
			if i > 0 {
				for _, id := range p.Eligible {
					if !pots[i-1].IsEligible(id) {
						t.Errorf("%v: %s eligible for pot %d but not %d", amounts, id, i, i-1)
					}
				}
			}
		}
		if sum != bets.Total() {
			t.Errorf("%v: pots sum to %d, want %d", amounts, sum, bets.Total())
		}
	}
}

func TestBuildPotsEmpty(t *testing.T) {
	if pots := BuildPots(nil, nil); len(pots) != 0 {
		t.Errorf("Expected no pots, got %v", pots)
	}
	var bets Bets
	if pots := BuildPots(bets.Add("a", 0), nil); len(pots) != 0 {
		t.Errorf("Expected no pots for zero bets, got %v", pots)
	}
}

func TestSplitPot(t *testing.T) {
	tests := []struct {
		amount int64
		n      int
		want   []int64
	}{
		{100, 2, []int64{50, 50}},
		{101, 2, []int64{51, 50}},
		{100, 3, []int64{34, 33, 33}},
		{101, 3, []int64{35, 33, 33}},
		{7, 1, []int64{7}},
		{1, 2, []int64{1, 0}},
	}
	for _, tt := range tests {
		if got := SplitPot(tt.amount, tt.n); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitPot(%d, %d) = %v, want %v", tt.amount, tt.n, got, tt.want)
		}
	}
	if SplitPot(10, 0) != nil {
		t.Error("Expected nil for no winners")
	}
}
