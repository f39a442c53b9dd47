package poker

import "testing"

func TestNextToAct(t *testing.T) {
	tests := []struct {
		name   string
		last   int
		actors []Actor
		want   string
		wantOK bool
	}{
		{
			name: "opens left of the big blind",
			last: 2,
			actors: []Actor{
				{PlayerID: "A", Seat: 0, Chips: 1000},
				{PlayerID: "B", Seat: 1, Chips: 980, Bet: 20},
				{PlayerID: "C", Seat: 2, Chips: 960, Bet: 40},
			},
			want: "A", wantOK: true,
		},
		{
			name: "big blind keeps its option",
			last: 1,
			actors: []Actor{
				{PlayerID: "A", Seat: 0, Chips: 960, Bet: 40, Acted: 1},
				{PlayerID: "B", Seat: 1, Chips: 960, Bet: 40, Acted: 1},
				{PlayerID: "C", Seat: 2, Chips: 960, Bet: 40},
			},
			want: "C", wantOK: true,
		},
		{
			name: "closed when everyone matched",
			last: 2,
			actors: []Actor{
				{PlayerID: "A", Seat: 0, Chips: 960, Bet: 40, Acted: 1},
				{PlayerID: "B", Seat: 1, Chips: 960, Bet: 40, Acted: 1},
				{PlayerID: "C", Seat: 2, Chips: 960, Bet: 40, Acted: 1},
			},
			wantOK: false,
		},
		{
			name: "raise reopens action",
			last: 2,
			actors: []Actor{
				{PlayerID: "A", Seat: 0, Chips: 960, Bet: 40, Acted: 1},
				{PlayerID: "B", Seat: 1, Chips: 960, Bet: 40, Acted: 1},
				{PlayerID: "C", Seat: 2, Chips: 900, Bet: 100, Acted: 2},
			},
			want: "A", wantOK: true,
		},
		{
			name: "all-in players are skipped",
			last: 0,
			actors: []Actor{
				{PlayerID: "A", Seat: 0, Chips: 0, Bet: 500, Acted: 1},
				{PlayerID: "B", Seat: 3, Chips: 0, Bet: 300, Acted: 1},
				{PlayerID: "C", Seat: 5, Chips: 700, Bet: 100, Acted: 1},
			},
			want: "C", wantOK: true,
		},
		{
			name: "wraps around the table",
			last: 6,
			actors: []Actor{
				{PlayerID: "A", Seat: 1, Chips: 100},
				{PlayerID: "B", Seat: 4, Chips: 100},
				{PlayerID: "C", Seat: 6, Chips: 100, Acted: 1},
			},
			want: "A", wantOK: true,
		},
		{
			name: "single player with chips skips betting",
			last: 0,
			actors: []Actor{
				{PlayerID: "A", Seat: 0, Chips: 1960, Bet: 40},
				{PlayerID: "B", Seat: 1, Chips: 0, Bet: 30},
			},
			wantOK: false,
		},
		{
			name: "single player with chips still owes a call",
			last: 0,
			actors: []Actor{
				{PlayerID: "A", Seat: 0, Chips: 1950, Bet: 20},
				{PlayerID: "B", Seat: 1, Chips: 0, Bet: 30},
			},
			want: "A", wantOK: true,
		},
		{
			name: "all-in blinds leave the dealer to act",
			last: 2,
			actors: []Actor{
				{PlayerID: "A", Seat: 0, Chips: 1000},
				{PlayerID: "B", Seat: 1, Chips: 0, Bet: 10},
				{PlayerID: "C", Seat: 2, Chips: 0, Bet: 30},
			},
			want: "A", wantOK: true,
		},
		{
			name:   "nobody",
			last:   -1,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextToAct(tt.last, tt.actors)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("NextToAct = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// Every input settles within one pass over the actors.
func TestNextToActTerminates(t *testing.T) {
	for mask := 0; mask < 1<<6; mask++ {
		actors := make([]Actor, 3)
		for i := range actors {
			actors[i] = Actor{
				PlayerID: string(rune('a' + i)),
				Seat:     i * 2,
				Chips:    int64(mask>>i&1) * 100,
				Acted:    mask >> (i + 3) & 1,
				Bet:      int64(i * 10),
			}
		}
		for last := -1; last < 8; last++ {
			got, ok := NextToAct(last, actors)
			if ok && got == "" {
				t.Errorf("mask %b last %d: empty player reported", mask, last)
			}
		}
	}
}
