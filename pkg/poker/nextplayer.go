package poker

import "sort"

// Actor is a player still holding an unfolded hand in the current betting
// round.
type Actor struct {
	PlayerID string
	Seat     int
	Chips    int64 // remaining stack
	Bet      int64 // cumulative bet this betting round
	Acted    int   // voluntary actions this betting round, forced blinds excluded
}

// needsToAct reports whether a can still take an action given the current
// maximum bet.
func (a Actor) needsToAct(maxBet int64) bool {
	if a.Chips == 0 {
		return false
	}
	return a.Acted == 0 || a.Bet != maxBet
}

// NextToAct returns the player who acts next, scanning clockwise from the seat
// just after lastActorSeat. lastActorSeat is the seat of the last voluntary
// actor, or the dealer seat when nobody has acted yet. It returns false when
// betting on the street is closed.
func NextToAct(lastActorSeat int, actors []Actor) (string, bool) {
	if len(actors) == 0 {
		return "", false
	}

	ordered := make([]Actor, len(actors))
	copy(ordered, actors)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Seat < ordered[j].Seat })

	var maxBet int64
	for _, a := range ordered {
		if a.Bet > maxBet {
			maxBet = a.Bet
		}
	}
	anyActed, anyOwed := false, false
	withChips := 0
	for _, a := range ordered {
		if a.Acted > 0 {
			anyActed = true
		}
		if a.Chips > 0 {
			withChips++
			if a.Bet < maxBet {
				anyOwed = true
			}
		}
	}

	// A lone player with chips who owes nothing has nobody to bet against.
	if !anyActed && !anyOwed && withChips < 2 {
		return "", false
	}

	start := 0
	for start < len(ordered) && ordered[start].Seat <= lastActorSeat {
		start++
	}
	for i := 0; i < len(ordered); i++ {
		a := ordered[(start+i)%len(ordered)]
		if a.needsToAct(maxBet) {
			return a.PlayerID, true
		}
	}
	return "", false
}
