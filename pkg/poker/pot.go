package poker

// Contribution is the amount one player has put in.
type Contribution struct {
	PlayerID string
	Amount   int64
}

// Bets is an ordered player->amount ledger. Order is the order in which each
// player first contributed. Bets values are treated as immutable: Add returns
// a new ledger and never modifies the receiver.
type Bets []Contribution

// Add returns a copy of the ledger with amount added to playerID.
func (b Bets) Add(playerID string, amount int64) Bets {
	out := make(Bets, len(b), len(b)+1)
	copy(out, b)
	for i := range out {
		if out[i].PlayerID == playerID {
			out[i].Amount += amount
			return out
		}
	}
	return append(out, Contribution{PlayerID: playerID, Amount: amount})
}

// Get returns the amount contributed by playerID, zero if none.
func (b Bets) Get(playerID string) int64 {
	for _, c := range b {
		if c.PlayerID == playerID {
			return c.Amount
		}
	}
	return 0
}

// Total returns the sum of all contributions.
func (b Bets) Total() int64 {
	var total int64
	for _, c := range b {
		total += c.Amount
	}
	return total
}

// Max returns the largest contribution among the given players. When players
// is nil every contributor is considered.
func (b Bets) Max(players []string) int64 {
	var hi int64
	if players == nil {
		for _, c := range b {
			if c.Amount > hi {
				hi = c.Amount
			}
		}
		return hi
	}
	for _, p := range players {
		if a := b.Get(p); a > hi {
			hi = a
		}
	}
	return hi
}

// Pot represents a pot of chips and the players eligible to win it.
type Pot struct {
	Amount   int64
	Eligible []string
}

// IsEligible checks if a player is eligible to win this pot
func (p Pot) IsEligible(playerID string) bool {
	for _, id := range p.Eligible {
		if id == playerID {
			return true
		}
	}
	return false
}

// BuildPots partitions the round's cumulative bets into layered pots. Each
// layer takes the smallest remaining contribution from every remaining
// contributor. Folded players pay into layers but only players for which
// eligible returns true may win them. Pots are ordered from the smallest
// all-in layer (most contributors) to the top excess pot.
func BuildPots(bets Bets, eligible func(playerID string) bool) []Pot {
	remaining := make([]Contribution, 0, len(bets))
	for _, c := range bets {
		if c.Amount > 0 {
			remaining = append(remaining, c)
		}
	}

	var pots []Pot
	for len(remaining) > 0 {
		min := remaining[0].Amount
		for _, r := range remaining[1:] {
			if r.Amount < min {
				min = r.Amount
			}
		}

		pot := Pot{Amount: min * int64(len(remaining)), Eligible: []string{}}
		for _, r := range remaining {
			if eligible == nil || eligible(r.PlayerID) {
				pot.Eligible = append(pot.Eligible, r.PlayerID)
			}
		}
		pots = append(pots, pot)

		next := remaining[:0]
		for _, r := range remaining {
			r.Amount -= min
			if r.Amount > 0 {
				next = append(next, r)
			}
		}
		remaining = next
	}
	return pots
}

// SplitPot divides amount among n winners. The integer remainder goes to the
// first winner.
func SplitPot(amount int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	shares := make([]int64, n)
	share := amount / int64(n)
	rem := amount % int64(n)
	for i := range shares {
		shares[i] = share
	}
	shares[0] += rem
	return shares
}
