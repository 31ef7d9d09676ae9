package cash

// Breakdown is the set of pieces to hand back as change.
type Breakdown struct {
	Counts map[Amount]int64 `json:"counts"`
	// Remainder is what the table cannot express, e.g. 30 with a 50 unit.
	Remainder Amount `json:"remainder"`
}

// Pieces returns the number of bills and coins handed back.
func (b Breakdown) Pieces() int64 {
	var n int64
	for _, c := range b.Counts {
		n += c
	}
	return n
}

// MakeChange walks the table from the largest value down, taking as many
// of each as fit into what is left.
func MakeChange(change Amount, denoms *Denominations) Breakdown {
	out := Breakdown{Counts: map[Amount]int64{}}
	if change <= 0 {
		return out
	}

	remaining := change
	for _, d := range denoms.items {
		if remaining < d.Value {
			continue
		}
		n := remaining / d.Value
		out.Counts[d.Value] = int64(n)
		remaining -= n * d.Value
	}

	out.Remainder = remaining
	return out
}
