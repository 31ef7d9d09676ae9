package cash

import (
	"math"
	"strconv"
	"strings"
)

// Counts maps a denomination value to the number of pieces the cashier
// declared. Counts are never negative.
type Counts struct {
	denoms *Denominations
	values map[Amount]int64
}

func NewCounts(denoms *Denominations) *Counts {
	return &Counts{
		denoms: denoms,
		values: make(map[Amount]int64, len(denoms.items)),
	}
}

// SetCount stores the parsed raw input. Anything that does not parse to a
// finite non-negative number becomes 0; fractions are floored.
func (c *Counts) SetCount(value Amount, raw string) error {
	if !c.denoms.Has(value) {
		return ErrUnknownDenomination
	}
	c.values[value] = parseCount(raw)
	return nil
}

func (c *Counts) Increment(value Amount) error {
	if !c.denoms.Has(value) {
		return ErrUnknownDenomination
	}
	c.values[value]++
	return nil
}

func (c *Counts) Decrement(value Amount) error {
	if !c.denoms.Has(value) {
		return ErrUnknownDenomination
	}
	if c.values[value] > 0 {
		c.values[value]--
	}
	return nil
}

func (c *Counts) Get(value Amount) int64 {
	return c.values[value]
}

func (c *Counts) Reset() {
	c.values = make(map[Amount]int64, len(c.denoms.items))
}

// Map returns a copy holding only non-zero entries.
func (c *Counts) Map() map[Amount]int64 {
	out := make(map[Amount]int64, len(c.values))
	for v, n := range c.values {
		if n > 0 {
			out[v] = n
		}
	}
	return out
}

// Sum is Σ value × count over the table.
func (c *Counts) Sum() Amount {
	return SumCounts(c.values, c.denoms)
}

// SumCounts totals a count map, ignoring values outside the table.
func SumCounts(counts map[Amount]int64, denoms *Denominations) Amount {
	var total Amount
	for _, d := range denoms.items {
		total += d.Value * Amount(counts[d.Value])
	}
	return total
}

func parseCount(raw string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	f = math.Floor(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int64(f)
}
