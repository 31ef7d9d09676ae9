package cash

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Amount is an integer count of the smallest currency unit (pesos).
type Amount int64

// Kind tells bills from coins. Only used for display grouping.
type Kind string

const (
	KindBill Kind = "bill"
	KindCoin Kind = "coin"
)

// Denomination is one bill or coin face value.
type Denomination struct {
	Value Amount `json:"value" yaml:"value"`
	Asset string `json:"asset" yaml:"asset"`
	Kind  Kind   `json:"kind" yaml:"kind"`
}

var (
	ErrEmptyDenominations    = errors.New("denomination table is empty")
	ErrInvalidDenomination   = errors.New("denomination value must be positive")
	ErrDuplicateDenomination = errors.New("duplicate denomination value")
	ErrUnknownDenomination   = errors.New("unknown denomination")
)

var defaultDenominations = []Denomination{
	{Value: 100000, Asset: "/dinero/100_mil.png", Kind: KindBill},
	{Value: 50000, Asset: "/dinero/50_mil.jpg", Kind: KindBill},
	{Value: 20000, Asset: "/dinero/20_mil.png", Kind: KindBill},
	{Value: 10000, Asset: "/dinero/10_mil.jpg", Kind: KindBill},
	{Value: 5000, Asset: "/dinero/5_mil.jpg", Kind: KindBill},
	{Value: 2000, Asset: "/dinero/2_mil.png", Kind: KindBill},
	{Value: 1000, Asset: "/dinero/1000 pesos.png", Kind: KindCoin},
	{Value: 500, Asset: "/dinero/500 pesos.png", Kind: KindCoin},
	{Value: 200, Asset: "/dinero/200 pesos.png", Kind: KindCoin},
	{Value: 100, Asset: "/dinero/100 pesos.png", Kind: KindCoin},
	{Value: 50, Asset: "/dinero/50 pesos.png", Kind: KindCoin},
}

// Denominations is an immutable table sorted by value, largest first.
type Denominations struct {
	items []Denomination
	index map[Amount]int
}

// DefaultDenominations returns the Colombian peso table used at the register.
func DefaultDenominations() *Denominations {
	d, err := NewDenominations(defaultDenominations)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDenominations validates and sorts the given set.
func NewDenominations(items []Denomination) (*Denominations, error) {
	if len(items) == 0 {
		return nil, ErrEmptyDenominations
	}

	sorted := make([]Denomination, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	index := make(map[Amount]int, len(sorted))
	for i, d := range sorted {
		if d.Value <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidDenomination, d.Value)
		}
		if _, dup := index[d.Value]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateDenomination, d.Value)
		}
		index[d.Value] = i
	}

	return &Denominations{items: sorted, index: index}, nil
}

// LoadDenominations reads a YAML table:
//
//	denominations:
//	  - value: 100000
//	    asset: /dinero/100_mil.png
//	    kind: bill
func LoadDenominations(path string) (*Denominations, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read denominations: %w", err)
	}

	var doc struct {
		Denominations []Denomination `yaml:"denominations"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse denominations %s: %w", path, err)
	}

	return NewDenominations(doc.Denominations)
}

// All returns a copy of the table, largest first.
func (d *Denominations) All() []Denomination {
	out := make([]Denomination, len(d.items))
	copy(out, d.items)
	return out
}

// Values returns face values, largest first.
func (d *Denominations) Values() []Amount {
	out := make([]Amount, len(d.items))
	for i, item := range d.items {
		out[i] = item.Value
	}
	return out
}

func (d *Denominations) Has(value Amount) bool {
	_, ok := d.index[value]
	return ok
}

// Smallest is the tender unit.
func (d *Denominations) Smallest() Amount {
	return d.items[len(d.items)-1].Value
}

// IsCanonical reports whether greedy change-making is optimal for this set.
// A counterexample, if any, lies below the sum of the two largest values
// (Kozen & Zaks), so amounts up to that bound are compared against an
// exact minimum-coin table.
func (d *Denominations) IsCanonical() bool {
	values := d.Values()
	if len(values) < 3 {
		return true
	}

	unit := values[len(values)-1]
	for _, v := range values {
		unit = gcd(unit, v)
	}

	limit := int((values[0] + values[1]) / unit)
	steps := make([]int, len(values))
	for i, v := range values {
		steps[i] = int(v / unit)
	}

	const unreachable = int(^uint(0) >> 1)
	optimal := make([]int, limit+1)
	for n := 1; n <= limit; n++ {
		optimal[n] = unreachable
		for _, s := range steps {
			if s <= n && optimal[n-s] != unreachable && optimal[n-s]+1 < optimal[n] {
				optimal[n] = optimal[n-s] + 1
			}
		}
	}

	for n := 1; n <= limit; n++ {
		if optimal[n] == unreachable {
			continue
		}
		greedy, rest := 0, n
		for _, s := range steps {
			greedy += rest / s
			rest %= s
		}
		if rest != 0 || greedy > optimal[n] {
			return false
		}
	}
	return true
}

func gcd(a, b Amount) Amount {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
