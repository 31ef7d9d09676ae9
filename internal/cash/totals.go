package cash

import "github.com/shopspring/decimal"

// TotalReceived is the cash the customer handed over. When the cashier
// does not declare denominations the customer is assumed to pay exactly
// the amount due.
func TotalReceived(counts map[Amount]int64, denoms *Denominations, declaring bool, amountDue decimal.Decimal) decimal.Decimal {
	if !declaring {
		return amountDue
	}
	return decimal.NewFromInt(int64(SumCounts(counts, denoms)))
}

// Change returns max(0, round(received) - round(due)) in whole units,
// rounding half away from zero.
func Change(totalReceived, amountDue decimal.Decimal) Amount {
	diff := RoundUnits(totalReceived) - RoundUnits(amountDue)
	if diff < 0 {
		return 0
	}
	return diff
}

// Sufficient compares the raw received amount against the raw amount due.
func Sufficient(totalReceived, amountDue decimal.Decimal) bool {
	return totalReceived.GreaterThanOrEqual(amountDue)
}

// RoundUnits rounds half away from zero to whole pesos.
func RoundUnits(v decimal.Decimal) Amount {
	return Amount(v.Round(0).IntPart())
}
