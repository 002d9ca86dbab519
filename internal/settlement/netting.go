package settlement

import "github.com/shopspring/decimal"

// netDebts collapses the raw pairwise debt matrix into net amounts: for each
// ordered pair the reverse flow is subtracted and only the strictly positive
// direction survives. Zero pairs are dropped, not zero-filled, so no
// "owes 0" entries ever appear. Values stay full precision; rounding is the
// caller's final step.
func netDebts(raw map[int64]map[int64]decimal.Decimal) map[int64]map[int64]decimal.Decimal {
	net := make(map[int64]map[int64]decimal.Decimal, len(raw))
	for creditor, owed := range raw {
		for debtor, amount := range owed {
			value := amount.Sub(raw[debtor][creditor])
			if !value.IsPositive() {
				continue
			}
			if net[creditor] == nil {
				net[creditor] = make(map[int64]decimal.Decimal)
			}
			net[creditor][debtor] = value
		}
	}
	return net
}
