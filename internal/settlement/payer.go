package settlement

// PrimaryPayerPolicy selects the single member to whom all item-level debt of
// an expense is attributed. Attributing everything to one payer even when an
// expense carries several payments is a deliberate, inherited simplification;
// the policy makes it explicit and swappable instead of hiding it in
// iteration order.
type PrimaryPayerPolicy interface {
	// PrimaryPayer returns the attributed payer for the expense, or false
	// when the expense has no payments.
	PrimaryPayer(expense Expense) (int64, bool)
}

// FirstPaymentPolicy attributes debt to the payer of the earliest payment by
// creation order (lowest id). This is the default and the only shipped
// policy.
type FirstPaymentPolicy struct{}

func (FirstPaymentPolicy) PrimaryPayer(expense Expense) (int64, bool) {
	if len(expense.Payments) == 0 {
		return 0, false
	}
	first := expense.Payments[0]
	for _, p := range expense.Payments[1:] {
		if p.ID < first.ID {
			first = p
		}
	}
	return first.PayerID, true
}
