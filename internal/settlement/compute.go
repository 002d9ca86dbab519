// Package settlement derives balances and pairwise debts for one regarding
// from its expenses, items, payments and memberships. The computation is a
// pure function of its input: no shared state, safe to run concurrently for
// different regardings.
package settlement

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/money"
)

// Common errors
var (
	// ErrInputInconsistency marks referential-integrity violations in the
	// input. The engine fails fast instead of producing wrong totals;
	// retrying without fixing the input fails identically.
	ErrInputInconsistency = errors.New("inconsistent settlement input")

	// ErrNoPositiveWeight is returned when expenses exist but the group's
	// aggregate membership weight is not positive, leaving no basis to
	// allocate the shared pool.
	ErrNoPositiveWeight = errors.New("no positive total membership weight")
)

// Engine computes settlement summaries. The zero value is not usable; use
// NewEngine.
type Engine struct {
	payerPolicy PrimaryPayerPolicy
}

// NewEngine creates an engine with the default first-payment payer policy.
func NewEngine() *Engine {
	return &Engine{payerPolicy: FirstPaymentPolicy{}}
}

// NewEngineWithPolicy creates an engine with a custom payer attribution
// policy.
func NewEngineWithPolicy(policy PrimaryPayerPolicy) *Engine {
	return &Engine{payerPolicy: policy}
}

// Compute runs the full pipeline: validate, classify and fold items into
// totals and raw debts in one pass, net the debt matrix, reconcile balances,
// and assemble the general and per-day totals. A regarding with no expenses
// yields a zero-valued summary, never an error, so callers need no separate
// "no data" branch.
func (e *Engine) Compute(in *Input) (*Summary, error) {
	memberIDs := in.memberIDs()
	if err := validate(in, memberIDs); err != nil {
		return nil, err
	}

	totalWeight := decimal.Zero
	for _, m := range in.Memberships {
		totalWeight = totalWeight.Add(m.Weight)
	}

	if len(in.Expenses) == 0 {
		return emptySummary(in.Memberships), nil
	}
	if !totalWeight.IsPositive() {
		return nil, ErrNoPositiveWeight
	}

	acc := newAccumulator(in.Memberships, totalWeight)
	for _, expense := range in.Expenses {
		payerID, hasPayer := e.payerPolicy.PrimaryPayer(expense)
		for _, item := range expense.Items {
			consumers := dedupeIDs(item.ConsumerIDs)
			kind := Classify(consumers, memberIDs)
			acc.applyItem(item.Price, consumers, kind, payerID, hasPayer)
		}
	}

	net := netDebts(acc.debts)
	reconcile(acc.totals, net, totalWeight)
	addPaymentTotals(acc.totals, in.Expenses)

	return &Summary{
		GeneralTotal:   generalTotal(in.Expenses),
		ConsumerTotal:  acc.totals,
		TotalByDay:     totalByDay(in.Expenses),
		MemberVsMember: roundNet(net),
	}, nil
}

// dedupeIDs collapses repeated ids, preserving first-seen order, so the
// consumer list behaves as the set the data model promises.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validate(in *Input, memberIDs map[int64]struct{}) error {
	for _, expense := range in.Expenses {
		for _, item := range expense.Items {
			if len(item.ConsumerIDs) == 0 {
				return fmt.Errorf("%w: item %d has no consumers", ErrInputInconsistency, item.ID)
			}
			for _, consumerID := range item.ConsumerIDs {
				if _, ok := memberIDs[consumerID]; !ok {
					return fmt.Errorf("%w: item %d consumer %d is not a group member",
						ErrInputInconsistency, item.ID, consumerID)
				}
			}
		}
		for _, payment := range expense.Payments {
			if _, ok := memberIDs[payment.PayerID]; !ok {
				return fmt.Errorf("%w: payment %d payer %d is not a group member",
					ErrInputInconsistency, payment.ID, payment.PayerID)
			}
		}
	}
	return nil
}

func emptySummary(memberships []Membership) *Summary {
	consumerTotal := make(map[int64]*MemberSummary, len(memberships))
	for _, m := range memberships {
		consumerTotal[m.MemberID] = &MemberSummary{FullName: m.FullName, Weight: m.Weight}
	}
	return &Summary{
		ConsumerTotal:  consumerTotal,
		TotalByDay:     map[int]decimal.Decimal{},
		MemberVsMember: map[int64]map[int64]decimal.Decimal{},
	}
}

func generalTotal(expenses []Expense) GeneralTotal {
	var total GeneralTotal
	for _, expense := range expenses {
		total.TotalExpenses = total.TotalExpenses.Add(expense.Cost)
		for _, payment := range expense.Payments {
			total.TotalPayments = total.TotalPayments.Add(payment.Value)
			switch payment.Status {
			case PaymentStatusAwaitingValidation:
				total.TotalValidation = total.TotalValidation.Add(payment.Value)
			case PaymentStatusAwaitingPayment:
				total.TotalOpen = total.TotalOpen.Add(payment.Value)
			case PaymentStatusPaid:
				total.TotalPaid = total.TotalPaid.Add(payment.Value)
			case PaymentStatusOverdue:
				total.TotalOverdue = total.TotalOverdue.Add(payment.Value)
			}
		}
	}
	return total
}

func totalByDay(expenses []Expense) map[int]decimal.Decimal {
	totals := make(map[int]decimal.Decimal)
	for _, expense := range expenses {
		day := expense.Date.Day()
		totals[day] = totals[day].Add(expense.Cost)
	}
	return totals
}

// addPaymentTotals fills the display-only total_paid aggregate: each
// member's payment volume across the regarding, independent of the balance
// math.
func addPaymentTotals(totals map[int64]*MemberSummary, expenses []Expense) {
	for _, expense := range expenses {
		for _, payment := range expense.Payments {
			payer := totals[payment.PayerID]
			payer.TotalPaid = payer.TotalPaid.Add(payment.Value)
		}
	}
}

func roundNet(net map[int64]map[int64]decimal.Decimal) map[int64]map[int64]decimal.Decimal {
	rounded := make(map[int64]map[int64]decimal.Decimal, len(net))
	for creditor, owed := range net {
		row := make(map[int64]decimal.Decimal, len(owed))
		for debtor, amount := range owed {
			value := money.Round2(amount)
			// sub-cent residue must not surface as an "owes 0" entry
			if value.IsPositive() {
				row[debtor] = value
			}
		}
		if len(row) > 0 {
			rounded[creditor] = row
		}
	}
	return rounded
}
