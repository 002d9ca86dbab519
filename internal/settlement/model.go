package settlement

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle status of a payment
type PaymentStatus string

const (
	PaymentStatusAwaitingValidation PaymentStatus = "VALIDATION"
	PaymentStatusAwaitingPayment    PaymentStatus = "AWAITING"
	PaymentStatusPaid               PaymentStatus = "PAID"
	PaymentStatusOverdue            PaymentStatus = "OVERDUE"
)

// Membership is one member's participation in the group as of computation
// time; the weight scales their share of communally shared costs.
type Membership struct {
	MemberID int64
	FullName string
	Weight   decimal.Decimal
}

// Payment records that one member paid a value toward an expense.
type Payment struct {
	ID      int64
	PayerID int64
	Value   decimal.Decimal
	Status  PaymentStatus
}

// Item is a priced line within an expense, consumed by a non-empty subset
// of the group's members.
type Item struct {
	ID          int64
	ExpenseID   int64
	Price       decimal.Decimal
	ConsumerIDs []int64
}

// Expense belongs to one regarding and owns its items and payments.
// Payments are expected in creation order (ascending id).
type Expense struct {
	ID       int64
	Cost     decimal.Decimal
	Date     time.Time
	Items    []Item
	Payments []Payment
}

// Input is a consistent point-in-time view of everything the engine needs
// for one regarding. Callers are responsible for reading it transactionally;
// the engine itself is a pure function over it.
type Input struct {
	Memberships []Membership
	Expenses    []Expense
}

func (in *Input) memberIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(in.Memberships))
	for _, m := range in.Memberships {
		ids[m.MemberID] = struct{}{}
	}
	return ids
}
