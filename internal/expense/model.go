package expense

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/settlement"
)

// Expense represents an expense in the system, owned by one regarding
type Expense struct {
	ID          int64           `json:"id"`
	RegardingID int64           `json:"regarding_id"`
	Name        string          `json:"name"`
	Date        time.Time       `json:"date"`
	Cost        decimal.Decimal `json:"cost"`
	CreatedAt   time.Time       `json:"created_at"`

	Items    []*Item    `json:"items,omitempty"`
	Payments []*Payment `json:"payments,omitempty"`
}

// Item is a purchased line within an expense, attributed to a non-empty
// subset of the group's members
type Item struct {
	ID          int64           `json:"id"`
	ExpenseID   int64           `json:"expense_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ConsumerIDs []int64         `json:"consumer_ids"`
}

// Payment records that one member paid a value toward an expense
type Payment struct {
	ID        int64                    `json:"id"`
	ExpenseID int64                    `json:"expense_id"`
	PayerID   int64                    `json:"payer_id"`
	Value     decimal.Decimal          `json:"value"`
	Status    settlement.PaymentStatus `json:"payment_status"`
	CreatedAt time.Time                `json:"created_at"`
}

// ToSettlement converts a loaded expense tree to the settlement engine's
// input type
func (e *Expense) ToSettlement() settlement.Expense {
	out := settlement.Expense{
		ID:   e.ID,
		Cost: e.Cost,
		Date: e.Date,
	}
	for _, item := range e.Items {
		out.Items = append(out.Items, settlement.Item{
			ID:          item.ID,
			ExpenseID:   item.ExpenseID,
			Price:       item.Price,
			ConsumerIDs: item.ConsumerIDs,
		})
	}
	for _, payment := range e.Payments {
		out.Payments = append(out.Payments, settlement.Payment{
			ID:      payment.ID,
			PayerID: payment.PayerID,
			Value:   payment.Value,
			Status:  payment.Status,
		})
	}
	return out
}

// ToSettlementExpenses converts a loaded expense list in one call
func ToSettlementExpenses(expenses []*Expense) []settlement.Expense {
	out := make([]settlement.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.ToSettlement())
	}
	return out
}
