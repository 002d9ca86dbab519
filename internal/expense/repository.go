package expense

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/database"
)

// Repository loads expense trees for the settlement engine. It holds a DBTX
// so the regarding store can scope it to the transaction that guarantees a
// consistent view of expenses, items and payments.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new expense repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// ListByRegarding retrieves all expenses of a regarding with their items,
// item consumers and payments. Payments come back in creation order so the
// first-payment payer policy is deterministic.
func (r *Repository) ListByRegarding(ctx context.Context, regardingID int64) ([]*Expense, error) {
	expenses, err := r.listExpenses(ctx, regardingID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	byID := make(map[int64]*Expense, len(expenses))
	ids := make([]int64, 0, len(expenses))
	for _, e := range expenses {
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	if err := r.attachItems(ctx, byID, ids); err != nil {
		return nil, err
	}
	if err := r.attachPayments(ctx, byID, ids); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *Repository) listExpenses(ctx context.Context, regardingID int64) ([]*Expense, error) {
	query := `
		SELECT id, regarding_id, name, date, cost, created_at
		FROM expenses
		WHERE regarding_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, regardingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.RegardingID,
			&expense.Name,
			&expense.Date,
			&expense.Cost,
			&expense.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

func (r *Repository) attachItems(ctx context.Context, byID map[int64]*Expense, expenseIDs []int64) error {
	query := `
		SELECT i.id, i.expense_id, i.name, i.price,
		       COALESCE(ARRAY_AGG(ic.user_id) FILTER (WHERE ic.user_id IS NOT NULL), '{}') AS consumer_ids
		FROM items i
		LEFT JOIN item_consumers ic ON ic.item_id = i.id
		WHERE i.expense_id = ANY($1)
		GROUP BY i.id
		ORDER BY i.id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(expenseIDs))
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &Item{}
		var consumerIDs pq.Int64Array
		if err := rows.Scan(&item.ID, &item.ExpenseID, &item.Name, &item.Price, &consumerIDs); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		item.ConsumerIDs = consumerIDs
		if expense, ok := byID[item.ExpenseID]; ok {
			expense.Items = append(expense.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	return nil
}

func (r *Repository) attachPayments(ctx context.Context, byID map[int64]*Expense, expenseIDs []int64) error {
	query := `
		SELECT id, expense_id, payer_id, value, payment_status, created_at
		FROM payments
		WHERE expense_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(expenseIDs))
	if err != nil {
		return fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		payment := &Payment{}
		if err := rows.Scan(
			&payment.ID,
			&payment.ExpenseID,
			&payment.PayerID,
			&payment.Value,
			&payment.Status,
			&payment.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan payment: %w", err)
		}
		if expense, ok := byID[payment.ExpenseID]; ok {
			expense.Payments = append(expense.Payments, payment)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payments: %w", err)
	}

	return nil
}
