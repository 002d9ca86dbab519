package regarding

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/expense"
	"github.com/LucasMoraesMarques/ExpenseManager/internal/group"
	"github.com/LucasMoraesMarques/ExpenseManager/internal/settlement"
)

// Repository is the postgres-backed Store. Input loading always happens
// inside a repeatable-read transaction so the engine sees expenses, items,
// payments and memberships as of one point in time.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new regarding repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a regarding by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Regarding, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *Repository) getByID(ctx context.Context, q queryRower, id int64) (*Regarding, error) {
	query := `
		SELECT id, group_id, name, description, start_date, end_date, is_closed, balance_json, created_at
		FROM regardings
		WHERE id = $1
	`

	regarding := &Regarding{}
	err := q.QueryRowContext(ctx, query, id).Scan(
		&regarding.ID,
		&regarding.GroupID,
		&regarding.Name,
		&regarding.Description,
		&regarding.StartDate,
		&regarding.EndDate,
		&regarding.IsClosed,
		&regarding.BalanceJSON,
		&regarding.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get regarding: %w", err)
	}

	return regarding, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LoadInput reads the full engine input for a regarding within a read-only
// repeatable-read transaction.
func (r *Repository) LoadInput(ctx context.Context, id int64) (*settlement.Input, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer tx.Rollback()

	regarding, err := r.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if regarding == nil {
		return nil, ErrRegardingNotFound
	}

	input, err := loadInput(ctx, tx, regarding)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit read transaction: %w", err)
	}

	return input, nil
}

// Close atomically reads the regarding's inputs, runs build to produce the
// snapshot, persists it and marks the regarding closed. The row is locked
// for the duration so concurrent expense edits cannot produce a half-written
// snapshot.
func (r *Repository) Close(ctx context.Context, id int64, build BuildFunc) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("failed to begin close transaction: %w", err)
	}
	defer tx.Rollback()

	lock := `SELECT id, group_id, is_closed FROM regardings WHERE id = $1 FOR UPDATE`
	regarding := &Regarding{}
	err = tx.QueryRowContext(ctx, lock, id).Scan(&regarding.ID, &regarding.GroupID, &regarding.IsClosed)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRegardingNotFound
		}
		return fmt.Errorf("failed to lock regarding: %w", err)
	}
	if regarding.IsClosed {
		return ErrAlreadyClosed
	}

	input, err := loadInput(ctx, tx, regarding)
	if err != nil {
		return err
	}

	data, err := build(input)
	if err != nil {
		return err
	}

	update := `UPDATE regardings SET balance_json = $1, is_closed = TRUE WHERE id = $2`
	if _, err := tx.ExecContext(ctx, update, data, id); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit close transaction: %w", err)
	}

	return nil
}

// ListOpenEndedBefore retrieves open regardings whose end date has passed.
func (r *Repository) ListOpenEndedBefore(ctx context.Context, day time.Time) ([]*Regarding, error) {
	query := `
		SELECT id, group_id, name, description, start_date, end_date, is_closed, balance_json, created_at
		FROM regardings
		WHERE NOT is_closed AND end_date IS NOT NULL AND end_date < $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list open regardings: %w", err)
	}
	defer rows.Close()

	var regardings []*Regarding
	for rows.Next() {
		regarding := &Regarding{}
		if err := rows.Scan(
			&regarding.ID,
			&regarding.GroupID,
			&regarding.Name,
			&regarding.Description,
			&regarding.StartDate,
			&regarding.EndDate,
			&regarding.IsClosed,
			&regarding.BalanceJSON,
			&regarding.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan regarding: %w", err)
		}
		regardings = append(regardings, regarding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate regardings: %w", err)
	}

	return regardings, nil
}

// loadInput assembles the engine input from the membership and expense
// repositories scoped to the given transaction.
func loadInput(ctx context.Context, tx *sql.Tx, regarding *Regarding) (*settlement.Input, error) {
	memberships, err := group.NewRepository(tx).ListMemberships(ctx, regarding.GroupID)
	if err != nil {
		return nil, err
	}
	expenses, err := expense.NewRepository(tx).ListByRegarding(ctx, regarding.ID)
	if err != nil {
		return nil, err
	}

	input := &settlement.Input{
		Memberships: make([]settlement.Membership, 0, len(memberships)),
		Expenses:    expense.ToSettlementExpenses(expenses),
	}
	for _, m := range memberships {
		input.Memberships = append(input.Memberships, m.ToSettlement())
	}
	return input, nil
}
