package group

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/database"
)

// Repository handles group and membership data access. It holds a DBTX so
// callers can scope it to a transaction when they need a consistent read.
type Repository struct {
	db database.DBTX
}

// NewRepository creates a new group repository
func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT id, name, description, is_active, created_at
		FROM expense_groups
		WHERE id = $1
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.IsActive,
		&group.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// ListMemberships retrieves the current memberships of a group with display
// names assembled from the users table.
func (r *Repository) ListMemberships(ctx context.Context, groupID int64) ([]*Membership, error) {
	query := `
		SELECT m.id, m.group_id, m.user_id, m.role, m.weight, m.created_at,
		       TRIM(u.first_name || ' ' || u.last_name) AS full_name
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var memberships []*Membership
	for rows.Next() {
		membership := &Membership{}
		if err := rows.Scan(
			&membership.ID,
			&membership.GroupID,
			&membership.UserID,
			&membership.Role,
			&membership.Weight,
			&membership.CreatedAt,
			&membership.FullName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return memberships, nil
}

// UpdateWeight changes a membership's weight. Live summaries pick the new
// weight up immediately; closed regardings keep their snapshot.
func (r *Repository) UpdateWeight(ctx context.Context, membershipID int64, weight decimal.Decimal) error {
	query := `UPDATE memberships SET weight = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, weight, membershipID)
	if err != nil {
		return fmt.Errorf("failed to update membership weight: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check membership update: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
