package group

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/settlement"
)

// MemberRole represents the role of a group member
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Group represents a group in the system
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Membership represents a user's participation in a group. Weight scales the
// member's share of communally shared costs; calculations always read the
// weight as of computation time, there is no historical versioning.
type Membership struct {
	ID        int64           `json:"id"`
	GroupID   int64           `json:"group_id"`
	UserID    int64           `json:"user_id"`
	Role      MemberRole      `json:"role"`
	Weight    decimal.Decimal `json:"weight"`
	CreatedAt time.Time       `json:"created_at"`

	// Populated from JOIN
	FullName string `json:"full_name,omitempty"`
}

// ToSettlement converts to the settlement engine's input type
func (m *Membership) ToSettlement() settlement.Membership {
	return settlement.Membership{
		MemberID: m.UserID,
		FullName: m.FullName,
		Weight:   m.Weight,
	}
}
