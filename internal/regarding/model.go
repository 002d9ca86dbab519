package regarding

import "time"

// Regarding is a bounded accounting period within a group. While open,
// summaries are recomputed live; once closed, BalanceJSON holds the frozen
// snapshot and is the only source of totals. The open->closed transition is
// one-way.
type Regarding struct {
	ID          int64      `json:"id"`
	GroupID     int64      `json:"group_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsClosed    bool       `json:"is_closed"`
	BalanceJSON []byte     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Ended reports whether the regarding's accounting window has passed as of
// the given day.
func (r *Regarding) Ended(day time.Time) bool {
	return r.EndDate != nil && r.EndDate.Before(day)
}
