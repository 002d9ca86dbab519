package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MemberSummary is one member's line in consumer_total: raw consumption
// totals plus the reconciled balance fields. Members with zero activity get
// an all-zero record, never a missing key.
type MemberSummary struct {
	FullName string          `json:"full_name"`
	Weight   decimal.Decimal `json:"weight"`

	// Consumption totals. Shared and PartialShared track gross exposure:
	// the full item price is added per consumer, per-capita division only
	// happens in the pairwise debt calculation.
	Shared          decimal.Decimal `json:"shared"`
	PartialShared   decimal.Decimal `json:"partial_shared"`
	Individual      decimal.Decimal `json:"individual"`
	TotalPaidShared decimal.Decimal `json:"total_paid_shared"`

	// Balance fields. Positive Balance means the member fronted more than
	// their weighted fair share of the shared pool.
	ExpectedTotalPaid decimal.Decimal `json:"expected_total_paid"`
	Balance           decimal.Decimal `json:"balance"`
	TotalToReceive    decimal.Decimal `json:"total_to_receive"`
	TotalToPay        decimal.Decimal `json:"total_to_pay"`
	FinalBalance      decimal.Decimal `json:"final_balance"`

	// TotalPaid is the member's payment volume across the regarding,
	// independent of the balance math, kept for display.
	TotalPaid decimal.Decimal `json:"total_paid"`
}

// GeneralTotal aggregates the whole regarding, with payment value broken
// down per payment status.
type GeneralTotal struct {
	TotalExpenses   decimal.Decimal `json:"total_expenses"`
	TotalPayments   decimal.Decimal `json:"total_payments"`
	TotalValidation decimal.Decimal `json:"total_validation"`
	TotalOpen       decimal.Decimal `json:"total_open"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalOverdue    decimal.Decimal `json:"total_overdue"`
}

// Summary is the engine's full result for one regarding. All maps are keyed
// by member id; display names are resolved only at the serialization
// boundary via MemberVsMemberByName.
type Summary struct {
	GeneralTotal  GeneralTotal             `json:"general_total"`
	ConsumerTotal map[int64]*MemberSummary `json:"consumer_total"`

	// TotalByDay buckets expense cost by calendar day of month.
	TotalByDay map[int]decimal.Decimal `json:"total_by_day"`

	// MemberVsMember[creditor][debtor] is the strictly positive net amount
	// the debtor still owes the creditor, rounded to two places.
	MemberVsMember map[int64]map[int64]decimal.Decimal `json:"total_member_vs_member"`
}

// MemberVsMemberByName projects the net debt matrix onto display names for
// presentation. Colliding names are disambiguated by appending the member id
// so two members sharing a full name cannot merge their debts.
func (s *Summary) MemberVsMemberByName() map[string]map[string]decimal.Decimal {
	names := make(map[int64]string, len(s.ConsumerTotal))
	seen := make(map[string]int64, len(s.ConsumerTotal))
	for id, member := range s.ConsumerTotal {
		names[id] = member.FullName
	}
	for id, name := range names {
		if other, ok := seen[name]; ok {
			names[id] = fmt.Sprintf("%s (#%d)", name, id)
			names[other] = fmt.Sprintf("%s (#%d)", name, other)
		} else {
			seen[name] = id
		}
	}

	byName := make(map[string]map[string]decimal.Decimal, len(s.MemberVsMember))
	for creditor, debts := range s.MemberVsMember {
		row := make(map[string]decimal.Decimal, len(debts))
		for debtor, amount := range debts {
			row[names[debtor]] = amount
		}
		byName[names[creditor]] = row
	}
	return byName
}
