package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/money"
)

// reconcile fills the balance fields of every member record from the
// aggregated totals and the full-precision net debt matrix.
//
// expected_total_paid is the member's weighted fair share of the shared
// pool; balance compares it against what they actually fronted. The
// receive/pay sums aggregate at full precision and round once at the end.
func reconcile(totals map[int64]*MemberSummary, net map[int64]map[int64]decimal.Decimal, totalWeight decimal.Decimal) {
	for memberID, member := range totals {
		member.ExpectedTotalPaid = money.WeightedShare(member.Shared, member.Weight, totalWeight)
		member.Balance = money.Round2(member.TotalPaidShared.Sub(member.ExpectedTotalPaid))

		receive := decimal.Zero
		for _, amount := range net[memberID] {
			receive = receive.Add(amount)
		}
		pay := decimal.Zero
		for _, owed := range net {
			if amount, ok := owed[memberID]; ok {
				pay = pay.Add(amount)
			}
		}

		member.TotalToReceive = money.Round2(receive)
		member.TotalToPay = money.Round2(pay)
		member.FinalBalance = money.Round2(receive.Sub(pay))
	}
}
