package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/LucasMoraesMarques/ExpenseManager/internal/money"
)

// accumulator folds items into per-member consumption totals and the raw
// pairwise debt matrix in a single pass. debts[payer][consumer] is the
// amount the consumer owes the payer before netting.
type accumulator struct {
	totals      map[int64]*MemberSummary
	debts       map[int64]map[int64]decimal.Decimal
	weights     map[int64]decimal.Decimal
	totalWeight decimal.Decimal
}

func newAccumulator(memberships []Membership, totalWeight decimal.Decimal) *accumulator {
	acc := &accumulator{
		totals:      make(map[int64]*MemberSummary, len(memberships)),
		debts:       make(map[int64]map[int64]decimal.Decimal, len(memberships)),
		weights:     make(map[int64]decimal.Decimal, len(memberships)),
		totalWeight: totalWeight,
	}
	for _, m := range memberships {
		acc.totals[m.MemberID] = &MemberSummary{
			FullName: m.FullName,
			Weight:   m.Weight,
		}
		acc.debts[m.MemberID] = make(map[int64]decimal.Decimal)
		acc.weights[m.MemberID] = m.Weight
	}
	return acc
}

// applyItem attributes one item; consumers must already be deduplicated.
// Consumption totals accumulate regardless of payments; the payer-dependent
// parts (total_paid_shared and debts) apply only when the expense has an
// attributed payer.
func (acc *accumulator) applyItem(price decimal.Decimal, consumers []int64, kind Kind, payerID int64, hasPayer bool) {
	switch kind {
	case KindShared:
		for _, totals := range acc.totals {
			totals.Shared = totals.Shared.Add(price)
		}
		if hasPayer {
			payer := acc.totals[payerID]
			payer.TotalPaidShared = payer.TotalPaidShared.Add(price)
			for _, consumerID := range consumers {
				if consumerID == payerID {
					continue
				}
				share := money.WeightedShare(price, acc.weights[consumerID], acc.totalWeight)
				acc.addDebt(payerID, consumerID, share)
			}
		}

	case KindIndividual:
		consumerID := consumers[0]
		consumer := acc.totals[consumerID]
		consumer.Individual = consumer.Individual.Add(price)
		if hasPayer && consumerID != payerID {
			acc.addDebt(payerID, consumerID, price)
		}

	case KindPartial:
		for _, consumerID := range consumers {
			consumer := acc.totals[consumerID]
			consumer.PartialShared = consumer.PartialShared.Add(price)
			if hasPayer && consumerID != payerID {
				acc.addDebt(payerID, consumerID, money.EvenShare(price, len(consumers)))
			}
		}
	}
}

func (acc *accumulator) addDebt(payerID, consumerID int64, amount decimal.Decimal) {
	acc.debts[payerID][consumerID] = acc.debts[payerID][consumerID].Add(amount)
}
