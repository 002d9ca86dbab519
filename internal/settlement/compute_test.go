package settlement

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func member(id int64, name, weight string) Membership {
	return Membership{MemberID: id, FullName: name, Weight: dec(weight)}
}

func expectDecimal(t *testing.T, got decimal.Decimal, want string, field string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}

var testDate = time.Date(2023, time.May, 14, 0, 0, 0, 0, time.UTC)

func TestComputePureSharedSplit(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "1"),
			member(2, "Bruno Costa", "1"),
		},
		Expenses: []Expense{{
			ID:   10,
			Cost: dec("100.00"),
			Date: testDate,
			Items: []Item{
				{ID: 100, ExpenseID: 10, Price: dec("100.00"), ConsumerIDs: []int64{1, 2}},
			},
			Payments: []Payment{
				{ID: 1000, PayerID: 1, Value: dec("100.00"), Status: PaymentStatusPaid},
			},
		}},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	alice := summary.ConsumerTotal[1]
	bruno := summary.ConsumerTotal[2]
	expectDecimal(t, alice.Shared, "100.00", "shared[alice]")
	expectDecimal(t, bruno.Shared, "100.00", "shared[bruno]")
	expectDecimal(t, alice.TotalPaidShared, "100.00", "total_paid_shared[alice]")
	expectDecimal(t, alice.ExpectedTotalPaid, "50", "expected_total_paid[alice]")
	expectDecimal(t, bruno.ExpectedTotalPaid, "50", "expected_total_paid[bruno]")
	expectDecimal(t, alice.Balance, "50.00", "balance[alice]")
	expectDecimal(t, bruno.Balance, "-50.00", "balance[bruno]")
	expectDecimal(t, alice.TotalToReceive, "50.00", "total_to_receive[alice]")
	expectDecimal(t, bruno.TotalToPay, "50.00", "total_to_pay[bruno]")
	expectDecimal(t, alice.FinalBalance, "50.00", "final_balance[alice]")
	expectDecimal(t, bruno.FinalBalance, "-50.00", "final_balance[bruno]")
	expectDecimal(t, alice.TotalPaid, "100.00", "total_paid[alice]")

	expectDecimal(t, summary.MemberVsMember[1][2], "50.00", "member_vs_member[alice][bruno]")
	if _, ok := summary.MemberVsMember[2]; ok {
		t.Errorf("member_vs_member has a row for the debtor: %v", summary.MemberVsMember[2])
	}

	expectDecimal(t, summary.GeneralTotal.TotalExpenses, "100.00", "general.total_expenses")
	expectDecimal(t, summary.GeneralTotal.TotalPayments, "100.00", "general.total_payments")
	expectDecimal(t, summary.GeneralTotal.TotalPaid, "100.00", "general.total_paid")
	expectDecimal(t, summary.TotalByDay[14], "100.00", "total_by_day[14]")
}

func TestComputeIndividualItem(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "1"),
			member(2, "Bruno Costa", "1"),
		},
		Expenses: []Expense{{
			ID:   10,
			Cost: dec("30.00"),
			Date: testDate,
			Items: []Item{
				{ID: 100, ExpenseID: 10, Price: dec("30.00"), ConsumerIDs: []int64{2}},
			},
			Payments: []Payment{
				{ID: 1000, PayerID: 1, Value: dec("30.00"), Status: PaymentStatusAwaitingPayment},
			},
		}},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	expectDecimal(t, summary.ConsumerTotal[2].Individual, "30.00", "individual[bruno]")
	expectDecimal(t, summary.MemberVsMember[1][2], "30.00", "member_vs_member[alice][bruno]")
	expectDecimal(t, summary.ConsumerTotal[1].Shared, "0", "shared[alice]")
	expectDecimal(t, summary.GeneralTotal.TotalOpen, "30.00", "general.total_open")
}

func TestComputePartialItem(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "1"),
			member(2, "Bruno Costa", "1"),
			member(3, "Carla Dias", "1"),
		},
		Expenses: []Expense{{
			ID:   10,
			Cost: dec("90.00"),
			Date: testDate,
			Items: []Item{
				{ID: 100, ExpenseID: 10, Price: dec("90.00"), ConsumerIDs: []int64{1, 2}},
			},
			Payments: []Payment{
				{ID: 1000, PayerID: 3, Value: dec("90.00"), Status: PaymentStatusPaid},
			},
		}},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// Gross exposure: the full price per consumer, per-capita division only
	// in the debts.
	expectDecimal(t, summary.ConsumerTotal[1].PartialShared, "90.00", "partial_shared[alice]")
	expectDecimal(t, summary.ConsumerTotal[2].PartialShared, "90.00", "partial_shared[bruno]")
	expectDecimal(t, summary.ConsumerTotal[3].PartialShared, "0", "partial_shared[carla]")
	expectDecimal(t, summary.MemberVsMember[3][1], "45.00", "member_vs_member[carla][alice]")
	expectDecimal(t, summary.MemberVsMember[3][2], "45.00", "member_vs_member[carla][bruno]")
}

func TestComputeWeightedSharedSplit(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "2"),
			member(2, "Bruno Costa", "1"),
		},
		Expenses: []Expense{{
			ID:   10,
			Cost: dec("90.00"),
			Date: testDate,
			Items: []Item{
				{ID: 100, ExpenseID: 10, Price: dec("90.00"), ConsumerIDs: []int64{1, 2}},
			},
			Payments: []Payment{
				{ID: 1000, PayerID: 1, Value: dec("90.00"), Status: PaymentStatusPaid},
			},
		}},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	expectDecimal(t, summary.MemberVsMember[1][2], "30.00", "member_vs_member[alice][bruno]")
	expectDecimal(t, summary.ConsumerTotal[1].ExpectedTotalPaid, "60", "expected_total_paid[alice]")
	expectDecimal(t, summary.ConsumerTotal[2].ExpectedTotalPaid, "30", "expected_total_paid[bruno]")
	expectDecimal(t, summary.ConsumerTotal[1].Balance, "30.00", "balance[alice]")
	expectDecimal(t, summary.ConsumerTotal[2].Balance, "-30.00", "balance[bruno]")
}

func TestComputeMutualDebtsCancel(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "1"),
			member(2, "Bruno Costa", "1"),
		},
		Expenses: []Expense{
			{
				ID: 10, Cost: dec("30.00"), Date: testDate,
				Items:    []Item{{ID: 100, ExpenseID: 10, Price: dec("30.00"), ConsumerIDs: []int64{2}}},
				Payments: []Payment{{ID: 1000, PayerID: 1, Value: dec("30.00"), Status: PaymentStatusPaid}},
			},
			{
				ID: 11, Cost: dec("30.00"), Date: testDate,
				Items:    []Item{{ID: 101, ExpenseID: 11, Price: dec("30.00"), ConsumerIDs: []int64{1}}},
				Payments: []Payment{{ID: 1001, PayerID: 2, Value: dec("30.00"), Status: PaymentStatusPaid}},
			},
		},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// Equal opposing debts must vanish entirely, not show up as zero rows.
	if len(summary.MemberVsMember) != 0 {
		t.Errorf("member_vs_member = %v, want empty", summary.MemberVsMember)
	}
	expectDecimal(t, summary.ConsumerTotal[1].FinalBalance, "0.00", "final_balance[alice]")
	expectDecimal(t, summary.ConsumerTotal[2].FinalBalance, "0.00", "final_balance[bruno]")
}

func TestComputeFirstPaymentAttribution(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "1"),
			member(2, "Bruno Costa", "1"),
		},
		Expenses: []Expense{{
			ID:   10,
			Cost: dec("40.00"),
			Date: testDate,
			Items: []Item{
				{ID: 100, ExpenseID: 10, Price: dec("40.00"), ConsumerIDs: []int64{2}},
			},
			// Out-of-order slice: the lowest id is the attributed payer.
			Payments: []Payment{
				{ID: 1001, PayerID: 2, Value: dec("20.00"), Status: PaymentStatusPaid},
				{ID: 1000, PayerID: 1, Value: dec("20.00"), Status: PaymentStatusPaid},
			},
		}},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	expectDecimal(t, summary.MemberVsMember[1][2], "40.00", "member_vs_member[alice][bruno]")
	// total_paid still counts every payment for its own payer.
	expectDecimal(t, summary.ConsumerTotal[1].TotalPaid, "20.00", "total_paid[alice]")
	expectDecimal(t, summary.ConsumerTotal[2].TotalPaid, "20.00", "total_paid[bruno]")
}

func TestComputeNoSelfDebt(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "1"),
			member(2, "Bruno Costa", "1"),
		},
		Expenses: []Expense{{
			ID:   10,
			Cost: dec("25.00"),
			Date: testDate,
			Items: []Item{
				{ID: 100, ExpenseID: 10, Price: dec("25.00"), ConsumerIDs: []int64{1}},
			},
			Payments: []Payment{
				{ID: 1000, PayerID: 1, Value: dec("25.00"), Status: PaymentStatusPaid},
			},
		}},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	if len(summary.MemberVsMember) != 0 {
		t.Errorf("member_vs_member = %v, want empty (payer consumed their own item)", summary.MemberVsMember)
	}
	expectDecimal(t, summary.ConsumerTotal[1].Individual, "25.00", "individual[alice]")
}

func TestComputeEmptyRegarding(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "1"),
			member(2, "Bruno Costa", "0"),
		},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// Zero-valued result, never a "no data" error, even with broken
	// weights: the weight check only applies once there is something to
	// allocate.
	if len(summary.ConsumerTotal) != 2 {
		t.Fatalf("consumer_total has %d members, want 2", len(summary.ConsumerTotal))
	}
	for id, member := range summary.ConsumerTotal {
		expectDecimal(t, member.Shared, "0", "shared")
		expectDecimal(t, member.FinalBalance, "0", "final_balance")
		if member.FullName == "" {
			t.Errorf("member %d has no full name", id)
		}
	}
	if len(summary.TotalByDay) != 0 || len(summary.MemberVsMember) != 0 {
		t.Errorf("expected empty maps, got %v / %v", summary.TotalByDay, summary.MemberVsMember)
	}
	expectDecimal(t, summary.GeneralTotal.TotalExpenses, "0", "general.total_expenses")
}

func TestComputeErrors(t *testing.T) {
	base := func() *Input {
		return &Input{
			Memberships: []Membership{
				member(1, "Alice Silva", "1"),
				member(2, "Bruno Costa", "1"),
			},
			Expenses: []Expense{{
				ID:   10,
				Cost: dec("10.00"),
				Date: testDate,
				Items: []Item{
					{ID: 100, ExpenseID: 10, Price: dec("10.00"), ConsumerIDs: []int64{1, 2}},
				},
				Payments: []Payment{
					{ID: 1000, PayerID: 1, Value: dec("10.00"), Status: PaymentStatusPaid},
				},
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Input)
		wantErr error
	}{
		{
			name:    "consumer not a member",
			mutate:  func(in *Input) { in.Expenses[0].Items[0].ConsumerIDs = []int64{1, 99} },
			wantErr: ErrInputInconsistency,
		},
		{
			name:    "payer not a member",
			mutate:  func(in *Input) { in.Expenses[0].Payments[0].PayerID = 99 },
			wantErr: ErrInputInconsistency,
		},
		{
			name:    "item without consumers",
			mutate:  func(in *Input) { in.Expenses[0].Items[0].ConsumerIDs = nil },
			wantErr: ErrInputInconsistency,
		},
		{
			name: "zero aggregate weight with expenses",
			mutate: func(in *Input) {
				in.Memberships[0].Weight = dec("0")
				in.Memberships[1].Weight = dec("0")
			},
			wantErr: ErrNoPositiveWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(in)
			_, err := NewEngine().Compute(in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComputeConservation(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "2"),
			member(2, "Bruno Costa", "1"),
			member(3, "Carla Dias", "1"),
		},
		Expenses: []Expense{
			{
				ID: 10, Cost: dec("120.00"), Date: testDate,
				Items:    []Item{{ID: 100, ExpenseID: 10, Price: dec("120.00"), ConsumerIDs: []int64{1, 2, 3}}},
				Payments: []Payment{{ID: 1000, PayerID: 2, Value: dec("120.00"), Status: PaymentStatusPaid}},
			},
			{
				ID: 11, Cost: dec("50.00"), Date: testDate.AddDate(0, 0, 3),
				Items:    []Item{{ID: 101, ExpenseID: 11, Price: dec("50.00"), ConsumerIDs: []int64{1, 3}}},
				Payments: []Payment{{ID: 1001, PayerID: 1, Value: dec("50.00"), Status: PaymentStatusAwaitingValidation}},
			},
			{
				ID: 12, Cost: dec("18.00"), Date: testDate.AddDate(0, 0, 3),
				Items:    []Item{{ID: 102, ExpenseID: 12, Price: dec("18.00"), ConsumerIDs: []int64{2}}},
				Payments: []Payment{{ID: 1002, PayerID: 3, Value: dec("18.00"), Status: PaymentStatusOverdue}},
			},
		},
	}

	summary, err := NewEngine().Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	total := decimal.Zero
	for _, member := range summary.ConsumerTotal {
		total = total.Add(member.FinalBalance)
	}
	if !total.IsZero() {
		t.Errorf("sum(final_balance) = %s, want 0", total)
	}

	for creditor, owed := range summary.MemberVsMember {
		for debtor, amount := range owed {
			if !amount.IsPositive() {
				t.Errorf("member_vs_member[%d][%d] = %s, want strictly positive", creditor, debtor, amount)
			}
		}
	}

	// Both same-day expenses land in one bucket.
	expectDecimal(t, summary.TotalByDay[14], "120.00", "total_by_day[14]")
	expectDecimal(t, summary.TotalByDay[17], "68.00", "total_by_day[17]")
}

func TestComputeIdempotence(t *testing.T) {
	in := &Input{
		Memberships: []Membership{
			member(1, "Alice Silva", "2"),
			member(2, "Bruno Costa", "1"),
			member(3, "Carla Dias", "1"),
		},
		Expenses: []Expense{{
			ID: 10, Cost: dec("99.99"), Date: testDate,
			Items: []Item{
				{ID: 100, ExpenseID: 10, Price: dec("59.99"), ConsumerIDs: []int64{1, 2, 3}},
				{ID: 101, ExpenseID: 10, Price: dec("40.00"), ConsumerIDs: []int64{2, 3}},
			},
			Payments: []Payment{{ID: 1000, PayerID: 1, Value: dec("99.99"), Status: PaymentStatusPaid}},
		}},
	}

	engine := NewEngine()
	first, err := engine.Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	second, err := engine.Compute(in)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("repeated computation diverged:\n%s\n%s", a, b)
	}
}
