package ticket

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
)

func money(s string) types.Money {
	return types.MustMoney(s)
}

func vat21() decimal.Decimal {
	return decimal.RequireFromString("0.21")
}

func newTestTicket() *Ticket {
	return NewTicket(id.New(), id.New())
}

func TestTicket_Totals_TaxInclusive(t *testing.T) {
	tk := newTestTicket()
	tk.AddLine(id.New(), id.New(), id.New(), "consultation", decimal.NewFromInt(1), money("121.00"), vat21())

	if !tk.TotalGross.Equal(money("121.00")) {
		t.Errorf("gross = %s, want 121.00", tk.TotalGross)
	}
	if !tk.Total.Equal(money("121.00")) {
		t.Errorf("total = %s, want 121.00", tk.Total)
	}
	// 121.00 * 0.21 / 1.21 = 21.00
	if !tk.TotalTax.Equal(money("21.00")) {
		t.Errorf("tax = %s, want 21.00", tk.TotalTax)
	}
}

func TestTicket_ApplyDiscount(t *testing.T) {
	tk := newTestTicket()
	tk.AddLine(id.New(), id.New(), id.New(), "", decimal.NewFromInt(3), money("33.33"), vat21())

	if err := tk.ApplyDiscount(1, "manual", money("10.00")); err != nil {
		t.Fatalf("ApplyDiscount: %v", err)
	}

	if !tk.TotalGross.Equal(money("99.99")) {
		t.Errorf("gross = %s, want 99.99", tk.TotalGross)
	}
	if !tk.TotalDiscount.Equal(money("10.00")) {
		t.Errorf("discount = %s, want 10.00", tk.TotalDiscount)
	}
	if !tk.Total.Equal(money("89.99")) {
		t.Errorf("total = %s, want 89.99", tk.Total)
	}
}

func TestTicket_ApplyDiscount_Bounds(t *testing.T) {
	tk := newTestTicket()
	tk.AddLine(id.New(), id.New(), id.New(), "", decimal.NewFromInt(1), money("50.00"), vat21())

	if err := tk.ApplyDiscount(1, "manual", money("50.01")); err == nil {
		t.Error("expected error for discount above line total")
	}
	if err := tk.ApplyDiscount(1, "manual", money("-1.00")); err == nil {
		t.Error("expected error for negative discount")
	}
	if err := tk.ApplyDiscount(2, "manual", money("1.00")); err == nil {
		t.Error("expected error for unknown line")
	}
}

// Per line the event must satisfy revenue - discount + tax = payable amount,
// so the resulting journal entry balances regardless of rounding.
func TestTicket_ToEvent_LineAnchoring(t *testing.T) {
	cases := []struct {
		name     string
		qty      string
		price    string
		rate     string
		discount string
	}{
		{"round amounts", "1", "121.00", "0.21", "0"},
		{"repeating fraction", "3", "33.33", "0.21", "0"},
		{"discounted", "3", "33.33", "0.21", "10.00"},
		{"reduced rate", "7", "4.55", "0.10", "1.23"},
		{"exempt", "2", "19.99", "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := newTestTicket()
			tk.AddLine(id.New(), id.New(), id.New(), "",
				decimal.RequireFromString(tc.qty),
				money(tc.price),
				decimal.RequireFromString(tc.rate))
			if tc.discount != "0" {
				if err := tk.ApplyDiscount(1, "manual", money(tc.discount)); err != nil {
					t.Fatalf("ApplyDiscount: %v", err)
				}
			}

			ev := tk.ToEvent()

			sum := types.Zero()
			for _, r := range ev.Revenue {
				sum = sum.Add(r.Amount)
			}
			for _, tax := range ev.Taxes {
				sum = sum.Add(tax.Amount)
			}
			for _, d := range ev.Discounts {
				sum = sum.Sub(d.Amount)
			}

			if !sum.Equal(tk.Total) {
				t.Errorf("revenue+tax-discount = %s, want total %s", sum, tk.Total)
			}
		})
	}
}

func TestTicket_ToEvent_Pending(t *testing.T) {
	clientID := id.New()
	tk := newTestTicket()
	tk.ClientID = &clientID
	tk.AddLine(id.New(), id.New(), id.New(), "", decimal.NewFromInt(1), money("100.00"), vat21())
	tk.AddPayment(id.New(), money("60.00"))

	ev := tk.ToEvent()

	if !ev.Pending.Equal(money("40.00")) {
		t.Errorf("pending = %s, want 40.00", ev.Pending)
	}
	if len(ev.Payments) != 1 || !ev.Payments[0].Amount.Equal(money("60.00")) {
		t.Errorf("payments = %+v, want one split of 60.00", ev.Payments)
	}
}

func TestTicket_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("no lines", func(t *testing.T) {
		tk := newTestTicket()
		if err := tk.Validate(ctx); err == nil {
			t.Error("expected error for empty ticket")
		}
	})

	t.Run("pending without client", func(t *testing.T) {
		tk := newTestTicket()
		tk.AddLine(id.New(), id.New(), id.New(), "", decimal.NewFromInt(1), money("50.00"), vat21())
		tk.AddPayment(id.New(), money("20.00"))
		if err := tk.Validate(ctx); err == nil {
			t.Error("expected error for deferred payment without client")
		}
	})

	t.Run("overpaid", func(t *testing.T) {
		tk := newTestTicket()
		tk.AddLine(id.New(), id.New(), id.New(), "", decimal.NewFromInt(1), money("50.00"), vat21())
		tk.AddPayment(id.New(), money("60.00"))
		if err := tk.Validate(ctx); err == nil {
			t.Error("expected error for payments above total")
		}
	})

	t.Run("fully paid walk-in", func(t *testing.T) {
		tk := newTestTicket()
		tk.AddLine(id.New(), id.New(), id.New(), "", decimal.NewFromInt(1), money("50.00"), vat21())
		tk.AddPayment(id.New(), money("50.00"))
		if err := tk.Validate(ctx); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})
}
