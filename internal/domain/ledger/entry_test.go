package ledger

import (
	"testing"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
)

func newTestEntry() *Entry {
	return NewEntry(id.New(), id.New(), SourceTicket, id.New(), time.Now(), "test")
}

func TestEntry_AddLinesKeepsTotalsAndOrder(t *testing.T) {
	e := newTestEntry()
	a1, a2 := id.New(), id.New()

	e.AddCredit(a1, types.MustMoney("150.00"), "revenue")
	e.AddCredit(a1, types.MustMoney("31.50"), "vat")
	e.AddDebit(a2, types.MustMoney("181.50"), "card")
	e.AddDebit(a2, types.Zero(), "skipped")

	if len(e.Lines) != 3 {
		t.Fatalf("expected 3 lines (zero amount skipped), got %d", len(e.Lines))
	}
	for i, line := range e.Lines {
		if line.LineNo != i+1 {
			t.Errorf("line %d has LineNo %d", i, line.LineNo)
		}
	}
	if !e.TotalDebit.Equal(types.MustMoney("181.50")) {
		t.Errorf("total debit = %s", e.TotalDebit)
	}
	if !e.TotalCredit.Equal(types.MustMoney("181.50")) {
		t.Errorf("total credit = %s", e.TotalCredit)
	}
}

func TestEntry_CheckBalance(t *testing.T) {
	account := id.New()

	tests := []struct {
		name   string
		debit  string
		credit string
		ok     bool
	}{
		{"exact", "100.00", "100.00", true},
		{"within tolerance", "100.00", "100.01", true},
		{"beyond tolerance", "100.00", "100.02", false},
		{"grossly off", "100.00", "50.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEntry()
			e.AddDebit(account, types.MustMoney(tt.debit), "")
			e.AddCredit(account, types.MustMoney(tt.credit), "")

			err := e.CheckBalance()
			if tt.ok && err != nil {
				t.Fatalf("expected balanced, got %v", err)
			}
			if !tt.ok {
				appErr, is := apperror.AsAppError(err)
				if !is || appErr.Code != apperror.CodeEntryImbalanced {
					t.Fatalf("expected ENTRY_IMBALANCED, got %v", err)
				}
			}
		})
	}
}
