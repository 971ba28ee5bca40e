package cashsession

import (
	"context"
	"testing"
	"time"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
)

func TestCashSession_Difference(t *testing.T) {
	cs := NewCashSession(id.New(), id.New(), id.New(), types.MustMoney("100.00"))
	cs.ExpectedCash = types.MustMoney("350.00")

	cs.CountedCash = types.MustMoney("348.50")
	if got := cs.Difference(); !got.Equal(types.MustMoney("-1.50")) {
		t.Errorf("difference = %s, want -1.50 (short)", got)
	}

	cs.CountedCash = types.MustMoney("351.00")
	if got := cs.Difference(); !got.Equal(types.MustMoney("1.00")) {
		t.Errorf("difference = %s, want 1.00 (over)", got)
	}

	cs.CountedCash = types.MustMoney("350.00")
	if !cs.Difference().IsZero() {
		t.Errorf("difference = %s, want zero", cs.Difference())
	}
}

func TestCashSession_IsOpen(t *testing.T) {
	cs := NewCashSession(id.New(), id.New(), id.New(), types.Zero())
	if !cs.IsOpen() {
		t.Error("new session should be open")
	}

	closedAt := time.Now().UTC()
	cs.ClosedAt = &closedAt
	if cs.IsOpen() {
		t.Error("session with close time should not be open")
	}
}

func TestCashSession_Validate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		cs := NewCashSession(id.New(), id.New(), id.New(), types.MustMoney("50.00"))
		if err := cs.Validate(ctx); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("negative opening float", func(t *testing.T) {
		cs := NewCashSession(id.New(), id.New(), id.New(), types.MustMoney("-1.00"))
		if err := cs.Validate(ctx); err == nil {
			t.Error("expected error for negative opening float")
		}
	})

	t.Run("missing opening user", func(t *testing.T) {
		cs := NewCashSession(id.New(), id.New(), id.Nil(), types.Zero())
		if err := cs.Validate(ctx); err == nil {
			t.Error("expected error for missing opening user")
		}
	})

	t.Run("close before open", func(t *testing.T) {
		cs := NewCashSession(id.New(), id.New(), id.New(), types.Zero())
		closedAt := cs.OpenedAt.Add(-time.Minute)
		cs.ClosedAt = &closedAt
		if err := cs.Validate(ctx); err == nil {
			t.Error("expected error for close time before open time")
		}
	})
}
