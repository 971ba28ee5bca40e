package debt

import (
	"context"
	"testing"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
)

type memDebtRepo struct {
	movements []entity.DebtMovement
	balances  map[[2]id.ID]types.Money // clinic, client
}

func newMemDebtRepo() *memDebtRepo {
	return &memDebtRepo{balances: make(map[[2]id.ID]types.Money)}
}

func (m *memDebtRepo) CreateMovements(ctx context.Context, movements []entity.DebtMovement) error {
	m.movements = append(m.movements, movements...)
	for _, mv := range movements {
		key := [2]id.ID{mv.ClinicID, mv.ClientID}
		cur, ok := m.balances[key]
		if !ok {
			cur = types.Zero()
		}
		m.balances[key] = cur.Add(mv.SignedAmount())
	}
	return nil
}

func (m *memDebtRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	kept := m.movements[:0]
	for _, mv := range m.movements {
		if mv.RecorderID == recorderID && mv.RecorderVersion < beforeVersion {
			key := [2]id.ID{mv.ClinicID, mv.ClientID}
			m.balances[key] = m.balances[key].Sub(mv.SignedAmount())
			continue
		}
		kept = append(kept, mv)
	}
	m.movements = kept
	return nil
}

func (m *memDebtRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.DebtMovement, error) {
	var out []entity.DebtMovement
	for _, mv := range m.movements {
		if mv.RecorderID == recorderID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *memDebtRepo) GetBalance(ctx context.Context, clinicID, clientID id.ID) (entity.DebtBalance, error) {
	amount, ok := m.balances[[2]id.ID{clinicID, clientID}]
	if !ok {
		amount = types.Zero()
	}
	return entity.DebtBalance{ClinicID: clinicID, ClientID: clientID, Amount: amount}, nil
}

func (m *memDebtRepo) GetBalanceForUpdate(ctx context.Context, clinicID, clientID id.ID) (entity.DebtBalance, error) {
	return m.GetBalance(ctx, clinicID, clientID)
}

func (m *memDebtRepo) GetBalancesByClinic(ctx context.Context, clinicID id.ID, filter BalanceFilter) ([]entity.DebtBalance, error) {
	var out []entity.DebtBalance
	for key, amount := range m.balances {
		if key[0] != clinicID {
			continue
		}
		if filter.ExcludeZero && amount.IsZero() {
			continue
		}
		out = append(out, entity.DebtBalance{ClinicID: key[0], ClientID: key[1], Amount: amount})
	}
	return out, nil
}

func (m *memDebtRepo) GetBalancesByClient(ctx context.Context, clientID id.ID) ([]entity.DebtBalance, error) {
	var out []entity.DebtBalance
	for key, amount := range m.balances {
		if key[1] == clientID {
			out = append(out, entity.DebtBalance{ClinicID: key[0], ClientID: key[1], Amount: amount})
		}
	}
	return out, nil
}

func (m *memDebtRepo) GetBalanceAtDate(ctx context.Context, clinicID, clientID id.ID, date time.Time) (types.Money, error) {
	return types.Zero(), nil
}

func (m *memDebtRepo) GetMovementHistory(ctx context.Context, clientID id.ID, filter MovementFilter) ([]entity.DebtMovement, error) {
	var out []entity.DebtMovement
	for _, mv := range m.movements {
		if mv.ClientID == clientID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *memDebtRepo) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return Turnover{}, nil
}

func (m *memDebtRepo) RecalculateBalances(ctx context.Context, clinicID, clientID *id.ID) error {
	return nil
}

func receipt(recorderID, clinicID, clientID id.ID, amount string) entity.DebtMovement {
	return entity.NewDebtMovement(recorderID, "Ticket", 1, time.Now(), entity.RecordTypeReceipt, clinicID, clientID, types.MustMoney(amount))
}

func collection(recorderID, clinicID, clientID id.ID, amount string) entity.DebtMovement {
	return entity.NewDebtMovement(recorderID, "Payment", 1, time.Now(), entity.RecordTypeExpense, clinicID, clientID, types.MustMoney(amount))
}

func TestService_RecordMovements_Validation(t *testing.T) {
	svc := NewService(newMemDebtRepo())
	ctx := context.Background()

	t.Run("empty batch is a no-op", func(t *testing.T) {
		if err := svc.RecordMovements(ctx, nil); err != nil {
			t.Errorf("RecordMovements: %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		mv := receipt(id.New(), id.New(), id.New(), "0")
		if err := svc.RecordMovements(ctx, []entity.DebtMovement{mv}); err == nil {
			t.Error("expected error for zero amount")
		}
	})

	t.Run("missing client", func(t *testing.T) {
		mv := receipt(id.New(), id.New(), id.Nil(), "10.00")
		if err := svc.RecordMovements(ctx, []entity.DebtMovement{mv}); err == nil {
			t.Error("expected error for missing client")
		}
	})
}

func TestService_GetClientDebt_SumsAcrossClinics(t *testing.T) {
	repo := newMemDebtRepo()
	svc := NewService(repo)
	ctx := context.Background()

	clientID := id.New()
	clinicA, clinicB := id.New(), id.New()

	movements := []entity.DebtMovement{
		receipt(id.New(), clinicA, clientID, "40.00"),
		receipt(id.New(), clinicB, clientID, "25.00"),
		collection(id.New(), clinicA, clientID, "15.00"),
	}
	if err := svc.RecordMovements(ctx, movements); err != nil {
		t.Fatalf("RecordMovements: %v", err)
	}

	total, err := svc.GetClientDebt(ctx, clientID)
	if err != nil {
		t.Fatalf("GetClientDebt: %v", err)
	}
	if !total.Equal(types.MustMoney("50.00")) {
		t.Errorf("debt = %s, want 50.00", total)
	}
}

func TestService_CheckCollectible(t *testing.T) {
	repo := newMemDebtRepo()
	svc := NewService(repo)
	ctx := context.Background()

	clinicID, clientID := id.New(), id.New()
	if err := svc.RecordMovements(ctx, []entity.DebtMovement{
		receipt(id.New(), clinicID, clientID, "30.00"),
	}); err != nil {
		t.Fatalf("RecordMovements: %v", err)
	}

	if err := svc.CheckCollectible(ctx, clinicID, clientID, types.MustMoney("30.00")); err != nil {
		t.Errorf("collection at exact balance should pass: %v", err)
	}

	err := svc.CheckCollectible(ctx, clinicID, clientID, types.MustMoney("30.01"))
	if err == nil {
		t.Fatal("expected error for collection above balance")
	}
	if _, ok := apperror.AsAppError(err); !ok {
		t.Errorf("expected AppError, got %T", err)
	}
}

func TestService_ReverseMovements(t *testing.T) {
	repo := newMemDebtRepo()
	svc := NewService(repo)
	ctx := context.Background()

	recorderID := id.New()
	clinicID, clientID := id.New(), id.New()
	if err := svc.RecordMovements(ctx, []entity.DebtMovement{
		receipt(recorderID, clinicID, clientID, "20.00"),
	}); err != nil {
		t.Fatalf("RecordMovements: %v", err)
	}

	if err := svc.ReverseMovements(ctx, recorderID, 2); err != nil {
		t.Fatalf("ReverseMovements: %v", err)
	}

	total, err := svc.GetClientDebt(ctx, clientID)
	if err != nil {
		t.Fatalf("GetClientDebt: %v", err)
	}
	if !total.IsZero() {
		t.Errorf("debt = %s, want zero after reversal", total)
	}
}
