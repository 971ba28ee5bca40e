// Package register_repo provides PostgreSQL implementations for register repositories.
// In Database-per-Tenant architecture, TxManager is obtained from context.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"clinova/internal/core/entity"
	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/registers/debt"
	"clinova/internal/infrastructure/storage/postgres"
)

const (
	debtMovementsTable = "reg_debt_movements"
	debtBalancesTable  = "reg_debt_balances"
)

// DebtRepo implements debt.Repository.
// In Database-per-Tenant architecture, TxManager is obtained from context.
type DebtRepo struct {
	builder squirrel.StatementBuilderType
}

// NewDebtRepo creates a new debt register repository.
func NewDebtRepo() *DebtRepo {
	return &DebtRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// getTxManager retrieves TxManager from context.
func (r *DebtRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// CreateMovements batch inserts movements and applies them to the balance
// table in the same transaction.
func (r *DebtRepo) CreateMovements(ctx context.Context, movements []entity.DebtMovement) error {
	if len(movements) == 0 {
		return nil
	}

	txm := r.getTxManager(ctx)
	columns := []string{
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"clinic_id", "client_id", "amount", "created_at",
	}

	// Fast path: COPY when inside a transaction.
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.ClinicID, m.ClientID, m.Amount, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, debtMovementsTable, columns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
	} else {
		q := r.builder.Insert(debtMovementsTable).Columns(columns...)
		for _, m := range movements {
			q = q.Values(
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.ClinicID, m.ClientID, m.Amount, m.CreatedAt,
			)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		if _, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert movements: %w", err)
		}
	}

	return r.applyToBalances(ctx, movements)
}

// applyToBalances upserts the cached balance row for each movement.
func (r *DebtRepo) applyToBalances(ctx context.Context, movements []entity.DebtMovement) error {
	sql := `
		INSERT INTO reg_debt_balances (clinic_id, client_id, amount, last_movement_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (clinic_id, client_id) DO UPDATE SET
			amount = reg_debt_balances.amount + EXCLUDED.amount,
			last_movement_at = GREATEST(reg_debt_balances.last_movement_at, EXCLUDED.last_movement_at),
			updated_at = NOW()
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	for _, m := range movements {
		if _, err := querier.Exec(ctx, sql, m.ClinicID, m.ClientID, m.SignedAmount(), m.Period); err != nil {
			return fmt.Errorf("apply movement to balance: %w", err)
		}
	}

	return nil
}

// DeleteMovementsByRecorder removes movements for a document version and
// backs their amounts out of the balance table.
func (r *DebtRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	movements, err := r.GetMovementsByRecorder(ctx, recorderID)
	if err != nil {
		return err
	}

	reversed := make([]entity.DebtMovement, 0, len(movements))
	for _, m := range movements {
		if m.RecorderVersion >= beforeVersion {
			continue
		}
		rev := m
		if rev.RecordType == entity.RecordTypeReceipt {
			rev.RecordType = entity.RecordTypeExpense
		} else {
			rev.RecordType = entity.RecordTypeReceipt
		}
		reversed = append(reversed, rev)
	}

	q := r.builder.Delete(debtMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Lt{"recorder_version": beforeVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.getTxManager(ctx).GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	return r.applyToBalances(ctx, reversed)
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *DebtRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.DebtMovement, error) {
	q := r.builder.Select(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"clinic_id", "client_id", "amount", "created_at",
	).From(debtMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.DebtMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns current debt for clinic+client.
func (r *DebtRepo) GetBalance(ctx context.Context, clinicID, clientID id.ID) (entity.DebtBalance, error) {
	var balance entity.DebtBalance

	q := r.builder.Select(
		"clinic_id", "client_id",
		"amount", "last_movement_at", "updated_at",
	).From(debtBalancesTable).
		Where(squirrel.Eq{
			"clinic_id": clinicID,
			"client_id": clientID,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.DebtBalance{
				ClinicID: clinicID,
				ClientID: clientID,
				Amount:   types.Zero(),
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns balance with pessimistic lock.
func (r *DebtRepo) GetBalanceForUpdate(ctx context.Context, clinicID, clientID id.ID) (entity.DebtBalance, error) {
	var balance entity.DebtBalance

	sql := `
		SELECT clinic_id, client_id, amount, last_movement_at, updated_at
		FROM reg_debt_balances
		WHERE clinic_id = $1 AND client_id = $2
		FOR UPDATE
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &balance, sql, clinicID, clientID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return entity.DebtBalance{
				ClinicID: clinicID,
				ClientID: clientID,
				Amount:   types.Zero(),
			}, nil
		}
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// GetBalancesByClinic returns debts for a clinic.
func (r *DebtRepo) GetBalancesByClinic(ctx context.Context, clinicID id.ID, filter debt.BalanceFilter) ([]entity.DebtBalance, error) {
	q := r.builder.Select(
		"clinic_id", "client_id",
		"amount", "last_movement_at", "updated_at",
	).From(debtBalancesTable).
		Where(squirrel.Eq{"clinic_id": clinicID})

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"amount": 0})
	}

	if len(filter.ClientIDs) > 0 {
		q = q.Where(squirrel.Eq{"client_id": filter.ClientIDs})
	}

	if filter.MinAmount != nil {
		q = q.Where(squirrel.GtOrEq{"amount": *filter.MinAmount})
	}

	q = q.OrderBy("amount DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.DebtBalance
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalancesByClient returns debts across all clinics for a client.
func (r *DebtRepo) GetBalancesByClient(ctx context.Context, clientID id.ID) ([]entity.DebtBalance, error) {
	q := r.builder.Select(
		"clinic_id", "client_id",
		"amount", "last_movement_at", "updated_at",
	).From(debtBalancesTable).
		Where(squirrel.Eq{"client_id": clientID}).
		Where(squirrel.NotEq{"amount": 0}).
		OrderBy("clinic_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.DebtBalance
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalanceAtDate calculates a client's debt as of a specific date.
func (r *DebtRepo) GetBalanceAtDate(ctx context.Context, clinicID, clientID id.ID, date time.Time) (types.Money, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END),
			0
		)
		FROM reg_debt_movements
		WHERE clinic_id = $1
		  AND client_id = $2
		  AND period <= $3
	`

	var balance types.Money
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, clinicID, clientID, date).Scan(&balance)
	if err != nil && err != pgx.ErrNoRows {
		return types.Zero(), fmt.Errorf("calculate balance at date: %w", err)
	}

	return balance, nil
}

// GetMovementHistory returns debt movement history for a client.
func (r *DebtRepo) GetMovementHistory(ctx context.Context, clientID id.ID, filter debt.MovementFilter) ([]entity.DebtMovement, error) {
	q := r.builder.Select(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"clinic_id", "client_id", "amount", "created_at",
	).From(debtMovementsTable).
		Where(squirrel.Eq{"client_id": clientID})

	if filter.ClinicID != nil {
		q = q.Where(squirrel.Eq{"clinic_id": *filter.ClinicID})
	}

	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.DebtMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// GetTurnover calculates debt accrual and collection totals for a period.
func (r *DebtRepo) GetTurnover(ctx context.Context, filter debt.TurnoverFilter) (debt.Turnover, error) {
	var result debt.Turnover

	args := []any{filter.FromDate, filter.ToDate}
	baseConditions := "period >= $1 AND period < $2"
	argIndex := 3

	if filter.ClinicID != nil {
		baseConditions += fmt.Sprintf(" AND clinic_id = $%d", argIndex)
		args = append(args, *filter.ClinicID)
		result.ClinicID = *filter.ClinicID
		argIndex++
	}

	if filter.ClientID != nil {
		baseConditions += fmt.Sprintf(" AND client_id = $%d", argIndex)
		args = append(args, *filter.ClientID)
		result.ClientID = *filter.ClientID
		argIndex++
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE 0 END), 0) as accrued,
			COALESCE(SUM(CASE WHEN record_type = 'expense' THEN amount ELSE 0 END), 0) as collected
		FROM reg_debt_movements
		WHERE %s
	`, baseConditions)

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, args...).Scan(&result.Accrued, &result.Collected)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}

	// Opening balance: everything before the period start
	openingArgs := []any{filter.FromDate}
	openingConditions := "period < $1"
	argIndex = 2

	if filter.ClinicID != nil {
		openingConditions += fmt.Sprintf(" AND clinic_id = $%d", argIndex)
		openingArgs = append(openingArgs, *filter.ClinicID)
		argIndex++
	}

	if filter.ClientID != nil {
		openingConditions += fmt.Sprintf(" AND client_id = $%d", argIndex)
		openingArgs = append(openingArgs, *filter.ClientID)
	}

	openingSQL := fmt.Sprintf(`
		SELECT COALESCE(
			SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END),
			0
		)
		FROM reg_debt_movements
		WHERE %s
	`, openingConditions)

	err = querier.QueryRow(ctx, openingSQL, openingArgs...).Scan(&result.OpeningBalance)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate opening balance: %w", err)
	}

	result.ClosingBalance = result.OpeningBalance.Add(result.Accrued).Sub(result.Collected)

	return result, nil
}

// RecalculateBalances rebuilds the balance table from movements.
func (r *DebtRepo) RecalculateBalances(ctx context.Context, clinicID, clientID *id.ID) error {
	conditions := "TRUE"
	args := []any{}
	argIndex := 1

	if clinicID != nil {
		conditions += fmt.Sprintf(" AND clinic_id = $%d", argIndex)
		args = append(args, *clinicID)
		argIndex++
	}

	if clientID != nil {
		conditions += fmt.Sprintf(" AND client_id = $%d", argIndex)
		args = append(args, *clientID)
	}

	sql := fmt.Sprintf(`
		INSERT INTO reg_debt_balances (clinic_id, client_id, amount, last_movement_at, updated_at)
		SELECT
			clinic_id,
			client_id,
			SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END),
			MAX(period),
			NOW()
		FROM reg_debt_movements
		WHERE %s
		GROUP BY clinic_id, client_id
		ON CONFLICT (clinic_id, client_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			last_movement_at = EXCLUDED.last_movement_at,
			updated_at = NOW()
	`, conditions)

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("recalculate balances: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ debt.Repository = (*DebtRepo)(nil)
