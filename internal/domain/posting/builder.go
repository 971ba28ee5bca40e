package posting

import (
	"context"
	"fmt"

	"clinova/internal/core/id"
	"clinova/internal/core/types"
	"clinova/internal/domain/ledger"
)

// accumulator groups amounts per account while preserving first-seen order,
// so generated lines come out deterministic across runs.
type accumulator struct {
	order []id.ID
	sums  map[id.ID]types.Money
}

func newAccumulator() *accumulator {
	return &accumulator{sums: make(map[id.ID]types.Money)}
}

func (a *accumulator) add(account id.ID, amount types.Money) {
	if _, seen := a.sums[account]; !seen {
		a.order = append(a.order, account)
		a.sums[account] = types.Zero()
	}
	a.sums[account] = a.sums[account].Add(amount)
}

func (a *accumulator) each(fn func(account id.ID, sum types.Money)) {
	for _, account := range a.order {
		fn(account, a.sums[account])
	}
}

// saleFacts is the shared monetary shape of tickets and invoices.
type saleFacts struct {
	revenue   []RevenueLine
	taxes     []TaxLine
	discounts []DiscountLine
	payments  []PaymentSplit
	pending   types.Money
}

// buildSale appends the sale entry lines in the canonical order:
// revenue credits, tax credits, discount debits, payment debits, receivable
// debit. Revenue is credited at its pre-discount net value; discounts come
// back as contra-revenue debits, so the entry balances against what was
// actually collected plus the pending remainder.
func buildSale(ctx context.Context, r *Resolver, e *ledger.Entry, legalEntityID, clinicID id.ID, facts saleFacts) error {
	clinic := &clinicID

	// 1. Revenue credits, one line per distinct category account.
	revenue := newAccumulator()
	for _, line := range facts.revenue {
		account, err := r.Account(ctx, ledger.ConceptCategory, line.CategoryID.String(), legalEntityID, clinic)
		if err != nil {
			return err
		}
		revenue.add(account, line.Amount)
	}
	revenue.each(func(account id.ID, sum types.Money) {
		e.AddCredit(account, sum, "Revenue")
	})

	// 2. Output VAT credits, one line per distinct VAT account.
	taxes := newAccumulator()
	for _, line := range facts.taxes {
		account, err := r.Account(ctx, ledger.ConceptVATOutput, line.VATTypeID.String(), legalEntityID, clinic)
		if err != nil {
			return err
		}
		taxes.add(account, line.Amount)
	}
	taxes.each(func(account id.ID, sum types.Money) {
		e.AddCredit(account, sum, "Output VAT")
	})

	// 3. Discount debits (contra-revenue), one line per discount account.
	discounts := newAccumulator()
	discountKinds := make(map[id.ID]string)
	for _, line := range facts.discounts {
		account, err := r.Account(ctx, ledger.ConceptDiscount, line.Type, legalEntityID, clinic)
		if err != nil {
			return err
		}
		discounts.add(account, line.Amount)
		discountKinds[account] = line.Type
	}
	discounts.each(func(account id.ID, sum types.Money) {
		e.AddDebit(account, sum, fmt.Sprintf("Discount (%s)", discountKinds[account]))
	})

	// 4. Payment debits, one line per distinct payment-method account.
	payments := newAccumulator()
	for _, split := range facts.payments {
		account, err := r.Account(ctx, ledger.ConceptPaymentMethod, split.MethodID.String(), legalEntityID, clinic)
		if err != nil {
			return err
		}
		payments.add(account, split.Amount)
	}
	payments.each(func(account id.ID, sum types.Money) {
		e.AddDebit(account, sum, "Payment")
	})

	// 5. Receivable debit for the unpaid remainder.
	if facts.pending.IsPositive() {
		account, err := r.Account(ctx, ledger.ConceptReceivable, "", legalEntityID, clinic)
		if err != nil {
			return err
		}
		e.AddDebit(account, facts.pending, "Client receivable")
	}

	return nil
}

// buildCashSession posts counted cash (debit) against expected cash (credit)
// on the cash account. The two legs wash on that account; only the over/short
// line has economic effect. The wash is kept deliberately: it leaves an audit
// trail of both figures in the journal.
func buildCashSession(ctx context.Context, r *Resolver, e *ledger.Entry, ev CashSessionEvent) error {
	clinic := ev.ClinicID
	cashAccount, err := r.Account(ctx, ledger.ConceptCash, "", ev.LegalEntityID, &clinic)
	if err != nil {
		return err
	}

	e.AddDebit(cashAccount, ev.CountedCash, "Cash counted")
	e.AddCredit(cashAccount, ev.ExpectedCash, "Cash expected")

	diff := ev.Difference()
	if diff.Abs().Cmp(ledger.BalanceTolerance) <= 0 {
		return nil
	}

	overShort, err := r.Account(ctx, ledger.ConceptCashOverShort, "", ev.LegalEntityID, &clinic)
	if err != nil {
		return err
	}
	if diff.IsPositive() {
		// Surplus: more cash in the drawer than expected.
		e.AddCredit(overShort, diff, "Cash over")
	} else {
		e.AddDebit(overShort, diff.Abs(), "Cash short")
	}
	return nil
}

// buildPayment posts a debt collection: treasury debit against receivables.
func buildPayment(ctx context.Context, r *Resolver, e *ledger.Entry, ev PaymentEvent) error {
	clinic := ev.ClinicID

	treasury, err := r.Account(ctx, ledger.ConceptPaymentMethod, ev.MethodID.String(), ev.LegalEntityID, &clinic)
	if err != nil {
		return err
	}
	receivable, err := r.Account(ctx, ledger.ConceptReceivable, "", ev.LegalEntityID, &clinic)
	if err != nil {
		return err
	}

	e.AddDebit(treasury, ev.Amount, "Debt payment received")
	e.AddCredit(receivable, ev.Amount, "Client receivable settled")
	return nil
}

// buildExpense posts a paid expense: cost debit against the treasury account
// of the method it was paid with.
func buildExpense(ctx context.Context, r *Resolver, e *ledger.Entry, ev ExpenseEvent) error {
	clinic := ev.ClinicID

	cost, err := r.Account(ctx, ledger.ConceptExpenseCategory, ev.CategoryID.String(), ev.LegalEntityID, &clinic)
	if err != nil {
		return err
	}
	treasury, err := r.Account(ctx, ledger.ConceptPaymentMethod, ev.MethodID.String(), ev.LegalEntityID, &clinic)
	if err != nil {
		return err
	}

	note := ev.Note
	if note == "" {
		note = "Expense"
	}
	e.AddDebit(cost, ev.Amount, note)
	e.AddCredit(treasury, ev.Amount, "Expense paid")
	return nil
}
