package posting

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"clinova/internal/core/apperror"
	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
	"clinova/internal/core/tenant"
	"clinova/internal/core/types"
	"clinova/internal/domain"
	"clinova/internal/domain/ledger"
)

// --- In-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memEntries struct {
	mu      sync.Mutex
	entries map[id.ID]*ledger.Entry
}

func newMemEntries() *memEntries {
	return &memEntries{entries: make(map[id.ID]*ledger.Entry)}
}

func (m *memEntries) Create(ctx context.Context, e *ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *memEntries) GetByID(ctx context.Context, entryID id.ID) (*ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[entryID]; ok {
		return e, nil
	}
	return nil, apperror.NewNotFound("journal entry", entryID.String())
}

func (m *memEntries) GetBySource(ctx context.Context, sourceType ledger.SourceType, sourceID id.ID) (*ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.SourceType == sourceType && e.SourceID == sourceID {
			return e, nil
		}
	}
	return nil, apperror.NewNotFound("journal entry", sourceID.String())
}

func (m *memEntries) Delete(ctx context.Context, entryID id.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, entryID)
	return nil
}

func (m *memEntries) List(ctx context.Context, f ledger.EntryFilter) (domain.ListResult[*ledger.Entry], error) {
	return domain.ListResult[*ledger.Entry]{}, nil
}

func (m *memEntries) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type memMappings struct {
	mappings []*ledger.Mapping
}

func (m *memMappings) Create(ctx context.Context, mp *ledger.Mapping) error {
	m.mappings = append(m.mappings, mp)
	return nil
}
func (m *memMappings) Update(ctx context.Context, mp *ledger.Mapping) error { return nil }
func (m *memMappings) GetByID(ctx context.Context, mappingID id.ID) (*ledger.Mapping, error) {
	return nil, apperror.NewNotFound("mapping", mappingID.String())
}

func (m *memMappings) Resolve(ctx context.Context, concept ledger.Concept, referenceKey string, legalEntityID id.ID, clinicID *id.ID) (*ledger.Mapping, error) {
	var entityWide *ledger.Mapping
	for _, mp := range m.mappings {
		if !mp.Active || mp.Concept != concept || mp.ReferenceKey != referenceKey || mp.LegalEntityID != legalEntityID {
			continue
		}
		if mp.ClinicID != nil {
			if clinicID != nil && *mp.ClinicID == *clinicID {
				return mp, nil
			}
			continue
		}
		entityWide = mp
	}
	if entityWide != nil {
		return entityWide, nil
	}
	return nil, apperror.NewNotFound("account mapping", string(concept))
}

func (m *memMappings) ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*ledger.Mapping, error) {
	return m.mappings, nil
}
func (m *memMappings) Deactivate(ctx context.Context, mappingID id.ID) error { return nil }

type memAccounts struct {
	accounts map[id.ID]*ledger.Account
}

func (m *memAccounts) GetByID(ctx context.Context, accountID id.ID) (*ledger.Account, error) {
	if a, ok := m.accounts[accountID]; ok {
		return a, nil
	}
	return nil, apperror.NewNotFound("account", accountID.String())
}

// Unused parts of the catalog repository contract.
func (m *memAccounts) Create(ctx context.Context, a *ledger.Account) error { return nil }
func (m *memAccounts) GetByCode(ctx context.Context, code string) (*ledger.Account, error) {
	return nil, apperror.NewNotFound("account", code)
}
func (m *memAccounts) Update(ctx context.Context, a *ledger.Account) error { return nil }
func (m *memAccounts) Delete(ctx context.Context, accountID id.ID) error   { return nil }
func (m *memAccounts) SetDeletionMark(ctx context.Context, accountID id.ID, marked bool) error {
	return nil
}
func (m *memAccounts) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*ledger.Account], error) {
	return domain.ListResult[*ledger.Account]{}, nil
}
func (m *memAccounts) Exists(ctx context.Context, accountID id.ID) (bool, error) { return false, nil }
func (m *memAccounts) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}
func (m *memAccounts) GetTree(ctx context.Context, rootID *id.ID) ([]*ledger.Account, error) {
	return nil, nil
}
func (m *memAccounts) GetPath(ctx context.Context, accountID id.ID) ([]*ledger.Account, error) {
	return nil, nil
}
func (m *memAccounts) GetByNumber(ctx context.Context, legalEntityID id.ID, number string) (*ledger.Account, error) {
	return nil, apperror.NewNotFound("account", number)
}
func (m *memAccounts) ListByLegalEntity(ctx context.Context, legalEntityID id.ID) ([]*ledger.Account, error) {
	return nil, nil
}

// --- Fixture ---

type fixture struct {
	legalEntity id.ID
	clinic      id.ID
	category    id.ID
	vatType     id.ID
	cardMethod  id.ID
	cashMethod  id.ID
	expenseCat  id.ID

	revenueAcc    id.ID
	vatAcc        id.ID
	cardAcc       id.ID
	cashAcc       id.ID
	overShortAcc  id.ID
	receivableAcc id.ID
	discountAcc   id.ID
	expenseAcc    id.ID

	entries *memEntries
	engine  *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		legalEntity: id.New(),
		clinic:      id.New(),
		category:    id.New(),
		vatType:     id.New(),
		cardMethod:  id.New(),
		cashMethod:  id.New(),
		expenseCat:  id.New(),
		entries:     newMemEntries(),
	}

	accounts := &memAccounts{accounts: make(map[id.ID]*ledger.Account)}
	addAccount := func(number, name string, accountType ledger.AccountType) id.ID {
		a := ledger.NewAccount(f.legalEntity, number, name, accountType)
		accounts.accounts[a.ID] = a
		return a.ID
	}
	f.revenueAcc = addAccount("705", "Service revenue", ledger.AccountRevenue)
	f.vatAcc = addAccount("477", "Output VAT", ledger.AccountLiability)
	f.cardAcc = addAccount("572", "Bank card", ledger.AccountAsset)
	f.cashAcc = addAccount("570", "Cash drawer", ledger.AccountAsset)
	f.overShortAcc = addAccount("778", "Cash over/short", ledger.AccountRevenue)
	f.receivableAcc = addAccount("430", "Clients receivable", ledger.AccountAsset)
	f.discountAcc = addAccount("708", "Sales discounts", ledger.AccountRevenue)
	f.expenseAcc = addAccount("628", "Supplies expense", ledger.AccountExpense)

	mappings := &memMappings{}
	add := func(concept ledger.Concept, key string, account id.ID) {
		mappings.mappings = append(mappings.mappings, ledger.NewMapping(f.legalEntity, concept, key, account))
	}
	add(ledger.ConceptCategory, f.category.String(), f.revenueAcc)
	add(ledger.ConceptVATOutput, f.vatType.String(), f.vatAcc)
	add(ledger.ConceptPaymentMethod, f.cardMethod.String(), f.cardAcc)
	add(ledger.ConceptPaymentMethod, f.cashMethod.String(), f.cashAcc)
	add(ledger.ConceptCash, "", f.cashAcc)
	add(ledger.ConceptCashOverShort, "", f.overShortAcc)
	add(ledger.ConceptReceivable, "", f.receivableAcc)
	add(ledger.ConceptDiscount, "manual", f.discountAcc)
	add(ledger.ConceptDiscount, "promotion", f.discountAcc)
	add(ledger.ConceptExpenseCategory, f.expenseCat.String(), f.expenseAcc)

	resolver := NewResolver(mappings, accounts)
	f.engine = NewEngine(f.entries, resolver, &coreseq.MockAllocator{}, nil)
	return f
}

func testCtx() context.Context {
	return tenant.WithTxManager(context.Background(), fakeTxManager{})
}

func money(s string) types.Money { return types.MustMoney(s) }

func (f *fixture) cardTicket() TicketEvent {
	return TicketEvent{
		ID:            id.New(),
		Number:        "T-000001",
		LegalEntityID: f.legalEntity,
		ClinicID:      f.clinic,
		ClosedAt:      time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC),
		Revenue: []RevenueLine{
			{CategoryID: f.category, Amount: money("100.00")},
			{CategoryID: f.category, Amount: money("50.00")},
		},
		Taxes:    []TaxLine{{VATTypeID: f.vatType, Amount: money("31.50")}},
		Payments: []PaymentSplit{{MethodID: f.cardMethod, Amount: money("181.50")}},
		Pending:  types.Zero(),
	}
}

// --- Tests ---

func TestGenerate_CardTicket(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	entry, err := f.engine.Generate(ctx, f.cardTicket(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entry.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(entry.Lines))
	}

	// Canonical order: revenue credit, VAT credit, payment debit.
	if !entry.Lines[0].Credit.Equal(money("150.00")) || entry.Lines[0].AccountID != f.revenueAcc {
		t.Errorf("line 1: want revenue credit 150.00, got %+v", entry.Lines[0])
	}
	if !entry.Lines[1].Credit.Equal(money("31.50")) || entry.Lines[1].AccountID != f.vatAcc {
		t.Errorf("line 2: want VAT credit 31.50, got %+v", entry.Lines[1])
	}
	if !entry.Lines[2].Debit.Equal(money("181.50")) || entry.Lines[2].AccountID != f.cardAcc {
		t.Errorf("line 3: want card debit 181.50, got %+v", entry.Lines[2])
	}

	if !entry.TotalDebit.Equal(entry.TotalCredit) {
		t.Errorf("imbalanced: debit %s credit %s", entry.TotalDebit, entry.TotalCredit)
	}
	if entry.EntryNumber != "2026/000001" {
		t.Errorf("expected entry number 2026/000001, got %q", entry.EntryNumber)
	}
}

func TestGenerate_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	ev := f.cardTicket()

	first, err := f.engine.Generate(ctx, ev, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.engine.Generate(ctx, ev, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second call created a new entry: %s vs %s", first.ID, second.ID)
	}
	if f.entries.count() != 1 {
		t.Errorf("expected exactly 1 entry, got %d", f.entries.count())
	}
}

func TestGenerate_RegenerateReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	ev := f.cardTicket()

	first, err := f.engine.Generate(ctx, ev, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	replaced, err := f.engine.Generate(ctx, ev, Options{Regenerate: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if replaced.ID == first.ID {
		t.Errorf("regeneration must create a fresh entry")
	}
	if f.entries.count() != 1 {
		t.Errorf("expected exactly 1 entry after regenerate, got %d", f.entries.count())
	}
	if _, err := f.entries.GetByID(ctx, first.ID); !apperror.IsNotFound(err) {
		t.Errorf("prior entry must be deleted, got %v", err)
	}
}

func TestGenerate_MissingMappingPersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	ev := f.cardTicket()
	ev.Revenue = append(ev.Revenue, RevenueLine{CategoryID: id.New(), Amount: money("10.00")})

	_, err := f.engine.Generate(ctx, ev, Options{})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeMappingNotFound {
		t.Fatalf("expected MAPPING_NOT_FOUND, got %v", err)
	}
	if f.entries.count() != 0 {
		t.Errorf("expected zero journal rows, got %d entries", f.entries.count())
	}
}

func TestGenerate_TicketWithDiscountAndDebt(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	client := id.New()

	// Gross services 200.00, manual discount 20.00, 21% VAT on the
	// discounted base (37.80). Client pays 100.00 cash, owes 117.80.
	ev := TicketEvent{
		ID:            id.New(),
		Number:        "T-000002",
		LegalEntityID: f.legalEntity,
		ClinicID:      f.clinic,
		ClientID:      &client,
		ClosedAt:      time.Date(2026, 4, 1, 18, 30, 0, 0, time.UTC),
		Revenue:       []RevenueLine{{CategoryID: f.category, Amount: money("200.00")}},
		Taxes:         []TaxLine{{VATTypeID: f.vatType, Amount: money("37.80")}},
		Discounts:     []DiscountLine{{Type: "manual", Amount: money("20.00")}},
		Payments:      []PaymentSplit{{MethodID: f.cashMethod, Amount: money("100.00")}},
		Pending:       money("117.80"),
	}

	entry, err := f.engine.Generate(ctx, ev, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(entry.Lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(entry.Lines))
	}
	wantAccounts := []id.ID{f.revenueAcc, f.vatAcc, f.discountAcc, f.cashAcc, f.receivableAcc}
	for i, want := range wantAccounts {
		if entry.Lines[i].AccountID != want {
			t.Errorf("line %d: wrong account", i+1)
		}
	}
	if err := entry.CheckBalance(); err != nil {
		t.Errorf("entry not balanced: %v", err)
	}
	if !entry.TotalDebit.Equal(money("237.80")) {
		t.Errorf("total debit = %s, want 237.80", entry.TotalDebit)
	}
}

func TestGenerate_CashSession(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	session := func(expected, counted string) CashSessionEvent {
		return CashSessionEvent{
			ID:            id.New(),
			Number:        "CS-000001",
			LegalEntityID: f.legalEntity,
			ClinicID:      f.clinic,
			ClosedAt:      time.Date(2026, 5, 2, 21, 0, 0, 0, time.UTC),
			ExpectedCash:  money(expected),
			CountedCash:   money(counted),
		}
	}

	t.Run("surplus credits over/short", func(t *testing.T) {
		entry, err := f.engine.Generate(ctx, session("500.00", "510.00"), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entry.Lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(entry.Lines))
		}
		last := entry.Lines[2]
		if last.AccountID != f.overShortAcc || !last.Credit.Equal(money("10.00")) {
			t.Errorf("want over/short credit 10.00, got %+v", last)
		}
		if err := entry.CheckBalance(); err != nil {
			t.Errorf("entry not balanced: %v", err)
		}
	})

	t.Run("shortfall debits over/short", func(t *testing.T) {
		entry, err := f.engine.Generate(ctx, session("500.00", "480.00"), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last := entry.Lines[2]
		if last.AccountID != f.overShortAcc || !last.Debit.Equal(money("20.00")) {
			t.Errorf("want over/short debit 20.00, got %+v", last)
		}
		if err := entry.CheckBalance(); err != nil {
			t.Errorf("entry not balanced: %v", err)
		}
	})

	t.Run("trivial difference posts only the wash", func(t *testing.T) {
		entry, err := f.engine.Generate(ctx, session("500.00", "500.01"), Options{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Counted debit and expected credit on the same cash account.
		if len(entry.Lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(entry.Lines))
		}
		if entry.Lines[0].AccountID != f.cashAcc || entry.Lines[1].AccountID != f.cashAcc {
			t.Errorf("wash legs must hit the cash account")
		}
	})
}

func TestGenerate_DebtPayment(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	ev := PaymentEvent{
		ID:            id.New(),
		Number:        "P-000001",
		LegalEntityID: f.legalEntity,
		ClinicID:      f.clinic,
		ClientID:      id.New(),
		PaidAt:        time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC),
		MethodID:      f.cardMethod,
		Amount:        money("117.80"),
	}

	entry, err := f.engine.Generate(ctx, ev, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entry.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(entry.Lines))
	}
	if entry.Lines[0].AccountID != f.cardAcc || !entry.Lines[0].Debit.Equal(money("117.80")) {
		t.Errorf("want treasury debit, got %+v", entry.Lines[0])
	}
	if entry.Lines[1].AccountID != f.receivableAcc || !entry.Lines[1].Credit.Equal(money("117.80")) {
		t.Errorf("want receivable credit, got %+v", entry.Lines[1])
	}
}

func TestGenerate_Expense(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	ev := ExpenseEvent{
		ID:            id.New(),
		Number:        "E-000001",
		LegalEntityID: f.legalEntity,
		ClinicID:      f.clinic,
		SpentAt:       time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC),
		CategoryID:    f.expenseCat,
		MethodID:      f.cashMethod,
		Amount:        money("45.90"),
		Note:          "Cleaning supplies",
	}

	entry, err := f.engine.Generate(ctx, ev, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Lines[0].AccountID != f.expenseAcc || !entry.Lines[0].Debit.Equal(money("45.90")) {
		t.Errorf("want expense debit, got %+v", entry.Lines[0])
	}
	if entry.Lines[1].AccountID != f.cashAcc || !entry.Lines[1].Credit.Equal(money("45.90")) {
		t.Errorf("want cash credit, got %+v", entry.Lines[1])
	}
}

func TestGenerate_ImbalancedFactsAreRejected(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()

	ev := f.cardTicket()
	// Payments claim more than revenue plus tax.
	ev.Payments = []PaymentSplit{{MethodID: f.cardMethod, Amount: money("200.00")}}

	_, err := f.engine.Generate(ctx, ev, Options{})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeEntryImbalanced {
		t.Fatalf("expected ENTRY_IMBALANCED, got %v", err)
	}
	if f.entries.count() != 0 {
		t.Errorf("imbalanced entry must not be persisted")
	}
}

// Balance invariant across randomized tax rates, discounts and payment splits.
func TestGenerate_BalanceInvariantRandomized(t *testing.T) {
	f := newFixture(t)
	ctx := testCtx()
	rng := rand.New(rand.NewSource(42))

	cents := func(max int64) types.Money {
		return types.NewMoney(float64(rng.Int63n(max)) / 100).Round(2)
	}

	for i := 0; i < 200; i++ {
		gross := cents(100000).Add(money("1.00"))
		discount := types.Zero()
		if rng.Intn(2) == 0 {
			discount = gross.Mul(money("0.10")).Round(2)
		}
		base := gross.Sub(discount)

		rate := []string{"0.04", "0.10", "0.21"}[rng.Intn(3)]
		tax := base.Mul(money(rate)).Round(2)
		total := base.Add(tax)

		paid := total.Mul(money("0.60")).Round(2)
		pending := total.Sub(paid)

		ev := TicketEvent{
			ID:            id.New(),
			Number:        "T-RND",
			LegalEntityID: f.legalEntity,
			ClinicID:      f.clinic,
			ClosedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Revenue:       []RevenueLine{{CategoryID: f.category, Amount: gross}},
			Taxes:         []TaxLine{{VATTypeID: f.vatType, Amount: tax}},
			Payments: []PaymentSplit{
				{MethodID: f.cashMethod, Amount: paid},
			},
			Pending: pending,
		}
		if discount.IsPositive() {
			ev.Discounts = []DiscountLine{{Type: "manual", Amount: discount}}
		}

		entry, err := f.engine.Generate(ctx, ev, Options{})
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		if diff := entry.Imbalance().Abs(); diff.Cmp(money("0.01")) > 0 {
			t.Fatalf("case %d: imbalance %s", i, diff)
		}
	}
}
