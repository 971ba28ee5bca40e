package sequence

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"clinova/internal/core/id"
	coreseq "clinova/internal/core/sequence"
)

// Mock objects

type mockRow struct {
	scan func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error { return m.scan(dest...) }

type mockRows struct {
	values []string
	pos    int
}

func (m *mockRows) Next() bool {
	m.pos++
	return m.pos <= len(m.values)
}
func (m *mockRows) Scan(dest ...any) error {
	if ptr, ok := dest[0].(*string); ok {
		*ptr = m.values[m.pos-1]
	}
	return nil
}
func (m *mockRows) Close()                                       {}
func (m *mockRows) Err() error                                   { return nil }
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// mockQuerier simulates the doc_series row: a single counter whose stored
// value is the number the NEXT allocation returns.
type mockQuerier struct {
	mu      sync.Mutex
	exists  bool
	next    int64
	legacy  []string // rows returned by the seeder query
	queries []string
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, sql)

	switch {
	case strings.Contains(sql, "RETURNING next_number - 1"):
		// Allocate: increment, return the drawn number.
		if !m.exists {
			m.exists = true
			m.next = 2
			drawn := int64(1)
			return &mockRow{scan: func(dest ...any) error {
				*(dest[0].(*int64)) = drawn
				return nil
			}}
		}
		drawn := m.next
		m.next++
		return &mockRow{scan: func(dest ...any) error {
			*(dest[0].(*int64)) = drawn
			return nil
		}}

	case strings.Contains(sql, "INSERT INTO doc_series"):
		// EnsureSeries insert: args[6] is the initial next_number.
		if m.exists {
			return &mockRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		}
		m.exists = true
		m.next = args[6].(int64)
		return m.seriesRow(args[1].(id.ID), args[2].(string), args[3].(string), args[4].(string), args[5].(int))

	default:
		// EnsureSeries select.
		if !m.exists {
			return &mockRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		}
		return m.seriesRow(args[0].(id.ID), args[1].(string), args[2].(string), "", 6)
	}
}

func (m *mockQuerier) seriesRow(scopeID id.ID, docType, code, prefix string, padding int) pgx.Row {
	next := m.next
	return &mockRow{scan: func(dest ...any) error {
		*(dest[0].(*id.ID)) = id.New()
		*(dest[1].(*id.ID)) = scopeID
		*(dest[2].(*string)) = docType
		*(dest[3].(*string)) = code
		*(dest[4].(*string)) = prefix
		*(dest[5].(*int)) = padding
		*(dest[6].(*int64)) = next
		*(dest[7].(*coreseq.ResetPolicy)) = coreseq.ResetNever
		*(dest[8].(*time.Time)) = time.Now()
		*(dest[9].(*time.Time)) = time.Now()
		*(dest[10].(*time.Time)) = time.Now()
		return nil
	}}
}

func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, sql)
	return &mockRows{values: m.legacy}, nil
}

func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, sql)

	if strings.Contains(sql, "next_number = next_number - 1") {
		// Release: guarded decrement, only while still the latest.
		released := args[3].(int64)
		if m.next == released+1 {
			m.next--
			return pgconn.NewCommandTag("UPDATE 1"), nil
		}
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func freshSeries() *coreseq.Series {
	return &coreseq.Series{
		ScopeID:      id.New(),
		DocumentType: "ticket",
		Code:         "default",
		Padding:      6,
		ResetPolicy:  coreseq.ResetNever,
	}
}

func TestAllocate_Sequential(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	series := freshSeries()

	for i := int64(1); i <= 3; i++ {
		a, err := svc.Allocate(ctx, series, time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Number != i {
			t.Errorf("expected %d, got %d", i, a.Number)
		}
	}
}

func TestAllocate_ConcurrentNumbersAreUnique(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	series := freshSeries()

	const workers = 5
	var wg sync.WaitGroup
	results := make([]string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := svc.Allocate(ctx, series, time.Now())
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			results[i] = a.Formatted
		}(i)
	}
	wg.Wait()

	sort.Strings(results)
	want := []string{"000001", "000002", "000003", "000004", "000005"}
	for i, w := range want {
		if results[i] != w {
			t.Fatalf("expected %v, got %v", want, results)
		}
	}
}

func TestRelease_OnlyWhileLatest(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	series := freshSeries()

	a1, _ := svc.Allocate(ctx, series, time.Now())
	a2, _ := svc.Allocate(ctx, series, time.Now())

	// a1 is stale: releasing it must not touch the counter.
	if err := svc.Release(ctx, series, a1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// a2 is the latest: releasing it returns the number to the pool.
	if err := svc.Release(ctx, series, a2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a3, _ := svc.Allocate(ctx, series, time.Now())
	if a3.Number != a2.Number {
		t.Errorf("expected released number %d to be reissued, got %d", a2.Number, a3.Number)
	}
}

func TestEnsureSeries_SeedsFromLegacyNumbers(t *testing.T) {
	q := &mockQuerier{legacy: []string{"T-000120", "T-000093", "garbage"}}
	svc := New(q)
	svc.RegisterDefaults("ticket", SeriesDefaults{Prefix: "T-", Padding: 6, ResetPolicy: coreseq.ResetNever})
	svc.RegisterSeeder("ticket", `SELECT number FROM doc_tickets WHERE clinic_id = $1`)
	ctx := context.Background()

	series, err := svc.EnsureSeries(ctx, id.New(), "ticket", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Highest legacy suffix is 120, so the stored next number is 121.
	if series.NextNumber != 121 {
		t.Errorf("expected next number 121, got %d", series.NextNumber)
	}
	if series.Prefix != "T-" {
		t.Errorf("expected prefix T-, got %q", series.Prefix)
	}
}

func TestEnsureSeries_ExistingRowIsReturned(t *testing.T) {
	q := &mockQuerier{exists: true, next: 42}
	svc := New(q)
	ctx := context.Background()

	series, err := svc.EnsureSeries(ctx, id.New(), "ticket", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if series.NextNumber != 42 {
		t.Errorf("expected next number 42, got %d", series.NextNumber)
	}
	for _, sql := range q.queries {
		if strings.Contains(sql, "INSERT") {
			t.Errorf("existing series must not be re-inserted")
		}
	}
}
