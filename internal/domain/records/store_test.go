package records

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrdesk/internal/platform/kv"
)

func newTestStore(t *testing.T, backend kv.Backend) *Store {
	t.Helper()
	clock := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	return NewStore(backend,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return clock }),
	)
}

func TestGetAbsentCollectionIsEmpty(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	items, err := Get[Candidate](context.Background(), s, Candidates)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestGetCorruptCollectionReportsReason(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory(0)
	require.NoError(t, backend.Set(ctx, Trainings, "{not json"))
	s := newTestStore(t, backend)

	items, err := Get[Training](ctx, s, Trainings)
	assert.True(t, errors.Is(err, ErrCorrupt))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSetQuotaFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(32))

	err := Set(ctx, s, Vacancies, []Vacancy{{Title: strings.Repeat("x", 64)}})
	require.ErrorIs(t, err, kv.ErrQuotaExceeded)

	items, err := Get[Vacancy](ctx, s, Vacancies)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(0))
	require.NoError(t, Set(ctx, s, Vacancies, []Vacancy{{Title: "Dev"}}))
	require.NoError(t, Set(ctx, s, Trainings, []Training{{Title: "Go"}}))

	require.NoError(t, s.Remove(ctx, Vacancies))
	vacancies, err := Get[Vacancy](ctx, s, Vacancies)
	require.NoError(t, err)
	assert.Empty(t, vacancies)

	require.NoError(t, s.Clear(ctx))
	trainings, err := Get[Training](ctx, s, Trainings)
	require.NoError(t, err)
	assert.Empty(t, trainings)
}

func TestBatchCommitsTogether(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(64))

	b := s.NewBatch()
	Put(b, TimeTracking, []TimeEntry{{ID: "t1"}})
	Put(b, Employees, []Employee{{ID: "emp_1", Name: strings.Repeat("n", 80)}})
	require.Error(t, s.Commit(ctx, b))

	entries, err := Get[TimeEntry](ctx, s, TimeTracking)
	require.NoError(t, err)
	assert.Empty(t, entries, "first write of a failed batch must not land")
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	emp := Employee{Name: "Ana"}

	assert.True(t, s.EnsureSchema(&emp))
	once, err := json.Marshal(emp)
	require.NoError(t, err)

	assert.False(t, s.EnsureSchema(&emp))
	twice, err := json.Marshal(emp)
	require.NoError(t, err)

	assert.JSONEq(t, string(once), string(twice))
	assert.True(t, strings.HasPrefix(emp.ID.String(), EmployeeIDPrefix))
	assert.NotNil(t, emp.Documents)
	assert.NotNil(t, emp.Processes)
	assert.NotNil(t, emp.TimeEntries)
}

func TestNextIDNeverRepeats(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := s.NextID(EmployeeIDPrefix)
		require.False(t, seen[id], id)
		seen[id] = true
	}
}

func TestSaveEmployeeUpsertsInPlace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(0))

	first, err := s.SaveEmployee(ctx, Employee{Name: "Ana"})
	require.NoError(t, err)
	second, err := s.SaveEmployee(ctx, Employee{Name: "Bia"})
	require.NoError(t, err)

	first.Name = "Ana Souza"
	_, err = s.SaveEmployee(ctx, first)
	require.NoError(t, err)

	employees, err := s.Employees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 2)
	assert.Equal(t, "Ana Souza", employees[0].Name)
	assert.Equal(t, second.ID, employees[1].ID)
}

func TestFindEmployeeByLegacyNumericID(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory(0)
	require.NoError(t, backend.Set(ctx, Employees, `[{"id":1712345678901,"name":"Legacy"},{"name":"No id"}]`))
	s := newTestStore(t, backend)

	emp, ok, err := s.FindEmployeeByID(ctx, "1712345678901")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Legacy", emp.Name)

	_, ok, err = s.FindEmployeeByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	// The back-filled id is persisted, so a second read finds the same one.
	employees, err := s.Employees(ctx)
	require.NoError(t, err)
	again, err := s.Employees(ctx)
	require.NoError(t, err)
	assert.Equal(t, employees[1].ID, again[1].ID)
}

func TestDeleteEmployee(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(0))
	emp, err := s.SaveEmployee(ctx, Employee{Name: "Ana"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteEmployee(ctx, emp.ID.String()))
	assert.ErrorIs(t, s.DeleteEmployee(ctx, emp.ID.String()), ErrNotFound)
}

func TestDecimalAcceptsLegacyStrings(t *testing.T) {
	var entry TimeEntry
	require.NoError(t, json.Unmarshal([]byte(`{"hours":"8.50"}`), &entry))
	assert.Equal(t, Decimal(8.5), entry.Hours)

	require.NoError(t, json.Unmarshal([]byte(`{"hours":7.25}`), &entry))
	assert.Equal(t, Decimal(7.25), entry.Hours)

	out, err := json.Marshal(Decimal(1.005 + 0.001))
	require.NoError(t, err)
	assert.Equal(t, "1.01", string(out))
}

func TestDecimalNonFiniteReadsAsZero(t *testing.T) {
	ctx := context.Background()
	backend := kv.NewMemory(0)
	require.NoError(t, backend.Set(ctx, TimeTracking, `[{"hours":"NaN"},{"hours":"+Inf"},{"hours":"-inf"}]`))
	s := newTestStore(t, backend)

	entries, err := Get[TimeEntry](ctx, s, TimeTracking)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, Decimal(0), e.Hours)
	}
	require.NoError(t, Set(ctx, s, TimeTracking, entries))

	out, err := json.Marshal(Decimal(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, "0", string(out))
}

// slowBackend widens the window between a read and the following write.
type slowBackend struct {
	*kv.Memory
}

func (b slowBackend) Get(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(2 * time.Millisecond)
	return b.Memory.Get(ctx, key)
}

func TestConcurrentSaveEmployeeKeepsEveryWrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, slowBackend{kv.NewMemory(0)})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.SaveEmployee(ctx, Employee{Name: "Worker"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	employees, err := s.Employees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 20)
}

func TestLockIsReentrantThroughContext(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(0))
	ctx, unlock := s.Lock(context.Background())
	defer unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := s.SaveEmployee(ctx, Employee{Name: "Nested"})
		assert.NoError(t, err)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("nested write blocked on a lock its context already holds")
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, StatusActive, NormalizeStatus("Ativo"))
	assert.Equal(t, StatusInactive, NormalizeStatus("inativo"))
	assert.Equal(t, StatusActive, NormalizeStatus(" Active "))
	assert.Equal(t, "Leave", NormalizeStatus("Leave"))
}
