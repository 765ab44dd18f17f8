package application

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	inventory "github.com/railbook-io/railbook/internal/inventory/application"
	inventorydomain "github.com/railbook-io/railbook/internal/inventory/domain"
)

type memTrainRepo struct {
	mu     sync.Mutex
	trains map[int64]inventorydomain.Train
}

func newMemTrainRepo(trains ...inventorydomain.Train) *memTrainRepo {
	m := &memTrainRepo{trains: map[int64]inventorydomain.Train{}}
	for _, t := range trains {
		m.trains[t.Number] = t
	}
	return m
}

func (m *memTrainRepo) Insert(ctx context.Context, t inventorydomain.Train) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trains[t.Number]; ok {
		return inventory.ErrDuplicate
	}
	m.trains[t.Number] = t
	return nil
}

func (m *memTrainRepo) Get(ctx context.Context, number int64) (inventorydomain.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trains[number]
	if !ok {
		return inventorydomain.Train{}, inventory.ErrNotFound
	}
	return t, nil
}

func (m *memTrainRepo) GetAll(ctx context.Context) ([]inventorydomain.Train, error) {
	return nil, nil
}

func (m *memTrainRepo) GetBetweenStations(ctx context.Context, from, to string) ([]inventorydomain.Train, error) {
	return nil, nil
}

func (m *memTrainRepo) Update(ctx context.Context, t inventorydomain.Train) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trains[t.Number]; !ok {
		return 0, nil
	}
	m.trains[t.Number] = t
	return 1, nil
}

func (m *memTrainRepo) Delete(ctx context.Context, number int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trains[number]; !ok {
		return 0, nil
	}
	delete(m.trains, number)
	return 1, nil
}

func (m *memTrainRepo) DebitSeats(ctx context.Context, number int64, seats int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trains[number]
	if !ok || t.Available < seats {
		return 0, nil
	}
	t.Available -= seats
	m.trains[number] = t
	return 1, nil
}

type memStaging struct {
	mu     sync.Mutex
	staged map[string]StagedBooking
}

func newMemStaging() *memStaging {
	return &memStaging{staged: map[string]StagedBooking{}}
}

func (m *memStaging) Put(ctx context.Context, token string, p StagedBooking, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged[token] = p
	return nil
}

func (m *memStaging) Get(ctx context.Context, token string) (StagedBooking, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.staged[token]
	return p, ok, nil
}

func (m *memStaging) Clear(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.staged, token)
	return nil
}

func testTrain() inventorydomain.Train {
	return inventorydomain.Train{
		Number:      123,
		Name:        "Express",
		FromStation: "CityA",
		ToStation:   "CityB",
		Capacity:    5,
		Available:   5,
		Fare:        100.0,
	}
}

func newTestOrchestrator(repo *memTrainRepo) (*Orchestrator, *fakeHistoryRepo, *memStaging) {
	history := &fakeHistoryRepo{}
	staging := newMemStaging()
	orch := NewOrchestrator(inventory.NewService(repo), NewService(history), staging)
	return orch, history, staging
}

func TestConfirmBooksSeatsAndCreatesRecord(t *testing.T) {
	repo := newMemTrainRepo(testTrain())
	orch, history, staging := newTestOrchestrator(repo)
	ctx := context.Background()

	staged := StagedBooking{TrainNumber: 123, Seats: 2, Class: "AC", JourneyDate: "2023-10-10"}
	if err := orch.Stage(ctx, "tok-1", staged); err != nil {
		t.Fatalf("stage: %v", err)
	}

	transID, err := orch.Confirm(ctx, "tok-1", "test@example.com", "")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if transID == "" {
		t.Fatal("empty transaction id")
	}
	if got := repo.trains[123].Available; got != 3 {
		t.Fatalf("available = %d, want 3", got)
	}
	if len(history.records) != 1 {
		t.Fatalf("history records = %d, want 1", len(history.records))
	}
	rec := history.records[0]
	if rec.Seats != 2 || rec.Amount != 200.0 || rec.Email != "test@example.com" {
		t.Fatalf("record = %+v", rec)
	}
	if rec.FromStation != "CityA" || rec.ToStation != "CityB" {
		t.Fatalf("stations not denormalized: %+v", rec)
	}
	if _, ok, _ := staging.Get(ctx, "tok-1"); ok {
		t.Fatal("staged state not cleared after confirm")
	}
}

func TestConfirmInsufficientSeats(t *testing.T) {
	repo := newMemTrainRepo(testTrain())
	orch, history, _ := newTestOrchestrator(repo)
	ctx := context.Background()

	staged := StagedBooking{TrainNumber: 123, Seats: 10, Class: "SL", JourneyDate: "2023-10-10"}
	if err := orch.Stage(ctx, "tok-1", staged); err != nil {
		t.Fatalf("stage: %v", err)
	}

	_, err := orch.Confirm(ctx, "tok-1", "test@example.com", "")
	if err == nil || !strings.Contains(err.Error(), "Only 5 Seats") {
		t.Fatalf("got %v, want shortfall message", err)
	}
	if got := repo.trains[123].Available; got != 5 {
		t.Fatalf("available = %d, want 5 unchanged", got)
	}
	if len(history.records) != 0 {
		t.Fatal("phantom history record created")
	}
}

func TestConfirmWithoutStagedState(t *testing.T) {
	orch, _, _ := newTestOrchestrator(newMemTrainRepo(testTrain()))
	_, err := orch.Confirm(context.Background(), "tok-1", "test@example.com", "")
	if err == nil || !strings.Contains(err.Error(), "No Booking in Progress") {
		t.Fatalf("got %v", err)
	}
}

func TestStageRejectsBadInput(t *testing.T) {
	orch, _, _ := newTestOrchestrator(newMemTrainRepo(testTrain()))
	ctx := context.Background()

	cases := []StagedBooking{
		{TrainNumber: 123, Seats: 0, JourneyDate: "2023-10-10"},
		{TrainNumber: 0, Seats: 2, JourneyDate: "2023-10-10"},
		{TrainNumber: 123, Seats: 2, JourneyDate: "not-a-date"},
	}
	for _, c := range cases {
		if err := orch.Stage(ctx, "tok-1", c); err == nil {
			t.Fatalf("staged invalid params %+v", c)
		}
	}
}

func TestStageUnknownTrain(t *testing.T) {
	orch, _, _ := newTestOrchestrator(newMemTrainRepo())
	err := orch.Stage(context.Background(), "tok-1", StagedBooking{TrainNumber: 999, Seats: 1, JourneyDate: "2023-10-10"})
	if err == nil || !strings.Contains(err.Error(), "Invalid Train Number") {
		t.Fatalf("got %v", err)
	}
}

func TestStagingIsScopedPerSession(t *testing.T) {
	repo := newMemTrainRepo(testTrain())
	orch, history, _ := newTestOrchestrator(repo)
	ctx := context.Background()

	if err := orch.Stage(ctx, "tok-a", StagedBooking{TrainNumber: 123, Seats: 1, JourneyDate: "2023-10-10"}); err != nil {
		t.Fatalf("stage a: %v", err)
	}
	if err := orch.Stage(ctx, "tok-b", StagedBooking{TrainNumber: 123, Seats: 3, JourneyDate: "2023-11-11"}); err != nil {
		t.Fatalf("stage b: %v", err)
	}

	if _, err := orch.Confirm(ctx, "tok-a", "a@example.com", ""); err != nil {
		t.Fatalf("confirm a: %v", err)
	}
	if _, err := orch.Confirm(ctx, "tok-b", "b@example.com", ""); err != nil {
		t.Fatalf("confirm b: %v", err)
	}

	if len(history.records) != 2 {
		t.Fatalf("records = %d, want 2", len(history.records))
	}
	if history.records[0].Seats != 1 || history.records[1].Seats != 3 {
		t.Fatalf("staged state leaked across sessions: %+v", history.records)
	}
	if got := repo.trains[123].Available; got != 1 {
		t.Fatalf("available = %d, want 1", got)
	}
}

func TestConcurrentConfirmsNeverOversell(t *testing.T) {
	train := testTrain()
	train.Available = 3
	repo := newMemTrainRepo(train)
	orch, history, _ := newTestOrchestrator(repo)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		token := "tok-" + string(rune('a'+i))
		if err := orch.Stage(ctx, token, StagedBooking{TrainNumber: 123, Seats: 1, JourneyDate: "2023-10-10"}); err != nil {
			t.Fatalf("stage: %v", err)
		}
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			_, _ = orch.Confirm(ctx, token, "test@example.com", "")
		}(token)
	}
	wg.Wait()

	if len(history.records) != 3 {
		t.Fatalf("sold %d seats, want exactly 3", len(history.records))
	}
	if got := repo.trains[123].Available; got != 0 {
		t.Fatalf("available = %d, want 0", got)
	}
}
