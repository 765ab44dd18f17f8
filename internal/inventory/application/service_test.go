package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/railbook-io/railbook/internal/inventory/domain"
	"github.com/railbook-io/railbook/internal/outcome"
)

// fakeTrainRepo models the store's conditional-update semantics: the
// debit succeeds atomically or affects zero rows.
type fakeTrainRepo struct {
	mu     sync.Mutex
	trains map[int64]domain.Train
	err    error
}

func newFakeTrainRepo(trains ...domain.Train) *fakeTrainRepo {
	f := &fakeTrainRepo{trains: map[int64]domain.Train{}}
	for _, t := range trains {
		f.trains[t.Number] = t
	}
	return f
}

func (f *fakeTrainRepo) Insert(ctx context.Context, t domain.Train) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.trains[t.Number]; ok {
		return ErrDuplicate
	}
	f.trains[t.Number] = t
	return nil
}

func (f *fakeTrainRepo) Get(ctx context.Context, number int64) (domain.Train, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Train{}, f.err
	}
	t, ok := f.trains[number]
	if !ok {
		return domain.Train{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeTrainRepo) GetAll(ctx context.Context) ([]domain.Train, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Train
	for _, t := range f.trains {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTrainRepo) GetBetweenStations(ctx context.Context, from, to string) ([]domain.Train, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Train
	for _, t := range f.trains {
		if t.FromStation == from && t.ToStation == to {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTrainRepo) Update(ctx context.Context, t domain.Train) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.trains[t.Number]; !ok {
		return 0, nil
	}
	f.trains[t.Number] = t
	return 1, nil
}

func (f *fakeTrainRepo) Delete(ctx context.Context, number int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.trains[number]; !ok {
		return 0, nil
	}
	delete(f.trains, number)
	return 1, nil
}

func (f *fakeTrainRepo) DebitSeats(ctx context.Context, number int64, seats int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	t, ok := f.trains[number]
	if !ok || t.Available < seats {
		return 0, nil
	}
	t.Available -= seats
	f.trains[number] = t
	return 1, nil
}

func sampleTrain() domain.Train {
	return domain.Train{
		Number:      123,
		Name:        "Express",
		FromStation: "CityA",
		ToStation:   "CityB",
		Capacity:    100,
		Available:   100,
		Fare:        99.99,
	}
}

func TestAddDuplicateTrainFails(t *testing.T) {
	svc := NewService(newFakeTrainRepo(sampleTrain()))
	err := svc.Add(context.Background(), sampleTrain())
	if !outcome.IsCode(err, outcome.Failure) {
		t.Fatalf("got %v, want FAILURE", err)
	}
}

func TestGetByNumberNotFound(t *testing.T) {
	svc := NewService(newFakeTrainRepo())
	_, err := svc.GetByNumber(context.Background(), 123)
	if !outcome.IsCode(err, outcome.NotFound) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
}

func TestGetBetweenStations(t *testing.T) {
	svc := NewService(newFakeTrainRepo(sampleTrain()))
	ctx := context.Background()

	trains, err := svc.GetBetweenStations(ctx, "CityA", "CityB")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(trains) != 1 {
		t.Fatalf("got %d trains, want 1", len(trains))
	}

	_, err = svc.GetBetweenStations(ctx, "CityA", "CityC")
	if !outcome.IsCode(err, outcome.NoContent) {
		t.Fatalf("empty search: %v, want NO_CONTENT", err)
	}
}

func TestUpdateAndDeleteZeroRowsFail(t *testing.T) {
	svc := NewService(newFakeTrainRepo())
	ctx := context.Background()

	if err := svc.Update(ctx, sampleTrain()); !outcome.IsCode(err, outcome.Failure) {
		t.Fatalf("update missing: %v, want FAILURE", err)
	}
	if err := svc.Delete(ctx, 123); !outcome.IsCode(err, outcome.Failure) {
		t.Fatalf("delete missing: %v, want FAILURE", err)
	}
}

func TestDebitSeats(t *testing.T) {
	train := sampleTrain()
	train.Available = 5
	repo := newFakeTrainRepo(train)
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.DebitSeats(ctx, 123, 2); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if got := repo.trains[123].Available; got != 3 {
		t.Fatalf("available = %d, want 3", got)
	}

	err := svc.DebitSeats(ctx, 123, 10)
	if err == nil || !strings.Contains(err.Error(), "Only 3 Seats available") {
		t.Fatalf("oversell: %v, want shortfall message", err)
	}
	if got := repo.trains[123].Available; got != 3 {
		t.Fatalf("available changed on failed debit: %d", got)
	}

	err = svc.DebitSeats(ctx, 999, 1)
	if err == nil || !strings.Contains(err.Error(), "Invalid Train Number") {
		t.Fatalf("missing train: %v", err)
	}
}

func TestDebitSeatsConcurrent(t *testing.T) {
	train := sampleTrain()
	train.Available = 5
	repo := newFakeTrainRepo(train)
	svc := NewService(repo)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	sold := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.DebitSeats(context.Background(), 123, 1); err == nil {
				mu.Lock()
				sold++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if sold != 5 {
		t.Fatalf("sold %d seats, want exactly 5", sold)
	}
	if got := repo.trains[123].Available; got != 0 {
		t.Fatalf("available = %d, want 0", got)
	}
}

func TestStoreErrorMessagePreserved(t *testing.T) {
	repo := newFakeTrainRepo()
	repo.err = errors.New("DB connection failed")
	svc := NewService(repo)

	_, err := svc.GetBetweenStations(context.Background(), "A", "B")
	if err == nil || !strings.Contains(err.Error(), "DB connection failed") {
		t.Fatalf("got %v, want underlying message preserved", err)
	}
}
