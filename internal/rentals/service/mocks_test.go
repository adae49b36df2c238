package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	rentalserrors "carrental/internal/rentals/errors"
	"carrental/internal/rentals/validator"
	"carrental/internal/rentalwindow"
	"carrental/pkg/config"
	mongotx "carrental/pkg/db/mongo"
	"carrental/pkg/logger"
	"carrental/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// In-memory repositories
// ────────────────────────────────────────────────

type mockCarRepository struct {
	cars         map[string]*model.Car
	findByIDFunc func(ctx context.Context, id string) (*model.Car, error)
}

func newMockCarRepository(cars ...*model.Car) *mockCarRepository {
	m := &mockCarRepository{cars: map[string]*model.Car{}}
	for _, c := range cars {
		m.cars[c.ID] = c
	}
	return m
}

func (m *mockCarRepository) FindByID(ctx context.Context, id string) (*model.Car, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	car, ok := m.cars[id]
	if !ok {
		return nil, rentalserrors.ErrCarNotFound
	}
	copied := *car
	return &copied, nil
}

func (m *mockCarRepository) FindActiveByLocation(ctx context.Context, state, city string) ([]*model.Car, error) {
	var out []*model.Car
	for _, c := range m.cars {
		if c.Active && c.State == state && c.City == city {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *mockCarRepository) DistinctStates(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, c := range m.cars {
		if c.Active && !seen[c.State] {
			seen[c.State] = true
			out = append(out, c.State)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockCarRepository) DistinctCities(ctx context.Context, state string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, c := range m.cars {
		if c.Active && c.State == state && !seen[c.City] {
			seen[c.City] = true
			out = append(out, c.City)
		}
	}
	sort.Strings(out)
	return out, nil
}

type mockRentalRepository struct {
	mu      sync.Mutex
	rentals map[string]*model.Rental
	nextID  int

	createFunc func(ctx context.Context, rental *model.Rental) error
	updateFunc func(ctx context.Context, rental *model.Rental, expected ...string) error
	txCalls    int
}

func newMockRentalRepository(rentals ...*model.Rental) *mockRentalRepository {
	m := &mockRentalRepository{rentals: map[string]*model.Rental{}}
	for _, r := range rentals {
		m.rentals[r.ID] = r
	}
	return m
}

func (m *mockRentalRepository) Create(ctx context.Context, rental *model.Rental) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rental)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rental.ID = "66a000000000000000000" + string(rune('0'+m.nextID%10)) + "00"
	copied := *rental
	m.rentals[rental.ID] = &copied
	return nil
}

func (m *mockRentalRepository) FindByID(ctx context.Context, id string) (*model.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rentals[id]
	if !ok {
		return nil, rentalserrors.ErrNotFound
	}
	copied := *r
	copied.Payments = append([]model.Payment(nil), r.Payments...)
	return &copied, nil
}

func isActive(status string) bool {
	for _, s := range model.ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (m *mockRentalRepository) FindActiveByCars(ctx context.Context, carIDs []string, from, to time.Time, excludeID string) ([]*model.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := map[string]bool{}
	for _, id := range carIDs {
		ids[id] = true
	}
	var out []*model.Rental
	for _, r := range m.rentals {
		if ids[r.CarID] && r.ID != excludeID && isActive(r.Status) && r.StartAt.Before(to) && r.EndAt.After(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRentalRepository) FindActiveByLocation(ctx context.Context, state, city string, from, to time.Time) ([]*model.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Rental
	for _, r := range m.rentals {
		if r.State == state && r.City == city && isActive(r.Status) && r.StartAt.Before(to) && r.EndAt.After(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockRentalRepository) FindByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Rental, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Rental
	for _, r := range m.rentals {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.After(out[j].StartAt) })
	if int(offset) >= len(out) {
		return []*model.Rental{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockRentalRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rentals {
		if r.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (m *mockRentalRepository) UpdateIfStatus(ctx context.Context, rental *model.Rental, expected ...string) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, rental, expected...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.rentals[rental.ID]
	if !ok {
		return rentalserrors.ErrNotFound
	}
	for _, s := range expected {
		if stored.Status == s {
			copied := *rental
			m.rentals[rental.ID] = &copied
			return nil
		}
	}
	return rentalserrors.ErrInvalidTransition
}

// ExecuteTransaction runs fn without a real session and restores the rentals when it fails.
func (m *mockRentalRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	m.txCalls++
	snapshot := make(map[string]*model.Rental, len(m.rentals))
	for k, v := range m.rentals {
		snapshot[k] = v
	}
	m.mu.Unlock()

	if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
		m.mu.Lock()
		m.rentals = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *mockRentalRepository) stored(id string) *model.Rental {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rentals[id]
}

type mockWalletRepository struct {
	balances  map[string]int64
	debitFunc func(ctx context.Context, customerID string, cents int64) error
}

func newMockWalletRepository() *mockWalletRepository {
	return &mockWalletRepository{balances: map[string]int64{}}
}

func (m *mockWalletRepository) Get(ctx context.Context, customerID string) (*model.Wallet, error) {
	return &model.Wallet{CustomerID: customerID, RedeemableCents: m.balances[customerID]}, nil
}

func (m *mockWalletRepository) Credit(ctx context.Context, customerID string, cents int64) error {
	if cents > 0 {
		m.balances[customerID] += cents
	}
	return nil
}

func (m *mockWalletRepository) Debit(ctx context.Context, customerID string, cents int64) error {
	if m.debitFunc != nil {
		return m.debitFunc(ctx, customerID, cents)
	}
	if cents <= 0 {
		return nil
	}
	if m.balances[customerID] < cents {
		return rentalserrors.ErrInsufficientRedeemable
	}
	m.balances[customerID] -= cents
	return nil
}

type mockLockRepository struct {
	mu       sync.Mutex
	locks    map[string]*model.RentalLock
	created  int
	released int
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{locks: map[string]*model.RentalLock{}}
}

var errDuplicateLock = mongo.WriteException{
	WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.RentalLock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[lock.ID]; held {
		return errDuplicateLock
	}
	m.locks[lock.ID] = lock
	m.created++
	return nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[lockID]; ok && l.Owner == owner {
		delete(m.locks, lockID)
		m.released++
	}
	return nil
}

func (m *mockLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.locks[lockID]; ok && l.ExpiresAt.Before(now) {
		delete(m.locks, lockID)
		return true, nil
	}
	return false, nil
}

type publishedEvent struct {
	eventType string
	status    string
}

type mockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, eventType string, rental *model.Rental) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{eventType: eventType, status: rental.Status})
	return m.err
}

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.eventType)
	}
	return out
}

// ────────────────────────────────────────────────
// Fixture
// ────────────────────────────────────────────────

const (
	testCarID      = "665f1c2e8a1b2c3d4e5f6a01"
	testOtherCarID = "665f1c2e8a1b2c3d4e5f6a02"
	testCustomer   = "cust-42"
)

// fixedNow is 2024-06-15 10:00 UTC.
var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	cars      *mockCarRepository
	rentals   *mockRentalRepository
	wallets   *mockWalletRepository
	locks     *mockLockRepository
	publisher *mockPublisher
	calc      *rentalwindow.Calculator
	cfg       *config.Config
	service   RentalService
}

func newFixture(t *testing.T, rentals ...*model.Rental) *fixture {
	t.Helper()

	cfg := &config.Config{
		Log:                  logger.Discard(),
		RentalAdvancePercent: 20,
		RentalLockTTL:        time.Second,
		RentalLocation:       time.UTC,
	}
	f := &fixture{
		cars: newMockCarRepository(
			&model.Car{ID: testCarID, Name: "Swift", State: "Karnataka", City: "Bengaluru", HourlyRateCents: 1000, DailyRateCents: 15000, Active: true},
			&model.Car{ID: testOtherCarID, Name: "Alto", State: "Karnataka", City: "Bengaluru", HourlyRateCents: 800, DailyRateCents: 12000, Active: true},
		),
		rentals:   newMockRentalRepository(rentals...),
		wallets:   newMockWalletRepository(),
		locks:     newMockLockRepository(),
		publisher: &mockPublisher{},
		calc: rentalwindow.NewCalculator(
			rentalwindow.Policy{MaxHourlyDuration: 72, Location: time.UTC},
			rentalwindow.WithClock(func() time.Time { return fixedNow }),
		),
		cfg: cfg,
	}
	f.service = NewRentalService(
		f.rentals, f.cars, f.wallets, f.locks,
		validator.NewRentalValidator(cfg.Log), f.calc, f.publisher, cfg,
	)
	return f
}

// storedRental builds an existing rental on testCarID.
func storedRental(id, status, startDate, pickUp, endDate, drop string, amount int64) *model.Rental {
	start, _ := time.Parse("2006-01-02 15:04", startDate+" "+pickUp)
	end, _ := time.Parse("2006-01-02 15:04", endDate+" "+drop)
	return &model.Rental{
		ID:            id,
		CarID:         testCarID,
		CarName:       "Swift",
		State:         "Karnataka",
		City:          "Bengaluru",
		CustomerID:    testCustomer,
		LicenseNumber: "KA01AB1234",
		RentalType:    model.RentalTypeDaily,
		StartDate:     startDate,
		PickUpTime:    pickUp,
		EndDate:       endDate,
		DropTime:      drop,
		StartAt:       start,
		EndAt:         end,
		AmountCents:   amount,
		Payments:      []model.Payment{},
		Status:        status,
	}
}
