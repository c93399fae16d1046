package orders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tableside/backoffice/internal/domain"
)

type memOrderStore struct {
	orders      map[string]*domain.Order
	seq         int
	updateCalls int
	deleteCalls int
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: make(map[string]*domain.Order)}
}

func (s *memOrderStore) Create(_ context.Context, order *domain.Order) error {
	s.seq++
	order.ID = fmt.Sprintf("order-%d", s.seq)
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *memOrderStore) Update(_ context.Context, order *domain.Order) error {
	s.updateCalls++
	for i := range order.Items {
		if order.Items[i].ID == "" {
			s.seq++
			order.Items[i].ID = fmt.Sprintf("item-%d", s.seq)
		}
		order.Items[i].OrderID = order.ID
	}
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *memOrderStore) SetReadyToServe(_ context.Context, id string, ready bool) error {
	if order, ok := s.orders[id]; ok {
		order.ReadyToServe = ready
	}
	return nil
}

func (s *memOrderStore) Delete(_ context.Context, id string) error {
	s.deleteCalls++
	delete(s.orders, id)
	return nil
}

func (s *memOrderStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (s *memOrderStore) List(_ context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	for _, order := range s.orders {
		orders = append(orders, *cloneOrder(order))
	}
	return orders, nil
}

func (s *memOrderStore) ListNotClosed(_ context.Context) ([]domain.Order, error) {
	orders := []domain.Order{}
	for _, order := range s.orders {
		if order.Status != domain.OrderStatusClosed {
			orders = append(orders, *cloneOrder(order))
		}
	}
	return orders, nil
}

func (s *memOrderStore) ListByStatus(_ context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	orders := []domain.Order{}
	for _, order := range s.orders {
		if order.Status == status {
			orders = append(orders, *cloneOrder(order))
		}
	}
	return orders, nil
}

func (s *memOrderStore) ListByDateRangeAndStatus(_ context.Context, from, to time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	orders := []domain.Order{}
	for _, order := range s.orders {
		if order.Status == status && !order.CreatedAt.Before(from) && order.CreatedAt.Before(to) {
			orders = append(orders, *cloneOrder(order))
		}
	}
	return orders, nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = append([]domain.OrderItem(nil), order.Items...)
	if order.ProcessingStartedAt != nil {
		t := *order.ProcessingStartedAt
		clone.ProcessingStartedAt = &t
	}
	if order.Duration != nil {
		d := *order.Duration
		clone.Duration = &d
	}
	return &clone
}

type memUserStore struct {
	users map[string]domain.User
}

func (s *memUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

type memTableStore struct {
	tables       map[string]domain.Table
	occupiedSets []string
}

func (s *memTableStore) GetByID(_ context.Context, id string) (*domain.Table, error) {
	table, ok := s.tables[id]
	if !ok {
		return nil, nil
	}
	return &table, nil
}

func (s *memTableStore) SetOccupied(_ context.Context, id string, occupied bool) error {
	table, ok := s.tables[id]
	if !ok {
		return domain.ErrTableNotFound
	}
	table.Occupied = occupied
	s.tables[id] = table
	s.occupiedSets = append(s.occupiedSets, fmt.Sprintf("%s=%t", id, occupied))
	return nil
}

type memDishStore struct {
	dishes map[string]domain.Dish
}

func (s *memDishStore) GetByID(_ context.Context, id string) (*domain.Dish, error) {
	dish, ok := s.dishes[id]
	if !ok {
		return nil, nil
	}
	return &dish, nil
}

type capturePublisher struct {
	events []any
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event any) error {
	p.events = append(p.events, event)
	return nil
}

// stepClock lets a test advance time between calls.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	return c.now
}

type fixture struct {
	service *Service
	orders  *memOrderStore
	tables  *memTableStore
	clock   *stepClock
	created *capturePublisher
	closed  *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	orderStore := newMemOrderStore()
	userStore := &memUserStore{users: map[string]domain.User{
		"waiter-1": {ID: "waiter-1", FirstName: "Anna", LastName: "Kowalska", Role: domain.RoleWaiter},
	}}
	tableStore := &memTableStore{tables: map[string]domain.Table{
		"table-2": {ID: "table-2", Name: "Window 2", Seats: 4, Active: true, Occupied: true},
	}}
	dishStore := &memDishStore{dishes: map[string]domain.Dish{
		"dish-5": {ID: "dish-5", Name: "Pasta", Price: decimal.RequireFromString("9.99")},
		"dish-6": {ID: "dish-6", Name: "Soup", Price: decimal.RequireFromString("4.50")},
	}}

	clk := &stepClock{now: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)}
	created := &capturePublisher{}
	closed := &capturePublisher{}

	service, err := NewService(orderStore, userStore, tableStore, dishStore, clk, created, closed,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	return &fixture{
		service: service,
		orders:  orderStore,
		tables:  tableStore,
		clock:   clk,
		created: created,
		closed:  closed,
	}
}

func TestService_Create(t *testing.T) {
	t.Run("new order is open with no items and no duration", func(t *testing.T) {
		f := newFixture(t)

		order, err := f.service.Create(context.Background(), "waiter-1", "table-2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if order.Status != domain.OrderStatusOpen {
			t.Errorf("expected status OPEN, got %s", order.Status)
		}
		if order.Duration != nil {
			t.Error("expected duration to be unset on creation")
		}
		if order.ProcessingStartedAt != nil {
			t.Error("expected processing start to be unset on creation")
		}
		if len(order.Items) != 0 {
			t.Errorf("expected no items, got %d", len(order.Items))
		}
		if !order.CreatedAt.Equal(f.clock.now) {
			t.Errorf("expected created_at %s, got %s", f.clock.now, order.CreatedAt)
		}
		if len(f.created.events) != 1 {
			t.Fatalf("expected 1 created event, got %d", len(f.created.events))
		}
		event := f.created.events[0].(domain.OrderCreatedEvent)
		if event.OrderID != order.ID || event.TableID != "table-2" {
			t.Errorf("unexpected event payload: %+v", event)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Create(context.Background(), "nobody", "table-2")
		if err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Create(context.Background(), "waiter-1", "table-99")
		if err != domain.ErrTableNotFound {
			t.Fatalf("expected ErrTableNotFound, got %v", err)
		}
	})
}

func baseUpdate() UpdateInput {
	return UpdateInput{
		UserID:       "waiter-1",
		TableID:      "table-2",
		Status:       domain.OrderStatusOpen,
		ReadyToServe: false,
		TotalPrice:   decimal.Zero,
	}
}

func TestService_Update(t *testing.T) {
	t.Run("closing sets duration and releases the table", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		f.clock.now = f.clock.now.Add(45 * time.Minute)

		in := baseUpdate()
		in.Status = domain.OrderStatusClosed
		in.TotalPrice = decimal.RequireFromString("19.98")
		in.Items = []ItemInput{{DishID: "dish-5", Quantity: 2}}

		updated, err := f.service.Update(context.Background(), order.ID, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if updated.Duration == nil {
			t.Fatal("expected duration to be set on close")
		}
		if *updated.Duration != 45*time.Minute {
			t.Errorf("expected duration 45m, got %s", *updated.Duration)
		}
		if len(updated.Items) != 1 || updated.Items[0].DishID != "dish-5" || updated.Items[0].Quantity != 2 {
			t.Errorf("unexpected items: %+v", updated.Items)
		}
		if f.tables.tables["table-2"].Occupied {
			t.Error("expected table to be released on close")
		}
		if len(f.closed.events) != 1 {
			t.Fatalf("expected 1 closed event, got %d", len(f.closed.events))
		}
		event := f.closed.events[0].(domain.OrderClosedEvent)
		if !event.TotalPrice.Equal(decimal.RequireFromString("19.98")) {
			t.Errorf("unexpected event total: %s", event.TotalPrice)
		}
	})

	t.Run("reopening clears the stored duration", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		in := baseUpdate()
		in.Status = domain.OrderStatusClosed
		if _, err := f.service.Update(context.Background(), order.ID, in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		in.Status = domain.OrderStatusInProgress
		reopened, err := f.service.Update(context.Background(), order.ID, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if reopened.Duration != nil {
			t.Errorf("expected duration to be cleared, got %s", *reopened.Duration)
		}
	})

	t.Run("processing start is set once and never overwritten", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		f.clock.now = f.clock.now.Add(5 * time.Minute)
		firstStart := f.clock.now

		in := baseUpdate()
		in.StartedProcessing = true
		in.Status = domain.OrderStatusInProgress
		updated, err := f.service.Update(context.Background(), order.ID, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.ProcessingStartedAt == nil || !updated.ProcessingStartedAt.Equal(firstStart) {
			t.Fatalf("expected processing start %s, got %v", firstStart, updated.ProcessingStartedAt)
		}

		f.clock.now = f.clock.now.Add(20 * time.Minute)
		updated, err = f.service.Update(context.Background(), order.ID, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.ProcessingStartedAt.Equal(firstStart) {
			t.Errorf("processing start was overwritten: %s", updated.ProcessingStartedAt)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Update(context.Background(), "missing", baseUpdate())
		if err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("unknown user aborts without persisting", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")
		updatesBefore := f.orders.updateCalls

		in := baseUpdate()
		in.UserID = "nobody"
		_, err := f.service.Update(context.Background(), order.ID, in)
		if err != domain.ErrUserNotFound {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
		if f.orders.updateCalls != updatesBefore {
			t.Error("expected no persistence after failed user lookup")
		}
	})

	t.Run("unknown dish aborts without persisting", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")
		updatesBefore := f.orders.updateCalls

		in := baseUpdate()
		in.Items = []ItemInput{{DishID: "dish-404", Quantity: 1}}
		_, err := f.service.Update(context.Background(), order.ID, in)
		if err != domain.ErrDishNotFound {
			t.Fatalf("expected ErrDishNotFound, got %v", err)
		}
		if f.orders.updateCalls != updatesBefore {
			t.Error("expected no persistence after failed dish lookup")
		}
	})

	t.Run("item list replaces the current collection", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		in := baseUpdate()
		in.Items = []ItemInput{{DishID: "dish-5", Quantity: 2}, {DishID: "dish-6", Quantity: 1}}
		if _, err := f.service.Update(context.Background(), order.ID, in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		in.Items = []ItemInput{{DishID: "dish-6", Quantity: 1}}
		updated, err := f.service.Update(context.Background(), order.ID, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(updated.Items) != 1 || updated.Items[0].DishID != "dish-6" {
			t.Errorf("expected only dish-6 to remain, got %+v", updated.Items)
		}

		stored, _ := f.orders.GetByID(context.Background(), order.ID)
		if len(stored.Items) != 1 || stored.Items[0].DishID != "dish-6" {
			t.Errorf("expected store to hold only dish-6, got %+v", stored.Items)
		}
	})

	t.Run("empty item list removes everything", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		in := baseUpdate()
		in.Items = []ItemInput{{DishID: "dish-5", Quantity: 2}}
		if _, err := f.service.Update(context.Background(), order.ID, in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		in.Items = nil
		updated, err := f.service.Update(context.Background(), order.ID, in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(updated.Items) != 0 {
			t.Errorf("expected no items, got %+v", updated.Items)
		}
	})
}

func TestService_SetReadyToServe(t *testing.T) {
	t.Run("sets the flag", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		updated, err := f.service.SetReadyToServe(context.Background(), order.ID, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !updated.ReadyToServe {
			t.Error("expected ready_to_serve to be true")
		}

		stored, _ := f.orders.GetByID(context.Background(), order.ID)
		if !stored.ReadyToServe {
			t.Error("expected flag to be persisted")
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.SetReadyToServe(context.Background(), "missing", true)
		if err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("reports false for unknown order without touching the store", func(t *testing.T) {
		f := newFixture(t)

		deleted, err := f.service.Delete(context.Background(), "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted {
			t.Error("expected deleted=false")
		}
		if f.orders.deleteCalls != 0 {
			t.Errorf("expected no delete calls, got %d", f.orders.deleteCalls)
		}
	})

	t.Run("deletes an existing order", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		deleted, err := f.service.Delete(context.Background(), order.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !deleted {
			t.Error("expected deleted=true")
		}

		stored, _ := f.orders.GetByID(context.Background(), order.ID)
		if stored != nil {
			t.Error("expected order to be gone")
		}
	})
}

func TestService_ServeStatuses(t *testing.T) {
	t.Run("projects every not-closed order", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		statuses, err := f.service.ServeStatuses(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(statuses) != 1 {
			t.Fatalf("expected 1 status, got %d", len(statuses))
		}
		if statuses[0].OrderID != order.ID || statuses[0].TableID != "table-2" || statuses[0].Status != domain.OrderStatusOpen {
			t.Errorf("unexpected projection: %+v", statuses[0])
		}
	})

	t.Run("closed orders are excluded and the result is never nil", func(t *testing.T) {
		f := newFixture(t)
		order, _ := f.service.Create(context.Background(), "waiter-1", "table-2")

		in := baseUpdate()
		in.Status = domain.OrderStatusClosed
		if _, err := f.service.Update(context.Background(), order.ID, in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		statuses, err := f.service.ServeStatuses(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if statuses == nil {
			t.Fatal("expected non-nil result")
		}
		if len(statuses) != 0 {
			t.Errorf("expected empty result, got %+v", statuses)
		}
	})
}
