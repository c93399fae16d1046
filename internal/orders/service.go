package orders

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/tableside/backoffice/internal/clock"
	"github.com/tableside/backoffice/internal/domain"
)

type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	SetReadyToServe(ctx context.Context, id string, ready bool) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListNotClosed(ctx context.Context) ([]domain.Order, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	ListByDateRangeAndStatus(ctx context.Context, from, to time.Time, status domain.OrderStatus) ([]domain.Order, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type TableStore interface {
	GetByID(ctx context.Context, id string) (*domain.Table, error)
	SetOccupied(ctx context.Context, id string, occupied bool) error
}

type DishStore interface {
	GetByID(ctx context.Context, id string) (*domain.Dish, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Service owns the order lifecycle: creation, the update state machine with
// its duration and table-occupancy side effects, item reconciliation, the
// ready-to-serve flag and deletion.
type Service struct {
	orders OrderStore
	users  UserStore
	tables TableStore
	dishes DishStore
	clock  clock.Clock

	createdEvents EventPublisher
	closedEvents  EventPublisher
	logger        *slog.Logger

	ordersCreated metric.Int64Counter
	ordersClosed  metric.Int64Counter
	orderDuration metric.Float64Histogram
}

func NewService(orders OrderStore, users UserStore, tables TableStore, dishes DishStore,
	clk clock.Clock, createdEvents, closedEvents EventPublisher, logger *slog.Logger) (*Service, error) {

	meter := otel.Meter("backoffice/orders")

	ordersCreated, err := meter.Int64Counter("orders_created_total",
		metric.WithDescription("Orders opened"))
	if err != nil {
		return nil, err
	}
	ordersClosed, err := meter.Int64Counter("orders_closed_total",
		metric.WithDescription("Orders closed"))
	if err != nil {
		return nil, err
	}
	orderDuration, err := meter.Float64Histogram("order_duration_seconds",
		metric.WithDescription("Time from order creation to close"))
	if err != nil {
		return nil, err
	}

	return &Service{
		orders:        orders,
		users:         users,
		tables:        tables,
		dishes:        dishes,
		clock:         clk,
		createdEvents: createdEvents,
		closedEvents:  closedEvents,
		logger:        logger,
		ordersCreated: ordersCreated,
		ordersClosed:  ordersClosed,
		orderDuration: orderDuration,
	}, nil
}

// Create opens a new order for a waiter at a table. The order starts OPEN
// with no items and a zero total.
func (s *Service) Create(ctx context.Context, userID, tableID string) (*domain.Order, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	table, err := s.tables.GetByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.ErrTableNotFound
	}

	order := &domain.Order{
		UserID:     user.ID,
		TableID:    table.ID,
		Status:     domain.OrderStatusOpen,
		TotalPrice: decimal.Zero,
		CreatedAt:  s.clock.Now(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.ordersCreated.Add(ctx, 1)

	if s.createdEvents != nil {
		event := domain.OrderCreatedEvent{
			OrderID:   order.ID,
			WaiterID:  order.UserID,
			TableID:   order.TableID,
			Timestamp: order.CreatedAt,
		}
		if err := s.createdEvents.Publish(ctx, order.ID, event); err != nil {
			s.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	s.logger.Info("order created", "order_id", order.ID, "table_id", order.TableID)
	return order, nil
}

type ItemInput struct {
	DishID   string
	Quantity int
	Ready    bool
}

type UpdateInput struct {
	UserID            string
	TableID           string
	Items             []ItemInput
	StartedProcessing bool
	Status            domain.OrderStatus
	ReadyToServe      bool
	TotalPrice        decimal.Decimal
}

// Update applies a full update payload to an order. Any status transition is
// accepted, including backward ones; closing computes the duration and frees
// the table, while leaving CLOSED clears the stored duration again.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	table, err := s.tables.GetByID(ctx, in.TableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, domain.ErrTableNotFound
	}

	now := s.clock.Now()

	// Processing start is recorded once and never overwritten.
	if in.StartedProcessing && order.ProcessingStartedAt == nil {
		order.ProcessingStartedAt = &now
	}

	order.UserID = user.ID
	order.TableID = table.ID
	order.Status = in.Status
	order.ReadyToServe = in.ReadyToServe
	order.TotalPrice = in.TotalPrice

	closing := in.Status == domain.OrderStatusClosed
	if closing {
		d := now.Sub(order.CreatedAt)
		order.Duration = &d
	} else {
		order.Duration = nil
	}

	target, err := s.materializeItems(ctx, order.ID, in.Items)
	if err != nil {
		return nil, err
	}

	next, removed := reconcileItems(order.Items, target)
	order.Items = next

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range removed {
		s.logger.Info("order item removed", "order_id", order.ID, "dish_id", item.DishID, "quantity", item.Quantity)
	}

	if closing {
		if err := s.tables.SetOccupied(ctx, table.ID, false); err != nil {
			return nil, err
		}

		s.ordersClosed.Add(ctx, 1)
		s.orderDuration.Record(ctx, order.Duration.Seconds())

		if s.closedEvents != nil {
			event := domain.OrderClosedEvent{
				OrderID:    order.ID,
				WaiterID:   order.UserID,
				TableID:    order.TableID,
				TotalPrice: order.TotalPrice,
				Duration:   *order.Duration,
				ItemCount:  len(order.Items),
				Timestamp:  now,
			}
			if err := s.closedEvents.Publish(ctx, order.ID, event); err != nil {
				s.logger.Error("failed to publish order closed event", "error", err, "order_id", order.ID)
			}
		}

		s.logger.Info("order closed", "order_id", order.ID, "table_id", order.TableID, "duration", order.Duration.String())
	}

	return order, nil
}

// materializeItems resolves every requested dish and builds the fresh item
// collection the reconciler replaces the current one with.
func (s *Service) materializeItems(ctx context.Context, orderID string, inputs []ItemInput) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(inputs))
	for _, in := range inputs {
		dish, err := s.dishes.GetByID(ctx, in.DishID)
		if err != nil {
			return nil, err
		}
		if dish == nil {
			return nil, domain.ErrDishNotFound
		}
		items = append(items, domain.OrderItem{
			OrderID:  orderID,
			DishID:   dish.ID,
			Quantity: in.Quantity,
			Ready:    in.Ready,
		})
	}
	return items, nil
}

// SetReadyToServe flips the kitchen-facing ready flag without touching the
// rest of the order.
func (s *Service) SetReadyToServe(ctx context.Context, id string, ready bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if err := s.orders.SetReadyToServe(ctx, id, ready); err != nil {
		return nil, err
	}

	order.ReadyToServe = ready
	return order, nil
}

// Delete reports false for an unknown order instead of failing; the store's
// delete is only reached for orders that exist.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, nil
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		return false, err
	}

	s.logger.Info("order deleted", "order_id", id)
	return true, nil
}

func (s *Service) FindAll(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *Service) FindAllNotClosed(ctx context.Context) ([]domain.Order, error) {
	return s.orders.ListNotClosed(ctx)
}

func (s *Service) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	return s.orders.ListByStatus(ctx, status)
}

func (s *Service) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// FindInRange returns orders with the given status created between two
// calendar dates, the end date inclusive through end of day.
func (s *Service) FindInRange(ctx context.Context, startDate, endDate time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	from, to := dayRange(startDate, endDate)
	return s.orders.ListByDateRangeAndStatus(ctx, from, to, status)
}

// ServeStatuses projects every not-closed order for the live dashboard. The
// result is never nil.
func (s *Service) ServeStatuses(ctx context.Context) ([]domain.ServeStatus, error) {
	open, err := s.orders.ListNotClosed(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]domain.ServeStatus, 0, len(open))
	for _, order := range open {
		statuses = append(statuses, domain.ServeStatus{
			OrderID:      order.ID,
			Status:       order.Status,
			ReadyToServe: order.ReadyToServe,
			TableID:      order.TableID,
		})
	}
	return statuses, nil
}

// dayRange widens [startDate, endDate] calendar dates into the half-open
// timestamp interval [start 00:00, end+1d 00:00) in UTC.
func dayRange(startDate, endDate time.Time) (time.Time, time.Time) {
	from := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return from, to
}
