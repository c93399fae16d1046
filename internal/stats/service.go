package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tableside/backoffice/internal/domain"
)

type OrderSource interface {
	ListByDateRangeAndStatus(ctx context.Context, from, to time.Time, status domain.OrderStatus) ([]domain.Order, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}

type DishSource interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Dish, error)
}

type UserSource interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.User, error)
}

// Service computes reporting aggregations over closed orders. All keyed
// results use insertion-ordered maps so keys come out in the chronological
// order they were first seen, which is also the order their JSON encodes in.
type Service struct {
	orders OrderSource
	dishes DishSource
	users  UserSource
}

func NewService(orders OrderSource, dishes DishSource, users UserSource) *Service {
	return &Service{
		orders: orders,
		dishes: dishes,
		users:  users,
	}
}

const dateKeyFormat = "2006-01-02"

// OrderCountByDay counts closed orders per calendar day of creation. Days
// without closed orders are absent, not zero.
func (s *Service) OrderCountByDay(ctx context.Context, startDate, endDate time.Time) (*orderedmap.OrderedMap[string, int], error) {
	orders, err := s.closedInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	counts := orderedmap.New[string, int]()
	for _, order := range orders {
		day := order.CreatedAt.UTC().Format(dateKeyFormat)
		n, _ := counts.Get(day)
		counts.Set(day, n+1)
	}
	return counts, nil
}

// TotalPriceByDay sums closed-order totals per calendar day with decimal
// arithmetic.
func (s *Service) TotalPriceByDay(ctx context.Context, startDate, endDate time.Time) (*orderedmap.OrderedMap[string, decimal.Decimal], error) {
	orders, err := s.closedInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	totals := orderedmap.New[string, decimal.Decimal]()
	for _, order := range orders {
		day := order.CreatedAt.UTC().Format(dateKeyFormat)
		total, _ := totals.Get(day)
		totals.Set(day, total.Add(order.TotalPrice))
	}
	return totals, nil
}

// WaiterStats counts closed orders per waiter, keyed by display name.
func (s *Service) WaiterStats(ctx context.Context, startDate, endDate time.Time) (*orderedmap.OrderedMap[string, int], error) {
	orders, err := s.closedInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(orders))
	seen := make(map[string]bool)
	for _, order := range orders {
		if !seen[order.UserID] {
			seen[order.UserID] = true
			userIDs = append(userIDs, order.UserID)
		}
	}

	users, err := s.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	counts := orderedmap.New[string, int]()
	for _, order := range orders {
		user, ok := users[order.UserID]
		if !ok {
			continue
		}
		name := user.FullName()
		n, _ := counts.Get(name)
		counts.Set(name, n+1)
	}
	return counts, nil
}

// DishStats sums ordered quantities per dish name across all items of closed
// orders in range.
func (s *Service) DishStats(ctx context.Context, startDate, endDate time.Time) (*orderedmap.OrderedMap[string, int], error) {
	orders, err := s.closedInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	dishes, err := s.dishes.GetByIDs(ctx, collectDishIDs(orders))
	if err != nil {
		return nil, err
	}

	quantities := orderedmap.New[string, int]()
	for _, order := range orders {
		for _, item := range order.Items {
			dish, ok := dishes[item.DishID]
			if !ok {
				continue
			}
			n, _ := quantities.Get(dish.Name)
			quantities.Set(dish.Name, n+item.Quantity)
		}
	}
	return quantities, nil
}

// IngredientStats sums ingredient consumption across closed orders, keyed
// "name [unit]". Links whose ingredient was removed from the catalog are
// skipped.
func (s *Service) IngredientStats(ctx context.Context, startDate, endDate time.Time) (*orderedmap.OrderedMap[string, float64], error) {
	orders, err := s.closedInRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	dishes, err := s.dishes.GetByIDs(ctx, collectDishIDs(orders))
	if err != nil {
		return nil, err
	}

	quantities := orderedmap.New[string, float64]()
	for _, order := range orders {
		for _, item := range order.Items {
			dish, ok := dishes[item.DishID]
			if !ok {
				continue
			}
			for _, link := range dish.Ingredients {
				if link.Ingredient == nil {
					continue
				}
				key := fmt.Sprintf("%s [%s]", link.Ingredient.Name, link.Ingredient.Unit.Name)
				total, _ := quantities.Get(key)
				quantities.Set(key, total+link.Quantity*float64(item.Quantity))
			}
		}
	}
	return quantities, nil
}

// HourlyTraffic buckets every order of a single day, regardless of status, by
// the hour of its creation timestamp. Hours 1 through 24 are always present
// even when empty; counted hours are 0-based, so a midnight order lands in an
// extra bucket 0 and bucket 24 never receives data. The shape is kept for
// compatibility with the dashboards already consuming it.
func (s *Service) HourlyTraffic(ctx context.Context, date time.Time) (map[int]int, error) {
	from, to := dayRange(date, date)
	orders, err := s.orders.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	traffic := make(map[int]int, 24)
	for _, order := range orders {
		hour := order.CreatedAt.UTC().Hour()
		traffic[hour]++
	}

	for hour := 1; hour <= 24; hour++ {
		if _, ok := traffic[hour]; !ok {
			traffic[hour] = 0
		}
	}
	return traffic, nil
}

func (s *Service) closedInRange(ctx context.Context, startDate, endDate time.Time) ([]domain.Order, error) {
	from, to := dayRange(startDate, endDate)
	return s.orders.ListByDateRangeAndStatus(ctx, from, to, domain.OrderStatusClosed)
}

func collectDishIDs(orders []domain.Order) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, order := range orders {
		for _, item := range order.Items {
			if !seen[item.DishID] {
				seen[item.DishID] = true
				ids = append(ids, item.DishID)
			}
		}
	}
	return ids
}

// dayRange widens [startDate, endDate] calendar dates into the half-open
// timestamp interval [start 00:00, end+1d 00:00) in UTC.
func dayRange(startDate, endDate time.Time) (time.Time, time.Time) {
	from := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return from, to
}
