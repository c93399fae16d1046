package orders

import (
	"testing"

	"github.com/tableside/backoffice/internal/domain"
)

func item(id, dishID string, quantity int, ready bool) domain.OrderItem {
	return domain.OrderItem{ID: id, DishID: dishID, Quantity: quantity, Ready: ready}
}

func TestReconcileItems(t *testing.T) {
	t.Run("equal items survive the diff", func(t *testing.T) {
		current := []domain.OrderItem{item("a", "pasta", 2, false)}
		target := []domain.OrderItem{item("", "pasta", 2, false)}

		next, removed := reconcileItems(current, target)

		if len(removed) != 0 {
			t.Errorf("expected nothing removed, got %+v", removed)
		}
		if len(next) != 1 || next[0].DishID != "pasta" {
			t.Errorf("unexpected next collection: %+v", next)
		}
	})

	t.Run("items with no equal counterpart are removed", func(t *testing.T) {
		current := []domain.OrderItem{
			item("a", "pasta", 2, false),
			item("b", "soup", 1, false),
		}
		target := []domain.OrderItem{item("", "pasta", 2, false)}

		_, removed := reconcileItems(current, target)

		if len(removed) != 1 || removed[0].ID != "b" {
			t.Errorf("expected only the soup item removed, got %+v", removed)
		}
	})

	t.Run("quantity change counts as a different item", func(t *testing.T) {
		current := []domain.OrderItem{item("a", "pasta", 2, false)}
		target := []domain.OrderItem{item("", "pasta", 3, false)}

		_, removed := reconcileItems(current, target)

		if len(removed) != 1 || removed[0].ID != "a" {
			t.Errorf("expected the old pasta item removed, got %+v", removed)
		}
	})

	t.Run("ready flag change counts as a different item", func(t *testing.T) {
		current := []domain.OrderItem{item("a", "pasta", 2, false)}
		target := []domain.OrderItem{item("", "pasta", 2, true)}

		_, removed := reconcileItems(current, target)

		if len(removed) != 1 {
			t.Errorf("expected the stale item removed, got %+v", removed)
		}
	})

	t.Run("equal duplicates are interchangeable", func(t *testing.T) {
		current := []domain.OrderItem{
			item("a", "pasta", 2, false),
			item("b", "pasta", 2, false),
		}
		target := []domain.OrderItem{item("", "pasta", 2, false)}

		next, removed := reconcileItems(current, target)

		// Both existing rows equal the single target item, so neither is
		// reported as removed even though the collection shrinks.
		if len(removed) != 0 {
			t.Errorf("expected nothing removed, got %+v", removed)
		}
		if len(next) != 1 {
			t.Errorf("expected the target collection of 1, got %+v", next)
		}
	})

	t.Run("empty target removes every current item", func(t *testing.T) {
		current := []domain.OrderItem{
			item("a", "pasta", 2, false),
			item("b", "soup", 1, true),
		}

		next, removed := reconcileItems(current, nil)

		if len(next) != 0 {
			t.Errorf("expected empty next collection, got %+v", next)
		}
		if len(removed) != 2 {
			t.Errorf("expected both items removed, got %+v", removed)
		}
	})

	t.Run("result is the target collection with fresh identities", func(t *testing.T) {
		current := []domain.OrderItem{item("a", "pasta", 2, false)}
		target := []domain.OrderItem{item("", "pasta", 2, false)}

		next, _ := reconcileItems(current, target)

		if next[0].ID != "" {
			t.Errorf("expected the rebuilt item without the old identity, got %q", next[0].ID)
		}
	})
}
