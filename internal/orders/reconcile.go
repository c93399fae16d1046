package orders

import "github.com/tableside/backoffice/internal/domain"

// reconcileItems diffs an order's current item collection against the freshly
// materialized target collection. Items are compared by dish, quantity and
// ready flag, not by identity: an existing item survives the diff when any
// target item equals it. The returned collection is always the target set
// itself — matched items are rebuilt, not patched — and removed holds the
// existing items that no target equals, so the caller can delete them.
func reconcileItems(current, target []domain.OrderItem) (next, removed []domain.OrderItem) {
	for _, item := range current {
		if !containsEqualItem(target, item) {
			removed = append(removed, item)
		}
	}
	return target, removed
}

func containsEqualItem(items []domain.OrderItem, item domain.OrderItem) bool {
	for _, other := range items {
		if other.DishID == item.DishID && other.Quantity == item.Quantity && other.Ready == item.Ready {
			return true
		}
	}
	return false
}
