package cart

import (
	"github.com/shopspring/decimal"

	"food-order-storefront/models"
)

// State is an immutable snapshot of the cart. Reduce never modifies the
// Items slice of the state it receives.
type State struct {
	Items []models.CartLineItem `json:"items"`
}

// EmptyState returns a cart with no items.
func EmptyState() State {
	return State{Items: []models.CartLineItem{}}
}

// Reduce applies action to state and returns the next state. On error the
// input state is returned unchanged.
func Reduce(state State, action Action) (State, error) {
	switch a := action.(type) {
	case AddItem:
		return addItem(state, a.Item)
	case RemoveItem:
		return removeItem(state, a.ID)
	case ClearCart:
		return EmptyState(), nil
	case nil:
		return state, newClientStateError(CodeUnknownAction, ErrMsgNilAction, "")
	default:
		return state, newClientStateError(CodeUnknownAction, ErrMsgUnknownAction, action.Name())
	}
}

func addItem(state State, item models.CartLineItem) (State, error) {
	if item.ID == "" {
		return state, newClientStateError(CodeInvalidItem, ErrMsgItemIDRequired, "")
	}
	if item.UnitPrice.IsNegative() {
		return state, newClientStateError(CodeInvalidItem, ErrMsgNegativePrice, item.ID)
	}

	items := copyItems(state.Items)
	if idx := indexOf(items, item.ID); idx >= 0 {
		items[idx].Quantity++
		return State{Items: items}, nil
	}

	item.Quantity = 1
	return State{Items: append(items, item)}, nil
}

func removeItem(state State, id string) (State, error) {
	idx := indexOf(state.Items, id)
	if idx < 0 {
		return state, newClientStateError(CodeItemNotInCart, ErrMsgItemNotInCart, id)
	}

	items := copyItems(state.Items)
	if items[idx].Quantity <= 1 {
		return State{Items: append(items[:idx], items[idx+1:]...)}, nil
	}
	items[idx].Quantity--
	return State{Items: items}, nil
}

// Total returns the sum of quantity times unit price over all lines.
func Total(state State) decimal.Decimal {
	total := decimal.Zero
	for _, item := range state.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count returns the number of units in the cart.
func Count(state State) int {
	count := 0
	for _, item := range state.Items {
		count += item.Quantity
	}
	return count
}

func indexOf(items []models.CartLineItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func copyItems(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, len(items), len(items)+1)
	copy(out, items)
	return out
}
