package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-order-storefront/models"
)

func item(id string, price int64) models.CartLineItem {
	return models.CartLineItem{
		ID:        id,
		Name:      "Meal " + id,
		UnitPrice: decimal.NewFromInt(price),
	}
}

func mustReduce(t *testing.T, state State, actions ...Action) State {
	t.Helper()
	for _, action := range actions {
		var err error
		state, err = Reduce(state, action)
		require.NoError(t, err)
	}
	return state
}

func TestReduceAddItem(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
		wantIDs []string
		wantQty []int
	}{
		{
			name:    "New item is appended with quantity 1",
			actions: []Action{AddItem{Item: item("m1", 10)}},
			wantIDs: []string{"m1"},
			wantQty: []int{1},
		},
		{
			name:    "Same item twice aggregates into one line",
			actions: []Action{AddItem{Item: item("m1", 10)}, AddItem{Item: item("m1", 10)}},
			wantIDs: []string{"m1"},
			wantQty: []int{2},
		},
		{
			name: "Incoming quantity is ignored",
			actions: []Action{AddItem{Item: models.CartLineItem{
				ID:        "m1",
				UnitPrice: decimal.NewFromInt(3),
				Quantity:  7,
			}}},
			wantIDs: []string{"m1"},
			wantQty: []int{1},
		},
		{
			name: "Insertion order is preserved",
			actions: []Action{
				AddItem{Item: item("m2", 5)},
				AddItem{Item: item("m1", 10)},
				AddItem{Item: item("m2", 5)},
			},
			wantIDs: []string{"m2", "m1"},
			wantQty: []int{2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := mustReduce(t, EmptyState(), tt.actions...)

			require.Len(t, state.Items, len(tt.wantIDs))
			for i, line := range state.Items {
				assert.Equal(t, tt.wantIDs[i], line.ID)
				assert.Equal(t, tt.wantQty[i], line.Quantity)
			}
		})
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	before := mustReduce(t, EmptyState(), AddItem{Item: item("m1", 10)})

	after := mustReduce(t, before, AddItem{Item: item("m1", 10)}, AddItem{Item: item("m2", 4)})

	assert.Equal(t, 1, before.Items[0].Quantity)
	assert.Len(t, before.Items, 1)
	assert.Equal(t, 2, after.Items[0].Quantity)
}

func TestReduceRemoveItem(t *testing.T) {
	t.Run("Decrements in place when quantity is above one", func(t *testing.T) {
		state := mustReduce(t, EmptyState(),
			AddItem{Item: item("m1", 10)},
			AddItem{Item: item("m2", 5)},
			AddItem{Item: item("m1", 10)},
		)

		state = mustReduce(t, state, RemoveItem{ID: "m1"})

		require.Len(t, state.Items, 2)
		assert.Equal(t, "m1", state.Items[0].ID)
		assert.Equal(t, 1, state.Items[0].Quantity)
	})

	t.Run("Removing quantity times drops the line", func(t *testing.T) {
		state := mustReduce(t, EmptyState(),
			AddItem{Item: item("m1", 10)},
			AddItem{Item: item("m1", 10)},
			AddItem{Item: item("m1", 10)},
			AddItem{Item: item("m2", 5)},
		)

		state = mustReduce(t, state, RemoveItem{ID: "m1"}, RemoveItem{ID: "m1"}, RemoveItem{ID: "m1"})

		require.Len(t, state.Items, 1)
		assert.Equal(t, "m2", state.Items[0].ID)
	})

	t.Run("Missing id is a client state error and a no-op", func(t *testing.T) {
		state := mustReduce(t, EmptyState(), AddItem{Item: item("m1", 10)})

		next, err := Reduce(state, RemoveItem{ID: "ghost"})

		require.Error(t, err)
		var stateErr *ClientStateError
		require.True(t, errors.As(err, &stateErr))
		assert.Equal(t, CodeItemNotInCart, stateErr.Code)
		assert.Equal(t, "ghost", stateErr.ItemID)
		assert.Equal(t, state, next)
	})

	t.Run("Removing once more after the line is gone keeps it absent", func(t *testing.T) {
		state := mustReduce(t, EmptyState(), AddItem{Item: item("m1", 10)}, RemoveItem{ID: "m1"})

		next, err := Reduce(state, RemoveItem{ID: "m1"})

		assert.Error(t, err)
		assert.Empty(t, next.Items)
	})
}

func TestReduceClearCart(t *testing.T) {
	for _, size := range []int{0, 1, 5} {
		state := EmptyState()
		for i := 0; i < size; i++ {
			state = mustReduce(t, state, AddItem{Item: item(string(rune('a'+i)), int64(i+1))})
		}

		state = mustReduce(t, state, ClearCart{})

		assert.Empty(t, state.Items)
		assert.NotNil(t, state.Items)
	}
}

func TestReduceRejectsInvalidActions(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		code   ErrorCode
	}{
		{name: "Nil action", action: nil, code: CodeUnknownAction},
		{name: "Empty id", action: AddItem{Item: models.CartLineItem{Name: "x"}}, code: CodeInvalidItem},
		{name: "Negative price", action: AddItem{Item: item("m1", -1)}, code: CodeInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(EmptyState(), tt.action)

			var stateErr *ClientStateError
			require.True(t, errors.As(err, &stateErr))
			assert.Equal(t, tt.code, stateErr.Code)
		})
	}
}

func TestTotal(t *testing.T) {
	state := State{Items: []models.CartLineItem{
		{ID: "a", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		{ID: "b", UnitPrice: decimal.NewFromInt(5), Quantity: 3},
	}}

	assert.True(t, decimal.NewFromInt(35).Equal(Total(state)))
	assert.Equal(t, 5, Count(state))
}

func TestTotalIsExactForFractionalPrices(t *testing.T) {
	state := State{Items: []models.CartLineItem{
		{ID: "a", UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3},
		{ID: "b", UnitPrice: decimal.RequireFromString("0.20"), Quantity: 1},
	}}

	assert.Equal(t, "0.5", Total(state).String())
}

func TestCommandRoundTrip(t *testing.T) {
	actions := []Action{AddItem{Item: item("m1", 3)}, RemoveItem{ID: "m1"}, ClearCart{}}

	for _, action := range actions {
		got, err := CommandOf(action).Action()
		require.NoError(t, err)
		assert.Equal(t, action, got)
	}

	_, err := Command{Type: "EXPLODE"}.Action()
	assert.Error(t, err)
}
