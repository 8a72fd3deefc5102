package session

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-order-storefront/checkout"
	"food-order-storefront/config"
	"food-order-storefront/progress"
	"food-order-storefront/request"
	"food-order-storefront/storefronttest"
)

func newTestSession(t *testing.T, dismissal config.Dismissal, delay time.Duration) (*Session, *storefronttest.Server) {
	t.Helper()
	srv := storefronttest.NewServer(t)
	cfg := config.Config{
		APIURL:       srv.URL,
		Dismissal:    dismissal,
		DismissDelay: delay,
		HTTPTimeout:  5 * time.Second,
	}
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, srv
}

func validForm() checkout.Form {
	return checkout.Form{
		checkout.FieldName:       "Ada Lovelace",
		checkout.FieldEmail:      "ada@example.com",
		checkout.FieldStreet:     "Main St 1",
		checkout.FieldPostalCode: "12345",
		checkout.FieldCity:       "Springfield",
	}
}

// fillCart adds the first meal twice and the second once, then opens
// checkout.
func fillCart(t *testing.T, s *Session) {
	t.Helper()
	meals := s.Snapshot().Menu.Data
	require.GreaterOrEqual(t, len(meals), 2)
	require.NoError(t, s.AddMeal(meals[0]))
	require.NoError(t, s.AddMeal(meals[0]))
	require.NoError(t, s.AddMeal(meals[1]))
	s.Progress.ShowCart()
	s.Progress.ShowCheckout()
}

func TestNewFetchesMenuOnce(t *testing.T) {
	s, srv := newTestSession(t, config.DismissImmediate, 0)

	again, err := s.Menu(context.Background())
	require.NoError(t, err)
	defer s.ReleaseMenu()

	assert.Equal(t, 1, srv.Requests("/meals"))
	assert.Equal(t, request.Success, again.Snapshot().Status)
	assert.Len(t, s.Snapshot().Menu.Data, len(storefronttest.DefaultMeals()))
	assert.Equal(t, 0, srv.Requests("/orders"))
}

func TestSubmitOrderImmediateDismissal(t *testing.T) {
	s, srv := newTestSession(t, config.DismissImmediate, 0)
	fillCart(t, s)
	require.Equal(t, "30.97", s.Snapshot().Total.String())

	result, err := s.SubmitOrder(context.Background(), validForm())

	require.NoError(t, err)
	assert.Equal(t, request.Success, result.Status)
	assert.Equal(t, storefronttest.MsgOrderCreated, result.Data.Message)

	snap := s.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, progress.Closed, snap.Progress.State)
	assert.Equal(t, request.Idle, snap.Order.Status)

	orders := srv.Orders()
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.Equal(t, "Ada Lovelace", orders[0].Customer.Name)
}

func TestSubmitOrderServerRejection(t *testing.T) {
	s, srv := newTestSession(t, config.DismissImmediate, 0)
	fillCart(t, s)
	srv.FailNext("/orders", http.StatusUnprocessableEntity, "bad email")

	result, err := s.SubmitOrder(context.Background(), validForm())

	require.NoError(t, err)
	assert.Equal(t, request.Error, result.Status)
	assert.Equal(t, "bad email", result.ErrorMessage)
	assert.Equal(t, 3, s.Cart.Count())
	assert.Equal(t, progress.CheckoutView, s.Progress.State())
}

func TestSubmitOrderPreconditions(t *testing.T) {
	s, srv := newTestSession(t, config.DismissImmediate, 0)

	_, err := s.SubmitOrder(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrNotCheckingOut)

	s.Progress.ShowCheckout()
	_, err = s.SubmitOrder(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)

	fillCart(t, s)
	form := validForm()
	form[checkout.FieldEmail] = "nope"
	_, err = s.SubmitOrder(context.Background(), form)
	var validationErr *checkout.ValidationError
	assert.True(t, errors.As(err, &validationErr))

	assert.Equal(t, 0, srv.Requests("/orders"))
	assert.Equal(t, 3, s.Cart.Count())
}

func TestSubmitOrderManualDismissal(t *testing.T) {
	s, _ := newTestSession(t, config.DismissManual, 0)
	fillCart(t, s)

	_, err := s.SubmitOrder(context.Background(), validForm())
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, progress.CheckoutView, snap.Progress.State)
	assert.Equal(t, request.Success, snap.Order.Status)

	s.FinishCheckout()

	snap = s.Snapshot()
	assert.Equal(t, progress.Closed, snap.Progress.State)
	assert.Equal(t, request.Idle, snap.Order.Status)
}

func TestSubmitOrderDelayedDismissal(t *testing.T) {
	s, _ := newTestSession(t, config.DismissDelayed, 20*time.Millisecond)
	fillCart(t, s)

	_, err := s.SubmitOrder(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, request.Success, s.Snapshot().Order.Status)

	assert.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.Progress.State == progress.Closed && snap.Order.Status == request.Idle
	}, time.Second, 5*time.Millisecond)
}

func TestDelayedDismissalKeepsNewerSurface(t *testing.T) {
	s, _ := newTestSession(t, config.DismissDelayed, 30*time.Millisecond)
	fillCart(t, s)

	_, err := s.SubmitOrder(context.Background(), validForm())
	require.NoError(t, err)
	s.Progress.ShowCart()

	assert.Eventually(t, func() bool {
		return s.Snapshot().Order.Status == request.Idle
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, progress.CartView, s.Progress.State())
}

func TestCloseReleasesRequests(t *testing.T) {
	s, _ := newTestSession(t, config.DismissImmediate, 0)
	require.Equal(t, 2, s.registry.Len())

	s.Close()
	s.Close()

	assert.Equal(t, 0, s.registry.Len())
	_, err := s.SubmitOrder(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrClosed)
}
