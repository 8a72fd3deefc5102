package workflows

import (
	"testing"
	"time"

	"food-order-storefront/activities"
	"food-order-storefront/cart"
	"food-order-storefront/config"
	"food-order-storefront/models"
	"food-order-storefront/progress"
	"food-order-storefront/request"
	"food-order-storefront/storefronttest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

func testCustomer() models.Customer {
	return models.Customer{
		Name:       "Ada Lovelace",
		Email:      "ada@example.com",
		Street:     "Main St 1",
		PostalCode: "12345",
		City:       "Springfield",
	}
}

func testMeals() []models.Meal {
	return storefronttest.DefaultMeals()
}

func addMeal(env *testsuite.TestWorkflowEnvironment, meal models.Meal) {
	env.SignalWorkflow(SignalCart, cart.CommandOf(cart.AddItem{Item: meal.LineItem()}))
}

func queryState(t *testing.T, env *testsuite.TestWorkflowEnvironment) SessionState {
	t.Helper()
	res, err := env.QueryWorkflow(QueryState)
	require.NoError(t, err)
	var state SessionState
	require.NoError(t, res.Get(&state))
	return state
}

// openCheckout fills the cart with 2x meal one and 1x meal two, then moves
// progress to checkout at generation 2.
func openCheckout(env *testsuite.TestWorkflowEnvironment, at time.Duration) {
	meals := testMeals()
	env.RegisterDelayedCallback(func() {
		addMeal(env, meals[0])
		addMeal(env, meals[0])
		addMeal(env, meals[1])
	}, at)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalProgress, ProgressCommand{Action: progress.ShowCart})
		env.SignalWorkflow(SignalProgress, ProgressCommand{Action: progress.ShowCheckout})
	}, at+time.Second)
}

func mockActivities(env *testsuite.TestWorkflowEnvironment, submitErr error) {
	var (
		act         *activities.Activities
		checkoutAct *activities.CheckoutActivities
	)
	env.OnActivity(act.FetchMenu, mock.Anything).Return(testMeals(), nil)
	env.OnActivity(checkoutAct.ValidateCustomer, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(checkoutAct.VerifyOrderTotal, mock.Anything, mock.Anything).Return(decimal.RequireFromString("30.97"), nil)
	if submitErr != nil {
		env.OnActivity(act.SubmitOrder, mock.Anything, mock.Anything).Return(models.OrderConfirmation{}, submitErr)
	} else {
		env.OnActivity(act.SubmitOrder, mock.Anything, mock.Anything).Return(models.OrderConfirmation{Message: storefronttest.MsgOrderCreated, OrderID: "order-1"}, nil)
	}
}

func TestSessionWorkflowCheckout(t *testing.T) {
	srv := storefronttest.NewServer(t)

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CheckoutWorkflow)
	env.RegisterActivity(activities.NewActivities(srv.URL, nil))
	env.RegisterActivity(activities.NewCheckoutActivities(nil))

	openCheckout(env, time.Second)
	env.RegisterDelayedCallback(func() {
		// The cart surface from generation 1 is torn down after checkout opened.
		env.SignalWorkflow(SignalSurfaceClosed, SurfaceClosed{Target: progress.CartView, Generation: 1})
	}, 3*time.Second)
	env.RegisterDelayedCallback(func() {
		state := queryState(t, env)
		assert.Equal(t, progress.Snapshot{State: progress.CheckoutView, Generation: 2}, state.Progress)
		assert.Equal(t, 3, state.Count)
		assert.Equal(t, "30.97", state.Total.String())
		assert.Equal(t, request.Success, state.Menu.Status)
		env.SignalWorkflow(SignalSubmitOrder, testCustomer())
	}, 4*time.Second)
	env.RegisterDelayedCallback(func() {
		state := queryState(t, env)
		assert.Empty(t, state.Items)
		assert.Equal(t, progress.Closed, state.Progress.State)
		assert.Equal(t, request.Idle, state.Order.Status)
		env.SignalWorkflow(SignalEndSession, nil)
	}, 10*time.Second)

	env.ExecuteWorkflow(SessionWorkflow, SessionInput{SessionID: "session-1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result SessionState
	require.NoError(t, env.GetWorkflowResult(&result))
	assert.True(t, result.Ended)
	assert.Equal(t, "session-1", result.SessionID)

	orders := srv.Orders()
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 2)
	assert.Equal(t, "ada@example.com", orders[0].Customer.Email)
	assert.Equal(t, 1, srv.Requests("/meals"))
}

func TestSessionWorkflowServerRejection(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CheckoutWorkflow)
	mockActivities(env, temporal.NewNonRetryableApplicationError("bad email", activities.ErrTypeHTTP, nil))

	openCheckout(env, time.Second)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalSubmitOrder, testCustomer())
	}, 3*time.Second)
	env.RegisterDelayedCallback(func() {
		state := queryState(t, env)
		assert.Equal(t, request.Error, state.Order.Status)
		assert.Equal(t, "bad email", state.Order.ErrorMessage)
		assert.Equal(t, 3, state.Count)
		assert.Equal(t, progress.CheckoutView, state.Progress.State)
		env.SignalWorkflow(SignalEndSession, nil)
	}, 10*time.Second)

	env.ExecuteWorkflow(SessionWorkflow, SessionInput{SessionID: "session-2"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
}

func TestSessionWorkflowIgnoresSubmitOutsideCheckout(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(CheckoutWorkflow)
	mockActivities(env, nil)

	meals := testMeals()
	env.RegisterDelayedCallback(func() {
		addMeal(env, meals[0])
		env.SignalWorkflow(SignalSubmitOrder, testCustomer())
	}, time.Second)
	env.RegisterDelayedCallback(func() {
		state := queryState(t, env)
		assert.Equal(t, request.Idle, state.Order.Status)
		assert.Equal(t, 1, state.Count)
		env.SignalWorkflow(SignalEndSession, nil)
	}, 5*time.Second)

	env.ExecuteWorkflow(SessionWorkflow, SessionInput{SessionID: "session-3"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
}

func TestSessionWorkflowRejectedCartCommand(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	mockActivities(env, nil)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalCart, cart.CommandOf(cart.RemoveItem{ID: "missing"}))
		env.SignalWorkflow(SignalCart, cart.Command{Type: "EMPTY_WALLET"})
		addMeal(env, testMeals()[2])
	}, time.Second)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalEndSession, nil)
	}, 2*time.Second)

	env.ExecuteWorkflow(SessionWorkflow, SessionInput{SessionID: "session-4"})

	require.True(t, env.IsWorkflowCompleted())
	var result SessionState
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, "m3", result.Items[0].ID)
}

func TestSessionWorkflowDismissal(t *testing.T) {
	tests := []struct {
		name         string
		dismissal    config.Dismissal
		afterSuccess func(env *testsuite.TestWorkflowEnvironment)
		wantProgress progress.State
		wantOrder    request.Status
	}{
		{
			name:         "Delayed - closes checkout",
			dismissal:    config.DismissDelayed,
			wantProgress: progress.Closed,
			wantOrder:    request.Idle,
		},
		{
			name:      "Delayed - keeps newer surface",
			dismissal: config.DismissDelayed,
			afterSuccess: func(env *testsuite.TestWorkflowEnvironment) {
				env.SignalWorkflow(SignalProgress, ProgressCommand{Action: progress.ShowCart})
			},
			wantProgress: progress.CartView,
			wantOrder:    request.Idle,
		},
		{
			name:         "Manual - waits for the shopper",
			dismissal:    config.DismissManual,
			wantProgress: progress.CheckoutView,
			wantOrder:    request.Success,
		},
		{
			name:      "Manual - dismissed by signal",
			dismissal: config.DismissManual,
			afterSuccess: func(env *testsuite.TestWorkflowEnvironment) {
				env.SignalWorkflow(SignalDismiss, nil)
			},
			wantProgress: progress.Closed,
			wantOrder:    request.Idle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testSuite := &testsuite.WorkflowTestSuite{}
			env := testSuite.NewTestWorkflowEnvironment()
			env.RegisterWorkflow(CheckoutWorkflow)
			mockActivities(env, nil)

			openCheckout(env, time.Second)
			env.RegisterDelayedCallback(func() {
				env.SignalWorkflow(SignalSubmitOrder, testCustomer())
			}, 3*time.Second)
			env.RegisterDelayedCallback(func() {
				state := queryState(t, env)
				assert.Equal(t, request.Success, state.Order.Status)
				assert.Empty(t, state.Items)
				if tt.afterSuccess != nil {
					tt.afterSuccess(env)
				}
			}, 10*time.Second)
			env.RegisterDelayedCallback(func() {
				state := queryState(t, env)
				assert.Equal(t, tt.wantProgress, state.Progress.State)
				assert.Equal(t, tt.wantOrder, state.Order.Status)
				env.SignalWorkflow(SignalEndSession, nil)
			}, 5*time.Minute)

			env.ExecuteWorkflow(SessionWorkflow, SessionInput{
				SessionID:    "session-5",
				Dismissal:    tt.dismissal,
				DismissDelay: time.Minute,
			})

			require.True(t, env.IsWorkflowCompleted())
			require.NoError(t, env.GetWorkflowError())
		})
	}
}
