package workflows

import (
	"fmt"
	"time"

	"food-order-storefront/activities"
	"food-order-storefront/cart"
	"food-order-storefront/config"
	"food-order-storefront/models"
	"food-order-storefront/progress"
	"food-order-storefront/request"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	SessionWorkflowName = "SessionWorkflow"

	SignalCart          = "cart"
	SignalProgress      = "progress"
	SignalSurfaceClosed = "surface-closed"
	SignalSubmitOrder   = "submit-order"
	SignalDismiss       = "dismiss-confirmation"
	SignalEndSession    = "end-session"
	QueryState          = "state"
)

// SessionWorkflow hosts one shopper's cart, progress and requests. Signals
// mutate the session one at a time; the state query reads it.
func SessionWorkflow(ctx workflow.Context, input SessionInput) (SessionState, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("SessionWorkflow started", "session_id", input.SessionID)

	if input.DismissDelay <= 0 {
		input.DismissDelay = config.DefaultDismissDelay
	}

	// Initialize session state
	state := SessionState{
		SessionID:   input.SessionID,
		Menu:        request.Initial([]models.Meal{}),
		Order:       request.Initial(models.OrderConfirmation{}),
		LastUpdated: workflow.Now(ctx),
	}
	cartState := cart.EmptyState()
	setCart := func(next cart.State) {
		cartState = next
		state.Items = next.Items
		state.Total = cart.Total(next)
		state.Count = cart.Count(next)
	}
	setCart(cartState)

	// Setup query handler for session state
	err := workflow.SetQueryHandler(ctx, QueryState, func() (SessionState, error) {
		return state, nil
	})
	if err != nil {
		return state, fmt.Errorf("failed to set query handler: %w", err)
	}

	// Activity options with retry policy
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var act *activities.Activities

	transition := func(action progress.Action) {
		next, err := progress.Next(state.Progress.State, action)
		if err != nil {
			logger.Warn("Progress action rejected", "action", action, "error", err)
			return
		}
		if next == state.Progress.State {
			return
		}
		state.Progress = progress.Snapshot{State: next, Generation: state.Progress.Generation + 1}
		logger.Info("Progress changed", "state", next.String(), "generation", state.Progress.Generation)
	}
	clearOrder := func() {
		state.Order = state.Order.Reset(models.OrderConfirmation{})
	}

	selector := workflow.NewSelector(ctx)

	// Menu fetch runs once when the session starts
	state.Menu = state.Menu.Begin()
	selector.AddFuture(workflow.ExecuteActivity(ctx, act.FetchMenu), func(f workflow.Future) {
		var meals []models.Meal
		if err := f.Get(ctx, &meals); err != nil {
			logger.Error("Menu fetch failed", "error", err)
			state.Menu = state.Menu.Fail(shopperMessage(err))
		} else {
			state.Menu = state.Menu.Succeed(meals)
		}
		state.LastUpdated = workflow.Now(ctx)
	})

	var sendGen uint64
	scheduleDismissal := func(gen uint64) {
		switch input.Dismissal {
		case config.DismissManual:
		case config.DismissDelayed:
			progressGen := state.Progress.Generation
			selector.AddFuture(workflow.NewTimer(ctx, input.DismissDelay), func(f workflow.Future) {
				if gen != sendGen {
					return
				}
				if state.Progress.Accepts(progress.CheckoutView, progressGen) {
					transition(progress.HideCheckout)
				}
				clearOrder()
				state.LastUpdated = workflow.Now(ctx)
				logger.Info("Confirmation dismissed", "session_id", input.SessionID)
			})
		default:
			transition(progress.HideCheckout)
			clearOrder()
		}
	}

	selector.AddReceive(workflow.GetSignalChannel(ctx, SignalCart), func(c workflow.ReceiveChannel, more bool) {
		var cmd cart.Command
		c.Receive(ctx, &cmd)

		action, err := cmd.Action()
		next := cartState
		if err == nil {
			next, err = cart.Reduce(cartState, action)
		}
		if err != nil {
			logger.Warn("Cart command rejected", "type", cmd.Type, "error", err)
			return
		}
		setCart(next)
		state.LastUpdated = workflow.Now(ctx)
	})

	selector.AddReceive(workflow.GetSignalChannel(ctx, SignalProgress), func(c workflow.ReceiveChannel, more bool) {
		var cmd ProgressCommand
		c.Receive(ctx, &cmd)
		transition(cmd.Action)
		state.LastUpdated = workflow.Now(ctx)
	})

	selector.AddReceive(workflow.GetSignalChannel(ctx, SignalSurfaceClosed), func(c workflow.ReceiveChannel, more bool) {
		var closed SurfaceClosed
		c.Receive(ctx, &closed)

		hide, err := progress.HideActionFor(closed.Target)
		if err != nil {
			logger.Warn("Close notification for unknown surface", "target", closed.Target, "error", err)
			return
		}
		if !state.Progress.Accepts(closed.Target, closed.Generation) {
			logger.Info("Stale surface teardown ignored",
				"surface", closed.Target.String(),
				"surface_generation", closed.Generation,
				"state", state.Progress.State.String(),
				"generation", state.Progress.Generation)
			return
		}
		transition(hide)
		state.LastUpdated = workflow.Now(ctx)
	})

	selector.AddReceive(workflow.GetSignalChannel(ctx, SignalSubmitOrder), func(c workflow.ReceiveChannel, more bool) {
		var customer models.Customer
		c.Receive(ctx, &customer)

		switch {
		case !state.Progress.Visible(progress.CheckoutView):
			logger.Warn("Order submitted outside checkout", "state", state.Progress.State.String())
			return
		case len(cartState.Items) == 0:
			logger.Warn("Order submitted with an empty cart")
			return
		case state.Order.IsLoading():
			logger.Warn("Order submission already in progress")
			return
		}

		sendGen++
		gen := sendGen
		items := make([]models.CartLineItem, len(cartState.Items))
		copy(items, cartState.Items)
		submission := models.OrderSubmission{
			SessionID:     input.SessionID,
			Items:         items,
			Customer:      customer,
			ExpectedTotal: state.Total,
		}
		state.Order = state.Order.Begin()
		state.LastUpdated = workflow.Now(ctx)

		childWorkflowOptions := workflow.ChildWorkflowOptions{
			WorkflowID:               fmt.Sprintf("%s-checkout-%d", workflow.GetInfo(ctx).WorkflowExecution.ID, gen),
			WorkflowExecutionTimeout: 2 * time.Minute,
		}
		childCtx := workflow.WithChildOptions(ctx, childWorkflowOptions)

		logger.Info("Starting checkout", "session_id", input.SessionID, "items", len(items), "total", state.Total.String())
		selector.AddFuture(workflow.ExecuteChildWorkflow(childCtx, CheckoutWorkflow, submission), func(f workflow.Future) {
			var confirmation models.OrderConfirmation
			if err := f.Get(ctx, &confirmation); err != nil {
				logger.Error("Checkout failed", "session_id", input.SessionID, "error", err)
				state.Order = state.Order.Fail(shopperMessage(err))
				state.LastUpdated = workflow.Now(ctx)
				return
			}

			logger.Info("Checkout completed", "session_id", input.SessionID, "order_id", confirmation.OrderID)
			state.Order = state.Order.Succeed(confirmation)
			setCart(cart.EmptyState())
			scheduleDismissal(gen)
			state.LastUpdated = workflow.Now(ctx)
		})
	})

	selector.AddReceive(workflow.GetSignalChannel(ctx, SignalDismiss), func(c workflow.ReceiveChannel, more bool) {
		c.Receive(ctx, nil)
		transition(progress.HideCheckout)
		clearOrder()
		state.LastUpdated = workflow.Now(ctx)
	})

	selector.AddReceive(workflow.GetSignalChannel(ctx, SignalEndSession), func(c workflow.ReceiveChannel, more bool) {
		c.Receive(ctx, nil)
		state.Ended = true
		state.LastUpdated = workflow.Now(ctx)
	})

	for !state.Ended {
		selector.Select(ctx)
	}

	logger.Info("SessionWorkflow completed", "session_id", input.SessionID, "items", state.Count)
	return state, nil
}
