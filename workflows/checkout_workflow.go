package workflows

import (
	"errors"
	"time"

	"food-order-storefront/activities"
	"food-order-storefront/models"
	"food-order-storefront/request"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	CheckoutWorkflowName = "CheckoutWorkflow"

	// ErrTypeCheckoutFailed is the application error type returned by
	// CheckoutWorkflow. Its message is the text shown to the shopper.
	ErrTypeCheckoutFailed = "CheckoutFailed"
)

// CheckoutWorkflow is a child workflow that validates and submits one order
func CheckoutWorkflow(ctx workflow.Context, submission models.OrderSubmission) (models.OrderConfirmation, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("CheckoutWorkflow started", "session_id", submission.SessionID, "items", len(submission.Items))

	// Activity options for checkout activities
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 20 * time.Second,
		HeartbeatTimeout:    5 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var (
		act         *activities.Activities
		checkoutAct *activities.CheckoutActivities
	)

	// Step 1: Validate customer details
	err := workflow.ExecuteActivity(ctx, checkoutAct.ValidateCustomer, submission.Customer).Get(ctx, nil)
	if err != nil {
		logger.Error("Customer validation failed", "session_id", submission.SessionID, "error", err)
		return models.OrderConfirmation{}, checkoutFailed(err)
	}

	// Step 2: Verify the total the shopper saw
	var total decimal.Decimal
	err = workflow.ExecuteActivity(ctx, checkoutAct.VerifyOrderTotal, submission).Get(ctx, &total)
	if err != nil {
		logger.Error("Order total verification failed", "session_id", submission.SessionID, "error", err)
		return models.OrderConfirmation{}, checkoutFailed(err)
	}

	// Step 3: Submit the order
	var confirmation models.OrderConfirmation
	err = workflow.ExecuteActivity(ctx, act.SubmitOrder, submission).Get(ctx, &confirmation)
	if err != nil {
		logger.Error("Order submission failed", "session_id", submission.SessionID, "error", err)
		return models.OrderConfirmation{}, checkoutFailed(err)
	}

	logger.Info("CheckoutWorkflow completed successfully", "session_id", submission.SessionID, "order_id", confirmation.OrderID, "total", total.String())
	return confirmation, nil
}

func checkoutFailed(err error) error {
	return temporal.NewNonRetryableApplicationError(shopperMessage(err), ErrTypeCheckoutFailed, err)
}

// shopperMessage picks the text to show for a failed activity. Only errors
// raised by the storefront carry a message meant for the shopper.
func shopperMessage(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		switch appErr.Type() {
		case ErrTypeCheckoutFailed,
			activities.ErrTypeHTTP,
			activities.ErrTypeValidation,
			activities.ErrTypeTotalMismatch,
			activities.ErrTypeEmptyOrder:
			return appErr.Message()
		}
	}
	return request.MsgUnexpected
}
