package activities

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"food-order-storefront/models"
	"food-order-storefront/request"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// Application error types reported by storefront activities
const (
	ErrTypeHTTP          = "HTTPError"
	ErrTypeDecode        = "DecodeError"
	ErrTypeValidation    = "ValidationError"
	ErrTypeTotalMismatch = "TotalMismatch"
	ErrTypeEmptyOrder    = "EmptyOrder"
)

// Activities contains the activities that talk to the meals and orders service
type Activities struct {
	httpClient request.Doer
	apiURL     string
}

// NewActivities creates a new Activities instance. A nil doer uses an
// *http.Client with request.DefaultTimeout.
func NewActivities(apiURL string, doer request.Doer) *Activities {
	if doer == nil {
		doer = &http.Client{
			Timeout: request.DefaultTimeout,
		}
	}
	return &Activities{
		httpClient: doer,
		apiURL:     strings.TrimRight(apiURL, "/"),
	}
}

// FetchMenu loads the meals offered by the storefront
func (a *Activities) FetchMenu(ctx context.Context) ([]models.Meal, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Fetching menu", "api_url", a.apiURL)

	meals, err := request.Fetch[[]models.Meal](ctx, a.httpClient, request.Get(a.apiURL+"/meals"), nil)
	if err != nil {
		logger.Warn("Menu fetch failed", "error", err)
		return nil, asActivityError(fmt.Errorf("failed to fetch menu: %w", err))
	}
	if meals == nil {
		meals = []models.Meal{}
	}

	logger.Info("Menu fetched", "meals", len(meals))
	return meals, nil
}

// SubmitOrder posts the order to the orders service
func (a *Activities) SubmitOrder(ctx context.Context, submission models.OrderSubmission) (models.OrderConfirmation, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Submitting order", "session_id", submission.SessionID, "items", len(submission.Items), "total", submission.ExpectedTotal.String())

	// Heartbeat to let Temporal know we're still alive
	activity.RecordHeartbeat(ctx, "calling orders service")

	body := models.NewOrderRequest(submission.Items, submission.Customer)
	confirmation, err := request.Fetch[models.OrderConfirmation](ctx, a.httpClient, request.Post(a.apiURL+"/orders"), body)
	if err != nil {
		logger.Warn("Order submission failed", "session_id", submission.SessionID, "error", err)
		return models.OrderConfirmation{}, asActivityError(fmt.Errorf("failed to submit order: %w", err))
	}

	activity.RecordHeartbeat(ctx, "order response received")

	logger.Info("Order submitted successfully", "session_id", submission.SessionID, "order_id", confirmation.OrderID)
	return confirmation, nil
}

// asActivityError marks failures that retrying cannot fix as non-retryable.
// The application error message is the text shown to the shopper.
func asActivityError(err error) error {
	var (
		httpErr   *request.HTTPError
		decodeErr *request.DecodeError
	)
	switch {
	case errors.As(err, &httpErr) && httpErr.ClientError():
		return temporal.NewNonRetryableApplicationError(httpErr.Message, ErrTypeHTTP, err)
	case errors.As(err, &httpErr):
		return temporal.NewApplicationError(httpErr.Message, ErrTypeHTTP, err)
	case errors.As(err, &decodeErr):
		return temporal.NewNonRetryableApplicationError(request.MsgUnexpected, ErrTypeDecode, err)
	default:
		return err
	}
}
