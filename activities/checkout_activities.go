package activities

import (
	"context"
	"errors"
	"fmt"

	"food-order-storefront/checkout"
	"food-order-storefront/models"

	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
)

// CheckoutActivities contains the checks run before an order is submitted
type CheckoutActivities struct {
	validator *checkout.Validator
}

// NewCheckoutActivities creates a new CheckoutActivities instance
func NewCheckoutActivities(validator *checkout.Validator) *CheckoutActivities {
	if validator == nil {
		validator = checkout.MustValidator()
	}
	return &CheckoutActivities{validator: validator}
}

// ValidateCustomer checks the delivery details entered at checkout
func (c *CheckoutActivities) ValidateCustomer(ctx context.Context, customer models.Customer) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Validating customer", "email", customer.Email)

	err := c.validator.Validate(customer)
	var validationErr *checkout.ValidationError
	if errors.As(err, &validationErr) {
		logger.Info("Customer rejected", "fields", len(validationErr.Fields))
		return temporal.NewNonRetryableApplicationError(validationErr.Error(), ErrTypeValidation, err, validationErr.Fields)
	}
	if err != nil {
		return fmt.Errorf("failed to validate customer: %w", err)
	}

	logger.Info("Customer validated successfully", "email", customer.Email)
	return nil
}

// VerifyOrderTotal recomputes the order total from its line items and
// compares it with the total the shopper saw
func (c *CheckoutActivities) VerifyOrderTotal(ctx context.Context, submission models.OrderSubmission) (decimal.Decimal, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Verifying order total", "session_id", submission.SessionID, "expected", submission.ExpectedTotal.String())

	if len(submission.Items) == 0 {
		return decimal.Zero, temporal.NewNonRetryableApplicationError("Your cart is empty.", ErrTypeEmptyOrder, nil)
	}

	calculatedTotal := decimal.Zero
	for _, item := range submission.Items {
		if item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return decimal.Zero, temporal.NewNonRetryableApplicationError(
				fmt.Sprintf("invalid line item %q", item.ID), ErrTypeTotalMismatch, nil)
		}
		calculatedTotal = calculatedTotal.Add(item.Subtotal())
	}

	if !calculatedTotal.Equal(submission.ExpectedTotal) {
		return decimal.Zero, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("order total mismatch: expected %s, got %s", submission.ExpectedTotal.StringFixed(2), calculatedTotal.StringFixed(2)),
			ErrTypeTotalMismatch, nil)
	}

	logger.Info("Order total verified", "session_id", submission.SessionID, "total", calculatedTotal.String())
	return calculatedTotal, nil
}
