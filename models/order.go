package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CartLineItem represents one distinct meal in the cart with its aggregated quantity
type CartLineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// MarshalJSON writes the unit price as a JSON number, the form the orders
// service expects.
func (i CartLineItem) MarshalJSON() ([]byte, error) {
	type line CartLineItem
	return json.Marshal(struct {
		line
		UnitPrice json.Number `json:"price"`
	}{line(i), json.Number(i.UnitPrice.String())})
}

// Subtotal returns quantity times unit price for the line
func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Customer holds the delivery details collected at checkout
type Customer struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Street     string `json:"street"`
	PostalCode string `json:"postal-code"`
	City       string `json:"city"`
}

// Order is the payload nested under "order" in a POST /orders request
type Order struct {
	Items    []CartLineItem `json:"items"`
	Customer Customer       `json:"customer"`
}

// OrderRequest is the full body sent to POST /orders
type OrderRequest struct {
	Order Order `json:"order"`
}

// OrderConfirmation is the decoded body of a successful order submission
type OrderConfirmation struct {
	Message string `json:"message"`
	OrderID string `json:"id,omitempty"`
}

// OrderSubmission is the input of the checkout child workflow
type OrderSubmission struct {
	SessionID     string          `json:"session_id"`
	Items         []CartLineItem  `json:"items"`
	Customer      Customer        `json:"customer"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
}

// NewOrderRequest wraps items and customer into the request body
func NewOrderRequest(items []CartLineItem, customer Customer) OrderRequest {
	return OrderRequest{
		Order: Order{
			Items:    items,
			Customer: customer,
		},
	}
}
