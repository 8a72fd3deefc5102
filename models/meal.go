package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Meal represents an entry of the menu served by GET /meals
type Meal struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// LineItem converts a meal into a cart line item with quantity 1
func (m Meal) LineItem() CartLineItem {
	return CartLineItem{
		ID:        m.ID,
		Name:      m.Name,
		UnitPrice: m.Price,
		Quantity:  1,
	}
}

// MarshalJSON writes the price as a JSON number
func (m Meal) MarshalJSON() ([]byte, error) {
	type meal Meal
	return json.Marshal(struct {
		meal
		Price json.Number `json:"price"`
	}{meal(m), json.Number(m.Price.String())})
}
