// Package checkout turns the raw checkout form into a customer record.
package checkout

import (
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"food-order-storefront/models"
)

// Form field names, as submitted by the checkout form.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldStreet     = "street"
	FieldPostalCode = "postal-code"
	FieldCity       = "city"
)

// Form holds the raw field values keyed by field name.
type Form map[string]string

// Rule is a boolean expression over the form. Field values are bound to the
// variables name, email, street, postalCode and city.
type Rule struct {
	Field      string
	Expression string
	Message    string
}

// DefaultRules require every field and a plausible e-mail address.
func DefaultRules() []Rule {
	return []Rule{
		{Field: FieldName, Expression: `len(name) > 0`, Message: "Full name is required."},
		{Field: FieldEmail, Expression: `email matches "^[^@ ]+@[^@ ]+$"`, Message: "A valid e-mail address is required."},
		{Field: FieldStreet, Expression: `len(street) > 0`, Message: "Street is required."},
		{Field: FieldPostalCode, Expression: `len(postalCode) > 0`, Message: "Postal code is required."},
		{Field: FieldCity, Expression: `len(city) > 0`, Message: "City is required."},
	}
}

type compiledRule struct {
	Rule
	program *exprvm.Program
}

// Validator checks checkout forms against a fixed rule set.
type Validator struct {
	rules []compiledRule
}

// NewValidator compiles rules. With no rules, DefaultRules are used.
func NewValidator(rules ...Rule) (*Validator, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	v := &Validator{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		program, err := exprlang.Compile(r.Expression,
			exprlang.Env(environment(models.Customer{})),
			exprlang.AllowUndefinedVariables(),
			exprlang.AsBool(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule for %s: %w", r.Field, err)
		}
		v.rules = append(v.rules, compiledRule{Rule: r, program: program})
	}
	return v, nil
}

// MustValidator is NewValidator for rule sets known to compile.
func MustValidator(rules ...Rule) *Validator {
	v, err := NewValidator(rules...)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse trims the form values and validates them. On failure the returned
// error is a *ValidationError.
func (v *Validator) Parse(form Form) (models.Customer, error) {
	customer := models.Customer{
		Name:       strings.TrimSpace(form[FieldName]),
		Email:      strings.TrimSpace(form[FieldEmail]),
		Street:     strings.TrimSpace(form[FieldStreet]),
		PostalCode: strings.TrimSpace(form[FieldPostalCode]),
		City:       strings.TrimSpace(form[FieldCity]),
	}
	if err := v.Validate(customer); err != nil {
		return models.Customer{}, err
	}
	return customer, nil
}

// Validate runs every rule against customer.
func (v *Validator) Validate(customer models.Customer) error {
	env := environment(customer)
	var invalid []FieldError
	for _, r := range v.rules {
		out, err := exprlang.Run(r.program, env)
		if err != nil {
			return fmt.Errorf("failed to evaluate rule for %s: %w", r.Field, err)
		}
		if ok, _ := out.(bool); !ok {
			invalid = append(invalid, FieldError{Field: r.Field, Message: r.Message})
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{Fields: invalid}
	}
	return nil
}

// FormOf is the inverse of Parse for an already valid customer.
func FormOf(c models.Customer) Form {
	return Form{
		FieldName:       c.Name,
		FieldEmail:      c.Email,
		FieldStreet:     c.Street,
		FieldPostalCode: c.PostalCode,
		FieldCity:       c.City,
	}
}

func environment(c models.Customer) map[string]any {
	return map[string]any{
		"name":       c.Name,
		"email":      c.Email,
		"street":     c.Street,
		"postalCode": c.PostalCode,
		"city":       c.City,
	}
}
