// Package progress tracks which modal surface of the storefront is
// presented: none, the cart, or the checkout form.
//
// The cart and checkout surfaces are mounted while the controller's state
// equals their target. A surface that is torn down reports Closed; that
// notification only hides the surface if the controller is still in the
// surface's state at the generation it was opened with. A cart surface torn
// down because the user moved on to checkout therefore cannot drag the
// controller back to Closed.
package progress

import "fmt"

// State is the currently presented surface.
type State string

const (
	Closed       State = ""
	CartView     State = "cart"
	CheckoutView State = "checkout"
)

func (s State) String() string {
	if s == Closed {
		return "closed"
	}
	return string(s)
}

// Valid reports whether s is one of the three known states.
func (s State) Valid() bool {
	switch s {
	case Closed, CartView, CheckoutView:
		return true
	default:
		return false
	}
}

// Action is a transition request.
type Action string

const (
	ShowCart     Action = "show-cart"
	HideCart     Action = "hide-cart"
	ShowCheckout Action = "show-checkout"
	HideCheckout Action = "hide-checkout"
)

// Next returns the state reached by applying action. Transitions are
// unconditional on the current state.
func Next(_ State, action Action) (State, error) {
	switch action {
	case ShowCart:
		return CartView, nil
	case HideCart, HideCheckout:
		return Closed, nil
	case ShowCheckout:
		return CheckoutView, nil
	default:
		return Closed, fmt.Errorf("progress: unknown action %q", action)
	}
}

// HideActionFor returns the action a surface of the given target issues when
// it closes.
func HideActionFor(target State) (Action, error) {
	switch target {
	case CartView:
		return HideCart, nil
	case CheckoutView:
		return HideCheckout, nil
	default:
		return "", fmt.Errorf("progress: %s is not a surface", target)
	}
}

// Snapshot is a read-only view of the controller.
type Snapshot struct {
	State      State  `json:"state"`
	Generation uint64 `json:"generation"`
}

// Visible reports whether the surface for target is presented in this
// snapshot.
func (s Snapshot) Visible(target State) bool {
	return target != Closed && s.State == target
}

// Accepts reports whether a close notification from a surface opened for
// target at generation may still drive a transition.
func (s Snapshot) Accepts(target State, generation uint64) bool {
	return s.Visible(target) && s.Generation == generation
}
