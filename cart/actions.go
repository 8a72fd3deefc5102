package cart

import "food-order-storefront/models"

// Action is a closed set of cart mutations. Only the types in this file
// implement it.
type Action interface {
	isAction()
	Name() string
}

// AddItem adds one unit of Item, keyed by Item.ID.
type AddItem struct {
	Item models.CartLineItem
}

// RemoveItem removes one unit of the line with ID.
type RemoveItem struct {
	ID string
}

// ClearCart empties the cart.
type ClearCart struct{}

func (AddItem) isAction()    {}
func (RemoveItem) isAction() {}
func (ClearCart) isAction()  {}

func (AddItem) Name() string    { return "ADD_ITEM" }
func (RemoveItem) Name() string { return "REMOVE_ITEM" }
func (ClearCart) Name() string  { return "CLEAR_CART" }

// Command is the serialisable form of an Action, used where actions cross a
// process boundary (workflow signals, CLI input).
type Command struct {
	Type string              `json:"type"`
	Item models.CartLineItem `json:"item,omitempty"`
	ID   string              `json:"id,omitempty"`
}

// CommandOf converts an action into its serialisable form.
func CommandOf(action Action) Command {
	switch a := action.(type) {
	case AddItem:
		return Command{Type: a.Name(), Item: a.Item}
	case RemoveItem:
		return Command{Type: a.Name(), ID: a.ID}
	case ClearCart:
		return Command{Type: a.Name()}
	default:
		return Command{}
	}
}

// Action converts the command back into a typed Action.
func (c Command) Action() (Action, error) {
	switch c.Type {
	case AddItem{}.Name():
		return AddItem{Item: c.Item}, nil
	case RemoveItem{}.Name():
		return RemoveItem{ID: c.ID}, nil
	case ClearCart{}.Name():
		return ClearCart{}, nil
	default:
		return nil, newClientStateError(CodeUnknownAction, ErrMsgUnknownAction, c.Type)
	}
}
