package cart

import "fmt"

// ErrorCode classifies a ClientStateError.
type ErrorCode int

const (
	CodeItemNotInCart ErrorCode = iota
	CodeInvalidItem
	CodeUnknownAction
)

// Error message constants for the cart domain.
const (
	ErrMsgItemNotInCart  = "Item not in cart"
	ErrMsgItemIDRequired = "Item ID is required"
	ErrMsgUnknownAction  = "Unknown cart action"
	ErrMsgNegativePrice  = "Unit price cannot be negative"
	ErrMsgNilAction      = "Cart action is nil"
)

func (c ErrorCode) String() string {
	switch c {
	case CodeItemNotInCart:
		return "ITEM_NOT_IN_CART"
	case CodeInvalidItem:
		return "INVALID_ITEM"
	case CodeUnknownAction:
		return "UNKNOWN_ACTION"
	default:
		return "UNKNOWN"
	}
}

// ClientStateError reports an action that cannot apply to the current cart.
// These are programming errors on the caller side, never transport failures.
type ClientStateError struct {
	Code    ErrorCode
	Message string
	ItemID  string
}

func (e *ClientStateError) Error() string {
	if e.ItemID == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.ItemID)
}

func newClientStateError(code ErrorCode, message, itemID string) *ClientStateError {
	return &ClientStateError{Code: code, Message: message, ItemID: itemID}
}
