package workflows

import (
	"time"

	"food-order-storefront/config"
	"food-order-storefront/models"
	"food-order-storefront/progress"
	"food-order-storefront/request"

	"github.com/shopspring/decimal"
)

// SessionInput configures a SessionWorkflow
type SessionInput struct {
	SessionID    string           `json:"session_id"`
	Dismissal    config.Dismissal `json:"dismissal,omitempty"`
	DismissDelay time.Duration    `json:"dismiss_delay,omitempty"`
}

// ProgressCommand is the payload of the progress signal
type ProgressCommand struct {
	Action progress.Action `json:"action"`
}

// SurfaceClosed is the payload of the surface-closed signal, sent when a
// mounted surface is torn down
type SurfaceClosed struct {
	Target     progress.State `json:"target"`
	Generation uint64         `json:"generation"`
}

// SessionState is returned by the state query and as the workflow result
type SessionState struct {
	SessionID   string                                  `json:"session_id"`
	Items       []models.CartLineItem                   `json:"items"`
	Total       decimal.Decimal                         `json:"total"`
	Count       int                                     `json:"count"`
	Progress    progress.Snapshot                       `json:"progress"`
	Menu        request.State[[]models.Meal]            `json:"menu"`
	Order       request.State[models.OrderConfirmation] `json:"order"`
	Ended       bool                                    `json:"ended"`
	LastUpdated time.Time                               `json:"last_updated"`
}
