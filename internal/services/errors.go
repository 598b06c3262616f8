// internal/services/errors.go
package services

import "errors"

// Sentinel errors for the order lifecycle and marketplace flows. Handlers map
// these onto HTTP status codes; anything else surfaces as a generic failure.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrUnauthorized         = errors.New("not authorized for this resource")
	ErrCropUnavailable      = errors.New("crop is not available for ordering")
	ErrInsufficientQuantity = errors.New("requested quantity exceeds available quantity")
	ErrOrderNotPending      = errors.New("order is not pending")
	ErrOrderNotCancellable  = errors.New("order cannot be cancelled in its current state")
	ErrOrderNotConfirmed    = errors.New("order is not confirmed")
	ErrInvalidShipmentState = errors.New("invalid shipment status")
	ErrCropHasActiveOrders  = errors.New("crop has active orders")
	ErrEmptyCart            = errors.New("cart is empty")
)
