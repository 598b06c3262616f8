// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Profiles
	KeyProfileUpdated  = "profile.updated"
	KeyProfileNotFound = "profile.not_found"

	// Crops
	KeyCropCreated     = "crop.created"
	KeyCropUpdated     = "crop.updated"
	KeyCropDeleted     = "crop.deleted"
	KeyCropNotFound    = "crop.not_found"
	KeyCropUnavailable = "crop.unavailable"

	// Orders
	KeyOrderPlaced       = "order.placed"
	KeyOrderConfirmed    = "order.confirmed"
	KeyOrderCancelled    = "order.cancelled"
	KeyOrderCompleted    = "order.completed"
	KeyOrderNotFound     = "order.not_found"
	KeyOrderInvalidState = "order.invalid_state"
	KeyInsufficientStock = "order.insufficient_quantity"
	KeyShipmentAdvanced  = "order.shipment_advanced"
	KeyShipmentBadStatus = "order.invalid_shipment_status"

	// Cart
	KeyCartItemUpdated = "cart.item_updated"
	KeyCartItemRemoved = "cart.item_removed"
	KeyCartEmpty       = "cart.empty"
	KeyCheckoutSuccess = "cart.checkout_success"

	// Payments
	KeyPaymentSuccess = "payment.success"
	KeyPaymentFailed  = "payment.failed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
