// internal/handlers/common.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Sanjanack/FarmConnect/internal/i18n"
	"github.com/Sanjanack/FarmConnect/internal/services"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

// currentUserID reads the authenticated user id set by the auth middleware.
// Returns false (with a response already written) when missing or malformed.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return id, true
}

// parseIDParam parses a uuid path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service sentinel errors onto HTTP responses so the
// handlers stay thin. resource names what ErrNotFound refers to ("crop",
// "order", "profile").
func respondServiceError(c *gin.Context, resource string, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, services.ErrUnauthorized):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrCropUnavailable):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCropUnavailable))
	case errors.Is(err, services.ErrInsufficientQuantity):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyInsufficientStock))
	case errors.Is(err, services.ErrOrderNotPending),
		errors.Is(err, services.ErrOrderNotCancellable),
		errors.Is(err, services.ErrOrderNotConfirmed):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderInvalidState))
	case errors.Is(err, services.ErrInvalidShipmentState):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyShipmentBadStatus), nil)
	case errors.Is(err, services.ErrCropHasActiveOrders):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderInvalidState))
	case errors.Is(err, services.ErrEmptyCart):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCartEmpty), nil)
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
