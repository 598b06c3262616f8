// internal/handlers/profile.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Sanjanack/FarmConnect/internal/i18n"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/services"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GET /profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.profileService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, "profile", err)
		return
	}

	utils.SuccessResponse(c, user)
}

// PUT /profile — body is interpreted per the caller's role
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	role, _ := utils.GetUserRoleFromContext(c)

	switch models.UserRole(role) {
	case models.UserRoleFarmer:
		var req services.UpdateFarmerProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
		profile, err := h.profileService.UpdateFarmerProfile(userID, &req)
		if err != nil {
			respondServiceError(c, "profile", err)
			return
		}
		utils.SuccessResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyProfileUpdated),
			"profile": profile,
		})
	case models.UserRoleBuyer:
		var req services.UpdateBuyerProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
		profile, err := h.profileService.UpdateBuyerProfile(userID, &req)
		if err != nil {
			respondServiceError(c, "profile", err)
			return
		}
		utils.SuccessResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyProfileUpdated),
			"profile": profile,
		})
	default:
		utils.ForbiddenResponse(c, "")
	}
}

// GET /profile/dashboard
func (h *ProfileHandler) GetDashboard(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	role, _ := utils.GetUserRoleFromContext(c)

	switch models.UserRole(role) {
	case models.UserRoleFarmer:
		dashboard, err := h.profileService.GetFarmerDashboard(userID)
		if err != nil {
			respondServiceError(c, "profile", err)
			return
		}
		utils.SuccessResponse(c, dashboard)
	case models.UserRoleBuyer:
		dashboard, err := h.profileService.GetBuyerDashboard(userID)
		if err != nil {
			respondServiceError(c, "profile", err)
			return
		}
		utils.SuccessResponse(c, dashboard)
	default:
		utils.ForbiddenResponse(c, "")
	}
}
