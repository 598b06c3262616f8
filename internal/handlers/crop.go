// internal/handlers/crop.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Sanjanack/FarmConnect/internal/i18n"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/services"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

type CropHandler struct {
	cropService *services.CropService
}

func NewCropHandler(cropService *services.CropService) *CropHandler {
	return &CropHandler{
		cropService: cropService,
	}
}

// POST /crops (farmer)
func (h *CropHandler) CreateCrop(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	crop, err := h.cropService.CreateCrop(userID, &req)
	if err != nil {
		respondServiceError(c, "profile", err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCropCreated),
		"crop":    crop,
	})
}

// GET /crops — public marketplace search
func (h *CropHandler) SearchCrops(c *gin.Context) {
	params := services.CropSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if farmerID := c.Query("farmer_id"); farmerID != "" {
		if id, err := uuid.Parse(farmerID); err == nil {
			params.FarmerID = &id
		}
	}
	if status := c.Query("status"); status != "" {
		s := models.CropStatus(status)
		params.Status = &s
	}
	params.QualityGrade = c.Query("quality_grade")
	params.Unit = c.Query("unit")
	if priceMin := c.Query("price_min"); priceMin != "" {
		if v, err := strconv.ParseFloat(priceMin, 64); err == nil {
			params.PriceMin = &v
		}
	}
	if priceMax := c.Query("price_max"); priceMax != "" {
		if v, err := strconv.ParseFloat(priceMax, 64); err == nil {
			params.PriceMax = &v
		}
	}

	crops, total, err := h.cropService.SearchCrops(params)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(crops, total, params.PaginationParams))
}

// GET /crops/:id
func (h *CropHandler) GetCrop(c *gin.Context) {
	cropID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	crop, err := h.cropService.GetCrop(cropID)
	if err != nil {
		respondServiceError(c, "crop", err)
		return
	}

	utils.SuccessResponse(c, crop)
}

// PUT /crops/:id (farmer, owner only)
func (h *CropHandler) UpdateCrop(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cropID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	crop, err := h.cropService.UpdateCrop(cropID, userID, &req)
	if err != nil {
		respondServiceError(c, "crop", err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCropUpdated),
		"crop":    crop,
	})
}

// DELETE /crops/:id (farmer, owner only)
func (h *CropHandler) DeleteCrop(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	cropID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.cropService.DeleteCrop(cropID, userID); err != nil {
		respondServiceError(c, "crop", err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCropDeleted),
	})
}

// GET /crops/mine (farmer)
func (h *CropHandler) GetMyCrops(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	crops, total, err := h.cropService.GetFarmerCrops(userID, params)
	if err != nil {
		respondServiceError(c, "profile", err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(crops, total, params))
}
