// internal/services/crop_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

type CropService struct {
	db *gorm.DB
}

type CreateCropRequest struct {
	Name         string   `json:"name" validate:"required,min=2,max=255"`
	Description  string   `json:"description,omitempty"`
	Quantity     float64  `json:"quantity" validate:"required,gt=0"`
	Unit         string   `json:"unit" validate:"required,crop_unit"`
	PricePerUnit float64  `json:"price_per_unit" validate:"required,gt=0"`
	QualityGrade string   `json:"quality_grade" validate:"required,quality_grade"`
	HarvestDate  string   `json:"harvest_date,omitempty"`
	Images       []string `json:"images,omitempty"`
}

type UpdateCropRequest struct {
	Name         string   `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description  string   `json:"description,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	PricePerUnit *float64 `json:"price_per_unit,omitempty" validate:"omitempty,gt=0"`
	QualityGrade string   `json:"quality_grade,omitempty" validate:"omitempty,quality_grade"`
	Images       []string `json:"images,omitempty"`
}

type CropSearchParams struct {
	utils.PaginationParams
	FarmerID     *uuid.UUID         `json:"farmer_id,omitempty"`
	Status       *models.CropStatus `json:"status,omitempty"`
	QualityGrade string             `json:"quality_grade,omitempty"`
	Unit         string             `json:"unit,omitempty"`
	PriceMin     *float64           `json:"price_min,omitempty"`
	PriceMax     *float64           `json:"price_max,omitempty"`
}

func NewCropService(db *gorm.DB) *CropService {
	return &CropService{db: db}
}

func (s *CropService) CreateCrop(farmerUserID uuid.UUID, req *CreateCropRequest) (*models.Crop, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	farmer, err := farmerForUser(s.db, farmerUserID)
	if err != nil {
		return nil, err
	}

	crop := &models.Crop{
		FarmerID:     farmer.ID,
		Name:         req.Name,
		Description:  req.Description,
		Quantity:     req.Quantity,
		Unit:         strings.ToLower(req.Unit),
		PricePerUnit: req.PricePerUnit,
		QualityGrade: strings.ToUpper(req.QualityGrade),
		Images:       req.Images,
		Status:       models.CropStatusAvailable,
	}

	if req.HarvestDate != "" {
		harvestDate, err := time.Parse("2006-01-02", req.HarvestDate)
		if err != nil {
			return nil, fmt.Errorf("invalid harvest date: %w", err)
		}
		crop.HarvestDate = &harvestDate
	}

	if err := s.db.Create(crop).Error; err != nil {
		return nil, fmt.Errorf("failed to create crop: %w", err)
	}

	s.db.Preload("Farmer").First(crop, "id = ?", crop.ID)
	return crop, nil
}

func (s *CropService) GetCrop(id uuid.UUID) (*models.Crop, error) {
	var crop models.Crop
	if err := s.db.Preload("Farmer").First(&crop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &crop, nil
}

func (s *CropService) UpdateCrop(id uuid.UUID, farmerUserID uuid.UUID, req *UpdateCropRequest) (*models.Crop, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	crop, err := s.ownedCrop(id, farmerUserID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
		if *req.Quantity > 0 {
			updates["status"] = models.CropStatusAvailable
		}
	}
	if req.PricePerUnit != nil {
		updates["price_per_unit"] = *req.PricePerUnit
	}
	if req.QualityGrade != "" {
		updates["quality_grade"] = strings.ToUpper(req.QualityGrade)
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}

	if err := s.db.Model(crop).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update crop: %w", err)
	}

	s.db.Preload("Farmer").First(crop, "id = ?", id)
	return crop, nil
}

// DeleteCrop soft-deletes a listing. A crop with pending or confirmed orders
// against it cannot be removed.
func (s *CropService) DeleteCrop(id uuid.UUID, farmerUserID uuid.UUID) error {
	crop, err := s.ownedCrop(id, farmerUserID)
	if err != nil {
		return err
	}

	var activeOrders int64
	if err := s.db.Model(&models.Order{}).
		Where("crop_id = ? AND status IN ?", id,
			[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusConfirmed}).
		Count(&activeOrders).Error; err != nil {
		return fmt.Errorf("failed to check active orders: %w", err)
	}

	if activeOrders > 0 {
		return ErrCropHasActiveOrders
	}

	if err := s.db.Delete(crop).Error; err != nil {
		return fmt.Errorf("failed to delete crop: %w", err)
	}

	return nil
}

// SearchCrops is the marketplace query. Without an explicit status filter it
// returns only available listings.
func (s *CropService) SearchCrops(params CropSearchParams) ([]models.Crop, int64, error) {
	query := s.db.Model(&models.Crop{}).Preload("Farmer")

	if params.FarmerID != nil {
		query = query.Where("farmer_id = ?", *params.FarmerID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	} else {
		query = query.Where("status = ?", models.CropStatusAvailable)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.QualityGrade != "" {
		query = query.Where("quality_grade = ?", strings.ToUpper(params.QualityGrade))
	}

	if params.Unit != "" {
		query = query.Where("unit = ?", strings.ToLower(params.Unit))
	}

	if params.PriceMin != nil {
		query = query.Where("price_per_unit >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price_per_unit <= ?", *params.PriceMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count crops: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price_per_unit", "quantity"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var crops []models.Crop
	if err := query.Find(&crops).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch crops: %w", err)
	}

	return crops, total, nil
}

// GetFarmerCrops lists the farmer's own listings regardless of status.
func (s *CropService) GetFarmerCrops(farmerUserID uuid.UUID, params utils.PaginationParams) ([]models.Crop, int64, error) {
	farmer, err := farmerForUser(s.db, farmerUserID)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Crop{}).Where("farmer_id = ?", farmer.ID)

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count crops: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "status", "quantity"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var crops []models.Crop
	if err := query.Find(&crops).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch crops: %w", err)
	}

	return crops, total, nil
}

func (s *CropService) ownedCrop(id uuid.UUID, farmerUserID uuid.UUID) (*models.Crop, error) {
	var crop models.Crop
	if err := s.db.First(&crop, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	farmer, err := farmerForUser(s.db, farmerUserID)
	if err != nil {
		return nil, err
	}
	if crop.FarmerID != farmer.ID {
		return nil, ErrUnauthorized
	}

	return &crop, nil
}
