// internal/services/profile_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

type ProfileService struct {
	db *gorm.DB
}

type UpdateFarmerProfileRequest struct {
	FirstName         *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName          *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	FarmName          *string `json:"farm_name,omitempty" validate:"omitempty,max=255"`
	ContactNumber     *string `json:"contact_number,omitempty" validate:"omitempty,max=20"`
	Address           *string `json:"address,omitempty"`
	FarmingExperience *int    `json:"farming_experience,omitempty" validate:"omitempty,gte=0"`
}

type UpdateBuyerProfileRequest struct {
	CompanyName   *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
	ContactNumber *string `json:"contact_number,omitempty" validate:"omitempty,max=20"`
	Address       *string `json:"address,omitempty"`
}

// FarmerDashboard aggregates the numbers the farmer landing page shows.
type FarmerDashboard struct {
	Earnings      float64        `json:"earnings"`
	ActiveCrops   int64          `json:"active_crops"`
	TotalCrops    int64          `json:"total_crops"`
	PendingOrders int64          `json:"pending_orders"`
	ShippedOrders int64          `json:"shipped_orders"`
	RecentOrders  []models.Order `json:"recent_orders"`
}

type BuyerDashboard struct {
	AmountSpent     float64        `json:"amount_spent"`
	TotalOrders     int64          `json:"total_orders"`
	PendingOrders   int64          `json:"pending_orders"`
	CompletedOrders int64          `json:"completed_orders"`
	CartItems       int64          `json:"cart_items"`
	RecentOrders    []models.Order `json:"recent_orders"`
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile returns the user with the role-appropriate profile preloaded.
func (s *ProfileService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("FarmerProfile").Preload("BuyerProfile").
		First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (s *ProfileService) UpdateFarmerProfile(userID uuid.UUID, req *UpdateFarmerProfileRequest) (*models.FarmerProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	profile, err := farmerForUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.FarmName != nil {
		updates["farm_name"] = *req.FarmName
	}
	if req.ContactNumber != nil {
		updates["contact_number"] = *req.ContactNumber
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.FarmingExperience != nil {
		updates["farming_experience"] = *req.FarmingExperience
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return farmerForUser(s.db, userID)
}

func (s *ProfileService) UpdateBuyerProfile(userID uuid.UUID, req *UpdateBuyerProfileRequest) (*models.BuyerProfile, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	profile, err := buyerForUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.ContactNumber != nil {
		updates["contact_number"] = *req.ContactNumber
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	if len(updates) > 0 {
		if err := s.db.Model(profile).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return buyerForUser(s.db, userID)
}

func (s *ProfileService) GetFarmerDashboard(userID uuid.UUID) (*FarmerDashboard, error) {
	farmer, err := farmerForUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &FarmerDashboard{Earnings: farmer.Earnings}

	if err := s.db.Model(&models.Crop{}).
		Where("farmer_id = ?", farmer.ID).
		Count(&dashboard.TotalCrops).Error; err != nil {
		return nil, fmt.Errorf("failed to count crops: %w", err)
	}
	if err := s.db.Model(&models.Crop{}).
		Where("farmer_id = ? AND status = ?", farmer.ID, models.CropStatusAvailable).
		Count(&dashboard.ActiveCrops).Error; err != nil {
		return nil, fmt.Errorf("failed to count active crops: %w", err)
	}

	orders := s.db.Model(&models.Order{}).
		Joins("JOIN crops ON crops.id = orders.crop_id").
		Where("crops.farmer_id = ?", farmer.ID)
	if err := orders.Session(&gorm.Session{}).
		Where("orders.status = ?", models.OrderStatusPending).
		Count(&dashboard.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	if err := orders.Session(&gorm.Session{}).
		Where("orders.settled_at IS NOT NULL").
		Count(&dashboard.ShippedOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count shipped orders: %w", err)
	}

	if err := s.db.Model(&models.Order{}).Select("orders.*").
		Joins("JOIN crops ON crops.id = orders.crop_id").
		Where("crops.farmer_id = ?", farmer.ID).
		Preload("Crop").Preload("Buyer").
		Order("orders.created_at DESC").Limit(5).
		Find(&dashboard.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent orders: %w", err)
	}

	return dashboard, nil
}

func (s *ProfileService) GetBuyerDashboard(userID uuid.UUID) (*BuyerDashboard, error) {
	buyer, err := buyerForUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	dashboard := &BuyerDashboard{AmountSpent: buyer.AmountSpent}

	base := s.db.Model(&models.Order{}).Where("buyer_id = ?", buyer.ID)
	if err := base.Session(&gorm.Session{}).
		Count(&dashboard.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", models.OrderStatusPending).
		Count(&dashboard.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", models.OrderStatusCompleted).
		Count(&dashboard.CompletedOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed orders: %w", err)
	}
	// Cart size is the count of pending orders, the cart has no storage of
	// its own.
	dashboard.CartItems = dashboard.PendingOrders

	if err := s.db.
		Where("buyer_id = ?", buyer.ID).
		Preload("Crop").Preload("Crop.Farmer").
		Order("created_at DESC").Limit(5).
		Find(&dashboard.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent orders: %w", err)
	}

	return dashboard, nil
}
