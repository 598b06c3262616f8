// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sanjanack/FarmConnect/internal/database"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

// CartService is a view over the buyer's pending orders. There is no separate
// cart entity: an order in status=pending IS a cart item, so reserved
// quantity has exactly one source of truth.
type CartService struct {
	db           *gorm.DB
	orderService *OrderService
}

type CartView struct {
	Items []models.Order `json:"items"`
	Total float64        `json:"total"`
}

type UpdateCartItemRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

type CheckoutRequest struct {
	OrderIDs      []uuid.UUID `json:"order_ids" validate:"required,min=1"`
	PaymentMethod string      `json:"payment_method" validate:"required"`
}

type CheckoutResult struct {
	Orders      []models.Order `json:"orders"`
	TotalAmount float64        `json:"total_amount"`
}

func NewCartService(db *gorm.DB, orderService *OrderService) *CartService {
	return &CartService{db: db, orderService: orderService}
}

// GetCart lists the buyer's pending orders with their running total.
func (s *CartService) GetCart(buyerUserID uuid.UUID) (*CartView, error) {
	buyer, err := buyerForUser(s.db, buyerUserID)
	if err != nil {
		return nil, err
	}

	var items []models.Order
	if err := s.db.Where("buyer_id = ? AND status = ?", buyer.ID, models.OrderStatusPending).
		Preload("Crop").Preload("Crop.Farmer").
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	view := &CartView{Items: items}
	for _, item := range items {
		view.Total += item.TotalPrice
	}
	return view, nil
}

// UpdateQuantity changes a pending order's quantity, applying the signed
// difference to the locked crop row and re-deriving the total price from the
// crop's current rate. An increase past what remains fails with
// ErrInsufficientQuantity and leaves everything untouched.
func (s *CartService) UpdateQuantity(buyerUserID uuid.UUID, orderID uuid.UUID, req *UpdateCartItemRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		buyer, err := buyerForUser(tx, buyerUserID)
		if err != nil {
			return err
		}

		o, err := s.pendingOrderFor(tx, buyer.ID, orderID)
		if err != nil {
			return err
		}

		var crop models.Crop
		if err := lockForUpdate(tx).First(&crop, "id = ?", o.CropID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		delta := req.Quantity - o.Quantity
		if delta > crop.Quantity {
			return ErrInsufficientQuantity
		}

		remaining := crop.Quantity - delta
		status := models.CropStatusAvailable
		if remaining <= 0 {
			remaining = 0
			status = models.CropStatusSold
		}
		if err := tx.Model(&crop).Updates(map[string]interface{}{
			"quantity": remaining,
			"status":   status,
		}).Error; err != nil {
			return fmt.Errorf("failed to update crop quantity: %w", err)
		}

		o.Quantity = req.Quantity
		o.TotalPrice = req.Quantity * crop.PricePerUnit
		if err := tx.Model(o).Updates(map[string]interface{}{
			"quantity":    o.Quantity,
			"total_price": o.TotalPrice,
		}).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		order = *o
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Remove deletes a pending order and returns its reserved quantity to the
// crop in the same transaction.
func (s *CartService) Remove(buyerUserID uuid.UUID, orderID uuid.UUID) error {
	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		buyer, err := buyerForUser(tx, buyerUserID)
		if err != nil {
			return err
		}

		o, err := s.pendingOrderFor(tx, buyer.ID, orderID)
		if err != nil {
			return err
		}

		if err := restoreCropQuantity(tx, o.CropID, o.Quantity); err != nil {
			return err
		}

		if err := tx.Unscoped().Delete(o).Error; err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		return nil
	})
}

// Checkout confirms the named pending orders atomically: every order gets its
// Payment row and processing event, or none do.
func (s *CartService) Checkout(buyerUserID uuid.UUID, req *CheckoutRequest) (*CheckoutResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	result := &CheckoutResult{}

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		buyer, err := buyerForUser(tx, buyerUserID)
		if err != nil {
			return err
		}

		var pending int64
		if err := tx.Model(&models.Order{}).
			Where("buyer_id = ? AND status = ?", buyer.ID, models.OrderStatusPending).
			Count(&pending).Error; err != nil {
			return fmt.Errorf("failed to count cart items: %w", err)
		}
		if pending == 0 {
			return ErrEmptyCart
		}

		for _, orderID := range req.OrderIDs {
			o, err := s.pendingOrderFor(tx, buyer.ID, orderID)
			if err != nil {
				return err
			}

			if err := s.orderService.confirmInTx(tx, o, req.PaymentMethod); err != nil {
				return err
			}

			result.Orders = append(result.Orders, *o)
			result.TotalAmount += o.TotalPrice
		}

		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CartService) pendingOrderFor(tx *gorm.DB, buyerID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := lockForUpdate(tx).
		First(&order, "id = ? AND buyer_id = ? AND status = ?", orderID, buyerID, models.OrderStatusPending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}
