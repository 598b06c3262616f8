// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sanjanack/FarmConnect/internal/database"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

// OrderService is the order lifecycle controller. Legal transitions:
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
//
// completed and cancelled are terminal. Every operation that touches crop
// quantity runs inside one transaction with the crop row locked, so two
// concurrent placements cannot oversell a crop.
type OrderService struct {
	db *gorm.DB
}

type PlaceOrderRequest struct {
	CropID   uuid.UUID `json:"crop_id" validate:"required"`
	Quantity float64   `json:"quantity" validate:"required,gt=0"`
}

type AdvanceShipmentRequest struct {
	Status   models.ShipmentStatus `json:"status" validate:"required"`
	Location string                `json:"location,omitempty"`
	Notes    string                `json:"notes,omitempty"`
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// lockForUpdate takes a row-level lock on the rows the query selects. The
// sqlite driver used in tests has no row locks, so the clause is skipped
// there; postgres gets SELECT ... FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// PlaceOrder reserves quantity against a new pending order. The total price
// is snapshotted from the crop's current price and never re-derived.
func (s *OrderService) PlaceOrder(buyerUserID uuid.UUID, req *PlaceOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order *models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		buyer, err := buyerForUser(tx, buyerUserID)
		if err != nil {
			return err
		}

		var crop models.Crop
		if err := lockForUpdate(tx).First(&crop, "id = ?", req.CropID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if crop.Status != models.CropStatusAvailable {
			return ErrCropUnavailable
		}
		if req.Quantity > crop.Quantity {
			return ErrInsufficientQuantity
		}

		order = &models.Order{
			BuyerID:    buyer.ID,
			CropID:     crop.ID,
			Quantity:   req.Quantity,
			TotalPrice: req.Quantity * crop.PricePerUnit,
			Status:     models.OrderStatusPending,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		remaining := crop.Quantity - req.Quantity
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

		return nil
	})

	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Crop").Preload("Crop.Farmer").First(order, "id = ?", order.ID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return order, nil
}

// ConfirmOrder moves a pending order to confirmed, recording the payment and
// the first supply-chain event in the same transaction. Quantity was already
// deducted at placement, so inventory is untouched here. The owning farmer
// confirms from the orders view; the owning buyer confirms through checkout.
func (s *OrderService) ConfirmOrder(userID uuid.UUID, orderID uuid.UUID, paymentMethod string) (*models.Order, error) {
	var order models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		o, err := s.loadOrderForUpdate(tx, orderID)
		if err != nil {
			return err
		}

		actor, err := s.actorFor(tx, userID, o)
		if err != nil {
			return err
		}
		if actor == actorNone {
			return ErrUnauthorized
		}

		if err := s.confirmInTx(tx, o, paymentMethod); err != nil {
			return err
		}

		order = *o
		return nil
	})

	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Payment").Preload("SupplyChain").Preload("Crop").First(&order, "id = ?", order.ID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// confirmInTx enacts pending -> confirmed inside an already-open transaction.
// Also used by checkout, which confirms a batch of orders atomically.
func (s *OrderService) confirmInTx(tx *gorm.DB, order *models.Order, paymentMethod string) error {
	if order.Status != models.OrderStatusPending {
		return ErrOrderNotPending
	}

	order.Status = models.OrderStatusConfirmed
	if err := tx.Model(order).Update("status", models.OrderStatusConfirmed).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if paymentMethod == "" {
		paymentMethod = "cash_on_delivery"
	}
	reference, err := utils.GenerateReceiptNumber()
	if err != nil {
		return fmt.Errorf("failed to generate receipt number: %w", err)
	}

	payment := &models.Payment{
		OrderID:   order.ID,
		Amount:    order.TotalPrice,
		Method:    paymentMethod,
		Status:    models.PaymentStatusConfirmed,
		Reference: reference,
	}
	if err := tx.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}

	event := &models.SupplyChainEvent{
		OrderID: order.ID,
		Status:  models.ShipmentStatusProcessing,
		Notes:   "Order placed and pending processing",
	}
	if err := tx.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create supply chain entry: %w", err)
	}

	return nil
}

// CancelOrder cancels an order and returns its quantity to the crop. Buyers
// may cancel only while pending; farmers may also cancel a confirmed order.
// The restore is unconditional, so a cancelled order can push quantity past
// the original listing.
func (s *OrderService) CancelOrder(userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		o, err := s.loadOrderForUpdate(tx, orderID)
		if err != nil {
			return err
		}

		actor, err := s.actorFor(tx, userID, o)
		if err != nil {
			return err
		}

		switch actor {
		case actorBuyer:
			if o.Status != models.OrderStatusPending {
				return ErrOrderNotCancellable
			}
		case actorFarmer:
			if o.Status != models.OrderStatusPending && o.Status != models.OrderStatusConfirmed {
				return ErrOrderNotCancellable
			}
		default:
			return ErrUnauthorized
		}

		if err := s.cancelInTx(tx, o); err != nil {
			return err
		}

		order = *o
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) cancelInTx(tx *gorm.DB, order *models.Order) error {
	order.Status = models.OrderStatusCancelled
	if err := tx.Model(order).Update("status", models.OrderStatusCancelled).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return restoreCropQuantity(tx, order.CropID, order.Quantity)
}

// restoreCropQuantity returns reserved quantity to a crop and makes it
// available again.
func restoreCropQuantity(tx *gorm.DB, cropID uuid.UUID, quantity float64) error {
	var crop models.Crop
	if err := lockForUpdate(tx).First(&crop, "id = ?", cropID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	if err := tx.Model(&crop).Updates(map[string]interface{}{
		"quantity": crop.Quantity + quantity,
		"status":   models.CropStatusAvailable,
	}).Error; err != nil {
		return fmt.Errorf("failed to restore crop quantity: %w", err)
	}
	return nil
}

// CompleteOrder lets the owning buyer mark a confirmed order complete. No
// inventory effect.
func (s *OrderService) CompleteOrder(userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		o, err := s.loadOrderForUpdate(tx, orderID)
		if err != nil {
			return err
		}

		actor, err := s.actorFor(tx, userID, o)
		if err != nil {
			return err
		}
		if actor != actorBuyer {
			return ErrUnauthorized
		}

		if o.Status != models.OrderStatusConfirmed {
			return ErrOrderNotConfirmed
		}

		o.Status = models.OrderStatusCompleted
		if err := tx.Model(o).Update("status", models.OrderStatusCompleted).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		order = *o
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &order, nil
}

// AdvanceSupplyChain appends a shipment event for the order. Only the owning
// farmer may advance shipment state. Marking shipped settles earnings and
// amount spent exactly once per order, guarded by Order.SettledAt; marking
// cancelled cancels a still-confirmed order and restores crop quantity.
func (s *OrderService) AdvanceSupplyChain(userID uuid.UUID, orderID uuid.UUID, req *AdvanceShipmentRequest) (*models.SupplyChainEvent, error) {
	if !req.Status.IsValid() {
		return nil, ErrInvalidShipmentState
	}

	var event models.SupplyChainEvent

	err := database.WithTransaction(s.db, func(tx *gorm.DB) error {
		o, err := s.loadOrderForUpdate(tx, orderID)
		if err != nil {
			return err
		}

		actor, err := s.actorFor(tx, userID, o)
		if err != nil {
			return err
		}
		if actor != actorFarmer {
			return ErrUnauthorized
		}

		if o.Status != models.OrderStatusConfirmed && o.Status != models.OrderStatusCompleted {
			return ErrOrderNotConfirmed
		}

		entry := &models.SupplyChainEvent{
			OrderID:  o.ID,
			Status:   req.Status,
			Location: req.Location,
			Notes:    req.Notes,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create supply chain entry: %w", err)
		}

		switch req.Status {
		case models.ShipmentStatusShipped:
			if err := s.settleInTx(tx, o); err != nil {
				return err
			}
		case models.ShipmentStatusCancelled:
			// Completed orders are terminal; a late cancelled event must not
			// reopen them or restore quantity the buyer already received.
			if o.Status != models.OrderStatusConfirmed {
				return ErrOrderNotCancellable
			}
			if err := s.cancelInTx(tx, o); err != nil {
				return err
			}
		}

		event = *entry
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &event, nil
}

// settleInTx credits the farmer's earnings and debits the buyer's amount
// spent for one order, at most once. A repeated shipped event appends to the
// log but does not settle again.
func (s *OrderService) settleInTx(tx *gorm.DB, order *models.Order) error {
	if order.SettledAt != nil {
		return nil
	}

	var crop models.Crop
	if err := tx.First(&crop, "id = ?", order.CropID).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if err := tx.Model(&models.FarmerProfile{}).Where("id = ?", crop.FarmerID).
		UpdateColumn("earnings", gorm.Expr("earnings + ?", order.TotalPrice)).Error; err != nil {
		return fmt.Errorf("failed to update farmer earnings: %w", err)
	}

	if err := tx.Model(&models.BuyerProfile{}).Where("id = ?", order.BuyerID).
		UpdateColumn("amount_spent", gorm.Expr("amount_spent + ?", order.TotalPrice)).Error; err != nil {
		return fmt.Errorf("failed to update buyer amount spent: %w", err)
	}

	now := time.Now()
	order.SettledAt = &now
	if err := tx.Model(order).Update("settled_at", now).Error; err != nil {
		return fmt.Errorf("failed to mark order settled: %w", err)
	}

	return nil
}

// GetOrder returns one order with its payment and shipment history, visible
// only to the owning buyer or the crop's farmer.
func (s *OrderService) GetOrder(userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Crop").Preload("Crop.Farmer").Preload("Buyer").
		Preload("Payment").Preload("SupplyChain", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	actor, err := s.actorFor(s.db, userID, &order)
	if err != nil {
		return nil, err
	}
	if actor == actorNone {
		return nil, ErrUnauthorized
	}

	return &order, nil
}

// GetBuyerOrders lists a buyer's orders, optionally filtered by status.
func (s *OrderService) GetBuyerOrders(buyerUserID uuid.UUID, status models.OrderStatus, params utils.PaginationParams) ([]models.Order, int64, error) {
	buyer, err := buyerForUser(s.db, buyerUserID)
	if err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.Order{}).Where("buyer_id = ?", buyer.ID).
		Preload("Crop").Preload("Crop.Farmer").Preload("Payment")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	return s.listOrders(query, params)
}

// GetFarmerOrders lists every order placed against the farmer's crops.
func (s *OrderService) GetFarmerOrders(farmerUserID uuid.UUID, status models.OrderStatus, params utils.PaginationParams) ([]models.Order, int64, error) {
	farmer, err := farmerForUser(s.db, farmerUserID)
	if err != nil {
		return nil, 0, err
	}

	// Unscoped so orders against since-deleted listings stay visible.
	cropIDs := s.db.Unscoped().Model(&models.Crop{}).Select("id").Where("farmer_id = ?", farmer.ID)
	query := s.db.Model(&models.Order{}).Where("crop_id IN (?)", cropIDs).
		Preload("Crop").Preload("Buyer").Preload("Payment")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	return s.listOrders(query, params)
}

// GetSupplyChain returns the shipment event log for an order.
func (s *OrderService) GetSupplyChain(userID uuid.UUID, orderID uuid.UUID) ([]models.SupplyChainEvent, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}
	return order.SupplyChain, nil
}

func (s *OrderService) listOrders(query *gorm.DB, params utils.PaginationParams) ([]models.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "total_price", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

func (s *OrderService) loadOrderForUpdate(tx *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := lockForUpdate(tx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// Actor resolution: an order may be acted on by its buyer or by the farmer
// owning its crop, with different permitted transitions each.
type orderActor int

const (
	actorNone orderActor = iota
	actorBuyer
	actorFarmer
)

func (s *OrderService) actorFor(tx *gorm.DB, userID uuid.UUID, order *models.Order) (orderActor, error) {
	var buyer models.BuyerProfile
	if err := tx.First(&buyer, "id = ?", order.BuyerID).Error; err != nil {
		return actorNone, fmt.Errorf("database error: %w", err)
	}
	if buyer.UserID == userID {
		return actorBuyer, nil
	}

	var crop models.Crop
	if err := tx.First(&crop, "id = ?", order.CropID).Error; err != nil {
		return actorNone, fmt.Errorf("database error: %w", err)
	}
	var farmer models.FarmerProfile
	if err := tx.First(&farmer, "id = ?", crop.FarmerID).Error; err != nil {
		return actorNone, fmt.Errorf("database error: %w", err)
	}
	if farmer.UserID == userID {
		return actorFarmer, nil
	}

	return actorNone, nil
}

// Profile lookups shared across services.
func buyerForUser(tx *gorm.DB, userID uuid.UUID) (*models.BuyerProfile, error) {
	var buyer models.BuyerProfile
	if err := tx.First(&buyer, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &buyer, nil
}

func farmerForUser(tx *gorm.DB, userID uuid.UUID) (*models.FarmerProfile, error) {
	var farmer models.FarmerProfile
	if err := tx.First(&farmer, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &farmer, nil
}
