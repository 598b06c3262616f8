// internal/services/payment_service.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/Sanjanack/FarmConnect/internal/config"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

// PaymentService fronts the payment gateway for checkout totals and serves
// payment history. The Payment rows themselves are written inside the order
// confirmation transaction by the order lifecycle, never here.
type PaymentService struct {
	db  *gorm.DB
	cfg *config.Config
}

type CreatePaymentIntentRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Currency      string  `json:"currency,omitempty"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = cfg.Payment.StripeSecretKey

	return &PaymentService{
		db:  db,
		cfg: cfg,
	}
}

func (s *PaymentService) CreatePaymentIntent(userID uuid.UUID, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.cfg.Payment.Currency
	}

	// Stripe amounts are in the smallest currency unit (paise for INR)
	amountInSubunits := int64(req.Amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInSubunits),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("payment_method", req.PaymentMethod)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// GetPaymentHistory lists payments visible to the user: a buyer sees the
// payments on their orders, a farmer the payments on orders against their
// crops.
func (s *PaymentService) GetPaymentHistory(userID uuid.UUID, role models.UserRole, params utils.PaginationParams) ([]models.Payment, int64, error) {
	var query *gorm.DB

	switch role {
	case models.UserRoleBuyer:
		buyer, err := buyerForUser(s.db, userID)
		if err != nil {
			return nil, 0, err
		}
		query = s.db.Model(&models.Payment{}).Select("payments.*").
			Joins("JOIN orders ON orders.id = payments.order_id").
			Where("orders.buyer_id = ?", buyer.ID)
	case models.UserRoleFarmer:
		farmer, err := farmerForUser(s.db, userID)
		if err != nil {
			return nil, 0, err
		}
		query = s.db.Model(&models.Payment{}).Select("payments.*").
			Joins("JOIN orders ON orders.id = payments.order_id").
			Joins("JOIN crops ON crops.id = orders.crop_id").
			Where("crops.farmer_id = ?", farmer.ID)
	default:
		query = s.db.Model(&models.Payment{})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	query = query.Preload("Order").Preload("Order.Crop").
		Order("payments.created_at DESC")
	query = utils.ApplyPagination(query, params)

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	return payments, total, nil
}
