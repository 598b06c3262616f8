// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a buyer's claim against a crop's quantity. TotalPrice is a
// snapshot taken at placement time and never re-derived. SettledAt marks the
// one-time earnings/amount-spent settlement performed when the shipment is
// marked shipped.
type Order struct {
	BaseModel
	BuyerID    uuid.UUID   `json:"buyer_id" gorm:"type:uuid;not null;index"`
	CropID     uuid.UUID   `json:"crop_id" gorm:"type:uuid;not null;index"`
	Quantity   float64     `json:"quantity" gorm:"type:decimal(10,2);not null"`
	TotalPrice float64     `json:"total_price" gorm:"type:decimal(12,2);not null"`
	Status     OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	SettledAt  *time.Time  `json:"settled_at"`

	// Relationships
	Buyer       BuyerProfile       `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Crop        Crop               `json:"crop,omitempty" gorm:"foreignKey:CropID"`
	Payment     *Payment           `json:"payment,omitempty" gorm:"foreignKey:OrderID"`
	SupplyChain []SupplyChainEvent `json:"supply_chain,omitempty" gorm:"foreignKey:OrderID"`
}

// Payment is created exactly once per order, inside the confirmation
// transaction. Append-only.
type Payment struct {
	BaseModel
	OrderID   uuid.UUID     `json:"order_id" gorm:"type:uuid;uniqueIndex;not null"`
	Amount    float64       `json:"amount" gorm:"type:decimal(12,2);not null"`
	Method    string        `json:"method" gorm:"size:50"`
	Status    PaymentStatus `json:"status" gorm:"type:varchar(20);default:'confirmed'"`
	Reference string        `json:"reference" gorm:"size:100"`

	// Relationships
	Order Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}

// SupplyChainEvent is one row of the append-only shipment log. It carries the
// granular shipment state that must never be written into Order.Status.
type SupplyChainEvent struct {
	BaseModel
	OrderID  uuid.UUID      `json:"order_id" gorm:"type:uuid;not null;index"`
	Status   ShipmentStatus `json:"status" gorm:"type:varchar(30);not null"`
	Location string         `json:"location" gorm:"size:255"`
	Notes    string         `json:"notes" gorm:"type:text"`

	// Relationships
	Order Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}
