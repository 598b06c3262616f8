// internal/models/profile.go
package models

import (
	"github.com/google/uuid"
)

// FarmerProfile is the seller side of the marketplace. Earnings accumulate
// once per order when its shipment is marked shipped.
type FarmerProfile struct {
	BaseModel
	UserID            uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	FirstName         string    `json:"first_name" gorm:"size:100"`
	LastName          string    `json:"last_name" gorm:"size:100"`
	FarmName          string    `json:"farm_name" gorm:"size:255"`
	ContactNumber     string    `json:"contact_number" gorm:"size:20"`
	Address           string    `json:"address" gorm:"type:text"`
	FarmingExperience int       `json:"farming_experience" gorm:"default:0"`
	Earnings          float64   `json:"earnings" gorm:"type:decimal(12,2);default:0"`

	// Relationships
	User  User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Crops []Crop `json:"crops,omitempty" gorm:"foreignKey:FarmerID"`
}

type BuyerProfile struct {
	BaseModel
	UserID        uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	CompanyName   string    `json:"company_name" gorm:"size:255"`
	ContactNumber string    `json:"contact_number" gorm:"size:20"`
	Address       string    `json:"address" gorm:"type:text"`
	AmountSpent   float64   `json:"amount_spent" gorm:"type:decimal(12,2);default:0"`

	// Relationships
	User   User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Orders []Order `json:"orders,omitempty" gorm:"foreignKey:BuyerID"`
}
