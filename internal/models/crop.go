// internal/models/crop.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Crop is a farmer's listed sellable lot. Invariants held by the order
// lifecycle: status=sold implies quantity=0, status=available implies
// quantity>0.
type Crop struct {
	BaseModel
	FarmerID     uuid.UUID      `json:"farmer_id" gorm:"type:uuid;not null;index"`
	Name         string         `json:"name" gorm:"size:255;not null"`
	Description  string         `json:"description" gorm:"type:text"`
	Quantity     float64        `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit         string         `json:"unit" gorm:"size:20;not null"`
	PricePerUnit float64        `json:"price_per_unit" gorm:"type:decimal(10,2);not null"`
	QualityGrade string         `json:"quality_grade" gorm:"size:10"`
	HarvestDate  *time.Time     `json:"harvest_date"`
	Images       pq.StringArray `json:"images" gorm:"type:text[]"`
	Status       CropStatus     `json:"status" gorm:"type:varchar(20);default:'available';index"`

	// Relationships
	Farmer FarmerProfile `json:"farmer,omitempty" gorm:"foreignKey:FarmerID"`
	Orders []Order       `json:"orders,omitempty" gorm:"foreignKey:CropID"`
}
