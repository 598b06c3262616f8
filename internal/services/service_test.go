// internal/services/service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sanjanack/FarmConnect/internal/config"
	"github.com/Sanjanack/FarmConnect/internal/database"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

// setupTestDB opens a private in-memory database with the full schema. The
// pool is pinned to one connection so every query sees the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Payment: config.PaymentConfig{
			Currency: "inr",
		},
	}
}

var fixtureSeq int

func nextFixtureID() int {
	fixtureSeq++
	return fixtureSeq
}

func createTestFarmer(t *testing.T, db *gorm.DB) (*models.User, *models.FarmerProfile) {
	t.Helper()

	n := nextFixtureID()
	user := &models.User{
		Username: fmt.Sprintf("farmer%d", n),
		Email:    fmt.Sprintf("farmer%d@test.local", n),
		Role:     models.UserRoleFarmer,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)

	profile := &models.FarmerProfile{
		UserID:        user.ID,
		FirstName:     "Test",
		LastName:      "Farmer",
		FarmName:      "Green Acres",
		ContactNumber: "9876543210",
		Address:       "Village Road, Pune",
	}
	require.NoError(t, db.Create(profile).Error)
	return user, profile
}

func createTestBuyer(t *testing.T, db *gorm.DB) (*models.User, *models.BuyerProfile) {
	t.Helper()

	n := nextFixtureID()
	user := &models.User{
		Username: fmt.Sprintf("buyer%d", n),
		Email:    fmt.Sprintf("buyer%d@test.local", n),
		Role:     models.UserRoleBuyer,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(user).Error)

	profile := &models.BuyerProfile{
		UserID:      user.ID,
		CompanyName: "Fresh Mart",
	}
	require.NoError(t, db.Create(profile).Error)
	return user, profile
}

func createTestCrop(t *testing.T, db *gorm.DB, farmerID uuid.UUID, quantity, pricePerUnit float64) *models.Crop {
	t.Helper()

	crop := &models.Crop{
		FarmerID:     farmerID,
		Name:         "Tomatoes",
		Description:  "Fresh farm tomatoes",
		Quantity:     quantity,
		Unit:         "kg",
		PricePerUnit: pricePerUnit,
		QualityGrade: "A",
		Status:       models.CropStatusAvailable,
	}
	require.NoError(t, db.Create(crop).Error)
	return crop
}

func reloadCrop(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Crop {
	t.Helper()

	var crop models.Crop
	require.NoError(t, db.First(&crop, "id = ?", id).Error)
	return &crop
}

func reloadOrder(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Order {
	t.Helper()

	var order models.Order
	require.NoError(t, db.First(&order, "id = ?", id).Error)
	return &order
}

func defaultPageParams() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20}
}
