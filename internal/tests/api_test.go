// internal/tests/api_test.go
package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sanjanack/FarmConnect/internal/config"
	"github.com/Sanjanack/FarmConnect/internal/database"
	"github.com/Sanjanack/FarmConnect/internal/handlers"
	"github.com/Sanjanack/FarmConnect/internal/middleware"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/services"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

// APITestSuite exercises the HTTP surface end to end against an in-memory
// database. Rate limiting and audit logging are left out of the test router.
type APITestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine

	farmerToken string
	buyerToken  string
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	suite.Require().NoError(database.AutoMigrate(db))
	suite.db = db

	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
		Payment: config.PaymentConfig{Currency: "inr"},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	authService := services.NewAuthService(db, cfg)
	cropService := services.NewCropService(db)
	orderService := services.NewOrderService(db)
	cartService := services.NewCartService(db, orderService)
	profileService := services.NewProfileService(db)

	authHandler := handlers.NewAuthHandler(authService)
	cropHandler := handlers.NewCropHandler(cropService)
	orderHandler := handlers.NewOrderHandler(orderService)
	cartHandler := handlers.NewCartHandler(cartService)
	profileHandler := handlers.NewProfileHandler(profileService)

	r := gin.New()
	r.Use(middleware.I18nMiddleware())

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		crops := v1.Group("/crops")
		{
			crops.GET("", cropHandler.SearchCrops)
			crops.GET("/:id", cropHandler.GetCrop)

			farmerCrops := crops.Group("")
			farmerCrops.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleFarmer))
			{
				farmerCrops.POST("", cropHandler.CreateCrop)
				farmerCrops.GET("/mine", cropHandler.GetMyCrops)
				farmerCrops.PUT("/:id", cropHandler.UpdateCrop)
				farmerCrops.DELETE("/:id", cropHandler.DeleteCrop)
			}
		}

		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.RoleRequired(models.UserRoleBuyer), orderHandler.PlaceOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.POST("/:id/complete", middleware.RoleRequired(models.UserRoleBuyer), orderHandler.CompleteOrder)
			orders.GET("/:id/supply-chain", orderHandler.GetSupplyChain)
			orders.POST("/:id/supply-chain", middleware.RoleRequired(models.UserRoleFarmer), orderHandler.AdvanceSupplyChain)
		}

		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleBuyer))
		{
			cart.GET("", cartHandler.GetCart)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.POST("/checkout", cartHandler.Checkout)
		}

		profile := v1.Group("/profile")
		profile.Use(middleware.AuthRequired())
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PUT("", profileHandler.UpdateProfile)
			profile.GET("/dashboard", profileHandler.GetDashboard)
		}
	}

	suite.router = r
	suite.farmerToken = suite.registerUser(map[string]interface{}{
		"username":       "Ramesh Patil",
		"email":          "farmer@test.local",
		"password":       "secret123",
		"role":           "farmer",
		"farm_name":      "Patil Farms",
		"contact_number": "9876543210",
		"address":        "Village Road, Nashik",
	})
	suite.buyerToken = suite.registerUser(map[string]interface{}{
		"username":     "freshmart",
		"email":        "buyer@test.local",
		"password":     "secret123",
		"role":         "buyer",
		"company_name": "Fresh Mart",
	})
}

func (suite *APITestSuite) registerUser(body map[string]interface{}) string {
	w := suite.request("POST", "/v1/auth/register", body, "")
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotEmpty(resp.Data.Token)
	return resp.Data.Token
}

func (suite *APITestSuite) request(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		suite.Require().NoError(err)
		buf = bytes.NewBuffer(jsonData)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) createCrop() string {
	w := suite.request("POST", "/v1/crops", map[string]interface{}{
		"name":           "Tomatoes",
		"description":    "Fresh farm tomatoes",
		"quantity":       100,
		"unit":           "kg",
		"price_per_unit": 20,
		"quality_grade":  "A",
	}, suite.farmerToken)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Crop struct {
				ID string `json:"id"`
			} `json:"crop"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Crop.ID
}

func (suite *APITestSuite) placeOrder(cropID string, quantity float64) string {
	w := suite.request("POST", "/v1/orders", map[string]interface{}{
		"crop_id":  cropID,
		"quantity": quantity,
	}, suite.buyerToken)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Order struct {
				ID string `json:"id"`
			} `json:"order"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Order.ID
}

func (suite *APITestSuite) TestLoginAndMe() {
	w := suite.request("POST", "/v1/auth/login", map[string]interface{}{
		"email":    "farmer@test.local",
		"password": "secret123",
	}, "")
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request("GET", "/v1/auth/me", nil, suite.farmerToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "farmer@test.local")
}

func (suite *APITestSuite) TestAuthRequired() {
	w := suite.request("GET", "/v1/auth/me", nil, "")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.request("GET", "/v1/orders", nil, "not-a-token")
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestBuyerCannotListCrops() {
	w := suite.request("POST", "/v1/crops", map[string]interface{}{
		"name":           "Tomatoes",
		"quantity":       100,
		"unit":           "kg",
		"price_per_unit": 20,
		"quality_grade":  "A",
	}, suite.buyerToken)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestMarketplaceSearchIsPublic() {
	suite.createCrop()

	w := suite.request("GET", "/v1/crops?search=tomato", nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Tomatoes")
	suite.Equal("1", w.Header().Get("X-Total-Count"))
}

func (suite *APITestSuite) TestOrderFlowThroughCheckoutAndShipment() {
	cropID := suite.createCrop()
	orderID := suite.placeOrder(cropID, 5)

	// The pending order shows up in the cart.
	w := suite.request("GET", "/v1/cart", nil, suite.buyerToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), orderID)

	// Checkout confirms it.
	w = suite.request("POST", "/v1/cart/checkout", map[string]interface{}{
		"order_ids":      []string{orderID},
		"payment_method": "upi",
	}, suite.buyerToken)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	// The farmer ships it.
	w = suite.request("POST", fmt.Sprintf("/v1/orders/%s/supply-chain", orderID), map[string]interface{}{
		"status":   "shipped",
		"location": "Nashik depot",
	}, suite.farmerToken)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	// Earnings land on the farmer dashboard.
	w = suite.request("GET", "/v1/profile/dashboard", nil, suite.farmerToken)
	suite.Equal(http.StatusOK, w.Code)

	var dash struct {
		Data struct {
			Earnings float64 `json:"earnings"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &dash))
	suite.Equal(100.0, dash.Data.Earnings) // 5 kg at 20 per kg

	// The buyer completes the order.
	w = suite.request("POST", fmt.Sprintf("/v1/orders/%s/complete", orderID), nil, suite.buyerToken)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	// Supply chain log shows processing and shipped.
	w = suite.request("GET", fmt.Sprintf("/v1/orders/%s/supply-chain", orderID), nil, suite.buyerToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "processing")
	suite.Contains(w.Body.String(), "shipped")
}

func (suite *APITestSuite) TestCancelOrderConflictAfterCheckout() {
	cropID := suite.createCrop()
	orderID := suite.placeOrder(cropID, 5)

	w := suite.request("POST", "/v1/cart/checkout", map[string]interface{}{
		"order_ids":      []string{orderID},
		"payment_method": "upi",
	}, suite.buyerToken)
	suite.Require().Equal(http.StatusOK, w.Code)

	// Buyers cannot cancel a confirmed order.
	w = suite.request("POST", fmt.Sprintf("/v1/orders/%s/cancel", orderID), nil, suite.buyerToken)
	suite.Equal(http.StatusConflict, w.Code)

	// The owning farmer still can.
	w = suite.request("POST", fmt.Sprintf("/v1/orders/%s/cancel", orderID), nil, suite.farmerToken)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestOversellRejected() {
	cropID := suite.createCrop()

	w := suite.request("POST", "/v1/orders", map[string]interface{}{
		"crop_id":  cropID,
		"quantity": 500,
	}, suite.buyerToken)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *APITestSuite) TestCartRemoveRestoresListing() {
	cropID := suite.createCrop()
	orderID := suite.placeOrder(cropID, 100) // consumes the whole listing

	w := suite.request("DELETE", "/v1/cart/items/"+orderID, nil, suite.buyerToken)
	suite.Equal(http.StatusOK, w.Code)

	// The listing is purchasable again.
	w = suite.request("GET", "/v1/crops/"+cropID, nil, "")
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"status":"available"`)
}

func (suite *APITestSuite) TestProfileUpdatePerRole() {
	w := suite.request("PUT", "/v1/profile", map[string]interface{}{
		"farm_name": "Patil Organic Farms",
	}, suite.farmerToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Patil Organic Farms")

	w = suite.request("PUT", "/v1/profile", map[string]interface{}{
		"company_name": "Fresh Mart Wholesale",
	}, suite.buyerToken)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "Fresh Mart Wholesale")
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
