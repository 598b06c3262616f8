// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Sanjanack/FarmConnect/internal/models"
)

type CartServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	orders  *OrderService
	service *CartService

	farmer     *models.User
	farmerProf *models.FarmerProfile
	buyer      *models.User
	buyerProf  *models.BuyerProfile
	crop       *models.Crop
}

func (s *CartServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.orders = NewOrderService(s.db)
	s.service = NewCartService(s.db, s.orders)

	s.farmer, s.farmerProf = createTestFarmer(s.T(), s.db)
	s.buyer, s.buyerProf = createTestBuyer(s.T(), s.db)
	s.crop = createTestCrop(s.T(), s.db, s.farmerProf.ID, 100, 20)
}

func (s *CartServiceTestSuite) addToCart(quantity float64) *models.Order {
	order, err := s.orders.PlaceOrder(s.buyer.ID, &PlaceOrderRequest{
		CropID:   s.crop.ID,
		Quantity: quantity,
	})
	s.Require().NoError(err)
	return order
}

func (s *CartServiceTestSuite) TestGetCartListsPendingOrdersWithTotal() {
	s.addToCart(5)  // 100
	s.addToCart(10) // 200

	cart, err := s.service.GetCart(s.buyer.ID)
	s.Require().NoError(err)
	s.Len(cart.Items, 2)
	s.Equal(300.0, cart.Total)
}

func (s *CartServiceTestSuite) TestGetCartExcludesConfirmedOrders() {
	order := s.addToCart(5)
	s.addToCart(10)

	_, err := s.orders.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	cart, err := s.service.GetCart(s.buyer.ID)
	s.Require().NoError(err)
	s.Len(cart.Items, 1)
	s.Equal(200.0, cart.Total)
}

func (s *CartServiceTestSuite) TestUpdateQuantityAppliesDelta() {
	order := s.addToCart(10) // crop now at 90

	updated, err := s.service.UpdateQuantity(s.buyer.ID, order.ID, &UpdateCartItemRequest{Quantity: 25})
	s.Require().NoError(err)
	s.Equal(25.0, updated.Quantity)
	s.Equal(500.0, updated.TotalPrice)

	s.Equal(75.0, reloadCrop(s.T(), s.db, s.crop.ID).Quantity)
}

func (s *CartServiceTestSuite) TestUpdateQuantityDecreaseReturnsStock() {
	order := s.addToCart(40) // crop now at 60

	updated, err := s.service.UpdateQuantity(s.buyer.ID, order.ID, &UpdateCartItemRequest{Quantity: 10})
	s.Require().NoError(err)
	s.Equal(10.0, updated.Quantity)
	s.Equal(200.0, updated.TotalPrice)

	s.Equal(90.0, reloadCrop(s.T(), s.db, s.crop.ID).Quantity)
}

func (s *CartServiceTestSuite) TestUpdateQuantityPastAvailableFails() {
	order := s.addToCart(10) // crop at 90, buyer could grow to 100 at most

	_, err := s.service.UpdateQuantity(s.buyer.ID, order.ID, &UpdateCartItemRequest{Quantity: 101})
	s.ErrorIs(err, ErrInsufficientQuantity)

	// Nothing moved.
	s.Equal(90.0, reloadCrop(s.T(), s.db, s.crop.ID).Quantity)
	s.Equal(10.0, reloadOrder(s.T(), s.db, order.ID).Quantity)
}

func (s *CartServiceTestSuite) TestUpdateQuantityConsumingRemainderMarksSold() {
	order := s.addToCart(10)

	_, err := s.service.UpdateQuantity(s.buyer.ID, order.ID, &UpdateCartItemRequest{Quantity: 100})
	s.Require().NoError(err)

	crop := reloadCrop(s.T(), s.db, s.crop.ID)
	s.Equal(0.0, crop.Quantity)
	s.Equal(models.CropStatusSold, crop.Status)
}

func (s *CartServiceTestSuite) TestRemoveRestoresQuantityAndDeletesOrder() {
	order := s.addToCart(30) // crop at 70

	s.Require().NoError(s.service.Remove(s.buyer.ID, order.ID))

	s.Equal(100.0, reloadCrop(s.T(), s.db, s.crop.ID).Quantity)

	var count int64
	s.db.Model(&models.Order{}).Where("id = ?", order.ID).Count(&count)
	s.Zero(count)
}

func (s *CartServiceTestSuite) TestRemoveOtherBuyersItemFails() {
	order := s.addToCart(5)

	other, _ := createTestBuyer(s.T(), s.db)
	err := s.service.Remove(other.ID, order.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *CartServiceTestSuite) TestCheckoutConfirmsAllNamedOrders() {
	first := s.addToCart(5)   // 100
	second := s.addToCart(10) // 200

	result, err := s.service.Checkout(s.buyer.ID, &CheckoutRequest{
		OrderIDs:      []uuid.UUID{first.ID, second.ID},
		PaymentMethod: "upi",
	})
	s.Require().NoError(err)
	s.Len(result.Orders, 2)
	s.Equal(300.0, result.TotalAmount)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		order := reloadOrder(s.T(), s.db, id)
		s.Equal(models.OrderStatusConfirmed, order.Status)

		var paymentCount int64
		s.db.Model(&models.Payment{}).Where("order_id = ?", id).Count(&paymentCount)
		s.Equal(int64(1), paymentCount)
	}

	// Checkout deducts nothing further.
	s.Equal(85.0, reloadCrop(s.T(), s.db, s.crop.ID).Quantity)
}

func (s *CartServiceTestSuite) TestCheckoutIsAtomic() {
	first := s.addToCart(5)
	confirmed := s.addToCart(10)

	// One of the named orders is no longer pending.
	_, err := s.orders.ConfirmOrder(s.farmer.ID, confirmed.ID, "")
	s.Require().NoError(err)

	_, err = s.service.Checkout(s.buyer.ID, &CheckoutRequest{
		OrderIDs:      []uuid.UUID{first.ID, confirmed.ID},
		PaymentMethod: "upi",
	})
	s.ErrorIs(err, ErrNotFound)

	// The first order stays pending with no payment.
	s.Equal(models.OrderStatusPending, reloadOrder(s.T(), s.db, first.ID).Status)

	var paymentCount int64
	s.db.Model(&models.Payment{}).Where("order_id = ?", first.ID).Count(&paymentCount)
	s.Zero(paymentCount)
}

func (s *CartServiceTestSuite) TestCheckoutEmptyCartFails() {
	_, err := s.service.Checkout(s.buyer.ID, &CheckoutRequest{
		OrderIDs:      []uuid.UUID{uuid.New()},
		PaymentMethod: "upi",
	})
	s.ErrorIs(err, ErrEmptyCart)
}

func (s *CartServiceTestSuite) TestCheckoutRequiresOrderIDs() {
	_, err := s.service.Checkout(s.buyer.ID, &CheckoutRequest{
		PaymentMethod: "upi",
	})
	s.Error(err)
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}
