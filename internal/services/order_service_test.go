// internal/services/order_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/Sanjanack/FarmConnect/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *OrderService

	farmer     *models.User
	farmerProf *models.FarmerProfile
	buyer      *models.User
	buyerProf  *models.BuyerProfile
	crop       *models.Crop
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.service = NewOrderService(s.db)

	s.farmer, s.farmerProf = createTestFarmer(s.T(), s.db)
	s.buyer, s.buyerProf = createTestBuyer(s.T(), s.db)
	s.crop = createTestCrop(s.T(), s.db, s.farmerProf.ID, 100, 20)
}

func (s *OrderServiceTestSuite) placeOrder(quantity float64) *models.Order {
	order, err := s.service.PlaceOrder(s.buyer.ID, &PlaceOrderRequest{
		CropID:   s.crop.ID,
		Quantity: quantity,
	})
	s.Require().NoError(err)
	return order
}

func (s *OrderServiceTestSuite) TestPlaceOrderDeductsQuantityAndSnapshotsPrice() {
	order := s.placeOrder(5)

	s.Equal(models.OrderStatusPending, order.Status)
	s.Equal(5.0, order.Quantity)
	s.Equal(100.0, order.TotalPrice) // 5 kg at 20 per kg

	crop := reloadCrop(s.T(), s.db, s.crop.ID)
	s.Equal(95.0, crop.Quantity)
	s.Equal(models.CropStatusAvailable, crop.Status)
}

func (s *OrderServiceTestSuite) TestPlaceOrderInsufficientQuantityLeavesCropUntouched() {
	_, err := s.service.PlaceOrder(s.buyer.ID, &PlaceOrderRequest{
		CropID:   s.crop.ID,
		Quantity: 150,
	})
	s.ErrorIs(err, ErrInsufficientQuantity)

	crop := reloadCrop(s.T(), s.db, s.crop.ID)
	s.Equal(100.0, crop.Quantity)

	var orderCount int64
	s.db.Model(&models.Order{}).Count(&orderCount)
	s.Zero(orderCount)
}

func (s *OrderServiceTestSuite) TestPlaceOrderExactQuantityMarksCropSold() {
	s.placeOrder(100)

	crop := reloadCrop(s.T(), s.db, s.crop.ID)
	s.Equal(0.0, crop.Quantity)
	s.Equal(models.CropStatusSold, crop.Status)

	// A sold-out crop rejects further orders even for tiny quantities.
	_, err := s.service.PlaceOrder(s.buyer.ID, &PlaceOrderRequest{
		CropID:   s.crop.ID,
		Quantity: 1,
	})
	s.ErrorIs(err, ErrCropUnavailable)
}

func (s *OrderServiceTestSuite) TestPlaceOrderUnknownCrop() {
	_, err := s.service.PlaceOrder(s.buyer.ID, &PlaceOrderRequest{
		CropID:   uuid.New(),
		Quantity: 1,
	})
	s.ErrorIs(err, ErrNotFound)
}

func (s *OrderServiceTestSuite) TestConfirmOrderCreatesPaymentAndShipmentEvent() {
	order := s.placeOrder(5)

	confirmed, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "upi")
	s.Require().NoError(err)
	s.Equal(models.OrderStatusConfirmed, confirmed.Status)

	// Confirmation deducts nothing, placement already did.
	crop := reloadCrop(s.T(), s.db, s.crop.ID)
	s.Equal(95.0, crop.Quantity)

	s.Require().NotNil(confirmed.Payment)
	s.Equal(order.TotalPrice, confirmed.Payment.Amount)
	s.Equal("upi", confirmed.Payment.Method)
	s.Equal(models.PaymentStatusConfirmed, confirmed.Payment.Status)
	s.NotEmpty(confirmed.Payment.Reference)

	s.Require().Len(confirmed.SupplyChain, 1)
	s.Equal(models.ShipmentStatusProcessing, confirmed.SupplyChain[0].Status)
}

func (s *OrderServiceTestSuite) TestConfirmOrderTwiceKeepsSinglePayment() {
	order := s.placeOrder(5)

	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	_, err = s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.ErrorIs(err, ErrOrderNotPending)

	var paymentCount int64
	s.db.Model(&models.Payment{}).Where("order_id = ?", order.ID).Count(&paymentCount)
	s.Equal(int64(1), paymentCount)
}

func (s *OrderServiceTestSuite) TestConfirmOrderDefaultsPaymentMethod() {
	order := s.placeOrder(2)

	confirmed, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)
	s.Equal("cash_on_delivery", confirmed.Payment.Method)
}

func (s *OrderServiceTestSuite) TestConfirmOrderStrangerDenied() {
	order := s.placeOrder(5)

	stranger, _ := createTestBuyer(s.T(), s.db)
	_, err := s.service.ConfirmOrder(stranger.ID, order.ID, "")
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *OrderServiceTestSuite) TestBuyerCancelPendingRestoresQuantity() {
	order := s.placeOrder(30)

	cancelled, err := s.service.CancelOrder(s.buyer.ID, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusCancelled, cancelled.Status)

	crop := reloadCrop(s.T(), s.db, s.crop.ID)
	s.Equal(100.0, crop.Quantity)
	s.Equal(models.CropStatusAvailable, crop.Status)
}

func (s *OrderServiceTestSuite) TestBuyerCannotCancelConfirmedOrder() {
	order := s.placeOrder(5)
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	_, err = s.service.CancelOrder(s.buyer.ID, order.ID)
	s.ErrorIs(err, ErrOrderNotCancellable)
}

func (s *OrderServiceTestSuite) TestFarmerCanCancelConfirmedOrder() {
	order := s.placeOrder(5)
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	cancelled, err := s.service.CancelOrder(s.farmer.ID, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusCancelled, cancelled.Status)

	crop := reloadCrop(s.T(), s.db, s.crop.ID)
	s.Equal(100.0, crop.Quantity)
}

func (s *OrderServiceTestSuite) TestCancelRestoresSoldCropToAvailable() {
	order := s.placeOrder(100)
	s.Equal(models.CropStatusSold, reloadCrop(s.T(), s.db, s.crop.ID).Status)

	_, err := s.service.CancelOrder(s.buyer.ID, order.ID)
	s.Require().NoError(err)

	crop := reloadCrop(s.T(), s.db, s.crop.ID)
	s.Equal(100.0, crop.Quantity)
	s.Equal(models.CropStatusAvailable, crop.Status)
}

func (s *OrderServiceTestSuite) TestCompleteOrderRequiresConfirmed() {
	order := s.placeOrder(5)

	_, err := s.service.CompleteOrder(s.buyer.ID, order.ID)
	s.ErrorIs(err, ErrOrderNotConfirmed)

	_, err = s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	completed, err := s.service.CompleteOrder(s.buyer.ID, order.ID)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusCompleted, completed.Status)
}

func (s *OrderServiceTestSuite) TestCompleteOrderFarmerDenied() {
	order := s.placeOrder(5)
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	_, err = s.service.CompleteOrder(s.farmer.ID, order.ID)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *OrderServiceTestSuite) TestAdvanceSupplyChainAppendsEvents() {
	order := s.placeOrder(5)
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	event, err := s.service.AdvanceSupplyChain(s.farmer.ID, order.ID, &AdvanceShipmentRequest{
		Status:   models.ShipmentStatusPacked,
		Location: "Pune warehouse",
	})
	s.Require().NoError(err)
	s.Equal(models.ShipmentStatusPacked, event.Status)

	events, err := s.service.GetSupplyChain(s.buyer.ID, order.ID)
	s.Require().NoError(err)
	s.Len(events, 2) // processing + packed
}

func (s *OrderServiceTestSuite) TestAdvanceSupplyChainBuyerDenied() {
	order := s.placeOrder(5)
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	_, err = s.service.AdvanceSupplyChain(s.buyer.ID, order.ID, &AdvanceShipmentRequest{
		Status: models.ShipmentStatusPacked,
	})
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *OrderServiceTestSuite) TestAdvanceSupplyChainRejectsPendingOrder() {
	order := s.placeOrder(5)

	_, err := s.service.AdvanceSupplyChain(s.farmer.ID, order.ID, &AdvanceShipmentRequest{
		Status: models.ShipmentStatusPacked,
	})
	s.ErrorIs(err, ErrOrderNotConfirmed)
}

func (s *OrderServiceTestSuite) TestAdvanceSupplyChainRejectsUnknownStatus() {
	order := s.placeOrder(5)
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	_, err = s.service.AdvanceSupplyChain(s.farmer.ID, order.ID, &AdvanceShipmentRequest{
		Status: models.ShipmentStatus("teleported"),
	})
	s.ErrorIs(err, ErrInvalidShipmentState)
}

func (s *OrderServiceTestSuite) TestShippedSettlesEarningsOnce() {
	order := s.placeOrder(5) // total 100
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	_, err = s.service.AdvanceSupplyChain(s.farmer.ID, order.ID, &AdvanceShipmentRequest{
		Status: models.ShipmentStatusShipped,
	})
	s.Require().NoError(err)

	var farmer models.FarmerProfile
	s.Require().NoError(s.db.First(&farmer, "id = ?", s.farmerProf.ID).Error)
	s.Equal(100.0, farmer.Earnings)

	var buyer models.BuyerProfile
	s.Require().NoError(s.db.First(&buyer, "id = ?", s.buyerProf.ID).Error)
	s.Equal(100.0, buyer.AmountSpent)

	s.NotNil(reloadOrder(s.T(), s.db, order.ID).SettledAt)

	// A second shipped event appends to the log without settling again.
	_, err = s.service.AdvanceSupplyChain(s.farmer.ID, order.ID, &AdvanceShipmentRequest{
		Status: models.ShipmentStatusShipped,
	})
	s.Require().NoError(err)

	s.Require().NoError(s.db.First(&farmer, "id = ?", s.farmerProf.ID).Error)
	s.Equal(100.0, farmer.Earnings)
	s.Require().NoError(s.db.First(&buyer, "id = ?", s.buyerProf.ID).Error)
	s.Equal(100.0, buyer.AmountSpent)
}

func (s *OrderServiceTestSuite) TestCancelledShipmentEventCancelsOrderAndRestores() {
	order := s.placeOrder(40)
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)

	_, err = s.service.AdvanceSupplyChain(s.farmer.ID, order.ID, &AdvanceShipmentRequest{
		Status: models.ShipmentStatusCancelled,
		Notes:  "Crop damaged in storage",
	})
	s.Require().NoError(err)

	s.Equal(models.OrderStatusCancelled, reloadOrder(s.T(), s.db, order.ID).Status)
	s.Equal(100.0, reloadCrop(s.T(), s.db, s.crop.ID).Quantity)
}

func (s *OrderServiceTestSuite) TestCancelledShipmentEventRejectedOnCompletedOrder() {
	order := s.placeOrder(10)
	_, err := s.service.ConfirmOrder(s.farmer.ID, order.ID, "")
	s.Require().NoError(err)
	_, err = s.service.CompleteOrder(s.buyer.ID, order.ID)
	s.Require().NoError(err)

	_, err = s.service.AdvanceSupplyChain(s.farmer.ID, order.ID, &AdvanceShipmentRequest{
		Status: models.ShipmentStatusCancelled,
		Notes:  "Too late, goods delivered",
	})
	s.ErrorIs(err, ErrOrderNotCancellable)

	// Completed stays terminal: no quantity back, no cancelled event recorded.
	s.Equal(models.OrderStatusCompleted, reloadOrder(s.T(), s.db, order.ID).Status)
	s.Equal(90.0, reloadCrop(s.T(), s.db, s.crop.ID).Quantity)

	events, err := s.service.GetSupplyChain(s.buyer.ID, order.ID)
	s.Require().NoError(err)
	s.Len(events, 1) // processing only
}

func (s *OrderServiceTestSuite) TestGetOrderVisibility() {
	order := s.placeOrder(5)

	_, err := s.service.GetOrder(s.buyer.ID, order.ID)
	s.NoError(err)
	_, err = s.service.GetOrder(s.farmer.ID, order.ID)
	s.NoError(err)

	stranger, _ := createTestFarmer(s.T(), s.db)
	_, err = s.service.GetOrder(stranger.ID, order.ID)
	s.ErrorIs(err, ErrUnauthorized)
}

func (s *OrderServiceTestSuite) TestListOrdersByRole() {
	s.placeOrder(5)
	s.placeOrder(10)

	buyerOrders, total, err := s.service.GetBuyerOrders(s.buyer.ID, "", defaultPageParams())
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(buyerOrders, 2)

	farmerOrders, total, err := s.service.GetFarmerOrders(s.farmer.ID, models.OrderStatusPending, defaultPageParams())
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(farmerOrders, 2)

	_, total, err = s.service.GetFarmerOrders(s.farmer.ID, models.OrderStatusConfirmed, defaultPageParams())
	s.Require().NoError(err)
	s.Zero(total)
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
