// internal/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Sanjanack/FarmConnect/internal/i18n"
	"github.com/Sanjanack/FarmConnect/internal/models"
	"github.com/Sanjanack/FarmConnect/internal/services"
	"github.com/Sanjanack/FarmConnect/internal/utils"
)

type OrderHandler struct {
	orderService *services.OrderService
}

func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// POST /orders (buyer)
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	order, err := h.orderService.PlaceOrder(userID, &req)
	if err != nil {
		respondServiceError(c, "crop", err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderPlaced),
		"order":   order,
	})
}

// GET /orders — role-aware listing
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	role, _ := utils.GetUserRoleFromContext(c)
	params := utils.GetPaginationParams(c)
	status := models.OrderStatus(c.Query("status"))

	var (
		orders []models.Order
		total  int64
		err    error
	)
	if role == string(models.UserRoleFarmer) {
		orders, total, err = h.orderService.GetFarmerOrders(userID, status, params)
	} else {
		orders, total, err = h.orderService.GetBuyerOrders(userID, status, params)
	}
	if err != nil {
		respondServiceError(c, "profile", err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(userID, orderID)
	if err != nil {
		respondServiceError(c, "order", err)
		return
	}

	utils.SuccessResponse(c, order)
}

// POST /orders/:id/confirm
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method,omitempty"`
	}
	// Body is optional, the payment method falls back to cash on delivery.
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderService.ConfirmOrder(userID, orderID, req.PaymentMethod)
	if err != nil {
		respondServiceError(c, "order", err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderConfirmed),
		"order":   order,
	})
}

// POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(userID, orderID)
	if err != nil {
		respondServiceError(c, "order", err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCancelled),
		"order":   order,
	})
}

// POST /orders/:id/complete (buyer)
func (h *OrderHandler) CompleteOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.CompleteOrder(userID, orderID)
	if err != nil {
		respondServiceError(c, "order", err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderCompleted),
		"order":   order,
	})
}

// GET /orders/:id/supply-chain
func (h *OrderHandler) GetSupplyChain(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	events, err := h.orderService.GetSupplyChain(userID, orderID)
	if err != nil {
		respondServiceError(c, "order", err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"order_id": orderID,
		"events":   events,
	})
}

// POST /orders/:id/supply-chain (farmer)
func (h *OrderHandler) AdvanceSupplyChain(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AdvanceShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	event, err := h.orderService.AdvanceSupplyChain(userID, orderID, &req)
	if err != nil {
		respondServiceError(c, "order", err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyShipmentAdvanced, string(req.Status)),
		"event":   event,
	})
}
