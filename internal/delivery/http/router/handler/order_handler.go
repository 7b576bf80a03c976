package handler

import (
	"log/slog"
	"net/http"

	"pharmahub/internal/delivery/http/middleware"
	"pharmahub/internal/delivery/http/response"
	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// OrderHandlerParams holds dependencies for OrderHandler, injected by Fx.
type OrderHandlerParams struct {
	fx.In

	OrderUC usecase.OrderUsecase
	Logger  *slog.Logger
}

// OrderHandler holds dependencies for checkout and order lifecycle handlers.
type OrderHandler struct {
	orderUC usecase.OrderUsecase
	logger  *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler.
func NewOrderHandler(params OrderHandlerParams) *OrderHandler {
	return &OrderHandler{
		orderUC: params.OrderUC,
		logger:  params.Logger,
	}
}

// CheckoutItemRequest is one cart line. Prices are never accepted from the
// client; the live catalog price is snapshotted server-side.
type CheckoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest is the request body for placing orders from a cart.
type CheckoutRequest struct {
	Items           []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string                `json:"delivery_address" validate:"required"`
	Notes           string                `json:"notes,omitempty"`
}

// UpdateOrderStatusRequest is the request body for a status transition.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CheckoutPartitionResponse reports the outcome of one pharmacy partition.
type CheckoutPartitionResponse struct {
	PharmacyID uuid.UUID           `json:"pharmacy_id"`
	Order      *OrderResponse      `json:"order,omitempty"`
	Error      *response.ErrorInfo `json:"error,omitempty"`
}

// Checkout places one order per pharmacy in the cart. Partitions succeed or
// fail independently, so a mixed outcome returns 207 with per-pharmacy
// results instead of failing the whole cart.
func (h *OrderHandler) Checkout(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid checkout input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	items := make([]usecase.CheckoutItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.CheckoutItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	results, err := h.orderUC.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		Items:           items,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	partitions := make([]*CheckoutPartitionResponse, 0, len(results))
	failed := 0
	for _, result := range results {
		partition := &CheckoutPartitionResponse{PharmacyID: result.PharmacyID}
		if result.Err != nil {
			failed++
			partition.Error = checkoutErrorInfo(result.Err)
		} else {
			partition.Order = newOrderResponse(result.Order)
		}
		partitions = append(partitions, partition)
	}

	statusCode := http.StatusCreated
	if failed > 0 {
		statusCode = http.StatusMultiStatus
	}

	return response.Success(c, statusCode, partitions, "Checkout processed")
}

// checkoutErrorInfo maps a partition failure to a wire error. Unexpected
// failures are reported with a generic code so internals do not leak.
func checkoutErrorInfo(err error) *response.ErrorInfo {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return &response.ErrorInfo{
			Code:    appErr.ErrorCode(),
			Details: appErr.Details(),
		}
	}

	return &response.ErrorInfo{
		Code:    "CHECKOUT_FAILED",
		Details: "order could not be placed",
	}
}

// GetOrder returns one order, subject to the caller's role-based visibility.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	roles, ok := middleware.GetRoles(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Role information missing from token")
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid order ID")
	}

	order, err := h.orderUC.GetOrder(c.Request().Context(), userID, roles, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderResponse(order), "Order retrieved successfully")
}

// ListMyOrders lists the calling customer's orders, newest first.
func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orders, err := h.orderUC.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderResponses(orders), "Orders retrieved successfully")
}

// ListPharmacyOrders lists the orders against the calling owner's pharmacy.
func (h *OrderHandler) ListPharmacyOrders(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orders, err := h.orderUC.ListPharmacyOrders(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderResponses(orders), "Orders retrieved successfully")
}

// ListAllOrders lists every order in the system.
func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	orders, err := h.orderUC.ListAllOrders(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderResponses(orders), "Orders retrieved successfully")
}

// UpdateOrderStatusAsPharmacy applies a transition as the owning pharmacy,
// validated against the pharmacy transition table.
func (h *OrderHandler) UpdateOrderStatusAsPharmacy(c echo.Context) error {
	return h.updateOrderStatus(c, entity.RolePharmacy)
}

// UpdateOrderStatusAsAdmin applies a transition with admin authority, which
// may force any change between distinct statuses.
func (h *OrderHandler) UpdateOrderStatusAsAdmin(c echo.Context) error {
	return h.updateOrderStatus(c, entity.RoleAdmin)
}

func (h *OrderHandler) updateOrderStatus(c echo.Context, actor entity.Role) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid order ID")
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	order, err := h.orderUC.UpdateOrderStatus(c.Request().Context(), userID, actor, usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderStatus(req.Status),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderResponse(order), "Order status updated successfully")
}
