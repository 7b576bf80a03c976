package handler

import (
	"log/slog"
	"net/http"

	"pharmahub/internal/delivery/http/middleware"
	"pharmahub/internal/delivery/http/response"
	"pharmahub/internal/domain/entity"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// DeliveryHandlerParams holds dependencies for DeliveryHandler, injected by Fx.
type DeliveryHandlerParams struct {
	fx.In

	DeliveryUC usecase.DeliveryUsecase
	Logger     *slog.Logger
}

// DeliveryHandler holds dependencies for delivery tracking handlers.
type DeliveryHandler struct {
	deliveryUC usecase.DeliveryUsecase
	logger     *slog.Logger
}

// NewDeliveryHandler is the constructor for DeliveryHandler.
func NewDeliveryHandler(params DeliveryHandlerParams) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryUC: params.DeliveryUC,
		logger:     params.Logger,
	}
}

// CreateDeliveryRequest is the request body for arranging dispatch.
type CreateDeliveryRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// AssignAgentRequest is the request body for assigning a delivery agent.
type AssignAgentRequest struct {
	AgentUserID uuid.UUID `json:"agent_user_id" validate:"required"`
}

// DeliveryStatusRequest is the request body for a delivery status change.
type DeliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateDelivery arranges dispatch for an order. At most one delivery may
// exist per order.
func (h *DeliveryHandler) CreateDelivery(c echo.Context) error {
	var req CreateDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid delivery input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	delivery, err := h.deliveryUC.CreateDelivery(c.Request().Context(), req.OrderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newDeliveryResponse(delivery), "Delivery created successfully")
}

// AssignAgent assigns a delivery agent to a delivery. The target user must
// hold the delivery_agent role.
func (h *DeliveryHandler) AssignAgent(c echo.Context) error {
	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid delivery ID")
	}

	var req AssignAgentRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid assignment input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	delivery, err := h.deliveryUC.AssignAgent(c.Request().Context(), deliveryID, req.AgentUserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newDeliveryResponse(delivery), "Agent assigned successfully")
}

// GetDelivery returns one delivery record. Admins may read any delivery;
// agents only the ones assigned to them.
func (h *DeliveryHandler) GetDelivery(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	roles, ok := middleware.GetRoles(c)
	if !ok {
		return response.Forbidden(c, "PERMISSION_DENIED", "Permission denied: role information missing")
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid delivery ID")
	}

	delivery, err := h.deliveryUC.GetDelivery(c.Request().Context(), userID, roles, deliveryID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newDeliveryResponse(delivery), "Delivery retrieved successfully")
}

// GetDeliveryByOrder returns the delivery tracking an order, if any. The
// caller must own the order under the same rules as the order read itself.
func (h *DeliveryHandler) GetDeliveryByOrder(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}
	roles, ok := middleware.GetRoles(c)
	if !ok {
		return response.Forbidden(c, "PERMISSION_DENIED", "Permission denied: role information missing")
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid order ID")
	}

	delivery, err := h.deliveryUC.GetDeliveryByOrder(c.Request().Context(), userID, roles, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newDeliveryResponse(delivery), "Delivery retrieved successfully")
}

// ListMyDeliveries lists the deliveries assigned to the calling agent.
func (h *DeliveryHandler) ListMyDeliveries(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	deliveries, err := h.deliveryUC.ListMyDeliveries(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newDeliveryResponses(deliveries), "Deliveries retrieved successfully")
}

// AdvanceDelivery moves a delivery one step along its progression as the
// assigned agent.
func (h *DeliveryHandler) AdvanceDelivery(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid delivery ID")
	}

	var req DeliveryStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	delivery, err := h.deliveryUC.AdvanceDelivery(c.Request().Context(), userID, deliveryID, entity.DeliveryStatus(req.Status))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newDeliveryResponse(delivery), "Delivery advanced successfully")
}

// SetDeliveryStatus force-sets a delivery status with admin authority.
func (h *DeliveryHandler) SetDeliveryStatus(c echo.Context) error {
	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid delivery ID")
	}

	var req DeliveryStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	delivery, err := h.deliveryUC.SetDeliveryStatus(c.Request().Context(), deliveryID, entity.DeliveryStatus(req.Status))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newDeliveryResponse(delivery), "Delivery status updated successfully")
}

// ConfirmByAdmin records the admin's delivery confirmation. The flag is
// advisory and one-way.
func (h *DeliveryHandler) ConfirmByAdmin(c echo.Context) error {
	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid delivery ID")
	}

	delivery, err := h.deliveryUC.ConfirmByAdmin(c.Request().Context(), deliveryID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newDeliveryResponse(delivery), "Delivery confirmed successfully")
}

// ConfirmByPharmacy records the pharmacy's delivery confirmation. Only the
// owner of the order's pharmacy may call it.
func (h *DeliveryHandler) ConfirmByPharmacy(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid delivery ID")
	}

	delivery, err := h.deliveryUC.ConfirmByPharmacy(c.Request().Context(), userID, deliveryID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newDeliveryResponse(delivery), "Delivery confirmed successfully")
}

// HandoffQR returns the PNG QR code the agent presents at the pharmacy
// counter. Only the assigned agent may mint it.
func (h *DeliveryHandler) HandoffQR(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid delivery ID")
	}

	qrCode, err := h.deliveryUC.HandoffQR(c.Request().Context(), userID, deliveryID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", qrCode)
}
