package handler

import (
	"log/slog"
	"net/http"

	"pharmahub/internal/delivery/http/middleware"
	"pharmahub/internal/delivery/http/response"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// PharmacyHandlerParams holds dependencies for PharmacyHandler, injected by Fx.
type PharmacyHandlerParams struct {
	fx.In

	PharmacyUC usecase.PharmacyUsecase
	Logger     *slog.Logger
}

// PharmacyHandler holds dependencies for pharmacy registration and the admin
// verification queue.
type PharmacyHandler struct {
	pharmacyUC usecase.PharmacyUsecase
	logger     *slog.Logger
}

// NewPharmacyHandler is the constructor for PharmacyHandler.
func NewPharmacyHandler(params PharmacyHandlerParams) *PharmacyHandler {
	return &PharmacyHandler{
		pharmacyUC: params.PharmacyUC,
		logger:     params.Logger,
	}
}

// SubmitPharmacyRequest is the request body for registering a pharmacy on an
// existing customer account.
type SubmitPharmacyRequest struct {
	Name          string `json:"name" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required"`
	RegulatoryID  string `json:"regulatory_id,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
}

// ReviewPharmacyRequest is an admin's verdict on a pending pharmacy.
type ReviewPharmacyRequest struct {
	Approve bool `json:"approve"`
}

// SubmitPharmacy registers a pharmacy for the calling user. The new pharmacy
// always starts pending and must pass admin review before it can sell.
func (h *PharmacyHandler) SubmitPharmacy(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req SubmitPharmacyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid pharmacy input")
	}
	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	pharmacy, err := h.pharmacyUC.SubmitPharmacy(c.Request().Context(), userID, usecase.SubmitPharmacyInput{
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
		RegulatoryID:  req.RegulatoryID,
		Phone:         req.Phone,
		Address:       req.Address,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newPharmacyResponse(pharmacy), "Pharmacy submitted for review")
}

// GetMyPharmacy returns the pharmacy owned by the calling user.
func (h *PharmacyHandler) GetMyPharmacy(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	pharmacy, err := h.pharmacyUC.GetMyPharmacy(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newPharmacyResponse(pharmacy), "Pharmacy retrieved successfully")
}

// GetPharmacy returns one pharmacy by ID.
func (h *PharmacyHandler) GetPharmacy(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid pharmacy ID")
	}

	pharmacy, err := h.pharmacyUC.GetPharmacy(c.Request().Context(), pharmacyID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newPharmacyResponse(pharmacy), "Pharmacy retrieved successfully")
}

// ListPendingPharmacies returns the admin review queue, newest first.
func (h *PharmacyHandler) ListPendingPharmacies(c echo.Context) error {
	pharmacies, err := h.pharmacyUC.ListPendingPharmacies(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newPharmacyResponses(pharmacies), "Pending pharmacies retrieved successfully")
}

// ReviewPharmacy approves or rejects a pending pharmacy.
func (h *PharmacyHandler) ReviewPharmacy(c echo.Context) error {
	pharmacyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid pharmacy ID")
	}

	var req ReviewPharmacyRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid review input")
	}

	pharmacy, err := h.pharmacyUC.ReviewPharmacy(c.Request().Context(), usecase.ReviewPharmacyInput{
		PharmacyID: pharmacyID,
		Approve:    req.Approve,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newPharmacyResponse(pharmacy), "Pharmacy reviewed successfully")
}
