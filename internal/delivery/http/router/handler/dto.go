package handler

import (
	"time"

	"pharmahub/internal/domain/entity"

	"github.com/google/uuid"
)

// Response models shared across handlers. Entities are mapped explicitly so
// the wire format stays stable when the domain structs change.

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Roles:     user.Roles.ToStrings(),
		CreatedAt: user.CreatedAt,
	}
}

// ProfileResponse is the personal-details view returned to the account owner.
type ProfileResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Roles     []string   `json:"roles"`
	FullName  string     `json:"full_name,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Address   string     `json:"address,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newProfileResponse(user *entity.User) *ProfileResponse {
	resp := &ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Roles:     user.Roles.ToStrings(),
		CreatedAt: user.CreatedAt,
	}
	if user.Profile != nil {
		resp.FullName = user.Profile.FullName
		resp.Phone = user.Profile.Phone
		resp.Address = user.Profile.Address
		resp.BirthDate = user.Profile.BirthDate
	}

	return resp
}

// PharmacyResponse is the public view of a pharmacy.
type PharmacyResponse struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerUserID        uuid.UUID  `json:"owner_user_id"`
	Name               string     `json:"name"`
	LicenseNumber      string     `json:"license_number"`
	RegulatoryID       string     `json:"regulatory_id,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Address            string     `json:"address,omitempty"`
	VerificationStatus string     `json:"verification_status"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func newPharmacyResponse(pharmacy *entity.Pharmacy) *PharmacyResponse {
	return &PharmacyResponse{
		ID:                 pharmacy.ID,
		OwnerUserID:        pharmacy.OwnerUserID,
		Name:               pharmacy.Name,
		LicenseNumber:      pharmacy.LicenseNumber,
		RegulatoryID:       pharmacy.RegulatoryID,
		Phone:              pharmacy.Phone,
		Address:            pharmacy.Address,
		VerificationStatus: pharmacy.VerificationStatus.String(),
		VerifiedAt:         pharmacy.VerifiedAt,
		CreatedAt:          pharmacy.CreatedAt,
	}
}

func newPharmacyResponses(pharmacies []*entity.Pharmacy) []*PharmacyResponse {
	resp := make([]*PharmacyResponse, 0, len(pharmacies))
	for _, pharmacy := range pharmacies {
		resp = append(resp, newPharmacyResponse(pharmacy))
	}

	return resp
}

// ProductResponse is the catalog view of a product.
type ProductResponse struct {
	ID            uuid.UUID  `json:"id"`
	PharmacyID    uuid.UUID  `json:"pharmacy_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Category      string     `json:"category"`
	PriceCents    int64      `json:"price_cents"`
	StockQuantity int        `json:"stock_quantity"`
	IsActive      bool       `json:"is_active"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func newProductResponse(product *entity.Product) *ProductResponse {
	return &ProductResponse{
		ID:            product.ID,
		PharmacyID:    product.PharmacyID,
		Name:          product.Name,
		Description:   product.Description,
		Category:      product.Category.String(),
		PriceCents:    product.PriceCents,
		StockQuantity: product.StockQuantity,
		IsActive:      product.IsActive,
		ExpiryDate:    product.ExpiryDate,
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}

func newProductResponses(products []*entity.Product) []*ProductResponse {
	resp := make([]*ProductResponse, 0, len(products))
	for _, product := range products {
		resp = append(resp, newProductResponse(product))
	}

	return resp
}

// OrderItemResponse is one immutable order line with its price snapshot.
type OrderItemResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	ProductName    string    `json:"product_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	TotalCents     int64     `json:"total_cents"`
}

// OrderResponse is the full view of an order with its lines.
type OrderResponse struct {
	ID              uuid.UUID            `json:"id"`
	CustomerID      uuid.UUID            `json:"customer_id"`
	PharmacyID      uuid.UUID            `json:"pharmacy_id"`
	Status          string               `json:"status"`
	TotalCents      int64                `json:"total_cents"`
	DeliveryAddress string               `json:"delivery_address"`
	Notes           string               `json:"notes,omitempty"`
	Items           []*OrderItemResponse `json:"items"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func newOrderResponse(order *entity.Order) *OrderResponse {
	items := make([]*OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, &OrderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}

	return &OrderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		PharmacyID:      order.PharmacyID,
		Status:          order.Status.String(),
		TotalCents:      order.TotalCents,
		DeliveryAddress: order.DeliveryAddress,
		Notes:           order.Notes,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func newOrderResponses(orders []*entity.Order) []*OrderResponse {
	resp := make([]*OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, newOrderResponse(order))
	}

	return resp
}

// DeliveryResponse is the full view of a delivery record.
type DeliveryResponse struct {
	ID                  uuid.UUID  `json:"id"`
	OrderID             uuid.UUID  `json:"order_id"`
	Status              string     `json:"status"`
	AgentID             *uuid.UUID `json:"agent_id,omitempty"`
	ConfirmedByAdmin    bool       `json:"confirmed_by_admin"`
	ConfirmedByPharmacy bool       `json:"confirmed_by_pharmacy"`
	DeliveredAt         *time.Time `json:"delivered_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func newDeliveryResponse(delivery *entity.Delivery) *DeliveryResponse {
	return &DeliveryResponse{
		ID:                  delivery.ID,
		OrderID:             delivery.OrderID,
		Status:              delivery.Status.String(),
		AgentID:             delivery.AgentID,
		ConfirmedByAdmin:    delivery.ConfirmedByAdmin,
		ConfirmedByPharmacy: delivery.ConfirmedByPharmacy,
		DeliveredAt:         delivery.DeliveredAt,
		CreatedAt:           delivery.CreatedAt,
		UpdatedAt:           delivery.UpdatedAt,
	}
}

func newDeliveryResponses(deliveries []*entity.Delivery) []*DeliveryResponse {
	resp := make([]*DeliveryResponse, 0, len(deliveries))
	for _, delivery := range deliveries {
		resp = append(resp, newDeliveryResponse(delivery))
	}

	return resp
}
