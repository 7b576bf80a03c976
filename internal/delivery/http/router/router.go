// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"pharmahub/internal/delivery/http/middleware"
	"pharmahub/internal/delivery/http/router/handler"
	"pharmahub/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler     *handler.UserHandler
	ProfileHandler  *handler.ProfileHandler
	PharmacyHandler *handler.PharmacyHandler
	CatalogHandler  *handler.CatalogHandler
	OrderHandler    *handler.OrderHandler
	DeliveryHandler *handler.DeliveryHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler     *handler.UserHandler
	profileHandler  *handler.ProfileHandler
	pharmacyHandler *handler.PharmacyHandler
	catalogHandler  *handler.CatalogHandler
	orderHandler    *handler.OrderHandler
	deliveryHandler *handler.DeliveryHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:     params.UserHandler,
		profileHandler:  params.ProfileHandler,
		pharmacyHandler: params.PharmacyHandler,
		catalogHandler:  params.CatalogHandler,
		orderHandler:    params.OrderHandler,
		deliveryHandler: params.DeliveryHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register/customer", r.userHandler.RegisterCustomer)
		authGroup.POST("/register/pharmacy", r.userHandler.RegisterPharmacy)
		authGroup.POST("/login", r.userHandler.Login)
		authGroup.POST("/refresh", r.userHandler.RefreshToken)
		authGroup.POST("/logout", r.userHandler.Logout)
	}

	// Public catalog routes, no authentication required
	catalogGroup := e.Group("/catalog")
	{
		catalogGroup.GET("/products", r.catalogHandler.BrowseCatalog)
		catalogGroup.GET("/products/:id", r.catalogHandler.GetProduct)
		catalogGroup.GET("/pharmacies/:id", r.pharmacyHandler.GetPharmacy)
	}

	// Customer routes that require authentication
	userGroup := e.Group("/user")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/profile", r.profileHandler.GetProfile)
		userGroup.PUT("/profile", r.profileHandler.UpdateProfile)
		userGroup.POST("/checkout", r.orderHandler.Checkout)
		userGroup.GET("/orders", r.orderHandler.ListMyOrders)
		userGroup.GET("/orders/:id", r.orderHandler.GetOrder)
		userGroup.GET("/orders/:id/delivery", r.deliveryHandler.GetDeliveryByOrder)
		userGroup.POST("/pharmacy", r.pharmacyHandler.SubmitPharmacy)
	}

	// Pharmacy routes that require the pharmacy role
	pharmacyGroup := e.Group("/pharmacy")
	pharmacyGroup.Use(r.authMiddleware.Authenticate)
	pharmacyGroup.Use(r.authMiddleware.RequireRole(entity.RolePharmacy.String()))
	{
		pharmacyGroup.GET("/me", r.pharmacyHandler.GetMyPharmacy)
		pharmacyGroup.GET("/products", r.catalogHandler.ListMyProducts)
		pharmacyGroup.POST("/products", r.catalogHandler.CreateProduct)
		pharmacyGroup.PUT("/products/:id", r.catalogHandler.UpdateProduct)
		pharmacyGroup.DELETE("/products/:id", r.catalogHandler.DeleteProduct)
		pharmacyGroup.GET("/orders", r.orderHandler.ListPharmacyOrders)
		pharmacyGroup.GET("/orders/:id", r.orderHandler.GetOrder)
		pharmacyGroup.PATCH("/orders/:id/status", r.orderHandler.UpdateOrderStatusAsPharmacy)
		pharmacyGroup.POST("/deliveries/:id/confirm", r.deliveryHandler.ConfirmByPharmacy)
	}

	// Delivery agent routes that require the delivery_agent role
	agentGroup := e.Group("/agent")
	agentGroup.Use(r.authMiddleware.Authenticate)
	agentGroup.Use(r.authMiddleware.RequireRole(entity.RoleDeliveryAgent.String()))
	{
		agentGroup.GET("/deliveries", r.deliveryHandler.ListMyDeliveries)
		agentGroup.GET("/deliveries/:id", r.deliveryHandler.GetDelivery)
		agentGroup.PATCH("/deliveries/:id/advance", r.deliveryHandler.AdvanceDelivery)
		agentGroup.GET("/deliveries/:id/qr", r.deliveryHandler.HandoffQR)
	}

	// Admin routes that require the admin role
	adminGroup := e.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin.String()))
	{
		adminGroup.GET("/pharmacies/pending", r.pharmacyHandler.ListPendingPharmacies)
		adminGroup.POST("/pharmacies/:id/review", r.pharmacyHandler.ReviewPharmacy)
		adminGroup.GET("/orders", r.orderHandler.ListAllOrders)
		adminGroup.GET("/orders/:id", r.orderHandler.GetOrder)
		adminGroup.PATCH("/orders/:id/status", r.orderHandler.UpdateOrderStatusAsAdmin)
		adminGroup.POST("/deliveries", r.deliveryHandler.CreateDelivery)
		adminGroup.GET("/deliveries/:id", r.deliveryHandler.GetDelivery)
		adminGroup.POST("/deliveries/:id/assign", r.deliveryHandler.AssignAgent)
		adminGroup.PATCH("/deliveries/:id/status", r.deliveryHandler.SetDeliveryStatus)
		adminGroup.POST("/deliveries/:id/confirm", r.deliveryHandler.ConfirmByAdmin)
	}
}
