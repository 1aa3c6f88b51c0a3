package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/freshconnect/logistics-backend/internal/handlers"
	"github.com/freshconnect/logistics-backend/internal/middleware"
	"github.com/freshconnect/logistics-backend/internal/services"
	"github.com/freshconnect/logistics-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, deliveryService *services.DeliveryService) {
	driverHandler := handlers.NewDriverHandler(store)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)
	adminHandler := handlers.NewAdminHandler(store)

	app.Get("/health", handlers.HealthCheck)

	// API routes
	api := app.Group("/api")

	// Driver routes
	drivers := api.Group("/drivers")
	drivers.Post("/register", driverHandler.Register)
	drivers.Post("/login", driverHandler.Login)
	drivers.Get("/:id", driverHandler.GetDriver)
	drivers.Put("/me/status", middleware.DriverAuth(), driverHandler.UpdateStatus)

	// Delivery assignment routes
	deliveries := api.Group("/deliveries")
	deliveries.Post("/assign", deliveryHandler.AssignDriver)
	deliveries.Get("/order/:orderId", deliveryHandler.GetOrderAssignment)
	deliveries.Get("/:id", deliveryHandler.GetAssignment)

	// Driver actions on their own assignments
	deliveries.Post("/:id/accept", middleware.DriverAuth(), deliveryHandler.Accept)
	deliveries.Post("/:id/reject", middleware.DriverAuth(), deliveryHandler.Reject)
	deliveries.Post("/:id/pickup", middleware.DriverAuth(), deliveryHandler.MarkPickup)
	deliveries.Post("/:id/transit", middleware.DriverAuth(), deliveryHandler.MarkInTransit)
	deliveries.Post("/:id/near", middleware.DriverAuth(), deliveryHandler.NearDelivery)
	deliveries.Post("/:id/deliver", middleware.DriverAuth(), deliveryHandler.MarkDelivery)

	// Driver read-side queries
	api.Get("/deliveries", middleware.DriverAuth(), deliveryHandler.ListAssignments)
	api.Get("/earnings", middleware.DriverAuth(), deliveryHandler.ListEarnings)
	api.Get("/notifications", middleware.DriverAuth(), deliveryHandler.ListNotifications)
	api.Put("/notifications/:id/read", middleware.DriverAuth(), deliveryHandler.MarkNotificationRead)

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin")
	admin.Get("/areas", adminHandler.ListAreas)
	admin.Post("/areas", adminHandler.UpsertArea)
	admin.Get("/overview", adminHandler.Overview)
}
