package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/freshconnect/logistics-backend/internal/middleware"
	"github.com/freshconnect/logistics-backend/internal/models"
	"github.com/freshconnect/logistics-backend/internal/storage"
)

// DriverHandler handles driver-related requests
type DriverHandler struct {
	store storage.Store
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(store storage.Store) *DriverHandler {
	return &DriverHandler{
		store: store,
	}
}

// Register handles driver registration
func (h *DriverHandler) Register(c *fiber.Ctx) error {
	var reg models.DriverRegistration

	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Basic validation
	if reg.Name == "" || reg.Phone == "" || reg.VehicleRegistration == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, phone, and vehicle registration are required",
		})
	}
	if reg.CapacityKg <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Vehicle capacity must be positive",
		})
	}

	driver, err := h.store.CreateDriver(&reg)
	if err != nil {
		if errors.Is(err, models.ErrDriverAlreadyRegistered) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Driver with this phone is already registered",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register driver",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Driver registered successfully",
		"driver":  driver,
	})
}

// Login issues a token for the driver identified by phone
func (h *DriverHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}

	if err := c.BodyParser(&req); err != nil || req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone is required",
		})
	}

	driver, err := h.store.GetDriverByPhone(req.Phone)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Driver not found",
		})
	}
	if !driver.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Driver account is deactivated",
		})
	}

	token, err := middleware.GenerateDriverToken(driver.DriverID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue token",
		})
	}

	return c.JSON(fiber.Map{
		"token":  token,
		"driver": driver,
	})
}

// GetDriver retrieves a driver profile with performance stats
func (h *DriverHandler) GetDriver(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Driver ID is required",
		})
	}

	driver, err := h.store.GetDriver(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Driver not found",
		})
	}

	return c.JSON(fiber.Map{
		"driver": driver,
		"stats":  models.StatsForDriver(driver),
	})
}

// UpdateStatus lets the authenticated driver go on/off duty or on break
func (h *DriverHandler) UpdateStatus(c *fiber.Ctx) error {
	driverID := middleware.DriverID(c)

	var req struct {
		Status string `json:"status"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Drivers may not put themselves on_delivery; that happens via assignment
	validStatuses := map[string]bool{
		models.DriverStatusOffDuty:   true,
		models.DriverStatusAvailable: true,
		models.DriverStatusOnBreak:   true,
	}
	if !validStatuses[req.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status value",
		})
	}

	if err := h.store.UpdateDriverStatus(driverID, req.Status); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Driver not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Driver status updated successfully",
	})
}
