package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/freshconnect/logistics-backend/internal/models"
	"github.com/freshconnect/logistics-backend/internal/storage"
)

// AdminHandler handles admin operations
type AdminHandler struct {
	store storage.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store) *AdminHandler {
	return &AdminHandler{
		store: store,
	}
}

// ListAreas returns all area pricing rows
func (h *AdminHandler) ListAreas(c *fiber.Ctx) error {
	areas, err := h.store.ListAreaPricing()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch area pricing",
		})
	}

	return c.JSON(fiber.Map{
		"areas": areas,
		"count": len(areas),
	})
}

// UpsertArea creates or updates an area pricing row
func (h *AdminHandler) UpsertArea(c *fiber.Ctx) error {
	var area models.AreaPricing

	if err := c.BodyParser(&area); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if area.AreaName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Area name is required",
		})
	}
	if area.BaseRatePerKg <= 0 || area.AreaMultiplier <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Base rate and area multiplier must be positive",
		})
	}
	if area.DeliveryTimeMinutes <= 0 {
		area.DeliveryTimeMinutes = 45
	}
	area.IsActive = true

	if err := h.store.UpsertAreaPricing(&area); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save area pricing",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Area pricing saved successfully",
		"area":    area,
	})
}

// Overview returns roster and assignment counts for the admin dashboard
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	drivers, err := h.store.GetAllDrivers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch drivers",
		})
	}

	byStatus := make(map[string]int)
	var totalEarnings float64
	for _, d := range drivers {
		byStatus[d.Status]++
		totalEarnings += d.TotalEarnings
	}

	statuses := []string{
		models.AssignmentStatusAssigned,
		models.AssignmentStatusAccepted,
		models.AssignmentStatusPickedUp,
		models.AssignmentStatusInTransit,
		models.AssignmentStatusDelivered,
		models.AssignmentStatusCancelled,
	}
	assignments := make(map[string]int64)
	for _, status := range statuses {
		count, err := h.store.CountAssignmentsByStatus(status)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to count assignments",
			})
		}
		assignments[status] = count
	}

	return c.JSON(fiber.Map{
		"drivers": fiber.Map{
			"total":     len(drivers),
			"by_status": byStatus,
		},
		"assignments":           assignments,
		"total_driver_earnings": totalEarnings,
	})
}
