package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/freshconnect/logistics-backend/internal/middleware"
	"github.com/freshconnect/logistics-backend/internal/models"
	"github.com/freshconnect/logistics-backend/internal/services"
)

// DeliveryHandler handles assignment lifecycle requests
type DeliveryHandler struct {
	service *services.DeliveryService
}

// NewDeliveryHandler creates a new delivery handler
func NewDeliveryHandler(service *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		service: service,
	}
}

// statusForError maps the service error taxonomy to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrDriverNotFound),
		errors.Is(err, models.ErrAssignmentNotFound),
		errors.Is(err, models.ErrAreaNotFound),
		errors.Is(err, models.ErrNotificationNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrOrderAlreadyAssigned),
		errors.Is(err, models.ErrNoDriversAvailable),
		errors.Is(err, models.ErrInsufficientCapacity):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func actionError(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

// AssignDriver matches an order to the best available driver
func (h *DeliveryHandler) AssignDriver(c *fiber.Ctx) error {
	var order models.Order

	if err := c.BodyParser(&order); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if order.OrderID == "" || order.WeightKg <= 0 || order.DeliveryArea == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Order ID, positive weight, and delivery area are required",
		})
	}

	assignment, err := h.service.AssignDriver(&order)
	if err != nil {
		return actionError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "Driver assigned successfully",
		"assignment": assignment,
	})
}

// GetAssignment retrieves an assignment with its tracking timeline
func (h *DeliveryHandler) GetAssignment(c *fiber.Ctx) error {
	id := c.Params("id")

	detail, err := h.service.GetAssignmentDetail(id)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Assignment not found",
		})
	}
	return c.JSON(detail)
}

// GetOrderAssignment retrieves the assignment for an order ID
func (h *DeliveryHandler) GetOrderAssignment(c *fiber.Ctx) error {
	detail, err := h.service.GetOrderAssignment(c.Params("orderId"))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "No assignment found for this order",
		})
	}
	return c.JSON(detail)
}

// Accept handles the driver accepting an assignment
func (h *DeliveryHandler) Accept(c *fiber.Ctx) error {
	assignment, err := h.service.Accept(c.Params("id"), middleware.DriverID(c))
	if err != nil {
		return actionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Assignment accepted successfully",
		"assignment": assignment,
	})
}

// Reject handles the driver rejecting an assignment
func (h *DeliveryHandler) Reject(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	// Reason is optional; ignore body parse errors for an empty body
	_ = c.BodyParser(&req)

	assignment, err := h.service.Reject(c.Params("id"), middleware.DriverID(c), req.Reason)
	if err != nil {
		return actionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Assignment rejected: " + assignment.CancellationReason,
		"assignment": assignment,
	})
}

// MarkPickup marks the order as picked up from the vendor
func (h *DeliveryHandler) MarkPickup(c *fiber.Ctx) error {
	assignment, err := h.service.MarkPickup(c.Params("id"), middleware.DriverID(c))
	if err != nil {
		return actionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Pickup marked successfully",
		"assignment": assignment,
	})
}

// MarkInTransit marks the order as in transit
func (h *DeliveryHandler) MarkInTransit(c *fiber.Ctx) error {
	assignment, err := h.service.MarkInTransit(c.Params("id"), middleware.DriverID(c))
	if err != nil {
		return actionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Status updated to in transit",
		"assignment": assignment,
	})
}

// NearDelivery notifies the retailer that the driver is arriving soon
func (h *DeliveryHandler) NearDelivery(c *fiber.Ctx) error {
	_, err := h.service.MarkNearDelivery(c.Params("id"), middleware.DriverID(c))
	if err != nil {
		return actionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Retailer notified",
	})
}

// MarkDelivery completes the delivery and returns the computed earning
func (h *DeliveryHandler) MarkDelivery(c *fiber.Ctx) error {
	assignment, earning, err := h.service.MarkDelivery(c.Params("id"), middleware.DriverID(c))
	if err != nil {
		return actionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Delivery marked successfully",
		"assignment": assignment,
		"earning":    earning,
	})
}

// ListAssignments returns the authenticated driver's assignments
func (h *DeliveryHandler) ListAssignments(c *fiber.Ctx) error {
	assignments, err := h.service.GetDriverAssignments(middleware.DriverID(c), c.Query("status"))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Failed to retrieve assignments",
		})
	}

	return c.JSON(fiber.Map{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

// ListEarnings returns the authenticated driver's earnings for a period
func (h *DeliveryHandler) ListEarnings(c *fiber.Ctx) error {
	period := c.Query("period", services.PeriodAll)

	earnings, err := h.service.GetDriverEarnings(middleware.DriverID(c), period)
	if err != nil {
		if errors.Is(err, models.ErrDriverNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Driver not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"earnings": earnings,
		"summary":  services.SummarizeEarnings(earnings),
		"period":   period,
	})
}

// ListNotifications returns the authenticated driver's notifications
func (h *DeliveryHandler) ListNotifications(c *fiber.Ctx) error {
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.service.GetDriverNotifications(middleware.DriverID(c), unreadOnly)
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Failed to retrieve notifications",
		})
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkNotificationRead marks one notification as read
func (h *DeliveryHandler) MarkNotificationRead(c *fiber.Ctx) error {
	err := h.service.MarkNotificationRead(c.Params("id"), middleware.DriverID(c))
	if err != nil {
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"error": "Notification not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notification marked as read",
	})
}
