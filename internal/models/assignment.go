package models

import "time"

// Assignment status constants
const (
	AssignmentStatusAssigned  = "assigned"
	AssignmentStatusAccepted  = "accepted"
	AssignmentStatusPickedUp  = "picked_up"
	AssignmentStatusInTransit = "in_transit"
	AssignmentStatusDelivered = "delivered"
	AssignmentStatusCancelled = "cancelled"
)

// Assignment represents a confirmed match between a driver and an order
type Assignment struct {
	ID         string `json:"id" gorm:"primaryKey"`
	OrderID    string `json:"order_id" gorm:"uniqueIndex"` // one active assignment per order
	DriverID   string `json:"driver_id" gorm:"index"`
	RetailerID string `json:"retailer_id"`

	// Status tracking
	Status string `json:"status" gorm:"index"`

	// Scheduling
	AssignedAt        time.Time  `json:"assigned_at"`
	AcceptedAt        *time.Time `json:"accepted_at"`
	ScheduledPickup   time.Time  `json:"scheduled_pickup"`
	EstimatedDelivery time.Time  `json:"estimated_delivery"`
	ActualPickup      *time.Time `json:"actual_pickup"`
	ActualDelivery    *time.Time `json:"actual_delivery"`

	// Locations
	PickupLocation   string `json:"pickup_location"`
	DeliveryLocation string `json:"delivery_location"`
	DeliveryArea     string `json:"delivery_area"`

	// Load
	WeightAssignedKg float64 `json:"weight_assigned_kg"`

	// Money
	DeliveryCost  float64 `json:"delivery_cost"`
	DriverEarning float64 `json:"driver_earning"`

	CancellationReason string `json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// assignmentTransitions defines the forward progression of the lifecycle.
// Cancellation is handled separately via CancellableFrom.
var assignmentTransitions = map[string][]string{
	AssignmentStatusAssigned:  {AssignmentStatusAccepted},
	AssignmentStatusAccepted:  {AssignmentStatusPickedUp},
	AssignmentStatusPickedUp:  {AssignmentStatusInTransit, AssignmentStatusDelivered},
	AssignmentStatusInTransit: {AssignmentStatusDelivered},
}

// CanTransition reports whether moving from -> to is a valid forward step
func CanTransition(from, to string) bool {
	for _, next := range assignmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CancellableFrom lists the statuses an assignment may be cancelled from
func CancellableFrom() []string {
	return []string{AssignmentStatusAssigned, AssignmentStatusAccepted, AssignmentStatusPickedUp}
}

// IsTerminal reports whether the assignment reached a final state
func (a *Assignment) IsTerminal() bool {
	return a.Status == AssignmentStatusDelivered || a.Status == AssignmentStatusCancelled
}

// DelayMinutes returns how late the delivery was (negative when early).
// Zero until the delivery actually happened.
func (a *Assignment) DelayMinutes() float64 {
	if a.ActualDelivery == nil || a.EstimatedDelivery.IsZero() {
		return 0
	}
	return a.ActualDelivery.Sub(a.EstimatedDelivery).Minutes()
}
