package models

import "time"

// Tracking event types
const (
	EventAssignment   = "assignment"
	EventAccepted     = "accepted"
	EventPickup       = "pickup_at_vendor"
	EventInTransit    = "in_transit"
	EventNearDelivery = "near_delivery"
	EventDelivered    = "delivered"
	EventCancelled    = "cancelled"
)

// TrackingEvent records one step of a delivery for the tracking timeline
type TrackingEvent struct {
	ID           string `json:"id" gorm:"primaryKey"`
	AssignmentID string `json:"assignment_id" gorm:"index"`
	DriverID     string `json:"driver_id"`
	OrderID      string `json:"order_id" gorm:"index"`

	EventType   string `json:"event_type"`
	Description string `json:"description"`
	Location    string `json:"location"`

	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

// Notification recipient types
const (
	RecipientDriver   = "driver"
	RecipientRetailer = "retailer"
)

// Notification types
const (
	NotificationNewAssignment    = "new_delivery_assignment"
	NotificationDriverArriving   = "driver_arriving"
	NotificationDeliveryComplete = "delivery_completed_earnings"
	NotificationCancelled        = "delivery_cancelled"
)

// Notification is a persisted message for a driver or retailer
type Notification struct {
	ID           string `json:"id" gorm:"primaryKey"`
	OrderID      string `json:"order_id" gorm:"index"`
	AssignmentID string `json:"assignment_id"`

	RecipientType string `json:"recipient_type"`
	RecipientID   string `json:"recipient_id" gorm:"index"`

	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`

	IsRead bool       `json:"is_read" gorm:"index;default:false"`
	ReadAt *time.Time `json:"read_at"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
