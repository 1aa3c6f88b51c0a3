package storage

import (
	"time"

	"github.com/freshconnect/logistics-backend/internal/models"
)

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations.
//
// The compound operations (ApplyAssignment, TransitionAssignment,
// CompleteDelivery, CancelAssignment) commit all of their writes atomically:
// the database store wraps them in a transaction, the memory store applies
// them inside one critical section after all preconditions pass. Status
// changes are conditional on the current status so two concurrent actions on
// the same assignment cannot both succeed, and driver load accounting is
// applied as increments/decrements against the stored record so concurrent
// actions on different assignments of one driver never erase each other.
type Store interface {
	// Driver operations
	CreateDriver(reg *models.DriverRegistration) (*models.Driver, error)
	GetDriver(driverID string) (*models.Driver, error)
	GetDriverByPhone(phone string) (*models.Driver, error)
	GetAllDrivers() ([]*models.Driver, error)
	GetEligibleDrivers() ([]*models.Driver, error)
	UpdateDriverStatus(driverID, status string) error

	// Area pricing operations
	GetAreaPricing(areaName string) (*models.AreaPricing, error)
	ListAreaPricing() ([]*models.AreaPricing, error)
	UpsertAreaPricing(area *models.AreaPricing) error

	// Assignment operations
	GetAssignment(id string) (*models.Assignment, error)
	GetAssignmentByOrder(orderID string) (*models.Assignment, error)
	GetAssignmentsByDriver(driverID, status string) ([]*models.Assignment, error)
	CountAssignmentsByStatus(status string) (int64, error)

	// ApplyAssignment creates the assignment and reserves its weight on the
	// assigned driver (load increment, available -> on_delivery flip) in one
	// atomic write. Fails with models.ErrInsufficientCapacity when the
	// stored driver can no longer take the order.
	ApplyAssignment(assignment *models.Assignment) error

	// TransitionAssignment persists the updated assignment iff the stored
	// status is one of fromStatuses. Returns models.ErrInvalidState when
	// the guard fails.
	TransitionAssignment(assignment *models.Assignment, fromStatuses []string) error

	// CompleteDelivery commits the delivered assignment and the earning,
	// releases the assignment weight from the driver's load, and bumps the
	// driver's delivery counters, all guarded on the stored status.
	CompleteDelivery(assignment *models.Assignment, earning *models.Earning) error

	// CancelAssignment commits the cancelled assignment and releases the
	// reserved weight from the driver, guarded like TransitionAssignment.
	CancelAssignment(assignment *models.Assignment) error

	// Earning operations
	GetEarning(assignmentID string) (*models.Earning, error)
	GetEarningsByDriver(driverID string, since time.Time) ([]*models.Earning, error)

	// Tracking & notifications
	CreateTrackingEvent(event *models.TrackingEvent) error
	GetTrackingEvents(assignmentID string) ([]*models.TrackingEvent, error)
	CreateNotification(n *models.Notification) error
	GetNotifications(recipientType, recipientID string, unreadOnly bool) ([]*models.Notification, error)
	MarkNotificationRead(id, recipientID string) error
}
