package models

import "errors"

// Error taxonomy shared by storage and services. Handlers map these to
// HTTP status codes with errors.Is.
var (
	ErrDriverNotFound       = errors.New("driver not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAreaNotFound         = errors.New("area pricing not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrUnauthorized = errors.New("driver does not own this assignment")
	ErrInvalidState = errors.New("action not allowed in current assignment status")

	ErrNoDriversAvailable      = errors.New("no drivers available at this time")
	ErrInsufficientCapacity    = errors.New("no drivers with sufficient capacity")
	ErrOrderAlreadyAssigned    = errors.New("order already has an active assignment")
	ErrDriverAlreadyRegistered = errors.New("driver already registered")
)
