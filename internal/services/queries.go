package services

import (
	"fmt"
	"time"

	"github.com/freshconnect/logistics-backend/internal/models"
)

// Earnings period filters
const (
	PeriodAll   = "all"
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// GetDriverAssignments returns a driver's assignments, optionally filtered by status
func (s *DeliveryService) GetDriverAssignments(driverID, status string) ([]*models.Assignment, error) {
	if _, err := s.store.GetDriver(driverID); err != nil {
		return nil, err
	}
	return s.store.GetAssignmentsByDriver(driverID, status)
}

// AssignmentDetail bundles an assignment with its tracking timeline
type AssignmentDetail struct {
	Assignment *models.Assignment      `json:"assignment"`
	Events     []*models.TrackingEvent `json:"events"`
}

// GetAssignmentDetail returns one assignment with its tracking events
func (s *DeliveryService) GetAssignmentDetail(assignmentID string) (*AssignmentDetail, error) {
	assignment, err := s.store.GetAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	events, err := s.store.GetTrackingEvents(assignmentID)
	if err != nil {
		return nil, err
	}
	return &AssignmentDetail{Assignment: assignment, Events: events}, nil
}

// GetOrderAssignment looks up the assignment for an order ID, so callers
// holding only the order reference can track its delivery
func (s *DeliveryService) GetOrderAssignment(orderID string) (*AssignmentDetail, error) {
	assignment, err := s.store.GetAssignmentByOrder(orderID)
	if err != nil {
		return nil, err
	}
	return s.GetAssignmentDetail(assignment.ID)
}

// GetDriverEarnings returns a driver's earnings within the given period
// (today, week, month, or all)
func (s *DeliveryService) GetDriverEarnings(driverID, period string) ([]*models.Earning, error) {
	if _, err := s.store.GetDriver(driverID); err != nil {
		return nil, err
	}

	var since time.Time
	now := time.Now()
	switch period {
	case PeriodToday:
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case PeriodWeek:
		since = now.AddDate(0, 0, -7)
	case PeriodMonth:
		since = now.AddDate(0, 0, -30)
	case PeriodAll, "":
		// zero time, no filter
	default:
		return nil, fmt.Errorf("unknown earnings period %q", period)
	}

	return s.store.GetEarningsByDriver(driverID, since)
}

// EarningsSummary aggregates a list of earnings for dashboard display
type EarningsSummary struct {
	Count          int     `json:"count"`
	TotalBase      float64 `json:"total_base"`
	TotalBonus     float64 `json:"total_bonus"`
	TotalDeduction float64 `json:"total_deduction"`
	TotalEarning   float64 `json:"total_earning"`
}

// SummarizeEarnings totals up an earnings list
func SummarizeEarnings(earnings []*models.Earning) *EarningsSummary {
	summary := &EarningsSummary{Count: len(earnings)}
	for _, e := range earnings {
		summary.TotalBase += e.BaseEarning
		summary.TotalBonus += e.OnTimeBonus
		summary.TotalDeduction += e.LateDeliveryDeduction
		summary.TotalEarning += e.TotalEarning
	}
	return summary
}

// GetDriverNotifications returns a driver's notifications
func (s *DeliveryService) GetDriverNotifications(driverID string, unreadOnly bool) ([]*models.Notification, error) {
	if _, err := s.store.GetDriver(driverID); err != nil {
		return nil, err
	}
	return s.store.GetNotifications(models.RecipientDriver, driverID, unreadOnly)
}

// MarkNotificationRead marks one of the driver's notifications as read
func (s *DeliveryService) MarkNotificationRead(notificationID, driverID string) error {
	return s.store.MarkNotificationRead(notificationID, driverID)
}
