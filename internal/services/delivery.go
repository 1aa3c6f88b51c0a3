package services

import (
	"fmt"
	"log"
	"time"

	"github.com/freshconnect/logistics-backend/internal/models"
	"github.com/freshconnect/logistics-backend/internal/storage"
)

// Earnings adjustment rules
const (
	pickupLeadTime       = 15 * time.Minute
	onTimeBonusRate      = 0.10 // 10% of base when delivered at or before estimate
	lateFeePerHour       = 20.0
	lateDeductionCapRate = 0.20 // deduction never exceeds 20% of base
	lateGraceMinutes     = 15.0
)

// DeliveryService orchestrates driver matching, the assignment lifecycle,
// and post-delivery earnings
type DeliveryService struct {
	store storage.Store
	sms   *TwilioService // optional, nil when Twilio is not configured
}

// NewDeliveryService creates a new delivery service
func NewDeliveryService(store storage.Store, sms *TwilioService) *DeliveryService {
	return &DeliveryService{
		store: store,
		sms:   sms,
	}
}

// AssignDriver finds the best driver for the order, reserves their capacity,
// and creates the assignment. All writes land atomically; the tracking event
// and driver notification are best-effort follow-ups.
func (s *DeliveryService) AssignDriver(order *models.Order) (*models.Assignment, error) {
	driver, score, err := s.FindBestDriver(order.WeightKg, order.DeliveryArea)
	if err != nil {
		return nil, err
	}

	cost := s.CalculateDeliveryCost(order.WeightKg, order.DeliveryArea)

	now := time.Now()
	scheduledPickup := now.Add(pickupLeadTime)
	assignment := &models.Assignment{
		OrderID:           order.OrderID,
		DriverID:          driver.DriverID,
		RetailerID:        order.RetailerID,
		Status:            models.AssignmentStatusAssigned,
		AssignedAt:        now,
		ScheduledPickup:   scheduledPickup,
		EstimatedDelivery: scheduledPickup.Add(time.Duration(cost.DeliveryTimeMinutes) * time.Minute),
		PickupLocation:    order.PickupLocation,
		DeliveryLocation:  order.DeliveryAddress,
		DeliveryArea:      order.DeliveryArea,
		WeightAssignedKg:  order.WeightKg,
		DeliveryCost:      cost.TotalCost,
		DriverEarning:     order.WeightKg * models.BaseRatePerKg,
	}

	// The store reserves the driver's capacity atomically
	if err := s.store.ApplyAssignment(assignment); err != nil {
		return nil, err
	}

	log.Printf("Driver %s assigned to order %s (score %.1f/100)", driver.DriverID, order.OrderID, score)

	s.recordEvent(assignment, models.EventAssignment,
		fmt.Sprintf("Order assigned to driver %s", driver.Name))
	s.notifyDriver(driver, assignment, models.NotificationNewAssignment,
		"New Delivery Assignment",
		fmt.Sprintf("New order to deliver %.1fkg to %s", order.WeightKg, order.DeliveryArea))

	return assignment, nil
}

// Accept lets the assigned driver take the delivery
func (s *DeliveryService) Accept(assignmentID, driverID string) (*models.Assignment, error) {
	assignment, driver, err := s.loadOwned(assignmentID, driverID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(assignment.Status, models.AssignmentStatusAccepted) {
		return nil, models.ErrInvalidState
	}

	now := time.Now()
	assignment.Status = models.AssignmentStatusAccepted
	assignment.AcceptedAt = &now

	from := []string{models.AssignmentStatusAssigned}
	if err := s.store.TransitionAssignment(assignment, from); err != nil {
		return nil, err
	}
	if err := s.store.UpdateDriverStatus(driver.DriverID, models.DriverStatusOnDelivery); err != nil {
		return nil, err
	}

	s.recordEvent(assignment, models.EventAccepted, "Driver accepted the delivery")
	return assignment, nil
}

// MarkPickup records that the driver collected the order from the vendor
func (s *DeliveryService) MarkPickup(assignmentID, driverID string) (*models.Assignment, error) {
	assignment, _, err := s.loadOwned(assignmentID, driverID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(assignment.Status, models.AssignmentStatusPickedUp) {
		return nil, models.ErrInvalidState
	}

	now := time.Now()
	assignment.Status = models.AssignmentStatusPickedUp
	assignment.ActualPickup = &now

	from := []string{models.AssignmentStatusAccepted}
	if err := s.store.TransitionAssignment(assignment, from); err != nil {
		return nil, err
	}

	s.recordEvent(assignment, models.EventPickup, "Order picked up from vendor")
	return assignment, nil
}

// MarkInTransit is an optional intermediate step between pickup and delivery
func (s *DeliveryService) MarkInTransit(assignmentID, driverID string) (*models.Assignment, error) {
	assignment, _, err := s.loadOwned(assignmentID, driverID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(assignment.Status, models.AssignmentStatusInTransit) {
		return nil, models.ErrInvalidState
	}

	assignment.Status = models.AssignmentStatusInTransit

	from := []string{models.AssignmentStatusPickedUp}
	if err := s.store.TransitionAssignment(assignment, from); err != nil {
		return nil, err
	}

	s.recordEvent(assignment, models.EventInTransit, "Order is in transit")
	return assignment, nil
}

// MarkNearDelivery lets the driver tell the retailer they are close by.
// It records the tracking event and notifies the retailer; the assignment
// status itself does not change.
func (s *DeliveryService) MarkNearDelivery(assignmentID, driverID string) (*models.Assignment, error) {
	assignment, driver, err := s.loadOwned(assignmentID, driverID)
	if err != nil {
		return nil, err
	}
	if assignment.IsTerminal() {
		return nil, models.ErrInvalidState
	}

	s.recordEvent(assignment, models.EventNearDelivery, "Driver is near delivery location")
	s.notifyRetailer(assignment, models.NotificationDriverArriving,
		"Driver Arriving Soon!",
		fmt.Sprintf("%s is near your location and will arrive in 5-10 minutes", driver.Name))

	return assignment, nil
}

// MarkDelivery completes the assignment: frees the driver's capacity,
// computes the earning from the delay against the estimate, and commits
// everything together.
func (s *DeliveryService) MarkDelivery(assignmentID, driverID string) (*models.Assignment, *models.Earning, error) {
	assignment, driver, err := s.loadOwned(assignmentID, driverID)
	if err != nil {
		return nil, nil, err
	}
	if assignment.Status != models.AssignmentStatusPickedUp &&
		assignment.Status != models.AssignmentStatusInTransit {
		return nil, nil, models.ErrInvalidState
	}

	now := time.Now()
	assignment.Status = models.AssignmentStatusDelivered
	assignment.ActualDelivery = &now

	earning := buildEarning(assignment)

	// The store releases the reserved load and updates the driver's
	// delivery counters atomically
	if err := s.store.CompleteDelivery(assignment, earning); err != nil {
		return nil, nil, err
	}

	s.recordEvent(assignment, models.EventDelivered, "Order successfully delivered")
	s.notifyDriver(driver, assignment, models.NotificationDeliveryComplete,
		fmt.Sprintf("Delivery Complete! Earned ₹%.2f", earning.TotalEarning),
		fmt.Sprintf("Base: ₹%.2f, Bonus: ₹%.2f, Deduction: ₹%.2f",
			earning.BaseEarning, earning.OnTimeBonus, earning.LateDeliveryDeduction))

	return assignment, earning, nil
}

// Reject cancels the assignment and releases the reserved load
func (s *DeliveryService) Reject(assignmentID, driverID, reason string) (*models.Assignment, error) {
	assignment, _, err := s.loadOwned(assignmentID, driverID)
	if err != nil {
		return nil, err
	}

	cancellable := false
	for _, status := range models.CancellableFrom() {
		if assignment.Status == status {
			cancellable = true
			break
		}
	}
	if !cancellable {
		return nil, models.ErrInvalidState
	}

	if reason == "" {
		reason = "Driver not available"
	}
	assignment.Status = models.AssignmentStatusCancelled
	assignment.CancellationReason = reason

	if err := s.store.CancelAssignment(assignment); err != nil {
		return nil, err
	}

	s.recordEvent(assignment, models.EventCancelled, fmt.Sprintf("Assignment rejected: %s", reason))
	s.notifyRetailer(assignment, models.NotificationCancelled,
		"Delivery Cancelled",
		fmt.Sprintf("Your delivery was cancelled: %s. The order will be reassigned.", reason))
	return assignment, nil
}

// buildEarning computes the payout for a delivered assignment.
// Delay is measured against the delivery estimate; deliveries within the
// grace window earn neither bonus nor deduction.
func buildEarning(assignment *models.Assignment) *models.Earning {
	earning := &models.Earning{
		DriverID:          assignment.DriverID,
		AssignmentID:      assignment.ID,
		OrderID:           assignment.OrderID,
		RatePerKg:         models.BaseRatePerKg,
		WeightDeliveredKg: assignment.WeightAssignedKg,
		Status:            models.EarningStatusPending,
	}
	earning.BaseEarning = earning.WeightDeliveredKg * earning.RatePerKg

	delayMinutes := assignment.DelayMinutes()
	if delayMinutes <= 0 {
		earning.OnTimeBonus = earning.BaseEarning * onTimeBonusRate
	}
	if delayMinutes > lateGraceMinutes {
		lateFee := (delayMinutes / 60) * lateFeePerHour
		maxDeduction := earning.BaseEarning * lateDeductionCapRate
		if lateFee > maxDeduction {
			lateFee = maxDeduction
		}
		earning.LateDeliveryDeduction = lateFee
	}

	earning.CalculateTotal()
	return earning
}

// loadOwned fetches the assignment and verifies the caller is its driver
func (s *DeliveryService) loadOwned(assignmentID, driverID string) (*models.Assignment, *models.Driver, error) {
	driver, err := s.store.GetDriver(driverID)
	if err != nil {
		return nil, nil, err
	}

	assignment, err := s.store.GetAssignment(assignmentID)
	if err != nil {
		return nil, nil, err
	}

	if assignment.DriverID != driver.DriverID {
		return nil, nil, models.ErrUnauthorized
	}
	return assignment, driver, nil
}

// recordEvent appends a tracking event; failures are logged, never fatal
func (s *DeliveryService) recordEvent(assignment *models.Assignment, eventType, description string) {
	event := &models.TrackingEvent{
		AssignmentID: assignment.ID,
		DriverID:     assignment.DriverID,
		OrderID:      assignment.OrderID,
		EventType:    eventType,
		Description:  description,
	}
	if err := s.store.CreateTrackingEvent(event); err != nil {
		log.Printf("Failed to record tracking event %s for %s: %v", eventType, assignment.ID, err)
	}
}

// notifyDriver persists a notification and sends an SMS when Twilio is configured
func (s *DeliveryService) notifyDriver(driver *models.Driver, assignment *models.Assignment, notificationType, title, message string) {
	n := &models.Notification{
		OrderID:       assignment.OrderID,
		AssignmentID:  assignment.ID,
		RecipientType: models.RecipientDriver,
		RecipientID:   driver.DriverID,
		Type:          notificationType,
		Title:         title,
		Message:       message,
	}
	if err := s.store.CreateNotification(n); err != nil {
		log.Printf("Failed to create notification for driver %s: %v", driver.DriverID, err)
		return
	}

	if s.sms != nil {
		if err := s.sms.SendSMS(driver.Phone, title+" - "+message); err != nil {
			log.Printf("Failed to send SMS to driver %s: %v", driver.DriverID, err)
		}
	}
}

// notifyRetailer persists a notification addressed to the order's retailer
func (s *DeliveryService) notifyRetailer(assignment *models.Assignment, notificationType, title, message string) {
	if assignment.RetailerID == "" {
		return
	}
	n := &models.Notification{
		OrderID:       assignment.OrderID,
		AssignmentID:  assignment.ID,
		RecipientType: models.RecipientRetailer,
		RecipientID:   assignment.RetailerID,
		Type:          notificationType,
		Title:         title,
		Message:       message,
	}
	if err := s.store.CreateNotification(n); err != nil {
		log.Printf("Failed to create notification for retailer %s: %v", assignment.RetailerID, err)
	}
}
