package services

import (
	"errors"
	"testing"
	"time"

	"github.com/freshconnect/logistics-backend/internal/models"
	"github.com/freshconnect/logistics-backend/internal/storage"
)

// newTestService wires a delivery service over a fresh memory store with
// one priced area and one available driver parked in it.
func newTestService(t *testing.T) (*DeliveryService, storage.Store, *models.Driver) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := NewDeliveryService(store, nil)

	seedArea(t, store, models.AreaPricing{
		AreaName:            "North Koyambedu",
		BaseRatePerKg:       10,
		AreaMultiplier:      1.1,
		MinimumCharge:       50,
		DeliveryTimeMinutes: 45,
		IsActive:            true,
	})

	driver := registerAvailableDriver(t, store, models.DriverRegistration{
		Name: "Murugan", Phone: "+919876543210", VehicleRegistration: "TN09AB1234",
		VehicleType: "van", CapacityKg: 50, ParkingLocation: "North Koyambedu",
	})
	return svc, store, driver
}

func testOrder(orderID string, weightKg float64) *models.Order {
	return &models.Order{
		OrderID:         orderID,
		RetailerID:      "RT00001",
		WeightKg:        weightKg,
		DeliveryArea:    "North Koyambedu",
		DeliveryAddress: "12 Market Road",
		PickupLocation:  "Koyambedu Wholesale Market",
	}
}

func TestAssignDriverReservesCapacity(t *testing.T) {
	svc, store, driver := newTestService(t)

	assignment, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if assignment.Status != models.AssignmentStatusAssigned {
		t.Fatalf("expected status assigned, got %s", assignment.Status)
	}
	if assignment.DriverID != driver.DriverID {
		t.Fatalf("expected driver %s, got %s", driver.DriverID, assignment.DriverID)
	}
	if assignment.DeliveryCost != 110 {
		t.Fatalf("expected delivery cost 110, got %.2f", assignment.DeliveryCost)
	}
	if assignment.DriverEarning != 100 {
		t.Fatalf("expected driver earning 100, got %.2f", assignment.DriverEarning)
	}
	wantEstimate := assignment.ScheduledPickup.Add(45 * time.Minute)
	if !assignment.EstimatedDelivery.Equal(wantEstimate) {
		t.Fatalf("expected estimate %v, got %v", wantEstimate, assignment.EstimatedDelivery)
	}

	stored, err := store.GetDriver(driver.DriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.CurrentLoadKg != 10 {
		t.Fatalf("expected reserved load 10, got %.1f", stored.CurrentLoadKg)
	}
	if stored.Status != models.DriverStatusOnDelivery {
		t.Fatalf("expected driver on_delivery, got %s", stored.Status)
	}

	notifications, err := store.GetNotifications(models.RecipientDriver, driver.DriverID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Type != models.NotificationNewAssignment {
		t.Fatalf("unexpected notification type %s", notifications[0].Type)
	}
}

func TestAssignDriverRejectsDuplicateOrder(t *testing.T) {
	svc, store, _ := newTestService(t)

	registerAvailableDriver(t, store, models.DriverRegistration{
		Name: "Backup", Phone: "+919876500000", VehicleRegistration: "TN09ZZ9999",
		VehicleType: "van", CapacityKg: 50, ParkingLocation: "Porur",
	})

	if _, err := svc.AssignDriver(testOrder("ORD001", 5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.AssignDriver(testOrder("ORD001", 5))
	if !errors.Is(err, models.ErrOrderAlreadyAssigned) {
		t.Fatalf("expected ErrOrderAlreadyAssigned, got %v", err)
	}
}

func TestFullDeliveryLifecycle(t *testing.T) {
	svc, store, driver := newTestService(t)

	assignment, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	assignment, err = svc.Accept(assignment.ID, driver.DriverID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if assignment.Status != models.AssignmentStatusAccepted || assignment.AcceptedAt == nil {
		t.Fatalf("expected accepted with timestamp, got %s", assignment.Status)
	}

	// Accepting twice is not a valid transition
	if _, err := svc.Accept(assignment.ID, driver.DriverID); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double accept, got %v", err)
	}

	// Delivery before pickup is not a valid transition
	if _, _, err := svc.MarkDelivery(assignment.ID, driver.DriverID); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on deliver before pickup, got %v", err)
	}

	assignment, err = svc.MarkPickup(assignment.ID, driver.DriverID)
	if err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if assignment.Status != models.AssignmentStatusPickedUp || assignment.ActualPickup == nil {
		t.Fatalf("expected picked_up with timestamp, got %s", assignment.Status)
	}

	assignment, err = svc.MarkInTransit(assignment.ID, driver.DriverID)
	if err != nil {
		t.Fatalf("transit: %v", err)
	}
	if assignment.Status != models.AssignmentStatusInTransit {
		t.Fatalf("expected in_transit, got %s", assignment.Status)
	}

	assignment, earning, err := svc.MarkDelivery(assignment.ID, driver.DriverID)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if assignment.Status != models.AssignmentStatusDelivered || assignment.ActualDelivery == nil {
		t.Fatalf("expected delivered with timestamp, got %s", assignment.Status)
	}

	// Delivered well before the estimate: base 100 + 10% on-time bonus
	if earning.BaseEarning != 100 {
		t.Fatalf("expected base 100, got %.2f", earning.BaseEarning)
	}
	if earning.OnTimeBonus != 10 {
		t.Fatalf("expected bonus 10, got %.2f", earning.OnTimeBonus)
	}
	if earning.LateDeliveryDeduction != 0 {
		t.Fatalf("expected no deduction, got %.2f", earning.LateDeliveryDeduction)
	}
	if earning.TotalEarning != 110 {
		t.Fatalf("expected total 110, got %.2f", earning.TotalEarning)
	}

	stored, err := store.GetDriver(driver.DriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.CurrentLoadKg != 0 {
		t.Fatalf("expected load released, got %.1f", stored.CurrentLoadKg)
	}
	if stored.Status != models.DriverStatusAvailable {
		t.Fatalf("expected driver available, got %s", stored.Status)
	}
	if stored.TotalDeliveries != 1 {
		t.Fatalf("expected 1 completed delivery, got %d", stored.TotalDeliveries)
	}
	if stored.TotalEarnings != 110 {
		t.Fatalf("expected total earnings 110, got %.2f", stored.TotalEarnings)
	}

	events, err := store.GetTrackingEvents(assignment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("expected 5 tracking events, got %d", len(events))
	}
}

func TestDeliverSeveralAssignmentsReleasesEachLoad(t *testing.T) {
	svc, store, driver := newTestService(t)

	// On break the driver stays eligible, so several assignments can pile up
	if err := store.UpdateDriverStatus(driver.DriverID, models.DriverStatusOnBreak); err != nil {
		t.Fatalf("failed to update status: %v", err)
	}

	first, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("assign first: %v", err)
	}
	second, err := svc.AssignDriver(testOrder("ORD002", 15))
	if err != nil {
		t.Fatalf("assign second: %v", err)
	}

	for _, a := range []*models.Assignment{first, second} {
		if _, err := svc.Accept(a.ID, driver.DriverID); err != nil {
			t.Fatalf("accept %s: %v", a.ID, err)
		}
		if _, err := svc.MarkPickup(a.ID, driver.DriverID); err != nil {
			t.Fatalf("pickup %s: %v", a.ID, err)
		}
	}

	if _, _, err := svc.MarkDelivery(first.ID, driver.DriverID); err != nil {
		t.Fatalf("deliver first: %v", err)
	}

	// The first completion must release only its own 10kg
	stored, err := store.GetDriver(driver.DriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.CurrentLoadKg != 15 {
		t.Fatalf("expected remaining load 15, got %.1f", stored.CurrentLoadKg)
	}
	if stored.Status != models.DriverStatusOnDelivery {
		t.Fatalf("expected driver still on_delivery, got %s", stored.Status)
	}

	if _, _, err := svc.MarkDelivery(second.ID, driver.DriverID); err != nil {
		t.Fatalf("deliver second: %v", err)
	}

	stored, err = store.GetDriver(driver.DriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.CurrentLoadKg != 0 {
		t.Fatalf("expected all load released, got %.1f", stored.CurrentLoadKg)
	}
	if stored.Status != models.DriverStatusAvailable {
		t.Fatalf("expected driver available, got %s", stored.Status)
	}
	if stored.TotalDeliveries != 2 {
		t.Fatalf("expected 2 deliveries, got %d", stored.TotalDeliveries)
	}
	// 10kg and 15kg, both on time: (100+10) + (150+15)
	if stored.TotalEarnings != 275 {
		t.Fatalf("expected total earnings 275, got %.2f", stored.TotalEarnings)
	}
}

func TestNearDeliveryNotifiesRetailer(t *testing.T) {
	svc, store, driver := newTestService(t)

	assignment, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.Accept(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.MarkPickup(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("pickup: %v", err)
	}

	if _, err := svc.MarkNearDelivery(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("near delivery: %v", err)
	}

	events, err := store.GetTrackingEvents(assignment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, e := range events {
		if e.EventType == models.EventNearDelivery {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a near_delivery tracking event")
	}

	notifications, err := store.GetNotifications(models.RecipientRetailer, "RT00001", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 retailer notification, got %d", len(notifications))
	}
	if notifications[0].Type != models.NotificationDriverArriving {
		t.Fatalf("unexpected notification type %s", notifications[0].Type)
	}
	if notifications[0].Title != "Driver Arriving Soon!" {
		t.Fatalf("unexpected title %q", notifications[0].Title)
	}

	// Completed deliveries have nobody left to notify
	if _, _, err := svc.MarkDelivery(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if _, err := svc.MarkNearDelivery(assignment.ID, driver.DriverID); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after delivery, got %v", err)
	}
}

func TestMarkDeliveryDirectlyFromPickedUp(t *testing.T) {
	svc, _, driver := newTestService(t)

	assignment, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.Accept(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.MarkPickup(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("pickup: %v", err)
	}

	// in_transit is optional
	assignment, _, err = svc.MarkDelivery(assignment.ID, driver.DriverID)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if assignment.Status != models.AssignmentStatusDelivered {
		t.Fatalf("expected delivered, got %s", assignment.Status)
	}
}

func TestMarkDeliveryTwiceLeavesStateUntouched(t *testing.T) {
	svc, store, driver := newTestService(t)

	assignment, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.Accept(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.MarkPickup(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if _, _, err := svc.MarkDelivery(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	_, _, err = svc.MarkDelivery(assignment.ID, driver.DriverID)
	if !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second deliver, got %v", err)
	}

	// Neither the driver nor the earnings moved
	stored, err := store.GetDriver(driver.DriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.TotalDeliveries != 1 {
		t.Fatalf("expected 1 delivery, got %d", stored.TotalDeliveries)
	}
	if stored.TotalEarnings != 110 {
		t.Fatalf("expected earnings 110, got %.2f", stored.TotalEarnings)
	}
	earning, err := store.GetEarning(assignment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if earning.TotalEarning != 110 {
		t.Fatalf("expected earning total 110, got %.2f", earning.TotalEarning)
	}
}

func TestLifecycleRejectsWrongDriver(t *testing.T) {
	svc, store, driver := newTestService(t)

	other := registerAvailableDriver(t, store, models.DriverRegistration{
		Name: "Kumar", Phone: "+919876543211", VehicleRegistration: "TN09CD5678",
		VehicleType: "auto", CapacityKg: 30, ParkingLocation: "Porur",
	})

	assignment, err := svc.AssignDriver(testOrder("ORD001", 45))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assignment.DriverID != driver.DriverID {
		t.Fatalf("expected assignment to go to %s", driver.DriverID)
	}

	if _, err := svc.Accept(assignment.ID, other.DriverID); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Reject(assignment.ID, other.DriverID, "not mine"); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRejectReleasesReservedLoad(t *testing.T) {
	svc, store, driver := newTestService(t)

	assignment, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	assignment, err = svc.Reject(assignment.ID, driver.DriverID, "Vehicle breakdown")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if assignment.Status != models.AssignmentStatusCancelled {
		t.Fatalf("expected cancelled, got %s", assignment.Status)
	}
	if assignment.CancellationReason != "Vehicle breakdown" {
		t.Fatalf("unexpected reason %q", assignment.CancellationReason)
	}

	stored, err := store.GetDriver(driver.DriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.CurrentLoadKg != 0 {
		t.Fatalf("expected load released, got %.1f", stored.CurrentLoadKg)
	}
	if stored.Status != models.DriverStatusAvailable {
		t.Fatalf("expected driver available, got %s", stored.Status)
	}
	if stored.CancelledDeliveries != 1 {
		t.Fatalf("expected 1 cancelled delivery, got %d", stored.CancelledDeliveries)
	}

	// The retailer hears about the cancellation
	notifications, err := store.GetNotifications(models.RecipientRetailer, "RT00001", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 retailer notification, got %d", len(notifications))
	}
	if notifications[0].Type != models.NotificationCancelled {
		t.Fatalf("unexpected notification type %s", notifications[0].Type)
	}

	// Rejecting a cancelled assignment is not allowed
	if _, err := svc.Reject(assignment.ID, driver.DriverID, ""); !errors.Is(err, models.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	// The order can be assigned again once the old assignment is terminal
	if _, err := svc.AssignDriver(testOrder("ORD001", 10)); err != nil {
		t.Fatalf("reassign after cancel: %v", err)
	}
}

func TestGetOrderAssignment(t *testing.T) {
	svc, _, _ := newTestService(t)

	assignment, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	detail, err := svc.GetOrderAssignment("ORD001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Assignment.ID != assignment.ID {
		t.Fatalf("expected assignment %s, got %s", assignment.ID, detail.Assignment.ID)
	}
	if len(detail.Events) == 0 {
		t.Fatal("expected tracking events in the detail")
	}

	if _, err := svc.GetOrderAssignment("ORD999"); !errors.Is(err, models.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestBuildEarningOnTime(t *testing.T) {
	now := time.Now()
	estimate := now.Add(10 * time.Minute)
	assignment := &models.Assignment{
		ID: "AS00001", OrderID: "ORD001", DriverID: "DR00001",
		WeightAssignedKg:  10,
		EstimatedDelivery: estimate,
		ActualDelivery:    &now,
	}

	earning := buildEarning(assignment)
	if earning.BaseEarning != 100 {
		t.Fatalf("expected base 100, got %.2f", earning.BaseEarning)
	}
	if earning.OnTimeBonus != 10 {
		t.Fatalf("expected bonus 10, got %.2f", earning.OnTimeBonus)
	}
	if earning.LateDeliveryDeduction != 0 {
		t.Fatalf("expected no deduction, got %.2f", earning.LateDeliveryDeduction)
	}
	if earning.TotalEarning != 110 {
		t.Fatalf("expected total 110, got %.2f", earning.TotalEarning)
	}
}

func TestBuildEarningGraceWindow(t *testing.T) {
	estimate := time.Now()
	actual := estimate.Add(10 * time.Minute)
	assignment := &models.Assignment{
		ID: "AS00001", OrderID: "ORD001", DriverID: "DR00001",
		WeightAssignedKg:  10,
		EstimatedDelivery: estimate,
		ActualDelivery:    &actual,
	}

	// 10 minutes late: past the estimate so no bonus, within grace so no deduction
	earning := buildEarning(assignment)
	if earning.OnTimeBonus != 0 {
		t.Fatalf("expected no bonus, got %.2f", earning.OnTimeBonus)
	}
	if earning.LateDeliveryDeduction != 0 {
		t.Fatalf("expected no deduction, got %.2f", earning.LateDeliveryDeduction)
	}
	if earning.TotalEarning != 100 {
		t.Fatalf("expected total 100, got %.2f", earning.TotalEarning)
	}
}

func TestBuildEarningLateDeduction(t *testing.T) {
	estimate := time.Now()
	actual := estimate.Add(30 * time.Minute)
	assignment := &models.Assignment{
		ID: "AS00001", OrderID: "ORD001", DriverID: "DR00001",
		WeightAssignedKg:  10,
		EstimatedDelivery: estimate,
		ActualDelivery:    &actual,
	}

	// 30 minutes late: 0.5h * ₹20/h = ₹10, under the 20% cap
	earning := buildEarning(assignment)
	if earning.OnTimeBonus != 0 {
		t.Fatalf("expected no bonus, got %.2f", earning.OnTimeBonus)
	}
	if earning.LateDeliveryDeduction != 10 {
		t.Fatalf("expected deduction 10, got %.2f", earning.LateDeliveryDeduction)
	}
	if earning.TotalEarning != 90 {
		t.Fatalf("expected total 90, got %.2f", earning.TotalEarning)
	}
}

func TestBuildEarningDeductionCapped(t *testing.T) {
	estimate := time.Now()
	actual := estimate.Add(5 * time.Hour)
	assignment := &models.Assignment{
		ID: "AS00001", OrderID: "ORD001", DriverID: "DR00001",
		WeightAssignedKg:  10,
		EstimatedDelivery: estimate,
		ActualDelivery:    &actual,
	}

	// 5 hours late would be ₹100, capped at 20% of the ₹100 base
	earning := buildEarning(assignment)
	if earning.LateDeliveryDeduction != 20 {
		t.Fatalf("expected capped deduction 20, got %.2f", earning.LateDeliveryDeduction)
	}
	if earning.TotalEarning != 80 {
		t.Fatalf("expected total 80, got %.2f", earning.TotalEarning)
	}
}

func TestGetDriverEarningsPeriods(t *testing.T) {
	svc, _, driver := newTestService(t)

	assignment, err := svc.AssignDriver(testOrder("ORD001", 10))
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.Accept(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.MarkPickup(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if _, _, err := svc.MarkDelivery(assignment.ID, driver.DriverID); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	for _, period := range []string{PeriodAll, PeriodToday, PeriodWeek, PeriodMonth, ""} {
		earnings, err := svc.GetDriverEarnings(driver.DriverID, period)
		if err != nil {
			t.Fatalf("period %q: %v", period, err)
		}
		if len(earnings) != 1 {
			t.Fatalf("period %q: expected 1 earning, got %d", period, len(earnings))
		}
	}

	summary := SummarizeEarnings(mustEarnings(t, svc, driver.DriverID))
	if summary.Count != 1 || summary.TotalEarning != 110 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if _, err := svc.GetDriverEarnings(driver.DriverID, "fortnight"); err == nil {
		t.Fatal("expected error for unknown period")
	}
}

func mustEarnings(t *testing.T, svc *DeliveryService, driverID string) []*models.Earning {
	t.Helper()
	earnings, err := svc.GetDriverEarnings(driverID, PeriodAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return earnings
}
