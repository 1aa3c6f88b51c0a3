package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshconnect/logistics-backend/internal/models"
)

// DatabaseStore persists everything in PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Driver operations

func (s *DatabaseStore) CreateDriver(reg *models.DriverRegistration) (*models.Driver, error) {
	driver := &models.Driver{
		Name:                reg.Name,
		Phone:               reg.Phone,
		VehicleType:         reg.VehicleType,
		VehicleRegistration: reg.VehicleRegistration,
		CapacityKg:          reg.CapacityKg,
		ParkingLocation:     reg.ParkingLocation,
		Status:              models.DriverStatusOffDuty,
		IsActive:            true,
	}

	var count int64
	s.db.Model(&models.Driver{}).Where("phone = ?", reg.Phone).Count(&count)
	if count > 0 {
		return nil, models.ErrDriverAlreadyRegistered
	}

	if err := s.db.Create(driver).Error; err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}
	return driver, nil
}

func (s *DatabaseStore) GetDriver(driverID string) (*models.Driver, error) {
	var driver models.Driver
	err := s.db.Where("driver_id = ?", driverID).First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (s *DatabaseStore) GetDriverByPhone(phone string) (*models.Driver, error) {
	var driver models.Driver
	err := s.db.Where("phone = ?", phone).First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (s *DatabaseStore) GetAllDrivers() ([]*models.Driver, error) {
	var drivers []*models.Driver
	if err := s.db.Order("id asc").Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

// GetEligibleDrivers returns active drivers that can be offered new work,
// in creation order so candidate enumeration stays deterministic.
func (s *DatabaseStore) GetEligibleDrivers() ([]*models.Driver, error) {
	var drivers []*models.Driver
	err := s.db.
		Where("is_active = ?", true).
		Where("status IN ?", []string{models.DriverStatusAvailable, models.DriverStatusOnBreak}).
		Order("id asc").
		Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}

func (s *DatabaseStore) UpdateDriverStatus(driverID, status string) error {
	result := s.db.Model(&models.Driver{}).
		Where("driver_id = ?", driverID).
		Updates(map[string]interface{}{"status": status, "last_active": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrDriverNotFound
	}
	return nil
}

// Area pricing operations

func (s *DatabaseStore) GetAreaPricing(areaName string) (*models.AreaPricing, error) {
	var area models.AreaPricing
	err := s.db.Where("area_name = ? AND is_active = ?", areaName, true).First(&area).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAreaNotFound
	}
	if err != nil {
		return nil, err
	}
	return &area, nil
}

func (s *DatabaseStore) ListAreaPricing() ([]*models.AreaPricing, error) {
	var areas []*models.AreaPricing
	if err := s.db.Order("area_name asc").Find(&areas).Error; err != nil {
		return nil, err
	}
	return areas, nil
}

func (s *DatabaseStore) UpsertAreaPricing(area *models.AreaPricing) error {
	var existing models.AreaPricing
	err := s.db.Where("area_name = ?", area.AreaName).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.db.Create(area).Error
	}
	if err != nil {
		return err
	}
	area.ID = existing.ID
	area.CreatedAt = existing.CreatedAt
	return s.db.Save(area).Error
}

// Assignment operations

func (s *DatabaseStore) GetAssignment(id string) (*models.Assignment, error) {
	var assignment models.Assignment
	err := s.db.Where("id = ?", id).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *DatabaseStore) GetAssignmentByOrder(orderID string) (*models.Assignment, error) {
	var assignment models.Assignment
	err := s.db.Where("order_id = ?", orderID).First(&assignment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *DatabaseStore) GetAssignmentsByDriver(driverID, status string) ([]*models.Assignment, error) {
	query := s.db.Where("driver_id = ?", driverID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var assignments []*models.Assignment
	if err := query.Order("created_at desc").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (s *DatabaseStore) CountAssignmentsByStatus(status string) (int64, error) {
	query := s.db.Model(&models.Assignment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (s *DatabaseStore) ApplyAssignment(assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Assignment
		err := tx.Where("order_id = ?", assignment.OrderID).First(&existing).Error
		if err == nil && !existing.IsTerminal() {
			return models.ErrOrderAlreadyAssigned
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(assignment).Error; err != nil {
			return err
		}

		// Reserve the driver's capacity; the status guard keeps two
		// concurrent assignments from both landing on a full driver.
		result := tx.Model(&models.Driver{}).
			Where("driver_id = ?", assignment.DriverID).
			Where("status IN ?", []string{models.DriverStatusAvailable, models.DriverStatusOnBreak}).
			Where("current_load_kg + ? <= capacity_kg", assignment.WeightAssignedKg).
			Updates(map[string]interface{}{
				"current_load_kg": gorm.Expr("current_load_kg + ?", assignment.WeightAssignedKg),
				"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
					models.DriverStatusAvailable, models.DriverStatusOnDelivery),
				"last_active": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrInsufficientCapacity
		}
		return nil
	})
}

func (s *DatabaseStore) TransitionAssignment(assignment *models.Assignment, fromStatuses []string) error {
	return guardedSave(s.db, assignment, fromStatuses)
}

func (s *DatabaseStore) CompleteDelivery(assignment *models.Assignment, earning *models.Earning) error {
	if earning.ID == "" {
		earning.ID = uuid.NewString()
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		from := []string{models.AssignmentStatusPickedUp, models.AssignmentStatusInTransit}
		if err := guardedSave(tx, assignment, from); err != nil {
			return err
		}
		// Release the load and bump the counters in place; saving a driver
		// snapshot here would erase concurrent actions on the same driver
		result := tx.Model(&models.Driver{}).
			Where("driver_id = ?", assignment.DriverID).
			Updates(map[string]interface{}{
				"current_load_kg":       gorm.Expr("GREATEST(current_load_kg - ?, 0)", assignment.WeightAssignedKg),
				"total_deliveries":      gorm.Expr("total_deliveries + 1"),
				"successful_deliveries": gorm.Expr("successful_deliveries + 1"),
				"total_earnings":        gorm.Expr("total_earnings + ?", earning.TotalEarning),
				"last_active":           time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrDriverNotFound
		}
		if err := markIdleDriverAvailable(tx, assignment.DriverID); err != nil {
			return err
		}
		return tx.Create(earning).Error
	})
}

func (s *DatabaseStore) CancelAssignment(assignment *models.Assignment) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := guardedSave(tx, assignment, models.CancellableFrom()); err != nil {
			return err
		}
		result := tx.Model(&models.Driver{}).
			Where("driver_id = ?", assignment.DriverID).
			Updates(map[string]interface{}{
				"current_load_kg":      gorm.Expr("GREATEST(current_load_kg - ?, 0)", assignment.WeightAssignedKg),
				"cancelled_deliveries": gorm.Expr("cancelled_deliveries + 1"),
				"last_active":          time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrDriverNotFound
		}
		return markIdleDriverAvailable(tx, assignment.DriverID)
	})
}

// markIdleDriverAvailable flips a delivering driver back to available once
// nothing is left on the vehicle. The row is already locked by the preceding
// update in the same transaction.
func markIdleDriverAvailable(tx *gorm.DB, driverID string) error {
	return tx.Model(&models.Driver{}).
		Where("driver_id = ? AND status = ? AND current_load_kg = 0", driverID, models.DriverStatusOnDelivery).
		Update("status", models.DriverStatusAvailable).Error
}

// guardedSave updates the assignment row iff its stored status is still one
// of fromStatuses. A zero RowsAffected means another action won the race (or
// the row is gone), which callers surface as an invalid-state error.
func guardedSave(tx *gorm.DB, assignment *models.Assignment, fromStatuses []string) error {
	result := tx.Model(&models.Assignment{}).
		Where("id = ?", assignment.ID).
		Where("status IN ?", fromStatuses).
		Select("*").
		Omit("created_at").
		Updates(assignment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrInvalidState
	}
	return nil
}

// Earning operations

func (s *DatabaseStore) GetEarning(assignmentID string) (*models.Earning, error) {
	var earning models.Earning
	err := s.db.Where("assignment_id = ?", assignmentID).First(&earning).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &earning, nil
}

func (s *DatabaseStore) GetEarningsByDriver(driverID string, since time.Time) ([]*models.Earning, error) {
	query := s.db.Where("driver_id = ?", driverID)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	var earnings []*models.Earning
	if err := query.Order("created_at desc").Find(&earnings).Error; err != nil {
		return nil, err
	}
	return earnings, nil
}

// Tracking & notifications

func (s *DatabaseStore) CreateTrackingEvent(event *models.TrackingEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return s.db.Create(event).Error
}

func (s *DatabaseStore) GetTrackingEvents(assignmentID string) ([]*models.TrackingEvent, error) {
	var events []*models.TrackingEvent
	err := s.db.Where("assignment_id = ?", assignmentID).Order("timestamp asc").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *DatabaseStore) CreateNotification(n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return s.db.Create(n).Error
}

func (s *DatabaseStore) GetNotifications(recipientType, recipientID string, unreadOnly bool) ([]*models.Notification, error) {
	query := s.db.Where("recipient_type = ? AND recipient_id = ?", recipientType, recipientID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []*models.Notification
	if err := query.Order("created_at desc").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *DatabaseStore) MarkNotificationRead(id, recipientID string) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotificationNotFound
	}
	return nil
}
