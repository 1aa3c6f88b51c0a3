package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freshconnect/logistics-backend/internal/models"
)

// MemoryStore holds all data in memory for testing and local development
type MemoryStore struct {
	mu sync.RWMutex

	drivers     map[string]*models.Driver
	driverOrder []string // creation order, keeps candidate enumeration deterministic
	areas       map[string]*models.AreaPricing
	assignments map[string]*models.Assignment
	orderIndex  map[string]string // order ID -> assignment ID
	earnings    map[string]*models.Earning // keyed by assignment ID
	events      map[string][]*models.TrackingEvent
	notes       map[string]*models.Notification

	driverCounter     int
	areaCounter       uint
	assignmentCounter int
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drivers:     make(map[string]*models.Driver),
		areas:       make(map[string]*models.AreaPricing),
		assignments: make(map[string]*models.Assignment),
		orderIndex:  make(map[string]string),
		earnings:    make(map[string]*models.Earning),
		events:      make(map[string][]*models.TrackingEvent),
		notes:       make(map[string]*models.Notification),
	}
}

// Driver operations

func (m *MemoryStore) CreateDriver(reg *models.DriverRegistration) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.drivers {
		if d.Phone == reg.Phone {
			return nil, models.ErrDriverAlreadyRegistered
		}
	}

	m.driverCounter++
	now := time.Now()
	driver := &models.Driver{
		DriverID:            fmt.Sprintf("DR%05d", m.driverCounter),
		Name:                reg.Name,
		Phone:               reg.Phone,
		VehicleType:         reg.VehicleType,
		VehicleRegistration: strings.ToUpper(strings.ReplaceAll(reg.VehicleRegistration, " ", "")),
		CapacityKg:          reg.CapacityKg,
		ParkingLocation:     reg.ParkingLocation,
		Status:              models.DriverStatusOffDuty,
		Rating:              5.0,
		IsActive:            true,
		LastActive:          &now,
	}

	m.drivers[driver.DriverID] = driver
	m.driverOrder = append(m.driverOrder, driver.DriverID)

	out := *driver
	return &out, nil
}

func (m *MemoryStore) GetDriver(driverID string) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getDriverLocked(driverID)
}

func (m *MemoryStore) getDriverLocked(driverID string) (*models.Driver, error) {
	driver, exists := m.drivers[driverID]
	if !exists {
		return nil, models.ErrDriverNotFound
	}
	out := *driver
	return &out, nil
}

func (m *MemoryStore) GetDriverByPhone(phone string) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.driverOrder {
		if m.drivers[id].Phone == phone {
			out := *m.drivers[id]
			return &out, nil
		}
	}
	return nil, models.ErrDriverNotFound
}

func (m *MemoryStore) GetAllDrivers() ([]*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drivers := make([]*models.Driver, 0, len(m.driverOrder))
	for _, id := range m.driverOrder {
		out := *m.drivers[id]
		drivers = append(drivers, &out)
	}
	return drivers, nil
}

func (m *MemoryStore) GetEligibleDrivers() ([]*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var drivers []*models.Driver
	for _, id := range m.driverOrder {
		d := m.drivers[id]
		if !d.IsActive {
			continue
		}
		if d.Status != models.DriverStatusAvailable && d.Status != models.DriverStatusOnBreak {
			continue
		}
		out := *d
		drivers = append(drivers, &out)
	}
	return drivers, nil
}

func (m *MemoryStore) UpdateDriverStatus(driverID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	driver, exists := m.drivers[driverID]
	if !exists {
		return models.ErrDriverNotFound
	}
	driver.Status = status
	now := time.Now()
	driver.LastActive = &now
	return nil
}

// Area pricing operations

func (m *MemoryStore) GetAreaPricing(areaName string) (*models.AreaPricing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	area, exists := m.areas[areaName]
	if !exists || !area.IsActive {
		return nil, models.ErrAreaNotFound
	}
	out := *area
	return &out, nil
}

func (m *MemoryStore) ListAreaPricing() ([]*models.AreaPricing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	areas := make([]*models.AreaPricing, 0, len(m.areas))
	for _, a := range m.areas {
		out := *a
		areas = append(areas, &out)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].AreaName < areas[j].AreaName })
	return areas, nil
}

func (m *MemoryStore) UpsertAreaPricing(area *models.AreaPricing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.areas[area.AreaName]; ok {
		area.ID = existing.ID
		area.CreatedAt = existing.CreatedAt
	} else {
		m.areaCounter++
		area.ID = m.areaCounter
		area.CreatedAt = time.Now()
	}
	area.UpdatedAt = time.Now()

	stored := *area
	m.areas[area.AreaName] = &stored
	return nil
}

// Assignment operations

func (m *MemoryStore) GetAssignment(id string) (*models.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	assignment, exists := m.assignments[id]
	if !exists {
		return nil, models.ErrAssignmentNotFound
	}
	out := *assignment
	return &out, nil
}

func (m *MemoryStore) GetAssignmentByOrder(orderID string) (*models.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.orderIndex[orderID]
	if !exists {
		return nil, models.ErrAssignmentNotFound
	}
	out := *m.assignments[id]
	return &out, nil
}

func (m *MemoryStore) GetAssignmentsByDriver(driverID, status string) ([]*models.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Assignment
	for _, a := range m.assignments {
		if a.DriverID != driverID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out := *a
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MemoryStore) CountAssignmentsByStatus(status string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, a := range m.assignments {
		if status == "" || a.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) ApplyAssignment(assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existingID, ok := m.orderIndex[assignment.OrderID]; ok {
		if !m.assignments[existingID].IsTerminal() {
			return models.ErrOrderAlreadyAssigned
		}
	}
	driver, exists := m.drivers[assignment.DriverID]
	if !exists {
		return models.ErrDriverNotFound
	}
	// Guard against the stored record, not a caller snapshot: a concurrent
	// assignment may have reserved this driver since the service read it.
	if !driver.CanTakeOrder(assignment.WeightAssignedKg) {
		return models.ErrInsufficientCapacity
	}

	m.assignmentCounter++
	now := time.Now()
	assignment.ID = fmt.Sprintf("AS%05d", m.assignmentCounter)
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	storedAssignment := *assignment
	m.assignments[assignment.ID] = &storedAssignment
	m.orderIndex[assignment.OrderID] = assignment.ID

	driver.CurrentLoadKg += assignment.WeightAssignedKg
	if driver.Status == models.DriverStatusAvailable {
		driver.Status = models.DriverStatusOnDelivery
	}
	driver.LastActive = &now
	return nil
}

func (m *MemoryStore) TransitionAssignment(assignment *models.Assignment, fromStatuses []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.assignments[assignment.ID]
	if !exists {
		return models.ErrAssignmentNotFound
	}
	if !statusIn(stored.Status, fromStatuses) {
		return models.ErrInvalidState
	}

	assignment.CreatedAt = stored.CreatedAt
	assignment.UpdatedAt = time.Now()
	updated := *assignment
	m.assignments[assignment.ID] = &updated
	return nil
}

func (m *MemoryStore) CompleteDelivery(assignment *models.Assignment, earning *models.Earning) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.assignments[assignment.ID]
	if !exists {
		return models.ErrAssignmentNotFound
	}
	if !statusIn(stored.Status, []string{models.AssignmentStatusPickedUp, models.AssignmentStatusInTransit}) {
		return models.ErrInvalidState
	}
	driver, exists := m.drivers[assignment.DriverID]
	if !exists {
		return models.ErrDriverNotFound
	}

	assignment.CreatedAt = stored.CreatedAt
	assignment.UpdatedAt = time.Now()
	updated := *assignment
	m.assignments[assignment.ID] = &updated

	// Release against the stored record so two deliveries for one driver
	// never clobber each other's load accounting
	driver.CurrentLoadKg -= assignment.WeightAssignedKg
	if driver.CurrentLoadKg < 0 {
		driver.CurrentLoadKg = 0
	}
	driver.CompleteDelivery(earning.TotalEarning)
	if driver.Status == models.DriverStatusOnDelivery && driver.CurrentLoadKg == 0 {
		driver.Status = models.DriverStatusAvailable
	}

	if earning.ID == "" {
		earning.ID = uuid.NewString()
	}
	earning.CreatedAt = time.Now()
	storedEarning := *earning
	m.earnings[earning.AssignmentID] = &storedEarning
	return nil
}

func (m *MemoryStore) CancelAssignment(assignment *models.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, exists := m.assignments[assignment.ID]
	if !exists {
		return models.ErrAssignmentNotFound
	}
	if !statusIn(stored.Status, models.CancellableFrom()) {
		return models.ErrInvalidState
	}
	driver, exists := m.drivers[assignment.DriverID]
	if !exists {
		return models.ErrDriverNotFound
	}

	assignment.CreatedAt = stored.CreatedAt
	assignment.UpdatedAt = time.Now()
	updated := *assignment
	m.assignments[assignment.ID] = &updated

	driver.CurrentLoadKg -= assignment.WeightAssignedKg
	if driver.CurrentLoadKg < 0 {
		driver.CurrentLoadKg = 0
	}
	driver.CancelledDeliveries++
	if driver.Status == models.DriverStatusOnDelivery && driver.CurrentLoadKg == 0 {
		driver.Status = models.DriverStatusAvailable
	}
	return nil
}

// Earning operations

func (m *MemoryStore) GetEarning(assignmentID string) (*models.Earning, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	earning, exists := m.earnings[assignmentID]
	if !exists {
		return nil, models.ErrAssignmentNotFound
	}
	out := *earning
	return &out, nil
}

func (m *MemoryStore) GetEarningsByDriver(driverID string, since time.Time) ([]*models.Earning, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Earning
	for _, e := range m.earnings {
		if e.DriverID != driverID {
			continue
		}
		if !since.IsZero() && e.CreatedAt.Before(since) {
			continue
		}
		out := *e
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// Tracking & notifications

func (m *MemoryStore) CreateTrackingEvent(event *models.TrackingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	stored := *event
	m.events[event.AssignmentID] = append(m.events[event.AssignmentID], &stored)
	return nil
}

func (m *MemoryStore) GetTrackingEvents(assignmentID string) ([]*models.TrackingEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*models.TrackingEvent, 0, len(m.events[assignmentID]))
	for _, e := range m.events[assignmentID] {
		out := *e
		events = append(events, &out)
	}
	return events, nil
}

func (m *MemoryStore) CreateNotification(n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now()
	stored := *n
	m.notes[n.ID] = &stored
	return nil
}

func (m *MemoryStore) GetNotifications(recipientType, recipientID string, unreadOnly bool) ([]*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Notification
	for _, n := range m.notes {
		if n.RecipientType != recipientType || n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out := *n
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MemoryStore) MarkNotificationRead(id, recipientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, exists := m.notes[id]
	if !exists || n.RecipientID != recipientID {
		return models.ErrNotificationNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		now := time.Now()
		n.ReadAt = &now
	}
	return nil
}

func statusIn(status string, set []string) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
