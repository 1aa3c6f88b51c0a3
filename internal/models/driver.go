package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Driver status constants
const (
	DriverStatusOffDuty    = "off_duty"
	DriverStatusAvailable  = "available"
	DriverStatusOnDelivery = "on_delivery"
	DriverStatusOnBreak    = "on_break"
)

// Driver represents a delivery driver in the marketplace
type Driver struct {
	// Using gorm.Model gives us ID (uint), CreatedAt, UpdatedAt, DeletedAt automatically
	gorm.Model

	DriverID string `json:"driver_id" gorm:"uniqueIndex"`
	Name     string `json:"name"`
	Phone    string `json:"phone" gorm:"uniqueIndex"`
	Email    string `json:"email"`

	// Vehicle details
	VehicleType         string  `json:"vehicle_type"` // motorcycle, auto, van, truck, lorry
	VehicleRegistration string  `json:"vehicle_registration" gorm:"uniqueIndex"`
	CapacityKg          float64 `json:"capacity_kg"`
	CurrentLoadKg       float64 `json:"current_load_kg" gorm:"default:0"`

	// Location
	ParkingLocation string `json:"parking_location"` // base location used for matching
	CurrentLocation string `json:"current_location"`

	// Status
	Status     string     `json:"status" gorm:"default:off_duty"`
	LastActive *time.Time `json:"last_active"`

	// Performance
	Rating               float64 `json:"rating" gorm:"default:5.0"`
	TotalDeliveries      int     `json:"total_deliveries" gorm:"default:0"`
	SuccessfulDeliveries int     `json:"successful_deliveries" gorm:"default:0"`
	CancelledDeliveries  int     `json:"cancelled_deliveries" gorm:"default:0"`
	TotalEarnings        float64 `json:"total_earnings" gorm:"default:0"`

	Verified bool `json:"verified" gorm:"default:false"`
	IsActive bool `json:"is_active" gorm:"default:true"`
}

// BeforeCreate hook to auto-generate DriverID and normalize data
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.DriverID == "" {
		d.DriverID = fmt.Sprintf("DR%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}

	// Normalize vehicle registration (remove spaces, convert to uppercase)
	d.VehicleRegistration = strings.ToUpper(strings.ReplaceAll(d.VehicleRegistration, " ", ""))

	// Normalize phone number (ensure it starts with +91 if not already)
	if !strings.HasPrefix(d.Phone, "+") {
		d.Phone = "+91" + strings.TrimPrefix(d.Phone, "91")
	}

	if d.Rating == 0 {
		d.Rating = 5.0
	}
	if d.Status == "" {
		d.Status = DriverStatusOffDuty
	}

	return nil
}

// DriverRegistration is used for new driver registration
type DriverRegistration struct {
	Name                string  `json:"name" validate:"required"`
	Phone               string  `json:"phone" validate:"required"`
	VehicleType         string  `json:"vehicle_type" validate:"required"`
	VehicleRegistration string  `json:"vehicle_registration" validate:"required"`
	CapacityKg          float64 `json:"capacity_kg" validate:"required"`
	ParkingLocation     string  `json:"parking_location"`
}

// AvailableCapacity returns the load the driver can still carry
func (d *Driver) AvailableCapacity() float64 {
	return d.CapacityKg - d.CurrentLoadKg
}

// CanTakeOrder checks if the driver can carry an order of the given weight
func (d *Driver) CanTakeOrder(weightKg float64) bool {
	return d.IsActive &&
		(d.Status == DriverStatusAvailable || d.Status == DriverStatusOnBreak) &&
		d.AvailableCapacity() >= weightKg
}

// CompletionRate returns the percentage of deliveries completed successfully
func (d *Driver) CompletionRate() float64 {
	if d.TotalDeliveries == 0 {
		return 100.0
	}
	return (float64(d.SuccessfulDeliveries) / float64(d.TotalDeliveries)) * 100
}

// CompleteDelivery updates counters after a successful delivery
func (d *Driver) CompleteDelivery(earning float64) {
	d.TotalDeliveries++
	d.SuccessfulDeliveries++
	d.TotalEarnings += earning
	now := time.Now()
	d.LastActive = &now
}
