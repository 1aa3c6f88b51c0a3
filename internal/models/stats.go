package models

import "time"

// DriverStats is a performance snapshot for one driver
type DriverStats struct {
	DriverID             string     `json:"driver_id"`
	TotalDeliveries      int        `json:"total_deliveries"`
	SuccessfulDeliveries int        `json:"successful_deliveries"`
	CancelledDeliveries  int        `json:"cancelled_deliveries"`
	CompletionRate       float64    `json:"completion_rate"`
	AverageRating        float64    `json:"average_rating"`
	TotalEarnings        float64    `json:"total_earnings"`
	LastActiveAt         *time.Time `json:"last_active_at"`
}

// StatsForDriver builds the performance snapshot from the driver record
func StatsForDriver(d *Driver) *DriverStats {
	return &DriverStats{
		DriverID:             d.DriverID,
		TotalDeliveries:      d.TotalDeliveries,
		SuccessfulDeliveries: d.SuccessfulDeliveries,
		CancelledDeliveries:  d.CancelledDeliveries,
		CompletionRate:       d.CompletionRate(),
		AverageRating:        d.Rating,
		TotalEarnings:        d.TotalEarnings,
		LastActiveAt:         d.LastActive,
	}
}
