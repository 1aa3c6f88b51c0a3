package models

import "time"

// EarningStatusPending marks earnings awaiting payout. Payouts themselves are
// settled outside this system.
const EarningStatusPending = "pending"

// BaseRatePerKg is the flat driver rate per kilogram delivered (₹10/kg)
const BaseRatePerKg = 10.0

// Earning is the payout breakdown for one delivered assignment
type Earning struct {
	ID           string `json:"id" gorm:"primaryKey"`
	DriverID     string `json:"driver_id" gorm:"index"`
	AssignmentID string `json:"assignment_id" gorm:"uniqueIndex"`
	OrderID      string `json:"order_id"`

	// Breakdown
	RatePerKg         float64 `json:"rate_per_kg"`
	WeightDeliveredKg float64 `json:"weight_delivered_kg"`
	BaseEarning       float64 `json:"base_earning"`

	// Incentives & deductions
	OnTimeBonus           float64 `json:"on_time_bonus" gorm:"default:0"`
	LateDeliveryDeduction float64 `json:"late_delivery_deduction" gorm:"default:0"`

	TotalEarning float64 `json:"total_earning"`

	Status string `json:"status" gorm:"default:pending"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// CalculateTotal computes and stores the total payout
func (e *Earning) CalculateTotal() float64 {
	e.TotalEarning = e.BaseEarning + e.OnTimeBonus - e.LateDeliveryDeduction
	return e.TotalEarning
}
