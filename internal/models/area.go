package models

import (
	"time"
)

// AreaPricing holds the delivery cost configuration for one delivery area
type AreaPricing struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	AreaName string `json:"area_name" gorm:"uniqueIndex;not null"`

	// Pricing
	BaseRatePerKg  float64 `json:"base_rate_per_kg" gorm:"default:10.0"`
	AreaMultiplier float64 `json:"area_multiplier" gorm:"default:1.0"`
	MinimumCharge  float64 `json:"minimum_charge" gorm:"default:50.0"`

	// Time
	DeliveryTimeMinutes int `json:"delivery_time_minutes" gorm:"default:45"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CalculateCost returns the delivery cost for the given weight,
// never below the area's minimum charge.
func (a *AreaPricing) CalculateCost(weightKg float64) float64 {
	baseCost := a.BaseRatePerKg * weightKg * a.AreaMultiplier
	if baseCost < a.MinimumCharge {
		return a.MinimumCharge
	}
	return baseCost
}
