package services

import (
	"errors"
	"log"

	"github.com/freshconnect/logistics-backend/internal/models"
)

// DefaultAreaName is used when the requested delivery area has no pricing row
const DefaultAreaName = "Central Koyambedu"

// Hardcoded fallbacks when even the default area is missing
const (
	fallbackRatePerKg       = 10.0
	fallbackMultiplier      = 1.0
	fallbackMinimumCharge   = 50.0
	fallbackDeliveryMinutes = 45
)

// CostBreakdown is the computed logistics cost for one order
type CostBreakdown struct {
	BaseCost            float64 `json:"base_cost"`
	TotalCost           float64 `json:"total_cost"`
	WeightKg            float64 `json:"weight_kg"`
	RatePerKg           float64 `json:"rate_per_kg"`
	AreaMultiplier      float64 `json:"area_multiplier"`
	DeliveryTimeMinutes int     `json:"delivery_time_minutes"`
}

// CalculateDeliveryCost computes the delivery cost for a weight and area.
// Missing area pricing falls back to the default area, then to hardcoded
// defaults, so assignment never fails on configuration alone.
func (s *DeliveryService) CalculateDeliveryCost(weightKg float64, deliveryArea string) *CostBreakdown {
	area, err := s.store.GetAreaPricing(deliveryArea)
	if err != nil && errors.Is(err, models.ErrAreaNotFound) {
		area, err = s.store.GetAreaPricing(DefaultAreaName)
	}
	if err != nil {
		log.Printf("No pricing configured for area %q, using defaults", deliveryArea)
		baseCost := weightKg * fallbackRatePerKg
		totalCost := baseCost
		if totalCost < fallbackMinimumCharge {
			totalCost = fallbackMinimumCharge
		}
		return &CostBreakdown{
			BaseCost:            baseCost,
			TotalCost:           totalCost,
			WeightKg:            weightKg,
			RatePerKg:           fallbackRatePerKg,
			AreaMultiplier:      fallbackMultiplier,
			DeliveryTimeMinutes: fallbackDeliveryMinutes,
		}
	}

	baseCost := area.BaseRatePerKg * weightKg * area.AreaMultiplier
	return &CostBreakdown{
		BaseCost:            baseCost,
		TotalCost:           area.CalculateCost(weightKg),
		WeightKg:            weightKg,
		RatePerKg:           area.BaseRatePerKg,
		AreaMultiplier:      area.AreaMultiplier,
		DeliveryTimeMinutes: area.DeliveryTimeMinutes,
	}
}
