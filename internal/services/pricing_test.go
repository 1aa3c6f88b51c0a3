package services

import (
	"testing"

	"github.com/freshconnect/logistics-backend/internal/models"
	"github.com/freshconnect/logistics-backend/internal/storage"
)

func seedArea(t *testing.T, store storage.Store, area models.AreaPricing) {
	t.Helper()
	if err := store.UpsertAreaPricing(&area); err != nil {
		t.Fatalf("failed to seed area %s: %v", area.AreaName, err)
	}
}

func TestCalculateDeliveryCostAppliesMultiplier(t *testing.T) {
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

	cost := svc.CalculateDeliveryCost(10, "North Koyambedu")
	if cost.TotalCost != 110 {
		t.Fatalf("expected total 110, got %.2f", cost.TotalCost)
	}
	if cost.BaseCost != 110 {
		t.Fatalf("expected base 110, got %.2f", cost.BaseCost)
	}
	if cost.DeliveryTimeMinutes != 45 {
		t.Fatalf("expected 45 delivery minutes, got %d", cost.DeliveryTimeMinutes)
	}
}

func TestCalculateDeliveryCostEnforcesMinimumCharge(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewDeliveryService(store, nil)

	seedArea(t, store, models.AreaPricing{
		AreaName:            "Central Koyambedu",
		BaseRatePerKg:       10,
		AreaMultiplier:      1.0,
		MinimumCharge:       50,
		DeliveryTimeMinutes: 30,
		IsActive:            true,
	})

	// 2kg * 10 * 1.0 = 20, below the 50 minimum
	cost := svc.CalculateDeliveryCost(2, "Central Koyambedu")
	if cost.BaseCost != 20 {
		t.Fatalf("expected base 20, got %.2f", cost.BaseCost)
	}
	if cost.TotalCost != 50 {
		t.Fatalf("expected minimum charge 50, got %.2f", cost.TotalCost)
	}
}

func TestCalculateDeliveryCostFallsBackToDefaultArea(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewDeliveryService(store, nil)

	seedArea(t, store, models.AreaPricing{
		AreaName:            DefaultAreaName,
		BaseRatePerKg:       10,
		AreaMultiplier:      1.0,
		MinimumCharge:       50,
		DeliveryTimeMinutes: 30,
		IsActive:            true,
	})

	cost := svc.CalculateDeliveryCost(20, "Nowhere Special")
	if cost.TotalCost != 200 {
		t.Fatalf("expected default-area pricing 200, got %.2f", cost.TotalCost)
	}
	if cost.DeliveryTimeMinutes != 30 {
		t.Fatalf("expected default-area delivery minutes 30, got %d", cost.DeliveryTimeMinutes)
	}
}

func TestCalculateDeliveryCostHardcodedFallback(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewDeliveryService(store, nil)

	// No area pricing at all
	cost := svc.CalculateDeliveryCost(3, "Anywhere")
	if cost.RatePerKg != fallbackRatePerKg {
		t.Fatalf("expected fallback rate %.1f, got %.2f", fallbackRatePerKg, cost.RatePerKg)
	}
	if cost.TotalCost != fallbackMinimumCharge {
		t.Fatalf("expected fallback minimum %.1f, got %.2f", fallbackMinimumCharge, cost.TotalCost)
	}
	if cost.DeliveryTimeMinutes != fallbackDeliveryMinutes {
		t.Fatalf("expected fallback minutes %d, got %d", fallbackDeliveryMinutes, cost.DeliveryTimeMinutes)
	}
}
