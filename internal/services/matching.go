package services

import (
	"github.com/freshconnect/logistics-backend/internal/models"
)

// Fitness score component weights:
// vehicle capacity match 30, location proximity 25, rating 25, load optimization 20.
const (
	capacityWeightMax = 30.0
	locationWeightMax = 25.0
	ratingWeightMax   = 25.0
	loadWeightMax     = 20.0
)

// FitnessScore rates how well a driver fits an order, 0-100.
// Returns ok=false when the driver cannot carry the order weight at all.
func FitnessScore(driver *models.Driver, orderWeightKg float64, deliveryArea string) (float64, bool) {
	availableCapacity := driver.AvailableCapacity()
	if availableCapacity < orderWeightKg {
		return 0, false
	}

	// Capacity utilization after taking this order
	utilization := (driver.CapacityKg - availableCapacity + orderWeightKg) / driver.CapacityKg
	capacityScore := utilization * capacityWeightMax

	// Location proximity: same area > same zone (shared 5-char prefix) > rest
	var locationScore float64
	switch {
	case driver.ParkingLocation == deliveryArea:
		locationScore = 25
	case driver.ParkingLocation != "" && deliveryArea != "" && zonePrefix(driver.ParkingLocation) == zonePrefix(deliveryArea):
		locationScore = 20
	default:
		locationScore = 10
	}

	// Rating; unrated drivers get a neutral score
	ratingScore := 15.0
	if driver.Rating > 0 {
		ratingScore = (driver.Rating / 5.0) * ratingWeightMax
	}

	// Load optimization: reward utilization that keeps the vehicle well used
	// without maxing it out
	var loadScore float64
	switch {
	case utilization >= 0.7 && utilization <= 0.9:
		loadScore = 20
	case (utilization >= 0.5 && utilization < 0.7) || (utilization > 0.9 && utilization <= 1.0):
		loadScore = 15
	default:
		loadScore = 10
	}

	total := capacityScore + locationScore + ratingScore + loadScore
	if total > 100 {
		total = 100
	}
	return total, true
}

// zonePrefix is the first five characters of an area name, not bytes, so
// non-ASCII area names compare whole runes.
func zonePrefix(s string) string {
	runes := []rune(s)
	if len(runes) > 5 {
		return string(runes[:5])
	}
	return s
}

// FindBestDriver scores every eligible driver and returns the best fit.
// Earlier-registered drivers win ties, so selection is deterministic.
func (s *DeliveryService) FindBestDriver(orderWeightKg float64, deliveryArea string) (*models.Driver, float64, error) {
	drivers, err := s.store.GetEligibleDrivers()
	if err != nil {
		return nil, 0, err
	}
	if len(drivers) == 0 {
		return nil, 0, models.ErrNoDriversAvailable
	}

	var best *models.Driver
	var bestScore float64
	for _, driver := range drivers {
		score, ok := FitnessScore(driver, orderWeightKg, deliveryArea)
		if !ok {
			continue
		}
		if best == nil || score > bestScore {
			best = driver
			bestScore = score
		}
	}

	if best == nil {
		return nil, 0, models.ErrInsufficientCapacity
	}
	return best, bestScore, nil
}
