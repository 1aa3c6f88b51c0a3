package database

import (
	"log"

	"github.com/freshconnect/logistics-backend/internal/models"
	"github.com/freshconnect/logistics-backend/internal/storage"
)

type areaSeed struct {
	name       string
	ratePerKg  float64
	multiplier float64
	minCharge  float64
	minutes    int
}

var areaSeeds = []areaSeed{
	{"North Koyambedu", 10.0, 1.1, 50.0, 45},
	{"South Koyambedu", 10.0, 1.15, 50.0, 50},
	{"Central Koyambedu", 10.0, 1.0, 50.0, 30},
	{"East Koyambedu", 10.0, 1.2, 50.0, 60},
	{"West Koyambedu", 10.0, 1.05, 50.0, 40},
	{"Anna Nagar", 10.0, 1.25, 50.0, 55},
	{"T Nagar", 10.0, 1.3, 50.0, 60},
	{"Porur", 10.0, 1.15, 50.0, 50},
	{"Vadapalani", 10.0, 1.2, 50.0, 55},
	{"Ambattur", 10.0, 1.35, 50.0, 70},
}

var driverSeeds = []models.DriverRegistration{
	{Name: "Ravi Kumar", Phone: "+919876543210", VehicleType: "van", VehicleRegistration: "TN09AB1234", CapacityKg: 100, ParkingLocation: "North Koyambedu"},
	{Name: "Suresh Babu", Phone: "+919876543211", VehicleType: "auto", VehicleRegistration: "TN09CD5678", CapacityKg: 50, ParkingLocation: "Central Koyambedu"},
	{Name: "Mani Vel", Phone: "+919876543212", VehicleType: "truck", VehicleRegistration: "TN09EF9012", CapacityKg: 250, ParkingLocation: "South Koyambedu"},
	{Name: "Karthik Raja", Phone: "+919876543213", VehicleType: "motorcycle", VehicleRegistration: "TN09GH3456", CapacityKg: 25, ParkingLocation: "Anna Nagar"},
}

// Seed populates area pricing and a demo driver roster. Existing rows are
// left untouched, so it is safe to run on every boot.
func Seed(store storage.Store) {
	log.Println("🌱 Seeding logistics configuration...")

	for _, a := range areaSeeds {
		if _, err := store.GetAreaPricing(a.name); err == nil {
			continue
		}
		area := &models.AreaPricing{
			AreaName:            a.name,
			BaseRatePerKg:       a.ratePerKg,
			AreaMultiplier:      a.multiplier,
			MinimumCharge:       a.minCharge,
			DeliveryTimeMinutes: a.minutes,
			IsActive:            true,
		}
		if err := store.UpsertAreaPricing(area); err != nil {
			log.Printf("Failed to seed area %s: %v", a.name, err)
			continue
		}
		log.Printf("  + %s: ₹%.0f/kg × %.2f, min ₹%.0f, %dmin", a.name, a.ratePerKg, a.multiplier, a.minCharge, a.minutes)
	}

	for _, reg := range driverSeeds {
		if _, err := store.GetDriverByPhone(reg.Phone); err == nil {
			continue
		}
		driver, err := store.CreateDriver(&reg)
		if err != nil {
			log.Printf("Failed to seed driver %s: %v", reg.Name, err)
			continue
		}
		// Seeded drivers start ready for work
		if err := store.UpdateDriverStatus(driver.DriverID, models.DriverStatusAvailable); err != nil {
			log.Printf("Failed to activate seeded driver %s: %v", driver.DriverID, err)
		}
	}

	log.Println("✅ Seeding completed!")
}
