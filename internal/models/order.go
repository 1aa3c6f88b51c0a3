package models

// Order is the order representation supplied by order-management.
// The logistics core reads it but does not own or persist it.
type Order struct {
	OrderID         string  `json:"order_id"`
	RetailerID      string  `json:"retailer_id"`
	WeightKg        float64 `json:"weight_kg"`
	DeliveryArea    string  `json:"delivery_area"`
	DeliveryAddress string  `json:"delivery_address"`
	PickupLocation  string  `json:"pickup_location"`
}
