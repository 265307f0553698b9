package domain

import "math"

// Collection names accepted by EstimatedCount.
const (
	CollectionUsers     = "users"
	CollectionMenuItems = "menu_items"
	CollectionOrders    = "orders"
)

// RevenueSummary is the admin dashboard headline. Counts may be approximate; Revenue is exact.
type RevenueSummary struct {
	Revenue  float64 `json:"revenue"`
	Users    int64   `json:"users"`
	Products int64   `json:"menuItems"`
	Orders   int64   `json:"orders"`
}

// CategoryTotal is the number of ordered line items and their summed price for one menu category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Count    int64   `json:"quantity"`
	Total    float64 `json:"revenue"`
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}
