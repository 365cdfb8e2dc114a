package pricing

import (
	"math"

	"fleetops/config"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Calculator prices deliveries from a tariff.
type Calculator struct {
	tariff config.PricingConfig
}

// NewCalculator creates a price calculator.
func NewCalculator(tariff config.PricingConfig) *Calculator {
	return &Calculator{tariff: tariff}
}

// Quote is a computed delivery price.
type Quote struct {
	DistanceKm       float64 `json:"distance_km"`
	ChargeableWeight float64 `json:"chargeable_weight"`
	Price            float64 `json:"price"`
}

// Volumetric weight in kg from volume in cubic meters; whichever of actual
// and volumetric weight is larger is charged.
func (c *Calculator) chargeableWeight(weightKg, volumeM3 float64) float64 {
	volumetric := volumeM3 * 1e6 / c.tariff.VolumetricDivisor
	return math.Max(weightKg, volumetric)
}

// QuoteRoute prices a delivery between two coordinates.
func (c *Calculator) QuoteRoute(pickupLat, pickupLng, deliveryLat, deliveryLng, weightKg, volumeM3 float64) Quote {
	dist := Haversine(pickupLat, pickupLng, deliveryLat, deliveryLng)
	return c.QuoteDistance(dist, weightKg, volumeM3)
}

// QuoteDistance prices a delivery over a known distance. The raw price is
// rounded up to the nearest 10.
func (c *Calculator) QuoteDistance(distanceKm, weightKg, volumeM3 float64) Quote {
	w := c.chargeableWeight(weightKg, volumeM3)
	raw := c.tariff.BasePrice + c.tariff.RatePerKm*distanceKm + c.tariff.RatePerKg*w
	return Quote{
		DistanceKm:       distanceKm,
		ChargeableWeight: w,
		Price:            math.Ceil(raw/10) * 10,
	}
}
