package pricing

import (
	"math"
	"testing"

	"fleetops/config"
)

func testCalc() *Calculator {
	return NewCalculator(config.Defaults().Pricing)
}

func TestHaversine(t *testing.T) {
	// Moscow to Saint Petersburg, roughly 634 km.
	d := Haversine(55.7558, 37.6173, 59.9311, 30.3609)
	if math.Abs(d-634) > 5 {
		t.Errorf("distance = %f, want ~634", d)
	}

	// Zero distance for identical points.
	if d := Haversine(55.75, 37.61, 55.75, 37.61); d != 0 {
		t.Errorf("same-point distance = %f, want 0", d)
	}
}

func TestQuoteDistance(t *testing.T) {
	c := testCalc()

	// 500 + 40*10 + 10*100 = 1900, already a multiple of 10.
	q := c.QuoteDistance(10, 100, 0)
	if q.Price != 1900 {
		t.Errorf("price = %f, want 1900", q.Price)
	}
	if q.ChargeableWeight != 100 {
		t.Errorf("chargeable = %f, want 100", q.ChargeableWeight)
	}
}

func TestQuoteRoundsUpToTen(t *testing.T) {
	c := testCalc()

	// 500 + 40*0.1 + 10*1 = 514 -> 520.
	q := c.QuoteDistance(0.1, 1, 0)
	if q.Price != 520 {
		t.Errorf("price = %f, want 520", q.Price)
	}
}

func TestQuoteVolumetricWeightWins(t *testing.T) {
	c := testCalc()

	// 0.5 m3 -> 500000 cm3 / 5000 = 100 kg volumetric, beats 20 kg actual.
	q := c.QuoteDistance(10, 20, 0.5)
	if q.ChargeableWeight != 100 {
		t.Errorf("chargeable = %f, want 100 (volumetric)", q.ChargeableWeight)
	}
	if q.Price != 1900 {
		t.Errorf("price = %f, want 1900", q.Price)
	}
}

func TestQuoteActualWeightWins(t *testing.T) {
	c := testCalc()

	// 0.1 m3 -> 20 kg volumetric, actual 150 kg wins.
	q := c.QuoteDistance(0, 150, 0.1)
	if q.ChargeableWeight != 150 {
		t.Errorf("chargeable = %f, want 150 (actual)", q.ChargeableWeight)
	}
}

func TestQuoteRoute(t *testing.T) {
	c := testCalc()

	q := c.QuoteRoute(55.7558, 37.6173, 59.9311, 30.3609, 50, 0)
	if math.Abs(q.DistanceKm-634) > 5 {
		t.Errorf("distance = %f, want ~634", q.DistanceKm)
	}
	if math.Mod(q.Price, 10) != 0 {
		t.Errorf("price = %f, want multiple of 10", q.Price)
	}
	if q.Price <= 500 {
		t.Errorf("price = %f, should exceed the base price", q.Price)
	}
}
