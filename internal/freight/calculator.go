// Package freight prices ocean transport for bulk grain. Rates come from
// time-charter economics: vessel hire, bunkers, port costs, and canal
// transits for the round trip, marked up by route demand, season, and a
// size-dependent volatility band.
package freight

import (
	"math"

	"github.com/talgya/tradewinds/internal/entropy"
)

// Canal transit fees per passage, USD.
const (
	suezCost   = 250000
	panamaCost = 200000
)

// Bunker price bounds, USD/MT VLSFO.
const (
	bunkerStart = 650
	bunkerMin   = 500
	bunkerMax   = 800
)

// portHandlingPerMT is the cargo-handling charge per MT at each end.
const portHandlingPerMT = 0.5

// Calculator prices voyages. It carries the simulation week for seasonal
// effects and a per-route demand factor fed back from the market.
type Calculator struct {
	rng         *entropy.Source
	bunkerPrice float64
	week        int
	conditions  map[Route]float64
}

// NewCalculator creates a calculator at the starting bunker price.
func NewCalculator(rng *entropy.Source) *Calculator {
	return &Calculator{
		rng:         rng,
		bunkerPrice: bunkerStart,
		week:        1,
		conditions:  make(map[Route]float64),
	}
}

// SetWeek updates the week used for seasonal rate effects.
func (c *Calculator) SetWeek(week int) {
	c.week = week
}

// SetRouteCondition sets the demand-supply factor for a route.
func (c *Calculator) SetRouteCondition(origin, destination string, factor float64) {
	c.conditions[Route{origin, destination}] = factor
}

// BunkerPrice returns the current fuel price in USD/MT.
func (c *Calculator) BunkerPrice() float64 {
	return c.bunkerPrice
}

// UpdateBunkerPrice walks the fuel price with a $10 standard deviation,
// clamped to the plausible VLSFO band.
func (c *Calculator) UpdateBunkerPrice() {
	c.bunkerPrice += c.rng.Gauss(0, 10)
	c.bunkerPrice = math.Max(bunkerMin, math.Min(bunkerMax, c.bunkerPrice))
}

// Rate returns the market freight rate in USD/MT for carrying a full
// cargo of the given class on the route. The rate never falls below
// voyage cost plus a 5% return.
func (c *Calculator) Rate(origin, destination string, class Class) float64 {
	spec := specs[class]
	distance := Distance(origin, destination)

	sailingDays := distance * 2 / (spec.Speed * 24)
	loadDays := float64(spec.Capacity) / float64(spec.LoadRate)
	dischargeDays := float64(spec.Capacity) / float64(spec.DischargeRate)
	waitingDays := float64(PortDelay(origin) + PortDelay(destination))
	totalDays := sailingDays + (loadDays+dischargeDays+waitingDays)*2

	dailyRate := spec.DailyRateAtl
	if isPacificRoute(origin, destination) {
		dailyRate = spec.DailyRatePac
	}
	charterCost := dailyRate * totalDays
	bunkerCost := spec.Consumption * totalDays * c.bunkerPrice
	portCost := float64(spec.Capacity) * portHandlingPerMT * 2
	canalCost := canalCost(origin, destination) * 2

	costPerMT := (charterCost + bunkerCost + portCost + canalCost) / float64(spec.Capacity)
	baseRate := costPerMT * 1.05

	marketFactor := 1.0
	if f, ok := c.conditions[Route{origin, destination}]; ok {
		marketFactor = f
	}
	seasonFactor := 1.0 + 0.15*math.Sin(2*math.Pi*float64(c.week)/52)

	// Bigger ships trade steadier routes; small tonnage swings harder.
	var volatility, marketPower float64
	switch {
	case spec.Capacity >= 80000:
		volatility, marketPower = 0.15, 0.8
	case spec.Capacity >= 50000:
		volatility, marketPower = 0.20, 0.9
	default:
		volatility, marketPower = 0.25, 1.0
	}

	marketRate := baseRate * marketFactor * seasonFactor
	randomFactor := 1.0 + c.rng.Uniform(-volatility, volatility)*marketPower
	finalRate := math.Round(marketRate*randomFactor*100) / 100

	return math.Max(baseRate, finalRate)
}

// Duration returns the one-way voyage length in days, including loading,
// discharge, and expected port waiting.
func (c *Calculator) Duration(origin, destination string, class Class) int {
	spec := specs[class]
	distance := Distance(origin, destination)
	sailingDays := distance / (spec.Speed * 24)
	loadDays := float64(spec.Capacity) / float64(spec.LoadRate)
	dischargeDays := float64(spec.Capacity) / float64(spec.DischargeRate)
	delays := float64(PortDelay(origin) + PortDelay(destination))
	return int(math.Round(sailingDays + loadDays + dischargeDays + delays))
}

func isPacificRoute(origin, destination string) bool {
	for _, p := range []string{origin, destination} {
		switch p {
		case "NINGBO", "VIETNAM", "PNW":
			return true
		}
	}
	return false
}

func canalCost(origin, destination string) float64 {
	asia := map[string]bool{"NINGBO": true, "VIETNAM": true, "BANDAR_IMAM": true}
	switch region(origin) {
	case "EUROPE_ATL", "BLACK_SEA":
		if asia[destination] {
			return suezCost
		}
	}
	if origin == "PNW" && destination != "NINGBO" && destination != "VIETNAM" {
		return panamaCost
	}
	return 0
}
