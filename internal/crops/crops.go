// Package crops tracks planting, harvest, and stock cycles for each
// producing (region, commodity) pair and turns stock levels into price
// pressure for the physical markets.
package crops

import (
	"math"

	"github.com/talgya/tradewinds/internal/entropy"
)

// Cycle is the live state of one crop in one region.
type Cycle struct {
	Region              Region
	Commodity           Commodity
	Planting            weekRange
	Harvest             weekRange
	BaseProduction      int
	DomesticConsumption int
	ExportCapacity      int

	CurrentProduction int
	HarvestProgress   float64
	CurrentStocks     int
	YearlyConsumption int
}

// Key identifies a cycle.
type Key struct {
	Region    Region
	Commodity Commodity
}

// StockSignal categorizes the current stock level.
type StockSignal string

const (
	StockCriticallyLow StockSignal = "CRITICALLY_LOW"
	StockLow           StockSignal = "LOW"
	StockNormal        StockSignal = "NORMAL"
	StockHigh          StockSignal = "HIGH"
	StockSurplus       StockSignal = "SURPLUS"
)

// SeasonSignal names the phase of the crop calendar.
type SeasonSignal string

const (
	SeasonPlanting    SeasonSignal = "PLANTING"
	SeasonPreHarvest  SeasonSignal = "PRE_HARVEST"
	SeasonHarvest     SeasonSignal = "HARVEST"
	SeasonInterSeason SeasonSignal = "INTER_SEASON"
)

// ExportSignal summarizes export availability.
type ExportSignal string

const (
	ExportAvailable  ExportSignal = "AVAILABLE"
	ExportLimited    ExportSignal = "LIMITED"
	ExportRestricted ExportSignal = "RESTRICTED"
)

// StockTrend describes the stock trajectory in weeks of coverage.
type StockTrend string

const (
	TrendDeclining StockTrend = "DECLINING"
	TrendStable    StockTrend = "STABLE"
	TrendBuilding  StockTrend = "BUILDING"
)

// Status is a point-in-time view of a cycle.
type Status struct {
	CurrentStocks         int     `json:"current_stocks"`
	StockPercentage       float64 `json:"stock_percentage"`
	HarvestProgress       float64 `json:"harvest_progress"`
	PlantingProgress      float64 `json:"planting_progress"`
	InPlanting            bool    `json:"in_planting"`
	InHarvest             bool    `json:"in_harvest"`
	WeeksToHarvest        int     `json:"weeks_to_harvest"`
	WeeksToPlanting       int     `json:"weeks_to_planting"`
	ExportAvailability    float64 `json:"export_availability"`
	CurrentProduction     int     `json:"current_production"`
	ProjectedEndingStocks int     `json:"projected_ending_stocks"`
}

// Signals packages the trading-relevant reads on a cycle.
type Signals struct {
	Stock                 StockSignal  `json:"stock_signal"`
	Seasonal              SeasonSignal `json:"seasonal_signal"`
	Export                ExportSignal `json:"export_signal"`
	PriceFactor           float64      `json:"price_factor"`
	ProjectedEndingStocks int          `json:"projected_ending_stocks"`
	CurrentStocks         int          `json:"current_stocks"`
	Trend                 StockTrend   `json:"stock_trend"`
}

// Manager owns every cycle.
type Manager struct {
	cycles map[Key]*Cycle
}

// NewManager builds all cycles and seeds starting stocks. Runs begin in
// week 1; crops whose harvest is still ahead start with thin stocks,
// those already in or past harvest start fuller.
func NewManager(rng *entropy.Source) *Manager {
	m := &Manager{cycles: make(map[Key]*Cycle)}
	for _, def := range cycleDefs {
		c := &Cycle{
			Region:              def.Region,
			Commodity:           def.Commodity,
			Planting:            def.Planting,
			Harvest:             def.Harvest,
			BaseProduction:      def.BaseProduction,
			DomesticConsumption: def.DomesticConsumption,
			ExportCapacity:      def.ExportCapacity,
			CurrentProduction:   def.BaseProduction,
			YearlyConsumption:   def.DomesticConsumption,
		}
		pct := rng.Uniform(0.2, 0.3)
		if c.Harvest.Start <= 1 {
			pct = rng.Uniform(0.4, 0.5)
		}
		c.CurrentStocks = int(float64(c.BaseProduction) * pct)
		m.cycles[Key{def.Region, def.Commodity}] = c
	}
	return m
}

// Cycle returns the live cycle for a pairing, or nil if none exists.
func (m *Manager) Cycle(region Region, commodity Commodity) *Cycle {
	return m.cycles[Key{region, commodity}]
}

// Keys returns every (region, commodity) pairing with a cycle.
func (m *Manager) Keys() []Key {
	out := make([]Key, 0, len(m.cycles))
	for _, def := range cycleDefs {
		out = append(out, Key{def.Region, def.Commodity})
	}
	return out
}

// UpdateCycle advances one cycle by a week: production resets at plant
// start (scaled by weather), harvest lands on a bell curve, consumption
// breathes with the season, and exports drain surplus stocks. Returns the
// resulting stock level, or -1 for an unknown pairing.
func (m *Manager) UpdateCycle(region Region, commodity Commodity, week int, weatherFactor float64) int {
	c := m.cycles[Key{region, commodity}]
	if c == nil {
		return -1
	}

	if week == c.Planting.Start {
		c.CurrentProduction = int(float64(c.BaseProduction) * weatherFactor)
		c.HarvestProgress = 0
	}

	if c.Harvest.contains(week) {
		totalWeeks := float64(c.Harvest.End - c.Harvest.Start + 1)
		weeklyProgress := 1.0 / totalWeeks
		c.HarvestProgress = math.Min(1.0, c.HarvestProgress+weeklyProgress)

		// Intake peaks mid-harvest.
		weekIn := float64(week - c.Harvest.Start)
		intensity := math.Exp(-0.5 * math.Pow((weekIn-totalWeeks/2)/(totalWeeks/4), 2))
		c.CurrentStocks += int(float64(c.CurrentProduction) * weeklyProgress * intensity)
	}

	seasonFactor := 1.0 + 0.2*math.Sin(2*math.Pi*float64(week)/52)
	weeklyConsumption := int(float64(c.YearlyConsumption) / 52 * seasonFactor)
	c.CurrentStocks = max(0, c.CurrentStocks-weeklyConsumption)

	// Exports only run when stocks cover at least a month of consumption.
	if c.CurrentStocks > weeklyConsumption*4 {
		weeklyExport := float64(c.ExportCapacity) / 52
		potential := math.Min(weeklyExport, float64(c.CurrentStocks)*0.1)
		c.CurrentStocks = max(0, c.CurrentStocks-int(potential))
	}

	return c.CurrentStocks
}

// StockPercentage returns current stocks as a fraction of base annual
// production, 0 for an unknown pairing.
func (m *Manager) StockPercentage(region Region, commodity Commodity) float64 {
	c := m.cycles[Key{region, commodity}]
	if c == nil || c.BaseProduction <= 0 {
		return 0
	}
	return float64(c.CurrentStocks) / float64(c.BaseProduction)
}

// HarvestProgress returns harvest completion in [0, 1].
func (m *Manager) HarvestProgress(region Region, commodity Commodity) float64 {
	if c := m.cycles[Key{region, commodity}]; c != nil {
		return c.HarvestProgress
	}
	return 0
}

// PriceFactor converts stock level, crop calendar, and export intensity
// into a multiplier on price moves. 1.0 for an unknown pairing.
func (m *Manager) PriceFactor(region Region, commodity Commodity, week int) float64 {
	c := m.cycles[Key{region, commodity}]
	if c == nil {
		return 1.0
	}

	stockPct := m.StockPercentage(region, commodity)
	var factor float64
	switch {
	case stockPct < 0.10:
		factor = 1.35
	case stockPct < 0.20:
		factor = 1.15
	case stockPct > 0.90:
		factor = 0.85
	case stockPct > 0.80:
		factor = 0.95
	default:
		factor = 1.0
	}

	seasonal := 1.0
	switch {
	case c.Planting.contains(week):
		seasonal = 1.05
	case c.Harvest.Start-4 <= week && week <= c.Harvest.Start:
		seasonal = 1.08
	case c.Harvest.contains(week):
		seasonal = 0.95
	}

	exportIntensity := 0.0
	if c.CurrentStocks > 0 {
		exportIntensity = math.Min(1.0, float64(c.ExportCapacity)/52/float64(c.CurrentStocks))
	}
	exportFactor := 1.0 + exportIntensity*0.05

	return factor * seasonal * exportFactor
}

// ExportAvailability returns the fraction of export capacity usable given
// stock coverage: none below four weeks, half below eight, otherwise full.
func (m *Manager) ExportAvailability(region Region, commodity Commodity) float64 {
	c := m.cycles[Key{region, commodity}]
	if c == nil || c.CurrentStocks <= 0 {
		return 0
	}
	weeklyConsumption := float64(c.YearlyConsumption) / 52
	coverage := float64(c.CurrentStocks) / weeklyConsumption
	switch {
	case coverage < 4:
		return 0
	case coverage < 8:
		return 0.5
	default:
		return 1.0
	}
}

// CycleStatus returns the full status view, or nil for an unknown pairing.
func (m *Manager) CycleStatus(region Region, commodity Commodity, week int) *Status {
	c := m.cycles[Key{region, commodity}]
	if c == nil {
		return nil
	}

	inPlanting := c.Planting.contains(week)
	inHarvest := c.Harvest.contains(week)

	s := &Status{
		CurrentStocks:         c.CurrentStocks,
		StockPercentage:       m.StockPercentage(region, commodity),
		ExportAvailability:    m.ExportAvailability(region, commodity),
		CurrentProduction:     c.CurrentProduction,
		InPlanting:            inPlanting,
		InHarvest:             inHarvest,
		ProjectedEndingStocks: m.projectEndingStocks(c, week),
	}
	if inHarvest {
		s.HarvestProgress = c.HarvestProgress
	} else {
		s.WeeksToHarvest = ((c.Harvest.Start - week) % 52 + 52) % 52
	}
	if inPlanting {
		if span := c.Planting.End - c.Planting.Start; span > 0 {
			s.PlantingProgress = float64(week-c.Planting.Start) / float64(span)
		}
	} else {
		s.WeeksToPlanting = ((c.Planting.Start - week) % 52 + 52) % 52
	}
	return s
}

func (m *Manager) projectEndingStocks(c *Cycle, week int) int {
	weeksRemaining := float64(52 - week)
	weeklyConsumption := float64(c.YearlyConsumption) / 52
	remainingConsumption := weeklyConsumption * weeksRemaining

	var remainingHarvest float64
	switch {
	case c.Harvest.contains(week):
		remainingHarvest = float64(c.CurrentProduction) * (1 - c.HarvestProgress)
	case week < c.Harvest.Start:
		remainingHarvest = float64(c.CurrentProduction)
	}

	projected := float64(c.CurrentStocks) + remainingHarvest -
		remainingConsumption - float64(c.ExportCapacity)/52*weeksRemaining
	return max(0, int(projected))
}

// MarketSignals returns the categorical trading signals for a pairing, or
// nil if it is unknown.
func (m *Manager) MarketSignals(region Region, commodity Commodity, week int) *Signals {
	c := m.cycles[Key{region, commodity}]
	if c == nil {
		return nil
	}
	status := m.CycleStatus(region, commodity, week)

	var stock StockSignal
	switch pct := status.StockPercentage; {
	case pct < 0.15:
		stock = StockCriticallyLow
	case pct < 0.25:
		stock = StockLow
	case pct > 0.85:
		stock = StockSurplus
	case pct > 0.75:
		stock = StockHigh
	default:
		stock = StockNormal
	}

	var seasonal SeasonSignal
	switch {
	case c.Planting.contains(week):
		seasonal = SeasonPlanting
	case c.Harvest.contains(week):
		seasonal = SeasonHarvest
	case c.Harvest.Start-4 <= week && week < c.Harvest.Start:
		seasonal = SeasonPreHarvest
	default:
		seasonal = SeasonInterSeason
	}

	export := ExportRestricted
	switch {
	case status.ExportAvailability > 0.8:
		export = ExportAvailable
	case status.ExportAvailability > 0.3:
		export = ExportLimited
	}

	trend := TrendBuilding
	switch {
	case c.CurrentStocks < c.YearlyConsumption/12:
		trend = TrendDeclining
	case c.CurrentStocks < c.YearlyConsumption/6:
		trend = TrendStable
	}

	return &Signals{
		Stock:                 stock,
		Seasonal:              seasonal,
		Export:                export,
		PriceFactor:           m.PriceFactor(region, commodity, week),
		ProjectedEndingStocks: status.ProjectedEndingStocks,
		CurrentStocks:         status.CurrentStocks,
		Trend:                 trend,
	}
}
