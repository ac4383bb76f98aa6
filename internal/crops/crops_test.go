package crops

import (
	"testing"

	"github.com/talgya/tradewinds/internal/entropy"
)

func TestStocksNeverNegative(t *testing.T) {
	m := NewManager(entropy.NewSource(7))
	for year := 0; year < 3; year++ {
		for week := 1; week <= 52; week++ {
			for _, k := range m.Keys() {
				stocks := m.UpdateCycle(k.Region, k.Commodity, week, 1.0)
				if stocks < 0 {
					t.Fatalf("negative stocks for %s/%s at year %d week %d: %d",
						k.Region, k.Commodity, year, week, stocks)
				}
			}
		}
	}
}

func TestHarvestAddsStocks(t *testing.T) {
	m := NewManager(entropy.NewSource(7))
	c := m.Cycle(Ukraine, Corn)
	c.CurrentStocks = 1_000_000
	c.HarvestProgress = 0

	// Mid-harvest week for Ukraine corn (harvest weeks 36-44).
	before := c.CurrentStocks
	m.UpdateCycle(Ukraine, Corn, 40, 1.0)
	if c.CurrentStocks <= before {
		t.Errorf("expected harvest intake to outpace consumption mid-harvest: before=%d after=%d",
			before, c.CurrentStocks)
	}
	if c.HarvestProgress <= 0 {
		t.Errorf("harvest progress did not advance: %f", c.HarvestProgress)
	}
}

func TestPlantingResetsProduction(t *testing.T) {
	m := NewManager(entropy.NewSource(7))
	c := m.Cycle(Russia, Wheat)
	c.HarvestProgress = 1.0

	m.UpdateCycle(Russia, Wheat, c.Planting.Start, 0.9)
	if c.HarvestProgress != 0 {
		t.Errorf("harvest progress not reset at plant start: %f", c.HarvestProgress)
	}
	want := int(float64(c.BaseProduction) * 0.9)
	if c.CurrentProduction != want {
		t.Errorf("production = %d, want %d (weather-scaled)", c.CurrentProduction, want)
	}
}

func TestPriceFactorStockTiers(t *testing.T) {
	cases := []struct {
		name     string
		stockPct float64
		want     float64
	}{
		{"severe shortage", 0.05, 1.35},
		{"moderate shortage", 0.15, 1.15},
		{"surplus", 0.95, 0.85},
		{"moderate surplus", 0.85, 0.95},
		{"normal", 0.50, 1.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewManager(entropy.NewSource(7))
			c := m.Cycle(Argentina, Corn)
			c.CurrentStocks = int(float64(c.BaseProduction) * tc.stockPct)

			// Week 30 is outside Argentina corn's planting (36-44),
			// harvest (9-24), and pre-harvest windows, so only the
			// stock tier and export premium apply.
			got := m.PriceFactor(Argentina, Corn, 30)
			exportIntensity := min(1.0, float64(c.ExportCapacity)/52/float64(c.CurrentStocks))
			want := tc.want * (1.0 + exportIntensity*0.05)
			if diff := got - want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("PriceFactor = %f, want %f", got, want)
			}
		})
	}
}

func TestExportAvailabilityThresholds(t *testing.T) {
	m := NewManager(entropy.NewSource(7))
	c := m.Cycle(France, Wheat)
	weekly := float64(c.YearlyConsumption) / 52

	c.CurrentStocks = int(weekly * 2)
	if got := m.ExportAvailability(France, Wheat); got != 0 {
		t.Errorf("under 4 weeks coverage: availability = %f, want 0", got)
	}
	c.CurrentStocks = int(weekly * 6)
	if got := m.ExportAvailability(France, Wheat); got != 0.5 {
		t.Errorf("4-8 weeks coverage: availability = %f, want 0.5", got)
	}
	c.CurrentStocks = int(weekly * 20)
	if got := m.ExportAvailability(France, Wheat); got != 1.0 {
		t.Errorf("over 8 weeks coverage: availability = %f, want 1.0", got)
	}
}

func TestUnknownPairingIsNeutral(t *testing.T) {
	m := NewManager(entropy.NewSource(7))
	if got := m.PriceFactor(France, Soybean, 10); got != 1.0 {
		t.Errorf("unknown pairing price factor = %f, want 1.0", got)
	}
	if got := m.UpdateCycle(France, Soybean, 10, 1.0); got != -1 {
		t.Errorf("unknown pairing update = %d, want -1", got)
	}
	if s := m.MarketSignals(France, Soybean, 10); s != nil {
		t.Errorf("unknown pairing signals = %+v, want nil", s)
	}
	if got := m.StockPercentage(France, Soybean); got != 0 {
		t.Errorf("unknown pairing stock pct = %f, want 0", got)
	}
}

func TestMarketSignalsCategories(t *testing.T) {
	m := NewManager(entropy.NewSource(7))
	c := m.Cycle(Russia, Wheat)

	c.CurrentStocks = int(float64(c.BaseProduction) * 0.05)
	s := m.MarketSignals(Russia, Wheat, 38) // planting window
	if s.Stock != StockCriticallyLow {
		t.Errorf("stock signal = %s, want %s", s.Stock, StockCriticallyLow)
	}
	if s.Seasonal != SeasonPlanting {
		t.Errorf("seasonal signal = %s, want %s", s.Seasonal, SeasonPlanting)
	}

	c.CurrentStocks = int(float64(c.BaseProduction) * 0.9)
	s = m.MarketSignals(Russia, Wheat, 25) // pre-harvest (harvest starts 27)
	if s.Stock != StockSurplus {
		t.Errorf("stock signal = %s, want %s", s.Stock, StockSurplus)
	}
	if s.Seasonal != SeasonPreHarvest {
		t.Errorf("seasonal signal = %s, want %s", s.Seasonal, SeasonPreHarvest)
	}
	if s.Export != ExportAvailable {
		t.Errorf("export signal = %s, want %s", s.Export, ExportAvailable)
	}
}
