package market

import (
	"testing"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/entropy"
	"github.com/talgya/tradewinds/internal/event"
	"github.com/talgya/tradewinds/internal/freight"
)

func newTestMarket(seed int64) (*Market, *crops.Manager) {
	rng := entropy.NewSource(seed)
	cropMgr := crops.NewManager(rng)
	calc := freight.NewCalculator(rng)
	return New(rng, cropMgr, calc, event.NewRecorder()), cropMgr
}

func advance(m *Market, cropMgr *crops.Manager, weeks int) {
	for i := 0; i < weeks; i++ {
		for _, k := range cropMgr.Keys() {
			cropMgr.UpdateCycle(k.Region, k.Commodity, m.Week(), 1.0)
		}
		m.UpdateWeek()
		m.AdvanceCalendar()
	}
}

func TestQuoteSymmetry(t *testing.T) {
	m, cropMgr := newTestMarket(11)
	advance(m, cropMgr, 120)

	for key, q := range m.fob {
		if q.Quoted {
			if q.Offer <= q.Bid {
				t.Errorf("%v: offer %f not above bid %f", key, q.Offer, q.Bid)
			}
		} else {
			if q.Bid != 0 || q.Offer != 0 {
				t.Errorf("%v: withdrawn quote retains prices bid=%f offer=%f", key, q.Bid, q.Offer)
			}
		}
	}
}

func TestCalendarRollsAtWeek52(t *testing.T) {
	m, cropMgr := newTestMarket(11)
	if m.Week() != 1 || m.Year() != 2024 {
		t.Fatalf("start = week %d year %d, want week 1 year 2024", m.Week(), m.Year())
	}
	advance(m, cropMgr, 52)
	if m.Week() != 1 || m.Year() != 2025 {
		t.Errorf("after 52 weeks = week %d year %d, want week 1 year 2025", m.Week(), m.Year())
	}
}

func TestFreightRatesHaveFloor(t *testing.T) {
	m, cropMgr := newTestMarket(13)
	advance(m, cropMgr, 200)
	for route, classes := range m.freightMkts {
		for class, q := range classes {
			if q.Rate < 25 {
				t.Errorf("%v %s: rate %f below $25 floor", route, class, q.Rate)
			}
		}
	}
}

func TestPortConditionsStayBounded(t *testing.T) {
	m, cropMgr := newTestMarket(17)
	advance(m, cropMgr, 150)
	for name, port := range m.allPorts() {
		if port.CongestionLevel < 0 || port.CongestionLevel > 100 {
			t.Errorf("%s congestion %f outside [0, 100]", name, port.CongestionLevel)
		}
		if port.WeatherDelay < 0 || port.WeatherDelay > 5 {
			t.Errorf("%s weather delay %f outside [0, 5]", name, port.WeatherDelay)
		}
	}
}

func TestLocalConditionsStayBounded(t *testing.T) {
	m, cropMgr := newTestMarket(19)
	advance(m, cropMgr, 150)
	for dest, c := range m.conditions {
		if c < 0.8 || c > 1.2 {
			t.Errorf("%s condition %f outside [0.8, 1.2]", dest, c)
		}
	}
}

func TestDestinationPriceAboveFOB(t *testing.T) {
	m, _ := newTestMarket(23)
	q := m.DestinationPrice(crops.Corn, "SANTOS", "ALGIERS")
	if q == nil {
		t.Fatal("no destination quote for SANTOS corn to ALGIERS")
	}
	fob := m.FOBQuote(crops.Corn, "SANTOS")
	if q.Bid <= fob.Offer {
		t.Errorf("CFR bid %f not above FOB offer %f", q.Bid, fob.Offer)
	}
	if q.Offer <= q.Bid {
		t.Errorf("CFR offer %f not above bid %f", q.Offer, q.Bid)
	}
}

func TestDestinationPriceNilWithoutQuote(t *testing.T) {
	m, _ := newTestMarket(23)
	// PARANAGUA quotes soybeans only.
	if q := m.DestinationPrice(crops.Corn, "PARANAGUA", "ALGIERS"); q != nil {
		t.Errorf("expected nil for unquoted market, got %+v", q)
	}
	m.FOBQuote(crops.Wheat, "ROUEN").Withdraw()
	if q := m.DestinationPrice(crops.Wheat, "ROUEN", "MERSIN"); q != nil {
		t.Errorf("expected nil for withdrawn market, got %+v", q)
	}
}

func TestCompetitiveLandedCap(t *testing.T) {
	m, _ := newTestMarket(29)
	// Inflate ROUEN wheat far above the field; its landed cost must be
	// capped near the cheapest alternative, so the CFR quote cannot be
	// proportionally inflated.
	m.FOBQuote(crops.Wheat, "ROUEN").Set(900, 905)
	expensive := m.DestinationPrice(crops.Wheat, "ROUEN", "ALGIERS")
	cheap := m.DestinationPrice(crops.Wheat, "ODESSA", "ALGIERS")
	if expensive == nil || cheap == nil {
		t.Fatal("missing destination quotes")
	}
	if expensive.Bid > cheap.Bid*1.10 {
		t.Errorf("capped landed cost still produced outsized CFR: %f vs %f", expensive.Bid, cheap.Bid)
	}
}

func TestInventoryTracksStocks(t *testing.T) {
	m, cropMgr := newTestMarket(31)
	cropMgr.Cycle(crops.Ukraine, crops.Corn).CurrentStocks = 0
	m.UpdateWeek()
	q := m.FOBQuote(crops.Corn, "ODESSA")
	if q.Quoted {
		t.Error("ODESSA corn still quoted with zero stocks")
	}
	if q.Inventory != 0 {
		t.Errorf("inventory = %d, want 0", q.Inventory)
	}
}

func TestAverageBid(t *testing.T) {
	m, _ := newTestMarket(37)
	avg, ok := m.AverageBid(crops.Corn)
	if !ok {
		t.Fatal("no average bid for corn")
	}
	// Seven corn markets between 213 and 226 at start.
	if avg < 210 || avg > 230 {
		t.Errorf("corn average bid %f outside plausible band", avg)
	}
}

func TestDeterministicAcrossRuns(t *testing.T) {
	m1, c1 := newTestMarket(99)
	m2, c2 := newTestMarket(99)
	advance(m1, c1, 30)
	advance(m2, c2, 30)
	for key, q1 := range m1.fob {
		q2 := m2.fob[key]
		if q1.Bid != q2.Bid || q1.Offer != q2.Offer || q1.Inventory != q2.Inventory {
			t.Fatalf("%v diverged between identical seeds: %+v vs %+v", key, q1, q2)
		}
	}
}
