// Package market maintains the physical trading surfaces: FOB quotes at
// origin ports, freight quotes per route and vessel class, port operating
// conditions, destination demand, and derived CFR destination pricing.
// The market also owns the simulation calendar.
package market

import (
	"fmt"
	"math"
	"sort"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/entropy"
	"github.com/talgya/tradewinds/internal/event"
	"github.com/talgya/tradewinds/internal/freight"
)

// DestKey identifies a derived destination quote.
type DestKey struct {
	Commodity   crops.Commodity
	Origin      string
	Destination string
}

// DestQuote is a CFR quote for delivering a commodity from an origin to a
// destination market.
type DestQuote struct {
	Bid       float64   `json:"bid"`
	Offer     float64   `json:"offer"`
	BidSize   int       `json:"bid_size"`
	OfferSize int       `json:"offer_size"`
	LastPrice float64   `json:"last_price"`
	Direction Direction `json:"direction"`
}

// Market holds every quoted surface plus the calendar.
type Market struct {
	week int
	year int

	rng      *entropy.Source
	crops    *crops.Manager
	calc     *freight.Calculator
	recorder *event.Recorder

	fob          map[QuoteKey]*Quote
	fobKeys      []QuoteKey // stable iteration order for seeded runs
	freightMkts  map[freight.Route]map[freight.Class]*FreightQuote
	routeKeys    []freight.Route
	origins      map[string]*Port
	destinations map[string]*Port
	conditions   map[string]float64 // local demand factor per destination
	destQuotes   map[DestKey]*DestQuote
}

// New builds the market at week 1 with seeded quotes on every surface.
func New(rng *entropy.Source, cropMgr *crops.Manager, calc *freight.Calculator, recorder *event.Recorder) *Market {
	m := &Market{
		week:         1,
		year:         2024,
		rng:          rng,
		crops:        cropMgr,
		calc:         calc,
		recorder:     recorder,
		fob:          make(map[QuoteKey]*Quote),
		freightMkts:  make(map[freight.Route]map[freight.Class]*FreightQuote),
		origins:      make(map[string]*Port),
		destinations: make(map[string]*Port),
		conditions:   make(map[string]float64),
		destQuotes:   make(map[DestKey]*DestQuote),
	}

	for _, d := range baseFOBList {
		m.fob[d.Key] = &Quote{
			Bid:          d.Bid,
			Offer:        d.Offer,
			Quoted:       true,
			BidSize:      rng.IntBetween(30, 100),
			OfferSize:    rng.IntBetween(30, 100),
			LastPrice:    d.Bid,
			Inventory:    rng.IntBetween(100000, 500000),
			SixMonthHigh: d.Bid,
			SixMonthLow:  d.Bid,
		}
		m.fobKeys = append(m.fobKeys, d.Key)
	}

	for _, d := range originDefs {
		m.origins[d.key] = &Port{Name: d.name, Country: d.country, RiskLevel: d.riskLevel, PaymentDelayDays: d.paymentDelayDays}
	}
	for _, d := range destinationDefs {
		m.destinations[d.key] = &Port{Name: d.name, Country: d.country, RiskLevel: d.riskLevel, PaymentDelayDays: d.paymentDelayDays}
		m.conditions[d.key] = 1.0
	}

	for _, o := range originDefs {
		for _, d := range destinationDefs {
			route := freight.Route{Origin: o.key, Destination: d.key}
			m.freightMkts[route] = make(map[freight.Class]*FreightQuote)
			for _, class := range freight.Classes {
				m.freightMkts[route][class] = &FreightQuote{
					Rate:         calc.Rate(o.key, d.key, class),
					DurationDays: calc.Duration(o.key, d.key, class),
					Class:        class,
					Capacity:     freight.Capacity(class),
				}
			}
			m.routeKeys = append(m.routeKeys, route)
		}
	}

	return m
}

// Week returns the current simulation week, 1-52.
func (m *Market) Week() int { return m.week }

// Year returns the current simulation year.
func (m *Market) Year() int { return m.year }

// AdvanceCalendar moves to the next week, rolling the year after week 52.
// Callers run it after every weekly stage has seen the current week.
func (m *Market) AdvanceCalendar() {
	m.week++
	if m.week > 52 {
		m.week = 1
		m.year++
	}
	m.calc.SetWeek(m.week)
}

// UpdateWeek refreshes every quoted surface for the current week. Crop
// cycles must already have been advanced for this week.
func (m *Market) UpdateWeek() {
	m.updateCommodityMarkets()
	m.updateFreightMarkets()
	m.updatePortConditions()
	m.updateLocalConditions()

	// Refresh cached destination quotes against the new FOB and freight
	// levels, in a stable order since repricing draws randomness.
	keys := make([]DestKey, 0, len(m.destQuotes))
	for key := range m.destQuotes {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Commodity != b.Commodity {
			return a.Commodity < b.Commodity
		}
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		return a.Destination < b.Destination
	})
	for _, key := range keys {
		if q := m.DestinationPrice(key.Commodity, key.Origin, key.Destination); q == nil {
			delete(m.destQuotes, key)
		}
	}

	if m.week%4 == 0 {
		for _, key := range m.fobKeys {
			m.fob[key].Inventory = m.rng.IntBetween(100000, 500000)
		}
	}
}

// updateCommodityMarkets walks FOB prices: one market-wide shock per
// commodity, a seasonal trend, and per-origin noise, all scaled by the
// origin region's crop price factor. Markets with no stocks withdraw.
func (m *Market) updateCommodityMarkets() {
	for _, commodity := range crops.Commodities {
		baseChange := m.rng.Gauss(0, 1.5)
		trend := math.Sin(2*math.Pi*float64(m.week)/52) * 0.5

		for _, key := range m.fobKeys {
			if key.Commodity != commodity {
				continue
			}
			quote := m.fob[key]
			if quote.Quoted {
				quote.LastPrice = quote.Bid
			}

			region, ok := portToRegion[key.Origin]
			if ok {
				priceFactor := m.crops.PriceFactor(region, commodity, m.week)
				stockPct := m.crops.StockPercentage(region, commodity)
				quote.Inventory = int(500000 * stockPct)

				if quote.Inventory > 0 {
					if !quote.Quoted {
						m.reseedQuote(key, quote)
						m.recorder.Emit(m.week, m.year, event.CategoryMarket,
							fmt.Sprintf("%s %s market reopened", key.Origin, commodity))
					}
					localChange := baseChange + m.rng.Gauss(0, 0.5) + trend
					pct := (localChange / 100) * priceFactor
					bid := math.Max(0, quote.Bid*(1+pct))
					quote.Set(bid, bid+m.rng.Uniform(1.0, 3.0))
				} else if quote.Quoted {
					quote.Withdraw()
					m.recorder.Emit(m.week, m.year, event.CategoryMarket,
						fmt.Sprintf("%s %s market withdrawn, no exportable stocks", key.Origin, commodity))
				}
			}
			quote.RecordHistory(m.week)
		}
	}
}

func (m *Market) reseedQuote(key QuoteKey, quote *Quote) {
	if prices, ok := baseFOB[key]; ok {
		quote.Set(prices[0], prices[1])
		return
	}
	prices := fallbackFOB[key.Commodity]
	quote.Set(prices[0], prices[1])
}

// updateFreightMarkets walks freight rates with a market-wide component,
// per-route noise, and seasonal amplification, floored at $25/MT.
func (m *Market) updateFreightMarkets() {
	m.calc.UpdateBunkerPrice()
	baseChange := m.rng.Gauss(0, 0.3)
	seasonFactor := 1 + 0.5*math.Sin(2*math.Pi*float64(m.week)/52)

	const minRate = 25
	for _, route := range m.routeKeys {
		for _, class := range freight.Classes {
			quote := m.freightMkts[route][class]
			quote.LastRate = quote.Rate
			change := (baseChange + m.rng.Gauss(0, 0.2)) * seasonFactor
			quote.Rate = math.Max(minRate, quote.Rate+change)
		}
	}
}

// updatePortConditions mean-reverts congestion toward a seasonal target
// and walks weather delays within their band.
func (m *Market) updatePortConditions() {
	seasonFactor := 1 + 0.5*math.Sin(2*math.Pi*float64(m.week)/52)
	target := 30 * seasonFactor

	for _, name := range m.portOrder() {
		port := m.origins[name]
		if port == nil {
			port = m.destinations[name]
		}
		old := port.CongestionLevel
		change := float64(m.rng.IntBetween(-5, 5))
		port.CongestionLevel = math.Max(0, math.Min(100,
			port.CongestionLevel+(target-port.CongestionLevel)*0.1+change))

		weatherChange := float64(m.rng.IntBetween(-1, 1))
		port.WeatherDelay = math.Max(0, math.Min(5,
			port.WeatherDelay+weatherChange*seasonFactor))

		if port.CongestionLevel > old+20 {
			port.AddStatus(fmt.Sprintf("Severe congestion: %.0f%%", port.CongestionLevel))
			m.recorder.Emit(m.week, m.year, event.CategoryMarket,
				fmt.Sprintf("severe congestion at %s", name))
		} else if port.WeatherDelay > 2 {
			port.AddStatus(fmt.Sprintf("Weather delays: %.0f days", port.WeatherDelay))
		}
	}
}

// updateLocalConditions mean-reverts each destination's demand factor to
// 1.0 under random shocks, clamped to [0.8, 1.2].
func (m *Market) updateLocalConditions() {
	for _, d := range destinationDefs {
		dest := d.key
		current := m.conditions[dest]
		shock := m.rng.Gauss(0, 0.05)
		reversion := (1.0 - current) * 0.1
		next := math.Max(0.8, math.Min(1.2, current+reversion+shock))
		m.conditions[dest] = next

		if math.Abs(next-current) > 0.1 {
			kind := "oversupply"
			if next > current {
				kind = "shortage"
			}
			m.destinations[dest].AddStatus(fmt.Sprintf("Market %s reported", kind))
			m.recorder.Emit(m.week, m.year, event.CategoryMarket,
				fmt.Sprintf("%s at %s", kind, dest))
		}
	}
}

// portOrder returns every port key in declaration order, origins first.
func (m *Market) portOrder() []string {
	out := make([]string, 0, len(originDefs)+len(destinationDefs))
	for _, d := range originDefs {
		out = append(out, d.key)
	}
	for _, d := range destinationDefs {
		out = append(out, d.key)
	}
	return out
}

func (m *Market) allPorts() map[string]*Port {
	all := make(map[string]*Port, len(m.origins)+len(m.destinations))
	for k, v := range m.origins {
		all[k] = v
	}
	for k, v := range m.destinations {
		all[k] = v
	}
	return all
}

// DestinationPrice derives the CFR quote for a commodity shipped from
// origin to destination. The landed cost competes against every capable
// origin: the requested origin's cost is capped at 2% over the cheapest
// alternative before risk, payment, and margin adjustments apply. Returns
// nil when no valid FOB quote or freight exists.
func (m *Market) DestinationPrice(commodity crops.Commodity, origin, destination string) *DestQuote {
	fobQuote := m.fob[QuoteKey{commodity, origin}]
	if fobQuote == nil || !fobQuote.Quoted {
		return nil
	}

	landed := make(map[string]float64)
	for potential := range m.origins {
		pq := m.fob[QuoteKey{commodity, potential}]
		if pq == nil || !pq.Quoted {
			continue
		}
		routes := m.freightMkts[freight.Route{Origin: potential, Destination: destination}]
		if len(routes) == 0 {
			continue
		}
		minFreight := math.Inf(1)
		for _, fq := range routes {
			minFreight = math.Min(minFreight, fq.Rate)
		}
		cost := pq.Offer + minFreight
		if qualityPremiumOrigins[potential] {
			cost += cost * 0.005
		}
		landed[potential] = cost
	}
	if len(landed) == 0 {
		return nil
	}

	thisLanded, ok := landed[origin]
	if !ok {
		return nil
	}
	cheapest := math.Inf(1)
	for _, c := range landed {
		cheapest = math.Min(cheapest, c)
	}
	if ceiling := cheapest * 1.02; thisLanded > ceiling {
		thisLanded = ceiling
	}

	factors, ok := destFactors[destination]
	if !ok {
		factors = defaultDestFactor
	}
	condition := m.conditions[destination]
	destPort := m.destinations[destination]
	if destPort == nil {
		return nil
	}

	riskPremium := float64(destPort.RiskLevel-1) * 0.005 * thisLanded
	paymentPremium := float64(destPort.PaymentDelayDays) / 30 * 0.002 * thisLanded
	basePrice := thisLanded + riskPremium + paymentPremium

	margin := factors.BaseMargin * condition * 0.8
	mid := basePrice * (1 + margin)
	spread := basePrice * factors.Volatility * condition
	bid := math.Round((mid-spread/2)*100) / 100
	offer := math.Round((mid+spread/2)*100) / 100

	key := DestKey{commodity, origin, destination}
	direction := DirectionFlat
	if prev := m.destQuotes[key]; prev != nil {
		switch d := bid - prev.Bid; {
		case d > 0.01:
			direction = DirectionUp
		case d < -0.01:
			direction = DirectionDown
		}
	}

	q := &DestQuote{
		Bid:       bid,
		Offer:     offer,
		BidSize:   m.rng.IntBetween(30, 100),
		OfferSize: m.rng.IntBetween(30, 100),
		LastPrice: bid,
		Direction: direction,
	}
	m.destQuotes[key] = q
	return q
}

// FOBQuote returns the quote for one commodity at one origin, or nil.
func (m *Market) FOBQuote(commodity crops.Commodity, origin string) *Quote {
	return m.fob[QuoteKey{commodity, origin}]
}

// FreightQuoteFor returns the freight quote for a route and class, or nil.
func (m *Market) FreightQuoteFor(origin, destination string, class freight.Class) *FreightQuote {
	routes := m.freightMkts[freight.Route{Origin: origin, Destination: destination}]
	if routes == nil {
		return nil
	}
	return routes[class]
}

// RouteQuotes returns every vessel-class quote on a route.
func (m *Market) RouteQuotes(origin, destination string) map[freight.Class]*FreightQuote {
	return m.freightMkts[freight.Route{Origin: origin, Destination: destination}]
}

// Origin returns an origin port, or nil.
func (m *Market) Origin(name string) *Port { return m.origins[name] }

// Destination returns a destination port, or nil.
func (m *Market) Destination(name string) *Port { return m.destinations[name] }

// OriginNames returns every origin port key.
func (m *Market) OriginNames() []string {
	out := make([]string, 0, len(m.origins))
	for _, d := range originDefs {
		out = append(out, d.key)
	}
	return out
}

// DestinationNames returns every destination port key.
func (m *Market) DestinationNames() []string {
	out := make([]string, 0, len(m.destinations))
	for _, d := range destinationDefs {
		out = append(out, d.key)
	}
	return out
}

// LocalCondition returns the demand factor for a destination, 1.0 when
// unknown.
func (m *Market) LocalCondition(destination string) float64 {
	if c, ok := m.conditions[destination]; ok {
		return c
	}
	return 1.0
}

// AverageBid returns the mean bid across quoted origin markets for a
// commodity. ok is false when no market is quoted.
func (m *Market) AverageBid(commodity crops.Commodity) (float64, bool) {
	var sum float64
	var n int
	for key, q := range m.fob {
		if key.Commodity == commodity && q.Quoted {
			sum += q.Bid
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// CommodityStatus is one market line in a status snapshot.
type CommodityStatus struct {
	Bid             float64   `json:"bid"`
	Offer           float64   `json:"offer"`
	Quoted          bool      `json:"quoted"`
	BidSize         int       `json:"bid_size"`
	OfferSize       int       `json:"offer_size"`
	Direction       Direction `json:"direction"`
	HarvestProgress float64   `json:"harvest_progress"`
	StockPercentage float64   `json:"stock_percentage"`
}

// Status snapshots every FOB market, optionally filtered by commodity
// and/or origin.
func (m *Market) Status(commodity crops.Commodity, origin string) map[QuoteKey]CommodityStatus {
	out := make(map[QuoteKey]CommodityStatus)
	for key, q := range m.fob {
		if commodity != "" && key.Commodity != commodity {
			continue
		}
		if origin != "" && key.Origin != origin {
			continue
		}
		cs := CommodityStatus{
			Bid:       q.Bid,
			Offer:     q.Offer,
			Quoted:    q.Quoted,
			BidSize:   q.BidSize,
			OfferSize: q.OfferSize,
			Direction: q.Direction(),
		}
		if region, ok := portToRegion[key.Origin]; ok {
			cs.HarvestProgress = m.crops.HarvestProgress(region, key.Commodity)
			cs.StockPercentage = m.crops.StockPercentage(region, key.Commodity)
		}
		out[key] = cs
	}
	return out
}

// VesselOption is one vessel class's terms on a route.
type VesselOption struct {
	Rate     float64 `json:"rate"`
	Duration int     `json:"duration_days"`
	Capacity int     `json:"capacity"`
}

// RouteStatus describes one route's distance, delays, and vessel options.
type RouteStatus struct {
	Distance          float64                        `json:"distance_nm"`
	OriginDelays      int                            `json:"origin_delays"`
	DestinationDelays int                            `json:"destination_delays"`
	VesselOptions     map[freight.Class]VesselOption `json:"vessel_options"`
}

// RouteStatusFor returns the live status of a route, or nil if it is not
// a traded route.
func (m *Market) RouteStatusFor(origin, destination string) *RouteStatus {
	routes := m.freightMkts[freight.Route{Origin: origin, Destination: destination}]
	if routes == nil {
		return nil
	}
	rs := &RouteStatus{
		Distance:      freight.Distance(origin, destination),
		VesselOptions: make(map[freight.Class]VesselOption),
	}
	if p := m.origins[origin]; p != nil {
		rs.OriginDelays = p.TotalDelay()
	}
	if p := m.destinations[destination]; p != nil {
		rs.DestinationDelays = p.TotalDelay()
	}
	for class, q := range routes {
		rs.VesselOptions[class] = VesselOption{Rate: q.Rate, Duration: q.DurationDays, Capacity: q.Capacity}
	}
	return rs
}
