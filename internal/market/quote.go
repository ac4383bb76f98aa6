package market

import (
	"github.com/talgya/tradewinds/internal/freight"
)

// Direction reports how a price moved against its previous value.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionFlat Direction = "FLAT"
)

// PricePoint is one week of quote history.
type PricePoint struct {
	Week  int     `json:"week"`
	Bid   float64 `json:"bid"`
	Offer float64 `json:"offer"`
}

// historyWeeks bounds quote history to six months.
const historyWeeks = 24

// Quote is a two-sided FOB market in one commodity at one origin. A quote
// is either fully valid (bid and offer both present) or withdrawn; the
// two sides never exist independently.
type Quote struct {
	Bid       float64
	Offer     float64
	Quoted    bool
	BidSize   int
	OfferSize int
	LastPrice float64
	Inventory int

	SixMonthHigh    float64
	SixMonthLow     float64
	History         []PricePoint
	NewHighThisWeek bool
	NewLowThisWeek  bool
}

// Withdraw invalidates both sides of the quote.
func (q *Quote) Withdraw() {
	q.Quoted = false
	q.Bid = 0
	q.Offer = 0
}

// Set replaces both sides of the quote at once.
func (q *Quote) Set(bid, offer float64) {
	q.Bid = bid
	q.Offer = offer
	q.Quoted = true
}

// RecordHistory folds the current prices into the six-month high/low and
// the bounded history. Withdrawn quotes leave history untouched.
func (q *Quote) RecordHistory(week int) {
	if !q.Quoted {
		return
	}
	q.NewHighThisWeek = q.SixMonthHigh == 0 || q.Bid > q.SixMonthHigh
	q.NewLowThisWeek = q.SixMonthLow == 0 || q.Bid < q.SixMonthLow
	if q.NewHighThisWeek {
		q.SixMonthHigh = q.Bid
	}
	if q.NewLowThisWeek {
		q.SixMonthLow = q.Bid
	}
	q.History = append(q.History, PricePoint{Week: week, Bid: q.Bid, Offer: q.Offer})
	if len(q.History) > historyWeeks {
		q.History = q.History[len(q.History)-historyWeeks:]
	}
}

// Direction compares the current bid with last week's.
func (q *Quote) Direction() Direction {
	if !q.Quoted || q.LastPrice == 0 {
		return DirectionFlat
	}
	switch d := q.Bid - q.LastPrice; {
	case d > 0.01:
		return DirectionUp
	case d < -0.01:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// AvailableQuantity caps a requested quantity at the quote's inventory.
func (q *Quote) AvailableQuantity(requested int) int {
	if q.Inventory <= 0 {
		return 0
	}
	return min(requested, q.Inventory)
}

// FreightQuote is the current rate for one vessel class on one route.
type FreightQuote struct {
	Rate         float64
	LastRate     float64
	DurationDays int
	Class        freight.Class
	Capacity     int
}

// Direction compares the current rate with last week's.
func (f *FreightQuote) Direction() Direction {
	switch {
	case f.Rate < f.LastRate:
		return DirectionDown
	case f.Rate > f.LastRate:
		return DirectionUp
	default:
		return DirectionFlat
	}
}

// Port holds the static profile and live operating conditions of a port.
type Port struct {
	Name             string
	Country          string
	RiskLevel        int // 1 (lowest) to 5
	PaymentDelayDays int

	CongestionLevel float64 // 0-100
	WeatherDelay    float64 // days, 0-5
	StatusHistory   []string
}

// TotalDelay converts congestion and weather into waiting days.
func (p *Port) TotalDelay() int {
	return int(p.CongestionLevel/20) + int(p.WeatherDelay)
}

// AddStatus appends a status line, keeping the last ten.
func (p *Port) AddStatus(status string) {
	p.StatusHistory = append(p.StatusHistory, status)
	if len(p.StatusHistory) > 10 {
		p.StatusHistory = p.StatusHistory[1:]
	}
}
