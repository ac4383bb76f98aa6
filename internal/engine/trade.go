package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/event"
	"github.com/talgya/tradewinds/internal/freight"
	"github.com/talgya/tradewinds/internal/ledger"
)

// TradeStatus tracks a physical cargo through its lifecycle.
type TradeStatus string

const (
	TradeSailing   TradeStatus = "SAILING"
	TradeDelivered TradeStatus = "DELIVERED"
	TradeCompleted TradeStatus = "COMPLETED"
)

// Trade is one physical cargo from purchase to payment.
type Trade struct {
	ID          string          `json:"id"`
	Commodity   crops.Commodity `json:"commodity"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Quantity    int             `json:"quantity"`
	FOBPrice    float64         `json:"fob_price"`
	FreightRate float64         `json:"freight_rate"`
	Class       freight.Class   `json:"vessel_class"`

	ExecutionWeek int         `json:"execution_week"`
	ExecutionYear int         `json:"execution_year"`
	Status        TradeStatus `json:"status"`
	ArrivalWeek   int         `json:"arrival_week"`
	ArrivalYear   int         `json:"arrival_year"`

	FOBCost     float64 `json:"fob_cost"`
	FreightCost float64 `json:"freight_cost"`
	TotalCost   float64 `json:"total_cost"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
}

// ExecuteSpotTrade buys a full vessel FOB and sets it sailing. The cargo
// is sized to the vessel: min(capacity, available inventory), rejected
// below 90% utilization.
func (e *Engine) ExecuteSpotTrade(commodity crops.Commodity, origin, destination string, class freight.Class) (*Trade, error) {
	q := e.market.FOBQuote(commodity, origin)
	if q == nil {
		return nil, fmt.Errorf("no market for %s at %s", commodity, origin)
	}
	if q.Inventory <= 0 {
		return nil, fmt.Errorf("no inventory available at %s", origin)
	}
	if !q.Quoted || q.Bid == 0 || q.Offer == 0 {
		return nil, fmt.Errorf("no valid quote for %s at %s", commodity, origin)
	}
	fq := e.market.FreightQuoteFor(origin, destination, class)
	if fq == nil {
		return nil, fmt.Errorf("no freight route %s to %s", origin, destination)
	}

	quantity := fq.Capacity
	if q.Inventory < quantity {
		quantity = q.Inventory
	}
	fobCost := q.Offer * float64(quantity)
	freightCost := fq.Rate * float64(quantity)
	totalCost := fobCost + freightCost

	if !e.book.CanAfford(totalCost) {
		return nil, fmt.Errorf("insufficient capital: need $%.0f", totalCost)
	}
	if float64(quantity) < float64(fq.Capacity)*0.9 {
		return nil, fmt.Errorf("insufficient inventory for full %s", class)
	}

	week, year := e.market.Week(), e.market.Year()
	e.book.Debit(week, year, fobCost, ledger.FlowTradePurchase,
		fmt.Sprintf("%d MT %s FOB %s", quantity, commodity, origin))
	e.book.Debit(week, year, freightCost, ledger.FlowFreight,
		fmt.Sprintf("%s %s to %s", class, origin, destination))
	q.Inventory -= quantity

	trade := &Trade{
		ID:            uuid.NewString()[:8],
		Commodity:     commodity,
		Origin:        origin,
		Destination:   destination,
		Quantity:      quantity,
		FOBPrice:      q.Offer,
		FreightRate:   fq.Rate,
		Class:         class,
		ExecutionWeek: week,
		ExecutionYear: year,
		Status:        TradeSailing,
		FOBCost:       fobCost,
		FreightCost:   freightCost,
		TotalCost:     totalCost,
	}

	e.tenders.RecordDelivery(Player, commodity, origin, destination, quantity, week, year)
	e.activeTrades = append(e.activeTrades, trade)
	e.recorder.Emit(week, year, event.CategoryTrade,
		fmt.Sprintf("executed %dK MT %s %s to %s at $%.2f FOB",
			quantity/1000, commodity, origin, destination, q.Offer))
	return trade, nil
}

// updateTrades moves cargoes through SAILING, DELIVERED and COMPLETED.
func (e *Engine) updateTrades(week, year int) {
	remaining := e.activeTrades[:0]
	for _, t := range e.activeTrades {
		switch t.Status {
		case TradeSailing:
			e.advanceSailing(t, week, year)
		case TradeDelivered:
			e.advanceDelivered(t, week, year)
		}
		if t.Status == TradeCompleted {
			e.completedTrades = append(e.completedTrades, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	e.activeTrades = remaining
}

func (e *Engine) advanceSailing(t *Trade, week, year int) {
	fq := e.market.FreightQuoteFor(t.Origin, t.Destination, t.Class)
	if fq == nil {
		return
	}
	voyageDays := fq.DurationDays
	if p := e.market.Origin(t.Origin); p != nil {
		voyageDays += p.TotalDelay()
	}
	if p := e.market.Destination(t.Destination); p != nil {
		voyageDays += p.TotalDelay()
	}
	voyageWeeks := int(math.Ceil(float64(voyageDays) / 7))

	elapsed := week + (year-t.ExecutionYear)*52 - t.ExecutionWeek
	if elapsed < voyageWeeks {
		return
	}
	t.Status = TradeDelivered
	t.ArrivalWeek = week
	t.ArrivalYear = year
	e.recorder.Emit(week, year, event.CategoryTrade,
		fmt.Sprintf("%s cargo arrived at %s", t.Commodity, t.Destination))
}

func (e *Engine) advanceDelivered(t *Trade, week, year int) {
	dest := e.market.Destination(t.Destination)
	if dest == nil {
		return
	}
	paymentWeeks := int(math.Ceil(float64(dest.PaymentDelayDays) / 7))
	sinceArrival := week + (year-t.ArrivalYear)*52 - t.ArrivalWeek
	if sinceArrival < paymentWeeks {
		return
	}

	// Revenue settles at the destination bid prevailing on payment day.
	if dq := e.market.DestinationPrice(t.Commodity, t.Origin, t.Destination); dq != nil {
		t.Revenue = dq.Bid * float64(t.Quantity)
		t.Profit = t.Revenue - t.TotalCost
	}
	t.Status = TradeCompleted
	e.book.Credit(week, year, t.Revenue, ledger.FlowTradeRevenue,
		fmt.Sprintf("%d MT %s delivered %s", t.Quantity, t.Commodity, t.Destination))
	e.recorder.Emit(week, year, event.CategoryTrade,
		fmt.Sprintf("trade completed at %s, P&L $%.0f", t.Destination, t.Profit))
}
