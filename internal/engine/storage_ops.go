package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/event"
	"github.com/talgya/tradewinds/internal/freight"
	"github.com/talgya/tradewinds/internal/ledger"
	"github.com/talgya/tradewinds/internal/storage"
)

// standardLot is the fixed parcel bought into storage.
const standardLot = 5000

// BuyToStorage buys one standard lot at the prevailing offer and puts it
// into the local elevator.
func (e *Engine) BuyToStorage(location string, commodity crops.Commodity) (*storage.Lot, error) {
	f := e.storage.Facility(location)
	if f == nil {
		return nil, fmt.Errorf("no storage facility at %s", location)
	}
	q := e.market.FOBQuote(commodity, location)
	if q == nil || !q.Quoted {
		return nil, fmt.Errorf("no market quote for %s at %s", commodity, location)
	}
	if q.Inventory < standardLot {
		return nil, fmt.Errorf("insufficient inventory at %s", location)
	}

	purchase := q.Offer * standardLot
	handling := f.HandlingCost * standardLot
	total := purchase + handling
	if !e.book.CanAfford(total) {
		return nil, fmt.Errorf("insufficient capital: need $%.0f", total)
	}

	week, year := e.market.Week(), e.market.Year()
	if _, ok := e.storage.Store(location, commodity, standardLot, week, year); !ok {
		return nil, fmt.Errorf("%s cannot accept %d MT", location, standardLot)
	}

	e.book.Debit(week, year, purchase, ledger.FlowStoragePurchase,
		fmt.Sprintf("%d MT %s at %s", standardLot, commodity, location))
	e.book.Debit(week, year, handling, ledger.FlowHandling,
		fmt.Sprintf("intake at %s", location))
	q.Inventory -= standardLot

	lot := &storage.Lot{
		Facility:         location,
		Commodity:        commodity,
		Quantity:         standardLot,
		EntryWeek:        week,
		EntryYear:        year,
		EntryPrice:       q.Offer,
		HandlingCostPaid: handling,
	}
	e.lots = append(e.lots, lot)
	e.recorder.Emit(week, year, event.CategoryStorage,
		fmt.Sprintf("bought and stored %dK MT %s at %s", standardLot/1000, commodity, location))
	return lot, nil
}

// SellFromStorage sells one lot back into the local market at the bid.
func (e *Engine) SellFromStorage(index int) error {
	if index < 0 || index >= len(e.lots) {
		return fmt.Errorf("no storage lot %d", index)
	}
	lot := e.lots[index]

	q := e.market.FOBQuote(lot.Commodity, lot.Facility)
	if q == nil || !q.Quoted {
		return fmt.Errorf("no market quote for %s at %s", lot.Commodity, lot.Facility)
	}
	f := e.storage.Facility(lot.Facility)
	week, year := e.market.Week(), e.market.Year()

	if _, ok := e.storage.Remove(lot.Facility, lot.Commodity, lot.Quantity, week, year); !ok {
		return fmt.Errorf("failed to release %d MT at %s", lot.Quantity, lot.Facility)
	}

	revenue := q.Bid * float64(lot.Quantity)
	handling := f.HandlingCost * float64(lot.Quantity)
	e.book.Credit(week, year, revenue, ledger.FlowTradeRevenue,
		fmt.Sprintf("sold %d MT %s ex %s", lot.Quantity, lot.Commodity, lot.Facility))
	e.book.Debit(week, year, handling, ledger.FlowHandling,
		fmt.Sprintf("outtake at %s", lot.Facility))

	e.lots = append(e.lots[:index], e.lots[index+1:]...)
	e.recorder.Emit(week, year, event.CategoryStorage,
		fmt.Sprintf("sold %dK MT %s from %s at $%.2f", lot.Quantity/1000, lot.Commodity, lot.Facility, q.Bid))
	return nil
}

// TransportFromStorage ships stored grain to a destination. Every lot of
// the same commodity at the facility pools into one cargo priced at the
// volume-weighted average entry. Vessels sail above half capacity;
// utilization under 90% loads a freight surcharge.
func (e *Engine) TransportFromStorage(index int, destination string, class freight.Class) (*Trade, error) {
	if index < 0 || index >= len(e.lots) {
		return nil, fmt.Errorf("no storage lot %d", index)
	}
	anchor := e.lots[index]

	var pool []*storage.Lot
	totalQty := 0
	totalValue := 0.0
	for _, lot := range e.lots {
		if lot.Facility == anchor.Facility && lot.Commodity == anchor.Commodity {
			pool = append(pool, lot)
			totalQty += lot.Quantity
			totalValue += float64(lot.Quantity) * lot.EntryPrice
		}
	}
	vwap := totalValue / float64(totalQty)

	fq := e.market.FreightQuoteFor(anchor.Facility, destination, class)
	if fq == nil {
		return nil, fmt.Errorf("no freight route %s to %s", anchor.Facility, destination)
	}
	capacity := fq.Capacity
	if float64(totalQty) < float64(capacity)*0.5 {
		return nil, fmt.Errorf("need at least %d MT for a %s, have %d MT", capacity/2, class, totalQty)
	}

	quantity := totalQty
	if capacity < quantity {
		quantity = capacity
	}
	utilization := float64(quantity) / float64(capacity) * 100
	surcharge := 0.0
	if utilization < 90 {
		surcharge = (90 - utilization) / 100
	}

	freightCost := fq.Rate * float64(quantity) * (1 + surcharge)
	handlingRate := e.storage.Facility(anchor.Facility).HandlingCost
	if dest := e.storage.Facility(destination); dest != nil {
		handlingRate += dest.HandlingCost
	}
	handlingCost := handlingRate * float64(quantity)
	totalCost := freightCost + handlingCost
	if !e.book.CanAfford(totalCost) {
		return nil, fmt.Errorf("insufficient capital: need $%.0f", totalCost)
	}

	week, year := e.market.Week(), e.market.Year()
	toRemove := quantity
	for _, lot := range pool {
		if toRemove <= 0 {
			break
		}
		amount := lot.Quantity
		if toRemove < amount {
			amount = toRemove
		}
		if _, ok := e.storage.Remove(lot.Facility, lot.Commodity, amount, week, year); !ok {
			return nil, fmt.Errorf("failed to release %d MT at %s", amount, lot.Facility)
		}
		toRemove -= amount
		lot.Quantity -= amount
	}
	e.dropEmptyLots()

	e.book.Debit(week, year, freightCost, ledger.FlowFreight,
		fmt.Sprintf("%s %s to %s ex storage", class, anchor.Facility, destination))
	e.book.Debit(week, year, handlingCost, ledger.FlowHandling,
		fmt.Sprintf("handling %s to %s", anchor.Facility, destination))

	trade := &Trade{
		ID:            uuid.NewString()[:8],
		Commodity:     anchor.Commodity,
		Origin:        anchor.Facility,
		Destination:   destination,
		Quantity:      quantity,
		FOBPrice:      vwap,
		FreightRate:   fq.Rate * (1 + surcharge),
		Class:         class,
		ExecutionWeek: week,
		ExecutionYear: year,
		Status:        TradeSailing,
		FOBCost:       vwap * float64(quantity),
		FreightCost:   freightCost,
		TotalCost:     totalCost,
	}
	e.tenders.RecordDelivery(Player, anchor.Commodity, anchor.Facility, destination, quantity, week, year)
	e.activeTrades = append(e.activeTrades, trade)
	e.recorder.Emit(week, year, event.CategoryStorage,
		fmt.Sprintf("shipping %dK MT %s from storage %s to %s", quantity/1000, anchor.Commodity, anchor.Facility, destination))
	return trade, nil
}

func (e *Engine) dropEmptyLots() {
	kept := e.lots[:0]
	for _, lot := range e.lots {
		if lot.Quantity > 0 {
			kept = append(kept, lot)
		}
	}
	e.lots = kept
}

// handleStorageCosts bills monthly carry. When the book cannot cover the
// bill, every lot is force-liquidated at 95% of the prevailing bid.
func (e *Engine) handleStorageCosts(week, year int) {
	costs := e.storage.AccrueMonthly(week, year)
	if len(costs) == 0 {
		return
	}
	total := 0.0
	for _, c := range costs {
		total += c.Cost
	}

	if !e.book.CanAfford(total) {
		e.recorder.Emit(week, year, event.CategoryCapital,
			fmt.Sprintf("cannot cover $%.0f storage costs, liquidating", total))
		e.forceLiquidation(week, year)
		return
	}

	byFacility := make(map[string]float64, len(costs))
	for _, c := range costs {
		byFacility[c.Location] = c.Cost
		e.book.Debit(week, year, c.Cost, ledger.FlowStorageCost,
			fmt.Sprintf("monthly storage at %s", c.Location))
	}
	for _, lot := range e.lots {
		lot.StorageCostPaid += byFacility[lot.Facility]
	}
}

// forceLiquidation dumps every lot at a 5% discount to the local bid.
func (e *Engine) forceLiquidation(week, year int) {
	for _, lot := range e.lots {
		q := e.market.FOBQuote(lot.Commodity, lot.Facility)
		if q == nil {
			continue
		}
		price := q.Bid * 0.95
		e.book.Credit(week, year, price*float64(lot.Quantity), ledger.FlowLiquidation,
			fmt.Sprintf("forced sale %d MT %s at %s", lot.Quantity, lot.Commodity, lot.Facility))
		if _, ok := e.storage.Remove(lot.Facility, lot.Commodity, lot.Quantity, week, year); ok {
			lot.Quantity = 0
			e.recorder.Emit(week, year, event.CategoryCapital,
				fmt.Sprintf("forced liquidation: %s at %s for $%.2f", lot.Commodity, lot.Facility, price))
		}
	}
	e.dropEmptyLots()
}
