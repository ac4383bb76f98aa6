package engine

import (
	"fmt"

	"github.com/talgya/tradewinds/internal/event"
	"github.com/talgya/tradewinds/internal/freight"
	"github.com/talgya/tradewinds/internal/ledger"
	"github.com/talgya/tradewinds/internal/tender"
)

// SubmitTenderOffer bids on an open tender. The participation fee is
// charged on submission and is not refundable.
func (e *Engine) SubmitTenderOffer(tenderID, origin string, numVessels int, price float64) (*tender.Offer, error) {
	t := e.tenders.Get(tenderID)
	if t == nil {
		return nil, fmt.Errorf("unknown tender %s", tenderID)
	}
	if t.Status != tender.StatusOpen {
		return nil, fmt.Errorf("tender %s is no longer open", tenderID)
	}
	if e.tenders.IsBlacklisted(Player, t.Buyer) {
		return nil, fmt.Errorf("blacklisted from %s tenders", t.Buyer)
	}
	if origin == "" || price <= 0 {
		return nil, fmt.Errorf("offer needs an origin and a positive price")
	}
	if numVessels < 1 {
		return nil, fmt.Errorf("offer needs at least one vessel")
	}
	quantity := freight.Capacity(t.RequiredClass) * numVessels
	if quantity > t.TotalQuantity {
		return nil, fmt.Errorf("offer %d MT exceeds tendered %d MT", quantity, t.TotalQuantity)
	}
	if !e.book.CanAfford(t.ParticipationCost) {
		return nil, fmt.Errorf("insufficient capital for $%.0f participation fee", t.ParticipationCost)
	}

	week, year := e.market.Week(), e.market.Year()
	e.book.Debit(week, year, t.ParticipationCost, ledger.FlowTenderFee,
		fmt.Sprintf("%s tender participation", t.Buyer))

	o := tender.NewOffer(tenderID, Player, origin, quantity, numVessels, price, week)
	if !e.tenders.SubmitOffer(tenderID, o) {
		return nil, fmt.Errorf("tender %s rejected the offer", tenderID)
	}
	e.recorder.Emit(week, year, event.CategoryTender,
		fmt.Sprintf("offered %dK MT to %s at $%.2f CFR", quantity/1000, t.Buyer, price))
	return o, nil
}
