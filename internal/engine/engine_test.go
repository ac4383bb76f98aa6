package engine

import (
	"testing"

	"github.com/talgya/tradewinds/internal/config"
	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/freight"
	"github.com/talgya/tradewinds/internal/ledger"
)

func newTestEngine(seed int64) *Engine {
	cfg := config.Default()
	cfg.Seed = seed
	return New(cfg)
}

// quotedOrigin finds a commodity/origin pair with a live quote and full
// vessel inventory.
func quotedOrigin(e *Engine, capacity int) (crops.Commodity, string) {
	for _, c := range crops.Commodities {
		for _, origin := range e.Market().OriginNames() {
			q := e.Market().FOBQuote(c, origin)
			if q != nil && q.Quoted && q.Inventory >= capacity {
				return c, origin
			}
		}
	}
	return "", ""
}

func TestSpotTradeLifecycle(t *testing.T) {
	e := newTestEngine(5)
	commodity, origin := quotedOrigin(e, freight.Capacity(freight.Supramax))
	if origin == "" {
		t.Fatal("no quoted origin with inventory")
	}

	before := e.Ledger().Balance()
	trade, err := e.ExecuteSpotTrade(commodity, origin, "ALGIERS", freight.Supramax)
	if err != nil {
		t.Fatalf("spot trade: %v", err)
	}
	if trade.Status != TradeSailing {
		t.Fatalf("status %s, want SAILING", trade.Status)
	}
	if got := before - e.Ledger().Balance(); got != trade.TotalCost {
		t.Errorf("debited %f, want %f", got, trade.TotalCost)
	}

	for i := 0; i < 30 && trade.Status != TradeCompleted; i++ {
		e.AdvanceWeek()
	}
	if trade.Status != TradeCompleted {
		t.Fatal("trade never completed")
	}
	if trade.Revenue <= 0 {
		t.Error("completed trade has no revenue")
	}
	if len(e.CompletedTrades()) != 1 || len(e.ActiveTrades()) != 0 {
		t.Errorf("trade lists: %d completed, %d active", len(e.CompletedTrades()), len(e.ActiveTrades()))
	}
	if !e.Ledger().Reconciles() {
		t.Error("ledger does not reconcile after trade lifecycle")
	}
}

func TestSpotTradeRejectsPartialVessel(t *testing.T) {
	e := newTestEngine(5)
	commodity, origin := quotedOrigin(e, 1)
	q := e.Market().FOBQuote(commodity, origin)

	// Leave only half a Panamax of inventory.
	q.Inventory = freight.Capacity(freight.Panamax) / 2
	if _, err := e.ExecuteSpotTrade(commodity, origin, "ALGIERS", freight.Panamax); err == nil {
		t.Error("trade below 90% utilization accepted")
	}

	q.Inventory = 0
	if _, err := e.ExecuteSpotTrade(commodity, origin, "ALGIERS", freight.Panamax); err == nil {
		t.Error("trade with zero inventory accepted")
	}
}

func TestSpotTradeRejectsWithoutCapital(t *testing.T) {
	e := newTestEngine(5)
	commodity, origin := quotedOrigin(e, freight.Capacity(freight.Handymax))
	e.Ledger().Debit(1, 2024, e.Ledger().Balance()-1000, ledger.FlowPenalty, "drain")
	if _, err := e.ExecuteSpotTrade(commodity, origin, "ALGIERS", freight.Handymax); err == nil {
		t.Error("trade accepted without capital")
	}
}

func TestBuyAndSellStorageLot(t *testing.T) {
	e := newTestEngine(5)
	commodity, origin := quotedOrigin(e, standardLot)

	lot, err := e.BuyToStorage(origin, commodity)
	if err != nil {
		t.Fatalf("buy to storage: %v", err)
	}
	if lot.Quantity != standardLot {
		t.Errorf("lot quantity %d, want %d", lot.Quantity, standardLot)
	}
	if got := e.Storage().Facility(origin).Inventory[commodity]; got != standardLot {
		t.Errorf("elevator holds %d, want %d", got, standardLot)
	}

	if err := e.SellFromStorage(0); err != nil {
		t.Fatalf("sell from storage: %v", err)
	}
	if len(e.Lots()) != 0 {
		t.Errorf("%d lots after sale, want 0", len(e.Lots()))
	}
	if got := e.Storage().Facility(origin).Inventory[commodity]; got != 0 {
		t.Errorf("elevator holds %d after sale", got)
	}
	if !e.Ledger().Reconciles() {
		t.Error("ledger does not reconcile after storage round trip")
	}
}

func TestTransportFromStoragePoolsLots(t *testing.T) {
	e := newTestEngine(5)
	commodity, origin := quotedOrigin(e, standardLot*4)

	for i := 0; i < 3; i++ {
		if _, err := e.BuyToStorage(origin, commodity); err != nil {
			t.Fatalf("buy %d: %v", i, err)
		}
	}

	// 15K MT is above half a Handymax (28K), below capacity.
	trade, err := e.TransportFromStorage(0, "ALGIERS", freight.Handymax)
	if err != nil {
		t.Fatalf("transport: %v", err)
	}
	if trade.Quantity != 3*standardLot {
		t.Errorf("shipped %d, want %d", trade.Quantity, 3*standardLot)
	}
	if len(e.Lots()) != 0 {
		t.Errorf("%d lots left, want 0", len(e.Lots()))
	}
	// Under 90% utilization the freight rate carries a surcharge.
	base := e.Market().FreightQuoteFor(origin, "ALGIERS", freight.Handymax).Rate
	if trade.FreightRate <= base {
		t.Errorf("freight rate %f not above base %f despite low utilization", trade.FreightRate, base)
	}
}

func TestTransportRejectsBelowHalfVessel(t *testing.T) {
	e := newTestEngine(5)
	commodity, origin := quotedOrigin(e, standardLot)
	if _, err := e.BuyToStorage(origin, commodity); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := e.TransportFromStorage(0, "ALGIERS", freight.Panamax); err == nil {
		t.Error("5K MT accepted for an 82K Panamax")
	}
}

func TestForcedLiquidationWhenBroke(t *testing.T) {
	e := newTestEngine(5)
	commodity, origin := quotedOrigin(e, standardLot)
	if _, err := e.BuyToStorage(origin, commodity); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// Leave less than the next storage bill in the book.
	e.Ledger().Debit(e.Week(), e.Year(), e.Ledger().Balance()-1, ledger.FlowPenalty, "drain")

	for i := 0; i < 8 && len(e.Lots()) > 0; i++ {
		e.AdvanceWeek()
	}
	if len(e.Lots()) != 0 {
		t.Error("lots survived forced liquidation")
	}
	if got := e.Storage().Facility(origin).Inventory[commodity]; got != 0 {
		t.Errorf("elevator still holds %d after liquidation", got)
	}
}

func TestWeeklySummaryKeepsLedgerConsistent(t *testing.T) {
	e := newTestEngine(9)
	for i := 0; i < 60; i++ {
		e.AdvanceWeek()
	}
	if !e.Ledger().Reconciles() {
		t.Error("ledger out of balance after 60 idle weeks")
	}
	if !e.Futures().MarginReconciles() {
		t.Error("margin ledger out of balance after 60 idle weeks")
	}
	if e.Week() != 9 || e.Year() != 2025 {
		t.Errorf("calendar at week %d year %d, want week 9 year 2025", e.Week(), e.Year())
	}
}

func TestDeterministicRuns(t *testing.T) {
	a := newTestEngine(77)
	b := newTestEngine(77)
	for i := 0; i < 30; i++ {
		a.AdvanceWeek()
		b.AdvanceWeek()
	}
	for _, c := range crops.Commodities {
		for _, origin := range a.Market().OriginNames() {
			qa := a.Market().FOBQuote(c, origin)
			qb := b.Market().FOBQuote(c, origin)
			if qa == nil || qb == nil {
				continue
			}
			if qa.Bid != qb.Bid || qa.Offer != qb.Offer || qa.Inventory != qb.Inventory {
				t.Fatalf("%s %s diverged: %+v vs %+v", c, origin, qa, qb)
			}
		}
	}
	if a.Ledger().Balance() != b.Ledger().Balance() {
		t.Errorf("balances diverged: %f vs %f", a.Ledger().Balance(), b.Ledger().Balance())
	}
}

func TestTenderDefaultAppliesPenalty(t *testing.T) {
	e := newTestEngine(7)

	// Reach the first tender round.
	for e.Week() < 7 {
		e.AdvanceWeek()
	}
	active := e.Tenders().Active()
	if len(active) == 0 {
		t.Fatal("no tenders at week 7")
	}
	a := active[0]

	offer, err := e.SubmitTenderOffer(a.ID, a.PermittedOrigins[0], a.MaxVessels, 1.00)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	before := e.Ledger().Balance()
	// Run past the shipment window plus grace without delivering.
	for i := 0; i < 52 && e.PenaltyTotal() == 0; i++ {
		e.AdvanceWeek()
	}
	if e.PenaltyTotal() != config.Default().DefaultPenalty {
		t.Fatalf("penalty total %f, want %f", e.PenaltyTotal(), config.Default().DefaultPenalty)
	}
	if e.Ledger().Balance() >= before {
		t.Error("penalty not debited")
	}
	if offer.Status != "ACCEPTED" && offer.Status != "PARTIALLY_ACCEPTED" {
		t.Fatalf("offer status %s, expected an award", offer.Status)
	}
	if !e.Tenders().IsBlacklisted(Player, a.Buyer) {
		t.Error("defaulting player not blacklisted")
	}
}
