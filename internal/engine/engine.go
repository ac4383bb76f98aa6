// Package engine drives the weekly simulation turn and owns the trader's
// book: capital, physical trades, storage lots, futures and tender
// exposure. Everything hangs off the Engine value; there is no package
// state.
package engine

import (
	"log/slog"

	"github.com/talgya/tradewinds/internal/config"
	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/entropy"
	"github.com/talgya/tradewinds/internal/event"
	"github.com/talgya/tradewinds/internal/freight"
	"github.com/talgya/tradewinds/internal/futures"
	"github.com/talgya/tradewinds/internal/ledger"
	"github.com/talgya/tradewinds/internal/market"
	"github.com/talgya/tradewinds/internal/storage"
	"github.com/talgya/tradewinds/internal/tender"
	"github.com/talgya/tradewinds/internal/weather"
)

// Player is the participant name the engine trades under.
const Player = "PLAYER"

// Engine aggregates every manager plus the trader's open book.
type Engine struct {
	cfg      config.Config
	rng      *entropy.Source
	wx       *weather.Model
	recorder *event.Recorder
	book     *ledger.Ledger

	crops   *crops.Manager
	market  *market.Market
	futures *futures.Manager
	tenders *tender.Manager
	storage *storage.Manager

	activeTrades    []*Trade
	completedTrades []*Trade
	lots            []*storage.Lot
	penaltyTotal    float64
}

// New wires a full simulation from configuration. The same seed always
// produces the same run.
func New(cfg config.Config) *Engine {
	rng := entropy.NewSource(cfg.Seed)
	recorder := event.NewRecorder()
	cropMgr := crops.NewManager(rng)
	calc := freight.NewCalculator(rng)
	mkt := market.New(rng, cropMgr, calc, recorder)
	book := ledger.New(cfg.StartingCapital)

	return &Engine{
		cfg:      cfg,
		rng:      rng,
		wx:       weather.NewModel(cfg.Seed),
		recorder: recorder,
		book:     book,
		crops:    cropMgr,
		market:   mkt,
		futures:  futures.NewManager(rng, mkt, book, recorder),
		tenders:  tender.NewManager(rng, mkt, recorder),
		storage:  storage.NewManager(recorder),
	}
}

// AdvanceWeek runs one simulation turn. Stage order is fixed: crops,
// markets, futures, tenders, trades, storage, then the calendar flips so
// every stage saw the week it ran in.
func (e *Engine) AdvanceWeek() {
	week, year := e.market.Week(), e.market.Year()

	// Each production cycle updates exactly once per week, under its
	// region's weather.
	for _, k := range e.crops.Keys() {
		factor := e.wx.Factor(string(k.Region), week, year)
		e.crops.UpdateCycle(k.Region, k.Commodity, week, factor)
	}

	e.market.UpdateWeek()
	e.futures.UpdateWeek()

	e.tenders.UpdateWeek()
	e.applyTenderDefaults(week, year)

	e.updateTrades(week, year)
	e.handleStorageCosts(week, year)

	e.market.AdvanceCalendar()

	slog.Info("week complete",
		"week", week,
		"year", year,
		"capital", e.book.Balance(),
		"active_trades", len(e.activeTrades),
		"storage_lots", len(e.lots),
		"margin_held", e.futures.TotalMarginRequired(),
		"open_tenders", len(e.tenders.Active()),
	)
}

// applyTenderDefaults charges the fixed penalty for every awarded cargo
// still undelivered past its shipment window.
func (e *Engine) applyTenderDefaults(week, year int) {
	for _, d := range e.tenders.OverdueDefaults(Player) {
		e.book.Debit(week, year, e.cfg.DefaultPenalty, ledger.FlowPenalty,
			"tender default at "+d.Buyer)
		e.penaltyTotal += e.cfg.DefaultPenalty
	}
}

// PlaceFuturesOrder forwards an order to the futures manager.
func (e *Engine) PlaceFuturesOrder(order futures.Order) bool {
	return e.futures.PlaceOrder(order)
}

// Week returns the current simulation week.
func (e *Engine) Week() int { return e.market.Week() }

// Year returns the current simulation year.
func (e *Engine) Year() int { return e.market.Year() }

// Ledger returns the capital book.
func (e *Engine) Ledger() *ledger.Ledger { return e.book }

// Market returns the physical market.
func (e *Engine) Market() *market.Market { return e.market }

// Futures returns the futures manager.
func (e *Engine) Futures() *futures.Manager { return e.futures }

// Tenders returns the tender manager.
func (e *Engine) Tenders() *tender.Manager { return e.tenders }

// Storage returns the storage manager.
func (e *Engine) Storage() *storage.Manager { return e.storage }

// Crops returns the crop cycle manager.
func (e *Engine) Crops() *crops.Manager { return e.crops }

// Recorder returns the event log.
func (e *Engine) Recorder() *event.Recorder { return e.recorder }

// ActiveTrades returns trades still sailing or awaiting payment.
func (e *Engine) ActiveTrades() []*Trade { return e.activeTrades }

// CompletedTrades returns settled trades.
func (e *Engine) CompletedTrades() []*Trade { return e.completedTrades }

// Lots returns open storage positions.
func (e *Engine) Lots() []*storage.Lot { return e.lots }

// PenaltyTotal returns accumulated tender default penalties.
func (e *Engine) PenaltyTotal() float64 { return e.penaltyTotal }
