// Package ledger tracks the trading book's cash balance. All capital
// movement in the simulation goes through one Ledger, with each movement
// recorded as a categorized Flow so the balance can always be reconciled
// against the journal.
package ledger

import (
	"log/slog"

	"github.com/shopspring/decimal"
)

// FlowCategory classifies a cash movement.
type FlowCategory string

const (
	FlowTradePurchase   FlowCategory = "trade_purchase"
	FlowTradeRevenue    FlowCategory = "trade_revenue"
	FlowFreight         FlowCategory = "freight"
	FlowMargin          FlowCategory = "margin"
	FlowMarginRelease   FlowCategory = "margin_release"
	FlowFuturesPnL      FlowCategory = "futures_pnl"
	FlowStorageCost     FlowCategory = "storage_cost"
	FlowHandling        FlowCategory = "handling"
	FlowTenderFee       FlowCategory = "tender_fee"
	FlowPenalty         FlowCategory = "penalty"
	FlowLiquidation     FlowCategory = "liquidation"
	FlowStoragePurchase FlowCategory = "storage_purchase"
)

// Flow is one journal entry. Amount is positive for credits and negative
// for debits.
type Flow struct {
	Week     int          `json:"week"`
	Year     int          `json:"year"`
	Category FlowCategory `json:"category"`
	Amount   float64      `json:"amount"`
	Memo     string       `json:"memo"`
}

// Ledger holds the cash balance and its journal. Balances are kept as
// decimals so that repeated small flows never drift.
type Ledger struct {
	initial decimal.Decimal
	balance decimal.Decimal
	flows   []Flow
}

// New creates a ledger with the given starting capital.
func New(startingCapital float64) *Ledger {
	d := decimal.NewFromFloat(startingCapital)
	return &Ledger{initial: d, balance: d}
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() float64 {
	f, _ := l.balance.Float64()
	return f
}

// Initial returns the starting capital.
func (l *Ledger) Initial() float64 {
	f, _ := l.initial.Float64()
	return f
}

// CanAfford reports whether the balance covers amount.
func (l *Ledger) CanAfford(amount float64) bool {
	return l.balance.GreaterThanOrEqual(decimal.NewFromFloat(amount))
}

// Credit adds amount to the balance and journals the flow.
func (l *Ledger) Credit(week, year int, amount float64, category FlowCategory, memo string) {
	l.balance = l.balance.Add(decimal.NewFromFloat(amount))
	l.flows = append(l.flows, Flow{Week: week, Year: year, Category: category, Amount: amount, Memo: memo})
}

// Debit subtracts amount from the balance and journals the flow. Debits
// always apply; penalties and storage costs can push the balance negative.
func (l *Ledger) Debit(week, year int, amount float64, category FlowCategory, memo string) {
	l.balance = l.balance.Sub(decimal.NewFromFloat(amount))
	l.flows = append(l.flows, Flow{Week: week, Year: year, Category: category, Amount: -amount, Memo: memo})
	if l.balance.IsNegative() {
		slog.Warn("cash balance negative", "balance", l.Balance(), "category", category)
	}
}

// Flows returns a copy of the journal.
func (l *Ledger) Flows() []Flow {
	out := make([]Flow, len(l.flows))
	copy(out, l.flows)
	return out
}

// Reconciles reports whether balance equals initial capital plus the sum
// of all journaled flows, within a cent.
func (l *Ledger) Reconciles() bool {
	sum := l.initial
	for _, f := range l.flows {
		sum = sum.Add(decimal.NewFromFloat(f.Amount))
	}
	diff := l.balance.Sub(sum).Abs()
	return diff.LessThan(decimal.NewFromFloat(0.01))
}
