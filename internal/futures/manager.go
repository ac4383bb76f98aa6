// Package futures runs the paper-market side of the book: listed
// contracts along a forward curve per product, order execution with
// initial margin, weekly repricing, and expiry rolls.
package futures

import (
	"fmt"
	"math"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/entropy"
	"github.com/talgya/tradewinds/internal/event"
	"github.com/talgya/tradewinds/internal/ledger"
	"github.com/talgya/tradewinds/internal/market"
)

// backfillThreshold triggers new listings when a product's chain thins
// out after expiries.
const backfillThreshold = 4

// Manager owns the contract chains and the position book.
type Manager struct {
	rng      *entropy.Source
	mkt      *market.Market
	book     *ledger.Ledger
	recorder *event.Recorder

	specs     map[string]*Specification
	specOrder []string

	contracts     map[string]*Contract
	contractOrder []string

	positions   map[PositionKey]*Position
	orderedKeys []PositionKey

	pendingOrders []Order // resting limit orders

	totalMargin    float64
	lastUpdateWeek int
}

// NewManager lists the initial curve for every product.
func NewManager(rng *entropy.Source, mkt *market.Market, book *ledger.Ledger, recorder *event.Recorder) *Manager {
	m := &Manager{
		rng:            rng,
		mkt:            mkt,
		book:           book,
		recorder:       recorder,
		specs:          make(map[string]*Specification),
		contracts:      make(map[string]*Contract),
		positions:      make(map[PositionKey]*Position),
		lastUpdateWeek: mkt.Week(),
	}
	for i := range specDefs {
		spec := &specDefs[i]
		m.specs[spec.Name] = spec
		m.specOrder = append(m.specOrder, spec.Name)
		m.generateCurve(spec)
	}
	return m
}

// generateCurve lists contracts along the product's expiry ladder,
// skipping expiries that already exist. Grain curves carry storage,
// interest, and expiry-week seasonality; other products list flat.
func (m *Manager) generateCurve(spec *Specification) {
	week, year := m.mkt.Week(), m.mkt.Year()
	base := m.referenceBase(spec.Name)

	existing := make(map[[2]int]bool)
	for _, id := range m.contractOrder {
		c := m.contracts[id]
		if c.Spec.Name == spec.Name {
			existing[[2]int{c.ExpiryWeek, c.ExpiryYear}] = true
		}
	}

	for _, weeksForward := range spec.ExpiryLadder {
		expiryWeek := week + weeksForward
		expiryYear := year
		for expiryWeek > 52 {
			expiryWeek -= 52
			expiryYear++
		}
		if existing[[2]int{expiryWeek, expiryYear}] {
			continue
		}

		forward := base
		if spec.AssetClass == Agriculture {
			storage := 0.0015 * float64(weeksForward)
			interest := 0.075 / 52 * float64(weeksForward)
			forward = base * (1 + storage + interest + seasonalFactor(spec.Name, expiryWeek))
		}

		c := newContract(spec, expiryWeek, expiryYear, math.Round(forward*100)/100)
		m.contracts[c.ID] = c
		m.contractOrder = append(m.contractOrder, c.ID)
	}
}

// referenceBase picks the curve anchor: average physical bid for grains
// when quoted, else the product's default level.
func (m *Manager) referenceBase(name string) float64 {
	if commodity, ok := physicalCommodity(name); ok {
		if avg, ok := m.mkt.AverageBid(commodity); ok {
			return avg
		}
	}
	return initialPrice(name)
}

func physicalCommodity(name string) (crops.Commodity, bool) {
	switch name {
	case "CORN":
		return crops.Corn, true
	case "WHEAT":
		return crops.Wheat, true
	case "SOYBEAN":
		return crops.Soybean, true
	}
	return "", false
}

// Contract returns a listed contract by id, or nil.
func (m *Manager) Contract(id string) *Contract {
	return m.contracts[id]
}

// Contracts returns every listed contract in listing order.
func (m *Manager) Contracts() []*Contract {
	out := make([]*Contract, 0, len(m.contractOrder))
	for _, id := range m.contractOrder {
		out = append(out, m.contracts[id])
	}
	return out
}

// Chain returns the listed contracts for one product in listing order.
func (m *Manager) Chain(name string) []*Contract {
	var out []*Contract
	for _, id := range m.contractOrder {
		if c := m.contracts[id]; c.Spec.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Positions returns every open position in opening order.
func (m *Manager) Positions() []*Position {
	out := make([]*Position, 0, len(m.orderedKeys))
	for _, key := range m.orderedKeys {
		out = append(out, m.positions[key])
	}
	return out
}

// Position returns the position for a contract and book, or nil.
func (m *Manager) Position(contractID string, pt PositionType) *Position {
	return m.positions[PositionKey{contractID, pt}]
}

// TotalMarginRequired returns the margin currently held against the book.
func (m *Manager) TotalMarginRequired() float64 {
	return m.totalMargin
}

// contractValue prices quantity contracts at the given level in dollars.
// Softs quote in cents per pound; treasuries quote in points worth
// $1,000 each.
func contractValue(spec *Specification, quantity int, price float64) float64 {
	switch spec.AssetClass {
	case Softs:
		return price / 100 * spec.ContractSize * float64(quantity)
	case Financial:
		return price * 1000 * float64(quantity)
	default:
		return price * spec.ContractSize * float64(quantity)
	}
}

func (m *Manager) marginRequirement(c *Contract, quantity int, price float64) float64 {
	return contractValue(c.Spec, quantity, price) * c.Spec.InitialMarginPct
}

// PlaceOrder validates and executes an order. Market orders fill
// immediately at the touch; limit orders rest until price crosses.
// Returns false on validation failure or insufficient margin capital.
func (m *Manager) PlaceOrder(order Order) bool {
	if !m.validateOrder(order) {
		return false
	}

	c := m.contracts[order.ContractID]
	estimate := float64(order.Quantity) * c.Price * c.Spec.ContractSize * c.Spec.InitialMarginPct
	if !m.book.CanAfford(estimate) {
		return false
	}

	if order.Type == OrderMarket {
		return m.executeOrder(order)
	}
	m.pendingOrders = append(m.pendingOrders, order)
	return true
}

func (m *Manager) validateOrder(order Order) bool {
	if _, ok := m.contracts[order.ContractID]; !ok {
		return false
	}
	if order.Quantity <= 0 {
		return false
	}
	if order.Type == OrderLimit && order.LimitPrice == 0 {
		return false
	}
	if order.PositionType == "" {
		return false
	}
	return true
}

func (m *Manager) executeOrder(order Order) bool {
	c := m.contracts[order.ContractID]

	fill := c.Ask
	if order.Side == Sell {
		fill = c.Bid
	}
	marginRequired := m.marginRequirement(c, order.Quantity, fill)
	if !m.book.CanAfford(marginRequired) {
		return false
	}

	week, year := m.mkt.Week(), m.mkt.Year()
	key := PositionKey{order.ContractID, order.PositionType}
	signed := order.Quantity
	if order.Side == Sell {
		signed = -order.Quantity
	}

	existing := m.positions[key]
	switch {
	case existing == nil:
		m.positions[key] = &Position{
			ContractID:   order.ContractID,
			Quantity:     signed,
			AveragePrice: fill,
			PositionType: order.PositionType,
			Spec:         c.Spec,
			MarginHeld:   marginRequired,
		}
		m.orderedKeys = append(m.orderedKeys, key)
		m.book.Debit(week, year, marginRequired, ledger.FlowMargin,
			fmt.Sprintf("initial margin %s", order.ContractID))
		m.totalMargin += marginRequired

	case (existing.Quantity > 0) == (signed > 0):
		// Same direction: the entry re-averages only when the new trade
		// is larger than the standing position.
		if abs(signed) > abs(existing.Quantity) {
			existing.AveragePrice = fill
		}
		existing.Quantity += signed
		existing.MarginHeld += marginRequired
		m.book.Debit(week, year, marginRequired, ledger.FlowMargin,
			fmt.Sprintf("additional margin %s", order.ContractID))
		m.totalMargin += marginRequired

	default:
		// Reducing or flipping: realize P&L on the closed quantity at
		// the touch and release margin proportionally.
		closing := min(abs(existing.Quantity), abs(signed))
		var realized float64
		if existing.Quantity > 0 {
			realized = float64(closing) * (c.Bid - existing.AveragePrice)
		} else {
			realized = float64(closing) * (existing.AveragePrice - c.Ask)
		}
		realized *= c.Spec.ContractSize

		existing.RealizedPnL += realized
		if realized >= 0 {
			m.book.Credit(week, year, realized, ledger.FlowFuturesPnL,
				fmt.Sprintf("realized gain %s", order.ContractID))
		} else {
			m.book.Debit(week, year, -realized, ledger.FlowFuturesPnL,
				fmt.Sprintf("realized loss %s", order.ContractID))
		}

		released := float64(closing) / float64(abs(existing.Quantity)) * existing.MarginHeld
		m.book.Credit(week, year, released, ledger.FlowMarginRelease,
			fmt.Sprintf("margin release %s", order.ContractID))
		m.totalMargin -= released
		existing.MarginHeld -= released

		remaining := existing.Quantity + signed
		if remaining == 0 {
			m.removePosition(key)
			m.recorder.Emit(week, year, event.CategoryFutures,
				fmt.Sprintf("position closed %s, P&L %.0f", order.ContractID, realized))
		} else {
			existing.Quantity = remaining
		}
	}

	c.Volume += order.Quantity
	return true
}

func (m *Manager) removePosition(key PositionKey) {
	delete(m.positions, key)
	for i, k := range m.orderedKeys {
		if k == key {
			m.orderedKeys = append(m.orderedKeys[:i], m.orderedKeys[i+1:]...)
			break
		}
	}
}

// UpdateWeek performs weekly maintenance: rolls expired contracts,
// backfills thinned chains, reprices survivors, fills crossed limit
// orders, and marks the book. Running it twice in one week is a no-op.
func (m *Manager) UpdateWeek() {
	week, year := m.mkt.Week(), m.mkt.Year()
	if week == m.lastUpdateWeek {
		return
	}
	m.lastUpdateWeek = week

	countByProduct := make(map[string]int)
	for _, id := range m.contractOrder {
		countByProduct[m.contracts[id].Spec.Name]++
	}

	rolls := make(map[string]string)
	var expired []string
	for _, id := range append([]string(nil), m.contractOrder...) {
		c := m.contracts[id]
		if c.WeeksToExpiry(week, year) > 0 {
			continue
		}
		if next := m.nextContract(c.Spec); next != nil {
			rolls[id] = next.ID
		}
		expired = append(expired, id)
		if countByProduct[c.Spec.Name] <= backfillThreshold {
			m.generateCurve(c.Spec)
		}
	}

	for _, oldID := range expired {
		if newID, ok := rolls[oldID]; ok {
			for _, pt := range []PositionType{Speculative, Hedge} {
				key := PositionKey{oldID, pt}
				if pos := m.positions[key]; pos != nil {
					m.rollPosition(pos, newID)
				}
			}
			m.recorder.Emit(week, year, event.CategoryFutures,
				fmt.Sprintf("%s rolled to %s", oldID, newID))
		}
		m.removeContract(oldID)
	}

	for _, id := range m.contractOrder {
		c := m.contracts[id]
		shock := m.rng.Gauss(0, classVolatility(c.Spec.AssetClass))
		reference := m.referencePrice(c)
		weeksToExpiry := c.WeeksToExpiry(week, year)
		c.UpdatePrice(math.Round(m.nextPrice(c, reference, shock, weeksToExpiry)*100) / 100)
	}

	m.fillCrossedLimitOrders()

	for _, key := range m.orderedKeys {
		pos := m.positions[key]
		if c := m.contracts[pos.ContractID]; c != nil {
			pos.UpdatePnL(c.Price)
		}
	}
}

// fillCrossedLimitOrders executes resting limit orders whose price the
// market has reached, leaving the rest on the book.
func (m *Manager) fillCrossedLimitOrders() {
	var remaining []Order
	for _, order := range m.pendingOrders {
		c := m.contracts[order.ContractID]
		if c == nil {
			continue
		}
		crossed := (order.Side == Buy && c.Ask <= order.LimitPrice) ||
			(order.Side == Sell && c.Bid >= order.LimitPrice)
		if !crossed || !m.executeOrder(order) {
			remaining = append(remaining, order)
		}
	}
	m.pendingOrders = remaining
}

// nextContract finds or lists the nearest expiry after the current week.
func (m *Manager) nextContract(spec *Specification) *Contract {
	week, year := m.mkt.Week(), m.mkt.Year()

	type expiry struct{ week, year int }
	var candidates []expiry
	for _, weeksForward := range spec.ExpiryLadder {
		w, y := week+weeksForward, year
		for w > 52 {
			w -= 52
			y++
		}
		candidates = append(candidates, expiry{w, y})
	}
	for i := range candidates {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			if b.year < a.year || (b.year == a.year && b.week < a.week) {
				candidates[i], candidates[j] = b, a
			}
		}
	}

	for _, e := range candidates {
		if e.year > year || (e.year == year && e.week > week) {
			id := ContractID(spec.Name, e.week, e.year)
			if _, ok := m.contracts[id]; !ok {
				m.generateCurve(spec)
			}
			if c, ok := m.contracts[id]; ok {
				return c
			}
		}
	}
	return nil
}

// rollPosition transfers a position into the successor contract at the
// successor's price, carrying quantity and margin unchanged.
func (m *Manager) rollPosition(pos *Position, newID string) {
	next := m.contracts[newID]
	if next == nil {
		return
	}
	oldKey := PositionKey{pos.ContractID, pos.PositionType}
	newKey := PositionKey{newID, pos.PositionType}
	m.positions[newKey] = &Position{
		ContractID:   newID,
		Quantity:     pos.Quantity,
		AveragePrice: next.Price,
		PositionType: pos.PositionType,
		Spec:         next.Spec,
		RealizedPnL:  pos.RealizedPnL,
		MarginHeld:   pos.MarginHeld,
	}
	m.removePosition(oldKey)
	m.orderedKeys = append(m.orderedKeys, newKey)
}

func (m *Manager) removeContract(id string) {
	delete(m.contracts, id)
	for i, cid := range m.contractOrder {
		if cid == id {
			m.contractOrder = append(m.contractOrder[:i], m.contractOrder[i+1:]...)
			break
		}
	}
}

// referencePrice anchors weekly repricing: grains track the physical
// market, crude tracks Brent with WTI at a discount, FX and treasuries
// drift around their base.
func (m *Manager) referencePrice(c *Contract) float64 {
	switch c.Spec.AssetClass {
	case Agriculture:
		if commodity, ok := physicalCommodity(c.Spec.Name); ok {
			if avg, ok := m.mkt.AverageBid(commodity); ok {
				return avg
			}
		}
	case Energy:
		switch c.Spec.Name {
		case "BRENT OIL":
			return initialPrice("BRENT OIL") * (1 + m.rng.Gauss(0, 0.02))
		case "WEST TEXAS OIL":
			return initialPrice("BRENT OIL") * 0.95 * (1 + m.rng.Gauss(0, 0.02))
		}
	case Currency:
		return initialPrice(c.Spec.Name)
	case Financial:
		rateChange := m.rng.Gauss(0, 0.001)
		return c.Price * (1 - rateChange*10)
	}
	return c.Price
}

// nextPrice combines the class shock, carry to expiry, and 10% mean
// reversion toward the reference, clamped to a 3% weekly move.
func (m *Manager) nextPrice(c *Contract, reference, shock float64, weeksToExpiry int) float64 {
	carry := classCarry(c.Spec.AssetClass) * float64(weeksToExpiry)
	basis := c.Price - reference
	meanReversion := -basis * 0.1

	total := shock + carry + meanReversion
	const maxChange = 0.03
	total = math.Max(-maxChange, math.Min(maxChange, total))
	return c.Price * (1 + total)
}

// MarginReconciles reports whether held margin across positions matches
// the running total, within a cent.
func (m *Manager) MarginReconciles() bool {
	var sum float64
	for _, pos := range m.positions {
		sum += pos.MarginHeld
	}
	return math.Abs(sum-m.totalMargin) < 0.01
}
