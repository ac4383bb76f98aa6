package futures

import "fmt"

// Contract is one listed expiry of a product.
type Contract struct {
	Spec       *Specification
	ExpiryWeek int
	ExpiryYear int
	ID         string

	Price     float64
	LastPrice float64
	High      float64
	Low       float64
	Bid       float64
	Ask       float64
	Volume    int
	History   []float64
}

// ContractID builds the identity for a product expiry.
func ContractID(name string, expiryWeek, expiryYear int) string {
	return fmt.Sprintf("%sW%d-%d", name, expiryWeek, expiryYear)
}

func newContract(spec *Specification, expiryWeek, expiryYear int, price float64) *Contract {
	c := &Contract{
		Spec:       spec,
		ExpiryWeek: expiryWeek,
		ExpiryYear: expiryYear,
		ID:         ContractID(spec.Name, expiryWeek, expiryYear),
		Price:      price,
		LastPrice:  price,
		High:       price,
		Low:        price,
		Bid:        price - spec.TickSize*2,
		Ask:        price + spec.TickSize*2,
	}
	c.History = append(c.History, price)
	return c
}

// UpdatePrice marks a new price, tracking high/low and re-centering the
// bid/ask around it at a two-tick spread.
func (c *Contract) UpdatePrice(price float64) {
	c.LastPrice = c.Price
	c.Price = price
	c.High = max(c.High, price)
	c.Low = min(c.Low, price)
	c.History = append(c.History, price)

	spread := c.Spec.TickSize * 2
	c.Bid = price - spread/2
	c.Ask = price + spread/2
}

// WeeksToExpiry counts weeks until expiry from the given point in time.
// Zero or negative means expired.
func (c *Contract) WeeksToExpiry(week, year int) int {
	return (c.ExpiryWeek - week) + (c.ExpiryYear-year)*52
}

// Order is a request to trade one contract.
type Order struct {
	ContractID   string
	Type         OrderType
	Side         OrderSide
	Quantity     int
	LimitPrice   float64 // required for limit orders
	PositionType PositionType
}

// PositionKey identifies a position book entry.
type PositionKey struct {
	ContractID   string
	PositionType PositionType
}

// Position is a net holding in one contract. Quantity is positive long,
// negative short.
type Position struct {
	ContractID    string
	Quantity      int
	AveragePrice  float64
	PositionType  PositionType
	Spec          *Specification
	UnrealizedPnL float64
	RealizedPnL   float64
	MarginHeld    float64
}

// UpdatePnL recomputes unrealized P&L against the given mark.
func (p *Position) UpdatePnL(price float64) {
	if p.Quantity == 0 {
		p.UnrealizedPnL = 0
		return
	}
	change := price - p.AveragePrice
	value := float64(abs(p.Quantity)) * change * p.Spec.ContractSize
	if p.Quantity > 0 {
		p.UnrealizedPnL = value
	} else {
		p.UnrealizedPnL = -value
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
