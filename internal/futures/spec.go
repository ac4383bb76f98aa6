package futures

// AssetClass groups contracts by the behavior of their underlying.
type AssetClass string

const (
	Agriculture AssetClass = "AGRICULTURE"
	Softs       AssetClass = "SOFTS"
	Energy      AssetClass = "ENERGY"
	Currency    AssetClass = "CURRENCY"
	Financial   AssetClass = "FINANCIAL"
)

// OrderType is market or limit.
type OrderType string

const (
	OrderMarket OrderType = "MARKET"
	OrderLimit  OrderType = "LIMIT"
)

// OrderSide is buy or sell.
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// PositionType separates speculative books from hedges.
type PositionType string

const (
	Speculative PositionType = "SPECULATIVE"
	Hedge       PositionType = "HEDGE"
)

// Specification defines a futures contract product. Name is the unique
// identity.
type Specification struct {
	Name             string
	Description      string
	AssetClass       AssetClass
	ContractSize     float64 // units per contract
	TickSize         float64 // minimum price movement
	Currency         string
	Unit             string
	BasisConversion  float64 // unit-to-MT conversion where applicable
	InitialMarginPct float64
	ExpiryLadder     []int // weeks forward for listed expiries
}

var defaultLadder = []int{13, 26, 39, 52}

// specDefs lists every tradable product.
var specDefs = []Specification{
	{
		Name: "CORN", Description: "Corn Futures - 5,000 Metric Tons",
		AssetClass: Agriculture, ContractSize: 5000, TickSize: 0.25,
		Currency: "USD", Unit: "MT", BasisConversion: 1.0,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},
	{
		Name: "WHEAT", Description: "Wheat Futures - 5,000 Metric Tons",
		AssetClass: Agriculture, ContractSize: 5000, TickSize: 0.25,
		Currency: "USD", Unit: "MT", BasisConversion: 1.0,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},
	{
		Name: "SOYBEAN", Description: "Soybean Futures - 5,000 Metric Tons",
		AssetClass: Agriculture, ContractSize: 5000, TickSize: 0.25,
		Currency: "USD", Unit: "MT", BasisConversion: 1.0,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},

	{
		Name: "SUGAR", Description: "Sugar #11 - 112,000 Pounds",
		AssetClass: Softs, ContractSize: 112000, TickSize: 0.01,
		Currency: "USD", Unit: "LBS", BasisConversion: 2204.62,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},
	{
		Name: "COFFEE", Description: "Coffee - 37,500 Pounds",
		AssetClass: Softs, ContractSize: 3750, TickSize: 0.05,
		Currency: "USD", Unit: "LBS", BasisConversion: 2204.62,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},
	{
		Name: "COTTON", Description: "Cotton - 50,000 Pounds",
		AssetClass: Softs, ContractSize: 50000, TickSize: 0.01,
		Currency: "USD", Unit: "LBS", BasisConversion: 2204.62,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},

	{
		Name: "WEST TEXAS OIL", Description: "WTI Crude Oil - 1,000 Barrels",
		AssetClass: Energy, ContractSize: 5000, TickSize: 0.01,
		Currency: "USD", Unit: "BBL", BasisConversion: 7.33,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},
	{
		Name: "BRENT OIL", Description: "Brent Crude Oil - 1,000 Barrels",
		AssetClass: Energy, ContractSize: 5000, TickSize: 0.01,
		Currency: "USD", Unit: "BBL", BasisConversion: 7.33,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},
	{
		Name: "NATURAL GAS", Description: "Natural Gas - 10,000 MMBtu",
		AssetClass: Energy, ContractSize: 100000, TickSize: 0.001,
		Currency: "USD", Unit: "MMBTU", BasisConversion: 1.0,
		InitialMarginPct: 0.10, ExpiryLadder: defaultLadder,
	},

	{
		Name: "EURUSD", Description: "Euro FX - €125,000",
		AssetClass: Currency, ContractSize: 250000, TickSize: 0.00005,
		Currency: "EURUSD", Unit: "EURUSD", BasisConversion: 1.0,
		InitialMarginPct: 0.05, ExpiryLadder: defaultLadder,
	},
	{
		Name: "GBPUSD", Description: "British Pound - £62,500",
		AssetClass: Currency, ContractSize: 250000, TickSize: 0.00005,
		Currency: "GBPUSD", Unit: "GBPUSD", BasisConversion: 1.0,
		InitialMarginPct: 0.05, ExpiryLadder: defaultLadder,
	},
	{
		Name: "USDJPY", Description: "Japanese Yen - ¥12,500,000",
		AssetClass: Currency, ContractSize: 7500, TickSize: 0.001,
		Currency: "USDJPY", Unit: "USDJPY", BasisConversion: 1.0,
		InitialMarginPct: 0.05, ExpiryLadder: defaultLadder,
	},

	{
		Name: "10YR TREASURY", Description: "10-Year Treasury - $100,000 Face Value",
		AssetClass: Financial, ContractSize: 1000, TickSize: 0.015625,
		Currency: "USD", Unit: "POINTS", BasisConversion: 1.0,
		InitialMarginPct: 0.03, ExpiryLadder: defaultLadder,
	},
	{
		Name: "5YR TREASURY", Description: "5-Year Treasury - $100,000 Face Value",
		AssetClass: Financial, ContractSize: 1000, TickSize: 0.0078125,
		Currency: "USD", Unit: "POINTS", BasisConversion: 1.0,
		InitialMarginPct: 0.03, ExpiryLadder: defaultLadder,
	},
}

// initialPrices seeds curves when no physical reference exists.
var initialPrices = map[string]float64{
	"CORN":    215,
	"WHEAT":   230,
	"SOYBEAN": 380,

	"SUGAR":  19.54,
	"COFFEE": 328.60,
	"COTTON": 68.78,

	"WEST TEXAS OIL": 70.17,
	"BRENT OIL":      73.84,
	"NATURAL GAS":    3.522,

	"EURUSD": 1.09234,
	"GBPUSD": 1.25223,
	"USDJPY": 155.725,

	"10YR TREASURY": 108.515625,
	"5YR TREASURY":  106.06875,
}

func initialPrice(name string) float64 {
	if p, ok := initialPrices[name]; ok {
		return p
	}
	return 100.0
}

// seasonalPattern marks expiry weeks that command a premium or discount
// for the grain curves.
type seasonalPattern struct {
	peakWeeks []int
	lowWeeks  []int
}

var seasonalPatterns = map[string]seasonalPattern{
	"CORN":    {peakWeeks: []int{10, 11, 12, 13}, lowWeeks: []int{40, 41, 42, 43}},
	"WHEAT":   {peakWeeks: []int{20, 21, 22, 23}, lowWeeks: []int{32, 33, 34, 35}},
	"SOYBEAN": {peakWeeks: []int{15, 16, 17, 18}, lowWeeks: []int{37, 38, 39, 40}},
}

// seasonalFactor is the expiry-week premium for grain curves: +3% into
// pre-harvest expiries, -2% into post-harvest ones.
func seasonalFactor(name string, expiryWeek int) float64 {
	p, ok := seasonalPatterns[name]
	if !ok {
		return 0
	}
	for _, w := range p.peakWeeks {
		if w == expiryWeek {
			return 0.03
		}
	}
	for _, w := range p.lowWeeks {
		if w == expiryWeek {
			return -0.02
		}
	}
	return 0
}

// classVolatility is the weekly repricing shock per asset class.
func classVolatility(class AssetClass) float64 {
	switch class {
	case Agriculture:
		return 0.01
	case Softs:
		return 0.01
	case Energy:
		return 0.015
	case Currency:
		return 0.02
	case Financial:
		return 0.01
	default:
		return 0.015
	}
}

// classCarry is the weekly carry cost per week to expiry.
func classCarry(class AssetClass) float64 {
	switch class {
	case Agriculture:
		return 0.001
	case Energy:
		return 0.002
	case Softs:
		return 0.0015
	default:
		return 0
	}
}
