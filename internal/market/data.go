package market

import "github.com/talgya/tradewinds/internal/crops"

// QuoteKey identifies one FOB market.
type QuoteKey struct {
	Commodity crops.Commodity
	Origin    string
}

// fobDef is one starting FOB market level.
type fobDef struct {
	Key        QuoteKey
	Bid, Offer float64
}

// baseFOBList holds starting levels in USD/MT for every quoted origin
// market, in a stable order so seeded runs reproduce exactly.
// Destination markets are derived, never quoted directly.
var baseFOBList = []fobDef{
	{QuoteKey{crops.Corn, "SANTOS"}, 215, 218},
	{QuoteKey{crops.Corn, "ROSARIO"}, 213, 216},
	{QuoteKey{crops.Corn, "ODESSA"}, 222, 225},
	{QuoteKey{crops.Corn, "CONSTANTA"}, 219, 223},
	{QuoteKey{crops.Corn, "NOVOROSSIYSK"}, 223, 226},
	{QuoteKey{crops.Corn, "ROUEN"}, 226, 230},
	{QuoteKey{crops.Corn, "PNW"}, 222, 224},

	{QuoteKey{crops.Wheat, "SANTOS"}, 221, 224},
	{QuoteKey{crops.Wheat, "ROSARIO"}, 220, 223},
	{QuoteKey{crops.Wheat, "NOVOROSSIYSK"}, 230, 232},
	{QuoteKey{crops.Wheat, "ODESSA"}, 228, 230},
	{QuoteKey{crops.Wheat, "CONSTANTA"}, 226, 228},
	{QuoteKey{crops.Wheat, "BURGAS"}, 226, 228},
	{QuoteKey{crops.Wheat, "ROUEN"}, 236, 238},
	{QuoteKey{crops.Wheat, "PNW"}, 222, 224},

	{QuoteKey{crops.Soybean, "SANTOS"}, 379, 381},
	{QuoteKey{crops.Soybean, "PARANAGUA"}, 378, 380},
	{QuoteKey{crops.Soybean, "ROSARIO"}, 388, 391},
	{QuoteKey{crops.Soybean, "PNW"}, 390, 392},
	{QuoteKey{crops.Soybean, "CONSTANTA"}, 390, 392},
	{QuoteKey{crops.Soybean, "NOVOROSSIYSK"}, 395, 398},
	{QuoteKey{crops.Soybean, "ODESSA"}, 393, 395},
}

// baseFOB indexes baseFOBList for reseed lookups.
var baseFOB = func() map[QuoteKey][2]float64 {
	m := make(map[QuoteKey][2]float64, len(baseFOBList))
	for _, d := range baseFOBList {
		m[d.Key] = [2]float64{d.Bid, d.Offer}
	}
	return m
}()

// fallbackFOB is used when a recovering market has no base table entry.
var fallbackFOB = map[crops.Commodity][2]float64{
	crops.Corn:    {215, 218},
	crops.Wheat:   {230, 233},
	crops.Soybean: {380, 383},
}

// portToRegion maps an origin port to its producing region.
var portToRegion = map[string]crops.Region{
	"SANTOS":       crops.BrazilCS,
	"PARANAGUA":    crops.BrazilCS,
	"ROSARIO":      crops.Argentina,
	"NOVOROSSIYSK": crops.Russia,
	"ODESSA":       crops.Ukraine,
	"CONSTANTA":    crops.Romania,
	"ROUEN":        crops.France,
	"BURGAS":       crops.Romania,
	"PNW":          crops.USAPNW,
}

// RegionForPort returns the producing region behind an origin port.
func RegionForPort(port string) (crops.Region, bool) {
	r, ok := portToRegion[port]
	return r, ok
}

type portDef struct {
	key              string
	name             string
	country          string
	riskLevel        int
	paymentDelayDays int
}

var originDefs = []portDef{
	{"SANTOS", "Santos", "Brazil", 1, 30},
	{"PARANAGUA", "Paranagua", "Brazil", 1, 30},
	{"ROSARIO", "Rosario", "Argentina", 1, 30},
	{"PNW", "Pacific NW", "USA", 1, 14},
	{"ODESSA", "Odessa", "Ukraine", 2, 30},
	{"NOVOROSSIYSK", "Novorossiysk", "Russia", 2, 45},
	{"CONSTANTA", "Constanta", "Romania", 1, 30},
	{"ROUEN", "Rouen", "France", 1, 14},
	{"BURGAS", "Burgas", "Bulgaria", 1, 30},
}

var destinationDefs = []portDef{
	{"ALGIERS", "Algiers", "Algeria", 2, 30},
	{"CASABLANCA", "Casablanca", "Morocco", 2, 30},
	{"ALEXANDRIA", "Alexandria", "Egypt", 3, 180},
	{"TUNIS", "Tunis", "Tunisia", 2, 30},
	{"MERSIN", "Mersin", "Turkey", 2, 30},
	{"BANDAR_IMAM", "Bandar Imam", "Iran", 4, 360},
	{"KARACHI", "Karachi", "Pakistan", 3, 90},
	{"JAKARTA", "Jakarta", "Indonesia", 2, 30},
	{"CHITTAGONG", "Chittagong", "Bangladesh", 4, 180},
	{"VIETNAM", "Ho Chi Minh", "Vietnam", 2, 30},
	{"NINGBO", "Ningbo", "China", 2, 30},
}

// destFactors sets the margin and volatility profile of each destination
// market. Risky discharge ports carry wider margins.
type destFactor struct {
	BaseMargin float64
	Volatility float64
}

var destFactors = map[string]destFactor{
	"ALGIERS":     {0.03, 0.02},
	"CASABLANCA":  {0.03, 0.02},
	"ALEXANDRIA":  {0.04, 0.03},
	"TUNIS":       {0.03, 0.02},
	"MERSIN":      {0.03, 0.02},
	"NINGBO":      {0.05, 0.03},
	"JAKARTA":     {0.05, 0.03},
	"VIETNAM":     {0.6, 0.03},
	"BANDAR_IMAM": {0.10, 0.04},
	"KARACHI":     {0.09, 0.04},
	"CHITTAGONG":  {0.09, 0.04},
}

var defaultDestFactor = destFactor{BaseMargin: 0.02, Volatility: 0.01}

// qualityPremiumOrigins earn a 0.5% landed-cost premium for grain quality.
var qualityPremiumOrigins = map[string]bool{
	"ROUEN": true,
	"PNW":   true,
}
