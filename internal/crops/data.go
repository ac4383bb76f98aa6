package crops

// Commodity identifies a physically traded grain.
type Commodity string

const (
	Corn    Commodity = "CORN"
	Wheat   Commodity = "WHEAT"
	Soybean Commodity = "SOYBEAN"
)

// Commodities lists every physical commodity, in a stable order.
var Commodities = []Commodity{Corn, Wheat, Soybean}

// Region identifies a producing region.
type Region string

const (
	BrazilCS  Region = "BRAZIL_CS"
	Argentina Region = "ARGENTINA"
	Russia    Region = "RUSSIA"
	Ukraine   Region = "UKRAINE"
	Romania   Region = "ROMANIA"
	France    Region = "FRANCE"
	USAPNW    Region = "USA_PNW"
)

// Regions lists every producing region, in a stable order.
var Regions = []Region{BrazilCS, Argentina, Russia, Ukraine, Romania, France, USAPNW}

// weekRange is an inclusive span of week numbers within a year.
type weekRange struct {
	Start, End int
}

func (r weekRange) contains(week int) bool {
	return r.Start <= week && week <= r.End
}

// cycleDef is the static calendar and WASDE balance-sheet data for one
// (region, commodity) pair. Quantities are metric tons per year.
type cycleDef struct {
	Region              Region
	Commodity           Commodity
	Planting            weekRange
	Harvest             weekRange
	StockPeak           weekRange
	StockLow            weekRange
	BaseProduction      int
	DomesticConsumption int
	ExportCapacity      int
}

// cycleDefs covers every producing (region, commodity) pairing. Weeks are
// calendar weeks; southern-hemisphere crops plant late in the year and
// harvest early in the next.
var cycleDefs = []cycleDef{
	{BrazilCS, Corn, weekRange{40, 44}, weekRange{9, 20}, weekRange{24, 32}, weekRange{5, 8}, 95_000_000, 37_000_000, 58_000_000},
	{BrazilCS, Soybean, weekRange{39, 44}, weekRange{5, 16}, weekRange{16, 24}, weekRange{1, 4}, 129_000_000, 34_000_000, 90_000_000},
	{BrazilCS, Wheat, weekRange{16, 20}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 28_100_000, 11_900_000, 16_800_000},

	{Argentina, Corn, weekRange{36, 44}, weekRange{9, 24}, weekRange{20, 28}, weekRange{5, 8}, 71_000_000, 12_300_000, 58_000_000},
	{Argentina, Soybean, weekRange{40, 48}, weekRange{13, 20}, weekRange{16, 24}, weekRange{5, 8}, 62_000_000, 20_600_000, 34_500_000},
	{Argentina, Wheat, weekRange{20, 28}, weekRange{48, 4}, weekRange{4, 12}, weekRange{44, 47}, 27_500_000, 5_050_000, 23_500_000},

	{Russia, Wheat, weekRange{36, 40}, weekRange{27, 32}, weekRange{36, 44}, weekRange{23, 26}, 102_500_000, 34_250_000, 67_000_000},
	{Russia, Corn, weekRange{14, 18}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 23_000_000, 5_200_000, 17_300_000},
	{Russia, Soybean, weekRange{18, 22}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 14_800_000, 3_800_000, 11_000_000},

	{Ukraine, Corn, weekRange{14, 18}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 36_500_000, 4_450_000, 33_000_000},
	{Ukraine, Wheat, weekRange{36, 40}, weekRange{27, 32}, weekRange{36, 44}, weekRange{23, 26}, 38_900_000, 6_400_000, 31_500_000},
	{Ukraine, Soybean, weekRange{18, 22}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 13_500_000, 1_500_000, 12_000_000},

	{Romania, Wheat, weekRange{36, 40}, weekRange{27, 32}, weekRange{36, 44}, weekRange{23, 26}, 23_000_000, 3_000_000, 20_000_000},
	{Romania, Corn, weekRange{14, 18}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 32_000_000, 5_000_000, 26_000_000},
	{Romania, Soybean, weekRange{18, 22}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 20_500_000, 1_500_000, 17_000_000},

	{France, Wheat, weekRange{36, 48}, weekRange{27, 32}, weekRange{36, 44}, weekRange{23, 26}, 65_000_000, 16_000_000, 44_000_000},
	{France, Corn, weekRange{14, 18}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 25_000_000, 8_000_000, 17_000_000},

	{USAPNW, Wheat, weekRange{36, 40}, weekRange{27, 32}, weekRange{36, 44}, weekRange{23, 26}, 38_000_000, 3_000_000, 25_000_000},
	{USAPNW, Corn, weekRange{14, 18}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 40_000_000, 5_000_000, 35_000_000},
	{USAPNW, Soybean, weekRange{18, 22}, weekRange{36, 44}, weekRange{44, 52}, weekRange{32, 35}, 40_000_000, 3_000_000, 37_000_000},
}
