package freight

// Class identifies a dry-bulk vessel size class.
type Class string

const (
	Handymax Class = "HANDYMAX"
	Supramax Class = "SUPRAMAX"
	Panamax  Class = "PANAMAX"
)

// Classes lists every vessel class, smallest first.
var Classes = []Class{Handymax, Supramax, Panamax}

// Spec holds the operating characteristics of a vessel class.
type Spec struct {
	Capacity      int     // cargo capacity, MT
	DailyRateAtl  float64 // time-charter hire, Atlantic basin, USD/day
	DailyRatePac  float64 // time-charter hire, Pacific basin, USD/day
	Consumption   float64 // fuel burn, MT/day
	Speed         float64 // knots
	LoadRate      int     // MT/day
	DischargeRate int     // MT/day
}

var specs = map[Class]Spec{
	Handymax: {
		Capacity:      28000,
		DailyRateAtl:  14000,
		DailyRatePac:  13800,
		Consumption:   28,
		Speed:         12.5,
		LoadRate:      8000,
		DischargeRate: 8000,
	},
	Supramax: {
		Capacity:      55000,
		DailyRateAtl:  16500,
		DailyRatePac:  16200,
		Consumption:   32,
		Speed:         13.0,
		LoadRate:      12000,
		DischargeRate: 12000,
	},
	Panamax: {
		Capacity:      82000,
		DailyRateAtl:  18500,
		DailyRatePac:  18200,
		Consumption:   36,
		Speed:         13.5,
		LoadRate:      15000,
		DischargeRate: 15000,
	},
}

// SpecFor returns the operating spec for a class.
func SpecFor(c Class) Spec {
	return specs[c]
}

// Capacity returns the cargo capacity of a class in MT.
func Capacity(c Class) int {
	return specs[c].Capacity
}
