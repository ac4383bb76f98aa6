package storage

// facilityDef seeds one port elevator.
type facilityDef struct {
	key           string
	name          string
	totalCapacity int
	monthlyCost   float64 // USD/MT/month
	handlingCost  float64 // USD/MT in or out
	minThroughput int     // MT/month
	maxIntake     int     // MT/day
	maxOuttake    int     // MT/day
}

// facilityDefs in fixed order. Export terminals first, then import-side
// elevators.
var facilityDefs = []facilityDef{
	{"SANTOS", "Santos Terminal", 1_000_000, 1.25, 1.2, 50_000, 15_000, 15_000},
	{"PARANAGUA", "Paranagua Silos", 800_000, 1.5, 1.25, 40_000, 12_000, 12_000},
	{"ROSARIO", "Rosario Terminal", 600_000, 1.5, 1.5, 30_000, 10_000, 10_000},
	{"ODESSA", "Odessa Terminal", 600_000, 1.5, 1.5, 30_000, 10_000, 10_000},
	{"NOVOROSSIYSK", "Novorossiysk Terminal", 700_000, 1.5, 1.5, 35_000, 12_000, 12_000},
	{"CONSTANTA", "Constanta Terminal", 500_000, 0.8, 1, 25_000, 8_000, 8_000},
	{"ALEXANDRIA", "Alexandria Silos", 500_000, 1.5, 1.5, 25_000, 8_000, 8_000},
	{"ALGIERS", "Algiers Terminal", 400_000, 1.2, 1, 20_000, 7_000, 7_000},
	{"BANDAR_IMAM", "Bandar Imam Terminal", 300_000, 3.0, 2.0, 15_000, 5_000, 5_000},
	{"MERSIN", "Toros Terminal", 400_000, 1.25, 1, 20_000, 7_000, 7_000},
	{"ROUEN", "Rouen Terminal", 450_000, 1.2, 0.8, 25_000, 8_000, 8_000},
	{"BURGAS", "Burgas Terminal", 400_000, 1.2, 1, 20_000, 7_000, 7_000},
	{"PNW", "Pacific Northwest Terminal", 600_000, 0.5, 1, 30_000, 10_000, 10_000},
	{"CHITTAGONG", "Chittagong Terminal", 300_000, 2, 1, 15_000, 5_000, 5_000},
	{"VIETNAM", "Vietnam Terminal", 400_000, 1.5, 1, 20_000, 7_000, 7_000},
	{"JAKARTA", "Jakarta Terminal", 350_000, 1.3, 0.75, 18_000, 6_000, 6_000},
	{"CASABLANCA", "Casablanca Terminal", 350_000, 1, 1, 18_000, 6_000, 6_000},
	{"NINGBO", "Ningbo Terminal", 1_150_000, 1.2, 1.25, 30_000, 10_000, 10_000},
}
