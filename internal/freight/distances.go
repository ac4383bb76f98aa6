package freight

// Route is an origin-destination port pair.
type Route struct {
	Origin, Destination string
}

// distances holds great-circle shipping distances in nautical miles for
// the grain routes the engine trades.
var distances = map[Route]float64{
	{"SANTOS", "NINGBO"}:      13211,
	{"SANTOS", "ALGIERS"}:     4789,
	{"SANTOS", "ALEXANDRIA"}:  5642,
	{"SANTOS", "BANDAR_IMAM"}: 8548,
	{"SANTOS", "VIETNAM"}:     12450,
	{"SANTOS", "CASABLANCA"}:  4410,
	{"SANTOS", "TUNIS"}:       5115,
	{"SANTOS", "MERSIN"}:      6280,
	{"SANTOS", "KARACHI"}:     8120,
	{"SANTOS", "JAKARTA"}:     11890,
	{"SANTOS", "CHITTAGONG"}:  10740,

	{"PARANAGUA", "NINGBO"}:      13333,
	{"PARANAGUA", "ALGIERS"}:     4911,
	{"PARANAGUA", "ALEXANDRIA"}:  5764,
	{"PARANAGUA", "BANDAR_IMAM"}: 8670,
	{"PARANAGUA", "VIETNAM"}:     12572,
	{"PARANAGUA", "CASABLANCA"}:  4532,
	{"PARANAGUA", "TUNIS"}:       5237,
	{"PARANAGUA", "MERSIN"}:      6402,
	{"PARANAGUA", "KARACHI"}:     8242,
	{"PARANAGUA", "JAKARTA"}:     12012,
	{"PARANAGUA", "CHITTAGONG"}:  10862,

	{"ROSARIO", "NINGBO"}:      14306,
	{"ROSARIO", "ALGIERS"}:     5884,
	{"ROSARIO", "ALEXANDRIA"}:  6737,
	{"ROSARIO", "BANDAR_IMAM"}: 9033,
	{"ROSARIO", "VIETNAM"}:     13545,
	{"ROSARIO", "CASABLANCA"}:  5505,
	{"ROSARIO", "TUNIS"}:       6210,
	{"ROSARIO", "MERSIN"}:      7375,
	{"ROSARIO", "KARACHI"}:     9215,
	{"ROSARIO", "JAKARTA"}:     12985,
	{"ROSARIO", "CHITTAGONG"}:  11835,

	{"PNW", "NINGBO"}:      5100,
	{"PNW", "VIETNAM"}:     6340,
	{"PNW", "ALGIERS"}:     8450,
	{"PNW", "ALEXANDRIA"}:  8920,
	{"PNW", "BANDAR_IMAM"}: 9780,
	{"PNW", "CASABLANCA"}:  8071,
	{"PNW", "TUNIS"}:       8776,
	{"PNW", "MERSIN"}:      9558,
	{"PNW", "KARACHI"}:     9352,
	{"PNW", "JAKARTA"}:     7560,
	{"PNW", "CHITTAGONG"}:  8980,

	{"ODESSA", "NINGBO"}:      10816,
	{"ODESSA", "VIETNAM"}:     9955,
	{"ODESSA", "ALEXANDRIA"}:  1064,
	{"ODESSA", "ALGIERS"}:     1684,
	{"ODESSA", "BANDAR_IMAM"}: 4456,
	{"ODESSA", "CASABLANCA"}:  2105,
	{"ODESSA", "TUNIS"}:       1331,
	{"ODESSA", "MERSIN"}:      924,
	{"ODESSA", "KARACHI"}:     4028,
	{"ODESSA", "JAKARTA"}:     9235,
	{"ODESSA", "CHITTAGONG"}:  6980,

	{"NOVOROSSIYSK", "NINGBO"}:      10930,
	{"NOVOROSSIYSK", "VIETNAM"}:     10069,
	{"NOVOROSSIYSK", "ALEXANDRIA"}:  1178,
	{"NOVOROSSIYSK", "ALGIERS"}:     1798,
	{"NOVOROSSIYSK", "BANDAR_IMAM"}: 4570,
	{"NOVOROSSIYSK", "CASABLANCA"}:  2219,
	{"NOVOROSSIYSK", "TUNIS"}:       1445,
	{"NOVOROSSIYSK", "MERSIN"}:      1038,
	{"NOVOROSSIYSK", "KARACHI"}:     4142,
	{"NOVOROSSIYSK", "JAKARTA"}:     9349,
	{"NOVOROSSIYSK", "CHITTAGONG"}:  7094,

	{"CONSTANTA", "NINGBO"}:      10670,
	{"CONSTANTA", "VIETNAM"}:     9809,
	{"CONSTANTA", "ALEXANDRIA"}:  918,
	{"CONSTANTA", "ALGIERS"}:     1538,
	{"CONSTANTA", "BANDAR_IMAM"}: 4310,
	{"CONSTANTA", "CASABLANCA"}:  1959,
	{"CONSTANTA", "TUNIS"}:       1185,
	{"CONSTANTA", "MERSIN"}:      778,
	{"CONSTANTA", "KARACHI"}:     3882,
	{"CONSTANTA", "JAKARTA"}:     9089,
	{"CONSTANTA", "CHITTAGONG"}:  6834,

	{"ROUEN", "NINGBO"}:      10400,
	{"ROUEN", "VIETNAM"}:     9539,
	{"ROUEN", "ALEXANDRIA"}:  3148,
	{"ROUEN", "ALGIERS"}:     1468,
	{"ROUEN", "BANDAR_IMAM"}: 6467,
	{"ROUEN", "CASABLANCA"}:  889,
	{"ROUEN", "TUNIS"}:       1915,
	{"ROUEN", "MERSIN"}:      3008,
	{"ROUEN", "KARACHI"}:     6039,
	{"ROUEN", "JAKARTA"}:     8819,
	{"ROUEN", "CHITTAGONG"}:  7564,

	{"BURGAS", "NINGBO"}:      10600,
	{"BURGAS", "VIETNAM"}:     9739,
	{"BURGAS", "ALEXANDRIA"}:  848,
	{"BURGAS", "ALGIERS"}:     1468,
	{"BURGAS", "BANDAR_IMAM"}: 4240,
	{"BURGAS", "CASABLANCA"}:  1889,
	{"BURGAS", "TUNIS"}:       1115,
	{"BURGAS", "MERSIN"}:      708,
	{"BURGAS", "KARACHI"}:     3812,
	{"BURGAS", "JAKARTA"}:     9019,
	{"BURGAS", "CHITTAGONG"}:  6764,
}

// portDelays is expected waiting time at port in days. Ports without an
// entry wait the default two days.
var portDelays = map[string]int{
	"SANTOS":      5,
	"PARANAGUA":   5,
	"ODESSA":      5,
	"PNW":         2,
	"ROUEN":       2,
	"ALEXANDRIA":  4,
	"BANDAR_IMAM": 7,
	"NINGBO":      3,
	"VIETNAM":     4,
}

const defaultPortDelay = 2

// PortDelay returns the expected waiting days at a port.
func PortDelay(port string) int {
	if d, ok := portDelays[port]; ok {
		return d
	}
	return defaultPortDelay
}

// region groups ports for distance estimation on unlisted routes.
func region(port string) string {
	switch port {
	case "ODESSA", "CONSTANTA", "NOVOROSSIYSK":
		return "BLACK_SEA"
	case "ALEXANDRIA", "ALGIERS", "MERSIN":
		return "MED"
	case "BANDAR_IMAM":
		return "MIDDLE_EAST"
	case "NINGBO", "VIETNAM":
		return "ASIA"
	case "SANTOS", "PARANAGUA", "ROSARIO":
		return "SOUTH_AM"
	case "ROUEN":
		return "EUROPE_ATL"
	default:
		return "OTHER"
	}
}

var regionalDistances = map[[2]string]float64{
	{"BLACK_SEA", "MED"}:         1200,
	{"BLACK_SEA", "MIDDLE_EAST"}: 4200,
	{"BLACK_SEA", "ASIA"}:        8600,
	{"EUROPE_ATL", "MED"}:        2000,
	{"SOUTH_AM", "ASIA"}:         10500,
	{"SOUTH_AM", "MED"}:          5000,
}

// Distance resolves the sailing distance for a route: direct table, then
// reverse, then named fallbacks, then a regional estimate.
func Distance(origin, destination string) float64 {
	if d, ok := distances[Route{origin, destination}]; ok {
		return d
	}
	if d, ok := distances[Route{destination, origin}]; ok {
		return d
	}
	if destination == "NINGBO" {
		switch origin {
		case "SANTOS", "PARANAGUA":
			return 9500
		case "ODESSA", "CONSTANTA", "NOVOROSSIYSK":
			return 8600
		}
	}
	if d, ok := regionalDistances[[2]string{region(origin), region(destination)}]; ok {
		return d * 1.1 // indirect routing allowance
	}
	return 6000
}
