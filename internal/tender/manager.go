package tender

import (
	"fmt"
	"math"
	"sort"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/entropy"
	"github.com/talgya/tradewinds/internal/event"
	"github.com/talgya/tradewinds/internal/freight"
	"github.com/talgya/tradewinds/internal/market"
)

// participationCost is charged per tender entered, win or lose.
const participationCost = 10000

// buyerPref drives tender generation for one importing port.
type buyerPref struct {
	buyer       string
	commodities []crops.Commodity
	origins     []string
}

// buyerPrefs in fixed order so generation draws replay identically.
var buyerPrefs = []buyerPref{
	{"CASABLANCA",
		[]crops.Commodity{crops.Wheat, crops.Corn},
		[]string{"ROUEN", "SANTOS", "ODESSA", "NOVOROSSIYSK", "CONSTANTA", "BURGAS", "ROSARIO"}},
	{"BANDAR_IMAM",
		[]crops.Commodity{crops.Corn, crops.Soybean, crops.Wheat},
		[]string{"SANTOS", "ROSARIO", "ODESSA", "NOVOROSSIYSK", "CONSTANTA"}},
	{"ALEXANDRIA",
		[]crops.Commodity{crops.Wheat, crops.Corn},
		[]string{"ODESSA", "NOVOROSSIYSK", "CONSTANTA", "BURGAS", "ROUEN"}},
	{"ALGIERS",
		[]crops.Commodity{crops.Wheat, crops.Corn},
		[]string{"ROUEN", "NOVOROSSIYSK", "CONSTANTA", "BURGAS", "ODESSA"}},
	{"CHITTAGONG",
		[]crops.Commodity{crops.Wheat, crops.Corn},
		[]string{"PARANAGUA", "SANTOS", "ODESSA", "NOVOROSSIYSK"}},
	{"VIETNAM",
		[]crops.Commodity{crops.Wheat, crops.Corn},
		[]string{"PARANAGUA", "SANTOS", "ODESSA", "NOVOROSSIYSK", "PNW", "ROSARIO"}},
	{"JAKARTA",
		[]crops.Commodity{crops.Wheat, crops.Corn},
		[]string{"PARANAGUA", "SANTOS", "ODESSA", "NOVOROSSIYSK", "PNW", "ROSARIO"}},
}

// AwardResult pairs a closed tender with the offers it awarded.
type AwardResult struct {
	TenderID string
	Awards   []*Offer
}

// Manager owns the tender book: generation, competitor bidding,
// evaluation, delivery tracking and blacklists.
type Manager struct {
	rng      *entropy.Source
	mkt      *market.Market
	recorder *event.Recorder

	active          map[string]*Announcement
	activeOrder     []string
	historical      map[string]*Announcement
	historicalOrder []string
	offers          map[string][]*Offer
	deliveries      []Delivery

	// buyer -> participant -> absolute week the blacklist expires
	blacklists map[string]map[string]int

	// per-year generation state
	lastGenerationWeek int
	tendered           map[string]map[crops.Commodity]bool
}

// NewManager creates a Manager with an empty book.
func NewManager(rng *entropy.Source, mkt *market.Market, recorder *event.Recorder) *Manager {
	m := &Manager{
		rng:        rng,
		mkt:        mkt,
		recorder:   recorder,
		active:     make(map[string]*Announcement),
		historical: make(map[string]*Announcement),
		offers:     make(map[string][]*Offer),
		blacklists: make(map[string]map[string]int),
	}
	m.resetTracker()
	return m
}

func (m *Manager) resetTracker() {
	m.tendered = make(map[string]map[crops.Commodity]bool)
	for _, p := range buyerPrefs {
		m.tendered[p.buyer] = make(map[crops.Commodity]bool)
	}
}

// absWeek converts the market calendar to a monotonic week count.
func (m *Manager) absWeek() int {
	return m.mkt.Year()*52 + m.mkt.Week()
}

// ParticipationCost returns the fee charged to enter a tender.
func (m *Manager) ParticipationCost() float64 { return participationCost }

// Blacklist bars a participant from one buyer's tenders until the given
// absolute week.
func (m *Manager) Blacklist(participant, buyer string, untilAbsWeek int) {
	if m.blacklists[buyer] == nil {
		m.blacklists[buyer] = make(map[string]int)
	}
	m.blacklists[buyer][participant] = untilAbsWeek
}

// IsBlacklisted reports whether the participant is currently barred from
// the buyer's tenders.
func (m *Manager) IsBlacklisted(participant, buyer string) bool {
	until, ok := m.blacklists[buyer][participant]
	return ok && m.absWeek() < until
}

// UpdateWeek generates new tenders and closes any whose submission
// deadline has passed, returning the award results.
func (m *Manager) UpdateWeek() []AwardResult {
	week := m.mkt.Week()
	m.generateTenders(week)

	var results []AwardResult
	var stillOpen []string
	for _, id := range m.activeOrder {
		t := m.active[id]
		if week <= t.SubmissionDeadline || t.Status != StatusOpen {
			stillOpen = append(stillOpen, id)
			continue
		}

		t.Status = StatusPendingAward
		for _, o := range m.competitorOffers(t) {
			m.SubmitOffer(t.ID, o)
		}
		awards := m.evaluateOffers(t)

		delete(m.active, id)
		m.historical[id] = t
		m.historicalOrder = append(m.historicalOrder, id)

		if len(awards) > 0 {
			results = append(results, AwardResult{TenderID: id, Awards: awards})
		}
	}
	m.activeOrder = stillOpen
	return results
}

func (m *Manager) generateTenders(week int) {
	// Each buyer tenders a commodity at most once per calendar year.
	if week == 1 {
		m.lastGenerationWeek = 0
		m.resetTracker()
	}
	if week%6 != 0 || week == m.lastGenerationWeek {
		return
	}
	m.lastGenerationWeek = week
	year := m.mkt.Year()

	for i, n := 0, m.rng.IntBetween(1, 3); i < n; i++ {
		var available []buyerPref
		for _, p := range buyerPrefs {
			if len(m.tendered[p.buyer]) < len(p.commodities) {
				available = append(available, p)
			}
		}
		if len(available) == 0 {
			continue
		}
		pref := entropy.Pick(m.rng, available)

		var commodities []crops.Commodity
		for _, c := range pref.commodities {
			if !m.tendered[pref.buyer][c] {
				commodities = append(commodities, c)
			}
		}
		if len(commodities) == 0 {
			continue
		}
		commodity := entropy.Pick(m.rng, commodities)
		m.tendered[pref.buyer][commodity] = true

		class := entropy.Pick(m.rng, freight.Classes)
		capacity := freight.Capacity(class)
		vessels := m.rng.IntBetween(1, 3)

		window := entropy.Pick(m.rng, []int{8, 12, 16, 24})
		start := week + m.rng.IntBetween(6, 12)
		end := start + window
		shipYear := year
		if start > 52 {
			start -= 52
			shipYear++
		}
		if end > 52 {
			end -= 52
		}

		t := &Announcement{
			ID:                 newID(),
			Buyer:              pref.buyer,
			Commodity:          commodity,
			TotalQuantity:      vessels * capacity,
			MinCargoSize:       capacity,
			MaxCargoSize:       capacity,
			PermittedOrigins:   pref.origins,
			ShipmentStart:      start,
			ShipmentEnd:        end,
			ShipmentYear:       shipYear,
			PaymentTermsDays:   entropy.Pick(m.rng, []int{30, 45, 60, 90}),
			MaxVessels:         vessels,
			RequiredClass:      class,
			AnnouncedWeek:      week,
			AnnouncedYear:      year,
			SubmissionDeadline: week + 2,
			ParticipationCost:  participationCost,
			Status:             StatusOpen,
		}
		m.active[t.ID] = t
		m.activeOrder = append(m.activeOrder, t.ID)

		m.recorder.Emit(week, year, event.CategoryTender,
			fmt.Sprintf("%s tenders %dK MT %s, %s, shipment weeks %d-%d",
				t.Buyer, t.TotalQuantity/1000, t.Commodity, t.RequiredClass, t.ShipmentStart, t.ShipmentEnd))
	}
}

// SubmitOffer records an offer against an open tender. It returns false
// when the tender is unknown, closed, or the offer exceeds the tendered
// quantity.
func (m *Manager) SubmitOffer(tenderID string, o *Offer) bool {
	t, ok := m.active[tenderID]
	if !ok || t.Status != StatusOpen && t.Status != StatusPendingAward {
		return false
	}
	if o.Quantity > t.TotalQuantity {
		return false
	}
	m.offers[tenderID] = append(m.offers[tenderID], o)
	return true
}

// evaluateOffers awards the tender to the cheapest compliant offers.
// Offers within 5% of the lowest price are eligible; awards are whole
// vessels of the required class.
func (m *Manager) evaluateOffers(t *Announcement) []*Offer {
	all := m.offers[t.ID]
	if len(all) == 0 {
		t.Status = StatusExpired
		m.recorder.Emit(m.mkt.Week(), m.mkt.Year(), event.CategoryTender,
			fmt.Sprintf("%s %s tender expired with no offers", t.Buyer, t.Commodity))
		return nil
	}

	sorted := make([]*Offer, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })

	capacity := freight.Capacity(t.RequiredClass)
	remaining := t.TotalQuantity
	lowest := sorted[0].Price
	var awards []*Offer

	for _, o := range sorted {
		if remaining < capacity {
			o.Status = OfferRejected
			continue
		}
		vessels := o.NumVessels
		if byQty := remaining / capacity; byQty < vessels {
			vessels = byQty
		}
		if vessels <= 0 || o.Price > lowest*1.05 {
			o.Status = OfferRejected
			continue
		}

		awarded := vessels * capacity
		if awarded == o.Quantity {
			o.Status = OfferAccepted
		} else {
			o.Status = OfferPartiallyAccepted
		}
		o.AwardedQuantity = awarded
		awards = append(awards, o)
		remaining -= awarded
	}

	if len(awards) == 0 {
		t.Status = StatusCancelled
		m.recorder.Emit(m.mkt.Week(), m.mkt.Year(), event.CategoryTender,
			fmt.Sprintf("%s %s tender cancelled, no compliant offers", t.Buyer, t.Commodity))
		return nil
	}
	t.Status = StatusAwarded
	m.recorder.Emit(m.mkt.Week(), m.mkt.Year(), event.CategoryTender,
		fmt.Sprintf("%s %s tender awarded across %d offer(s), low $%.2f",
			t.Buyer, t.Commodity, len(awards), lowest))
	return awards
}

// RecordDelivery counts a shipped cargo against the participant's awarded
// offers: same commodity, origin and buyer, within the outstanding
// quantity. It returns true when the cargo matched an obligation.
func (m *Manager) RecordDelivery(participant string, commodity crops.Commodity, origin, destination string, quantity, week, year int) bool {
	for _, id := range m.historicalOrder {
		t := m.historical[id]
		if t.Status != StatusAwarded || t.Commodity != commodity || t.Buyer != destination {
			continue
		}
		for _, o := range m.offers[id] {
			if o.Participant != participant || o.Origin != origin {
				continue
			}
			if o.Status != OfferAccepted && o.Status != OfferPartiallyAccepted {
				continue
			}
			if quantity > o.AwardedQuantity-t.DeliveredQuantity {
				continue
			}
			m.deliveries = append(m.deliveries, Delivery{
				TenderID: id,
				OfferID:  o.ID,
				Quantity: quantity,
				Week:     week,
				Year:     year,
			})
			t.DeliveredQuantity += quantity
			m.recorder.Emit(week, year, event.CategoryTender,
				fmt.Sprintf("cargo fulfills %s tender obligation, %dK MT %s", t.Buyer, quantity/1000, commodity))
			return true
		}
	}
	return false
}

// OverdueDefaults finds the participant's awarded offers whose shipment
// window closed (plus one week of grace) with cargo outstanding. Each
// defaulted offer is flagged once and the participant is barred from the
// buyer's tenders for a year; the caller applies the financial penalty.
func (m *Manager) OverdueDefaults(participant string) []Default {
	now := m.absWeek()
	var out []Default
	for _, id := range m.historicalOrder {
		t := m.historical[id]
		if t.Status != StatusAwarded || now <= t.shipmentEndAbs()+1 {
			continue
		}
		for _, o := range m.offers[id] {
			if o.Participant != participant || o.penaltyApplied {
				continue
			}
			if o.Status != OfferAccepted && o.Status != OfferPartiallyAccepted {
				continue
			}
			remaining := o.AwardedQuantity - t.DeliveredQuantity
			if remaining <= 0 {
				continue
			}
			o.penaltyApplied = true
			m.Blacklist(participant, t.Buyer, now+52)
			m.recorder.Emit(m.mkt.Week(), m.mkt.Year(), event.CategoryTender,
				fmt.Sprintf("%s defaulted on %dK MT to %s, blacklisted one year", participant, remaining/1000, t.Buyer))
			out = append(out, Default{
				TenderID:  id,
				OfferID:   o.ID,
				Buyer:     t.Buyer,
				Remaining: remaining,
			})
		}
	}
	return out
}

// Active returns open tenders in announcement order.
func (m *Manager) Active() []*Announcement {
	out := make([]*Announcement, 0, len(m.activeOrder))
	for _, id := range m.activeOrder {
		out = append(out, m.active[id])
	}
	return out
}

// Get returns a tender by ID from the active or historical book, or nil.
func (m *Manager) Get(id string) *Announcement {
	if t, ok := m.active[id]; ok {
		return t
	}
	return m.historical[id]
}

// Offers returns every offer submitted against a tender.
func (m *Manager) Offers(tenderID string) []*Offer {
	return m.offers[tenderID]
}

// Deliveries returns every recorded tender delivery.
func (m *Manager) Deliveries() []Delivery {
	return m.deliveries
}

// Awards returns the participant's accepted offers on awarded tenders,
// paired with their announcements.
func (m *Manager) Awards(participant string) []AwardedOffer {
	var out []AwardedOffer
	for _, id := range m.historicalOrder {
		t := m.historical[id]
		if t.Status != StatusAwarded {
			continue
		}
		for _, o := range m.offers[id] {
			if o.Participant != participant {
				continue
			}
			if o.Status != OfferAccepted && o.Status != OfferPartiallyAccepted {
				continue
			}
			out = append(out, AwardedOffer{Tender: t, Offer: o})
		}
	}
	return out
}

// AwardedOffer pairs an accepted offer with its tender.
type AwardedOffer struct {
	Tender *Announcement
	Offer  *Offer
}

// Details summarizes a tender and the offers against it.
type Details struct {
	Tender       *Announcement `json:"tender"`
	Offers       []*Offer      `json:"offers"`
	TotalOffers  int           `json:"total_offers"`
	LowestOffer  float64       `json:"lowest_offer"`
	HighestOffer float64       `json:"highest_offer"`
	AverageOffer float64       `json:"average_offer"`
}

// TenderDetails returns the tender with offer statistics, or nil when the
// tender is unknown.
func (m *Manager) TenderDetails(tenderID string) *Details {
	t := m.Get(tenderID)
	if t == nil {
		return nil
	}
	offers := m.offers[tenderID]
	d := &Details{Tender: t, Offers: offers, TotalOffers: len(offers)}
	if len(offers) == 0 {
		return d
	}
	var sum float64
	d.LowestOffer = offers[0].Price
	d.HighestOffer = offers[0].Price
	for _, o := range offers {
		sum += o.Price
		if o.Price < d.LowestOffer {
			d.LowestOffer = o.Price
		}
		if o.Price > d.HighestOffer {
			d.HighestOffer = o.Price
		}
	}
	d.AverageOffer = sum / float64(len(offers))
	return d
}

// PricingAnalysis decomposes an offer price into its cost components at
// current market quotes.
type PricingAnalysis struct {
	FOBCost          float64 `json:"fob_cost"`
	FreightCost      float64 `json:"freight_cost"`
	LandedCost       float64 `json:"landed_cost"`
	FinancingCost    float64 `json:"financing_cost"`
	RiskPremium      float64 `json:"risk_premium"`
	TotalCost        float64 `json:"total_cost"`
	OfferPrice       float64 `json:"offer_price"`
	ImpliedMarginPct float64 `json:"implied_margin_pct"`
}

// AnalyzePricing returns the cost breakdown behind an offer, or nil when
// the underlying quotes are unavailable.
func (m *Manager) AnalyzePricing(t *Announcement, o *Offer) *PricingAnalysis {
	fob := m.mkt.FOBQuote(t.Commodity, o.Origin)
	if fob == nil || !fob.Quoted {
		return nil
	}
	fq := m.mkt.FreightQuoteFor(o.Origin, t.Buyer, t.RequiredClass)
	if fq == nil {
		return nil
	}
	dest := m.mkt.Destination(t.Buyer)
	if dest == nil {
		return nil
	}

	landed := fob.Offer + fq.Rate
	financing := float64(dest.PaymentDelayDays) / 30 * 0.01 * landed
	risk := float64(dest.RiskLevel-1) * 0.005 * landed
	total := landed + financing + risk

	return &PricingAnalysis{
		FOBCost:          fob.Offer,
		FreightCost:      fq.Rate,
		LandedCost:       landed,
		FinancingCost:    financing,
		RiskPremium:      risk,
		TotalCost:        total,
		OfferPrice:       o.Price,
		ImpliedMarginPct: (o.Price/total - 1) * 100,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
