package tender

import (
	"github.com/talgya/tradewinds/internal/entropy"
	"github.com/talgya/tradewinds/internal/freight"
)

// profile shapes how a competing trading house bids.
type profile struct {
	name              string
	aggression        float64 // likelihood to shade the margin down
	marginTarget      float64
	participationRate float64
	multiVessel       float64 // likelihood to offer more than one cargo
}

// competitors in fixed order so draws replay identically per seed.
var competitors = []profile{
	{"VITERRA", 0.85, 0.035, 0.9, 0.7},
	{"CARGILL", 0.7, 0.035, 0.9, 0.8},
	{"COFCO", 0.9, 0.04, 0.7, 0.6},
	{"ADM", 0.75, 0.05, 0.85, 0.75},
	{"LDC", 0.85, 0.045, 0.88, 0.85},
	{"OLAM", 0.95, 0.055, 0.85, 0.65},
}

// competitorOffers generates the other houses' bids for one tender.
func (m *Manager) competitorOffers(t *Announcement) []*Offer {
	var offers []*Offer
	capacity := freight.Capacity(t.RequiredClass)

	for _, comp := range competitors {
		if !m.rng.Chance(comp.participationRate) {
			continue
		}

		numOrigins := m.rng.IntBetween(1, len(t.PermittedOrigins))
		for _, origin := range entropy.Sample(m.rng, t.PermittedOrigins, numOrigins) {
			fob := m.mkt.FOBQuote(t.Commodity, origin)
			if fob == nil || !fob.Quoted {
				continue
			}
			fq := m.mkt.FreightQuoteFor(origin, t.Buyer, t.RequiredClass)
			if fq == nil {
				continue
			}

			baseCost := fob.Offer + fq.Rate

			dest := m.mkt.Destination(t.Buyer)
			// 1% per month of payment delay, 0.5% per risk level above 1.
			financing := float64(dest.PaymentDelayDays) / 30 * 0.01 * baseCost
			riskPremium := float64(dest.RiskLevel-1) * 0.005 * baseCost

			margin := comp.marginTarget
			condition := m.mkt.LocalCondition(t.Buyer)
			if condition > 1.05 {
				margin *= 1.2
			} else if condition < 0.95 {
				margin *= 0.8
			}
			if m.rng.Chance(comp.aggression) {
				margin *= m.rng.Uniform(0.7, 0.9)
			} else {
				margin *= m.rng.Uniform(1.0, 1.2)
			}

			price := (baseCost + financing + riskPremium) * (1 + margin)
			price = roundCents(price)

			maxVessels := t.MaxVessels
			if byQty := t.TotalQuantity / capacity; byQty < maxVessels {
				maxVessels = byQty
			}
			if maxVessels < 1 {
				continue
			}

			vessels := 1
			if m.rng.Chance(comp.multiVessel) {
				vessels = m.rng.IntBetween(1, maxVessels)
			}
			quantity := vessels * capacity
			if quantity > t.TotalQuantity {
				continue
			}

			offers = append(offers, NewOffer(t.ID, comp.name, origin, quantity, vessels, price, m.mkt.Week()))
		}
	}
	return offers
}
