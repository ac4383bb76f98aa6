// Package tender runs the import tender auctions: buyers announce cargo
// requirements, trading houses bid CFR prices, and awards go to the
// cheapest compliant offers.
package tender

import (
	"github.com/google/uuid"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/freight"
)

// Status tracks a tender through its lifecycle.
type Status string

const (
	StatusOpen         Status = "OPEN"
	StatusPendingAward Status = "PENDING_AWARD"
	StatusAwarded      Status = "AWARDED"
	StatusExpired      Status = "EXPIRED"
	StatusCancelled    Status = "CANCELLED"
)

// OfferStatus tracks an individual offer through evaluation.
type OfferStatus string

const (
	OfferPending           OfferStatus = "PENDING"
	OfferAccepted          OfferStatus = "ACCEPTED"
	OfferPartiallyAccepted OfferStatus = "PARTIALLY_ACCEPTED"
	OfferRejected          OfferStatus = "REJECTED"
)

// newID returns a short random identifier for tenders and offers.
func newID() string {
	return uuid.NewString()[:8]
}

// Announcement is a buyer's published cargo requirement.
type Announcement struct {
	ID               string          `json:"id"`
	Buyer            string          `json:"buyer"`
	Commodity        crops.Commodity `json:"commodity"`
	TotalQuantity    int             `json:"total_quantity"`
	MinCargoSize     int             `json:"min_cargo_size"`
	MaxCargoSize     int             `json:"max_cargo_size"`
	PermittedOrigins []string        `json:"permitted_origins"`

	// Shipment window, in week-of-year terms. The window may wrap the
	// year boundary; ShipmentYear is the year ShipmentStart falls in.
	ShipmentStart int `json:"shipment_start"`
	ShipmentEnd   int `json:"shipment_end"`
	ShipmentYear  int `json:"shipment_year"`

	PaymentTermsDays   int           `json:"payment_terms_days"`
	MaxVessels         int           `json:"max_vessels"`
	RequiredClass      freight.Class `json:"required_vessel_class"`
	AnnouncedWeek      int           `json:"announced_week"`
	AnnouncedYear      int           `json:"announced_year"`
	SubmissionDeadline int           `json:"submission_deadline"`
	ParticipationCost  float64       `json:"participation_cost"`

	Status            Status `json:"status"`
	DeliveredQuantity int    `json:"delivered_quantity"`
}

// shipmentEndAbs returns the absolute week number at which the shipment
// window closes.
func (a *Announcement) shipmentEndAbs() int {
	year := a.ShipmentYear
	if a.ShipmentEnd < a.ShipmentStart {
		year++
	}
	return year*52 + a.ShipmentEnd
}

// Offer is a CFR bid against an announcement.
type Offer struct {
	ID              string      `json:"id"`
	TenderID        string      `json:"tender_id"`
	Participant     string      `json:"participant"`
	Origin          string      `json:"origin"`
	Quantity        int         `json:"quantity"` // total MT offered
	NumVessels      int         `json:"num_vessels"`
	Price           float64     `json:"price"` // USD/MT CFR
	SubmissionWeek  int         `json:"submission_week"`
	Status          OfferStatus `json:"status"`
	AwardedQuantity int         `json:"awarded_quantity"`

	penaltyApplied bool
}

// NewOffer builds a pending offer with a fresh identifier.
func NewOffer(tenderID, participant, origin string, quantity, numVessels int, price float64, week int) *Offer {
	return &Offer{
		ID:             newID(),
		TenderID:       tenderID,
		Participant:    participant,
		Origin:         origin,
		Quantity:       quantity,
		NumVessels:     numVessels,
		Price:          price,
		SubmissionWeek: week,
		Status:         OfferPending,
	}
}

// Delivery records one cargo counted against an awarded offer.
type Delivery struct {
	TenderID string `json:"tender_id"`
	OfferID  string `json:"offer_id"`
	Quantity int    `json:"quantity"`
	Week     int    `json:"week"`
	Year     int    `json:"year"`
}

// Default describes an awarded offer whose shipment window closed with
// cargo still outstanding.
type Default struct {
	TenderID  string
	OfferID   string
	Buyer     string
	Remaining int
}
