// Package api provides the HTTP API for querying simulation state.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/engine"
	"github.com/talgya/tradewinds/internal/freight"
	"github.com/talgya/tradewinds/internal/futures"
	"github.com/talgya/tradewinds/internal/market"
	"github.com/talgya/tradewinds/internal/persistence"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Eng         *engine.Engine
	DB          *persistence.DB
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.
	CommandRate int    // Commands per hour per caller. Zero = default.

	// The engine is not safe for concurrent use; every handler takes
	// this mutex before touching it.
	mu sync.Mutex
}

const defaultCommandRate = 600

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	rate := s.CommandRate
	if rate <= 0 {
		rate = defaultCommandRate
	}
	commands := newThrottle(rate, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can watch the market).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/markets", s.handleMarkets)
	mux.HandleFunc("/api/v1/ports", s.handlePorts)
	mux.HandleFunc("/api/v1/route/", s.handleRoute)
	mux.HandleFunc("/api/v1/futures", s.handleFutures)
	mux.HandleFunc("/api/v1/futures/", s.handleFuturesDetail)
	mux.HandleFunc("/api/v1/positions", s.handlePositions)
	mux.HandleFunc("/api/v1/tenders", s.handleTenders)
	mux.HandleFunc("/api/v1/tender/", s.handleTenderDetail)
	mux.HandleFunc("/api/v1/awards", s.handleAwards)
	mux.HandleFunc("/api/v1/storage", s.handleStorage)
	mux.HandleFunc("/api/v1/storage/", s.handleStorageDetail)
	mux.HandleFunc("/api/v1/lots", s.handleLots)
	mux.HandleFunc("/api/v1/trades", s.handleTrades)
	mux.HandleFunc("/api/v1/ledger", s.handleLedger)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Admin endpoints (POST, require bearer token, throttled per caller).
	mux.HandleFunc("/api/v1/advance", s.adminOnly(commands.wrap(s.handleAdvance)))
	mux.HandleFunc("/api/v1/trade", s.adminOnly(commands.wrap(s.handleTrade)))
	mux.HandleFunc("/api/v1/order", s.adminOnly(commands.wrap(s.handleOrder)))
	mux.HandleFunc("/api/v1/offer", s.adminOnly(commands.wrap(s.handleOffer)))
	mux.HandleFunc("/api/v1/storage/op", s.adminOnly(commands.wrap(s.handleStorageOp)))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(commands.wrap(s.handleSnapshot)))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no TRADEWINDS_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.Eng
	status := map[string]any{
		"name":             "Tradewinds",
		"week":             e.Week(),
		"year":             e.Year(),
		"capital":          e.Ledger().Balance(),
		"starting_capital": e.Ledger().Initial(),
		"margin_held":      e.Futures().TotalMarginRequired(),
		"active_trades":    len(e.ActiveTrades()),
		"completed_trades": len(e.CompletedTrades()),
		"storage_lots":     len(e.Lots()),
		"open_tenders":     len(e.Tenders().Active()),
		"penalties_paid":   e.PenaltyTotal(),
	}
	writeJSON(w, status)
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var commodity crops.Commodity
	if c := r.URL.Query().Get("commodity"); c != "" {
		commodity = crops.Commodity(strings.ToUpper(c))
	}
	origin := r.URL.Query().Get("origin")

	type marketEntry struct {
		Commodity       crops.Commodity `json:"commodity"`
		Origin          string          `json:"origin"`
		Bid             float64         `json:"bid"`
		Offer           float64         `json:"offer"`
		Quoted          bool            `json:"quoted"`
		BidSize         int             `json:"bid_size"`
		OfferSize       int             `json:"offer_size"`
		Direction       string          `json:"direction"`
		HarvestProgress float64         `json:"harvest_progress"`
		StockPercentage float64         `json:"stock_percentage"`
	}

	mkt := s.Eng.Market()
	var result []marketEntry
	for _, c := range crops.Commodities {
		if commodity != "" && c != commodity {
			continue
		}
		for _, o := range mkt.OriginNames() {
			if origin != "" && o != origin {
				continue
			}
			status := mkt.Status(c, o)
			for key, cs := range status {
				result = append(result, marketEntry{
					Commodity:       key.Commodity,
					Origin:          key.Origin,
					Bid:             cs.Bid,
					Offer:           cs.Offer,
					Quoted:          cs.Quoted,
					BidSize:         cs.BidSize,
					OfferSize:       cs.OfferSize,
					Direction:       string(cs.Direction),
					HarvestProgress: cs.HarvestProgress,
					StockPercentage: cs.StockPercentage,
				})
			}
		}
	}
	writeJSON(w, result)
}

func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type portEntry struct {
		Name             string  `json:"name"`
		Country          string  `json:"country"`
		RiskLevel        int     `json:"risk_level"`
		PaymentDelayDays int     `json:"payment_delay_days"`
		CongestionLevel  float64 `json:"congestion_level"`
		WeatherDelay     float64 `json:"weather_delay"`
		TotalDelayDays   int     `json:"total_delay_days"`
	}

	mkt := s.Eng.Market()
	build := func(names []string, lookup func(string) *market.Port) []portEntry {
		var out []portEntry
		for _, n := range names {
			p := lookup(n)
			if p == nil {
				continue
			}
			out = append(out, portEntry{
				Name:             p.Name,
				Country:          p.Country,
				RiskLevel:        p.RiskLevel,
				PaymentDelayDays: p.PaymentDelayDays,
				CongestionLevel:  p.CongestionLevel,
				WeatherDelay:     p.WeatherDelay,
				TotalDelayDays:   p.TotalDelay(),
			})
		}
		return out
	}

	writeJSON(w, map[string]any{
		"origins":      build(mkt.OriginNames(), mkt.Origin),
		"destinations": build(mkt.DestinationNames(), mkt.Destination),
	})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	// /api/v1/route/:origin/:destination
	if len(parts) < 6 {
		http.Error(w, "usage: /api/v1/route/:origin/:destination", http.StatusBadRequest)
		return
	}
	origin := strings.ToUpper(parts[4])
	destination := strings.ToUpper(parts[5])

	s.mu.Lock()
	defer s.mu.Unlock()

	mkt := s.Eng.Market()
	rs := mkt.RouteStatusFor(origin, destination)
	if rs == nil {
		http.Error(w, "route not found", http.StatusNotFound)
		return
	}

	result := map[string]any{
		"origin":      origin,
		"destination": destination,
		"route":       rs,
	}

	// Optional delivered-price quote for one commodity on this route.
	if c := r.URL.Query().Get("commodity"); c != "" {
		commodity := crops.Commodity(strings.ToUpper(c))
		if dq := mkt.DestinationPrice(commodity, origin, destination); dq != nil {
			result["delivered"] = dq
		}
	}

	writeJSON(w, result)
}

// contractSummary flattens a futures contract for the wire.
type contractSummary struct {
	ID            string  `json:"id"`
	Product       string  `json:"product"`
	Description   string  `json:"description"`
	ExpiryWeek    int     `json:"expiry_week"`
	ExpiryYear    int     `json:"expiry_year"`
	WeeksToExpiry int     `json:"weeks_to_expiry"`
	Price         float64 `json:"price"`
	Bid           float64 `json:"bid"`
	Ask           float64 `json:"ask"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Volume        int     `json:"volume"`
}

func (s *Server) summarizeContract(c *futures.Contract) contractSummary {
	return contractSummary{
		ID:            c.ID,
		Product:       c.Spec.Name,
		Description:   c.Spec.Description,
		ExpiryWeek:    c.ExpiryWeek,
		ExpiryYear:    c.ExpiryYear,
		WeeksToExpiry: c.WeeksToExpiry(s.Eng.Week(), s.Eng.Year()),
		Price:         c.Price,
		Bid:           c.Bid,
		Ask:           c.Ask,
		High:          c.High,
		Low:           c.Low,
		Volume:        c.Volume,
	}
}

func (s *Server) handleFutures(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []contractSummary
	for _, c := range s.Eng.Futures().Contracts() {
		result = append(result, s.summarizeContract(c))
	}
	writeJSON(w, result)
}

// handleFuturesDetail serves a product chain (/api/v1/futures/WHEAT) or a
// single contract by ID (/api/v1/futures/WHEATW26-2024).
func (s *Server) handleFuturesDetail(w http.ResponseWriter, r *http.Request) {
	name := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/api/v1/futures/"))
	if name == "" {
		http.Error(w, "missing product or contract id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fm := s.Eng.Futures()
	if chain := fm.Chain(name); len(chain) > 0 {
		var result []contractSummary
		for _, c := range chain {
			result = append(result, s.summarizeContract(c))
		}
		writeJSON(w, result)
		return
	}

	c := fm.Contract(name)
	if c == nil {
		http.Error(w, "unknown product or contract", http.StatusNotFound)
		return
	}
	detail := s.summarizeContract(c)
	writeJSON(w, map[string]any{
		"contract": detail,
		"history":  c.History,
	})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type positionEntry struct {
		ContractID    string  `json:"contract_id"`
		Type          string  `json:"type"`
		Quantity      int     `json:"quantity"`
		AveragePrice  float64 `json:"average_price"`
		UnrealizedPnL float64 `json:"unrealized_pnl"`
		RealizedPnL   float64 `json:"realized_pnl"`
		MarginHeld    float64 `json:"margin_held"`
	}

	fm := s.Eng.Futures()
	var positions []positionEntry
	for _, p := range fm.Positions() {
		positions = append(positions, positionEntry{
			ContractID:    p.ContractID,
			Type:          string(p.PositionType),
			Quantity:      p.Quantity,
			AveragePrice:  p.AveragePrice,
			UnrealizedPnL: p.UnrealizedPnL,
			RealizedPnL:   p.RealizedPnL,
			MarginHeld:    p.MarginHeld,
		})
	}

	writeJSON(w, map[string]any{
		"positions":    positions,
		"total_margin": fm.TotalMarginRequired(),
	})
}

func (s *Server) handleTenders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, s.Eng.Tenders().Active())
}

func (s *Server) handleTenderDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/tender/")
	if id == "" {
		http.Error(w, "missing tender id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	details := s.Eng.Tenders().TenderDetails(id)
	if details == nil {
		http.Error(w, "tender not found", http.StatusNotFound)
		return
	}
	writeJSON(w, details)
}

func (s *Server) handleAwards(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participant := r.URL.Query().Get("participant")
	if participant == "" {
		participant = engine.Player
	}

	type awardEntry struct {
		TenderID        string  `json:"tender_id"`
		Buyer           string  `json:"buyer"`
		Commodity       string  `json:"commodity"`
		Origin          string  `json:"origin"`
		AwardedQuantity int     `json:"awarded_quantity"`
		Price           float64 `json:"price"`
		ShipmentStart   int     `json:"shipment_start"`
		ShipmentEnd     int     `json:"shipment_end"`
	}

	var result []awardEntry
	for _, a := range s.Eng.Tenders().Awards(participant) {
		result = append(result, awardEntry{
			TenderID:        a.Tender.ID,
			Buyer:           a.Tender.Buyer,
			Commodity:       string(a.Tender.Commodity),
			Origin:          a.Offer.Origin,
			AwardedQuantity: a.Offer.AwardedQuantity,
			Price:           a.Offer.Price,
			ShipmentStart:   a.Tender.ShipmentStart,
			ShipmentEnd:     a.Tender.ShipmentEnd,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sm := s.Eng.Storage()
	var result []any
	for _, loc := range sm.Locations() {
		if st := sm.Status(loc); st != nil {
			result = append(result, st)
		}
	}
	writeJSON(w, result)
}

func (s *Server) handleStorageDetail(w http.ResponseWriter, r *http.Request) {
	location := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/api/v1/storage/"))
	if location == "" {
		http.Error(w, "missing storage location", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sm := s.Eng.Storage()
	status := sm.Status(location)
	if status == nil {
		http.Error(w, "storage location not found", http.StatusNotFound)
		return
	}

	week, year := s.Eng.Week(), s.Eng.Year()
	writeJSON(w, map[string]any{
		"status":         status,
		"analytics":      sm.Analyze(location, week, year),
		"throughput_met": sm.MeetsThroughput(location, week, year),
	})
}

func (s *Server) handleLots(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, s.Eng.Lots())
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeJSON(w, map[string]any{
		"active":    s.Eng.ActiveTrades(),
		"completed": s.Eng.CompletedTrades(),
	})
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	book := s.Eng.Ledger()
	flows := book.Flows()
	start := 0
	if len(flows) > limit {
		start = len(flows) - limit
	}

	writeJSON(w, map[string]any{
		"balance":    book.Balance(),
		"initial":    book.Initial(),
		"reconciles": book.Reconciles(),
		"flows":      flows[start:],
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Eng.Recorder().All()

	// Optional category filter.
	if category := r.URL.Query().Get("category"); category != "" {
		filtered := events[:0:0]
		for _, e := range events {
			if string(e.Category) == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Weeks int `json:"weeks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Weeks <= 0 {
		req.Weeks = 1
	}
	if req.Weeks > 52 {
		http.Error(w, "max 52 weeks per advance", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < req.Weeks; i++ {
		s.Eng.AdvanceWeek()
		if s.DB != nil {
			if err := s.DB.SaveWeek(s.Eng); err != nil {
				slog.Error("weekly save failed", "error", err)
			}
		}
	}

	writeJSON(w, map[string]any{
		"week":    s.Eng.Week(),
		"year":    s.Eng.Year(),
		"capital": s.Eng.Ledger().Balance(),
	})
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Commodity   string `json:"commodity"`
		Origin      string `json:"origin"`
		Destination string `json:"destination"`
		Class       string `json:"class"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	class, ok := parseClass(req.Class)
	if !ok {
		http.Error(w, "unknown vessel class", http.StatusBadRequest)
		return
	}
	commodity, ok := parseCommodity(req.Commodity)
	if !ok {
		http.Error(w, "unknown commodity", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trade, err := s.Eng.ExecuteSpotTrade(commodity, strings.ToUpper(req.Origin), strings.ToUpper(req.Destination), class)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, trade)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ContractID   string  `json:"contract_id"`
		Type         string  `json:"type"`
		Side         string  `json:"side"`
		Quantity     int     `json:"quantity"`
		LimitPrice   float64 `json:"limit_price"`
		PositionType string  `json:"position_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if req.Type == "" {
		req.Type = string(futures.OrderMarket)
	}
	if req.PositionType == "" {
		req.PositionType = string(futures.Speculative)
	}

	order := futures.Order{
		ContractID:   strings.ToUpper(req.ContractID),
		Type:         futures.OrderType(strings.ToUpper(req.Type)),
		Side:         futures.OrderSide(strings.ToUpper(req.Side)),
		Quantity:     req.Quantity,
		LimitPrice:   req.LimitPrice,
		PositionType: futures.PositionType(strings.ToUpper(req.PositionType)),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Eng.PlaceFuturesOrder(order) {
		http.Error(w, "order rejected", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"success":     true,
		"margin_held": s.Eng.Futures().TotalMarginRequired(),
		"capital":     s.Eng.Ledger().Balance(),
	})
}

func (s *Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		TenderID   string  `json:"tender_id"`
		Origin     string  `json:"origin"`
		NumVessels int     `json:"num_vessels"`
		Price      float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	offer, err := s.Eng.SubmitTenderOffer(req.TenderID, strings.ToUpper(req.Origin), req.NumVessels, req.Price)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, offer)
}

// handleStorageOp dispatches warehouse actions: buy a lot into storage,
// sell a lot locally, or ship pooled lots to a destination.
func (s *Server) handleStorageOp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Action      string `json:"action"`
		Location    string `json:"location,omitempty"`
		Commodity   string `json:"commodity,omitempty"`
		LotIndex    int    `json:"lot_index,omitempty"`
		Destination string `json:"destination,omitempty"`
		Class       string `json:"class,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Action {
	case "buy":
		commodity, ok := parseCommodity(req.Commodity)
		if !ok {
			http.Error(w, "unknown commodity", http.StatusBadRequest)
			return
		}
		lot, err := s.Eng.BuyToStorage(strings.ToUpper(req.Location), commodity)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, lot)

	case "sell":
		if err := s.Eng.SellFromStorage(req.LotIndex); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"success": true,
			"capital": s.Eng.Ledger().Balance(),
		})

	case "transport":
		class, ok := parseClass(req.Class)
		if !ok {
			http.Error(w, "unknown vessel class", http.StatusBadRequest)
			return
		}
		trade, err := s.Eng.TransportFromStorage(req.LotIndex, strings.ToUpper(req.Destination), class)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, trade)

	default:
		http.Error(w, "unknown storage action (use: buy, sell, transport)", http.StatusBadRequest)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.DB.SaveWeek(s.Eng); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"week":    s.Eng.Week(),
		"year":    s.Eng.Year(),
		"message": "snapshot saved",
	})
}

func parseCommodity(name string) (crops.Commodity, bool) {
	c := crops.Commodity(strings.ToUpper(name))
	for _, known := range crops.Commodities {
		if c == known {
			return c, true
		}
	}
	return "", false
}

func parseClass(name string) (freight.Class, bool) {
	c := freight.Class(strings.ToUpper(name))
	for _, known := range freight.Classes {
		if c == known {
			return c, true
		}
	}
	return "", false
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
