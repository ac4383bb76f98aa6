// Package storage models port grain elevators: capacity, handling fees
// and the monthly carry charged on anything left inside.
package storage

import (
	"fmt"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/event"
)

// Facility is one port elevator.
type Facility struct {
	Key               string
	Name              string
	TotalCapacity     int // MT
	AvailableCapacity int // MT
	MonthlyCost       float64
	HandlingCost      float64
	MinThroughput     int
	MaxIntakeRate     int
	MaxOuttakeRate    int
	Inventory         map[crops.Commodity]int
}

// CanAccept reports whether the facility has room for quantity.
func (f *Facility) CanAccept(quantity int) bool {
	return f.AvailableCapacity >= quantity
}

// Utilization returns the occupied share of capacity, 0 to 1.
func (f *Facility) Utilization() float64 {
	return float64(f.TotalCapacity-f.AvailableCapacity) / float64(f.TotalCapacity)
}

// PeriodCost returns the carry for holding quantity MT over days.
func (f *Facility) PeriodCost(quantity, days int) float64 {
	return float64(quantity) * f.MonthlyCost * float64(days) / 30
}

func (f *Facility) store(commodity crops.Commodity, quantity int) bool {
	if !f.CanAccept(quantity) {
		return false
	}
	f.Inventory[commodity] += quantity
	f.AvailableCapacity -= quantity
	return true
}

func (f *Facility) remove(commodity crops.Commodity, quantity int) bool {
	if f.Inventory[commodity] < quantity {
		return false
	}
	f.Inventory[commodity] -= quantity
	f.AvailableCapacity += quantity
	return true
}

// Lot is one parcel of owned grain sitting in an elevator.
type Lot struct {
	Facility         string          `json:"facility"`
	Commodity        crops.Commodity `json:"commodity"`
	Quantity         int             `json:"quantity"`
	EntryWeek        int             `json:"entry_week"`
	EntryYear        int             `json:"entry_year"`
	EntryPrice       float64         `json:"entry_price"`
	StorageCostPaid  float64         `json:"storage_cost_paid"`
	HandlingCostPaid float64         `json:"handling_cost_paid"`
}

// OpKind labels a handling operation.
type OpKind string

const (
	OpStore  OpKind = "STORE"
	OpRemove OpKind = "REMOVE"
)

// Op records one elevator movement.
type Op struct {
	Week            int             `json:"week"`
	Year            int             `json:"year"`
	Location        string          `json:"location"`
	Commodity       crops.Commodity `json:"commodity"`
	Quantity        int             `json:"quantity"`
	Kind            OpKind          `json:"kind"`
	Cost            float64         `json:"cost"`
	IncludesStorage bool            `json:"includes_storage"`
}

// AccruedCost is one facility's monthly carry bill.
type AccruedCost struct {
	Location string
	Cost     float64
}

// Manager owns every elevator and the handling ledger.
type Manager struct {
	facilities map[string]*Facility
	order      []string
	history    []Op
	recorder   *event.Recorder

	lastCostWeek int
}

// NewManager builds all facilities empty.
func NewManager(recorder *event.Recorder) *Manager {
	m := &Manager{
		facilities: make(map[string]*Facility, len(facilityDefs)),
		recorder:   recorder,
	}
	for _, d := range facilityDefs {
		m.facilities[d.key] = &Facility{
			Key:               d.key,
			Name:              d.name,
			TotalCapacity:     d.totalCapacity,
			AvailableCapacity: d.totalCapacity,
			MonthlyCost:       d.monthlyCost,
			HandlingCost:      d.handlingCost,
			MinThroughput:     d.minThroughput,
			MaxIntakeRate:     d.maxIntake,
			MaxOuttakeRate:    d.maxOuttake,
			Inventory:         make(map[crops.Commodity]int),
		}
		m.order = append(m.order, d.key)
	}
	return m
}

// Facility returns one elevator, or nil.
func (m *Manager) Facility(location string) *Facility {
	return m.facilities[location]
}

// Locations returns every facility key in fixed order.
func (m *Manager) Locations() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Store puts grain into an elevator and returns the handling cost.
// ok is false when the location is unknown or the elevator is full.
func (m *Manager) Store(location string, commodity crops.Commodity, quantity, week, year int) (float64, bool) {
	f := m.facilities[location]
	if f == nil || !f.store(commodity, quantity) {
		return 0, false
	}
	cost := f.HandlingCost * float64(quantity)
	m.history = append(m.history, Op{
		Week: week, Year: year, Location: location, Commodity: commodity,
		Quantity: quantity, Kind: OpStore, Cost: cost,
	})
	return cost, true
}

// Remove takes grain out of an elevator. The returned cost is the
// outbound handling fee plus carry for any part-month since the last
// monthly accrual.
func (m *Manager) Remove(location string, commodity crops.Commodity, quantity, week, year int) (float64, bool) {
	f := m.facilities[location]
	if f == nil {
		return 0, false
	}

	cost := f.HandlingCost * float64(quantity)
	partWeeks := ((week-m.lastCostWeek)%4 + 4) % 4
	if partWeeks > 0 {
		cost += f.PeriodCost(quantity, partWeeks*7)
	}

	if !f.remove(commodity, quantity) {
		return 0, false
	}
	m.history = append(m.history, Op{
		Week: week, Year: year, Location: location, Commodity: commodity,
		Quantity: quantity, Kind: OpRemove, Cost: cost,
		IncludesStorage: partWeeks > 0,
	})
	return cost, true
}

// AccrueMonthly bills one month of carry on every occupied elevator.
// Charges land every fourth week and at most once per week number.
func (m *Manager) AccrueMonthly(week, year int) []AccruedCost {
	if week%4 != 0 || week == m.lastCostWeek {
		return nil
	}
	m.lastCostWeek = week

	var costs []AccruedCost
	for _, key := range m.order {
		f := m.facilities[key]
		total := 0
		for _, qty := range f.Inventory {
			total += qty
		}
		if total == 0 {
			continue
		}
		cost := float64(total) * f.MonthlyCost
		costs = append(costs, AccruedCost{Location: key, Cost: cost})
		m.recorder.Emit(week, year, event.CategoryStorage,
			fmt.Sprintf("%s storage charge $%.0f on %dK MT", key, cost, total/1000))
	}
	return costs
}

// History returns handling operations from the most recent n weeks,
// measured in absolute weeks.
func (m *Manager) History(sinceWeeks, week, year int) []Op {
	cutoff := year*52 + week - sinceWeeks
	var out []Op
	for _, op := range m.history {
		if op.Year*52+op.Week >= cutoff {
			out = append(out, op)
		}
	}
	return out
}

// FacilityStatus summarizes one elevator for display.
type FacilityStatus struct {
	Name              string                  `json:"name"`
	TotalCapacity     int                     `json:"total_capacity"`
	AvailableCapacity int                     `json:"available_capacity"`
	Utilization       float64                 `json:"utilization"`
	MonthlyCost       float64                 `json:"monthly_cost"`
	HandlingCost      float64                 `json:"handling_cost"`
	Inventory         map[crops.Commodity]int `json:"inventory"`
	MaxIntakeRate     int                     `json:"max_intake_rate"`
	MaxOuttakeRate    int                     `json:"max_outtake_rate"`
}

// Status returns a snapshot of one elevator, or nil.
func (m *Manager) Status(location string) *FacilityStatus {
	f := m.facilities[location]
	if f == nil {
		return nil
	}
	inv := make(map[crops.Commodity]int, len(f.Inventory))
	for c, q := range f.Inventory {
		inv[c] = q
	}
	return &FacilityStatus{
		Name:              f.Name,
		TotalCapacity:     f.TotalCapacity,
		AvailableCapacity: f.AvailableCapacity,
		Utilization:       f.Utilization(),
		MonthlyCost:       f.MonthlyCost,
		HandlingCost:      f.HandlingCost,
		Inventory:         inv,
		MaxIntakeRate:     f.MaxIntakeRate,
		MaxOuttakeRate:    f.MaxOuttakeRate,
	}
}

// MeetsThroughput reports whether the elevator moved its minimum monthly
// volume over the last four weeks.
func (m *Manager) MeetsThroughput(location string, week, year int) bool {
	f := m.facilities[location]
	if f == nil {
		return true
	}
	moved := 0
	for _, op := range m.History(4, week, year) {
		if op.Location == location {
			moved += op.Quantity
		}
	}
	return moved >= f.MinThroughput
}

// Analytics aggregates recent activity at one elevator.
type Analytics struct {
	UtilizationRate   float64 `json:"utilization_rate"`
	MonthlyThroughput int     `json:"monthly_throughput"`
	HandlingCosts     float64 `json:"handling_costs"`
	ThroughputMet     bool    `json:"throughput_met"`
}

// Analyze returns recent-activity analytics for one elevator, or nil.
func (m *Manager) Analyze(location string, week, year int) *Analytics {
	f := m.facilities[location]
	if f == nil {
		return nil
	}
	a := &Analytics{
		UtilizationRate: f.Utilization(),
		ThroughputMet:   m.MeetsThroughput(location, week, year),
	}
	for _, op := range m.History(4, week, year) {
		if op.Location == location {
			a.MonthlyThroughput += op.Quantity
			a.HandlingCosts += op.Cost
		}
	}
	return a
}
