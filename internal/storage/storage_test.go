package storage

import (
	"testing"

	"github.com/talgya/tradewinds/internal/crops"
	"github.com/talgya/tradewinds/internal/event"
)

func TestStoreAndRemoveRoundTrip(t *testing.T) {
	m := NewManager(event.NewRecorder())
	f := m.Facility("SANTOS")

	cost, ok := m.Store("SANTOS", crops.Corn, 50_000, 3, 2024)
	if !ok {
		t.Fatal("store rejected with empty elevator")
	}
	if want := 1.2 * 50_000; cost != want {
		t.Errorf("inbound handling %f, want %f", cost, want)
	}
	if f.AvailableCapacity != 950_000 || f.Inventory[crops.Corn] != 50_000 {
		t.Errorf("capacity %d inventory %d after store", f.AvailableCapacity, f.Inventory[crops.Corn])
	}

	if _, ok := m.Remove("SANTOS", crops.Wheat, 1, 3, 2024); ok {
		t.Error("removed commodity that was never stored")
	}
	if _, ok := m.Remove("SANTOS", crops.Corn, 60_000, 3, 2024); ok {
		t.Error("removed more than stored")
	}
	if _, ok := m.Remove("SANTOS", crops.Corn, 50_000, 3, 2024); !ok {
		t.Fatal("full removal rejected")
	}
	if f.AvailableCapacity != f.TotalCapacity {
		t.Errorf("capacity %d not restored after removal", f.AvailableCapacity)
	}
}

func TestStoreRespectsCapacity(t *testing.T) {
	m := NewManager(event.NewRecorder())
	if _, ok := m.Store("BANDAR_IMAM", crops.Corn, 300_001, 1, 2024); ok {
		t.Error("store above capacity accepted")
	}
	if _, ok := m.Store("BANDAR_IMAM", crops.Corn, 300_000, 1, 2024); !ok {
		t.Error("store at exactly full capacity rejected")
	}
	if _, ok := m.Store("NOWHERE", crops.Corn, 1, 1, 2024); ok {
		t.Error("store at unknown location accepted")
	}
}

func TestMonthlyAccrualCadence(t *testing.T) {
	m := NewManager(event.NewRecorder())
	m.Store("CONSTANTA", crops.Wheat, 100_000, 1, 2024)

	if costs := m.AccrueMonthly(3, 2024); costs != nil {
		t.Errorf("accrual on week 3: %v", costs)
	}
	costs := m.AccrueMonthly(4, 2024)
	if len(costs) != 1 || costs[0].Location != "CONSTANTA" {
		t.Fatalf("accrual = %v, want CONSTANTA only", costs)
	}
	if want := 100_000 * 0.8; costs[0].Cost != want {
		t.Errorf("carry %f, want %f", costs[0].Cost, want)
	}
	if again := m.AccrueMonthly(4, 2024); again != nil {
		t.Errorf("second accrual in same week: %v", again)
	}
	if next := m.AccrueMonthly(8, 2024); len(next) != 1 {
		t.Errorf("accrual on week 8 = %v, want one charge", next)
	}
}

func TestRemovalProratesPartialMonth(t *testing.T) {
	m := NewManager(event.NewRecorder())
	m.Store("ODESSA", crops.Wheat, 10_000, 4, 2024)
	m.AccrueMonthly(4, 2024)

	// Two weeks past the last accrual: outbound handling plus 14 days
	// of carry.
	cost, ok := m.Remove("ODESSA", crops.Wheat, 10_000, 6, 2024)
	if !ok {
		t.Fatal("removal rejected")
	}
	want := 1.5*10_000 + 10_000*1.5*14/30
	if diff := cost - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("removal cost %f, want %f", cost, want)
	}
}

func TestRemovalOnAccrualWeekSkipsCarry(t *testing.T) {
	m := NewManager(event.NewRecorder())
	m.Store("ODESSA", crops.Wheat, 10_000, 4, 2024)
	m.AccrueMonthly(4, 2024)

	cost, ok := m.Remove("ODESSA", crops.Wheat, 10_000, 4, 2024)
	if !ok {
		t.Fatal("removal rejected")
	}
	if want := 1.5 * 10_000; cost != want {
		t.Errorf("removal cost %f, want handling only %f", cost, want)
	}
}

func TestThroughputRequirement(t *testing.T) {
	m := NewManager(event.NewRecorder())

	if !m.MeetsThroughput("NOWHERE", 5, 2024) {
		t.Error("unknown location should not flag throughput")
	}
	if m.MeetsThroughput("ROUEN", 5, 2024) {
		t.Error("idle elevator meets throughput")
	}

	// ROUEN minimum is 25K MT/month; 15K in and out counts 30K moved.
	m.Store("ROUEN", crops.Wheat, 15_000, 4, 2024)
	m.Remove("ROUEN", crops.Wheat, 15_000, 5, 2024)
	if !m.MeetsThroughput("ROUEN", 5, 2024) {
		t.Error("active elevator fails throughput")
	}
	// The same movements age out of the four-week window.
	if m.MeetsThroughput("ROUEN", 12, 2024) {
		t.Error("stale movements still counted")
	}
}

func TestStatusSnapshotIsolated(t *testing.T) {
	m := NewManager(event.NewRecorder())
	m.Store("JAKARTA", crops.Corn, 20_000, 1, 2024)

	s := m.Status("JAKARTA")
	if s == nil || s.Inventory[crops.Corn] != 20_000 {
		t.Fatalf("status = %+v", s)
	}
	s.Inventory[crops.Corn] = 0
	if m.Facility("JAKARTA").Inventory[crops.Corn] != 20_000 {
		t.Error("status snapshot aliases facility inventory")
	}
	if m.Status("NOWHERE") != nil {
		t.Error("status for unknown location not nil")
	}
}
