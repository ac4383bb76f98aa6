// Package event records notable simulation happenings for presentation.
// Events flow one way: managers emit them, readers consume them, nothing
// in the simulation reacts to them.
package event

import "log/slog"

// Category buckets events for filtering in the API and logs.
type Category string

const (
	CategoryMarket  Category = "market"
	CategoryFreight Category = "freight"
	CategoryCrop    Category = "crop"
	CategoryFutures Category = "futures"
	CategoryTender  Category = "tender"
	CategoryTrade   Category = "trade"
	CategoryStorage Category = "storage"
	CategoryCapital Category = "capital"
)

// Event is a single notable happening.
type Event struct {
	Week     int      `json:"week"`
	Year     int      `json:"year"`
	Message  string   `json:"message"`
	Category Category `json:"category"`
}

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Recorder accumulates events in order, keeping the most recent maxEvents.
type Recorder struct {
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit records an event and mirrors it to the structured log.
func (r *Recorder) Emit(week, year int, category Category, message string) {
	r.events = append(r.events, Event{
		Week:     week,
		Year:     year,
		Message:  message,
		Category: category,
	})
	if len(r.events) > maxEvents {
		r.events = r.events[len(r.events)-maxEvents:]
	}
	slog.Debug("event", "week", week, "year", year, "category", category, "message", message)
}

// Recent returns up to n most recent events, newest last.
func (r *Recorder) Recent(n int) []Event {
	if n <= 0 || n > len(r.events) {
		n = len(r.events)
	}
	out := make([]Event, n)
	copy(out, r.events[len(r.events)-n:])
	return out
}

// All returns every retained event.
func (r *Recorder) All() []Event {
	return r.Recent(len(r.events))
}
