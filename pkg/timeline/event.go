package timeline

import "time"

// Event is one dated entry on a timeline.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Event struct {
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}

// Placement is where an event lands on the chart, in data coordinates.
type Placement struct {
	Event
	X      float64 `json:"x"` // marker position, always on the spine
	Y      float64 `json:"y"` // marker position; decreases with row index
	LabelX float64 `json:"label_x"`
	Label  string  `json:"label"` // "DD Mon YYYY:\n<text>"
	Align  string  `json:"align"` // "left" or "right"
}

// Layout is the computed geometry of a timeline.
type Layout struct {
	Placements []Placement `json:"placements"`
	Start      time.Time   `json:"start"` // earliest date minus one year
	End        time.Time   `json:"end"`   // latest date plus one year
}
