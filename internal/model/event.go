package model

import "time"

// Event is one dated entry read from a single input row.
type Event struct {
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}
