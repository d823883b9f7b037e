package source

import (
	"context"

	"github.com/crimson-sun/timeline/internal/model"
)

// Source defines the interface all event table readers must implement.
type Source interface {
	// Load reads every event in the table at path, in row order.
	Load(ctx context.Context, path string) ([]model.Event, error)
}

// Config holds reader settings shared by all sources.
type Config struct {
	Encoding   string `yaml:"encoding"` // IANA charset name, e.g. "latin1", "utf-8"
	DateColumn string `yaml:"date_column"`
	TextColumn string `yaml:"text_column"`
	Token      string `yaml:"-"` // Bearer token for http(s) tables
}

// DefaultConfig returns the settings for a latin1 table with
// "timeline" and "event" columns.
func DefaultConfig() Config {
	return Config{
		Encoding:   "latin1",
		DateColumn: "timeline",
		TextColumn: "event",
	}
}
