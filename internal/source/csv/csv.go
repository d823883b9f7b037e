package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/crimson-sun/timeline/internal/model"
	"github.com/crimson-sun/timeline/internal/source"
	"github.com/crimson-sun/timeline/internal/source/httpclient"
)

func init() {
	source.Register("csv", func(cfg source.Config) source.Source {
		return New(cfg, ',')
	})
	source.Register("tsv", func(cfg source.Config) source.Source {
		return New(cfg, '\t')
	})
}

// ErrNoRows is returned when a table has a header but no data rows.
var ErrNoRows = errors.New("no data rows")

// Source reads events from a delimited text table with a header row.
type Source struct {
	cfg    source.Config
	comma  rune
	client *httpclient.Client
}

// New creates a Source splitting fields on comma.
func New(cfg source.Config, comma rune) *Source {
	def := source.DefaultConfig()
	if cfg.Encoding == "" {
		cfg.Encoding = def.Encoding
	}
	if cfg.DateColumn == "" {
		cfg.DateColumn = def.DateColumn
	}
	if cfg.TextColumn == "" {
		cfg.TextColumn = def.TextColumn
	}
	var opts []httpclient.Option
	if cfg.Token != "" {
		opts = append(opts, httpclient.WithToken(cfg.Token))
	}
	return &Source{cfg: cfg, comma: comma, client: httpclient.New(opts...)}
}

// Load opens path and decodes it with the configured encoding. An
// http(s) URL is fetched instead of opened.
func (s *Source) Load(ctx context.Context, path string) ([]model.Event, error) {
	if httpclient.IsURL(path) {
		body, err := s.client.Get(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("source csv: fetch: %w", err)
		}
		return s.Read(ctx, bytes.NewReader(body))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source csv: open: %w", err)
	}
	defer f.Close()
	return s.Read(ctx, f)
}

// Read parses events from r. Rows keep their input order.
func (s *Source) Read(ctx context.Context, r io.Reader) ([]model.Event, error) {
	enc, err := lookupEncoding(s.cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("source csv: %w", err)
	}

	cr := csv.NewReader(enc.NewDecoder().Reader(r))
	cr.Comma = s.comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("source csv: empty table")
	}
	if err != nil {
		return nil, fmt.Errorf("source csv: header: %w", err)
	}
	dateIdx, textIdx, err := s.columns(header)
	if err != nil {
		return nil, fmt.Errorf("source csv: %w", err)
	}

	var events []model.Event
	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source csv: row %d: %w", row, err)
		}
		raw := field(rec, dateIdx)
		date, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("source csv: row %d: parse %s %q: %w", row, s.cfg.DateColumn, raw, err)
		}
		events = append(events, model.Event{Date: date, Text: field(rec, textIdx)})
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("source csv: %w", ErrNoRows)
	}
	return events, nil
}

// columns locates the date and text columns in the header.
func (s *Source) columns(header []string) (dateIdx, textIdx int, err error) {
	dateIdx, textIdx = -1, -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(strings.TrimPrefix(name, "\ufeff"), "\u00ef\u00bb\u00bf")
		}
		switch strings.TrimSpace(name) {
		case s.cfg.DateColumn:
			dateIdx = i
		case s.cfg.TextColumn:
			textIdx = i
		}
	}
	var errs []error
	if dateIdx < 0 {
		errs = append(errs, fmt.Errorf("missing column %q", s.cfg.DateColumn))
	}
	if textIdx < 0 {
		errs = append(errs, fmt.Errorf("missing column %q", s.cfg.TextColumn))
	}
	return dateIdx, textIdx, errors.Join(errs...)
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// fallbackLayouts covers forms dateparse rejects: month-and-year only
// and dotted day-first dates.
var fallbackLayouts = []string{
	"January 2006",
	"Jan 2006",
	"02.01.2006",
	"2.1.2006",
}

// parseDate accepts the loose formats a spreadsheet export tends to
// produce. Ambiguous numeric dates are month-first; a date that only
// makes sense day-first (13/01/2020) is read day-first.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	t, err := dateparse.ParseIn(s, time.UTC, dateparse.RetryAmbiguousDateWithSwap(true))
	if err == nil {
		return t, nil
	}
	for _, layout := range fallbackLayouts {
		if ft, ferr := time.ParseInLocation(layout, s, time.UTC); ferr == nil {
			return ft, nil
		}
	}
	return time.Time{}, err
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q: unsupported", name)
	}
	return enc, nil
}
