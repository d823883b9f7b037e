package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/timeline/internal/layout"
	"github.com/crimson-sun/timeline/internal/logging"
	"github.com/crimson-sun/timeline/internal/render"
	"github.com/crimson-sun/timeline/internal/source"
)

// Version is the timeline release version.
const Version = "0.4.0"

// Config holds all timeline configuration.
type Config struct {
	Path            string // input table
	File            string // optional YAML file with source/layout/style overrides
	Source          source.Config
	Layout          layout.Options
	Style           render.Style
	Output          OutputConfig
	LogLevel        string
	ShutdownTimeout time.Duration
	ShowVersion     bool
}

// OutputConfig selects chart destinations. With nothing selected the
// chart is shown in a window.
type OutputConfig struct {
	File       string // write the chart here; format from the extension
	Serve      string // listen address for the HTTP viewer
	Post       string // upload the chart to this URL
	PostFormat string // encoding of the uploaded chart
	JSON       bool   // write the layout as JSON to stdout
	Pretty     bool   // indent JSON output
	Show       bool   // force the window even when other outputs are set
}

// ShowWindow reports whether the chart should open in a window.
func (o OutputConfig) ShowWindow() bool {
	return o.Show || (o.File == "" && o.Serve == "" && o.Post == "" && !o.JSON)
}

// fileConfig is the layout of the YAML config file.
type fileConfig struct {
	Source source.Config  `yaml:"source"`
	Layout layout.Options `yaml:"layout"`
	Style  render.Style   `yaml:"style"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Source:          source.DefaultConfig(),
		Layout:          layout.DefaultOptions(),
		Style:           render.DefaultStyle(),
		Output:          OutputConfig{PostFormat: render.FormatPNG},
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load builds the configuration from, in increasing precedence: built-in
// defaults, the YAML file named by -config or TIMELINE_CONFIG,
// TIMELINE_* environment variables and command-line flags.
func Load(args []string, stderr io.Writer) (Config, error) {
	cfg := Default()

	var f flags
	fs := f.register(stderr)
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return Config{}, err
	}
	if len(positional) > 1 {
		return Config{}, fmt.Errorf("expected one input path, got %d", len(positional))
	}
	if len(positional) == 1 {
		cfg.Path = positional[0]
	}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	cfg.File = getenv("TIMELINE_CONFIG", "")
	if set["config"] {
		cfg.File = f.config
	}
	if cfg.File != "" {
		if err := cfg.loadFile(cfg.File); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()
	f.apply(&cfg, set)
	return cfg, nil
}

// loadFile decodes a YAML file over the current values; keys absent from
// the file keep their defaults.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	fc := fileConfig{Source: c.Source, Layout: c.Layout, Style: c.Style}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.Source, c.Layout, c.Style = fc.Source, fc.Layout, fc.Style
	return nil
}

func (c *Config) applyEnv() {
	c.Source.Encoding = getenv("TIMELINE_ENCODING", c.Source.Encoding)
	c.Source.DateColumn = getenv("TIMELINE_DATE_COLUMN", c.Source.DateColumn)
	c.Source.TextColumn = getenv("TIMELINE_TEXT_COLUMN", c.Source.TextColumn)
	c.Source.Token = getenv("TIMELINE_TOKEN", c.Source.Token)
	c.Layout.Interval = getenvFloat("TIMELINE_INTERVAL", c.Layout.Interval)
	c.Style.Title = getenv("TIMELINE_TITLE", c.Style.Title)
	c.Output.File = getenv("TIMELINE_OUTPUT", c.Output.File)
	c.Output.Serve = getenv("TIMELINE_SERVE", c.Output.Serve)
	c.Output.Post = getenv("TIMELINE_POST", c.Output.Post)
	c.LogLevel = getenv("TIMELINE_LOG_LEVEL", c.LogLevel)
	c.ShutdownTimeout = getenvDuration("TIMELINE_SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	if c.ShowVersion {
		return nil
	}
	var errs []error
	if c.Path == "" {
		errs = append(errs, errors.New("missing input path"))
	}
	if c.Layout.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %g", c.Layout.Interval))
	}
	if c.Layout.XMin >= c.Layout.XMax {
		errs = append(errs, fmt.Errorf("x_min (%g) must be below x_max (%g)", c.Layout.XMin, c.Layout.XMax))
	}
	if c.Layout.WrapWidth < 0 {
		errs = append(errs, fmt.Errorf("wrap_width must not be negative, got %d", c.Layout.WrapWidth))
	}
	if c.Style.Width <= 0 {
		errs = append(errs, fmt.Errorf("style width must be positive, got %g", c.Style.Width))
	}
	if c.Style.Height < 0 {
		errs = append(errs, fmt.Errorf("style height must not be negative, got %g", c.Style.Height))
	}
	if c.Style.DPI <= 0 {
		errs = append(errs, fmt.Errorf("style dpi must be positive, got %d", c.Style.DPI))
	}
	if c.Output.File != "" {
		if _, err := render.FormatFromPath(c.Output.File); err != nil {
			errs = append(errs, fmt.Errorf("output: %w", err))
		}
	}
	if c.Output.Post != "" {
		if !strings.HasPrefix(c.Output.Post, "http://") && !strings.HasPrefix(c.Output.Post, "https://") {
			errs = append(errs, fmt.Errorf("output: post URL must be http or https, got %q", c.Output.Post))
		}
		if _, err := render.FormatFromPath("chart." + c.Output.PostFormat); err != nil {
			errs = append(errs, fmt.Errorf("output: post format: %w", err))
		}
	}
	if c.Output.Serve != "" && c.Output.ShowWindow() {
		errs = append(errs, errors.New("output: -serve and -show cannot be combined"))
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %v", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return d
}
