package config

import (
	"flag"
	"fmt"
	"io"
)

// flags holds raw command-line values; only flags the user actually set
// are copied into the Config.
type flags struct {
	config     string
	output     string
	serve      string
	post       string
	postFormat string
	json       bool
	pretty     bool
	show       bool
	title      string
	encoding   string
	dateColumn string
	textColumn string
	interval   float64
	wrap       int
	logLevel   string
	version    bool
}

func (f *flags) register(stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("timeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: timeline [flags] <events.csv>\n\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&f.config, "config", "", "YAML file with source, layout and style settings")
	fs.StringVar(&f.output, "o", "", "write the chart to this file (png, svg, pdf, eps, jpg, tif)")
	fs.StringVar(&f.serve, "serve", "", "serve the chart over HTTP on this address, e.g. :8080")
	fs.StringVar(&f.post, "post", "", "upload the chart to this http(s) URL")
	fs.StringVar(&f.postFormat, "post-format", "", "format of the uploaded chart (default png)")
	fs.BoolVar(&f.json, "json", false, "write the computed layout as JSON to stdout")
	fs.BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	fs.BoolVar(&f.show, "show", false, "open the chart window even when other outputs are set")
	fs.StringVar(&f.title, "title", "", "chart title")
	fs.StringVar(&f.encoding, "encoding", "", "input character encoding (default latin1)")
	fs.StringVar(&f.dateColumn, "date-column", "", "name of the date column (default timeline)")
	fs.StringVar(&f.textColumn, "text-column", "", "name of the text column (default event)")
	fs.Float64Var(&f.interval, "interval", 0, "vertical spacing between events (default 5)")
	fs.IntVar(&f.wrap, "wrap", 0, "wrap event text at this many characters")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&f.version, "version", false, "print the version and exit")
	return fs
}

func (f *flags) apply(cfg *Config, set map[string]bool) {
	if set["o"] {
		cfg.Output.File = f.output
	}
	if set["serve"] {
		cfg.Output.Serve = f.serve
	}
	if set["post"] {
		cfg.Output.Post = f.post
	}
	if set["post-format"] {
		cfg.Output.PostFormat = f.postFormat
	}
	if set["json"] {
		cfg.Output.JSON = f.json
	}
	if set["pretty"] {
		cfg.Output.Pretty = f.pretty
	}
	if set["show"] {
		cfg.Output.Show = f.show
	}
	if set["title"] {
		cfg.Style.Title = f.title
	}
	if set["encoding"] {
		cfg.Source.Encoding = f.encoding
	}
	if set["date-column"] {
		cfg.Source.DateColumn = f.dateColumn
	}
	if set["text-column"] {
		cfg.Source.TextColumn = f.textColumn
	}
	if set["interval"] {
		cfg.Layout.Interval = f.interval
	}
	if set["wrap"] {
		cfg.Layout.WrapWidth = f.wrap
	}
	if set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if set["version"] {
		cfg.ShowVersion = f.version
	}
}

// parseInterspersed lets flags follow the positional path, so both
// "timeline -o out.png events.csv" and "timeline events.csv -o out.png"
// work.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}
