package source

import (
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crimson-sun/timeline/internal/source/httpclient"
)

// Constructor is a function that creates a new Source instance.
type Constructor func(cfg Config) Source

var registry = map[string]Constructor{}

// Register adds a source constructor under the given format name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the source constructor for the given format name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown source format: %s", name)
	}
	return ctor, nil
}

// Providers returns the names of all registered source formats, sorted.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForPath picks a source by file extension: ".tsv" and ".tab" map to
// "tsv", everything else is read as "csv". For http(s) URLs the extension
// of the URL path is used, ignoring any query string.
func ForPath(path string, cfg Config) (Source, error) {
	name := "csv"
	ext := filepath.Ext(path)
	if httpclient.IsURL(path) {
		if u, err := url.Parse(path); err == nil {
			ext = filepath.Ext(u.Path)
		}
	}
	switch strings.ToLower(ext) {
	case ".tsv", ".tab":
		name = "tsv"
	}
	ctor, err := Get(name)
	if err != nil {
		return nil, err
	}
	return ctor(cfg), nil
}
