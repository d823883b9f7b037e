package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/timeline/internal/config"
	"github.com/crimson-sun/timeline/internal/metrics"
	"github.com/crimson-sun/timeline/internal/output/file"
	"github.com/crimson-sun/timeline/internal/output/multi"
	"github.com/crimson-sun/timeline/internal/output/post"
	"github.com/crimson-sun/timeline/internal/output/window"
)

func TestBuildOutputDefaultsToWindow(t *testing.T) {
	cfg := config.Default()
	out, err := buildOutput(cfg, metrics.New())
	require.NoError(t, err)
	assert.IsType(t, &window.Output{}, out)
}

func TestBuildOutputSingleFile(t *testing.T) {
	cfg := config.Default()
	cfg.Output.File = filepath.Join(t.TempDir(), "chart.svg")
	out, err := buildOutput(cfg, metrics.New())
	require.NoError(t, err)
	assert.IsType(t, &file.Output{}, out)
}

func TestBuildOutputPost(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Post = "http://localhost:9/upload"
	out, err := buildOutput(cfg, metrics.New())
	require.NoError(t, err)
	assert.IsType(t, &post.Output{}, out)
}

func TestBuildOutputFanOut(t *testing.T) {
	cfg := config.Default()
	cfg.Output.File = filepath.Join(t.TempDir(), "chart.png")
	cfg.Output.JSON = true
	out, err := buildOutput(cfg, metrics.New())
	require.NoError(t, err)
	assert.IsType(t, &multi.Multi{}, out)
}

func TestBuildOutputBadFile(t *testing.T) {
	cfg := config.Default()
	cfg.Output.File = "chart.bmp"
	_, err := buildOutput(cfg, metrics.New())
	assert.Error(t, err)
}

func TestRunWritesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Path = filepath.Join("testdata", "events.csv")
	cfg.Output.File = filepath.Join(dir, "chart.svg")
	require.NoError(t, run(cfg))
	assert.FileExists(t, cfg.Output.File)
}
