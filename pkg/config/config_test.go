package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vanderheijden86/cooc/pkg/analysis"
	"github.com/vanderheijden86/cooc/pkg/interact"
	"github.com/vanderheijden86/cooc/pkg/layout"
	"github.com/vanderheijden86/cooc/pkg/loader"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Canvas.Width != 600 || cfg.Canvas.Height != 600 {
		t.Errorf("expected 600x600 canvas, got %vx%v", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Data.Nodes != loader.DefaultNodesPath || cfg.Data.Edges != loader.DefaultEdgesPath {
		t.Errorf("unexpected data paths %+v", cfg.Data)
	}
	if cfg.Display.LabelThreshold != 2 {
		t.Errorf("expected label threshold 2, got %v", cfg.Display.LabelThreshold)
	}
	if cfg.DetectMode() != analysis.DetectNever {
		t.Errorf("expected detect never, got %q", cfg.DetectMode())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default config, got addr %q", cfg.Server.Addr)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
data:
  nodes: ~/data/nodes.csv
  edges: https://example.com/edges.csv
canvas:
  width: 800
forces:
  charge_strength: -60
  seed: 7
display:
  color_by: fstgrdy
  match_by: id
communities:
  detect: missing
server:
  tick_interval: 33ms
watch:
  enabled: true
  poll_interval: 2s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "data/nodes.csv"); cfg.Data.Nodes != want {
		t.Errorf("expected expanded path %q, got %q", want, cfg.Data.Nodes)
	}
	if cfg.Data.Edges != "https://example.com/edges.csv" {
		t.Errorf("URL changed: %q", cfg.Data.Edges)
	}
	// Unset keys keep defaults.
	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 600 {
		t.Errorf("canvas = %vx%v, want 800x600", cfg.Canvas.Width, cfg.Canvas.Height)
	}

	lc := cfg.LayoutConfig()
	if lc.ChargeStrength != -60 || lc.Seed != 7 || lc.LinkDistance != layout.DefaultLinkDistance {
		t.Errorf("layout config = %+v", lc)
	}
	so := cfg.SessionOptions()
	if so.MatchBy != interact.MatchID || so.Scene.ColorBy != "fstgrdy" || so.Scene.Width != 800 {
		t.Errorf("session options = %+v", so)
	}
	if cfg.DetectMode() != analysis.DetectMissing {
		t.Errorf("detect = %q", cfg.DetectMode())
	}
	if cfg.TickInterval() != 33*time.Millisecond {
		t.Errorf("tick interval = %v", cfg.TickInterval())
	}
	if !cfg.Watch.Enabled || cfg.PollInterval() != 2*time.Second || cfg.Debounce() != 200*time.Millisecond {
		t.Errorf("watch = %+v", cfg.Watch)
	}
	if lo := cfg.LoaderOptions(); lo.EdgesPath != cfg.Data.Edges {
		t.Errorf("loader options = %+v", lo)
	}
}

func TestLoadFrom_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "canvas: [1, 2"},
		{"negative width", "canvas:\n  width: -1\n"},
		{"unknown color_by", "display:\n  color_by: rainbow\n"},
		{"unknown match_by", "display:\n  match_by: title\n"},
		{"unknown detect", "communities:\n  detect: sometimes\n"},
		{"bad duration", "server:\n  tick_interval: fast\n"},
		{"velocity decay", "forces:\n  velocity_decay: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Data.Nodes = "/tmp/n.csv"
	cfg.Forces.ExactCharge = true
	cfg.Communities.Detect = "always"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Data.Nodes != "/tmp/n.csv" || !loaded.Forces.ExactCharge || loaded.DetectMode() != analysis.DetectAlways {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := ConfigDir(); got != "/custom/config/cooc" {
		t.Errorf("ConfigDir() = %q", got)
	}
	if got := ConfigPath(); got != "/custom/config/cooc/config.yaml" {
		t.Errorf("ConfigPath() = %q", got)
	}
	t.Setenv("XDG_STATE_HOME", "/custom/state")
	if got := StateDir(); got != "/custom/state/cooc" {
		t.Errorf("StateDir() = %q", got)
	}
}

func TestLoad_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg := DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:9999"
	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("addr = %q", loaded.Server.Addr)
	}
}

func TestAnswers_Apply(t *testing.T) {
	base := DefaultConfig()
	a := AnswersFrom(base)
	a.Width = "1024"
	a.MatchBy = "id"
	a.WatchInputs = true

	cfg, err := a.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Canvas.Width != 1024 || cfg.Display.MatchBy != "id" || !cfg.Watch.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}

	a.Height = "-3"
	if _, err := a.Apply(base); err == nil {
		t.Error("expected error for negative height")
	}
	a.Height = ""
	a.Detect = "sometimes"
	if _, err := a.Apply(base); err == nil {
		t.Error("expected error for unknown detect mode")
	}
}
