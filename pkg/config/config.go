// Package config handles loading and saving cooc configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/cooc/config.yaml
//   - State:  ~/.local/state/cooc/ (last snapshot)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/cooc/pkg/analysis"
	"github.com/vanderheijden86/cooc/pkg/interact"
	"github.com/vanderheijden86/cooc/pkg/layout"
	"github.com/vanderheijden86/cooc/pkg/loader"
	"github.com/vanderheijden86/cooc/pkg/scene"
)

const appName = "cooc"

// DataConfig locates the two input tables. Either may be a path or URL.
type DataConfig struct {
	Nodes string `yaml:"nodes,omitempty"`
	Edges string `yaml:"edges,omitempty"`
}

// CanvasConfig is the logical drawing area.
type CanvasConfig struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// ForcesConfig tunes the layout simulation.
type ForcesConfig struct {
	LinkDistance   float64 `yaml:"link_distance,omitempty"`
	ChargeStrength float64 `yaml:"charge_strength,omitempty"`
	Theta          float64 `yaml:"theta,omitempty"`
	VelocityDecay  float64 `yaml:"velocity_decay,omitempty"`
	Seed           uint64  `yaml:"seed,omitempty"`
	ExactCharge    bool    `yaml:"exact_charge,omitempty"`
}

// DisplayConfig controls node styling.
type DisplayConfig struct {
	RadiusMin      float64 `yaml:"radius_min,omitempty"`
	RadiusMax      float64 `yaml:"radius_max,omitempty"`
	LabelThreshold float64 `yaml:"label_threshold,omitempty"`
	ColorBy        string  `yaml:"color_by,omitempty"` // louvain, fstgrdy
	MatchBy        string  `yaml:"match_by,omitempty"` // label, id
}

// CommunitiesConfig controls community detection.
type CommunitiesConfig struct {
	Detect     string  `yaml:"detect,omitempty"` // never, missing, always
	Resolution float64 `yaml:"resolution,omitempty"`
}

// ServerConfig holds `cooc serve` settings.
type ServerConfig struct {
	Addr         string `yaml:"addr,omitempty"`
	TickInterval string `yaml:"tick_interval,omitempty"` // Go duration, e.g. 16ms
}

// WatchConfig controls reloading when the input files change.
type WatchConfig struct {
	Enabled      bool   `yaml:"enabled,omitempty"`
	Debounce     string `yaml:"debounce,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"` // non-empty forces polling
}

// Config is the top-level configuration for cooc.
type Config struct {
	Data        DataConfig        `yaml:"data,omitempty"`
	Canvas      CanvasConfig      `yaml:"canvas,omitempty"`
	Forces      ForcesConfig      `yaml:"forces,omitempty"`
	Display     DisplayConfig     `yaml:"display,omitempty"`
	Communities CommunitiesConfig `yaml:"communities,omitempty"`
	Server      ServerConfig      `yaml:"server,omitempty"`
	Watch       WatchConfig       `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	lc := layout.DefaultConfig()
	sc := scene.DefaultOptions()
	return Config{
		Data: DataConfig{
			Nodes: loader.DefaultNodesPath,
			Edges: loader.DefaultEdgesPath,
		},
		Canvas: CanvasConfig{Width: lc.Width, Height: lc.Height},
		Forces: ForcesConfig{
			LinkDistance:   lc.LinkDistance,
			ChargeStrength: lc.ChargeStrength,
			Theta:          lc.Theta,
			VelocityDecay:  lc.VelocityDecay,
			Seed:           lc.Seed,
		},
		Display: DisplayConfig{
			RadiusMin:      sc.RadiusMin,
			RadiusMax:      sc.RadiusMax,
			LabelThreshold: sc.LabelThreshold,
			ColorBy:        sc.ColorBy,
			MatchBy:        string(interact.MatchLabel),
		},
		Communities: CommunitiesConfig{
			Detect:     string(analysis.DetectNever),
			Resolution: 1,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			TickInterval: layout.DefaultInterval.String(),
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
	}
}

// ConfigDir returns the XDG config directory for cooc.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for cooc.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path. Keys missing from the file
// keep their default values. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Data.Nodes = expandHome(cfg.Data.Nodes)
	cfg.Data.Edges = expandHome(cfg.Data.Edges)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Forces.VelocityDecay < 0 || c.Forces.VelocityDecay > 1 {
		errs = append(errs, fmt.Errorf("forces.velocity_decay %g outside [0,1]", c.Forces.VelocityDecay))
	}
	if c.Forces.Theta < 0 {
		errs = append(errs, fmt.Errorf("forces.theta %g is negative", c.Forces.Theta))
	}
	if err := c.SceneOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := interact.ParseMatchBy(c.Display.MatchBy); err != nil {
		errs = append(errs, err)
	}
	if _, err := analysis.ParseDetectMode(c.Communities.Detect); err != nil {
		errs = append(errs, err)
	}
	for name, d := range map[string]string{
		"server.tick_interval": c.Server.TickInterval,
		"watch.debounce":       c.Watch.Debounce,
		"watch.poll_interval":  c.Watch.PollInterval,
	} {
		if _, err := parseDuration(d, 0); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// LayoutConfig returns the simulation settings.
func (c Config) LayoutConfig() layout.Config {
	lc := layout.DefaultConfig()
	lc.Width, lc.Height = c.Canvas.Width, c.Canvas.Height
	if c.Forces.LinkDistance > 0 {
		lc.LinkDistance = c.Forces.LinkDistance
	}
	if c.Forces.ChargeStrength != 0 {
		lc.ChargeStrength = c.Forces.ChargeStrength
	}
	if c.Forces.Theta > 0 {
		lc.Theta = c.Forces.Theta
	}
	if c.Forces.VelocityDecay > 0 {
		lc.VelocityDecay = c.Forces.VelocityDecay
	}
	if c.Forces.Seed != 0 {
		lc.Seed = c.Forces.Seed
	}
	lc.ExactCharge = c.Forces.ExactCharge
	return lc
}

// SceneOptions returns the display settings.
func (c Config) SceneOptions() scene.Options {
	so := scene.DefaultOptions()
	so.Width, so.Height = c.Canvas.Width, c.Canvas.Height
	if c.Display.RadiusMin > 0 {
		so.RadiusMin = c.Display.RadiusMin
	}
	if c.Display.RadiusMax > 0 {
		so.RadiusMax = c.Display.RadiusMax
	}
	if c.Display.LabelThreshold > 0 {
		so.LabelThreshold = c.Display.LabelThreshold
	}
	if c.Display.ColorBy != "" {
		so.ColorBy = c.Display.ColorBy
	}
	return so
}

// SessionOptions returns the options for an interact.Session.
func (c Config) SessionOptions() interact.Options {
	mb, err := interact.ParseMatchBy(c.Display.MatchBy)
	if err != nil {
		mb = interact.MatchLabel
	}
	return interact.Options{
		Layout:  c.LayoutConfig(),
		Scene:   c.SceneOptions(),
		MatchBy: mb,
	}
}

// LoaderOptions returns the input locations.
func (c Config) LoaderOptions() loader.Options {
	return loader.Options{NodesPath: c.Data.Nodes, EdgesPath: c.Data.Edges}
}

// DetectMode returns the parsed community detection mode.
func (c Config) DetectMode() analysis.DetectMode {
	m, err := analysis.ParseDetectMode(c.Communities.Detect)
	if err != nil {
		return analysis.DetectNever
	}
	return m
}

// TickInterval returns the server tick period.
func (c Config) TickInterval() time.Duration {
	d, _ := parseDuration(c.Server.TickInterval, layout.DefaultInterval)
	return d
}

// Debounce returns the watcher debounce window.
func (c Config) Debounce() time.Duration {
	d, _ := parseDuration(c.Watch.Debounce, 200*time.Millisecond)
	return d
}

// PollInterval returns the forced polling interval, or 0 for fsnotify.
func (c Config) PollInterval() time.Duration {
	d, _ := parseDuration(c.Watch.PollInterval, 0)
	return d
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, err
	}
	if d < 0 {
		return def, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
