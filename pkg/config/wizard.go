package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/cooc/pkg/analysis"
	"github.com/vanderheijden86/cooc/pkg/interact"
	"github.com/vanderheijden86/cooc/pkg/scene"
)

// Answers holds the wizard's raw form values.
type Answers struct {
	Nodes       string
	Edges       string
	Width       string
	Height      string
	ColorBy     string
	MatchBy     string
	Detect      string
	ServerAddr  string
	WatchInputs bool
}

// AnswersFrom seeds the form with the values of cfg.
func AnswersFrom(cfg Config) Answers {
	return Answers{
		Nodes:       cfg.Data.Nodes,
		Edges:       cfg.Data.Edges,
		Width:       strconv.FormatFloat(cfg.Canvas.Width, 'g', -1, 64),
		Height:      strconv.FormatFloat(cfg.Canvas.Height, 'g', -1, 64),
		ColorBy:     cfg.Display.ColorBy,
		MatchBy:     cfg.Display.MatchBy,
		Detect:      cfg.Communities.Detect,
		ServerAddr:  cfg.Server.Addr,
		WatchInputs: cfg.Watch.Enabled,
	}
}

// Apply copies the answers onto cfg and validates the result.
func (a Answers) Apply(cfg Config) (Config, error) {
	if s := strings.TrimSpace(a.Nodes); s != "" {
		cfg.Data.Nodes = expandHome(s)
	}
	if s := strings.TrimSpace(a.Edges); s != "" {
		cfg.Data.Edges = expandHome(s)
	}
	if w, err := positive(a.Width); err != nil {
		return cfg, fmt.Errorf("width: %w", err)
	} else if w > 0 {
		cfg.Canvas.Width = w
	}
	if h, err := positive(a.Height); err != nil {
		return cfg, fmt.Errorf("height: %w", err)
	} else if h > 0 {
		cfg.Canvas.Height = h
	}
	if a.ColorBy != "" {
		cfg.Display.ColorBy = a.ColorBy
	}
	if a.MatchBy != "" {
		cfg.Display.MatchBy = a.MatchBy
	}
	if a.Detect != "" {
		cfg.Communities.Detect = a.Detect
	}
	if s := strings.TrimSpace(a.ServerAddr); s != "" {
		cfg.Server.Addr = s
	}
	cfg.Watch.Enabled = a.WatchInputs
	return cfg, cfg.Validate()
}

func positive(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return v, nil
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// RunWizard asks for the common settings, starting from base, and returns
// the resulting config. Nothing is written to disk.
func RunWizard(base Config) (Config, error) {
	a := AnswersFrom(base)
	numeric := func(s string) error {
		_, err := positive(s)
		return err
	}

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Node list").
				Description("CSV path or URL with id,label,bw_count,... columns").
				Value(&a.Nodes),
			huh.NewInput().
				Title("Edge list").
				Description("CSV path or URL with source,target columns").
				Value(&a.Edges),
		),
		huh.NewGroup(
			huh.NewInput().Title("Canvas width").Value(&a.Width).Validate(numeric),
			huh.NewInput().Title("Canvas height").Value(&a.Height).Validate(numeric),
			huh.NewSelect[string]().
				Title("Color nodes by").
				Options(
					huh.NewOption("Louvain community", scene.ColorByLouvain),
					huh.NewOption("Fast-greedy community", scene.ColorByFstgrdy),
				).
				Value(&a.ColorBy),
			huh.NewSelect[string]().
				Title("Hover matches neighbors by").
				Options(
					huh.NewOption("Label", string(interact.MatchLabel)),
					huh.NewOption("Id", string(interact.MatchID)),
				).
				Value(&a.MatchBy),
			huh.NewSelect[string]().
				Title("Detect communities").
				Options(
					huh.NewOption("Never (use louvain column)", string(analysis.DetectNever)),
					huh.NewOption("Only where louvain is missing", string(analysis.DetectMissing)),
					huh.NewOption("Always", string(analysis.DetectAlways)),
				).
				Value(&a.Detect),
		),
		huh.NewGroup(
			huh.NewInput().Title("Server address").Value(&a.ServerAddr).Placeholder(":8080"),
			huh.NewConfirm().
				Title("Reload when the CSV files change?").
				Value(&a.WatchInputs),
		),
	)

	if err := form.Run(); err != nil {
		return base, err
	}
	return a.Apply(base)
}
