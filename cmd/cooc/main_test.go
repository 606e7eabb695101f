package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/cooc/pkg/config"
	"github.com/vanderheijden86/cooc/pkg/debug"
	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/testutil"
)

// fixture writes a four-node star and isolates config lookup from the
// user's home.
func fixture(t *testing.T) (nodes, edges string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	gen := testutil.NewDefault()
	return testutil.WriteCSVFixture(t, dir, gen.Star(3))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "cooc v") {
		t.Errorf("version output = %q", out)
	}
}

func TestRender_SVG(t *testing.T) {
	nodes, edges := fixture(t)
	path := filepath.Join(t.TempDir(), "out", "network.svg")

	out, err := run(t, "render", "--nodes", nodes, "--edges", edges, "-o", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Wrote "+path) || !strings.Contains(out, "4 nodes, 3 links") {
		t.Errorf("output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "<circle"); got != 4 {
		t.Errorf("svg has %d circles, want 4", got)
	}
}

func TestRender_StatsPrintsTimings(t *testing.T) {
	metrics.SetEnabled(true)
	nodes, edges := fixture(t)
	path := filepath.Join(t.TempDir(), "network.svg")

	out, err := run(t, "render", "--nodes", nodes, "--edges", edges, "-o", path, "--stats")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Timings:", "data_load", "simulation_tick", "snapshot_render"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "render", "--nodes", nodes, "--edges", edges, "-o", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "Timings:") {
		t.Errorf("timings printed without --stats:\n%s", out)
	}
}

func TestDebugLogsConfigAndTimings(t *testing.T) {
	metrics.SetEnabled(true)
	var buf bytes.Buffer
	debug.SetEnabled(true)
	debug.SetOutput(&buf)
	defer debug.SetEnabled(false)

	nodes, edges := fixture(t)
	if _, err := run(t, "stats", "--nodes", nodes, "--edges", edges); err != nil {
		t.Fatalf("stats: %v", err)
	}
	logTimings()

	out := buf.String()
	for _, want := range []string{"config: config.Config", nodes, "data_load (x", "took"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_JSONWithHoverAndZoom(t *testing.T) {
	nodes, edges := fixture(t)
	path := filepath.Join(t.TempDir(), "scene.json")

	if _, err := run(t, "render", "--nodes", nodes, "--edges", edges, "-o", path, "--hover", "hub", "--zoom", "2", "--ticks", "50"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Hovered   string `json:"hovered"`
		Transform struct {
			K float64 `json:"k"`
			X float64 `json:"x"`
		} `json:"transform"`
		Nodes []struct {
			Opacity float64 `json:"opacity"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Hovered != testutil.NodeID(0) {
		t.Errorf("hovered = %q, want hub id", doc.Hovered)
	}
	if doc.Transform.K != 2 || doc.Transform.X != -300 {
		t.Errorf("transform = %+v, want k=2 about the center", doc.Transform)
	}
	// every spoke neighbors the hub
	for i, n := range doc.Nodes {
		if n.Opacity != 1 {
			t.Errorf("node %d opacity = %v, want 1", i, n.Opacity)
		}
	}
}

func TestRender_Errors(t *testing.T) {
	nodes, edges := fixture(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing output", []string{"render", "--nodes", nodes, "--edges", edges}, "output"},
		{"unknown hover", []string{"render", "--nodes", nodes, "--edges", edges, "-o", filepath.Join(dir, "a.svg"), "--hover", "nobody"}, "nobody"},
		{"bad extension", []string{"render", "--nodes", nodes, "--edges", edges, "-o", filepath.Join(dir, "a.txt")}, "unsupported format"},
		{"missing input", []string{"render", "--nodes", filepath.Join(dir, "none.csv"), "--edges", edges, "-o", filepath.Join(dir, "b.svg")}, "none.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestRender_DanglingLinkIsFatal(t *testing.T) {
	nodes, _ := fixture(t)
	edges := testutil.WriteFile(t, filepath.Join(t.TempDir(), "edges.csv"), "source,target\n1,99\n")

	_, err := run(t, "render", "--nodes", nodes, "--edges", edges, "-o", filepath.Join(t.TempDir(), "x.svg"))
	if err == nil || !strings.Contains(err.Error(), "99") {
		t.Errorf("err = %v, want dangling link error", err)
	}
}

func TestStats(t *testing.T) {
	nodes, edges := fixture(t)

	out, err := run(t, "stats", "--nodes", nodes, "--edges", edges)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Nodes:        4", "Links:        3", "Top degree", "hub"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "stats", "--json", "--nodes", nodes, "--edges", edges)
	if err != nil {
		t.Fatal(err)
	}
	var s struct {
		NodeCount int `json:"node_count"`
		LinkCount int `json:"link_count"`
	}
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if s.NodeCount != 4 || s.LinkCount != 3 {
		t.Errorf("stats = %+v", s)
	}
}

func TestConfigFlagOverrides(t *testing.T) {
	nodes, edges := fixture(t)
	cfgPath := filepath.Join(t.TempDir(), "cooc.yaml")
	cfg := config.DefaultConfig()
	cfg.Data.Nodes = "/does/not/exist.csv"
	cfg.Data.Edges = edges
	if err := config.SaveTo(cfg, cfgPath); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "stats", "--config", cfgPath); err == nil {
		t.Error("expected error from config's missing node file")
	}
	if _, err := run(t, "stats", "--config", cfgPath, "--nodes", nodes); err != nil {
		t.Errorf("--nodes should override config: %v", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	fixture(t)
	cfgPath := testutil.WriteFile(t, filepath.Join(t.TempDir(), "bad.yaml"), "canvas:\n  width: -5\n")
	if _, err := run(t, "stats", "--config", cfgPath); err == nil || !strings.Contains(err.Error(), "canvas") {
		t.Errorf("err = %v, want canvas validation error", err)
	}
}

func TestView_RequiresTerminal(t *testing.T) {
	nodes, edges := fixture(t)
	_, err := run(t, "view", "--nodes", nodes, "--edges", edges)
	if !errors.Is(err, errNoTerminal) {
		t.Errorf("err = %v, want errNoTerminal", err)
	}
}

func TestLocalInputs(t *testing.T) {
	nodes, _ := fixture(t)
	cfg := config.DefaultConfig()
	cfg.Data.Nodes = nodes
	cfg.Data.Edges = "https://example.com/edges.csv"

	got := localInputs(cfg)
	if len(got) != 1 || got[0] != nodes {
		t.Errorf("localInputs = %v, want [%s]", got, nodes)
	}
}

func TestRender_RunsExportHooks(t *testing.T) {
	nodes, edges := fixture(t)
	project := t.TempDir()
	marker := filepath.Join(project, "hook.out")
	testutil.WriteFile(t, filepath.Join(project, ".cooc", "hooks.yaml"), `
hooks:
  post-export:
    - name: record
      command: echo "$COOC_EXPORT_FORMAT $COOC_NODE_COUNT" > "`+marker+`"
      on_error: fail
`)
	t.Chdir(project)

	out := filepath.Join(project, "net.json")
	if _, err := run(t, "render", "--nodes", nodes, "--edges", edges, "-o", out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("post-export hook did not run: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "json 4" {
		t.Errorf("hook saw %q, want %q", got, "json 4")
	}

	os.Remove(marker)
	if _, err := run(t, "render", "--nodes", nodes, "--edges", edges, "-o", out, "--no-hooks"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("hook ran despite --no-hooks")
	}
}

func TestRender_FailingPreExportHookCancels(t *testing.T) {
	nodes, edges := fixture(t)
	project := t.TempDir()
	testutil.WriteFile(t, filepath.Join(project, ".cooc", "hooks.yaml"), "hooks:\n  pre-export:\n    - name: gate\n      command: exit 3\n")
	t.Chdir(project)

	out := filepath.Join(project, "net.svg")
	if _, err := run(t, "render", "--nodes", nodes, "--edges", edges, "-o", out); err == nil || !strings.Contains(err.Error(), "gate") {
		t.Fatalf("err = %v, want pre-export failure", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("snapshot written despite failing pre-export hook")
	}
}
