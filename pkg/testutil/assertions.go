package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/cooc/pkg/model"
)

// WriteCSVFixture writes the fixture's node and edge tables into dir and
// returns both paths.
func WriteCSVFixture(t *testing.T, dir string, gf GraphFixture) (nodesPath, edgesPath string) {
	t.Helper()
	nodesCSV, edgesCSV := NewDefault().ToCSV(gf)
	nodesPath = WriteFile(t, filepath.Join(dir, "nodes.csv"), nodesCSV)
	edgesPath = WriteFile(t, filepath.Join(dir, "edges.csv"), edgesCSV)
	return nodesPath, edgesPath
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// AssertNodeCount verifies the number of nodes.
func AssertNodeCount(t *testing.T, g *model.Graph, expected int) {
	t.Helper()
	if len(g.Nodes) != expected {
		t.Errorf("expected %d nodes, got %d", expected, len(g.Nodes))
	}
}

// AssertFinitePositions fails when any node has a NaN or infinite coordinate.
func AssertFinitePositions(t *testing.T, g *model.Graph) {
	t.Helper()
	for _, n := range g.Nodes {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
			t.Errorf("node %s has non-finite position (%v, %v)", n.ID, n.X, n.Y)
		}
	}
}

// AssertNear fails when got is further than eps from want.
func AssertNear(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, eps)
	}
}
