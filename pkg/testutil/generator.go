// Package testutil provides deterministic network fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand"
	"strconv"

	"github.com/vanderheijden86/cooc/pkg/model"
)

// GraphFixture is an abstract undirected graph. Edges index into Nodes.
type GraphFixture struct {
	Description string
	Nodes       []string // labels
	Edges       [][2]int
	Communities []int // optional, one per node
}

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed     int64 // 0 means 42
	MaxCount int   // upper bound for generated bw_count values (default 100)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{Seed: 42, MaxCount: 100}
}

// Generator creates fixtures with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.MaxCount <= 0 {
		cfg.MaxCount = 100
	}
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Chain creates n0 - n1 - ... - n{size-1}.
func (g *Generator) Chain(size int) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("chain of %d nodes", size)}
	for i := 0; i < size; i++ {
		gf.Nodes = append(gf.Nodes, fmt.Sprintf("n%d", i))
		if i > 0 {
			gf.Edges = append(gf.Edges, [2]int{i - 1, i})
		}
	}
	return gf
}

// Star creates a hub linked to every spoke.
func (g *Generator) Star(spokes int) GraphFixture {
	gf := GraphFixture{
		Description: fmt.Sprintf("star with %d spokes", spokes),
		Nodes:       []string{"hub"},
	}
	for i := 1; i <= spokes; i++ {
		gf.Nodes = append(gf.Nodes, fmt.Sprintf("spoke%d", i))
		gf.Edges = append(gf.Edges, [2]int{0, i})
	}
	return gf
}

// Complete creates a clique.
func (g *Generator) Complete(size int) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("complete graph K%d", size)}
	for i := 0; i < size; i++ {
		gf.Nodes = append(gf.Nodes, fmt.Sprintf("k%d", i))
		for j := 0; j < i; j++ {
			gf.Edges = append(gf.Edges, [2]int{j, i})
		}
	}
	return gf
}

// Clusters creates k dense groups of the given size joined by a single
// bridge link between consecutive groups. Communities records the group.
func (g *Generator) Clusters(k, size int) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("%d clusters of %d", k, size)}
	for c := 0; c < k; c++ {
		base := len(gf.Nodes)
		for i := 0; i < size; i++ {
			gf.Nodes = append(gf.Nodes, fmt.Sprintf("c%d_%d", c, i))
			gf.Communities = append(gf.Communities, c)
			for j := 0; j < i; j++ {
				gf.Edges = append(gf.Edges, [2]int{base + j, base + i})
			}
		}
		if c > 0 {
			gf.Edges = append(gf.Edges, [2]int{base - size, base})
		}
	}
	return gf
}

// Random creates an Erdős–Rényi style graph with the given link density.
func (g *Generator) Random(size int, density float64) GraphFixture {
	gf := GraphFixture{Description: fmt.Sprintf("random graph n=%d p=%.2f", size, density)}
	for i := 0; i < size; i++ {
		gf.Nodes = append(gf.Nodes, fmt.Sprintf("r%d", i))
		for j := 0; j < i; j++ {
			if g.rng.Float64() < density {
				gf.Edges = append(gf.Edges, [2]int{j, i})
			}
		}
	}
	return gf
}

// ToGraph converts a fixture into an unresolved model.Graph. Node ids are
// the 1-based index; counts are random but reproducible.
func (g *Generator) ToGraph(gf GraphFixture) *model.Graph {
	nodes := make([]*model.Node, len(gf.Nodes))
	for i, label := range gf.Nodes {
		bw := g.rng.Intn(g.cfg.MaxCount) + 1
		community := 0
		if i < len(gf.Communities) {
			community = gf.Communities[i]
		}
		nodes[i] = &model.Node{
			ID:      NodeID(i),
			Label:   label,
			BWCount: model.NewCount(bw),
			BWDiff:  model.NewCount(0),
			BCount:  model.NewCount(bw),
			WCount:  model.NewCount(0),
			Louvain: model.NewCount(community),
			Fstgrdy: model.NewCount(community),
		}
		nodes[i].Unplace()
	}
	links := make([]*model.Link, len(gf.Edges))
	for i, e := range gf.Edges {
		links[i] = &model.Link{SourceID: NodeID(e[0]), TargetID: NodeID(e[1])}
	}
	return model.NewGraph(nodes, links)
}

// NodeID returns the id ToGraph assigns to the node at index.
func NodeID(index int) string {
	return strconv.Itoa(index + 1)
}

// ToCSV renders the fixture as node and edge tables in the input format.
func (g *Generator) ToCSV(gf GraphFixture) (nodesCSV, edgesCSV string) {
	graph := g.ToGraph(gf)

	var nb bytes.Buffer
	nw := csv.NewWriter(&nb)
	_ = nw.Write([]string{"id", "label", "bw_count", "bw_diff", "bw_which", "w_count", "louvain", "fstgrdy"})
	for _, n := range graph.Nodes {
		_ = nw.Write([]string{n.ID, n.Label, n.BWCount.String(), n.BWDiff.String(), "b", n.WCount.String(), n.Louvain.String(), n.Fstgrdy.String()})
	}
	nw.Flush()

	var eb bytes.Buffer
	ew := csv.NewWriter(&eb)
	_ = ew.Write([]string{"source", "target"})
	for _, l := range graph.Links {
		_ = ew.Write([]string{l.SourceID, l.TargetID})
	}
	ew.Flush()

	return nb.String(), eb.String()
}

// QuickStar returns a resolved-ready star graph with default settings.
func QuickStar(spokes int) *model.Graph {
	g := NewDefault()
	return g.ToGraph(g.Star(spokes))
}

// QuickClusters returns a clustered graph with default settings.
func QuickClusters(k, size int) *model.Graph {
	g := NewDefault()
	return g.ToGraph(g.Clusters(k, size))
}

// TwoNodes is the reference two-node scenario: A(bw 10, louvain 0) linked
// to B(bw 5, louvain 1).
func TwoNodes() *model.Graph {
	g := model.NewGraph(
		[]*model.Node{
			{ID: "1", Label: "A", BWCount: model.NewCount(10), BCount: model.NewCount(10), Louvain: model.NewCount(0), Fstgrdy: model.NewCount(0)},
			{ID: "2", Label: "B", BWCount: model.NewCount(5), BCount: model.NewCount(5), Louvain: model.NewCount(1), Fstgrdy: model.NewCount(1)},
		},
		[]*model.Link{{SourceID: "1", TargetID: "2"}},
	)
	for _, n := range g.Nodes {
		n.Unplace()
	}
	return g
}
