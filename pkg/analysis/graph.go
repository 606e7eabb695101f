// Package analysis computes structural statistics of a co-occurrence
// network: degrees, connected components, k-cores, cut vertices,
// centrality and community structure.
package analysis

import (
	"sort"
	"time"

	"github.com/vanderheijden86/cooc/pkg/debug"
	"github.com/vanderheijden86/cooc/pkg/model"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Ranked is one entry of a score ranking.
type Ranked struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Stats holds the results of graph analysis.
type Stats struct {
	NodeCount      int     `json:"node_count"`
	LinkCount      int     `json:"link_count"`
	SelfLoops      int     `json:"self_loops"`
	DanglingLinks  int     `json:"dangling_links"`
	DuplicateLinks int     `json:"duplicate_links"`
	DuplicateIDs   int     `json:"duplicate_ids"`
	Density        float64 `json:"density"`

	Components     int   `json:"components"`
	ComponentSizes []int `json:"component_sizes"`
	Isolated       int   `json:"isolated"`

	Degree       map[string]int `json:"-"`
	TopDegree    []Ranked       `json:"top_degree"`
	CoreNumber   map[string]int `json:"-"`
	MaxCore      int            `json:"max_core"`
	Articulation []string       `json:"articulation,omitempty"`

	PageRank       map[string]float64 `json:"-"`
	TopPageRank    []Ranked           `json:"top_pagerank,omitempty"`
	Betweenness    map[string]float64 `json:"-"`
	TopBetweenness []Ranked           `json:"top_betweenness,omitempty"`

	// CommunitySizes counts nodes per louvain id; invalid ids are keyed -1.
	CommunitySizes map[int]int `json:"community_sizes"`
	Modularity     float64     `json:"modularity"`

	Skipped map[string]string `json:"skipped,omitempty"`
}

// Analyzer holds an undirected gonum view of a graph.
type Analyzer struct {
	u        *simple.UndirectedGraph
	idToNode map[string]int64
	nodeToID map[int64]string
	nodes    map[string]*model.Node
	graph    *model.Graph
	config   *Config

	selfLoops, dangling, duplicates, duplicateIDs int
}

// SetConfig sets a custom configuration. Pass nil to use size-based defaults.
func (a *Analyzer) SetConfig(config *Config) {
	a.config = config
}

// NewAnalyzer builds the undirected view of g. Link endpoints are matched
// by id, so g does not need to be resolved. Self-loops, dangling links and
// repeated pairs are counted and left out.
func NewAnalyzer(g *model.Graph) *Analyzer {
	u := simple.NewUndirectedGraph()
	a := &Analyzer{
		u:        u,
		idToNode: make(map[string]int64, len(g.Nodes)),
		nodeToID: make(map[int64]string, len(g.Nodes)),
		nodes:    make(map[string]*model.Node, len(g.Nodes)),
		graph:    g,
	}

	for _, n := range g.Nodes {
		if _, dup := a.idToNode[n.ID]; dup {
			a.duplicateIDs++
			continue
		}
		gn := u.NewNode()
		u.AddNode(gn)
		a.idToNode[n.ID] = gn.ID()
		a.nodeToID[gn.ID()] = n.ID
		a.nodes[n.ID] = n
	}

	for _, l := range g.Links {
		from, okFrom := a.idToNode[l.SourceID]
		to, okTo := a.idToNode[l.TargetID]
		switch {
		case !okFrom || !okTo:
			a.dangling++
		case from == to:
			// simple graphs reject self edges
			a.selfLoops++
		case u.HasEdgeBetween(from, to):
			a.duplicates++
		default:
			u.SetEdge(u.NewEdge(u.Node(from), u.Node(to)))
		}
	}
	return a
}

// Analyze builds an analyzer for g and runs every enabled metric.
func Analyze(g *model.Graph) Stats {
	return NewAnalyzer(g).Analyze()
}

// Analyze computes the statistics.
func (a *Analyzer) Analyze() Stats {
	defer debug.LogEnterExit("analysis.Analyze")()

	nodeCount := a.u.Nodes().Len()
	edgeCount := a.u.Edges().Len()
	cfg := ConfigForSize(nodeCount, edgeCount)
	if a.config != nil {
		cfg = *a.config
	}

	s := Stats{
		NodeCount:      nodeCount,
		LinkCount:      edgeCount,
		SelfLoops:      a.selfLoops,
		DanglingLinks:  a.dangling,
		DuplicateLinks: a.duplicates,
		DuplicateIDs:   a.duplicateIDs,
		Degree:         make(map[string]int, nodeCount),
		CommunitySizes: make(map[int]int),
		Skipped:        make(map[string]string),
	}
	if nodeCount > 1 {
		s.Density = 2 * float64(edgeCount) / float64(nodeCount*(nodeCount-1))
	}

	degree := make(map[string]float64, nodeCount)
	for id, gid := range a.idToNode {
		d := a.u.From(gid).Len()
		s.Degree[id] = d
		degree[id] = float64(d)
		if d == 0 {
			s.Isolated++
		}
	}
	s.TopDegree = a.rank(degree, cfg.Top)

	components := topo.ConnectedComponents(a.u)
	s.Components = len(components)
	for _, c := range components {
		s.ComponentSizes = append(s.ComponentSizes, len(c))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(s.ComponentSizes)))

	if cfg.ComputeKCore {
		core := computeKCore(a.u)
		s.CoreNumber = make(map[string]int, len(core))
		for gid, k := range core {
			s.CoreNumber[a.nodeToID[gid]] = k
			s.MaxCore = max(s.MaxCore, k)
		}
	}
	if cfg.ComputeArticulation {
		for gid := range findArticulationPoints(a.u) {
			s.Articulation = append(s.Articulation, a.nodeToID[gid])
		}
		sort.Strings(s.Articulation)
	}

	if cfg.ComputePageRank && nodeCount > 0 {
		pr, ok := runWithTimeout(cfg.PageRankTimeout, func() map[int64]float64 {
			return network.PageRank(a.directed(), 0.85, 1e-6)
		})
		if ok {
			s.PageRank = a.byID(pr)
			s.TopPageRank = a.rank(s.PageRank, cfg.Top)
		} else {
			s.Skipped["pagerank"] = "timeout"
		}
	} else if cfg.PageRankSkipReason != "" {
		s.Skipped["pagerank"] = cfg.PageRankSkipReason
	}

	if cfg.ComputeBetweenness && nodeCount > 0 {
		bw, ok := runWithTimeout(cfg.BetweennessTimeout, func() map[int64]float64 {
			return network.Betweenness(a.u)
		})
		if ok {
			s.Betweenness = a.byID(bw)
			s.TopBetweenness = a.rank(s.Betweenness, cfg.Top)
		} else {
			s.Skipped["betweenness"] = "timeout"
		}
	} else if cfg.BetweennessSkipReason != "" {
		s.Skipped["betweenness"] = cfg.BetweennessSkipReason
	}

	for _, n := range a.nodes {
		if n.Louvain.Valid {
			s.CommunitySizes[n.Louvain.Value]++
		} else {
			s.CommunitySizes[-1]++
		}
	}
	if edgeCount > 0 {
		s.Modularity = community.Q(a.u, a.dataPartition(), 1)
	}
	return s
}

// directed returns a copy with each undirected edge in both directions,
// for algorithms that only accept directed graphs.
func (a *Analyzer) directed() *simple.DirectedGraph {
	d := simple.NewDirectedGraph()
	nodes := a.u.Nodes()
	for nodes.Next() {
		d.AddNode(simple.Node(nodes.Node().ID()))
	}
	edges := a.u.Edges()
	for edges.Next() {
		e := edges.Edge()
		from, to := e.From().ID(), e.To().ID()
		d.SetEdge(d.NewEdge(d.Node(from), d.Node(to)))
		d.SetEdge(d.NewEdge(d.Node(to), d.Node(from)))
	}
	return d
}

// dataPartition groups nodes by their louvain column. Nodes without a
// valid id each form their own community.
func (a *Analyzer) dataPartition() [][]graph.Node {
	groups := make(map[int][]graph.Node)
	var singles [][]graph.Node
	ids := make([]string, 0, len(a.nodes))
	for id := range a.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		gn := a.u.Node(a.idToNode[id])
		if c := a.nodes[id].Louvain; c.Valid {
			groups[c.Value] = append(groups[c.Value], gn)
		} else {
			singles = append(singles, []graph.Node{gn})
		}
	}
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([][]graph.Node, 0, len(groups)+len(singles))
	for _, k := range keys {
		out = append(out, groups[k])
	}
	return append(out, singles...)
}

func (a *Analyzer) byID(scores map[int64]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	for gid, v := range scores {
		out[a.nodeToID[gid]] = v
	}
	return out
}

// rank returns the top entries by descending score, ties broken by id.
func (a *Analyzer) rank(scores map[string]float64, top int) []Ranked {
	out := make([]Ranked, 0, len(scores))
	for id, v := range scores {
		out = append(out, Ranked{ID: id, Label: a.nodes[id].Label, Score: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

func runWithTimeout(timeout time.Duration, fn func() map[int64]float64) (map[int64]float64, bool) {
	if timeout <= 0 {
		return fn(), true
	}
	done := make(chan map[int64]float64, 1)
	go func() { done <- fn() }()
	select {
	case res := <-done:
		return res, true
	case <-time.After(timeout):
		return nil, false
	}
}

// computeKCore peels nodes of degree below k for increasing k. Isolated
// nodes get core 0.
func computeKCore(g *simple.UndirectedGraph) map[int64]int {
	deg := make(map[int64]int)
	adj := make(map[int64][]int64)
	nodes := g.Nodes()
	for nodes.Next() {
		n := nodes.Node()
		it := g.From(n.ID())
		for it.Next() {
			adj[n.ID()] = append(adj[n.ID()], it.Node().ID())
		}
		deg[n.ID()] = len(adj[n.ID()])
	}

	core := make(map[int64]int, len(deg))
	removed := make(map[int64]bool, len(deg))

	maxDeg := 0
	for _, d := range deg {
		maxDeg = max(maxDeg, d)
	}

	for k := 1; k <= maxDeg; k++ {
		var queue []int64
		for id, d := range deg {
			if !removed[id] && d < k {
				queue = append(queue, id)
			}
		}
		for len(queue) > 0 {
			v := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			if removed[v] {
				continue
			}
			removed[v] = true
			core[v] = k - 1
			for _, nbr := range adj[v] {
				if removed[nbr] {
					continue
				}
				deg[nbr]--
				if deg[nbr] < k {
					queue = append(queue, nbr)
				}
			}
		}
	}

	for id := range deg {
		if !removed[id] {
			core[id] = maxDeg
		}
	}
	return core
}

// findArticulationPoints runs Tarjan to find cut vertices.
func findArticulationPoints(g *simple.UndirectedGraph) map[int64]bool {
	var timeIdx int
	disc := make(map[int64]int)
	low := make(map[int64]int)
	parent := make(map[int64]int64)
	ap := make(map[int64]bool)

	const noParent int64 = -1

	var dfs func(v int64)
	dfs = func(v int64) {
		timeIdx++
		disc[v] = timeIdx
		low[v] = timeIdx
		children := 0

		it := g.From(v)
		for it.Next() {
			u := it.Node().ID()
			if disc[u] == 0 {
				parent[u] = v
				children++
				dfs(u)
				low[v] = min(low[v], low[u])
				if parent[v] == noParent && children > 1 {
					ap[v] = true
				}
				if parent[v] != noParent && low[u] >= disc[v] {
					ap[v] = true
				}
			} else if u != parent[v] {
				low[v] = min(low[v], disc[u])
			}
		}
	}

	nodes := g.Nodes()
	for nodes.Next() {
		id := nodes.Node().ID()
		if disc[id] == 0 {
			parent[id] = noParent
			dfs(id)
		}
	}
	return ap
}
