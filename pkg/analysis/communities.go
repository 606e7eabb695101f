package analysis

import (
	"fmt"
	"sort"

	"github.com/vanderheijden86/cooc/pkg/debug"
	"github.com/vanderheijden86/cooc/pkg/model"

	"gonum.org/v1/gonum/graph/community"
)

// DetectMode selects when community ids are computed instead of read from
// the louvain column.
type DetectMode string

const (
	DetectNever   DetectMode = "never"
	DetectMissing DetectMode = "missing"
	DetectAlways  DetectMode = "always"
)

// ParseDetectMode validates a config value; "" means DetectNever.
func ParseDetectMode(s string) (DetectMode, error) {
	switch DetectMode(s) {
	case "", DetectNever:
		return DetectNever, nil
	case DetectMissing, DetectAlways:
		return DetectMode(s), nil
	default:
		return "", fmt.Errorf("unknown communities.detect %q (want never, missing or always)", s)
	}
}

// DetectCommunities runs Louvain modularization and returns a community id
// per node id. Communities are numbered by descending size, ties broken by
// their smallest member id.
func DetectCommunities(g *model.Graph, resolution float64) map[string]int {
	a := NewAnalyzer(g)
	out := make(map[string]int, len(a.idToNode))
	if a.u.Nodes().Len() == 0 {
		return out
	}
	if resolution <= 0 {
		resolution = 1
	}

	reduced := community.Modularize(a.u, resolution, nil)
	var groups [][]string
	for _, c := range reduced.Communities() {
		ids := make([]string, 0, len(c))
		for _, n := range c {
			ids = append(ids, a.nodeToID[n.ID()])
		}
		sort.Strings(ids)
		groups = append(groups, ids)
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return groups[i][0] < groups[j][0]
	})
	for i, ids := range groups {
		for _, id := range ids {
			out[id] = i
		}
	}
	debug.Log("analysis: detected %d communities over %d nodes", len(groups), len(out))
	return out
}

// FillCommunities writes detected ids into the louvain column according to
// mode and returns how many nodes changed.
func FillCommunities(g *model.Graph, mode DetectMode, resolution float64) int {
	if mode == DetectNever || mode == "" {
		return 0
	}
	if mode == DetectMissing {
		missing := false
		for _, n := range g.Nodes {
			if !n.Louvain.Valid {
				missing = true
				break
			}
		}
		if !missing {
			return 0
		}
	}

	detected := DetectCommunities(g, resolution)
	filled := 0
	for _, n := range g.Nodes {
		if mode == DetectMissing && n.Louvain.Valid {
			continue
		}
		c, ok := detected[n.ID]
		if !ok {
			continue
		}
		n.Louvain = model.NewCount(c)
		filled++
	}
	return filled
}

// FillMissingCommunities assigns detected ids to nodes whose louvain value
// did not parse.
func FillMissingCommunities(g *model.Graph) int {
	return FillCommunities(g, DetectMissing, 1)
}
