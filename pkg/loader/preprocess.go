package loader

import (
	"math"
	"strings"

	"github.com/vanderheijden86/cooc/pkg/metrics"
	"github.com/vanderheijden86/cooc/pkg/model"
)

// Preprocess maps raw records onto typed nodes and unresolved links.
// Non-numeric count fields become model.InvalidCount; nothing is reported.
func Preprocess(nodeRecs, edgeRecs []Record) *model.Graph {
	defer metrics.Timer(metrics.Preprocess)()

	nodes := make([]*model.Node, 0, len(nodeRecs))
	for _, r := range nodeRecs {
		n := &model.Node{
			ID:      r["id"],
			Label:   r["label"],
			BWCount: ParseInt(r["bw_count"]),
			BWDiff:  ParseInt(r["bw_diff"]),
			BWWhich: r["bw_which"],
			WCount:  ParseInt(r["w_count"]),
			Louvain: ParseInt(r["louvain"]),
			Fstgrdy: ParseInt(r["fstgrdy"]),
		}
		if raw, ok := r["b_count"]; ok {
			n.BCount = ParseInt(raw)
		} else {
			n.BCount = n.BWCount
		}
		n.Unplace()
		nodes = append(nodes, n)
	}

	links := make([]*model.Link, 0, len(edgeRecs))
	for _, r := range edgeRecs {
		links = append(links, &model.Link{
			SourceID: r["source"],
			TargetID: r["target"],
		})
	}

	return model.NewGraph(nodes, links)
}

// ParseInt reads the leading integer of s the way a browser's parseInt does:
// surrounding whitespace and a sign are allowed, a 0x prefix switches to
// hex, and parsing stops at the first non-digit. No digits at all yields
// the invalid sentinel. Values outside the int range saturate.
func ParseInt(s string) model.Count {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.InvalidCount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	v, digits, saturated := 0, 0, false
	for _, c := range s {
		d := digitValue(c)
		if d < 0 || d >= base {
			break
		}
		digits++
		if saturated {
			continue
		}
		if v > (math.MaxInt-d)/base {
			v, saturated = math.MaxInt, true
			continue
		}
		v = v*base + d
	}
	if digits == 0 {
		return model.InvalidCount
	}
	switch {
	case neg && saturated:
		v = math.MinInt
	case neg:
		v = -v
	}
	return model.NewCount(v)
}

func digitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
