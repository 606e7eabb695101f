package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/cooc/pkg/model"
)

// detailsPanel renders the hovered node as markdown. Output is cached per
// node id and width; a reload clears it.
type detailsPanel struct {
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

func newDetailsPanel(width int) *detailsPanel {
	p := &detailsPanel{cache: make(map[string]string)}
	p.resize(width)
	return p
}

func (p *detailsPanel) resize(width int) {
	if width == p.width && p.renderer != nil {
		return
	}
	p.width = width
	p.cache = make(map[string]string)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		p.renderer = nil
		return
	}
	p.renderer = r
}

func (p *detailsPanel) reset() {
	p.cache = make(map[string]string)
}

func (p *detailsPanel) render(n *model.Node, neighbors []string) string {
	if n == nil {
		return ""
	}
	if out, ok := p.cache[n.ID]; ok {
		return out
	}
	md := nodeMarkdown(n, neighbors)
	out := md
	if p.renderer != nil {
		if r, err := p.renderer.Render(md); err == nil {
			out = strings.TrimRight(r, " \n")
		}
	}
	p.cache[n.ID] = out
	return out
}

// nodeMarkdown describes a node and its neighbor labels.
func nodeMarkdown(n *model.Node, neighbors []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", n.Label)
	fmt.Fprintf(&b, "| field | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| id | `%s` |\n", n.ID)
	fmt.Fprintf(&b, "| bw_count | %s |\n", n.BWCount)
	fmt.Fprintf(&b, "| b_count | %s |\n", n.BCount)
	fmt.Fprintf(&b, "| w_count | %s |\n", n.WCount)
	fmt.Fprintf(&b, "| bw_diff | %s |\n", n.BWDiff)
	if n.BWWhich != "" {
		fmt.Fprintf(&b, "| bw_which | %s |\n", n.BWWhich)
	}
	fmt.Fprintf(&b, "| louvain | %s |\n", n.Louvain)
	fmt.Fprintf(&b, "| fstgrdy | %s |\n", n.Fstgrdy)

	sort.Strings(neighbors)
	fmt.Fprintf(&b, "\n**%d neighbors**", len(neighbors))
	if len(neighbors) > 0 {
		const shown = 12
		list := neighbors
		if len(list) > shown {
			list = list[:shown]
		}
		fmt.Fprintf(&b, ": %s", strings.Join(list, ", "))
		if len(neighbors) > shown {
			fmt.Fprintf(&b, " and %d more", len(neighbors)-shown)
		}
	}
	b.WriteString("\n")
	return b.String()
}
