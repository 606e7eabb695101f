package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// maxSearchMatches is how many candidates the search line lists.
const maxSearchMatches = 5

// labelSearch is the "/" prompt that hovers a node by fuzzy label match.
type labelSearch struct {
	input   textinput.Model
	active  bool
	labels  []string // parallel to Model.order
	matches fuzzy.Matches
}

func newLabelSearch() labelSearch {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "label"
	ti.CharLimit = 64
	return labelSearch{input: ti}
}

func (s *labelSearch) open(labels []string) tea.Cmd {
	s.labels = labels
	s.active = true
	s.matches = nil
	s.input.SetValue("")
	return s.input.Focus()
}

func (s *labelSearch) close() {
	s.active = false
	s.matches = nil
	s.input.Blur()
}

func (s *labelSearch) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.matches = nil
	if q := strings.TrimSpace(s.input.Value()); q != "" {
		s.matches = fuzzy.Find(q, s.labels)
	}
	return cmd
}

// best is the index into labels of the top match, or -1.
func (s *labelSearch) best() int {
	if len(s.matches) == 0 {
		return -1
	}
	return s.matches[0].Index
}

func (s *labelSearch) view(t Theme, width int) string {
	var b strings.Builder
	b.WriteString(s.input.View())
	for i, m := range s.matches {
		if i == maxSearchMatches {
			b.WriteString(t.Status.Render(" …"))
			break
		}
		style := t.Status
		if i == 0 {
			style = t.Label.Bold(true)
		}
		b.WriteString("  ")
		b.WriteString(style.Render(m.Str))
	}
	if len(s.matches) == 0 && s.input.Value() != "" {
		b.WriteString(t.Error.Render("  no match"))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(b.String())
}
