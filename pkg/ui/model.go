// Package ui is the terminal viewer: a Bubble Tea model that animates the
// layout on a character canvas and drives hover, drag and zoom from keys.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/cooc/pkg/debug"
	"github.com/vanderheijden86/cooc/pkg/interact"
	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/scene"
)

// FrameInterval paces simulation steps, about 30 per second.
const FrameInterval = 33 * time.Millisecond

const (
	zoomStep     = 1.25
	panFraction  = 0.05 // of the canvas per key press
	detailsWidth = 38
)

// tickMsg drives one animation frame.
type tickMsg time.Time

// ReloadMsg carries a freshly loaded graph, or the error that prevented it.
type ReloadMsg struct {
	Graph *model.Graph
	Err   error
}

// Model is the viewer state.
type Model struct {
	session *interact.Session
	keys    KeyMap
	help    help.Model
	theme   Theme
	details *detailsPanel
	search  labelSearch

	width, height int
	order         []string
	cursor        int
	dragging      string
	showHelp      bool
	showDetails   bool
	ticking       bool
	status        string
	err           error
	title         string
	reloads       <-chan ReloadMsg
}

// NewModel returns a viewer over session.
func NewModel(session *interact.Session) Model {
	r := lipgloss.DefaultRenderer()
	m := Model{
		session:     session,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		theme:       DefaultTheme(r),
		details:     newDetailsPanel(detailsWidth),
		search:      newLabelSearch(),
		cursor:      -1,
		showDetails: true,
		ticking:     true,
		title:       "cooc",
	}
	m.order = nodeOrder(session.Graph())
	return m
}

// WithTitle sets the header title.
func (m Model) WithTitle(title string) Model {
	m.title = title
	return m
}

// WithReloads makes the model apply graphs received on ch.
func (m Model) WithReloads(ch <-chan ReloadMsg) Model {
	m.reloads = ch
	return m
}

// nodeOrder is the tab order: label, then id.
func nodeOrder(g *model.Graph) []string {
	nodes := append([]*model.Node(nil), g.Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Label != nodes[j].Label {
			return nodes[i].Label < nodes[j].Label
		}
		return nodes[i].ID < nodes[j].ID
	})
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func tick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForReload(ch <-chan ReloadMsg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), waitForReload(m.reloads))
}

// ensureTicking restarts the frame loop after the simulation was woken.
func (m *Model) ensureTicking() tea.Cmd {
	if m.ticking || !m.session.Running() {
		return nil
	}
	m.ticking = true
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if m.session.Step() {
			return m, tick()
		}
		m.ticking = false
		return m, nil

	case ReloadMsg:
		cmds := []tea.Cmd{waitForReload(m.reloads)}
		if msg.Err != nil {
			m.err = fmt.Errorf("reload: %w", msg.Err)
			return m, tea.Batch(cmds...)
		}
		if err := m.session.Reload(msg.Graph); err != nil {
			m.err = err
			return m, tea.Batch(cmds...)
		}
		m.err = nil
		m.order = nodeOrder(msg.Graph)
		m.cursor, m.dragging = -1, ""
		m.details.reset()
		m.status = fmt.Sprintf("reloaded %d nodes", len(msg.Graph.Nodes))
		cmds = append(cmds, m.ensureTicking())
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.active {
		return m.handleSearchKey(msg)
	}
	k := m.keys
	switch {
	case key.Matches(msg, k.Search):
		if m.dragging != "" {
			m.status = "release the node before searching"
			break
		}
		return m, m.search.open(m.labels())
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, k.Details):
		m.showDetails = !m.showDetails
	case key.Matches(msg, k.NextNode):
		m.moveHover(1)
	case key.Matches(msg, k.PrevNode):
		m.moveHover(-1)
	case key.Matches(msg, k.Leave):
		m.leave()
	case key.Matches(msg, k.ZoomIn):
		m.zoom(zoomStep)
	case key.Matches(msg, k.ZoomOut):
		m.zoom(1 / zoomStep)
	case key.Matches(msg, k.ZoomReset):
		m.apply(interact.ZoomTo{Transform: scene.Identity})
	case key.Matches(msg, k.PanUp):
		m.pan(0, 1)
	case key.Matches(msg, k.PanDown):
		m.pan(0, -1)
	case key.Matches(msg, k.PanLeft):
		m.pan(1, 0)
	case key.Matches(msg, k.PanRight):
		m.pan(-1, 0)
	case key.Matches(msg, k.Drag):
		m.toggleDrag()
	case key.Matches(msg, k.DragUp):
		m.dragBy(0, -1)
	case key.Matches(msg, k.DragDown):
		m.dragBy(0, 1)
	case key.Matches(msg, k.DragLeft):
		m.dragBy(-1, 0)
	case key.Matches(msg, k.DragRight):
		m.dragBy(1, 0)
	case key.Matches(msg, k.Copy):
		m.copyHovered()
	case key.Matches(msg, k.Reheat):
		m.session.Reheat()
		m.status = "reheated"
	}
	return m, m.ensureTicking()
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.close()
		return m, nil
	case tea.KeyEnter:
		idx := m.search.best()
		m.search.close()
		if idx < 0 {
			m.status = "no match"
			return m, nil
		}
		m.hoverAt(idx)
		return m, m.ensureTicking()
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	return m, m.search.update(msg)
}

// labels returns node labels in tab order.
func (m *Model) labels() []string {
	g := m.session.Graph()
	out := make([]string, len(m.order))
	for i, id := range m.order {
		if n := g.NodeByID(id); n != nil {
			out[i] = n.Label
		}
	}
	return out
}

func (m *Model) apply(ev interact.Event) {
	if err := m.session.Apply(ev); err != nil {
		m.err = err
		debug.Log("ui: %v", err)
		return
	}
	m.err = nil
}

func (m *Model) hovered() string {
	if m.cursor < 0 || m.cursor >= len(m.order) {
		return ""
	}
	return m.order[m.cursor]
}

func (m *Model) moveHover(delta int) {
	if len(m.order) == 0 {
		return
	}
	if m.dragging != "" {
		m.status = "release the node before moving hover"
		return
	}
	switch {
	case m.cursor < 0 && delta < 0:
		m.hoverAt(len(m.order) - 1)
	case m.cursor < 0:
		m.hoverAt(0)
	default:
		m.hoverAt((m.cursor + delta + len(m.order)) % len(m.order))
	}
}

// hoverAt leaves the current node and hovers order[i].
func (m *Model) hoverAt(i int) {
	if id := m.hovered(); id != "" {
		m.apply(interact.HoverLeave{NodeID: id})
	}
	m.cursor = i
	m.apply(interact.HoverEnter{NodeID: m.hovered()})
	m.status = ""
}

func (m *Model) leave() {
	if m.dragging != "" {
		m.apply(interact.DragEnd{NodeID: m.dragging})
		m.dragging = ""
	}
	if id := m.hovered(); id != "" {
		m.apply(interact.HoverLeave{NodeID: id})
	}
	m.cursor = -1
}

func (m *Model) sceneSize() (w, h float64) {
	m.session.View(func(sc *scene.Scene, _ interact.Visual) {
		w, h = sc.Width, sc.Height
	})
	return w, h
}

func (m *Model) zoom(factor float64) {
	w, h := m.sceneSize()
	m.apply(interact.Zoom{Factor: factor, CX: w / 2, CY: h / 2})
}

func (m *Model) pan(dx, dy float64) {
	w, h := m.sceneSize()
	m.apply(interact.Pan{DX: dx * w * panFraction, DY: dy * h * panFraction})
}

func (m *Model) toggleDrag() {
	if m.dragging != "" {
		m.apply(interact.DragEnd{NodeID: m.dragging})
		m.status = "released " + m.dragging
		m.dragging = ""
		return
	}
	id := m.hovered()
	if id == "" {
		m.status = "hover a node first (tab)"
		return
	}
	m.apply(interact.DragStart{NodeID: id})
	m.dragging = id
	m.status = "dragging " + id + " (h/j/k/l, space to release)"
}

// dragBy moves the dragged node one pan step in view space.
func (m *Model) dragBy(dx, dy float64) {
	if m.dragging == "" {
		return
	}
	var x, y, w, h, k float64
	m.session.View(func(sc *scene.Scene, v interact.Visual) {
		w, h, k = sc.Width, sc.Height, v.Transform.K
		if n := sc.NodeView(m.dragging); n != nil {
			if node := n.Node(); node != nil && node.FX != nil && node.FY != nil {
				x, y = *node.FX, *node.FY
			} else {
				x, y = n.X, n.Y
			}
		}
	})
	if k == 0 {
		k = 1
	}
	m.apply(interact.DragMove{
		NodeID: m.dragging,
		X:      x + dx*w*panFraction/k,
		Y:      y + dy*h*panFraction/k,
	})
}

func (m *Model) copyHovered() {
	id := m.hovered()
	if id == "" {
		m.status = "nothing hovered"
		return
	}
	if err := clipboard.WriteAll(id); err != nil {
		m.status = "clipboard unavailable: " + err.Error()
		return
	}
	m.status = "copied " + id
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}
	header := m.renderHeader()
	footer := m.renderFooter()

	canvasW := m.width
	hovered := m.hovered()
	var side string
	if m.showDetails && hovered != "" && m.width > detailsWidth+20 {
		canvasW = m.width - detailsWidth - 1
		side = m.renderDetails(hovered)
	}
	canvasH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if canvasH < 1 {
		canvasH = 1
	}

	canvas := NewCanvas(canvasW, canvasH)
	m.session.View(func(sc *scene.Scene, v interact.Visual) {
		canvas.Draw(sc, v.Transform, v.Hovered)
	})
	body := canvas.Render(m.theme)
	if side != "" {
		side = lipgloss.NewStyle().MaxHeight(canvasH).Render(side)
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", side)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) renderHeader() string {
	v := m.session.Visual()
	g := m.session.Graph()
	state := "settled"
	if m.session.Running() {
		state = "running"
	}
	left := m.theme.Header.Render(m.title)
	info := fmt.Sprintf(" %d nodes · %d links · zoom %.2f · %s", len(g.Nodes), len(g.Links), v.Transform.K, state)
	if m.dragging != "" {
		info += " · dragging"
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(left + m.theme.Status.Render(info))
}

func (m Model) renderFooter() string {
	var lines []string
	switch {
	case m.search.active:
		lines = append(lines, m.search.view(m.theme, m.width))
	case m.err != nil:
		lines = append(lines, m.theme.Error.Render(truncate(m.err.Error(), m.width)))
	case m.status != "":
		lines = append(lines, m.theme.Status.Render(truncate(m.status, m.width)))
	}
	lines = append(lines, m.help.View(m.keys))
	return strings.Join(lines, "\n")
}

func (m Model) renderDetails(id string) string {
	var node *model.Node
	var neighbors []string
	m.session.View(func(sc *scene.Scene, _ interact.Visual) {
		node = sc.Graph().NodeByID(id)
	})
	if node == nil {
		return ""
	}
	g := m.session.Graph()
	for nid := range m.session.Neighbors(id) {
		if n := g.NodeByID(nid); n != nil {
			neighbors = append(neighbors, n.Label)
		}
	}
	return m.theme.Panel.Width(detailsWidth - 2).Render(m.details.render(node, neighbors))
}
