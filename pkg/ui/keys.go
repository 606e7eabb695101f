package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the viewer's bindings; it implements help.KeyMap.
type KeyMap struct {
	NextNode  key.Binding
	PrevNode  key.Binding
	Leave     key.Binding
	Search    key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding
	PanUp     key.Binding
	PanDown   key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	Drag      key.Binding
	DragUp    key.Binding
	DragDown  key.Binding
	DragLeft  key.Binding
	DragRight key.Binding
	Copy      key.Binding
	Reheat    key.Binding
	Details   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextNode:  key.NewBinding(key.WithKeys("tab", "n"), key.WithHelp("tab", "hover next")),
		PrevNode:  key.NewBinding(key.WithKeys("shift+tab", "p"), key.WithHelp("shift+tab", "hover prev")),
		Leave:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "find label")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		ZoomReset: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		PanUp:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "pan")),
		PanDown:   key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "pan")),
		PanLeft:   key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "pan")),
		PanRight:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "pan")),
		Drag:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "grab/release")),
		DragUp:    key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "drag up")),
		DragDown:  key.NewBinding(key.WithKeys("j"), key.WithHelp("j", "drag down")),
		DragLeft:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "drag left")),
		DragRight: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "drag right")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		Reheat:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reheat")),
		Details:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextNode, k.Search, k.Leave, k.ZoomIn, k.ZoomOut, k.Drag, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextNode, k.PrevNode, k.Search, k.Leave, k.Copy},
		{k.ZoomIn, k.ZoomOut, k.ZoomReset, k.PanUp, k.PanDown, k.PanLeft, k.PanRight},
		{k.Drag, k.DragUp, k.DragDown, k.DragLeft, k.DragRight},
		{k.Reheat, k.Details, k.Help, k.Quit},
	}
}
