package export

import (
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/vanderheijden86/cooc/pkg/scene"

	json "github.com/goccy/go-json"
)

// Number is a float64 that encodes NaN and infinities as null.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

// NodeDoc is the exported form of one node view.
type NodeDoc struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	X            Number `json:"x"`
	Y            Number `json:"y"`
	R            Number `json:"r"`
	Fill         string `json:"fill"`
	Opacity      Number `json:"opacity"`
	LabelVisible bool   `json:"label_visible"`
	BWCount      *int   `json:"bw_count"`
	Louvain      *int   `json:"louvain"`
	Fstgrdy      *int   `json:"fstgrdy"`
	Pinned       bool   `json:"pinned,omitempty"`
}

// LinkDoc is the exported form of one link view.
type LinkDoc struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	X1      Number `json:"x1"`
	Y1      Number `json:"y1"`
	X2      Number `json:"x2"`
	Y2      Number `json:"y2"`
	Opacity Number `json:"opacity"`
}

// TransformDoc is the zoom transform.
type TransformDoc struct {
	K Number `json:"k"`
	X Number `json:"x"`
	Y Number `json:"y"`
}

// Document is the full JSON rendering of a scene, shared by file export and
// the HTTP API.
type Document struct {
	Title       string       `json:"title,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Transform   TransformDoc `json:"transform"`
	Hovered     string       `json:"hovered,omitempty"`
	Nodes       []NodeDoc    `json:"nodes"`
	Links       []LinkDoc    `json:"links"`
}

// NewDocument converts a scene into its JSON document.
func NewDocument(sc *scene.Scene, t scene.Transform, hovered, title string) Document {
	if t.K == 0 {
		t = scene.Identity
	}
	doc := Document{
		Title:       title,
		GeneratedAt: time.Now().UTC(),
		Width:       sc.Width,
		Height:      sc.Height,
		Transform:   TransformDoc{K: Number(t.K), X: Number(t.X), Y: Number(t.Y)},
		Hovered:     hovered,
		Nodes:       make([]NodeDoc, 0, len(sc.Nodes)),
		Links:       make([]LinkDoc, 0, len(sc.Links)),
	}
	for _, v := range sc.Nodes {
		d := NodeDoc{
			ID:           v.ID,
			Label:        v.Label,
			X:            Number(v.X),
			Y:            Number(v.Y),
			R:            Number(v.R),
			Fill:         v.Fill,
			Opacity:      Number(v.Opacity),
			LabelVisible: v.LabelVisible,
		}
		if n := v.Node(); n != nil {
			d.BWCount = countPtr(n.BWCount.Value, n.BWCount.Valid)
			d.Louvain = countPtr(n.Louvain.Value, n.Louvain.Valid)
			d.Fstgrdy = countPtr(n.Fstgrdy.Value, n.Fstgrdy.Valid)
			d.Pinned = n.Pinned()
		}
		doc.Nodes = append(doc.Nodes, d)
	}
	for _, l := range sc.Links {
		doc.Links = append(doc.Links, LinkDoc{
			Source:  l.SourceID,
			Target:  l.TargetID,
			X1:      Number(l.X1),
			Y1:      Number(l.Y1),
			X2:      Number(l.X2),
			Y2:      Number(l.Y2),
			Opacity: Number(l.Opacity),
		})
	}
	return doc
}

func countPtr(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

// WriteJSON encodes the scene document to w, indented.
func WriteJSON(w io.Writer, opts SnapshotOptions) error {
	if opts.Scene == nil {
		return ErrEmptyScene
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(opts.Scene, opts.Transform, opts.Hovered, opts.Title))
}

func saveJSON(opts SnapshotOptions) error {
	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, opts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
