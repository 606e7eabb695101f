package interact

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vanderheijden86/cooc/pkg/layout"
	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/scene"
	"github.com/vanderheijden86/cooc/pkg/testutil"
	"pgregory.net/rapid"
)

// chain builds A - B - C plus an isolated D.
func chain(t *testing.T) *Session {
	t.Helper()
	g := model.NewGraph(
		[]*model.Node{
			{ID: "1", Label: "A", BWCount: model.NewCount(10), Louvain: model.NewCount(0)},
			{ID: "2", Label: "B", BWCount: model.NewCount(1), Louvain: model.NewCount(1)},
			{ID: "3", Label: "C", BWCount: model.NewCount(5), Louvain: model.NewCount(1)},
			{ID: "4", Label: "D", BWCount: model.NewCount(0), Louvain: model.NewCount(2)},
		},
		[]*model.Link{
			{SourceID: "1", TargetID: "2"},
			{SourceID: "2", TargetID: "3"},
		},
	)
	for _, n := range g.Nodes {
		n.Unplace()
	}
	s, err := NewSession(g, DefaultOptions())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestHover_TouchingLinkKeepsDefault(t *testing.T) {
	s := chain(t)
	if err := s.Apply(HoverEnter{NodeID: "1"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	v := s.Visual()

	if v.LinkOpacity[0] != scene.LinkOpacity {
		t.Errorf("touching link A-B opacity = %v, want %v", v.LinkOpacity[0], scene.LinkOpacity)
	}
	if v.LinkOpacity[1] != DimOpacity {
		t.Errorf("non-touching link B-C opacity = %v, want %v", v.LinkOpacity[1], DimOpacity)
	}

	tests := []struct {
		id      string
		opacity float64
		label   bool
	}{
		{"1", 1, true},    // hovered
		{"2", 1, true},    // neighbor
		{"3", 0.1, false}, // two hops away
		{"4", 0.1, false}, // isolated
	}
	for i, tt := range tests {
		if v.NodeOpacity[i] != tt.opacity || v.LabelVisible[i] != tt.label {
			t.Errorf("node %s: opacity=%v label=%v, want %v/%v",
				tt.id, v.NodeOpacity[i], v.LabelVisible[i], tt.opacity, tt.label)
		}
	}
	if v.Hovered != "1" {
		t.Errorf("Hovered = %q, want 1", v.Hovered)
	}

	s.View(func(sc *scene.Scene, _ Visual) {
		if sc.NodeView("3").Opacity != DimOpacity || sc.Links[1].Opacity != DimOpacity {
			t.Error("visual state not copied onto scene views")
		}
	})
}

func TestHover_LeaveRestores(t *testing.T) {
	s := chain(t)
	before := s.Visual()
	if err := s.Apply(HoverEnter{NodeID: "2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(HoverLeave{NodeID: "2"}); err != nil {
		t.Fatal(err)
	}
	if after := s.Visual(); !reflect.DeepEqual(before, after) {
		t.Errorf("hover enter+leave changed visual state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestHover_MatchByLabelMergesDuplicates(t *testing.T) {
	g := model.NewGraph(
		[]*model.Node{
			{ID: "1", Label: "same"},
			{ID: "2", Label: "same"},
			{ID: "3", Label: "x"},
			{ID: "4", Label: "y"},
		},
		[]*model.Link{{SourceID: "1", TargetID: "3"}, {SourceID: "2", TargetID: "4"}},
	)
	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}
	sc := scene.Build(g, scene.DefaultOptions())
	view := SceneView(sc)

	byLabel := Reducer{MatchBy: MatchLabel}.Neighbors(g.Nodes[0], view)
	if !byLabel["3"] || !byLabel["4"] {
		t.Errorf("label match neighbors = %v, want 3 and 4", byLabel)
	}
	byID := Reducer{MatchBy: MatchID}.Neighbors(g.Nodes[0], view)
	if !byID["3"] || byID["4"] {
		t.Errorf("id match neighbors = %v, want only 3", byID)
	}
}

func TestReduce_HoverIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64Range(1, 1<<30).Draw(t, "seed")
		size := rapid.IntRange(1, 12).Draw(t, "size")
		density := rapid.Float64Range(0, 1).Draw(t, "density")

		gen := testutil.New(testutil.GeneratorConfig{Seed: seed})
		g := gen.ToGraph(gen.Random(size, density))
		if err := g.Resolve(); err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		view := SceneView(scene.Build(g, scene.DefaultOptions()))
		id := g.Nodes[rapid.IntRange(0, size-1).Draw(t, "node")].ID

		rest := Initial(view)
		once := Reduce(rest, HoverEnter{NodeID: id}, view)
		twice := Reduce(once, HoverEnter{NodeID: id}, view)
		if !reflect.DeepEqual(once, twice) {
			t.Fatalf("hover not idempotent for node %s", id)
		}
		left := Reduce(twice, HoverLeave{NodeID: id}, view)
		if !reflect.DeepEqual(rest, left) {
			t.Fatalf("hover leave did not restore rest state for node %s", id)
		}
	})
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	g := testutil.QuickStar(3)
	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}
	view := SceneView(scene.Build(g, scene.DefaultOptions()))
	rest := Initial(view)
	snapshot := Initial(view)
	_ = Reduce(rest, HoverEnter{NodeID: "2"}, view)
	if !reflect.DeepEqual(rest, snapshot) {
		t.Error("Reduce mutated its input")
	}
}

func TestDrag_PinsAndReleases(t *testing.T) {
	s := chain(t)
	s.Settle(1000)
	if s.Running() {
		t.Fatal("expected settled simulation")
	}

	for _, ev := range []Event{
		DragStart{NodeID: "1"},
		DragMove{NodeID: "1", X: 50, Y: 50},
	} {
		if err := s.Apply(ev); err != nil {
			t.Fatalf("Apply(%s): %v", ev.Kind(), err)
		}
	}
	if !s.Running() {
		t.Fatal("drag start should restart the simulation")
	}
	s.Step()

	n := s.Graph().NodeByID("1")
	if n.X != 50 || n.Y != 50 || !n.Pinned() {
		t.Fatalf("dragged node at (%v, %v) pinned=%v, want (50, 50) pinned", n.X, n.Y, n.Pinned())
	}

	if err := s.Apply(DragEnd{NodeID: "1"}); err != nil {
		t.Fatal(err)
	}
	if n.Pinned() {
		t.Fatal("fx/fy not cleared after release")
	}
	if n.X != 50 || n.Y != 50 {
		t.Fatalf("release moved node to (%v, %v)", n.X, n.Y)
	}

	s.Step()
	if n.Pinned() {
		t.Error("node re-pinned after release")
	}
	if n.X == 50 && n.Y == 50 {
		t.Error("node did not resume motion after release")
	}
	if len(s.Visual().Dragging) != 0 {
		t.Errorf("Dragging = %v, want empty", s.Visual().Dragging)
	}
}

func TestController_AlphaTarget(t *testing.T) {
	g := testutil.QuickStar(2)
	sim, err := layout.ForGraph(g, layout.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	c := NewController(g, sim)

	if err := c.Handle(DragStart{NodeID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Handle(DragStart{NodeID: "2"}); err != nil {
		t.Fatal(err)
	}
	if sim.AlphaTarget() != layout.DragAlphaTarget {
		t.Fatalf("alpha target = %v, want %v", sim.AlphaTarget(), layout.DragAlphaTarget)
	}
	if err := c.Handle(DragEnd{NodeID: "1"}); err != nil {
		t.Fatal(err)
	}
	if sim.AlphaTarget() != layout.DragAlphaTarget {
		t.Error("alpha target dropped while another drag is active")
	}
	if err := c.Handle(DragEnd{NodeID: "2"}); err != nil {
		t.Fatal(err)
	}
	if sim.AlphaTarget() != 0 || c.Dragging() {
		t.Errorf("alpha target = %v after last release, want 0", sim.AlphaTarget())
	}
}

func TestZoom_ClampsToMax(t *testing.T) {
	s := chain(t)
	if err := s.Apply(Zoom{Factor: 10, CX: 300, CY: 300}); err != nil {
		t.Fatal(err)
	}
	if k := s.Visual().Transform.K; k != scene.MaxZoom {
		t.Errorf("K = %v, want %v", k, scene.MaxZoom)
	}
	if err := s.Apply(Pan{DX: 10, DY: -5}); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(ZoomTo{Transform: scene.Transform{K: 0.01}}); err != nil {
		t.Fatal(err)
	}
	if k := s.Visual().Transform.K; k != scene.MinZoom {
		t.Errorf("K = %v, want %v", k, scene.MinZoom)
	}
}

func TestApply_UnknownNode(t *testing.T) {
	s := chain(t)
	before := s.Visual()
	err := s.Apply(HoverEnter{NodeID: "404"})
	if !errors.Is(err, ErrUnknownNode) {
		t.Fatalf("err = %v, want ErrUnknownNode", err)
	}
	if !reflect.DeepEqual(before, s.Visual()) {
		t.Error("failed event changed visual state")
	}
}

func TestSession_ReloadKeepsPositions(t *testing.T) {
	s := chain(t)
	s.Settle(1000)
	if err := s.Apply(Zoom{Factor: 2, CX: 0, CY: 0}); err != nil {
		t.Fatal(err)
	}
	old := s.Graph().NodeByID("2")
	x, y := old.X, old.Y

	next := testutil.QuickStar(4)
	if err := s.Reload(next); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	n := s.Graph().NodeByID("2")
	if n.X != x || n.Y != y {
		t.Errorf("surviving node moved from (%v, %v) to (%v, %v)", x, y, n.X, n.Y)
	}
	v := s.Visual()
	if len(v.NodeOpacity) != len(next.Nodes) {
		t.Errorf("visual has %d nodes, want %d", len(v.NodeOpacity), len(next.Nodes))
	}
	if v.Transform.K != 2 {
		t.Errorf("transform not kept across reload: %+v", v.Transform)
	}
	if !s.Running() {
		t.Error("reload should reheat the simulation")
	}
}

func TestSession_ReloadDanglingKeepsOldGraph(t *testing.T) {
	s := chain(t)
	bad := testutil.TwoNodes()
	bad.Links = append(bad.Links, &model.Link{SourceID: "2", TargetID: "404"})
	if err := s.Reload(bad); !errors.Is(err, model.ErrDanglingLink) {
		t.Fatalf("err = %v, want ErrDanglingLink", err)
	}
	if got := len(s.Graph().Nodes); got != 4 {
		t.Errorf("graph replaced despite error: %d nodes", got)
	}
}

func TestEventSpec_Decode(t *testing.T) {
	tests := []struct {
		spec    EventSpec
		want    Event
		wantErr bool
	}{
		{EventSpec{Type: "hover_enter", Node: "1"}, HoverEnter{NodeID: "1"}, false},
		{EventSpec{Type: "mouseout", Node: "1"}, HoverLeave{NodeID: "1"}, false},
		{EventSpec{Type: "drag_move", Node: "2", X: 5, Y: 6}, DragMove{NodeID: "2", X: 5, Y: 6}, false},
		{EventSpec{Type: "zoom", Factor: 2, CX: 1, CY: 2}, Zoom{Factor: 2, CX: 1, CY: 2}, false},
		{EventSpec{Type: "pan", DX: 3}, Pan{DX: 3}, false},
		{EventSpec{Type: "zoom_to"}, ZoomTo{Transform: scene.Identity}, false},
		{EventSpec{Type: "hover_enter"}, nil, true},
		{EventSpec{Type: "zoom"}, nil, true},
		{EventSpec{Type: "explode"}, nil, true},
	}
	for _, tt := range tests {
		got, err := tt.spec.Decode()
		if (err != nil) != tt.wantErr {
			t.Errorf("Decode(%+v) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Decode(%+v) = %#v, want %#v", tt.spec, got, tt.want)
		}
	}
}

func TestParseMatchBy(t *testing.T) {
	if m, err := ParseMatchBy(""); err != nil || m != MatchLabel {
		t.Errorf("ParseMatchBy(\"\") = %v, %v", m, err)
	}
	if m, err := ParseMatchBy("id"); err != nil || m != MatchID {
		t.Errorf("ParseMatchBy(id) = %v, %v", m, err)
	}
	if _, err := ParseMatchBy("name"); err == nil {
		t.Error("expected error for unknown match_by")
	}
}
