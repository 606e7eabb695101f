package layout

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/testutil"
)

func TestNew_PhyllotaxisPlacement(t *testing.T) {
	g := testutil.QuickStar(4)
	s := New(g.Nodes, 1)
	if s.Alpha() != 1 {
		t.Fatalf("initial alpha = %v, want 1", s.Alpha())
	}
	for i, n := range g.Nodes {
		r := initialRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * initialAngle
		testutil.AssertNear(t, "x", n.X, r*math.Cos(a), 1e-9)
		testutil.AssertNear(t, "y", n.Y, r*math.Sin(a), 1e-9)
	}
}

func TestNew_KeepsPlacedAndPinned(t *testing.T) {
	placed := &model.Node{ID: "a", X: 5, Y: 7}
	pinned := &model.Node{ID: "b"}
	pinned.Unplace()
	pinned.Pin(40, 41)

	New([]*model.Node{placed, pinned}, 1)
	if placed.X != 5 || placed.Y != 7 {
		t.Errorf("placed node moved to (%v, %v)", placed.X, placed.Y)
	}
	if pinned.X != 40 || pinned.Y != 41 {
		t.Errorf("pinned node at (%v, %v), want (40, 41)", pinned.X, pinned.Y)
	}
}

func TestAlphaDecay_CoolsIn300Ticks(t *testing.T) {
	s := New(nil, 1)
	n := s.Settle(1000)
	if n < 295 || n > 305 {
		t.Errorf("settled after %d ticks, want ~300", n)
	}
	if !s.Done() || s.Running() {
		t.Error("simulation should be done and stopped")
	}
}

func TestStep_NotifiesListeners(t *testing.T) {
	s := New(testutil.QuickStar(3).Nodes, 1)
	calls := 0
	s.OnTick(func() { calls++ })
	s.Step()
	s.Step()
	if calls != 2 {
		t.Errorf("listener called %d times, want 2", calls)
	}
	if s.Ticks() != 2 {
		t.Errorf("Ticks() = %d, want 2", s.Ticks())
	}
}

func TestTick_PinnedNodeHoldsPosition(t *testing.T) {
	g := testutil.QuickStar(5)
	s, err := ForGraph(g, DefaultConfig())
	if err != nil {
		t.Fatalf("ForGraph: %v", err)
	}
	hub := g.Nodes[0]
	s.Fix(hub, 50, 50)
	for i := 0; i < 20; i++ {
		s.Tick()
		if hub.X != 50 || hub.Y != 50 || hub.VX != 0 || hub.VY != 0 {
			t.Fatalf("tick %d: pinned node at (%v, %v) v=(%v, %v)", i, hub.X, hub.Y, hub.VX, hub.VY)
		}
	}
	s.Unfix(hub)
	s.Tick()
	if hub.Pinned() {
		t.Fatal("node still pinned after Unfix")
	}
}

func TestForGraph_DanglingLink(t *testing.T) {
	g := testutil.TwoNodes()
	g.Links = append(g.Links, &model.Link{SourceID: "1", TargetID: "404"})
	_, err := ForGraph(g, DefaultConfig())
	if !errors.Is(err, model.ErrDanglingLink) {
		t.Fatalf("err = %v, want ErrDanglingLink", err)
	}
}

func TestForGraph_SettlesNearCenter(t *testing.T) {
	g := testutil.QuickClusters(3, 6)
	cfg := DefaultConfig()
	s, err := ForGraph(g, cfg)
	if err != nil {
		t.Fatalf("ForGraph: %v", err)
	}
	s.Settle(500)
	testutil.AssertFinitePositions(t, g)

	var mx, my float64
	for _, n := range g.Nodes {
		mx += n.X
		my += n.Y
	}
	mx /= float64(len(g.Nodes))
	my /= float64(len(g.Nodes))
	testutil.AssertNear(t, "mean x", mx, cfg.Width/2, 1)
	testutil.AssertNear(t, "mean y", my, cfg.Height/2, 1)
}

func TestLinkForce_PullsTowardDistance(t *testing.T) {
	g := testutil.TwoNodes()
	a, b := g.Nodes[0], g.Nodes[1]
	a.X, a.Y = 0, 0
	b.X, b.Y = 100, 0
	if err := g.Resolve(); err != nil {
		t.Fatal(err)
	}
	s := New(g.Nodes, 1)
	s.AddForce("link", NewLinkForce(g.Links))
	s.Settle(1000)

	d := math.Hypot(b.X-a.X, b.Y-a.Y)
	testutil.AssertNear(t, "link length", d, DefaultLinkDistance, 0.5)
}

func TestManyBodyForce_ExactAndQuadtreeAgree(t *testing.T) {
	build := func(exact bool) []*model.Node {
		g := testutil.QuickClusters(2, 5)
		s := New(g.Nodes, 1)
		f := NewManyBodyForce()
		f.Exact = exact
		f.Theta = 0
		s.AddForce("charge", f)
		s.Tick()
		return g.Nodes
	}
	exact := build(true)
	approx := build(false)
	for i := range exact {
		testutil.AssertNear(t, "vx", approx[i].VX, exact[i].VX, 1e-6)
		testutil.AssertNear(t, "vy", approx[i].VY, exact[i].VY, 1e-6)
	}
}

func TestManyBodyForce_Repels(t *testing.T) {
	a := &model.Node{ID: "a", X: -1, Y: 0}
	b := &model.Node{ID: "b", X: 1, Y: 0}
	s := New([]*model.Node{a, b}, 1)
	s.AddForce("charge", NewManyBodyForce())
	s.Tick()
	if a.X >= -1 || b.X <= 1 {
		t.Errorf("nodes did not separate: a=%v b=%v", a.X, b.X)
	}
}

func TestCenterForce_MovesMean(t *testing.T) {
	nodes := []*model.Node{{ID: "a", X: 0, Y: 0}, {ID: "b", X: 10, Y: 20}}
	f := NewCenterForce(300, 300)
	f.Initialize(nodes, nil)
	f.Apply(1)
	testutil.AssertNear(t, "mean x", (nodes[0].X+nodes[1].X)/2, 300, 1e-9)
	testutil.AssertNear(t, "mean y", (nodes[0].Y+nodes[1].Y)/2, 300, 1e-9)
}

func TestSimulation_Deterministic(t *testing.T) {
	run := func() []*model.Node {
		g := testutil.QuickClusters(2, 4)
		s, err := ForGraph(g, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		s.Settle(50)
		return g.Nodes
	}
	first, second := run(), run()
	for i := range first {
		if first[i].X != second[i].X || first[i].Y != second[i].Y {
			t.Fatalf("node %d differs between runs", i)
		}
	}
}

func TestRestart_AfterStop(t *testing.T) {
	s := New(testutil.QuickStar(2).Nodes, 1)
	s.Settle(1000)
	if s.Running() {
		t.Fatal("expected stopped simulation")
	}
	s.SetAlphaTarget(DragAlphaTarget)
	s.Restart()
	if !s.Running() {
		t.Fatal("Restart did not resume")
	}
	for i := 0; i < 100; i++ {
		s.Step()
	}
	if s.Alpha() < 0.2 {
		t.Errorf("alpha = %v, want it to approach %v", s.Alpha(), DragAlphaTarget)
	}
}

func TestFind(t *testing.T) {
	nodes := []*model.Node{{ID: "a", X: 0, Y: 0}, {ID: "b", X: 10, Y: 0}}
	s := New(nodes, 1)
	if got := s.Find(9, 1, 0); got == nil || got.ID != "b" {
		t.Errorf("Find(9,1) = %v, want b", got)
	}
	if got := s.Find(5, 50, 3); got != nil {
		t.Errorf("Find outside radius = %v, want nil", got.ID)
	}
}

func TestRunner_StepsUntilCooledAndWakes(t *testing.T) {
	var mu sync.Mutex
	s := New(testutil.QuickStar(3).Nodes, 1)
	s.SetAlpha(0.0011)

	r := NewRunner(s, &mu, time.Millisecond)
	steps := make(chan struct{}, 1024)
	r.OnStep = func(time.Duration, float64) { steps <- struct{}{} }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	waitStopped := func() {
		deadline := time.After(2 * time.Second)
		for {
			mu.Lock()
			running := s.Running()
			mu.Unlock()
			if !running {
				return
			}
			select {
			case <-deadline:
				t.Fatal("runner did not cool the simulation")
			case <-steps:
			}
		}
	}
	waitStopped()

	for len(steps) > 0 {
		<-steps
	}
	mu.Lock()
	before := s.Ticks()
	s.SetAlpha(0.0011)
	s.Restart()
	mu.Unlock()

	select {
	case <-steps:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not wake after Restart")
	}
	mu.Lock()
	after := s.Ticks()
	mu.Unlock()
	if after <= before {
		t.Errorf("ticks did not advance after Restart: %d -> %d", before, after)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestSetGraph_KeepsCarriedPositions(t *testing.T) {
	old := testutil.QuickStar(3)
	s, err := ForGraph(old, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s.Settle(1000)

	next := testutil.QuickStar(4)
	next.CarryPositions(old)
	if err := s.SetGraph(next); err != nil {
		t.Fatalf("SetGraph: %v", err)
	}
	for i := range old.Nodes {
		if next.Nodes[i].X != old.Nodes[i].X || next.Nodes[i].Y != old.Nodes[i].Y {
			t.Errorf("node %d lost its position", i)
		}
	}
	if !next.Nodes[4].Placed() {
		t.Error("new node was not placed")
	}
	if !s.Running() || s.Alpha() != 1 {
		t.Error("SetGraph should reheat the simulation")
	}
	s.Settle(10)
	testutil.AssertFinitePositions(t, next)
}
