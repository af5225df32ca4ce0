package plume

import (
	"math"
	"testing"

	"github.com/edaniels/golog"

	"github.com/akmonengine/plume/body"
	"github.com/akmonengine/plume/shape"
)

func TestGridExplicitSizing(t *testing.T) {
	g := newGrid[*shape.Rect](1, 1)
	rects := []*shape.Rect{
		newTestRect(t, 0, 1, 0, 1, 0),
		newTestRect(t, 3, 4, 3, 4, 0),
	}

	g.rebuild(rects, (*shape.Rect).Bounds, golog.NewTestLogger(t), "rect")

	if g.minX != 0 || g.minY != 0 {
		t.Errorf("origin = (%v, %v), want (0, 0)", g.minX, g.minY)
	}
	if g.nX != 5 || g.nY != 5 {
		t.Errorf("bins = %dx%d, want 5x5", g.nX, g.nY)
	}
	if !g.ready {
		t.Error("grid should be ready after rebuild")
	}
}

func TestGridOriginSnapsBelowMinimum(t *testing.T) {
	g := newGrid[*shape.Rect](2, 2)
	rects := []*shape.Rect{newTestRect(t, -3.5, -1.5, 1.5, 3.5, 0)}

	g.rebuild(rects, (*shape.Rect).Bounds, golog.NewTestLogger(t), "rect")

	// origin is a multiple of the cell size at or below the global minimum
	if g.minX != -4 {
		t.Errorf("minX = %v, want -4", g.minX)
	}
	if g.minY != 0 {
		t.Errorf("minY = %v, want 0", g.minY)
	}
}

func TestGridAutosizeUsesMeanExtent(t *testing.T) {
	g := newGrid[*shape.Rect](-1, -1)
	rects := []*shape.Rect{
		newTestRect(t, 0, 1, 0, 2, 0),
		newTestRect(t, 2, 5, 2, 6, 0), // widths 1 and 3, heights 2 and 4
	}

	g.rebuild(rects, (*shape.Rect).Bounds, golog.NewTestLogger(t), "rect")

	if math.Abs(g.sizeX-6) > 1e-12 { // 3 * mean(1, 3)
		t.Errorf("sizeX = %v, want 6", g.sizeX)
	}
	if math.Abs(g.sizeY-9) > 1e-12 { // 3 * mean(2, 4)
		t.Errorf("sizeY = %v, want 9", g.sizeY)
	}
}

func TestGridAtOutsideReturnsNil(t *testing.T) {
	g := newGrid[*shape.Rect](1, 1)
	g.rebuild([]*shape.Rect{newTestRect(t, 0, 1, 0, 1, 0)},
		(*shape.Rect).Bounds, golog.NewTestLogger(t), "rect")

	if got := g.at(0.5, 0.5); len(got) != 1 {
		t.Errorf("at(0.5, 0.5) = %v entries, want 1", len(got))
	}
	if got := g.at(100, 0.5); got != nil {
		t.Errorf("at(100, 0.5) = %v, want nil", got)
	}
	if got := g.at(0.5, -100); got != nil {
		t.Errorf("at(0.5, -100) = %v, want nil", got)
	}
}

func TestGridObstacleSpansMultipleBins(t *testing.T) {
	g := newGrid[*shape.Rect](1, 1)
	wide := newTestRect(t, 0, 3, 0, 1, 0)
	g.rebuild([]*shape.Rect{wide}, (*shape.Rect).Bounds, golog.NewTestLogger(t), "rect")

	for x := 0.5; x < 3; x++ {
		if got := g.at(x, 0.5); len(got) != 1 || got[0] != wide {
			t.Errorf("at(%v, 0.5) = %v, want the wide rect", x, got)
		}
	}
}

func TestGridRebuildIsDeterministic(t *testing.T) {
	rects := []*shape.Rect{
		newTestRect(t, 0, 1, 0, 1, 0),
		newTestRect(t, 0.5, 2, 0, 1, 0),
		newTestRect(t, 4, 5, 4, 5, 0),
	}

	a := newGrid[*shape.Rect](1, 1)
	a.rebuild(rects, (*shape.Rect).Bounds, golog.NewTestLogger(t), "rect")
	b := newGrid[*shape.Rect](1, 1)
	b.rebuild(rects, (*shape.Rect).Bounds, golog.NewTestLogger(t), "rect")

	if a.nX != b.nX || a.nY != b.nY || a.minX != b.minX || a.minY != b.minY {
		t.Fatal("rebuilds disagree on grid dimensions")
	}
	for i := 0; i < a.nX; i++ {
		for j := 0; j < a.nY; j++ {
			if len(a.bins[i][j]) != len(b.bins[i][j]) {
				t.Fatalf("bin (%d,%d) sizes differ", i, j)
			}
			for k := range a.bins[i][j] {
				if a.bins[i][j][k] != b.bins[i][j][k] {
					t.Fatalf("bin (%d,%d) entry %d differs", i, j, k)
				}
			}
		}
	}
}

func TestDetectorAddRectRebuildsLazily(t *testing.T) {
	d := NewCollisionDetector(1, 1, golog.NewTestLogger(t))
	d.AddRect(newTestRect(t, 0, 1, 0, 1, 0))

	near := newTestNode(t, 0.5, 0.5, 0)
	if out := d.Detect([]*body.Node{near}, 0.1, nil); len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}

	// adding an obstacle marks the grid dirty; the next detection covers it
	d.AddRect(newTestRect(t, 9, 10, 9, 10, 0))
	far := newTestNode(t, 9.5, 9.5, 0)
	if out := d.Detect([]*body.Node{far}, 0.1, nil); len(out) != 1 {
		t.Fatalf("after AddRect: len(out) = %d, want 1", len(out))
	}
}
