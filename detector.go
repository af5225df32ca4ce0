package plume

import (
	"math"

	"github.com/edaniels/golog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/akmonengine/plume/shape"
)

// ============================================================================
// Uniform grid shared by the rect and triangle detectors
// ============================================================================

// grid is a uniform spatial grid over a static obstacle set. Obstacles are
// inserted into every bin their AABB covers; a query point maps to a single
// owning bin. The grid has two states, dirty and ready: adding an obstacle
// marks it dirty, and the next query pays one rebuild.
type grid[T any] struct {
	sizeX, sizeY float64
	// Auto-sized cells are derived once from the obstacle set at rebuild.
	autosizeX, autosizeY bool

	minX, minY float64
	nX, nY     int
	bins       [][][]T
	ready      bool
}

func newGrid[T any](sizeX, sizeY float64) grid[T] {
	return grid[T]{
		sizeX: sizeX, sizeY: sizeY,
		autosizeX: sizeX <= 0,
		autosizeY: sizeY <= 0,
	}
}

func (g *grid[T]) invalidate() {
	g.ready = false
}

func (g *grid[T]) binX(x float64) int {
	return int(math.Floor((x - g.minX) / g.sizeX))
}

func (g *grid[T]) binY(y float64) int {
	return int(math.Floor((y - g.minY) / g.sizeY))
}

// rebuild sizes the grid to the obstacle set and fills the bins. Auto-sized
// cell dimensions are 3x the mean obstacle extent, a compromise between bin
// occupancy and bins-per-obstacle. The grid origin is snapped to a multiple
// of the cell size at or below the global minimum.
func (g *grid[T]) rebuild(items []T, bounds func(T) shape.AABB, logger golog.Logger, name string) {
	minXs := make([]float64, len(items))
	maxXs := make([]float64, len(items))
	minYs := make([]float64, len(items))
	maxYs := make([]float64, len(items))
	widths := make([]float64, len(items))
	heights := make([]float64, len(items))
	for i, item := range items {
		b := bounds(item)
		minXs[i], maxXs[i] = b.Min.X(), b.Max.X()
		minYs[i], maxYs[i] = b.Min.Y(), b.Max.Y()
		widths[i], heights[i] = b.Width(), b.Height()
	}

	if g.autosizeX {
		g.sizeX = 3 * stat.Mean(widths, nil)
	}
	if g.autosizeY {
		g.sizeY = 3 * stat.Mean(heights, nil)
	}

	minX, maxX := floats.Min(minXs), floats.Max(maxXs)
	minY, maxY := floats.Min(minYs), floats.Max(maxYs)

	g.minX = g.sizeX * math.Floor(minX/g.sizeX)
	g.minY = g.sizeY * math.Floor(minY/g.sizeY)
	g.nX = int(math.Floor(maxX/g.sizeX)-math.Floor(minX/g.sizeX)) + 1
	g.nY = int(math.Floor(maxY/g.sizeY)-math.Floor(minY/g.sizeY)) + 1

	g.bins = make([][][]T, g.nX)
	for i := range g.bins {
		g.bins[i] = make([][]T, g.nY)
	}
	for _, item := range items {
		b := bounds(item)
		for i := g.binX(b.Min.X()); i <= g.binX(b.Max.X()); i++ {
			for j := g.binY(b.Min.Y()); j <= g.binY(b.Max.Y()); j++ {
				g.bins[i][j] = append(g.bins[i][j], item)
			}
		}
	}
	g.ready = true

	if logger != nil {
		logger.Debugf("%s grid rebuilt: %dx%d bins, cell %.3gx%.3g, %d obstacles",
			name, g.nX, g.nY, g.sizeX, g.sizeY, len(items))
	}
}

// at returns the obstacles of the bin owning (x, y), or nil when the point
// lies outside the grid. A node outside the grid cannot touch any registered
// obstacle, so a nil result means no contact this step.
func (g *grid[T]) at(x, y float64) []T {
	i, j := g.binX(x), g.binY(y)
	if i < 0 || i >= g.nX || j < 0 || j >= g.nY {
		return nil
	}
	return g.bins[i][j]
}
