package geom

import "slices"

// EditMode selects what a click does once four corners are placed.
type EditMode int

const (
	MoveNearest EditMode = iota
	MoveOldest
	ClearAll
)

func (m EditMode) String() string {
	switch m {
	case MoveOldest:
		return "oldest"
	case ClearAll:
		return "clear"
	default:
		return "nearest"
	}
}

// Corners collects page corners from clicks in click order, oldest first.
// The last quad that passed Sanitize is kept when a later edit is rejected.
type Corners struct {
	Mode   EditMode
	points []Point
	quad   Quad
	valid  bool
	set    bool
}

// NewCorners starts from the full image frame.
func NewCorners(mode EditMode) *Corners {
	return &Corners{Mode: mode, quad: FullFrame}
}

// Click adds p and returns whether the four current points form a valid quad.
func (c *Corners) Click(p Point) bool {
	if len(c.points) < 4 {
		if slices.Contains(c.points, p) {
			return c.valid
		}
		c.points = append(c.points, p)
		if len(c.points) == 4 {
			c.resanitize()
		}
		return c.valid
	}

	switch c.Mode {
	case MoveNearest:
		nearest := 0
		best := dist2(p, c.points[0])
		for i := 1; i < len(c.points); i++ {
			if d := dist2(p, c.points[i]); d < best {
				best = d
				nearest = i
			}
		}
		c.points = append(slices.Delete(c.points, nearest, nearest+1), p)
		c.resanitize()
	case MoveOldest:
		c.points = append(c.points[1:], p)
		c.resanitize()
	case ClearAll:
		c.points = append(c.points[:0], p)
		c.valid = false
	}
	return c.valid
}

func (c *Corners) resanitize() {
	q, err := Sanitize([4]Point(c.points))
	c.valid = err == nil
	if c.valid {
		c.quad = q
		c.set = true
	}
}

// Points returns the clicked points, oldest first.
func (c *Corners) Points() []Point {
	return slices.Clone(c.points)
}

// Quad returns the last accepted quad and whether one was ever accepted.
// Before that it returns FullFrame.
func (c *Corners) Quad() (Quad, bool) {
	return c.quad, c.set
}

// Valid reports whether the current four points were accepted.
func (c *Corners) Valid() bool {
	return c.valid
}

func (c *Corners) Reset() {
	c.points = c.points[:0]
	c.valid = false
}

func dist2(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}
