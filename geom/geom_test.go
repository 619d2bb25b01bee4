package geom

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const tol = 1e-9

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol
}

func TestInverseMatchesGonum(t *testing.T) {
	m := Mat3{
		{2, -1, 0.5},
		{0.25, 3, -2},
		{1, 0.1, 4},
	}
	inv, err := m.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	var want mat.Dense
	if err := want.Inverse(m.Dense()); err != nil {
		t.Fatal(err)
	}
	if !mat.EqualApprox(inv.Dense(), &want, 1e-12) {
		t.Fatalf("inverse mismatch:\n got %v\nwant %v", inv, mat.Formatted(&want))
	}
	id := m.Mul(inv)
	if !mat.EqualApprox(id.Dense(), Identity().Dense(), 1e-12) {
		t.Fatalf("m * inv(m) = %v", id)
	}
}

func TestDetAsymmetric(t *testing.T) {
	// duplicating an index in the last cofactor term breaks this one
	m := Mat3{
		{1, 2, 3},
		{0, 4, 5},
		{1, 0, 6},
	}
	if d := m.Det(); d != 22 {
		t.Fatalf("Det = %v, want 22", d)
	}
	if d := mat.Det(m.Dense()); math.Abs(d-22) > 1e-12 {
		t.Fatalf("gonum Det = %v", d)
	}
}

func TestSingular(t *testing.T) {
	m := Mat3{
		{1, 2, 3},
		{2, 4, 6},
		{0, 1, 1},
	}
	if _, err := m.Inverse(); !errors.Is(err, ErrSingular) {
		t.Fatalf("err = %v, want ErrSingular", err)
	}
	if c := Condition(Identity()); math.Abs(c-1) > 1e-9 {
		t.Fatalf("Condition(I) = %v", c)
	}
}

func TestOneBasedAccess(t *testing.T) {
	var m Mat3
	m.Set(1, 3, 7)
	if m[0][2] != 7 || m.At(1, 3) != 7 {
		t.Fatalf("Set/At disagree with storage: %v", m)
	}
}

func TestToRectRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		q    Quad
		w, h float64
	}{
		{"unit", FullFrame, 1, 1},
		{"affine", Quad{{0.1, 0.1}, {0.9, 0.2}, {0.95, 0.8}, {0.15, 0.7}}, 640, 480},
		{"perspective", Quad{{0.2, 0.1}, {0.8, 0.05}, {0.7, 0.9}, {0.3, 0.95}}, 100, 141},
		{"trapezoid", Quad{{0, 0}, {1, 0}, {0.6, 1}, {0.4, 1}}, 3, 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ToRect(tc.q, tc.w, tc.h)
			if err != nil {
				t.Fatal(err)
			}
			corners := [4]Point{{0, 0}, {tc.w, 0}, {tc.w, tc.h}, {0, tc.h}}
			for i, p := range tc.q {
				if got := Transform(p, m); !near(got, corners[i]) {
					t.Errorf("corner %d: %v -> %v, want %v", i, p, got, corners[i])
				}
			}
			inv, err := m.Inverse()
			if err != nil {
				t.Fatal(err)
			}
			for i, c := range corners {
				if got := Transform(c, inv); !near(got, tc.q[i]) {
					t.Errorf("inverse corner %d: %v -> %v, want %v", i, c, got, tc.q[i])
				}
			}
		})
	}
}

func TestToRectDegenerate(t *testing.T) {
	q := Quad{{0, 0}, {0.5, 0.5}, {1, 1}, {0.2, 0.2}}
	if _, err := ToRect(q, 10, 10); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("err = %v, want ErrDegenerate", err)
	}
}

func TestSanitize(t *testing.T) {
	ccw := Quad{{0.1, 0.1}, {0.9, 0.15}, {0.85, 0.9}, {0.2, 0.8}}
	for _, tc := range []struct {
		name string
		in   [4]Point
		want Quad
		err  error
	}{
		{"canonical", ccw, ccw, nil},
		{"rotated", [4]Point{ccw[2], ccw[3], ccw[0], ccw[1]}, ccw, nil},
		{"clockwise", [4]Point{ccw[0], ccw[3], ccw[2], ccw[1]}, ccw, nil},
		{"clockwise rotated", [4]Point{ccw[2], ccw[1], ccw[0], ccw[3]}, ccw, nil},
		{"bowtie", [4]Point{ccw[0], ccw[2], ccw[1], ccw[3]}, ccw, nil},
		{"mirrored bowtie", [4]Point{ccw[0], ccw[2], ccw[3], ccw[1]}, ccw, nil},
		{"bowtie last pair", [4]Point{ccw[0], ccw[1], ccw[3], ccw[2]}, ccw, nil},
		{"collinear", [4]Point{{0, 0}, {0.5, 0}, {1, 0}, {0.5, 1}}, Quad{}, ErrDegenerate},
		{"concave", [4]Point{{0, 0}, {1, 0}, {0.3, 0.3}, {0, 1}}, Quad{}, ErrInvalidQuad},
		{"concave clockwise", [4]Point{{0, 0}, {0, 1}, {0.3, 0.3}, {1, 0}}, Quad{}, ErrInvalidQuad},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Sanitize(tc.in)
			if !errors.Is(err, tc.err) {
				t.Fatalf("err = %v, want %v", err, tc.err)
			}
			if err == nil && got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	in := [4]Point{{0.8, 0.9}, {0.9, 0.1}, {0.05, 0.2}, {0.1, 0.95}}
	once, err := Sanitize(in)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Sanitize(once)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice || !once.Valid() {
		t.Fatalf("not idempotent: %v then %v", once, twice)
	}
}

func TestCorners(t *testing.T) {
	c := NewCorners(MoveNearest)
	pts := []Point{{0.1, 0.1}, {0.9, 0.1}, {0.9, 0.9}}
	for _, p := range pts {
		if c.Click(p) {
			t.Fatalf("valid before four points")
		}
	}
	// repeated clicks are ignored while collecting
	c.Click(pts[1])
	if len(c.Points()) != 3 {
		t.Fatalf("duplicate accepted: %v", c.Points())
	}
	if !c.Click(Point{0.1, 0.9}) {
		t.Fatalf("square rejected")
	}
	good, ok := c.Quad()
	if !ok || good != (Quad{{0.1, 0.1}, {0.9, 0.1}, {0.9, 0.9}, {0.1, 0.9}}) {
		t.Fatalf("quad = %v, %v", good, ok)
	}

	// replacing the oldest corner with a point inside the page makes it concave
	c.Mode = MoveOldest
	if c.Click(Point{0.7, 0.7}) {
		t.Fatalf("concave quad accepted")
	}
	if q, _ := c.Quad(); q != good {
		t.Fatalf("last valid quad lost: %v", q)
	}
	if !c.Click(Point{0.9, 0.8}) {
		t.Fatalf("convex replacement rejected: %v", c.Points())
	}
	if q, _ := c.Quad(); q[0] != (Point{0.1, 0.9}) {
		t.Fatalf("quad = %v", q)
	}

	c.Mode = ClearAll
	c.Click(Point{0.5, 0.5})
	if len(c.Points()) != 1 || c.Valid() {
		t.Fatalf("clear all left %v", c.Points())
	}
	if q, ok := c.Quad(); !ok || q[0] != (Point{0.1, 0.9}) {
		t.Fatalf("quad after clear = %v", q)
	}
}

func TestCornersMoveOldest(t *testing.T) {
	c := NewCorners(MoveOldest)
	for _, p := range []Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		c.Click(p)
	}
	if !c.Click(Point{0.1, 0.05}) {
		t.Fatalf("replacing the oldest corner was rejected")
	}
	q, _ := c.Quad()
	if q[0] != (Point{0.1, 0.05}) {
		t.Fatalf("quad = %v", q)
	}
}
