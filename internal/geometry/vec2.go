package geometry

import "fmt"

// Vec2 is a point on the integer grid. It is comparable and can key a map.
type Vec2 struct {
	X int
	Y int
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Sign reduces each axis independently to -1, 0 or +1.
func (v Vec2) Sign() Vec2 {
	return Vec2{X: sign(v.X), Y: sign(v.Y)}
}

// Chebyshev returns max(|dx|, |dy|) between v and o.
func (v Vec2) Chebyshev(o Vec2) int {
	return max(abs(v.X-o.X), abs(v.Y-o.Y))
}

// Touching reports whether o is v itself or one of its eight neighbours.
func (v Vec2) Touching(o Vec2) bool {
	return v.Chebyshev(o) <= 1
}

func (v Vec2) String() string {
	return fmt.Sprintf("(%d,%d)", v.X, v.Y)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
