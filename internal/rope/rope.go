// Package rope implements a chain of grid points where every segment follows
// the one in front of it.
package rope

import (
	"fmt"

	"github.com/Ko-stant/rope-follow/internal/geometry"
)

// Rope is an ordered chain of segments. Segment 0 is the head, the last one is
// the tail. After every Step each adjacent pair is touching.
type Rope struct {
	segments []geometry.Vec2
}

// New returns a rope of the given length with every segment at the origin.
// A non-positive length is a caller bug and panics.
func New(length int) *Rope {
	if length < 1 {
		panic(fmt.Sprintf("rope: length must be at least 1, got %d", length))
	}
	return &Rope{segments: make([]geometry.Vec2, length)}
}

func (r *Rope) Len() int {
	return len(r.segments)
}

func (r *Rope) Head() geometry.Vec2 {
	return r.segments[0]
}

func (r *Rope) Tail() geometry.Vec2 {
	return r.segments[len(r.segments)-1]
}

// Segments returns a copy of every segment position, head first.
func (r *Rope) Segments() []geometry.Vec2 {
	out := make([]geometry.Vec2, len(r.segments))
	copy(out, r.segments)
	return out
}

// Step moves the head one cell in dir, then lets each following segment catch
// up with the already-updated segment in front of it.
func (r *Rope) Step(dir geometry.Direction) {
	r.segments[0] = r.segments[0].Add(dir.Delta())
	for i := 1; i < len(r.segments); i++ {
		if r.segments[i-1].Touching(r.segments[i]) {
			// Nothing further back can move either.
			return
		}
		gap := r.segments[i-1].Sub(r.segments[i])
		r.segments[i] = r.segments[i].Add(gap.Sign())
	}
}
