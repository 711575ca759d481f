// Package simulation replays a move script against a rope and counts the
// distinct positions its tail visits.
package simulation

import (
	"context"
	"fmt"

	"github.com/Ko-stant/rope-follow/internal/geometry"
	"github.com/Ko-stant/rope-follow/internal/moves"
	"github.com/Ko-stant/rope-follow/internal/rope"
)

// Step describes the rope right after one single-cell head move.
type Step struct {
	Number    int
	Line      int
	Direction geometry.Direction
	Segments  []geometry.Vec2
	Visited   int
	NewVisit  bool
}

// Observer is notified after every individual step of a run. A non-nil
// error aborts the run.
type Observer interface {
	OnStep(step Step) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Step) error

func (f ObserverFunc) OnStep(step Step) error { return f(step) }

type Result struct {
	RopeLength int
	Steps      int
	Visited    int
	Head       geometry.Vec2
	Tail       geometry.Vec2
}

// CountTailPositions returns how many distinct cells the tail of a rope of the
// given length visits while replaying script, including the origin.
func CountTailPositions(script string, ropeLength int) (int, error) {
	res, err := Run(context.Background(), script, ropeLength, nil)
	if err != nil {
		return 0, err
	}
	return res.Visited, nil
}

// Run replays script and reports the outcome. obs may be nil. The first
// malformed line, an observer error or ctx being done aborts the run and no
// partial result is returned.
func Run(ctx context.Context, script string, ropeLength int, obs Observer) (Result, error) {
	r := rope.New(ropeLength)
	visited := map[geometry.Vec2]struct{}{r.Tail(): {}}
	steps := 0

	s := moves.NewScript(script)
	for s.Next() {
		m := s.Move()
		for i := 0; i < m.Count; i++ {
			if err := ctx.Err(); err != nil {
				return Result{}, fmt.Errorf("replay line %d: %w", s.Line(), err)
			}
			r.Step(m.Direction)
			steps++

			tail := r.Tail()
			_, seen := visited[tail]
			if !seen {
				visited[tail] = struct{}{}
			}
			if obs != nil {
				err := obs.OnStep(Step{
					Number:    steps,
					Line:      s.Line(),
					Direction: m.Direction,
					Segments:  r.Segments(),
					Visited:   len(visited),
					NewVisit:  !seen,
				})
				if err != nil {
					return Result{}, fmt.Errorf("step %d: %w", steps, err)
				}
			}
		}
	}
	if err := s.Err(); err != nil {
		return Result{}, fmt.Errorf("replay script: %w", err)
	}

	return Result{
		RopeLength: ropeLength,
		Steps:      steps,
		Visited:    len(visited),
		Head:       r.Head(),
		Tail:       r.Tail(),
	}, nil
}
