package geometry

import "fmt"

// Direction is one of the four compass moves a script may request.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var deltas = [...]Vec2{
	Up:    {X: 0, Y: 1},
	Down:  {X: 0, Y: -1},
	Left:  {X: -1, Y: 0},
	Right: {X: 1, Y: 0},
}

var letters = [...]byte{
	Up:    'U',
	Down:  'D',
	Left:  'L',
	Right: 'R',
}

// Directions returns all valid directions in declaration order.
func Directions() []Direction {
	return []Direction{Up, Down, Left, Right}
}

func (d Direction) IsValid() bool {
	return d >= Up && d <= Right
}

// Delta returns the unit displacement for d. Y grows upwards.
func (d Direction) Delta() Vec2 {
	if !d.IsValid() {
		return Vec2{}
	}
	return deltas[d]
}

func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	default:
		return d
	}
}

// Letter returns the script letter for d (U, D, L or R).
func (d Direction) Letter() byte {
	if !d.IsValid() {
		return '?'
	}
	return letters[d]
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection maps an uppercase script letter to its Direction.
func ParseDirection(letter byte) (Direction, bool) {
	for _, d := range Directions() {
		if letters[d] == letter {
			return d, true
		}
	}
	return 0, false
}
