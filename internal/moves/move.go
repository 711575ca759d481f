// Package moves parses rope move scripts. A script is a sequence of lines of
// the exact form "<letter> <count>", for example "R 4".
package moves

import (
	"fmt"
	"strconv"

	"github.com/Ko-stant/rope-follow/internal/geometry"
)

// MaxCount is the largest repeat count a single line may carry.
const MaxCount = 255

type Move struct {
	Direction geometry.Direction
	Count     int
}

func (m Move) String() string {
	return fmt.Sprintf("%c %d", m.Direction.Letter(), m.Count)
}

// Parse converts one line into a Move. The letter must be one of U, D, L, R
// (uppercase), followed by a single space and a decimal count in 0..MaxCount.
// Surrounding whitespace is not tolerated.
func Parse(line string) (Move, error) {
	if len(line) < 3 || line[1] != ' ' {
		return Move{}, formatError(line, "expected \"<letter> <count>\"")
	}

	digits := line[2:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Move{}, formatError(line, "count must be decimal digits")
		}
	}
	count, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return Move{}, formatError(line, fmt.Sprintf("count out of range 0..%d", MaxCount))
	}

	dir, ok := geometry.ParseDirection(line[0])
	if !ok {
		return Move{}, &ParseError{
			Code:    CodeInvalidDirection,
			Input:   line,
			Message: fmt.Sprintf("unknown direction %q", line[0]),
		}
	}

	return Move{Direction: dir, Count: int(count)}, nil
}

func formatError(line, msg string) *ParseError {
	return &ParseError{Code: CodeFormat, Input: line, Message: msg}
}
