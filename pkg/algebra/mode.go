// Package algebra runs the interval algebra operations on tables of any time
// mode. The mode is chosen once per call from the operand schemas; each call
// is traced, measured and logged.
package algebra

import (
	"fmt"

	"github.com/Sumatoshi-tech/streamgraph/pkg/alg/clique"
	"github.com/Sumatoshi-tech/streamgraph/pkg/table"
)

// Re-exported sentinel errors.
var (
	ErrInvalidInterval      = table.ErrInvalidInterval
	ErrSchemaMismatch       = table.ErrSchemaMismatch
	ErrPreconditionViolated = clique.ErrPreconditionViolated
	ErrUnsupportedDirection = clique.ErrUnsupportedDirection
)

// Mode is the time and weight model of a call.
type Mode uint8

// Modes.
const (
	Continuous Mode = iota
	Discrete
	WeightedContinuous
	WeightedDiscrete
	Instantaneous
)

func (m Mode) String() string {
	switch m {
	case Continuous:
		return "continuous"
	case Discrete:
		return "discrete"
	case WeightedContinuous:
		return "weighted-continuous"
	case WeightedDiscrete:
		return "weighted-discrete"
	case Instantaneous:
		return "instantaneous"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

func modeOf(s table.Schema) Mode {
	switch {
	case s.Instant:
		return Instantaneous
	case s.Discrete && s.Weighted:
		return WeightedDiscrete
	case s.Discrete:
		return Discrete
	case s.Weighted:
		return WeightedContinuous
	default:
		return Continuous
	}
}

// ModeOf returns the mode shared by every schema.
func ModeOf(schemas ...table.Schema) (Mode, error) {
	if len(schemas) == 0 {
		return 0, fmt.Errorf("%w: no operand", ErrSchemaMismatch)
	}

	for _, s := range schemas[1:] {
		if !s.SameMode(schemas[0]) {
			return 0, fmt.Errorf("%w: %s and %s operands", ErrSchemaMismatch, modeOf(schemas[0]), modeOf(s))
		}
	}

	return modeOf(schemas[0]), nil
}
