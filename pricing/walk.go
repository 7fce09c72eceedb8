package pricing

import "math"

const (
	DefaultMaxChange = 0.10
	DefaultFloor     = 1e-8
)

// Walk is the bounded weekly random walk: each price moves by a uniform
// percentage in [-MaxChange, +MaxChange]. Results never fall below Floor.
type Walk struct {
	MaxChange float64
	Floor     float64
}

func DefaultWalk() Walk {
	return Walk{MaxChange: DefaultMaxChange, Floor: DefaultFloor}
}

// Delta maps a draw in [0, 1] onto a relative change in [-MaxChange, +MaxChange].
func (w Walk) Delta(draw float64) float64 {
	draw = math.Min(math.Max(draw, 0), 1)
	return (2*draw - 1) * w.MaxChange
}

// Next returns price * (1 + Delta(draw)), clamped to Floor.
func (w Walk) Next(price, draw float64) float64 {
	next := price * (1 + w.Delta(draw))
	if math.IsNaN(next) || next < w.Floor {
		return w.Floor
	}
	return next
}
