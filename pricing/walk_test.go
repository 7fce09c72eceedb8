package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestWalkNext(t *testing.T) {
	t.Parallel()
	w := DefaultWalk()

	tests := []struct {
		name  string
		price float64
		draw  float64
		want  float64
	}{
		{"lowest draw", 100, 0, 90},
		{"middle draw", 100, 0.5, 100},
		{"highest draw", 100, 1, 110},
		{"quarter draw", 200, 0.25, 190},
		{"out of range draw is clamped", 100, 3, 110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, w.Next(tt.price, tt.draw), 1e-9)
		})
	}
}

func TestWalkFloor(t *testing.T) {
	t.Parallel()
	w := Walk{MaxChange: 1, Floor: 0.01}

	// A -100% move would wipe the price out.
	assert.Equal(t, 0.01, w.Next(5, 0))
	assert.Equal(t, 0.01, w.Next(0.001, 0.5))
}

func TestWalkStaysBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := DefaultWalk()
		price := rapid.Float64Range(1e-6, 1e6).Draw(t, "price")
		draw := rapid.Float64Range(0, 1).Draw(t, "draw")

		next := w.Next(price, draw)
		if next <= 0 {
			t.Fatalf("price went non-positive: %v", next)
		}
		if next < price*0.9-1e-9 || next > price*1.1+1e-9 {
			t.Fatalf("move out of bounds: %v -> %v", price, next)
		}
	})
}

func TestSequenceWraps(t *testing.T) {
	t.Parallel()
	s := NewSequence(0.1, 0.9)
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.9, s.Float64())
	assert.Equal(t, 0.1, s.Float64())

	assert.Equal(t, 0.5, NewSequence().Float64())
}
