package pricing

import (
	"math/rand"
	"sync"
	"time"
)

// Source supplies uniform draws in [0, 1). *rand.Rand satisfies it; tests
// use a fixed sequence to get exact prices.
type Source interface {
	Float64() float64
}

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSource returns a goroutine safe Source. A zero seed is replaced by the
// current time.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// Sequence replays fixed draws and wraps around at the end.
type Sequence struct {
	mu    sync.Mutex
	draws []float64
	next  int
}

func NewSequence(draws ...float64) *Sequence {
	return &Sequence{draws: draws}
}

func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		return 0.5
	}
	d := s.draws[s.next%len(s.draws)]
	s.next++
	return d
}
