package sim

import (
	"sync"
	"time"
)

type Kind string

const (
	KindStudentAdded Kind = "student.added"
	KindAssetAdded   Kind = "asset.added"
	KindBought       Kind = "investment.bought"
	KindSold         Kind = "investment.sold"
	KindDeposited    Kind = "bank.deposited"
	KindWithdrawn    Kind = "bank.withdrawn"
	KindWeekAdvanced Kind = "week.advanced"
	KindReset        Kind = "app.reset"
)

// Event describes one committed mutation.
type Event struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	StudentID int64     `json:"student_id,omitempty"`
	Symbol    string    `json:"symbol,omitempty"`
	Week      int       `json:"week,omitempty"`
	At        time.Time `json:"at"`
}

// bus fans events out to subscribers. A subscriber whose buffer is full
// misses the event; publishing never blocks the writer.
type bus struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func newBus() *bus {
	return &bus{subs: make(map[int]chan Event)}
}

func (b *bus) subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	key := b.next
	b.next++
	b.subs[key] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, key)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (b *bus) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
