package game

import (
	"math/rand"
	"sync"
)

// Rand is the source for chance rolls such as double XP.
type Rand interface {
	Float64() float64
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe source seeded with seed.
func NewRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// SequenceRand replays fixed values in order, then repeats the last one.
// An empty sequence always returns 1, which never wins a roll.
type SequenceRand struct {
	mu     sync.Mutex
	values []float64
	draws  int
}

func NewSequenceRand(values ...float64) *SequenceRand {
	return &SequenceRand{values: values}
}

func (s *SequenceRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.draws
	s.draws++
	if len(s.values) == 0 {
		return 1
	}
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	return s.values[i]
}

// Draws is how many values have been consumed.
func (s *SequenceRand) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}
