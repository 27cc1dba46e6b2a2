package quest

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ClaimKey identifies one reward grant: a quest id within one daily epoch.
func ClaimKey(questID string, lastReset time.Time) string {
	return fmt.Sprintf("quest_claimed_%s_%d", questID, lastReset.UnixMilli())
}

// ClaimLedger records reward grants. Claim returns true only the first time a
// key is seen.
type ClaimLedger interface {
	Claim(ctx context.Context, key string) (bool, error)
}

type MemoryLedger struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{keys: make(map[string]struct{})}
}

func (l *MemoryLedger) Claim(ctx context.Context, key string) (bool, error) {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.keys[key]; ok {
		return false, nil
	}
	l.keys[key] = struct{}{}
	return true, nil
}

// Claimed reports whether key has been granted.
func (l *MemoryLedger) Claimed(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.keys[key]
	return ok
}
