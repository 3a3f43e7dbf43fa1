package history

import (
	"context"
	"sync"
	"time"

	"github.com/dekarrin/grouper/output"
)

type inmemEntry struct {
	snap     *output.Snapshot
	recorded time.Time
}

// inmemStore is a Store backed by a plain map, guarded by a mutex. It is
// lost on process exit; use NewSQLite for a durable Store.
type inmemStore struct {
	mu   sync.RWMutex
	last map[string]inmemEntry
}

// NewInMemory returns a Store that keeps the most recent snapshot per
// grammar name in process memory, mirroring server/dao/inmem's role as
// the zero-setup backing for tests and quick local runs.
func NewInMemory() Store {
	return &inmemStore{last: map[string]inmemEntry{}}
}

func (s *inmemStore) Record(ctx context.Context, grammarName string, snap *output.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[grammarName] = inmemEntry{snap: snap, recorded: time.Now()}
	return nil
}

func (s *inmemStore) Last(ctx context.Context, grammarName string) (*output.Snapshot, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.last[grammarName]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	return e.snap, e.recorded, nil
}

func (s *inmemStore) Close() error {
	return nil
}
