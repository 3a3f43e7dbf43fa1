// Package history persists per-grammar parse snapshots so a debugserver
// can answer "what did the last parse of this grammar look like" across
// restarts, the same role server/dao plays for TunaQuest's game state.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/dekarrin/grouper/output"
)

// ErrNotFound is returned by Store.Last when no snapshot has ever been
// recorded for the requested grammar name.
var ErrNotFound = errors.New("no history recorded for that grammar")

// Store holds recorded parse snapshots, one "most recent" per grammar
// name. Implementations must be safe for concurrent use, matching
// dao.Store's contract.
type Store interface {
	// Record saves snap as the most recent snapshot for grammarName,
	// replacing whatever was previously recorded.
	Record(ctx context.Context, grammarName string, snap *output.Snapshot) error

	// Last retrieves the most recently recorded snapshot for
	// grammarName and the time it was recorded. If nothing has been
	// recorded for that name, it returns ErrNotFound.
	Last(ctx context.Context, grammarName string) (*output.Snapshot, time.Time, error)

	// Close releases any resources held by the Store.
	Close() error
}
