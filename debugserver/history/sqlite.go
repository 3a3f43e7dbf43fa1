package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dekarrin/grouper/output"
	"modernc.org/sqlite"
)

// sqliteStore is a Store backed by a single sqlite file, one row per
// grammar name holding its most recently REZI-encoded snapshot.
type sqliteStore struct {
	filename string
	db       *sql.DB
}

// NewSQLite opens (creating if necessary) a "history.db" sqlite file in
// dataDir and returns a Store backed by it, mirroring
// server/dao/sqlite.NewDatastore's "open file, run CREATE TABLE IF NOT
// EXISTS, hand back a ready store" shape.
func NewSQLite(dataDir string) (Store, error) {
	st := &sqliteStore{filename: "history.db"}

	fileName := filepath.Join(dataDir, st.filename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	_, err = st.db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		grammar_name TEXT NOT NULL PRIMARY KEY,
		recorded_at INTEGER NOT NULL,
		data BLOB NOT NULL
	);`)
	if err != nil {
		return nil, wrapDBError(err)
	}

	return st, nil
}

func (s *sqliteStore) Record(ctx context.Context, grammarName string, snap *output.Snapshot) error {
	data := output.EncodeBinary(snap)

	stmt, err := s.db.Prepare(`INSERT INTO snapshots (grammar_name, recorded_at, data) VALUES (?, ?, ?)
		ON CONFLICT(grammar_name) DO UPDATE SET recorded_at = excluded.recorded_at, data = excluded.data;`)
	if err != nil {
		return wrapDBError(err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, grammarName, time.Now().Unix(), data)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (s *sqliteStore) Last(ctx context.Context, grammarName string) (*output.Snapshot, time.Time, error) {
	row := s.db.QueryRowContext(ctx, `SELECT recorded_at, data FROM snapshots WHERE grammar_name = ?;`, grammarName)

	var recordedAt int64
	var data []byte
	if err := row.Scan(&recordedAt, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrNotFound
		}
		return nil, time.Time{}, wrapDBError(err)
	}

	snap, err := output.DecodeBinary(data)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("decode stored snapshot for %q: %w", grammarName, err)
	}

	return snap, time.Unix(recordedAt, 0), nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	}
	return err
}
