package debugserver

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dekarrin/grouper/debugserver/history"
)

// DBType is the type of persistence backing a debugserver's history.
type DBType string

func (t DBType) String() string {
	return string(t)
}

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

// ParseDBType parses a string into a DBType.
func ParseDBType(s string) (DBType, error) {
	switch strings.ToLower(s) {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

const (
	MinSecretSize = 32
	MaxSecretSize = 64
)

// Database holds the configuration needed to connect to history storage.
type Database struct {
	// Type selects which kind of Store Connect returns.
	Type DBType

	// DataDir is where sqlite stores its file. Only used when Type is
	// DatabaseSQLite.
	DataDir string
}

// Connect opens (and, for sqlite, creates if necessary) the configured
// history.Store.
func (db Database) Connect() (history.Store, error) {
	switch db.Type {
	case DatabaseInMemory:
		return history.NewInMemory(), nil
	case DatabaseSQLite:
		if err := os.MkdirAll(db.DataDir, 0770); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		store, err := history.NewSQLite(db.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite: %w", err)
		}
		return store, nil
	case DatabaseNone:
		return nil, fmt.Errorf("cannot connect to 'none' DB")
	default:
		return nil, fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Validate returns an error if db is not usable as given.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.DataDir == "" {
			return fmt.Errorf("DataDir not set to path")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// Config configures a Server: how to bind, how to sign and check
// tokens, and where (if anywhere) to persist parse history.
type Config struct {
	// BindAddress is the host:port the Server listens on.
	BindAddress string

	// TokenSecret is the secret used for signing issued bearer tokens.
	TokenSecret []byte

	// AdminSecret is the plaintext credential an operator must present
	// to POST /token and receive a bearer token. It is hashed via
	// bcrypt as soon as the Config is loaded; the plaintext is not
	// retained by the Server, only by this Config value.
	AdminSecret string

	// DB configures where parse history is persisted.
	DB Database

	// UnauthDelayMillis is how long, in milliseconds, to pause before
	// responding to an unauthorized or unauthenticated request. Set to
	// a negative number to disable the delay.
	UnauthDelayMillis int
}

// UnauthDelay returns UnauthDelayMillis as a time.Duration, or zero if
// the delay has been disabled.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		return 0
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// FillDefaults returns a copy of cfg with unset fields given their
// default values.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.TokenSecret == nil {
		newCFG.TokenSecret = []byte("DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!")
	}
	if newCFG.AdminSecret == "" {
		newCFG.AdminSecret = "DEFAULT_ADMIN_SECRET-DO_NOT_USE_IN_PROD!"
	}
	if newCFG.DB.Type == DatabaseNone {
		newCFG.DB = Database{Type: DatabaseInMemory}
	}
	if newCFG.UnauthDelayMillis == 0 {
		newCFG.UnauthDelayMillis = 1000
	}
	if newCFG.BindAddress == "" {
		newCFG.BindAddress = "localhost:8573"
	}

	return newCFG
}

// Validate returns an error if cfg has invalid or missing field values.
// Call it on the result of FillDefaults if defaults are intended to
// fill in unset fields.
func (cfg Config) Validate() error {
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	if cfg.AdminSecret == "" {
		return fmt.Errorf("admin secret: must not be empty")
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if cfg.BindAddress == "" {
		return fmt.Errorf("bind address: must not be empty")
	}
	return nil
}

// HashedAdminSecret bcrypt-hashes cfg.AdminSecret for storage in a
// Server, so the plaintext need not be kept in memory for the lifetime
// of the process.
func (cfg Config) HashedAdminSecret() ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin secret: %w", err)
	}
	return hash, nil
}
