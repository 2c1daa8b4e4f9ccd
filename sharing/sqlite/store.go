// Package sqlite is the SQLite sharing backend. The principal directory lives
// in the same database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/samber/mo"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

// DefaultBusyTimeout is how long a connection waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

type options struct {
	logger          *slog.Logger
	calendarRoot    string
	principalPrefix string
	busyTimeout     time.Duration
	now             func() time.Time
}

// Option represents a configuration option for the Backend
type Option func(*options)

// WithLogger sets the logger for the backend
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCalendarRoot sets the collection prefix used for host and shared URLs.
func WithCalendarRoot(root string) Option {
	return func(o *options) {
		o.calendarRoot = root
	}
}

// WithPrincipalPrefix sets the namespace invite addresses are resolved in.
func WithPrincipalPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.principalPrefix = prefix
		}
	}
}

// WithBusyTimeout sets the sqlite busy timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithClock replaces time.Now for notification stamps and publications.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Backend implements sharing.Backend on a SQLite database
type Backend struct {
	db   *sql.DB
	dir  *Directory
	opts options
}

var _ sharing.Backend = (*Backend)(nil)

// Open opens (creating if needed) the database at path and migrates its
// schema to the current version.
func Open(ctx context.Context, path string, opts ...Option) (*Backend, error) {
	o := options{
		logger:          logging.Discard(),
		calendarRoot:    sharing.DefaultCalendarRoot,
		principalPrefix: sharing.DefaultPrincipalPrefix,
		busyTimeout:     DefaultBusyTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	dsn := fmt.Sprintf("%s?_busy_timeout=%d&_foreign_keys=on", path, o.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, sharing.StoreUnavailable("open database", err)
	}
	// one writer at a time; every operation runs in its own transaction
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, sharing.StoreUnavailable("migrate database", err)
	}

	o.logger.Debug("database opened", slog.String("path", path))
	return &Backend{
		db:   db,
		dir:  &Directory{db: db, logger: o.logger},
		opts: o,
	}, nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// Directory returns the principal directory kept in the same database.
func (b *Backend) Directory() *Directory {
	return b.dir
}

// SchemaVersion reports the migration level of the database.
func (b *Backend) SchemaVersion(ctx context.Context) (int, error) {
	v, err := schemaVersion(ctx, b.db)
	if err != nil {
		return 0, sharing.StoreUnavailable("read schema version", err)
	}
	return v, nil
}

// withTx runs fn in a transaction, committing when it returns nil.
func (b *Backend) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr(op, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return storeErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr(op, err)
	}
	return nil
}

// storeErr passes sharing errors through and wraps everything else as
// store_unavailable.
func storeErr(op string, err error) error {
	var se *sharing.Error
	if errors.As(err, &se) {
		return err
	}
	return sharing.StoreUnavailable(op, err)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NULL column helpers

func nullString(v mo.Option[string]) sql.NullString {
	s, ok := v.Get()
	return sql.NullString{String: s, Valid: ok}
}

func optString(v sql.NullString) mo.Option[string] {
	if !v.Valid {
		return mo.None[string]()
	}
	return mo.Some(v.String)
}

func nullInt(v mo.Option[int]) sql.NullInt64 {
	i, ok := v.Get()
	return sql.NullInt64{Int64: int64(i), Valid: ok}
}

func optInt(v sql.NullInt64) mo.Option[int] {
	if !v.Valid {
		return mo.None[int]()
	}
	return mo.Some(int(v.Int64))
}

func nullBool(v mo.Option[bool]) sql.NullBool {
	b, ok := v.Get()
	return sql.NullBool{Bool: b, Valid: ok}
}

func optBool(v sql.NullBool) mo.Option[bool] {
	if !v.Valid {
		return mo.None[bool]()
	}
	return mo.Some(v.Bool)
}
