// Package archive stores saved scan results in PostgreSQL so they can be
// searched and reopened later in a tab.
package archive

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/metrics"
)

const (
	defaultPostgresPort    = 5432
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 2
	defaultConnMaxLifetime = 5 * time.Minute
	defaultSearchLimit     = 50
)

// Config holds archive database settings.
type Config struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Host            string        `yaml:"host" json:"host" validate:"required_if=Enabled true"`
	Port            int           `yaml:"port" json:"port" validate:"omitempty,min=1,max=65535"`
	Database        string        `yaml:"database" json:"database" validate:"required_if=Enabled true"`
	Username        string        `yaml:"username" json:"username" validate:"required_if=Enabled true"`
	Password        string        `yaml:"password" json:"password"`
	SSLMode         string        `yaml:"ssl_mode" json:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// DefaultConfig returns a disabled archive pointing at a local server.
func DefaultConfig() Config {
	return Config{
		Enabled:         false,
		Host:            "localhost",
		Port:            defaultPostgresPort,
		Database:        "scandeck",
		SSLMode:         "disable",
		MaxOpenConns:    defaultMaxOpenConns,
		MaxIdleConns:    defaultMaxIdleConns,
		ConnMaxLifetime: defaultConnMaxLifetime,
	}
}

// DSN builds the lib/pq key=value connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.Username, c.Password, c.SSLMode,
	)
}

// DB wraps sqlx.DB.
type DB struct {
	*sqlx.DB
}

// Connect opens and pings the archive database. The returned error never
// contains the DSN.
func Connect(ctx context.Context, cfg *Config) (*DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, errors.WrapDatabaseError(errors.CodeDatabaseConnection,
			"failed to connect to archive database", err).WithOperation("connect")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logging.InfoDatabase("connected to archive", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)
	return &DB{DB: db}, nil
}

// Comments maps host keys to their comment text. Stored as JSONB.
type Comments map[string]string

// Value implements driver.Valuer.
func (c Comments) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(c))
}

// Scan implements sql.Scanner.
func (c *Comments) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*c = Comments{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Comments", src)
	}
	m := make(map[string]string)
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = m
	return nil
}

// Profile is the scan profile an entry was made with. Stored as JSONB; the
// zero value means no profile was recorded.
type Profile struct {
	Name        string            `json:"name"`
	Command     string            `json:"command"`
	Hint        string            `json:"hint,omitempty"`
	Description string            `json:"description,omitempty"`
	Annotation  string            `json:"annotation,omitempty"`
	Options     map[string]string `json:"options,omitempty"`
}

// Value implements driver.Valuer.
func (p Profile) Value() (driver.Value, error) {
	if p.Name == "" {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner.
func (p *Profile) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = Profile{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Profile", src)
	}
	var out Profile
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*p = out
	return nil
}

// Entry is one archived scan.
type Entry struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Target      string         `db:"target" json:"target"`
	ProfileName string         `db:"profile_name" json:"profile_name"`
	Command     string         `db:"command" json:"command"`
	Hostnames   pq.StringArray `db:"hostnames" json:"hostnames"`
	HostsUp     int            `db:"hosts_up" json:"hosts_up"`
	HostsDown   int            `db:"hosts_down" json:"hosts_down"`
	ScanXML     []byte         `db:"scan_xml" json:"-"`
	RawOutput   string         `db:"raw_output" json:"-"`
	Comments    Comments       `db:"comments" json:"comments"`
	Profile     Profile        `db:"profile" json:"profile"`
	StartedAt   time.Time      `db:"started_at" json:"started_at"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS scan_archive (
	id           UUID PRIMARY KEY,
	title        TEXT NOT NULL,
	target       TEXT NOT NULL DEFAULT '',
	profile_name TEXT NOT NULL DEFAULT '',
	command      TEXT NOT NULL DEFAULT '',
	hostnames    TEXT[] NOT NULL DEFAULT '{}',
	hosts_up     INTEGER NOT NULL DEFAULT 0,
	hosts_down   INTEGER NOT NULL DEFAULT 0,
	scan_xml     BYTEA NOT NULL,
	raw_output   TEXT NOT NULL DEFAULT '',
	comments     JSONB NOT NULL DEFAULT '{}',
	profile      JSONB NOT NULL DEFAULT '{}',
	started_at   TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
ALTER TABLE scan_archive ADD COLUMN IF NOT EXISTS profile JSONB NOT NULL DEFAULT '{}';
CREATE INDEX IF NOT EXISTS idx_scan_archive_created_at ON scan_archive (created_at DESC);`

const entryColumns = `id, title, target, profile_name, command, hostnames, hosts_up, hosts_down,
	scan_xml, raw_output, comments, profile, started_at, created_at`

// Repository provides archive operations.
type Repository struct {
	db      *DB
	metrics metrics.Recorder
}

// NewRepository creates a new repository instance.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db, metrics: metrics.Nop{}}
}

// WithRecorder makes the repository report query timings to rec.
func (r *Repository) WithRecorder(rec metrics.Recorder) *Repository {
	if rec != nil {
		r.metrics = rec
	}
	return r
}

func (r *Repository) observe(operation string, start time.Time, err error) {
	r.metrics.ArchiveQuery(operation, time.Since(start), err == nil)
}

// EnsureSchema creates the archive table when it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return sanitizeDBError("ensure schema", err)
	}
	return nil
}

// Save stores entry, assigning an ID when it has none. An entry whose ID is
// already archived is updated in place and keeps its created_at.
func (r *Repository) Save(ctx context.Context, entry *Entry) (err error) {
	defer func(start time.Time) { r.observe("save", start, err) }(time.Now())

	query := `
		INSERT INTO scan_archive (id, title, target, profile_name, command, hostnames,
			hosts_up, hosts_down, scan_xml, raw_output, comments, profile, started_at)
		VALUES (:id, :title, :target, :profile_name, :command, :hostnames,
			:hosts_up, :hosts_down, :scan_xml, :raw_output, :comments, :profile, :started_at)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			target = EXCLUDED.target,
			profile_name = EXCLUDED.profile_name,
			command = EXCLUDED.command,
			hostnames = EXCLUDED.hostnames,
			hosts_up = EXCLUDED.hosts_up,
			hosts_down = EXCLUDED.hosts_down,
			scan_xml = EXCLUDED.scan_xml,
			raw_output = EXCLUDED.raw_output,
			comments = EXCLUDED.comments,
			profile = EXCLUDED.profile,
			started_at = EXCLUDED.started_at
		RETURNING created_at`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Hostnames == nil {
		entry.Hostnames = pq.StringArray{}
	}

	rows, err := r.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return sanitizeDBError("save scan", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.ErrorDatabase("failed to close rows", err)
		}
	}()

	if rows.Next() {
		if err := rows.Scan(&entry.CreatedAt); err != nil {
			return sanitizeDBError("read saved scan", err)
		}
	}
	return rows.Err()
}

// Get loads one entry including its XML.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (_ *Entry, err error) {
	defer func(start time.Time) { r.observe("get", start, err) }(time.Now())

	var entry Entry
	query := `SELECT ` + entryColumns + ` FROM scan_archive WHERE id = $1`
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, sanitizeDBError("get scan", err)
	}
	return &entry, nil
}

// List returns the most recent entries first.
func (r *Repository) List(ctx context.Context, limit int) (_ []*Entry, err error) {
	defer func(start time.Time) { r.observe("list", start, err) }(time.Now())

	if limit <= 0 {
		limit = defaultSearchLimit
	}
	var entries []*Entry
	query := `SELECT ` + entryColumns + ` FROM scan_archive ORDER BY created_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, sanitizeDBError("list scans", err)
	}
	return entries, nil
}

// Search matches term case-insensitively against title, target, command and
// the hostnames recorded for each scan.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]*Entry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return r.List(ctx, limit)
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	start := time.Now()
	pattern := "%" + escapeLike(term) + "%"
	query := `SELECT ` + entryColumns + ` FROM scan_archive
		WHERE title ILIKE $1 OR target ILIKE $1 OR command ILIKE $1
			OR array_to_string(hostnames, ' ') ILIKE $1
		ORDER BY created_at DESC LIMIT $2`

	var entries []*Entry
	err := r.db.SelectContext(ctx, &entries, query, pattern, limit)
	r.observe("search", start, err)
	if err != nil {
		return nil, sanitizeDBError("search scans", err)
	}
	return entries, nil
}

// Delete removes an entry.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) { r.observe("delete", start, err) }(time.Now())

	result, err := r.db.ExecContext(ctx, `DELETE FROM scan_archive WHERE id = $1`, id)
	if err != nil {
		return sanitizeDBError("delete scan", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("delete scan", err)
	}
	if n == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "scan not found").WithOperation("delete scan")
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// sanitizeDBError converts driver errors into DatabaseErrors whose message
// is safe to show API clients. The raw error stays in Cause.
func sanitizeDBError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewDatabaseError(errors.CodeNotFound, "scan not found").WithOperation(operation)
	}

	var dbErr *errors.DatabaseError
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			dbErr = errors.NewDatabaseError(errors.CodeConflict, "scan already archived")
		case "23502", "23514": // not_null_violation, check_violation
			dbErr = errors.NewDatabaseError(errors.CodeValidation, "archive entry failed validation")
		case "57014": // query_canceled
			dbErr = errors.NewDatabaseError(errors.CodeCanceled, "archive operation was canceled")
		case "08000", "08003", "08006", "57P01":
			dbErr = errors.NewDatabaseError(errors.CodeDatabaseConnection, "archive connection lost")
		}
	}
	if dbErr == nil {
		dbErr = errors.NewDatabaseError(errors.CodeDatabaseQuery, "archive operation failed: "+operation)
	}
	dbErr.Operation = operation
	dbErr.Cause = err
	return dbErr
}
