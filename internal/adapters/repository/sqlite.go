package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/okian/woodshed/internal/domain/model"
	"github.com/okian/woodshed/pkg/metrics"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Default store configuration constants.
const (
	defaultBusyTimeout = 5 * time.Second
)

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db          *sql.DB
	path        string
	busyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) the database at path and applies
// pragmas plus the embedded schema. SQLite allows one writer at a time, so
// the pool is pinned to a single connection; the telemetry listener and the
// request handlers share it safely through database/sql.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		path:        path,
		busyTimeout: defaultBusyTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrPersistence, s.path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %w", ErrPersistence, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrPersistence, pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: apply schema: %w", ErrPersistence, err)
	}

	s.db = db
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateRegiment inserts the regiment row and one piece row per name inside
// a single transaction. On any failure the transaction rolls back and no
// partial state is visible.
func (s *SQLiteStore) CreateRegiment(ctx context.Context, practicedAt time.Time, pieceNames []string) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		metrics.RecordRepositoryError()
		return 0, fmt.Errorf("%w: begin: %w", ErrPersistence, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO regiments (practiced_at) VALUES (?)`,
		practicedAt.UnixMilli(),
	)
	if err != nil {
		metrics.RecordRepositoryError()
		return 0, fmt.Errorf("%w: insert regiment: %w", ErrPersistence, err)
	}
	regimentID, err := res.LastInsertId()
	if err != nil {
		metrics.RecordRepositoryError()
		return 0, fmt.Errorf("%w: regiment id: %w", ErrPersistence, err)
	}

	for _, name := range pieceNames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pieces (regiment_id, name) VALUES (?, ?)`,
			regimentID, name,
		); err != nil {
			metrics.RecordRepositoryError()
			return 0, fmt.Errorf("%w: insert piece %q: %w", ErrPersistence, name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		metrics.RecordRepositoryError()
		return 0, fmt.Errorf("%w: commit: %w", ErrPersistence, err)
	}
	return regimentID, nil
}

// LatestLogEntry returns the most recent entry for the piece, or nil when
// none exists.
func (s *SQLiteStore) LatestLogEntry(ctx context.Context, pieceID int64) (*model.Sample, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	row := s.db.QueryRowContext(ctx, `
		SELECT bpm, logged_at
		FROM log_entries
		WHERE piece_id = ?
		ORDER BY logged_at DESC, id DESC
		LIMIT 1
	`, pieceID)

	var bpm int
	var loggedAt int64
	if err := row.Scan(&bpm, &loggedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		metrics.RecordRepositoryError()
		return nil, fmt.Errorf("%w: latest entry for piece %d: %w", ErrPersistence, pieceID, err)
	}
	return &model.Sample{BPM: bpm, At: time.UnixMilli(loggedAt)}, nil
}

// AppendLogEntry inserts one log entry. The foreign key rejects pieces that
// do not exist.
func (s *SQLiteStore) AppendLogEntry(ctx context.Context, pieceID int64, bpm int, loggedAt time.Time) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO log_entries (piece_id, bpm, logged_at) VALUES (?, ?, ?)`,
		pieceID, bpm, loggedAt.UnixMilli(),
	)
	if err != nil {
		metrics.RecordRepositoryError()
		return 0, fmt.Errorf("%w: insert log entry for piece %d: %w", ErrPersistence, pieceID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		metrics.RecordRepositoryError()
		return 0, fmt.Errorf("%w: log entry id: %w", ErrPersistence, err)
	}
	return id, nil
}

// FetchAllHierarchy returns the flat outer-joined hierarchy rows. Regiments
// come back newest first; pieces and entries group stably in insertion
// order within their parent.
func (s *SQLiteStore) FetchAllHierarchy(ctx context.Context) ([]model.Row, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.practiced_at, p.id, p.name, l.id, l.bpm, l.logged_at
		FROM regiments r
		LEFT JOIN pieces p ON p.regiment_id = r.id
		LEFT JOIN log_entries l ON l.piece_id = p.id
		ORDER BY r.practiced_at DESC, r.id DESC, p.id ASC, l.id ASC
	`)
	if err != nil {
		metrics.RecordRepositoryError()
		return nil, fmt.Errorf("%w: query hierarchy: %w", ErrPersistence, err)
	}
	defer rows.Close()

	var out []model.Row
	for rows.Next() {
		var (
			regimentID  int64
			practicedAt int64
			pieceID     sql.NullInt64
			pieceName   sql.NullString
			logID       sql.NullInt64
			logBPM      sql.NullInt64
			loggedAt    sql.NullInt64
		)
		if err := rows.Scan(&regimentID, &practicedAt, &pieceID, &pieceName, &logID, &logBPM, &loggedAt); err != nil {
			metrics.RecordRepositoryError()
			return nil, fmt.Errorf("%w: scan hierarchy row: %w", ErrPersistence, err)
		}

		r := model.Row{
			RegimentID:  regimentID,
			PracticedAt: time.UnixMilli(practicedAt),
		}
		if pieceID.Valid {
			id := pieceID.Int64
			name := pieceName.String
			r.PieceID = &id
			r.PieceName = &name
		}
		if logID.Valid {
			id := logID.Int64
			bpm := int(logBPM.Int64)
			at := time.UnixMilli(loggedAt.Int64)
			r.LogID = &id
			r.BPM = &bpm
			r.LoggedAt = &at
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordRepositoryError()
		return nil, fmt.Errorf("%w: iterate hierarchy rows: %w", ErrPersistence, err)
	}
	return out, nil
}

// Counts reports stored row totals.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM regiments),
			(SELECT COUNT(*) FROM pieces),
			(SELECT COUNT(*) FROM log_entries)
	`)
	if err := row.Scan(&c.Regiments, &c.Pieces, &c.LogEntries); err != nil {
		metrics.RecordRepositoryError()
		return Counts{}, fmt.Errorf("%w: count rows: %w", ErrPersistence, err)
	}
	return c, nil
}
