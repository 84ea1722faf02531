// Package sqlite provides a SQLite-backed event store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/eventstore/codec"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	stream_id   TEXT    NOT NULL,
	version     INTEGER NOT NULL,
	event_id    TEXT    NOT NULL UNIQUE,
	type        TEXT    NOT NULL,
	data        BLOB    NOT NULL,
	metadata    BLOB    NOT NULL,
	recorded_on TEXT    NOT NULL,
	PRIMARY KEY (stream_id, version)
);`

var _ es.EventStore = (*EventStore)(nil)

// EventStore persists streams in a single SQLite table.
type EventStore struct {
	db    *sql.DB
	codec *codec.Codec
}

// Open opens the database at path and creates the events table if needed.
// Use ":memory:" for a throwaway store.
func Open(path string, registry *es.EventRegistry) (*EventStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single connection serialises writers and keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &EventStore{db: db, codec: codec.New(registry)}, nil
}

func (s *EventStore) Save(ctx context.Context, events []es.Envelope, revision es.StreamState) (es.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return es.AppendResult{}, err
	}
	streamID, err := es.BatchStreamID(events)
	if err != nil {
		return es.AppendResult{}, err
	}
	if len(events) == 0 {
		return es.AppendResult{Successful: true}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return es.AppendResult{}, es.WrapEventStoreError(fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	current, err := streamVersion(ctx, tx, streamID)
	if err != nil {
		return es.AppendResult{}, es.WrapEventStoreError(err)
	}
	if err := es.CheckStreamState(streamID, revision, current); err != nil {
		return es.AppendResult{StreamID: streamID}, err
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO events (stream_id, version, event_id, type, data, metadata, recorded_on) VALUES (?, ?, ?, ?, ?, ?, ?);")
	if err != nil {
		return es.AppendResult{}, es.WrapEventStoreError(fmt.Errorf("prepare insert events: %w", err))
	}
	defer stmt.Close()

	recordedOn := time.Now().UTC().Format(time.RFC3339Nano)
	for _, env := range events {
		current++
		env.Version = current
		rec, err := s.codec.Encode(env)
		if err != nil {
			return es.AppendResult{}, err
		}
		_, err = stmt.ExecContext(ctx, rec.StreamID, rec.Version, rec.EventID.String(), rec.Type, rec.Data, rec.Metadata, recordedOn)
		if isConstraintViolation(err) {
			return es.AppendResult{StreamID: streamID}, &es.ConcurrencyError{Stream: streamID, Reason: "version already taken", Err: err}
		}
		if err != nil {
			return es.AppendResult{}, es.WrapEventStoreError(fmt.Errorf("insert event %s: %w", rec.Type, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return es.AppendResult{}, es.WrapEventStoreError(fmt.Errorf("commit: %w", err))
	}
	return es.AppendResult{
		Successful:          true,
		StreamID:            streamID,
		NextExpectedVersion: current,
	}, nil
}

// LoadStream reads the whole stream before returning so no connection is
// held while the caller folds it.
func (s *EventStore) LoadStream(ctx context.Context, id string) (*es.Iterator[es.Envelope], error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT version, event_id, type, data, metadata FROM events WHERE stream_id = ? ORDER BY version;", id)
	if err != nil {
		return nil, es.WrapEventStoreError(fmt.Errorf("query stream %q: %w", id, err))
	}
	defer rows.Close()

	var events []es.Envelope
	for rows.Next() {
		rec := codec.Record{StreamID: id}
		var eventID string
		if err := rows.Scan(&rec.Version, &eventID, &rec.Type, &rec.Data, &rec.Metadata); err != nil {
			return nil, es.WrapEventStoreError(fmt.Errorf("scan stream %q: %w", id, err))
		}
		if rec.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, es.WrapEventStoreError(fmt.Errorf("stream %q: event id %q: %w", id, eventID, err))
		}
		env, err := s.codec.Decode(rec)
		if err != nil {
			return nil, err
		}
		events = append(events, env)
	}
	if err := rows.Err(); err != nil {
		return nil, es.WrapEventStoreError(fmt.Errorf("read stream %q: %w", id, err))
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("load stream %q: %w", id, es.ErrStreamNotFound)
	}
	return es.NewSliceIterator(events), nil
}

func (s *EventStore) StreamVersion(ctx context.Context, id string) (uint64, error) {
	version, err := streamVersion(ctx, s.db, id)
	if err != nil {
		return 0, es.WrapEventStoreError(err)
	}
	if version == 0 {
		return 0, fmt.Errorf("stream version %q: %w", id, es.ErrStreamNotFound)
	}
	return version, nil
}

func (s *EventStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func streamVersion(ctx context.Context, q querier, id string) (uint64, error) {
	var version uint64
	err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = ?;", id).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read version of stream %q: %w", id, err)
	}
	return version, nil
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
