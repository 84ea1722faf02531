// Package postgres provides a PostgreSQL-backed event store built on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/eventstore/codec"
)

// Schema creates the events table. Migrate runs it.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	stream_id   TEXT        NOT NULL,
	version     BIGINT      NOT NULL,
	event_id    UUID        NOT NULL UNIQUE,
	type        TEXT        NOT NULL,
	data        JSONB       NOT NULL,
	metadata    JSONB       NOT NULL,
	recorded_on TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (stream_id, version)
);`

const uniqueViolation = "23505"

var _ es.EventStore = (*EventStore)(nil)

// EventStore appends to a single events table. Writers to the same stream
// are serialised with a transaction-scoped advisory lock.
type EventStore struct {
	pool  *pgxpool.Pool
	codec *codec.Codec
}

// Connect opens a pool for dsn and checks it with a ping.
func Connect(ctx context.Context, dsn string, registry *es.EventRegistry) (*EventStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return New(pool, registry), nil
}

// New wraps an existing pool. The caller keeps ownership of the pool only
// until Close is called.
func New(pool *pgxpool.Pool, registry *es.EventRegistry) *EventStore {
	return &EventStore{pool: pool, codec: codec.New(registry)}
}

// Migrate creates the events table if it does not exist.
func (s *EventStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate events table: %w", err)
	}
	return nil
}

func (s *EventStore) Save(ctx context.Context, events []es.Envelope, revision es.StreamState) (es.AppendResult, error) {
	streamID, err := es.BatchStreamID(events)
	if err != nil {
		return es.AppendResult{}, err
	}
	if len(events) == 0 {
		return es.AppendResult{Successful: true}, nil
	}

	var next uint64
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", streamID); err != nil {
			return es.WrapEventStoreError(fmt.Errorf("lock stream %q: %w", streamID, err))
		}

		current, err := streamVersion(ctx, tx, streamID)
		if err != nil {
			return es.WrapEventStoreError(err)
		}
		if err := es.CheckStreamState(streamID, revision, current); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, env := range events {
			current++
			env.Version = current
			rec, err := s.codec.Encode(env)
			if err != nil {
				return err
			}
			batch.Queue(
				"INSERT INTO events (stream_id, version, event_id, type, data, metadata) VALUES ($1, $2, $3, $4, $5, $6)",
				rec.StreamID, int64(rec.Version), rec.EventID, rec.Type, rec.Data, rec.Metadata,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
		next = current
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return es.AppendResult{StreamID: streamID}, &es.ConcurrencyError{Stream: streamID, Reason: pgErr.ConstraintName, Err: err}
		}
		if errors.Is(err, es.ErrConcurrency) || errors.Is(err, es.ErrStreamExists) ||
			errors.Is(err, es.ErrStreamNotFound) || errors.Is(err, es.ErrInvalidRevision) ||
			errors.Is(err, es.ErrIncompatibleEvent) {
			return es.AppendResult{StreamID: streamID}, err
		}
		return es.AppendResult{}, es.WrapEventStoreError(fmt.Errorf("append to stream %q: %w", streamID, err))
	}

	return es.AppendResult{
		Successful:          true,
		StreamID:            streamID,
		NextExpectedVersion: next,
	}, nil
}

func (s *EventStore) LoadStream(ctx context.Context, id string) (*es.Iterator[es.Envelope], error) {
	rows, err := s.pool.Query(ctx,
		"SELECT version, event_id, type, data, metadata FROM events WHERE stream_id = $1 ORDER BY version", id)
	if err != nil {
		return nil, es.WrapEventStoreError(fmt.Errorf("query stream %q: %w", id, err))
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (codec.Record, error) {
		rec := codec.Record{StreamID: id}
		var version int64
		if err := row.Scan(&version, &rec.EventID, &rec.Type, &rec.Data, &rec.Metadata); err != nil {
			return rec, err
		}
		rec.Version = uint64(version)
		return rec, nil
	})
	if err != nil {
		return nil, es.WrapEventStoreError(fmt.Errorf("read stream %q: %w", id, err))
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("load stream %q: %w", id, es.ErrStreamNotFound)
	}

	events := make([]es.Envelope, 0, len(records))
	for _, rec := range records {
		env, err := s.codec.Decode(rec)
		if err != nil {
			return nil, err
		}
		events = append(events, env)
	}
	return es.NewSliceIterator(events), nil
}

func (s *EventStore) StreamVersion(ctx context.Context, id string) (uint64, error) {
	version, err := streamVersion(ctx, s.pool, id)
	if err != nil {
		return 0, es.WrapEventStoreError(err)
	}
	if version == 0 {
		return 0, fmt.Errorf("stream version %q: %w", id, es.ErrStreamNotFound)
	}
	return version, nil
}

func (s *EventStore) Close() error {
	s.pool.Close()
	return nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func streamVersion(ctx context.Context, q querier, id string) (uint64, error) {
	var version int64
	if err := q.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1", id).Scan(&version); err != nil {
		return 0, fmt.Errorf("read version of stream %q: %w", id, err)
	}
	return uint64(version), nil
}
