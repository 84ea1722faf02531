package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	kurrent "github.com/kurrent-io/KurrentDB-Client-Go/kurrentdb"
	"github.com/sirupsen/logrus"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/config"
	"github.com/terraskye/eventsourcing-pm/eventstore/kurrentdb"
	"github.com/terraskye/eventsourcing-pm/eventstore/memory"
	"github.com/terraskye/eventsourcing-pm/eventstore/postgres"
	"github.com/terraskye/eventsourcing-pm/eventstore/sqlite"
)

// openStore connects the configured backend. Network backends are retried
// until ConnectTimeout passes, so the service can start before its database.
func openStore(ctx context.Context, cfg config.Store, registry *es.EventRegistry, log logrus.FieldLogger) (es.EventStore, error) {
	switch cfg.Driver {
	case "memory":
		return memory.NewMemoryStore(), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN, registry)
	case "postgres":
		return connect(ctx, cfg.ConnectTimeout, log, func(ctx context.Context) (es.EventStore, error) {
			store, err := postgres.Connect(ctx, cfg.DSN, registry)
			if err != nil {
				return nil, err
			}
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close()
				return nil, err
			}
			return store, nil
		})
	case "kurrentdb":
		settings, err := kurrent.ParseConnectionString(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse kurrentdb connection string: %w", err)
		}
		return connect(ctx, cfg.ConnectTimeout, log, func(ctx context.Context) (es.EventStore, error) {
			client, err := kurrent.NewClient(settings)
			if err != nil {
				return nil, err
			}
			return kurrentdb.NewEventStore(client, registry), nil
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func connect(ctx context.Context, timeout time.Duration, log logrus.FieldLogger, open func(context.Context) (es.EventStore, error)) (es.EventStore, error) {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = timeout

	return backoff.RetryNotifyWithData(func() (es.EventStore, error) {
		return open(ctx)
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		log.WithError(err).Warnf("Event store not ready, retrying in %s", wait)
	})
}
