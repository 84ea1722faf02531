package postgres_test

import (
	"context"
	"os"
	"testing"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/eventstore/postgres"
	"github.com/terraskye/eventsourcing-pm/eventstore/storetest"
)

// Set SHIPMENT_TEST_POSTGRES_DSN to run against a disposable database.
func TestEventStore(t *testing.T) {
	dsn := os.Getenv("SHIPMENT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SHIPMENT_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) es.EventStore {
		ctx := context.Background()
		store, err := postgres.Connect(ctx, dsn, storetest.Registry())
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("migrate: %v", err)
		}
		if err := store.Truncate(ctx); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}
