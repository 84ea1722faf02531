package kurrentdb_test

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/kurrent-io/KurrentDB-Client-Go/kurrentdb"
	es "github.com/terraskye/eventsourcing-pm"
	kdb "github.com/terraskye/eventsourcing-pm/eventstore/kurrentdb"
	"github.com/terraskye/eventsourcing-pm/eventstore/storetest"
)

// Set SHIPMENT_TEST_KURRENTDB_URL, e.g. kurrentdb://localhost:2113?tls=false,
// to run against a live node.
func TestEventStore(t *testing.T) {
	url := os.Getenv("SHIPMENT_TEST_KURRENTDB_URL")
	if url == "" {
		t.Skip("SHIPMENT_TEST_KURRENTDB_URL not set")
	}

	storetest.Run(t, func(t *testing.T) es.EventStore {
		cfg, err := kurrentdb.ParseConnectionString(url)
		if err != nil {
			t.Fatalf("parse connection string: %v", err)
		}
		client, err := kurrentdb.NewClient(cfg)
		if err != nil {
			t.Fatalf("new client: %v", err)
		}
		store := kdb.NewEventStore(client, storetest.Registry(), kdb.WithStreamPrefix(uuid.NewString()+"-"))
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}
