// Command shipmentprocess runs the shipment process service: the three
// aggregates, the stub carrier and the HTTP API on a single message bus.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/api"
	"github.com/terraskye/eventsourcing-pm/carrier"
	"github.com/terraskye/eventsourcing-pm/collection"
	"github.com/terraskye/eventsourcing-pm/config"
	"github.com/terraskye/eventsourcing-pm/logging"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/messagebus"
	esotel "github.com/terraskye/eventsourcing-pm/otel"
	"github.com/terraskye/eventsourcing-pm/process"
	"github.com/terraskye/eventsourcing-pm/routing"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := cfg.Logger()
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Shipment process stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entry := log.WithField("service", cfg.ServiceName)

	shutdownTracing, err := esotel.Setup(ctx, cfg.ServiceName, cfg.OTel.Endpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			entry.WithError(err).Warn("Tracing shutdown failed")
		}
	}()

	registry := es.NewEventRegistry()
	manifestation.RegisterEvents(registry)
	collection.RegisterEvents(registry)
	process.RegisterEvents(registry)

	backend, err := openStore(ctx, cfg.Store, registry, entry)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	store := esotel.WithEventStoreTelemetry(backend)
	defer store.Close()
	entry.WithField("driver", cfg.Store.Driver).Info("Event store ready")

	bus, err := messagebus.New(messagebus.Config{
		PoisonTopic:      cfg.Bus.PoisonTopic,
		BufferSize:       cfg.Bus.BufferSize,
		HandlerTimeout:   cfg.Bus.HandlerTimeout,
		MaxRetries:       cfg.Bus.MaxRetries,
		RetryInterval:    cfg.Bus.RetryInterval,
		MaxRetryInterval: cfg.Bus.MaxRetryInterval,
	}, entry.WithField("component", "bus"))
	if err != nil {
		return fmt.Errorf("create bus: %w", err)
	}

	publisher := logging.WithPublishLogging(entry, esotel.WithPublishTelemetry(bus))
	session := es.WithDeadline(cfg.SessionDeadline)

	manifest := manifestation.NewSubprocess(store, publisher, bus, session)

	booking := collection.NewSubprocess(store, publisher, bus, collection.NewDecider(collection.NewScheduler(cfg.Collection.MaxDaysAhead)), session)
	booking.ScheduleDelay = cfg.Collection.ScheduleDelay
	booking.BookDelay = cfg.Collection.BookDelay

	manager := process.NewManager(store, publisher, bus, process.DefaultRegistry(), process.Classify, session)

	stub := carrier.NewStub(bus, entry.WithField("component", "carrier"))
	stub.ResponseDelay = cfg.Carrier.ResponseDelay
	stub.RetryDelay = cfg.Carrier.RetryDelay
	stub.PublishRetries = cfg.Carrier.PublishRetries

	subscribe := func(name string, routes func(*routing.Router), opts ...messagebus.SubscribeOption) {
		r := routing.New(
			logging.WithTriggerLogging(entry.WithField("component", name)),
			esotel.WithTriggerTelemetry(),
		)
		routes(r)
		bus.Subscribe(name, r, opts...)
	}
	subscribe("manifestation", manifest.Routes)
	subscribe("collection", booking.Routes)
	subscribe("process", manager.Routes)
	subscribe("carrier", stub.Routes, messagebus.WithCircuitBreaker(gobreaker.Settings{
		Name:    "carrier",
		Timeout: cfg.Bus.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Bus.BreakerFailures
		},
	}))

	queries := es.NewQueryBus()
	es.RegisterQueryHandler(queries, logging.WithQueryLogging(entry, esotel.WithQueryTelemetry(process.NewStatusQueryHandler(manager))))
	status := es.NewQueryGateway[process.StatusQuery, process.StatusView](queries)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(api.NewHandler(bus, status, entry.WithField("component", "api")), cfg.ServiceName),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bus.Run(gctx)
	})
	g.Go(func() error {
		select {
		case <-bus.Running():
		case <-gctx.Done():
			return nil
		}
		entry.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		entry.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
		if err := bus.Close(); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
