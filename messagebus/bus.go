// Package messagebus carries commands and events between the aggregates on a
// Watermill router. Every message type is its own topic, and each subscribed
// dispatcher gets its own handler per type it routes.
package messagebus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	es "github.com/terraskye/eventsourcing-pm"
)

// Dispatcher runs the handler of a message type for a raw payload.
type Dispatcher interface {
	Types() []string
	Dispatch(ctx context.Context, msgType string, payload []byte) error
}

type Config struct {
	// PoisonTopic receives messages that failed permanently or ran out of
	// retries.
	PoisonTopic      string
	BufferSize       int64
	HandlerTimeout   time.Duration
	MaxRetries       int
	RetryInterval    time.Duration
	MaxRetryInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		PoisonTopic:      "shipment.poison",
		BufferSize:       256,
		HandlerTimeout:   30 * time.Second,
		MaxRetries:       5,
		RetryInterval:    50 * time.Millisecond,
		MaxRetryInterval: 2 * time.Second,
	}
}

// Bus implements es.Publisher, es.EventPublisher and es.DelayedCommandSender.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	log    logrus.FieldLogger

	wg        sync.WaitGroup
	closing   chan struct{}
	closeOnce sync.Once
}

// New builds the bus and its router. Handlers are added with Subscribe
// before Run.
func New(cfg Config, log logrus.FieldLogger) (*Bus, error) {
	wmLogger := NewLogger(log)

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.BufferSize}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	exhausted, err := middleware.PoisonQueue(pubsub, cfg.PoisonTopic)
	if err != nil {
		return nil, fmt.Errorf("poison queue: %w", err)
	}
	permanent, err := middleware.PoisonQueueWithFilter(pubsub, cfg.PoisonTopic, es.IsPermanent)
	if err != nil {
		return nil, fmt.Errorf("poison queue: %w", err)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInterval,
		MaxInterval:     cfg.MaxRetryInterval,
		Multiplier:      2,
		Logger:          wmLogger,
	}

	// Permanent failures skip the retries; everything else is retried and
	// poisoned once the retries run out.
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
		exhausted,
		retry.Middleware,
		permanent,
		middleware.Timeout(cfg.HandlerTimeout),
	)

	b := &Bus{
		pubsub:  pubsub,
		router:  router,
		log:     log,
		closing: make(chan struct{}),
	}
	router.AddNoPublisherHandler("poison", cfg.PoisonTopic, pubsub, b.poisoned)

	return b, nil
}

type subscribeOptions struct {
	breaker *gobreaker.Settings
}

type SubscribeOption func(*subscribeOptions)

// WithCircuitBreaker guards the handlers of a subscription with a breaker.
// Optimistic concurrency conflicts and permanent failures do not count
// against it.
func WithCircuitBreaker(settings gobreaker.Settings) SubscribeOption {
	return func(o *subscribeOptions) {
		if settings.IsSuccessful == nil {
			settings.IsSuccessful = func(err error) bool {
				return err == nil || es.IsPermanent(err) || errors.Is(err, es.ErrConcurrency)
			}
		}
		o.breaker = &settings
	}
}

// Subscribe adds one handler per type d routes. Handlers are named
// name/type, so name must be unique on the bus.
func (b *Bus) Subscribe(name string, d Dispatcher, opts ...SubscribeOption) {
	var o subscribeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var breaker *middleware.CircuitBreaker
	if o.breaker != nil {
		cb := middleware.NewCircuitBreaker(*o.breaker)
		breaker = &cb
	}

	for _, msgType := range d.Types() {
		h := b.router.AddNoPublisherHandler(name+"/"+msgType, msgType, b.pubsub, func(msg *message.Message) error {
			return d.Dispatch(consumerContext(msg), msg.Metadata.Get(TypeKey), msg.Payload)
		})
		if breaker != nil {
			h.AddMiddleware(breaker.Middleware)
		}
	}
}

// Run runs the router until ctx is done or the bus is closed.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once every handler is subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

// Publish implements es.Publisher.
func (b *Bus) Publish(ctx context.Context, events []es.Envelope) error {
	for _, env := range events {
		msg, err := envelopeMessage(env)
		if err != nil {
			return err
		}
		if err := b.publish(ctx, env.Metadata.EventType, msg); err != nil {
			return err
		}
	}
	return nil
}

// PublishEvents implements es.EventPublisher for events that belong to no
// stream, such as carrier replies.
func (b *Bus) PublishEvents(ctx context.Context, events ...es.Event) error {
	for _, ev := range events {
		msg, err := newMessage(ctx, ev.EventType(), ev.AggregateID(), ev)
		if err != nil {
			return err
		}
		if err := b.publish(ctx, ev.EventType(), msg); err != nil {
			return err
		}
	}
	return nil
}

// Send implements es.CommandSender.
func (b *Bus) Send(ctx context.Context, cmds ...es.Command) error {
	for _, cmd := range cmds {
		msg, err := newMessage(ctx, cmd.CommandType(), cmd.AggregateID(), cmd)
		if err != nil {
			return err
		}
		if err := b.publish(ctx, cmd.CommandType(), msg); err != nil {
			return err
		}
	}
	return nil
}

// SendAfter sends cmd once delay has passed. The send outlives ctx but not
// the bus: commands still pending on Close are dropped.
func (b *Bus) SendAfter(ctx context.Context, delay time.Duration, cmd es.Command) {
	ctx = context.WithoutCancel(ctx)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		t := time.NewTimer(delay)
		defer t.Stop()

		select {
		case <-b.closing:
			b.log.WithField("command", cmd.CommandType()).Warn("Bus closed, dropping delayed command")
			return
		case <-t.C:
		}

		if err := b.Send(ctx, cmd); err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{
				"command":      cmd.CommandType(),
				"aggregate_id": cmd.AggregateID(),
			}).Error("Delayed send failed")
		}
	}()
}

func (b *Bus) publish(ctx context.Context, topic string, msg *message.Message) error {
	msg.SetContext(ctx)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (b *Bus) poisoned(msg *message.Message) error {
	b.log.WithFields(logrus.Fields{
		"message_uuid": msg.UUID,
		"type":         msg.Metadata.Get(TypeKey),
		"handler":      msg.Metadata.Get(middleware.PoisonedHandlerKey),
		"reason":       msg.Metadata.Get(middleware.ReasonForPoisonedKey),
	}).Error("Message poisoned")
	return nil
}

// Close stops the delayed sends, the router and the pub/sub, collecting
// every error.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() { close(b.closing) })
	b.wg.Wait()

	var errs *multierror.Error
	if err := b.router.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("close router: %w", err))
	}
	if err := b.pubsub.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("close pubsub: %w", err))
	}
	return errs.ErrorOrNil()
}
