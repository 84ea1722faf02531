package carrier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/routing"
)

// Stub answers carrier requests with canned outcomes keyed on the last
// character of the shipment id:
//
//	'1'  manifestation fails
//	'2'  booking fails
//	'3'  booking fails, then succeeds after RetryDelay
//
// Every other shipment succeeds.
type Stub struct {
	publisher es.EventPublisher
	log       logrus.FieldLogger

	// ResponseDelay is waited before every answer.
	ResponseDelay time.Duration
	// RetryDelay separates the failure and the success of a retried booking.
	RetryDelay time.Duration
	// PublishRetries bounds the attempts to publish one answer.
	PublishRetries uint64
}

// NewStub returns a stub publishing its answers through publisher.
func NewStub(publisher es.EventPublisher, log logrus.FieldLogger) *Stub {
	return &Stub{
		publisher:      publisher,
		log:            log,
		ResponseDelay:  500 * time.Millisecond,
		RetryDelay:     2 * time.Second,
		PublishRetries: 3,
	}
}

func (s *Stub) ManifestShipment(ctx context.Context, cmd ManifestShipmentWithCarrier) error {
	s.log.WithField("shipment_id", cmd.ShipmentID).Infof("In %s consumer", cmd.CommandType())

	if err := sleep(ctx, s.ResponseDelay); err != nil {
		return err
	}

	if strings.HasSuffix(cmd.ShipmentID, "1") {
		return s.publish(ctx, ShipmentCarrierManifestationFailed{
			ShipmentID: cmd.ShipmentID,
			CarrierID:  cmd.CarrierID,
			Failure:    reference(),
		})
	}
	return s.publish(ctx, ShipmentManifestedWithCarrier{
		ShipmentID:     cmd.ShipmentID,
		CarrierID:      cmd.CarrierID,
		TrackingNumber: reference(),
	})
}

func (s *Stub) BookCollection(ctx context.Context, cmd BookCollectionWithCarrier) error {
	s.log.WithField("shipment_id", cmd.ShipmentID).Infof("In %s consumer", cmd.CommandType())

	if err := sleep(ctx, s.ResponseDelay); err != nil {
		return err
	}

	failed := CarrierCollectionBookingFailed{
		ShipmentID: cmd.ShipmentID,
		CarrierID:  cmd.CarrierID,
		Failure:    reference(),
	}
	booked := CollectionBookedWithCarrier{
		ShipmentID:       cmd.ShipmentID,
		CarrierID:        cmd.CarrierID,
		BookingReference: reference(),
	}

	switch {
	case strings.HasSuffix(cmd.ShipmentID, "2"):
		return s.publish(ctx, failed)
	case strings.HasSuffix(cmd.ShipmentID, "3"):
		if err := s.publish(ctx, failed); err != nil {
			return err
		}
		if err := sleep(ctx, s.RetryDelay); err != nil {
			return err
		}
		return s.publish(ctx, booked)
	default:
		return s.publish(ctx, booked)
	}
}

func (s *Stub) CancelCollection(ctx context.Context, cmd CancelCollectionWithCarrier) error {
	s.log.WithField("shipment_id", cmd.ShipmentID).Infof("In %s consumer", cmd.CommandType())

	if err := sleep(ctx, s.ResponseDelay); err != nil {
		return err
	}
	return s.publish(ctx, CollectionCancelledWithCarrier{
		ShipmentID:       cmd.ShipmentID,
		CarrierID:        cmd.CarrierID,
		BookingReference: cmd.BookingReference,
	})
}

// Routes registers the carrier commands.
func (s *Stub) Routes(r *routing.Router) {
	routing.On(r, s.ManifestShipment)
	routing.On(r, s.BookCollection)
	routing.On(r, s.CancelCollection)
}

func (s *Stub) publish(ctx context.Context, ev es.Event) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.PublishRetries),
		ctx,
	)
	err := backoff.Retry(func() error {
		return s.publisher.PublishEvents(ctx, ev)
	}, policy)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.EventType(), err)
	}
	return nil
}

func reference() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
