package manifestation

import (
	"context"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/carrier"
	"github.com/terraskye/eventsourcing-pm/routing"
)

// Subprocess runs manifestation triggers against the shipment stream and
// sends the commands its delegated events require.
type Subprocess struct {
	repo   *es.Repository[State, Event]
	sender es.CommandSender
}

func NewSubprocess(store es.EventStore, publisher es.Publisher, sender es.CommandSender, opts ...es.SessionOption) *Subprocess {
	return &Subprocess{
		repo:   es.NewRepository[State, Event](store, publisher, Projection, opts...),
		sender: sender,
	}
}

// Handle decides on trigger and delegates the outcome.
func (s *Subprocess) Handle(ctx context.Context, trigger Trigger) error {
	events, state, err := s.repo.AddEvents(ctx, StreamID(trigger.AggregateID()), func(state State) ([]Event, error) {
		return Decide(state, trigger)
	})
	if err != nil {
		return err
	}
	return es.SendDelegated(ctx, s.sender, es.DelegatorFunc[State, Event](Delegate), state, events)
}

// State returns the current state of shipmentID.
func (s *Subprocess) State(ctx context.Context, shipmentID string) (State, error) {
	return s.repo.GetState(ctx, StreamID(shipmentID))
}

// Routes registers every manifestation trigger with r.
func (s *Subprocess) Routes(r *routing.Router) {
	routing.On(r, handle[CreateShipment](s))
	routing.On(r, handle[ManifestShipment](s))
	routing.On(r, handle[GenerateCustomsInvoice](s))
	routing.On(r, handle[GenerateShipmentLabels](s))
	routing.On(r, handle[GenerateShipmentReceipt](s))
	routing.On(r, handle[GenerateCombinedDocument](s))
	routing.On(r, handle[ShipmentLegManifested](s))
	routing.On(r, func(ctx context.Context, e carrier.ShipmentManifestedWithCarrier) error {
		return s.Handle(ctx, CarrierManifested{e})
	})
	routing.On(r, func(ctx context.Context, e carrier.ShipmentCarrierManifestationFailed) error {
		return s.Handle(ctx, CarrierManifestationFailed{e})
	})
}

func handle[T Trigger](s *Subprocess) func(context.Context, T) error {
	return func(ctx context.Context, t T) error {
		return s.Handle(ctx, t)
	}
}
