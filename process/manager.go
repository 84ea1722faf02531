package process

import (
	"context"
	"fmt"
	"time"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/collection"
	"github.com/terraskye/eventsourcing-pm/manifestation"
	"github.com/terraskye/eventsourcing-pm/routing"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// ErrCategoryMismatch is returned for a trigger whose category differs from
// the category the process was started with.
var ErrCategoryMismatch = fmt.Errorf("process category mismatch: %w", es.ErrTriggerNotSupported)

// Manager is the process manager. It classifies new shipments, runs every
// trigger through the decision table of the shipment's category and sends
// the commands that start each stage.
type Manager struct {
	repo     *es.Repository[State, Event]
	registry *Registry
	classify Classifier
	sender   es.CommandSender
}

func NewManager(store es.EventStore, publisher es.Publisher, sender es.CommandSender, registry *Registry, classify Classifier, opts ...es.SessionOption) *Manager {
	if classify == nil {
		classify = Classify
	}
	return &Manager{
		repo:     es.NewRepository[State, Event](store, publisher, Projection, opts...),
		registry: registry,
		classify: classify,
		sender:   sender,
	}
}

var clock = time.Now

// InitializeProcess starts the process of cmd.ShipmentID under the category
// its legs classify to. Starting an already started process does nothing.
func (m *Manager) InitializeProcess(ctx context.Context, cmd ProcessShipment) error {
	category, err := m.classify(cmd.Legs)
	if err != nil {
		return fmt.Errorf("initialize process %q: %w", cmd.ShipmentID, err)
	}
	if _, err := m.registry.Lookup(category); err != nil {
		return fmt.Errorf("initialize process %q: %w", cmd.ShipmentID, err)
	}

	return m.invoke(ctx, cmd.ShipmentID, func(state State) ([]Event, error) {
		if state.Started() {
			return nil, nil
		}
		return []Event{ShipmentProcessStarted{
			Base:           shipment.NewBase(cmd.ShipmentID, category),
			Legs:           cmd.Legs,
			CollectionDate: shipment.FormatDate(shipment.ParseDate(cmd.CollectionDate, clock())),
			TimeZone:       cmd.TimeZone,
		}}, nil
	})
}

// InvokeTrigger runs trigger through the decision table of its category.
func (m *Manager) InvokeTrigger(ctx context.Context, trigger Trigger) error {
	def, err := m.registry.Lookup(trigger.Category())
	if err != nil {
		return fmt.Errorf("invoke %s: %w", trigger.Event().EventType(), err)
	}

	return m.invoke(ctx, trigger.ShipmentID(), func(state State) ([]Event, error) {
		if state.Started() && state.Category != trigger.Category() {
			return nil, fmt.Errorf("%w: started as %q, trigger has %q", ErrCategoryMismatch, state.Category, trigger.Category())
		}
		return def.Decide(state, trigger)
	})
}

// HandleEvent classifies ev and invokes it.
func (m *Manager) HandleEvent(ctx context.Context, ev es.Event) error {
	trigger, err := TriggerFromEvent(ev)
	if err != nil {
		return err
	}
	return m.InvokeTrigger(ctx, trigger)
}

// State returns the current state of shipmentID.
func (m *Manager) State(ctx context.Context, shipmentID string) (State, error) {
	return m.repo.GetState(ctx, StreamID(shipmentID))
}

// invoke commits the decision and delegates with the state after it.
func (m *Manager) invoke(ctx context.Context, shipmentID string, decide es.Decision[State, Event]) error {
	events, state, err := m.repo.AddEvents(ctx, StreamID(shipmentID), decide)
	if err != nil {
		return err
	}
	return es.SendDelegated(ctx, m.sender, es.DelegatorFunc[State, Event](Delegate), state, events)
}

// Routes registers ProcessShipment and every event the process reacts to.
// Completed and Failed end the process and are not routed.
func (m *Manager) Routes(r *routing.Router) {
	routing.On(r, m.InitializeProcess)

	onEvent[ShipmentProcessStarted](r, m)
	onEvent[ShipmentProcessCompletionChecked](r, m)
	onEvent[ManifestationAndDocumentsStarted](r, m)
	onEvent[ManifestationAndDocumentsCompleted](r, m)
	onEvent[ManifestationAndDocumentsFailed](r, m)
	onEvent[CustomsInvoiceGenerationStarted](r, m)
	onEvent[CustomsInvoiceGenerationCompleted](r, m)
	onEvent[CustomsInvoiceGenerationFailed](r, m)
	onEvent[ShipmentManifestationStarted](r, m)
	onEvent[ShipmentManifestationCompleted](r, m)
	onEvent[ShipmentManifestationFailed](r, m)
	onEvent[ShipmentLabelsGenerationStarted](r, m)
	onEvent[ShipmentLabelsGenerationCompleted](r, m)
	onEvent[ShipmentLabelsGenerationFailed](r, m)
	onEvent[ReceiptGenerationStarted](r, m)
	onEvent[ReceiptGenerationCompleted](r, m)
	onEvent[ReceiptGenerationFailed](r, m)
	onEvent[CombinedDocumentGenerationStarted](r, m)
	onEvent[CombinedDocumentGenerationCompleted](r, m)
	onEvent[CombinedDocumentGenerationFailed](r, m)
	onEvent[CollectionBookingStarted](r, m)
	onEvent[CollectionBookingCompleted](r, m)
	onEvent[CollectionBookingFailed](r, m)

	onEvent[manifestation.CustomsInvoiceGenerated](r, m)
	onEvent[manifestation.CustomsInvoiceGenerationFailed](r, m)
	onEvent[manifestation.ShipmentManifested](r, m)
	onEvent[manifestation.ShipmentManifestationFailed](r, m)
	onEvent[manifestation.ShipmentLabelsGenerated](r, m)
	onEvent[manifestation.ShipmentLabelsGenerationFailed](r, m)
	onEvent[manifestation.ShipmentReceiptGenerated](r, m)
	onEvent[manifestation.ShipmentReceiptGenerationFailed](r, m)
	onEvent[manifestation.ShipmentCombinedDocumentGenerated](r, m)
	onEvent[manifestation.ShipmentCombinedDocumentGenerationFailed](r, m)

	onEvent[collection.CollectionBooked](r, m)
	onEvent[collection.CollectionBookingFailed](r, m)
	onEvent[collection.CollectionBookingSchedulingFailed](r, m)
}

func onEvent[T es.Event](r *routing.Router, m *Manager) {
	routing.On(r, func(ctx context.Context, ev T) error {
		return m.HandleEvent(ctx, ev)
	})
}
