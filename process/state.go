package process

import (
	"slices"
	"time"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// StreamID returns the process stream of shipmentID.
func StreamID(shipmentID string) string {
	return "Process_" + shipmentID
}

// StageKind enumerates the stage statuses. The zero value is NotStarted.
type StageKind int

const (
	NotStarted StageKind = iota
	NotRequired
	Started
	Restarted
	Completed
	Failed
)

func (k StageKind) String() string {
	switch k {
	case NotStarted:
		return "NotStarted"
	case NotRequired:
		return "NotRequired"
	case Started:
		return "Started"
	case Restarted:
		return "Restarted"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

// StageStatus is the progress of one stage. Failure is set for Failed only.
type StageStatus struct {
	Kind    StageKind `json:"kind"`
	Failure string    `json:"failure,omitempty"`
}

func StageStarted() StageStatus                { return StageStatus{Kind: Started} }
func StageCompleted() StageStatus              { return StageStatus{Kind: Completed} }
func StageNotRequired() StageStatus            { return StageStatus{Kind: NotRequired} }
func StageFailed(failure string) StageStatus   { return StageStatus{Kind: Failed, Failure: failure} }
func (s StageStatus) IsCompleted() bool        { return s.Kind == Completed }
func (s StageStatus) IsCompletedOrNotRequired() bool {
	return s.Kind == Completed || s.Kind == NotRequired
}

// Stages is the progress of every stage of the process.
type Stages struct {
	OverallProcess            StageStatus `json:"overallProcess"`
	ManifestationAndDocuments StageStatus `json:"manifestationAndDocuments"`
	ShipmentManifestation     StageStatus `json:"shipmentManifestation"`
	CustomsInvoiceGeneration  StageStatus `json:"customsInvoiceGeneration"`
	ShipmentLabels            StageStatus `json:"shipmentLabels"`
	CombinedDocument          StageStatus `json:"combinedDocument"`
	Receipt                   StageStatus `json:"receipt"`
	CollectionBooking         StageStatus `json:"collectionBooking"`
}

// Step is the last step the process took, named after the event that
// recorded it.
type Step string

// Input is what the process was started with.
type Input struct {
	Legs           []shipment.Leg
	CollectionDate time.Time
	TimeZone       string
}

// Outcome is what the process has produced so far.
type Outcome struct {
	ManifestedLegs             []shipment.ManifestedLeg
	Documents                  shipment.Documents
	CollectionBookingReference string
}

// State is the folded process stream.
type State struct {
	Category   shipment.Category
	ShipmentID string
	Input      Input
	Outcome    Outcome
	Step       Step
	Stages     Stages
}

// Started reports whether the process was started.
func (s State) Started() bool {
	return s.ShipmentID != ""
}

// Finished reports whether the process reached Completed or Failed.
func (s State) Finished() bool {
	k := s.Stages.OverallProcess.Kind
	return k == Completed || k == Failed
}

// Projection folds process events.
var Projection es.Projection[State, Event] = es.ProjectionFuncs[State, Event]{
	Initial: func(string) State { return State{} },
	Fold:    apply,
}

func apply(s State, ev Event) State {
	if e, ok := ev.(ShipmentProcessStarted); ok {
		return State{
			Category:   e.ProcessCategory,
			ShipmentID: e.ShipmentID,
			Input: Input{
				Legs:           slices.Clone(e.Legs),
				CollectionDate: shipment.RecordedDate(e.CollectionDate),
				TimeZone:       e.TimeZone,
			},
			Step:   Step(e.EventType()),
			Stages: Stages{OverallProcess: StageStarted()},
		}
	}

	s.Step = Step(ev.EventType())
	st, out := &s.Stages, &s.Outcome

	switch e := ev.(type) {
	case ShipmentProcessCompletionChecked:
	case ShipmentProcessCompleted:
		st.OverallProcess = StageCompleted()
	case ShipmentProcessFailed:
		st.OverallProcess = StageFailed(e.Failure)

	case ManifestationAndDocumentsStarted:
		st.ManifestationAndDocuments = StageStarted()
	case ManifestationAndDocumentsCompleted:
		st.ManifestationAndDocuments = StageCompleted()
	case ManifestationAndDocumentsFailed:
		st.ManifestationAndDocuments = StageFailed(e.Failure)

	case CustomsInvoiceGenerationStarted:
		st.CustomsInvoiceGeneration = StageStarted()
	case CustomsInvoiceGenerationCompleted:
		st.CustomsInvoiceGeneration = StageCompleted()
		out.Documents.CustomsInvoice = e.CustomsInvoice
	case CustomsInvoiceGenerationFailed:
		st.CustomsInvoiceGeneration = StageFailed(e.Failure)
		out.Documents.CustomsInvoice = ""

	case ShipmentManifestationStarted:
		st.ShipmentManifestation = StageStarted()
	case ShipmentManifestationCompleted:
		st.ShipmentManifestation = StageCompleted()
		out.ManifestedLegs = slices.Clone(e.ManifestedLegs)
	case ShipmentManifestationFailed:
		st.ShipmentManifestation = StageFailed(e.Failure)
		out.ManifestedLegs = nil

	case ShipmentLabelsGenerationStarted:
		st.ShipmentLabels = StageStarted()
	case ShipmentLabelsGenerationCompleted:
		st.ShipmentLabels = StageCompleted()
		out.Documents.Labels = e.ShipmentLabels
	case ShipmentLabelsGenerationFailed:
		st.ShipmentLabels = StageFailed(e.Failure)
		out.Documents.Labels = ""

	case ReceiptGenerationStarted:
		st.Receipt = StageStarted()
	case ReceiptGenerationCompleted:
		st.Receipt = StageCompleted()
		out.Documents.Receipt = e.Receipt
	case ReceiptGenerationFailed:
		st.Receipt = StageFailed(e.Failure)
		out.Documents.Receipt = ""

	case CombinedDocumentGenerationStarted:
		st.CombinedDocument = StageStarted()
	case CombinedDocumentGenerationCompleted:
		st.CombinedDocument = StageCompleted()
		out.Documents.CombinedDocument = e.CombinedDocument
	case CombinedDocumentGenerationFailed:
		st.CombinedDocument = StageFailed(e.Failure)
		out.Documents.CombinedDocument = ""

	case CollectionBookingStarted:
		st.CollectionBooking = StageStarted()
	case CollectionBookingCompleted:
		st.CollectionBooking = StageCompleted()
		out.CollectionBookingReference = e.BookingReference
	case CollectionBookingFailed:
		st.CollectionBooking = StageFailed(e.Failure)
		out.CollectionBookingReference = ""
	}
	return s
}
