package process

import (
	"context"
	"errors"
	"strings"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

// ErrProcessNotFound is returned by the status query for an unknown shipment.
var ErrProcessNotFound = errors.New("shipment process not found")

// StatusQuery asks for the outcome of a shipment process.
type StatusQuery struct {
	ShipmentID string
}

func (StatusQuery) QueryType() string { return "process.ShipmentStatus" }

// StatusView is the read-only outcome of a shipment process.
type StatusView struct {
	ShipmentID                 string             `json:"shipmentId"`
	ProcessCategory            string             `json:"processCategory"`
	Step                       string             `json:"step"`
	TrackingNumbers            string             `json:"trackingNumbers"`
	CollectionDate             string             `json:"collectionDate"`
	CollectionBookingReference string             `json:"collectionBookingReference"`
	TimeZone                   string             `json:"timeZone"`
	Documents                  shipment.Documents `json:"documents"`
	Stages                     Stages             `json:"stages"`
}

// NewStatusQueryHandler answers status queries from the process stream. It
// never appends events.
func NewStatusQueryHandler(m *Manager) es.QueryHandler[StatusQuery, StatusView] {
	return es.NewQueryHandlerFunc(func(ctx context.Context, q StatusQuery) (StatusView, error) {
		state, err := m.State(ctx, q.ShipmentID)
		if err != nil {
			return StatusView{}, err
		}
		if !state.Started() {
			return StatusView{}, ErrProcessNotFound
		}
		return View(state), nil
	})
}

// View renders state.
func View(state State) StatusView {
	tracking := make([]string, 0, len(state.Outcome.ManifestedLegs))
	for _, l := range state.Outcome.ManifestedLegs {
		tracking = append(tracking, l.TrackingNumber)
	}

	return StatusView{
		ShipmentID:                 state.ShipmentID,
		ProcessCategory:            state.Category.String(),
		Step:                       string(state.Step),
		TrackingNumbers:            strings.Join(tracking, ", "),
		CollectionDate:             shipment.FormatDate(state.Input.CollectionDate),
		CollectionBookingReference: state.Outcome.CollectionBookingReference,
		TimeZone:                   state.Input.TimeZone,
		Documents:                  state.Outcome.Documents,
		Stages:                     state.Stages,
	}
}
