// Package api exposes the shipment process over HTTP: starting a process
// and reading its outcome.
package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	es "github.com/terraskye/eventsourcing-pm"
	"github.com/terraskye/eventsourcing-pm/process"
	"github.com/terraskye/eventsourcing-pm/shipment"
)

var (
	carrier1 = uuid.MustParse("c62bee76-3e7a-4ce3-87dd-a5eb11678815")
	carrier2 = uuid.MustParse("9d6d28f2-fbee-4e53-aeac-2c3b3ba98d28")
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ProcessRequest is the optional body of a start request. Without a body a
// demo shipment is started.
type ProcessRequest struct {
	Legs           []shipment.Leg `json:"legs"`
	CollectionDate string         `json:"collectionDate"`
	TimeZone       string         `json:"timeZone"`
}

type ProcessResponse struct {
	ShipmentID    string    `json:"shipmentId"`
	CorrelationID uuid.UUID `json:"correlationId"`
}

type Handler struct {
	sender es.CommandSender
	status es.QueryHandler[process.StatusQuery, process.StatusView]
	log    logrus.FieldLogger

	Clock func() time.Time
}

func NewHandler(sender es.CommandSender, status es.QueryHandler[process.StatusQuery, process.StatusView], log logrus.FieldLogger) *Handler {
	return &Handler{sender: sender, status: status, log: log, Clock: time.Now}
}

func NewRouter(h *Handler, serviceName string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))

	router.GET("/healthz", HealthCheck)

	shipments := router.Group("/shipments")
	{
		shipments.POST("/:id", h.StartProcess)
		shipments.GET("/:id", h.GetStatus)
	}
	return router
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// StartProcess sends ProcessShipment for the shipment in the path.
func (h *Handler) StartProcess(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.Legs == nil {
		req = h.demo(id)
	}
	if _, err := process.Classify(req.Legs); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_shipment", err)
		return
	}

	correlationID := uuid.New()
	ctx := es.WithCorrelationID(c.Request.Context(), correlationID)

	cmd := process.ProcessShipment{
		ShipmentID:     id,
		Legs:           req.Legs,
		CollectionDate: req.CollectionDate,
		TimeZone:       req.TimeZone,
	}
	if err := h.sender.Send(ctx, cmd); err != nil {
		h.log.WithError(err).WithField("shipment_id", id).Error("Send ProcessShipment failed")
		RespondError(c, http.StatusServiceUnavailable, "send_failed", err)
		return
	}

	c.JSON(http.StatusAccepted, ProcessResponse{ShipmentID: id, CorrelationID: correlationID})
}

// GetStatus returns the outcome of the shipment process in the path.
func (h *Handler) GetStatus(c *gin.Context) {
	view, err := h.status.HandleQuery(c.Request.Context(), process.StatusQuery{ShipmentID: c.Param("id")})
	switch {
	case errors.Is(err, process.ErrProcessNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case err != nil:
		RespondError(c, http.StatusInternalServerError, "query_failed", err)
	default:
		c.JSON(http.StatusOK, view)
	}
}

// demo builds a domestic shipment for ids starting with 1 and an
// international one otherwise, to be collected tomorrow.
func (h *Handler) demo(id string) ProcessRequest {
	tomorrow := shipment.FormatDate(h.Clock().UTC().AddDate(0, 0, 1))

	if strings.HasPrefix(id, "1") {
		return ProcessRequest{
			Legs: []shipment.Leg{
				{CarrierID: carrier1, Sender: "GB-sender1", Receiver: "GB-receiver1", Collection: "GB-collection1"},
			},
			CollectionDate: tomorrow,
			TimeZone:       "Europe/London",
		}
	}
	return ProcessRequest{
		Legs: []shipment.Leg{
			{CarrierID: carrier1, Sender: "DE-sender1", Receiver: "DE-receiver1", Collection: "DE-collection1"},
			{CarrierID: carrier2, Sender: "DE-sender2", Receiver: "GB-receiver2", Collection: "DE-collection2"},
		},
		CollectionDate: tomorrow,
		TimeZone:       "Europe/Berlin",
	}
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}
