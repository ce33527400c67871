package leads

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/inkwell-tutoring/inkwell-platform/internal/observability/metrics"
	"github.com/inkwell-tutoring/inkwell-platform/pkg/logging"
)

// genericErrorMessage is what callers see when the storage layer fails. It
// deliberately reveals nothing; validation messages are never replaced by it.
const genericErrorMessage = "Something went wrong. Please try again."

// Notifier is alerted after a lead is durably stored. Implementations must
// not influence the submission result.
type Notifier interface {
	LeadCreated(ctx context.Context, lead *Lead)
}

// APIResponse is the envelope for every /api/leads response.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    *Lead  `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.LeadMetrics
	logger   *logging.Logger
	tracer   trace.Tracer
}

// NewHandler creates a new leads handler. notifier and m may be nil.
func NewHandler(repo Repository, notifier Notifier, m *metrics.LeadMetrics, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("leads: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("inkwell/leads"),
	}
}

// SubmitLead handles POST /api/leads requests
func (h *Handler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := h.tracer.Start(r.Context(), "leads.submit")
	defer span.End()
	defer func() {
		h.metrics.ObserveSubmitLatency(time.Since(start).Seconds())
	}()

	var req SubmitLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An undecodable body has no string fields to validate.
		h.logger.Debug("failed to decode lead submission", "error", err)
		h.rejectSubmission(w, span, ErrFieldsRequired)
		return
	}

	name, email, message, err := req.Validate()
	if err != nil {
		h.rejectSubmission(w, span, err)
		return
	}

	lead := NewLead(name, email, message)
	if err := h.repo.Create(ctx, lead); err != nil {
		h.logger.Error("failed to store lead", "error", err, "lead_id", lead.ID)
		h.metrics.ObserveSubmission(metrics.StatusError)
		span.SetAttributes(attribute.String("leads.outcome", metrics.StatusError))
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Error: genericErrorMessage})
		return
	}

	h.logger.Info("lead created", "lead_id", lead.ID, "email", lead.Email)
	h.metrics.ObserveSubmission(metrics.StatusAccepted)
	span.SetAttributes(
		attribute.String("leads.outcome", metrics.StatusAccepted),
		attribute.String("leads.id", lead.ID),
	)

	if h.notifier != nil {
		go h.notifier.LeadCreated(context.WithoutCancel(ctx), lead)
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: lead})
}

// rejectSubmission reports a client-caused failure. These are not system
// faults and are never logged as errors.
func (h *Handler) rejectSubmission(w http.ResponseWriter, span trace.Span, err error) {
	h.logger.Debug("lead submission rejected", "reason", err.Error())
	h.metrics.ObserveSubmission(metrics.StatusInvalid)
	span.SetAttributes(attribute.String("leads.outcome", metrics.StatusInvalid))
	writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
