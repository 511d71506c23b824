package plantcare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "botaniq/internal/common/errors"
	"botaniq/internal/common/logger"
	"botaniq/internal/common/metrics"
	"botaniq/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ServiceName = "plant-care"

	HomeText = "Botaniq webhook is live!"
)

type Handler struct {
	config   *Config
	resolver *Resolver
	obs      *observability.Observability
	logger   logger.Logger
}

func NewHandler(config *Config, store Store, obs *observability.Observability, log logger.Logger) *Handler {
	log = logger.ForService(log, ServiceName)
	return &Handler{
		config:   config,
		resolver: NewResolver(store, log),
		obs:      obs,
		logger:   log,
	}
}

// Webhook answers the agent's fulfillment call. The status is always 200;
// failures are reported to the user inside fulfillmentText.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := &WebhookResponse{FulfillmentText: apperrors.MessageUnexpected}

	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook panic recovered", map[string]interface{}{
				"panic": fmt.Sprint(rec),
			})
			resp = &WebhookResponse{FulfillmentText: apperrors.MessageUnexpected}
		}
		writeFulfillment(w, resp)
		metrics.RequestDuration.WithLabelValues(ServiceName).Observe(time.Since(start).Seconds())
	}()

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)

	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid webhook body", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.RequestsTotal.WithLabelValues(ServiceName, "bad_request").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	resp = h.Execute(ctx, &req)
}

// Home is the liveness text served at /.
func Home(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(HomeText))
}

// Execute resolves one webhook request. It never returns an error: store
// failures become apology text.
func (h *Handler) Execute(ctx context.Context, req *WebhookRequest) *WebhookResponse {
	start := time.Now()
	intent := req.QueryResult.Intent.DisplayName

	ctx, span := h.obs.StartSpan(ctx, "plant-care.resolve",
		attribute.String("intent", intent),
	)
	defer span.End()

	res, err := h.resolver.Resolve(ctx, Query{
		Intent:     intent,
		Parameters: req.QueryResult.Parameters,
	})

	status := "success"
	if err != nil {
		status = "error"
		stdErr := apperrors.Normalize(err)

		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		metrics.FactStoreLoadErrors.WithLabelValues(string(stdErr.Code)).Inc()

		h.logger.Error("fact store unavailable", map[string]interface{}{
			"intent":        intent,
			"errorCode":     string(stdErr.Code),
			"details":       stdErr.Details,
			"errorCategory": apperrors.GetErrorCategory(stdErr.Code),
		})

		res.Text = apperrors.FulfillmentMessage(err)
	}

	metrics.FulfillmentsTotal.WithLabelValues(intentLabel(intent), res.Outcome).Inc()
	metrics.RequestsTotal.WithLabelValues(ServiceName, status).Inc()
	h.obs.RecordRequest(ctx, ServiceName, status, time.Since(start))

	h.logger.Info("webhook fulfilled", map[string]interface{}{
		"intent":      intent,
		"plantKey":    res.Key,
		"outcome":     res.Outcome,
		"durationMs":  time.Since(start).Milliseconds(),
		"sessionPath": req.Session,
	})

	return &WebhookResponse{FulfillmentText: res.Text}
}

// intentLabel keeps the metric cardinality bounded to the known intents.
func intentLabel(intent string) string {
	if IsKnownIntent(intent) {
		return intent
	}
	return "other"
}

func writeFulfillment(w http.ResponseWriter, resp *WebhookResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
