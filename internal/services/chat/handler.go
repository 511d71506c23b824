package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "botaniq/internal/common/errors"
	"botaniq/internal/common/logger"
	"botaniq/internal/common/metrics"
	"botaniq/internal/common/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ServiceName = "chat"
	upstream    = "dialogflow"
)

var ErrMessageRequired = errors.New("MESSAGE_REQUIRED")

// IntentDetector is satisfied by *Client.
type IntentDetector interface {
	DetectIntent(ctx context.Context, sessionID, text string) (*Output, error)
}

type Handler struct {
	config   *Config
	detector IntentDetector
	obs      *observability.Observability
	logger   logger.Logger
}

func NewHandler(config *Config, detector IntentDetector, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		detector: detector,
		obs:      obs,
		logger:   logger.ForService(log, ServiceName),
	}
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		metrics.RequestsTotal.WithLabelValues(ServiceName, status).Inc()
		metrics.RequestDuration.WithLabelValues(ServiceName).Observe(time.Since(start).Seconds())
	}()

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		status = "bad_request"
		apperrors.WriteJSONError(w, h.logger, apperrors.NewChatInputInvalidError("Request body must be a JSON object"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	output, err := h.Execute(ctx, &input)
	if err != nil {
		status = "error"
		apperrors.WriteJSONError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(output)
}

// Execute relays one message. A blank session id gets a fresh UUID.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: %w", ErrMessageRequired, apperrors.NewChatInputInvalidError("message is required"))
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	start := time.Now()
	ctx, span := h.obs.StartSpan(ctx, "chat.detect-intent",
		attribute.String("session", sessionID),
	)
	defer span.End()

	output, err := h.detector.DetectIntent(ctx, sessionID, message)

	result := "success"
	if err != nil {
		result = string(apperrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	metrics.UpstreamRequests.WithLabelValues(upstream, result).Inc()
	h.obs.RecordRequest(ctx, ServiceName, result, time.Since(start))

	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("intent", output.Intent))
	h.logger.Info("intent detected", map[string]interface{}{
		"sessionId":  sessionID,
		"intent":     output.Intent,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return output, nil
}
