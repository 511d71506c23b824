// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"
)

// User-facing sentences for fact store failures. The webhook caller expects a
// fulfillment string unconditionally, so these travel inside a 200 response.
const (
	MessageFactFileNotFound  = "Sorry, my plant care notes are unavailable right now. Please try again in a little while."
	MessageFactDataMalformed = "Sorry, I couldn't read my plant care notes right now. Please try again in a little while."
	MessageUnexpected        = "Sorry, something went wrong while looking up your plant. Please try again."
)

// Logger is the subset of logger.Logger the handler helpers need.
type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return NewUnexpectedError(err)
}

// FulfillmentMessage maps a fact store failure to the reply text.
func FulfillmentMessage(err error) string {
	switch CodeOf(err) {
	case ErrCodeFactFileNotFound:
		return MessageFactFileNotFound
	case ErrCodeFactDataMalformed:
		return MessageFactDataMalformed
	default:
		return MessageUnexpected
	}
}

// HTTPStatus maps an error code to the status used by the JSON endpoints.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeIdentificationInputInvalid, ErrCodeChatInputInvalid:
		return http.StatusBadRequest
	case ErrCodeSpeciesNotFound:
		return http.StatusNotFound
	case ErrCodeIntentDetectionFailed:
		return http.StatusBadGateway
	case ErrCodeIntentDetectionTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSONError logs err and writes {"error": message} with the mapped status.
func WriteJSONError(w http.ResponseWriter, log Logger, err error) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)

	if log != nil {
		log.Error("request failed", map[string]interface{}{
			"errorCode":     string(stdErr.Code),
			"message":       stdErr.Message,
			"details":       stdErr.Details,
			"retryable":     stdErr.Retryable,
			"errorCategory": GetErrorCategory(stdErr.Code),
			"status":        status,
		})
	}

	message := stdErr.Message
	if stdErr.Code == ErrCodeIdentificationFailed || stdErr.Code == ErrCodeIntentDetectionFailed {
		if stdErr.Details != "" {
			message = stdErr.Details
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
