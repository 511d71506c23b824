// internal/services/chat/models.go
package chat

type Input struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type Output struct {
	Query    string `json:"query"`
	Intent   string `json:"intent"`
	Response string `json:"response"`
}
