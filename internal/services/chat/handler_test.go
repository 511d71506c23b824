// internal/services/chat/handler_test.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "botaniq/internal/common/errors"
	"botaniq/internal/common/logger"
	"botaniq/internal/common/observability"

	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// ==========================
// Test Helper Functions
// ==========================

// fakeAgent is an in-process Sessions service.
type fakeAgent struct {
	dialogflowpb.UnimplementedSessionsServer

	mu    sync.Mutex
	last  *dialogflowpb.DetectIntentRequest
	reply func(ctx context.Context, req *dialogflowpb.DetectIntentRequest) (*dialogflowpb.DetectIntentResponse, error)
}

func (f *fakeAgent) DetectIntent(ctx context.Context, req *dialogflowpb.DetectIntentRequest) (*dialogflowpb.DetectIntentResponse, error) {
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	return f.reply(ctx, req)
}

func (f *fakeAgent) lastRequest() *dialogflowpb.DetectIntentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

func replyWith(intent, fulfillment string) func(context.Context, *dialogflowpb.DetectIntentRequest) (*dialogflowpb.DetectIntentResponse, error) {
	return func(_ context.Context, req *dialogflowpb.DetectIntentRequest) (*dialogflowpb.DetectIntentResponse, error) {
		return &dialogflowpb.DetectIntentResponse{
			ResponseId: "r-1",
			QueryResult: &dialogflowpb.QueryResult{
				QueryText:       req.GetQueryInput().GetText().GetText(),
				FulfillmentText: fulfillment,
				Intent: &dialogflowpb.Intent{
					Name:        "projects/botaniq-test/agent/intents/42",
					DisplayName: intent,
				},
				IntentDetectionConfidence: 0.87,
			},
		}, nil
	}
}

func replyError(code codes.Code, msg string) func(context.Context, *dialogflowpb.DetectIntentRequest) (*dialogflowpb.DetectIntentResponse, error) {
	return func(context.Context, *dialogflowpb.DetectIntentRequest) (*dialogflowpb.DetectIntentResponse, error) {
		return nil, status.Error(code, msg)
	}
}

// startAgent serves agent on a loopback port and returns a connected Client.
func startAgent(t *testing.T, cfg *Config, agent *fakeAgent) *Client {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpc.NewServer()
	dialogflowpb.RegisterSessionsServer(srv, agent)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	client, err := NewClient(context.Background(), cfg, option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func createTestConfig() *Config {
	return &Config{
		ProjectID:      "botaniq-test",
		LanguageCode:   "en",
		Timeout:        2 * time.Second,
		RequestTimeout: 2 * time.Second,
		MaxBodyBytes:   1 << 12,
	}
}

func newTestHandler(t *testing.T, cfg *Config, agent *fakeAgent) *Handler {
	return NewHandler(cfg, startAgent(t, cfg, agent), observability.NewNoop(), logger.NewTestLogger(t))
}

func postChat(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

// ==========================
// Client Tests
// ==========================

func TestClient_DetectIntent_Request(t *testing.T) {
	agent := &fakeAgent{reply: replyWith("Default Welcome Intent", "Hi! How can I help?")}
	client := startAgent(t, createTestConfig(), agent)

	out, err := client.DetectIntent(context.Background(), "session-1", "Hello")
	require.NoError(t, err)

	req := agent.lastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "projects/botaniq-test/agent/sessions/session-1", req.GetSession())
	assert.Equal(t, "Hello", req.GetQueryInput().GetText().GetText())
	assert.Equal(t, "en", req.GetQueryInput().GetText().GetLanguageCode())

	assert.Equal(t, &Output{Query: "Hello", Intent: "Default Welcome Intent", Response: "Hi! How can I help?"}, out)
}

func TestClient_SessionPath(t *testing.T) {
	client := &Client{projectID: "botaniq-test"}
	assert.Equal(t, "projects/botaniq-test/agent/sessions/abc", client.SessionPath("abc"))
	assert.Equal(t, "projects/botaniq-test/agent/sessions/a%2Fb", client.SessionPath("a/b"))
}

func TestClient_DetectIntent_UpstreamError(t *testing.T) {
	agent := &fakeAgent{reply: replyError(codes.PermissionDenied, "IAM permission 'dialogflow.sessions.detectIntent' denied.")}
	client := startAgent(t, createTestConfig(), agent)

	_, err := client.DetectIntent(context.Background(), "s", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDetectIntentFailed))
	assert.Equal(t, apperrors.ErrCodeIntentDetectionFailed, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "PermissionDenied")
	assert.Contains(t, err.Error(), "permission")
}

func TestClient_DetectIntent_CallTimeout(t *testing.T) {
	agent := &fakeAgent{reply: func(ctx context.Context, _ *dialogflowpb.DetectIntentRequest) (*dialogflowpb.DetectIntentResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	cfg := createTestConfig()
	cfg.Timeout = 50 * time.Millisecond
	client := startAgent(t, cfg, agent)

	_, err := client.DetectIntent(context.Background(), "s", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDetectIntentTimeout))
	assert.Equal(t, apperrors.ErrCodeIntentDetectionTimeout, apperrors.CodeOf(err))
}

func TestNewClient_MissingCredentialsFile(t *testing.T) {
	cfg := createTestConfig()
	cfg.CredentialsFile = filepath.Join(t.TempDir(), "nope.json")

	_, err := NewClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read credentials file")
}

// ==========================
// Handler Tests
// ==========================

func TestHandler_Chat_Success(t *testing.T) {
	agent := &fakeAgent{reply: replyWith("PlantCareIntent", "Here's some care advice for your aloe:")}
	h := newTestHandler(t, createTestConfig(), agent)

	rec := postChat(h, `{"message": "water my aloe?", "session_id": "user-7"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var out Output
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "water my aloe?", out.Query)
	assert.Equal(t, "PlantCareIntent", out.Intent)
	assert.Equal(t, "Here's some care advice for your aloe:", out.Response)
	assert.True(t, strings.HasSuffix(agent.lastRequest().GetSession(), "/sessions/user-7"))
}

func TestHandler_Chat_GeneratesSession(t *testing.T) {
	agent := &fakeAgent{reply: replyWith("Default Welcome Intent", "Hello!")}
	h := newTestHandler(t, createTestConfig(), agent)

	rec := postChat(h, `{"message": "hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	parts := strings.Split(agent.lastRequest().GetSession(), "/")
	_, err := uuid.Parse(parts[len(parts)-1])
	assert.NoError(t, err)
}

func TestHandler_Chat_InvalidInput(t *testing.T) {
	stub := &stubDetector{}
	h := NewHandler(createTestConfig(), stub, observability.NewNoop(), logger.NewTestLogger(t))

	tests := []struct {
		name string
		body string
	}{
		{"missing message", `{"session_id": "a"}`},
		{"blank message", `{"message": "   "}`},
		{"not json", `message=hi`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Empty(t, stub.text)
}

func TestHandler_Chat_UpstreamFailure(t *testing.T) {
	agent := &fakeAgent{reply: replyError(codes.Internal, "agent exploded")}
	h := newTestHandler(t, createTestConfig(), agent)

	rec := postChat(h, `{"message": "hi"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandler_Chat_Timeout(t *testing.T) {
	agent := &fakeAgent{reply: func(ctx context.Context, _ *dialogflowpb.DetectIntentRequest) (*dialogflowpb.DetectIntentResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	cfg := createTestConfig()
	cfg.Timeout = 50 * time.Millisecond
	h := newTestHandler(t, cfg, agent)

	rec := postChat(h, `{"message": "hi"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

type stubDetector struct {
	sessionID string
	text      string
	err       error
	block     bool
}

func (s *stubDetector) DetectIntent(ctx context.Context, sessionID, text string) (*Output, error) {
	s.sessionID = sessionID
	s.text = text
	if s.block {
		<-ctx.Done()
		return nil, apperrors.NewIntentDetectionTimeoutError(ctx.Err())
	}
	if s.err != nil {
		return nil, s.err
	}
	return &Output{Query: text, Intent: "stub"}, nil
}

func TestHandler_Chat_RequestTimeout(t *testing.T) {
	cfg := createTestConfig()
	cfg.Timeout = time.Minute
	cfg.RequestTimeout = 50 * time.Millisecond
	h := NewHandler(cfg, &stubDetector{block: true}, observability.NewNoop(), logger.NewTestLogger(t))

	start := time.Now()
	rec := postChat(h, `{"message": "hi"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestHandler_Execute_TrimsInput(t *testing.T) {
	stub := &stubDetector{}
	h := NewHandler(createTestConfig(), stub, observability.NewNoop(), logger.NewNoOpLogger())

	out, err := h.Execute(context.Background(), &Input{Message: "  hello  ", SessionID: " s1 "})
	require.NoError(t, err)
	assert.Equal(t, "hello", stub.text)
	assert.Equal(t, "s1", stub.sessionID)
	assert.Equal(t, "stub", out.Intent)
}

func TestHandler_Execute_MessageRequired(t *testing.T) {
	stub := &stubDetector{}
	h := NewHandler(createTestConfig(), stub, observability.NewNoop(), logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMessageRequired))
	assert.Equal(t, apperrors.ErrCodeChatInputInvalid, apperrors.CodeOf(err))
	assert.Empty(t, stub.text)
}
