package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	apperrors "botaniq/internal/common/errors"
	apphttp "botaniq/internal/common/http"

	dialogflow "cloud.google.com/go/dialogflow/apiv2"
	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrDetectIntentFailed  = errors.New("INTENT_DETECTION_FAILED")
	ErrDetectIntentTimeout = errors.New("INTENT_DETECTION_TIMEOUT")
)

// sessionsAPI is the part of *dialogflow.SessionsClient the relay uses.
type sessionsAPI interface {
	DetectIntent(ctx context.Context, req *dialogflowpb.DetectIntentRequest, opts ...gax.CallOption) (*dialogflowpb.DetectIntentResponse, error)
	Close() error
}

// Client sends text queries to the agent through the Dialogflow ES SDK.
type Client struct {
	sessions     sessionsAPI
	projectID    string
	languageCode string
	timeout      time.Duration
}

// NewClient dials the agent. The configured key file is used when set,
// otherwise Application Default Credentials. Extra options go last so callers
// can point the client at another connection.
func NewClient(ctx context.Context, config *Config, opts ...option.ClientOption) (*Client, error) {
	var base []option.ClientOption
	if config.Endpoint != "" {
		base = append(base, option.WithEndpoint(config.Endpoint))
	}
	if config.CredentialsFile != "" {
		creds, err := apphttp.LoadGoogleCredentials(ctx, config.CredentialsFile, dialogflow.DefaultAuthScopes()...)
		if err != nil {
			return nil, err
		}
		base = append(base, option.WithCredentials(creds))
	}

	sessions, err := dialogflow.NewSessionsClient(ctx, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create sessions client: %w", err)
	}

	return &Client{
		sessions:     sessions,
		projectID:    config.ProjectID,
		languageCode: config.LanguageCode,
		timeout:      config.Timeout,
	}, nil
}

func (c *Client) Close() error {
	return c.sessions.Close()
}

// SessionPath is the resource name of a conversation session.
func (c *Client) SessionPath(sessionID string) string {
	return fmt.Sprintf("projects/%s/agent/sessions/%s", url.PathEscape(c.projectID), url.PathEscape(sessionID))
}

// DetectIntent sends one text query within sessionID.
func (c *Client) DetectIntent(ctx context.Context, sessionID, text string) (*Output, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.sessions.DetectIntent(ctx, &dialogflowpb.DetectIntentRequest{
		Session: c.SessionPath(sessionID),
		QueryInput: &dialogflowpb.QueryInput{
			Input: &dialogflowpb.QueryInput_Text{
				Text: &dialogflowpb.TextInput{Text: text, LanguageCode: c.languageCode},
			},
		},
	})
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apperrors.NewIntentDetectionTimeoutError(fmt.Errorf("%w: %v", ErrDetectIntentTimeout, err))
		}
		return nil, apperrors.NewIntentDetectionFailedError(fmt.Errorf("%w: %s", ErrDetectIntentFailed, upstreamMessage(err)))
	}

	result := resp.GetQueryResult()
	return &Output{
		Query:    result.GetQueryText(),
		Intent:   result.GetIntent().GetDisplayName(),
		Response: result.GetFulfillmentText(),
	}, nil
}

func upstreamMessage(err error) string {
	st := status.Convert(err)
	return fmt.Sprintf("%s: %s", st.Code(), st.Message())
}

func isTimeout(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return status.Code(err) == codes.DeadlineExceeded
}
