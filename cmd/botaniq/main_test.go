package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botaniq/internal/services/chat"
)

func writeData(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plant_data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, logLevel = "", "warn"

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestResolveCmd(t *testing.T) {
	path := writeData(t, `{"aloe vera": {"light": "bright indirect", "water": "low"}}`)

	out, err := execute(t, "resolve", "--plant", "Aloe Vera", "--data", path)
	require.NoError(t, err)
	assert.Equal(t, "Here's some care advice for your Aloe Vera:\n- Light: bright indirect\n- Water: low\n", out)

	out, err = execute(t, "resolve", "--intent", "smallTalk", "--data", path)
	require.NoError(t, err)
	assert.Equal(t, "I'm still learning how to help with that!\n", out)
}

func TestResolveCmd_MissingData(t *testing.T) {
	_, err := execute(t, "resolve", "--plant", "Rose", "--data", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FACT_FILE_NOT_FOUND")
}

func TestValidateDataCmd(t *testing.T) {
	path := writeData(t, `{"tulsi": {"vastu": "north-east"}, "aloe vera": {"water": "low"}}`)

	out, err := execute(t, "validate-data", path, "--list")
	require.NoError(t, err)
	assert.Contains(t, out, path+": 2 plants")
	assert.Contains(t, out, "  aloe vera (1 attributes)\n  tulsi (1 attributes)")

	_, err = execute(t, "validate-data", writeData(t, `{"tulsi": {"vastu": 1}, "neem": {"soil": "loamy"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected plants [tulsi]")

	out, err = execute(t, "validate-data", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "a single entry with a non-string")
}

func TestDetectIntentCmd_RequiresProject(t *testing.T) {
	t.Setenv("DIALOGFLOW_PROJECT_ID", "")
	_, err := execute(t, "detect-intent", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project id is required")
}

type stubDetector struct {
	session string
	text    string
}

func (s *stubDetector) DetectIntent(_ context.Context, session, text string) (*chat.Output, error) {
	s.session, s.text = session, text
	return &chat.Output{Query: text, Intent: "Default Welcome Intent", Response: "Hi there!"}, nil
}

func TestRunDetectIntent(t *testing.T) {
	stub := &stubDetector{}
	var out bytes.Buffer

	require.NoError(t, runDetectIntent(context.Background(), &out, stub, "s-1", "Hello"))
	assert.Equal(t, "s-1", stub.session)
	assert.Equal(t, "Query text: Hello\nDetected intent: Default Welcome Intent\nResponse: Hi there!\n", out.String())
}
