package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"botaniq/internal/common/config"
	"botaniq/internal/services/chat"
)

func newDetectIntentCmd() *cobra.Command {
	var (
		project     string
		session     string
		language    string
		credentials string
		endpoint    string
	)

	cmd := &cobra.Command{
		Use:   "detect-intent [text]",
		Short: "Send one text query to the conversational agent and print the match",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := "Hello"
			if len(args) == 1 {
				text = args[0]
			}

			chCfg, err := chatConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("project") {
				chCfg.ProjectID = project
			}
			if flags.Changed("language") {
				chCfg.LanguageCode = language
			}
			if flags.Changed("credentials") {
				chCfg.CredentialsFile = credentials
			}
			if flags.Changed("endpoint") {
				chCfg.Endpoint = endpoint
			}
			if chCfg.ProjectID == "" {
				return fmt.Errorf("a project id is required (--project or DIALOGFLOW_PROJECT_ID)")
			}
			if session == "" {
				session = uuid.NewString()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), chCfg.Timeout)
			defer cancel()

			client, err := chat.NewClient(ctx, chCfg)
			if err != nil {
				return err
			}
			defer client.Close()

			return runDetectIntent(ctx, cmd.OutOrStdout(), client, session, text)
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Agent GCP project id")
	cmd.Flags().StringVar(&session, "session", "", "Session id (random when empty)")
	cmd.Flags().StringVar(&language, "language", "en", "Query language code")
	cmd.Flags().StringVar(&credentials, "credentials", "", "Service account key file")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Override the agent API endpoint (host:port)")
	return cmd
}

// chatConfig starts from the YAML config when --config is set, otherwise from
// defaults plus the usual environment variables.
func chatConfig() (*chat.Config, error) {
	chCfg := chat.LoadConfig()

	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return nil, err
		}
		df := cfg.Integrations.Dialogflow
		chCfg.Endpoint = df.Endpoint
		chCfg.ProjectID = df.ProjectID
		chCfg.CredentialsFile = df.CredentialsFile
		chCfg.LanguageCode = df.LanguageCode
		chCfg.Timeout = config.GetDuration(df.Timeout)
		return chCfg, nil
	}

	chCfg.ProjectID = os.Getenv("DIALOGFLOW_PROJECT_ID")
	chCfg.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	return chCfg, nil
}

func runDetectIntent(ctx context.Context, out io.Writer, detector chat.IntentDetector, session, text string) error {
	result, err := detector.DetectIntent(ctx, session, text)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Query text:", result.Query)
	fmt.Fprintln(out, "Detected intent:", result.Intent)
	fmt.Fprintln(out, "Response:", result.Response)
	return nil
}
