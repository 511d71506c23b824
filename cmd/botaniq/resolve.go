package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"botaniq/internal/common/config"
	plantcare "botaniq/internal/services/plant-care"
)

func newResolveCmd() *cobra.Command {
	var (
		intent   string
		plant    string
		dataPath string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Render the webhook reply for an intent and plant without a server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := resolveDataPath(dataPath)
			if err != nil {
				return err
			}

			params := map[string]interface{}{}
			if plant != "" {
				params[plantcare.PlantParameter] = plant
			}

			resolver := plantcare.NewResolver(plantcare.NewFileStore(path, true), cliLogger())
			res, err := resolver.Resolve(cmd.Context(), plantcare.Query{Intent: intent, Parameters: params})
			if err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&intent, "intent", plantcare.IntentPlantCare, "Intent display name")
	cmd.Flags().StringVar(&plant, "plant", "", "Plant name as the user said it")
	cmd.Flags().StringVar(&dataPath, "data", "", "Plant data file (defaults to the configured path)")
	return cmd
}

// resolveDataPath prefers an explicit path, then --config, then the default.
func resolveDataPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if configPath != "" {
		cfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return "", err
		}
		return cfg.PlantData.Path, nil
	}
	return config.ResolveDataPath(plantcare.LoadConfig().DataPath), nil
}
