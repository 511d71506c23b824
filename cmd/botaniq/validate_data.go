package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	plantcare "botaniq/internal/services/plant-care"
)

func newValidateDataCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "validate-data [PATH]",
		Short: "Load and schema-check a plant data file",
		Long: `Load and schema-check a plant data file.

The webhook treats the file as a whole: a single entry with a non-string
attribute rejects every lookup until it is fixed. Failures name the
rejected plant keys.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit := ""
			if len(args) == 1 {
				explicit = args[0]
			}
			path, err := resolveDataPath(explicit)
			if err != nil {
				return err
			}

			facts, err := plantcare.NewFileStore(path, true).Load(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d plants\n", path, len(facts))
			if list {
				keys := make([]string, 0, len(facts))
				for k := range facts {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s (%d attributes)\n", k, len(facts[k]))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "Also list every plant key")
	return cmd
}
