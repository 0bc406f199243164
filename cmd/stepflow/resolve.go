package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepflow/internal/cli"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <flow> <reference>",
	Short: "Explain what a {{__...}} reference binds to",
	Example: `  stepflow resolve approve '{{__0.source.id}}' --from 3`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")

		_, _, eng, err := setup()
		if err != nil {
			return err
		}
		flow, err := cli.LoadFlow(cmd.Context(), eng, args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		res, err := eng.Resolve(flow.Steps, args[1], from)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("from", "", "Step the reference is written on")
	_ = resolveCmd.MarkFlagRequired("from")
}
