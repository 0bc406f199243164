package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepflow/internal/cli"
	"github.com/aretw0/stepflow/pkg/domain"
	"github.com/aretw0/stepflow/pkg/graph"
)

type indexOutput struct {
	Order   []string              `json:"order"`
	Outputs *graph.Outputs        `json:"outputs"`
	Visible []graph.VisibleOutput `json:"visible,omitempty"`
}

var indexCmd = &cobra.Command{
	Use:   "index <flow>",
	Short: "Print the outputs a flow defines and where they are visible",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("visible-from")

		_, _, eng, err := setup()
		if err != nil {
			return err
		}
		flow, err := cli.LoadFlow(cmd.Context(), eng, args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		ix, err := eng.Index(flow.Steps)
		if err != nil {
			return err
		}

		out := indexOutput{Order: ix.Order, Outputs: ix.Outputs}
		if from != "" {
			if _, ok := ix.Lookup(from); !ok {
				return fmt.Errorf("%w: %q", domain.ErrNodeNotFound, from)
			}
			out.Visible = ix.Visible(from)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().String("visible-from", "", "Also list the outputs visible to this step")
}
