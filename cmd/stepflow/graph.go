package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepflow/internal/cli"
	"github.com/aretw0/stepflow/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <flow>",
	Short: "Export the flow graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the flow. With --overlay the
nodes that fail validation are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overlay, _ := cmd.Flags().GetBool("overlay")
		focus, _ := cmd.Flags().GetString("focus")

		_, _, eng, err := setup()
		if err != nil {
			return err
		}
		flow, err := cli.LoadFlow(cmd.Context(), eng, args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		var ov *graph.GraphOverlay
		if overlay {
			rep, err := eng.Validate(cmd.Context(), flow.Steps)
			if err != nil {
				return err
			}
			ov = graph.OverlayFromResult(rep.Result)
		}
		if focus != "" {
			if ov == nil {
				ov = &graph.GraphOverlay{}
			}
			ov.Focus = focus
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(flow.Steps, ov))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("overlay", false, "Highlight invalid steps")
	graphCmd.Flags().String("focus", "", "Highlight one step")
}
