package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/cli"
	"github.com/aretw0/stepflow/internal/presentation/tui"
)

var errInvalid = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate [flow...]",
	Short: "Validate flows against the operator catalog",
	Long: `Validates each argument, which is a flow file, "-" for standard input or
the id of a flow in the flows directory. With --all every flow of the
directory is checked. The command exits with status 1 when a flow is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		watch, _ := cmd.Flags().GetBool("watch")
		format, _ := cmd.Flags().GetString("format")

		_, logger, eng, err := setup()
		if err != nil {
			return err
		}

		if watch {
			tui.PrintBanner(os.Stderr)
			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()

			out := cmd.OutOrStdout()
			err := cli.Watch(ctx, eng, args, cli.DefaultDebounce, func(id string, rep *stepflow.Report, err error) {
				if err != nil {
					logger.Error("validation failed", "flow", id, "err", err)
					return
				}
				if werr := cli.WriteReport(out, format, id, rep); werr != nil {
					logger.Error("write report", "err", werr)
				}
			})
			if sig := ctx.Signal(); sig != nil {
				logger.Info("watch stopped", "signal", sig)
			}
			return err
		}

		if all {
			ids, err := cli.FlowIDs(cmd.Context(), eng)
			if errors.Is(err, stepflow.ErrNoSource) {
				return fmt.Errorf("--all needs a flows directory (--dir or flowsDir)")
			}
			if err != nil {
				return err
			}
			args = append(args, ids...)
		}
		if len(args) == 0 {
			return fmt.Errorf("nothing to validate: pass a flow, %q or --all", cli.StdinArg)
		}

		valid := true
		for _, arg := range args {
			flow, err := cli.LoadFlow(cmd.Context(), eng, arg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			rep, err := eng.Validate(cmd.Context(), flow.Steps)
			if err != nil {
				return err
			}
			if err := cli.WriteReport(cmd.OutOrStdout(), format, reportName(arg, flow.ID), rep); err != nil {
				return err
			}
			valid = valid && rep.OK()
		}
		if !valid {
			return errInvalid
		}
		return nil
	},
}

func reportName(arg, id string) string {
	if id != "" {
		return id
	}
	if arg == cli.StdinArg {
		return "stdin"
	}
	return arg
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("all", false, "Validate every flow of the flows directory")
	validateCmd.Flags().Bool("watch", false, "Revalidate flows as they change")
	validateCmd.Flags().StringP("format", "f", cli.FormatText, "Output format: text, json or markdown")
}
