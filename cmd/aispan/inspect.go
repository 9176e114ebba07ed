// Offline inspection: apply the AI span pipeline to exported trace data
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrewh/aispan/pkg/traceio"
)

func inspectCmd() *cobra.Command {
	var (
		format string
		tree   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Apply AI span post-processing to exported trace data",
		Long: "Reads trace spans (stdouttrace or OTLP JSON) from a file or stdin,\n" +
			"applies AI span classification, transformation, and reparenting, and\n" +
			"prints the surviving spans as JSON lines (or as trees with --tree).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0]) //nolint:gosec // user-supplied file path is expected
				if err != nil {
					return fmt.Errorf("opening input: %w", err)
				}
				defer f.Close() //nolint:errcheck // best-effort close on read-only file
				r = f
			}

			spans, err := traceio.ParseSpans(r, traceio.Format(format))
			if err != nil {
				if strings.Contains(err.Error(), "no spans found") {
					return fmt.Errorf("%w\n\nProvide a file or pipe stdin:\n  aispan inspect traces.json\n  aispan demo --stdout | aispan inspect", err)
				}
				return err
			}

			processed := traceio.Process(spans, cmd.ErrOrStderr())
			if len(processed) == 0 {
				return fmt.Errorf("no AI spans survived processing (of %d input spans)", len(spans))
			}

			out := cmd.OutOrStdout()
			if tree {
				traceio.Fprint(out, traceio.BuildTrees(processed, cmd.ErrOrStderr()))
				return nil
			}

			enc := json.NewEncoder(out)
			for _, s := range processed {
				if err := enc.Encode(s); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "input format: auto, stdouttrace, or otlp")
	cmd.Flags().BoolVar(&tree, "tree", false, "render spans as indented trees instead of JSON lines")

	return cmd
}
