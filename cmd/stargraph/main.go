// stargraph evaluates content against YAML criteria suites with an LLM judge.
//
// Usage:
//
//	stargraph eval --suite=<path> [--content=<path>|-] [--provider=gemini|openai|claude] [--model=<name>]
//	stargraph validate <suite>...
//	stargraph schema binary|numeric
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stargraph",
		Short: "Evaluate LLM output against natural-language criteria",
		Long: "stargraph judges content with an LLM against a suite of binary or numeric\n" +
			"criteria, evaluating every criterion concurrently, and prints the per-criterion\n" +
			"results and the aggregated score as JSON.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      version,
	}
	root.AddCommand(newEvalCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newSchemaCmd())
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
