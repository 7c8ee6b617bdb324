package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkrasavin/contrario/internal/pipeline"
)

var (
	counterJSON    string
	counterTimeout time.Duration
)

// counterCmd represents the counter command
var counterCmd = &cobra.Command{
	Use:   "counter <statement>",
	Short: "Generate counterpoints against a statement's implication chains",
	Long: `Counter runs the counterpoint pass over a previously analyzed
statement: denials by the subjects, alternative explanations, scope
limitations, methodological caveats and value-judgment framing, each
tied to a specific chain and step.

Requires a prior 'contrario analyze' and an LLM provider.

Example:
  contrario counter "company X covered up the safety report" --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runCounter,
}

func init() {
	rootCmd.AddCommand(counterCmd)

	counterCmd.Flags().StringVar(&counterJSON, "json", "", "output JSON path")
	counterCmd.Flags().DurationVar(&counterTimeout, "timeout", 5*time.Minute, "timeout for counterpoint generation")
	counterCmd.Flags().StringVar(&storeDir, "store-dir", "", "record store directory (default: $HOME/.contrario/store)")
	counterCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	counterCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runCounter(cmd *cobra.Command, args []string) error {
	statement := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg)

	report, err := p.Counterpoints(ctx, statement)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotAnalyzed) {
			return fmt.Errorf("no analysis found for %q; run 'contrario analyze' first", statement)
		}
		return fmt.Errorf("counterpoints: %w", err)
	}

	if err := p.RenderCounterpoints(report, counterJSON, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
