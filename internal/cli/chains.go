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
	chainsJSON    string
	chainsMD      string
	chainsTimeout time.Duration
)

// chainsCmd represents the chains command
var chainsCmd = &cobra.Command{
	Use:   "chains <statement>",
	Short: "Show the implication chains for a previously analyzed statement",
	Long: `Chains loads the stored implication report for a statement. If only
the source set survives (for example after changing generation settings),
the chains are rebuilt from the stored sources without re-fetching.

Example:
  contrario chains "company X covered up the safety report"
  contrario chains "..." --json chains.json --md chains.md`,
	Args: cobra.ExactArgs(1),
	RunE: runChains,
}

func init() {
	rootCmd.AddCommand(chainsCmd)

	chainsCmd.Flags().StringVar(&chainsJSON, "json", "", "output JSON path")
	chainsCmd.Flags().StringVar(&chainsMD, "md", "", "output Markdown path")
	chainsCmd.Flags().DurationVar(&chainsTimeout, "timeout", 5*time.Minute, "timeout for rebuilding chains")
	chainsCmd.Flags().StringVar(&storeDir, "store-dir", "", "record store directory (default: $HOME/.contrario/store)")
	chainsCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider used when rebuilding (openai, anthropic, ollama)")
	chainsCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runChains(cmd *cobra.Command, args []string) error {
	statement := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), chainsTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg)

	report, err := p.Chains(ctx, statement)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotAnalyzed) {
			return fmt.Errorf("no analysis found for %q; run 'contrario analyze' first", statement)
		}
		return fmt.Errorf("load chains: %w", err)
	}

	if err := p.RenderReport(report, chainsJSON, chainsMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
