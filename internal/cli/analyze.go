package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkrasavin/contrario/internal/model"
	"github.com/pkrasavin/contrario/internal/pipeline"
	"github.com/pkrasavin/contrario/internal/worker"
)

var (
	outJSON        string
	outMD          string
	runTimeout     time.Duration
	statementsFile string
	concurrency    int
	searchLimit    int
	storeDir       string
	noStore        bool
	batchSize      int
	pollInterval   time.Duration
	jobTimeout     time.Duration
	noFooter       bool
	llmProvider    string
	llmModel       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [statement]",
	Short: "Analyze a statement's coverage and build implication chains",
	Long: `Analyze runs the full pass for a statement:
- Discover articles covering the statement
- Extract key claims, modalities and narrative summaries
- Generate candidate implication pairs from the coverage
- Verify each implication against the collected claims
- Refine the chains and persist the report

Requires FIRECRAWL_API_KEY for discovery and extraction. Generation is
optional; without an LLM provider the run degrades to extraction and
verification of nothing, so --llm-provider is effectively required for
useful chains.

Example:
  contrario analyze "company X covered up the safety report"
  contrario analyze "..." --llm-provider openai --json report.json --md report.md
  contrario analyze --file statements.txt --concurrency 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Run flags
	analyzeCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "overall run timeout (extraction jobs alone may take 5 minutes)")
	analyzeCmd.Flags().StringVarP(&statementsFile, "file", "f", "", "analyze statements from a file, one per line")
	analyzeCmd.Flags().IntVar(&concurrency, "concurrency", 2, "concurrent statement runs in file mode")
	analyzeCmd.Flags().IntVar(&searchLimit, "limit", 5, "max articles to discover (capped at 20)")

	// Extraction flags
	analyzeCmd.Flags().IntVar(&batchSize, "batch-size", 0, "URLs per extraction job (max 5)")
	analyzeCmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "extraction job poll interval (default 5s)")
	analyzeCmd.Flags().DurationVar(&jobTimeout, "job-timeout", 0, "extraction job deadline (default 5m)")

	// Store flags
	analyzeCmd.Flags().StringVar(&storeDir, "store-dir", "", "record store directory (default: $HOME/.contrario/store)")
	analyzeCmd.Flags().BoolVar(&noStore, "no-store", false, "disable record persistence")

	// LLM flags
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for generation (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name (provider default if empty)")
}

// buildConfig assembles runtime configuration from defaults, the config
// file, environment and flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	firecrawlKey := os.Getenv("FIRECRAWL_API_KEY")
	if cfg.Discover.APIKey == "" {
		cfg.Discover.APIKey = firecrawlKey
	}
	if cfg.Extract.APIKey == "" {
		cfg.Extract.APIKey = firecrawlKey
	}

	if searchLimit > 0 {
		cfg.Discover.Limit = searchLimit
	}
	if batchSize > 0 {
		cfg.Extract.BatchSize = batchSize
	}
	if pollInterval > 0 {
		cfg.Extract.PollInterval = pollInterval
	}
	if jobTimeout > 0 {
		cfg.Extract.JobTimeout = jobTimeout
	}
	if storeDir != "" {
		cfg.Store.Dir = storeDir
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = defaultStoreDir()
	}
	if noStore {
		cfg.Store.Enabled = false
	}
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter

	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if err := resolveLLMKey(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveLLMKey pulls the provider API key from the environment. Keys
// never come from the config file.
func resolveLLMKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "":
		// Generation disabled
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if statementsFile == "" && len(args) == 0 {
		return fmt.Errorf("provide a statement or --file")
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	p := pipeline.NewPipeline(cfg)

	if statementsFile != "" {
		return runAnalyzeFile(ctx, p, statementsFile)
	}

	statement := args[0]
	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", statement)
	}

	report, err := p.Analyze(ctx, statement)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

func runAnalyzeFile(ctx context.Context, p *pipeline.Pipeline, file string) error {
	processor := worker.NewBatchProcessor(p, concurrency)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	failures := 0
	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "Error: %q: %v\n", result.Statement, result.Error)
		}
	}

	fmt.Fprintf(os.Stderr, "\nAnalyzed %d statement(s), %d failed\n", len(results), failures)
	if failures > 0 {
		return fmt.Errorf("%d of %d statements failed", failures, len(results))
	}
	return nil
}
