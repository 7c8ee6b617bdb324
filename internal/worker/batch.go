package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Runner analyzes a single statement end to end.
type Runner interface {
	Run(ctx context.Context, statement string) error
}

// RunJob analyzes one statement through a Runner.
type RunJob struct {
	Statement string
	Runner    Runner
}

// Execute runs the analysis for the job's statement.
func (j *RunJob) Execute(ctx context.Context) Result {
	err := j.Runner.Run(ctx, j.Statement)
	return &RunResult{Statement: j.Statement, Error: err}
}

// RunResult is the outcome of one statement run.
type RunResult struct {
	Statement string
	Error     error
}

// GetError returns the run's error, if any.
func (r *RunResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple statements concurrently.
type BatchProcessor struct {
	runner      Runner
	concurrency int
}

// NewBatchProcessor creates a batch processor over the given runner.
func NewBatchProcessor(runner Runner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessStatements runs each statement through the runner, at most
// concurrency at a time. Per-statement failures are reported in the
// results, never propagated.
func (b *BatchProcessor) ProcessStatements(ctx context.Context, statements []string) []*RunResult {
	if len(statements) == 0 {
		return []*RunResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, statement := range statements {
		pool.Submit(&RunJob{
			Statement: statement,
			Runner:    b.runner,
		})
	}

	results := pool.Wait()

	runResults := make([]*RunResult, len(results))
	for i, result := range results {
		runResults[i] = result.(*RunResult)
	}
	return runResults
}

// ProcessFile reads statements from a file and analyzes them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*RunResult, error) {
	statements, err := ReadStatementsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read statements: %w", err)
	}
	return b.ProcessStatements(ctx, statements), nil
}

// ReadStatementsFromFile reads statements from a file, one per line.
// Blank lines and # comments are skipped; duplicate statements collapse
// to one run.
func ReadStatementsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var statements []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			statements = append(statements, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return statements, nil
}
