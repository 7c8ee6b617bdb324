// Package pipeline orchestrates a full statement analysis: discover
// sources, extract structured claims, generate and verify implication
// chains, refine, and persist the results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pkrasavin/contrario/internal/agent"
	"github.com/pkrasavin/contrario/internal/chain"
	"github.com/pkrasavin/contrario/internal/discover"
	"github.com/pkrasavin/contrario/internal/extract"
	"github.com/pkrasavin/contrario/internal/llm"
	"github.com/pkrasavin/contrario/internal/model"
	"github.com/pkrasavin/contrario/internal/store"
)

// ErrNotAnalyzed is returned when a command needs a prior analysis for a
// statement and none is stored.
var ErrNotAnalyzed = errors.New("statement has not been analyzed")

// Discoverer finds candidate sources for a statement.
type Discoverer interface {
	Search(ctx context.Context, statement string) ([]model.Source, error)
}

// Extractor turns URLs into structured sources.
type Extractor interface {
	ExtractAll(ctx context.Context, urls []string) ([]model.Source, error)
}

// Pipeline wires the collaborators for statement analysis.
type Pipeline struct {
	discoverer Discoverer
	extractor  Extractor
	agent      *agent.Agent
	records    *store.Records
	renderer   *Renderer
	config     *model.Config
}

// NewPipeline assembles a pipeline from configuration. The extraction API
// is preferred; without an API key the local fetch-and-parse path is used.
// A missing LLM provider disables generation but not the rest of the run.
func NewPipeline(cfg *model.Config) *Pipeline {
	var extractor Extractor
	apiClient := extract.NewClient(cfg.Extract, cfg.Output.Verbose)
	if apiClient.Available() {
		extractor = apiClient
	} else {
		fmt.Fprintf(os.Stderr, "Warning: no extraction API key, falling back to direct page fetching\n")
		extractor = extract.NewLocal(cfg.HTTP, cfg.Output.Verbose)
	}

	var provider llm.Provider
	if cfg.LLM.Provider != "" {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			provider = p
		}
	}

	var records *store.Records
	if cfg.Store.Enabled && cfg.Store.Dir != "" {
		records = store.NewRecords(store.NewLayeredStore(cfg.Store.MemoryTTL, cfg.Store.Dir))
	}

	return &Pipeline{
		discoverer: discover.NewClient(cfg.Discover),
		extractor:  extractor,
		agent:      agent.New(provider, cfg.Output.Verbose),
		records:    records,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		config:     cfg,
	}
}

// Analyze runs the full pass for one statement and returns the refined
// report. Discovery or extraction failures abort the run; generation
// failures degrade to the unrefined fallback inside the agent. The
// counterpoint pass runs last, over the refined chains, and its report
// is persisted alongside the implication report.
func (p *Pipeline) Analyze(ctx context.Context, statement string) (*model.Report, error) {
	sources, err := p.gather(ctx, statement)
	if err != nil {
		return nil, err
	}

	report := p.buildReport(ctx, statement, sources)

	if p.records != nil {
		if err := p.records.SaveReport(report); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to persist report: %v\n", err)
		}
	}

	counter := p.agent.Counterpoints(ctx, report, sources)
	if p.records != nil {
		if err := p.records.SaveCounterpoints(counter); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to persist counterpoints: %v\n", err)
		}
	}
	return report, nil
}

// gather discovers and extracts the statement's source set, persisting it
// for later passes.
func (p *Pipeline) gather(ctx context.Context, statement string) ([]model.Source, error) {
	discovered, err := p.discoverer.Search(ctx, statement)
	if err != nil {
		return nil, fmt.Errorf("discover sources: %w", err)
	}

	set := model.SourceSet{Statement: statement, Sources: discovered}
	sources, err := p.extractor.ExtractAll(ctx, set.URLSet())
	if err != nil {
		return nil, fmt.Errorf("extract sources: %w", err)
	}

	// Carry discovery metadata forward where extraction returned none
	byURL := make(map[string]model.Source, len(discovered))
	for i := range discovered {
		byURL[discovered[i].URL] = discovered[i]
	}
	for i := range sources {
		d, ok := byURL[sources[i].URL]
		if !ok {
			continue
		}
		if sources[i].Title == "" {
			sources[i].Title = d.Title
		}
		if sources[i].SourceName == "" {
			sources[i].SourceName = d.SourceName
		}
		if sources[i].PublishDate == "" {
			sources[i].PublishDate = d.PublishDate
		}
		if sources[i].SourceType == "" {
			sources[i].SourceType = d.SourceType
		}
		if sources[i].SourceClass == "" {
			sources[i].SourceClass = d.SourceClass
		}
		if sources[i].Country == "" {
			sources[i].Country = d.Country
		}
	}

	if p.records != nil {
		saved := model.SourceSet{Statement: statement, Sources: sources}
		if err := p.records.SaveSources(&saved); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to persist sources: %v\n", err)
		}
	}
	return sources, nil
}

// buildReport runs generation, verification and refinement over an
// already-extracted source set.
func (p *Pipeline) buildReport(ctx context.Context, statement string, sources []model.Source) *model.Report {
	candidates := p.agent.GenerateCandidates(ctx, statement, sources)
	chains := chain.Build(statement, candidates, sources)
	return p.agent.Refine(ctx, chains, sources)
}

// Chains returns the stored report for a statement, rebuilding it from
// the stored source set when only the sources survive. Returns
// ErrNotAnalyzed when neither record exists.
func (p *Pipeline) Chains(ctx context.Context, statement string) (*model.Report, error) {
	if p.records == nil {
		return nil, fmt.Errorf("%w: persistence is disabled", ErrNotAnalyzed)
	}

	report, found, err := p.records.LoadReport(statement)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if found {
		return report, nil
	}

	set, found, err := p.records.LoadSources(statement)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNotAnalyzed, statement)
	}

	report = p.buildReport(ctx, statement, set.Sources)
	if err := p.records.SaveReport(report); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to persist report: %v\n", err)
	}
	return report, nil
}

// Counterpoints runs the counterpoint pass over a statement's stored
// analysis and persists the result. Requires a prior Analyze or Chains.
func (p *Pipeline) Counterpoints(ctx context.Context, statement string) (*model.CounterpointReport, error) {
	if p.records == nil {
		return nil, fmt.Errorf("%w: persistence is disabled", ErrNotAnalyzed)
	}

	report, found, err := p.records.LoadReport(statement)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrNotAnalyzed, statement)
	}

	var sources []model.Source
	if set, found, err := p.records.LoadSources(statement); err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	} else if found {
		sources = set.Sources
	}

	counter := p.agent.Counterpoints(ctx, report, sources)
	if err := p.records.SaveCounterpoints(counter); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to persist counterpoints: %v\n", err)
	}
	return counter, nil
}

// Run analyzes a statement and renders the summary to stdout. It is the
// unit of work for batch processing.
func (p *Pipeline) Run(ctx context.Context, statement string) error {
	report, err := p.Analyze(ctx, statement)
	if err != nil {
		return err
	}
	p.renderer.RenderSummary(report)
	return nil
}

// RenderReport writes the report to the requested outputs and prints the
// summary.
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}

// RenderCounterpoints writes the counterpoint report and prints its
// summary.
func (p *Pipeline) RenderCounterpoints(report *model.CounterpointReport, jsonPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("Wrote JSON: %s\n", jsonPath)
		}
	}

	p.renderer.RenderCounterpointSummary(report)
	return nil
}
