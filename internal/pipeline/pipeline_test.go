package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/pkrasavin/contrario/internal/agent"
	"github.com/pkrasavin/contrario/internal/model"
	"github.com/pkrasavin/contrario/internal/store"
)

type fakeDiscoverer struct {
	sources []model.Source
	err     error
}

func (f *fakeDiscoverer) Search(ctx context.Context, statement string) ([]model.Source, error) {
	return f.sources, f.err
}

type fakeExtractor struct {
	sources []model.Source
	err     error
	got     []string
}

func (f *fakeExtractor) ExtractAll(ctx context.Context, urls []string) ([]model.Source, error) {
	f.got = urls
	return f.sources, f.err
}

func testPipeline(t *testing.T, d Discoverer, e Extractor) *Pipeline {
	t.Helper()
	return &Pipeline{
		discoverer: d,
		extractor:  e,
		agent:      agent.New(nil, false),
		records:    store.NewRecords(store.NewDiskStore(t.TempDir())),
		renderer:   NewRenderer(false),
		config:     model.DefaultConfig(),
	}
}

func TestAnalyze_PersistsSourcesAndReport(t *testing.T) {
	discovered := []model.Source{
		{URL: "https://one.example/a", Title: "A"},
		{URL: "https://two.example/b", Title: "B"},
	}
	extracted := []model.Source{
		{URL: "https://one.example/a", NarrativeSummary: "Company X raised prices."},
		{URL: "https://two.example/b", Title: "Kept", NarrativeSummary: "Consumers protested."},
	}

	p := testPipeline(t, &fakeDiscoverer{sources: discovered}, &fakeExtractor{sources: extracted})

	report, err := p.Analyze(context.Background(), "company x raised prices")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Statement != "company x raised prices" {
		t.Errorf("unexpected statement: %q", report.Statement)
	}
	// No generation provider: no candidates, no chains, fallback summary
	if len(report.ImplicationChains) != 0 {
		t.Errorf("expected no chains without a provider, got %d", len(report.ImplicationChains))
	}
	if report.HighLevelSummary == "" {
		t.Error("expected a fallback summary")
	}

	set, found, err := p.records.LoadSources("company x raised prices")
	if err != nil || !found {
		t.Fatalf("sources not persisted: found=%v err=%v", found, err)
	}
	if len(set.Sources) != 2 {
		t.Fatalf("expected 2 persisted sources, got %d", len(set.Sources))
	}
	// Discovery title fills the gap left by extraction
	if set.Sources[0].Title != "A" {
		t.Errorf("discovery title not carried forward: %+v", set.Sources[0])
	}
	if set.Sources[1].Title != "Kept" {
		t.Errorf("extraction title must win: %+v", set.Sources[1])
	}

	if _, found, _ := p.records.LoadReport("company x raised prices"); !found {
		t.Error("report not persisted")
	}
}

func TestAnalyze_PersistsCounterpointReport(t *testing.T) {
	d := &fakeDiscoverer{sources: []model.Source{{URL: "https://one.example/a", Title: "A"}}}
	e := &fakeExtractor{sources: []model.Source{{URL: "https://one.example/a", NarrativeSummary: "Company X raised prices."}}}
	p := testPipeline(t, d, e)

	statement := "company x raised prices"
	if _, err := p.Analyze(context.Background(), statement); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// The full run ends with the counterpoint pass; even with generation
	// disabled it must leave an empty-but-valid record behind.
	counter, found, err := p.records.LoadCounterpoints(statement)
	if err != nil || !found {
		t.Fatalf("counterpoint report not persisted: found=%v err=%v", found, err)
	}
	if counter.Statement != statement {
		t.Errorf("unexpected statement: %q", counter.Statement)
	}
	if counter.Counterpoints == nil || len(counter.Counterpoints) != 0 {
		t.Errorf("expected empty counterpoint list, got %+v", counter.Counterpoints)
	}
	if counter.HighLevelSummary == "" {
		t.Error("expected a summary on the counterpoint report")
	}
}

func TestAnalyze_DiscoveryFailureAborts(t *testing.T) {
	p := testPipeline(t, &fakeDiscoverer{err: model.ErrNoUpstreamData}, &fakeExtractor{})

	_, err := p.Analyze(context.Background(), "s")
	if !errors.Is(err, model.ErrNoUpstreamData) {
		t.Errorf("expected ErrNoUpstreamData, got %v", err)
	}
}

func TestAnalyze_ExtractionFailureAborts(t *testing.T) {
	d := &fakeDiscoverer{sources: []model.Source{{URL: "https://one.example/a"}}}
	p := testPipeline(t, d, &fakeExtractor{err: model.ErrNoStructuredData})

	_, err := p.Analyze(context.Background(), "s")
	if !errors.Is(err, model.ErrNoStructuredData) {
		t.Errorf("expected ErrNoStructuredData, got %v", err)
	}
}

func TestGather_DeduplicatesURLsForExtraction(t *testing.T) {
	d := &fakeDiscoverer{sources: []model.Source{
		{URL: "https://one.example/a"},
		{URL: "https://one.example/a"},
		{URL: "https://two.example/b"},
	}}
	e := &fakeExtractor{sources: []model.Source{{URL: "https://one.example/a", NarrativeSummary: "x"}}}
	p := testPipeline(t, d, e)

	if _, err := p.gather(context.Background(), "s"); err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(e.got) != 2 {
		t.Errorf("expected deduplicated URLs, got %v", e.got)
	}
}

func TestChains_RebuildsFromStoredSources(t *testing.T) {
	p := testPipeline(t, &fakeDiscoverer{}, &fakeExtractor{})

	set := &model.SourceSet{
		Statement: "company x raised prices",
		Sources:   []model.Source{{URL: "https://one.example/a", NarrativeSummary: "Company X raised prices."}},
	}
	if err := p.records.SaveSources(set); err != nil {
		t.Fatalf("SaveSources: %v", err)
	}

	report, err := p.Chains(context.Background(), "company x raised prices")
	if err != nil {
		t.Fatalf("Chains: %v", err)
	}
	if report.Statement != "company x raised prices" {
		t.Errorf("unexpected statement: %q", report.Statement)
	}
	// The rebuilt report must now be stored
	if _, found, _ := p.records.LoadReport("company x raised prices"); !found {
		t.Error("rebuilt report not persisted")
	}
}

func TestChains_NotAnalyzed(t *testing.T) {
	p := testPipeline(t, &fakeDiscoverer{}, &fakeExtractor{})

	_, err := p.Chains(context.Background(), "never analyzed")
	if !errors.Is(err, ErrNotAnalyzed) {
		t.Errorf("expected ErrNotAnalyzed, got %v", err)
	}
}

func TestCounterpoints_RequiresStoredReport(t *testing.T) {
	p := testPipeline(t, &fakeDiscoverer{}, &fakeExtractor{})

	_, err := p.Counterpoints(context.Background(), "never analyzed")
	if !errors.Is(err, ErrNotAnalyzed) {
		t.Errorf("expected ErrNotAnalyzed, got %v", err)
	}
}

func TestCounterpoints_WithStoredAnalysis(t *testing.T) {
	p := testPipeline(t, &fakeDiscoverer{}, &fakeExtractor{})
	statement := "company x raised prices"

	report := model.NewReport(statement, "summary", nil)
	if err := p.records.SaveReport(report); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	counter, err := p.Counterpoints(context.Background(), statement)
	if err != nil {
		t.Fatalf("Counterpoints: %v", err)
	}
	// Disabled generation yields the empty-but-valid report
	if len(counter.Counterpoints) != 0 {
		t.Errorf("expected no counterpoints, got %d", len(counter.Counterpoints))
	}
	if counter.Statement != statement {
		t.Errorf("unexpected statement: %q", counter.Statement)
	}

	if _, found, _ := p.records.LoadCounterpoints(statement); !found {
		t.Error("counterpoint report not persisted")
	}
}

func TestAnalyze_PersistenceDisabled(t *testing.T) {
	p := testPipeline(t, &fakeDiscoverer{sources: []model.Source{{URL: "https://one.example/a"}}},
		&fakeExtractor{sources: []model.Source{{URL: "https://one.example/a", NarrativeSummary: "x"}}})
	p.records = nil

	if _, err := p.Analyze(context.Background(), "s"); err != nil {
		t.Fatalf("Analyze without persistence: %v", err)
	}
}
