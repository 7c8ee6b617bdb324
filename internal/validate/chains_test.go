package validate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pkrasavin/contrario/internal/model"
)

func testSources() []model.Source {
	return []model.Source{
		{
			URL:              "https://one.example/a",
			NarrativeSummary: "Company X raised prices and consumers protested across the country.",
			Claims: []model.Claim{
				{Text: "company x raised prices", Modality: "reported"},
			},
		},
		{
			URL: "https://two.example/b",
			Claims: []model.Claim{
				{Text: "consumers protested in several cities", Modality: "reported"},
			},
		},
	}
}

func validChain() model.ImplicationChain {
	return model.ImplicationChain{
		Description: "Implication chain 1: company x raised prices -> consumers protested",
		Steps: []model.ImplicationStep{
			{
				Premise:           "company x raised prices",
				Conclusion:        "consumers protested in several cities",
				SupportingSources: []string{"https://one.example/a"},
				RefutingSources:   []string{},
				Assessment:        "weakly supported (single-source implication)",
			},
		},
		OverallAssessment: model.VerdictPartiallySupported,
	}
}

func TestChain_Valid(t *testing.T) {
	sources := testSources()
	allowed := NewURLSet([]string{"https://one.example/a", "https://two.example/b"})

	c := validChain()
	if err := Chain(&c, allowed, sources); err != nil {
		t.Fatalf("expected valid chain, got %v", err)
	}
}

func TestChain_FiltersUnknownLabels(t *testing.T) {
	sources := testSources()
	allowed := NewURLSet([]string{"https://one.example/a"})

	c := validChain()
	c.Steps[0].SupportingSources = []string{"https://one.example/a", "unknown_source", "The Daily Bugle"}

	if err := Chain(&c, allowed, sources); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"https://one.example/a"}, c.Steps[0].SupportingSources); diff != "" {
		t.Errorf("unknown labels survived (-want +got):\n%s", diff)
	}
}

func TestChain_RejectsBadVerdict(t *testing.T) {
	c := validChain()
	c.OverallAssessment = "mostly true"
	if err := Chain(&c, NewURLSet(nil), testSources()); err == nil {
		t.Error("expected rejection of non-enumerated verdict")
	}
}

func TestChain_RejectsUngroundablePremise(t *testing.T) {
	c := validChain()
	c.Steps[0].Premise = "aliens influenced quarterly earnings announcements worldwide"
	if err := Chain(&c, NewURLSet(nil), testSources()); err == nil {
		t.Error("expected rejection of ungroundable premise")
	}
}

func TestGrounded_NarrativeSummaryCounts(t *testing.T) {
	sources := testSources()
	// Not a key claim of any source, but covered by source one's narrative.
	if !Grounded("consumers protested across the country", sources) {
		t.Error("expected narrative summary to ground the text")
	}
}

func TestReport_DropsOffendersKeepsSiblings(t *testing.T) {
	sources := testSources()
	allowed := NewURLSet([]string{"https://one.example/a", "https://two.example/b"})

	bad := validChain()
	bad.OverallAssessment = "definitely true"

	r := model.NewReport("statement", "summary", []model.ImplicationChain{validChain(), bad, validChain()})

	dropped := Report(r, allowed, sources, false)
	if dropped != 1 {
		t.Errorf("expected 1 dropped chain, got %d", dropped)
	}
	if len(r.ImplicationChains) != 2 {
		t.Errorf("expected 2 surviving chains, got %d", len(r.ImplicationChains))
	}
	if r.ClaimConsensus == nil || r.NarrativePhases == nil || r.GapsAndCaveats == nil {
		t.Error("reserved slots must stay non-nil empty lists")
	}
}

func TestFallback_FiltersListsKeepsChains(t *testing.T) {
	allowed := NewURLSet([]string{"https://one.example/a"})

	c := validChain()
	c.Steps[0].Premise = "not groundable anywhere at all honestly"
	c.Steps[0].SupportingSources = []string{"unknown_source", "https://one.example/a"}

	out := Fallback([]model.ImplicationChain{c}, allowed)
	if len(out) != 1 {
		t.Fatalf("fallback must keep chains, got %d", len(out))
	}
	if diff := cmp.Diff([]string{"https://one.example/a"}, out[0].Steps[0].SupportingSources); diff != "" {
		t.Errorf("fallback did not filter labels (-want +got):\n%s", diff)
	}
	// Original slice untouched.
	if len(c.Steps[0].SupportingSources) != 2 {
		t.Error("fallback mutated its input")
	}
}
