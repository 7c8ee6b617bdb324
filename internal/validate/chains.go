// Package validate gates everything that comes back from the generation
// collaborator. Nothing an external model produced is trusted structurally:
// verdicts must come from the enumeration, every evidence reference must
// resolve to a known source URL, and every premise/conclusion must be
// groundable in the collected sources.
package validate

import (
	"fmt"
	"os"

	"github.com/pkrasavin/contrario/internal/match"
	"github.com/pkrasavin/contrario/internal/model"
)

// URLSet is the closed world of evidence references for one run.
type URLSet map[string]bool

// NewURLSet builds the allowed set from the run's known source URLs.
func NewURLSet(urls []string) URLSet {
	set := make(URLSet, len(urls))
	for _, u := range urls {
		if u != "" {
			set[u] = true
		}
	}
	return set
}

// FilterURLs drops every label not in the allowed set, preserving order.
// This is where "unknown_source" and publisher-name fallbacks die.
func (s URLSet) FilterURLs(labels []string) []string {
	filtered := make([]string, 0, len(labels))
	for _, l := range labels {
		if s[l] {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// Grounded reports whether text is traceable to some source's claim text or
// narrative summary, using the same coverage similarity as the matcher.
func Grounded(text string, sources []model.Source) bool {
	words := match.Normalize(text)
	if len(words) == 0 {
		return false
	}
	for i := range sources {
		src := &sources[i]
		if _, ok := match.Match(text, src.Claims); ok {
			return true
		}
		if match.Similarity(words, match.Normalize(src.NarrativeSummary)) >= match.DefaultThreshold {
			return true
		}
	}
	return false
}

// Chain checks one implication chain against the run's allowed URLs and
// sources. Evidence lists are filtered in place to the allowed set. An
// error means the chain must be dropped; its siblings proceed.
func Chain(c *model.ImplicationChain, allowed URLSet, sources []model.Source) error {
	if !c.OverallAssessment.Valid() {
		return fmt.Errorf("verdict %q outside the enumeration", c.OverallAssessment)
	}
	if len(c.Steps) == 0 {
		return fmt.Errorf("chain has no steps")
	}

	for i := range c.Steps {
		step := &c.Steps[i]
		if step.Premise == "" || step.Conclusion == "" {
			return fmt.Errorf("step %d has an empty premise or conclusion", i)
		}
		if !Grounded(step.Premise, sources) {
			return fmt.Errorf("step %d premise not groundable in any source", i)
		}
		if !Grounded(step.Conclusion, sources) {
			return fmt.Errorf("step %d conclusion not groundable in any source", i)
		}
		step.SupportingSources = allowed.FilterURLs(step.SupportingSources)
		step.RefutingSources = allowed.FilterURLs(step.RefutingSources)
	}
	return nil
}

// Fallback sanitizes engine-built chains for use when the refinement pass
// is unavailable: evidence lists are reduced to the allowed URL set so that
// publisher-name and "unknown_source" labels never reach persisted output,
// but chains themselves are kept even when their generated premise text is
// not independently groundable.
func Fallback(chains []model.ImplicationChain, allowed URLSet) []model.ImplicationChain {
	out := make([]model.ImplicationChain, len(chains))
	copy(out, chains)
	for i := range out {
		steps := make([]model.ImplicationStep, len(out[i].Steps))
		copy(steps, out[i].Steps)
		for j := range steps {
			steps[j].SupportingSources = allowed.FilterURLs(steps[j].SupportingSources)
			steps[j].RefutingSources = allowed.FilterURLs(steps[j].RefutingSources)
		}
		out[i].Steps = steps
	}
	return out
}

// Report sanitizes a refined report before it is accepted: chains that fail
// validation are dropped, valid siblings are kept, and the reserved slots
// are forced to their contractual empty state. Returns the number of
// dropped chains.
func Report(r *model.Report, allowed URLSet, sources []model.Source, verbose bool) int {
	kept := make([]model.ImplicationChain, 0, len(r.ImplicationChains))
	dropped := 0

	for i := range r.ImplicationChains {
		c := r.ImplicationChains[i]
		if err := Chain(&c, allowed, sources); err != nil {
			dropped++
			if verbose {
				fmt.Fprintf(os.Stderr, "Warning: dropping chain %d: %v\n", i+1, err)
			}
			continue
		}
		kept = append(kept, c)
	}

	r.ImplicationChains = kept
	r.ClaimConsensus = []model.ClaimConsensus{}
	r.NarrativePhases = []model.NarrativePhase{}
	r.GapsAndCaveats = []model.Gap{}
	return dropped
}
