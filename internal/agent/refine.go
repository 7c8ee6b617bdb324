package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pkrasavin/contrario/internal/llm"
	"github.com/pkrasavin/contrario/internal/model"
	"github.com/pkrasavin/contrario/internal/validate"
)

const refineSystem = "You are a critical analyst refining implication chains against a fixed evidence base. You respond with raw JSON only, never markdown."

// Fallback summaries, used when the refinement pass is unavailable or its
// output is rejected wholesale.
const (
	summaryWithChains = "This analysis identifies one or more chains of implications between claims " +
		"found in the analyzed articles and evaluates how well each step is supported " +
		"by the available sources. Claim consensus, narrative phases and gap analysis " +
		"are not computed in this version."
	summaryNoChains = "No clear implication chains were detected from the narrative summaries of " +
		"the analyzed articles. Claim consensus, narrative phases and gap analysis " +
		"are not computed in this version."
)

// Refine runs the grounding pass over an assembled chain set: premises and
// conclusions are rewritten or dropped if ungroundable, evidence lists are
// re-derived, and the verdict is re-assigned from the enumeration. The
// output is a hard contract enforced by validation, not trusted: anything
// that fails falls back to the sanitized unrefined chain set.
func (a *Agent) Refine(ctx context.Context, chains model.ChainSet, sources []model.Source) *model.Report {
	allowed := validate.NewURLSet(urlsOf(sources))

	if !a.Enabled() || len(chains.ImplicationChains) == 0 {
		return fallbackReport(chains, allowed)
	}

	prompt := buildRefinePrompt(chains, sources)

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		System: refineSystem,
		Prompt: prompt,
	})
	if err != nil {
		a.warnf("refinement failed: %v; keeping unrefined chains", err)
		return fallbackReport(chains, allowed)
	}

	var refined model.Report
	if err := llm.DecodeJSON(resp.Text, &refined); err != nil {
		a.warnf("refinement returned %v; keeping unrefined chains", err)
		return fallbackReport(chains, allowed)
	}

	// The statement is never the model's to change
	refined.Statement = chains.Statement

	dropped := validate.Report(&refined, allowed, sources, a.verbose)
	if a.verbose && dropped > 0 {
		a.warnf("refinement: %d chain(s) rejected by validation", dropped)
	}

	if refined.HighLevelSummary == "" {
		if len(refined.ImplicationChains) > 0 {
			refined.HighLevelSummary = summaryWithChains
		} else {
			refined.HighLevelSummary = summaryNoChains
		}
	}
	return &refined
}

// fallbackReport packages the unrefined chain set, with evidence lists
// reduced to the closed URL world so fallback output still satisfies the
// closed-world invariant.
func fallbackReport(chains model.ChainSet, allowed validate.URLSet) *model.Report {
	sanitized := validate.Fallback(chains.ImplicationChains, allowed)
	summary := summaryNoChains
	if len(sanitized) > 0 {
		summary = summaryWithChains
	}
	return model.NewReport(chains.Statement, summary, sanitized)
}

func urlsOf(sources []model.Source) []string {
	var urls []string
	for i := range sources {
		if sources[i].URL != "" {
			urls = append(urls, sources[i].URL)
		}
	}
	return urls
}

// buildRefinePrompt serializes the chains plus the full source data,
// articles sorted by publish date (empty dates first, plain string order),
// and the allowed URL list.
func buildRefinePrompt(chains model.ChainSet, sources []model.Source) string {
	sorted := make([]model.Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishDate < sorted[j].PublishDate
	})

	chainsJSON, _ := json.Marshal(chains.ImplicationChains)
	sourcesJSON, _ := json.Marshal(sorted)
	allowedJSON, _ := json.Marshal(urlsOf(sources))

	return fmt.Sprintf(`You are refining implication chains built for this statement:

%q

For EACH chain and EACH step:

1. Grounding: the premise and conclusion must be clearly supported by actual
   text from some article's key claims or narrative summary. If a premise or
   conclusion cannot be grounded, either remove that step's chain or rewrite
   the text so it clearly paraphrases what the articles actually say.

2. Supporting and refuting sources: re-derive both lists from the articles.
   Every entry MUST be one of the allowed URLs below. Never invent URLs and
   never carry over publisher names or placeholder labels.

3. Step assessment: a short free-text note on why the step is strong, weak,
   contested or speculative.

4. Chain verdict: overall_assessment MUST be exactly one of "consistent",
   "partially supported", "contradicted", "speculative".

Output a single JSON object with keys: "statement", "high_level_summary"
(2-4 sentences), "implication_chains", and "claim_consensus",
"narrative_phases", "gaps_and_caveats" as empty arrays. Do NOT wrap the JSON
in markdown. Do NOT add commentary.

Current chains:
%s

Articles (sorted by publish date):
%s

Allowed URLs:
%s`, chains.Statement, chainsJSON, sourcesJSON, allowedJSON)
}
