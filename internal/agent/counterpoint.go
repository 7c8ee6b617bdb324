package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkrasavin/contrario/internal/llm"
	"github.com/pkrasavin/contrario/internal/model"
	"github.com/pkrasavin/contrario/internal/validate"
)

const counterSystem = "You surface counterarguments and alternative readings of evidence. You respond with raw JSON only, never markdown."

// Counterpoint summaries, mirroring the refinement fallback style.
const (
	counterSummaryFound = "This analysis surfaces counterpoints and alternative perspectives on the " +
		"identified implication chains. It distinguishes between counterpoints grounded " +
		"directly in the collected sources and those that rely on general world " +
		"knowledge or broader contextual reasoning."
	counterSummaryNone = "No substantial counterpoints were identified beyond the existing " +
		"implication analysis. This may indicate that the available sources present " +
		"relatively aligned narratives on the core claims."
)

// Counterpoints proposes counterarguments against specific chain steps.
// Invalid items are dropped by validation; an empty result is a valid
// outcome, not an error.
func (a *Agent) Counterpoints(ctx context.Context, report *model.Report, sources []model.Source) *model.CounterpointReport {
	allowed := validate.NewURLSet(urlsOf(sources))

	out := &model.CounterpointReport{
		Statement:        report.Statement,
		HighLevelSummary: counterSummaryNone,
		Counterpoints:    []model.Counterpoint{},
	}

	if !a.Enabled() || len(report.ImplicationChains) == 0 {
		return out
	}

	prompt := buildCounterpointPrompt(report, sources)

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		System: counterSystem,
		Prompt: prompt,
	})
	if err != nil {
		a.warnf("counterpoint generation failed: %v", err)
		return out
	}

	var raw []model.Counterpoint
	if err := llm.DecodeJSON(resp.Text, &raw); err != nil {
		a.warnf("counterpoint generation returned %v; ignoring", err)
		return out
	}

	kept := validate.Counterpoints(raw, report.ImplicationChains, allowed)
	if a.verbose && len(kept) < len(raw) {
		a.warnf("counterpoints: %d item(s) rejected by validation", len(raw)-len(kept))
	}

	out.Counterpoints = kept
	if len(kept) > 0 {
		out.HighLevelSummary = counterSummaryFound
	}
	return out
}

func buildCounterpointPrompt(report *model.Report, sources []model.Source) string {
	reportJSON, _ := json.Marshal(report)
	sourcesJSON, _ := json.Marshal(sources)
	allowedJSON, _ := json.Marshal(urlsOf(sources))

	return fmt.Sprintf(`The upstream analysis has already gathered sources, extracted key claims,
built implication chains and assessed how well each link is supported.

Your task: propose thoughtful counterpoints for specific implication chains
and steps. Counterpoint types:

  - subject_denial: direct denials by actors in the sources.
  - alternative_explanation: plausible alternative causal stories consistent with the evidence.
  - scope_limitation: overgeneralization, cherry-picking, or missing context.
  - methodological_caveat: weaknesses in evidence (single source, unverified allegation, etc.).
  - value_judgment: where the language reflects opinion or framing rather than fact.

Constraints:
- Base your reasoning primarily on the provided analysis and articles.
- You MAY use general world knowledge for context, but any such point must
  set "uses_general_knowledge": true.
- You MUST NOT introduce new URLs; "based_on_sources" entries must come from
  the allowed list (it may be empty).

Return ONLY a JSON array of objects with keys: "id", "target_chain_index",
"target_step_index", "type", "text", "based_on_sources",
"uses_general_knowledge", "strength" ("minor" | "moderate" | "strong"),
"notes". Do NOT wrap the JSON in markdown fences.

Analysis (JSON):
%s

Articles (JSON):
%s

Allowed URLs:
%s`, reportJSON, sourcesJSON, allowedJSON)
}
