package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkrasavin/contrario/internal/llm"
	"github.com/pkrasavin/contrario/internal/model"
)

const candidateSystem = "You analyze logical implications in news coverage. You respond with raw JSON only, never markdown."

// GenerateCandidates proposes (premise, consequence, reasoning) triples
// from the sources' narrative summaries. Returns an empty list when no
// provider is configured, no summaries exist, or the response is
// unusable; generation unavailability is never fatal. Ordering is
// preserved and duplicates are kept.
func (a *Agent) GenerateCandidates(ctx context.Context, statement string, sources []model.Source) []model.Candidate {
	if !a.Enabled() {
		return nil
	}

	var summaries []string
	for i := range sources {
		if s := sources[i].NarrativeSummary; s != "" {
			summaries = append(summaries, "- "+s)
		}
	}
	if len(summaries) == 0 {
		return nil
	}

	prompt := fmt.Sprintf(`You are helping to analyze logical implications in news coverage about this statement:

%q

You will receive several narrative summaries of articles. From these, identify
logical implication relationships of the form:

  - premise: one event, situation, or claim (A)
  - consequence: another event, situation, or claim (B) that is presented as
                 caused by, resulting from, or logically implied by A
  - reasoning: short explanation of why the articles suggest this implication

Return ONLY a JSON array of objects with keys "premise", "consequence" and
"reasoning". Do NOT wrap the JSON in markdown fences, and do NOT add
explanations.

Summaries:
%s`, statement, strings.Join(summaries, "\n"))

	resp, err := a.provider.Complete(ctx, llm.CompletionRequest{
		System: candidateSystem,
		Prompt: prompt,
	})
	if err != nil {
		a.warnf("candidate generation failed: %v", err)
		return nil
	}

	var raw []struct {
		Premise     string `json:"premise"`
		Consequence string `json:"consequence"`
		Reasoning   string `json:"reasoning"`
	}
	if err := llm.DecodeJSON(resp.Text, &raw); err != nil {
		a.warnf("candidate generation returned %v; ignoring", err)
		return nil
	}

	// Keep only triples with both sides present
	candidates := make([]model.Candidate, 0, len(raw))
	for _, c := range raw {
		premise := strings.TrimSpace(c.Premise)
		consequence := strings.TrimSpace(c.Consequence)
		if premise == "" || consequence == "" {
			continue
		}
		candidates = append(candidates, model.Candidate{
			Premise:     premise,
			Consequence: consequence,
			Reasoning:   strings.TrimSpace(c.Reasoning),
		})
	}
	return candidates
}
