package chain

import (
	"fmt"

	"github.com/pkrasavin/contrario/internal/model"
)

// Assemble packages one candidate pair, its aggregated evidence and its
// verdict into a named implication chain. Index is 1-based generation
// order; the description is stable only within a run.
func Assemble(index int, cand model.Candidate, ev Evidence) model.ImplicationChain {
	verdict, assessment := AssignVerdict(ev.Supporting, ev.Refuting, ev.PremiseVotes)

	step := model.ImplicationStep{
		Premise:           cand.Premise,
		Conclusion:        cand.Consequence,
		SupportingSources: append([]string{}, ev.Supporting...),
		RefutingSources:   append([]string{}, ev.Refuting...),
		Assessment:        assessment,
	}

	notes := fmt.Sprintf(
		"Generation reasoning: %s. Premise votes: affirmation=%d denial=%d speculation=%d. Consequence votes: affirmation=%d denial=%d speculation=%d.",
		cand.Reasoning,
		ev.PremiseVotes.Affirmation, ev.PremiseVotes.Denial, ev.PremiseVotes.Speculation,
		ev.ConsequenceVotes.Affirmation, ev.ConsequenceVotes.Denial, ev.ConsequenceVotes.Speculation,
	)

	return model.ImplicationChain{
		Description:       fmt.Sprintf("Implication chain %d: %s -> %s", index, cand.Premise, cand.Consequence),
		Steps:             []model.ImplicationStep{step},
		OverallAssessment: verdict,
		Notes:             notes,
	}
}

// Build runs the full verification phase: for every candidate pair, in
// order, aggregate evidence across the sources and assemble a verdicted
// chain. Each pair is independent of every other; the work is pure
// computation over in-memory data.
func Build(statement string, candidates []model.Candidate, sources []model.Source) model.ChainSet {
	chains := make([]model.ImplicationChain, 0, len(candidates))
	for i, cand := range candidates {
		ev := Aggregate(cand.Premise, cand.Consequence, sources)
		chains = append(chains, Assemble(i+1, cand, ev))
	}
	return model.ChainSet{
		Statement:         statement,
		ImplicationChains: chains,
	}
}
