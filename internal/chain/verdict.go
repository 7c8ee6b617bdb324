package chain

import "github.com/pkrasavin/contrario/internal/model"

// Step-level assessment strings. Fixed wording: downstream reports and
// tests key off these.
const (
	assessMultiSource   = "well supported by multiple sources with no clear refutations"
	assessSingleSource  = "weakly supported (single-source implication)"
	assessContested     = "contested: at least one source affirms the premise but denies the consequence"
	assessPremiseDenied = "premise itself appears more often denied than affirmed"
	assessUncorroborate = "inferred only by generation, with no strong article-level corroboration"
)

// AssignVerdict maps aggregated evidence to a chain verdict and a
// step-level assessment. Pure function; branch ORDER is the policy:
//
//  1. multiple supporters, no refuters     -> consistent
//  2. exactly one supporter, no refuters   -> partially supported
//  3. any refuter                          -> contradicted (refutation
//     dominates regardless of how many supporters exist)
//  4. no signal either way                 -> contradicted if the premise is
//     denied more often than affirmed, else speculative
func AssignVerdict(supporting, refuting []string, premiseVotes model.Votes) (model.Verdict, string) {
	switch {
	case len(supporting) > 1 && len(refuting) == 0:
		return model.VerdictConsistent, assessMultiSource
	case len(supporting) == 1 && len(refuting) == 0:
		return model.VerdictPartiallySupported, assessSingleSource
	case len(refuting) > 0:
		return model.VerdictContradicted, assessContested
	default:
		if premiseVotes.Denial > premiseVotes.Affirmation {
			return model.VerdictContradicted, assessPremiseDenied
		}
		return model.VerdictSpeculative, assessUncorroborate
	}
}
