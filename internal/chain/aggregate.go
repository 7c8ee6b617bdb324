// Package chain implements the implication-chain verification engine:
// per-source evidence aggregation, the deterministic verdict policy, and
// chain assembly.
package chain

import (
	"github.com/pkrasavin/contrario/internal/match"
	"github.com/pkrasavin/contrario/internal/model"
)

// Evidence is the aggregated per-pair tabulation over all sources.
type Evidence struct {
	// Supporting lists sources that affirm the premise and affirm or
	// speculate on the consequence. Order follows source encounter order.
	Supporting []string

	// Refuting lists sources that affirm the premise but deny the
	// consequence. Mutually exclusive with Supporting per source.
	Refuting []string

	PremiseVotes     model.Votes
	ConsequenceVotes model.Votes
}

// Aggregate scans every source once for the premise and once for the
// consequence, tallies modality votes, and builds the supporting/refuting
// identity lists. Sources with no match on a side contribute no signal for
// that side: they are excluded from tallies and lists rather than counted
// as neutral.
func Aggregate(premise, consequence string, sources []model.Source) Evidence {
	var ev Evidence

	for i := range sources {
		src := &sources[i]

		premiseMod, premiseOK := match.Match(premise, src.Claims)
		conseqMod, conseqOK := match.Match(consequence, src.Claims)

		if premiseOK {
			ev.PremiseVotes.Add(premiseMod)
		}
		if conseqOK {
			ev.ConsequenceVotes.Add(conseqMod)
		}

		// The identity label can fall back to publisher name or
		// "unknown_source"; refinement validation filters those out later.
		label := src.Identity()

		supports := premiseOK && premiseMod == model.ModalityAffirmation &&
			conseqOK && (conseqMod == model.ModalityAffirmation || conseqMod == model.ModalitySpeculation)
		refutes := premiseOK && premiseMod == model.ModalityAffirmation &&
			conseqOK && conseqMod == model.ModalityDenial

		if supports {
			ev.Supporting = append(ev.Supporting, label)
		}
		if refutes {
			ev.Refuting = append(ev.Refuting, label)
		}
	}

	return ev
}
