// Package match implements the fuzzy claim matcher: given a candidate
// sentence and a source's recorded claims, decide whether the source
// affirms, denies or speculates on the candidate.
package match

import (
	"strings"

	"github.com/pkrasavin/contrario/internal/model"
)

// DefaultThreshold is the minimum similarity for a claim to count as a
// match candidate.
const DefaultThreshold = 0.3

// Keyword families for classifying a claim's free-text modality. Checked in
// order: denial first, then affirmation, then speculation.
var (
	denialKeywords      = []string{"denies", "denied", "refutes", "refuted", "false"}
	affirmationKeywords = []string{"reports", "reported", "claims", "claimed", "alleges", "stated"}
	speculationKeywords = []string{"alleged", "allegedly", "suggests", "may", "might", "possibly"}
)

// Normalize lowercases text and splits it into words, stripping commas and
// periods. An empty result means the text carries no matchable content.
func Normalize(text string) []string {
	replaced := strings.NewReplacer(",", " ", ".", " ").Replace(strings.ToLower(text))
	fields := strings.Fields(replaced)
	return fields
}

// Similarity measures how much of the candidate is covered by the claim:
// |intersection| / |candidate word set|. Deliberately asymmetric: a short
// candidate fully contained in a long claim scores 1.0. Zero overlap always
// scores 0, regardless of set sizes.
func Similarity(candidateWords, claimWords []string) float64 {
	if len(candidateWords) == 0 || len(claimWords) == 0 {
		return 0
	}

	candidateSet := make(map[string]bool, len(candidateWords))
	for _, w := range candidateWords {
		candidateSet[w] = true
	}
	claimSet := make(map[string]bool, len(claimWords))
	for _, w := range claimWords {
		claimSet[w] = true
	}

	inter := 0
	for w := range candidateSet {
		if claimSet[w] {
			inter++
		}
	}
	if inter == 0 {
		return 0
	}
	return float64(inter) / float64(len(candidateSet))
}

// ClassifyModality maps a claim's free-text modality into affirmation,
// denial or speculation. Anything unmatched, including an empty modality,
// classifies as speculation: unclassifiable is the weakest class, not a
// reason to drop the signal.
func ClassifyModality(modality string) model.Modality {
	m := strings.ToLower(modality)

	for _, k := range denialKeywords {
		if strings.Contains(m, k) {
			return model.ModalityDenial
		}
	}
	for _, k := range affirmationKeywords {
		if strings.Contains(m, k) {
			return model.ModalityAffirmation
		}
	}
	for _, k := range speculationKeywords {
		if strings.Contains(m, k) {
			return model.ModalitySpeculation
		}
	}
	return model.ModalitySpeculation
}

// Match fuzzy-matches candidate text against a source's claims. Among claims
// clearing the threshold, the highest-similarity one wins; ties keep the
// first encountered (strictly-greater comparison). Returns ok=false when the
// candidate normalizes to nothing or no claim clears the threshold.
func Match(candidate string, claims []model.Claim) (model.Modality, bool) {
	return MatchThreshold(candidate, claims, DefaultThreshold)
}

// MatchThreshold is Match with an explicit similarity threshold.
func MatchThreshold(candidate string, claims []model.Claim, threshold float64) (model.Modality, bool) {
	candidateWords := Normalize(candidate)
	if len(candidateWords) == 0 {
		return "", false
	}

	bestSim := 0.0
	var bestModality model.Modality
	found := false

	for _, claim := range claims {
		sim := Similarity(candidateWords, Normalize(claim.Text))
		if sim >= threshold && sim > bestSim {
			bestSim = sim
			bestModality = ClassifyModality(claim.Modality)
			found = true
		}
	}

	if !found {
		return "", false
	}
	return bestModality, true
}
