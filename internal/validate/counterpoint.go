package validate

import (
	"strings"

	"github.com/pkrasavin/contrario/internal/model"
)

// Counterpoints cleans a raw generated counterpoint list: out-of-range
// indices, unknown types, empty text and disallowed source URLs disqualify
// an item; an unknown strength degrades to moderate rather than dropping
// the item. Valid siblings always survive.
func Counterpoints(raw []model.Counterpoint, chains []model.ImplicationChain, allowed URLSet) []model.Counterpoint {
	kept := make([]model.Counterpoint, 0, len(raw))

	for _, cp := range raw {
		cp.ID = strings.TrimSpace(cp.ID)
		cp.Text = strings.TrimSpace(cp.Text)
		if cp.ID == "" || cp.Text == "" {
			continue
		}
		if cp.TargetChainIndex < 0 || cp.TargetChainIndex >= len(chains) {
			continue
		}
		if cp.TargetStepIndex < 0 || cp.TargetStepIndex >= len(chains[cp.TargetChainIndex].Steps) {
			continue
		}
		if !cp.Type.Valid() {
			continue
		}
		if !cp.Strength.Valid() {
			cp.Strength = model.StrengthModerate
		}
		cp.BasedOnSources = allowed.FilterURLs(cp.BasedOnSources)
		kept = append(kept, cp)
	}

	return kept
}
