package model

// ClaimConsensus measures how widely a canonical claim is shared across
// sources. Reserved: the current engine never populates it, but the slot is
// part of the report contract.
type ClaimConsensus struct {
	CanonicalClaim      string   `json:"canonical_claim"`
	SupportingSources   []string `json:"supporting_sources"`
	RefutingSources     []string `json:"refuting_sources"`
	IgnoringSources     []string `json:"ignoring_sources"`
	ConsensusAssessment string   `json:"consensus_assessment"`
	Notes               string   `json:"notes,omitempty"`
}

// NarrativePhase describes how coverage changes over a time range. Reserved.
type NarrativePhase struct {
	PhaseName   string   `json:"phase_name"`
	TimeRange   string   `json:"time_range"`
	Description string   `json:"description"`
	KeySources  []string `json:"key_sources"`
}

// Gap is a notable missing piece of evidence or blind spot. Reserved.
type Gap struct {
	Description    string   `json:"description"`
	AffectedChains []string `json:"affected_chains"`
	WhyItMatters   string   `json:"why_it_matters"`
}

// Report is the refined analysis for one statement. The three trailing
// lists are contractually present but always empty in this version: they
// reserve verdict dimensions the engine does not yet compute.
type Report struct {
	Statement         string             `json:"statement"`
	HighLevelSummary  string             `json:"high_level_summary"`
	ImplicationChains []ImplicationChain `json:"implication_chains"`

	ClaimConsensus  []ClaimConsensus `json:"claim_consensus"`
	NarrativePhases []NarrativePhase `json:"narrative_phases"`
	GapsAndCaveats  []Gap            `json:"gaps_and_caveats"`
}

// NewReport builds a Report around a chain set, filling the reserved slots
// with empty (non-nil) lists so the serialized shape is stable.
func NewReport(statement, summary string, chains []ImplicationChain) *Report {
	if chains == nil {
		chains = []ImplicationChain{}
	}
	return &Report{
		Statement:         statement,
		HighLevelSummary:  summary,
		ImplicationChains: chains,
		ClaimConsensus:    []ClaimConsensus{},
		NarrativePhases:   []NarrativePhase{},
		GapsAndCaveats:    []Gap{},
	}
}

// CounterpointType classifies a counterpoint against a chain step.
type CounterpointType string

const (
	CounterSubjectDenial          CounterpointType = "subject_denial"
	CounterAlternativeExplanation CounterpointType = "alternative_explanation"
	CounterScopeLimitation        CounterpointType = "scope_limitation"
	CounterMethodologicalCaveat   CounterpointType = "methodological_caveat"
	CounterValueJudgment          CounterpointType = "value_judgment"
)

// Valid reports whether t is a known counterpoint type.
func (t CounterpointType) Valid() bool {
	switch t {
	case CounterSubjectDenial, CounterAlternativeExplanation, CounterScopeLimitation,
		CounterMethodologicalCaveat, CounterValueJudgment:
		return true
	}
	return false
}

// CounterpointStrength grades how damaging a counterpoint is.
type CounterpointStrength string

const (
	StrengthMinor    CounterpointStrength = "minor"
	StrengthModerate CounterpointStrength = "moderate"
	StrengthStrong   CounterpointStrength = "strong"
)

// Valid reports whether s is a known strength grade.
func (s CounterpointStrength) Valid() bool {
	switch s {
	case StrengthMinor, StrengthModerate, StrengthStrong:
		return true
	}
	return false
}

// Counterpoint is one counterargument attached to a specific chain step.
type Counterpoint struct {
	ID string `json:"id"`

	TargetChainIndex int `json:"target_chain_index"`
	TargetStepIndex  int `json:"target_step_index"`

	Type CounterpointType `json:"type"`
	Text string           `json:"text"`

	// URLs from the run's allowed set; can be empty.
	BasedOnSources []string `json:"based_on_sources"`

	// True when the point goes beyond the explicit content of the sources.
	UsesGeneralKnowledge bool `json:"uses_general_knowledge"`

	Strength CounterpointStrength `json:"strength"`
	Notes    string               `json:"notes,omitempty"`
}

// CounterpointReport is the output of the counterpoint pass.
type CounterpointReport struct {
	Statement        string         `json:"statement"`
	HighLevelSummary string         `json:"high_level_summary"`
	Counterpoints    []Counterpoint `json:"counterpoints"`
}
