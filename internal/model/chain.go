package model

// Verdict is the chain-level assessment. Always one of the four enumerated
// values below; never free text.
type Verdict string

const (
	VerdictConsistent         Verdict = "consistent"
	VerdictPartiallySupported Verdict = "partially supported"
	VerdictContradicted       Verdict = "contradicted"
	VerdictSpeculative        Verdict = "speculative"
)

// Valid reports whether v is one of the four enumerated verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictConsistent, VerdictPartiallySupported, VerdictContradicted, VerdictSpeculative:
		return true
	}
	return false
}

// Modality classifies how a source relates to a matched claim.
type Modality string

const (
	ModalityAffirmation Modality = "affirmation"
	ModalityDenial      Modality = "denial"
	ModalitySpeculation Modality = "speculation"
)

// Votes tallies per-source modality classifications for one side of a
// candidate pair.
type Votes struct {
	Affirmation int `json:"affirmation"`
	Denial      int `json:"denial"`
	Speculation int `json:"speculation"`
}

// Add increments the tally for the given modality.
func (v *Votes) Add(m Modality) {
	switch m {
	case ModalityAffirmation:
		v.Affirmation++
	case ModalityDenial:
		v.Denial++
	case ModalitySpeculation:
		v.Speculation++
	}
}

// Total returns the number of sources that contributed any signal.
func (v Votes) Total() int {
	return v.Affirmation + v.Denial + v.Speculation
}

// Candidate is one raw (premise, consequence, reasoning) triple proposed by
// the generation collaborator. Ordering is preserved and duplicates are
// permitted; the core never dedups candidates.
type Candidate struct {
	Premise     string `json:"premise"`
	Consequence string `json:"consequence"`
	Reasoning   string `json:"reasoning,omitempty"`
}

// ImplicationStep is one logical edge premise -> conclusion with its
// per-source evidence lists and a human-readable assessment.
type ImplicationStep struct {
	Premise    string `json:"premise"`
	Conclusion string `json:"conclusion"`

	// Source URLs that affirm the premise and affirm or speculate on the
	// conclusion. Order-preserving.
	SupportingSources []string `json:"supporting_sources"`

	// Source URLs that affirm the premise but deny the conclusion.
	RefutingSources []string `json:"refuting_sources"`

	Assessment string `json:"assessment"`
}

// ImplicationChain is a claimed causal/logical link between statements,
// with evidence and an overall verdict. The current engine emits single-step
// chains; the model supports more.
type ImplicationChain struct {
	Description       string            `json:"description"`
	Steps             []ImplicationStep `json:"steps"`
	OverallAssessment Verdict           `json:"overall_assessment"`
	Notes             string            `json:"notes,omitempty"`
}

// ChainSet is the pre-refinement output of the verification engine.
type ChainSet struct {
	Statement         string             `json:"statement"`
	ImplicationChains []ImplicationChain `json:"implication_chains"`
}
