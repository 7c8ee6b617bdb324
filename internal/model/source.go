package model

// Claim is a fragment of text attributed to a source, with a free-text
// modality describing how the source relates to it ("reported", "denied",
// "allegedly", ...). The modality is classified later by the matcher.
type Claim struct {
	Text        string `json:"text"`                   // The claim text itself
	Modality    string `json:"modality,omitempty"`     // Free-text certainty/stance
	BlameTarget string `json:"blame_target,omitempty"` // Who the claim blames, if anyone
	Evidence    string `json:"evidence,omitempty"`     // Free-text evidence note
}

// Source is one article or document contributing evidence to a run.
// The URL is the canonical identity within a run. Claims never outlive
// their source.
type Source struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	SourceName  string `json:"source_name,omitempty"`  // Publisher name
	PublishDate string `json:"publish_date,omitempty"` // Free-text/ISO-ish, sortable as string
	SourceType  string `json:"source_type,omitempty"`  // "web" or "news"
	SourceClass string `json:"source_class,omitempty"` // e.g. mainstream, state_media, partisan
	Country     string `json:"source_country,omitempty"`

	Claims           []Claim `json:"key_claims,omitempty"`
	NarrativeSummary string  `json:"narrative_summary,omitempty"`
	Statistics       string  `json:"statistics,omitempty"` // Textual, no numeric parsing
	Stance           string  `json:"stance,omitempty"`
	BiasIndicators   string  `json:"bias_indicators,omitempty"`
}

// Identity returns the canonical label for this source: its URL, falling
// back to the publisher name, then the literal "unknown_source". Only URL
// identities survive refinement validation.
func (s *Source) Identity() string {
	if s.URL != "" {
		return s.URL
	}
	if s.SourceName != "" {
		return s.SourceName
	}
	return "unknown_source"
}

// SourceSet is the full evidence base for one statement run.
type SourceSet struct {
	Statement string   `json:"statement"`
	Sources   []Source `json:"sources"`
}

// URLSet returns the deduplicated, order-preserving list of known source
// URLs. This is the closed world every chain's evidence lists must be drawn
// from.
func (ss *SourceSet) URLSet() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, src := range ss.Sources {
		if src.URL == "" || seen[src.URL] {
			continue
		}
		seen[src.URL] = true
		urls = append(urls, src.URL)
	}
	return urls
}
