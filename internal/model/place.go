package model

// NoAttractionsFound replaces an empty attraction list. It is not an error.
const NoAttractionsFound = "No major tourist attractions found."

// Candidate is a raw point of interest as returned by the feature store
type Candidate struct {
	Name string            `json:"name"`
	Tags map[string]string `json:"tags"`
}

// ScoredCandidate is a Candidate after scoring. Lower scores rank first.
type ScoredCandidate struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// AttractionList is the ranked, deduplicated outcome of the places lookup
type AttractionList struct {
	Names   []string `json:"names"`
	Message string   `json:"message,omitempty"` // set to NoAttractionsFound when Names is empty
}

// Empty reports whether no attraction survived filtering
func (l *AttractionList) Empty() bool {
	return l == nil || len(l.Names) == 0
}
