package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"tourplanner/internal/model"
	"tourplanner/internal/utils"
)

// RankingRules controls attraction filtering and scoring.
// Lower scores rank first.
type RankingRules struct {
	BaseScore           int      `yaml:"base_score"`
	WikiBonus           int      `yaml:"wiki_bonus"`
	LandmarkBonus       int      `yaml:"landmark_bonus"`
	TagWeight           int      `yaml:"tag_weight"`
	ShortNameLength     int      `yaml:"short_name_length"`
	ShortNameBonus      int      `yaml:"short_name_bonus"`
	Limit               int      `yaml:"limit"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
	Blocklist           []string `yaml:"blocklist"`
	LandmarkKeywords    []string `yaml:"landmark_keywords"`
}

const (
	maxAttractions = 10
	maxSimilarity  = 0.7
)

// DefaultRankingRules returns the built-in rules
func DefaultRankingRules() RankingRules {
	return RankingRules{
		BaseScore:           1000,
		WikiBonus:           400,
		LandmarkBonus:       150,
		TagWeight:           2,
		ShortNameLength:     40,
		ShortNameBonus:      10,
		Limit:               maxAttractions,
		SimilarityThreshold: maxSimilarity,
		Blocklist: []string{
			"statue", "cross", "circle", "junction", "road", "stop",
			"office", "department", "association", "residential",
			"sector", "block", "phase", "extension", "canteen",
			"auditorium", "market", "mall", "parking", "entrance",
			"gate", "toilet", "restroom", "bus station", "bureau",
			"laboratoire", "swimming pool", "gym", "robinier",
		},
		LandmarkKeywords: []string{
			"palace", "tower", "castle", "cathedral", "temple", "church",
			"mosque", "fort", "museum", "stadium", "garden", "park",
			"botanical", "zoo", "bridge", "opera", "aquarium",
			"monument", "louvre", "eiffel", "taj mahal", "colosseum",
			"notre dame", "sacre-coeur", "arc de triomphe", "orsay",
			"vidhana soudha", "cubbon", "lalbagh",
		},
	}
}

// LoadRankingRules reads a YAML rules file. Keys absent from the file keep
// their default value; an empty path returns the defaults.
func LoadRankingRules(path string) (RankingRules, error) {
	rules := DefaultRankingRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("failed to read ranking rules: %w", err)
	}

	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("failed to parse ranking rules %s: %w", path, err)
	}

	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("invalid ranking rules %s: %w", path, err)
	}

	log.Printf("📋 Loaded ranking rules from %s (%d blocked terms, %d landmark keywords)",
		path, len(rules.Blocklist), len(rules.LandmarkKeywords))
	return rules, nil
}

// Validate checks the rules are usable. Overrides may tighten the list
// bounds but never loosen them past maxAttractions and maxSimilarity.
func (r RankingRules) Validate() error {
	if r.Limit <= 0 || r.Limit > maxAttractions {
		return fmt.Errorf("limit must be in [1, %d], got %d", maxAttractions, r.Limit)
	}
	if r.SimilarityThreshold <= 0 || r.SimilarityThreshold > maxSimilarity {
		return fmt.Errorf("similarity_threshold must be in (0, %v], got %v", maxSimilarity, r.SimilarityThreshold)
	}
	return nil
}

// Ranker scores, orders and deduplicates attraction candidates
type Ranker struct {
	rules RankingRules
}

// NewRanker creates a ranker. Terms are matched case-insensitively.
func NewRanker(rules RankingRules) *Ranker {
	rules.Blocklist = lowerAll(rules.Blocklist)
	rules.LandmarkKeywords = lowerAll(rules.LandmarkKeywords)
	return &Ranker{rules: rules}
}

// Blocked reports whether a candidate is noise: unnamed or containing a
// blocklisted term
func (r *Ranker) Blocked(name string) bool {
	return name == "" || utils.ContainsAny(name, r.rules.Blocklist)
}

// Score computes a candidate's score. It depends only on the name and tags.
func (r *Ranker) Score(c model.Candidate) int {
	score := r.rules.BaseScore

	// Wikipedia/Wikidata is the strongest signal of a well-known place
	if _, ok := c.Tags["wikidata"]; ok {
		score -= r.rules.WikiBonus
	} else if _, ok := c.Tags["wikipedia"]; ok {
		score -= r.rules.WikiBonus
	}

	if utils.ContainsAny(c.Name, r.rules.LandmarkKeywords) {
		score -= r.rules.LandmarkBonus
	}

	score -= len(c.Tags) * r.rules.TagWeight

	if utf8.RuneCountInString(c.Name) < r.rules.ShortNameLength {
		score -= r.rules.ShortNameBonus
	}

	return score
}

// RankCandidates filters, scores and sorts candidates, then keeps at most
// Limit names that are not near-duplicates of a better-ranked name.
func (r *Ranker) RankCandidates(candidates []model.Candidate) *model.AttractionList {
	scored := make([]model.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if r.Blocked(c.Name) {
			continue
		}
		scored = append(scored, model.ScoredCandidate{Name: c.Name, Score: r.Score(c)})
	}

	// Ties keep retrieval order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score < scored[j].Score
	})

	names := make([]string, 0, r.rules.Limit)
	for _, s := range scored {
		if len(names) >= r.rules.Limit {
			break
		}
		if utils.IsNearDuplicate(s.Name, names, r.rules.SimilarityThreshold) {
			continue
		}
		names = append(names, s.Name)
	}

	if len(names) == 0 {
		return &model.AttractionList{Names: []string{}, Message: model.NoAttractionsFound}
	}
	return &model.AttractionList{Names: names}
}

// AttractionRanker retrieves nearby features and ranks them
type AttractionRanker struct {
	places *PlacesClient
	ranker *Ranker
}

// NewAttractionRanker creates a new attraction ranker
func NewAttractionRanker(places *PlacesClient, ranker *Ranker) *AttractionRanker {
	return &AttractionRanker{places: places, ranker: ranker}
}

// Rank returns the top attractions within radiusMeters of coords.
// An empty outcome is not an error; retrieval failures wrap model.ErrPlacesFetch.
func (a *AttractionRanker) Rank(ctx context.Context, coords model.Coordinates, radiusMeters int) (*model.AttractionList, error) {
	candidates, err := a.places.Search(ctx, coords, radiusMeters)
	if err != nil {
		return nil, err
	}

	list := a.ranker.RankCandidates(candidates)
	log.Printf("🏛️  Ranked %d candidates into %d attractions", len(candidates), len(list.Names))
	return list, nil
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, strings.ToLower(t))
	}
	return out
}
