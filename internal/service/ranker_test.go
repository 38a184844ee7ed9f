package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourplanner/internal/model"
	"tourplanner/internal/utils"
)

func named(name string, extra ...string) model.Candidate {
	tags := map[string]string{"name": name}
	for i := 0; i+1 < len(extra); i += 2 {
		tags[extra[i]] = extra[i+1]
	}
	return model.Candidate{Name: name, Tags: tags}
}

func TestRanker_Score(t *testing.T) {
	r := NewRanker(DefaultRankingRules())

	tests := []struct {
		name      string
		candidate model.Candidate
		want      int
	}{
		{
			// wiki -400, keyword -150, 2 tags -4, short -10
			name:      "wiki tagged landmark",
			candidate: named("Eiffel Tower", "wikidata", "Q243"),
			want:      436,
		},
		{
			name:      "wikipedia counts like wikidata",
			candidate: named("Some Hill", "wikipedia", "en:Some Hill"),
			want:      1000 - 400 - 4 - 10,
		},
		{
			name:      "keyword only",
			candidate: named("The Eiffel Tower"),
			want:      1000 - 150 - 2 - 10,
		},
		{
			name:      "keyword match is case-insensitive",
			candidate: named("MUSEE DU LOUVRE"),
			want:      1000 - 150 - 2 - 10,
		},
		{
			name:      "long name gets no length bonus",
			candidate: named("A Very Long Administrative Name For Nowhere"),
			want:      1000 - 2,
		},
		{
			name:      "no tags",
			candidate: model.Candidate{Name: "Plain Spot"},
			want:      1000 - 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Score(tt.candidate))
		})
	}
}

func TestRanker_ScoreAdministrativeNameWorseThanLandmark(t *testing.T) {
	r := NewRanker(DefaultRankingRules())

	admin := r.Score(model.Candidate{Name: "City Hall Residential Sector Office", Tags: map[string]string{}})
	landmark := r.Score(named("Tower of London", "wikidata", "Q62408"))

	assert.Greater(t, admin, landmark)
}

func TestRanker_RankCandidates_DedupKeepsBestScore(t *testing.T) {
	r := NewRanker(DefaultRankingRules())

	list := r.RankCandidates([]model.Candidate{
		named("The Eiffel Tower"),
		named("Eiffel Tower", "wikidata", "Q243"),
	})

	assert.Equal(t, []string{"Eiffel Tower"}, list.Names)
	assert.Empty(t, list.Message)
}

func TestRanker_RankCandidates_AllBlocked(t *testing.T) {
	r := NewRanker(DefaultRankingRules())

	list := r.RankCandidates([]model.Candidate{
		named("Parking"),
		named("Underground PARKING"),
		named("Main Gate"),
		{Name: "", Tags: map[string]string{"tourism": "attraction"}},
	})

	assert.True(t, list.Empty())
	assert.Equal(t, model.NoAttractionsFound, list.Message)
}

func TestRanker_RankCandidates_NoCandidates(t *testing.T) {
	list := NewRanker(DefaultRankingRules()).RankCandidates(nil)
	assert.Equal(t, model.NoAttractionsFound, list.Message)
}

func TestRanker_RankCandidates_LimitAndDistinctness(t *testing.T) {
	r := NewRanker(DefaultRankingRules())

	names := []string{
		"Louvre Museum", "Eiffel Tower", "Arc de Triomphe", "Notre-Dame",
		"Sacre-Coeur", "Pantheon", "Jardin du Luxembourg", "Musee d'Orsay",
		"Sainte-Chapelle", "Place des Vosges", "Palais Garnier",
		"Centre Pompidou", "Conciergerie", "Hotel des Invalides", "Pont Neuf",
		"Louvre Museum", "The Louvre Museum", "Eiffel Tower Paris",
	}
	candidates := make([]model.Candidate, 0, len(names))
	for _, n := range names {
		candidates = append(candidates, named(n))
	}

	list := r.RankCandidates(candidates)

	require.Len(t, list.Names, 10)
	for i := range list.Names {
		for j := i + 1; j < len(list.Names); j++ {
			assert.LessOrEqual(t, utils.SimilarityRatio(list.Names[i], list.Names[j]), 0.7,
				"%q and %q are near duplicates", list.Names[i], list.Names[j])
		}
	}
}

func TestRanker_RankCandidates_StableAndDeterministic(t *testing.T) {
	r := NewRanker(DefaultRankingRules())

	candidates := []model.Candidate{
		named("Zeta Point"),
		named("Alpha Hill"),
		named("Cubbon Park", "wikidata", "Q1146879"),
	}

	first := r.RankCandidates(candidates)
	second := r.RankCandidates(candidates)

	// Equal scores keep retrieval order
	assert.Equal(t, []string{"Cubbon Park", "Zeta Point", "Alpha Hill"}, first.Names)
	assert.Equal(t, first, second)
}

func TestLoadRankingRules(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		rules, err := LoadRankingRules("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRankingRules(), rules)
	})

	t.Run("partial override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("limit: 2\nblocklist:\n  - Castle\n"), 0o644))

		rules, err := LoadRankingRules(path)
		require.NoError(t, err)
		assert.Equal(t, 2, rules.Limit)
		assert.Equal(t, []string{"Castle"}, rules.Blocklist)
		assert.Equal(t, DefaultRankingRules().LandmarkKeywords, rules.LandmarkKeywords)
		assert.Equal(t, 1000, rules.BaseScore)

		list := NewRanker(rules).RankCandidates([]model.Candidate{
			named("Windsor Castle"),
			named("Hyde Park"),
			named("Big Ben"),
			named("Tate Modern"),
		})
		assert.Equal(t, []string{"Hyde Park", "Big Ben"}, list.Names)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("similarity_threshold: 1.5\n"), 0o644))

		_, err := LoadRankingRules(path)
		assert.Error(t, err)
	})

	t.Run("bounds", func(t *testing.T) {
		tests := []struct {
			name string
			yaml string
		}{
			{"limit above ten", "limit: 11\n"},
			{"zero limit", "limit: 0\n"},
			{"threshold above 0.7", "similarity_threshold: 0.8\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "rules.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

				_, err := LoadRankingRules(path)
				assert.Error(t, err)
			})
		}

		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("limit: 5\nsimilarity_threshold: 0.5\n"), 0o644))
		rules, err := LoadRankingRules(path)
		require.NoError(t, err)
		assert.Equal(t, 5, rules.Limit)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("limit: [oops\n"), 0o644))

		_, err := LoadRankingRules(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRankingRules(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
