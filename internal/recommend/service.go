// Package recommend matches a user's ingredient list against the recipe
// catalog with a cosine k-nearest-neighbour search.
package recommend

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
	"github.com/sahilm/fuzzy"

	"recipematch/internal/knn"
	"recipematch/internal/metrics"
	"recipematch/internal/recipe"
)

// ErrNoIngredients is returned when the input names no ingredient.
var ErrNoIngredients = errors.New("no ingredients given")

// Config tunes the recommendation.
type Config struct {
	// Neighbors is the number of nearest recipes fetched before filtering.
	Neighbors int
	// MaxResults caps the number of recipes returned.
	MaxResults int
	// RequireAll keeps only recipes containing every input ingredient.
	RequireAll bool
	// Metric is the distance metric name, "cosine" by default.
	Metric string
	// CacheSize is the number of fitted catalogs kept in memory.
	CacheSize int
	// Suggestions is the number of fuzzy matches offered per unknown ingredient.
	Suggestions int
}

// DefaultConfig returns the default recommendation settings.
func DefaultConfig() Config {
	return Config{
		Neighbors:   5,
		MaxResults:  5,
		RequireAll:  true,
		Metric:      "cosine",
		CacheSize:   4,
		Suggestions: 3,
	}
}

// Result is the outcome of a recommendation.
type Result struct {
	Input       string                  `json:"input"`
	Query       []string                `json:"query"`
	Recipes     []recipe.Recommendation `json:"recipes"`
	Unknown     []string                `json:"unknown,omitempty"`
	Suggestions map[string][]string     `json:"suggestions,omitempty"`
	// Message is set when no recipe matched.
	Message     string                  `json:"message,omitempty"`
}

func noResultsMessage(input string) string {
	return fmt.Sprintf("No recipes found with the ingredients: %s", input)
}

// model is a catalog fitted for neighbour search.
type model struct {
	binarizer   *knn.Binarizer
	index       *knn.Index
	ingredients []map[string]struct{}
}

// Service recommends recipes from a Store.
type Service struct {
	store  recipe.Store
	config Config
	cache  *lru.Cache
}

// NewService creates a Service. Zero numeric fields of cfg and an empty
// Metric take their defaults; RequireAll is used as given.
func NewService(store recipe.Store, cfg Config) (*Service, error) {
	def := DefaultConfig()
	if cfg.Neighbors <= 0 {
		cfg.Neighbors = def.Neighbors
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.Metric == "" {
		cfg.Metric = def.Metric
	}
	if _, ok := knn.Distances[cfg.Metric]; !ok {
		return nil, fmt.Errorf("unknown distance metric %q", cfg.Metric)
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.Suggestions < 0 {
		cfg.Suggestions = 0
	}

	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create model cache: %w", err)
	}
	return &Service{store: store, config: cfg, cache: cache}, nil
}

// Recommend returns the recipes closest to the comma-separated ingredient
// list in input.
func (s *Service) Recommend(ctx context.Context, input string) (*Result, error) {
	log := zerolog.Ctx(ctx)

	query := recipe.ParseIngredients(input)
	if len(query) == 0 {
		metrics.Recommendations.WithLabelValues("invalid").Inc()
		return nil, ErrNoIngredients
	}
	res := &Result{Input: input, Query: query, Recipes: []recipe.Recommendation{}}

	recipes, err := s.store.ListAvailable(ctx)
	if err != nil {
		metrics.Recommendations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	stats, err := s.store.ListStats(ctx)
	if err != nil {
		metrics.Recommendations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load recipe stats: %w", err)
	}

	if len(recipes) == 0 {
		log.Debug().Msg("recipe catalog is empty")
		res.Unknown = query
		res.Message = noResultsMessage(input)
		metrics.Recommendations.WithLabelValues("empty").Inc()
		metrics.RecommendationResults.Observe(0)
		return res, nil
	}

	m, err := s.model(recipes)
	if err != nil {
		metrics.Recommendations.WithLabelValues("error").Inc()
		return nil, err
	}

	vec, unknown := m.binarizer.Transform(query)
	res.Unknown = unknown
	res.Suggestions = s.suggest(unknown, m.binarizer.Classes())

	neighbors, err := m.index.KNeighbors(vec, s.config.Neighbors)
	if err != nil {
		metrics.Recommendations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("search neighbors: %w", err)
	}

	for _, n := range neighbors {
		if s.config.RequireAll && !containsAll(m.ingredients[n.ID], query) {
			continue
		}
		r := recipes[n.ID]
		st := stats[r.ID]
		res.Recipes = append(res.Recipes, recipe.Recommendation{
			Recipe:           r,
			Distance:         n.Distance,
			IngredientLevel:  st.IngredientLevel,
			DietaryInfoLevel: st.DietaryInfoLevel,
		})
		if len(res.Recipes) == s.config.MaxResults {
			break
		}
	}

	log.Debug().
		Strs("query", query).
		Strs("unknown", unknown).
		Int("catalog", m.index.Len()).
		Int("vocabulary", m.binarizer.Dimension()).
		Int("neighbors", len(neighbors)).
		Int("results", len(res.Recipes)).
		Msg("recommendation computed")

	outcome := "ok"
	if len(res.Recipes) == 0 {
		outcome = "empty"
		res.Message = noResultsMessage(input)
	}
	metrics.Recommendations.WithLabelValues(outcome).Inc()
	metrics.RecommendationResults.Observe(float64(len(res.Recipes)))
	return res, nil
}

// model returns the fitted model for recipes, fitting it on a cache miss.
func (s *Service) model(recipes []recipe.Recipe) (*model, error) {
	key := fingerprint(recipes)
	if v, ok := s.cache.Get(key); ok {
		metrics.ModelCacheHits.Inc()
		return v.(*model), nil
	}
	metrics.ModelCacheMisses.Inc()

	labelSets := make([][]string, len(recipes))
	ingredients := make([]map[string]struct{}, len(recipes))
	for i := range recipes {
		labelSets[i] = recipes[i].IngredientList()
		ingredients[i] = make(map[string]struct{}, len(labelSets[i]))
		for _, name := range labelSets[i] {
			ingredients[i][name] = struct{}{}
		}
	}

	b := knn.NewBinarizer()
	vectors := b.FitTransform(labelSets)

	index, err := knn.NewIndex(s.config.Metric)
	if err != nil {
		return nil, err
	}
	if err := index.Fit(vectors); err != nil {
		return nil, fmt.Errorf("fit index: %w", err)
	}
	if index.Dimension() != b.Dimension() {
		return nil, fmt.Errorf("fit index: %d columns for a vocabulary of %d: %w", index.Dimension(), b.Dimension(), knn.ErrDimensionMismatch)
	}

	m := &model{binarizer: b, index: index, ingredients: ingredients}
	s.cache.Add(key, m)
	return m, nil
}

// suggest offers known ingredient names close to each unknown one. Names
// the unknown one abbreviates come first, by fuzzy score; then names it
// extends, such as "egg" for "eggs", longest first.
func (s *Service) suggest(unknown, vocabulary []string) map[string][]string {
	if len(unknown) == 0 || s.config.Suggestions == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, name := range unknown {
		var picks []string
		seen := make(map[string]struct{})
		add := func(term string) {
			if _, ok := seen[term]; ok || len(picks) == s.config.Suggestions {
				return
			}
			seen[term] = struct{}{}
			picks = append(picks, term)
		}

		for _, m := range fuzzy.Find(name, vocabulary) {
			add(m.Str)
		}

		var contained []string
		target := []string{name}
		for _, term := range vocabulary {
			if len(fuzzy.Find(term, target)) > 0 {
				contained = append(contained, term)
			}
		}
		sort.SliceStable(contained, func(i, j int) bool {
			return len(contained[i]) > len(contained[j])
		})
		for _, term := range contained {
			add(term)
		}

		if len(picks) > 0 {
			out[name] = picks
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func containsAll(set map[string]struct{}, names []string) bool {
	for _, n := range names {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

// fingerprint identifies a catalog by its recipe ids and ingredient lists,
// in order.
func fingerprint(recipes []recipe.Recipe) string {
	h := sha256.New()
	var buf [8]byte
	for _, r := range recipes {
		binary.LittleEndian.PutUint64(buf[:], uint64(r.ID))
		h.Write(buf[:])
		h.Write([]byte(r.Ingredients))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
