// Command seed loads recipes and their stats from a JSON file into the
// recipe store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"recipematch/internal/config"
	"recipematch/internal/logging"
	"recipematch/internal/recipe"
)

// seedFile is the layout of the JSON seed file.
type seedFile struct {
	Recipes []recipe.Record `json:"recipes"`
	Stats   []recipe.Stat   `json:"stats"`
}

// seedStore is the subset of recipe.SQLStore the seeder writes through.
type seedStore interface {
	Migrate(ctx context.Context) error
	SaveRecipe(ctx context.Context, rec *recipe.Record) error
	SaveStat(ctx context.Context, st *recipe.Stat) error
}

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	dataPath := flag.String("data", "recipes.json", "path to the JSON seed file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	f, err := os.Open(*dataPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *dataPath).Msg("failed to open seed file")
	}
	defer f.Close()

	store, err := recipe.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening recipe store")
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	recipes, stats, err := seed(ctx, store, f)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Int("recipes", recipes).Int("stats", stats).Msg("seed complete")
}

// seed migrates the store and upserts every recipe and stat read from r.
func seed(ctx context.Context, store seedStore, r io.Reader) (int, int, error) {
	var data seedFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return 0, 0, fmt.Errorf("failed to decode seed file: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		return 0, 0, err
	}

	for i := range data.Recipes {
		if err := store.SaveRecipe(ctx, &data.Recipes[i]); err != nil {
			return i, 0, fmt.Errorf("recipe %d: %w", data.Recipes[i].ID, err)
		}
	}
	for i := range data.Stats {
		if err := store.SaveStat(ctx, &data.Stats[i]); err != nil {
			return len(data.Recipes), i, fmt.Errorf("stat for recipe %d: %w", data.Stats[i].RecipeID, err)
		}
	}
	return len(data.Recipes), len(data.Stats), nil
}
