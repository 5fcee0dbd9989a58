package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"recipematch/internal/api"
	"recipematch/internal/config"
	"recipematch/internal/logging"
	"recipematch/internal/recipe"
	"recipematch/internal/recommend"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if cfg.LogFormat != "console" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbStore, err := recipe.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("error opening recipe store")
	}
	defer dbStore.Close()

	if cfg.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := dbStore.Migrate(ctx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("error migrating recipe store")
		}
	}

	recommender, err := recommend.NewService(dbStore, recommend.Config{
		Neighbors:   cfg.Neighbors,
		MaxResults:  cfg.MaxResults,
		RequireAll:  cfg.RequireAll,
		Metric:      cfg.Metric,
		CacheSize:   cfg.CacheSize,
		Suggestions: cfg.Suggestions,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error creating recommender")
	}

	handler := api.NewHandler(recommender, dbStore, api.Options{
		ImagesDir:      cfg.ImagesDir,
		ThumbnailWidth: cfg.ThumbnailWidth,
		Timeout:        time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
	})

	r := newRouter(handler, cfg.AllowOrigins)

	log.Info().Str("addr", cfg.Addr).Str("driver", cfg.DBDriver).Msg("recipe recommender listening")
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// newRouter registers every route of the service on a new gin engine.
func newRouter(handler *api.Handler, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware())

	if len(allowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", logging.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", logging.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.SetHTMLTemplate(api.Templates())

	r.GET("/", handler.Index)
	r.POST("/", handler.Index)
	r.POST("/api/recommendations", handler.Recommend)
	r.GET("/api/recipes/:recipe_id", handler.GetRecipe)
	r.GET("/recipes/:recipe_id/thumbnail", handler.Thumbnail)
	r.GET("/healthz", handler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}
