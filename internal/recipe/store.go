package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"recipematch/internal/metrics"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store defines the interface for recipe data operations.
type Store interface {
	ListAvailable(ctx context.Context) ([]Recipe, error)
	ListStats(ctx context.Context) (map[int64]Stat, error)
	GetRecipe(ctx context.Context, id int64) (*Recipe, error)
	Ping(ctx context.Context) error
}

// SQLStore implements Store on top of SQLite or PostgreSQL.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the database named by driver and dsn.
func Open(driver, dsn string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is required")
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// every connection to :memory: opens its own empty database
	if driver == DriverSQLite && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Migrate creates the Recipes and RecipeStat tables and the RecipeAvailable
// view when they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS Recipes (
		recipe_id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		ingredients TEXT NOT NULL,
		dietary_info TEXT,
		cuisine TEXT,
		image TEXT,
		available INTEGER NOT NULL DEFAULT 1
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create Recipes table: %w", err)
	}

	schema = `
	CREATE TABLE IF NOT EXISTS RecipeStat (
		recipe_id INTEGER PRIMARY KEY REFERENCES Recipes (recipe_id),
		ingredient_level TEXT,
		dietary_info_level TEXT
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create RecipeStat table: %w", err)
	}

	createView := "CREATE VIEW IF NOT EXISTS"
	if s.driver == DriverPostgres {
		createView = "CREATE OR REPLACE VIEW"
	}
	schema = createView + ` RecipeAvailable AS
		SELECT recipe_id, title, ingredients, dietary_info, cuisine
		FROM Recipes
		WHERE available = 1
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create RecipeAvailable view: %w", err)
	}

	return nil
}

// ListAvailable returns every recipe of the RecipeAvailable view, merged
// with the image of the matching Recipes row.
func (s *SQLStore) ListAvailable(ctx context.Context) ([]Recipe, error) {
	defer observe("list_available", time.Now())

	var recipes []Recipe
	err := s.db.SelectContext(ctx, &recipes,
		`SELECT recipe_id, title, ingredients,
			COALESCE(dietary_info, '') AS dietary_info,
			COALESCE(cuisine, '') AS cuisine
		FROM RecipeAvailable
		ORDER BY recipe_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list available recipes: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, "SELECT recipe_id, COALESCE(image, '') FROM Recipes")
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe images: %w", err)
	}
	defer rows.Close()

	images := make(map[int64]string)
	for rows.Next() {
		var id int64
		var image string
		if err := rows.Scan(&id, &image); err != nil {
			return nil, fmt.Errorf("failed to scan recipe image row: %w", err)
		}
		images[id] = image
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range recipes {
		recipes[i].Image = images[recipes[i].ID]
	}
	return recipes, nil
}

// ListStats returns the RecipeStat rows keyed by recipe id.
func (s *SQLStore) ListStats(ctx context.Context) (map[int64]Stat, error) {
	defer observe("list_stats", time.Now())

	var stats []Stat
	err := s.db.SelectContext(ctx, &stats,
		`SELECT recipe_id,
			COALESCE(ingredient_level, '') AS ingredient_level,
			COALESCE(dietary_info_level, '') AS dietary_info_level
		FROM RecipeStat`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipe stats: %w", err)
	}

	byID := make(map[int64]Stat, len(stats))
	for _, st := range stats {
		byID[st.RecipeID] = st
	}
	return byID, nil
}

// GetRecipe retrieves a recipe by id, whether available or not. It returns
// nil, nil when no such recipe exists.
func (s *SQLStore) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	defer observe("get_recipe", time.Now())

	var r Recipe
	err := s.db.GetContext(ctx, &r, s.db.Rebind(
		`SELECT recipe_id, title, ingredients,
			COALESCE(dietary_info, '') AS dietary_info,
			COALESCE(cuisine, '') AS cuisine,
			COALESCE(image, '') AS image
		FROM Recipes
		WHERE recipe_id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe by id: %w", err)
	}
	return &r, nil
}

// SaveRecipe inserts or replaces a row of the Recipes table.
func (s *SQLStore) SaveRecipe(ctx context.Context, rec *Record) error {
	available := 0
	if rec.Available {
		available = 1
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO Recipes (recipe_id, title, ingredients, dietary_info, cuisine, image, available)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (recipe_id) DO UPDATE SET
			title = excluded.title,
			ingredients = excluded.ingredients,
			dietary_info = excluded.dietary_info,
			cuisine = excluded.cuisine,
			image = excluded.image,
			available = excluded.available`),
		rec.ID,
		rec.Title,
		rec.Ingredients,
		rec.DietaryInfo,
		rec.Cuisine,
		rec.Image,
		available,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	return nil
}

// SaveStat inserts or replaces a row of the RecipeStat table.
func (s *SQLStore) SaveStat(ctx context.Context, st *Stat) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO RecipeStat (recipe_id, ingredient_level, dietary_info_level)
		VALUES (?, ?, ?)
		ON CONFLICT (recipe_id) DO UPDATE SET
			ingredient_level = excluded.ingredient_level,
			dietary_info_level = excluded.dietary_info_level`),
		st.RecipeID,
		st.IngredientLevel,
		st.DietaryInfoLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe stat: %w", err)
	}
	return nil
}

func observe(operation string, start time.Time) {
	metrics.StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
