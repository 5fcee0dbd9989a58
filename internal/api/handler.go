package api

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"recipematch/internal/recipe"
	"recipematch/internal/recommend"
)

//go:embed templates/*.html
var templateFS embed.FS

// Recommender defines the interface for computing recommendations.
type Recommender interface {
	Recommend(ctx context.Context, input string) (*recommend.Result, error)
}

// RecipeStore defines the recipe lookups used by the handlers.
type RecipeStore interface {
	GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error)
	Ping(ctx context.Context) error
}

// Options configures a Handler.
type Options struct {
	// ImagesDir is the directory local recipe images are served from.
	ImagesDir string
	// ThumbnailWidth is the maximum width of served thumbnails.
	ThumbnailWidth uint
	// Timeout bounds each request's store and recommendation calls.
	Timeout time.Duration
}

// Handler handles HTTP requests.
type Handler struct {
	Recommender Recommender
	RecipeStore RecipeStore
	opts        Options
}

// NewHandler creates a new Handler.
func NewHandler(recommender Recommender, recipeStore RecipeStore, opts Options) *Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.ThumbnailWidth == 0 {
		opts.ThumbnailWidth = 320
	}
	if opts.ImagesDir == "" {
		opts.ImagesDir = "images"
	}
	return &Handler{Recommender: recommender, RecipeStore: recipeStore, opts: opts}
}

// Templates parses the embedded HTML templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templateFS, "templates/*.html"))
}

// indexPage is the data rendered by index.html.
type indexPage struct {
	UserInput   string
	Recipes     []recipe.Recommendation
	Suggestions map[string][]string
	Message     string
}

// Index renders the search form and, for POST requests, the recommended
// recipes for the submitted ingredients.
func (h *Handler) Index(c *gin.Context) {
	page := indexPage{}

	if c.Request.Method == http.MethodPost {
		page.UserInput = c.PostForm("ingredients")

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.Timeout)
		defer cancel()

		res, err := h.Recommender.Recommend(ctx, page.UserInput)
		switch {
		case errors.Is(err, recommend.ErrNoIngredients):
			page.Message = "Please enter at least one ingredient."
		case err != nil:
			h.fail(c, err, "recommendation")
			return
		default:
			page.Recipes = res.Recipes
			page.Suggestions = res.Suggestions
			page.Message = res.Message
		}
	}

	c.HTML(http.StatusOK, "index.html", page)
}

// recommendationRequest is the body of POST /api/recommendations.
type recommendationRequest struct {
	Ingredients string `json:"ingredients" form:"ingredients" binding:"required"`
}

// Recommend handles JSON recommendation requests.
func (h *Handler) Recommend(c *gin.Context) {
	var req recommendationRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.Timeout)
	defer cancel()

	res, err := h.Recommender.Recommend(ctx, req.Ingredients)
	if err != nil {
		if errors.Is(err, recommend.ErrNoIngredients) {
			c.String(http.StatusBadRequest, "at least one ingredient is required")
			return
		}
		h.fail(c, err, "recommendation")
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetRecipe handles requests to retrieve a single recipe by id.
func (h *Handler) GetRecipe(c *gin.Context) {
	r, ok := h.lookupRecipe(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

// Health reports whether the recipe store is reachable.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.Timeout)
	defer cancel()

	if err := h.RecipeStore.Ping(ctx); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// lookupRecipe resolves the :recipe_id parameter, writing the error
// response itself when it returns false.
func (h *Handler) lookupRecipe(c *gin.Context) (*recipe.Recipe, bool) {
	id, err := strconv.ParseInt(c.Param("recipe_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid recipe id")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.opts.Timeout)
	defer cancel()

	r, err := h.RecipeStore.GetRecipe(ctx, id)
	if err != nil {
		h.fail(c, err, "database")
		return nil, false
	}
	if r == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return nil, false
	}
	return r, true
}

// fail logs err and writes a 408 for deadline errors or a 500 otherwise.
func (h *Handler) fail(c *gin.Context, err error, what string) {
	_ = c.Error(err)
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msgf("%s failed", what)
	if errors.Is(err, context.DeadlineExceeded) {
		c.String(http.StatusRequestTimeout, fmt.Sprintf("%s timed out after %s", what, h.opts.Timeout))
		return
	}
	c.String(http.StatusInternalServerError, fmt.Sprintf("%s error: %s", what, err.Error()))
}
