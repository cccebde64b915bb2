package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/plate-nutrition-api/goals"
	"lg/plate-nutrition-api/nutrition"
)

// foodIdentifier lists the foods visible in an image.
type foodIdentifier interface {
	IdentifyFoods(ctx context.Context, imageRef string) ([]nutrition.FoodMention, error)
}

// Handler holds shared dependencies (db pool, collaborators) for all route handlers.
type Handler struct {
	db        *pgxpool.Pool
	estimator *nutrition.Estimator
	vision    foodIdentifier
	now       func() time.Time // overridable for tests
}

func newHandler(db *pgxpool.Pool, estimator *nutrition.Estimator, vision foodIdentifier) *Handler {
	return &Handler{db: db, estimator: estimator, vision: vision, now: time.Now}
}

// today is the server-local calendar date, used when a request omits one.
func (h *Handler) today() string {
	return h.now().Format(nutrition.DateLayout)
}

// resolver returns an effective-goal resolver reading userID's log.
func (h *Handler) resolver(userID int) *goals.Resolver {
	store := userStore{db: h.db, userID: userID}
	return goals.NewResolver(store, store)
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && err != pgx.ErrNoRows {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// parseDate validates a YYYY-MM-DD value, substituting fallback when empty.
func parseDate(value, fallback string) (time.Time, error) {
	if value == "" {
		value = fallback
	}
	return time.Parse(nutrition.DateLayout, value)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func getDBPool(dbURL string) *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.POST("/analyze", h.analyze)
	api.GET("/food-log/daily", h.getDailyLog)
	api.GET("/food-log/week", h.getWeekLog)
	api.POST("/food-log/items", h.createFoodLogItem)
	api.PUT("/food-log/items/:id", h.updateFoodLogItem)
	api.DELETE("/food-log/items/:id", h.deleteFoodLogItem)
	api.GET("/calories-burned", h.getCaloriesBurned)
	api.PUT("/calories-burned", h.putCaloriesBurned)
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.POST("/goals/recompute", h.recomputeGoals)
	api.PATCH("/goals", h.patchGoals)
	api.GET("/goals/effective", h.getEffectiveGoal)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
}
