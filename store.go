package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/plate-nutrition-api/goals"
	"lg/plate-nutrition-api/nutrition"
)

// userStore reads one user's food log and burned calories. It backs the
// effective-goal resolver.
type userStore struct {
	db     *pgxpool.Pool
	userID int
}

var (
	_ goals.BurnedCalories = userStore{}
	_ goals.DailyHistory   = userStore{}
)

// items returns the user's food log between start and end inclusive.
func (s userStore) items(ctx context.Context, start, end string) ([]foodLogItem, error) {
	items, err := queryMany[foodLogItem](s.db, ctx,
		`SELECT * FROM food_log_items
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date, created_at`,
		pgx.NamedArgs{"userID": s.userID, "start": start, "end": end})
	if err != nil {
		return nil, fmt.Errorf("food log %s..%s: %w", start, end, err)
	}
	if items == nil {
		items = []foodLogItem{}
	}
	return items, nil
}

// DailyTotals sums the items logged on date. An empty day is all zeros.
func (s userStore) DailyTotals(ctx context.Context, date string) (nutrition.Totals, error) {
	items, err := s.items(ctx, date, date)
	if err != nil {
		return nutrition.Totals{}, err
	}
	return nutrition.DailyTotals(loggedRecords(items), date), nil
}

// CaloriesBurned returns the exercise calories logged for date, 0 if none.
func (s userStore) CaloriesBurned(ctx context.Context, date string) (float64, error) {
	entry, err := queryOne[caloriesBurnedEntry](s.db, ctx,
		"SELECT * FROM calories_burned WHERE user_id = @userID AND date = @date",
		pgx.NamedArgs{"userID": s.userID, "date": date})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("calories burned %s: %w", date, err)
	}
	return entry.Calories, nil
}

// profile loads the user's profile row.
func (s userStore) profile(ctx context.Context) (userProfile, error) {
	return queryOne[userProfile](s.db, ctx,
		"SELECT * FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": s.userID})
}

// saveGoals overwrites the stored GoalSet and returns the updated row.
func (s userStore) saveGoals(ctx context.Context, g goals.GoalSet) (userProfile, error) {
	return queryOne[userProfile](s.db, ctx,
		`UPDATE user_profiles SET
			calorie_goal  = @calorieGoal,
			protein_grams = @proteinGrams,
			carbs_grams   = @carbsGrams,
			fat_grams     = @fatGrams,
			fiber_grams   = @fiberGrams,
			sugar_grams   = @sugarGrams,
			sodium_mg     = @sodiumMg,
			water_liters  = @waterLiters,
			updated_at    = now()
		 WHERE user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"userID":       s.userID,
			"calorieGoal":  g.CalorieGoal,
			"proteinGrams": g.ProteinGrams,
			"carbsGrams":   g.CarbsGrams,
			"fatGrams":     g.FatGrams,
			"fiberGrams":   g.FiberGrams,
			"sugarGrams":   g.SugarGrams,
			"sodiumMg":     g.SodiumMg,
			"waterLiters":  g.WaterLiters,
		})
}
