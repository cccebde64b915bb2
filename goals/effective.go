package goals

import (
	"context"
	"fmt"
	"time"

	"lg/plate-nutrition-api/nutrition"
)

// MaxRollover bounds the calories carried over from the previous day in
// either direction.
const MaxRollover = 200.0

// Flags are the profile switches that change the effective goal.
type Flags struct {
	AddBurnedCaloriesToGoal bool `json:"add_burned_calories_to_goal"`
	RolloverCalories        bool `json:"rollover_calories"`
}

// BurnedCalories reports exercise calories logged for a date (YYYY-MM-DD);
// 0 when nothing was logged.
type BurnedCalories interface {
	CaloriesBurned(ctx context.Context, date string) (float64, error)
}

// DailyHistory reports the consumed totals for a date; zero totals when the
// log is empty.
type DailyHistory interface {
	DailyTotals(ctx context.Context, date string) (nutrition.Totals, error)
}

// Effective is the calorie goal for one day and the parts it was built from.
type Effective struct {
	Date     string  `json:"date"`
	Base     float64 `json:"base"`
	Burned   float64 `json:"burned"`
	Rollover float64 `json:"rollover"`
	Goal     float64 `json:"goal"`
}

// Day is the per-day input to EffectiveCalorieGoal.
type Day struct {
	Burned   float64
	Consumed float64
}

// EffectiveCalorieGoal combines the base goal with today's burned credit and,
// with rollover on, yesterday's clamped (consumed - goal). The clamp applies
// to the rollover term only, so eating under yesterday's goal lowers today's.
func EffectiveCalorieGoal(base float64, today, yesterday Day, flags Flags) Effective {
	burned := 0.0
	if flags.AddBurnedCaloriesToGoal {
		burned = today.Burned
	}
	eff := Effective{Base: base, Burned: burned, Goal: base + burned}
	if !flags.RolloverCalories {
		return eff
	}

	yesterdayBurned := 0.0
	if flags.AddBurnedCaloriesToGoal {
		yesterdayBurned = yesterday.Burned
	}
	yesterdayGoal := base + yesterdayBurned
	eff.Rollover = clamp(yesterday.Consumed-yesterdayGoal, -MaxRollover, MaxRollover)
	eff.Goal = base + burned + eff.Rollover
	return eff
}

func clamp(v, lo, hi float64) float64 {
	return min(hi, max(lo, v))
}

/* ─── Resolver ───────────────────────────────────────────────────────── */

// Resolver loads the per-day inputs from storage and applies EffectiveCalorieGoal.
type Resolver struct {
	burned  BurnedCalories
	history DailyHistory
}

// NewResolver returns a Resolver backed by the given stores.
func NewResolver(burned BurnedCalories, history DailyHistory) *Resolver {
	return &Resolver{burned: burned, history: history}
}

// Resolve computes the effective calorie goal for date. Stores are only
// queried for the inputs the flags actually use.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, g GoalSet, flags Flags) (Effective, error) {
	key := date.Format(nutrition.DateLayout)
	yesterdayKey := date.AddDate(0, 0, -1).Format(nutrition.DateLayout)

	var today, yesterday Day
	var err error
	if flags.AddBurnedCaloriesToGoal {
		if today.Burned, err = r.burned.CaloriesBurned(ctx, key); err != nil {
			return Effective{}, fmt.Errorf("burned calories %s: %w", key, err)
		}
	}
	if flags.RolloverCalories {
		if flags.AddBurnedCaloriesToGoal {
			if yesterday.Burned, err = r.burned.CaloriesBurned(ctx, yesterdayKey); err != nil {
				return Effective{}, fmt.Errorf("burned calories %s: %w", yesterdayKey, err)
			}
		}
		totals, err := r.history.DailyTotals(ctx, yesterdayKey)
		if err != nil {
			return Effective{}, fmt.Errorf("daily totals %s: %w", yesterdayKey, err)
		}
		yesterday.Consumed = totals.Calories
	}

	eff := EffectiveCalorieGoal(float64(g.CalorieGoal), today, yesterday, flags)
	eff.Date = key
	return eff, nil
}
