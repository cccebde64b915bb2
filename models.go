package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"lg/plate-nutrition-api/goals"
	"lg/plate-nutrition-api/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(nutrition.DateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+nutrition.DateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// String returns the YYYY-MM-DD key used by the nutrition package.
func (d DateOnly) String() string { return d.Time.Format(nutrition.DateLayout) }

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. AuthToken and Password are hidden from JSON responses.
type user struct {
	ID        int        `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	AuthToken string     `json:"-" db:"auth_token"`
	Password  string     `json:"-" db:"password"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

// foodLogItem maps to food_log_items. Items saved from an analyzed photo share
// an upload_id; manual entries have none.
type foodLogItem struct {
	ID        int        `json:"id" db:"id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Date      DateOnly   `json:"date" db:"date"`
	Name      string     `json:"name" db:"name"`
	Quantity  string     `json:"quantity" db:"quantity"`
	Calories  float64    `json:"calories" db:"calories"`
	Protein   float64    `json:"protein" db:"protein"`
	Carbs     float64    `json:"carbs" db:"carbs"`
	Fat       float64    `json:"fat" db:"fat"`
	Source    string     `json:"source" db:"source"`
	Note      *string    `json:"note" db:"note"`
	UploadID  *uuid.UUID `json:"upload_id" db:"upload_id"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// logged converts the row into the nutrition package's dated record.
func (i foodLogItem) logged() nutrition.LoggedRecord {
	rec := nutrition.NutritionRecord{
		Name:     i.Name,
		Quantity: i.Quantity,
		Calories: i.Calories,
		Protein:  i.Protein,
		Carbs:    i.Carbs,
		Fat:      i.Fat,
		Source:   nutrition.Source(i.Source),
	}
	if i.Note != nil {
		rec.Note = *i.Note
	}
	return nutrition.LoggedRecord{Date: i.Date.String(), NutritionRecord: rec}
}

func loggedRecords(items []foodLogItem) []nutrition.LoggedRecord {
	out := make([]nutrition.LoggedRecord, len(items))
	for i, item := range items {
		out[i] = item.logged()
	}
	return out
}

// userProfile maps to user_profiles. One row per user holding the onboarding
// answers, the goal flags and the stored GoalSet. Profile fields are nullable
// until onboarding answers them.
type userProfile struct {
	UserID                     int       `json:"user_id"                         db:"user_id"`
	Sex                        *string   `json:"sex"                             db:"sex"`
	WeightKg                   *float64  `json:"weight_kg"                       db:"weight_kg"`
	HeightCm                   *float64  `json:"height_cm"                       db:"height_cm"`
	BirthDate                  *DateOnly `json:"birth_date"                      db:"birth_date"`
	AgeYears                   *int      `json:"age_years"                       db:"age_years"`
	WorkoutsPerWeek            int       `json:"workouts_per_week"               db:"workouts_per_week"`
	Goal                       *string   `json:"goal"                            db:"goal"`
	WeightChangeSpeedKgPerWeek float64   `json:"weight_change_speed_kg_per_week" db:"weight_change_speed_kg_per_week"`

	AddBurnedCaloriesToGoal bool `json:"add_burned_calories_to_goal" db:"add_burned_calories_to_goal"`
	RolloverCalories        bool `json:"rollover_calories"           db:"rollover_calories"`

	CalorieGoal  int     `json:"calorie_goal"  db:"calorie_goal"`
	ProteinGrams int     `json:"protein_grams" db:"protein_grams"`
	CarbsGrams   int     `json:"carbs_grams"   db:"carbs_grams"`
	FatGrams     int     `json:"fat_grams"     db:"fat_grams"`
	FiberGrams   int     `json:"fiber_grams"   db:"fiber_grams"`
	SugarGrams   int     `json:"sugar_grams"   db:"sugar_grams"`
	SodiumMg     int     `json:"sodium_mg"     db:"sodium_mg"`
	WaterLiters  float64 `json:"water_liters"  db:"water_liters"`

	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`

	// Computed from the stored answers; not stored in DB.
	Computed *goals.Computation `json:"computed,omitempty" db:"-"`
}

// profile returns the calculator input. Unanswered fields stay zero so
// goals.Profile.Missing can report them.
func (p userProfile) profile() goals.Profile {
	out := goals.Profile{
		AgeYears:                   p.AgeYears,
		WorkoutsPerWeek:            p.WorkoutsPerWeek,
		WeightChangeSpeedKgPerWeek: p.WeightChangeSpeedKgPerWeek,
	}
	if p.Sex != nil {
		out.Sex = *p.Sex
	}
	if p.WeightKg != nil {
		out.WeightKg = *p.WeightKg
	}
	if p.HeightCm != nil {
		out.HeightCm = *p.HeightCm
	}
	if p.BirthDate != nil && !p.BirthDate.IsZero() {
		t := p.BirthDate.Time
		out.BirthDate = &t
	}
	if p.Goal != nil {
		out.Goal = *p.Goal
	}
	return out
}

func (p userProfile) goalSet() goals.GoalSet {
	return goals.GoalSet{
		CalorieGoal:  p.CalorieGoal,
		ProteinGrams: p.ProteinGrams,
		CarbsGrams:   p.CarbsGrams,
		FatGrams:     p.FatGrams,
		FiberGrams:   p.FiberGrams,
		SugarGrams:   p.SugarGrams,
		SodiumMg:     p.SodiumMg,
		WaterLiters:  p.WaterLiters,
	}
}

func (p userProfile) flags() goals.Flags {
	return goals.Flags{
		AddBurnedCaloriesToGoal: p.AddBurnedCaloriesToGoal,
		RolloverCalories:        p.RolloverCalories,
	}
}

// caloriesBurnedEntry maps to calories_burned. One row per user per date.
type caloriesBurnedEntry struct {
	ID       int      `json:"id"       db:"id"`
	UserID   int      `json:"user_id"  db:"user_id"`
	Date     DateOnly `json:"date"     db:"date"`
	Calories float64  `json:"calories" db:"calories"`
}

// weightEntry maps to weight_log. One row per user per date, in kilograms.
type weightEntry struct {
	ID        int        `json:"id"         db:"id"`
	UserID    int        `json:"user_id"    db:"user_id"`
	Date      DateOnly   `json:"date"       db:"date"`
	WeightKg  float64    `json:"weight_kg"  db:"weight_kg"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

/* ─── Request / response shapes ──────────────────────────────────────── */

// dailyLog is the response shape for GET /api/food-log/daily.
type dailyLog struct {
	Date      string           `json:"date"`
	Items     []foodLogItem    `json:"items"`
	Totals    nutrition.Totals `json:"totals"`
	Goals     goals.GoalSet    `json:"goals"`
	Effective goals.Effective  `json:"effective"`
	Remaining float64          `json:"calories_remaining"`
}

// createFoodLogItemRequest is the request body for POST /api/food-log/items.
type createFoodLogItemRequest struct {
	Date     string   `json:"date"`
	Name     string   `json:"name"`
	Quantity string   `json:"quantity"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	// Estimate asks the server to fill missing macros through the estimator.
	Estimate bool `json:"estimate"`
}

// patchProfileRequest is the request body for PATCH /api/profile.
// All fields are pointers; only non-nil fields get written to the database.
type patchProfileRequest struct {
	Sex                        *string  `json:"sex"`
	WeightKg                   *float64 `json:"weight_kg"`
	HeightCm                   *float64 `json:"height_cm"`
	BirthDate                  *string  `json:"birth_date"` // YYYY-MM-DD string, stored as date
	AgeYears                   *int     `json:"age_years"`
	WorkoutsPerWeek            *int     `json:"workouts_per_week"`
	Goal                       *string  `json:"goal"`
	WeightChangeSpeedKgPerWeek *float64 `json:"weight_change_speed_kg_per_week"`
	AddBurnedCaloriesToGoal    *bool    `json:"add_burned_calories_to_goal"`
	RolloverCalories           *bool    `json:"rollover_calories"`
}
