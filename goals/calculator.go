// Package goals derives daily nutrition targets from a user profile and
// resolves the calorie goal actually shown for a given day.
package goals

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Sex values accepted in a Profile. Anything but male uses the female BMR constant.
const (
	SexMale   = "male"
	SexFemale = "female"
	SexOther  = "other"
)

// Weight goals.
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// Documented fallbacks used only when the caller opts in with WithDefaults.
const (
	DefaultSex      = SexMale
	DefaultWeightKg = 70.0
	DefaultHeightCm = 170.0
	DefaultAge      = 25
	DefaultGoal     = GoalMaintain
)

// Formula constants.
const (
	minCalorieGoal  = 500
	minBMR          = 800.0
	maxBMR          = 4000.0
	kcalPerKgWeekly = 3500.0 / 7
	proteinPerKg    = 1.8
	fatPerKg        = 0.9
	fiberPer1000    = 14.0
	sugarShare      = 0.10
	sodiumMg        = 2300
	waterPerKg      = 0.035
	daysPerYear     = 365.25
)

var (
	// ErrProfileIncomplete means required onboarding answers are missing.
	ErrProfileIncomplete = errors.New("profile incomplete")
	// ErrInvalidProfile means a profile value is out of range or unknown.
	ErrInvalidProfile = errors.New("invalid profile")
)

// MissingFieldsError lists the profile fields that prevented a computation.
// It matches ErrProfileIncomplete with errors.Is.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%v: missing %s", ErrProfileIncomplete, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Is(target error) bool { return target == ErrProfileIncomplete }

// Profile is a snapshot of the onboarding answers. Zero weight or height and
// an empty sex or goal mean "not answered". Age comes from AgeYears, else
// BirthDate, else DefaultAge.
type Profile struct {
	Sex                        string     `json:"sex"`
	WeightKg                   float64    `json:"weight_kg"`
	HeightCm                   float64    `json:"height_cm"`
	AgeYears                   *int       `json:"age_years,omitempty"`
	BirthDate                  *time.Time `json:"birth_date,omitempty"`
	WorkoutsPerWeek            int        `json:"workouts_per_week"`
	Goal                       string     `json:"goal"`
	WeightChangeSpeedKgPerWeek float64    `json:"weight_change_speed_kg_per_week"`
}

// GoalSet is the stored set of daily targets.
type GoalSet struct {
	CalorieGoal  int     `json:"calorie_goal"`
	ProteinGrams int     `json:"protein_grams"`
	CarbsGrams   int     `json:"carbs_grams"`
	FatGrams     int     `json:"fat_grams"`
	FiberGrams   int     `json:"fiber_grams"`
	SugarGrams   int     `json:"sugar_grams"`
	SodiumMg     int     `json:"sodium_mg"`
	WaterLiters  float64 `json:"water_liters"`
}

// Computation is a GoalSet with the intermediate values that produced it.
type Computation struct {
	Age         int      `json:"age"`
	BMR         float64  `json:"bmr"`
	Multiplier  float64  `json:"activity_multiplier"`
	TDEE        float64  `json:"tdee"`
	CalorieDiff float64  `json:"calorie_delta"`
	Defaulted   []string `json:"defaulted,omitempty"`
	Goals       GoalSet  `json:"goals"`
}

// activityBands maps workouts per week to a TDEE multiplier; the first band
// whose minimum is met wins.
var activityBands = []struct {
	minWorkouts int
	multiplier  float64
}{
	{7, 1.9},
	{5, 1.725},
	{3, 1.55},
	{1, 1.375},
	{0, 1.2},
}

// ActivityMultiplier returns the TDEE multiplier for a weekly workout count.
func ActivityMultiplier(workoutsPerWeek int) float64 {
	for _, b := range activityBands {
		if workoutsPerWeek >= b.minWorkouts {
			return b.multiplier
		}
	}
	return activityBands[len(activityBands)-1].multiplier
}

/* ─── Profile helpers ────────────────────────────────────────────────── */

// WithDefaults fills unanswered fields with the documented fallbacks and
// reports which ones were filled. BMR is clamped for defaulted profiles.
func (p Profile) WithDefaults() (Profile, []string) {
	var filled []string
	if p.Sex == "" {
		p.Sex = DefaultSex
		filled = append(filled, "sex")
	}
	if p.WeightKg == 0 {
		p.WeightKg = DefaultWeightKg
		filled = append(filled, "weight_kg")
	}
	if p.HeightCm == 0 {
		p.HeightCm = DefaultHeightCm
		filled = append(filled, "height_cm")
	}
	if p.AgeYears == nil && p.BirthDate == nil {
		age := DefaultAge
		p.AgeYears = &age
		filled = append(filled, "age")
	}
	if p.Goal == "" {
		p.Goal = DefaultGoal
		filled = append(filled, "goal")
	}
	return p, filled
}

// Missing lists required fields that have no answer.
func (p Profile) Missing() []string {
	var missing []string
	if p.Sex == "" {
		missing = append(missing, "sex")
	}
	if p.WeightKg == 0 {
		missing = append(missing, "weight_kg")
	}
	if p.HeightCm == 0 {
		missing = append(missing, "height_cm")
	}
	if p.Goal == "" {
		missing = append(missing, "goal")
	}
	return missing
}

func (p Profile) validate() error {
	switch strings.ToLower(p.Sex) {
	case SexMale, SexFemale, SexOther:
	default:
		return fmt.Errorf("sex %q: %w", p.Sex, ErrInvalidProfile)
	}
	switch strings.ToLower(p.Goal) {
	case GoalLose, GoalMaintain, GoalGain:
	default:
		return fmt.Errorf("goal %q: %w", p.Goal, ErrInvalidProfile)
	}
	if p.WeightKg < 0 || p.HeightCm < 0 || p.WorkoutsPerWeek < 0 || p.WeightChangeSpeedKgPerWeek < 0 {
		return fmt.Errorf("negative measurement: %w", ErrInvalidProfile)
	}
	if p.AgeYears != nil && *p.AgeYears < 0 {
		return fmt.Errorf("age %d: %w", *p.AgeYears, ErrInvalidProfile)
	}
	return nil
}

// ageOn returns AgeYears when set, otherwise whole years elapsed since
// BirthDate using 365.25-day years. Future birth dates give 0.
func (p Profile) ageOn(now time.Time) (int, bool) {
	if p.AgeYears != nil {
		return *p.AgeYears, true
	}
	if p.BirthDate != nil {
		days := now.Sub(*p.BirthDate).Hours() / 24
		return max(0, int(math.Floor(days/daysPerYear))), true
	}
	return DefaultAge, false
}

/* ─── Calculation ────────────────────────────────────────────────────── */

// Compute derives a GoalSet from p. It fails with ErrProfileIncomplete when
// sex, weight, height or goal is unanswered; use p.WithDefaults() first to
// accept the documented fallbacks instead.
func Compute(p Profile, now time.Time) (GoalSet, error) {
	c, err := Explain(p, now)
	if err != nil {
		return GoalSet{}, err
	}
	return c.Goals, nil
}

// Explain is Compute with the intermediate BMR, TDEE and calorie delta.
func Explain(p Profile, now time.Time) (Computation, error) {
	return explain(p, now, nil)
}

// ExplainWithDefaults applies WithDefaults and computes. Missing age alone is
// not an error in either path; it falls back to DefaultAge.
func ExplainWithDefaults(p Profile, now time.Time) (Computation, error) {
	filled, defaulted := p.WithDefaults()
	return explain(filled, now, defaulted)
}

func explain(p Profile, now time.Time, defaulted []string) (Computation, error) {
	if missing := p.Missing(); len(missing) > 0 {
		return Computation{}, &MissingFieldsError{Fields: missing}
	}
	if err := p.validate(); err != nil {
		return Computation{}, err
	}

	age, known := p.ageOn(now)
	if !known {
		defaulted = append(defaulted, "age")
	}

	bmr := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(age)
	if strings.ToLower(p.Sex) == SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	if len(defaulted) > 0 {
		bmr = min(maxBMR, max(minBMR, bmr))
	}

	mult := ActivityMultiplier(p.WorkoutsPerWeek)
	tdee := bmr * mult

	delta := p.WeightChangeSpeedKgPerWeek * kcalPerKgWeekly
	target := tdee
	switch strings.ToLower(p.Goal) {
	case GoalLose:
		target -= delta
	case GoalGain:
		target += delta
	}
	calorieGoal := max(minCalorieGoal, int(roundHalfUp(target)))

	return Computation{
		Age:         age,
		BMR:         bmr,
		Multiplier:  mult,
		TDEE:        tdee,
		CalorieDiff: delta,
		Defaulted:   defaulted,
		Goals:       targetsFor(calorieGoal, p.WeightKg),
	}, nil
}

// targetsFor derives macro and micro targets from a calorie goal and body weight.
func targetsFor(calorieGoal int, weightKg float64) GoalSet {
	kcal := float64(calorieGoal)
	// Carbs take whatever the rounded protein and fat targets leave, so the
	// three macros add back up to the calorie goal within 2 kcal.
	protein := roundHalfUp(weightKg * proteinPerKg)
	fat := roundHalfUp(weightKg * fatPerKg)
	carbs := (kcal - protein*4 - fat*9) / 4

	return GoalSet{
		CalorieGoal:  calorieGoal,
		ProteinGrams: int(protein),
		CarbsGrams:   int(roundHalfUp(carbs)),
		FatGrams:     int(fat),
		FiberGrams:   int(roundHalfUp(kcal / 1000 * fiberPer1000)),
		SugarGrams:   int(roundHalfUp(kcal * sugarShare / 4)),
		SodiumMg:     sodiumMg,
		WaterLiters:  roundHalfUp(weightKg*waterPerKg*100) / 100,
	}
}

// roundHalfUp rounds .5 toward +Inf, unlike math.Round which rounds away from zero.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

/* ─── Partial recompute ──────────────────────────────────────────────── */

// Field names a GoalSet field that a recompute can leave untouched.
type Field string

const (
	FieldCalories Field = "calorie_goal"
	FieldProtein  Field = "protein_grams"
	FieldCarbs    Field = "carbs_grams"
	FieldFat      Field = "fat_grams"
	FieldFiber    Field = "fiber_grams"
	FieldSugar    Field = "sugar_grams"
	FieldSodium   Field = "sodium_mg"
	FieldWater    Field = "water_liters"
)

// MacroFields are the targets a body-metrics edit must not silently change.
var MacroFields = []Field{FieldProtein, FieldCarbs, FieldFat, FieldFiber, FieldSugar, FieldSodium}

// Recompute replaces current with a fresh computation except for the fields
// listed in keep, which retain their current values.
func Recompute(current GoalSet, fresh GoalSet, keep ...Field) GoalSet {
	out := fresh
	for _, f := range keep {
		switch f {
		case FieldCalories:
			out.CalorieGoal = current.CalorieGoal
		case FieldProtein:
			out.ProteinGrams = current.ProteinGrams
		case FieldCarbs:
			out.CarbsGrams = current.CarbsGrams
		case FieldFat:
			out.FatGrams = current.FatGrams
		case FieldFiber:
			out.FiberGrams = current.FiberGrams
		case FieldSugar:
			out.SugarGrams = current.SugarGrams
		case FieldSodium:
			out.SodiumMg = current.SodiumMg
		case FieldWater:
			out.WaterLiters = current.WaterLiters
		}
	}
	return out
}

// Edit applies a manual goal edit. Negative values are clamped to zero and
// nil fields keep their current value.
type Edit struct {
	CalorieGoal  *int `json:"calorie_goal"`
	ProteinGrams *int `json:"protein_grams"`
	CarbsGrams   *int `json:"carbs_grams"`
	FatGrams     *int `json:"fat_grams"`
}

// Apply returns g with the edit applied.
func (e Edit) Apply(g GoalSet) GoalSet {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = max(0, *v)
		}
	}
	set(&g.CalorieGoal, e.CalorieGoal)
	set(&g.ProteinGrams, e.ProteinGrams)
	set(&g.CarbsGrams, e.CarbsGrams)
	set(&g.FatGrams, e.FatGrams)
	return g
}
