package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/plate-nutrition-api/goals"
)

var testNow = time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

func datePtr(t time.Time) *DateOnly { return &DateOnly{t} }

// makeProfile constructs a fully-answered userProfile row: an 80 kg / 180 cm
// male born mid-1996 losing 0.5 kg a week on three workouts. Individual tests
// nil out fields to exercise the incomplete-profile path.
func makeProfile() userProfile {
	return userProfile{
		UserID:                     1,
		Sex:                        strPtr(goals.SexMale),
		WeightKg:                   floatPtr(80),
		HeightCm:                   floatPtr(180),
		BirthDate:                  datePtr(time.Date(1996, 1, 1, 0, 0, 0, 0, time.UTC)),
		WorkoutsPerWeek:            3,
		Goal:                       strPtr(goals.GoalLose),
		WeightChangeSpeedKgPerWeek: 0.5,
	}
}

/* ─── Row → calculator input ─────────────────────────────────────────── */

func TestUserProfile_Profile(t *testing.T) {
	p := makeProfile().profile()
	if p.Sex != "male" || p.WeightKg != 80 || p.HeightCm != 180 || p.Goal != "lose" {
		t.Errorf("unexpected profile: %+v", p)
	}
	if p.BirthDate == nil || p.BirthDate.Year() != 1996 {
		t.Errorf("expected birth date 1996, got %v", p.BirthDate)
	}

	empty := userProfile{}.profile()
	if missing := empty.Missing(); !reflect.DeepEqual(missing, []string{"sex", "weight_kg", "height_cm", "goal"}) {
		t.Errorf("expected every required field missing, got %v", missing)
	}
}

/* ─── Recompute ──────────────────────────────────────────────────────── */

// TestRecomputeFor_Reference checks the stored-profile path end to end.
// Age on 2026-06-15 is 30, so BMR = 800 + 1125 - 150 + 5 = 1780, TDEE = 2759
// and the goal is 2759 - 250 = 2509.
func TestRecomputeFor_Reference(t *testing.T) {
	res, err := recomputeFor(makeProfile(), recomputeRequest{}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := goals.GoalSet{
		CalorieGoal: 2509, ProteinGrams: 144, CarbsGrams: 321, FatGrams: 72,
		FiberGrams: 35, SugarGrams: 63, SodiumMg: 2300, WaterLiters: 2.8,
	}
	if res.Goals != want {
		t.Errorf("goals = %+v, want %+v", res.Goals, want)
	}
	if res.Computation.Age != 30 {
		t.Errorf("age = %d, want 30", res.Computation.Age)
	}
}

func TestRecomputeFor_Idempotent(t *testing.T) {
	p := makeProfile()
	first, err := recomputeFor(p, recomputeRequest{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	second, err := recomputeFor(p, recomputeRequest{}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if first.Goals != second.Goals {
		t.Errorf("recompute not idempotent: %+v vs %+v", first.Goals, second.Goals)
	}
}

// TestRecomputeFor_KeepsMacros verifies a weight change with keep=macro fields
// moves the calorie goal but leaves the stored macro targets alone.
func TestRecomputeFor_KeepsMacros(t *testing.T) {
	p := makeProfile()
	p.ProteinGrams, p.CarbsGrams, p.FatGrams = 150, 200, 60
	p.FiberGrams, p.SugarGrams, p.SodiumMg = 30, 50, 2000
	p.WeightKg = floatPtr(90)

	res, err := recomputeFor(p, recomputeRequest{Keep: goals.MacroFields}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if res.Goals.ProteinGrams != 150 || res.Goals.CarbsGrams != 200 || res.Goals.FatGrams != 60 {
		t.Errorf("macros changed: %+v", res.Goals)
	}
	if res.Goals.FiberGrams != 30 || res.Goals.SugarGrams != 50 || res.Goals.SodiumMg != 2000 {
		t.Errorf("micros changed: %+v", res.Goals)
	}
	// 10 more kg adds 100 kcal of BMR, times 1.55.
	if res.Goals.CalorieGoal != 2664 {
		t.Errorf("calorie goal = %d, want 2664", res.Goals.CalorieGoal)
	}
}

func TestRecomputeFor_Incomplete(t *testing.T) {
	cases := []struct {
		name    string
		mutFn   func(p *userProfile)
		missing []string
	}{
		{"nil Sex", func(p *userProfile) { p.Sex = nil }, []string{"sex"}},
		{"nil WeightKg", func(p *userProfile) { p.WeightKg = nil }, []string{"weight_kg"}},
		{"nil HeightCm", func(p *userProfile) { p.HeightCm = nil }, []string{"height_cm"}},
		{"nil Goal", func(p *userProfile) { p.Goal = nil }, []string{"goal"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := makeProfile()
			tc.mutFn(&p)
			_, err := recomputeFor(p, recomputeRequest{}, testNow)
			var missing *goals.MissingFieldsError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingFieldsError, got %v", err)
			}
			if !reflect.DeepEqual(missing.Fields, tc.missing) {
				t.Errorf("missing = %v, want %v", missing.Fields, tc.missing)
			}
			if !errors.Is(err, goals.ErrProfileIncomplete) {
				t.Error("expected errors.Is(err, ErrProfileIncomplete)")
			}
		})
	}
}

// TestRecomputeFor_UseDefaults verifies an empty profile computes from the
// documented fallbacks and reports which answers were assumed.
func TestRecomputeFor_UseDefaults(t *testing.T) {
	res, err := recomputeFor(userProfile{}, recomputeRequest{UseDefaults: true}, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"sex", "weight_kg", "height_cm", "age", "goal"}
	if !reflect.DeepEqual(res.Computation.Defaulted, want) {
		t.Errorf("defaulted = %v, want %v", res.Computation.Defaulted, want)
	}
	// 700 + 1062.5 - 125 + 5 = 1642.5, sedentary x1.2 = 1971
	if res.Goals.CalorieGoal != 1971 {
		t.Errorf("calorie goal = %d, want 1971", res.Goals.CalorieGoal)
	}
}

/* ─── Handler guards (no DB) ─────────────────────────────────────────── */

func TestRecomputeGoals_UnknownKeepField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.POST("/api/goals/recompute", h.recomputeGoals)

	w := doJSON(router, "POST", "/api/goals/recompute", `{"keep":["protein_grams","vitamin_c"]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPatchGoals_EmptyEdit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.PATCH("/api/goals", h.patchGoals)

	w := doJSON(router, "PATCH", "/api/goals", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetEffectiveGoal_BadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.GET("/api/goals/effective", h.getEffectiveGoal)

	w := doJSON(router, "GET", "/api/goals/effective?date=2026-13-01", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

/* ─── Profile patch validation ───────────────────────────────────────── */

func TestValidateProfilePatch(t *testing.T) {
	cases := []struct {
		name    string
		body    patchProfileRequest
		wantErr bool
	}{
		{"empty", patchProfileRequest{}, false},
		{"valid", patchProfileRequest{Sex: strPtr("female"), WeightKg: floatPtr(61.5), Goal: strPtr("gain")}, false},
		{"bad sex", patchProfileRequest{Sex: strPtr("M")}, true},
		{"bad goal", patchProfileRequest{Goal: strPtr("bulk")}, true},
		{"zero weight", patchProfileRequest{WeightKg: floatPtr(0)}, true},
		{"tall", patchProfileRequest{HeightCm: floatPtr(320)}, true},
		{"negative age", patchProfileRequest{AgeYears: intPtr(-1)}, true},
		{"too many workouts", patchProfileRequest{WorkoutsPerWeek: intPtr(22)}, true},
		{"fast loss", patchProfileRequest{WeightChangeSpeedKgPerWeek: floatPtr(2.5)}, true},
		{"bad birth date", patchProfileRequest{BirthDate: strPtr("1996/01/01")}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateProfilePatch(tc.body)
			if (err != nil) != tc.wantErr {
				t.Errorf("validateProfilePatch() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestPatchProfile_NoFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.PATCH("/api/profile", h.patchProfile)

	w := doJSON(router, "PATCH", "/api/profile", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPopulateComputed(t *testing.T) {
	h := newHandler(nil, nil, nil)
	h.now = func() time.Time { return testNow }

	p := makeProfile()
	h.populateComputed(&p)
	if p.Computed == nil || p.Computed.BMR != 1780 {
		t.Fatalf("expected computed BMR 1780, got %+v", p.Computed)
	}

	incomplete := userProfile{Sex: strPtr("male")}
	h.populateComputed(&incomplete)
	if incomplete.Computed != nil {
		t.Errorf("expected no computation for an incomplete profile, got %+v", incomplete.Computed)
	}
}

// TestProfileError checks every handler that loads the profile answers a
// missing row with 404 and anything else with 500.
func TestProfileError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"no row", pgx.ErrNoRows, http.StatusNotFound},
		{"wrapped no row", fmt.Errorf("load profile: %w", pgx.ErrNoRows), http.StatusNotFound},
		{"db failure", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			profileError(c, tc.err)
			if w.Code != tc.status {
				t.Errorf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
		})
	}
}
