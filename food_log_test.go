package main

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"lg/plate-nutrition-api/goals"
	"lg/plate-nutrition-api/nutrition"
)

func logItem(date string, name string, kcal, p, c, f float64) foodLogItem {
	d, _ := time.Parse(nutrition.DateLayout, date)
	return foodLogItem{Date: DateOnly{d}, Name: name, Calories: kcal, Protein: p, Carbs: c, Fat: f, Source: sourceManual}
}

/* ─── Daily log assembly ─────────────────────────────────────────────── */

func TestBuildDailyLog(t *testing.T) {
	items := []foodLogItem{
		logItem("2026-03-04", "Oatmeal", 150, 5, 27, 3),
		logItem("2026-03-04", "Banana", 105, 1.3, 27, 0.4),
	}
	g := goals.GoalSet{CalorieGoal: 2000}
	eff := goals.EffectiveCalorieGoal(2000, goals.Day{Burned: 300}, goals.Day{}, goals.Flags{AddBurnedCaloriesToGoal: true})

	got := buildDailyLog("2026-03-04", items, g, eff)

	if got.Totals.Calories != 255 || got.Totals.Carbs != 54 {
		t.Errorf("unexpected totals: %+v", got.Totals)
	}
	if got.Effective.Goal != 2300 {
		t.Errorf("effective goal = %v, want 2300", got.Effective.Goal)
	}
	if got.Remaining != 2045 {
		t.Errorf("remaining = %v, want 2045", got.Remaining)
	}
}

func TestBuildDailyLog_Empty(t *testing.T) {
	got := buildDailyLog("2026-03-04", []foodLogItem{}, goals.GoalSet{CalorieGoal: 1800}, goals.Effective{Base: 1800, Goal: 1800})
	if got.Totals != (nutrition.Totals{}) {
		t.Errorf("expected zero totals, got %+v", got.Totals)
	}
	if got.Remaining != 1800 {
		t.Errorf("remaining = %v, want 1800", got.Remaining)
	}

	body, _ := json.Marshal(got)
	var decoded map[string]any
	json.Unmarshal(body, &decoded)
	if items, ok := decoded["items"].([]any); !ok || len(items) != 0 {
		t.Errorf("expected items to marshal as [], got %v", decoded["items"])
	}
}

func TestLoggedRecords(t *testing.T) {
	note := "Could not estimate nutrition values"
	item := logItem("2026-03-01", "Mystery stew", 0, 0, 0, 0)
	item.Source = string(nutrition.SourceEstimationFailed)
	item.Note = &note

	recs := loggedRecords([]foodLogItem{item})
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Date != "2026-03-01" || recs[0].Source != nutrition.SourceEstimationFailed || recs[0].Note != note {
		t.Errorf("unexpected record: %+v", recs[0])
	}
}

/* ─── Manual item validation (no DB) ─────────────────────────────────── */

func TestCreateFoodLogItem_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nutrition.NewEstimator(nil, nil, nutrition.EstimatorConfig{}), nil)
	router := gin.New()
	router.POST("/api/food-log/items", func(c *gin.Context) {
		c.Set("user_id", 1)
		c.Next()
	}, h.createFoodLogItem)

	cases := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"missing name", `{"calories":100}`},
		{"missing calories", `{"name":"Toast"}`},
		{"negative protein", `{"name":"Toast","calories":80,"protein":-1}`},
		{"estimate without quantity", `{"name":"Toast","estimate":true}`},
		{"bad date", `{"name":"Toast","calories":80,"date":"yesterday"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/food-log/items", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateFoodLogItem_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.PUT("/api/food-log/items/:id", h.updateFoodLogItem)

	cases := []struct {
		name string
		body string
	}{
		{"bad date", `{"date":"2026-02-30"}`},
		{"negative fat", `{"fat":-2}`},
		{"unknown source", `{"source":"Guess"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "PUT", "/api/food-log/items/7", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestWeekLog_BadEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.GET("/api/food-log/week", h.getWeekLog)

	w := doJSON(router, "GET", "/api/food-log/week?end=last-sunday", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

/* ─── Burned calories and weight validation (no DB) ──────────────────── */

func TestPutCaloriesBurned_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.PUT("/api/calories-burned", h.putCaloriesBurned)

	for _, body := range []string{
		`{"date":"2026-03-04"}`,
		`{"date":"2026-03-04","calories":-10}`,
		`{"date":"2026-03-04","calories":25000}`,
		`{"date":"04-03-2026","calories":300}`,
	} {
		w := doJSON(router, "PUT", "/api/calories-burned", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestUpsertWeightEntry_Validation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.POST("/api/weight-log", h.upsertWeightEntry)

	for _, body := range []string{
		`{"weight_kg":70}`,
		`{"date":"2026-03-04","weight_kg":0}`,
		`{"date":"2026-03-04","weight_kg":701}`,
		`{"date":"2026-3-4","weight_kg":70}`,
	} {
		w := doJSON(router, "POST", "/api/weight-log", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestGetWeightLog_RangeValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newHandler(nil, nil, nil)
	router := gin.New()
	router.GET("/api/weight-log", h.getWeightLog)

	for _, query := range []string{
		"",
		"?start=2026-03-01",
		"?start=2026-03-10&end=2026-03-01",
		"?start=2026-03-01&end=soon",
	} {
		w := doJSON(router, "GET", "/api/weight-log"+query, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%q: expected 400, got %d", query, w.Code)
		}
	}
}

/* ─── Small helpers ──────────────────────────────────────────────────── */

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc-123", "abc-123", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		if token != tc.token || ok != tc.ok {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestDateOnlyJSON(t *testing.T) {
	var d DateOnly
	if err := json.Unmarshal([]byte(`"2026-03-04"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.String() != "2026-03-04" {
		t.Errorf("String() = %q", d.String())
	}
	out, _ := json.Marshal(d)
	if string(out) != `"2026-03-04"` {
		t.Errorf("marshal = %s", out)
	}
	if err := json.Unmarshal([]byte(`"03/04/2026"`), &d); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
