package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/plate-nutrition-api/goals"
	"lg/plate-nutrition-api/nutrition"
)

// validSources is the set of allowed values for food_log_items.source.
// Manual entries are stored as "Manual".
var validSources = map[string]bool{
	string(nutrition.SourceDatabaseMatch):    true,
	string(nutrition.SourceLLMEstimate):      true,
	string(nutrition.SourceEstimationFailed): true,
	sourceManual:                             true,
}

const sourceManual = "Manual"

// buildDailyLog assembles the daily response from the day's items, the stored
// goals and the resolved effective goal.
func buildDailyLog(date string, items []foodLogItem, g goals.GoalSet, eff goals.Effective) dailyLog {
	totals := nutrition.DailyTotals(loggedRecords(items), date)
	return dailyLog{
		Date:      date,
		Items:     items,
		Totals:    totals,
		Goals:     g,
		Effective: eff,
		Remaining: eff.Goal - totals.Calories,
	}
}

// getDailyLog returns the day's items, totals, goals and effective calorie goal.
// GET /api/food-log/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailyLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	day, err := parseDate(c.Query("date"), h.today())
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	date := day.Format(nutrition.DateLayout)

	store := userStore{db: h.db, userID: userID}
	items, err := store.items(c, date, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch items")
		return
	}

	profile, err := store.profile(c)
	if err != nil {
		profileError(c, err)
		return
	}

	eff, err := h.resolver(userID).Resolve(c, day, profile.goalSet(), profile.flags())
	if err != nil {
		log.Printf("[getDailyLog] resolve effective goal: %v", err)
		apiError(c, http.StatusInternalServerError, "failed to compute effective goal")
		return
	}

	c.JSON(http.StatusOK, buildDailyLog(date, items, profile.goalSet(), eff))
}

// getWeekLog returns per-day totals for the seven days ending on end, oldest
// first, each labelled with its short weekday name.
// GET /api/food-log/week?end=YYYY-MM-DD (defaults to today).
func (h *Handler) getWeekLog(c *gin.Context) {
	end, err := parseDate(c.Query("end"), h.today())
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	start := end.AddDate(0, 0, -6)

	store := userStore{db: h.db, userID: c.GetInt("user_id")}
	items, err := store.items(c, start.Format(nutrition.DateLayout), end.Format(nutrition.DateLayout))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch week data")
		return
	}

	c.JSON(http.StatusOK, nutrition.Week(loggedRecords(items), end))
}

// createFoodLogItem inserts a manual food log entry. With estimate=true and no
// calories supplied, the macros come from the nutrition estimator instead.
// POST /api/food-log/items. Defaults date to today if omitted.
func (h *Handler) createFoodLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createFoodLogItemRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := parseDate(body.Date, h.today()); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.Date == "" {
		body.Date = h.today()
	}

	rec, err := h.manualRecord(c, body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	var note *string
	if rec.Note != "" {
		note = &rec.Note
	}
	item, err := queryOne[foodLogItem](h.db, c,
		`INSERT INTO food_log_items (user_id, date, name, quantity, calories, protein, carbs, fat, source, note)
		 VALUES (@userID, @date, @name, @quantity, @calories, @protein, @carbs, @fat, @source, @note)
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "date": body.Date, "name": rec.Name, "quantity": rec.Quantity,
			"calories": rec.Calories, "protein": rec.Protein, "carbs": rec.Carbs, "fat": rec.Fat,
			"source": string(rec.Source), "note": note,
		})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// manualRecord turns a create request into a record. Supplied macros must be
// non-negative; estimate=true without calories runs the estimator.
func (h *Handler) manualRecord(c *gin.Context, body createFoodLogItemRequest) (nutrition.NutritionRecord, error) {
	if body.Estimate && body.Calories == nil {
		if body.Quantity == "" {
			return nutrition.NutritionRecord{}, errors.New("quantity is required to estimate")
		}
		return h.estimator.Estimate(c.Request.Context(), nutrition.FoodMention{Name: body.Name, Quantity: body.Quantity}), nil
	}
	if body.Calories == nil {
		return nutrition.NutritionRecord{}, errors.New("calories is required")
	}

	rec := nutrition.NutritionRecord{Name: body.Name, Quantity: body.Quantity, Source: sourceManual}
	for _, f := range []struct {
		dst *float64
		src *float64
	}{
		{&rec.Calories, body.Calories},
		{&rec.Protein, body.Protein},
		{&rec.Carbs, body.Carbs},
		{&rec.Fat, body.Fat},
	} {
		if f.src == nil {
			continue
		}
		if *f.src < 0 {
			return nutrition.NutritionRecord{}, errors.New("nutrition values must not be negative")
		}
		*f.dst = *f.src
	}
	return rec, nil
}

// updateFoodLogItem updates an existing food log entry.
// PUT /api/food-log/items/:id. Uses COALESCE so omitted fields keep their current value.
func (h *Handler) updateFoodLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	var body struct {
		Date     *string  `json:"date"`
		Name     *string  `json:"name"`
		Quantity *string  `json:"quantity"`
		Calories *float64 `json:"calories"`
		Protein  *float64 `json:"protein"`
		Carbs    *float64 `json:"carbs"`
		Fat      *float64 `json:"fat"`
		Source   *string  `json:"source"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil {
		if _, err := parseDate(*body.Date, ""); err != nil {
			apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
	}
	for _, v := range []*float64{body.Calories, body.Protein, body.Carbs, body.Fat} {
		if v != nil && *v < 0 {
			apiError(c, http.StatusBadRequest, "nutrition values must not be negative")
			return
		}
	}
	// Validate source against the allowed set; prevents a cryptic 500 from the DB constraint.
	if body.Source != nil && !validSources[*body.Source] {
		apiError(c, http.StatusBadRequest, "source must be one of: DatabaseMatch, LLMEstimate, EstimationFailed, Manual")
		return
	}

	item, err := queryOne[foodLogItem](h.db, c,
		`UPDATE food_log_items SET
			date = COALESCE(@date, date),
			name = COALESCE(@name, name),
			quantity = COALESCE(@quantity, quantity),
			calories = COALESCE(@calories, calories),
			protein = COALESCE(@protein, protein),
			carbs = COALESCE(@carbs, carbs),
			fat = COALESCE(@fat, fat),
			source = COALESCE(@source, source),
			updated_at = now()
		 WHERE id = @id AND user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"id": id, "userID": userID,
			"date": body.Date, "name": body.Name, "quantity": body.Quantity,
			"calories": body.Calories, "protein": body.Protein, "carbs": body.Carbs,
			"fat": body.Fat, "source": body.Source,
		})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			apiError(c, http.StatusNotFound, "item not found")
		} else {
			apiError(c, http.StatusInternalServerError, "failed to update item")
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// deleteFoodLogItem removes a food log entry. Returns 204 on success.
// DELETE /api/food-log/items/:id.
func (h *Handler) deleteFoodLogItem(c *gin.Context) {
	userID := c.GetInt("user_id")
	id := c.Param("id")

	result, err := h.db.Exec(c,
		"DELETE FROM food_log_items WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if result.RowsAffected() == 0 {
		apiError(c, http.StatusNotFound, "item not found")
		return
	}

	c.Status(http.StatusNoContent)
}
