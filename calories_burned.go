package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/plate-nutrition-api/nutrition"
)

// getCaloriesBurned returns the exercise calories logged for a date; 0 when
// nothing was logged.
// GET /api/calories-burned?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getCaloriesBurned(c *gin.Context) {
	day, err := parseDate(c.Query("date"), h.today())
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	date := day.Format(nutrition.DateLayout)

	burned, err := userStore{db: h.db, userID: c.GetInt("user_id")}.CaloriesBurned(c, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch calories burned")
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "calories": burned})
}

// putCaloriesBurned sets the exercise calories for a date.
// PUT /api/calories-burned. Body: { "date": "YYYY-MM-DD", "calories": 320 }.
// The UNIQUE(user_id, date) constraint means a second PUT replaces the value.
func (h *Handler) putCaloriesBurned(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date     string   `json:"date"`
		Calories *float64 `json:"calories"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	day, err := parseDate(body.Date, h.today())
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.Calories == nil || *body.Calories < 0 || *body.Calories > 20000 {
		apiError(c, http.StatusBadRequest, "calories must be between 0 and 20000")
		return
	}

	entry, err := queryOne[caloriesBurnedEntry](h.db, c,
		`INSERT INTO calories_burned (user_id, date, calories)
		 VALUES (@userID, @date, @calories)
		 ON CONFLICT (user_id, date) DO UPDATE SET calories = EXCLUDED.calories
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": day.Format(nutrition.DateLayout), "calories": *body.Calories})
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save calories burned")
		return
	}

	c.JSON(http.StatusOK, entry)
}
