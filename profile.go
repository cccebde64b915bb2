package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"lg/plate-nutrition-api/goals"
)

// getProfile returns the profile for the authenticated user. The computed
// BMR/TDEE breakdown is attached when the profile is complete.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := userStore{db: h.db, userID: c.GetInt("user_id")}.profile(c)
	if err != nil {
		profileError(c, err)
		return
	}

	h.populateComputed(&p)

	c.JSON(http.StatusOK, p)
}

// profileError answers a failed profile load: 404 when the user has no
// profile row, 500 otherwise.
func profileError(c *gin.Context, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	apiError(c, http.StatusInternalServerError, "failed to fetch profile")
}

// populateComputed fills p.Computed when the stored answers are complete.
func (h *Handler) populateComputed(p *userProfile) {
	if comp, err := goals.Explain(p.profile(), h.now()); err == nil {
		p.Computed = &comp
	}
}

// validateProfilePatch rejects values the calculator would refuse later, so a
// bad answer surfaces now instead of at the next recompute.
func validateProfilePatch(body patchProfileRequest) error {
	if body.Sex != nil {
		switch *body.Sex {
		case goals.SexMale, goals.SexFemale, goals.SexOther:
		default:
			return errors.New("sex must be one of: male, female, other")
		}
	}
	if body.Goal != nil {
		switch *body.Goal {
		case goals.GoalLose, goals.GoalMaintain, goals.GoalGain:
		default:
			return errors.New("goal must be one of: lose, maintain, gain")
		}
	}
	if body.WeightKg != nil && (*body.WeightKg <= 0 || *body.WeightKg > 700) {
		return errors.New("weight_kg must be between 0 and 700")
	}
	if body.HeightCm != nil && (*body.HeightCm <= 0 || *body.HeightCm > 300) {
		return errors.New("height_cm must be between 0 and 300")
	}
	if body.AgeYears != nil && (*body.AgeYears < 0 || *body.AgeYears > 130) {
		return errors.New("age_years must be between 0 and 130")
	}
	if body.WorkoutsPerWeek != nil && (*body.WorkoutsPerWeek < 0 || *body.WorkoutsPerWeek > 21) {
		return errors.New("workouts_per_week must be between 0 and 21")
	}
	if body.WeightChangeSpeedKgPerWeek != nil && (*body.WeightChangeSpeedKgPerWeek < 0 || *body.WeightChangeSpeedKgPerWeek > 2) {
		return errors.New("weight_change_speed_kg_per_week must be between 0 and 2")
	}
	if body.BirthDate != nil {
		if _, err := parseDate(*body.BirthDate, ""); err != nil {
			return errors.New("invalid birth_date, expected YYYY-MM-DD")
		}
	}
	return nil
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Uses pointer fields in the request body to distinguish
// "not provided" from zero. Stored goals are never touched here; a full
// recompute is POST /api/goals/recompute.
func (h *Handler) patchProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body patchProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateProfilePatch(body); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Build SET clause dynamically: only update fields the client actually sent
	setClauses := []string{}
	args := pgx.NamedArgs{"userID": userID}
	set := func(column, arg string, value any) {
		setClauses = append(setClauses, column+" = @"+arg)
		args[arg] = value
	}

	if body.Sex != nil {
		set("sex", "sex", *body.Sex)
	}
	if body.WeightKg != nil {
		set("weight_kg", "weightKg", *body.WeightKg)
	}
	if body.HeightCm != nil {
		set("height_cm", "heightCm", *body.HeightCm)
	}
	if body.BirthDate != nil {
		set("birth_date", "birthDate", *body.BirthDate)
	}
	if body.AgeYears != nil {
		set("age_years", "ageYears", *body.AgeYears)
	}
	if body.WorkoutsPerWeek != nil {
		set("workouts_per_week", "workoutsPerWeek", *body.WorkoutsPerWeek)
	}
	if body.Goal != nil {
		set("goal", "goal", *body.Goal)
	}
	if body.WeightChangeSpeedKgPerWeek != nil {
		set("weight_change_speed_kg_per_week", "speed", *body.WeightChangeSpeedKgPerWeek)
	}
	if body.AddBurnedCaloriesToGoal != nil {
		set("add_burned_calories_to_goal", "addBurned", *body.AddBurnedCaloriesToGoal)
	}
	if body.RolloverCalories != nil {
		set("rollover_calories", "rollover", *body.RolloverCalories)
	}

	if len(setClauses) == 0 {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	query := "UPDATE user_profiles SET " +
		strings.Join(setClauses, ", ") +
		", updated_at = now() WHERE user_id = @userID RETURNING *"

	p, err := queryOne[userProfile](h.db, c, query, args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.populateComputed(&p)

	c.JSON(http.StatusOK, p)
}
