package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lg/plate-nutrition-api/goals"
)

// recomputeRequest is the request body for POST /api/goals/recompute.
// UseDefaults accepts the documented fallbacks for unanswered fields; Keep
// lists GoalSet fields that retain their stored value.
type recomputeRequest struct {
	UseDefaults bool          `json:"use_defaults"`
	Keep        []goals.Field `json:"keep"`
}

// recomputeResult is the response for POST /api/goals/recompute.
type recomputeResult struct {
	Goals       goals.GoalSet     `json:"goals"`
	Computation goals.Computation `json:"computation"`
}

var knownFields = map[goals.Field]bool{
	goals.FieldCalories: true, goals.FieldProtein: true, goals.FieldCarbs: true, goals.FieldFat: true,
	goals.FieldFiber: true, goals.FieldSugar: true, goals.FieldSodium: true, goals.FieldWater: true,
}

// recomputeFor runs the calculator over the stored profile and merges the
// result into the stored goals, honouring req.Keep.
func recomputeFor(p userProfile, req recomputeRequest, now time.Time) (recomputeResult, error) {
	explain := goals.Explain
	if req.UseDefaults {
		explain = goals.ExplainWithDefaults
	}
	comp, err := explain(p.profile(), now)
	if err != nil {
		return recomputeResult{}, err
	}
	merged := goals.Recompute(p.goalSet(), comp.Goals, req.Keep...)
	return recomputeResult{Goals: merged, Computation: comp}, nil
}

// recomputeGoals replaces the stored GoalSet with a fresh computation from the
// stored profile. An incomplete profile is a 422 listing the missing fields
// unless use_defaults is set.
// POST /api/goals/recompute.
func (h *Handler) recomputeGoals(c *gin.Context) {
	var req recomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength != 0 {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	for _, f := range req.Keep {
		if !knownFields[f] {
			apiError(c, http.StatusBadRequest, "unknown goal field: "+string(f))
			return
		}
	}

	store := userStore{db: h.db, userID: c.GetInt("user_id")}
	p, err := store.profile(c)
	if err != nil {
		profileError(c, err)
		return
	}

	result, err := recomputeFor(p, req, h.now())
	if err != nil {
		var missing *goals.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "profile incomplete", "missing": missing.Fields})
		case errors.Is(err, goals.ErrInvalidProfile):
			apiError(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[recomputeGoals] %v", err)
			apiError(c, http.StatusInternalServerError, "failed to compute goals")
		}
		return
	}

	if _, err := store.saveGoals(c, result.Goals); err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save goals")
		return
	}

	c.JSON(http.StatusOK, result)
}

// patchGoals applies a manual goal edit. Values are clamped to zero.
// PATCH /api/goals. Body: any of calorie_goal, protein_grams, carbs_grams, fat_grams.
func (h *Handler) patchGoals(c *gin.Context) {
	var edit goals.Edit
	if err := c.ShouldBindJSON(&edit); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if edit == (goals.Edit{}) {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	store := userStore{db: h.db, userID: c.GetInt("user_id")}
	p, err := store.profile(c)
	if err != nil {
		profileError(c, err)
		return
	}

	updated, err := store.saveGoals(c, edit.Apply(p.goalSet()))
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to save goals")
		return
	}

	c.JSON(http.StatusOK, updated.goalSet())
}

// getEffectiveGoal returns the calorie goal for a date after burned-calorie
// credit and rollover.
// GET /api/goals/effective?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getEffectiveGoal(c *gin.Context) {
	userID := c.GetInt("user_id")
	day, err := parseDate(c.Query("date"), h.today())
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	p, err := userStore{db: h.db, userID: userID}.profile(c)
	if err != nil {
		profileError(c, err)
		return
	}

	eff, err := h.resolver(userID).Resolve(c, day, p.goalSet(), p.flags())
	if err != nil {
		log.Printf("[getEffectiveGoal] %v", err)
		apiError(c, http.StatusInternalServerError, "failed to compute effective goal")
		return
	}

	c.JSON(http.StatusOK, eff)
}
