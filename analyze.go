package main

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lg/plate-nutrition-api/nutrition"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// analyzeRequest is the request body for POST /api/analyze. Either ImageURL
// or Foods must be set; ImageURL wins when both are.
type analyzeRequest struct {
	ImageURL string                  `json:"image_url"`
	Foods    []nutrition.FoodMention `json:"foods"`
	Date     string                  `json:"date"`
	Save     bool                    `json:"save"`
}

// analyzeResponse is one estimated upload. Saved holds the persisted rows
// when the request asked for them.
type analyzeResponse struct {
	UploadID uuid.UUID                   `json:"upload_id"`
	Mentions []nutrition.FoodMention     `json:"mentions"`
	Items    []nutrition.NutritionRecord `json:"items"`
	Totals   nutrition.Totals            `json:"totals"`
	Saved    []foodLogItem               `json:"saved,omitempty"`
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// analyze handles POST /api/analyze. Identifies foods in the image (or takes
// the supplied mentions), estimates every item concurrently and optionally
// files the results in the food log under date.
func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" && len(req.Foods) == 0 {
		apiError(c, http.StatusBadRequest, "image_url or foods is required")
		return
	}
	date, err := parseDate(req.Date, h.today())
	if err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if req.Save && h.db == nil {
		apiError(c, http.StatusServiceUnavailable, "food log unavailable")
		return
	}

	mentions := req.Foods
	if req.ImageURL != "" {
		if h.vision == nil {
			apiError(c, http.StatusServiceUnavailable, "image analysis unavailable")
			return
		}
		mentions, err = h.vision.IdentifyFoods(c.Request.Context(), req.ImageURL)
		if err != nil {
			log.Printf("[analyze] vision error: %v", err)
			if errors.Is(err, nutrition.ErrMalformedMentions) {
				apiError(c, http.StatusBadGateway, "could not read foods from image analysis")
			} else {
				apiError(c, http.StatusBadGateway, "image analysis failed")
			}
			return
		}
	} else {
		for _, m := range mentions {
			if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Quantity) == "" {
				apiError(c, http.StatusBadRequest, "every food needs a name and quantity")
				return
			}
		}
	}

	batch := h.estimator.EstimateAll(c.Request.Context(), mentions)
	resp := analyzeResponse{
		UploadID: uuid.New(),
		Mentions: mentions,
		Items:    batch.Items,
		Totals:   batch.Totals,
	}

	if req.Save && len(batch.Items) > 0 {
		saved, err := h.saveBatch(c, c.GetInt("user_id"), date.Format(nutrition.DateLayout), resp.UploadID, batch.Items)
		if err != nil {
			log.Printf("[analyze] save error: %v", err)
			apiError(c, http.StatusInternalServerError, "failed to save items")
			return
		}
		resp.Saved = saved
	}

	c.JSON(http.StatusOK, resp)
}

// saveBatch inserts every record of one upload in a single transaction.
func (h *Handler) saveBatch(c *gin.Context, userID int, date string, uploadID uuid.UUID, records []nutrition.NutritionRecord) ([]foodLogItem, error) {
	tx, err := h.db.Begin(c)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(c)

	saved := make([]foodLogItem, 0, len(records))
	for _, r := range records {
		var note *string
		if r.Note != "" {
			note = &r.Note
		}
		rows, err := tx.Query(c,
			`INSERT INTO food_log_items (user_id, date, name, quantity, calories, protein, carbs, fat, source, note, upload_id)
			 VALUES (@userID, @date, @name, @quantity, @calories, @protein, @carbs, @fat, @source, @note, @uploadID)
			 RETURNING *`,
			pgx.NamedArgs{
				"userID": userID, "date": date, "name": r.Name, "quantity": r.Quantity,
				"calories": r.Calories, "protein": r.Protein, "carbs": r.Carbs, "fat": r.Fat,
				"source": string(r.Source), "note": note, "uploadID": uploadID,
			})
		if err != nil {
			return nil, err
		}
		item, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[foodLogItem])
		if err != nil {
			return nil, err
		}
		saved = append(saved, item)
	}
	return saved, tx.Commit(c)
}
