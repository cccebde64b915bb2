package nutrition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(cal, p, c, f float64) NutritionRecord {
	return NutritionRecord{Calories: cal, Protein: p, Carbs: c, Fat: f}
}

func TestSum_Empty(t *testing.T) {
	assert.Equal(t, Totals{}, Sum(nil))
}

func TestSum_IsAdditiveOverPartitions(t *testing.T) {
	items := []NutritionRecord{
		rec(105, 1, 27, 0.4),
		rec(250, 20, 3, 17),
		rec(95, 0.5, 25, 0.3),
		rec(0, 0, 0, 0),
		rec(310.5, 12.25, 40, 9.75),
	}
	whole := Sum(items)

	for split := 0; split <= len(items); split++ {
		parts := Sum(items[:split]).Add(Sum(items[split:]))
		assert.InDelta(t, whole.Calories, parts.Calories, 1e-9)
		assert.InDelta(t, whole.Protein, parts.Protein, 1e-9)
		assert.InDelta(t, whole.Carbs, parts.Carbs, 1e-9)
		assert.InDelta(t, whole.Fat, parts.Fat, 1e-9)
	}
}

func TestDailyTotals(t *testing.T) {
	log := []LoggedRecord{
		{Date: "2026-03-01", NutritionRecord: rec(100, 1, 2, 3)},
		{Date: "2026-03-02", NutritionRecord: rec(200, 4, 5, 6)},
		{Date: "2026-03-02", NutritionRecord: rec(50, 1, 1, 1)},
	}

	assert.Equal(t, Totals{Calories: 250, Protein: 5, Carbs: 6, Fat: 7}, DailyTotals(log, "2026-03-02"))
	assert.Equal(t, Totals{}, DailyTotals(log, "2026-03-05"))
}

func TestWeek_OldestToNewestWithLabels(t *testing.T) {
	end := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC) // Sunday
	log := []LoggedRecord{
		{Date: "2026-03-02", NutritionRecord: rec(500, 10, 60, 20)},
		{Date: "2026-03-08", NutritionRecord: rec(300, 5, 30, 10)},
		{Date: "2026-03-08", NutritionRecord: rec(200, 5, 20, 5)},
		{Date: "2026-02-28", NutritionRecord: rec(999, 9, 9, 9)},
	}

	week := Week(log, end)

	require.Len(t, week, 7)
	assert.Equal(t, "Mon", week[0].Label)
	assert.Equal(t, "2026-03-02", week[0].Date)
	assert.Equal(t, 500.0, week[0].Totals.Calories)
	assert.Equal(t, "Sun", week[6].Label)
	assert.Equal(t, Totals{Calories: 500, Protein: 10, Carbs: 50, Fat: 15}, week[6].Totals)
	for _, d := range week[1:6] {
		assert.Equal(t, Totals{}, d.Totals, d.Date)
	}
}
