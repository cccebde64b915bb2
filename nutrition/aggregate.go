package nutrition

import "time"

// DateLayout is the calendar-day key used throughout the food log.
const DateLayout = "2006-01-02"

// Totals is a field-wise sum of nutrition records.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the field-wise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Calories: t.Calories + o.Calories,
		Protein:  t.Protein + o.Protein,
		Carbs:    t.Carbs + o.Carbs,
		Fat:      t.Fat + o.Fat,
	}
}

// Sum folds records into totals. Empty input yields zeros.
func Sum(records []NutritionRecord) Totals {
	var t Totals
	for _, r := range records {
		t = t.Add(r.Totals())
	}
	return t
}

// LoggedRecord is a record filed under a client-local calendar date.
type LoggedRecord struct {
	Date string `json:"date"`
	NutritionRecord
}

// DailyTotals sums the records logged on date (YYYY-MM-DD).
func DailyTotals(log []LoggedRecord, date string) Totals {
	var t Totals
	for _, r := range log {
		if r.Date == date {
			t = t.Add(r.Totals())
		}
	}
	return t
}

// DayTotals is one day of a weekly view.
type DayTotals struct {
	Label  string `json:"label"`
	Date   string `json:"date"`
	Totals Totals `json:"totals"`
}

// Week returns the seven days ending on end, oldest first, each labelled
// with its short weekday name ("Mon").
func Week(log []LoggedRecord, end time.Time) []DayTotals {
	byDate := make(map[string]Totals, 7)
	for _, r := range log {
		byDate[r.Date] = byDate[r.Date].Add(r.Totals())
	}

	days := make([]DayTotals, 7)
	for i := 0; i < 7; i++ {
		d := end.AddDate(0, 0, i-6)
		key := d.Format(DateLayout)
		days[i] = DayTotals{
			Label:  d.Format("Mon"),
			Date:   key,
			Totals: byDate[key],
		}
	}
	return days
}
