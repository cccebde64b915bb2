// Package nutrition turns identified food mentions into nutrition records.
// It converts free-text quantities to a per-100g multiplier, extracts macro
// values from FoodData Central style records, falls back to a language-model
// estimate when no structured record exists, and folds records into totals.
package nutrition

import "errors"

// Source records where a NutritionRecord's numbers came from.
type Source string

const (
	SourceDatabaseMatch    Source = "DatabaseMatch"
	SourceLLMEstimate      Source = "LLMEstimate"
	SourceEstimationFailed Source = "EstimationFailed"
)

// FoodMention is one item identified in a meal image, before any lookup.
type FoodMention struct {
	Name        string `json:"name"`
	Quantity    string `json:"quantity"`
	Description string `json:"description,omitempty"`
}

// NutritionRecord is the estimate for a single FoodMention. All four numeric
// fields are >= 0.
type NutritionRecord struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Source   Source  `json:"source"`
	Note     string  `json:"note,omitempty"`
}

// Totals returns the record's macros as a Totals value.
func (r NutritionRecord) Totals() Totals {
	return Totals{Calories: r.Calories, Protein: r.Protein, Carbs: r.Carbs, Fat: r.Fat}
}

// Macros is the extractor output: per-item calories and macro grams.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Record is a nutrition-database entry. Nutrient amounts are per 100 g.
type Record struct {
	FdcID       int             `json:"fdc_id"`
	Description string          `json:"description"`
	Nutrients   []NutrientEntry `json:"nutrients"`
}

// NutrientEntry is one row of a Record. Amount is nil when the database has
// no value for it.
type NutrientEntry struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	UnitName string   `json:"unit_name"`
	Amount   *float64 `json:"amount"`
}

var (
	// ErrInputParse is returned by ParseQuantity for strings with no number.
	ErrInputParse = errors.New("quantity has no numeric amount")
	// ErrUpstreamUnavailable wraps transport failures, timeouts and non-200
	// answers from the lookup or text-generation collaborators.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedEstimate marks model output that is empty or not a JSON object.
	ErrMalformedEstimate = errors.New("malformed nutrition estimate")
	// ErrMalformedMentions marks vision output that is not a list of foods.
	ErrMalformedMentions = errors.New("malformed food identification")
)
