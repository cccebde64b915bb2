package nutrition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BaseServingGrams is the serving every database amount is expressed against.
const BaseServingGrams = 100.0

// quantityPattern captures the leading number and an optional unit token.
// Alternation order matters: "cup" is tried before "cups", "l" after "lb".
var quantityPattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(g|kg|oz|lb|cup|cups|piece|pieces|serving|servings|ml|l|tbsp|tsp)?`)

// gramsPerUnit is the fixed conversion table. Volumes assume water density and
// pieces assume a ~50 g item; there is no per-food density data. A serving is
// the database base amount.
var gramsPerUnit = map[string]float64{
	"g":        1,
	"kg":       1000,
	"oz":       28.35,
	"lb":       453.592,
	"cup":      240,
	"cups":     240,
	"ml":       1,
	"l":        1000,
	"tbsp":     15,
	"tsp":      5,
	"piece":    50,
	"pieces":   50,
	"serving":  BaseServingGrams,
	"servings": BaseServingGrams,
}

// Quantity is a parsed quantity string.
type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Grams  float64 `json:"grams"`
}

// ParseQuantity reads strings like "200g", "1.5 cups" or "2 pieces". A
// missing unit means grams. Returns ErrInputParse when there is no number.
func ParseQuantity(s string) (Quantity, error) {
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return Quantity{}, fmt.Errorf("parse %q: %w", s, ErrInputParse)
	}
	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("parse %q: %w", s, ErrInputParse)
	}
	unit := strings.ToLower(m[2])
	if unit == "" {
		unit = "g"
	}
	return Quantity{Amount: amount, Unit: unit, Grams: amount * gramsPerUnit[unit]}, nil
}

// Normalize returns the multiplier to apply to per-100g database amounts.
// Unparseable input counts as one serving and yields 1.
func Normalize(quantity string) float64 {
	q, err := ParseQuantity(quantity)
	if err != nil {
		return 1
	}
	return q.Grams / BaseServingGrams
}
