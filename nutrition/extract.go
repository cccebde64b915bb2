package nutrition

import "strings"

// FoodData Central nutrient ids used when no name rule matches.
const (
	NutrientIDEnergy          = 1008
	NutrientIDEnergyAtwaterGF = 2047
	NutrientIDEnergyAtwaterSF = 2048
	NutrientIDProtein         = 1003
	NutrientIDCarbohydrate    = 1005
	NutrientIDTotalFat        = 1004
)

// matchRule is one guarded rule in a field's priority list.
type matchRule struct {
	name  string
	match func(e nutrientView) bool
}

// nutrientView is a NutrientEntry with its name and unit lower-cased once.
type nutrientView struct {
	id     int
	name   string
	unit   string
	amount float64
}

/* ─── Priority lists ─────────────────────────────────────────────────── */

var calorieRules = []matchRule{
	{"exact energy", func(e nutrientView) bool { return e.name == "energy" && e.unit == "kcal" }},
	{"energy variant", func(e nutrientView) bool { return strings.Contains(e.name, "energy") && e.unit == "kcal" }},
	{"energy id", func(e nutrientView) bool {
		return (e.id == NutrientIDEnergy || e.id == NutrientIDEnergyAtwaterGF || e.id == NutrientIDEnergyAtwaterSF) && e.unit == "kcal"
	}},
}

var proteinRules = []matchRule{
	{"exact protein", func(e nutrientView) bool { return e.name == "protein" }},
	{"protein variant", func(e nutrientView) bool {
		return strings.Contains(e.name, "protein") && !strings.Contains(e.name, "nitrogen")
	}},
	{"protein id", func(e nutrientView) bool { return e.id == NutrientIDProtein }},
}

var carbRules = []matchRule{
	{"exact by difference", func(e nutrientView) bool {
		return e.name == "carbohydrate, by difference" || e.name == "carbohydrate by difference"
	}},
	{"by difference variant", func(e nutrientView) bool {
		return strings.Contains(e.name, "carbohydrate") && strings.Contains(e.name, "difference")
	}},
	{"by summation", func(e nutrientView) bool {
		return strings.Contains(e.name, "carbohydrate") && strings.Contains(e.name, "summation")
	}},
	{"carbohydrate id", func(e nutrientView) bool { return e.id == NutrientIDCarbohydrate }},
}

// fatExclusions keep individual fatty-acid rows from standing in for total fat.
var fatExclusions = []string{"saturated", "monounsaturated", "polyunsaturated", "trans", "fatty acid"}

var fatRules = []matchRule{
	{"exact total fat", func(e nutrientView) bool {
		return e.name == "total lipid (fat)" || e.name == "total lipid" || e.name == "total fat"
	}},
	{"lipid variant", func(e nutrientView) bool {
		if !strings.Contains(e.name, "lipid") && e.name != "fat" {
			return false
		}
		for _, ex := range fatExclusions {
			if strings.Contains(e.name, ex) {
				return false
			}
		}
		return true
	}},
	{"fat id", func(e nutrientView) bool { return e.id == NutrientIDTotalFat }},
}

/* ─── Extraction ─────────────────────────────────────────────────────── */

// Extract returns calories and macros for rec scaled by multiplier. Each field
// takes the first entry matched by its highest-priority rule that matches
// anything, independent of array order across rules. Entries with no amount
// are ignored; a record with no matches yields zeros.
func Extract(rec *Record, multiplier float64) Macros {
	if rec == nil {
		return Macros{}
	}
	views := make([]nutrientView, 0, len(rec.Nutrients))
	for _, n := range rec.Nutrients {
		if n.Amount == nil {
			continue
		}
		views = append(views, nutrientView{
			id:     n.ID,
			name:   strings.ToLower(strings.TrimSpace(n.Name)),
			unit:   strings.ToLower(strings.TrimSpace(n.UnitName)),
			amount: *n.Amount,
		})
	}

	return Macros{
		Calories: scaled(pick(views, calorieRules), multiplier),
		Protein:  scaled(pick(views, proteinRules), multiplier),
		Carbs:    scaled(pick(views, carbRules), multiplier),
		Fat:      scaled(pick(views, fatRules), multiplier),
	}
}

// pick scans the rules in priority order; within a rule the first matching
// entry wins.
func pick(views []nutrientView, rules []matchRule) float64 {
	for _, r := range rules {
		for _, v := range views {
			if r.match(v) {
				return v.amount
			}
		}
	}
	return 0
}

func scaled(amount, multiplier float64) float64 {
	return nonNegative(amount * multiplier)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
