package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func amount(v float64) *float64 { return &v }

func entry(id int, name, unit string, v float64) NutrientEntry {
	return NutrientEntry{ID: id, Name: name, UnitName: unit, Amount: amount(v)}
}

func TestExtract_PrefersExactEnergyRegardlessOfOrder(t *testing.T) {
	orders := map[string][]NutrientEntry{
		"variant first": {
			entry(2047, "Energy (Atwater General Factors)", "KCAL", 120),
			entry(1008, "Energy", "KCAL", 100),
		},
		"exact first": {
			entry(1008, "Energy", "KCAL", 100),
			entry(2047, "Energy (Atwater General Factors)", "KCAL", 120),
		},
	}
	for name, nutrients := range orders {
		t.Run(name, func(t *testing.T) {
			got := Extract(&Record{Nutrients: nutrients}, 1)
			assert.Equal(t, 100.0, got.Calories)
		})
	}
}

func TestExtract_EnergyIgnoresKilojoules(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		entry(1062, "Energy", "kJ", 418),
		entry(2048, "Energy (Atwater Specific Factors)", "kcal", 98),
	}}

	assert.Equal(t, 98.0, Extract(rec, 1).Calories)
}

func TestExtract_EnergyFallsBackToID(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		entry(1008, "Calories", "kcal", 52),
	}}

	assert.Equal(t, 52.0, Extract(rec, 1).Calories)
}

func TestExtract_ProteinSkipsNitrogenFactor(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		entry(1002, "Nitrogen to protein conversion factor", "", 6.25),
		entry(9999, "Adjusted Protein", "g", 3.1),
	}}

	assert.Equal(t, 3.1, Extract(rec, 1).Protein)
}

func TestExtract_ProteinExactBeatsVariant(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		entry(9999, "Adjusted Protein", "g", 3.1),
		entry(1003, "Protein", "g", 2.9),
	}}

	assert.Equal(t, 2.9, Extract(rec, 1).Protein)
}

func TestExtract_CarbPriority(t *testing.T) {
	cases := []struct {
		name      string
		nutrients []NutrientEntry
		want      float64
	}{
		{
			name: "by difference beats summation",
			nutrients: []NutrientEntry{
				entry(1050, "Carbohydrate, by summation", "g", 20),
				entry(1005, "Carbohydrate, by difference", "g", 22),
			},
			want: 22,
		},
		{
			name: "difference variant beats summation",
			nutrients: []NutrientEntry{
				entry(1050, "Carbohydrate, by summation", "g", 20),
				entry(9998, "Carbohydrate (by difference, adjusted)", "g", 21),
			},
			want: 21,
		},
		{
			name: "summation used alone",
			nutrients: []NutrientEntry{
				entry(1050, "Carbohydrate, by summation", "g", 20),
			},
			want: 20,
		},
		{
			name: "id fallback",
			nutrients: []NutrientEntry{
				entry(1005, "Carbs", "g", 19),
			},
			want: 19,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(&Record{Nutrients: tc.nutrients}, 1).Carbs)
		})
	}
}

func TestExtract_FatExcludesFattyAcids(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		entry(1258, "Fatty acids, total saturated", "g", 1.2),
		entry(1292, "Fatty acids, total monounsaturated", "g", 2.3),
		entry(1257, "Fatty acids, total trans", "g", 0.1),
		entry(9997, "Lipid, crude", "g", 4.4),
	}}

	assert.Equal(t, 4.4, Extract(rec, 1).Fat)
}

func TestExtract_FatExactBeatsVariant(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		entry(9997, "Lipid, crude", "g", 4.4),
		entry(1004, "Total lipid (fat)", "g", 5.0),
	}}

	assert.Equal(t, 5.0, Extract(rec, 1).Fat)
}

func TestExtract_SkipsMissingAmounts(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		{ID: 1008, Name: "Energy", UnitName: "kcal", Amount: nil},
		entry(2047, "Energy (Atwater General Factors)", "kcal", 61),
	}}

	assert.Equal(t, 61.0, Extract(rec, 1).Calories)
}

func TestExtract_AppliesMultiplierAndClamps(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		entry(1008, "Energy", "kcal", 89),
		entry(1003, "Protein", "g", 1.1),
		entry(1005, "Carbohydrate, by difference", "g", 22.8),
		entry(1004, "Total lipid (fat)", "g", -0.3),
	}}

	got := Extract(rec, 1.5)

	assert.InDelta(t, 133.5, got.Calories, 1e-9)
	assert.InDelta(t, 1.65, got.Protein, 1e-9)
	assert.InDelta(t, 34.2, got.Carbs, 1e-9)
	assert.Equal(t, 0.0, got.Fat)
}

func TestExtract_NoMatchesIsZero(t *testing.T) {
	rec := &Record{Nutrients: []NutrientEntry{
		entry(1087, "Calcium, Ca", "mg", 5),
	}}

	assert.Equal(t, Macros{}, Extract(rec, 2))
	assert.Equal(t, Macros{}, Extract(nil, 2))
}
