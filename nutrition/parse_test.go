package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"calories\":1}\n```", `{"calories":1}`},
		{"plain fence", "```\n{\"calories\":1}\n```", `{"calories":1}`},
		{"no fence", "  {\"calories\":1}  ", `{"calories":1}`},
		{"fence without newline", "```json{\"calories\":1}```", `{"calories":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripCodeFence(tc.in))
		})
	}
}

func TestParseEstimate_FencedBanana(t *testing.T) {
	got, err := ParseEstimate("```json\n{\"calories\":105,\"protein\":1,\"carbs\":27,\"fat\":0}\n```")

	require.NoError(t, err)
	assert.Equal(t, Macros{Calories: 105, Protein: 1, Carbs: 27, Fat: 0}, got)
}

func TestParseEstimate_CoercesFields(t *testing.T) {
	got, err := ParseEstimate(`{"calories": "210.5", "protein": -4, "carbs": null}`)

	require.NoError(t, err)
	assert.Equal(t, 210.5, got.Calories)
	assert.Equal(t, 0.0, got.Protein)
	assert.Equal(t, 0.0, got.Carbs)
	assert.Equal(t, 0.0, got.Fat)
}

func TestParseEstimate_Failures(t *testing.T) {
	cases := map[string]string{
		"empty":        "   ",
		"empty fence":  "```json\n```",
		"array":        `[{"calories": 100}]`,
		"scalar":       `42`,
		"null":         `null`,
		"prose":        `I think it is about 100 calories.`,
		"truncated":    `{"calories": 100, "protein":`,
		"overflow":     `{"calories": 1e400, "protein": 1, "carbs": 27, "fat": 0.4}`,
		"overflow str": `{"calories": "1e400"}`,
		"infinity str": `{"fat": "Infinity"}`,
		"nan str":      `{"protein": "NaN"}`,
		"trailing":     `{"calories": 105} and some extra prose`,
		"two objects":  `{"calories": 105} {"calories": 90}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEstimate(content)
			assert.ErrorIs(t, err, ErrMalformedEstimate)
		})
	}
}

func TestParseEstimate_TrailingWhitespace(t *testing.T) {
	got, err := ParseEstimate("{\"calories\": 105}\n\n")

	require.NoError(t, err)
	assert.Equal(t, 105.0, got.Calories)
}

func TestParseFoodMentions(t *testing.T) {
	content := "```json\n[{\"name\":\"Grilled Salmon\",\"quantity\":\"150g\",\"description\":\"fillet next to fork\"},{\"name\":\"Rice\",\"quantity\":\"1 cup\"}]\n```"

	got, err := ParseFoodMentions(content)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, FoodMention{Name: "Grilled Salmon", Quantity: "150g", Description: "fillet next to fork"}, got[0])
	assert.Equal(t, "Rice", got[1].Name)
}

func TestParseFoodMentions_EmptyArray(t *testing.T) {
	got, err := ParseFoodMentions("[]")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestParseFoodMentions_Rejects(t *testing.T) {
	cases := map[string]string{
		"object":           `{"name":"Rice","quantity":"1 cup"}`,
		"missing quantity": `[{"name":"Rice"}]`,
		"blank name":       `[{"name":" ","quantity":"1 cup"}]`,
		"not json":         `[rice]`,
		"empty":            ``,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFoodMentions(content)
			assert.ErrorIs(t, err, ErrMalformedMentions)
		})
	}
}
