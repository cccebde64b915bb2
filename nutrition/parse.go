package nutrition

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	jsonFence  = regexp.MustCompile("```json\\n?")
	plainFence = regexp.MustCompile("```\\n?")
)

// StripCodeFence removes Markdown fences models like to wrap JSON in, either
// ```json ... ``` or ``` ... ```. Unfenced input is returned trimmed.
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = plainFence.ReplaceAllString(jsonFence.ReplaceAllString(s, ""), "")
	case strings.HasPrefix(s, "```"):
		s = plainFence.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// decodeObject parses s as a JSON object. Arrays, scalars and null are
// rejected so callers never mistake them for an empty estimate.
func decodeObject(s string) (map[string]any, error) {
	if s == "" {
		return nil, fmt.Errorf("empty response: %w", ErrMalformedEstimate)
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode json: %v: %w", err, ErrMalformedEstimate)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after json value: %w", ErrMalformedEstimate)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T: %w", v, ErrMalformedEstimate)
	}
	return obj, nil
}

// ParseEstimate turns a model reply into Macros. Missing or non-numeric fields
// count as 0 and negatives are clamped to 0. Values that overflow float64 or
// are not finite make the whole reply malformed.
func ParseEstimate(content string) (Macros, error) {
	obj, err := decodeObject(StripCodeFence(content))
	if err != nil {
		return Macros{}, err
	}
	var m Macros
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"calories", &m.Calories},
		{"protein", &m.Protein},
		{"carbs", &m.Carbs},
		{"fat", &m.Fat},
	} {
		if *f.dst, err = numberField(obj, f.key); err != nil {
			return Macros{}, err
		}
	}
	return m, nil
}

func numberField(obj map[string]any, key string) (float64, error) {
	var (
		f   float64
		err error
	)
	switch v := obj[key].(type) {
	case json.Number:
		f, err = v.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		// Prose like "about 100" counts as 0, same as a missing field.
		if errors.Is(err, strconv.ErrSyntax) {
			return 0, nil
		}
	}
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s is not a finite number: %w", key, ErrMalformedEstimate)
	}
	return nonNegative(f), nil
}

// ParseFoodMentions validates vision output: a JSON array (optionally fenced)
// whose elements all carry a non-empty name and quantity. An empty array is
// valid and means nothing was recognised.
func ParseFoodMentions(content string) ([]FoodMention, error) {
	s := StripCodeFence(content)
	if s == "" {
		return nil, fmt.Errorf("empty response: %w", ErrMalformedMentions)
	}
	if !strings.HasPrefix(s, "[") {
		return nil, fmt.Errorf("expected a JSON array: %w", ErrMalformedMentions)
	}
	var mentions []FoodMention
	if err := json.Unmarshal([]byte(s), &mentions); err != nil {
		return nil, fmt.Errorf("decode json: %v: %w", err, ErrMalformedMentions)
	}

	var invalid []string
	for i, m := range mentions {
		var missing []string
		if strings.TrimSpace(m.Name) == "" {
			missing = append(missing, "name")
		}
		if strings.TrimSpace(m.Quantity) == "" {
			missing = append(missing, "quantity")
		}
		if len(missing) > 0 {
			invalid = append(invalid, fmt.Sprintf("#%d missing %s", i, strings.Join(missing, ",")))
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("items %s: %w", strings.Join(invalid, "; "), ErrMalformedMentions)
	}
	if mentions == nil {
		mentions = []FoodMention{}
	}
	return mentions, nil
}
