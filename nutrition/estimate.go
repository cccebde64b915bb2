package nutrition

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// Lookup finds the top-ranked structured record for a food name. It returns
// (nil, nil) when the database has no match.
type Lookup interface {
	LookupFood(ctx context.Context, name string) (*Record, error)
}

// TextGenerator sends a system and user prompt to a language model and
// returns the raw reply text.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Default estimator limits. Each external call gets its own timeout.
const (
	DefaultCallTimeout = 15 * time.Second
	MinCallTimeout     = 10 * time.Second
	DefaultConcurrency = 8
)

// failedNote is attached to every EstimationFailed record.
const failedNote = "Could not estimate nutrition values"

/* ─── Prompt constants ───────────────────────────────────────────────── */

const estimateSystemPrompt = `You are a nutrition expert. Provide accurate nutrition estimates based on food names and quantities. Calculate the total nutrition for the specified quantity, not per serving.`

const estimatePromptTemplate = `Estimate the total nutrition information for: %s, quantity: %s.

IMPORTANT: Calculate the TOTAL nutrition for the entire quantity specified (e.g., if quantity is "200g", provide nutrition for 200g, not per 100g).

Return ONLY a JSON object with this exact structure:
{
  "calories": number,
  "protein": number (in grams),
  "carbs": number (in grams),
  "fat": number (in grams)
}

Be as accurate as possible based on standard nutrition data for this food item and quantity.`

/* ─── Estimator ──────────────────────────────────────────────────────── */

// EstimatorConfig configures an Estimator. Zero values pick the defaults.
type EstimatorConfig struct {
	CallTimeout time.Duration
	Concurrency int
}

// Estimator produces one NutritionRecord per FoodMention, preferring a
// structured lookup and falling back to a model estimate. Either collaborator
// may be nil.
type Estimator struct {
	lookup      Lookup
	llm         TextGenerator
	callTimeout time.Duration
	concurrency int
}

// Batch is the result of estimating one upload.
type Batch struct {
	Items  []NutritionRecord `json:"items"`
	Totals Totals            `json:"totals"`
}

// NewEstimator wires the collaborators. Timeouts below MinCallTimeout are
// raised to it.
func NewEstimator(lookup Lookup, llm TextGenerator, cfg EstimatorConfig) *Estimator {
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.CallTimeout < MinCallTimeout {
		cfg.CallTimeout = MinCallTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Estimator{
		lookup:      lookup,
		llm:         llm,
		callTimeout: cfg.CallTimeout,
		concurrency: cfg.Concurrency,
	}
}

// EstimateAll estimates every mention concurrently. Items come back in input
// order; a failing item degrades to EstimationFailed and never aborts the rest.
func (e *Estimator) EstimateAll(ctx context.Context, mentions []FoodMention) Batch {
	items := make([]NutritionRecord, len(mentions))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, m := range mentions {
		i, m := i, m
		g.Go(func() error {
			items[i] = e.Estimate(ctx, m)
			return nil
		})
	}
	_ = g.Wait()

	return Batch{Items: items, Totals: Sum(items)}
}

// Estimate produces the record for a single mention.
func (e *Estimator) Estimate(ctx context.Context, m FoodMention) NutritionRecord {
	if rec := e.structuredRecord(ctx, m.Name); rec != nil {
		return newRecord(m, Extract(rec, Normalize(m.Quantity)), SourceDatabaseMatch)
	}

	macros, err := e.modelEstimate(ctx, m)
	if err != nil {
		log.Printf("[estimate] %q (%s) failed: %v", m.Name, m.Quantity, err)
		failed := newRecord(m, Macros{}, SourceEstimationFailed)
		failed.Note = failedNote
		return failed
	}
	return newRecord(m, macros, SourceLLMEstimate)
}

// structuredRecord returns nil when there is no lookup, no match or the lookup
// failed; lookup failures fall through to the model estimate.
func (e *Estimator) structuredRecord(ctx context.Context, name string) *Record {
	if e.lookup == nil {
		return nil
	}
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	rec, err := e.lookup.LookupFood(callCtx, name)
	if err != nil {
		log.Printf("[estimate] lookup %q failed, falling back to model: %v", name, err)
		return nil
	}
	return rec
}

func (e *Estimator) modelEstimate(ctx context.Context, m FoodMention) (Macros, error) {
	if e.llm == nil {
		return Macros{}, fmt.Errorf("no text generator configured: %w", ErrUpstreamUnavailable)
	}
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	content, err := e.llm.Generate(callCtx, estimateSystemPrompt, fmt.Sprintf(estimatePromptTemplate, m.Name, m.Quantity))
	if err != nil {
		return Macros{}, fmt.Errorf("generate: %w", err)
	}
	return ParseEstimate(content)
}

func newRecord(m FoodMention, macros Macros, src Source) NutritionRecord {
	return NutritionRecord{
		Name:     m.Name,
		Quantity: m.Quantity,
		Calories: nonNegative(macros.Calories),
		Protein:  nonNegative(macros.Protein),
		Carbs:    nonNegative(macros.Carbs),
		Fat:      nonNegative(macros.Fat),
		Source:   src,
	}
}
