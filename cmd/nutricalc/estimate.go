package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lg/plate-nutrition-api/fdc"
	"lg/plate-nutrition-api/nutrition"
	"lg/plate-nutrition-api/openai"
)

var estimateOffline bool

var estimateCmd = &cobra.Command{
	Use:   "estimate [name quantity]...",
	Short: "Estimate nutrition for one or more food items",
	Long: `Estimates calories and macros for each name/quantity pair, trying
FoodData Central first and falling back to the OpenAI model. Reads
OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL, FDC_API_KEY and FDC_BASE_URL
from the environment or .env.`,
	Args: pairArgs,
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().BoolVar(&estimateOffline, "offline", false, "skip the FoodData Central lookup")
	rootCmd.AddCommand(estimateCmd)
}

// pairArgs accepts a non-empty, even number of arguments.
func pairArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return fmt.Errorf("expected name/quantity pairs, got %d arg(s)", len(args))
	}
	return nil
}

func mentionsFromArgs(args []string) []nutrition.FoodMention {
	mentions := make([]nutrition.FoodMention, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		mentions = append(mentions, nutrition.FoodMention{Name: args[i], Quantity: args[i+1]})
	}
	return mentions
}

func runEstimate(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	llm := openai.NewClient(openai.Config{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   os.Getenv("OPENAI_MODEL"),
	})

	var lookup nutrition.Lookup
	if !estimateOffline {
		lookup = fdc.NewClient(fdc.Config{
			APIKey:  os.Getenv("FDC_API_KEY"),
			BaseURL: os.Getenv("FDC_BASE_URL"),
		})
	}

	estimator := nutrition.NewEstimator(lookup, llm, nutrition.EstimatorConfig{})
	batch := estimator.EstimateAll(context.Background(), mentionsFromArgs(args))
	return printJSON(cmd, batch)
}
