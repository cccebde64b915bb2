package main

import (
	"errors"

	"github.com/spf13/cobra"

	"lg/plate-nutrition-api/nutrition"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [quantity]",
	Short: "Convert a free-text quantity to grams",
	Long: `Parses a quantity such as "200g", "1.5 cups" or "2 pieces" and prints the
gram mass and the multiplier applied to per-100g database values.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

type normalizeOutput struct {
	Input      string              `json:"input"`
	Quantity   *nutrition.Quantity `json:"quantity,omitempty"`
	Multiplier float64             `json:"multiplier"`
	Note       string              `json:"note,omitempty"`
}

func runNormalize(cmd *cobra.Command, args []string) error {
	out := normalizeOutput{Input: args[0], Multiplier: nutrition.Normalize(args[0])}

	q, err := nutrition.ParseQuantity(args[0])
	switch {
	case errors.Is(err, nutrition.ErrInputParse):
		out.Note = "no number found; counted as one serving"
	case err != nil:
		return err
	default:
		out.Quantity = &q
	}
	return printJSON(cmd, out)
}
