package main

import (
	"time"

	"github.com/spf13/cobra"

	"lg/plate-nutrition-api/goals"
)

var (
	goalsSex      string
	goalsWeight   float64
	goalsHeight   float64
	goalsAge      int
	goalsWorkouts int
	goalsGoal     string
	goalsSpeed    float64
	goalsDefaults bool
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Compute daily nutrition goals from a profile",
	Long: `Computes BMR, TDEE, the calorie goal and macro/micro targets from the
profile given as flags. Missing answers are an error unless --defaults is set.`,
	Args: cobra.NoArgs,
	RunE: runGoals,
}

func init() {
	goalsCmd.Flags().StringVar(&goalsSex, "sex", "", "male, female or other")
	goalsCmd.Flags().Float64Var(&goalsWeight, "weight", 0, "body weight in kg")
	goalsCmd.Flags().Float64Var(&goalsHeight, "height", 0, "height in cm")
	goalsCmd.Flags().IntVar(&goalsAge, "age", 0, "age in years")
	goalsCmd.Flags().IntVar(&goalsWorkouts, "workouts", 0, "workouts per week")
	goalsCmd.Flags().StringVar(&goalsGoal, "goal", "", "lose, maintain or gain")
	goalsCmd.Flags().Float64Var(&goalsSpeed, "speed", 0, "weight change speed in kg per week")
	goalsCmd.Flags().BoolVar(&goalsDefaults, "defaults", false, "fill missing answers with defaults")
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(cmd *cobra.Command, args []string) error {
	p := goals.Profile{
		Sex:                        goalsSex,
		WeightKg:                   goalsWeight,
		HeightCm:                   goalsHeight,
		WorkoutsPerWeek:            goalsWorkouts,
		Goal:                       goalsGoal,
		WeightChangeSpeedKgPerWeek: goalsSpeed,
	}
	if cmd.Flags().Changed("age") {
		age := goalsAge
		p.AgeYears = &age
	}

	explain := goals.Explain
	if goalsDefaults {
		explain = goals.ExplainWithDefaults
	}
	res, err := explain(p, time.Now())
	if err != nil {
		return err
	}
	return printJSON(cmd, res)
}
