package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/plate-nutrition-api/goals"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestNormalizeCmd(t *testing.T) {
	out, err := execute(t, "normalize", "1.5 cups")
	require.NoError(t, err)

	var got normalizeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotNil(t, got.Quantity)
	assert.Equal(t, "cup", got.Quantity.Unit)
	assert.InDelta(t, 360, got.Quantity.Grams, 1e-9)
	assert.InDelta(t, 3.6, got.Multiplier, 1e-9)
}

func TestNormalizeCmd_NoNumber(t *testing.T) {
	out, err := execute(t, "normalize", "a handful")
	require.NoError(t, err)

	var got normalizeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Nil(t, got.Quantity)
	assert.Equal(t, 1.0, got.Multiplier)
	assert.NotEmpty(t, got.Note)
}

func TestNormalizeCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "normalize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestGoalsCmd(t *testing.T) {
	out, err := execute(t, "goals",
		"--sex", "male", "--weight", "80", "--height", "180", "--age", "30",
		"--workouts", "3", "--goal", "lose", "--speed", "0.5")
	require.NoError(t, err)

	var got goals.Computation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 30, got.Age)
	assert.Equal(t, 2509, got.Goals.CalorieGoal)
	assert.Equal(t, 144, got.Goals.ProteinGrams)
	assert.Empty(t, got.Defaulted)
}

func TestEstimateCmd_PairArgs(t *testing.T) {
	for _, args := range [][]string{{}, {"Banana"}, {"Banana", "1 piece", "Rice"}} {
		assert.Error(t, pairArgs(estimateCmd, args), "args %v", args)
	}
	assert.NoError(t, pairArgs(estimateCmd, []string{"Banana", "1 piece"}))
}

func TestMentionsFromArgs(t *testing.T) {
	got := mentionsFromArgs([]string{"Banana", "1 piece", "Rice", "200g"})
	require.Len(t, got, 2)
	assert.Equal(t, "Banana", got[0].Name)
	assert.Equal(t, "1 piece", got[0].Quantity)
	assert.Equal(t, "Rice", got[1].Name)
	assert.Equal(t, "200g", got[1].Quantity)
}
