// nutricalc runs the nutrition engine from the command line: quantity
// normalization, goal computation and item estimation.
// Usage: go run ./cmd/nutricalc <command> (from the repo root)
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
