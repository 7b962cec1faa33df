// main is the entry point for the recap CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/teamrecap/recap/cmd"
)

func main() {
	// Tokens may live in a local .env file; absence is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
