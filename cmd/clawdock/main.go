package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/soyeahso/clawdock/internal/cli"
	"github.com/soyeahso/clawdock/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ~/.clawdock/.env supplies CLAWDOCK_* overrides and secrets referenced
	// as ${VAR} in config.yaml. Variables already set win.
	if p, err := config.ResolvePaths(); err == nil {
		if err := godotenv.Load(p.Env); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: loading %s: %v\n", p.Env, err)
		}
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
