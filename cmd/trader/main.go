package main

import (
	"os"

	"github.com/rustyeddy/tradeenv/cmd/trader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
