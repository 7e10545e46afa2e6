package main

import (
	"os"

	"github.com/rustyeddy/tradecycle/cmd/tradecycle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
