package main

import (
	"fmt"
	"os"

	"github.com/sir_venger/media_lite/cmd/mediactl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
