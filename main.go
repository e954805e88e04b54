package main

import (
	"os"

	"github.com/solvegrid/solvegrid/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
