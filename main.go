package main

import (
	"os"

	"github.com/docly-labs/texgen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
