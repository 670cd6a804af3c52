package main

import (
	"os"

	"github.com/glwbgo/annuity-pricer/cmd/glwb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
