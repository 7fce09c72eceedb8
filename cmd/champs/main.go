package main

import (
	"os"

	"github.com/rustyeddy/champs/cmd/champs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
