package main

import (
	"os"

	"github.com/intelligrit/emotion-atlas/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
