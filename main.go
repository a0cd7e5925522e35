package main

import (
	"os"

	"github.com/saudedigital/saude/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
