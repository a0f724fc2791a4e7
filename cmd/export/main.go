package main

import (
	"os"

	"github.com/DevDeP100/Shalom.pt/internal/tools/export"
)

func main() {
	if err := export.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
