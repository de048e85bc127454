package main

import (
	"os"

	"github.com/anne-keksi-ai/travel-chronicle-pipeline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
