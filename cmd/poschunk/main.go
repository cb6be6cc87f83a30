package main

import (
	"os"

	"github.com/kittclouds/poschunk/cmd/poschunk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
