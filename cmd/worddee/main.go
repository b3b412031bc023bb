package main

import (
	"os"

	"github.com/Thanat-Wut/worddee-api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
