package main

import (
	"os"

	"github.com/mtc-analytics/patlens/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
