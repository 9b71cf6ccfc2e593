package main

import (
	"os"

	"github.com/ops-desk/mission-control/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
