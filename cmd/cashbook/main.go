package main

import (
	"os"

	"github.com/cashbook-app/cashbook/cmd/cashbook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
