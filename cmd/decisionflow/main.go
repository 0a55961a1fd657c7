package main

import (
	"os"

	"decisionflow/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
