package main

import (
	"os"

	"winclick/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
