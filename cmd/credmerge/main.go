package main

import (
	"os"

	"credmerge/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
