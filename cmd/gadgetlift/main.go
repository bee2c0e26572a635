package main

import (
	"os"

	"gadgetlift/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
