package main

import (
	"os"

	"blueprints/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
