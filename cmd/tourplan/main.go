package main

import (
	"tourplanner/internal/cli"
)

var Version = "dev"

func main() {
	cli.SetVersion(Version)
	cli.Execute()
}
