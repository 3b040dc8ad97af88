package main

import (
	"fmt"
	"os"

	"ftxwidget/pkg/commands"
)

// Version should be set during build
var Version = "dev"

func main() {
	commands.Version = Version
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
