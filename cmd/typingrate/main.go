package main

import (
	"fmt"
	"os"
)

// Set via -ldflags "-X main.version=..." at build time.
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "typingrate: %v\n", err)
		os.Exit(1)
	}
}
