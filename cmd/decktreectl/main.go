package main

import (
	"fmt"
	"os"

	"github.com/kutbudev/decktree/cli"
)

// Version will be set during build with ldflags
var Version = "0.1.0"

func main() {
	if err := cli.NewRootCommand(Version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
