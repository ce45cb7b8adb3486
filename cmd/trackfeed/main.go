package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and maps the outcome to an exit code. An interrupted
// run exits quietly with the conventional signal code: any partial results
// were already printed.
func run(args []string) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	switch err := cmd.Execute(); {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		fmt.Fprintln(os.Stderr, "trackfeed:", err)
		return 1
	}
}
