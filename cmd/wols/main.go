package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(exitCode(err))
	}
}

// exitCode separates records that failed validation (2) from operational
// failures (1) so scripts can branch on the reason.
func exitCode(err error) int {
	if errors.Is(err, errDocumentInvalid) {
		return 2
	}
	return 1
}
