package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rodgers-mmsi/ksqlpipe/internal/cli"
	"github.com/rodgers-mmsi/ksqlpipe/pkg/ksqlpipe"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(ksqlpipe.ExitPanic)
		}
	}()

	if os.Getenv("KSQLPIPE_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(ksqlpipe.ExitCodeForError(err))
	}
}
