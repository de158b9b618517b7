package main

import (
	"fmt"
	"os"
	"time"
)

// runID derives a reasonably unique identifier for a simulation run from
// the current time, the process id and the configured RNG seed, so report
// filenames never collide across concurrent brpld invocations sharing a
// report directory.
func runID(seed int64) string {
	return fmt.Sprintf("%d-%d-%d", time.Now().UnixNano(), os.Getpid(), seed)
}
