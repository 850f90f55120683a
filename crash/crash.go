// Package crash handles panics on the process's long-lived goroutines
// The registered cleanup restores the terminal before the trace is printed
package crash

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	mu      sync.Mutex
	cleanup func()

	out  io.Writer = os.Stderr
	exit           = os.Exit
)

// SetCleanup registers fn to run before a crash report; nil clears it
func SetCleanup(fn func()) {
	mu.Lock()
	cleanup = fn
	mu.Unlock()
}

// Handle reports a recovered panic and exits; nil is ignored
func Handle(r any) {
	if r == nil {
		return
	}

	mu.Lock()
	fn := cleanup
	cleanup = nil
	mu.Unlock()
	if fn != nil {
		fn()
	}

	// \r\n keeps the trace readable if the terminal is still raw
	fmt.Fprintf(out, "\r\n\x1b[31mAMBIENT CRASHED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(out, "Stack Trace:\r\n%s\r\n", debug.Stack())
	exit(1)
}

// Go runs fn on a new goroutine with panic recovery
func Go(fn func()) {
	go func() {
		defer func() {
			Handle(recover())
		}()
		fn()
	}()
}
