package testsupport

import (
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// Global counter for generating unique sequential IDs in tests
	testSequence uint64

	baseTimestamp = time.Now().UnixNano()
)

func init() {
	// Start from the clock so repeated runs against a shared database do not collide
	testSequence = uint64(baseTimestamp % 1000000)
}

// NextSequence returns next unique sequence number
func NextSequence() uint64 {
	return atomic.AddUint64(&testSequence, 1)
}

// UniqueTicker returns a ticker symbol no other test run uses.
// Example: UniqueTicker("TST") -> "TST123456.NS"
func UniqueTicker(prefix string) string {
	return fmt.Sprintf("%s%d.NS", prefix, NextSequence())
}

// UniqueRequestID returns a request correlation id for tests
func UniqueRequestID() string {
	return fmt.Sprintf("test-req-%d", NextSequence())
}
