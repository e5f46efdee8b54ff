// Package ulid provides a thin wrapper around github.com/oklog/ulid/v2 for
// generating the identifiers used across the application. ULIDs are
// lexicographically sortable by creation time, which makes sync batch ids
// trivially ordered in the ledger and in logs.
package ulid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes for the different identifier kinds used in the application.
const (
	// PrefixBatch is used for sync batch ids recorded in the ledger
	PrefixBatch = "batch"

	// PrefixRun is used for reconciliation run ids in logs
	PrefixRun = "run"

	// PrefixSeparator separates the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// Generate creates a new ULID string with the current timestamp.
func Generate() string {
	return NewWithTime(time.Now())
}

// GenerateWithPrefix creates a new ULID with the current timestamp and a
// prefix describing what the id represents (e.g. "batch").
func GenerateWithPrefix(prefix string) string {
	return prefix + PrefixSeparator + Generate()
}

// NewWithTime creates a new ULID string with a specific timestamp.
func NewWithTime(t time.Time) string {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(t), entropy)
	entropyLock.Unlock()
	return id.String()
}

// Validate checks whether a string is a valid, optionally prefixed ULID.
func Validate(id string) bool {
	if i := strings.LastIndex(id, PrefixSeparator); i >= 0 {
		id = id[i+1:]
	}
	_, err := ulid.Parse(id)
	return err == nil
}

// BatchID generates a new ULID with the batch prefix
func BatchID() string {
	return GenerateWithPrefix(PrefixBatch)
}

// RunID generates a new ULID with the run prefix
func RunID() string {
	return GenerateWithPrefix(PrefixRun)
}
