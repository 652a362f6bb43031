// Package ulid generates prefixed, lexicographically sortable identifiers
// on top of github.com/oklog/ulid/v2.
package ulid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes identify what a generated ID refers to.
const (
	// PrefixAudit is used for persisted review audit artifacts
	PrefixAudit = "aud"

	// PrefixReview is used for review runs
	PrefixReview = "rev"

	// PrefixSeparator separates the prefix from the ULID
	PrefixSeparator = "-"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// Generate creates a new ULID string with the current timestamp.
func Generate() string {
	entropyLock.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	entropyLock.Unlock()
	return id.String()
}

// GenerateWithPrefix creates a new ULID string prefixed with context
// about what the ID represents (e.g. "aud" for audit artifacts).
func GenerateWithPrefix(prefix string) string {
	return prefix + PrefixSeparator + Generate()
}

// Validate checks if a string is a valid, optionally prefixed, ULID.
func Validate(id string) bool {
	raw := id
	if idx := strings.Index(id, PrefixSeparator); idx >= 0 {
		raw = id[idx+1:]
	}
	_, err := ulid.Parse(raw)
	return err == nil
}

// AuditID generates a new ULID with the audit prefix
func AuditID() string {
	return GenerateWithPrefix(PrefixAudit)
}

// ReviewID generates a new ULID with the review prefix
func ReviewID() string {
	return GenerateWithPrefix(PrefixReview)
}
