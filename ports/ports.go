// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"time"

	"github.com/artpar/rpcgate/domain/audit"
	"golang.org/x/text/language"
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// Hasher provides token hashing.
type Hasher interface {
	// Hash generates a hash from a plaintext value.
	Hash(plaintext string) ([]byte, error)

	// Compare checks if plaintext matches hash.
	Compare(hash []byte, plaintext string) bool
}

// -----------------------------------------------------------------------------
// Localization Port
// -----------------------------------------------------------------------------

// Bundle resolves localized descriptor text. Lookups miss softly: a missing
// bundle or key is reported through the bool, never an error.
type Bundle interface {
	// Lookup returns the text for key in the best match for locale.
	Lookup(locale language.Tag, key string) (string, bool)
}

// -----------------------------------------------------------------------------
// Audit Ports
// -----------------------------------------------------------------------------

// AuditStore persists dispatch audit events.
type AuditStore interface {
	// RecordBatch stores multiple events.
	RecordBatch(ctx context.Context, events []audit.Event) error

	// Recent returns the most recent events, newest first.
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// AuditRecorder accepts audit events for async processing.
type AuditRecorder interface {
	// Record queues an event for processing. Non-blocking.
	Record(e audit.Event)

	// Flush forces immediate processing of queued events.
	Flush(ctx context.Context) error

	// Close stops the recorder and flushes remaining events.
	Close() error
}
