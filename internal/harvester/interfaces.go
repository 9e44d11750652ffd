package harvester

import (
	"context"
	"time"
)

// Fetcher retrieves a URL and returns its parsed JSON document. It retries
// transient transport failures internally; exhausted retries surface as a
// *FetchError and malformed bodies as a *ParseError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Document, error)
}

// Sink converts a member record plus its inherited context into a persisted
// artifact keyed by identity, returning the artifact URI. Conversion failures
// surface as a *ConversionError.
type Sink interface {
	Persist(ctx context.Context, id string, member map[string]any, pageContext any) (string, error)
}

// StateStore loads and saves crawl state. Load returns (nil, nil) when no
// usable prior state exists so a crawl can always start fresh.
type StateStore interface {
	Load() (*State, error)
	Save(st *State) error
}

// RetryPolicy decides whether a fetch error warrants another attempt and how
// long to wait before it.
type RetryPolicy interface {
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	NewID() (string, error)
}
