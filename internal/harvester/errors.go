package harvester

import "fmt"

// FetchError reports a page that could not be retrieved after exhausting
// retries. Non-fatal to a crawl: the page stays pending for a future run.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError reports a non-success HTTP response for a page request. The
// status code drives retry classification: 5xx and 429 are transient, other
// client errors are permanent.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string { return fmt.Sprintf("status %d: %v", e.Code, e.Err) }

func (e *StatusError) Unwrap() error { return e.Err }

// ParseError reports a response body that could not be decoded as JSON.
// Treated identically to a FetchError for crawl purposes.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.URL, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ConversionError reports a member payload that could not be serialized to
// the target RDF form. The member is skipped; the crawl continues.
type ConversionError struct {
	MemberID string
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert member %s: %v", e.MemberID, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// StatePersistError reports a checkpoint that could not be written. The run
// continues in memory; progress is lost only if the process then terminates.
type StatePersistError struct {
	Path string
	Err  error
}

func (e *StatePersistError) Error() string {
	return fmt.Sprintf("persist state %s: %v", e.Path, e.Err)
}

func (e *StatePersistError) Unwrap() error { return e.Err }
