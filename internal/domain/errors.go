package domain

import "errors"

// ErrRangeMismatch indicates the server returned a content length that does
// not match the requested byte span. Treated like any transient failure:
// the worker retries the remaining suffix.
var ErrRangeMismatch = errors.New("content length does not match requested range")

// ErrShortBody indicates the response body ended before the full span was
// delivered.
var ErrShortBody = errors.New("response body ended before range was complete")

// ErrSegmentFailed indicates a segment exhausted its retry budget.
var ErrSegmentFailed = errors.New("segment permanently failed")
