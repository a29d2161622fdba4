package convert

import "errors"

var (
	// ErrSynthesisFailed wraps a chunk synthesis error after the speech
	// client's retries were exhausted.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrStorageFailed means the assembled artifact could not be persisted.
	ErrStorageFailed = errors.New("failed to store artifact")

	// ErrSampleTooLong rejects sample text over the allowed length.
	ErrSampleTooLong = errors.New("sample text too long")
)
