package smoketest

import "errors"

var (
	// ErrRecordMissing reports a published pair absent from the log.
	ErrRecordMissing = errors.New("expected record missing from log")
	// ErrDuplicateRecord reports a pair logged more than once.
	ErrDuplicateRecord = errors.New("record logged more than once")
	// ErrWrongError reports a logged absolute error that does not match.
	ErrWrongError = errors.New("logged absolute error does not match")
)
