package model

import "errors"

// Sentinel kinds for message decoding errors. All three are recoverable at
// the correlator: the offending message is logged and dropped.
var (
	ErrMalformedPayload = errors.New("malformed payload")
	ErrMissingID        = errors.New("message has no id")
	ErrMissingValue     = errors.New("message has no body or prediction value")
)
