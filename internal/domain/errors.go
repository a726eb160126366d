package domain

import "errors"

// Evaluation failure kinds. The evaluator converts each of them into a
// fallback result; they never reach HTTP callers as errors.
var (
	ErrInputTooLong        = errors.New("input too long")
	ErrInvalidEncoding     = errors.New("invalid encoding")
	ErrModelCall           = errors.New("model call failure")
	ErrResponseParse       = errors.New("response parse failure")
	ErrResponseStructure   = errors.New("response structure invalid")
	ErrSourceNotAllowed    = errors.New("draft source not allowed")
	ErrDraftEmpty          = errors.New("draft has no text")
	ErrUnsupportedDraftURL = errors.New("unsupported draft url")
)
