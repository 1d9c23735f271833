package source

import "errors"

// Sentinel kinds for result source errors. A missing file is reported as
// results.ErrNotFound.
var (
	ErrInvalidCategory = errors.New("invalid category key")
	ErrMalformedCSV    = errors.New("malformed results csv")
)
