package jobs

import "errors"

var (
	// ErrSchema means the source tables do not have the expected shape:
	// a required column is missing or a required value cannot be parsed.
	ErrSchema = errors.New("job source schema error")
	// ErrSourceUnavailable covers every other failure to read the source,
	// including the read timeout expiring.
	ErrSourceUnavailable = errors.New("job source unavailable")
)
