package docprep

import "errors"

var (
	// ErrMalformedDiagram is returned when the interchange XML cannot be
	// parsed. Fatal for the document, not for a batch.
	ErrMalformedDiagram = errors.New("docprep: malformed diagram XML")

	// ErrUnreadableInput is returned when an input file cannot be read.
	ErrUnreadableInput = errors.New("docprep: input could not be read")

	// ErrUnknownKind is returned for a job with an unrecognized document kind.
	ErrUnknownKind = errors.New("docprep: unknown document kind")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("docprep: invalid configuration")

	// ErrJobNotFound is returned when a named job is absent from the job file.
	ErrJobNotFound = errors.New("docprep: job not found")

	// ErrWriteFailed is returned when an output artifact cannot be written.
	ErrWriteFailed = errors.New("docprep: writing artifact failed")
)
