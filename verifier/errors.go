package verifier

import "errors"

var (
	// ErrSyntaxInvalid marks an address that failed syntax validation.
	ErrSyntaxInvalid = errors.New("invalid email syntax")
	// ErrMxResolution marks a DNS failure while resolving exchangers.
	ErrMxResolution = errors.New("mx resolution failed")
	// ErrMxEmpty marks a domain that has no mail exchangers.
	ErrMxEmpty = errors.New("domain has no mx records")
	// ErrProbeFailed marks an SMTP session that did not complete.
	ErrProbeFailed = errors.New("smtp probe failed")
	// ErrProbeTimeout marks an SMTP session that ran out of time.
	ErrProbeTimeout = errors.New("smtp probe timed out")
)
