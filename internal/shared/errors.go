package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Upstream errors
	ErrUpstreamAnomaly = fmt.Errorf("upstream anomaly")
	ErrShrinkage       = fmt.Errorf("playlist shrank since last snapshot")
	ErrTransport       = fmt.Errorf("transport error")
	ErrParse           = fmt.Errorf("parse error")

	// Storage errors
	ErrNotFound = fmt.Errorf("not found")
	ErrIO       = fmt.Errorf("i/o error")
	ErrLocked   = fmt.Errorf("collection is locked by another run")
)
