package provider

import "fmt"

// SourceError tags a fetch failure with the source it came from so the
// aggregation layer can log which upstreams degraded a snapshot.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
