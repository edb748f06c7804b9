package repository

import "fmt"

// FetchKind classifies a failed fetch.
type FetchKind string

const (
	FetchTimeout        FetchKind = "timeout"
	FetchNotFound       FetchKind = "not-found"
	FetchNetworkFailure FetchKind = "network-failure"
)

// FetchError reports a repository reference that could not be materialized
// after the bounded retries were exhausted.
type FetchError struct {
	Name string
	URL  string
	Kind FetchKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch repository '%s' from %s (%s): %v", e.Name, e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
