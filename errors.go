package wikirag

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoCredentials means the selected provider has no API key configured.
	ErrNoCredentials = errors.New("missing credentials for provider")
	// ErrNoEndpoint means the selected provider has no endpoint configured.
	ErrNoEndpoint = errors.New("missing endpoint for provider")
	// ErrUnknownProvider means the provider identifier is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrNoEmbedding means a provider produced no usable embedding vector.
	ErrNoEmbedding = errors.New("no embedding produced")
	// ErrNoIndex means no active search index exists.
	ErrNoIndex = errors.New("no active index")
	// ErrEmptyResponse means a provider returned an empty result after
	// normalization.
	ErrEmptyResponse = errors.New("empty response")
	// ErrInvalidResponse means a provider payload could not be decoded or is
	// missing the expected field. Treated as permanent; never retried.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrAttachmentUnavailable means attachment bytes could be sourced from
	// neither the local cache nor the remote URL.
	ErrAttachmentUnavailable = errors.New("attachment bytes unavailable")
)

// ValidationError rejects a request before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ProviderError is a non-200 reply from an embedding, search or generation
// provider. The status code decides whether the call is retried.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Transient reports whether the error class is expected to self-resolve
// shortly (overload, rate limit) and is therefore eligible for retry.
// 529 is Anthropic's "overloaded" status.
func (e *ProviderError) Transient() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, 529:
		return true
	}
	return false
}

// IsTransient reports whether err wraps a retryable provider error.
func IsTransient(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient()
}
