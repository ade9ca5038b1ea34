package llm

import "errors"

// Error taxonomy for model calls. Providers wrap these sentinels so the
// client can decide between skip, retry, and fail-fast.
var (
	// ErrModelNotFound means the backend does not serve the requested model id.
	ErrModelNotFound = errors.New("model not found")

	// ErrRateLimited covers 429 and quota exhaustion responses.
	ErrRateLimited = errors.New("rate limited")

	// ErrServer covers 5xx-equivalent backend failures.
	ErrServer = errors.New("server error")

	// ErrAllModelsFailed is returned when every candidate model was rejected.
	ErrAllModelsFailed = errors.New("no working model found")
)

// IsTransient reports whether an error is worth retrying on the same model.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer)
}
