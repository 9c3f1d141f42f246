package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// classifyExchangeError splits token-endpoint failures into terminal
// provider rejections and retryable transport failures. When terminal, the
// returned string is a log-safe summary of the provider error — it is never
// surfaced to end users.
func classifyExchangeError(err error) (providerError string, terminal bool) {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode != "" {
			return fmt.Sprintf("provider returned %q: %s", retrieveErr.ErrorCode, retrieveErr.ErrorDescription), true
		}
		return fmt.Sprintf("token endpoint returned status %d", retrieveErr.Response.StatusCode), true
	}

	// Caller cancellation is terminal but not a provider rejection; the
	// retry loop's ctx select reports it. Everything else that reaches here
	// is transport-level (timeout, reset, DNS) and worth retrying.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", false
	}

	return "", false
}
