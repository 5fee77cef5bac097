package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinel errors for provider failures. Adapters wrap transport and API
// errors into one of these so callers can branch without knowing the provider.
var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrQuotaExceeded       = errors.New("ai provider quota exceeded")
	ErrAuthFailed          = errors.New("ai provider authentication failed")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

// ClassifyTransportError maps transport-level errors to sentinel errors.
func ClassifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrInferenceTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

// ClassifyStatus maps non-2xx HTTP statuses to sentinel errors.
func ClassifyStatus(status int) error {
	switch {
	case status == 429:
		return fmt.Errorf("%w: status %d", ErrQuotaExceeded, status)
	case status == 401 || status == 403:
		return fmt.Errorf("%w: status %d", ErrAuthFailed, status)
	case status >= 500:
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, status)
	default:
		return fmt.Errorf("%w: status %d", ErrInvalidResponse, status)
	}
}
