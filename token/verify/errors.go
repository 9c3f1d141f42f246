package verify

import (
	"fmt"

	"github.com/pkg/errors"
)

// Terminal rejection kinds. Callers branch on these with errors.Is; the
// specific diagnostic lives in the wrapping RejectedError and is meant for
// server-side logs, not end users.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad signature")
	ErrExpiredToken   = errors.New("token expired")
	ErrClaimMismatch  = errors.New("claim mismatch")
)

// Reason is a short diagnostic code identifying which check rejected a
// token. Safe to log, never shown to end users.
type Reason string

const (
	ReasonMalformed        Reason = "malformed"
	ReasonBadSignature     Reason = "bad_signature"
	ReasonExpired          Reason = "expired"
	ReasonNotYetValid      Reason = "not_yet_valid"
	ReasonIssuerMismatch   Reason = "iss_mismatch"
	ReasonAudienceMismatch Reason = "aud_mismatch"
	ReasonNonceMismatch    Reason = "nonce_mismatch"
)

// RejectedError is a failed verification outcome: the kind sentinel for
// errors.Is plus the reason code and detail for diagnostics.
type RejectedError struct {
	Reason Reason
	kind   error
	detail string
}

func reject(reason Reason, kind error, format string, args ...any) *RejectedError {
	return &RejectedError{
		Reason: reason,
		kind:   kind,
		detail: fmt.Sprintf(format, args...),
	}
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("token rejected (%s): %s", e.Reason, e.detail)
}

func (e *RejectedError) Unwrap() error {
	return e.kind
}

// ReasonOf extracts the rejection reason from an error chain, or "" when
// the error is not a verification rejection.
func ReasonOf(err error) Reason {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Reason
	}
	return ""
}
