// Package codec encodes and decodes the three-segment compact token format
// (base64url header, payload and signature joined by '.'). It is independent
// of key material: signatures are opaque bytes here.
package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedToken is returned when a wire string does not parse as a
// three-segment compact token.
var ErrMalformedToken = errors.New("malformed token")

const maxWireLength = 8192

// Header is the decoded first segment of a token.
type Header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ,omitempty"`
	KeyID     string `json:"kid,omitempty"`
}

// Token is a decoded compact token. SigningInput holds the first two wire
// segments exactly as received: signature verification must run over the
// literal bytes that were signed, never over a re-serialization that could
// drift in whitespace or key order.
type Token struct {
	Header       Header
	Claims       Claims
	Signature    []byte
	SigningInput []byte
	Raw          string
}

// Decode parses a compact token wire string. It performs no signature or
// claim validation; it only guarantees the structure is well formed.
func Decode(wire string) (*Token, error) {
	if wire == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedToken)
	}
	if len(wire) > maxWireLength {
		return nil, fmt.Errorf("%w: exceeds %d characters", ErrMalformedToken, maxWireLength)
	}

	headerSeg, claimsSeg, signatureSeg, ok := split3(wire)
	if !ok || headerSeg == "" || claimsSeg == "" || signatureSeg == "" {
		return nil, fmt.Errorf("%w: expected three non-empty segments", ErrMalformedToken)
	}

	token := &Token{
		Raw:          wire,
		SigningInput: []byte(wire[:len(headerSeg)+1+len(claimsSeg)]),
	}

	if err := decodeSegment(headerSeg, &token.Header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedToken, err)
	}
	if token.Header.Algorithm == "" {
		return nil, fmt.Errorf("%w: header missing alg", ErrMalformedToken)
	}

	if err := decodeSegment(claimsSeg, &token.Claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedToken, err)
	}

	signature, err := base64.RawURLEncoding.Strict().DecodeString(signatureSeg)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", ErrMalformedToken, err)
	}
	token.Signature = signature

	return token, nil
}

// EncodeSigningInput serializes header and claims into the byte string a
// signature is computed over.
func EncodeSigningInput(header Header, claims Claims) ([]byte, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal claims: %w", err)
	}

	headerLen := base64.RawURLEncoding.EncodedLen(len(headerJSON))
	claimsLen := base64.RawURLEncoding.EncodedLen(len(claimsJSON))

	buf := make([]byte, headerLen+1+claimsLen)
	base64.RawURLEncoding.Encode(buf[:headerLen], headerJSON)
	buf[headerLen] = '.'
	base64.RawURLEncoding.Encode(buf[headerLen+1:], claimsJSON)

	return buf, nil
}

// Encode serializes a signed token to its wire form. The signing input is
// rebuilt deterministically (struct header, sorted map claims), so
// Decode(Encode(h, p, s)) yields back (h, p, s) exactly.
func Encode(header Header, claims Claims, signature []byte) (string, error) {
	signingInput, err := EncodeSigningInput(header, claims)
	if err != nil {
		return "", err
	}
	return AppendSignature(signingInput, signature), nil
}

// AppendSignature joins a signing input with its computed signature into the
// final wire string.
func AppendSignature(signingInput, signature []byte) string {
	var b strings.Builder
	b.Grow(len(signingInput) + 1 + base64.RawURLEncoding.EncodedLen(len(signature)))
	b.Write(signingInput)
	b.WriteByte('.')
	b.WriteString(base64.RawURLEncoding.EncodeToString(signature))
	return b.String()
}

func split3(s string) (string, string, string, bool) {
	first := strings.IndexByte(s, '.')
	if first < 0 {
		return "", "", "", false
	}
	rest := s[first+1:]
	second := strings.IndexByte(rest, '.')
	if second < 0 {
		return "", "", "", false
	}
	// A fourth segment means this is not a three-part compact token.
	if strings.IndexByte(rest[second+1:], '.') >= 0 {
		return "", "", "", false
	}
	return s[:first], rest[:second], rest[second+1:], true
}

func decodeSegment(segment string, dest any) error {
	raw, err := base64.RawURLEncoding.Strict().DecodeString(segment)
	if err != nil {
		return fmt.Errorf("invalid base64url: %v", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("invalid JSON: %v", err)
	}
	return nil
}
