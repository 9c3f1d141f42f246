package codec

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-auth-relay/internal/utils"
)

// Claims is a decoded token payload. Accessors are tolerant of the type
// variance JSON allows (aud as string or list, numeric dates as float64 or
// json.Number) and report absence rather than failing.
type Claims map[string]any

func (c Claims) Issuer() string  { return c.stringClaim("iss") }
func (c Claims) Subject() string { return c.stringClaim("sub") }
func (c Claims) Nonce() string   { return c.stringClaim("nonce") }
func (c Claims) TokenID() string { return c.stringClaim("jti") }

// Audience returns the aud claim normalized to a list. A single-string aud
// becomes a one-element list, per RFC 7519.
func (c Claims) Audience() []string {
	switch v := c["aud"].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		return utils.ToStringSlice(v)
	}
	return nil
}

// HasAudience reports whether aud contains the given audience (set
// containment, not equality).
func (c Claims) HasAudience(audience string) bool {
	for _, a := range c.Audience() {
		if a == audience {
			return true
		}
	}
	return false
}

func (c Claims) ExpiresAt() (time.Time, bool) { return c.timeClaim("exp") }
func (c Claims) NotBefore() (time.Time, bool) { return c.timeClaim("nbf") }
func (c Claims) IssuedAt() (time.Time, bool)  { return c.timeClaim("iat") }

func (c Claims) stringClaim(name string) string {
	s, _ := c[name].(string)
	return s
}

func (c Claims) timeClaim(name string) (time.Time, bool) {
	v, ok := c[name]
	if !ok {
		return time.Time{}, false
	}
	switch n := v.(type) {
	case float64:
		return time.Unix(int64(n), 0), true
	case int64:
		return time.Unix(n, 0), true
	case int:
		return time.Unix(int64(n), 0), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return time.Time{}, false
		}
		return time.Unix(i, 0), true
	}
	return time.Time{}, false
}
