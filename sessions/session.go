package sessions

import "time"

// Session binds a verified subject to a validity window. The wire artifact
// is the signed token handed to the client (an opaque cookie value); the
// struct is what callers work with after issue or verify.
type Session struct {
	ID        string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
