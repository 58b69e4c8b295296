// Package identity issues the opaque tokens that identify attendees on
// badges and QR codes. A token is a digest of the attendee's stable
// attributes mixed with a random salt; both the salt and the token are
// persisted and safe to expose.
package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// SaltLength is the number of random bytes mixed into each token.
const SaltLength = 16

// StableFields are the attendee attributes a token is derived from. They
// are captured once at creation time; later edits to the attendee never
// cause the token to be recomputed.
type StableFields struct {
	Name  string
	Email string
	Phone string
}

// Credential pairs a generated salt with the token derived from it.
type Credential struct {
	Salt  string
	Token string
}

// Issuer generates credentials from a source of randomness.
type Issuer struct {
	rand io.Reader
}

// NewIssuer returns an issuer reading randomness from r. When r is nil the
// crypto/rand reader is used.
func NewIssuer(r io.Reader) *Issuer {
	if r == nil {
		r = rand.Reader
	}
	return &Issuer{rand: r}
}

// Issue generates a fresh salt and derives the token for the supplied
// fields. Collisions are treated as negligible; a uniqueness violation at
// the storage layer surfaces as a creation failure rather than a retry.
func (i *Issuer) Issue(fields StableFields) (Credential, error) {
	buf := make([]byte, SaltLength)
	if _, err := io.ReadFull(i.rand, buf); err != nil {
		return Credential{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	salt := hex.EncodeToString(buf)
	return Credential{Salt: salt, Token: Derive(fields, salt)}, nil
}

// Derive recomputes the token for the given fields and salt. It exists so
// external collaborators holding the persisted salt can regenerate the
// token; it is never used for authentication.
func Derive(fields StableFields, salt string) string {
	input := strings.Join([]string{fields.Name, fields.Email, fields.Phone, salt}, "|")
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
