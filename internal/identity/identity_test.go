package identity

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestIssuer_Issue(t *testing.T) {
	t.Parallel()

	t.Run("derives token from fields and salt", func(t *testing.T) {
		t.Parallel()

		seed := bytes.Repeat([]byte{0xAB}, SaltLength)
		issuer := NewIssuer(bytes.NewReader(seed))

		fields := StableFields{Name: "Breanna Dillon", Email: "lorettabrown@example.net", Phone: "+1-924-116-7963"}
		cred, err := issuer.Issue(fields)
		if err != nil {
			t.Fatalf("Issue failed: %v", err)
		}

		if cred.Salt != hex.EncodeToString(seed) {
			t.Fatalf("unexpected salt %q", cred.Salt)
		}
		if cred.Token != Derive(fields, cred.Salt) {
			t.Fatalf("token does not match derivation: %q", cred.Token)
		}
		if len(cred.Token) != 64 {
			t.Fatalf("expected 64 hex characters, got %d", len(cred.Token))
		}
		if strings.ToLower(cred.Token) != cred.Token {
			t.Fatalf("expected lowercase hex token, got %q", cred.Token)
		}
	})

	t.Run("different salts yield different tokens", func(t *testing.T) {
		t.Parallel()

		fields := StableFields{Name: "n", Email: "e", Phone: "p"}
		a := Derive(fields, "salt-a")
		b := Derive(fields, "salt-b")
		if a == b {
			t.Fatalf("expected distinct tokens, got %q twice", a)
		}
	})

	t.Run("derivation is deterministic", func(t *testing.T) {
		t.Parallel()

		fields := StableFields{Name: "n", Email: "e", Phone: "p"}
		if Derive(fields, "salt") != Derive(fields, "salt") {
			t.Fatal("expected identical tokens for identical input")
		}
	})

	t.Run("propagates randomness failures", func(t *testing.T) {
		t.Parallel()

		issuer := NewIssuer(failingReader{})
		if _, err := issuer.Issue(StableFields{}); err == nil {
			t.Fatal("expected error from exhausted randomness source")
		}
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("no entropy")
}
