package gateway

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/fitstack/paygate/internal/core/domain"
)

// Digest names the hash used for signatures.
type Digest string

const (
	DigestMD5    Digest = "MD5"
	DigestSHA256 Digest = "SHA256"
)

func (d Digest) newHash() (hash.Hash, error) {
	switch d {
	case DigestMD5:
		return md5.New(), nil
	case DigestSHA256:
		return sha256.New(), nil
	}
	return nil, fmt.Errorf("%w: unsupported digest %q", domain.ErrInvalidProvider, string(d))
}

// Signing pins how a signature is produced. Both sides of the protocol must agree
// on all three settings, the text encoding included: it changes the hash of any
// non-ASCII value.
type Signing struct {
	Digest   Digest
	Encoding encoding.Encoding // nil means UTF-8
	UpperHex bool
}

// Signer computes and checks signatures over a parameter set.
type Signer struct {
	signing   Signing
	signField string
}

// NewSigner creates a signer that skips signField when building its input.
func NewSigner(signing Signing, signField string) (*Signer, error) {
	if _, err := signing.Digest.newHash(); err != nil {
		return nil, err
	}
	if signField == "" {
		return nil, fmt.Errorf("%w: signature field name is required", domain.ErrInvalidProvider)
	}
	return &Signer{signing: signing, signField: signField}, nil
}

// Canonical builds "a=1&b=2" from the non-empty parameters other than the
// signature field, ordered by name byte-wise.
func (s *Signer) Canonical(set *ParameterSet) string {
	var b strings.Builder
	for _, p := range set.Sorted() {
		if p.Value == "" || p.Name == s.signField {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Sign returns the hex digest of the canonical string followed by "&key=<key>".
func (s *Signer) Sign(set *ParameterSet, key string) (string, error) {
	return s.SignString(s.Canonical(set), key)
}

// SignString signs an already canonical query string.
func (s *Signer) SignString(canonical, key string) (string, error) {
	input := "key=" + key
	if canonical != "" {
		input = canonical + "&" + input
	}

	raw := []byte(input)
	if s.signing.Encoding != nil {
		encoded, err := s.signing.Encoding.NewEncoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("encode signature input: %w", err)
		}
		raw = encoded
	}

	h, err := s.signing.Digest.newHash()
	if err != nil {
		return "", err
	}
	h.Write(raw)

	sum := hex.EncodeToString(h.Sum(nil))
	if s.signing.UpperHex {
		sum = strings.ToUpper(sum)
	}
	return sum, nil
}

// Verify recomputes the signature and compares it with the signature field, byte for byte.
func (s *Signer) Verify(set *ParameterSet, key string) bool {
	received, ok := set.Get(s.signField)
	if !ok || received == "" {
		return false
	}
	expected, err := s.Sign(set, key)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(received), []byte(expected))
}
