// Package cryptox holds the small cryptographic helpers used for opaque,
// single-use tokens: generation and storage digests.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// OpaqueTokenBytes is the entropy of a generated token (64 hex chars).
const OpaqueTokenBytes = 32

// NewOpaqueToken returns a random hex token together with its storage digest.
// Only the digest is meant to be persisted; the plaintext goes to the user.
func NewOpaqueToken() (token, digest string, err error) {
	token, err = common.MakeRandHexString(OpaqueTokenBytes)
	if err != nil {
		return "", "", err
	}
	return token, HashToken(token), nil
}

// HashToken computes the hex SHA-256 digest of a token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
