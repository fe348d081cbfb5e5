// Package fingerprint implements salted-hash secret fingerprinting and the
// Vault contract for organization-wide publish/fetch of those fingerprints
// (C9). Publish is read-modify-write, non-transactional: concurrent
// publishers can race and lose an update, which is accepted for this
// use-case per spec.md §4.9/§9 (iii).
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// SecretFingerprint is a salted hash of a raw secret, safe to share
// organization-wide without exposing the secret itself.
type SecretFingerprint struct {
	Hash       string    `json:"hash"`
	Provider   string    `json:"provider"`
	DetectedAt time.Time `json:"detected_at"`
	Severity   string    `json:"severity"`
}

// New computes SecretFingerprint{Hash: SHA-256(salt || secret)}.
func New(secret, provider string, salt []byte, severity string) SecretFingerprint {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(secret))
	return SecretFingerprint{
		Hash:       hex.EncodeToString(h.Sum(nil)),
		Provider:   provider,
		DetectedAt: time.Now(),
		Severity:   severity,
	}
}

// Vault stores and retrieves SecretFingerprints. Implementations backed by
// no real store are no-ops: Publish does nothing, FetchAll returns an
// empty slice.
type Vault interface {
	// Publish appends fp if its Hash is not already present. Errors
	// represent transport failures; callers should log and continue (a
	// VaultError is non-fatal to the scan that produced fp).
	Publish(fp SecretFingerprint) error
	// FetchAll returns every fingerprint currently stored. A transport
	// failure returns an empty slice and a non-nil error.
	FetchAll() ([]SecretFingerprint, error)
}
