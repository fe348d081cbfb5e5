package fingerprint

import (
	"path/filepath"
	"testing"
)

func TestNewFingerprintIsDeterministicForSameSaltAndSecret(t *testing.T) {
	salt := []byte("org-salt")
	a := New("sk-live-abc123", "generic", salt, "high")
	b := New("sk-live-abc123", "generic", salt, "high")
	if a.Hash != b.Hash {
		t.Error("fingerprint hash should be deterministic for the same salt and secret")
	}
}

func TestNewFingerprintDiffersWithSalt(t *testing.T) {
	a := New("secret", "generic", []byte("salt-a"), "low")
	b := New("secret", "generic", []byte("salt-b"), "low")
	if a.Hash == b.Hash {
		t.Error("fingerprint hash should differ when salt differs")
	}
}

func TestFileVaultPublishDedupesByHash(t *testing.T) {
	dir := t.TempDir()
	v := NewFileVault(filepath.Join(dir, "vault.json"))

	fp := New("dup-secret", "generic", []byte("salt"), "medium")
	if err := v.Publish(fp); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := v.Publish(fp); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	all, err := v.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(FetchAll()) = %d, want 1 (duplicate hash should not be appended twice)", len(all))
	}
}

func TestFileVaultFetchAllOnMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	v := NewFileVault(filepath.Join(dir, "does-not-exist.json"))

	all, err := v.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("FetchAll() on missing file = %v, want empty", all)
	}
}

func TestNoopVaultIsAlwaysEmpty(t *testing.T) {
	var v NoopVault
	fp := New("x", "generic", []byte("s"), "low")
	if err := v.Publish(fp); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	all, err := v.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("NoopVault.FetchAll() = %v, want empty", all)
	}
}
