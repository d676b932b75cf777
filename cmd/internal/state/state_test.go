package state

import (
	"bytes"
	"errors"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/encstring"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testKey(t *testing.T, fill byte) encstring.SymmetricKey {
	key, err := encstring.KeyFromBytes(bytes.Repeat([]byte{fill}, 64))

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	return key
}

func TestSaveAndLoad(t *testing.T) {
	store := Store{Path: filepath.Join(t.TempDir(), "nested", "bw_state")}
	key := testKey(t, 1)
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	err := store.Save("fingerprint", key, State{Token: "bearer", EncryptionKey: "orgkey", ExpiresAt: expires})

	if err != nil {
		t.Fatalf("Should not have returned an error: %s", err.Error())
	}

	info, err := os.Stat(store.Path)

	if err != nil {
		t.Fatalf("state file should have been written")
	}

	if info.Mode().Perm() != 0600 {
		t.Fatalf("state file should have been 0600, was %v", info.Mode().Perm())
	}

	loaded, err := store.Load("fingerprint", key)

	if err != nil {
		t.Fatalf("Should not have returned an error: %s", err.Error())
	}

	if loaded.Token != "bearer" || loaded.EncryptionKey != "orgkey" || !loaded.ExpiresAt.Equal(expires) {
		t.Fatalf("loaded state did not match saved state: %+v", loaded)
	}
}

func TestSaveTightensExistingFile(t *testing.T) {
	store := Store{Path: filepath.Join(t.TempDir(), "bw_state")}

	if err := os.WriteFile(store.Path, []byte("old"), 0644); err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if err := store.Save("fingerprint", testKey(t, 1), State{Token: "bearer", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Should not have returned an error: %s", err.Error())
	}

	info, err := os.Stat(store.Path)

	if err != nil {
		t.Fatalf("state file should have been written")
	}

	if info.Mode().Perm() != 0600 {
		t.Fatalf("state file should have been 0600, was %v", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(store.Path))

	if err != nil || len(entries) != 1 {
		t.Fatalf("only the state file should be left in the directory")
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := Store{Path: filepath.Join(t.TempDir(), "missing")}

	if _, err := store.Load("fingerprint", testKey(t, 1)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadFingerprintMismatch(t *testing.T) {
	store := Store{Path: filepath.Join(t.TempDir(), "bw_state")}
	key := testKey(t, 1)

	if err := store.Save("first", key, State{Token: "bearer", EncryptionKey: "orgkey"}); err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if _, err := store.Load("second", key); !errors.Is(err, ErrFingerprintMismatch) {
		t.Fatalf("expected ErrFingerprintMismatch, got %v", err)
	}
}

func TestLoadWrongKey(t *testing.T) {
	store := Store{Path: filepath.Join(t.TempDir(), "bw_state")}

	if err := store.Save("fingerprint", testKey(t, 1), State{Token: "bearer", EncryptionKey: "orgkey"}); err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if _, err := store.Load("fingerprint", testKey(t, 2)); !errors.Is(err, encstring.ErrMacMismatch) {
		t.Fatalf("expected ErrMacMismatch, got %v", err)
	}
}

func TestValid(t *testing.T) {
	now := time.Now()

	if !(State{Token: "t", EncryptionKey: "k", ExpiresAt: now.Add(time.Hour)}).Valid(now) {
		t.Fatalf("state should have been valid")
	}

	if (State{Token: "t", EncryptionKey: "k", ExpiresAt: now.Add(30 * time.Second)}).Valid(now) {
		t.Fatalf("state expiring within the skew should not have been valid")
	}

	if (State{EncryptionKey: "k", ExpiresAt: now.Add(time.Hour)}).Valid(now) {
		t.Fatalf("state without a token should not have been valid")
	}
}
