package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/encstring"
	"os"
	"path/filepath"
	"time"
)

// expirySkew treats a token as expired slightly early so it does not expire mid request.
const expirySkew = time.Minute

var ErrFingerprintMismatch = errors.New("state file belongs to a different access token")

// State is the authenticated session cached between runs.
type State struct {
	Token         string    `json:"token"`
	EncryptionKey string    `json:"encryptionKey"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Valid returns true if the cached token can still be used at the supplied time.
func (s State) Valid(now time.Time) bool {
	return s.Token != "" && s.EncryptionKey != "" && now.Add(expirySkew).Before(s.ExpiresAt)
}

type stateFile struct {
	Fingerprint string `json:"fingerprint"`
	Payload     string `json:"payload"`
}

// Store reads and writes the state file. The payload is an EncString encrypted with the key derived from the
// access token, and the fingerprint identifies the token the file was written for.
type Store struct {
	Path string
}

// Load returns the cached state. A missing file returns an error wrapping os.ErrNotExist.
func (s Store) Load(fingerprint string, key encstring.SymmetricKey) (*State, error) {
	contents, err := os.ReadFile(s.Path)

	if err != nil {
		return nil, err
	}

	file := stateFile{}
	if err := json.Unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", s.Path, err)
	}

	if file.Fingerprint != fingerprint {
		return nil, ErrFingerprintMismatch
	}

	payload, err := encstring.Decrypt(key, file.Payload)

	if err != nil {
		return nil, fmt.Errorf("failed to decrypt state file %s: %w", s.Path, err)
	}

	state := State{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s payload: %w", s.Path, err)
	}

	return &state, nil
}

// Save writes the state, readable only by the current user.
func (s Store) Save(fingerprint string, key encstring.SymmetricKey, state State) error {
	payload, err := json.Marshal(state)

	if err != nil {
		return err
	}

	encrypted, err := encstring.Encrypt(key, payload)

	if err != nil {
		return err
	}

	contents, err := json.Marshal(stateFile{Fingerprint: fingerprint, Payload: encrypted})

	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create state file directory %s: %w", dir, err)
		}
	}

	if err := writeFile(s.Path, contents); err != nil {
		return fmt.Errorf("failed to write state file %s: %w", s.Path, err)
	}

	return nil
}

// writeFile replaces path with a new 0600 file, so an existing file with wider permissions is not reused.
func writeFile(path string, contents []byte) (funcErr error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")

	if err != nil {
		return err
	}

	defer func() {
		if funcErr != nil {
			_ = os.Remove(f.Name())
		}
	}()

	if _, err := f.Write(contents); err != nil {
		return errors.Join(err, f.Close())
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}
