package client

import (
	"encoding/base64"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"strings"
)

const accessTokenVersion = "0"

// AccessToken is a parsed machine account access token, which has the format
// 0.<client id>.<client secret>:<base64 encryption key>
type AccessToken struct {
	ClientId      string
	ClientSecret  string
	EncryptionKey []byte
}

func ParseAccessToken(token string) (*AccessToken, error) {
	credentials, key, found := strings.Cut(strings.TrimSpace(token), ":")

	if !found {
		return nil, errors.New("access token is missing the encryption key")
	}

	pieces := strings.Split(credentials, ".")

	if len(pieces) != 3 {
		return nil, errors.New("access token should have the format 0.<client id>.<client secret>:<key>")
	}

	if pieces[0] != accessTokenVersion {
		return nil, fmt.Errorf("unsupported access token version %s", pieces[0])
	}

	clientId, err := uuid.Parse(pieces[1])

	if err != nil {
		return nil, fmt.Errorf("access token client id is not a UUID: %w", err)
	}

	if pieces[2] == "" {
		return nil, errors.New("access token client secret is empty")
	}

	encryptionKey, err := base64.StdEncoding.DecodeString(key)

	if err != nil {
		return nil, fmt.Errorf("access token encryption key is not base64: %w", err)
	}

	if len(encryptionKey) != 16 {
		return nil, fmt.Errorf("access token encryption key should be 16 bytes, got %d", len(encryptionKey))
	}

	return &AccessToken{
		ClientId:      clientId.String(),
		ClientSecret:  pieces[2],
		EncryptionKey: encryptionKey,
	}, nil
}
