// Package encstring implements the AES-256-CBC + HMAC-SHA256 "EncString" format used by Bitwarden
// to encrypt names, keys, values, notes and token payloads.
package encstring

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"golang.org/x/crypto/hkdf"
	"io"
	"strings"
)

// AesCbc256HmacSha256 is the only EncString type this tool reads or writes.
const AesCbc256HmacSha256 = 2

const keySize = 32

var (
	ErrInvalidEncString = errors.New("invalid EncString")
	ErrMacMismatch      = errors.New("EncString MAC mismatch")
	ErrInvalidKey       = errors.New("invalid symmetric key")
)

// SymmetricKey is an encryption key paired with the key used to authenticate the ciphertext.
type SymmetricKey struct {
	EncKey []byte
	MacKey []byte
}

// KeyFromBytes splits a 64 byte key into its encryption and MAC halves.
func KeyFromBytes(key []byte) (SymmetricKey, error) {
	if len(key) != keySize*2 {
		return SymmetricKey{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKey, keySize*2, len(key))
	}

	return SymmetricKey{
		EncKey: bytes.Clone(key[:keySize]),
		MacKey: bytes.Clone(key[keySize:]),
	}, nil
}

// KeyFromBase64 decodes a base64 encoded 64 byte key.
func KeyFromBase64(encoded string) (SymmetricKey, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)

	if err != nil {
		return SymmetricKey{}, fmt.Errorf("%w: %s", ErrInvalidKey, err.Error())
	}

	return KeyFromBytes(raw)
}

// Bytes returns the 64 byte form of the key.
func (k SymmetricKey) Bytes() []byte {
	return append(bytes.Clone(k.EncKey), k.MacKey...)
}

// Base64 returns the base64 encoded 64 byte form of the key.
func (k SymmetricKey) Base64() string {
	return base64.StdEncoding.EncodeToString(k.Bytes())
}

// DeriveShareableKey stretches a short secret into a SymmetricKey.
// The PRK is HMAC-SHA256 keyed with "bitwarden-<name>" over the secret, expanded with HKDF using info.
func DeriveShareableKey(secret []byte, name string, info string) (SymmetricKey, error) {
	mac := hmac.New(sha256.New, []byte("bitwarden-"+name))
	mac.Write(secret)
	prk := mac.Sum(nil)

	key := make([]byte, keySize*2)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte(info)), key); err != nil {
		return SymmetricKey{}, err
	}

	return KeyFromBytes(key)
}

// Encrypt returns the EncString form of the plaintext.
func Encrypt(key SymmetricKey, plaintext []byte) (string, error) {
	if len(key.EncKey) != keySize || len(key.MacKey) != keySize {
		return "", ErrInvalidKey
	}

	block, err := aes.NewCipher(key.EncKey)

	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return fmt.Sprintf("%d.%s|%s|%s",
		AesCbc256HmacSha256,
		base64.StdEncoding.EncodeToString(iv),
		base64.StdEncoding.EncodeToString(ciphertext),
		base64.StdEncoding.EncodeToString(computeMac(key.MacKey, iv, ciphertext))), nil
}

// EncryptString is Encrypt for string input.
func EncryptString(key SymmetricKey, plaintext string) (string, error) {
	return Encrypt(key, []byte(plaintext))
}

// Decrypt verifies and decrypts an EncString.
func Decrypt(key SymmetricKey, encString string) ([]byte, error) {
	if len(key.EncKey) != keySize || len(key.MacKey) != keySize {
		return nil, ErrInvalidKey
	}

	iv, ciphertext, mac, err := parse(encString)

	if err != nil {
		return nil, err
	}

	if !hmac.Equal(mac, computeMac(key.MacKey, iv, ciphertext)) {
		return nil, ErrMacMismatch
	}

	block, err := aes.NewCipher(key.EncKey)

	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext, aes.BlockSize)
}

// DecryptString decrypts an EncString to a string. An empty input is an empty, unset field and decrypts to "".
func DecryptString(key SymmetricKey, encString string) (string, error) {
	if encString == "" {
		return "", nil
	}

	plaintext, err := Decrypt(key, encString)

	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

func parse(encString string) (iv []byte, ciphertext []byte, mac []byte, funcErr error) {
	typeAndData := strings.SplitN(encString, ".", 2)

	if len(typeAndData) != 2 {
		return nil, nil, nil, fmt.Errorf("%w: missing type", ErrInvalidEncString)
	}

	if typeAndData[0] != fmt.Sprint(AesCbc256HmacSha256) {
		return nil, nil, nil, fmt.Errorf("%w: unsupported type %s", ErrInvalidEncString, typeAndData[0])
	}

	pieces := strings.Split(typeAndData[1], "|")

	if len(pieces) != 3 {
		return nil, nil, nil, fmt.Errorf("%w: expected 3 pieces, got %d", ErrInvalidEncString, len(pieces))
	}

	decoded := make([][]byte, len(pieces))
	for i, piece := range pieces {
		value, err := base64.StdEncoding.DecodeString(piece)

		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrInvalidEncString, err.Error())
		}

		decoded[i] = value
	}

	iv, ciphertext, mac = decoded[0], decoded[1], decoded[2]

	if len(iv) != aes.BlockSize || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, nil, nil, fmt.Errorf("%w: bad iv or ciphertext length", ErrInvalidEncString)
	}

	return iv, ciphertext, mac, nil
}

func computeMac(macKey []byte, iv []byte, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, macKey)
	mac.Write(iv)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad padding", ErrInvalidEncString)
	}

	padding := int(data[len(data)-1])

	if padding == 0 || padding > blockSize {
		return nil, fmt.Errorf("%w: bad padding", ErrInvalidEncString)
	}

	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("%w: bad padding", ErrInvalidEncString)
		}
	}

	return data[:len(data)-padding], nil
}
