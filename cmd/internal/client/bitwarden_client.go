package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/encstring"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/failures"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/hash"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/state"
	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	DefaultApiUrl      = "https://api.bitwarden.com"
	DefaultIdentityUrl = "https://identity.bitwarden.com"
	DefaultUserAgent   = "Bitwarden Project Duplicator"
	// deviceTypeSdk is the device type Bitwarden assigns to SDK clients.
	deviceTypeSdk = "21"
)

// BitwardenApiClient holds the settings needed to talk to the Secrets Manager API.
// Call Authenticate to get a Session, which is then passed to everything that makes API calls.
type BitwardenApiClient struct {
	ApiUrl      string
	IdentityUrl string
	UserAgent   string
	HttpClient  *http.Client
	// LoginAttempts is the number of times the identity login is attempted. Anything below 1 means a single attempt.
	// Rejected credentials are never retried.
	LoginAttempts uint
	// now is replaced in tests
	now func() time.Time
}

func (o *BitwardenApiClient) httpClient() *http.Client {
	if o.HttpClient == nil {
		return http.DefaultClient
	}

	return o.HttpClient
}

func (o *BitwardenApiClient) clock() time.Time {
	if o.now == nil {
		return time.Now()
	}

	return o.now()
}

func (o *BitwardenApiClient) apiUrl() string {
	if o.ApiUrl == "" {
		return DefaultApiUrl
	}

	return strings.TrimRight(o.ApiUrl, "/")
}

func (o *BitwardenApiClient) identityUrl() string {
	if o.IdentityUrl == "" {
		return DefaultIdentityUrl
	}

	return strings.TrimRight(o.IdentityUrl, "/")
}

func (o *BitwardenApiClient) userAgent() string {
	if o.UserAgent == "" {
		return DefaultUserAgent
	}

	return o.UserAgent
}

// Authenticate logs in with a machine account access token. A valid session cached in the state file is reused,
// and a fresh login is written back to the state file. Pass an empty stateFilePath to disable the cache.
// Malformed, rejected or expired tokens are returned as failures.KindAuth errors.
func (o *BitwardenApiClient) Authenticate(ctx context.Context, accessToken string, stateFilePath string) (*Session, error) {
	token, err := ParseAccessToken(accessToken)

	if err != nil {
		return nil, failures.Wrap(failures.KindAuth, err, "invalid access token")
	}

	zap.L().Debug("Authenticating machine account " + token.ClientId)

	tokenKey, err := encstring.DeriveShareableKey(token.EncryptionKey, "accesstoken", "sm-access-token")

	if err != nil {
		return nil, failures.Wrap(failures.KindAuth, err, "failed to derive the access token key")
	}

	fingerprint := hash.Fingerprint(accessToken)
	store := state.Store{Path: stateFilePath}

	if stateFilePath != "" {
		if session := o.sessionFromState(store, fingerprint, tokenKey); session != nil {
			zap.L().Debug("Reusing the session cached in " + stateFilePath)
			return session, nil
		}
	}

	attempts := o.LoginAttempts
	if attempts < 1 {
		attempts = 1
	}

	response, err := retry.DoWithData(func() (*bitwarden.TokenResponse, error) {
		return o.login(ctx, token)
	},
		retry.Attempts(attempts),
		retry.Context(ctx),
		retry.Delay(1*time.Second),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, failures.ErrAuth)
		}))

	if err != nil {
		return nil, err
	}

	payload, err := encstring.Decrypt(tokenKey, response.EncryptedPayload)

	if err != nil {
		return nil, failures.Wrap(failures.KindAuth, err, "failed to decrypt the login payload, check the access token encryption key")
	}

	tokenPayload := bitwarden.TokenPayload{}
	if err := json.Unmarshal(payload, &tokenPayload); err != nil {
		return nil, failures.Wrap(failures.KindAuth, err, "failed to parse the login payload")
	}

	organizationKey, err := encstring.KeyFromBase64(tokenPayload.EncryptionKey)

	if err != nil {
		return nil, failures.Wrap(failures.KindAuth, err, "the login payload did not contain a valid organization key")
	}

	expiresAt := o.clock().Add(time.Duration(response.ExpiresIn) * time.Second)

	if stateFilePath != "" {
		err := store.Save(fingerprint, tokenKey, state.State{
			Token:         response.AccessToken,
			EncryptionKey: organizationKey.Base64(),
			ExpiresAt:     expiresAt,
		})

		// A session that can not be cached is still usable
		if err != nil {
			zap.L().Warn("Failed to save the state file: " + err.Error())
		}
	}

	zap.L().Info("Successfully authenticated with Bitwarden")

	return newSession(o, response.AccessToken, organizationKey, expiresAt), nil
}

func (o *BitwardenApiClient) sessionFromState(store state.Store, fingerprint string, tokenKey encstring.SymmetricKey) *Session {
	cached, err := store.Load(fingerprint, tokenKey)

	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			zap.L().Debug("Ignoring the state file: " + err.Error())
		}
		return nil
	}

	if !cached.Valid(o.clock()) {
		zap.L().Debug("The cached session has expired")
		return nil
	}

	organizationKey, err := encstring.KeyFromBase64(cached.EncryptionKey)

	if err != nil {
		zap.L().Debug("Ignoring the state file: " + err.Error())
		return nil
	}

	return newSession(o, cached.Token, organizationKey, cached.ExpiresAt)
}

func (o *BitwardenApiClient) login(ctx context.Context, token *AccessToken) (response *bitwarden.TokenResponse, funcErr error) {
	requestURL := o.identityUrl() + "/connect/token"

	form := url.Values{}
	form.Set("scope", "api.secrets")
	form.Set("client_id", token.ClientId)
	form.Set("client_secret", token.ClientSecret)
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, strings.NewReader(form.Encode()))

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", o.userAgent())
	req.Header.Set("Device-Type", deviceTypeSdk)

	res, err := o.httpClient().Do(req)

	if err != nil {
		return nil, err
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			funcErr = errors.Join(funcErr, err)
		}
	}(res.Body)

	body, err := io.ReadAll(res.Body)

	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		apiErr := &ApiError{Method: http.MethodPost, Url: requestURL, StatusCode: res.StatusCode, Body: string(body)}

		// The identity server answers 400 invalid_client for unknown or revoked machine accounts
		if res.StatusCode == http.StatusBadRequest || isAuthStatus(res.StatusCode) {
			return nil, failures.Wrap(failures.KindAuth, apiErr, "the access token was rejected: "+apiErr.Message())
		}

		return nil, apiErr
	}

	response = &bitwarden.TokenResponse{}
	if err := json.Unmarshal(body, response); err != nil {
		return nil, fmt.Errorf("failed to parse the login response: %w", err)
	}

	if response.AccessToken == "" || response.EncryptedPayload == "" {
		return nil, failures.New(failures.KindAuth, "the login response did not include a token and payload")
	}

	return response, nil
}

func unmarshalString(body string, target any) error {
	return json.Unmarshal([]byte(body), target)
}
