package client

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/encstring"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const testOrganizationId = "6d2a8cbe-2f4e-4a55-9d4b-5c1c5f0e9a10"

// fakeBitwarden is an in-memory Secrets Manager API and identity server.
type fakeBitwarden struct {
	t           *testing.T
	server      *httptest.Server
	accessToken string
	orgKey      encstring.SymmetricKey
	tokenKey    encstring.SymmetricKey

	mu           sync.Mutex
	logins       int
	rejectLogins bool
	rejectApi    bool
	projects     []bitwarden.ProjectResponse
	secrets      []bitwarden.SecretResponse
	posts        int
}

func newFakeBitwarden(t *testing.T) *fakeBitwarden {
	keySeed := bytes.Repeat([]byte{3}, 16)
	tokenKey, err := encstring.DeriveShareableKey(keySeed, "accesstoken", "sm-access-token")
	require.NoError(t, err)

	orgKey, err := encstring.KeyFromBytes(bytes.Repeat([]byte{9}, 64))
	require.NoError(t, err)

	fake := &fakeBitwarden{
		t:           t,
		accessToken: "0." + uuid.NewString() + ".client-secret:" + base64.StdEncoding.EncodeToString(keySeed),
		orgKey:      orgKey,
		tokenKey:    tokenKey,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /identity/connect/token", fake.token)
	mux.HandleFunc("GET /api/organizations/{org}/secrets", fake.listSecrets)
	mux.HandleFunc("POST /api/organizations/{org}/secrets", fake.createSecret)
	mux.HandleFunc("GET /api/secrets/{id}", fake.getSecret)
	mux.HandleFunc("GET /api/organizations/{org}/projects", fake.listProjects)
	mux.HandleFunc("POST /api/organizations/{org}/projects", fake.createProject)
	mux.HandleFunc("GET /api/projects/{id}", fake.getProject)

	fake.server = httptest.NewServer(mux)
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeBitwarden) client() *BitwardenApiClient {
	return &BitwardenApiClient{
		ApiUrl:      f.server.URL + "/api",
		IdentityUrl: f.server.URL + "/identity",
		HttpClient:  f.server.Client(),
	}
}

func (f *fakeBitwarden) encrypt(plaintext string) string {
	encrypted, err := encstring.EncryptString(f.orgKey, plaintext)
	require.NoError(f.t, err)
	return encrypted
}

func (f *fakeBitwarden) decrypt(encrypted string) string {
	plaintext, err := encstring.DecryptString(f.orgKey, encrypted)
	require.NoError(f.t, err)
	return plaintext
}

func (f *fakeBitwarden) addProject(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.NewString()
	f.projects = append(f.projects, bitwarden.ProjectResponse{Id: id, OrganizationId: testOrganizationId, Name: f.encrypt(name)})
	return id
}

func (f *fakeBitwarden) addSecret(projectId string, key string, value string, note string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.NewString()
	var projects []bitwarden.ProjectReference
	if projectId != "" {
		projects = []bitwarden.ProjectReference{{Id: projectId}}
	}

	f.secrets = append(f.secrets, bitwarden.SecretResponse{
		Id:             id,
		OrganizationId: testOrganizationId,
		Key:            f.encrypt(key),
		Value:          f.encrypt(value),
		Note:           f.encrypt(note),
		Projects:       projects,
	})
	return id
}

func (f *fakeBitwarden) authorized(w http.ResponseWriter, r *http.Request) bool {
	if f.rejectApi || r.Header.Get("Authorization") != "Bearer fake-bearer" {
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}

	return true
}

func (f *fakeBitwarden) writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(f.t, json.NewEncoder(w).Encode(body))
}

func (f *fakeBitwarden) token(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logins++

	require.NoError(f.t, r.ParseForm())

	if f.rejectLogins || r.PostForm.Get("client_secret") != "client-secret" || r.PostForm.Get("scope") != "api.secrets" {
		f.writeJson(w, http.StatusBadRequest, bitwarden.ErrorResponse{Error: "invalid_client"})
		return
	}

	payload, err := json.Marshal(bitwarden.TokenPayload{EncryptionKey: f.orgKey.Base64()})
	require.NoError(f.t, err)

	encryptedPayload, err := encstring.Encrypt(f.tokenKey, payload)
	require.NoError(f.t, err)

	f.writeJson(w, http.StatusOK, bitwarden.TokenResponse{
		AccessToken:      "fake-bearer",
		ExpiresIn:        3600,
		TokenType:        "Bearer",
		Scope:            "api.secrets",
		EncryptedPayload: encryptedPayload,
	})
}

func (f *fakeBitwarden) listSecrets(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	collection := bitwarden.SecretCollection{}
	for _, secret := range f.secrets {
		collection.Secrets = append(collection.Secrets, bitwarden.SecretListItem{
			Id:             secret.Id,
			OrganizationId: secret.OrganizationId,
			Key:            secret.Key,
			Projects:       secret.Projects,
		})
	}

	f.writeJson(w, http.StatusOK, collection)
}

func (f *fakeBitwarden) createSecret(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}

	request := bitwarden.SecretCreateRequest{}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&request))

	f.mu.Lock()
	defer f.mu.Unlock()

	f.posts++

	secret := bitwarden.SecretResponse{
		Id:             uuid.NewString(),
		OrganizationId: r.PathValue("org"),
		Key:            request.Key,
		Value:          request.Value,
		Note:           request.Note,
	}
	for _, projectId := range request.ProjectIds {
		secret.Projects = append(secret.Projects, bitwarden.ProjectReference{Id: projectId})
	}

	f.secrets = append(f.secrets, secret)
	f.writeJson(w, http.StatusOK, secret)
}

func (f *fakeBitwarden) getSecret(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, secret := range f.secrets {
		if secret.Id == r.PathValue("id") {
			f.writeJson(w, http.StatusOK, secret)
			return
		}
	}

	f.writeJson(w, http.StatusNotFound, bitwarden.ErrorResponse{Message: "Resource not found."})
}

func (f *fakeBitwarden) listProjects(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.writeJson(w, http.StatusOK, bitwarden.ProjectCollection{Data: f.projects})
}

func (f *fakeBitwarden) createProject(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}

	request := bitwarden.ProjectCreateRequest{}
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&request))

	f.mu.Lock()
	defer f.mu.Unlock()

	f.posts++

	project := bitwarden.ProjectResponse{Id: uuid.NewString(), OrganizationId: r.PathValue("org"), Name: request.Name}
	f.projects = append(f.projects, project)
	f.writeJson(w, http.StatusOK, project)
}

func (f *fakeBitwarden) getProject(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, project := range f.projects {
		if project.Id == r.PathValue("id") {
			f.writeJson(w, http.StatusOK, project)
			return
		}
	}

	f.writeJson(w, http.StatusNotFound, bitwarden.ErrorResponse{Message: "Resource not found."})
}
