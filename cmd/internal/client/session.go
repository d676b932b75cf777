package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/encstring"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/failures"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Session is an authenticated connection to the Secrets Manager API. It is created by
// BitwardenApiClient.Authenticate and must be passed explicitly to anything that makes API calls.
type Session struct {
	client          *BitwardenApiClient
	token           string
	organizationKey encstring.SymmetricKey
	ExpiresAt       time.Time
}

func newSession(client *BitwardenApiClient, token string, organizationKey encstring.SymmetricKey, expiresAt time.Time) *Session {
	return &Session{
		client:          client,
		token:           token,
		organizationKey: organizationKey,
		ExpiresAt:       expiresAt,
	}
}

func (s *Session) ListSecrets(ctx context.Context, organizationId string) ([]bitwarden.SecretSummary, error) {
	zap.L().Debug("Listing secrets in organization " + organizationId)

	collection := bitwarden.SecretCollection{}
	if err := s.do(ctx, http.MethodGet, "/organizations/"+url.PathEscape(organizationId)+"/secrets", nil, &collection); err != nil {
		return nil, err
	}

	summaries := make([]bitwarden.SecretSummary, 0, len(collection.Secrets))
	for _, item := range collection.Secrets {
		key, err := encstring.DecryptString(s.organizationKey, item.Key)

		if err != nil {
			return nil, fmt.Errorf("failed to decrypt the key of secret %s: %w", item.Id, err)
		}

		summaries = append(summaries, bitwarden.SecretSummary{
			Id:             item.Id,
			OrganizationId: item.OrganizationId,
			ProjectId:      firstProjectId(item.Projects),
			Key:            key,
		})
	}

	return summaries, nil
}

func (s *Session) GetSecret(ctx context.Context, secretId string) (*bitwarden.Secret, error) {
	zap.L().Debug("Getting secret " + secretId)

	response := bitwarden.SecretResponse{}
	if err := s.do(ctx, http.MethodGet, "/secrets/"+url.PathEscape(secretId), nil, &response); err != nil {
		return nil, err
	}

	return s.decryptSecret(response)
}

func (s *Session) GetProject(ctx context.Context, projectId string) (*bitwarden.Project, error) {
	zap.L().Debug("Getting project " + projectId)

	response := bitwarden.ProjectResponse{}
	if err := s.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectId), nil, &response); err != nil {
		return nil, err
	}

	return s.decryptProject(response)
}

func (s *Session) ListProjects(ctx context.Context, organizationId string) ([]bitwarden.Project, error) {
	zap.L().Debug("Listing projects in organization " + organizationId)

	collection := bitwarden.ProjectCollection{}
	if err := s.do(ctx, http.MethodGet, "/organizations/"+url.PathEscape(organizationId)+"/projects", nil, &collection); err != nil {
		return nil, err
	}

	projects := make([]bitwarden.Project, 0, len(collection.Data))
	for _, item := range collection.Data {
		project, err := s.decryptProject(item)

		if err != nil {
			return nil, err
		}

		projects = append(projects, *project)
	}

	return projects, nil
}

// CreateProject creates a project. Project names are encrypted, so the server can not detect duplicates.
// Existing projects are listed first and a name that is already used returns ErrConflict.
func (s *Session) CreateProject(ctx context.Context, organizationId string, name string) (*bitwarden.Project, error) {
	existing, err := s.ListProjects(ctx, organizationId)

	if err != nil {
		return nil, err
	}

	if project, ok := findByName(existing, name); ok {
		return nil, fmt.Errorf("%w: a project called %s already exists in organization %s (ID: %s)", ErrConflict, name, organizationId, project.GetId())
	}

	encryptedName, err := encstring.EncryptString(s.organizationKey, name)

	if err != nil {
		return nil, err
	}

	response := bitwarden.ProjectResponse{}
	if err := s.do(ctx, http.MethodPost, "/organizations/"+url.PathEscape(organizationId)+"/projects", bitwarden.ProjectCreateRequest{Name: encryptedName}, &response); err != nil {
		return nil, err
	}

	zap.L().Info("Created new project: " + name + " (ID: " + response.Id + ")")

	return &bitwarden.Project{
		Id:             response.Id,
		OrganizationId: response.OrganizationId,
		Name:           name,
	}, nil
}

func (s *Session) CreateSecret(ctx context.Context, organizationId string, projectId string, key string, value string, note string) (*bitwarden.Secret, error) {
	encrypted := make([]string, 0, 3)
	for _, plaintext := range []string{key, value, note} {
		encryptedValue, err := encstring.EncryptString(s.organizationKey, plaintext)

		if err != nil {
			return nil, err
		}

		encrypted = append(encrypted, encryptedValue)
	}

	request := bitwarden.SecretCreateRequest{
		Key:        encrypted[0],
		Value:      encrypted[1],
		Note:       encrypted[2],
		ProjectIds: []string{projectId},
	}

	response := bitwarden.SecretResponse{}
	if err := s.do(ctx, http.MethodPost, "/organizations/"+url.PathEscape(organizationId)+"/secrets", request, &response); err != nil {
		return nil, err
	}

	return &bitwarden.Secret{
		Id:             response.Id,
		OrganizationId: response.OrganizationId,
		ProjectId:      projectId,
		Key:            key,
		Value:          value,
		Note:           note,
	}, nil
}

func (s *Session) decryptSecret(response bitwarden.SecretResponse) (*bitwarden.Secret, error) {
	fields := make([]string, 0, 3)
	for _, field := range []string{response.Key, response.Value, response.Note} {
		plaintext, err := encstring.DecryptString(s.organizationKey, field)

		if err != nil {
			return nil, fmt.Errorf("failed to decrypt secret %s: %w", response.Id, err)
		}

		fields = append(fields, plaintext)
	}

	return &bitwarden.Secret{
		Id:             response.Id,
		OrganizationId: response.OrganizationId,
		ProjectId:      firstProjectId(response.Projects),
		Key:            fields[0],
		Value:          fields[1],
		Note:           fields[2],
	}, nil
}

func (s *Session) decryptProject(response bitwarden.ProjectResponse) (*bitwarden.Project, error) {
	name, err := encstring.DecryptString(s.organizationKey, response.Name)

	if err != nil {
		return nil, fmt.Errorf("failed to decrypt the name of project %s: %w", response.Id, err)
	}

	return &bitwarden.Project{
		Id:             response.Id,
		OrganizationId: response.OrganizationId,
		Name:           name,
	}, nil
}

// do sends a JSON request to the API and decodes a JSON response into result, if result is not nil.
func (s *Session) do(ctx context.Context, method string, path string, body any, result any) (funcErr error) {
	requestURL := s.client.apiUrl() + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)

		if err != nil {
			return err
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)

	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.client.userAgent())
	req.Header.Set("Device-Type", deviceTypeSdk)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.client.httpClient().Do(req)

	if err != nil {
		return err
	}

	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			funcErr = errors.Join(funcErr, err)
		}
	}(res.Body)

	responseBody, err := io.ReadAll(res.Body)

	if err != nil {
		return err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &ApiError{Method: method, Url: requestURL, StatusCode: res.StatusCode, Body: string(responseBody)}

		if isAuthStatus(res.StatusCode) {
			return failures.Wrap(failures.KindAuth, apiErr, "the session was rejected, the access token may have expired or been revoked")
		}

		return apiErr
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(responseBody, result); err != nil {
		zap.L().Error(string(responseBody))
		return err
	}

	return nil
}

func findByName[K bitwarden.NamedResource](items []K, name string) (K, bool) {
	return lo.Find(items, func(item K) bool {
		return item.GetName() == name
	})
}

func firstProjectId(projects []bitwarden.ProjectReference) string {
	if len(projects) == 0 {
		return ""
	}

	return projects[0].Id
}
