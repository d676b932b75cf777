package mocks

import (
	"context"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"
	"github.com/stretchr/testify/mock"
)

// SecretsManager is a mock for client.SecretsManager.
type SecretsManager struct {
	mock.Mock
}

func (m *SecretsManager) ListSecrets(ctx context.Context, organizationId string) ([]bitwarden.SecretSummary, error) {
	args := m.Called(ctx, organizationId)
	if secrets, ok := args.Get(0).([]bitwarden.SecretSummary); ok {
		return secrets, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SecretsManager) GetSecret(ctx context.Context, secretId string) (*bitwarden.Secret, error) {
	args := m.Called(ctx, secretId)
	if secret, ok := args.Get(0).(*bitwarden.Secret); ok {
		return secret, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SecretsManager) GetProject(ctx context.Context, projectId string) (*bitwarden.Project, error) {
	args := m.Called(ctx, projectId)
	if project, ok := args.Get(0).(*bitwarden.Project); ok {
		return project, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SecretsManager) ListProjects(ctx context.Context, organizationId string) ([]bitwarden.Project, error) {
	args := m.Called(ctx, organizationId)
	if projects, ok := args.Get(0).([]bitwarden.Project); ok {
		return projects, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SecretsManager) CreateProject(ctx context.Context, organizationId string, name string) (*bitwarden.Project, error) {
	args := m.Called(ctx, organizationId, name)
	if project, ok := args.Get(0).(*bitwarden.Project); ok {
		return project, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SecretsManager) CreateSecret(ctx context.Context, organizationId string, projectId string, key string, value string, note string) (*bitwarden.Secret, error) {
	args := m.Called(ctx, organizationId, projectId, key, value, note)
	if secret, ok := args.Get(0).(*bitwarden.Secret); ok {
		return secret, args.Error(1)
	}
	return nil, args.Error(1)
}
