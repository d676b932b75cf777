package client

import (
	"context"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"
)

// SecretsManager is the set of Secrets Manager operations available once authenticated.
// *Session implements it. Nothing is retried: any network or API error is returned to the caller.
type SecretsManager interface {
	ListSecrets(ctx context.Context, organizationId string) ([]bitwarden.SecretSummary, error)
	GetSecret(ctx context.Context, secretId string) (*bitwarden.Secret, error)
	GetProject(ctx context.Context, projectId string) (*bitwarden.Project, error)
	ListProjects(ctx context.Context, organizationId string) ([]bitwarden.Project, error)
	CreateProject(ctx context.Context, organizationId string, name string) (*bitwarden.Project, error)
	CreateSecret(ctx context.Context, organizationId string, projectId string, key string, value string, note string) (*bitwarden.Secret, error)
}
