package duplicator

import (
	"context"
	"errors"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/client"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/failures"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"strings"
)

// Options changes how edge cases are treated.
type Options struct {
	// FailOnEmptySource returns an EmptySourceError, without creating the project, when the source has no secrets.
	// Otherwise an empty project is created and the result reports zero secrets.
	FailOnEmptySource bool
}

// Request is a single project duplication.
type Request struct {
	SourceProjectId string
	NewProjectName  string
	// KeyPrefix is prepended to every duplicated secret key. Empty keeps the original keys.
	KeyPrefix string
	// EnvironmentName is only used to label the result and errors.
	EnvironmentName string
}

// Validate checks the request before any API call is made.
func (r Request) Validate() error {
	if _, err := uuid.Parse(strings.TrimSpace(r.SourceProjectId)); err != nil {
		return failures.Wrap(failures.KindConfig, err, "the source project id must be a UUID")
	}

	if strings.TrimSpace(r.NewProjectName) == "" {
		return failures.New(failures.KindConfig, "the new project name can not be empty")
	}

	return nil
}

// Target is where a loaded Source is duplicated to.
type Target struct {
	ProjectName     string
	KeyPrefix       string
	EnvironmentName string
}

// Source is a source project and the summaries of its secrets, in the order the API listed them.
// Full secret bodies are fetched on first use and reused when the same Source is duplicated more than once.
type Source struct {
	Project bitwarden.Project
	Secrets []bitwarden.SecretSummary
	bodies  map[string]*bitwarden.Secret
}

func (s *Source) secret(ctx context.Context, secretsManager client.SecretsManager, secretId string) (*bitwarden.Secret, error) {
	if body, ok := s.bodies[secretId]; ok {
		return body, nil
	}

	body, err := secretsManager.GetSecret(ctx, secretId)

	if err != nil {
		return nil, err
	}

	if s.bodies == nil {
		s.bodies = map[string]*bitwarden.Secret{}
	}

	s.bodies[secretId] = body
	return body, nil
}

// NewKey is the key a secret gets when it is duplicated with the prefix.
func NewKey(prefix string, key string) string {
	return prefix + key
}

// Duplicator copies a project and its secrets into a new project in the same organization.
type Duplicator struct {
	secretsManager client.SecretsManager
	organizationId string
	reporter       Reporter
	options        Options
}

func New(secretsManager client.SecretsManager, organizationId string, reporter Reporter, options Options) *Duplicator {
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &Duplicator{
		secretsManager: secretsManager,
		organizationId: organizationId,
		reporter:       reporter,
		options:        options,
	}
}

// Duplicate loads the source project and duplicates it into a new project.
// Per secret failures are recorded in the result and do not stop the remaining secrets. Nothing is rolled back.
func (d *Duplicator) Duplicate(ctx context.Context, request Request) (Result, error) {
	result := Result{EnvironmentName: request.EnvironmentName, ProjectName: request.NewProjectName}

	if err := request.Validate(); err != nil {
		return result, err
	}

	zap.L().Info("Starting duplication of project " + request.SourceProjectId)

	source, err := d.LoadSource(ctx, request.SourceProjectId)

	if err != nil {
		return result, err
	}

	return d.DuplicateSource(ctx, source, Target{
		ProjectName:     request.NewProjectName,
		KeyPrefix:       request.KeyPrefix,
		EnvironmentName: request.EnvironmentName,
	})
}

// LoadSource looks up the source project and lists the secrets assigned to it.
// The API has no per project listing, so every secret in the organization is listed and filtered.
func (d *Duplicator) LoadSource(ctx context.Context, sourceProjectId string) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	project, err := d.secretsManager.GetProject(ctx, sourceProjectId)

	if err != nil {
		if errors.Is(err, failures.ErrAuth) {
			return nil, err
		}

		sourceErr := failures.Wrap(failures.KindSourceProject, err, "source project not found or inaccessible")
		sourceErr.Project = sourceProjectId
		return nil, sourceErr
	}

	zap.L().Info("Found source project: " + project.Name)

	allSecrets, err := d.secretsManager.ListSecrets(ctx, d.organizationId)

	if err != nil {
		if errors.Is(err, failures.ErrAuth) {
			return nil, err
		}

		sourceErr := failures.Wrap(failures.KindSourceProject, err, "failed to list secrets")
		sourceErr.Project = project.Name
		return nil, sourceErr
	}

	projectSecrets := lo.Filter(allSecrets, func(secret bitwarden.SecretSummary, index int) bool {
		return secret.ProjectId == sourceProjectId
	})

	zap.L().Info(fmt.Sprintf("Found %d secrets in source project", len(projectSecrets)))

	d.reporter.SourceLoaded(*project, len(projectSecrets))

	return &Source{
		Project: *project,
		Secrets: projectSecrets,
	}, nil
}

// DuplicateSource creates the target project and re-creates every source secret in it.
// The returned error is set when the duplication could not start (empty source, project creation failure)
// or was aborted by an authentication failure or a cancelled context. Failed secrets only appear in Result.Errors.
func (d *Duplicator) DuplicateSource(ctx context.Context, source *Source, target Target) (Result, error) {
	result := Result{
		EnvironmentName: target.EnvironmentName,
		ProjectName:     target.ProjectName,
		SecretsTotal:    len(source.Secrets),
	}

	if len(source.Secrets) == 0 && d.options.FailOnEmptySource {
		err := &failures.Error{
			Kind:        failures.KindEmptySource,
			Environment: target.EnvironmentName,
			Project:     source.Project.Name,
			Message:     "no secrets found in source project",
		}
		result.Errors = append(result.Errors, err)
		d.reporter.DuplicationFinished(result)
		return result, err
	}

	if err := ctx.Err(); err != nil {
		return d.cancelled(result, err)
	}

	project, err := d.secretsManager.CreateProject(ctx, d.organizationId, target.ProjectName)

	if err != nil {
		if errors.Is(err, failures.ErrAuth) {
			return result, err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return d.cancelled(result, ctxErr)
		}

		createErr := &failures.Error{
			Kind:        failures.KindProjectCreation,
			Environment: target.EnvironmentName,
			Project:     target.ProjectName,
			Message:     "failed to create project",
			Err:         err,
		}

		if errors.Is(err, client.ErrConflict) {
			createErr.Message = "a project with this name already exists"
		}

		zap.L().Error(createErr.Error())
		result.Errors = append(result.Errors, createErr)
		d.reporter.DuplicationFinished(result)
		return result, createErr
	}

	result.ProjectId = project.Id
	d.reporter.ProjectCreated(*project)

	total := len(source.Secrets)
	for i, summary := range source.Secrets {
		if err := ctx.Err(); err != nil {
			return d.cancelled(result, err)
		}

		index := i + 1
		displayKey := NewKey(target.KeyPrefix, summary.Key)

		d.reporter.SecretStarted(index, total, summary.Key, displayKey)

		err := d.duplicateSecret(ctx, source, summary, project.Id, target.KeyPrefix)

		if err != nil && errors.Is(err, failures.ErrAuth) {
			d.reporter.SecretFinished(index, total, summary.Key, displayKey, err)
			return result, err
		}

		if err != nil && ctx.Err() != nil {
			d.reporter.SecretFinished(index, total, summary.Key, displayKey, err)
			return d.cancelled(result, ctx.Err())
		}

		if err != nil {
			secretErr := &failures.Error{
				Kind:        failures.KindSecretDuplication,
				Environment: target.EnvironmentName,
				Project:     target.ProjectName,
				SecretKey:   summary.Key,
				Message:     "failed to duplicate secret",
				Err:         err,
			}
			zap.L().Error(secretErr.Error())
			result.Errors = append(result.Errors, secretErr)
			d.reporter.SecretFinished(index, total, summary.Key, displayKey, secretErr)
			continue
		}

		result.SecretsSucceeded++
		d.reporter.SecretFinished(index, total, summary.Key, displayKey, nil)
	}

	zap.L().Info(fmt.Sprintf("Successfully duplicated %d/%d secrets", result.SecretsSucceeded, result.SecretsTotal))
	zap.L().Info("Project duplication completed. New project ID: " + project.Id)

	d.reporter.DuplicationFinished(result)

	return result, nil
}

// cancelled ends a duplication whose context is done. The secrets already created are kept.
func (d *Duplicator) cancelled(result Result, err error) (Result, error) {
	zap.L().Error(fmt.Sprintf("Duplication of %s cancelled after %d/%d secrets", result.ProjectName, result.SecretsSucceeded, result.SecretsTotal))
	result.Errors = append(result.Errors, err)
	d.reporter.DuplicationFinished(result)
	return result, err
}

func (d *Duplicator) duplicateSecret(ctx context.Context, source *Source, summary bitwarden.SecretSummary, projectId string, keyPrefix string) error {
	body, err := source.secret(ctx, d.secretsManager, summary.Id)

	if err != nil {
		return fmt.Errorf("failed to read secret: %w", err)
	}

	_, err = d.secretsManager.CreateSecret(ctx, d.organizationId, projectId, NewKey(keyPrefix, body.Key), body.Value, body.Note)

	if err != nil {
		return fmt.Errorf("failed to create secret: %w", err)
	}

	return nil
}
