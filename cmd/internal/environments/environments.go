package environments

import (
	"context"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/client"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/duplicator"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/failures"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/templates"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"strings"
)

type Options struct {
	// PrefixSeparator is appended to the template prefix to build the key prefix, e.g. "_" turns "dev" into "dev_".
	PrefixSeparator string
	// StopOnUnknown aborts the batch on an unknown environment instead of recording it and moving on.
	StopOnUnknown     bool
	FailOnEmptySource bool
}

// Request is a batch of environment variants of one source project.
type Request struct {
	SourceProjectId string
	BaseProjectName string
	// Environments are template names, processed in order. A name listed twice is processed twice.
	// Names are resolved with templates.Registry.Resolve, so "DEV" selects the "dev" template.
	Environments []string
}

func (r Request) Validate() error {
	if _, err := uuid.Parse(strings.TrimSpace(r.SourceProjectId)); err != nil {
		return failures.Wrap(failures.KindConfig, err, "the source project id must be a UUID")
	}

	if strings.TrimSpace(r.BaseProjectName) == "" {
		return failures.New(failures.KindConfig, "the base project name can not be empty")
	}

	if len(r.Environments) == 0 {
		return failures.New(failures.KindConfig, "at least one environment must be selected")
	}

	return nil
}

// ProjectName is the name of the project created for an environment.
func ProjectName(baseProjectName string, environment string) string {
	return baseProjectName + "-" + environment
}

type Orchestrator struct {
	secretsManager client.SecretsManager
	organizationId string
	registry       *templates.Registry
	reporter       Reporter
	options        Options
}

func New(secretsManager client.SecretsManager, organizationId string, registry *templates.Registry, reporter Reporter, options Options) *Orchestrator {
	if reporter == nil {
		reporter = NopReporter{}
	}

	return &Orchestrator{
		secretsManager: secretsManager,
		organizationId: organizationId,
		registry:       registry,
		reporter:       reporter,
		options:        options,
	}
}

// CreateEnvironments duplicates the source project once per environment.
// Failures that only affect one environment are recorded in that environment's result and the batch continues.
// Fatal failures stop the batch, and the results gathered so far are returned with the error.
func (o *Orchestrator) CreateEnvironments(ctx context.Context, request Request) ([]duplicator.Result, error) {
	results := []duplicator.Result{}

	if err := request.Validate(); err != nil {
		return results, err
	}

	zap.L().Info(fmt.Sprintf("Creating %d environments from project %s", len(request.Environments), request.SourceProjectId))

	dup := duplicator.New(o.secretsManager, o.organizationId, o.reporter, duplicator.Options{FailOnEmptySource: o.options.FailOnEmptySource})

	source, err := dup.LoadSource(ctx, request.SourceProjectId)

	if err != nil {
		return results, err
	}

	total := len(request.Environments)
	for i, requested := range request.Environments {
		if err := ctx.Err(); err != nil {
			zap.L().Error("Stopping the batch: " + err.Error())
			return results, err
		}

		index := i + 1
		environment, ok := o.registry.Resolve(requested)
		if !ok {
			environment = requested
		}
		projectName := ProjectName(request.BaseProjectName, environment)

		template, ok := o.registry.Get(environment)

		if !ok {
			unknownErr := &failures.Error{
				Kind:        failures.KindUnknownTemplate,
				Environment: environment,
				Message:     "unknown environment template, available templates are " + strings.Join(o.registry.Names(), ", "),
			}
			zap.L().Error(unknownErr.Error())

			result := duplicator.Result{
				EnvironmentName: environment,
				ProjectName:     projectName,
				Errors:          []error{unknownErr},
			}
			results = append(results, result)
			o.reporter.EnvironmentFinished(index, total, result)

			if o.options.StopOnUnknown {
				return results, unknownErr
			}

			continue
		}

		o.reporter.EnvironmentStarted(index, total, template, projectName)

		result, err := dup.DuplicateSource(ctx, source, duplicator.Target{
			ProjectName:     projectName,
			KeyPrefix:       template.Prefix + o.options.PrefixSeparator,
			EnvironmentName: environment,
		})

		if err != nil && !lo.Contains(result.Errors, err) {
			result.Errors = append(result.Errors, failures.WithEnvironment(err, environment))
		}

		results = append(results, result)
		o.reporter.EnvironmentFinished(index, total, result)

		if err != nil && failures.IsFatal(err) {
			zap.L().Error("Stopping the batch: " + err.Error())
			return results, err
		}
	}

	succeeded := lo.CountBy(results, func(result duplicator.Result) bool {
		return result.Succeeded()
	})

	zap.L().Info(fmt.Sprintf("Created %d/%d environments", succeeded, total))

	return results, nil
}
