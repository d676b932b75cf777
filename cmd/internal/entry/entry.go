package entry

import (
	"context"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/args"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/client"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/duplicator"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/environments"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/failures"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/output"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/shell"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/templates"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/ui"
	"go.uber.org/zap"
	"io"
	"net/http"
	"os"
	"strings"
)

// Entry loads the templates, authenticates, and runs either the requested command or the interactive menu.
// It returns the result of every duplication that was attempted.
func Entry(ctx context.Context, arguments args.Arguments) ([]duplicator.Result, error) {
	registry, err := templates.Load(arguments.EnvironmentTemplates)

	if err != nil {
		return nil, err
	}

	if arguments.Command == args.CommandTemplates {
		output.PrintTemplates(os.Stdout, registry)
		return nil, nil
	}

	accessToken := arguments.AccessToken

	if accessToken == "" {
		accessToken, err = shell.PromptAccessToken(int(os.Stdin.Fd()), os.Stdout)

		if err != nil {
			return nil, failures.Wrap(failures.KindConfig, err, "an access token is required")
		}
	}

	apiClient := client.BitwardenApiClient{
		ApiUrl:        arguments.ApiUrl,
		IdentityUrl:   arguments.IdentityUrl,
		HttpClient:    &http.Client{Timeout: arguments.Timeout},
		LoginAttempts: arguments.LoginAttempts,
	}

	session, err := apiClient.Authenticate(ctx, accessToken, arguments.StateFile)

	if err != nil {
		return nil, err
	}

	ui.PrintSuccess(os.Stdout, ui.IconSuccess, "Successfully authenticated with Bitwarden")

	return Run(ctx, arguments, registry, session, os.Stdin, os.Stdout)
}

// Run executes the command against an authenticated secrets manager, then prints the summary and writes the report.
func Run(ctx context.Context, arguments args.Arguments, registry *templates.Registry, secretsManager client.SecretsManager, in io.Reader, out io.Writer) ([]duplicator.Result, error) {
	reporter := output.NewConsoleReporter(out)

	dup := duplicator.New(secretsManager, arguments.OrganizationId, reporter, duplicator.Options{
		FailOnEmptySource: arguments.FailOnEmptySource,
	})

	orchestrator := environments.New(secretsManager, arguments.OrganizationId, registry, reporter, environments.Options{
		PrefixSeparator:   arguments.PrefixSeparator,
		StopOnUnknown:     arguments.StopOnUnknown,
		FailOnEmptySource: arguments.FailOnEmptySource,
	})

	menu := shell.New(in, out, registry, dup, orchestrator)

	results, err := runCommand(ctx, arguments, menu, dup, orchestrator, out)

	if len(results) != 0 {
		output.PrintSummary(out, results)

		if arguments.Report != "" {
			dest, reportErr := output.WriteReport(results, arguments.Report, arguments.ReportFormat, out)

			if reportErr != nil {
				zap.L().Error("Failed to write the report: " + reportErr.Error())
			} else if dest != "" {
				zap.L().Info("Wrote the report to " + dest)
			}
		}
	}

	return results, err
}

func runCommand(ctx context.Context, arguments args.Arguments, menu *shell.Shell, dup *duplicator.Duplicator, orchestrator *environments.Orchestrator, out io.Writer) ([]duplicator.Result, error) {
	switch arguments.Command {
	case args.CommandDuplicate:
		request := duplicator.Request{
			SourceProjectId: arguments.SourceProjectId,
			NewProjectName:  arguments.ProjectName,
			KeyPrefix:       arguments.Prefix,
		}

		if err := request.Validate(); err != nil {
			return nil, err
		}

		if !arguments.Yes {
			fmt.Fprintf(out, "Duplicate project %s to %s", arguments.SourceProjectId, arguments.ProjectName)
			if err := menu.Confirm(ctx, "? (y/N): "); err != nil {
				return nil, err
			}
		}

		result, err := dup.Duplicate(ctx, request)

		return []duplicator.Result{result}, err
	case args.CommandEnvironments:
		if !arguments.Yes {
			fmt.Fprintf(out, "Create the %s environments of project %s as %s-<environment>",
				strings.Join(arguments.Environment, ", "), arguments.SourceProjectId, arguments.ProjectName)
			if err := menu.Confirm(ctx, "? (y/N): "); err != nil {
				return nil, err
			}
		}

		return orchestrator.CreateEnvironments(ctx, environments.Request{
			SourceProjectId: arguments.SourceProjectId,
			BaseProjectName: arguments.ProjectName,
			Environments:    arguments.Environment,
		})
	default:
		return menu.Run(ctx)
	}
}
