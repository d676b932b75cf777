package output

import (
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/duplicator"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/templates"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/ui"
	"io"
)

// ConsoleReporter prints progress as it happens. Secret values are never printed.
type ConsoleReporter struct {
	Out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{Out: out}
}

func (c *ConsoleReporter) SourceLoaded(project bitwarden.Project, secretCount int) {
	ui.PrintInfo(c.Out, ui.IconInfo, fmt.Sprintf("Found source project: %s", project.Name))
	ui.PrintMuted(c.Out, fmt.Sprintf("  %d secrets to duplicate", secretCount))
}

func (c *ConsoleReporter) ProjectCreated(project bitwarden.Project) {
	ui.PrintSuccess(c.Out, ui.IconSuccess, fmt.Sprintf("Created new project: %s (ID: %s)", project.Name, project.Id))
}

func (c *ConsoleReporter) SecretStarted(index int, total int, originalKey string, newKey string) {
	fmt.Fprintf(c.Out, "  [%d/%d] '%s' → '%s'... ", index, total, originalKey, newKey)
}

func (c *ConsoleReporter) SecretFinished(index int, total int, originalKey string, newKey string, err error) {
	if err != nil {
		ui.PrintError(c.Out, ui.IconError, err.Error())
		return
	}

	ui.PrintSuccess(c.Out, ui.IconSuccess, "")
}

func (c *ConsoleReporter) DuplicationFinished(result duplicator.Result) {
	if result.ProjectId == "" {
		return
	}

	ui.PrintMuted(c.Out, fmt.Sprintf("  Duplicated %d/%d secrets", result.SecretsSucceeded, result.SecretsTotal))
}

func (c *ConsoleReporter) EnvironmentStarted(index int, total int, template templates.EnvironmentTemplate, projectName string) {
	fmt.Fprintln(c.Out)
	ui.PrintInfo(c.Out, ui.IconInfo, fmt.Sprintf("[%d/%d] %s: %s", index, total, template.Name, template.Description))
	ui.PrintMuted(c.Out, fmt.Sprintf("  Project: %s, key prefix: '%s'", projectName, template.Prefix))
}

func (c *ConsoleReporter) EnvironmentFinished(index int, total int, result duplicator.Result) {
	if result.Succeeded() {
		ui.PrintSuccess(c.Out, ui.IconSuccess, fmt.Sprintf("Environment %s completed", result.EnvironmentName))
		return
	}

	ui.PrintError(c.Out, ui.IconError, fmt.Sprintf("Environment %s completed with %d errors", result.EnvironmentName, len(result.Errors)))
}
