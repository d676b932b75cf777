package output

import (
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/duplicator"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/templates"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/ui"
	"github.com/samber/lo"
	"io"
)

// PrintSummary prints the totals of every duplication followed by the accumulated errors.
func PrintSummary(w io.Writer, results []duplicator.Result) {
	fmt.Fprintln(w)
	ui.PrintDivider(w)
	ui.PrintPrompt(w, "Summary")
	fmt.Fprintln(w)
	ui.PrintDivider(w)

	for _, result := range results {
		label := lo.Ternary(result.EnvironmentName == "", result.ProjectName, result.EnvironmentName+" ("+result.ProjectName+")")

		if result.Succeeded() {
			ui.PrintSuccess(w, ui.IconSuccess, fmt.Sprintf("%s: %d/%d secrets", label, result.SecretsSucceeded, result.SecretsTotal))
		} else {
			ui.PrintError(w, ui.IconError, fmt.Sprintf("%s: %d/%d secrets", label, result.SecretsSucceeded, result.SecretsTotal))
		}

		if result.ProjectId != "" {
			ui.PrintMuted(w, "  Project ID: "+result.ProjectId)
		}
	}

	errors := lo.FlatMap(results, func(result duplicator.Result, index int) []string {
		return result.ErrorMessages()
	})

	if len(errors) != 0 {
		fmt.Fprintln(w)
		ui.PrintWarning(w, ui.IconWarning, fmt.Sprintf("%d errors:", len(errors)))
		for _, message := range errors {
			ui.PrintListItem(w, ui.IconItem, message)
		}
	}

	ui.PrintDivider(w)
}

// PrintTemplates lists the environment templates in declaration order.
func PrintTemplates(w io.Writer, registry *templates.Registry) {
	ui.PrintPrompt(w, "Available environment templates:")
	fmt.Fprintln(w)

	for _, template := range registry.Templates() {
		ui.PrintListItem(w, ui.IconItem, fmt.Sprintf("%s: %s (prefix: '%s')", template.Name, template.Description, template.Prefix))
	}
}
