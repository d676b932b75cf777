package environments

import (
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/duplicator"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/templates"
)

// Reporter receives progress for a batch of environments, as well as the progress of each duplication.
type Reporter interface {
	duplicator.Reporter
	EnvironmentStarted(index int, total int, template templates.EnvironmentTemplate, projectName string)
	EnvironmentFinished(index int, total int, result duplicator.Result)
}

type NopReporter struct {
	duplicator.NopReporter
}

func (NopReporter) EnvironmentStarted(int, int, templates.EnvironmentTemplate, string) {}

func (NopReporter) EnvironmentFinished(int, int, duplicator.Result) {}
