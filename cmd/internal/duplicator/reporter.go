package duplicator

import "github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"

// Reporter receives progress as a duplication runs.
type Reporter interface {
	SourceLoaded(project bitwarden.Project, secretCount int)
	ProjectCreated(project bitwarden.Project)
	SecretStarted(index int, total int, originalKey string, newKey string)
	SecretFinished(index int, total int, originalKey string, newKey string, err error)
	DuplicationFinished(result Result)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) SourceLoaded(bitwarden.Project, int) {}
func (NopReporter) ProjectCreated(bitwarden.Project) {}
func (NopReporter) SecretStarted(int, int, string, string) {}
func (NopReporter) SecretFinished(int, int, string, string, error) {}
func (NopReporter) DuplicationFinished(Result) {}
