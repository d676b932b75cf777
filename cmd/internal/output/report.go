package output

import (
	"encoding/json"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/duplicator"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/writers"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
	"io"
	"path/filepath"
	"strings"
	"time"
)

const (
	FormatYaml = "yaml"
	FormatJson = "json"
)

// Report is the document written by WriteReport. It never contains secret values.
type Report struct {
	GeneratedAt  time.Time           `json:"generatedAt" yaml:"generatedAt"`
	Succeeded    bool                `json:"succeeded" yaml:"succeeded"`
	Duplications []ReportDuplication `json:"duplications" yaml:"duplications"`
}

type ReportDuplication struct {
	Environment      string   `json:"environment,omitempty" yaml:"environment,omitempty"`
	ProjectName      string   `json:"projectName" yaml:"projectName"`
	ProjectId        string   `json:"projectId,omitempty" yaml:"projectId,omitempty"`
	SecretsTotal     int      `json:"secretsTotal" yaml:"secretsTotal"`
	SecretsSucceeded int      `json:"secretsSucceeded" yaml:"secretsSucceeded"`
	Errors           []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func NewReport(results []duplicator.Result, generatedAt time.Time) Report {
	return Report{
		GeneratedAt: generatedAt.UTC(),
		Succeeded: lo.EveryBy(results, func(result duplicator.Result) bool {
			return result.Succeeded()
		}),
		Duplications: lo.Map(results, func(result duplicator.Result, index int) ReportDuplication {
			return ReportDuplication{
				Environment:      result.EnvironmentName,
				ProjectName:      result.ProjectName,
				ProjectId:        result.ProjectId,
				SecretsTotal:     result.SecretsTotal,
				SecretsSucceeded: result.SecretsSucceeded,
				Errors:           result.ErrorMessages(),
			}
		}),
	}
}

// Encode serializes the report as yaml or json.
func (r Report) Encode(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatYaml:
		content, err := yaml.Marshal(r)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case FormatJson:
		content, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", err
		}
		return string(content), nil
	default:
		return "", fmt.Errorf("unknown report format %q, expected %s or %s", format, FormatYaml, FormatJson)
	}
}

// StdoutReport is the report destination that prints the report instead of writing a file.
const StdoutReport = "-"

// WriteReport writes the results to the file at dest and returns the directory it was written to.
// A dest of StdoutReport prints the report to out.
func WriteReport(results []duplicator.Result, dest string, format string, out io.Writer) (string, error) {
	content, err := NewReport(results, time.Now()).Encode(format)

	if err != nil {
		return "", err
	}

	if dest == StdoutReport {
		return writeFiles(writers.ConsoleWriter{Out: out}, map[string]string{"report": content})
	}

	dir, file := filepath.Split(dest)

	if dir == "" {
		dir = "."
	}

	if file == "" {
		file = "bwdup-report." + lo.Ternary(strings.ToLower(format) == FormatJson, FormatJson, FormatYaml)
	}

	return writeFiles(writers.NewFileWriter(dir), map[string]string{file: content})
}

func writeFiles(writer writers.Writer, files map[string]string) (string, error) {
	return writer.Write(files)
}
