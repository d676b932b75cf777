package templates

import (
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/failures"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/strutil"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
	"strings"
)

// maxFields is the number of colon separated fields in the longest entry form, name:prefix:description.
const maxFields = 3

// EnvironmentTemplate describes an environment variant of a project.
type EnvironmentTemplate struct {
	Name        string `json:"name" yaml:"name"`
	Prefix      string `json:"prefix" yaml:"prefix"`
	Description string `json:"description" yaml:"description"`
}

// Registry is a read only lookup of environment templates that remembers declaration order for display.
type Registry struct {
	names     []string
	templates map[string]EnvironmentTemplate
}

// Parse reads a comma separated list of "name", "name:prefix" or "name:prefix:description" entries.
// A missing prefix defaults to the name, and a missing description to "<Name> environment".
// If a name is declared twice the last declaration wins, but it keeps the position of the first.
func Parse(raw string) (*Registry, error) {
	registry := &Registry{templates: map[string]EnvironmentTemplate{}}

	for _, entry := range strutil.SplitAndTrim(raw, ",") {
		fields := strings.Split(entry, ":")

		if len(fields) > maxFields {
			return nil, failures.New(failures.KindConfig,
				fmt.Sprintf("environment template %q has %d fields, expected name, name:prefix or name:prefix:description", entry, len(fields)))
		}

		name := strings.TrimSpace(fields[0])

		if name == "" {
			return nil, failures.New(failures.KindConfig, fmt.Sprintf("environment template %q has an empty name", entry))
		}

		template := EnvironmentTemplate{
			Name:        name,
			Prefix:      name,
			Description: defaultDescription(name),
		}

		if len(fields) > 1 {
			template.Prefix = strings.TrimSpace(fields[1])
		}

		if len(fields) > 2 {
			template.Description = strutil.DefaultIfEmpty(strings.TrimSpace(fields[2]), template.Description)
		}

		registry.add(template)
	}

	return registry, nil
}

// Default returns the templates used when none are configured.
func Default() *Registry {
	registry := &Registry{templates: map[string]EnvironmentTemplate{}}

	for _, template := range []EnvironmentTemplate{
		{Name: "dev", Prefix: "dev", Description: "Development environment"},
		{Name: "staging", Prefix: "staging", Description: "Staging/QA environment"},
		{Name: "prod", Prefix: "prod", Description: "Production environment"},
		{Name: "test", Prefix: "test", Description: "Testing environment"},
		{Name: "qa", Prefix: "qa", Description: "Quality Assurance environment"},
		{Name: "uat", Prefix: "uat", Description: "User Acceptance Testing environment"},
	} {
		registry.add(template)
	}

	return registry
}

// Load parses the configured templates, or returns the defaults when nothing is configured.
func Load(raw string) (*Registry, error) {
	if strings.TrimSpace(raw) == "" {
		return Default(), nil
	}

	registry, err := Parse(raw)

	if err != nil {
		return nil, err
	}

	if registry.Len() == 0 {
		return Default(), nil
	}

	return registry, nil
}

func defaultDescription(name string) string {
	return strutil.TitleCase(name) + " environment"
}

func (r *Registry) add(template EnvironmentTemplate) {
	if !slices.Contains(r.names, template.Name) {
		r.names = append(r.names, template.Name)
	}

	r.templates[template.Name] = template
}

// Get looks up a template by name. Names are case sensitive.
func (r *Registry) Get(name string) (EnvironmentTemplate, bool) {
	template, ok := r.templates[name]
	return template, ok
}

// Resolve finds the template name a user typed. An exact match wins, otherwise the first template whose
// name matches ignoring case is used, so "DEV" selects "dev" and "Prod" still selects a template called "Prod".
func (r *Registry) Resolve(name string) (string, bool) {
	if _, ok := r.templates[name]; ok {
		return name, true
	}

	return lo.Find(r.names, func(item string) bool {
		return strings.EqualFold(item, name)
	})
}

// Names returns the template names in declaration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Templates returns the templates in declaration order.
func (r *Registry) Templates() []EnvironmentTemplate {
	results := make([]EnvironmentTemplate, 0, len(r.names))
	for _, name := range r.names {
		results = append(results, r.templates[name])
	}

	return results
}

func (r *Registry) Len() int {
	return len(r.names)
}
