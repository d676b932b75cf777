package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/duplicator"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/environments"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/output"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/strutil"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/templates"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/ui"
	"github.com/samber/lo"
	"io"
	"k8s.io/utils/strings/slices"
	"strings"
	"sync"
)

// ErrCancelled is returned when the user declines the confirmation or picks exit from the menu.
var ErrCancelled = errors.New("operation cancelled")

type line struct {
	text string
	err  error
}

// Shell is the interactive menu. It only gathers input and hands requests to the duplicator and the orchestrator.
// Input is read on a separate goroutine so a prompt returns as soon as the context is cancelled.
type Shell struct {
	in           *bufio.Scanner
	lines        chan line
	reading      sync.Once
	out          io.Writer
	registry     *templates.Registry
	duplicator   *duplicator.Duplicator
	orchestrator *environments.Orchestrator
}

func New(in io.Reader, out io.Writer, registry *templates.Registry, dup *duplicator.Duplicator, orchestrator *environments.Orchestrator) *Shell {
	return &Shell{
		in:           bufio.NewScanner(in),
		lines:        make(chan line),
		out:          out,
		registry:     registry,
		duplicator:   dup,
		orchestrator: orchestrator,
	}
}

// Run shows the menu until the user picks an operation, runs it and returns its results.
// Listing the templates returns to the menu.
func (s *Shell) Run(ctx context.Context) ([]duplicator.Result, error) {
	ui.PrintTitle(s.out, "Bitwarden Project Duplicator")

	for {
		fmt.Fprintln(s.out)
		ui.PrintPrompt(s.out, "Options:")
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "1. Duplicate single project")
		fmt.Fprintln(s.out, "2. Create environment projects (dev, staging, prod, etc.)")
		fmt.Fprintln(s.out, "3. Show available environment templates")
		fmt.Fprintln(s.out, "4. Exit")

		choice, err := s.ask(ctx, "\nSelect an option (1-4): ")

		if err != nil {
			return nil, err
		}

		switch choice {
		case "1":
			return s.duplicateProject(ctx)
		case "2":
			return s.createEnvironments(ctx)
		case "3":
			fmt.Fprintln(s.out)
			output.PrintTemplates(s.out, s.registry)
			if _, err := s.ask(ctx, "\nPress Enter to return to the main menu..."); err != nil {
				return nil, err
			}
		case "4":
			ui.PrintMuted(s.out, "Goodbye!")
			return nil, ErrCancelled
		default:
			ui.PrintWarning(s.out, ui.IconWarning, "Invalid choice. Please select 1-4.")
		}
	}
}

func (s *Shell) duplicateProject(ctx context.Context) ([]duplicator.Result, error) {
	sourceProjectId, err := s.askRequired(ctx, "Enter the source project UUID: ", "Project UUID can not be empty. Please try again.")

	if err != nil {
		return nil, err
	}

	projectName, err := s.askRequired(ctx, "Enter the new project name: ", "Project name can not be empty. Please try again.")

	if err != nil {
		return nil, err
	}

	prefix, err := s.ask(ctx, "Enter a prefix for secret names (optional, press Enter to skip): ")

	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out)
	ui.PrintInfo(s.out, ui.IconInfo, "Ready to duplicate:")
	ui.PrintListItem(s.out, ui.IconItem, "Source Project ID: "+sourceProjectId)
	ui.PrintListItem(s.out, ui.IconItem, "New Project Name: "+projectName)
	if prefix != "" {
		ui.PrintListItem(s.out, ui.IconItem, fmt.Sprintf("Secret Prefix: '%s' (e.g. %s)", prefix, duplicator.NewKey(prefix, "DB_PASSWORD")))
	}

	if err := s.confirm(ctx, "\nProceed with duplication? (y/N): "); err != nil {
		return nil, err
	}

	request := duplicator.Request{
		SourceProjectId: sourceProjectId,
		NewProjectName:  projectName,
		KeyPrefix:       prefix,
	}

	if err := request.Validate(); err != nil {
		return nil, err
	}

	result, err := s.duplicator.Duplicate(ctx, request)

	return []duplicator.Result{result}, err
}

func (s *Shell) createEnvironments(ctx context.Context) ([]duplicator.Result, error) {
	sourceProjectId, err := s.askRequired(ctx, "Enter the source project UUID: ", "Project UUID can not be empty. Please try again.")

	if err != nil {
		return nil, err
	}

	baseProjectName, err := s.askRequired(ctx, "Enter the base project name (e.g. 'backend' for 'backend-dev', 'backend-staging'): ", "Base project name can not be empty. Please try again.")

	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out)
	output.PrintTemplates(s.out, s.registry)
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Enter the environments to create (comma separated, e.g. 'dev,staging,prod'):")
	ui.PrintMuted(s.out, "Available: "+strings.Join(s.registry.Names(), ", "))

	selected, err := s.askEnvironments(ctx)

	if err != nil {
		return nil, err
	}

	fmt.Fprintln(s.out)
	ui.PrintInfo(s.out, ui.IconInfo, "Ready to create environment projects:")
	ui.PrintListItem(s.out, ui.IconItem, "Source Project ID: "+sourceProjectId)
	ui.PrintListItem(s.out, ui.IconItem, "Base Project Name: "+baseProjectName)
	ui.PrintListItem(s.out, ui.IconItem, "Environments: "+strings.Join(selected, ", "))
	for _, environment := range selected {
		template, _ := s.registry.Get(environment)
		ui.PrintListItem(s.out, "  -", fmt.Sprintf("%s (prefix: '%s')", environments.ProjectName(baseProjectName, environment), template.Prefix))
	}

	if err := s.confirm(ctx, "\nProceed with creation? (y/N): "); err != nil {
		return nil, err
	}

	return s.orchestrator.CreateEnvironments(ctx, environments.Request{
		SourceProjectId: sourceProjectId,
		BaseProjectName: baseProjectName,
		Environments:    selected,
	})
}

// askEnvironments reads a comma separated list of environments until every name matches a template.
// The names are returned as the templates spell them.
func (s *Shell) askEnvironments(ctx context.Context) ([]string, error) {
	for {
		answer, err := s.ask(ctx, "Environments: ")

		if err != nil {
			return nil, err
		}

		selected := strutil.SplitAndTrim(answer, ",")

		if len(selected) == 0 {
			ui.PrintWarning(s.out, ui.IconWarning, "Environments can not be empty. Please try again.")
			continue
		}

		invalid := slices.Filter(nil, selected, func(environment string) bool {
			_, ok := s.registry.Resolve(environment)
			return !ok
		})

		if len(invalid) != 0 {
			ui.PrintWarning(s.out, ui.IconWarning, "Invalid environments: "+strings.Join(invalid, ", "))
			ui.PrintMuted(s.out, "Available: "+strings.Join(s.registry.Names(), ", "))
			continue
		}

		return lo.Map(selected, func(environment string, index int) string {
			name, _ := s.registry.Resolve(environment)
			return name
		}), nil
	}
}

// Confirm asks a y/N question and returns ErrCancelled unless the answer is yes.
func (s *Shell) Confirm(ctx context.Context, prompt string) error {
	return s.confirm(ctx, prompt)
}

func (s *Shell) confirm(ctx context.Context, prompt string) error {
	answer, err := s.ask(ctx, prompt)

	if err != nil {
		return err
	}

	if !strutil.IsAffirmative(answer) {
		ui.PrintMuted(s.out, "Operation cancelled.")
		return ErrCancelled
	}

	return nil
}

func (s *Shell) askRequired(ctx context.Context, prompt string, retry string) (string, error) {
	for {
		answer, err := s.ask(ctx, prompt)

		if err != nil {
			return "", err
		}

		if answer != "" {
			return answer, nil
		}

		ui.PrintWarning(s.out, ui.IconWarning, retry)
	}
}

// ask prints the prompt and returns the next trimmed line. Closed input is an error, and so is a cancelled context.
func (s *Shell) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ui.PrintPrompt(s.out, prompt)

	s.reading.Do(func() {
		go s.readLines()
	})

	select {
	case <-ctx.Done():
		fmt.Fprintln(s.out)
		return "", ctx.Err()
	case next, ok := <-s.lines:
		if !ok {
			return "", io.ErrUnexpectedEOF
		}

		if next.err != nil {
			return "", next.err
		}

		return strings.TrimSpace(next.text), nil
	}
}

func (s *Shell) readLines() {
	defer close(s.lines)

	for s.in.Scan() {
		s.lines <- line{text: s.in.Text()}
	}

	if err := s.in.Err(); err != nil {
		s.lines <- line{err: err}
	}
}
