package args

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const organizationId = "6d2a8cbe-2f4e-4a55-9d4b-5c1c5f0e9a10"

func TestParseFlagsCorrect(t *testing.T) {
	args, _, err := ParseArgs([]string{
		"-envFile", "",
		"-organizationId", organizationId,
		"-accessToken", "0.token",
		"-command", "Duplicate",
		"-sourceProjectId", "a3c1f7d2-9b7e-4f11-8d35-6f2e0c9a4b21",
		"-projectName", "backend-copy",
		"-prefix", "dev_",
		"-timeout", "5s",
		"-loginAttempts", "3",
		"-yes",
	})

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if args.OrganizationId != organizationId {
		t.Fatalf("OrganizationId should have been " + organizationId)
	}

	if args.Command != CommandDuplicate {
		t.Fatalf("Command should have been lower cased to duplicate")
	}

	if args.Prefix != "dev_" {
		t.Fatalf("Prefix should have been dev_")
	}

	if args.Timeout != 5*time.Second {
		t.Fatalf("Timeout should have been 5s")
	}

	if args.LoginAttempts != 3 {
		t.Fatalf("LoginAttempts should have been 3")
	}

	if !args.Yes {
		t.Fatalf("Yes should have been true")
	}

	if err := args.Validate(); err != nil {
		t.Fatalf("Should not have returned an error: %v", err)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	args, _, err := ParseArgs([]string{"-envFile", ""})

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if args.StateFile != "./bw_state" {
		t.Fatalf("StateFile should have defaulted to ./bw_state")
	}

	if args.LoginAttempts != 1 {
		t.Fatalf("LoginAttempts should have defaulted to 1")
	}

	if args.Timeout != 30*time.Second {
		t.Fatalf("Timeout should have defaulted to 30s")
	}

	if args.Command != CommandInteractive {
		t.Fatalf("Command should have defaulted to the interactive menu")
	}
}

func TestEnvironmentFlagSplitsAndKeepsCase(t *testing.T) {
	args, _, err := ParseArgs([]string{"-envFile", "", "-environment", "Prod, staging", "-environment", "dev"})

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if len(args.Environment) != 3 || args.Environment[0] != "Prod" || args.Environment[1] != "staging" || args.Environment[2] != "dev" {
		t.Fatalf("Environment should have been [Prod staging dev], was %v", args.Environment)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("ORGANIZATION_ID", organizationId)
	t.Setenv("ACCESS_TOKEN", "from-env")
	t.Setenv("ENVIRONMENT_TEMPLATES", "dev,qa")
	t.Setenv("BWDUP_LOGLEVEL", "debug")

	args, _, err := ParseArgs([]string{"-envFile", "", "-accessToken", "from-flag"})

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if args.OrganizationId != organizationId {
		t.Fatalf("OrganizationId should have been read from ORGANIZATION_ID")
	}

	if args.AccessToken != "from-flag" {
		t.Fatalf("The flag should have taken precedence over ACCESS_TOKEN")
	}

	if args.EnvironmentTemplates != "dev,qa" {
		t.Fatalf("EnvironmentTemplates should have been read from ENVIRONMENT_TEMPLATES")
	}

	if args.LogLevel != "debug" {
		t.Fatalf("LogLevel should have been read from BWDUP_LOGLEVEL")
	}
}

func TestEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	err := os.WriteFile(envFile, []byte("ORGANIZATION_ID="+organizationId+"\nAPI_URL=https://vault.example.org/api\n"), 0600)

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	// The existing value wins over the file
	t.Setenv("API_URL", "https://api.example.org")
	t.Cleanup(func() {
		_ = os.Unsetenv("ORGANIZATION_ID")
	})

	args, _, err := ParseArgs([]string{"-envFile", envFile})

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if args.OrganizationId != organizationId {
		t.Fatalf("OrganizationId should have been read from the env file")
	}

	if args.ApiUrl != "https://api.example.org" {
		t.Fatalf("The environment should have taken precedence over the env file")
	}
}

func TestMissingEnvFileIsIgnored(t *testing.T) {
	_, _, err := ParseArgs([]string{"-envFile", filepath.Join(t.TempDir(), "missing.env")})

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "bwdup.yaml"), []byte("prefixSeparator: \"_\"\nfailOnEmptySource: true\n"), 0600)

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	args, _, err := ParseArgs([]string{"-envFile", "", "-configPath", dir})

	if err != nil {
		t.Fatalf("Should not have returned an error: %v", err)
	}

	if args.PrefixSeparator != "_" {
		t.Fatalf("PrefixSeparator should have been read from the config file")
	}

	if !args.FailOnEmptySource {
		t.Fatalf("FailOnEmptySource should have been read from the config file")
	}
}

func TestUnknownFlag(t *testing.T) {
	_, _, err := ParseArgs([]string{"-envFile", "", "-doesNotExist"})

	if err == nil {
		t.Fatalf("Should have returned an error")
	}

	_, _, err = ParseArgs([]string{"-h"})

	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("Should have returned flag.ErrHelp")
	}
}

func TestValidate(t *testing.T) {
	invalid := []Arguments{
		{Command: "delete", ReportFormat: "yaml", OrganizationId: organizationId},
		{Command: CommandDuplicate, ReportFormat: "yaml"},
		{Command: CommandDuplicate, ReportFormat: "yaml", OrganizationId: "not-a-uuid"},
		{Command: CommandDuplicate, ReportFormat: "yaml", OrganizationId: organizationId, ProjectName: "copy"},
		{Command: CommandDuplicate, ReportFormat: "yaml", OrganizationId: organizationId, SourceProjectId: "bad", ProjectName: "copy"},
		{Command: CommandEnvironments, ReportFormat: "yaml", OrganizationId: organizationId, SourceProjectId: organizationId, ProjectName: "backend"},
		{Command: CommandInteractive, ReportFormat: "xml", OrganizationId: organizationId},
	}

	for _, args := range invalid {
		if args.Validate() == nil {
			t.Fatalf("Should have returned an error for %+v", args)
		}
	}

	templates := Arguments{Command: CommandTemplates}
	if templates.Validate() != nil {
		t.Fatalf("Listing templates should not require an organization")
	}
}
