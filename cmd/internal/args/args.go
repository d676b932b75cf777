package args

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/client"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/failures"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/strutil"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"os"
	"strings"
	"time"
)

const (
	CommandInteractive  = ""
	CommandDuplicate    = "duplicate"
	CommandEnvironments = "environments"
	CommandTemplates    = "templates"
)

var commands = []string{CommandInteractive, CommandDuplicate, CommandEnvironments, CommandTemplates}

// environmentNames maps flags to the unprefixed environment variables the tool has always read.
// Every other flag can be set with a BWDUP_ prefixed variable, e.g. BWDUP_LOGLEVEL.
var environmentNames = map[string]string{
	"organizationId":       "ORGANIZATION_ID",
	"accessToken":          "ACCESS_TOKEN",
	"stateFile":            "STATE_FILE",
	"apiUrl":               "API_URL",
	"identityUrl":          "IDENTITY_URL",
	"environmentTemplates": "ENVIRONMENT_TEMPLATES",
}

type Arguments struct {
	ConfigFile string
	ConfigPath string
	EnvFile    string
	Version    bool
	LogLevel   string

	OrganizationId       string
	AccessToken          string
	StateFile            string
	ApiUrl               string
	IdentityUrl          string
	EnvironmentTemplates string
	PrefixSeparator      string
	FailOnEmptySource    bool
	StopOnUnknown        bool
	LoginAttempts        uint
	Timeout              time.Duration

	Command         string
	SourceProjectId string
	ProjectName     string
	Prefix          string
	Environment     StringSliceArgs
	Yes             bool
	Report          string
	ReportFormat    string
}

// StringSliceArgs collects a flag that can be repeated or passed a comma separated list.
type StringSliceArgs []string

func (i *StringSliceArgs) String() string {
	return "A collection of strings passed as arguments"
}

func (i *StringSliceArgs) Set(value string) error {
	*i = append(*i, strutil.SplitAndTrim(value, ",")...)
	return nil
}

func ParseArgs(args []string) (Arguments, string, error) {
	flags := flag.NewFlagSet("bwdup", flag.ContinueOnError)
	var buf bytes.Buffer
	flags.SetOutput(&buf)

	arguments := Arguments{}

	flags.StringVar(&arguments.ConfigFile, "configFile", "bwdup", "The name of the configuration file to use. Do not include the extension. Defaults to bwdup")
	flags.StringVar(&arguments.ConfigPath, "configPath", ".", "The path of the configuration file to use. Defaults to the current directory")
	flags.StringVar(&arguments.EnvFile, "envFile", ".env", "A dotenv file loaded before reading environment variables. Variables already set in the environment take precedence.")
	flags.BoolVar(&arguments.Version, "version", false, "Print the version")
	flags.StringVar(&arguments.LogLevel, "logLevel", "info", "The log level: debug, info, warn or error")

	flags.StringVar(&arguments.OrganizationId, "organizationId", "", "The Bitwarden organization ID. Also read from ORGANIZATION_ID.")
	flags.StringVar(&arguments.AccessToken, "accessToken", "", "The machine account access token. Also read from ACCESS_TOKEN. Prompted for when missing and running in a terminal.")
	flags.StringVar(&arguments.StateFile, "stateFile", "./bw_state", "The file used to cache the authenticated session. Also read from STATE_FILE. Set to an empty string to disable the cache.")
	flags.StringVar(&arguments.ApiUrl, "apiUrl", client.DefaultApiUrl, "The Secrets Manager API URL. Also read from API_URL.")
	flags.StringVar(&arguments.IdentityUrl, "identityUrl", client.DefaultIdentityUrl, "The identity server URL. Also read from IDENTITY_URL.")
	flags.StringVar(&arguments.EnvironmentTemplates, "environmentTemplates", "", "Comma separated environment templates in the format name, name:prefix or name:prefix:description. Also read from ENVIRONMENT_TEMPLATES. Defaults to dev, staging, prod, test, qa and uat.")
	flags.StringVar(&arguments.PrefixSeparator, "prefixSeparator", "", "Appended to an environment template prefix to build the secret key prefix, e.g. \"_\" creates keys like dev_DB_PASSWORD.")
	flags.BoolVar(&arguments.FailOnEmptySource, "failOnEmptySource", false, "Fail instead of creating an empty project when the source project has no secrets.")
	flags.BoolVar(&arguments.StopOnUnknown, "stopOnUnknownEnvironment", false, "Stop a batch on the first unknown environment instead of recording it and continuing.")
	flags.UintVar(&arguments.LoginAttempts, "loginAttempts", 1, "The number of times the login is attempted. Rejected credentials are never retried.")
	flags.DurationVar(&arguments.Timeout, "timeout", 30*time.Second, "The timeout of each HTTP request")

	flags.StringVar(&arguments.Command, "command", CommandInteractive, "Run without the interactive menu: duplicate, environments or templates")
	flags.StringVar(&arguments.SourceProjectId, "sourceProjectId", "", "The ID of the project to duplicate")
	flags.StringVar(&arguments.ProjectName, "projectName", "", "The name of the new project, or the base name of the environment projects")
	flags.StringVar(&arguments.Prefix, "prefix", "", "The prefix added to duplicated secret keys. Only used with -command duplicate.")
	flags.Var(&arguments.Environment, "environment", "An environment to create. Can be repeated or comma separated. Only used with -command environments.")
	flags.BoolVar(&arguments.Yes, "yes", false, "Skip the confirmation prompt")
	flags.StringVar(&arguments.Report, "report", "", "Write a report of the run to this file, or - to print it")
	flags.StringVar(&arguments.ReportFormat, "reportFormat", "yaml", "The report format: yaml or json")

	err := flags.Parse(args)

	if err != nil {
		return Arguments{}, buf.String(), err
	}

	err = loadEnvFile(arguments.EnvFile)

	if err != nil {
		return Arguments{}, "", err
	}

	err = overrideArgs(flags, arguments.ConfigPath, arguments.ConfigFile)

	if err != nil {
		return Arguments{}, "", err
	}

	arguments.Command = strings.ToLower(strings.TrimSpace(arguments.Command))

	return arguments, buf.String(), nil
}

// Validate checks the arguments that do not depend on user input. The access token is checked when authenticating.
func (arguments *Arguments) Validate() error {
	if !lo.Contains(commands, arguments.Command) {
		return failures.New(failures.KindConfig, fmt.Sprintf("unknown command %q, expected duplicate, environments or templates", arguments.Command))
	}

	if arguments.Command == CommandTemplates {
		return nil
	}

	if arguments.OrganizationId == "" {
		return failures.New(failures.KindConfig, "ORGANIZATION_ID must be set, or passed with the -organizationId argument")
	}

	if _, err := uuid.Parse(arguments.OrganizationId); err != nil {
		return failures.Wrap(failures.KindConfig, err, "ORGANIZATION_ID must be a UUID")
	}

	if arguments.SourceProjectId != "" {
		if _, err := uuid.Parse(arguments.SourceProjectId); err != nil {
			return failures.Wrap(failures.KindConfig, err, "sourceProjectId must be a UUID")
		}
	}

	if !lo.Contains([]string{"yaml", "json"}, strings.ToLower(arguments.ReportFormat)) {
		return failures.New(failures.KindConfig, "reportFormat must be yaml or json")
	}

	switch arguments.Command {
	case CommandDuplicate:
		if arguments.SourceProjectId == "" || arguments.ProjectName == "" {
			return failures.New(failures.KindConfig, "duplicate requires sourceProjectId and projectName")
		}
	case CommandEnvironments:
		if arguments.SourceProjectId == "" || arguments.ProjectName == "" || len(arguments.Environment) == 0 {
			return failures.New(failures.KindConfig, "environments requires sourceProjectId, projectName and at least one environment")
		}
	}

	return nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		return nil
	}

	// godotenv does not overwrite variables that are already set
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	return nil
}

// Inspired by https://github.com/carolynvs/stingoftheviper
// Viper needs manual handling to implement reading settings from env vars, config files, and from the command line
func overrideArgs(flags *flag.FlagSet, configPath string, configFile string) error {
	v := viper.New()

	// Set the base name of the config file, without the file extension.
	v.SetConfigName(configFile)
	v.AddConfigPath(configPath)

	// It's okay if there isn't a config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	// Flags bind to prefixed variables, e.g. -logLevel binds to BWDUP_LOGLEVEL
	v.SetEnvPrefix("bwdup")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for flagName, envName := range environmentNames {
		if err := v.BindEnv(flagName, envName); err != nil {
			return err
		}
	}

	// Bind the current command's flags to viper
	return bindFlags(flags, v)
}

// Bind each flag to its associated viper configuration (config file and environment variable)
func bindFlags(flags *flag.FlagSet, v *viper.Viper) error {
	var funcError error = nil

	flags.VisitAll(func(allFlags *flag.Flag) {
		defined := false
		flags.Visit(func(definedFlag *flag.Flag) {
			if definedFlag.Name == allFlags.Name && definedFlag.Name != "configFile" && definedFlag.Name != "configPath" {
				defined = true
			}
		})

		if !defined && v.IsSet(allFlags.Name) {
			if _, ok := allFlags.Value.(*StringSliceArgs); ok {
				for _, value := range v.GetStringSlice(allFlags.Name) {
					funcError = errors.Join(funcError, flags.Set(allFlags.Name, value))
				}
				return
			}

			funcError = errors.Join(funcError, flags.Set(allFlags.Name, v.GetString(allFlags.Name)))
		}
	})

	return funcError
}
