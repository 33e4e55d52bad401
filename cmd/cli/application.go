package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/brancho/internal/branchname"
	"github.com/temirov/brancho/internal/checkout"
	"github.com/temirov/brancho/internal/jira"
	"github.com/temirov/brancho/internal/resolver"
	"github.com/temirov/brancho/internal/utils"
	"github.com/temirov/brancho/internal/utils/flags"
)

const (
	applicationNameConstant                 = "brancho"
	applicationShortDescriptionConstant     = "Derive git branch names from issue tracker tickets"
	applicationLongDescriptionConstant      = "brancho looks up a ticket and its parent in the issue tracker and prints a branch name following the <category>/<parent>/<issue>/<prefix>-<summary> convention."
	versionTemplateConstant                 = "{{.Name}} version: {{.Version}}\n"
	develVersionConstant                    = "(devel)"
	unknownVersionConstant                  = "dev"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	jiraConfigurationKeyConstant            = "jira"
	branchConfigurationKeyConstant          = "branch"
	environmentPrefixConstant               = "BRANCHO"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationEmbeddedFieldConstant      = "embedded_defaults"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	jiraCommandNameConstant                 = "jira"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration  `mapstructure:"common"`
	Jira   jira.Configuration              `mapstructure:"jira"`
	Branch branchname.CommandConfiguration `mapstructure:"branch"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationDependencies enumerates optional collaborators replacing the production Jira client, git runner and log sink.
type ApplicationDependencies struct {
	IssueLookup  resolver.IssueLookup
	GitExecutor  checkout.GitExecutor
	LoggerOutput io.Writer
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     *flags.ChoiceValue
	logFormatFlagValue    *flags.ChoiceValue
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() (*Application, error) {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles an application using the provided collaborators.
func NewApplicationWithDependencies(dependencies ApplicationDependencies) (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(utils.ConfigurationLoaderOptions{
		ConfigurationName: configurationNameConstant,
		ConfigurationType: configurationTypeConstant,
		EnvironmentPrefix: environmentPrefixConstant,
		SearchPaths:       utils.DefaultSearchPaths(applicationNameConstant),
	})
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(dependencies.LoggerOutput),
		logger:              zap.NewNop(),
		logLevelFlagValue:   flags.NewChoiceValue(string(utils.LogLevelError), utils.LogLevelChoices()),
		logFormatFlagValue:  flags.NewChoiceValue(string(utils.LogFormatConsole), utils.LogFormatChoices()),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetVersionTemplate(versionTemplateConstant)
	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().Var(application.logLevelFlagValue, logLevelFlagNameConstant, flags.FormatChoiceUsage(string(utils.LogLevelError), utils.LogLevelChoices(), logLevelFlagUsageConstant))
	cobraCommand.PersistentFlags().Var(application.logFormatFlagValue, logFormatFlagNameConstant, flags.FormatChoiceUsage(string(utils.LogFormatConsole), utils.LogFormatChoices(), logFormatFlagUsageConstant))

	jiraBuilder := branchname.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() branchname.CommandConfiguration {
			return application.configuration.Branch
		},
		JiraConfigurationProvider: func() jira.Configuration {
			return application.configuration.Jira
		},
		IssueLookup: dependencies.IssueLookup,
		GitExecutor: dependencies.GitExecutor,
	}
	jiraCommand, jiraBuildError := jiraBuilder.Build()
	if jiraBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, jiraCommandNameConstant, jiraBuildError)
	}
	cobraCommand.AddCommand(jiraCommand)

	application.rootCommand = cobraCommand
	return application, nil
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(nil)
}

// ExecuteWithArguments runs the command hierarchy with explicit arguments. Nil arguments select os.Args.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	if arguments != nil {
		application.rootCommand.SetArgs(arguments)
	}
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// SetOutput redirects command output and error streams.
func (application *Application) SetOutput(output io.Writer, errorOutput io.Writer) {
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(errorOutput)
}

// SetInput redirects the input stream used by prompts.
func (application *Application) SetInput(input io.Reader) {
	application.rootCommand.SetIn(input)
}

// Configuration returns the configuration loaded for the last execution.
func (application *Application) Configuration() ApplicationConfiguration {
	return application.configuration
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	application, creationError := NewApplication()
	if creationError != nil {
		return creationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
	}
	for configurationKey, configurationValue := range jira.DefaultConfigurationValues(jiraConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range branchname.DefaultConfigurationValues(branchConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	application.configuration = ApplicationConfiguration{}
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}
	application.configurationMetadata = loadedConfiguration

	if persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue.String()
	}
	if persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue.String()
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
		zap.Bool(configurationEmbeddedFieldConstant, application.configurationMetadata.EmbeddedApplied),
	)

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{command.PersistentFlags(), command.InheritedFlags()}
	if rootCommand := command.Root(); rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet != nil && flagSet.Changed(flagName) {
			return true
		}
	}
	return false
}

func resolveVersion() string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersionConstant
	}
	version := strings.TrimSpace(buildInformation.Main.Version)
	if len(version) == 0 || version == develVersionConstant {
		return unknownVersionConstant
	}
	return version
}
