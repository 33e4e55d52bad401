package branchname

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/brancho/internal/checkout"
	"github.com/temirov/brancho/internal/execshell"
	"github.com/temirov/brancho/internal/jira"
	"github.com/temirov/brancho/internal/prompt"
	"github.com/temirov/brancho/internal/resolver"
	"github.com/temirov/brancho/internal/slug"
	"github.com/temirov/brancho/internal/utils/flags"
)

const (
	commandUseConstant                      = "jira [ISSUE-KEY]"
	commandShortDescriptionConstant         = "Print the git branch name for a Jira issue"
	commandLongDescriptionConstant          = "jira fetches an issue and its parent from Jira and prints a branch name of the form <category>/<parent>/<issue>/<prefix>-<summary>. Without an argument the issue key is read from standard input."
	commandExampleConstant                  = "  brancho jira RK-123\n  git switch -c \"$(brancho jira RK-123)\"\n  brancho jira RK-124 --checkout"
	flagPrefixVariantNameConstant           = "prefix-variant"
	flagPrefixVariantDescriptionConstant    = "Prefix table applied to story and task issues"
	flagCheckoutNameConstant                = "checkout"
	flagCheckoutDescriptionConstant         = "Switch the repository to the branch, creating it when missing"
	flagDryRunNameConstant                  = "dry-run"
	flagDryRunDescriptionConstant           = "Preview the checkout without running git"
	flagRepositoryNameConstant              = "repository"
	flagRepositoryDescriptionConstant       = "Repository path used for checkout"
	issueKeyPromptErrorTemplateConstant     = "unable to read issue key: %w"
	prefixVariantErrorTemplateConstant      = "invalid prefix variant: %w"
	mappingErrorTemplateConstant            = "invalid issue type mapping: %w"
	lookupConstructionErrorTemplateConstant = "unable to configure Jira lookup: %w"
	resolutionErrorTemplateConstant         = "unable to resolve branch name: %w"
	lookupFailedSummaryTemplateConstant     = "jira lookup failed for %s"
	checkoutErrorTemplateConstant           = "checkout failed: %w"
	dryRunCheckoutTemplateConstant          = "DRY-RUN: switch %s to %s\n"
	branchNameOutputTemplateConstant        = "%s\n"
	resolvedMessageConstant                 = "branch name resolved"
	checkoutCompletedMessageConstant        = "branch checked out"
	lookupFailedLogMessageConstant          = "issue lookup failed"
	logFieldIssueKeyConstant                = "issue_key"
	logFieldBranchNameConstant              = "branch_name"
	logFieldCategoryConstant                = "category"
	logFieldPrefixConstant                  = "prefix"
	logFieldParentKeyConstant               = "parent_key"
	logFieldPrefixVariantConstant           = "prefix_variant"
	logFieldRepositoryConstant              = "repository"
	logFieldBranchCreatedConstant           = "branch_created"
	logFieldMessagesConstant                = "messages"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current command configuration.
type ConfigurationProvider func() CommandConfiguration

// JiraConfigurationProvider returns the current Jira connection settings.
type JiraConfigurationProvider func() jira.Configuration

// IssueKeyPrompter asks the user for an issue key.
type IssueKeyPrompter interface {
	PromptIssueKey() (string, error)
}

// CommandBuilder assembles the jira command.
type CommandBuilder struct {
	LoggerProvider            LoggerProvider
	ConfigurationProvider     ConfigurationProvider
	JiraConfigurationProvider JiraConfigurationProvider
	IssueLookup               resolver.IssueLookup
	Prompter                  IssueKeyPrompter
	GitExecutor               checkout.GitExecutor
}

type commandOptions struct {
	issueKey       string
	prefixVariant  resolver.PrefixVariant
	checkout       bool
	dryRun         bool
	repositoryPath string
}

// Build constructs the jira command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUseConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Example: commandExampleConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE:    builder.run,
	}

	prefixVariantChoices := resolver.PrefixVariantChoices()
	command.Flags().Var(
		flags.NewChoiceValue(string(resolver.PrefixVariantCurrent), prefixVariantChoices),
		flagPrefixVariantNameConstant,
		flags.FormatChoiceUsage(string(resolver.PrefixVariantCurrent), prefixVariantChoices, flagPrefixVariantDescriptionConstant),
	)

	var checkoutEnabled bool
	var dryRunEnabled bool
	flags.AddToggleFlag(command.Flags(), &checkoutEnabled, flagCheckoutNameConstant, false, flagCheckoutDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), &dryRunEnabled, flagDryRunNameConstant, false, flagDryRunDescriptionConstant)
	command.Flags().String(flagRepositoryNameConstant, "", flagRepositoryDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	options, optionsError := builder.parseOptions(command, arguments, configuration)
	if optionsError != nil {
		return optionsError
	}

	mapping, mappingError := resolver.NewTypeMapping(resolver.MappingOptions{
		PrefixVariant:     options.prefixVariant,
		CategoryOverrides: configuration.Categories,
		PrefixOverrides:   configuration.Prefixes,
	})
	if mappingError != nil {
		return fmt.Errorf(mappingErrorTemplateConstant, mappingError)
	}

	issueLookup, lookupError := builder.resolveIssueLookup(command, logger)
	if lookupError != nil {
		return fmt.Errorf(lookupConstructionErrorTemplateConstant, lookupError)
	}

	branchResolver, resolverError := resolver.NewResolver(resolver.Dependencies{
		Lookup:  issueLookup,
		Filter:  slug.NewFilter(configuration.SlugSeparator),
		Mapping: mapping,
	})
	if resolverError != nil {
		return resolverError
	}

	resolution, resolutionError := branchResolver.Resolve(command.Context(), options.issueKey)
	if resolutionError != nil {
		return builder.reportResolutionError(command, logger, options.issueKey, resolutionError)
	}

	parentKey := ""
	if resolution.Parent != nil {
		parentKey = resolution.Parent.Key
	}
	logger.Info(
		resolvedMessageConstant,
		zap.String(logFieldIssueKeyConstant, options.issueKey),
		zap.String(logFieldBranchNameConstant, resolution.BranchName),
		zap.String(logFieldCategoryConstant, resolution.Category),
		zap.String(logFieldPrefixConstant, resolution.Prefix),
		zap.String(logFieldParentKeyConstant, parentKey),
		zap.String(logFieldPrefixVariantConstant, string(options.prefixVariant)),
	)

	fmt.Fprintf(command.OutOrStdout(), branchNameOutputTemplateConstant, resolution.BranchName)

	if !options.checkout {
		return nil
	}
	return builder.checkoutBranch(command, logger, options, resolution.BranchName)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string, configuration CommandConfiguration) (commandOptions, error) {
	options := commandOptions{
		checkout:       configuration.Checkout,
		dryRun:         configuration.DryRun,
		repositoryPath: configuration.RepositoryPath,
	}

	prefixVariantValue := configuration.PrefixVariant
	if command.Flags().Changed(flagPrefixVariantNameConstant) {
		prefixVariantValue = command.Flags().Lookup(flagPrefixVariantNameConstant).Value.String()
	}
	prefixVariant, variantError := resolver.ParsePrefixVariant(prefixVariantValue)
	if variantError != nil {
		return commandOptions{}, fmt.Errorf(prefixVariantErrorTemplateConstant, variantError)
	}
	options.prefixVariant = prefixVariant

	if command.Flags().Changed(flagCheckoutNameConstant) {
		options.checkout, _ = command.Flags().GetBool(flagCheckoutNameConstant)
	}
	if command.Flags().Changed(flagDryRunNameConstant) {
		options.dryRun, _ = command.Flags().GetBool(flagDryRunNameConstant)
	}
	if command.Flags().Changed(flagRepositoryNameConstant) {
		repositoryValue, _ := command.Flags().GetString(flagRepositoryNameConstant)
		options.repositoryPath = strings.TrimSpace(repositoryValue)
	}

	if len(arguments) > 0 {
		options.issueKey = strings.TrimSpace(arguments[0])
	}
	if len(options.issueKey) == 0 {
		issueKey, promptError := builder.resolvePrompter(command).PromptIssueKey()
		if promptError != nil {
			return commandOptions{}, fmt.Errorf(issueKeyPromptErrorTemplateConstant, promptError)
		}
		options.issueKey = issueKey
	}

	return options, nil
}

func (builder *CommandBuilder) reportResolutionError(command *cobra.Command, logger *zap.Logger, issueKey string, resolutionError error) error {
	var lookupFailure resolver.LookupFailedError
	if !errors.As(resolutionError, &lookupFailure) {
		return fmt.Errorf(resolutionErrorTemplateConstant, resolutionError)
	}

	logger.Warn(
		lookupFailedLogMessageConstant,
		zap.String(logFieldIssueKeyConstant, lookupFailure.IssueKey),
		zap.Strings(logFieldMessagesConstant, lookupFailure.Messages),
	)

	printLookupMessages(command.ErrOrStderr(), lookupFailure.Messages)
	return fmt.Errorf(lookupFailedSummaryTemplateConstant, issueKey)
}

func printLookupMessages(writer io.Writer, messages []string) {
	errorColor := color.New(color.FgRed)
	for _, message := range messages {
		errorColor.Fprintln(writer, message)
	}
}

func (builder *CommandBuilder) checkoutBranch(command *cobra.Command, logger *zap.Logger, options commandOptions, branchName string) error {
	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return fmt.Errorf(checkoutErrorTemplateConstant, executorError)
	}

	service, serviceError := checkout.NewService(checkout.ServiceDependencies{GitExecutor: gitExecutor})
	if serviceError != nil {
		return fmt.Errorf(checkoutErrorTemplateConstant, serviceError)
	}

	result, checkoutError := service.Checkout(command.Context(), checkout.Options{
		RepositoryPath: options.repositoryPath,
		BranchName:     branchName,
		DryRun:         options.dryRun,
	})
	if checkoutError != nil {
		return fmt.Errorf(checkoutErrorTemplateConstant, checkoutError)
	}

	if result.DryRun {
		fmt.Fprintf(command.ErrOrStderr(), dryRunCheckoutTemplateConstant, result.RepositoryPath, result.BranchName)
		return nil
	}

	logger.Info(
		checkoutCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, result.RepositoryPath),
		zap.String(logFieldBranchNameConstant, result.BranchName),
		zap.Bool(logFieldBranchCreatedConstant, result.BranchCreated),
	)
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveJiraConfiguration() jira.Configuration {
	if builder.JiraConfigurationProvider == nil {
		return jira.DefaultConfiguration()
	}
	return builder.JiraConfigurationProvider()
}

func (builder *CommandBuilder) resolvePrompter(command *cobra.Command) IssueKeyPrompter {
	if builder.Prompter != nil {
		return builder.Prompter
	}
	return prompt.NewIssueKeyPrompter(command.InOrStdin(), command.ErrOrStderr(), prompt.IssueKeyQuestionConstant)
}

func (builder *CommandBuilder) resolveIssueLookup(command *cobra.Command, logger *zap.Logger) (resolver.IssueLookup, error) {
	if builder.IssueLookup != nil {
		return builder.IssueLookup, nil
	}
	return jira.NewClient(command.Context(), logger, builder.resolveJiraConfiguration(), jira.ClientDependencies{})
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (checkout.GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
}
