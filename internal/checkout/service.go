package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/brancho/internal/execshell"
)

const (
	repositoryPathRequiredMessageConstant    = "repository path must be provided"
	branchNameRequiredMessageConstant        = "branch name must be provided"
	gitExecutorMissingMessageConstant        = "git executor not configured"
	gitSwitchFailureTemplateConstant         = "failed to switch to branch %q: %w"
	gitCreateBranchFailureTemplateConstant   = "failed to create branch %q: %w"
	gitVerifyBranchFailureTemplateConstant   = "failed to verify branch %q: %w"
	gitMissingReferenceExitCodeConstant      = 1
	gitRevParseSubcommandConstant            = "rev-parse"
	gitVerifyFlagConstant                    = "--verify"
	gitQuietFlagConstant                     = "--quiet"
	gitLocalBranchReferenceTemplateConstant  = "refs/heads/%s"
	gitSwitchSubcommandConstant              = "switch"
	gitCreateBranchFlagConstant              = "-c"
	gitTerminalPromptEnvironmentNameConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue = "0"
)

// ErrRepositoryPathRequired indicates the repository path option was empty.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrBranchNameRequired indicates the branch name option was empty.
var ErrBranchNameRequired = errors.New(branchNameRequiredMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	GitExecutor GitExecutor
}

// Options configure a checkout.
type Options struct {
	RepositoryPath string
	BranchName     string
	DryRun         bool
}

// Result captures the outcome of a checkout.
type Result struct {
	RepositoryPath string
	BranchName     string
	BranchCreated  bool
	DryRun         bool
}

// Service switches a repository to a resolved branch, creating it locally when missing.
type Service struct {
	executor GitExecutor
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Service{executor: dependencies.GitExecutor}, nil
}

// Checkout switches to the branch, or creates it with git switch -c when no local branch exists.
func (service *Service) Checkout(executionContext context.Context, options Options) (Result, error) {
	trimmedRepositoryPath := strings.TrimSpace(options.RepositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return Result{}, ErrRepositoryPathRequired
	}

	trimmedBranchName := strings.TrimSpace(options.BranchName)
	if len(trimmedBranchName) == 0 {
		return Result{}, ErrBranchNameRequired
	}

	if options.DryRun {
		return Result{RepositoryPath: trimmedRepositoryPath, BranchName: trimmedBranchName, DryRun: true}, nil
	}

	environment := map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue}

	branchExists, verifyError := service.localBranchExists(executionContext, trimmedRepositoryPath, trimmedBranchName, environment)
	if verifyError != nil {
		return Result{}, fmt.Errorf(gitVerifyBranchFailureTemplateConstant, trimmedBranchName, verifyError)
	}

	if branchExists {
		if _, switchError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:            []string{gitSwitchSubcommandConstant, trimmedBranchName},
			WorkingDirectory:     trimmedRepositoryPath,
			EnvironmentVariables: environment,
		}); switchError != nil {
			return Result{}, fmt.Errorf(gitSwitchFailureTemplateConstant, trimmedBranchName, switchError)
		}
		return Result{RepositoryPath: trimmedRepositoryPath, BranchName: trimmedBranchName}, nil
	}

	if _, createError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitSwitchSubcommandConstant, gitCreateBranchFlagConstant, trimmedBranchName},
		WorkingDirectory:     trimmedRepositoryPath,
		EnvironmentVariables: environment,
	}); createError != nil {
		return Result{}, fmt.Errorf(gitCreateBranchFailureTemplateConstant, trimmedBranchName, createError)
	}

	return Result{RepositoryPath: trimmedRepositoryPath, BranchName: trimmedBranchName, BranchCreated: true}, nil
}

// localBranchExists reports a missing branch only when git rev-parse exits with status 1.
func (service *Service) localBranchExists(executionContext context.Context, repositoryPath string, branchName string, environment map[string]string) (bool, error) {
	_, verifyError := service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, fmt.Sprintf(gitLocalBranchReferenceTemplateConstant, branchName)},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: environment,
	})
	if verifyError == nil {
		return true, nil
	}

	var commandFailure execshell.CommandFailedError
	if errors.As(verifyError, &commandFailure) && commandFailure.Result.ExitCode == gitMissingReferenceExitCodeConstant {
		return false, nil
	}
	return false, verifyError
}
