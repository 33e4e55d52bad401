package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/brancho/internal/execshell"
)

type stubGitExecutor struct {
	recorded  []execshell.CommandDetails
	responses []stubGitResponse
}

type stubGitResponse struct {
	result execshell.ExecutionResult
	err    error
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	if len(executor.responses) == 0 {
		return execshell.ExecutionResult{}, nil
	}

	next := executor.responses[0]
	executor.responses = executor.responses[1:]
	if next.err != nil {
		return execshell.ExecutionResult{}, next.err
	}
	return next.result, nil
}

const testBranchNameConstant = "feature/rk-123/master-improve-login-flow"

var missingReferenceError = execshell.CommandFailedError{
	Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: execshell.CommandDetails{Arguments: []string{"rev-parse"}}},
	Result:  execshell.ExecutionResult{ExitCode: 1},
}

func TestNewServiceRequiresExecutor(testInstance *testing.T) {
	service, err := NewService(ServiceDependencies{})
	require.ErrorIs(testInstance, err, ErrGitExecutorNotConfigured)
	require.Nil(testInstance, service)
}

func TestCheckoutSwitchesToExistingBranch(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(testInstance, err)

	result, checkoutError := service.Checkout(context.Background(), Options{RepositoryPath: "/tmp/repo", BranchName: testBranchNameConstant})
	require.NoError(testInstance, checkoutError)
	require.Equal(testInstance, Result{RepositoryPath: "/tmp/repo", BranchName: testBranchNameConstant}, result)

	require.Len(testInstance, executor.recorded, 2)
	require.Equal(testInstance, []string{"rev-parse", "--verify", "--quiet", "refs/heads/" + testBranchNameConstant}, executor.recorded[0].Arguments)
	require.Equal(testInstance, []string{"switch", testBranchNameConstant}, executor.recorded[1].Arguments)
	require.Equal(testInstance, "/tmp/repo", executor.recorded[1].WorkingDirectory)
	require.Equal(testInstance, "0", executor.recorded[1].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestCheckoutCreatesMissingBranch(testInstance *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{{err: missingReferenceError}}}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(testInstance, err)

	result, checkoutError := service.Checkout(context.Background(), Options{RepositoryPath: "/tmp/repo", BranchName: testBranchNameConstant})
	require.NoError(testInstance, checkoutError)
	require.True(testInstance, result.BranchCreated)

	require.Len(testInstance, executor.recorded, 2)
	require.Equal(testInstance, []string{"switch", "-c", testBranchNameConstant}, executor.recorded[1].Arguments)
}

func TestCheckoutDryRunSkipsGit(testInstance *testing.T) {
	executor := &stubGitExecutor{}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(testInstance, err)

	result, checkoutError := service.Checkout(context.Background(), Options{RepositoryPath: " /tmp/repo ", BranchName: testBranchNameConstant, DryRun: true})
	require.NoError(testInstance, checkoutError)
	require.True(testInstance, result.DryRun)
	require.Equal(testInstance, "/tmp/repo", result.RepositoryPath)
	require.Empty(testInstance, executor.recorded)
}

func TestCheckoutValidatesInputs(testInstance *testing.T) {
	service, err := NewService(ServiceDependencies{GitExecutor: &stubGitExecutor{}})
	require.NoError(testInstance, err)

	_, checkoutError := service.Checkout(context.Background(), Options{BranchName: testBranchNameConstant})
	require.ErrorIs(testInstance, checkoutError, ErrRepositoryPathRequired)

	_, checkoutError = service.Checkout(context.Background(), Options{RepositoryPath: "/tmp/repo", BranchName: "  "})
	require.ErrorIs(testInstance, checkoutError, ErrBranchNameRequired)
}

func TestCheckoutSurfacesGitErrors(testInstance *testing.T) {
	testCases := []struct {
		name          string
		responses     []stubGitResponse
		errorContains string
	}{
		{
			name:          "switch_failure",
			responses:     []stubGitResponse{{}, {err: errors.New("local changes would be overwritten")}},
			errorContains: "failed to switch to branch",
		},
		{
			name:          "create_failure",
			responses:     []stubGitResponse{{err: missingReferenceError}, {err: errors.New("invalid reference")}},
			errorContains: "failed to create branch",
		},
		{
			name:          "verify_cannot_start",
			responses:     []stubGitResponse{{err: execshell.CommandExecutionError{Cause: errors.New("executable file not found")}}},
			errorContains: "failed to verify branch",
		},
		{
			name: "verify_outside_repository",
			responses: []stubGitResponse{{err: execshell.CommandFailedError{
				Result: execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: not a git repository"},
			}}},
			errorContains: "not a git repository",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, err := NewService(ServiceDependencies{GitExecutor: &stubGitExecutor{responses: testCase.responses}})
			require.NoError(testInstance, err)

			_, checkoutError := service.Checkout(context.Background(), Options{RepositoryPath: "/tmp/repo", BranchName: testBranchNameConstant})
			require.ErrorContains(testInstance, checkoutError, testCase.errorContains)
		})
	}
}

func TestCheckoutStopsWhenBranchCannotBeVerified(testInstance *testing.T) {
	executor := &stubGitExecutor{responses: []stubGitResponse{{err: execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 128}}}}}
	service, err := NewService(ServiceDependencies{GitExecutor: executor})
	require.NoError(testInstance, err)

	_, checkoutError := service.Checkout(context.Background(), Options{RepositoryPath: "/tmp/repo", BranchName: testBranchNameConstant})
	require.ErrorContains(testInstance, checkoutError, "failed to verify branch")

	var commandFailure execshell.CommandFailedError
	require.ErrorAs(testInstance, checkoutError, &commandFailure)
	require.Equal(testInstance, 128, commandFailure.Result.ExitCode)
	require.Len(testInstance, executor.recorded, 1)
}
