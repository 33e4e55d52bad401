package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	loggerMissingMessageConstant            = "logger not configured"
	runnerMissingMessageConstant            = "command runner not configured"
	commandFailedTemplateConstant           = "%s exited with code %d"
	commandFailedWithStderrTemplateConstant = "%s exited with code %d: %s"
	commandExecutionFailedTemplateConstant  = "%s could not be executed: %s"
	commandLabelSeparatorConstant           = " "
	commandStartedMessageConstant           = "executing command"
	commandCompletedMessageConstant         = "command completed"
	commandFailedMessageConstant            = "command failed"
	commandExecutionFailedMessageConstant   = "command execution failed"
	logFieldCommandConstant                 = "command"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldExitCodeConstant                = "exit_code"
	logFieldStandardErrorConstant           = "stderr"
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(runnerMissingMessageConstant)

// CommandFailedError reports a command that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	label := formatCommandLabel(failure.Command)
	standardError := strings.TrimSpace(failure.Result.StandardError)
	if len(standardError) == 0 {
		return fmt.Sprintf(commandFailedTemplateConstant, label, failure.Result.ExitCode)
	}
	return fmt.Sprintf(commandFailedWithStderrTemplateConstant, label, failure.Result.ExitCode, standardError)
}

// CommandExecutionError reports a command that could not be started or was interrupted.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, formatCommandLabel(failure.Command), failure.Cause)
}

// Unwrap exposes the runner error.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs external tools through a CommandRunner and logs every invocation.
type ShellExecutor struct {
	logger *zap.Logger
	runner CommandRunner
}

// NewShellExecutor validates collaborators and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{logger: logger, runner: runner}, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the command and converts non-zero exit codes into CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	label := formatCommandLabel(command)
	executor.logger.Debug(
		commandStartedMessageConstant,
		zap.String(logFieldCommandConstant, label),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)

	result, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Warn(
			commandExecutionFailedMessageConstant,
			zap.String(logFieldCommandConstant, label),
			zap.Error(runError),
		)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	if result.ExitCode != 0 {
		executor.logger.Warn(
			commandFailedMessageConstant,
			zap.String(logFieldCommandConstant, label),
			zap.Int(logFieldExitCodeConstant, result.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: result}
	}

	executor.logger.Info(
		commandCompletedMessageConstant,
		zap.String(logFieldCommandConstant, label),
	)
	return result, nil
}

func formatCommandLabel(command ShellCommand) string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(parts, commandLabelSeparatorConstant)
}
