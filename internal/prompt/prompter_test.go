package prompt_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/brancho/internal/prompt"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("terminal closed")
}

func TestIssueKeyPrompter(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		question      string
		expectedKey   string
		expectedError error
		expectedAsked string
	}{
		{name: "reads_line", input: "RK-123\n", expectedKey: "RK-123", expectedAsked: prompt.IssueKeyQuestionConstant},
		{name: "trims_whitespace", input: "  rk-7  \r\n", expectedKey: "rk-7", expectedAsked: prompt.IssueKeyQuestionConstant},
		{name: "accepts_eof_without_newline", input: "RK-9", expectedKey: "RK-9", expectedAsked: prompt.IssueKeyQuestionConstant},
		{name: "custom_question", input: "RK-1\n", question: "Issue: ", expectedKey: "RK-1", expectedAsked: "Issue: "},
		{name: "empty_answer", input: "\n", expectedError: prompt.ErrEmptyIssueKey, expectedAsked: prompt.IssueKeyQuestionConstant},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			output := &bytes.Buffer{}
			prompter := prompt.NewIssueKeyPrompter(strings.NewReader(testCase.input), output, testCase.question)

			issueKey, promptError := prompter.PromptIssueKey()
			require.Equal(testInstance, testCase.expectedAsked, output.String())
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, promptError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, promptError)
			require.Equal(testInstance, testCase.expectedKey, issueKey)
		})
	}
}

func TestIssueKeyPrompterFailures(testInstance *testing.T) {
	_, missingInputError := prompt.NewIssueKeyPrompter(nil, nil, "").PromptIssueKey()
	require.ErrorIs(testInstance, missingInputError, prompt.ErrInputNotConfigured)

	_, readError := prompt.NewIssueKeyPrompter(failingReader{}, nil, "").PromptIssueKey()
	require.ErrorContains(testInstance, readError, "terminal closed")
}
