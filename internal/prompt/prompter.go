package prompt

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	// IssueKeyQuestionConstant is the default question asked when no issue key argument is supplied.
	IssueKeyQuestionConstant     = "Please enter the Jira Ticket number e.g. \"rk-123\": "
	emptyIssueKeyMessageConstant = "issue key must not be empty"
	inputMissingMessageConstant  = "prompt input not configured"
)

// ErrEmptyIssueKey indicates the user submitted an empty answer.
var ErrEmptyIssueKey = errors.New(emptyIssueKeyMessageConstant)

// ErrInputNotConfigured indicates the prompter was constructed without an input reader.
var ErrInputNotConfigured = errors.New(inputMissingMessageConstant)

// IssueKeyPrompter reads an issue key from an io.Reader after writing a question.
type IssueKeyPrompter struct {
	reader   *bufio.Reader
	writer   io.Writer
	question string
}

// NewIssueKeyPrompter constructs a prompter. An empty question selects IssueKeyQuestionConstant.
func NewIssueKeyPrompter(input io.Reader, output io.Writer, question string) *IssueKeyPrompter {
	prompter := &IssueKeyPrompter{writer: output, question: question}
	if input != nil {
		prompter.reader = bufio.NewReader(input)
	}
	if len(strings.TrimSpace(question)) == 0 {
		prompter.question = IssueKeyQuestionConstant
	}
	return prompter
}

// PromptIssueKey writes the question and returns the trimmed answer.
func (prompter *IssueKeyPrompter) PromptIssueKey() (string, error) {
	if prompter == nil || prompter.reader == nil {
		return "", ErrInputNotConfigured
	}

	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompter.question); writeError != nil {
			return "", writeError
		}
	}

	response, readError := prompter.reader.ReadString('\n')
	if readError != nil && readError != io.EOF {
		return "", readError
	}

	trimmedResponse := strings.TrimSpace(response)
	if len(trimmedResponse) == 0 {
		return "", ErrEmptyIssueKey
	}

	return trimmedResponse, nil
}
