package jira_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/brancho/internal/jira"
)

func TestParseTokenSource(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expected      jira.TokenSource
		expectedError bool
	}{
		{name: "bare_environment_name", input: "JIRA_API_TOKEN", expected: jira.TokenSource{Type: jira.TokenSourceTypeEnvironment, Reference: "JIRA_API_TOKEN"}},
		{name: "explicit_environment", input: " env: JIRA_API_TOKEN ", expected: jira.TokenSource{Type: jira.TokenSourceTypeEnvironment, Reference: "JIRA_API_TOKEN"}},
		{name: "file", input: "FILE:/home/user/.jira-token", expected: jira.TokenSource{Type: jira.TokenSourceTypeFile, Reference: "/home/user/.jira-token"}},
		{name: "empty", input: "  ", expectedError: true},
		{name: "home_relative_file", input: "file:~/.jira-token", expected: jira.TokenSource{Type: jira.TokenSourceTypeFile, Reference: "~/.jira-token"}},
		{name: "missing_environment_name", input: "env:", expectedError: true},
		{name: "missing_file_path", input: "file:", expectedError: true},
		{name: "unsupported_type", input: "vault:secret/jira", expectedError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source, parseError := jira.ParseTokenSource(testCase.input)
			if testCase.expectedError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, source)
		})
	}
}

func TestTokenResolverResolveToken(testInstance *testing.T) {
	environment := map[string]string{"JIRA_API_TOKEN": " token-from-env ", "BLANK": "   "}
	files := map[string]string{"/secrets/jira": "token-from-file\n", "/secrets/empty": "\n"}

	tokenResolver := jira.NewTokenResolver(
		func(key string) (string, bool) {
			value, exists := environment[key]
			return value, exists
		},
		func(path string) ([]byte, error) {
			contents, exists := files[path]
			if !exists {
				return nil, errors.New("no such file")
			}
			return []byte(contents), nil
		},
	)

	testCases := []struct {
		name          string
		source        jira.TokenSource
		expectedToken string
		errorContains string
	}{
		{name: "environment", source: jira.TokenSource{Type: jira.TokenSourceTypeEnvironment, Reference: "JIRA_API_TOKEN"}, expectedToken: "token-from-env"},
		{name: "environment_missing", source: jira.TokenSource{Type: jira.TokenSourceTypeEnvironment, Reference: "UNSET"}, errorContains: "UNSET"},
		{name: "environment_blank", source: jira.TokenSource{Type: jira.TokenSourceTypeEnvironment, Reference: "BLANK"}, errorContains: "BLANK"},
		{name: "file", source: jira.TokenSource{Type: jira.TokenSourceTypeFile, Reference: "/secrets/jira"}, expectedToken: "token-from-file"},
		{name: "file_empty", source: jira.TokenSource{Type: jira.TokenSourceTypeFile, Reference: "/secrets/empty"}, errorContains: "yielded no token"},
		{name: "file_missing", source: jira.TokenSource{Type: jira.TokenSourceTypeFile, Reference: "/secrets/missing"}, errorContains: "no such file"},
		{name: "unsupported", source: jira.TokenSource{Type: jira.TokenSourceType("vault")}, errorContains: "unsupported"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			token, resolveError := tokenResolver.ResolveToken(context.Background(), testCase.source)
			if len(testCase.errorContains) > 0 {
				require.ErrorContains(testInstance, resolveError, testCase.errorContains)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}

func TestParseTokenSourceEmptyIsSentinel(testInstance *testing.T) {
	_, parseError := jira.ParseTokenSource("")
	require.ErrorIs(testInstance, parseError, jira.ErrTokenSourceEmpty)

	source, sourceError := jira.ParseTokenSource("env:JIRA_API_TOKEN")
	require.NoError(testInstance, sourceError)
	require.Equal(testInstance, "env:JIRA_API_TOKEN", source.String())
}

func TestTokenResolverExpandsHomeDirectory(testInstance *testing.T) {
	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)
	require.NoError(testInstance, os.WriteFile(filepath.Join(homeDirectory, ".jira-token"), []byte("home-token\n"), 0o600))

	source, parseError := jira.ParseTokenSource("file:~/.jira-token")
	require.NoError(testInstance, parseError)

	token, resolveError := jira.NewTokenResolver(nil, nil).ResolveToken(context.Background(), source)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, "home-token", token)
}

func TestTokenResolverHonoursCancelledContext(testInstance *testing.T) {
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	tokenResolver := jira.NewTokenResolver(func(string) (string, bool) { return "token", true }, nil)
	_, resolveError := tokenResolver.ResolveToken(cancelledContext, jira.TokenSource{Type: jira.TokenSourceTypeEnvironment, Reference: "ANY"})
	require.ErrorIs(testInstance, resolveError, context.Canceled)
}
