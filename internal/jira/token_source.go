package jira

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenSourceSeparatorConstant            = ":"
	homeDirectoryPrefixConstant             = "~/"
	environmentTokenSourceTypeValueConstant = "env"
	fileTokenSourceTypeValueConstant        = "file"
	tokenSourceEmptyMessageConstant         = "token source must be provided"
	tokenReferenceEmptyTemplateConstant     = "%s token source requires a reference"
	tokenNotFoundTemplateConstant           = "%s token source %s yielded no token"
	tokenReadErrorTemplateConstant          = "unable to read %s token source %s: %w"
	unsupportedTokenSourceTemplateConstant  = "unsupported token source type %q"
)

// ErrTokenSourceEmpty indicates the configured token source was blank.
var ErrTokenSourceEmpty = errors.New(tokenSourceEmptyMessageConstant)

// TokenSourceType names where a token is read from.
type TokenSourceType string

// Supported token source types.
const (
	TokenSourceTypeEnvironment TokenSourceType = TokenSourceType(environmentTokenSourceTypeValueConstant)
	TokenSourceTypeFile        TokenSourceType = TokenSourceType(fileTokenSourceTypeValueConstant)
)

// TokenSource is a parsed jira.token value: an environment variable name or a file path.
type TokenSource struct {
	Type      TokenSourceType
	Reference string
}

// String renders the source in its configuration syntax. It never contains the token itself.
func (source TokenSource) String() string {
	return string(source.Type) + tokenSourceSeparatorConstant + source.Reference
}

// ParseTokenSource interprets "env:NAME", "file:/path" (a leading ~/ is the home directory)
// or a bare environment variable name.
func ParseTokenSource(sourceValue string) (TokenSource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return TokenSource{}, ErrTokenSourceEmpty
	}

	sourceType, reference, hasType := strings.Cut(trimmedValue, tokenSourceSeparatorConstant)
	if !hasType {
		return TokenSource{Type: TokenSourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	source := TokenSource{
		Type:      TokenSourceType(strings.ToLower(strings.TrimSpace(sourceType))),
		Reference: strings.TrimSpace(reference),
	}
	if source.Type != TokenSourceTypeEnvironment && source.Type != TokenSourceTypeFile {
		return TokenSource{}, fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}
	if len(source.Reference) == 0 {
		return TokenSource{}, fmt.Errorf(tokenReferenceEmptyTemplateConstant, source.Type)
	}
	return source, nil
}

// TokenResolver reads the token a TokenSource points at.
type TokenResolver interface {
	ResolveToken(resolutionContext context.Context, source TokenSource) (string, error)
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// NewTokenResolver creates a resolver over the given lookups. Nil lookups select the process environment and filesystem.
func NewTokenResolver(environmentLookup EnvironmentLookup, fileReader FileReader) TokenResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}

	return tokenResolver{
		TokenSourceTypeEnvironment: func(reference string) (string, bool, error) {
			value, found := environmentLookup(reference)
			return value, found, nil
		},
		TokenSourceTypeFile: func(reference string) (string, bool, error) {
			contents, readError := fileReader(expandHomeDirectory(reference))
			if readError != nil {
				return "", false, readError
			}
			return string(contents), true, nil
		},
	}
}

type tokenReader func(reference string) (string, bool, error)

type tokenResolver map[TokenSourceType]tokenReader

func (readers tokenResolver) ResolveToken(resolutionContext context.Context, source TokenSource) (string, error) {
	if contextError := resolutionContext.Err(); contextError != nil {
		return "", contextError
	}

	read, supported := readers[source.Type]
	if !supported {
		return "", fmt.Errorf(unsupportedTokenSourceTemplateConstant, source.Type)
	}

	value, found, readError := read(source.Reference)
	if readError != nil {
		return "", fmt.Errorf(tokenReadErrorTemplateConstant, source.Type, source.Reference, readError)
	}

	token := strings.TrimSpace(value)
	if !found || len(token) == 0 {
		return "", fmt.Errorf(tokenNotFoundTemplateConstant, source.Type, source.Reference)
	}
	return token, nil
}

func expandHomeDirectory(path string) string {
	if !strings.HasPrefix(path, homeDirectoryPrefixConstant) {
		return path
	}
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil || len(homeDirectory) == 0 {
		return path
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(path, homeDirectoryPrefixConstant))
}
