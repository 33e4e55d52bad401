package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	gojira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"

	"github.com/temirov/brancho/internal/resolver"
)

const (
	baseURLRequiredMessageConstant       = "jira base url must be provided"
	clientCreationErrorTemplateConstant  = "cannot create Jira client: %w"
	tokenResolutionErrorTemplateConstant = "unable to resolve Jira API token: %w"
	tokenRequiredMessageConstant         = "jira token source must be provided when a username is configured"
	emptyFieldsMessageConstant           = "issue %s returned no fields"
	summaryFieldConstant                 = "summary"
	issueTypeFieldConstant               = "issuetype"
	fieldListSeparatorConstant           = ","
	errorEntryTemplateConstant           = "%s: %s"
	objectKeyMemberConstant              = "key"
	fetchStartedMessageConstant          = "fetching jira issue"
	fetchCompletedMessageConstant        = "fetched jira issue"
	fetchFailedMessageConstant           = "jira issue lookup failed"
	logFieldIssueKeyConstant             = "issue_key"
	logFieldIssueTypeConstant            = "issue_type"
	logFieldParentKeyConstant            = "parent_key"
	logFieldRequestedFieldsConstant      = "requested_fields"
	logFieldMessagesConstant             = "messages"
	logFieldBaseURLConstant              = "base_url"
	logFieldAuthenticatedConstant        = "authenticated"
	clientCreatedMessageConstant         = "jira client configured"
)

// ErrBaseURLRequired indicates the configuration lacks a Jira base URL.
var ErrBaseURLRequired = errors.New(baseURLRequiredMessageConstant)

// ErrTokenRequired indicates basic authentication was requested without a token source.
var ErrTokenRequired = errors.New(tokenRequiredMessageConstant)

// ClientDependencies enumerates optional collaborators of the Jira client.
type ClientDependencies struct {
	TokenResolver TokenResolver
	Transport     http.RoundTripper
}

// Client fetches issues from the Jira REST API.
type Client struct {
	client          *gojira.Client
	logger          *zap.Logger
	parentFields    []string
	requestedFields string
}

// NewClient builds a Jira client from configuration. Basic authentication is used when a username is set.
func NewClient(clientContext context.Context, logger *zap.Logger, configuration Configuration, dependencies ClientDependencies) (*Client, error) {
	sanitized := configuration.Sanitize()
	if len(sanitized.BaseURL) == 0 {
		return nil, ErrBaseURLRequired
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient, httpClientError := buildHTTPClient(clientContext, sanitized, dependencies)
	if httpClientError != nil {
		return nil, httpClientError
	}

	jiraClient, creationError := gojira.NewClient(httpClient, sanitized.BaseURL)
	if creationError != nil {
		return nil, fmt.Errorf(clientCreationErrorTemplateConstant, creationError)
	}

	logger.Debug(
		clientCreatedMessageConstant,
		zap.String(logFieldBaseURLConstant, sanitized.BaseURL),
		zap.Bool(logFieldAuthenticatedConstant, len(sanitized.Username) > 0),
	)

	return &Client{
		client:          jiraClient,
		logger:          logger,
		parentFields:    sanitized.ParentFields,
		requestedFields: buildRequestedFields(sanitized.ParentFields),
	}, nil
}

func buildHTTPClient(clientContext context.Context, configuration Configuration, dependencies ClientDependencies) (*http.Client, error) {
	if len(configuration.Username) == 0 {
		return &http.Client{Transport: dependencies.Transport, Timeout: configuration.Timeout}, nil
	}

	if len(configuration.Token) == 0 {
		return nil, ErrTokenRequired
	}

	tokenSource, parseError := ParseTokenSource(configuration.Token)
	if parseError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, parseError)
	}

	tokenResolver := dependencies.TokenResolver
	if tokenResolver == nil {
		tokenResolver = NewTokenResolver(nil, nil)
	}

	apiToken, resolveError := tokenResolver.ResolveToken(clientContext, tokenSource)
	if resolveError != nil {
		return nil, fmt.Errorf(tokenResolutionErrorTemplateConstant, resolveError)
	}

	transport := gojira.BasicAuthTransport{
		Username:  configuration.Username,
		Password:  apiToken,
		Transport: dependencies.Transport,
	}
	httpClient := transport.Client()
	httpClient.Timeout = configuration.Timeout
	return httpClient, nil
}

func buildRequestedFields(parentFields []string) string {
	fields := []string{summaryFieldConstant, issueTypeFieldConstant}
	fields = append(fields, parentFields...)
	return strings.Join(fields, fieldListSeparatorConstant)
}

// FetchIssue retrieves the summary, type and parent link of a single issue.
func (client *Client) FetchIssue(lookupContext context.Context, issueKey string) (resolver.IssueRecord, error) {
	client.logger.Debug(
		fetchStartedMessageConstant,
		zap.String(logFieldIssueKeyConstant, issueKey),
		zap.String(logFieldRequestedFieldsConstant, client.requestedFields),
	)

	issue, _, fetchError := client.client.Issue.GetWithContext(lookupContext, issueKey, &gojira.GetQueryOptions{Fields: client.requestedFields})
	if fetchError != nil {
		lookupError := newLookupError(fetchError)
		client.logger.Debug(
			fetchFailedMessageConstant,
			zap.String(logFieldIssueKeyConstant, issueKey),
			zap.Strings(logFieldMessagesConstant, lookupError.Messages),
		)
		return resolver.IssueRecord{}, lookupError
	}

	if issue == nil || issue.Fields == nil {
		return resolver.IssueRecord{}, resolver.LookupError{Messages: []string{fmt.Sprintf(emptyFieldsMessageConstant, issueKey)}}
	}

	resolvedKey := strings.TrimSpace(issue.Key)
	if len(resolvedKey) == 0 {
		resolvedKey = issueKey
	}

	record := resolver.IssueRecord{
		Key:           resolvedKey,
		IssueTypeName: issue.Fields.Type.Name,
		Summary:       issue.Fields.Summary,
		ParentKey:     client.extractParentKey(issue.Fields),
	}

	parentKey, _ := record.Parent()
	client.logger.Debug(
		fetchCompletedMessageConstant,
		zap.String(logFieldIssueKeyConstant, record.Key),
		zap.String(logFieldIssueTypeConstant, record.IssueTypeName),
		zap.String(logFieldParentKeyConstant, parentKey),
	)

	return record, nil
}

func (client *Client) extractParentKey(fields *gojira.IssueFields) *string {
	for _, fieldName := range client.parentFields {
		var candidate string
		if fieldName == StandardParentFieldConstant {
			if fields.Parent != nil {
				candidate = fields.Parent.Key
			}
		} else {
			candidate = parentKeyFromValue(fields.Unknowns[fieldName])
		}

		trimmedCandidate := strings.TrimSpace(candidate)
		if len(trimmedCandidate) > 0 {
			return &trimmedCandidate
		}
	}
	return nil
}

func parentKeyFromValue(value any) string {
	switch typedValue := value.(type) {
	case string:
		return typedValue
	case map[string]any:
		if key, isString := typedValue[objectKeyMemberConstant].(string); isString {
			return key
		}
	}
	return ""
}

func newLookupError(fetchError error) resolver.LookupError {
	var jiraError *gojira.Error
	if errors.As(fetchError, &jiraError) {
		messages := make([]string, 0, len(jiraError.ErrorMessages)+len(jiraError.Errors))
		for _, message := range jiraError.ErrorMessages {
			trimmedMessage := strings.TrimSpace(message)
			if len(trimmedMessage) > 0 {
				messages = append(messages, trimmedMessage)
			}
		}

		errorFields := make([]string, 0, len(jiraError.Errors))
		for fieldName := range jiraError.Errors {
			errorFields = append(errorFields, fieldName)
		}
		sort.Strings(errorFields)
		for _, fieldName := range errorFields {
			messages = append(messages, fmt.Sprintf(errorEntryTemplateConstant, fieldName, jiraError.Errors[fieldName]))
		}

		if len(messages) > 0 {
			return resolver.LookupError{Messages: messages, Cause: fetchError}
		}
	}

	return resolver.LookupError{Messages: []string{fetchError.Error()}, Cause: fetchError}
}
