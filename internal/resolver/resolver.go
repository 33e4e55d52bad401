package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Dependencies enumerates collaborators required by the resolver.
type Dependencies struct {
	Lookup  IssueLookup
	Filter  TextFilter
	Mapping TypeMapping
}

// Resolver derives branch names from issue keys.
type Resolver struct {
	lookup  IssueLookup
	filter  TextFilter
	mapping TypeMapping
}

// NewResolver constructs a Resolver. A zero Mapping selects DefaultTypeMapping.
func NewResolver(dependencies Dependencies) (*Resolver, error) {
	if dependencies.Lookup == nil {
		return nil, ErrIssueLookupNotConfigured
	}
	if dependencies.Filter == nil {
		return nil, ErrTextFilterNotConfigured
	}

	mapping := dependencies.Mapping
	if mapping.isZero() {
		mapping = DefaultTypeMapping()
	}

	return &Resolver{
		lookup:  dependencies.Lookup,
		filter:  dependencies.Filter,
		mapping: mapping,
	}, nil
}

// Resolve fetches the issue and its optional parent and composes the branch name.
func (resolver *Resolver) Resolve(resolutionContext context.Context, issueKey string) (Resolution, error) {
	trimmedIssueKey := strings.TrimSpace(issueKey)
	if len(trimmedIssueKey) == 0 {
		return Resolution{}, ErrIssueKeyRequired
	}

	issue, fetchError := resolver.fetch(resolutionContext, trimmedIssueKey)
	if fetchError != nil {
		return Resolution{}, fetchError
	}

	var parent *IssueRecord
	if parentKey, hasParent := issue.Parent(); hasParent {
		parentIssue, parentFetchError := resolver.fetch(resolutionContext, parentKey)
		if parentFetchError != nil {
			return Resolution{}, parentFetchError
		}
		parent = &parentIssue
	}

	categorySource := issue
	if parent != nil {
		categorySource = *parent
	}

	category, categoryError := resolver.mapping.Category(categorySource.IssueTypeName)
	if categoryError != nil {
		return Resolution{}, categoryError
	}

	prefix, prefixError := resolver.mapping.Prefix(issue.IssueTypeName)
	if prefixError != nil {
		return Resolution{}, prefixError
	}

	parentSegment := ""
	if parent != nil {
		parentSegment = fmt.Sprintf(parentSegmentTemplateConstant, resolver.filter.Slug(parent.Key))
	}

	branchName := fmt.Sprintf(
		branchNameTemplateConstant,
		category,
		parentSegment,
		resolver.filter.Slug(trimmedIssueKey),
		prefix,
		resolver.filter.Slug(issue.Summary),
	)

	return Resolution{
		BranchName: branchName,
		Category:   category,
		Prefix:     prefix,
		Issue:      issue,
		Parent:     parent,
	}, nil
}

func (resolver *Resolver) fetch(resolutionContext context.Context, issueKey string) (IssueRecord, error) {
	record, lookupError := resolver.lookup.FetchIssue(resolutionContext, issueKey)
	if lookupError == nil {
		return record, nil
	}

	var upstreamError LookupError
	if errors.As(lookupError, &upstreamError) && len(upstreamError.Messages) > 0 {
		messages := make([]string, len(upstreamError.Messages))
		copy(messages, upstreamError.Messages)
		return IssueRecord{}, LookupFailedError{IssueKey: issueKey, Messages: messages, Cause: lookupError}
	}

	return IssueRecord{}, LookupFailedError{IssueKey: issueKey, Messages: []string{lookupError.Error()}, Cause: lookupError}
}
