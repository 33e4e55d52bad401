package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	issueKeyRequiredMessageConstant          = "issue key must be provided"
	issueLookupMissingMessageConstant        = "issue lookup not configured"
	textFilterMissingMessageConstant         = "text filter not configured"
	lookupFailedTemplateConstant             = "lookup of issue %s failed: %s"
	lookupErrorTemplateConstant              = "issue lookup failed: %s"
	unknownIssueTypeTemplateConstant         = "unknown issue type %q in %s mapping"
	lookupMessagesSeparatorConstant          = "; "
	lookupFailedWithoutMessagesConstant      = "no details returned"
	lookupErrorWithoutMessagesConstant       = "no details returned"
	categoryTableNameConstant                = "category"
	prefixTableNameConstant                  = "prefix"
	branchNameTemplateConstant               = "%s/%s%s/%s-%s"
	parentSegmentTemplateConstant            = "%s/"
	prefixVariantCurrentValueConstant        = "current"
	prefixVariantLegacyValueConstant         = "legacy"
	unsupportedPrefixVariantTemplateConstant = "unsupported prefix variant %q"
)

// ErrIssueKeyRequired indicates Resolve received an empty issue key.
var ErrIssueKeyRequired = errors.New(issueKeyRequiredMessageConstant)

// ErrIssueLookupNotConfigured indicates the resolver was constructed without an issue lookup.
var ErrIssueLookupNotConfigured = errors.New(issueLookupMissingMessageConstant)

// ErrTextFilterNotConfigured indicates the resolver was constructed without a text filter.
var ErrTextFilterNotConfigured = errors.New(textFilterMissingMessageConstant)

// IssueRecord describes a fetched issue.
type IssueRecord struct {
	Key           string
	IssueTypeName string
	Summary       string
	// ParentKey is nil when the issue carries no parent link.
	ParentKey *string
}

// Parent returns the parent key and whether the issue references a parent.
func (record IssueRecord) Parent() (string, bool) {
	if record.ParentKey == nil {
		return "", false
	}
	return *record.ParentKey, true
}

// IssueLookup fetches a single issue by key.
type IssueLookup interface {
	FetchIssue(lookupContext context.Context, issueKey string) (IssueRecord, error)
}

// TextFilter converts free text into a token safe for branch names.
type TextFilter interface {
	Slug(text string) string
}

// LookupError is returned by IssueLookup implementations when the tracker answers with error messages.
type LookupError struct {
	Messages []string
	Cause    error
}

// Error joins the upstream messages.
func (lookupError LookupError) Error() string {
	if len(lookupError.Messages) == 0 {
		return fmt.Sprintf(lookupErrorTemplateConstant, lookupErrorWithoutMessagesConstant)
	}
	return fmt.Sprintf(lookupErrorTemplateConstant, strings.Join(lookupError.Messages, lookupMessagesSeparatorConstant))
}

// Unwrap exposes the transport error, if any.
func (lookupError LookupError) Unwrap() error {
	return lookupError.Cause
}

// LookupFailedError reports that fetching the primary or parent issue failed.
type LookupFailedError struct {
	IssueKey string
	Messages []string
	Cause    error
}

// Error describes the failed lookup.
func (failure LookupFailedError) Error() string {
	details := lookupFailedWithoutMessagesConstant
	if len(failure.Messages) > 0 {
		details = strings.Join(failure.Messages, lookupMessagesSeparatorConstant)
	}
	return fmt.Sprintf(lookupFailedTemplateConstant, failure.IssueKey, details)
}

// Unwrap exposes the lookup error.
func (failure LookupFailedError) Unwrap() error {
	return failure.Cause
}

// UnknownIssueTypeError reports an issue type absent from a mapping table.
type UnknownIssueTypeError struct {
	IssueType string
	Table     string
}

// Error describes the unmapped type.
func (unknownType UnknownIssueTypeError) Error() string {
	return fmt.Sprintf(unknownIssueTypeTemplateConstant, unknownType.IssueType, unknownType.Table)
}

// Resolution captures a resolved branch name and the inputs that produced it.
type Resolution struct {
	BranchName string
	Category   string
	Prefix     string
	Issue      IssueRecord
	Parent     *IssueRecord
}
