// Package jira looks up issues through the Jira REST API.
//
// Client wraps github.com/andygrunwald/go-jira, requesting only the summary,
// issue type and parent link fields of one issue at a time, and translates
// Jira error payloads into resolver.LookupError values. API tokens are read
// from environment variables or files through TokenResolver.
package jira
