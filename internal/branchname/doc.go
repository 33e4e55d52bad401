// Package branchname provides the jira command, which resolves a Jira issue key
// into a branch name and optionally switches the working repository to it.
package branchname
