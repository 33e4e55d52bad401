// Package checkout switches a git repository to a resolved branch name.
package checkout
