// Package resolver turns an issue key into a branch name.
//
// Resolver fetches the issue and, when linked, its parent through an
// IssueLookup, selects the category from the parent's type (falling back to
// the issue's own type) and the prefix from the issue's type via TypeMapping,
// and slugs the keys and summary through a TextFilter. The package performs
// no I/O of its own.
package resolver
