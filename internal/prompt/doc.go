// Package prompt asks the user for an issue key on an interactive terminal.
package prompt
