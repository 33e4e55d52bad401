// Package slug converts issue keys and summaries into branch-safe tokens.
package slug
