// Package flags provides pflag values and usage helpers shared by Cobra commands.
package flags
