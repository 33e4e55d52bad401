package branchname

import (
	"strings"

	"github.com/temirov/brancho/internal/resolver"
)

const defaultSlugSeparatorConstant = "-"

// CommandConfiguration captures configuration values for the jira branch name command.
type CommandConfiguration struct {
	PrefixVariant  string            `mapstructure:"prefix_variant"`
	Checkout       bool              `mapstructure:"checkout"`
	DryRun         bool              `mapstructure:"dry_run"`
	RepositoryPath string            `mapstructure:"repository"`
	SlugSeparator  string            `mapstructure:"slug_separator"`
	Categories     map[string]string `mapstructure:"categories"`
	Prefixes       map[string]string `mapstructure:"prefixes"`
}

// DefaultCommandConfiguration provides baseline configuration values for the command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		PrefixVariant:  string(resolver.PrefixVariantCurrent),
		RepositoryPath: ".",
		SlugSeparator:  defaultSlugSeparatorConstant,
	}
}

// DefaultConfigurationValues returns Viper defaults rooted at the provided key.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + ".prefix_variant": defaults.PrefixVariant,
		rootKey + ".checkout":       defaults.Checkout,
		rootKey + ".dry_run":        defaults.DryRun,
		rootKey + ".repository":     defaults.RepositoryPath,
		rootKey + ".slug_separator": defaults.SlugSeparator,
	}
}

// Sanitize trims configuration values and restores defaults for empty scalars.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.PrefixVariant = strings.ToLower(strings.TrimSpace(configuration.PrefixVariant))
	if len(sanitized.PrefixVariant) == 0 {
		sanitized.PrefixVariant = defaults.PrefixVariant
	}

	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaults.RepositoryPath
	}

	if len(configuration.SlugSeparator) == 0 {
		sanitized.SlugSeparator = defaults.SlugSeparator
	}

	return sanitized
}
