package jira

import (
	"strings"
	"time"
)

const (
	// StandardParentFieldConstant selects the built-in fields.parent object instead of a custom field.
	StandardParentFieldConstant = "parent"
	// EpicLinkFieldConstant is the custom field Jira Cloud uses for epic links.
	EpicLinkFieldConstant  = "customfield_10008"
	defaultTimeoutConstant = 15 * time.Second
)

// Configuration captures Jira connection settings.
type Configuration struct {
	BaseURL      string        `mapstructure:"base_url"`
	Username     string        `mapstructure:"username"`
	Token        string        `mapstructure:"token"`
	ParentFields []string      `mapstructure:"parent_fields"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// DefaultConfiguration provides baseline Jira connection settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		ParentFields: []string{EpicLinkFieldConstant},
		Timeout:      defaultTimeoutConstant,
	}
}

// DefaultConfigurationValues returns Viper defaults rooted at the provided key.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		rootKey + ".base_url":      defaults.BaseURL,
		rootKey + ".username":      defaults.Username,
		rootKey + ".token":         defaults.Token,
		rootKey + ".parent_fields": defaults.ParentFields,
		rootKey + ".timeout":       defaults.Timeout,
	}
}

// Sanitize trims configuration values and restores defaults for empty parent fields and timeouts.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	sanitized.Username = strings.TrimSpace(configuration.Username)
	sanitized.Token = strings.TrimSpace(configuration.Token)
	sanitized.ParentFields = sanitizeFieldNames(configuration.ParentFields)
	if len(sanitized.ParentFields) == 0 {
		sanitized.ParentFields = DefaultConfiguration().ParentFields
	}
	if sanitized.Timeout <= 0 {
		sanitized.Timeout = defaultTimeoutConstant
	}
	return sanitized
}

func sanitizeFieldNames(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
