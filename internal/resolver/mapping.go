package resolver

import (
	"fmt"
	"strings"
)

// PrefixVariant selects which prefix table is used for story and task issues.
type PrefixVariant string

// Supported prefix variants.
const (
	PrefixVariantCurrent PrefixVariant = PrefixVariant(prefixVariantCurrentValueConstant)
	PrefixVariantLegacy  PrefixVariant = PrefixVariant(prefixVariantLegacyValueConstant)
)

// PrefixVariantChoices lists the accepted prefix variant values, default first.
func PrefixVariantChoices() []string {
	return []string{string(PrefixVariantCurrent), string(PrefixVariantLegacy)}
}

// ParsePrefixVariant interprets a textual prefix variant. Empty input selects the current variant.
func ParsePrefixVariant(value string) (PrefixVariant, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", prefixVariantCurrentValueConstant:
		return PrefixVariantCurrent, nil
	case prefixVariantLegacyValueConstant:
		return PrefixVariantLegacy, nil
	default:
		return "", fmt.Errorf(unsupportedPrefixVariantTemplateConstant, value)
	}
}

var defaultCategoryTable = map[string]string{
	"epic": "feature",
	"task": "feature",
	"bug":  "bugfix",
}

var prefixTables = map[PrefixVariant]map[string]string{
	PrefixVariantCurrent: {
		"epic":  "master",
		"bug":   "master",
		"story": "master",
		"task":  "master",
	},
	PrefixVariantLegacy: {
		"epic":  "master",
		"bug":   "master",
		"story": "dev",
		"task":  "dev",
	},
}

// MappingOptions configures TypeMapping construction.
type MappingOptions struct {
	PrefixVariant     PrefixVariant
	CategoryOverrides map[string]string
	PrefixOverrides   map[string]string
}

// TypeMapping translates issue type names into branch categories and prefixes.
// Lookups are case-insensitive. The tables are never mutated after construction.
type TypeMapping struct {
	categories map[string]string
	prefixes   map[string]string
}

// NewTypeMapping builds the category and prefix tables for the selected variant and applies overrides.
func NewTypeMapping(options MappingOptions) (TypeMapping, error) {
	variant := options.PrefixVariant
	if len(variant) == 0 {
		variant = PrefixVariantCurrent
	}

	prefixTable, variantKnown := prefixTables[variant]
	if !variantKnown {
		return TypeMapping{}, fmt.Errorf(unsupportedPrefixVariantTemplateConstant, variant)
	}

	return TypeMapping{
		categories: mergeTables(defaultCategoryTable, options.CategoryOverrides),
		prefixes:   mergeTables(prefixTable, options.PrefixOverrides),
	}, nil
}

// DefaultTypeMapping returns the mapping for the current prefix variant without overrides.
func DefaultTypeMapping() TypeMapping {
	return TypeMapping{
		categories: mergeTables(defaultCategoryTable, nil),
		prefixes:   mergeTables(prefixTables[PrefixVariantCurrent], nil),
	}
}

// Category returns the branch category for the issue type.
func (mapping TypeMapping) Category(issueType string) (string, error) {
	return lookupTable(mapping.categories, issueType, categoryTableNameConstant)
}

// Prefix returns the branch prefix for the issue type.
func (mapping TypeMapping) Prefix(issueType string) (string, error) {
	return lookupTable(mapping.prefixes, issueType, prefixTableNameConstant)
}

func (mapping TypeMapping) isZero() bool {
	return mapping.categories == nil && mapping.prefixes == nil
}

func lookupTable(table map[string]string, issueType string, tableName string) (string, error) {
	value, exists := table[normalizeIssueType(issueType)]
	if !exists {
		return "", UnknownIssueTypeError{IssueType: issueType, Table: tableName}
	}
	return value, nil
}

func mergeTables(base map[string]string, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for issueType, value := range base {
		merged[normalizeIssueType(issueType)] = value
	}
	for issueType, value := range overrides {
		normalizedType := normalizeIssueType(issueType)
		trimmedValue := strings.TrimSpace(value)
		if len(normalizedType) == 0 || len(trimmedValue) == 0 {
			continue
		}
		merged[normalizedType] = trimmedValue
	}
	return merged
}

func normalizeIssueType(issueType string) string {
	return strings.ToLower(strings.TrimSpace(issueType))
}
