package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix           = "<"
	choicePlaceholderSuffix           = ">"
	choiceSeparatorLiteral            = "|"
	choiceUsageEmptyTemplate          = "`%s`"
	choiceUsageFullTemplate           = "`%s` %s"
	choiceValueTypeConstant           = "choice"
	unsupportedChoiceTemplateConstant = "unsupported value %q, expected one of %s"
	choiceListSeparatorConstant       = ", "
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := normalizeChoice(defaultChoice)
	highlighted := make([]string, 0, len(choices))
	for _, choice := range uniqueChoices(choices) {
		if normalizeChoice(choice) == normalizedDefault && len(normalizedDefault) > 0 {
			highlighted = append(highlighted, strings.ToUpper(choice))
			continue
		}
		highlighted = append(highlighted, choice)
	}
	return highlighted
}

func uniqueChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := normalizeChoice(trimmedChoice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		unique = append(unique, trimmedChoice)
	}
	return unique
}

func normalizeChoice(choice string) string {
	return strings.ToLower(strings.TrimSpace(choice))
}

// ChoiceValue is a pflag.Value restricted to a fixed set of case-insensitive choices.
type ChoiceValue struct {
	choices []string
	value   string
}

// NewChoiceValue constructs a ChoiceValue initialized to defaultChoice.
func NewChoiceValue(defaultChoice string, choices []string) *ChoiceValue {
	return &ChoiceValue{choices: uniqueChoices(choices), value: normalizeChoice(defaultChoice)}
}

// String returns the selected choice in lower case.
func (choiceValue *ChoiceValue) String() string {
	if choiceValue == nil {
		return ""
	}
	return choiceValue.value
}

// Set validates and stores a choice.
func (choiceValue *ChoiceValue) Set(rawValue string) error {
	normalizedValue := normalizeChoice(rawValue)
	for _, choice := range choiceValue.choices {
		if normalizeChoice(choice) == normalizedValue {
			choiceValue.value = normalizedValue
			return nil
		}
	}
	return fmt.Errorf(unsupportedChoiceTemplateConstant, rawValue, strings.Join(choiceValue.choices, choiceListSeparatorConstant))
}

// Type reports the flag value type shown in help output.
func (choiceValue *ChoiceValue) Type() string {
	return choiceValueTypeConstant
}
