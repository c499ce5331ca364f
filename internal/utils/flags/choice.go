package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choicePlaceholderPrefix     = "<"
	choicePlaceholderSuffix     = ">"
	choiceSeparatorLiteral      = "|"
	choiceUsageEmptyTemplate    = "`%s`"
	choiceUsageFullTemplate     = "`%s` %s"
	choiceParseErrorTemplate    = "invalid value %q (expected one of %s)"
	choiceListSeparatorConstant = ", "
	choiceValueTypeConstant     = "string"
)

// AddChoiceFlag registers a string flag restricted to the provided choices, compared case-insensitively.
func AddChoiceFlag(flagSet *pflag.FlagSet, target *string, name string, defaultChoice string, choices []string, description string) {
	if flagSet == nil || len(name) == 0 {
		return
	}
	flagSet.Var(newChoiceFlagValue(defaultChoice, choices, target), name, FormatChoiceUsage(defaultChoice, choices, description))
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	for _, normalizedChoice := range uniqueChoices(choices) {
		displayValue := normalizedChoice
		if normalizedChoice == normalizedDefault {
			displayValue = strings.ToUpper(normalizedChoice)
		}
		highlighted = append(highlighted, displayValue)
	}
	return highlighted
}

func uniqueChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}
		unique = append(unique, normalizedChoice)
	}
	return unique
}

type choiceFlagValue struct {
	choices []string
	target  *string
	current string
}

func newChoiceFlagValue(defaultChoice string, choices []string, target *string) *choiceFlagValue {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	if target != nil {
		*target = normalizedDefault
	}
	return &choiceFlagValue{choices: uniqueChoices(choices), target: target, current: normalizedDefault}
}

func (value *choiceFlagValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	for _, choice := range value.choices {
		if choice != normalizedValue {
			continue
		}
		value.current = normalizedValue
		if value.target != nil {
			*value.target = normalizedValue
		}
		return nil
	}
	return fmt.Errorf(choiceParseErrorTemplate, rawValue, strings.Join(value.choices, choiceListSeparatorConstant))
}

func (value *choiceFlagValue) String() string {
	if value == nil {
		return ""
	}
	return value.current
}

func (value *choiceFlagValue) Type() string {
	return choiceValueTypeConstant
}
