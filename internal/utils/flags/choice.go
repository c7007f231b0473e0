// Package flags formats usage text for command-line flags.
package flags

import (
	"fmt"
	"strings"
)

const (
	choiceListOpenConstant       = "<"
	choiceListCloseConstant      = ">"
	choiceListSeparatorConstant  = "|"
	choiceUsageTemplateConstant  = "`%s`"
	choiceUsageDescribedConstant = "`%s` %s"
)

// FormatChoiceUsage renders a usage string listing choices with the default one upper-cased.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	choiceList := choiceListOpenConstant + strings.Join(displayChoices(defaultChoice, choices), choiceListSeparatorConstant) + choiceListCloseConstant
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageTemplateConstant, choiceList)
	}
	return fmt.Sprintf(choiceUsageDescribedConstant, choiceList, trimmedDescription)
}

// ValidateChoice reports whether candidate is one of choices, ignoring case.
func ValidateChoice(candidate string, choices []string) bool {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	for _, choice := range choices {
		if strings.ToLower(strings.TrimSpace(choice)) == normalizedCandidate {
			return true
		}
	}
	return false
}

func displayChoices(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	seenChoices := make(map[string]struct{}, len(choices))
	displayed := make([]string, 0, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, seen := seenChoices[normalizedChoice]; seen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		displayed = append(displayed, trimmedChoice)
	}
	return displayed
}
