package automation

import (
	"strings"

	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

// MatchesConditions reports whether a signal satisfies a rule's trigger
// conditions: conjunctive across populated dimensions, disjunctive within
// each. Empty dimensions match anything, so a rule with no conditions matches
// every signal. Pure; no I/O.
func MatchesConditions(signal *models.Signal, conditions types.TriggerConditions) bool {
	if len(conditions.SignalTypes) > 0 && !containsString(conditions.SignalTypes, signal.SignalType) {
		return false
	}

	if len(conditions.Priorities) > 0 && !containsString(conditions.Priorities, signal.Priority) {
		return false
	}

	if len(conditions.Keywords) > 0 {
		haystack := strings.ToLower(signal.Title + " " + signal.Summary)
		if !anySubstring(haystack, conditions.Keywords) {
			return false
		}
	}

	if len(conditions.Companies) > 0 {
		name := strings.ToLower(signal.CompanyName)
		domain := strings.ToLower(signal.CompanyDomain)

		matched := false
		for _, company := range conditions.Companies {
			needle := strings.ToLower(company)
			if needle == "" {
				continue
			}
			if strings.Contains(name, needle) || (domain != "" && strings.Contains(domain, needle)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

func containsString(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}

func anySubstring(haystack string, needles []string) bool {
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}
