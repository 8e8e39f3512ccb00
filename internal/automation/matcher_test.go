package automation

import (
	"testing"

	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

func testSignal() *models.Signal {
	return &models.Signal{
		CompanyName:   "Northwind Robotics",
		CompanyDomain: "northwindrobotics.com",
		SignalType:    types.SignalFunding,
		Priority:      types.PriorityHigh,
		Title:         "Northwind Robotics raised a Series B",
		Summary:       "The company closed a $25M round led by Example Ventures.",
	}
}

func TestMatchesConditionsEmpty(t *testing.T) {
	t.Parallel()

	if !MatchesConditions(testSignal(), types.TriggerConditions{}) {
		t.Fatal("empty conditions should match every signal")
	}
}

func TestMatchesConditionsSignalType(t *testing.T) {
	t.Parallel()

	signal := testSignal()

	conditions := types.TriggerConditions{SignalTypes: []string{types.SignalFunding, types.SignalHiring}}
	if !MatchesConditions(signal, conditions) {
		t.Error("expected funding signal to match funding/hiring filter")
	}

	conditions = types.TriggerConditions{SignalTypes: []string{types.SignalExpansion}}
	if MatchesConditions(signal, conditions) {
		t.Error("expected funding signal not to match expansion filter")
	}
}

func TestMatchesConditionsPriority(t *testing.T) {
	t.Parallel()

	signal := testSignal()

	if !MatchesConditions(signal, types.TriggerConditions{Priorities: []string{types.PriorityHigh}}) {
		t.Error("expected high priority signal to match high filter")
	}

	if MatchesConditions(signal, types.TriggerConditions{Priorities: []string{types.PriorityLow}}) {
		t.Error("expected high priority signal not to match low filter")
	}
}

func TestMatchesConditionsKeywords(t *testing.T) {
	t.Parallel()

	signal := testSignal()

	// Case-insensitive substring across title and summary.
	if !MatchesConditions(signal, types.TriggerConditions{Keywords: []string{"SERIES B"}}) {
		t.Error("expected keyword match to be case-insensitive")
	}

	if !MatchesConditions(signal, types.TriggerConditions{Keywords: []string{"nomatch", "ventures"}}) {
		t.Error("expected any keyword hit to satisfy the dimension")
	}

	if MatchesConditions(signal, types.TriggerConditions{Keywords: []string{"acquisition"}}) {
		t.Error("expected no match when no keyword appears")
	}

	// Blank keywords are skipped, not treated as match-all.
	if MatchesConditions(signal, types.TriggerConditions{Keywords: []string{""}}) {
		t.Error("expected blank keyword to be ignored")
	}
}

func TestMatchesConditionsCompanies(t *testing.T) {
	t.Parallel()

	signal := testSignal()

	if !MatchesConditions(signal, types.TriggerConditions{Companies: []string{"northwind"}}) {
		t.Error("expected partial company name match")
	}

	if !MatchesConditions(signal, types.TriggerConditions{Companies: []string{"northwindrobotics.com"}}) {
		t.Error("expected company domain match")
	}

	if MatchesConditions(signal, types.TriggerConditions{Companies: []string{"acme"}}) {
		t.Error("expected no match for unrelated company")
	}
}

func TestMatchesConditionsConjunctive(t *testing.T) {
	t.Parallel()

	signal := testSignal()

	conditions := types.TriggerConditions{
		SignalTypes: []string{types.SignalFunding},
		Priorities:  []string{types.PriorityHigh},
		Keywords:    []string{"series"},
		Companies:   []string{"northwind"},
	}

	if !MatchesConditions(signal, conditions) {
		t.Fatal("expected signal to satisfy all dimensions")
	}

	conditions.Priorities = []string{types.PriorityLow}
	if MatchesConditions(signal, conditions) {
		t.Fatal("one failing dimension should reject the signal")
	}
}
