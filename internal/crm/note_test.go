package crm

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

func noteSignal(t *testing.T, metadata map[string]any) *models.Signal {
	t.Helper()

	signal := &models.Signal{
		CompanyName:   "Northwind Robotics",
		CompanyDomain: "northwindrobotics.com",
		SignalType:    types.SignalFunding,
		Priority:      types.PriorityHigh,
		Title:         "Northwind Robotics raised a Series B",
		Summary:       "Closed a $25M round.",
		SourceName:    "Crunchbase",
		SourceURL:     "https://crunchbase.com/funding",
		DetectedAt:    time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC),
	}

	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			t.Fatalf("marshal metadata: %v", err)
		}
		signal.Metadata = data
	}

	return signal
}

func TestNoteTitle(t *testing.T) {
	t.Parallel()

	got := noteTitle(noteSignal(t, nil))
	if got != "[Funding Round] Northwind Robotics" {
		t.Errorf("noteTitle = %q", got)
	}
}

func TestFormatSignalNote(t *testing.T) {
	t.Parallel()

	body := FormatSignalNote(noteSignal(t, map[string]any{
		"funding_amount": "$25M",
		"location":       "Austin, TX",
		"job_titles":     []string{"VP of Sales", "Account Executive"},
	}))

	wantLines := []string{
		"Buying signal detected: Funding Round",
		"Priority: HIGH",
		"Title: Northwind Robotics raised a Series B",
		"Summary: Closed a $25M round.",
		"Source: Crunchbase (https://crunchbase.com/funding)",
		"Detected at: 2026-08-30 14:05 UTC",
		"Funding amount: $25M",
		"Location: Austin, TX",
		"Roles being hired: VP of Sales, Account Executive",
	}

	for _, line := range wantLines {
		if !strings.Contains(body, line) {
			t.Errorf("note body missing %q\n%s", line, body)
		}
	}
}

func TestFormatSignalNoteOmitsEmptySections(t *testing.T) {
	t.Parallel()

	signal := noteSignal(t, nil)
	signal.Summary = ""
	signal.SourceName = ""
	signal.SourceURL = ""

	body := FormatSignalNote(signal)

	if strings.Contains(body, "Summary:") {
		t.Error("empty summary should be omitted")
	}
	if strings.Contains(body, "Source:") {
		t.Error("empty source should be omitted")
	}
	if !strings.Contains(body, "Detected at:") {
		t.Error("detection timestamp must always be present")
	}
}

func TestApplyFieldMapping(t *testing.T) {
	t.Parallel()

	signal := noteSignal(t, nil)

	extra := applyFieldMapping(signal, FieldMapping{
		"signal_type": "custom_signal_type",
		"priority":    "lead_priority",
		"summary":     "notes",
		"unknown":     "ignored_property",
	})

	if extra["custom_signal_type"] != types.SignalFunding {
		t.Errorf("custom_signal_type = %q", extra["custom_signal_type"])
	}
	if extra["lead_priority"] != types.PriorityHigh {
		t.Errorf("lead_priority = %q", extra["lead_priority"])
	}
	if _, ok := extra["ignored_property"]; ok {
		t.Error("unknown source field should not map")
	}

	if got := applyFieldMapping(signal, nil); got != nil {
		t.Errorf("empty mapping should produce nil, got %v", got)
	}
}
