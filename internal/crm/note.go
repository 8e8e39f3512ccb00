package crm

import (
	"fmt"
	"strings"

	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

func noteTitle(signal *models.Signal) string {
	return fmt.Sprintf("[%s] %s", types.SignalTypeLabel(signal.SignalType), signal.CompanyName)
}

// FormatSignalNote renders the human-readable note body attached to the CRM
// company record.
func FormatSignalNote(signal *models.Signal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Buying signal detected: %s\n\n", types.SignalTypeLabel(signal.SignalType))
	fmt.Fprintf(&b, "Priority: %s\n", strings.ToUpper(signal.Priority))
	fmt.Fprintf(&b, "Title: %s\n", signal.Title)

	if signal.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", signal.Summary)
	}

	if signal.SourceName != "" {
		source := signal.SourceName
		if signal.SourceURL != "" {
			source = fmt.Sprintf("%s (%s)", signal.SourceName, signal.SourceURL)
		}
		fmt.Fprintf(&b, "Source: %s\n", source)
	}

	fmt.Fprintf(&b, "Detected at: %s\n", signal.DetectedAt.Format("2006-01-02 15:04 UTC"))

	meta := signal.MetadataMap()
	if meta == nil {
		return b.String()
	}

	if amount, ok := meta["funding_amount"].(string); ok && amount != "" {
		fmt.Fprintf(&b, "Funding amount: %s\n", amount)
	}

	if location, ok := meta["location"].(string); ok && location != "" {
		fmt.Fprintf(&b, "Location: %s\n", location)
	}

	if rawTitles, ok := meta["job_titles"].([]any); ok && len(rawTitles) > 0 {
		titles := make([]string, 0, len(rawTitles))
		for _, raw := range rawTitles {
			if title, ok := raw.(string); ok {
				titles = append(titles, title)
			}
		}
		if len(titles) > 0 {
			fmt.Fprintf(&b, "Roles being hired: %s\n", strings.Join(titles, ", "))
		}
	}

	return b.String()
}
