package types

// NotificationPreferences controls the webhook-driven email alert gate.
type NotificationPreferences struct {
	EmailEnabled      bool     `json:"email_enabled"`
	SignalTypes       []string `json:"signal_types"`
	PriorityThreshold string   `json:"priority_threshold"`
}

// DefaultNotificationPreferences applies when a user has none stored.
func DefaultNotificationPreferences() NotificationPreferences {
	signalTypes := make([]string, len(SignalTypes))
	copy(signalTypes, SignalTypes)

	return NotificationPreferences{
		EmailEnabled:      true,
		SignalTypes:       signalTypes,
		PriorityThreshold: PriorityHigh,
	}
}
