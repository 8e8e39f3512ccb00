package types

// Signal types recognized by the scrapers and the automation layer.
const (
	SignalHiring           = "hiring"
	SignalFunding          = "funding"
	SignalExpansion        = "expansion"
	SignalPartnership      = "partnership"
	SignalProductLaunch    = "product_launch"
	SignalLeadershipChange = "leadership_change"
)

var SignalTypes = []string{
	SignalHiring,
	SignalFunding,
	SignalExpansion,
	SignalPartnership,
	SignalProductLaunch,
	SignalLeadershipChange,
}

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}

const (
	StatusNew       = "new"
	StatusReviewed  = "reviewed"
	StatusContacted = "contacted"
	StatusArchived  = "archived"
)

var SignalStatuses = []string{StatusNew, StatusReviewed, StatusContacted, StatusArchived}

var signalTypeLabels = map[string]string{
	SignalHiring:           "Hiring Surge",
	SignalFunding:          "Funding Round",
	SignalExpansion:        "Expansion",
	SignalPartnership:      "Partnership",
	SignalProductLaunch:    "Product Launch",
	SignalLeadershipChange: "Leadership Change",
}

// SignalTypeLabel returns the human-readable label used in CRM notes and alerts.
func SignalTypeLabel(signalType string) string {
	if label, ok := signalTypeLabels[signalType]; ok {
		return label
	}
	return signalType
}

func IsValidSignalType(value string) bool {
	for _, t := range SignalTypes {
		if t == value {
			return true
		}
	}
	return false
}

func IsValidPriority(value string) bool {
	for _, p := range Priorities {
		if p == value {
			return true
		}
	}
	return false
}

func IsValidSignalStatus(value string) bool {
	for _, s := range SignalStatuses {
		if s == value {
			return true
		}
	}
	return false
}
