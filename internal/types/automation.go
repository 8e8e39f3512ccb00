package types

// CRM providers. Zoho is accepted by the API but has no working client yet.
const (
	ProviderHubSpot    = "hubspot"
	ProviderSalesforce = "salesforce"
	ProviderPipedrive  = "pipedrive"
	ProviderApollo     = "apollo"
	ProviderAttio      = "attio"
	ProviderZoho       = "zoho"
)

var Providers = []string{
	ProviderHubSpot,
	ProviderSalesforce,
	ProviderPipedrive,
	ProviderApollo,
	ProviderAttio,
	ProviderZoho,
}

func IsValidProvider(value string) bool {
	for _, p := range Providers {
		if p == value {
			return true
		}
	}
	return false
}

const (
	ActionPushToCRM     = "push_to_crm"
	ActionGenerateEmail = "generate_email"
	ActionMarkStatus    = "mark_status"
	ActionNotify        = "notify"
)

var ActionTypes = []string{ActionPushToCRM, ActionGenerateEmail, ActionMarkStatus, ActionNotify}

func IsValidActionType(value string) bool {
	for _, a := range ActionTypes {
		if a == value {
			return true
		}
	}
	return false
}

// TriggerConditions is the matching predicate of an automation rule. Every
// populated dimension must match; an empty dimension matches anything.
type TriggerConditions struct {
	SignalTypes []string `json:"signal_types,omitempty"`
	Priorities  []string `json:"priorities,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Companies   []string `json:"companies,omitempty"`
}

// Action is one effect a rule can cause. Config is user-authored and validated
// per-action at the point of use.
type Action struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}
