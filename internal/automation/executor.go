package automation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/signalhound-dev/signalhound/internal/crm"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

// ActionResult is the structured outcome of one action execution. Failures
// are data, never panics or errors.
type ActionResult struct {
	ActionType string         `json:"action_type"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// RuleExecution reports one rule that fired against a signal.
type RuleExecution struct {
	RuleID   uint           `json:"rule_id"`
	RuleName string         `json:"rule_name"`
	Results  []ActionResult `json:"results"`
}

// IntegrationSyncResult is one per-integration entry of a push_to_crm action.
type IntegrationSyncResult struct {
	IntegrationID uint   `json:"integration_id"`
	Provider      string `json:"provider"`
	crm.SyncResult
}

type SlackSettings struct {
	AccessToken string
	ChannelID   string
	Enabled     bool
}

// Store is the persistence surface the executor needs.
type Store interface {
	ActiveRules(ctx context.Context, userID uint) ([]models.AutomationRule, error)
	EnabledIntegrations(ctx context.Context, userID uint, provider string) ([]models.CRMIntegration, error)
	UpdateSignalStatus(ctx context.Context, signalID uint, status string) error
	CreateSyncLog(ctx context.Context, entry *models.CRMSyncLog) error
	SlackSettings(ctx context.Context, userID uint) (SlackSettings, error)
}

// CRMSyncer multiplexes syncSignal across a user's integrations.
type CRMSyncer interface {
	SyncSignalToCRM(ctx context.Context, integration models.CRMIntegration, signal *models.Signal) crm.SyncResult
}

// SlackPoster posts a signal alert to the user's Slack channel.
type SlackPoster interface {
	PostSignalAlert(ctx context.Context, token, channel string, signal *models.Signal) error
}

// EmailNotifier delivers the internal signal-alert email.
type EmailNotifier interface {
	SendSignalAlert(ctx context.Context, signal *models.Signal) error
}

// EmailGenerator drafts an AI outreach email for a signal.
type EmailGenerator interface {
	GenerateEmail(ctx context.Context, signalID uint, tone string) (uint, error)
}

// Executor evaluates automation rules against signals and runs their actions.
type Executor struct {
	Store    Store
	CRM      CRMSyncer
	Slack    SlackPoster
	Notify   EmailNotifier
	EmailGen EmailGenerator
}

// ProcessSignalWithRules runs every active rule the user owns against the
// signal, concurrently, and returns only the rules that fired. A missing or
// unloadable rule set is a normal nothing-to-do case.
func (e *Executor) ProcessSignalWithRules(ctx context.Context, signal *models.Signal, userID uint) []RuleExecution {
	rules, err := e.Store.ActiveRules(ctx, userID)
	if err != nil {
		log.Printf("automation: failed to load rules for user %d: %v", userID, err)
		return nil
	}

	if len(rules) == 0 {
		return nil
	}

	results := make([][]ActionResult, len(rules))

	var wg sync.WaitGroup
	for i := range rules {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.ExecuteRule(ctx, rules[i], signal)
		}(i)
	}
	wg.Wait()

	var fired []RuleExecution
	for i, rule := range rules {
		if len(results[i]) == 0 {
			continue
		}
		fired = append(fired, RuleExecution{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Results:  results[i],
		})
	}

	return fired
}

// ExecuteRule guards on active-state and condition match, then fans out all
// of the rule's actions concurrently. The result slice preserves the
// configured action order regardless of completion order.
func (e *Executor) ExecuteRule(ctx context.Context, rule models.AutomationRule, signal *models.Signal) []ActionResult {
	if !rule.IsActive {
		return nil
	}

	conditions, err := rule.Conditions()
	if err != nil {
		log.Printf("automation: rule %d has malformed conditions: %v", rule.ID, err)
		return nil
	}

	if !MatchesConditions(signal, conditions) {
		return nil
	}

	actions, err := rule.ActionList()
	if err != nil {
		log.Printf("automation: rule %d has malformed actions: %v", rule.ID, err)
		return nil
	}

	if len(actions) == 0 {
		return nil
	}

	results := make([]ActionResult, len(actions))

	var wg sync.WaitGroup
	for i := range actions {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.ExecuteAction(ctx, actions[i], signal, rule.UserID)
		}(i)
	}
	wg.Wait()

	return results
}

// ExecuteAction runs a single action against a signal. It never returns an
// error: provider, network, and store failures are all captured in the
// result.
func (e *Executor) ExecuteAction(ctx context.Context, action types.Action, signal *models.Signal, userID uint) ActionResult {
	switch action.Type {
	case types.ActionPushToCRM:
		return e.pushToCRM(ctx, action, signal, userID)
	case types.ActionGenerateEmail:
		return e.generateEmail(ctx, action, signal)
	case types.ActionMarkStatus:
		return e.markStatus(ctx, action, signal)
	case types.ActionNotify:
		return e.notify(ctx, action, signal, userID)
	default:
		return ActionResult{
			ActionType: action.Type,
			Error:      fmt.Sprintf("Unknown action type: %s", action.Type),
		}
	}
}

func (e *Executor) pushToCRM(ctx context.Context, action types.Action, signal *models.Signal, userID uint) ActionResult {
	provider, _ := action.Config["provider"].(string)

	integrations, err := e.Store.EnabledIntegrations(ctx, userID, provider)
	if err != nil {
		return ActionResult{ActionType: action.Type, Error: err.Error()}
	}

	if len(integrations) == 0 {
		return ActionResult{ActionType: action.Type, Error: "No CRM integrations found"}
	}

	results := make([]IntegrationSyncResult, len(integrations))

	var wg sync.WaitGroup
	for i := range integrations {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			integration := integrations[i]
			syncResult := e.CRM.SyncSignalToCRM(ctx, integration, signal)
			results[i] = IntegrationSyncResult{
				IntegrationID: integration.ID,
				Provider:      integration.Provider,
				SyncResult:    syncResult,
			}

			e.logSyncAttempt(ctx, integration, signal, syncResult)
		}(i)
	}
	wg.Wait()

	succeeded := false
	for _, result := range results {
		if result.Success {
			succeeded = true
			break
		}
	}

	out := ActionResult{
		ActionType: action.Type,
		Success:    succeeded,
		Data:       map[string]any{"results": results},
	}
	if !succeeded {
		out.Error = "All CRM syncs failed"
	}

	return out
}

func (e *Executor) logSyncAttempt(ctx context.Context, integration models.CRMIntegration, signal *models.Signal, result crm.SyncResult) {
	status := "success"
	if !result.Success {
		status = "failed"
	}

	entry := &models.CRMSyncLog{
		IntegrationID: integration.ID,
		SignalID:      signal.ID,
		UserID:        integration.UserID,
		Provider:      integration.Provider,
		CorrelationID: uuid.NewString(),
		Status:        status,
		CRMCompanyID:  result.CompanyID,
		CRMNoteID:     result.NoteID,
		Error:         result.Error,
		SyncedAt:      time.Now(),
	}

	if err := e.Store.CreateSyncLog(ctx, entry); err != nil {
		log.Printf("automation: failed to record sync log for integration %d: %v", integration.ID, err)
	}
}

func (e *Executor) generateEmail(ctx context.Context, action types.Action, signal *models.Signal) ActionResult {
	tone, _ := action.Config["tone"].(string)
	if tone == "" {
		tone = "professional"
	}

	emailID, err := e.EmailGen.GenerateEmail(ctx, signal.ID, tone)
	if err != nil {
		return ActionResult{ActionType: action.Type, Error: err.Error()}
	}

	return ActionResult{
		ActionType: action.Type,
		Success:    true,
		Data:       map[string]any{"email_id": emailID, "tone": tone},
	}
}

func (e *Executor) markStatus(ctx context.Context, action types.Action, signal *models.Signal) ActionResult {
	status, _ := action.Config["status"].(string)
	if status == "" {
		return ActionResult{ActionType: action.Type, Error: "No status specified"}
	}

	if err := e.Store.UpdateSignalStatus(ctx, signal.ID, status); err != nil {
		return ActionResult{ActionType: action.Type, Error: err.Error()}
	}

	return ActionResult{
		ActionType: action.Type,
		Success:    true,
		Data:       map[string]any{"newStatus": status},
	}
}

func (e *Executor) notify(ctx context.Context, action types.Action, signal *models.Signal, userID uint) ActionResult {
	channels := notifyChannels(action.Config)
	results := map[string]bool{}

	for _, channel := range channels {
		switch channel {
		case "slack":
			settings, err := e.Store.SlackSettings(ctx, userID)
			if err != nil {
				log.Printf("automation: failed to load slack settings for user %d: %v", userID, err)
				results["slack"] = false
				continue
			}

			// Slack not configured for this user is a silent skip, not a
			// failure.
			if !settings.Enabled || settings.AccessToken == "" || settings.ChannelID == "" {
				continue
			}

			if err := e.Slack.PostSignalAlert(ctx, settings.AccessToken, settings.ChannelID, signal); err != nil {
				log.Printf("automation: slack alert failed for user %d: %v", userID, err)
				results["slack"] = false
			} else {
				results["slack"] = true
			}
		case "email":
			err := e.Notify.SendSignalAlert(ctx, signal)
			results["email"] = err == nil
			if err != nil {
				log.Printf("automation: email alert failed for user %d: %v", userID, err)
			}
		}
	}

	succeeded := false
	for _, ok := range results {
		if ok {
			succeeded = true
			break
		}
	}

	out := ActionResult{
		ActionType: action.Type,
		Success:    succeeded,
		Data:       map[string]any{"results": results},
	}
	if !succeeded {
		out.Error = "No notifications sent"
	}

	return out
}

func notifyChannels(config map[string]any) []string {
	raw, ok := config["channels"].([]any)
	if !ok || len(raw) == 0 {
		return []string{"slack", "email"}
	}

	channels := make([]string, 0, len(raw))
	for _, entry := range raw {
		if channel, ok := entry.(string); ok {
			channels = append(channels, channel)
		}
	}

	if len(channels) == 0 {
		return []string{"slack", "email"}
	}

	return channels
}
