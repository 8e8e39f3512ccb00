package notifications

import (
	"context"
	"fmt"

	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

var priorityRank = map[string]int{
	types.PriorityLow:    1,
	types.PriorityMedium: 2,
	types.PriorityHigh:   3,
}

// MeetsPriorityThreshold reports whether a signal's priority is at or above
// the preference threshold on the high > medium > low scale. Unknown values
// rank below everything.
func MeetsPriorityThreshold(priority, threshold string) bool {
	signalRank, ok := priorityRank[priority]
	if !ok {
		return false
	}

	thresholdRank, ok := priorityRank[threshold]
	if !ok {
		return false
	}

	return signalRank >= thresholdRank
}

// GateStore loads the signal owner's profile and preferences.
type GateStore interface {
	UserByID(ctx context.Context, userID uint) (*models.User, error)
}

// AlertSender delivers the gate's single side effect.
type AlertSender interface {
	SendUserAlert(ctx context.Context, email, userName string, signal *models.Signal) (string, error)
}

// GateResult reports what the gate decided. A skip is a normal outcome, not
// an error.
type GateResult struct {
	Sent           bool   `json:"sent"`
	SkipReason     string `json:"skip_reason,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
}

// Gate is the webhook-triggered email-alert policy check, independent of
// automation rules. Checks run in order and short-circuit on the first miss.
type Gate struct {
	Store  GateStore
	Sender AlertSender
}

func (g *Gate) Process(ctx context.Context, signal *models.Signal) (GateResult, error) {
	user, err := g.Store.UserByID(ctx, signal.UserID)
	if err != nil {
		return GateResult{}, fmt.Errorf("load signal owner %d: %w", signal.UserID, err)
	}

	prefs := user.Preferences()

	if !prefs.EmailEnabled {
		return GateResult{SkipReason: "email notifications disabled"}, nil
	}

	if !containsString(prefs.SignalTypes, signal.SignalType) {
		return GateResult{SkipReason: fmt.Sprintf("signal type %q not in preferences", signal.SignalType)}, nil
	}

	if !MeetsPriorityThreshold(signal.Priority, prefs.PriorityThreshold) {
		return GateResult{SkipReason: fmt.Sprintf("priority %q below threshold %q", signal.Priority, prefs.PriorityThreshold)}, nil
	}

	notificationID, err := g.Sender.SendUserAlert(ctx, user.Email, user.Name, signal)
	if err != nil {
		return GateResult{}, fmt.Errorf("send alert: %w", err)
	}

	return GateResult{Sent: true, NotificationID: notificationID}, nil
}

func containsString(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
