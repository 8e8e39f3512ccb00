package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
)

type fakeGateStore struct {
	user *models.User
	err  error
}

func (s *fakeGateStore) UserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.user, s.err
}

type fakeAlertSender struct {
	calls int
	email string
	err   error
}

func (s *fakeAlertSender) SendUserAlert(ctx context.Context, email, userName string, signal *models.Signal) (string, error) {
	s.calls++
	s.email = email
	if s.err != nil {
		return "", s.err
	}
	return "n-1", nil
}

func userWithPrefs(t *testing.T, prefs types.NotificationPreferences) *models.User {
	t.Helper()

	data, err := json.Marshal(prefs)
	if err != nil {
		t.Fatalf("marshal prefs: %v", err)
	}

	return &models.User{
		Name:                    "Ada",
		Email:                   "ada@example.com",
		NotificationPreferences: data,
	}
}

func gateSignal(signalType, priority string) *models.Signal {
	return &models.Signal{
		UserID:      1,
		CompanyName: "Northwind Robotics",
		SignalType:  signalType,
		Priority:    priority,
		Title:       "Northwind Robotics raised a Series B",
	}
}

func TestMeetsPriorityThreshold(t *testing.T) {
	t.Parallel()

	cases := []struct {
		priority  string
		threshold string
		want      bool
	}{
		{types.PriorityHigh, types.PriorityHigh, true},
		{types.PriorityHigh, types.PriorityLow, true},
		{types.PriorityMedium, types.PriorityHigh, false},
		{types.PriorityMedium, types.PriorityMedium, true},
		{types.PriorityLow, types.PriorityMedium, false},
		{"urgent", types.PriorityLow, false},
		{types.PriorityHigh, "bogus", false},
	}

	for _, tc := range cases {
		if got := MeetsPriorityThreshold(tc.priority, tc.threshold); got != tc.want {
			t.Errorf("MeetsPriorityThreshold(%q, %q) = %v, want %v", tc.priority, tc.threshold, got, tc.want)
		}
	}
}

func TestGateSendsMatchingSignal(t *testing.T) {
	t.Parallel()

	sender := &fakeAlertSender{}
	gate := &Gate{
		Store: &fakeGateStore{user: userWithPrefs(t, types.NotificationPreferences{
			EmailEnabled:      true,
			SignalTypes:       []string{types.SignalFunding},
			PriorityThreshold: types.PriorityMedium,
		})},
		Sender: sender,
	}

	result, err := gate.Process(context.Background(), gateSignal(types.SignalFunding, types.PriorityHigh))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !result.Sent {
		t.Fatalf("expected alert to send, got %+v", result)
	}
	if result.NotificationID != "n-1" {
		t.Errorf("NotificationID = %q", result.NotificationID)
	}
	if sender.email != "ada@example.com" {
		t.Errorf("alert went to %q", sender.email)
	}
}

func TestGateSkipsWhenEmailDisabled(t *testing.T) {
	t.Parallel()

	sender := &fakeAlertSender{}
	gate := &Gate{
		Store: &fakeGateStore{user: userWithPrefs(t, types.NotificationPreferences{
			EmailEnabled:      false,
			SignalTypes:       types.SignalTypes,
			PriorityThreshold: types.PriorityLow,
		})},
		Sender: sender,
	}

	result, err := gate.Process(context.Background(), gateSignal(types.SignalFunding, types.PriorityHigh))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Sent || sender.calls != 0 {
		t.Fatalf("expected skip, got %+v (sender calls %d)", result, sender.calls)
	}
	if result.SkipReason != "email notifications disabled" {
		t.Errorf("SkipReason = %q", result.SkipReason)
	}
}

func TestGateSkipsUnsubscribedType(t *testing.T) {
	t.Parallel()

	sender := &fakeAlertSender{}
	gate := &Gate{
		Store: &fakeGateStore{user: userWithPrefs(t, types.NotificationPreferences{
			EmailEnabled:      true,
			SignalTypes:       []string{types.SignalHiring},
			PriorityThreshold: types.PriorityLow,
		})},
		Sender: sender,
	}

	result, err := gate.Process(context.Background(), gateSignal(types.SignalFunding, types.PriorityHigh))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Sent || sender.calls != 0 {
		t.Fatalf("expected skip, got %+v", result)
	}
	if result.SkipReason != `signal type "funding" not in preferences` {
		t.Errorf("SkipReason = %q", result.SkipReason)
	}
}

func TestGateSkipsBelowThreshold(t *testing.T) {
	t.Parallel()

	sender := &fakeAlertSender{}
	gate := &Gate{
		Store: &fakeGateStore{user: userWithPrefs(t, types.NotificationPreferences{
			EmailEnabled:      true,
			SignalTypes:       types.SignalTypes,
			PriorityThreshold: types.PriorityHigh,
		})},
		Sender: sender,
	}

	result, err := gate.Process(context.Background(), gateSignal(types.SignalFunding, types.PriorityMedium))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Sent || sender.calls != 0 {
		t.Fatalf("expected skip, got %+v", result)
	}
	if result.SkipReason != `priority "medium" below threshold "high"` {
		t.Errorf("SkipReason = %q", result.SkipReason)
	}
}

func TestGateDefaultPreferences(t *testing.T) {
	t.Parallel()

	// A user who never saved preferences gets the defaults: email on, all
	// types, high threshold.
	sender := &fakeAlertSender{}
	gate := &Gate{
		Store:  &fakeGateStore{user: &models.User{Name: "Ada", Email: "ada@example.com"}},
		Sender: sender,
	}

	result, err := gate.Process(context.Background(), gateSignal(types.SignalFunding, types.PriorityHigh))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !result.Sent {
		t.Fatalf("expected default preferences to pass a high-priority signal, got %+v", result)
	}

	result, err = gate.Process(context.Background(), gateSignal(types.SignalFunding, types.PriorityMedium))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Sent {
		t.Fatalf("expected default high threshold to skip medium priority, got %+v", result)
	}
}

func TestGatePropagatesStoreError(t *testing.T) {
	t.Parallel()

	gate := &Gate{
		Store:  &fakeGateStore{err: errors.New("db down")},
		Sender: &fakeAlertSender{},
	}

	if _, err := gate.Process(context.Background(), gateSignal(types.SignalFunding, types.PriorityHigh)); err == nil {
		t.Fatal("expected error when the owner cannot be loaded")
	}
}

func TestGatePropagatesSenderError(t *testing.T) {
	t.Parallel()

	gate := &Gate{
		Store: &fakeGateStore{user: userWithPrefs(t, types.NotificationPreferences{
			EmailEnabled:      true,
			SignalTypes:       types.SignalTypes,
			PriorityThreshold: types.PriorityLow,
		})},
		Sender: &fakeAlertSender{err: errors.New("endpoint down")},
	}

	if _, err := gate.Process(context.Background(), gateSignal(types.SignalFunding, types.PriorityHigh)); err == nil {
		t.Fatal("expected error when delivery fails")
	}
}
