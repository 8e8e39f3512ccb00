package automation

import (
	"context"
	"testing"

	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = database.AutoMigrate(
		&models.User{},
		&models.Signal{},
		&models.AutomationRule{},
		&models.CRMIntegration{},
		&models.CRMSyncLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return database
}

func TestProcessSignalWithRulesPersistsStatus(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)

	user := models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x"}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	signal := models.Signal{
		UserID:      user.ID,
		CompanyName: "Northwind Robotics",
		SignalType:  types.SignalFunding,
		Priority:    types.PriorityHigh,
		Title:       "Northwind Robotics raised a Series B",
		Status:      types.StatusNew,
	}
	if err := database.Create(&signal).Error; err != nil {
		t.Fatalf("create signal: %v", err)
	}

	rule := ruleWith(t,
		types.TriggerConditions{SignalTypes: []string{types.SignalFunding}},
		[]types.Action{{Type: types.ActionMarkStatus, Config: map[string]any{"status": types.StatusReviewed}}})
	rule.UserID = user.ID
	if err := database.Create(&rule).Error; err != nil {
		t.Fatalf("create rule: %v", err)
	}

	executor := &Executor{
		Store:    &GormStore{DB: database},
		CRM:      &fakeSyncer{},
		Slack:    &fakeSlack{},
		Notify:   &fakeNotifier{},
		EmailGen: &fakeEmailGen{},
	}

	fired := executor.ProcessSignalWithRules(context.Background(), &signal, user.ID)

	if len(fired) != 1 {
		t.Fatalf("expected one fired rule, got %d", len(fired))
	}
	if !fired[0].Results[0].Success {
		t.Fatalf("mark_status result = %+v", fired[0].Results[0])
	}

	var reloaded models.Signal
	if err := database.First(&reloaded, signal.ID).Error; err != nil {
		t.Fatalf("reload signal: %v", err)
	}
	if reloaded.Status != types.StatusReviewed {
		t.Errorf("Status = %q, want %q", reloaded.Status, types.StatusReviewed)
	}
}

func TestGormStoreSkipsInactiveRules(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)

	user := models.User{Name: "Ada", Email: "ada2@example.com", PasswordHash: "x"}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	active := ruleWith(t, types.TriggerConditions{}, []types.Action{{Type: types.ActionMarkStatus, Config: map[string]any{"status": types.StatusReviewed}}})
	active.UserID = user.ID
	active.Name = "active"

	inactive := ruleWith(t, types.TriggerConditions{}, []types.Action{{Type: types.ActionMarkStatus, Config: map[string]any{"status": types.StatusArchived}}})
	inactive.UserID = user.ID
	inactive.Name = "inactive"
	inactive.IsActive = false

	if err := database.Create(&active).Error; err != nil {
		t.Fatalf("create rule: %v", err)
	}
	if err := database.Create(&inactive).Error; err != nil {
		t.Fatalf("create rule: %v", err)
	}

	store := &GormStore{DB: database}

	rules, err := store.ActiveRules(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ActiveRules: %v", err)
	}

	if len(rules) != 1 || rules[0].Name != "active" {
		t.Fatalf("ActiveRules = %+v", rules)
	}
}

func TestGormStoreEnabledIntegrations(t *testing.T) {
	t.Parallel()

	database := openTestDB(t)

	user := models.User{Name: "Ada", Email: "ada3@example.com", PasswordHash: "x"}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	hubspot := models.CRMIntegration{UserID: user.ID, Provider: types.ProviderHubSpot, AccessToken: "t1", AutoSyncEnabled: true}
	attio := models.CRMIntegration{UserID: user.ID, Provider: types.ProviderAttio, AccessToken: "t2", AutoSyncEnabled: true}

	if err := database.Create(&hubspot).Error; err != nil {
		t.Fatalf("create integration: %v", err)
	}
	if err := database.Create(&attio).Error; err != nil {
		t.Fatalf("create integration: %v", err)
	}

	store := &GormStore{DB: database}

	all, err := store.EnabledIntegrations(context.Background(), user.ID, "")
	if err != nil {
		t.Fatalf("EnabledIntegrations: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 integrations, got %d", len(all))
	}

	attioOnly, err := store.EnabledIntegrations(context.Background(), user.ID, types.ProviderAttio)
	if err != nil {
		t.Fatalf("EnabledIntegrations: %v", err)
	}
	if len(attioOnly) != 1 || attioOnly[0].Provider != types.ProviderAttio {
		t.Fatalf("EnabledIntegrations(attio) = %+v", attioOnly)
	}
}
