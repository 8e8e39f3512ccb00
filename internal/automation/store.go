package automation

import (
	"context"

	"github.com/signalhound-dev/signalhound/internal/models"
	"gorm.io/gorm"
)

// GormStore is the database-backed Store used in production.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) ActiveRules(ctx context.Context, userID uint) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule

	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	return rules, nil
}

func (s *GormStore) EnabledIntegrations(ctx context.Context, userID uint, provider string) ([]models.CRMIntegration, error) {
	query := s.DB.WithContext(ctx).
		Where("user_id = ? AND auto_sync_enabled = ?", userID, true)

	if provider != "" {
		query = query.Where("provider = ?", provider)
	}

	var integrations []models.CRMIntegration
	if err := query.Find(&integrations).Error; err != nil {
		return nil, err
	}

	return integrations, nil
}

func (s *GormStore) UpdateSignalStatus(ctx context.Context, signalID uint, status string) error {
	return s.DB.WithContext(ctx).
		Model(&models.Signal{}).
		Where("id = ?", signalID).
		Update("status", status).Error
}

func (s *GormStore) CreateSyncLog(ctx context.Context, entry *models.CRMSyncLog) error {
	return s.DB.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) SlackSettings(ctx context.Context, userID uint) (SlackSettings, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return SlackSettings{}, err
	}

	return SlackSettings{
		AccessToken: user.SlackAccessToken,
		ChannelID:   user.SlackChannelID,
		Enabled:     user.SlackNotificationsEnabled,
	}, nil
}
