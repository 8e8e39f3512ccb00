package notifications

import (
	"context"

	"github.com/signalhound-dev/signalhound/internal/models"
	"gorm.io/gorm"
)

// GormStore is the database-backed GateStore used in production.
type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) UserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
