package crm

import (
	"context"

	"github.com/signalhound-dev/signalhound/internal/models"
)

// RegistrySyncer adapts the registry's policy-gated sync for callers that
// hold a Config, such as the automation executor.
type RegistrySyncer struct {
	Config Config
}

func (s *RegistrySyncer) SyncSignalToCRM(ctx context.Context, integration models.CRMIntegration, signal *models.Signal) SyncResult {
	return SyncSignalToCRM(ctx, integration, signal, s.Config)
}
