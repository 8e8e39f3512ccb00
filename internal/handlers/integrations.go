package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/crm"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
	"github.com/signalhound-dev/signalhound/internal/utils"
	"gorm.io/gorm"
)

type ConnectIntegrationRequest struct {
	Provider    string `json:"provider" binding:"required"`
	APIKey      string `json:"api_key" binding:"required"`
	InstanceURL string `json:"instance_url"`
	AccountID   string `json:"account_id"`
}

type UpdateIntegrationRequest struct {
	AutoSyncEnabled   *bool             `json:"auto_sync_enabled"`
	SyncOnSignalTypes []string          `json:"sync_on_signal_types"`
	SyncOnPriorities  []string          `json:"sync_on_priorities"`
	FieldMapping      map[string]string `json:"field_mapping"`
}

func GetIntegrations(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var integrations []models.CRMIntegration

	if err := db.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&integrations).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve integrations"})
		return
	}

	ctx.JSON(http.StatusOK, integrations)
}

// ConnectIntegration stores an API-key based connection. OAuth providers go
// through the authorize/callback flow instead.
func ConnectIntegration(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req ConnectIntegrationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !types.IsValidProvider(req.Provider) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider"})
		return
	}

	switch req.Provider {
	case types.ProviderApollo, types.ProviderAttio, types.ProviderPipedrive:
	case types.ProviderZoho:
		ctx.JSON(http.StatusNotImplemented, gin.H{"error": "Zoho integration is not implemented"})
		return
	default:
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Provider requires the OAuth flow"})
		return
	}

	var existing models.CRMIntegration

	err = db.DB.Where("user_id = ? AND provider = ?", userID, req.Provider).First(&existing).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Integration already exists for this provider"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	integration := models.CRMIntegration{
		UserID:      userID,
		Provider:    req.Provider,
		AccessToken: req.APIKey,
		InstanceURL: req.InstanceURL,
		AccountID:   req.AccountID,
	}

	if err := db.DB.Create(&integration).Error; err != nil {
		log.Printf("Failed to create CRM integration: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create integration"})
		return
	}

	ctx.JSON(http.StatusCreated, integration)
}

// AuthorizeIntegration returns the provider's OAuth consent URL.
func AuthorizeIntegration(ctx *gin.Context) {
	if _, err := utils.GetCurrentUserID(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	provider := ctx.Param("provider")

	authURL, err := crm.AuthURL(provider, crmConfig, uuid.NewString())

	if err != nil {
		if errors.Is(err, crm.ErrNotImplemented) {
			ctx.JSON(http.StatusNotImplemented, gin.H{"error": "Zoho integration is not implemented"})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"url": authURL})
}

// OAuthCallback exchanges the authorization code and upserts the integration
// for the signed-in user.
func OAuthCallback(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	provider := ctx.Param("provider")
	code := ctx.Query("code")

	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code"})
		return
	}

	result, err := crm.ExchangeCode(ctx.Request.Context(), provider, crmConfig, code)

	if err != nil {
		if errors.Is(err, crm.ErrNotImplemented) {
			ctx.JSON(http.StatusNotImplemented, gin.H{"error": "Zoho integration is not implemented"})
			return
		}
		log.Printf("OAuth code exchange failed for %s: %v", provider, err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	var integration models.CRMIntegration

	err = db.DB.Where("user_id = ? AND provider = ?", userID, provider).First(&integration).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	integration.UserID = userID
	integration.Provider = provider
	integration.AccessToken = result.AccessToken
	integration.RefreshToken = result.RefreshToken
	integration.InstanceURL = result.InstanceURL

	if err := db.DB.Save(&integration).Error; err != nil {
		log.Printf("Failed to save CRM integration: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save integration"})
		return
	}

	ctx.JSON(http.StatusOK, integration)
}

// UpdateIntegration adjusts the sync policy. Tokens are never editable here.
func UpdateIntegration(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	integrationID, err := utils.GetIntegrationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateIntegrationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, signalType := range req.SyncOnSignalTypes {
		if !types.IsValidSignalType(signalType) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signal type in sync filter: " + signalType})
			return
		}
	}

	for _, priority := range req.SyncOnPriorities {
		if !types.IsValidPriority(priority) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority in sync filter: " + priority})
			return
		}
	}

	var integration models.CRMIntegration

	if err := db.DB.Where("id = ? AND user_id = ?", integrationID, userID).First(&integration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Integration not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve integration"})
		}
		return
	}

	if req.AutoSyncEnabled != nil {
		integration.AutoSyncEnabled = *req.AutoSyncEnabled
	}

	if req.SyncOnSignalTypes != nil {
		filterJSON, err := json.Marshal(req.SyncOnSignalTypes)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sync filter"})
			return
		}
		integration.SyncOnSignalTypes = filterJSON
	}

	if req.SyncOnPriorities != nil {
		filterJSON, err := json.Marshal(req.SyncOnPriorities)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sync filter"})
			return
		}
		integration.SyncOnPriorities = filterJSON
	}

	if req.FieldMapping != nil {
		mappingJSON, err := json.Marshal(req.FieldMapping)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid field mapping"})
			return
		}
		integration.FieldMapping = mappingJSON
	}

	if err := db.DB.Save(&integration).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update integration"})
		return
	}

	ctx.JSON(http.StatusOK, integration)
}

func DeleteIntegration(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	integrationID, err := utils.GetIntegrationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Where("id = ? AND user_id = ?", integrationID, userID).Delete(&models.CRMIntegration{})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete integration"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Integration not found"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func GetSyncLogs(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	integrationID, err := utils.GetIntegrationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var logs []models.CRMSyncLog

	if err := db.DB.Where("integration_id = ? AND user_id = ?", integrationID, userID).
		Order("created_at DESC").Limit(100).Find(&logs).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve sync logs"})
		return
	}

	ctx.JSON(http.StatusOK, logs)
}
