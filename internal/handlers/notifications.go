package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
	"github.com/signalhound-dev/signalhound/internal/utils"
)

type UpdatePreferencesRequest struct {
	EmailEnabled      *bool    `json:"email_enabled"`
	SignalTypes       []string `json:"signal_types"`
	PriorityThreshold string   `json:"priority_threshold"`
}

type UpdateSlackSettingsRequest struct {
	AccessToken string `json:"access_token"`
	ChannelID   string `json:"channel_id"`
	Enabled     *bool  `json:"enabled"`
}

func GetNotificationPreferences(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve preferences"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"preferences":                 user.Preferences(),
		"slack_notifications_enabled": user.SlackNotificationsEnabled,
		"slack_channel_id":            user.SlackChannelID,
	})
}

func UpdateNotificationPreferences(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdatePreferencesRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, signalType := range req.SignalTypes {
		if !types.IsValidSignalType(signalType) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signal type: " + signalType})
			return
		}
	}

	if req.PriorityThreshold != "" && !types.IsValidPriority(req.PriorityThreshold) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority threshold"})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	prefs := user.Preferences()

	if req.EmailEnabled != nil {
		prefs.EmailEnabled = *req.EmailEnabled
	}

	if req.SignalTypes != nil {
		prefs.SignalTypes = req.SignalTypes
	}

	if req.PriorityThreshold != "" {
		prefs.PriorityThreshold = req.PriorityThreshold
	}

	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode preferences"})
		return
	}

	user.NotificationPreferences = prefsJSON

	if err := db.DB.Save(&user).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func UpdateSlackSettings(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateSlackSettingsRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		return
	}

	if req.AccessToken != "" {
		user.SlackAccessToken = req.AccessToken
	}

	if req.ChannelID != "" {
		user.SlackChannelID = req.ChannelID
	}

	if req.Enabled != nil {
		if *req.Enabled && (user.SlackAccessToken == "" || user.SlackChannelID == "") {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Slack token and channel are required to enable notifications"})
			return
		}
		user.SlackNotificationsEnabled = *req.Enabled
	}

	if err := db.DB.Save(&user).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update Slack settings"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"slack_notifications_enabled": user.SlackNotificationsEnabled,
		"slack_channel_id":            user.SlackChannelID,
	})
}

func GetNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var notifications []models.Notification

	if err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}
