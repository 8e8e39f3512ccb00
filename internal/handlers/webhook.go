package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/httpx"
	"github.com/signalhound-dev/signalhound/internal/models"
)

type DatabaseWebhookRequest struct {
	Type   string          `json:"type" binding:"required"`
	Table  string          `json:"table" binding:"required"`
	Record json.RawMessage `json:"record"`
}

type SendNotificationRequest struct {
	Email    string         `json:"email"`
	UserName string         `json:"userName"`
	Signal   *models.Signal `json:"signal" binding:"required"`
}

// DatabaseWebhook receives row-change events and feeds freshly inserted
// signals into the notification gate. Everything else is acknowledged and
// dropped.
func DatabaseWebhook(ctx *gin.Context) {
	var req DatabaseWebhookRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Type != "INSERT" || req.Table != "signals" {
		ctx.JSON(http.StatusOK, gin.H{"processed": false})
		return
	}

	var signal models.Signal

	if err := json.Unmarshal(req.Record, &signal); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signal record"})
		return
	}

	if notifyGate == nil {
		ctx.JSON(http.StatusOK, gin.H{"processed": false})
		return
	}

	result, err := notifyGate.Process(ctx.Request.Context(), &signal)

	if err != nil {
		log.Printf("Notification gate failed for signal %d: %v", signal.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process notification"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"processed": true,
		"result":    result,
	})
}

// SendNotification records the outbound email and hands it to the transport
// webhook when one is configured.
func SendNotification(ctx *gin.Context) {
	var req SendNotificationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()

	notification := models.Notification{
		UserID:   req.Signal.UserID,
		SignalID: req.Signal.ID,
		Channel:  "email",
		Status:   "sent",
		Message:  fmt.Sprintf("%s: %s", req.Signal.CompanyName, req.Signal.Title),
		SentAt:   &now,
	}

	if webhookURL := os.Getenv("EMAIL_WEBHOOK_URL"); webhookURL != "" {
		api := httpx.New(httpx.Options{})
		err := api.DoJSON(ctx.Request.Context(), httpx.Request{
			Method: "POST",
			URL:    webhookURL,
			Body: map[string]any{
				"email":    req.Email,
				"userName": req.UserName,
				"signal":   req.Signal,
			},
			Timeout:    10 * time.Second,
			MaxRetries: 2,
		}, nil)

		if err != nil {
			log.Printf("Email webhook delivery failed for signal %d: %v", req.Signal.ID, err)
			notification.Status = "failed"
			notification.SentAt = nil
		}
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		log.Printf("Failed to record notification: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record notification"})
		return
	}

	if notification.Status == "failed" {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Notification delivery failed", "id": fmt.Sprint(notification.ID)})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"id": fmt.Sprint(notification.ID)})
}
