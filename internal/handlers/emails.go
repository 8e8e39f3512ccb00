package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/utils"
	"gorm.io/gorm"
)

type GenerateEmailRequest struct {
	Tone string `json:"tone"`
}

// GenerateSignalEmail drafts an outreach email for a signal. It is reachable
// both from the dashboard and from the automation executor, which calls back
// over HTTP with the internal API key.
func GenerateSignalEmail(ctx *gin.Context) {
	signalID, err := utils.GetSignalID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := db.DB.Where("id = ?", signalID)

	// Session callers only see their own signals. Internal callers act on
	// behalf of the automation pipeline and skip the ownership check.
	userID, userErr := utils.GetCurrentUserID(ctx)
	if userErr == nil {
		query = query.Where("user_id = ?", userID)
	}

	var signal models.Signal

	if err := query.First(&signal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Signal not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve signal"})
		}
		return
	}

	var req GenerateEmailRequest

	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if emailGenerator == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email generation is not configured"})
		return
	}

	email, err := emailGenerator.Generate(ctx.Request.Context(), &signal, req.Tone)

	if err != nil {
		log.Printf("Failed to generate email for signal %d: %v", signal.ID, err)
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate email"})
		return
	}

	ctx.JSON(http.StatusCreated, email)
}

func GetGeneratedEmails(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Where("user_id = ?", userID)

	if signalID := ctx.Query("signal_id"); signalID != "" {
		query = query.Where("signal_id = ?", signalID)
	}

	var emails []models.GeneratedEmail

	if err := query.Order("created_at DESC").Limit(100).Find(&emails).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve emails"})
		return
	}

	ctx.JSON(http.StatusOK, emails)
}

func GetGeneratedEmail(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	emailID, err := utils.GetEmailID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var email models.GeneratedEmail

	if err := db.DB.Where("id = ? AND user_id = ?", emailID, userID).First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve email"})
		}
		return
	}

	ctx.JSON(http.StatusOK, email)
}
