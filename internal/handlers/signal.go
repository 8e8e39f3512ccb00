package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/automation"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
	"github.com/signalhound-dev/signalhound/internal/utils"
	"gorm.io/gorm"
)

type CreateSignalRequest struct {
	CompanyName   string         `json:"company_name" binding:"required"`
	CompanyDomain string         `json:"company_domain"`
	SignalType    string         `json:"signal_type" binding:"required"`
	Priority      string         `json:"priority" binding:"required"`
	Title         string         `json:"title" binding:"required"`
	Summary       string         `json:"summary"`
	SourceName    string         `json:"source_name"`
	SourceURL     string         `json:"source_url"`
	DetectedAt    *time.Time     `json:"detected_at"`
	Metadata      map[string]any `json:"metadata"`
}

type UpdateSignalStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func CreateSignal(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateSignalRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !types.IsValidSignalType(req.SignalType) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signal type"})
		return
	}

	if !types.IsValidPriority(req.Priority) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}

	if req.CompanyDomain != "" {
		domain, err := utils.ExtractRawDomain(req.CompanyDomain)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid company domain: " + err.Error()})
			return
		}
		req.CompanyDomain = domain
	}

	detectedAt := time.Now()
	if req.DetectedAt != nil {
		detectedAt = *req.DetectedAt
	}

	signal := models.Signal{
		UserID:        userID,
		CompanyName:   req.CompanyName,
		CompanyDomain: req.CompanyDomain,
		SignalType:    req.SignalType,
		Priority:      req.Priority,
		Title:         req.Title,
		Summary:       req.Summary,
		SourceName:    req.SourceName,
		SourceURL:     req.SourceURL,
		Status:        types.StatusNew,
		DetectedAt:    detectedAt,
	}

	if req.Metadata != nil {
		metadataJSON, err := json.Marshal(req.Metadata)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid metadata format"})
			return
		}
		signal.Metadata = metadataJSON
	}

	if err := db.DB.Create(&signal).Error; err != nil {
		log.Printf("Failed to create signal: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create signal"})
		return
	}

	executions := runAutomation(ctx, &signal, userID)

	BroadcastSignal(userID, &signal)

	ctx.JSON(http.StatusCreated, gin.H{
		"signal":          signal,
		"rule_executions": executions,
	})
}

// runAutomation evaluates the owner's rules synchronously and reloads the
// signal so responses reflect any mark_status mutation.
func runAutomation(ctx *gin.Context, signal *models.Signal, userID uint) []automation.RuleExecution {
	if automationExec == nil {
		return nil
	}

	executions := automationExec.ProcessSignalWithRules(ctx.Request.Context(), signal, userID)

	if len(executions) > 0 {
		if err := db.DB.First(signal, signal.ID).Error; err != nil {
			log.Printf("Failed to reload signal %d after automation: %v", signal.ID, err)
		}
	}

	return executions
}

func GetSignals(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	query := db.DB.Where("user_id = ?", userID)

	if signalType := ctx.Query("signal_type"); signalType != "" {
		query = query.Where("signal_type = ?", signalType)
	}

	if priority := ctx.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var signals []models.Signal
	if err := query.Order("detected_at DESC").Limit(100).Find(&signals).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve signals"})
		return
	}

	ctx.JSON(http.StatusOK, signals)
}

func GetSignal(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	signalID, err := utils.GetSignalID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var signal models.Signal

	if err := db.DB.Where("id = ? AND user_id = ?", signalID, userID).First(&signal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Signal not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve signal"})
		}
		return
	}

	ctx.JSON(http.StatusOK, signal)
}

func UpdateSignalStatus(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	signalID, err := utils.GetSignalID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req UpdateSignalStatusRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !types.IsValidSignalStatus(req.Status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var signal models.Signal

	if err := db.DB.Where("id = ? AND user_id = ?", signalID, userID).First(&signal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Signal not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve signal"})
		}
		return
	}

	signal.Status = req.Status

	if err := db.DB.Save(&signal).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update signal"})
		return
	}

	ctx.JSON(http.StatusOK, signal)
}

func DeleteSignal(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	signalID, err := utils.GetSignalID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Where("id = ? AND user_id = ?", signalID, userID).Delete(&models.Signal{})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete signal"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Signal not found"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
