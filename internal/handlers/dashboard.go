package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/utils"
)

type countRow struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

func countsBy(userID uint, column string) (map[string]int64, error) {
	var rows []countRow

	err := db.DB.Model(&models.Signal{}).
		Select(column+" AS key, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}

	return counts, nil
}

// GetDashboard aggregates the signed-in user's signal counts and recent
// activity for the overview page.
func GetDashboard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	byType, err := countsBy(userID, "signal_type")
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	byPriority, err := countsBy(userID, "priority")
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	byStatus, err := countsBy(userID, "status")
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	var totalSignals int64
	for _, count := range byType {
		totalSignals += count
	}

	var recentSignals []models.Signal
	if err := db.DB.Where("user_id = ?", userID).Order("detected_at DESC").Limit(10).Find(&recentSignals).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	var ruleCount int64
	if err := db.DB.Model(&models.AutomationRule{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&ruleCount).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	var integrationCount int64
	if err := db.DB.Model(&models.CRMIntegration{}).Where("user_id = ?", userID).Count(&integrationCount).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"total_signals":       totalSignals,
		"signals_by_type":     byType,
		"signals_by_priority": byPriority,
		"signals_by_status":   byStatus,
		"recent_signals":      recentSignals,
		"active_rules":        ruleCount,
		"integrations":        integrationCount,
	})
}
