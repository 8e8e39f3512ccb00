package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signalhound-dev/signalhound/db"
	"github.com/signalhound-dev/signalhound/internal/automation"
	"github.com/signalhound-dev/signalhound/internal/models"
	"github.com/signalhound-dev/signalhound/internal/types"
	"github.com/signalhound-dev/signalhound/internal/utils"
	"gorm.io/gorm"
)

type RuleRequest struct {
	Name              string                  `json:"name" binding:"required"`
	Description       string                  `json:"description"`
	IsActive          *bool                   `json:"is_active"`
	TriggerConditions types.TriggerConditions `json:"trigger_conditions"`
	Actions           []types.Action          `json:"actions" binding:"required"`
}

type TestRuleRequest struct {
	SignalType    string `json:"signal_type" binding:"required"`
	Priority      string `json:"priority" binding:"required"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	CompanyName   string `json:"company_name"`
	CompanyDomain string `json:"company_domain"`
}

func validateRuleRequest(req *RuleRequest) error {
	for _, signalType := range req.TriggerConditions.SignalTypes {
		if !types.IsValidSignalType(signalType) {
			return fmt.Errorf("invalid signal type in trigger conditions: %s", signalType)
		}
	}

	for _, priority := range req.TriggerConditions.Priorities {
		if !types.IsValidPriority(priority) {
			return fmt.Errorf("invalid priority in trigger conditions: %s", priority)
		}
	}

	if len(req.Actions) == 0 {
		return errors.New("at least one action is required")
	}

	for _, action := range req.Actions {
		if !types.IsValidActionType(action.Type) {
			return fmt.Errorf("invalid action type: %s", action.Type)
		}

		if action.Type == types.ActionMarkStatus {
			status, _ := action.Config["status"].(string)
			if status == "" || !types.IsValidSignalStatus(status) {
				return fmt.Errorf("mark_status action requires a valid status")
			}
		}
	}

	return nil
}

func CreateRule(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req RuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validateRuleRequest(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conditionsJSON, err := json.Marshal(req.TriggerConditions)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trigger conditions"})
		return
	}

	actionsJSON, err := json.Marshal(req.Actions)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actions"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	rule := models.AutomationRule{
		UserID:            userID,
		Name:              req.Name,
		Description:       req.Description,
		IsActive:          isActive,
		TriggerConditions: conditionsJSON,
		Actions:           actionsJSON,
	}

	if err := db.DB.Create(&rule).Error; err != nil {
		log.Printf("Failed to create automation rule: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		return
	}

	ctx.JSON(http.StatusCreated, rule)
}

func GetRules(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var rules []models.AutomationRule

	if err := db.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&rules).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rules"})
		return
	}

	ctx.JSON(http.StatusOK, rules)
}

func GetRule(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rule models.AutomationRule

	if err := db.DB.Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rule"})
		}
		return
	}

	ctx.JSON(http.StatusOK, rule)
}

func UpdateRule(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req RuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validateRuleRequest(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rule models.AutomationRule

	if err := db.DB.Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rule"})
		}
		return
	}

	conditionsJSON, err := json.Marshal(req.TriggerConditions)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trigger conditions"})
		return
	}

	actionsJSON, err := json.Marshal(req.Actions)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid actions"})
		return
	}

	rule.Name = req.Name
	rule.Description = req.Description
	rule.TriggerConditions = conditionsJSON
	rule.Actions = actionsJSON

	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := db.DB.Save(&rule).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rule"})
		return
	}

	ctx.JSON(http.StatusOK, rule)
}

func DeleteRule(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Where("id = ? AND user_id = ?", ruleID, userID).Delete(&models.AutomationRule{})

	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// TestRule dry-runs a rule's trigger conditions against a hypothetical signal
// without persisting anything or executing actions.
func TestRule(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ruleID, err := utils.GetRuleID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req TestRuleRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rule models.AutomationRule

	if err := db.DB.Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rule"})
		}
		return
	}

	conditions, err := rule.Conditions()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Rule has malformed trigger conditions"})
		return
	}

	probe := models.Signal{
		SignalType:    req.SignalType,
		Priority:      req.Priority,
		Title:         req.Title,
		Summary:       req.Summary,
		CompanyName:   req.CompanyName,
		CompanyDomain: req.CompanyDomain,
	}

	ctx.JSON(http.StatusOK, gin.H{
		"rule_id": rule.ID,
		"matches": automation.MatchesConditions(&probe, conditions),
	})
}
