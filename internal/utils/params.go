package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

func paramID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New("Missing " + name)
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid " + name)
	}

	return uint(id), nil
}

func GetSignalID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "signal_id")
}

func GetRuleID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "rule_id")
}

func GetIntegrationID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "integration_id")
}

func GetEmailID(ctx *gin.Context) (uint, error) {
	return paramID(ctx, "email_id")
}
