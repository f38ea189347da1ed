package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/readrally/readrally/config"
	"github.com/readrally/readrally/utils"
)

// ConfigController serves dynamic, environment-driven client configuration.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetMeta returns app metadata the client reads at startup.
func (c *ConfigController) GetMeta(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"min_client_version":    cfg.MinClientVersion,
		"notice_title":          cfg.NoticeTitle,
		"invite_code_prefix":    cfg.InviteCodePrefix,
		"max_duration_days":     cfg.MaxDurationDays,
		"upload_max_size_mb":    cfg.UploadMaxSizeMB,
		"register_captcha":      cfg.RegisterCaptchaEnabled,
		"register_email_verify": cfg.RegisterEmailVerifyEnabled,
	})
}

// GetNotice returns announcement content configured via config.
func (c *ConfigController) GetNotice(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"title": cfg.NoticeTitle,
		"html":  utils.SanitizeNotice(cfg.NoticeHTML),
	})
}
