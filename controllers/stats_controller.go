package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/readrally/readrally/models"
	"github.com/readrally/readrally/utils"
)

// StatsController provides aggregate statistics such as counts and daily active users.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the service.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var groupCount int64
	var checkinCount int64
	var dailyActive int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.Group{}).Count(&groupCount).Error; err != nil {
		groupCount = 0
	}

	if err := s.db.Model(&models.CheckIn{}).Count(&checkinCount).Error; err != nil {
		checkinCount = 0
	}

	// Daily active: sum of today's recorded request activity across all paths.
	// Use string date equality to avoid timezone/type mismatches with DATE column
	today := utils.Today()
	if err := s.db.Model(&models.DailyActivity{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyActive).Error; err != nil {
		dailyActive = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":         userCount,
		"group_count":        groupCount,
		"checkin_count":      checkinCount,
		"daily_active_count": dailyActive,
	})
}

// GetCheckinsToday returns how many check-ins landed today, service-wide.
func (s *StatsController) GetCheckinsToday(ctx *gin.Context) {
	var count int64
	if err := s.db.Model(&models.CheckIn{}).
		Where("checkin_date = ?", utils.Today()).
		Count(&count).Error; err != nil {
		count = 0
	}

	utils.Success(ctx, gin.H{
		"date":  utils.Today(),
		"count": count,
	})
}
