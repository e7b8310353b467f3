package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/streaks"
	"github.com/rorychadbourne-alt/gratitude-sub000/utils"
)

// StatsController provides aggregate community statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate counts plus today's active journalers.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var entryCount int64
	var circleCount int64
	var activeToday int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fall back to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.GratitudeEntry{}).Where("pledge = ?", false).Count(&entryCount).Error; err != nil {
		entryCount = 0
	}

	if err := s.db.Model(&models.Circle{}).Count(&circleCount).Error; err != nil {
		circleCount = 0
	}

	// Active today: distinct authors of non-pledge entries dated today.
	today := streaks.FormatDate(time.Now().In(time.Local))
	if err := s.db.Model(&models.GratitudeEntry{}).
		Where("entry_date = ? AND pledge = ?", today, false).
		Distinct("user_id").
		Count(&activeToday).Error; err != nil {
		activeToday = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":         userCount,
		"entry_count":        entryCount,
		"circle_count":       circleCount,
		"active_today_count": activeToday,
	})
}
