package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/streaks"
	"github.com/rorychadbourne-alt/gratitude-sub000/utils"
)

// StreakController serves the weekly ring progress read endpoints.
type StreakController struct {
	db        *gorm.DB
	personal  *streaks.PersonalTracker
	community *streaks.CommunityTracker
}

// NewStreakController creates a StreakController.
func NewStreakController(db *gorm.DB, personal *streaks.PersonalTracker, community *streaks.CommunityTracker) *StreakController {
	return &StreakController{db: db, personal: personal, community: community}
}

// GetMyStreak returns the caller's ring progress for the current week.
// A week with no activity yields zero rings, never an error.
func (s *StreakController) GetMyStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	cacheKey := fmt.Sprintf("cache:streak:user:%d", userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	streak, err := s.personal.Current(ctx.Request.Context(), userID, time.Now())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load streak")
		return
	}

	payload := streakPayload(streak.WeekStart, streak.CompletedDays, streak.RingsCompleted)
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}

// GetCircleStreak returns a circle's ring progress plus today's live
// participation. Members only.
func (s *StreakController) GetCircleStreak(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	circleID, ok := parseCircleID(ctx)
	if !ok {
		return
	}

	var count int64
	if err := s.db.Model(&models.CircleMember{}).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Count(&count).Error; err != nil || count == 0 {
		utils.Error(ctx, http.StatusForbidden, 40311, "not a member of this circle")
		return
	}

	now := time.Now()
	streak, err := s.community.Current(ctx.Request.Context(), circleID, now)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load circle streak")
		return
	}

	// Participation is always computed live so the UI can show how close
	// today's ring is; it is intentionally not cached.
	participation, err := s.community.ComputeParticipation(ctx.Request.Context(), circleID, now)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to compute participation")
		return
	}

	payload := streakPayload(streak.WeekStart, streak.CompletedDays, streak.RingsCompleted)
	payload["participation_today"] = participation
	utils.Success(ctx, payload)
}

func streakPayload(weekStart time.Time, completedDays string, rings int) gin.H {
	return gin.H{
		"week_start":      streaks.FormatDate(weekStart),
		"completed_days":  models.ParseDays(completedDays),
		"rings_completed": rings,
		"max_rings":       models.MaxRings,
	}
}
