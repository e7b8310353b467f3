package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/streaks"
	"github.com/rorychadbourne-alt/gratitude-sub000/utils"
)

// EntryController handles gratitude entry CRUD and the streak updates each
// qualifying entry triggers.
type EntryController struct {
	db        *gorm.DB
	personal  *streaks.PersonalTracker
	community *streaks.CommunityTracker
}

// NewEntryController creates an EntryController.
func NewEntryController(db *gorm.DB, personal *streaks.PersonalTracker, community *streaks.CommunityTracker) *EntryController {
	return &EntryController{db: db, personal: personal, community: community}
}

// CreateEntry records a gratitude entry, marks the author's day complete and
// re-evaluates the community streak of every circle the entry is shared with.
func (e *EntryController) CreateEntry(ctx *gin.Context) {
	var req struct {
		Content   string `json:"content" binding:"required"`
		Mood      int    `json:"mood"`
		EntryDate string `json:"entry_date"`
		Pledge    bool   `json:"pledge"`
		CircleIDs []uint `json:"circle_ids"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "content cannot be empty")
		return
	}
	if req.Mood < 0 || req.Mood > 5 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "mood must be between 1 and 5")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	entryDate := time.Now()
	if req.EntryDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.EntryDate, time.Local)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40023, "entry_date must be YYYY-MM-DD")
			return
		}
		entryDate = parsed
	}

	entry := models.GratitudeEntry{
		UserID:    userID,
		Content:   content,
		Mood:      req.Mood,
		EntryDate: entryDate,
		Pledge:    req.Pledge,
	}

	if err := e.db.Create(&entry).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create entry")
		return
	}

	var streak *models.WeeklyStreak
	if !entry.Pledge {
		var err error
		streak, err = e.personal.Update(ctx.Request.Context(), userID, entryDate)
		if err != nil {
			// Streak bookkeeping is best-effort; the entry itself is saved.
			utils.Sugar.Errorf("personal streak update failed user=%d err=%v", userID, err)
		}
	}

	shared := []uint{}
	for _, circleID := range utils.UniqueUint(req.CircleIDs) {
		if !e.isMember(circleID, userID) {
			utils.Error(ctx, http.StatusForbidden, 40310, fmt.Sprintf("not a member of circle %d", circleID))
			return
		}
		share := models.EntryShare{EntryID: entry.ID, CircleID: circleID}
		if err := e.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&share).Error; err != nil {
			utils.Sugar.Errorf("entry share failed entry=%d circle=%d err=%v", entry.ID, circleID, err)
			continue
		}
		shared = append(shared, circleID)

		if !entry.Pledge {
			if _, err := e.community.Update(ctx.Request.Context(), circleID, entryDate); err != nil {
				utils.Sugar.Errorf("community streak update failed circle=%d err=%v", circleID, err)
			}
			utils.InvalidateByPrefix(fmt.Sprintf("cache:streak:circle:%d", circleID))
		}
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:streak:user:%d", userID))
	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:%d:entries:", userID))

	resp := gin.H{"entry": entry, "shared_circles": shared}
	if streak != nil {
		resp["streak"] = streak
	}
	utils.Success(ctx, resp)
}

// ListMyEntries returns the caller's entries, newest first.
func (e *EntryController) ListMyEntries(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := e.db.Model(&models.GratitudeEntry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to count entries")
		return
	}

	var entries []models.GratitudeEntry
	if err := e.db.Where("user_id = ?", userID).
		Order("entry_date DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to retrieve entries")
		return
	}

	utils.Success(ctx, gin.H{
		"items": entries,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// ListCircleFeed returns entries shared with a circle. Members only.
func (e *EntryController) ListCircleFeed(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	circleID, ok := parseCircleID(ctx)
	if !ok {
		return
	}
	if !e.isMember(circleID, userID) {
		utils.Error(ctx, http.StatusForbidden, 40311, "not a member of this circle")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var entries []models.GratitudeEntry
	if err := e.db.
		Joins("JOIN entry_shares ON entry_shares.entry_id = gratitude_entries.id").
		Where("entry_shares.circle_id = ?", circleID).
		Preload("User").
		Order("gratitude_entries.entry_date DESC, gratitude_entries.id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to retrieve circle feed")
		return
	}

	items := make([]gin.H, 0, len(entries))
	for _, en := range entries {
		items = append(items, gin.H{
			"id":         en.ID,
			"content":    en.Content,
			"mood":       en.Mood,
			"entry_date": en.EntryDate,
			"created_at": en.CreatedAt,
			"author":     sanitizeUserResponse(en.User),
		})
	}

	utils.Success(ctx, gin.H{"items": items, "page": page, "page_size": pageSize})
}

// DeleteEntry removes one of the caller's own entries. Streak days already
// earned are not unmarked: completed days never shrink within a week.
func (e *EntryController) DeleteEntry(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	id := strings.TrimSpace(ctx.Param("id"))
	var entry models.GratitudeEntry
	if err := e.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "entry not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load entry")
		return
	}
	if entry.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40312, "cannot delete another user's entry")
		return
	}

	if err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", entry.ID).Delete(&models.EntryShare{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entry).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to delete entry")
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:%d:entries:", userID))
	utils.Success(ctx, gin.H{"message": "entry deleted"})
}

func (e *EntryController) isMember(circleID, userID uint) bool {
	var count int64
	if err := e.db.Model(&models.CircleMember{}).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
