package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/utils"
)

// CircleController handles circle lifecycle and membership.
type CircleController struct {
	db *gorm.DB
}

// NewCircleController creates a CircleController.
func NewCircleController(db *gorm.DB) *CircleController {
	return &CircleController{db: db}
}

// CreateCircle creates a circle owned by the caller, who joins immediately.
func (c *CircleController) CreateCircle(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name string `json:"name" binding:"required,min=1,max=64"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "circle name cannot be empty")
		return
	}

	circle := models.Circle{
		Name:       name,
		OwnerID:    userID,
		InviteCode: uuid.NewString(),
	}

	if err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&circle).Error; err != nil {
			return err
		}
		member := models.CircleMember{CircleID: circle.ID, UserID: userID, JoinedAt: time.Now()}
		return tx.Create(&member).Error
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create circle")
		return
	}

	utils.Success(ctx, gin.H{"circle": circle})
}

// JoinCircle joins the caller to a circle by invite code. Joining a circle
// you already belong to is a no-op.
func (c *CircleController) JoinCircle(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	var circle models.Circle
	if err := c.db.Where("invite_code = ?", strings.TrimSpace(req.InviteCode)).First(&circle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "invite code not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to look up circle")
		return
	}

	member := models.CircleMember{CircleID: circle.ID, UserID: userID, JoinedAt: time.Now()}
	if err := c.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to join circle")
		return
	}

	utils.Success(ctx, gin.H{"circle": circle})
}

// LeaveCircle removes the caller from a circle. Idempotent.
func (c *CircleController) LeaveCircle(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	circleID, ok := parseCircleID(ctx)
	if !ok {
		return
	}

	if err := c.db.Where("circle_id = ? AND user_id = ?", circleID, userID).
		Delete(&models.CircleMember{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to leave circle")
		return
	}

	utils.Success(ctx, gin.H{"message": "left circle"})
}

// ListMyCircles returns the circles the caller belongs to, with member counts.
func (c *CircleController) ListMyCircles(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var circles []models.Circle
	if err := c.db.
		Joins("JOIN circle_members ON circle_members.circle_id = circles.id").
		Where("circle_members.user_id = ?", userID).
		Find(&circles).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to retrieve circles")
		return
	}

	items := make([]gin.H, 0, len(circles))
	for _, circle := range circles {
		var members int64
		if err := c.db.Model(&models.CircleMember{}).Where("circle_id = ?", circle.ID).Count(&members).Error; err != nil {
			members = 0
		}
		items = append(items, gin.H{
			"id":           circle.ID,
			"name":         circle.Name,
			"owner_id":     circle.OwnerID,
			"invite_code":  circle.InviteCode,
			"member_count": members,
			"created_at":   circle.CreatedAt,
		})
	}

	utils.Success(ctx, gin.H{"items": items})
}

// ListMembers returns a circle's members. Members only.
func (c *CircleController) ListMembers(ctx *gin.Context) {
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
	if err := c.db.Model(&models.CircleMember{}).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Count(&count).Error; err != nil || count == 0 {
		utils.Error(ctx, http.StatusForbidden, 40311, "not a member of this circle")
		return
	}

	var users []models.User
	if err := c.db.
		Joins("JOIN circle_members ON circle_members.user_id = users.id").
		Where("circle_members.circle_id = ?", circleID).
		Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to retrieve members")
		return
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, sanitizeUserResponse(u))
	}
	utils.Success(ctx, gin.H{"items": items})
}

func parseCircleID(ctx *gin.Context) (uint, bool) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid circle id")
		return 0, false
	}
	return uint(id), true
}
