package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/rorychadbourne-alt/gratitude-sub000/config"
	"github.com/rorychadbourne-alt/gratitude-sub000/models"
	"github.com/rorychadbourne-alt/gratitude-sub000/utils"
)

// AuthController handles authentication related endpoints including local accounts and Google login.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register handles local account registration with bcrypt hashing.
func (a *AuthController) Register(ctx *gin.Context) {
	type request struct {
		Username      string `json:"username" binding:"required,min=3,max=64"`
		Email         string `json:"email"`
		Password      string `json:"password" binding:"required,min=6"`
		Confirm       string `json:"confirm"`
		DisplayName   string `json:"display_name"`
		Timezone      string `json:"timezone"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !validUsername(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40002, "username must be 3-64 letters, digits or '-'")
		return
	}

	if req.Confirm != "" && req.Password != req.Confirm {
		utils.Error(ctx, http.StatusBadRequest, 40002, "passwords do not match")
		return
	}

	cfg := config.Get()
	if cfg.RegisterCaptchaEnabled {
		if !utils.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer) {
			utils.Error(ctx, http.StatusBadRequest, 40009, "captcha verification failed")
			return
		}
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to hash password")
		return
	}

	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = "UTC"
	} else if _, err := time.LoadLocation(tz); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid timezone")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Timezone:     tz,
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}

	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": sanitizeUserResponse(user)})
}

// Captcha issues a captcha challenge for registration when enabled.
func (a *AuthController) Captcha(ctx *gin.Context) {
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to generate captcha")
		return
	}
	utils.Success(ctx, gin.H{"captcha_id": id, "captcha_image": b64})
}

// Login authenticates a local account and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": token, "user": sanitizeUserResponse(user)})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(72 * time.Hour)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	utils.Success(ctx, gin.H{"user": sanitizeUserResponse(user)})
}

// UpdateProfile updates display name, avatar and timezone.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	type request struct {
		DisplayName *string `json:"display_name"`
		AvatarURL   *string `json:"avatar_url"`
		Timezone    *string `json:"timezone"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	if req.DisplayName != nil {
		name := utils.Sanitize(strings.TrimSpace(*req.DisplayName))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40012, "display name cannot be empty")
			return
		}
		user.DisplayName = name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if _, err := time.LoadLocation(tz); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40010, "invalid timezone")
			return
		}
		user.Timezone = tz
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50008, "failed to update profile")
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:user:public:%d", user.ID))
	utils.Success(ctx, gin.H{"user": sanitizeUserResponse(user)})
}

// GetUserPublic returns public user info by ID.
func (a *AuthController) GetUserPublic(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40050, "missing user id")
		return
	}
	if b, ok := utils.CacheGetBytes("cache:user:public:" + idStr); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}
	var user models.User
	if err := a.db.First(&user, idStr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}
	payload := sanitizeUserResponse(user)
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:user:public:"+idStr, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// OAuthRedirect generates the Google authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a user identity and issues a JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40005, "missing code or state")
		return
	}

	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40006, "invalid or expired state")
		return
	}

	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, err.Error())
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "failed to exchange code")
		return
	}

	userInfo, err := fetchGoogleUser(token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, err.Error())
		return
	}

	user, err := a.findOrCreateOAuthUser(userInfo)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to persist user")
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Username, 72*time.Hour)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": jwtToken, "user": sanitizeUserResponse(*user)})
}

func (a *AuthController) oauthConfig() (*oauth2.Config, error) {
	cfg := config.Get()
	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
		return nil, errors.New("google oauth is not configured")
	}
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectBase + "/api/v1/auth/oauth/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}, nil
}

type oauthUser struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	req, err := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.ID == "" {
		return nil, errors.New("google userinfo missing id")
	}
	return &oauthUser{ID: payload.ID, Email: payload.Email, Name: payload.Name, AvatarURL: payload.Picture}, nil
}

func (a *AuthController) findOrCreateOAuthUser(data *oauthUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", "google", data.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	base := sanitizeUsername(data.Name)
	if base == "" {
		base = "journaler"
	}
	user = models.User{
		Username:    a.ensureUniqueUsername(base, data.ID),
		Email:       data.Email,
		Provider:    "google",
		ProviderID:  data.ID,
		DisplayName: data.Name,
		AvatarURL:   data.AvatarURL,
		Timezone:    "UTC",
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func sanitizeUsername(input string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(input) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	s := b.String()
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}

func (a *AuthController) ensureUniqueUsername(base, providerID string) string {
	candidate := base
	for i := 0; i < 5; i++ {
		var count int64
		if err := a.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil || count == 0 {
			return candidate
		}
		suffix := providerID
		if len(suffix) > 6 {
			suffix = suffix[len(suffix)-6:]
		}
		candidate = fmt.Sprintf("%s-%s%d", base, suffix, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

func validUsername(s string) bool {
	if l := len(s); l < 3 || l > 64 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}

func sanitizeUserResponse(user models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"avatar_url":   user.AvatarURL,
		"timezone":     user.Timezone,
		"created_at":   user.CreatedAt,
	}
}
