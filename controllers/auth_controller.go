package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/readrally/readrally/config"
	"github.com/readrally/readrally/models"
	"github.com/readrally/readrally/utils"
)

const (
	codePurposeRegister = "register"
	codePurposeReset    = "reset"

	sessionTokenTTL  = 72 * time.Hour
	rememberTokenTTL = 30 * 24 * time.Hour
)

// AuthController handles authentication related endpoints including local and third-party providers.
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
		Username      string `json:"username" binding:"required,min=2,max=64"`
		Email         string `json:"email" binding:"required"`
		Password      string `json:"password" binding:"required,min=6"`
		Confirm       string `json:"confirm"`
		Code          string `json:"code"`
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
		utils.Fail(ctx, http.StatusBadRequest, 40002, "invalid-input", "username must be 2-15 letters, digits or '-'")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "username already exists")
		return
	}

	if req.Confirm != "" && req.Password != req.Confirm {
		utils.Fail(ctx, http.StatusBadRequest, 40002, "invalid-input", "passwords do not match")
		return
	}
	if len(req.Password) < 6 || len(req.Password) > 72 {
		utils.Fail(ctx, http.StatusBadRequest, 40002, "invalid-input", "password must be 6-72 characters")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		utils.Fail(ctx, http.StatusBadRequest, 40002, "invalid-input", "email is required")
		return
	}
	cfg := config.Get()
	if cfg.RegisterEmailVerifyEnabled {
		if strings.TrimSpace(req.Code) == "" || !utils.VerifyAndConsumeCode(codePurposeRegister, email, strings.TrimSpace(req.Code)) {
			utils.Fail(ctx, http.StatusBadRequest, 40003, "invalid-code", "verification code invalid or expired")
			return
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	// Anti-abuse: cooldown, per-IP daily limit, ban check
	ip := ctx.ClientIP()
	if utils.RegistrationIsBanned(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42920, "this IP is temporarily restricted, try again later")
		return
	}
	if !utils.RegistrationCooldownTry(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many requests, try again later")
		return
	}
	if !utils.RegistrationDailyLimitCheck(ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42921, "daily registration limit reached")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		RegisterIP:   ip,
	}

	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		fails := utils.RegistrationFailRecord(ip)
		if fails >= maxInt(config.Get().RegisterFailedMaxPerIPPerHour, 1) {
			utils.RegistrationBan(ip)
		}
		return
	}

	utils.RegistrationDailyIncrement(ip)

	token, err := utils.GenerateToken(user.ID, user.Username, sessionTokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

// Login verifies user credentials and issues a JWT. The remember flag maps
// to a long-lived token, mirroring the client's session persistence choice.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Remember bool   `json:"remember"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ? OR email = ?", req.Username, req.Username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
		return
	}

	ttl := sessionTokenTTL
	if req.Remember {
		ttl = rememberTokenTTL
	}
	token, err := utils.GenerateToken(user.ID, user.Username, ttl)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
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

	expiresAt := time.Now().Add(sessionTokenTTL)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	utils.Success(ctx, userResponse(user))
}

// UpdateProfile allows the authenticated user to update basic profile fields.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var req struct {
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	if strings.TrimSpace(req.Email) != "" {
		user.Email = strings.TrimSpace(req.Email)
	}
	if strings.TrimSpace(req.AvatarURL) != "" {
		user.AvatarURL = strings.TrimSpace(req.AvatarURL)
	}

	if err := a.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to update profile")
		return
	}
	utils.InvalidateByPrefix("cache:user:public:" + strconv.Itoa(int(user.ID)))

	utils.Success(ctx, userResponse(user))
}

// GetUserPublic returns public user info by ID
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
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}
	payload := publicUserResponse(user)
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:user:public:"+idStr, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// SendEmailCode sends a registration verification code to user's email.
func (a *AuthController) SendEmailCode(ctx *gin.Context) {
	var req struct {
		Email         string `json:"email" binding:"required"`
		CaptchaID     string `json:"captcha_id"`
		CaptchaAnswer string `json:"captcha_answer"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		utils.Fail(ctx, http.StatusBadRequest, 40041, "invalid-input", "email is required")
		return
	}
	// When enabled, captcha must be verified BEFORE sending the email code
	if config.Get().RegisterCaptchaEnabled {
		if !utils.VerifyCaptcha(strings.TrimSpace(req.CaptchaID), strings.TrimSpace(req.CaptchaAnswer)) {
			utils.Error(ctx, http.StatusBadRequest, 40042, "captcha invalid or expired")
			return
		}
	}
	if !utils.EmailCooldownTrySet(email, 60*time.Second) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many requests, try again later")
		return
	}
	code := utils.GenerateVerificationCode(6)
	subject := "ReadRally verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	if err := utils.SendMail(email, subject, body); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to send verification code")
		return
	}
	// Save only after the mail went out so dead codes do not pile up
	utils.SaveCode(codePurposeRegister, email, code, 10*time.Minute)
	utils.Success(ctx, gin.H{"message": "verification code sent"})
}

// ForgotPassword dispatches a one-time password reset code by email. The
// response does not reveal whether the address has an account.
func (a *AuthController) ForgotPassword(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid request payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	if !utils.EmailCooldownTrySet(email, 60*time.Second) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "too many requests, try again later")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err == nil {
		code := utils.GenerateVerificationCode(6)
		subject := "ReadRally password reset"
		body := fmt.Sprintf("Your password reset code is %s. It expires in 10 minutes.", code)
		if err := utils.SendMail(email, subject, body); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to send reset code")
			return
		}
		utils.SaveCode(codePurposeReset, email, code, 10*time.Minute)
	}

	utils.Success(ctx, gin.H{"message": "if the address is registered, a reset code was sent"})
}

// ResetPassword verifies a reset code and replaces the password hash.
func (a *AuthController) ResetPassword(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Code     string `json:"code" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40044, "invalid request payload")
		return
	}
	email := strings.TrimSpace(req.Email)

	if !utils.VerifyAndConsumeCode(codePurposeReset, email, strings.TrimSpace(req.Code)) {
		utils.Fail(ctx, http.StatusBadRequest, 40045, "invalid-code", "reset code invalid or expired")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to update password")
		return
	}

	utils.Success(ctx, gin.H{"message": "password updated"})
}

// Captcha returns a fresh captcha id and base64 image (data URI)
func (a *AuthController) Captcha(ctx *gin.Context) {
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to generate captcha")
		return
	}
	utils.Success(ctx, gin.H{"id": id, "image": b64})
}

// OAuthRedirect generates a provider-specific authorization URL.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	provider := ctx.Param("provider")
	cfg, err := a.oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	utils.Success(ctx, gin.H{"authorization_url": url, "state": state})
}

// OAuthCallback exchanges the authorization code for a user identity and issues a JWT.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.Error(ctx, http.StatusBadRequest, 40006, "missing code or state")
		return
	}

	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid or expired state")
		return
	}

	cfg, err := a.oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, err.Error())
		return
	}

	token, err := cfg.Exchange(ctx.Request.Context(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40008, "failed to exchange code")
		return
	}

	userInfo, err := fetchOAuthUser(provider, token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50005, err.Error())
		return
	}

	user, err := a.findOrCreateOAuthUser(provider, userInfo)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to persist user")
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Username, sessionTokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{"token": jwtToken, "user": userResponse(*user)})
}

func (a *AuthController) oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/v1/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

type oauthUser struct {
	ID          string
	Username    string
	DisplayName string
	Email       string
	AvatarURL   string
}

func fetchOAuthUser(provider string, token *oauth2.Token) (*oauthUser, error) {
	switch strings.ToLower(provider) {
	case "github":
		return fetchGitHubUser(token)
	case "google":
		return fetchGoogleUser(token)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func (a *AuthController) findOrCreateOAuthUser(provider string, data *oauthUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", provider, data.ID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				Username:   a.ensureUniqueUsername(data.Username, provider, data.ID),
				Email:      strings.TrimSpace(data.Email),
				Provider:   provider,
				ProviderID: data.ID,
				AvatarURL:  data.AvatarURL,
				RegisterIP: "oauth",
			}
			if err := a.db.Create(&user).Error; err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	} else {
		updates := map[string]interface{}{
			"email":      strings.TrimSpace(data.Email),
			"avatar_url": data.AvatarURL,
		}
		_ = a.db.Model(&user).Updates(updates)
	}

	return &user, nil
}

func fetchGitHubUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user info request failed: %s", resp.Status)
	}

	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	email, _ := fetchGitHubEmail(token.AccessToken)

	return &oauthUser{
		ID:          fmt.Sprintf("%d", payload.ID),
		Username:    payload.Login,
		DisplayName: fallback(payload.Name, payload.Login),
		Email:       email,
		AvatarURL:   payload.AvatarURL,
	}, nil
}

func fetchGitHubEmail(accessToken string) (string, error) {
	req, _ := http.NewRequest("GET", "https://api.github.com/user/emails", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github emails request failed: %s", resp.Status)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", err
	}

	for _, email := range emails {
		if email.Primary && email.Verified {
			return email.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", nil
}

func fetchGoogleUser(token *oauth2.Token) (*oauthUser, error) {
	req, _ := http.NewRequest("GET", "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
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

	return &oauthUser{
		ID:          payload.ID,
		Username:    payload.Email,
		DisplayName: payload.Name,
		Email:       payload.Email,
		AvatarURL:   payload.Picture,
	}, nil
}

func (a *AuthController) ensureUniqueUsername(base, provider, id string) string {
	base = sanitizeUsername(base)
	if base == "" {
		base = sanitizeUsername(fmt.Sprintf("%s_%s", provider, id))
		if base == "" {
			base = fmt.Sprintf("reader_%s", id)
		}
	}

	candidate := base
	suffix := 1
	for {
		var count int64
		if err := a.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count).Error; err != nil {
			return candidate
		}
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", base, suffix)
		suffix++
	}
}

func sanitizeUsername(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}
	var builder strings.Builder
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == '_' || r == '-' || r == '.':
			builder.WriteRune('_')
		}
	}
	return strings.Trim(builder.String(), "_")
}

// validUsername allows letters, digits and '-', 2-15 runes.
func validUsername(s string) bool {
	if l := len([]rune(s)); l < 2 || l > 15 {
		return false
	}
	for _, r := range s {
		if r == '-' {
			continue
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		return false
	}
	return true
}

func fallback(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// userResponse strips sensitive columns for API output.
func userResponse(user models.User) gin.H {
	return gin.H{
		"id":              user.ID,
		"username":        user.Username,
		"email":           user.Email,
		"avatar_url":      user.AvatarURL,
		"active_group_id": user.ActiveGroupID,
		"current_streak":  user.CurrentStreak,
		"max_streak":      user.MaxStreak,
		"total_checkins":  user.TotalCheckins,
		"last_checkin_at": user.LastCheckinAt,
		"created_at":      user.CreatedAt,
	}
}

// publicUserResponse omits email and activity counters for anonymous lookups.
func publicUserResponse(user models.User) gin.H {
	return gin.H{
		"id":             user.ID,
		"username":       user.Username,
		"avatar_url":     user.AvatarURL,
		"current_streak": user.CurrentStreak,
		"max_streak":     user.MaxStreak,
		"total_checkins": user.TotalCheckins,
		"created_at":     user.CreatedAt,
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
