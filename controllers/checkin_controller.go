package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/readrally/readrally/config"
	"github.com/readrally/readrally/middleware"
	"github.com/readrally/readrally/models"
	"github.com/readrally/readrally/utils"
)

// CheckinController handles daily check-in endpoints.
type CheckinController struct {
	db *gorm.DB
}

var errAlreadyCheckedIn = errors.New("already checked in today")

// NewCheckinController creates a new controller instance.
func NewCheckinController(db *gorm.DB) *CheckinController {
	return &CheckinController{db: db}
}

// Create records a daily check-in for the authenticated user in a group.
// Accepts multipart form data: title (required), description, image (optional file).
// At most one check-in per user per group per calendar day; the composite
// unique index is the final arbiter under concurrent submissions.
func (c *CheckinController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := c.loadGroup(ctx)
	if !ok {
		return
	}

	member, err := isGroupMember(c.db, group.ID, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to verify membership")
		return
	}
	if !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	now := time.Now()
	today := utils.DayString(now)
	if group.Ended(now) {
		utils.Fail(ctx, http.StatusBadRequest, 40032, "challenge-ended", "the challenge has ended")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(ctx.PostForm("title")))
	if title == "" {
		utils.Fail(ctx, http.StatusBadRequest, 40033, "invalid-input", "title is required")
		return
	}
	if len([]rune(title)) > 120 {
		utils.Fail(ctx, http.StatusBadRequest, 40033, "invalid-input", "title too long")
		return
	}
	description := utils.Sanitize(strings.TrimSpace(ctx.PostForm("description")))
	if len([]rune(description)) > 2000 {
		utils.Fail(ctx, http.StatusBadRequest, 40033, "invalid-input", "description too long")
		return
	}

	// Cheap pre-check before touching the filesystem; the unique index
	// still covers the race between this read and the insert below.
	var existing models.CheckIn
	if err := c.db.Where("user_id = ? AND group_id = ? AND checkin_date = ?", userID, group.ID, today).
		First(&existing).Error; err == nil {
		utils.Fail(ctx, http.StatusConflict, 40930, "already-checked-in", "already checked in today")
		return
	}

	imageURL, err := saveCheckinImage(ctx, userID)
	if err != nil {
		utils.Fail(ctx, http.StatusBadRequest, 40034, "image-upload-failed", err.Error())
		return
	}

	var record models.CheckIn
	txErr := c.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return err
		}

		record = models.CheckIn{
			UserID:      userID,
			GroupID:     group.ID,
			Username:    user.Username,
			CheckinDate: today,
			Title:       title,
			Description: description,
			ImageURL:    imageURL,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isDuplicateKeyErr(err) {
				return errAlreadyCheckedIn
			}
			return err
		}

		current, max := advanceStreak(user.CurrentStreak, user.MaxStreak, user.LastCheckinAt, today)
		user.CurrentStreak = current
		user.MaxStreak = max
		user.TotalCheckins++
		user.LastCheckinAt = today

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if imageURL != "" {
			utils.ReleaseUpload(tx, imageURL)
		}
		return nil
	})

	if txErr != nil {
		if errors.Is(txErr, errAlreadyCheckedIn) {
			utils.Fail(ctx, http.StatusConflict, 40930, "already-checked-in", txErr.Error())
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to record check-in")
		return
	}

	invalidateRankingCache(group.ID)

	utils.Success(ctx, gin.H{
		"checkin": checkinResponse(record),
	})
}

// TodayStatus reports whether the authenticated user has checked in today in the group.
func (c *CheckinController) TodayStatus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	group, ok := c.loadGroup(ctx)
	if !ok {
		return
	}

	today := utils.Today()
	var record models.CheckIn
	err := c.db.Where("user_id = ? AND group_id = ? AND checkin_date = ?", userID, group.ID, today).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Success(ctx, gin.H{"checked_in": false, "date": today})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load check-in status")
		return
	}

	utils.Success(ctx, gin.H{
		"checked_in": true,
		"date":       today,
		"checkin":    checkinResponse(record),
	})
}

// Score returns the authenticated user's personal tally inside the group
// together with the global streak counters.
func (c *CheckinController) Score(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	group, ok := c.loadGroup(ctx)
	if !ok {
		return
	}

	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	var groupTotal int64
	if err := c.db.Model(&models.CheckIn{}).
		Where("user_id = ? AND group_id = ?", userID, group.ID).
		Count(&groupTotal).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to count check-ins")
		return
	}

	utils.Success(ctx, gin.H{
		"group_id":        group.ID,
		"group_checkins":  groupTotal,
		"current_streak":  user.CurrentStreak,
		"max_streak":      user.MaxStreak,
		"total_checkins":  user.TotalCheckins,
		"last_checkin_at": user.LastCheckinAt,
	})
}

// History lists check-ins in a group, newest first. Filter by user via ?user_id=.
func (c *CheckinController) History(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	group, ok := c.loadGroup(ctx)
	if !ok {
		return
	}

	member, err := isGroupMember(c.db, group.ID, userID)
	if err != nil || !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	query := c.db.Model(&models.CheckIn{}).Where("group_id = ?", group.ID)
	if filter := strings.TrimSpace(ctx.Query("user_id")); filter != "" {
		query = query.Where("user_id = ?", filter)
	}
	if day := strings.TrimSpace(ctx.Query("date")); day != "" {
		query = query.Where("checkin_date = ?", day)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to count check-ins")
		return
	}

	var records []models.CheckIn
	if err := query.Order("checkin_date DESC, id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to load check-ins")
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, r := range records {
		items = append(items, checkinResponse(r))
	}

	utils.Success(ctx, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (c *CheckinController) loadGroup(ctx *gin.Context) (*models.Group, bool) {
	var group models.Group
	if err := c.db.First(&group, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, 40420, "group-not-found", "group not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load group")
		}
		return nil, false
	}
	return &group, true
}

// advanceStreak computes the streak counters after a check-in on day today.
// lastDay is the previous check-in day ("" for a first timer). A check-in on
// the day after lastDay extends the streak; a second check-in on the same day
// (possible across groups) leaves the counters alone since the day already
// counted; anything else restarts at 1.
func advanceStreak(current, max int, lastDay, today string) (int, int) {
	if lastDay == today && lastDay != "" {
		return current, max
	}
	next := 1
	if lastDay != "" && utils.IsYesterday(lastDay, today) {
		next = current + 1
	}
	if next > max {
		max = next
	}
	return next, max
}

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// saveCheckinImage stores an optional multipart image and returns its public
// URL, or "" when no file was attached.
func saveCheckinImage(ctx *gin.Context, userID uint) (string, error) {
	file, header, err := ctx.Request.FormFile("image")
	if err != nil {
		// Absent field or a non-multipart body means no image was attached;
		// anything else is a broken upload and must fail the check-in.
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", fmt.Errorf("unreadable image upload: %v", err)
	}
	defer file.Close()

	cfg := config.Get()
	maxSize := int64(cfg.UploadMaxSizeMB) * 1024 * 1024
	if header.Size > 0 && header.Size > maxSize {
		return "", fmt.Errorf("image exceeds %dMB", cfg.UploadMaxSizeMB)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	now := time.Now()
	baseDir := filepath.Join(".", "static", "uploads", now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory")
	}

	safeName := fmt.Sprintf("%d_%s%s", userID, uuid.NewString(), ext)
	dstPath := filepath.Join(baseDir, safeName)

	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to save image")
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to write image")
	}
	if written > maxSize {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("image exceeds %dMB", cfg.UploadMaxSizeMB)
	}

	relURL := fmt.Sprintf("/static/uploads/%s/%s/%s/%s", now.Format("2006"), now.Format("01"), now.Format("02"), safeName)

	// Record as an orphan until the check-in commits; the cleaner reaps
	// uploads whose check-in never landed.
	absPath, _ := filepath.Abs(dstPath)
	expireAt := now.Add(24 * time.Hour)
	db := config.DB()
	if db != nil {
		_ = db.Create(&models.UploadedFile{FilePath: absPath, URL: relURL, ExpireAt: expireAt}).Error
	}

	return relURL, nil
}

func checkinResponse(r models.CheckIn) gin.H {
	return gin.H{
		"id":           r.ID,
		"user_id":      r.UserID,
		"group_id":     r.GroupID,
		"username":     r.Username,
		"checkin_date": r.CheckinDate,
		"title":        r.Title,
		"description":  r.Description,
		"image_url":    r.ImageURL,
		"created_at":   r.CreatedAt,
	}
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "1062")
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 20
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func getUsername(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return ""
	}
	name, _ := value.(string)
	return name
}
