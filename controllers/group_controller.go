package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/readrally/readrally/config"
	"github.com/readrally/readrally/models"
	"github.com/readrally/readrally/utils"
)

// GroupController handles challenge group lifecycle and membership.
type GroupController struct {
	db *gorm.DB
}

// NewGroupController creates a new controller instance.
func NewGroupController(db *gorm.DB) *GroupController {
	return &GroupController{db: db}
}

// inviteCodeAttempts bounds retries against the unique invite_code column.
const inviteCodeAttempts = 5

// Create opens a new challenge group. The creator joins automatically and the
// group becomes their active group.
func (g *GroupController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		Name         string `json:"name" binding:"required"`
		Description  string `json:"description"`
		DurationDays int    `json:"duration_days" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, 40020, "invalid-input", "invalid request payload")
		return
	}

	name := utils.Sanitize(strings.TrimSpace(req.Name))
	if name == "" || len([]rune(name)) > 60 {
		utils.Fail(ctx, http.StatusBadRequest, 40021, "invalid-input", "group name must be 1-60 characters")
		return
	}

	cfg := config.Get()
	if req.DurationDays < 1 || req.DurationDays > cfg.MaxDurationDays {
		utils.Fail(ctx, http.StatusBadRequest, 40022, "invalid-input", "duration out of range")
		return
	}

	start := utils.StartOfDay(time.Now())
	end := start.AddDate(0, 0, req.DurationDays)

	var group models.Group
	txErr := g.db.Transaction(func(tx *gorm.DB) error {
		group = models.Group{
			Name:         name,
			Description:  utils.Sanitize(strings.TrimSpace(req.Description)),
			CreatorID:    userID,
			StartDate:    start,
			EndDate:      end,
			DurationDays: req.DurationDays,
			MemberCount:  1,
		}

		created := false
		for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
			group.InviteCode = utils.GenerateInviteCode(cfg.InviteCodePrefix)
			if err := tx.Create(&group).Error; err != nil {
				if isDuplicateKeyErr(err) {
					group.ID = 0
					continue
				}
				return err
			}
			created = true
			break
		}
		if !created {
			return errors.New("could not allocate a unique invite code")
		}

		member := models.GroupMember{GroupID: group.ID, UserID: userID, JoinedAt: time.Now()}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("active_group_id", group.ID).Error
	})
	if txErr != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create group")
		return
	}

	utils.Success(ctx, groupResponse(group, true))
}

// Join adds the authenticated user to the group matching the invite code and
// makes it their active group.
func (g *GroupController) Join(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, 40024, "invalid-input", "invalid request payload")
		return
	}

	code := utils.NormalizeInviteCode(req.InviteCode)
	var group models.Group
	if err := g.db.Where("invite_code = ?", code).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, 40421, "invalid-code", "no group matches this invite code")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to look up invite code")
		return
	}

	txErr := g.db.Transaction(func(tx *gorm.DB) error {
		member := models.GroupMember{GroupID: group.ID, UserID: userID, JoinedAt: time.Now()}
		res := tx.Create(&member)
		if res.Error != nil {
			return res.Error
		}
		if err := syncMemberCount(tx, group.ID, 1, res.RowsAffected); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("active_group_id", group.ID).Error
	})
	if txErr != nil {
		if isDuplicateKeyErr(txErr) {
			utils.Fail(ctx, http.StatusConflict, 40920, "already-member", "you are already a member of this group")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to join group")
		return
	}

	invalidateRankingCache(group.ID)
	utils.Success(ctx, groupResponse(group, true))
}

// Leave removes the authenticated user from a group. Check-in history stays;
// only membership and the active-group pointer are dropped.
func (g *GroupController) Leave(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := g.loadGroup(ctx)
	if !ok {
		return
	}

	txErr := g.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("group_id = ? AND user_id = ?", group.ID, userID).
			Delete(&models.GroupMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := syncMemberCount(tx, group.ID, -1, res.RowsAffected); err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND active_group_id = ?", userID, group.ID).
			Update("active_group_id", nil).Error
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to leave group")
		return
	}

	invalidateRankingCache(group.ID)
	utils.Success(ctx, gin.H{"message": "left group"})
}

// RemoveMember lets the group creator remove another member. Creators cannot
// remove themselves; they leave like anyone else.
func (g *GroupController) RemoveMember(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := g.loadGroup(ctx)
	if !ok {
		return
	}
	if group.CreatorID != userID {
		utils.Fail(ctx, http.StatusForbidden, 40311, "not-authorized", "only the group creator can remove members")
		return
	}

	targetStr := strings.TrimSpace(ctx.Param("memberId"))
	target, err := strconvAtouint(targetStr)
	if err != nil {
		utils.Fail(ctx, http.StatusBadRequest, 40025, "invalid-input", "invalid member id")
		return
	}
	if target == userID {
		utils.Fail(ctx, http.StatusBadRequest, 40026, "cannot-remove-self", "use leave to exit your own group")
		return
	}

	txErr := g.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("group_id = ? AND user_id = ?", group.ID, target).
			Delete(&models.GroupMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := syncMemberCount(tx, group.ID, -1, res.RowsAffected); err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ? AND active_group_id = ?", target, group.ID).
			Update("active_group_id", nil).Error
	})
	if txErr != nil {
		status, code, reason, message := removeMemberFailure(txErr)
		if reason != "" {
			utils.Fail(ctx, status, code, reason, message)
		} else {
			utils.Error(ctx, status, code, message)
		}
		return
	}

	invalidateRankingCache(group.ID)
	utils.Success(ctx, gin.H{"message": "member removed"})
}

// RegenerateInviteCode replaces the group's invite code. Creator only. The
// old code stops working immediately; existing members are unaffected.
func (g *GroupController) RegenerateInviteCode(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := g.loadGroup(ctx)
	if !ok {
		return
	}
	if group.CreatorID != userID {
		utils.Fail(ctx, http.StatusForbidden, 40311, "not-authorized", "only the group creator can regenerate the invite code")
		return
	}

	cfg := config.Get()
	var newCode string
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		candidate := utils.GenerateInviteCode(cfg.InviteCodePrefix)
		err := g.db.Model(&models.Group{}).Where("id = ?", group.ID).
			Update("invite_code", candidate).Error
		if err == nil {
			newCode = candidate
			break
		}
		if !isDuplicateKeyErr(err) {
			utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to regenerate invite code")
			return
		}
	}
	if newCode == "" {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to regenerate invite code")
		return
	}

	utils.Success(ctx, gin.H{"invite_code": newCode})
}

// Get returns one group. The invite code is only included for members.
func (g *GroupController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := g.loadGroup(ctx)
	if !ok {
		return
	}

	member, err := isGroupMember(g.db, group.ID, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to verify membership")
		return
	}

	utils.Success(ctx, groupResponse(*group, member))
}

// ListMine returns every group the authenticated user belongs to.
func (g *GroupController) ListMine(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var memberships []models.GroupMember
	if err := g.db.Where("user_id = ?", userID).Order("joined_at ASC").
		Find(&memberships).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load memberships")
		return
	}

	ids := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.GroupID)
	}

	var groups []models.Group
	if len(ids) > 0 {
		if err := g.db.Where("id IN ?", utils.UniqueUint(ids)).Find(&groups).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load groups")
			return
		}
	}

	// Preserve join order
	byID := make(map[uint]models.Group, len(groups))
	for _, grp := range groups {
		byID[grp.ID] = grp
	}
	items := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		if grp, found := byID[id]; found {
			items = append(items, groupResponse(grp, true))
		}
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// Members lists group members ordered by join time.
func (g *GroupController) Members(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := g.loadGroup(ctx)
	if !ok {
		return
	}

	member, err := isGroupMember(g.db, group.ID, userID)
	if err != nil || !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	var memberships []models.GroupMember
	if err := g.db.Preload("User").Where("group_id = ?", group.ID).
		Order("joined_at ASC").Find(&memberships).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to load members")
		return
	}

	items := make([]gin.H, 0, len(memberships))
	for _, m := range memberships {
		items = append(items, gin.H{
			"user_id":        m.UserID,
			"username":       m.User.Username,
			"avatar_url":     m.User.AvatarURL,
			"joined_at":      m.JoinedAt,
			"current_streak": m.User.CurrentStreak,
			"is_creator":     m.UserID == group.CreatorID,
		})
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// SetActiveGroup switches which group the user's home view follows.
func (g *GroupController) SetActiveGroup(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		GroupID uint `json:"group_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, 40027, "invalid-input", "invalid request payload")
		return
	}

	member, err := isGroupMember(g.db, req.GroupID, userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to verify membership")
		return
	}
	if !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	if err := g.db.Model(&models.User{}).Where("id = ?", userID).
		Update("active_group_id", req.GroupID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to switch active group")
		return
	}

	utils.Success(ctx, gin.H{"active_group_id": req.GroupID})
}

func (g *GroupController) loadGroup(ctx *gin.Context) (*models.Group, bool) {
	var group models.Group
	if err := g.db.First(&group, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, 40420, "group-not-found", "group not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load group")
		}
		return nil, false
	}
	return &group, true
}

// syncMemberCount applies the member_count adjustment matching a membership
// row change, keeping member_count equal to the number of membership rows.
func syncMemberCount(tx *gorm.DB, groupID uint, delta int, rowsAffected int64) error {
	adj := memberCountAdjustment(delta, rowsAffected)
	switch {
	case adj > 0:
		return tx.Model(&models.Group{}).Where("id = ?", groupID).
			Update("member_count", gorm.Expr("member_count + ?", adj)).Error
	case adj < 0:
		return tx.Model(&models.Group{}).Where("id = ? AND member_count >= ?", groupID, -adj).
			Update("member_count", gorm.Expr("member_count - ?", -adj)).Error
	}
	return nil
}

// memberCountAdjustment returns the member_count change matching a membership
// write: the full delta when the write touched a row, zero when it was a no-op.
func memberCountAdjustment(delta int, rowsAffected int64) int {
	if rowsAffected <= 0 {
		return 0
	}
	return delta
}

// removeMemberFailure maps a removal transaction error to a response. A
// missing membership row is "not-a-member": the group itself was found.
func removeMemberFailure(err error) (status int, code int, reason string, message string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, 40422, "not-a-member", "that user is not a member of this group"
	}
	return http.StatusInternalServerError, 50024, "", "failed to remove member"
}

// isGroupMember reports whether userID belongs to groupID.
func isGroupMember(db *gorm.DB, groupID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func groupResponse(group models.Group, includeCode bool) gin.H {
	resp := gin.H{
		"id":            group.ID,
		"name":          group.Name,
		"description":   group.Description,
		"creator_id":    group.CreatorID,
		"start_date":    utils.DayString(group.StartDate),
		"end_date":      utils.DayString(group.EndDate),
		"duration_days": group.DurationDays,
		"member_count":  group.MemberCount,
		"ended":         group.Ended(time.Now()),
		"created_at":    group.CreatedAt,
	}
	if includeCode {
		resp["invite_code"] = group.InviteCode
	}
	return resp
}

func strconvAtouint(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
