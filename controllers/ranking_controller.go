package controllers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/readrally/readrally/config"
	"github.com/readrally/readrally/models"
	"github.com/readrally/readrally/utils"
)

// RankingController serves the per-group leaderboard.
type RankingController struct {
	db *gorm.DB
}

// NewRankingController creates a new controller instance.
func NewRankingController(db *gorm.DB) *RankingController {
	return &RankingController{db: db}
}

// RankingEntry is one leaderboard row.
type RankingEntry struct {
	Position  int    `json:"position"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Checkins  int    `json:"checkins"`
	IsCreator bool   `json:"is_creator"`
}

// rankedMember carries the inputs buildRanking needs for one member.
type rankedMember struct {
	UserID    uint
	Username  string
	AvatarURL string
	Checkins  int
	IsCreator bool
}

// Get returns the leaderboard for a group, recomputed from the check-in table
// on every cache miss. Members with zero check-ins still appear.
func (r *RankingController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var group models.Group
	if err := r.db.First(&group, ctx.Param("id")).Error; err != nil {
		utils.Fail(ctx, http.StatusNotFound, 40420, "group-not-found", "group not found")
		return
	}

	member, err := isGroupMember(r.db, group.ID, userID)
	if err != nil || !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	limit := 0
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	cacheKey := rankingCacheKey(group.ID)
	if limit == 0 {
		if b, found := utils.CacheGetBytes(cacheKey); found {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var memberships []models.GroupMember
	if err := r.db.Preload("User").Where("group_id = ?", group.ID).
		Order("joined_at ASC").Find(&memberships).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load members")
		return
	}

	type tallyRow struct {
		UserID uint
		Total  int
	}
	var tallies []tallyRow
	if err := r.db.Model(&models.CheckIn{}).
		Select("user_id, COUNT(*) AS total").
		Where("group_id = ?", group.ID).
		Group("user_id").
		Scan(&tallies).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to tally check-ins")
		return
	}

	counts := make(map[uint]int, len(tallies))
	for _, t := range tallies {
		counts[t.UserID] = t.Total
	}

	members := make([]rankedMember, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, rankedMember{
			UserID:    m.UserID,
			Username:  m.User.Username,
			AvatarURL: m.User.AvatarURL,
			Checkins:  counts[m.UserID],
			IsCreator: m.UserID == group.CreatorID,
		})
	}

	entries := buildRanking(members, limit)

	payload := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{
		"group_id": group.ID,
		"entries":  entries,
	}}
	if limit == 0 {
		ttl := time.Duration(config.Get().RankingCacheSeconds) * time.Second
		utils.CacheSetJSON(cacheKey, payload, ttl)
	}

	utils.Success(ctx, payload.Data)
}

// buildRanking sorts members by check-in count descending and assigns 1-based
// contiguous positions. Input order is preserved for equal counts, so earlier
// joiners rank ahead on ties. limit <= 0 keeps every entry.
func buildRanking(members []rankedMember, limit int) []RankingEntry {
	sorted := make([]rankedMember, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Checkins > sorted[j].Checkins
	})

	entries := make([]RankingEntry, 0, len(sorted))
	for i, m := range sorted {
		if limit > 0 && i >= limit {
			break
		}
		entries = append(entries, RankingEntry{
			Position:  i + 1,
			UserID:    m.UserID,
			Username:  m.Username,
			AvatarURL: m.AvatarURL,
			Checkins:  m.Checkins,
			IsCreator: m.IsCreator,
		})
	}
	return entries
}

func rankingCacheKey(groupID uint) string {
	return fmt.Sprintf("cache:ranking:%d", groupID)
}

// invalidateRankingCache drops the cached leaderboard after anything that can
// change it: a check-in, a join, a leave or a removal.
func invalidateRankingCache(groupID uint) {
	utils.InvalidateByPrefix(rankingCacheKey(groupID))
}
