package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/readrally/readrally/models"
	"github.com/readrally/readrally/utils"
)

// MessageController handles group chat endpoints.
type MessageController struct {
	db *gorm.DB
}

// NewMessageController creates a new controller instance.
func NewMessageController(db *gorm.DB) *MessageController {
	return &MessageController{db: db}
}

const maxMessageLength = 1000

// Send posts a chat message into a group.
func (m *MessageController) Send(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := m.loadGroup(ctx)
	if !ok {
		return
	}

	member, err := isGroupMember(m.db, group.ID, userID)
	if err != nil || !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, 40050, "invalid-input", "invalid request payload")
		return
	}

	text := utils.Sanitize(strings.TrimSpace(req.Text))
	if text == "" {
		utils.Fail(ctx, http.StatusBadRequest, 40051, "invalid-input", "message text is required")
		return
	}
	if len([]rune(text)) > maxMessageLength {
		utils.Fail(ctx, http.StatusBadRequest, 40051, "invalid-input", "message too long")
		return
	}

	var user models.User
	if err := m.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load sender")
		return
	}

	message := models.Message{
		GroupID:      group.ID,
		UserID:       userID,
		SenderName:   user.Username,
		SenderAvatar: user.AvatarURL,
		Text:         text,
	}
	if err := m.db.Create(&message).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to save message")
		return
	}

	utils.Success(ctx, messageResponse(message))
}

// List returns chat messages newest page first, each page oldest first so the
// client can append in display order.
func (m *MessageController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := m.loadGroup(ctx)
	if !ok {
		return
	}

	member, err := isGroupMember(m.db, group.ID, userID)
	if err != nil || !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := m.db.Model(&models.Message{}).Where("group_id = ?", group.ID).
		Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to count messages")
		return
	}

	var messages []models.Message
	if err := m.db.Where("group_id = ?", group.ID).
		Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&messages).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load messages")
		return
	}

	// Reverse into chronological order within the page
	items := make([]gin.H, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		items = append(items, messageResponse(messages[i]))
	}

	utils.Success(ctx, gin.H{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Edit updates the text of the caller's own message.
func (m *MessageController) Edit(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	message, ok := m.loadMessage(ctx)
	if !ok {
		return
	}
	if message.UserID != userID {
		utils.Fail(ctx, http.StatusForbidden, 40312, "not-authorized", "you can only edit your own messages")
		return
	}
	if message.Deleted {
		utils.Fail(ctx, http.StatusConflict, 40950, "message-deleted", "this message was deleted")
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Fail(ctx, http.StatusBadRequest, 40050, "invalid-input", "invalid request payload")
		return
	}

	text := utils.Sanitize(strings.TrimSpace(req.Text))
	if text == "" || len([]rune(text)) > maxMessageLength {
		utils.Fail(ctx, http.StatusBadRequest, 40051, "invalid-input", "message text must be 1-1000 characters")
		return
	}

	now := time.Now()
	updates := map[string]interface{}{"text": text, "edited_at": &now}
	if err := m.db.Model(message).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to update message")
		return
	}

	message.Text = text
	message.EditedAt = &now
	utils.Success(ctx, messageResponse(*message))
}

// Delete soft-deletes the caller's own message. The row stays so the
// conversation keeps its shape; List redacts the text.
func (m *MessageController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	message, ok := m.loadMessage(ctx)
	if !ok {
		return
	}

	allowed := message.UserID == userID
	if !allowed {
		// The group creator moderates the room
		var group models.Group
		if err := m.db.First(&group, message.GroupID).Error; err == nil && group.CreatorID == userID {
			allowed = true
		}
	}
	if !allowed {
		utils.Fail(ctx, http.StatusForbidden, 40312, "not-authorized", "you can only delete your own messages")
		return
	}

	if err := m.db.Model(message).Updates(map[string]interface{}{"deleted": true, "text": ""}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to delete message")
		return
	}

	utils.Success(ctx, gin.H{"message": "deleted"})
}

// Typing marks the authenticated user as typing in the group for a few seconds.
func (m *MessageController) Typing(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := m.loadGroup(ctx)
	if !ok {
		return
	}

	member, err := isGroupMember(m.db, group.ID, userID)
	if err != nil || !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	username := getUsername(ctx)
	if username != "" {
		utils.SetTyping(group.ID, username)
	}
	utils.Success(ctx, gin.H{"message": "ok"})
}

// TypingStatus lists usernames currently typing in the group.
func (m *MessageController) TypingStatus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	group, ok := m.loadGroup(ctx)
	if !ok {
		return
	}

	member, err := isGroupMember(m.db, group.ID, userID)
	if err != nil || !member {
		utils.Fail(ctx, http.StatusForbidden, 40310, "not-authorized", "you are not a member of this group")
		return
	}

	utils.Success(ctx, gin.H{"typing": utils.TypingMembers(group.ID)})
}

func (m *MessageController) loadGroup(ctx *gin.Context) (*models.Group, bool) {
	var group models.Group
	if err := m.db.First(&group, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, http.StatusNotFound, 40420, "group-not-found", "group not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load group")
		}
		return nil, false
	}
	return &group, true
}

func (m *MessageController) loadMessage(ctx *gin.Context) (*models.Message, bool) {
	var message models.Message
	if err := m.db.First(&message, ctx.Param("messageId")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "message not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to load message")
		}
		return nil, false
	}
	return &message, true
}

// messageResponse redacts deleted messages instead of dropping them.
func messageResponse(msg models.Message) gin.H {
	text := msg.Text
	if msg.Deleted {
		text = ""
	}
	return gin.H{
		"id":            msg.ID,
		"group_id":      msg.GroupID,
		"user_id":       msg.UserID,
		"sender_name":   msg.SenderName,
		"sender_avatar": msg.SenderAvatar,
		"text":          text,
		"deleted":       msg.Deleted,
		"edited_at":     msg.EditedAt,
		"created_at":    msg.CreatedAt,
	}
}
