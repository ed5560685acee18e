package handlers

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spacehub/backend/internal/middleware"
	"github.com/spacehub/backend/internal/models"
	"github.com/spacehub/backend/pkg/utils"
)

type NotificationsHandler struct {
	DB *gorm.DB
}

func NewNotificationsHandler(db *gorm.DB) *NotificationsHandler {
	return &NotificationsHandler{DB: db}
}

type notificationEntry struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Title      string             `json:"title"`
	Message    string             `json:"message"`
	Read       bool               `json:"read"`
	Actionable bool               `json:"actionable,omitempty"`
	RelatedID  *uuid.UUID         `json:"relatedId,omitempty"`
	FromUser   *models.PublicUser `json:"fromUser,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
}

// List merges persisted notification rows with entries synthesized from
// pending incoming friend requests. The synthesized entries are never
// stored; they disappear once the request is resolved.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	unreadOnly := c.Query("unread") == "true"

	query := h.DB.Where("user_id = ?", currentUser.ID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing notifications")
	}

	var pendingRequests []models.FriendRequest
	if err := h.DB.Preload("FromUser").
		Where("to_user_id = ? AND status = ?", currentUser.ID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&pendingRequests).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing friend requests")
	}

	entries := make([]notificationEntry, 0, len(notifications)+len(pendingRequests))
	for i := range notifications {
		n := notifications[i]
		entries = append(entries, notificationEntry{
			ID:        n.ID.String(),
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Read:      n.Read,
			RelatedID: n.RelatedID,
			CreatedAt: n.CreatedAt,
		})
	}
	for i := range pendingRequests {
		request := pendingRequests[i]
		fromUser := request.FromUser.Public()
		requestID := request.ID
		entries = append(entries, notificationEntry{
			ID:         "fr_" + request.ID.String(),
			Type:       string(models.NotificationFriendRequest),
			Title:      "New Friend Request",
			Message:    request.FromUser.Username + " wants to be your friend",
			Read:       false,
			Actionable: true,
			RelatedID:  &requestID,
			FromUser:   &fromUser,
			CreatedAt:  request.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return utils.Success(c, fiber.StatusOK, entries)
}

type markNotificationsRequest struct {
	NotificationIDs []uuid.UUID `json:"notificationIds"`
	MarkAsRead      bool        `json:"markAsRead"`
}

func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req markNotificationsRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.NotificationIDs) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "notificationIds are required")
	}

	// Scoped to the actor's own rows; foreign ids are silently skipped.
	if err := h.DB.Model(&models.Notification{}).
		Where("id IN ? AND user_id = ?", req.NotificationIDs, currentUser.ID).
		Update("read", req.MarkAsRead).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating notifications")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "notifications updated"})
}
