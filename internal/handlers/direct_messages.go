package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spacehub/backend/internal/middleware"
	"github.com/spacehub/backend/internal/models"
	"github.com/spacehub/backend/internal/realtime"
	"github.com/spacehub/backend/internal/services"
	"github.com/spacehub/backend/pkg/utils"
)

type DirectMessagesHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
	Hub    *realtime.Hub
}

func NewDirectMessagesHandler(db *gorm.DB, access *services.AccessService, hub *realtime.Hub) *DirectMessagesHandler {
	return &DirectMessagesHandler{DB: db, Access: access, Hub: hub}
}

type conversationSummary struct {
	Partner     models.PublicUser    `json:"partner"`
	LastMessage models.DirectMessage `json:"lastMessage"`
	UnreadCount int                  `json:"unreadCount"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ListConversations folds the actor's direct messages into one summary per
// partner: latest message plus the count of unread rows addressed to the
// actor.
func (h *DirectMessagesHandler) ListConversations(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var messages []models.DirectMessage
	if err := h.DB.Preload("Sender").Preload("Receiver").
		Where("sender_id = ? OR receiver_id = ?", currentUser.ID, currentUser.ID).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing conversations")
	}

	order := []uuid.UUID{}
	summaries := map[uuid.UUID]*conversationSummary{}
	for i := range messages {
		dm := messages[i]
		partnerID := dm.SenderID
		partner := dm.Sender
		if dm.SenderID == currentUser.ID {
			partnerID = dm.ReceiverID
			partner = dm.Receiver
		}

		summary, seen := summaries[partnerID]
		if !seen {
			summary = &conversationSummary{
				Partner:     partner.Public(),
				LastMessage: dm,
				UpdatedAt:   dm.CreatedAt,
			}
			summaries[partnerID] = summary
			order = append(order, partnerID)
		}
		if dm.ReceiverID == currentUser.ID && !dm.Read {
			summary.UnreadCount++
		}
	}

	result := make([]conversationSummary, 0, len(order))
	for _, partnerID := range order {
		result = append(result, *summaries[partnerID])
	}

	return utils.Success(c, fiber.StatusOK, result)
}

// GetConversation returns the full thread with a partner and bulk-marks the
// partner's unread messages as read, the way opening a conversation does.
func (h *DirectMessagesHandler) GetConversation(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	partnerID, err := parseUUID(c.Params("partnerId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid partner id")
	}

	areFriends, err := h.Access.AreFriends(currentUser.ID, partnerID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking friendship")
	}
	if !areFriends {
		return utils.Error(c, fiber.StatusForbidden, "you can only view messages with friends")
	}

	var messages []models.DirectMessage
	if err := h.DB.Preload("Sender").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			currentUser.ID, partnerID, partnerID, currentUser.ID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading conversation")
	}

	if err := h.DB.Model(&models.DirectMessage{}).
		Where("sender_id = ? AND receiver_id = ? AND read = ?", partnerID, currentUser.ID, false).
		Update("read", true).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed marking messages read")
	}

	return utils.Success(c, fiber.StatusOK, messages)
}

type sendDirectMessageRequest struct {
	ReceiverID  uuid.UUID          `json:"receiverId"`
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"messageType"`
}

func (h *DirectMessagesHandler) Send(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req sendDirectMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.ReceiverID == uuid.Nil {
		return utils.Error(c, fiber.StatusBadRequest, "receiverId is required")
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return utils.Error(c, fiber.StatusBadRequest, "message content is required")
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}

	areFriends, err := h.Access.AreFriends(currentUser.ID, req.ReceiverID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking friendship")
	}
	if !areFriends {
		return utils.Error(c, fiber.StatusForbidden, "you can only message friends")
	}

	message := models.DirectMessage{
		SenderID:    currentUser.ID,
		ReceiverID:  req.ReceiverID,
		Content:     req.Content,
		MessageType: req.MessageType,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed sending message")
	}

	message.Sender = *currentUser
	h.Hub.Publish(realtime.UserChannel(req.ReceiverID), "direct_message.created", message)

	return utils.Success(c, fiber.StatusCreated, message)
}
