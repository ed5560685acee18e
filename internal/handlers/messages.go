package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/spacehub/backend/internal/middleware"
	"github.com/spacehub/backend/internal/models"
	"github.com/spacehub/backend/internal/realtime"
	"github.com/spacehub/backend/internal/services"
	"github.com/spacehub/backend/pkg/utils"
)

type MessagesHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
	Hub    *realtime.Hub
}

func NewMessagesHandler(db *gorm.DB, access *services.AccessService, hub *realtime.Hub) *MessagesHandler {
	return &MessagesHandler{DB: db, Access: access, Hub: hub}
}

// List pages backwards through history but returns each page in ascending
// order, so the newest page renders bottom-up like a chat log.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.Access.RequireMember(groupID, currentUser.ID); err != nil {
		return membershipError(c, err)
	}

	p := utils.ParsePagination(c)

	var messages []models.Message
	if err := utils.ApplyPagination(
		h.DB.Preload("User").Where("group_id = ?", groupID).Order("created_at DESC"), p,
	).Find(&messages).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing messages")
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return utils.Success(c, fiber.StatusOK, messages)
}

type postMessageRequest struct {
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"messageType"`
}

func (h *MessagesHandler) Post(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.Access.RequireMember(groupID, currentUser.ID); err != nil {
		return membershipError(c, err)
	}

	var req postMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return utils.Error(c, fiber.StatusBadRequest, "message content is required")
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}
	if req.MessageType != models.MessageTypeText && req.MessageType != models.MessageTypeFile {
		return utils.Error(c, fiber.StatusBadRequest, "invalid message type")
	}

	message := models.Message{
		GroupID:     groupID,
		UserID:      currentUser.ID,
		Content:     req.Content,
		MessageType: req.MessageType,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating message")
	}

	message.User = *currentUser
	h.Hub.Publish(realtime.GroupChannel(groupID), "message.created", message)

	return utils.Success(c, fiber.StatusCreated, message)
}
