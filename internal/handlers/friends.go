package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/spacehub/backend/internal/middleware"
	"github.com/spacehub/backend/internal/models"
	"github.com/spacehub/backend/internal/realtime"
	"github.com/spacehub/backend/internal/services"
	"github.com/spacehub/backend/pkg/logger"
	"github.com/spacehub/backend/pkg/utils"
)

type FriendsHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
	Hub    *realtime.Hub
}

func NewFriendsHandler(db *gorm.DB, access *services.AccessService, hub *realtime.Hub) *FriendsHandler {
	return &FriendsHandler{DB: db, Access: access, Hub: hub}
}

type sendFriendRequestRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (h *FriendsHandler) SendRequest(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req sendFriendRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" && req.Username == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email or username is required")
	}

	var target models.User
	query := h.DB.Model(&models.User{})
	switch {
	case req.Email != "" && req.Username != "":
		query = query.Where("email = ? OR username = ?", req.Email, req.Username)
	case req.Email != "":
		query = query.Where("email = ?", req.Email)
	default:
		query = query.Where("username = ?", req.Username)
	}
	if err := query.First(&target).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed looking up user")
	}

	if target.ID == currentUser.ID {
		return utils.Error(c, fiber.StatusBadRequest, "cannot send a friend request to yourself")
	}

	alreadyFriends, err := h.Access.AreFriends(currentUser.ID, target.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking friendship")
	}
	if alreadyFriends {
		return utils.Error(c, fiber.StatusConflict, "you are already friends with this user")
	}

	var pending models.FriendRequest
	err = h.DB.Where(
		"((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)) AND status = ?",
		currentUser.ID, target.ID, target.ID, currentUser.ID, models.FriendRequestPending,
	).First(&pending).Error
	if err == nil {
		if pending.FromUserID == currentUser.ID {
			return utils.Error(c, fiber.StatusConflict, "friend request already sent")
		}
		return utils.Error(c, fiber.StatusConflict, "this user has already sent you a friend request")
	}
	if err != gorm.ErrRecordNotFound {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking existing requests")
	}

	request := models.FriendRequest{
		FromUserID: currentUser.ID,
		ToUserID:   target.ID,
		Status:     models.FriendRequestPending,
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		notification := models.Notification{
			UserID:    target.ID,
			Type:      models.NotificationFriendRequest,
			Title:     "New Friend Request",
			Message:   currentUser.Username + " sent you a friend request",
			RelatedID: &request.ID,
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusConflict, "a pending request already exists")
	}

	if err := h.DB.Preload("FromUser").Preload("ToUser").First(&request, "id = ?", request.ID).Error; err == nil {
		h.Hub.Publish(realtime.UserChannel(target.ID), "friend_request.created", request)
	}

	logger.InfoWithUser(currentUser.ID.String(), "friend_request_sent", map[string]interface{}{
		"to_user_id": target.ID.String(),
	})

	return utils.Success(c, fiber.StatusCreated, request)
}

func (h *FriendsHandler) ListRequests(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	query := h.DB.Model(&models.FriendRequest{}).
		Where("status = ?", models.FriendRequestPending).
		Preload("FromUser").
		Preload("ToUser")

	switch c.Query("type") {
	case "sent":
		query = query.Where("from_user_id = ?", currentUser.ID)
	case "received":
		query = query.Where("to_user_id = ?", currentUser.ID)
	default:
		query = query.Where("from_user_id = ? OR to_user_id = ?", currentUser.ID, currentUser.ID)
	}

	var requests []models.FriendRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing friend requests")
	}

	return utils.Success(c, fiber.StatusOK, requests)
}

type respondFriendRequestRequest struct {
	Action string `json:"action"`
}

func (h *FriendsHandler) Respond(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request id")
	}

	var req respondFriendRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Action != "accept" && req.Action != "decline" {
		return utils.Error(c, fiber.StatusBadRequest, "action must be accept or decline")
	}

	var request models.FriendRequest
	if err := h.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "friend request not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading friend request")
	}

	if request.ToUserID != currentUser.ID {
		return utils.Error(c, fiber.StatusForbidden, "only the recipient can respond")
	}
	if request.Status != models.FriendRequestPending {
		return utils.Error(c, fiber.StatusConflict, "friend request already processed")
	}

	if req.Action == "decline" {
		if err := h.DB.Model(&request).Update("status", models.FriendRequestDeclined).Error; err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed updating friend request")
		}
		h.Hub.Publish(realtime.UserChannel(request.FromUserID), "friend_request.declined", request)
		return utils.Success(c, fiber.StatusOK, fiber.Map{"action": "decline"})
	}

	// Accepting transitions the request and inserts both friendship rows
	// atomically; a half-created pair would break the symmetry invariant.
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Update("status", models.FriendRequestAccepted).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Friendship{
			UserID:   request.FromUserID,
			FriendID: request.ToUserID,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Friendship{
			UserID:   request.ToUserID,
			FriendID: request.FromUserID,
		}).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed accepting friend request")
	}

	h.Hub.Publish(realtime.UserChannel(request.FromUserID), "friend_request.accepted", request)

	logger.InfoWithUser(currentUser.ID.String(), "friend_request_accepted", map[string]interface{}{
		"from_user_id": request.FromUserID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"action": "accept"})
}

func (h *FriendsHandler) Cancel(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	requestID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request id")
	}

	var request models.FriendRequest
	if err := h.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "friend request not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading friend request")
	}

	if request.FromUserID != currentUser.ID {
		return utils.Error(c, fiber.StatusForbidden, "only the sender can cancel")
	}
	if request.Status != models.FriendRequestPending {
		return utils.Error(c, fiber.StatusConflict, "cannot cancel a processed friend request")
	}

	if err := h.DB.Delete(&models.FriendRequest{}, "id = ?", request.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed cancelling friend request")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "friend request cancelled"})
}

func (h *FriendsHandler) ListFriends(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var friendships []models.Friendship
	if err := h.DB.Preload("Friend").
		Where("user_id = ?", currentUser.ID).
		Order("created_at DESC").
		Find(&friendships).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing friends")
	}

	type friendEntry struct {
		models.PublicUser
		FriendsSince interface{} `json:"friendsSince"`
	}

	friends := make([]friendEntry, 0, len(friendships))
	for i := range friendships {
		friends = append(friends, friendEntry{
			PublicUser:   friendships[i].Friend.Public(),
			FriendsSince: friendships[i].CreatedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, friends)
}

func (h *FriendsHandler) RemoveFriend(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	friendID, err := parseUUID(c.Params("friendId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid friend id")
	}

	areFriends, err := h.Access.AreFriends(currentUser.ID, friendID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking friendship")
	}
	if !areFriends {
		return utils.Error(c, fiber.StatusNotFound, "friendship not found")
	}

	// Both directions go together, same as they were created.
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Where(
			"(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			currentUser.ID, friendID, friendID, currentUser.ID,
		).Delete(&models.Friendship{}).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed removing friend")
	}

	h.Hub.Publish(realtime.UserChannel(friendID), "friend.removed", fiber.Map{
		"userId": currentUser.ID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "friend removed"})
}
