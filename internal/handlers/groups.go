package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spacehub/backend/internal/middleware"
	"github.com/spacehub/backend/internal/models"
	"github.com/spacehub/backend/internal/realtime"
	"github.com/spacehub/backend/internal/services"
	"github.com/spacehub/backend/pkg/logger"
	"github.com/spacehub/backend/pkg/utils"
)

type GroupsHandler struct {
	DB     *gorm.DB
	Access *services.AccessService
	Hub    *realtime.Hub
}

func NewGroupsHandler(db *gorm.DB, access *services.AccessService, hub *realtime.Hub) *GroupsHandler {
	return &GroupsHandler{DB: db, Access: access, Hub: hub}
}

type createGroupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *GroupsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	group := models.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedByID: currentUser.ID,
	}

	// The creator's ADMIN membership lands in the same transaction; a group
	// without its creator as a member would be unreachable.
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		membership := models.GroupMembership{
			UserID:  currentUser.ID,
			GroupID: group.ID,
			Role:    models.GroupRoleAdmin,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating group")
	}

	logger.InfoWithUser(currentUser.ID.String(), "group_created", map[string]interface{}{
		"group_id":   group.ID.String(),
		"group_name": group.Name,
	})

	return utils.Success(c, fiber.StatusCreated, group)
}

func (h *GroupsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var groups []models.Group
	if err := h.DB.
		Model(&models.Group{}).
		Preload("Creator").
		Preload("Memberships.User").
		Joins("JOIN group_memberships ON group_memberships.group_id = groups.id").
		Where("group_memberships.user_id = ?", currentUser.ID).
		Order("groups.updated_at DESC").
		Find(&groups).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing groups")
	}

	return utils.Success(c, fiber.StatusOK, groups)
}

func (h *GroupsHandler) Get(c *fiber.Ctx) error {
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

	var group models.Group
	if err := h.DB.Preload("Creator").Preload("Memberships.User").
		First(&group, "id = ?", groupID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "group not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group")
	}

	return utils.Success(c, fiber.StatusOK, group)
}

func (h *GroupsHandler) ListMembers(c *fiber.Ctx) error {
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

	var memberships []models.GroupMembership
	if err := h.DB.Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing members")
	}

	return utils.Success(c, fiber.StatusOK, memberships)
}

type addMemberRequest struct {
	UserID uuid.UUID                  `json:"userID"`
	Role   models.GroupMembershipRole `json:"role"`
}

func (h *GroupsHandler) AddMember(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}

	if _, err := h.Access.RequireAdmin(groupID, currentUser.ID); err != nil {
		return membershipError(c, err)
	}

	var req addMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.UserID == uuid.Nil {
		return utils.Error(c, fiber.StatusBadRequest, "userID is required")
	}
	if req.Role == "" {
		req.Role = models.GroupRoleMember
	}
	if req.Role != models.GroupRoleAdmin && req.Role != models.GroupRoleMember {
		return utils.Error(c, fiber.StatusBadRequest, "invalid role")
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	// Group invitations ride on the social graph: only existing friends of
	// the inviting admin can join.
	areFriends, err := h.Access.AreFriends(currentUser.ID, req.UserID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking friendship")
	}
	if !areFriends {
		return utils.Error(c, fiber.StatusForbidden, "you can only add friends to the group")
	}

	membership := models.GroupMembership{
		UserID:  req.UserID,
		GroupID: groupID,
		Role:    req.Role,
	}

	if err := h.DB.Create(&membership).Error; err != nil {
		return utils.Error(c, fiber.StatusConflict, "user is already a member")
	}

	if err := h.DB.Preload("User").First(&membership, "id = ?", membership.ID).Error; err == nil {
		h.Hub.Publish(realtime.GroupChannel(groupID), "member.added", membership)
		h.Hub.Publish(realtime.UserChannel(req.UserID), "group.joined", membership)
	}

	return utils.Success(c, fiber.StatusCreated, membership)
}

func (h *GroupsHandler) RemoveMember(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	groupID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid group id")
	}
	userID, err := parseUUID(c.Params("userId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid user id")
	}

	if _, err := h.Access.RequireAdmin(groupID, currentUser.ID); err != nil {
		return membershipError(c, err)
	}

	var group models.Group
	if err := h.DB.First(&group, "id = ?", groupID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading group")
	}
	if group.CreatedByID == userID {
		return utils.Error(c, fiber.StatusForbidden, "cannot remove the group creator")
	}

	target, err := h.Access.Membership(groupID, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "member not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading target membership")
	}

	if err := h.DB.Delete(&models.GroupMembership{}, "id = ?", target.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed removing member")
	}

	h.Hub.Publish(realtime.GroupChannel(groupID), "member.removed", fiber.Map{
		"groupId": groupID.String(),
		"userId":  userID.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "member removed"})
}

// membershipError maps guard failures onto the response taxonomy: missing
// membership and missing role are both Forbidden, anything else is a
// storage failure.
func membershipError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotMember):
		return utils.Error(c, fiber.StatusForbidden, "group access denied")
	case errors.Is(err, services.ErrNotAdmin):
		return utils.Error(c, fiber.StatusForbidden, "admin role required")
	default:
		return utils.Error(c, fiber.StatusInternalServerError, "failed validating membership")
	}
}
