package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spacehub/backend/internal/models"
)

var (
	// ErrNotMember is returned when no membership row exists for the actor.
	ErrNotMember = errors.New("not a group member")
	// ErrNotAdmin is returned when a membership exists but lacks the ADMIN role.
	ErrNotAdmin = errors.New("admin role required")
)

// AccessService is the single authorization point for group-scoped
// resources. Every handler that touches a group's messages, notes or
// members goes through it rather than re-deriving role checks inline.
type AccessService struct {
	DB *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{DB: db}
}

// Membership returns the unique (groupID, userID) row, or
// gorm.ErrRecordNotFound when the user does not belong to the group.
func (a *AccessService) Membership(groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	err := a.DB.First(&membership, "group_id = ? AND user_id = ?", groupID, userID).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// RequireMember authorizes any group-scoped read or write.
func (a *AccessService) RequireMember(groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	membership, err := a.Membership(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	return membership, nil
}

// RequireAdmin authorizes elevated operations (member add/remove).
func (a *AccessService) RequireAdmin(groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	membership, err := a.RequireMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if membership.Role != models.GroupRoleAdmin {
		return nil, ErrNotAdmin
	}
	return membership, nil
}

// AreFriends checks the symmetric relation with an either-direction lookup.
func (a *AccessService) AreFriends(userID, otherID uuid.UUID) (bool, error) {
	var count int64
	err := a.DB.Model(&models.Friendship{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, otherID, otherID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// NoteGroup resolves the owning group of a note so the membership guard can
// gate note and block operations transitively.
func (a *AccessService) NoteGroup(noteID uuid.UUID) (*models.Note, error) {
	var note models.Note
	if err := a.DB.First(&note, "id = ?", noteID).Error; err != nil {
		return nil, err
	}
	return &note, nil
}
