package models

import "github.com/google/uuid"

type GroupMembershipRole string

const (
	GroupRoleAdmin  GroupMembershipRole = "ADMIN"
	GroupRoleMember GroupMembershipRole = "MEMBER"
)

type GroupMembership struct {
	BaseModel
	GroupID uuid.UUID           `json:"groupId" gorm:"type:uuid;not null;index;uniqueIndex:idx_group_user"`
	UserID  uuid.UUID           `json:"userId" gorm:"type:uuid;not null;index;uniqueIndex:idx_group_user"`
	Role    GroupMembershipRole `json:"role" gorm:"type:varchar(20);not null;default:'MEMBER'"`
	User    User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Group   Group               `json:"-" gorm:"foreignKey:GroupID"`
}
