package models

import "github.com/google/uuid"

type NotificationType string

const (
	NotificationFriendRequest NotificationType = "FRIEND_REQUEST"
	NotificationGroupInvite   NotificationType = "GROUP_INVITE"
	NotificationMessage       NotificationType = "MESSAGE"
	NotificationMention       NotificationType = "MENTION"
)

type Notification struct {
	BaseModel
	UserID    uuid.UUID        `json:"userId" gorm:"type:uuid;not null;index"`
	Type      NotificationType `json:"type" gorm:"type:varchar(30);not null"`
	Title     string           `json:"title" gorm:"type:varchar(255);not null"`
	Message   string           `json:"message" gorm:"type:text;not null"`
	Read      bool             `json:"read" gorm:"not null;default:false"`
	RelatedID *uuid.UUID       `json:"relatedId,omitempty" gorm:"type:uuid"`
}
