package models

import "github.com/google/uuid"

type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "PENDING"
	FriendRequestAccepted FriendRequestStatus = "ACCEPTED"
	FriendRequestDeclined FriendRequestStatus = "DECLINED"
)

// FriendRequest rows are kept after resolution; only a PENDING row blocks a
// new request between the same pair.
type FriendRequest struct {
	BaseModel
	FromUserID uuid.UUID           `json:"fromUserId" gorm:"type:uuid;not null;index"`
	ToUserID   uuid.UUID           `json:"toUserId" gorm:"type:uuid;not null;index"`
	Status     FriendRequestStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	FromUser   User                `json:"fromUser,omitempty" gorm:"foreignKey:FromUserID"`
	ToUser     User                `json:"toUser,omitempty" gorm:"foreignKey:ToUserID"`
}
