package models

import "github.com/google/uuid"

// Friendship is one direction of a symmetric relation. Both rows of a pair
// are always created and deleted together inside a transaction; existence
// checks still use an either-direction OR so an asymmetric pair never hides
// a friendship.
type Friendship struct {
	BaseModel
	UserID   uuid.UUID `json:"userId" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_friend"`
	FriendID uuid.UUID `json:"friendId" gorm:"type:uuid;not null;index;uniqueIndex:idx_user_friend"`
	Friend   User      `json:"friend,omitempty" gorm:"foreignKey:FriendID"`
}
