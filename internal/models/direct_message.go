package models

import "github.com/google/uuid"

type DirectMessage struct {
	BaseModel
	SenderID    uuid.UUID   `json:"senderId" gorm:"type:uuid;not null;index"`
	ReceiverID  uuid.UUID   `json:"receiverId" gorm:"type:uuid;not null;index"`
	Content     string      `json:"content" gorm:"type:text;not null"`
	MessageType MessageType `json:"messageType" gorm:"type:varchar(20);not null;default:'TEXT'"`
	Read        bool        `json:"read" gorm:"not null;default:false"`
	Sender      User        `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Receiver    User        `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
}
