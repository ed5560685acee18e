package models

import "github.com/google/uuid"

type MessageType string

const (
	MessageTypeText MessageType = "TEXT"
	MessageTypeFile MessageType = "FILE"
)

type Message struct {
	BaseModel
	GroupID     uuid.UUID   `json:"groupId" gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID   `json:"userId" gorm:"type:uuid;not null;index"`
	Content     string      `json:"content" gorm:"type:text;not null"`
	MessageType MessageType `json:"messageType" gorm:"type:varchar(20);not null;default:'TEXT'"`
	User        User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
