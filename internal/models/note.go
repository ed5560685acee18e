package models

import "github.com/google/uuid"

type Note struct {
	BaseModel
	GroupID     uuid.UUID `json:"groupId" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	CreatedByID uuid.UUID `json:"createdBy" gorm:"type:uuid;not null;index"`

	Creator User        `json:"creator,omitempty" gorm:"foreignKey:CreatedByID"`
	Blocks  []NoteBlock `json:"blocks,omitempty" gorm:"foreignKey:NoteID"`
}
